package detect

import (
	"sort"

	"github.com/mirubato/mirubato/internal/models"
	"github.com/mirubato/mirubato/internal/scoreid"
)

// ScoreIDMismatch groups every row referencing one legacy score id together
// with its canonical replacement, so a single operator decision fixes all
// affected rows at once.
type ScoreIDMismatch struct {
	OldID string `json:"oldId"`
	NewID string `json:"newId"`

	// AffectedEntries lists logbook entry ids referencing OldID.
	AffectedEntries []string `json:"affectedEntries"`

	// AffectedRepertoire lists repertoire rows (by their score id, which is
	// the row key) referencing OldID.
	AffectedRepertoire []string `json:"affectedRepertoire"`
}

// DetectScoreIDMismatches finds entries and repertoire items whose score
// references use a legacy, non-canonical format and maps each to the
// canonical id. The canonical form is derived from the title and composer of
// the referenced piece: the repertoire row itself, or the entry's piece list,
// or a repertoire row sharing the same legacy id. References with no title
// information anywhere are left alone; rewriting them would be a guess.
// Output is sorted by OldID.
func DetectScoreIDMismatches(entries []*models.LogbookEntry, repertoire []*models.RepertoireItem) []ScoreIDMismatch {
	// Title/composer lookup for legacy ids, from repertoire metadata.
	titles := make(map[string][2]string)
	for _, item := range repertoire {
		if item.ScoreID != "" && item.Title != "" {
			titles[item.ScoreID] = [2]string{item.Title, item.Composer}
		}
	}
	for _, e := range entries {
		for _, p := range e.Pieces {
			if p.ID != "" && p.Title != "" {
				if _, ok := titles[p.ID]; !ok {
					titles[p.ID] = [2]string{p.Title, p.Composer}
				}
			}
		}
	}

	canonicalFor := func(oldID string) (string, bool) {
		tc, ok := titles[oldID]
		if !ok {
			return "", false
		}
		newID := scoreid.Generate(tc[0], tc[1])
		if newID == oldID {
			return "", false
		}
		return newID, true
	}

	byOld := make(map[string]*ScoreIDMismatch)
	record := func(oldID string) *ScoreIDMismatch {
		m, ok := byOld[oldID]
		if !ok {
			newID, ok := canonicalFor(oldID)
			if !ok {
				return nil
			}
			m = &ScoreIDMismatch{OldID: oldID, NewID: newID}
			byOld[oldID] = m
		}
		return m
	}

	for _, e := range entries {
		refs := map[string]struct{}{}
		if e.ScoreID != "" && !scoreid.IsCanonical(e.ScoreID) {
			refs[e.ScoreID] = struct{}{}
		}
		for _, p := range e.Pieces {
			if p.ID != "" && !scoreid.IsCanonical(p.ID) {
				refs[p.ID] = struct{}{}
			}
		}
		for oldID := range refs {
			if m := record(oldID); m != nil {
				m.AffectedEntries = append(m.AffectedEntries, e.ID)
			}
		}
	}

	for _, item := range repertoire {
		if item.ScoreID == "" || scoreid.IsCanonical(item.ScoreID) {
			continue
		}
		if m := record(item.ScoreID); m != nil {
			m.AffectedRepertoire = append(m.AffectedRepertoire, item.ScoreID)
		}
	}

	result := make([]ScoreIDMismatch, 0, len(byOld))
	for _, m := range byOld {
		sort.Strings(m.AffectedEntries)
		sort.Strings(m.AffectedRepertoire)
		result = append(result, *m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OldID < result[j].OldID })
	return result
}
