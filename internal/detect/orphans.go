package detect

import (
	"sort"

	"github.com/mirubato/mirubato/internal/models"
)

// Orphan is a logbook entry whose score reference points at a score that no
// longer exists in the catalog.
type Orphan struct {
	// EntryID of the orphaned entry.
	EntryID string `json:"entryId"`

	Entry *models.LogbookEntry `json:"entry"`

	// ScoreID is the dangling reference.
	ScoreID string `json:"scoreId"`
}

// DetectOrphans finds entries referencing score ids absent from the catalog.
// The catalog is the set of score ids known to exist (repertoire rows plus
// the external score catalog). Output is sorted by entry id.
func DetectOrphans(entries []*models.LogbookEntry, catalog map[string]struct{}) []Orphan {
	var result []Orphan
	for _, e := range entries {
		if e == nil || e.ScoreID == "" {
			continue
		}
		if _, ok := catalog[e.ScoreID]; ok {
			continue
		}
		result = append(result, Orphan{EntryID: e.ID, Entry: e, ScoreID: e.ScoreID})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EntryID < result[j].EntryID })
	return result
}
