package detect

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mirubato/mirubato/internal/models"
)

// DuplicateWindow is the maximum distance between two timestamps for the
// entries to be compared at all. Entries further apart are never duplicates,
// which keeps the pass sub-quadratic on real data.
const DuplicateWindow = 10 * time.Minute

// Confidence weights. Timestamp closeness dominates; duration similarity is
// the weakest signal.
const (
	weightTime      = 0.4
	weightPieces    = 0.25
	weightTechnique = 0.2
	weightDuration  = 0.15
)

// DuplicateEntry flags one entry as a likely duplicate of another. Ephemeral
// output of one detection pass; never persisted.
type DuplicateEntry struct {
	// ID of the flagged entry.
	ID string `json:"id"`

	Entry *models.LogbookEntry `json:"entry"`

	// DuplicateOf is the canonical entry the flagged one duplicates: the
	// earliest-created member of the matching group (ties broken by id).
	DuplicateOf string `json:"duplicateOf"`

	// Confidence in [0,1].
	Confidence float64 `json:"confidence"`

	// Reason lists the signals that matched, for operator review.
	Reason string `json:"reason"`
}

// DetectDuplicates finds entries that likely record the same real-world
// activity twice (double submission, import plus manual entry). Two entries
// are candidates when their timestamps fall within DuplicateWindow, they
// share an instrument, and they share at least one piece title or one
// technique. Output is deterministic for a fixed input: entries are ordered
// by timestamp, then id.
func DetectDuplicates(entries []*models.LogbookEntry) []DuplicateEntry {
	sorted := make([]*models.LogbookEntry, 0, len(entries))
	for _, e := range entries {
		if e != nil && e.ID != "" {
			sorted = append(sorted, e)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Timestamp.Before(sorted[j].Timestamp)
		}
		return sorted[i].ID < sorted[j].ID
	})

	type match struct {
		confidence float64
		reason     string
	}

	parent := make(map[string]string, len(sorted))
	byID := make(map[string]*models.LogbookEntry, len(sorted))
	matches := make(map[string]match)

	var find func(id string) string
	find = func(id string) string {
		if parent[id] != id {
			parent[id] = find(parent[id])
		}
		return parent[id]
	}
	union := func(a, b string) {
		parent[find(a)] = find(b)
	}

	for _, e := range sorted {
		parent[e.ID] = e.ID
		byID[e.ID] = e
	}

	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			a, b := sorted[i], sorted[j]
			gap := b.Timestamp.Sub(a.Timestamp)
			if gap > DuplicateWindow {
				break // sorted by time, nothing further matches either
			}
			confidence, reason, ok := scorePair(a, b, gap)
			if !ok {
				continue
			}
			union(a.ID, b.ID)
			if prev, seen := matches[b.ID]; !seen || confidence > prev.confidence {
				matches[b.ID] = match{confidence: confidence, reason: reason}
			}
			if _, seen := matches[a.ID]; !seen {
				matches[a.ID] = match{confidence: confidence, reason: reason}
			}
		}
	}

	// Canonical member per group: earliest createdAt, ties by id.
	canonical := make(map[string]*models.LogbookEntry)
	for _, e := range sorted {
		root := find(e.ID)
		cur, ok := canonical[root]
		if !ok || earlierCreated(e, cur) {
			canonical[root] = e
		}
	}

	var result []DuplicateEntry
	for _, e := range sorted {
		root := find(e.ID)
		canon := canonical[root]
		if canon.ID == e.ID {
			continue
		}
		m := matches[e.ID]
		result = append(result, DuplicateEntry{
			ID:          e.ID,
			Entry:       e,
			DuplicateOf: canon.ID,
			Confidence:  m.confidence,
			Reason:      m.reason,
		})
	}
	return result
}

func earlierCreated(a, b *models.LogbookEntry) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// scorePair gates and scores one candidate pair. ok is false when the pair
// does not meet the minimum criteria (shared instrument plus a shared piece
// title or technique).
func scorePair(a, b *models.LogbookEntry, gap time.Duration) (confidence float64, reason string, ok bool) {
	if !strings.EqualFold(a.Instrument, b.Instrument) || a.Instrument == "" {
		return 0, "", false
	}

	pieceOverlap := overlapRatio(a.PieceTitles(), b.PieceTitles())
	techniqueOverlap := overlapRatio(lowerAll(a.Techniques), lowerAll(b.Techniques))
	if pieceOverlap == 0 && techniqueOverlap == 0 {
		return 0, "", false
	}

	closeness := 1 - float64(gap)/float64(DuplicateWindow)
	confidence = weightTime*closeness +
		weightPieces*pieceOverlap +
		weightTechnique*techniqueOverlap +
		weightDuration*durationSimilarity(a.Duration, b.Duration)

	signals := []string{
		fmt.Sprintf("timestamps %s apart", gap),
		fmt.Sprintf("same instrument (%s)", strings.ToLower(a.Instrument)),
	}
	if pieceOverlap > 0 {
		signals = append(signals, fmt.Sprintf("piece overlap %.0f%%", pieceOverlap*100))
	}
	if techniqueOverlap > 0 {
		signals = append(signals, fmt.Sprintf("technique overlap %.0f%%", techniqueOverlap*100))
	}
	if sim := durationSimilarity(a.Duration, b.Duration); sim > 0.8 {
		signals = append(signals, "similar duration")
	}
	return confidence, strings.Join(signals, ", "), true
}

// overlapRatio is the share of the smaller set also present in the larger.
func overlapRatio(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	shared := 0
	seen := make(map[string]struct{}, len(b))
	for _, s := range b {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if _, ok := set[s]; ok {
			shared++
		}
	}
	smaller := len(set)
	if len(seen) < smaller {
		smaller = len(seen)
	}
	return float64(shared) / float64(smaller)
}

func durationSimilarity(a, b int) float64 {
	if a == b {
		return 1
	}
	max := a
	if b > max {
		max = b
	}
	if max == 0 {
		return 1
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return 1 - float64(diff)/float64(max)
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}
