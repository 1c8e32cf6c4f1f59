package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/mirubato/mirubato/internal/common"
)

// EntryType classifies a logbook activity. Stored lower-case; the cloud API
// encodes the same values upper-case and must go through ParseEntryType.
type EntryType string

const (
	EntryTypePractice    EntryType = "practice"
	EntryTypePerformance EntryType = "performance"
	EntryTypeLesson      EntryType = "lesson"
	EntryTypeRehearsal   EntryType = "rehearsal"
)

// ParseEntryType maps a case-insensitive string to an EntryType. Unknown
// values are rejected rather than passed through.
func ParseEntryType(s string) (EntryType, error) {
	switch EntryType(strings.ToLower(strings.TrimSpace(s))) {
	case EntryTypePractice:
		return EntryTypePractice, nil
	case EntryTypePerformance:
		return EntryTypePerformance, nil
	case EntryTypeLesson:
		return EntryTypeLesson, nil
	case EntryTypeRehearsal:
		return EntryTypeRehearsal, nil
	default:
		return "", fmt.Errorf("%w: entry type %q", common.ErrUnknownEnumValue, s)
	}
}

// Mood is an optional self-assessment attached to an entry. The empty string
// means "not recorded".
type Mood string

const (
	MoodFrustrated Mood = "frustrated"
	MoodNeutral    Mood = "neutral"
	MoodSatisfied  Mood = "satisfied"
	MoodExcited    Mood = "excited"
)

// ParseMood maps a case-insensitive string to a Mood. The empty string is
// valid and maps to the zero Mood.
func ParseMood(s string) (Mood, error) {
	switch Mood(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case MoodFrustrated:
		return MoodFrustrated, nil
	case MoodNeutral:
		return MoodNeutral, nil
	case MoodSatisfied:
		return MoodSatisfied, nil
	case MoodExcited:
		return MoodExcited, nil
	default:
		return "", fmt.Errorf("%w: mood %q", common.ErrUnknownEnumValue, s)
	}
}

// Piece identifies one piece worked on during an entry.
type Piece struct {
	// ID is an optional reference into the score catalog.
	ID string `json:"id,omitempty"`

	Title    string `json:"title"`
	Composer string `json:"composer,omitempty"`

	// Measures is a free-form range such as "1-32".
	Measures string `json:"measures,omitempty"`

	// Tempo in BPM, zero when not recorded.
	Tempo int `json:"tempo,omitempty"`
}

// LogbookEntry is a single recorded practice, performance, lesson or
// rehearsal activity. The client holds the working copy offline; once synced
// the id is stable across local and remote representations.
type LogbookEntry struct {
	// ID is a globally unique identifier for the entry.
	ID string `json:"id"`

	// UserID is the owning user.
	UserID string `json:"userId"`

	// Timestamp is when the activity took place.
	Timestamp time.Time `json:"timestamp"`

	// Duration of the activity in seconds. Never negative.
	Duration int `json:"duration"`

	Type       EntryType `json:"type"`
	Instrument string    `json:"instrument"`

	// Pieces worked on, in the order the user listed them.
	Pieces []Piece `json:"pieces,omitempty"`

	// Techniques practised, e.g. "scales", "arpeggios".
	Techniques []string `json:"techniques,omitempty"`

	// GoalIDs references goals this entry contributes to.
	GoalIDs []string `json:"goalIds,omitempty"`

	Notes string `json:"notes,omitempty"`
	Mood  Mood   `json:"mood,omitempty"`
	Tags  []string `json:"tags,omitempty"`

	// ScoreID is an optional reference into the score catalog.
	ScoreID string `json:"scoreId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// DeletedAt marks the entry as a tombstone (kept for conflict resolution
	// instead of physical removal).
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// Deleted reports whether the entry is a tombstone.
func (e *LogbookEntry) Deleted() bool { return e.DeletedAt != nil }

// Validate checks the structural invariants of an entry. Violations wrap
// common.ErrValidation.
func (e *LogbookEntry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: entry id is empty", common.ErrValidation)
	}
	if e.Duration < 0 {
		return fmt.Errorf("%w: entry %s has negative duration", common.ErrValidation, e.ID)
	}
	if !e.CreatedAt.IsZero() && !e.UpdatedAt.IsZero() && e.UpdatedAt.Before(e.CreatedAt) {
		return fmt.Errorf("%w: entry %s updatedAt precedes createdAt", common.ErrValidation, e.ID)
	}
	return nil
}

// PieceTitles returns the lower-cased titles of all pieces in the entry.
func (e *LogbookEntry) PieceTitles() []string {
	titles := make([]string, 0, len(e.Pieces))
	for _, p := range e.Pieces {
		titles = append(titles, strings.ToLower(strings.TrimSpace(p.Title)))
	}
	return titles
}
