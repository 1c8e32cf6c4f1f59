package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/mirubato/mirubato/internal/common"
)

// RepertoireStatus is the learning state of a repertoire item.
type RepertoireStatus string

const (
	RepertoireStatusPlanned  RepertoireStatus = "planned"
	RepertoireStatusLearning RepertoireStatus = "learning"
	RepertoireStatusPolished RepertoireStatus = "polished"
	RepertoireStatusDropped  RepertoireStatus = "dropped"
)

// ParseRepertoireStatus maps a case-insensitive string to a
// RepertoireStatus, rejecting unknown values.
func ParseRepertoireStatus(s string) (RepertoireStatus, error) {
	switch RepertoireStatus(strings.ToLower(strings.TrimSpace(s))) {
	case RepertoireStatusPlanned:
		return RepertoireStatusPlanned, nil
	case RepertoireStatusLearning:
		return RepertoireStatusLearning, nil
	case RepertoireStatusPolished:
		return RepertoireStatusPolished, nil
	case RepertoireStatusDropped:
		return RepertoireStatusDropped, nil
	default:
		return "", fmt.Errorf("%w: repertoire status %q", common.ErrUnknownEnumValue, s)
	}
}

// StatusChange records one transition in a repertoire item's history.
type StatusChange struct {
	Status    RepertoireStatus `json:"status"`
	ChangedAt time.Time        `json:"changedAt"`
}

// RepertoireItem tracks one piece in a user's repertoire. ScoreID is a
// foreign reference into the score catalog and the primary object of the
// score-reference detector.
type RepertoireItem struct {
	ScoreID  string `json:"scoreId"`
	UserID   string `json:"userId"`
	Title    string `json:"title"`
	Composer string `json:"composer,omitempty"`

	Status        RepertoireStatus `json:"status"`
	StatusHistory []StatusChange   `json:"statusHistory,omitempty"`

	LastPracticedAt *time.Time `json:"lastPracticedAt,omitempty"`

	// TotalPracticeTime is accumulated practice in seconds.
	TotalPracticeTime int `json:"totalPracticeTime"`
	SessionCount      int `json:"sessionCount"`

	Notes string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks the structural invariants of a repertoire item.
func (r *RepertoireItem) Validate() error {
	if r.ScoreID == "" {
		return fmt.Errorf("%w: repertoire item score id is empty", common.ErrValidation)
	}
	if r.TotalPracticeTime < 0 {
		return fmt.Errorf("%w: repertoire item %s has negative practice time", common.ErrValidation, r.ScoreID)
	}
	return nil
}
