package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/mirubato/mirubato/internal/common"
)

// GoalStatus is the lifecycle state of a goal. Terminal states are
// "completed" and "cancelled".
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusPaused    GoalStatus = "paused"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusCancelled GoalStatus = "cancelled"
)

// ParseGoalStatus maps a case-insensitive string to a GoalStatus, rejecting
// unknown values.
func ParseGoalStatus(s string) (GoalStatus, error) {
	switch GoalStatus(strings.ToLower(strings.TrimSpace(s))) {
	case GoalStatusActive:
		return GoalStatusActive, nil
	case GoalStatusPaused:
		return GoalStatusPaused, nil
	case GoalStatusCompleted:
		return GoalStatusCompleted, nil
	case GoalStatusCancelled:
		return GoalStatusCancelled, nil
	default:
		return "", fmt.Errorf("%w: goal status %q", common.ErrUnknownEnumValue, s)
	}
}

// Milestone is one step towards a goal.
type Milestone struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Goal is a user-defined practice objective with milestones and progress.
type Goal struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	TargetDate *time.Time `json:"targetDate,omitempty"`

	// Progress in percent, 0-100. Advanced by milestone completion or by a
	// sync merge.
	Progress int `json:"progress"`

	Milestones []Milestone `json:"milestones,omitempty"`
	Status     GoalStatus  `json:"status"`

	// LinkedEntries references logbook entries counted towards this goal.
	LinkedEntries []string `json:"linkedEntries,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// DeletedAt marks the goal as a tombstone.
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// Deleted reports whether the goal is a tombstone.
func (g *Goal) Deleted() bool { return g.DeletedAt != nil }

// Validate checks the structural invariants of a goal. A completed goal is
// expected to have CompletedAt set; progress must stay within 0-100.
func (g *Goal) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("%w: goal id is empty", common.ErrValidation)
	}
	if g.Progress < 0 || g.Progress > 100 {
		return fmt.Errorf("%w: goal %s progress %d out of range", common.ErrValidation, g.ID, g.Progress)
	}
	if g.Status == GoalStatusCompleted && g.CompletedAt == nil {
		return fmt.Errorf("%w: goal %s completed without completedAt", common.ErrValidation, g.ID)
	}
	if !g.CreatedAt.IsZero() && !g.UpdatedAt.IsZero() && g.UpdatedAt.Before(g.CreatedAt) {
		return fmt.Errorf("%w: goal %s updatedAt precedes createdAt", common.ErrValidation, g.ID)
	}
	return nil
}
