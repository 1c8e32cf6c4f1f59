package models

import (
	"fmt"
	"strings"
	"time"
)

// CloudEntry is the shape the GraphQL API returns for a logbook entry:
// upper-case enum encodings and RFC 3339 timestamp strings. It is converted
// to the local shape with ToLocal before anything is persisted.
type CloudEntry struct {
	ID         string   `json:"id"`
	UserID     string   `json:"userId"`
	Timestamp  string   `json:"timestamp"`
	Duration   int      `json:"duration"`
	Type       string   `json:"type"`
	Instrument string   `json:"instrument"`
	Pieces     []Piece  `json:"pieces,omitempty"`
	Techniques []string `json:"techniques,omitempty"`
	GoalIDs    []string `json:"goalIds,omitempty"`
	Notes      string   `json:"notes,omitempty"`
	Mood       string   `json:"mood,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	ScoreID    string   `json:"scoreId,omitempty"`
	CreatedAt  string   `json:"createdAt"`
	UpdatedAt  string   `json:"updatedAt"`
	DeletedAt  *string  `json:"deletedAt,omitempty"`
}

// ToLocal normalizes the cloud representation into the local shape:
// lower-case enums (rejecting unknown values), RFC 3339 strings parsed into
// time.Time.
func (c *CloudEntry) ToLocal() (*LogbookEntry, error) {
	typ, err := ParseEntryType(c.Type)
	if err != nil {
		return nil, fmt.Errorf("cloud entry %s: %w", c.ID, err)
	}
	mood, err := ParseMood(c.Mood)
	if err != nil {
		return nil, fmt.Errorf("cloud entry %s: %w", c.ID, err)
	}

	ts, err := parseCloudTime(c.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("cloud entry %s timestamp: %w", c.ID, err)
	}
	createdAt, err := parseCloudTime(c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("cloud entry %s createdAt: %w", c.ID, err)
	}
	updatedAt, err := parseCloudTime(c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("cloud entry %s updatedAt: %w", c.ID, err)
	}
	deletedAt, err := parseCloudTimePtr(c.DeletedAt)
	if err != nil {
		return nil, fmt.Errorf("cloud entry %s deletedAt: %w", c.ID, err)
	}

	return &LogbookEntry{
		ID:         c.ID,
		UserID:     c.UserID,
		Timestamp:  ts,
		Duration:   c.Duration,
		Type:       typ,
		Instrument: strings.ToLower(strings.TrimSpace(c.Instrument)),
		Pieces:     c.Pieces,
		Techniques: c.Techniques,
		GoalIDs:    c.GoalIDs,
		Notes:      c.Notes,
		Mood:       mood,
		Tags:       c.Tags,
		ScoreID:    c.ScoreID,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
	}, nil
}

// CloudGoal is the cloud-side shape of a goal.
type CloudGoal struct {
	ID            string      `json:"id"`
	UserID        string      `json:"userId"`
	Title         string      `json:"title"`
	Description   string      `json:"description,omitempty"`
	TargetDate    *string     `json:"targetDate,omitempty"`
	Progress      int         `json:"progress"`
	Milestones    []Milestone `json:"milestones,omitempty"`
	Status        string      `json:"status"`
	LinkedEntries []string    `json:"linkedEntries,omitempty"`
	CreatedAt     string      `json:"createdAt"`
	UpdatedAt     string      `json:"updatedAt"`
	CompletedAt   *string     `json:"completedAt,omitempty"`
	DeletedAt     *string     `json:"deletedAt,omitempty"`
}

// ToLocal normalizes the cloud representation into the local shape.
func (c *CloudGoal) ToLocal() (*Goal, error) {
	status, err := ParseGoalStatus(c.Status)
	if err != nil {
		return nil, fmt.Errorf("cloud goal %s: %w", c.ID, err)
	}

	createdAt, err := parseCloudTime(c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("cloud goal %s createdAt: %w", c.ID, err)
	}
	updatedAt, err := parseCloudTime(c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("cloud goal %s updatedAt: %w", c.ID, err)
	}
	targetDate, err := parseCloudTimePtr(c.TargetDate)
	if err != nil {
		return nil, fmt.Errorf("cloud goal %s targetDate: %w", c.ID, err)
	}
	completedAt, err := parseCloudTimePtr(c.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("cloud goal %s completedAt: %w", c.ID, err)
	}
	deletedAt, err := parseCloudTimePtr(c.DeletedAt)
	if err != nil {
		return nil, fmt.Errorf("cloud goal %s deletedAt: %w", c.ID, err)
	}

	return &Goal{
		ID:            c.ID,
		UserID:        c.UserID,
		Title:         c.Title,
		Description:   c.Description,
		TargetDate:    targetDate,
		Progress:      c.Progress,
		Milestones:    c.Milestones,
		Status:        status,
		LinkedEntries: c.LinkedEntries,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
		CompletedAt:   completedAt,
		DeletedAt:     deletedAt,
	}, nil
}

func parseCloudTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %q: %w", s, err)
	}
	return t.UTC(), nil
}

func parseCloudTimePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseCloudTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
