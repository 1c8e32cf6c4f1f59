package syncengine

import "github.com/mirubato/mirubato/internal/models"

// mergeEntries resolves a conflict between the local and cloud versions of
// one entry. The side with the greater UpdatedAt wins; ties go to the local
// side so the outcome is deterministic. The winner supplies every field
// value, and fields absent on the winner fall back to the loser's value so
// nothing that only the loser recorded is lost.
//
// DeletedAt deliberately follows the winner outright: a deletion that is the
// most recent update wins, and an edit made after a deletion resurrects the
// record. No fallback applies to the tombstone.
func mergeEntries(local, cloud *models.LogbookEntry) *models.LogbookEntry {
	winner, loser := local, cloud
	if cloud.UpdatedAt.After(local.UpdatedAt) {
		winner, loser = cloud, local
	}

	merged := *winner
	merged.ID = local.ID

	if merged.UserID == "" {
		merged.UserID = loser.UserID
	}
	if merged.Timestamp.IsZero() {
		merged.Timestamp = loser.Timestamp
	}
	if merged.Duration == 0 {
		merged.Duration = loser.Duration
	}
	if merged.Type == "" {
		merged.Type = loser.Type
	}
	if merged.Instrument == "" {
		merged.Instrument = loser.Instrument
	}
	if len(merged.Pieces) == 0 {
		merged.Pieces = loser.Pieces
	}
	if len(merged.Techniques) == 0 {
		merged.Techniques = loser.Techniques
	}
	if len(merged.GoalIDs) == 0 {
		merged.GoalIDs = loser.GoalIDs
	}
	if merged.Notes == "" {
		merged.Notes = loser.Notes
	}
	if merged.Mood == "" {
		merged.Mood = loser.Mood
	}
	if len(merged.Tags) == 0 {
		merged.Tags = loser.Tags
	}
	if merged.ScoreID == "" {
		merged.ScoreID = loser.ScoreID
	}

	// Keep the earliest creation time; the latest update time is the
	// winner's by construction.
	if merged.CreatedAt.IsZero() || (!loser.CreatedAt.IsZero() && loser.CreatedAt.Before(merged.CreatedAt)) {
		merged.CreatedAt = loser.CreatedAt
	}

	return &merged
}

// mergeGoals applies the same most-recently-updated-wins rule to goals.
func mergeGoals(local, cloud *models.Goal) *models.Goal {
	winner, loser := local, cloud
	if cloud.UpdatedAt.After(local.UpdatedAt) {
		winner, loser = cloud, local
	}

	merged := *winner
	merged.ID = local.ID

	if merged.UserID == "" {
		merged.UserID = loser.UserID
	}
	if merged.Title == "" {
		merged.Title = loser.Title
	}
	if merged.Description == "" {
		merged.Description = loser.Description
	}
	if merged.TargetDate == nil {
		merged.TargetDate = loser.TargetDate
	}
	if merged.Progress == 0 {
		merged.Progress = loser.Progress
	}
	if len(merged.Milestones) == 0 {
		merged.Milestones = loser.Milestones
	}
	if merged.Status == "" {
		merged.Status = loser.Status
	}
	if len(merged.LinkedEntries) == 0 {
		merged.LinkedEntries = loser.LinkedEntries
	}
	if merged.CompletedAt == nil {
		merged.CompletedAt = loser.CompletedAt
	}

	if merged.CreatedAt.IsZero() || (!loser.CreatedAt.IsZero() && loser.CreatedAt.Before(merged.CreatedAt)) {
		merged.CreatedAt = loser.CreatedAt
	}

	return &merged
}
