package syncengine

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mirubato/mirubato/internal/events"
	"github.com/mirubato/mirubato/internal/logging"
	"github.com/mirubato/mirubato/internal/models"
	"github.com/mirubato/mirubato/internal/storage"
)

type spyPublisher struct {
	published []events.Event
}

func (p *spyPublisher) Publish(ctx context.Context, e events.Event) {
	p.published = append(p.published, e)
}

func newTestEngine(t *testing.T) (*Engine, *storage.MemoryStore, *spyPublisher) {
	t.Helper()
	store := storage.NewMemoryStore()
	bus := &spyPublisher{}
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return New(store, bus, log), store, bus
}

func localEntry(id string, updatedAt time.Time) *models.LogbookEntry {
	return &models.LogbookEntry{
		ID:         id,
		UserID:     "u1",
		Timestamp:  updatedAt.Add(-time.Hour),
		Duration:   1800,
		Type:       models.EntryTypePractice,
		Instrument: "piano",
		CreatedAt:  updatedAt.Add(-time.Hour),
		UpdatedAt:  updatedAt,
	}
}

// cloudShape converts a local entry into the upper-case, string-timestamp
// shape the cloud API returns, for round-trip tests.
func cloudShape(e *models.LogbookEntry) *models.CloudEntry {
	var deleted *string
	if e.DeletedAt != nil {
		s := e.DeletedAt.UTC().Format(time.RFC3339Nano)
		deleted = &s
	}
	return &models.CloudEntry{
		ID:         e.ID,
		UserID:     e.UserID,
		Timestamp:  e.Timestamp.UTC().Format(time.RFC3339Nano),
		Duration:   e.Duration,
		Type:       "PRACTICE",
		Instrument: "PIANO",
		Pieces:     e.Pieces,
		Techniques: e.Techniques,
		GoalIDs:    e.GoalIDs,
		Notes:      e.Notes,
		Mood:       string(e.Mood),
		Tags:       e.Tags,
		ScoreID:    e.ScoreID,
		CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  e.UpdatedAt.UTC().Format(time.RFC3339Nano),
		DeletedAt:  deleted,
	}
}

func storedEntry(t *testing.T, store *storage.MemoryStore, id string) *models.LogbookEntry {
	t.Helper()
	raw, err := store.Get(context.Background(), EntryKeyPrefix+id)
	require.NoError(t, err)
	var e models.LogbookEntry
	require.NoError(t, json.Unmarshal(raw, &e))
	return &e
}

func TestPerformSync_NewLocalEntrySyncsUp(t *testing.T) {
	engine, store, bus := newTestEngine(t)
	e1 := localEntry("E1", time.Now().UTC())

	res, err := engine.PerformSync(context.Background(),
		[]*models.LogbookEntry{e1}, nil, nil, nil)
	require.NoError(t, err)

	require.Equal(t, 1, res.LocalToCloud.Entries)
	require.Zero(t, res.CloudToLocal.Entries)
	require.Zero(t, res.Conflicts.Entries)
	require.Equal(t, 1, store.SetCalls["logbook:E1"])

	require.Len(t, bus.published, 1)
	require.Equal(t, events.TypeEntrySynced, bus.published[0].Type)
}

func TestPerformSync_NewCloudEntrySyncsDownNormalized(t *testing.T) {
	engine, store, _ := newTestEngine(t)

	cloud := &models.CloudEntry{
		ID:         "E2",
		UserID:     "u1",
		Timestamp:  "2025-02-28T18:30:00Z",
		Duration:   1200,
		Type:       "PRACTICE",
		Instrument: "VIOLIN",
		Mood:       "FRUSTRATED",
		CreatedAt:  "2025-02-28T18:30:00Z",
		UpdatedAt:  "2025-02-28T19:00:00Z",
	}

	res, err := engine.PerformSync(context.Background(), nil, nil,
		[]*models.CloudEntry{cloud}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, res.CloudToLocal.Entries)

	got := storedEntry(t, store, "E2")
	require.Equal(t, models.EntryTypePractice, got.Type)
	require.Equal(t, models.MoodFrustrated, got.Mood)
	require.Equal(t, "violin", got.Instrument)
}

func TestPerformSync_ConflictResolvedByRecency_CloudWins(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	local := localEntry("E1", base)
	local.Notes = "A"

	cloud := cloudShape(localEntry("E1", base.Add(time.Second)))
	cloud.Notes = "B"

	res, err := engine.PerformSync(context.Background(),
		[]*models.LogbookEntry{local}, nil, []*models.CloudEntry{cloud}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, res.Conflicts.Entries)

	got := storedEntry(t, store, "E1")
	require.Equal(t, "B", got.Notes)
}

func TestPerformSync_ConflictResolvedByRecency_LocalWins(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	local := localEntry("E1", base.Add(time.Second))
	local.Notes = "A"

	cloud := cloudShape(localEntry("E1", base))
	cloud.Notes = "B"

	res, err := engine.PerformSync(context.Background(),
		[]*models.LogbookEntry{local}, nil, []*models.CloudEntry{cloud}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, res.Conflicts.Entries)

	got := storedEntry(t, store, "E1")
	require.Equal(t, "A", got.Notes)
}

func TestPerformSync_NoDataLossUnderConflict(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	// The losing (older) side is the only one that recorded tags, a mood
	// and a score reference.
	local := localEntry("E1", base)
	local.Tags = []string{"etude", "slow-practice"}
	local.Mood = models.MoodSatisfied
	local.ScoreID = "nocturne op. 9 no. 2:chopin"

	cloud := cloudShape(localEntry("E1", base.Add(time.Minute)))
	cloud.Notes = "worked on voicing"

	_, err := engine.PerformSync(context.Background(),
		[]*models.LogbookEntry{local}, nil, []*models.CloudEntry{cloud}, nil)
	require.NoError(t, err)

	got := storedEntry(t, store, "E1")
	require.Equal(t, "worked on voicing", got.Notes)
	require.Equal(t, []string{"etude", "slow-practice"}, got.Tags)
	require.Equal(t, models.MoodSatisfied, got.Mood)
	require.Equal(t, "nocturne op. 9 no. 2:chopin", got.ScoreID)
}

func TestPerformSync_ExactlyOneWritePerSharedID(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	local := localEntry("E1", base)
	local.Notes = "A"
	cloud := cloudShape(localEntry("E1", base.Add(time.Second)))
	cloud.Notes = "B"

	_, err := engine.PerformSync(context.Background(),
		[]*models.LogbookEntry{local}, nil, []*models.CloudEntry{cloud}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, store.SetCalls["logbook:E1"])
}

func TestPerformSync_EqualSidesWriteNothing(t *testing.T) {
	engine, store, bus := newTestEngine(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	local := localEntry("E1", base)
	cloud := cloudShape(local)

	res, err := engine.PerformSync(context.Background(),
		[]*models.LogbookEntry{local}, nil, []*models.CloudEntry{cloud}, nil)
	require.NoError(t, err)
	require.Zero(t, res.Conflicts.Entries)
	require.Zero(t, store.SetCalls["logbook:E1"])
	require.Empty(t, bus.published)
}

func TestPerformSync_SecondPassIsIdempotent(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	local := localEntry("E1", base)
	local.Notes = "A"
	cloud := cloudShape(localEntry("E1", base.Add(time.Second)))
	cloud.Notes = "B"

	_, err := engine.PerformSync(context.Background(),
		[]*models.LogbookEntry{local}, nil, []*models.CloudEntry{cloud}, nil)
	require.NoError(t, err)

	merged := storedEntry(t, store, "E1")

	// Feed the merged record back in as both sides.
	res, err := engine.PerformSync(context.Background(),
		[]*models.LogbookEntry{merged}, nil, []*models.CloudEntry{cloudShape(merged)}, nil)
	require.NoError(t, err)
	require.Zero(t, res.Conflicts.Entries)
	require.Equal(t, 1, store.SetCalls["logbook:E1"]) // no additional write
}

func TestPerformSync_TombstoneWinsWhenDeletionIsNewer(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	local := localEntry("E1", base)
	local.Notes = "still here"

	deletedAt := base.Add(time.Minute)
	cloudLocal := localEntry("E1", deletedAt)
	cloudLocal.DeletedAt = &deletedAt

	_, err := engine.PerformSync(context.Background(),
		[]*models.LogbookEntry{local}, nil, []*models.CloudEntry{cloudShape(cloudLocal)}, nil)
	require.NoError(t, err)

	got := storedEntry(t, store, "E1")
	require.NotNil(t, got.DeletedAt)
}

func TestPerformSync_NewerEditResurrectsTombstone(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	deletedAt := base
	local := localEntry("E1", base)
	local.DeletedAt = &deletedAt

	cloudLocal := localEntry("E1", base.Add(time.Minute))
	cloudLocal.Notes = "edited after delete"

	_, err := engine.PerformSync(context.Background(),
		[]*models.LogbookEntry{local}, nil, []*models.CloudEntry{cloudShape(cloudLocal)}, nil)
	require.NoError(t, err)

	got := storedEntry(t, store, "E1")
	require.Nil(t, got.DeletedAt)
	require.Equal(t, "edited after delete", got.Notes)
}

func TestPerformSync_StorageFailureAbortsPass(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	store.FailSet = errors.New("disk full")

	_, err := engine.PerformSync(context.Background(),
		[]*models.LogbookEntry{localEntry("E1", time.Now().UTC())}, nil, nil, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk full")
}

func TestPerformSync_InvalidRecordSkippedRestProcessed(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	now := time.Now().UTC()

	bad := localEntry("", now) // missing id
	good := localEntry("E2", now)

	res, err := engine.PerformSync(context.Background(),
		[]*models.LogbookEntry{bad, good}, nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, res.Skipped.Entries)
	require.Equal(t, 1, res.LocalToCloud.Entries)
	require.Equal(t, 1, store.SetCalls["logbook:E2"])
}

func TestPerformSync_MalformedCloudEnumSkippedNotPassedThrough(t *testing.T) {
	engine, store, _ := newTestEngine(t)

	cloud := &models.CloudEntry{
		ID:        "E9",
		UserID:    "u1",
		Timestamp: "2025-02-28T18:30:00Z",
		Type:      "NOODLING",
		CreatedAt: "2025-02-28T18:30:00Z",
		UpdatedAt: "2025-02-28T18:30:00Z",
	}

	res, err := engine.PerformSync(context.Background(), nil, nil,
		[]*models.CloudEntry{cloud}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, res.Skipped.Entries)
	require.Zero(t, store.SetCalls["logbook:E9"])
}

func TestPerformSync_GoalsProcessedAfterEntries(t *testing.T) {
	engine, _, bus := newTestEngine(t)
	now := time.Now().UTC()

	goal := &models.Goal{
		ID: "G1", UserID: "u1", Title: "trills",
		Status: models.GoalStatusActive, CreatedAt: now, UpdatedAt: now,
	}

	res, err := engine.PerformSync(context.Background(),
		[]*models.LogbookEntry{localEntry("E1", now)},
		[]*models.Goal{goal}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 1, res.LocalToCloud.Entries)
	require.Equal(t, 1, res.LocalToCloud.Goals)

	require.Len(t, bus.published, 2)
	require.Equal(t, events.TypeEntrySynced, bus.published[0].Type)
	require.Equal(t, events.TypeGoalSynced, bus.published[1].Type)
}

func TestPerformSync_GoalConflictMergesByRecency(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	local := &models.Goal{
		ID: "G1", UserID: "u1", Title: "memorize movement 1",
		Progress: 40, Status: models.GoalStatusActive,
		CreatedAt: base.Add(-time.Hour), UpdatedAt: base,
	}
	cloud := &models.CloudGoal{
		ID: "G1", UserID: "u1", Title: "memorize movement 1",
		Progress: 70, Status: "ACTIVE",
		CreatedAt: base.Add(-time.Hour).Format(time.RFC3339),
		UpdatedAt: base.Add(time.Minute).Format(time.RFC3339),
	}

	res, err := engine.PerformSync(context.Background(), nil,
		[]*models.Goal{local}, nil, []*models.CloudGoal{cloud})
	require.NoError(t, err)
	require.Equal(t, 1, res.Conflicts.Goals)

	raw, err := store.Get(context.Background(), GoalKeyPrefix+"G1")
	require.NoError(t, err)
	var got models.Goal
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Equal(t, 70, got.Progress)
}
