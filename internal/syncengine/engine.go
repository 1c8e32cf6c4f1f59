// Package syncengine reconciles one user's local logbook entries and goals
// with the cloud's view of them. Records present on one side only are staged
// for the other side; records present on both sides are compared and, when
// they diverge, merged field by field with the most recently updated side
// winning. Merged state is persisted to local storage and announced on the
// event bus.
//
// PerformSync must not be invoked concurrently for the same user; the engine
// does no internal locking. That is a caller contract.
package syncengine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mirubato/mirubato/internal/events"
	"github.com/mirubato/mirubato/internal/logging"
	"github.com/mirubato/mirubato/internal/models"
	"github.com/mirubato/mirubato/internal/storage"
)

// Storage key prefixes for synced entities.
const (
	EntryKeyPrefix = "logbook:"
	GoalKeyPrefix  = "goal:"
)

// Counts holds per-collection totals for one sync direction.
type Counts struct {
	Entries int `json:"entries"`
	Goals   int `json:"goals"`
}

// Result summarizes one sync pass.
type Result struct {
	// LocalToCloud counts records that exist locally but not in the cloud
	// and are staged for upload.
	LocalToCloud Counts `json:"localToCloud"`

	// CloudToLocal counts records that existed only in the cloud and were
	// persisted locally after normalization.
	CloudToLocal Counts `json:"cloudToLocal"`

	// Conflicts counts records present on both sides whose contents
	// diverged and were merged.
	Conflicts Counts `json:"conflicts"`

	// Skipped counts records rejected by validation (missing id, unknown
	// enum value, malformed timestamp). They are logged and left untouched.
	Skipped Counts `json:"skipped"`
}

// Engine performs the reconciliation pass. All collaborators are injected.
type Engine struct {
	store storage.Store
	bus   events.Publisher
	log   logging.Logger
}

// New constructs an Engine.
func New(store storage.Store, bus events.Publisher, log logging.Logger) *Engine {
	return &Engine{store: store, bus: bus, log: log}
}

// PerformSync reconciles the four collections and returns the pass totals.
// Entries are processed before goals. Within a collection, writes for a
// given id happen at most once. Storage failures abort the pass; partial
// writes already issued are kept (callers needing all-or-nothing semantics
// must snapshot storage first).
func (e *Engine) PerformSync(
	ctx context.Context,
	localEntries []*models.LogbookEntry,
	localGoals []*models.Goal,
	cloudEntries []*models.CloudEntry,
	cloudGoals []*models.CloudGoal,
) (*Result, error) {
	res := &Result{}

	if err := e.syncEntries(ctx, localEntries, cloudEntries, res); err != nil {
		return nil, fmt.Errorf("syncing entries: %w", err)
	}
	if err := e.syncGoals(ctx, localGoals, cloudGoals, res); err != nil {
		return nil, fmt.Errorf("syncing goals: %w", err)
	}

	e.log.Info(ctx, "sync pass finished",
		"local_to_cloud_entries", res.LocalToCloud.Entries,
		"cloud_to_local_entries", res.CloudToLocal.Entries,
		"entry_conflicts", res.Conflicts.Entries,
		"local_to_cloud_goals", res.LocalToCloud.Goals,
		"cloud_to_local_goals", res.CloudToLocal.Goals,
		"goal_conflicts", res.Conflicts.Goals,
	)
	return res, nil
}

func (e *Engine) syncEntries(ctx context.Context, local []*models.LogbookEntry, cloud []*models.CloudEntry, res *Result) error {
	localByID := make(map[string]*models.LogbookEntry, len(local))
	var localOrder []string
	for _, le := range local {
		if err := le.Validate(); err != nil {
			e.log.Warn(ctx, "skipping invalid local entry", "error", err)
			res.Skipped.Entries++
			continue
		}
		entry := normalizeEntry(le)
		if _, dup := localByID[entry.ID]; !dup {
			localOrder = append(localOrder, entry.ID)
		}
		localByID[entry.ID] = entry
	}

	cloudByID := make(map[string]*models.LogbookEntry, len(cloud))
	var cloudOrder []string
	for _, ce := range cloud {
		if ce.ID == "" {
			e.log.Warn(ctx, "skipping cloud entry without id")
			res.Skipped.Entries++
			continue
		}
		entry, err := ce.ToLocal()
		if err != nil {
			e.log.Warn(ctx, "skipping malformed cloud entry", "error", err)
			res.Skipped.Entries++
			continue
		}
		if _, dup := cloudByID[entry.ID]; !dup {
			cloudOrder = append(cloudOrder, entry.ID)
		}
		cloudByID[entry.ID] = entry
	}

	var synced []*models.LogbookEntry

	// Local-only: stage for upload, persist unchanged.
	for _, id := range localOrder {
		if _, ok := cloudByID[id]; ok {
			continue
		}
		if err := e.persist(ctx, EntryKeyPrefix+id, localByID[id]); err != nil {
			return err
		}
		res.LocalToCloud.Entries++
		synced = append(synced, localByID[id])
	}

	// Cloud-only: persist the normalized representation locally.
	for _, id := range cloudOrder {
		if _, ok := localByID[id]; ok {
			continue
		}
		if err := e.persist(ctx, EntryKeyPrefix+id, cloudByID[id]); err != nil {
			return err
		}
		res.CloudToLocal.Entries++
		synced = append(synced, cloudByID[id])
	}

	// Present on both sides: conflict candidates.
	for _, id := range localOrder {
		ce, ok := cloudByID[id]
		if !ok {
			continue
		}
		le := localByID[id]
		if equalContent(le, ce) {
			continue
		}
		merged := mergeEntries(le, ce)
		if err := e.persist(ctx, EntryKeyPrefix+id, merged); err != nil {
			return err
		}
		res.Conflicts.Entries++
		synced = append(synced, merged)
	}

	for _, entry := range synced {
		e.bus.Publish(ctx, events.Event{Type: events.TypeEntrySynced, Data: entry})
	}
	return nil
}

func (e *Engine) syncGoals(ctx context.Context, local []*models.Goal, cloud []*models.CloudGoal, res *Result) error {
	localByID := make(map[string]*models.Goal, len(local))
	var localOrder []string
	for _, lg := range local {
		if err := lg.Validate(); err != nil {
			e.log.Warn(ctx, "skipping invalid local goal", "error", err)
			res.Skipped.Goals++
			continue
		}
		goal := normalizeGoal(lg)
		if _, dup := localByID[goal.ID]; !dup {
			localOrder = append(localOrder, goal.ID)
		}
		localByID[goal.ID] = goal
	}

	cloudByID := make(map[string]*models.Goal, len(cloud))
	var cloudOrder []string
	for _, cg := range cloud {
		if cg.ID == "" {
			e.log.Warn(ctx, "skipping cloud goal without id")
			res.Skipped.Goals++
			continue
		}
		goal, err := cg.ToLocal()
		if err != nil {
			e.log.Warn(ctx, "skipping malformed cloud goal", "error", err)
			res.Skipped.Goals++
			continue
		}
		if _, dup := cloudByID[goal.ID]; !dup {
			cloudOrder = append(cloudOrder, goal.ID)
		}
		cloudByID[goal.ID] = goal
	}

	var synced []*models.Goal

	for _, id := range localOrder {
		if _, ok := cloudByID[id]; ok {
			continue
		}
		if err := e.persist(ctx, GoalKeyPrefix+id, localByID[id]); err != nil {
			return err
		}
		res.LocalToCloud.Goals++
		synced = append(synced, localByID[id])
	}

	for _, id := range cloudOrder {
		if _, ok := localByID[id]; ok {
			continue
		}
		if err := e.persist(ctx, GoalKeyPrefix+id, cloudByID[id]); err != nil {
			return err
		}
		res.CloudToLocal.Goals++
		synced = append(synced, cloudByID[id])
	}

	for _, id := range localOrder {
		cg, ok := cloudByID[id]
		if !ok {
			continue
		}
		lg := localByID[id]
		if equalContent(lg, cg) {
			continue
		}
		merged := mergeGoals(lg, cg)
		if err := e.persist(ctx, GoalKeyPrefix+id, merged); err != nil {
			return err
		}
		res.Conflicts.Goals++
		synced = append(synced, merged)
	}

	for _, goal := range synced {
		e.bus.Publish(ctx, events.Event{Type: events.TypeGoalSynced, Data: goal})
	}
	return nil
}

func (e *Engine) persist(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}
	if err := e.store.Set(ctx, key, data, 0); err != nil {
		return fmt.Errorf("persisting %s: %w", key, err)
	}
	return nil
}

// equalContent reports whether two records serialize identically after
// normalization. Serialized JSON keeps field order stable, so this is a
// byte-for-byte comparison.
func equalContent(a, b any) bool {
	aj, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bj, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(aj) == string(bj)
}

// normalizeEntry returns a copy of le with all timestamps in UTC, so that
// equal instants recorded in different zones compare equal.
func normalizeEntry(le *models.LogbookEntry) *models.LogbookEntry {
	e := *le
	e.Timestamp = e.Timestamp.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	e.DeletedAt = utcPtr(e.DeletedAt)
	return &e
}

func normalizeGoal(lg *models.Goal) *models.Goal {
	g := *lg
	g.CreatedAt = g.CreatedAt.UTC()
	g.UpdatedAt = g.UpdatedAt.UTC()
	g.TargetDate = utcPtr(g.TargetDate)
	g.CompletedAt = utcPtr(g.CompletedAt)
	g.DeletedAt = utcPtr(g.DeletedAt)
	return &g
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
