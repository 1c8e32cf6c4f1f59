package records

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mirubato/mirubato/internal/common"
	"github.com/mirubato/mirubato/internal/models"
)

// MemoryRepository is an in-memory Repository used by runner tests. It
// counts mutations so dry-run behavior can be asserted.
type MemoryRepository struct {
	mu   sync.Mutex
	rows map[string]*models.SyncRecord

	// UpdateCalls and DeleteCalls count issued mutations.
	UpdateCalls int
	DeleteCalls int

	// FailUpdate, when non-nil, is returned by every Update call.
	FailUpdate error
}

// NewMemoryRepository returns a repository seeded with the given records.
func NewMemoryRepository(seed ...*models.SyncRecord) *MemoryRepository {
	rows := make(map[string]*models.SyncRecord, len(seed))
	for _, rec := range seed {
		cp := *rec
		rows[rec.ID] = &cp
	}
	return &MemoryRepository{rows: rows}
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID string) ([]*models.SyncRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.SyncRecord
	for _, rec := range r.rows {
		if rec.UserID == userID {
			cp := *rec
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *MemoryRepository) Update(ctx context.Context, rec *models.SyncRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.UpdateCalls++
	if r.FailUpdate != nil {
		return r.FailUpdate
	}
	if _, ok := r.rows[rec.ID]; !ok {
		return fmt.Errorf("%w: sync record %s", common.ErrNotFound, rec.ID)
	}
	cp := *rec
	r.rows[rec.ID] = &cp
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.DeleteCalls++
	if _, ok := r.rows[id]; !ok {
		return fmt.Errorf("%w: sync record %s", common.ErrNotFound, id)
	}
	delete(r.rows, id)
	return nil
}

// Get returns a copy of one row, for test assertions.
func (r *MemoryRepository) Get(id string) (*models.SyncRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rows[id]
	if !ok {
		return nil, false
	}
	cp := *rec
	return &cp, true
}
