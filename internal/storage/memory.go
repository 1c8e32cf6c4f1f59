package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mirubato/mirubato/internal/common"
)

type memoryItem struct {
	value     []byte
	expiresAt time.Time // zero = no expiry
}

// MemoryStore is an in-memory Store used in tests and as a scratch store.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	clock func() time.Time

	// SetCalls counts Set invocations per key, so tests can assert writes
	// happen exactly once per id per sync pass.
	SetCalls map[string]int

	// FailSet, when non-nil, is returned by every Set call.
	FailSet error
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:    make(map[string]memoryItem),
		clock:    time.Now,
		SetCalls: make(map[string]int),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[key]
	if !ok {
		return nil, fmt.Errorf("%w: key %q", common.ErrNotFound, key)
	}
	if !item.expiresAt.IsZero() && !s.clock().Before(item.expiresAt) {
		return nil, fmt.Errorf("%w: key %q expired", common.ErrNotFound, key)
	}
	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SetCalls[key]++
	if s.FailSet != nil {
		return s.FailSet
	}
	item := memoryItem{value: append([]byte(nil), value...)}
	if ttl > 0 {
		item.expiresAt = s.clock().Add(ttl)
	}
	s.items[key] = item
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

func (s *MemoryStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.clock()
	var keys []string
	for k, item := range s.items {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if !item.expiresAt.IsZero() && !now.Before(item.expiresAt) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
