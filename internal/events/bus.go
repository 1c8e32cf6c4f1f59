// Package events provides the in-process event bus the sync engine publishes
// synced-entity notifications on. Consumers (UI, analytics) subscribe by
// event type; dispatch is synchronous and in subscription order.
package events

import (
	"context"
	"sync"
)

// Event types published by the sync engine.
const (
	TypeEntrySynced = "logger:entry:synced"
	TypeGoalSynced  = "logger:goal:synced"
)

// Event is a typed notification with an entity payload.
type Event struct {
	Type string
	Data any
}

// Publisher is the capability the sync engine needs: fire one event per
// synced entity. It is injected, never reached through a global.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Handler consumes one event.
type Handler func(ctx context.Context, e Event)

// Bus is a minimal synchronous publish/subscribe bus.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

// Publish dispatches e to every handler subscribed to its type, in the order
// they subscribed.
func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	hs := b.handlers[e.Type]
	b.mu.RUnlock()
	for _, h := range hs {
		h(ctx, e)
	}
}
