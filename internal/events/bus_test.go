package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBus_PublishReachesSubscribersInOrder(t *testing.T) {
	bus := NewBus()
	var got []string

	bus.Subscribe(TypeEntrySynced, func(ctx context.Context, e Event) {
		got = append(got, "first:"+e.Data.(string))
	})
	bus.Subscribe(TypeEntrySynced, func(ctx context.Context, e Event) {
		got = append(got, "second:"+e.Data.(string))
	})

	bus.Publish(context.Background(), Event{Type: TypeEntrySynced, Data: "e1"})
	require.Equal(t, []string{"first:e1", "second:e1"}, got)
}

func TestBus_PublishIgnoresUnrelatedTypes(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.Subscribe(TypeGoalSynced, func(ctx context.Context, e Event) { calls++ })

	bus.Publish(context.Background(), Event{Type: TypeEntrySynced, Data: "e1"})
	require.Zero(t, calls)

	bus.Publish(context.Background(), Event{Type: TypeGoalSynced, Data: "g1"})
	require.Equal(t, 1, calls)
}
