package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mirubato/mirubato/internal/common"
)

func TestCloudEntry_ToLocal_NormalizesEnumsAndTimes(t *testing.T) {
	deleted := "2025-03-01T10:00:00Z"
	c := CloudEntry{
		ID:         "e1",
		UserID:     "u1",
		Timestamp:  "2025-02-28T18:30:00Z",
		Duration:   1800,
		Type:       "PRACTICE",
		Instrument: "PIANO",
		Mood:       "FRUSTRATED",
		CreatedAt:  "2025-02-28T18:30:05Z",
		UpdatedAt:  "2025-02-28T19:00:00Z",
		DeletedAt:  &deleted,
	}

	e, err := c.ToLocal()
	require.NoError(t, err)
	require.Equal(t, EntryTypePractice, e.Type)
	require.Equal(t, MoodFrustrated, e.Mood)
	require.Equal(t, "piano", e.Instrument)
	require.Equal(t, time.Date(2025, 2, 28, 18, 30, 0, 0, time.UTC), e.Timestamp)
	require.NotNil(t, e.DeletedAt)
	require.Equal(t, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), *e.DeletedAt)
}

func TestCloudEntry_ToLocal_FailsClosedOnUnknownEnum(t *testing.T) {
	c := CloudEntry{
		ID:        "e1",
		Timestamp: "2025-02-28T18:30:00Z",
		Type:      "WOODSHEDDING",
		CreatedAt: "2025-02-28T18:30:00Z",
		UpdatedAt: "2025-02-28T18:30:00Z",
	}
	_, err := c.ToLocal()
	require.ErrorIs(t, err, common.ErrUnknownEnumValue)
}

func TestCloudEntry_ToLocal_RejectsBadTimestamp(t *testing.T) {
	c := CloudEntry{
		ID:        "e1",
		Timestamp: "yesterday",
		Type:      "PRACTICE",
		CreatedAt: "2025-02-28T18:30:00Z",
		UpdatedAt: "2025-02-28T18:30:00Z",
	}
	_, err := c.ToLocal()
	require.Error(t, err)
}

func TestCloudGoal_ToLocal_NormalizesStatus(t *testing.T) {
	c := CloudGoal{
		ID:        "g1",
		UserID:    "u1",
		Title:     "memorize op. 10 no. 1",
		Status:    "ACTIVE",
		Progress:  40,
		CreatedAt: "2025-01-01T00:00:00Z",
		UpdatedAt: "2025-02-01T00:00:00Z",
	}
	g, err := c.ToLocal()
	require.NoError(t, err)
	require.Equal(t, GoalStatusActive, g.Status)
	require.Nil(t, g.CompletedAt)

	c.Status = "ON_HOLD"
	_, err = c.ToLocal()
	require.ErrorIs(t, err, common.ErrUnknownEnumValue)
}
