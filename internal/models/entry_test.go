package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mirubato/mirubato/internal/common"
)

func TestParseEntryType_CaseInsensitive(t *testing.T) {
	tests := []struct {
		in   string
		want EntryType
	}{
		{"practice", EntryTypePractice},
		{"PRACTICE", EntryTypePractice},
		{" Performance ", EntryTypePerformance},
		{"LESSON", EntryTypeLesson},
		{"rehearsal", EntryTypeRehearsal},
	}
	for _, tc := range tests {
		got, err := ParseEntryType(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got)
	}
}

func TestParseEntryType_RejectsUnknown(t *testing.T) {
	_, err := ParseEntryType("JAM_SESSION")
	require.ErrorIs(t, err, common.ErrUnknownEnumValue)
}

func TestParseMood_EmptyIsValid(t *testing.T) {
	m, err := ParseMood("")
	require.NoError(t, err)
	require.Equal(t, Mood(""), m)

	m, err = ParseMood("FRUSTRATED")
	require.NoError(t, err)
	require.Equal(t, MoodFrustrated, m)

	_, err = ParseMood("ecstatic")
	require.ErrorIs(t, err, common.ErrUnknownEnumValue)
}

func TestLogbookEntry_Validate(t *testing.T) {
	now := time.Now().UTC()

	ok := LogbookEntry{ID: "e1", UserID: "u1", Type: EntryTypePractice, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, ok.Validate())

	noID := ok
	noID.ID = ""
	require.ErrorIs(t, noID.Validate(), common.ErrValidation)

	negative := ok
	negative.Duration = -5
	require.ErrorIs(t, negative.Validate(), common.ErrValidation)

	backwards := ok
	backwards.UpdatedAt = now.Add(-time.Hour)
	require.ErrorIs(t, backwards.Validate(), common.ErrValidation)
}

func TestGoal_Validate(t *testing.T) {
	now := time.Now().UTC()

	ok := Goal{ID: "g1", UserID: "u1", Title: "trills", Status: GoalStatusActive, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, ok.Validate())

	outOfRange := ok
	outOfRange.Progress = 120
	require.ErrorIs(t, outOfRange.Validate(), common.ErrValidation)

	completed := ok
	completed.Status = GoalStatusCompleted
	require.ErrorIs(t, completed.Validate(), common.ErrValidation)

	completed.CompletedAt = &now
	require.NoError(t, completed.Validate())
}

func TestSyncRecord_ChecksumFollowsData(t *testing.T) {
	r := SyncRecord{ID: "r1", UserID: "u1", EntityType: EntityTypeLogbook, EntityID: "e1"}
	r.SetData(`{"id":"e1"}`)
	first := r.Checksum
	require.NotEmpty(t, first)
	require.Equal(t, ComputeChecksum(`{"id":"e1"}`), first)

	r.SetData(`{"id":"e1","notes":"x"}`)
	require.NotEqual(t, first, r.Checksum)
}

func TestSyncRecord_DecodeEntry_WrongKind(t *testing.T) {
	r := SyncRecord{ID: "r1", EntityType: EntityTypeRepertoire}
	_, err := r.DecodeEntry()
	require.ErrorIs(t, err, common.ErrValidation)
}
