package reminder

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevishMittal/eljay-console/internal/model"
)

func TestFireTime_Offsets(t *testing.T) {
	due := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		offset model.ReminderOffset
		want   time.Time
	}{
		{model.Offset5Minutes, time.Date(2025, 1, 10, 9, 55, 0, 0, time.UTC)},
		{model.Offset15Minutes, time.Date(2025, 1, 10, 9, 45, 0, 0, time.UTC)},
		{model.Offset30Minutes, time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)},
		{model.Offset1Hour, time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)},
		{model.Offset2Hours, time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)},
		{model.Offset1Day, time.Date(2025, 1, 9, 10, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.offset.String(), func(t *testing.T) {
			got, err := FireTime(due, model.ReminderBefore(tt.offset), now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}

	assert.Equal(t, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), due, "due date must not be modified")
}

func TestFireTime_OffsetIgnoresNow(t *testing.T) {
	due := time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
	now := due.Add(time.Hour)

	got, err := FireTime(due, model.ReminderBefore(model.Offset15Minutes), now)
	require.NoError(t, err)
	assert.Equal(t, due.Add(-15*time.Minute), got)
}

func TestFireTime_Custom(t *testing.T) {
	now := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)
	due := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	t.Run("future", func(t *testing.T) {
		at := now.Add(48 * time.Hour)
		got, err := FireTime(due, model.CustomReminder(at), now)
		require.NoError(t, err)
		assert.Equal(t, at, got)
	})

	t.Run("exactly now", func(t *testing.T) {
		got, err := FireTime(due, model.CustomReminder(now), now)
		require.NoError(t, err)
		assert.Equal(t, now, got)
	})

	t.Run("past", func(t *testing.T) {
		_, err := FireTime(due, model.CustomReminder(now.Add(-time.Minute)), now)
		require.Error(t, err)
		assert.True(t, errors.Is(err, model.ErrReminderInPast))
		assert.True(t, model.IsValidation(err))
	})

	t.Run("past regardless of due", func(t *testing.T) {
		_, err := FireTime(time.Time{}, model.CustomReminder(now.Add(-time.Hour)), now)
		assert.True(t, model.IsValidation(err))
	})
}

func TestFireTime_NoReminder(t *testing.T) {
	_, err := FireTime(time.Now(), model.Reminder{}, time.Now())
	assert.ErrorIs(t, err, model.ErrNoReminder)
}

func TestFireTime_UnsupportedOffset(t *testing.T) {
	_, err := FireTime(time.Now(), model.ReminderBefore(model.ReminderOffset(99)), time.Now())
	assert.True(t, model.IsValidation(err))
}

func TestScheduler_UsesClock(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewScheduler(func() time.Time { return now })

	_, err := s.FireTime(now, model.CustomReminder(now.Add(-time.Second)))
	assert.ErrorIs(t, err, model.ErrReminderInPast)

	got, err := s.FireTime(now, model.CustomReminder(now.Add(time.Second)))
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Second), got)
}
