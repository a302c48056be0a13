package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketOf(t *testing.T) {
	ref := time.Date(2025, 1, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		due  time.Time
		want BucketKind
	}{
		{"yesterday", time.Date(2025, 1, 9, 23, 59, 0, 0, time.UTC), BucketOverdue},
		{"long ago", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), BucketOverdue},
		{"today early", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), BucketToday},
		{"today later than ref", time.Date(2025, 1, 10, 23, 0, 0, 0, time.UTC), BucketToday},
		{"tomorrow", time.Date(2025, 1, 11, 8, 0, 0, 0, time.UTC), BucketTomorrow},
		{"day after", time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC), BucketUpcoming},
		{"across month", time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), BucketUpcoming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BucketOf(tt.due, ref))
		})
	}
}

func TestBucketOf_UsesDueCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	ref := time.Date(2025, 1, 10, 20, 0, 0, 0, loc)
	// A date-only due date stored in UTC keeps its calendar day.
	due := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, BucketToday, BucketOf(due, ref))
}

func TestBucketOf_MonthEnd(t *testing.T) {
	ref := time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, BucketTomorrow, BucketOf(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), ref))
}

func TestParseBucket(t *testing.T) {
	b, err := ParseBucket(" Today ")
	require.NoError(t, err)
	assert.Equal(t, BucketToday, b)

	_, err = ParseBucket("someday")
	assert.True(t, IsValidation(err))
}

func TestParseReminder(t *testing.T) {
	at := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	r, err := ParseReminder("", nil)
	require.NoError(t, err)
	assert.True(t, r.IsZero())

	r, err = ParseReminder("30min", nil)
	require.NoError(t, err)
	o, ok := r.Offset()
	require.True(t, ok)
	assert.Equal(t, Offset30Minutes, o)
	assert.Equal(t, 30*time.Minute, o.Duration())
	assert.Equal(t, "30min", r.Label())

	r, err = ParseReminder("custom", &at)
	require.NoError(t, err)
	got, ok := r.At()
	require.True(t, ok)
	assert.Equal(t, at, got)
	_, ok = r.Offset()
	assert.False(t, ok)

	_, err = ParseReminder("custom", nil)
	assert.True(t, IsValidation(err))

	_, err = ParseReminder("3weeks", nil)
	assert.True(t, IsValidation(err))
}

func TestReminder_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Reminder{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	b, err = json.Marshal(ReminderBefore(Offset1Day))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"1day"}`, string(b))

	at := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	b, err = json.Marshal(CustomReminder(at))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"custom","at":"2025-01-10T09:00:00Z"}`, string(b))
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("HIGH")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)
	assert.True(t, PriorityHigh > PriorityMedium && PriorityMedium > PriorityLow)

	_, err = ParsePriority("urgent")
	assert.True(t, IsValidation(err))
}

func TestCreateTaskRequest_ToSpec(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := CreateTaskRequest{
			Title:    "Calibrate audiometer",
			Priority: "high",
			TaskType: "equipment",
			DueDate:  "2025-01-10",
			Reminder: "1hour",
		}
		spec, err := req.ToSpec(time.UTC)
		require.NoError(t, err)
		assert.Equal(t, "Calibrate audiometer", spec.Title)
		assert.Equal(t, PriorityHigh, spec.Priority)
		assert.Equal(t, TaskTypeEquipment, spec.Type)
		assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), spec.DueDate)
		o, ok := spec.Reminder.Offset()
		require.True(t, ok)
		assert.Equal(t, Offset1Hour, o)
	})

	t.Run("missing title", func(t *testing.T) {
		req := CreateTaskRequest{Title: "  ", DueDate: "2025-01-10"}
		_, err := req.ToSpec(time.UTC)
		assert.True(t, errors.Is(err, ErrTitleRequired))
	})

	t.Run("missing due date", func(t *testing.T) {
		req := CreateTaskRequest{Title: "x"}
		_, err := req.ToSpec(time.UTC)
		assert.True(t, errors.Is(err, ErrDueDateRequired))
	})

	t.Run("bad date", func(t *testing.T) {
		req := CreateTaskRequest{Title: "x", DueDate: "10/01/2025"}
		_, err := req.ToSpec(time.UTC)
		assert.True(t, IsValidation(err))
	})

	t.Run("rfc3339 date", func(t *testing.T) {
		req := CreateTaskRequest{Title: "x", DueDate: "2025-01-10T10:00:00Z"}
		spec, err := req.ToSpec(time.UTC)
		require.NoError(t, err)
		assert.Equal(t, 10, spec.DueDate.Hour())
	})
}

func TestUpdateTaskRequest_ToPatch(t *testing.T) {
	title := "New title"
	prio := "low"
	none := "none"
	req := UpdateTaskRequest{Title: &title, Priority: &prio, Reminder: &none}

	patch, err := req.ToPatch(time.UTC)
	require.NoError(t, err)
	require.NotNil(t, patch.Title)
	assert.Equal(t, "New title", *patch.Title)
	require.NotNil(t, patch.Priority)
	assert.Equal(t, PriorityLow, *patch.Priority)
	assert.True(t, patch.ClearReminder)
	assert.Nil(t, patch.Reminder)
	assert.Nil(t, patch.DueDate)
}

func TestNotFoundError_Is(t *testing.T) {
	err := error(&NotFoundError{ID: "abc"})
	assert.True(t, errors.Is(err, ErrTaskNotFound))
	assert.Equal(t, "task abc not found", err.Error())
}

func TestNotification_Clone(t *testing.T) {
	n := Notification{Type: NotificationLowStock, Metadata: map[string]int{"count": 2}}
	c := n.Clone()
	c.Metadata["count"] = 5
	assert.Equal(t, 2, n.Metadata["count"])
}

func TestPriority_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		P Priority `json:"p"`
	}{PriorityMedium})
	require.NoError(t, err)
	assert.JSONEq(t, `{"p":"medium"}`, string(b))

	var out struct {
		P Priority `json:"p"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"p":"high"}`), &out))
	assert.Equal(t, PriorityHigh, out.P)
	assert.Error(t, json.Unmarshal([]byte(`{"p":"urgent"}`), &out))
}
