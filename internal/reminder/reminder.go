// Package reminder resolves task reminders to absolute fire times.
package reminder

import (
	"time"

	"github.com/DevishMittal/eljay-console/internal/model"
)

// FireTime returns when r fires for a task due at due. Offset reminders
// subtract their lead time from due; custom reminders fire at their own
// instant and are rejected when earlier than now. The returned value is
// always a new time; due is never modified.
func FireTime(due time.Time, r model.Reminder, now time.Time) (time.Time, error) {
	if at, ok := r.At(); ok {
		if at.Before(now) {
			return time.Time{}, model.ErrReminderInPast
		}
		return at, nil
	}
	o, ok := r.Offset()
	if !ok {
		return time.Time{}, model.ErrNoReminder
	}
	if !o.Valid() {
		return time.Time{}, &model.ValidationError{Field: "reminder", Message: "unsupported reminder offset " + o.String()}
	}
	if due.IsZero() {
		return time.Time{}, model.ErrDueDateRequired
	}
	return due.Add(-o.Duration()), nil
}

// Scheduler resolves fire times against an injected clock.
type Scheduler struct {
	Now func() time.Time
}

// NewScheduler returns a Scheduler using now, or time.Now when nil.
func NewScheduler(now func() time.Time) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{Now: now}
}

// FireTime is FireTime evaluated at the scheduler's current time.
func (s *Scheduler) FireTime(due time.Time, r model.Reminder) (time.Time, error) {
	return FireTime(due, r, s.Now())
}
