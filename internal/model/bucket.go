package model

import (
	"fmt"
	"strings"
	"time"
)

// BucketKind is a derived classification of a task by due date relative
// to a reference time.
type BucketKind string

const (
	BucketOverdue  BucketKind = "overdue"
	BucketToday    BucketKind = "today"
	BucketTomorrow BucketKind = "tomorrow"
	BucketUpcoming BucketKind = "upcoming"
)

// Buckets lists every bucket in display order.
var Buckets = []BucketKind{BucketOverdue, BucketToday, BucketTomorrow, BucketUpcoming}

// Valid reports whether b is a known bucket.
func (b BucketKind) Valid() bool {
	switch b {
	case BucketOverdue, BucketToday, BucketTomorrow, BucketUpcoming:
		return true
	}
	return false
}

// ParseBucket parses a bucket name, case-insensitively.
func ParseBucket(s string) (BucketKind, error) {
	b := BucketKind(strings.ToLower(strings.TrimSpace(s)))
	if !b.Valid() {
		return "", &ValidationError{Field: "bucket", Message: fmt.Sprintf("unknown bucket %q", s)}
	}
	return b, nil
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// BucketOf classifies a due date against ref. The due date's own calendar
// day is compared with ref's calendar day in ref's location, so the
// time-of-day and zone of the stored due date never shift the bucket.
func BucketOf(due, ref time.Time) BucketKind {
	today := StartOfDay(ref)
	y, m, d := due.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, ref.Location())

	switch tomorrow := today.AddDate(0, 0, 1); {
	case day.Before(today):
		return BucketOverdue
	case day.Equal(today):
		return BucketToday
	case day.Equal(tomorrow):
		return BucketTomorrow
	default:
		return BucketUpcoming
	}
}

// BucketProgress is the completed/total counter shown beside a bucket.
type BucketProgress struct {
	Bucket    BucketKind `json:"bucket"`
	Completed int        `json:"completed"`
	Total     int        `json:"total"`
}

// BucketTasks is one bucket's ordered tasks together with its progress,
// both taken from the same view of the store.
type BucketTasks struct {
	Bucket    BucketKind `json:"bucket"`
	Tasks     []Task     `json:"tasks"`
	Completed int        `json:"completed"`
	Total     int        `json:"total"`
}
