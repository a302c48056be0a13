package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ReminderOffset is a fixed lead time before a task's due date.
type ReminderOffset int

const (
	Offset5Minutes ReminderOffset = iota + 1
	Offset15Minutes
	Offset30Minutes
	Offset1Hour
	Offset2Hours
	Offset1Day
)

var offsetDurations = map[ReminderOffset]time.Duration{
	Offset5Minutes:  5 * time.Minute,
	Offset15Minutes: 15 * time.Minute,
	Offset30Minutes: 30 * time.Minute,
	Offset1Hour:     time.Hour,
	Offset2Hours:    2 * time.Hour,
	Offset1Day:      24 * time.Hour,
}

var offsetLabels = map[ReminderOffset]string{
	Offset5Minutes:  "5min",
	Offset15Minutes: "15min",
	Offset30Minutes: "30min",
	Offset1Hour:     "1hour",
	Offset2Hours:    "2hours",
	Offset1Day:      "1day",
}

// CustomReminderLabel is the wire label of an absolute reminder.
const CustomReminderLabel = "custom"

// Duration returns the lead time, or zero for an unknown offset.
func (o ReminderOffset) Duration() time.Duration {
	return offsetDurations[o]
}

func (o ReminderOffset) String() string {
	if l, ok := offsetLabels[o]; ok {
		return l
	}
	return fmt.Sprintf("ReminderOffset(%d)", int(o))
}

// Valid reports whether o is one of the supported offsets.
func (o ReminderOffset) Valid() bool {
	_, ok := offsetDurations[o]
	return ok
}

// ParseReminderOffset maps a wire label such as "15min" to its offset.
func ParseReminderOffset(label string) (ReminderOffset, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	for o, l := range offsetLabels {
		if l == label {
			return o, nil
		}
	}
	return 0, &ValidationError{Field: "reminder", Message: fmt.Sprintf("unknown reminder option %q", label)}
}

// Reminder is either an offset before the due date or an absolute time.
// The zero value means no reminder. Construct with ReminderBefore or
// CustomReminder.
type Reminder struct {
	offset ReminderOffset
	at     time.Time
	custom bool
}

// ReminderBefore returns a reminder firing o before the due date.
func ReminderBefore(o ReminderOffset) Reminder {
	return Reminder{offset: o}
}

// CustomReminder returns a reminder firing at an absolute instant.
func CustomReminder(at time.Time) Reminder {
	return Reminder{at: at, custom: true}
}

// IsZero reports whether no reminder is set.
func (r Reminder) IsZero() bool {
	return !r.custom && r.offset == 0
}

// Offset returns the offset and true for an offset reminder.
func (r Reminder) Offset() (ReminderOffset, bool) {
	if r.custom || r.offset == 0 {
		return 0, false
	}
	return r.offset, true
}

// At returns the absolute instant and true for a custom reminder.
func (r Reminder) At() (time.Time, bool) {
	return r.at, r.custom
}

// Label returns the wire label ("15min", "custom", or "" when unset).
func (r Reminder) Label() string {
	switch {
	case r.custom:
		return CustomReminderLabel
	case r.offset != 0:
		return r.offset.String()
	}
	return ""
}

// ParseReminder builds a Reminder from a wire label plus, for "custom",
// the absolute instant. An empty label or "none" yields the zero Reminder.
func ParseReminder(label string, at *time.Time) (Reminder, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	switch label {
	case "", "none":
		return Reminder{}, nil
	case CustomReminderLabel:
		if at == nil || at.IsZero() {
			return Reminder{}, &ValidationError{Field: "reminder_at", Message: "custom reminder requires a time"}
		}
		return CustomReminder(*at), nil
	}
	o, err := ParseReminderOffset(label)
	if err != nil {
		return Reminder{}, err
	}
	return ReminderBefore(o), nil
}

type reminderJSON struct {
	Kind string     `json:"kind"`
	At   *time.Time `json:"at,omitempty"`
}

// MarshalJSON encodes the reminder as {"kind": ..., "at": ...} or null.
func (r Reminder) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	out := reminderJSON{Kind: r.Label()}
	if r.custom {
		at := r.at
		out.At = &at
	}
	return json.Marshal(out)
}
