package model

import (
	"fmt"
	"strings"
	"time"
)

// Priority orders tasks and notifications; higher values sort first.
type Priority int

const (
	PriorityLow Priority = iota + 1
	PriorityMedium
	PriorityHigh
)

var priorityNames = map[Priority]string{
	PriorityLow:    "low",
	PriorityMedium: "medium",
	PriorityHigh:   "high",
}

func (p Priority) String() string {
	if n, ok := priorityNames[p]; ok {
		return n
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// Valid reports whether p is Low, Medium or High.
func (p Priority) Valid() bool {
	_, ok := priorityNames[p]
	return ok
}

// MarshalText encodes the priority by name.
func (p Priority) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid priority %d", int(p))
	}
	return []byte(priorityNames[p]), nil
}

// UnmarshalText decodes a priority name.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePriority parses "low", "medium" or "high".
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, n := range priorityNames {
		if n == s {
			return p, nil
		}
	}
	return 0, &ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", s)}
}

// TaskType is the clinic's task category.
type TaskType string

const (
	TaskTypeGeneral        TaskType = "general"
	TaskTypePatientCare    TaskType = "patient_care"
	TaskTypeAdministrative TaskType = "administrative"
	TaskTypeEquipment      TaskType = "equipment"
	TaskTypeTraining       TaskType = "training"
	TaskTypeFollowUp       TaskType = "follow_up"
)

// Valid reports whether t is a known category.
func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeGeneral, TaskTypePatientCare, TaskTypeAdministrative,
		TaskTypeEquipment, TaskTypeTraining, TaskTypeFollowUp:
		return true
	}
	return false
}

// Task represents a user-created clinic task. Bucket membership is never
// stored; it is derived from DueDate at query time.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	Type        TaskType  `json:"task_type"`
	DueDate     time.Time `json:"due_date"`
	Completed   bool      `json:"completed"`
	Reminder    Reminder  `json:"reminder"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskSpec is the input for creating a task.
type TaskSpec struct {
	Title       string
	Description string
	Priority    Priority
	Type        TaskType
	DueDate     time.Time
	Reminder    Reminder
}

// TaskPatch lists the fields an update changes; nil fields are left alone.
type TaskPatch struct {
	Title         *string
	Description   *string
	Priority      *Priority
	Type          *TaskType
	DueDate       *time.Time
	Reminder      *Reminder
	ClearReminder bool
}

// ScheduledReminder is a task reminder resolved to its fire time.
type ScheduledReminder struct {
	TaskID string    `json:"task_id"`
	Title  string    `json:"title"`
	FireAt time.Time `json:"fire_at"`
}

// DateLayout is the wire format of calendar due dates.
const DateLayout = "2006-01-02"

// ParseDueDate accepts a calendar date (interpreted in loc) or an RFC 3339
// timestamp.
func ParseDueDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrDueDateRequired
	}
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "due_date", Message: fmt.Sprintf("invalid date %q", s)}
	}
	return t, nil
}

// CreateTaskRequest represents the request body for creating a task.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	TaskType    string     `json:"task_type"`
	DueDate     string     `json:"due_date"`
	Reminder    string     `json:"reminder,omitempty"`
	ReminderAt  *time.Time `json:"reminder_at,omitempty"`
}

// Validate checks if the CreateTaskRequest is valid.
func (r *CreateTaskRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(r.DueDate) == "" {
		return ErrDueDateRequired
	}
	return nil
}

// ToSpec converts the request into a TaskSpec.
func (r *CreateTaskRequest) ToSpec(loc *time.Location) (TaskSpec, error) {
	if err := r.Validate(); err != nil {
		return TaskSpec{}, err
	}
	due, err := ParseDueDate(r.DueDate, loc)
	if err != nil {
		return TaskSpec{}, err
	}
	spec := TaskSpec{
		Title:       r.Title,
		Description: r.Description,
		Type:        TaskType(r.TaskType),
		DueDate:     due,
	}
	if r.Priority != "" {
		if spec.Priority, err = ParsePriority(r.Priority); err != nil {
			return TaskSpec{}, err
		}
	}
	if spec.Reminder, err = ParseReminder(r.Reminder, r.ReminderAt); err != nil {
		return TaskSpec{}, err
	}
	return spec, nil
}

// UpdateTaskRequest represents the request body for updating a task.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	TaskType    *string    `json:"task_type,omitempty"`
	DueDate     *string    `json:"due_date,omitempty"`
	Reminder    *string    `json:"reminder,omitempty"`
	ReminderAt  *time.Time `json:"reminder_at,omitempty"`
}

// ToPatch converts the request into a TaskPatch. A reminder of "none"
// clears the task's reminder.
func (r *UpdateTaskRequest) ToPatch(loc *time.Location) (TaskPatch, error) {
	patch := TaskPatch{
		Title:       r.Title,
		Description: r.Description,
	}
	if r.Priority != nil {
		p, err := ParsePriority(*r.Priority)
		if err != nil {
			return TaskPatch{}, err
		}
		patch.Priority = &p
	}
	if r.TaskType != nil {
		t := TaskType(*r.TaskType)
		patch.Type = &t
	}
	if r.DueDate != nil {
		due, err := ParseDueDate(*r.DueDate, loc)
		if err != nil {
			return TaskPatch{}, err
		}
		patch.DueDate = &due
	}
	if r.Reminder != nil {
		rem, err := ParseReminder(*r.Reminder, r.ReminderAt)
		if err != nil {
			return TaskPatch{}, err
		}
		if rem.IsZero() {
			patch.ClearReminder = true
		} else {
			patch.Reminder = &rem
		}
	}
	return patch, nil
}
