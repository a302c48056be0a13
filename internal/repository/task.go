package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/DevishMittal/eljay-console/internal/model"
	"github.com/DevishMittal/eljay-console/internal/reminder"
)

var tracer = otel.Tracer("github.com/DevishMittal/eljay-console/internal/repository")

// TaskStore is the single owner of task state. Every mutation goes through
// Create, Update, ToggleCompletion or Delete, and reads return copies.
type TaskStore struct {
	mu        sync.RWMutex
	tasks     map[string]*model.Task
	now       func() time.Time
	newID     func() string
	reminders *reminder.Scheduler
}

// NewTaskStore creates an empty TaskStore. A nil clock defaults to
// time.Now and a nil id generator to random UUIDs.
func NewTaskStore(now func() time.Time, newID func() string) *TaskStore {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &TaskStore{
		tasks:     make(map[string]*model.Task),
		now:       now,
		newID:     newID,
		reminders: reminder.NewScheduler(now),
	}
}

// Create validates spec and stores a new, incomplete task.
func (s *TaskStore) Create(ctx context.Context, spec model.TaskSpec) (*model.Task, error) {
	_, span := tracer.Start(ctx, "TaskStore.Create",
		trace.WithAttributes(attribute.String("task.title", spec.Title)),
	)
	defer span.End()

	if spec.Priority == 0 {
		spec.Priority = model.PriorityMedium
	}
	if spec.Type == "" {
		spec.Type = model.TaskTypeGeneral
	}

	if err := s.validate(spec.Title, spec.Priority, spec.Type, spec.DueDate, spec.Reminder); err != nil {
		return nil, err
	}

	now := s.now()
	task := &model.Task{
		ID:          s.newID(),
		Title:       strings.TrimSpace(spec.Title),
		Description: spec.Description,
		Priority:    spec.Priority,
		Type:        spec.Type,
		DueDate:     spec.DueDate,
		Reminder:    spec.Reminder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.tasks[task.ID] = task
	s.mu.Unlock()

	span.SetAttributes(attribute.String("task.id", task.ID))
	out := *task
	return &out, nil
}

// Get returns a copy of the task with the given id.
func (s *TaskStore) Get(ctx context.Context, id string) (*model.Task, error) {
	_, span := tracer.Start(ctx, "TaskStore.Get",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		span.SetAttributes(attribute.Bool("task.found", false))
		return nil, &model.NotFoundError{ID: id}
	}

	span.SetAttributes(attribute.Bool("task.found", true))
	out := *task
	return &out, nil
}

// Update applies the non-nil fields of patch. The patched task must pass
// the same validation as Create; on failure the stored task is unchanged.
func (s *TaskStore) Update(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	_, span := tracer.Start(ctx, "TaskStore.Update",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		span.SetAttributes(attribute.Bool("task.found", false))
		return nil, &model.NotFoundError{ID: id}
	}

	next := *task
	if patch.Title != nil {
		next.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.Priority != nil {
		next.Priority = *patch.Priority
	}
	if patch.Type != nil {
		next.Type = *patch.Type
	}
	if patch.DueDate != nil {
		next.DueDate = *patch.DueDate
	}
	switch {
	case patch.ClearReminder:
		next.Reminder = model.Reminder{}
	case patch.Reminder != nil:
		next.Reminder = *patch.Reminder
	}

	// An untouched custom reminder that has since passed stays valid.
	checkReminder := next.Reminder
	if patch.Reminder == nil {
		checkReminder = model.Reminder{}
	}
	if err := s.validate(next.Title, next.Priority, next.Type, next.DueDate, checkReminder); err != nil {
		return nil, err
	}

	next.UpdatedAt = s.now()
	*task = next

	span.SetAttributes(attribute.Bool("task.found", true))
	out := next
	return &out, nil
}

// ToggleCompletion flips the completed flag. Two consecutive calls restore
// the original state.
func (s *TaskStore) ToggleCompletion(ctx context.Context, id string) (*model.Task, error) {
	_, span := tracer.Start(ctx, "TaskStore.ToggleCompletion",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		span.SetAttributes(attribute.Bool("task.found", false))
		return nil, &model.NotFoundError{ID: id}
	}

	task.Completed = !task.Completed
	task.UpdatedAt = s.now()

	span.SetAttributes(attribute.Bool("task.completed", task.Completed))
	out := *task
	return &out, nil
}

// Delete removes a task from the store.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	_, span := tracer.Start(ctx, "TaskStore.Delete",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		span.SetAttributes(attribute.Bool("task.found", false))
		return &model.NotFoundError{ID: id}
	}

	delete(s.tasks, id)
	span.SetAttributes(attribute.Bool("task.found", true))
	return nil
}

// ListByBucket returns the tasks in bucket relative to ref, ordered by
// priority (high first), then due date, then creation time.
func (s *TaskStore) ListByBucket(ctx context.Context, bucket model.BucketKind, ref time.Time) ([]model.Task, error) {
	_, span := tracer.Start(ctx, "TaskStore.ListByBucket",
		trace.WithAttributes(attribute.String("task.bucket", string(bucket))),
	)
	defer span.End()

	if !bucket.Valid() {
		return nil, &model.ValidationError{Field: "bucket", Message: "unknown bucket " + string(bucket)}
	}

	tasks := inBucket(s.snapshot(), bucket, ref)

	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	return tasks, nil
}

// ListBuckets returns the given buckets, or all of them when none are
// named, in the order requested. Tasks and progress counters come from a
// single view of the store, so they always agree.
func (s *TaskStore) ListBuckets(ctx context.Context, ref time.Time, buckets ...model.BucketKind) ([]model.BucketTasks, error) {
	_, span := tracer.Start(ctx, "TaskStore.ListBuckets")
	defer span.End()

	if len(buckets) == 0 {
		buckets = model.Buckets
	}
	for _, b := range buckets {
		if !b.Valid() {
			return nil, &model.ValidationError{Field: "bucket", Message: "unknown bucket " + string(b)}
		}
	}

	all := s.snapshot()
	out := make([]model.BucketTasks, 0, len(buckets))
	for _, b := range buckets {
		tasks := inBucket(all, b, ref)
		bt := model.BucketTasks{Bucket: b, Tasks: tasks, Total: len(tasks)}
		for _, t := range tasks {
			if t.Completed {
				bt.Completed++
			}
		}
		out = append(out, bt)
	}

	span.SetAttributes(attribute.Int("bucket.count", len(out)))
	return out, nil
}

// List returns every task in bucket order.
func (s *TaskStore) List(ctx context.Context, ref time.Time) []model.Task {
	_, span := tracer.Start(ctx, "TaskStore.List")
	defer span.End()

	snap := s.snapshot()
	all := make([]model.Task, 0, len(snap))
	for _, b := range model.Buckets {
		all = append(all, inBucket(snap, b, ref)...)
	}
	return all
}

// Progress returns completed/total counters for every bucket.
func (s *TaskStore) Progress(ctx context.Context, ref time.Time) []model.BucketProgress {
	_, span := tracer.Start(ctx, "TaskStore.Progress")
	defer span.End()

	counts := make(map[model.BucketKind]*model.BucketProgress, len(model.Buckets))
	out := make([]model.BucketProgress, len(model.Buckets))
	for i, b := range model.Buckets {
		out[i].Bucket = b
		counts[b] = &out[i]
	}
	for _, t := range s.snapshot() {
		p := counts[model.BucketOf(t.DueDate, ref)]
		p.Total++
		if t.Completed {
			p.Completed++
		}
	}
	return out
}

// PendingCount returns the number of incomplete tasks that are due today
// or overdue at ref.
func (s *TaskStore) PendingCount(ref time.Time) int {
	n := 0
	for _, t := range s.snapshot() {
		if t.Completed {
			continue
		}
		switch model.BucketOf(t.DueDate, ref) {
		case model.BucketOverdue, model.BucketToday:
			n++
		}
	}
	return n
}

// DueReminders returns reminders of incomplete tasks firing in (from, to],
// earliest first.
func (s *TaskStore) DueReminders(ctx context.Context, from, to time.Time) []model.ScheduledReminder {
	_, span := tracer.Start(ctx, "TaskStore.DueReminders")
	defer span.End()

	out := make([]model.ScheduledReminder, 0)
	for _, t := range s.snapshot() {
		if t.Completed || t.Reminder.IsZero() {
			continue
		}
		// Custom reminders were validated on write; resolve them against
		// their own instant so a passed one is still reported in range.
		fireAt, err := reminder.FireTime(t.DueDate, t.Reminder, time.Time{})
		if err != nil {
			continue
		}
		if fireAt.After(from) && !fireAt.After(to) {
			out = append(out, model.ScheduledReminder{TaskID: t.ID, Title: t.Title, FireAt: fireAt})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FireAt.Equal(out[j].FireAt) {
			return out[i].FireAt.Before(out[j].FireAt)
		}
		return out[i].TaskID < out[j].TaskID
	})

	span.SetAttributes(attribute.Int("reminder.count", len(out)))
	return out
}

// Count returns the current number of tasks.
func (s *TaskStore) Count() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.tasks))
}

func (s *TaskStore) snapshot() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, *t)
	}
	return tasks
}

func inBucket(all []model.Task, bucket model.BucketKind, ref time.Time) []model.Task {
	tasks := make([]model.Task, 0)
	for _, t := range all {
		if model.BucketOf(t.DueDate, ref) == bucket {
			tasks = append(tasks, t)
		}
	}
	sortTasks(tasks)
	return tasks
}

func sortTasks(tasks []model.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func (s *TaskStore) validate(title string, p model.Priority, tt model.TaskType, due time.Time, r model.Reminder) error {
	if strings.TrimSpace(title) == "" {
		return model.ErrTitleRequired
	}
	if due.IsZero() {
		return model.ErrDueDateRequired
	}
	if !p.Valid() {
		return &model.ValidationError{Field: "priority", Message: "unknown priority " + p.String()}
	}
	if !tt.Valid() {
		return &model.ValidationError{Field: "task_type", Message: "unknown task type " + string(tt)}
	}
	if !r.IsZero() {
		if _, err := s.reminders.FireTime(due, r); err != nil {
			return err
		}
	}
	return nil
}
