package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/DevishMittal/eljay-console/internal/model"
	"github.com/DevishMittal/eljay-console/internal/repository"
	"github.com/DevishMittal/eljay-console/internal/telemetry"
)

const defaultReminderWindow = 24 * time.Hour

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	store   *repository.TaskStore
	logger  *slog.Logger
	metrics *telemetry.Metrics
	now     func() time.Time
	loc     *time.Location
}

// NewTaskHandler creates a new TaskHandler. Calendar dates in requests are
// read in loc.
func NewTaskHandler(store *repository.TaskStore, logger *slog.Logger, metrics *telemetry.Metrics, now func() time.Time, loc *time.Location) *TaskHandler {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &TaskHandler{
		store:   store,
		logger:  telemetry.Component(logger, "task_handler"),
		metrics: metrics,
		now:     now,
		loc:     loc,
	}
}

// Routes returns the chi router with task routes.
func (h *TaskHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/reminders", h.Reminders)
	r.Get("/{id}", h.GetByID)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/toggle", h.Toggle)

	return r
}

// List returns the tasks of one bucket when ?bucket= is given, otherwise
// every bucket in order. ?at= moves the reference time.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	const route = "/api/v1/tasks"
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.List")
	defer span.End()

	ref, err := h.parseTime(r.URL.Query().Get("at"), "at", h.now())
	if err != nil {
		h.fail(ctx, w, span, http.MethodGet, route, start, err)
		return
	}

	var kinds []model.BucketKind
	raw := r.URL.Query().Get("bucket")
	if raw != "" {
		b, err := model.ParseBucket(raw)
		if err != nil {
			h.fail(ctx, w, span, http.MethodGet, route, start, err)
			return
		}
		kinds = []model.BucketKind{b}
	}

	views, err := h.store.ListBuckets(ctx, ref, kinds...)
	if err != nil {
		h.fail(ctx, w, span, http.MethodGet, route, start, err)
		return
	}

	span.SetAttributes(attribute.Int("bucket.count", len(views)))
	h.logger.InfoContext(ctx, "tasks listed", slog.Int("buckets", len(views)))

	if raw != "" {
		h.respond(ctx, w, http.MethodGet, route, http.StatusOK, start, views[0])
		return
	}
	h.respond(ctx, w, http.MethodGet, route, http.StatusOK, start, map[string]any{"buckets": views})
}

// Create adds a new task.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	const route = "/api/v1/tasks"
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.Create")
	defer span.End()

	var req model.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid request body", slog.Any("error", err))
		respondError(w, http.StatusBadRequest, "invalid request body")
		h.metrics.RecordRequest(ctx, http.MethodPost, route, http.StatusBadRequest, start)
		return
	}

	spec, err := req.ToSpec(h.loc)
	if err != nil {
		h.fail(ctx, w, span, http.MethodPost, route, start, err)
		return
	}

	h.logger.InfoContext(ctx, "creating task", slog.String("title", spec.Title))

	task, err := h.store.Create(ctx, spec)
	if err != nil {
		h.fail(ctx, w, span, http.MethodPost, route, start, err)
		return
	}

	span.SetAttributes(attribute.String("task.id", task.ID))
	h.logger.InfoContext(ctx, "task created", slog.String("id", task.ID))

	h.respond(ctx, w, http.MethodPost, route, http.StatusCreated, start, task)
}

// GetByID returns a task by ID.
func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	const route = "/api/v1/tasks/{id}"
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "TaskHandler.GetByID",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	task, err := h.store.Get(ctx, id)
	if err != nil {
		h.fail(ctx, w, span, http.MethodGet, route, start, err)
		return
	}

	h.respond(ctx, w, http.MethodGet, route, http.StatusOK, start, task)
}

// Update applies a partial update to an existing task.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	const route = "/api/v1/tasks/{id}"
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "TaskHandler.Update",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	var req model.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid request body", slog.Any("error", err))
		respondError(w, http.StatusBadRequest, "invalid request body")
		h.metrics.RecordRequest(ctx, http.MethodPatch, route, http.StatusBadRequest, start)
		return
	}

	patch, err := req.ToPatch(h.loc)
	if err != nil {
		h.fail(ctx, w, span, http.MethodPatch, route, start, err)
		return
	}

	h.logger.InfoContext(ctx, "updating task", slog.String("id", id))

	task, err := h.store.Update(ctx, id, patch)
	if err != nil {
		h.fail(ctx, w, span, http.MethodPatch, route, start, err)
		return
	}

	h.logger.InfoContext(ctx, "task updated", slog.String("id", id))
	h.respond(ctx, w, http.MethodPatch, route, http.StatusOK, start, task)
}

// Toggle flips a task's completion state.
func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	const route = "/api/v1/tasks/{id}/toggle"
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "TaskHandler.Toggle",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	task, err := h.store.ToggleCompletion(ctx, id)
	if err != nil {
		h.fail(ctx, w, span, http.MethodPost, route, start, err)
		return
	}

	h.logger.InfoContext(ctx, "task toggled",
		slog.String("id", id),
		slog.Bool("completed", task.Completed),
	)
	h.respond(ctx, w, http.MethodPost, route, http.StatusOK, start, task)
}

// Delete removes a task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	const route = "/api/v1/tasks/{id}"
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "TaskHandler.Delete",
		trace.WithAttributes(attribute.String("task.id", id)),
	)
	defer span.End()

	if err := h.store.Delete(ctx, id); err != nil {
		h.fail(ctx, w, span, http.MethodDelete, route, start, err)
		return
	}

	h.logger.InfoContext(ctx, "task deleted", slog.String("id", id))

	w.WriteHeader(http.StatusNoContent)
	h.metrics.RecordRequest(ctx, http.MethodDelete, route, http.StatusNoContent, start)
}

// Reminders returns the reminders firing in (from, to]. from defaults to
// now and to to a day after from.
func (h *TaskHandler) Reminders(w http.ResponseWriter, r *http.Request) {
	const route = "/api/v1/tasks/reminders"
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TaskHandler.Reminders")
	defer span.End()

	q := r.URL.Query()
	from, err := h.parseTime(q.Get("from"), "from", h.now())
	if err != nil {
		h.fail(ctx, w, span, http.MethodGet, route, start, err)
		return
	}
	to, err := h.parseTime(q.Get("to"), "to", from.Add(defaultReminderWindow))
	if err != nil {
		h.fail(ctx, w, span, http.MethodGet, route, start, err)
		return
	}
	if to.Before(from) {
		h.fail(ctx, w, span, http.MethodGet, route, start,
			&model.ValidationError{Field: "to", Message: "must not be before from"})
		return
	}

	reminders := h.store.DueReminders(ctx, from, to)
	span.SetAttributes(attribute.Int("reminder.count", len(reminders)))

	h.respond(ctx, w, http.MethodGet, route, http.StatusOK, start, reminders)
}

// parseTime reads an RFC 3339 timestamp or a calendar date in h.loc. An
// empty value yields def.
func (h *TaskHandler) parseTime(raw, field string, def time.Time) (time.Time, error) {
	if raw == "" {
		return def, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(model.DateLayout, raw, h.loc)
	if err != nil {
		return time.Time{}, &model.ValidationError{Field: field, Message: "invalid time " + raw}
	}
	return t, nil
}

func (h *TaskHandler) respond(ctx context.Context, w http.ResponseWriter, method, route string, status int, start time.Time, data any) {
	respondJSON(w, status, data)
	h.metrics.RecordRequest(ctx, method, route, status, start)
}

// fail writes the mapped error response, logging client errors as warnings
// and everything else as errors.
func (h *TaskHandler) fail(ctx context.Context, w http.ResponseWriter, span trace.Span, method, route string, start time.Time, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.logger.ErrorContext(ctx, "request failed", slog.String("route", route), slog.Any("error", err))
	} else {
		h.logger.WarnContext(ctx, "request rejected",
			slog.String("route", route),
			slog.Int("status", status),
			slog.Any("error", err),
		)
	}
	respondError(w, status, msg)
	h.metrics.RecordRequest(ctx, method, route, status, start)
}
