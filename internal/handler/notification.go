package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/DevishMittal/eljay-console/internal/notification"
	"github.com/DevishMittal/eljay-console/internal/telemetry"
)

// Refresher schedules an out-of-band poll cycle.
type Refresher interface {
	Refresh()
}

// NotificationHandler serves the notification feed.
type NotificationHandler struct {
	feed      *notification.Feed
	refresher Refresher
	logger    *slog.Logger
	metrics   *telemetry.Metrics
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(feed *notification.Feed, refresher Refresher, logger *slog.Logger, metrics *telemetry.Metrics) *NotificationHandler {
	return &NotificationHandler{
		feed:      feed,
		refresher: refresher,
		logger:    telemetry.Component(logger, "notification_handler"),
		metrics:   metrics,
	}
}

// Routes returns the chi router with notification routes.
func (h *NotificationHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/stats", h.Stats)
	r.Post("/read-all", h.MarkAllRead)
	r.Post("/refresh", h.Refresh)
	r.Post("/{id}/read", h.MarkRead)

	return r
}

// List returns the live notifications, highest priority first.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "NotificationHandler.List")
	defer span.End()

	ns := h.feed.List()
	span.SetAttributes(attribute.Int("notification.count", len(ns)))

	respondJSON(w, http.StatusOK, ns)
	h.metrics.RecordRequest(ctx, http.MethodGet, "/api/v1/notifications", http.StatusOK, start)
}

// Stats returns the badge counters.
func (h *NotificationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	respondJSON(w, http.StatusOK, h.feed.Stats())
	h.metrics.RecordRequest(ctx, http.MethodGet, "/api/v1/notifications/stats", http.StatusOK, start)
}

// MarkRead marks one notification as read. Unknown ids are accepted and
// reported as unchanged.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "NotificationHandler.MarkRead",
		trace.WithAttributes(attribute.String("notification.id", id)),
	)
	defer span.End()

	changed := h.feed.MarkRead(id)
	span.SetAttributes(attribute.Bool("notification.changed", changed))
	h.logger.InfoContext(ctx, "notification marked read",
		slog.String("id", id),
		slog.Bool("changed", changed),
	)

	respondJSON(w, http.StatusOK, map[string]any{"id": id, "changed": changed})
	h.metrics.RecordRequest(ctx, http.MethodPost, "/api/v1/notifications/{id}/read", http.StatusOK, start)
}

// MarkAllRead marks the whole feed as read.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "NotificationHandler.MarkAllRead")
	defer span.End()

	n := h.feed.MarkAllRead()
	h.logger.InfoContext(ctx, "notifications marked read", slog.Int("count", n))

	respondJSON(w, http.StatusOK, map[string]int{"marked": n})
	h.metrics.RecordRequest(ctx, http.MethodPost, "/api/v1/notifications/read-all", http.StatusOK, start)
}

// Refresh asks the poller for an immediate cycle. The feed is updated
// asynchronously.
func (h *NotificationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	if h.refresher != nil {
		h.refresher.Refresh()
	}
	h.logger.InfoContext(ctx, "notification refresh requested")

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "refresh scheduled"})
	h.metrics.RecordRequest(ctx, http.MethodPost, "/api/v1/notifications/refresh", http.StatusAccepted, start)
}
