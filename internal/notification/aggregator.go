package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/DevishMittal/eljay-console/internal/model"
	"github.com/DevishMittal/eljay-console/internal/signals"
	"github.com/DevishMittal/eljay-console/internal/telemetry"
)

var tracer = otel.Tracer("github.com/DevishMittal/eljay-console/internal/notification")

// DefaultSignalTimeout bounds a single collaborator call when no timeout
// is configured.
const DefaultSignalTimeout = 10 * time.Second

// Source binds a collaborator to the notification type it feeds.
type Source struct {
	Type         model.NotificationType
	Collaborator signals.Collaborator
}

// Aggregator polls every source concurrently and maps nonzero counts to
// notifications. A failing source contributes nothing; Aggregate itself
// never fails.
type Aggregator struct {
	sources []Source
	timeout time.Duration
	logger  *slog.Logger
	metrics *telemetry.Metrics
	now     func() time.Time
	newID   func() string
}

// NewAggregator creates an Aggregator. Sources with an unknown type or a
// nil collaborator are rejected.
func NewAggregator(sources []Source, timeout time.Duration, logger *slog.Logger, metrics *telemetry.Metrics) (*Aggregator, error) {
	for _, src := range sources {
		if !Known(src.Type) {
			return nil, fmt.Errorf("unknown notification type %q", src.Type)
		}
		if src.Collaborator == nil {
			return nil, fmt.Errorf("source %s has no collaborator", src.Type)
		}
	}
	if timeout <= 0 {
		timeout = DefaultSignalTimeout
	}
	return &Aggregator{
		sources: append([]Source(nil), sources...),
		timeout: timeout,
		logger:  telemetry.Component(logger, "aggregator"),
		metrics: metrics,
		now:     time.Now,
		newID:   uuid.NewString,
	}, nil
}

// Aggregate runs one aggregation pass. The result is sorted by priority,
// highest first, then by type, regardless of the order calls complete in.
func (a *Aggregator) Aggregate(ctx context.Context) []model.Notification {
	ctx, span := tracer.Start(ctx, "Aggregator.Aggregate",
		trace.WithAttributes(attribute.Int("signal.sources", len(a.sources))),
	)
	defer span.End()

	counts := make([]int, len(a.sources))

	// Workers never return an error, so one failing source cannot cancel
	// its siblings.
	var g errgroup.Group
	for i, src := range a.sources {
		g.Go(func() error {
			counts[i] = a.poll(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	createdAt := a.now()
	out := make([]model.Notification, 0, len(a.sources))
	for i, src := range a.sources {
		n, ok := Build(src.Type, counts[i], a.newID(), createdAt)
		if !ok {
			continue
		}
		out = append(out, n)
	}
	Sort(out)

	span.SetAttributes(attribute.Int("notification.count", len(out)))
	return out
}

type pollResult struct {
	count int
	err   error
}

// poll calls one collaborator under its own timeout. Any failure is logged,
// counted and reported as zero.
func (a *Aggregator) poll(ctx context.Context, src Source) int {
	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	ch := make(chan pollResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- pollResult{err: fmt.Errorf("collaborator panicked: %v", r)}
			}
		}()
		n, err := src.Collaborator.GetCount(callCtx)
		ch <- pollResult{count: n, err: err}
	}()

	var res pollResult
	select {
	case res = <-ch:
	case <-callCtx.Done():
		res.err = callCtx.Err()
	}
	if res.err == nil && res.count < 0 {
		res.err = fmt.Errorf("negative count %d", res.count)
	}

	elapsed := time.Since(start)
	signal := string(src.Type)

	if res.err != nil {
		outcome := telemetry.OutcomeError
		if errors.Is(res.err, context.DeadlineExceeded) {
			outcome = telemetry.OutcomeTimeout
		}
		a.logger.WarnContext(ctx, "signal poll failed",
			slog.String("signal", signal),
			slog.String("outcome", outcome),
			slog.Duration("elapsed", elapsed),
			slog.Any("error", res.err),
		)
		a.metrics.RecordSignalPoll(ctx, signal, outcome, elapsed)
		return 0
	}

	a.logger.DebugContext(ctx, "signal polled",
		slog.String("signal", signal),
		slog.Int("count", res.count),
		slog.Duration("elapsed", elapsed),
	)
	a.metrics.RecordSignalPoll(ctx, signal, telemetry.OutcomeOK, elapsed)
	return res.count
}
