package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/DevishMittal/eljay-console/internal/model"
	"github.com/DevishMittal/eljay-console/internal/telemetry"
)

// DefaultPollInterval is used when the poller is given no interval.
const DefaultPollInterval = 60 * time.Second

// ErrPollerRunning is returned by Run when the poller is already running.
var ErrPollerRunning = errors.New("poller already running")

// Collector produces one aggregation pass.
type Collector interface {
	Aggregate(ctx context.Context) []model.Notification
}

// Poller drives aggregation passes into a Feed on an interval or on demand.
// Every cycle runs under its own cancellable context; a cycle cancelled
// before it completes is discarded rather than merged.
type Poller struct {
	collector Collector
	feed      *Feed
	interval  time.Duration
	logger    *slog.Logger

	triggerCh chan struct{}

	mu          sync.Mutex
	running     bool
	stopped     bool
	stop        context.CancelFunc
	cancelCycle context.CancelFunc
	lastPoll    time.Time
	subs        map[int]chan []model.Notification
	nextSub     int
}

// NewPoller creates a Poller feeding feed from collector.
func NewPoller(collector Collector, feed *Feed, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		collector: collector,
		feed:      feed,
		interval:  interval,
		logger:    telemetry.Component(logger, "poller"),
		triggerCh: make(chan struct{}, 1),
		subs:      make(map[int]chan []model.Notification),
	}
}

// Run polls immediately and then on every tick or Refresh until ctx is
// done or Stop is called. The in-flight cycle is cancelled on the way out.
// Run on a stopped poller returns nil without polling.
func (p *Poller) Run(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	if p.running {
		p.mu.Unlock()
		return ErrPollerRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	p.running = true
	p.stop = cancel
	p.mu.Unlock()

	defer func() {
		cancel()
		p.mu.Lock()
		p.running = false
		p.stop = nil
		p.mu.Unlock()
	}()

	p.logger.InfoContext(ctx, "poller started", slog.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.InfoContext(context.WithoutCancel(ctx), "poller stopped")
			return nil
		case <-ticker.C:
			p.cycle(ctx)
		case <-p.triggerCh:
			p.cycle(ctx)
		}
	}
}

// Stop ends Run and cancels the in-flight cycle. It is permanent: a
// stopped poller never polls again, even if Run has not started yet.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	if p.cancelCycle != nil {
		p.cancelCycle()
	}
	if p.stop != nil {
		p.stop()
	}
}

// Refresh requests an immediate cycle. Requests made while one is already
// pending are coalesced.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// LastPoll returns when the last merged cycle completed.
func (p *Poller) LastPoll() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPoll
}

// Subscribe returns a channel that receives the feed after every merged
// cycle, and a func that unsubscribes and closes it. Sends never block: a
// subscriber that is not ready misses that snapshot.
func (p *Poller) Subscribe() (<-chan []model.Notification, func()) {
	ch := make(chan []model.Notification, 1)

	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = ch
	p.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
			close(ch)
		})
	}
}

// cycle runs one aggregation pass and merges it into the feed. It reports
// whether the pass was merged.
func (p *Poller) cycle(ctx context.Context) bool {
	cycleCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancelCycle = cancel
	p.mu.Unlock()

	defer func() {
		cancel()
		p.mu.Lock()
		p.cancelCycle = nil
		p.mu.Unlock()
	}()

	ns := p.collector.Aggregate(cycleCtx)
	if err := cycleCtx.Err(); err != nil {
		p.logger.InfoContext(context.WithoutCancel(ctx), "poll cycle cancelled, result discarded",
			slog.Any("error", err),
		)
		return false
	}

	snapshot := p.feed.Replace(ns)

	p.mu.Lock()
	p.lastPoll = time.Now()
	p.mu.Unlock()

	p.logger.DebugContext(ctx, "poll cycle merged", slog.Int("notifications", len(snapshot)))
	p.broadcast(snapshot)
	return true
}

func (p *Poller) broadcast(ns []model.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, ch := range p.subs {
		select {
		case ch <- cloneAll(ns):
		default:
			// Subscriber is behind; drop this snapshot.
		}
	}
}
