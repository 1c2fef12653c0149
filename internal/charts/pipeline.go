package charts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/npratt/deskboard/internal/helpdesk"
	"github.com/npratt/deskboard/internal/view"
)

// DefaultRefreshInterval is the periodic refresh period.
const DefaultRefreshInterval = 5 * time.Minute

// ErrStale is returned by Refresh when a newer refresh was applied before
// this one's response arrived.
var ErrStale = errors.New("stale stats response")

// Pipeline fetches stats and keeps every mounted chart in sync with them.
//
// Each refresh takes a generation number when it is issued. A response is
// applied only if its generation is newer than the last applied one, so an
// older response that arrives late never overwrites newer data.
type Pipeline struct {
	client   helpdesk.StatsReader
	binder   view.Binder
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	issued atomic.Uint64

	mu          sync.Mutex
	applied     uint64
	handles     map[string]*Handle
	last        *helpdesk.Stats
	lastRefresh time.Time
	listeners   []func(*helpdesk.Stats)
	stopped     bool

	wg sync.WaitGroup
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithInterval sets the periodic refresh interval.
func WithInterval(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithClock overrides the time source used for refresh timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithListener registers a callback invoked after each applied refresh.
// Callbacks run without the pipeline lock held.
func WithListener(fn func(*helpdesk.Stats)) Option {
	return func(p *Pipeline) {
		p.listeners = append(p.listeners, fn)
	}
}

// NewPipeline creates a Pipeline.
func NewPipeline(client helpdesk.StatsReader, binder view.Binder, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		client:   client,
		binder:   binder,
		logger:   logger,
		interval: DefaultRefreshInterval,
		now:      time.Now,
		handles:  make(map[string]*Handle),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Refresh fetches the current stats and renders or updates the chart for
// every present mount. On failure the charts are left as they were and the
// error is logged and returned.
func (p *Pipeline) Refresh(ctx context.Context) error {
	gen := p.issued.Add(1)

	stats, err := p.client.Stats(ctx)
	if err != nil {
		p.logger.Warn("stats refresh failed",
			"generation", gen,
			"error", err)
		return fmt.Errorf("refresh stats: %w", err)
	}

	p.mu.Lock()
	if gen <= p.applied {
		applied := p.applied
		p.mu.Unlock()
		p.logger.Debug("dropping stale stats response",
			"generation", gen,
			"applied", applied)
		return ErrStale
	}
	p.applied = gen

	now := p.now()
	for _, slot := range Slots {
		p.renderSlot(slot, seriesFor(slot, *stats), now)
	}
	snapshot := *stats
	p.last = &snapshot
	p.lastRefresh = now
	listeners := append([]func(*helpdesk.Stats){}, p.listeners...)
	p.mu.Unlock()

	p.logger.Debug("stats applied",
		"generation", gen,
		"total", stats.TotalTickets)

	for _, fn := range listeners {
		s := snapshot
		fn(&s)
	}
	return nil
}

// renderSlot applies series to every mount of slot. Caller holds p.mu.
func (p *Pipeline) renderSlot(slot Slot, series Series, now time.Time) {
	for _, id := range slot.MountIDs {
		mount, ok := p.binder.FindMount(id)
		if !ok {
			delete(p.handles, id)
			continue
		}

		h, ok := p.handles[id]
		if ok && h.mount == mount {
			h.Update(series, now)
			continue
		}
		// First render, or the mount was replaced: bind a new handle.
		p.handles[id] = newHandle(slot, mount, series, now)
	}
}

// Trigger starts a refresh in the background. Errors are logged. It does
// nothing once ctx is done or Run has begun stopping.
func (p *Pipeline) Trigger(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped || ctx.Err() != nil {
		p.logger.Debug("refresh skipped, pipeline stopping")
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		_ = p.Refresh(ctx)
	}()
}

// Run performs an initial refresh, then refreshes on every interval tick
// until ctx is cancelled. A slow refresh never delays the next tick.
func (p *Pipeline) Run(ctx context.Context) error {
	p.Trigger(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			p.stopped = true
			p.mu.Unlock()
			p.wg.Wait()
			return nil
		case <-ticker.C:
			p.Trigger(ctx)
		}
	}
}

// Wait blocks until every background refresh has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Handle returns the chart handle bound to a mount id.
func (p *Pipeline) Handle(id string) (*Handle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	h, ok := p.handles[id]
	return h, ok
}

// Last returns the most recently applied stats and when they were applied.
// It returns nil before the first successful refresh.
func (p *Pipeline) Last() (*helpdesk.Stats, time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return nil, time.Time{}
	}
	s := *p.last
	return &s, p.lastRefresh
}

// Interval returns the periodic refresh interval.
func (p *Pipeline) Interval() time.Duration {
	return p.interval
}
