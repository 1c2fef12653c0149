// Package actions performs state-changing ticket calls in the background and
// reports each outcome as a toast. A successful call schedules a reload of
// the dashboard data shortly after, so the toast is seen before the data
// changes underneath it.
package actions

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/npratt/deskboard/internal/helpdesk"
	"github.com/npratt/deskboard/internal/notify"
	"github.com/npratt/deskboard/internal/timing"
)

// Defaults.
const (
	DefaultReloadDelay = time.Second
	DefaultTimeout     = 15 * time.Second
)

// Notifier shows outcome toasts.
type Notifier interface {
	Notify(message string, kind notify.Kind) notify.Notification
}

// Reloader refreshes everything the dashboard displays.
type Reloader interface {
	Reload()
}

// ReloaderFunc adapts a function to Reloader.
type ReloaderFunc func()

// Reload implements Reloader.
func (f ReloaderFunc) Reload() { f() }

// Actions issues ticket mutations.
type Actions struct {
	client      helpdesk.TicketUpdater
	notifier    Notifier
	reloader    Reloader
	reloadDelay time.Duration
	timeout     time.Duration
	afterFunc   timing.AfterFunc
	logger      *slog.Logger

	ctx context.Context
	wg  sync.WaitGroup
}

// Option configures Actions.
type Option func(*Actions)

// WithReloadDelay sets the pause between a success toast and the reload.
func WithReloadDelay(d time.Duration) Option {
	return func(a *Actions) {
		if d >= 0 {
			a.reloadDelay = d
		}
	}
}

// WithTimeout bounds each backend call.
func WithTimeout(d time.Duration) Option {
	return func(a *Actions) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithAfterFunc replaces the timer source.
func WithAfterFunc(fn timing.AfterFunc) Option {
	return func(a *Actions) {
		a.afterFunc = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Actions) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithContext sets the parent context of background calls. Cancelling it
// aborts calls in flight.
func WithContext(ctx context.Context) Option {
	return func(a *Actions) {
		a.ctx = ctx
	}
}

// New creates Actions. reloader may be nil when there is nothing to reload.
func New(client helpdesk.TicketUpdater, notifier Notifier, reloader Reloader, opts ...Option) *Actions {
	a := &Actions{
		client:      client,
		notifier:    notifier,
		reloader:    reloader,
		reloadDelay: DefaultReloadDelay,
		timeout:     DefaultTimeout,
		afterFunc:   timing.Real,
		logger:      slog.Default(),
		ctx:         context.Background(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// UpdateStatus moves a ticket to status. It returns immediately; the outcome
// is reported through the notifier.
func (a *Actions) UpdateStatus(ticketID int64, status helpdesk.Status) {
	a.dispatch("update status",
		func(ctx context.Context) error {
			return a.client.UpdateStatus(ctx, ticketID, status)
		},
		fmt.Sprintf("Ticket #%d status updated to %s", ticketID, status.Label().DisplayName),
		fmt.Sprintf("Failed to update ticket #%d", ticketID),
		"ticket", ticketID, "status", string(status))
}

// Assign assigns a ticket to a user. It returns immediately; the outcome is
// reported through the notifier.
func (a *Actions) Assign(ticketID, userID int64) {
	a.dispatch("assign",
		func(ctx context.Context) error {
			return a.client.Assign(ctx, ticketID, userID)
		},
		fmt.Sprintf("Ticket #%d assigned to user %d", ticketID, userID),
		fmt.Sprintf("Failed to assign ticket #%d", ticketID),
		"ticket", ticketID, "user", userID)
}

func (a *Actions) dispatch(op string, call func(context.Context) error, okMsg, failMsg string, attrs ...any) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		ctx, cancel := context.WithTimeout(a.ctx, a.timeout)
		err := call(ctx)
		cancel()

		if err != nil {
			a.logger.Warn(op+" failed", append(attrs, "error", err)...)
			a.notifier.Notify(fmt.Sprintf("%s: %s", failMsg, helpdesk.Describe(err)), notify.Danger)
			return
		}

		a.logger.Info(op+" succeeded", attrs...)
		a.notifier.Notify(okMsg, notify.Success)
		if a.reloader != nil {
			a.afterFunc(a.reloadDelay, a.reloader.Reload)
		}
	}()
}

// Wait blocks until every dispatched call has completed.
func (a *Actions) Wait() {
	a.wg.Wait()
}
