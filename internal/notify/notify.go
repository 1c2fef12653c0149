// Package notify provides the process-wide toast surface. A single Notifier
// is created at startup and shared by every component that reports an
// outcome to the user.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/npratt/deskboard/internal/timing"
	"github.com/npratt/deskboard/internal/view"
)

// DefaultAutoDismiss is how long a toast stays visible.
const DefaultAutoDismiss = 5 * time.Second

// Kind is the visual category of a notification.
type Kind string

const (
	Success Kind = "success"
	Danger  Kind = "danger"
	Info    Kind = "info"
	Warning Kind = "warning"
)

// Notification is one visible toast.
type Notification struct {
	ID        string
	Message   string
	Kind      Kind
	CreatedAt time.Time
}

// Container creates the toast mount on first use.
type Container interface {
	Ensure(id string) *view.Mount
}

// Notifier appends toasts to the shared container and removes each one when
// it is dismissed or times out. Only visible toasts are retained.
type Notifier struct {
	container   Container
	autoDismiss time.Duration
	afterFunc   timing.AfterFunc
	now         func() time.Time
	logger      *slog.Logger
	listeners   []func(Notification)

	mu     sync.Mutex
	mount  *view.Mount
	items  []Notification
	timers map[string]timing.Timer
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAutoDismiss sets the visible lifetime of a toast. Zero keeps toasts
// until dismissed.
func WithAutoDismiss(d time.Duration) Option {
	return func(n *Notifier) {
		if d >= 0 {
			n.autoDismiss = d
		}
	}
}

// WithAfterFunc replaces the timer source.
func WithAfterFunc(fn timing.AfterFunc) Option {
	return func(n *Notifier) {
		n.afterFunc = fn
	}
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) {
		n.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithListener registers a callback invoked for every new notification.
func WithListener(fn func(Notification)) Option {
	return func(n *Notifier) {
		n.listeners = append(n.listeners, fn)
	}
}

// New creates a Notifier rendering into container.
func New(container Container, opts ...Option) *Notifier {
	n := &Notifier{
		container:   container,
		autoDismiss: DefaultAutoDismiss,
		afterFunc:   timing.Real,
		now:         time.Now,
		logger:      slog.Default(),
		timers:      make(map[string]timing.Timer),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify shows message as a toast of the given kind and returns it.
func (n *Notifier) Notify(message string, kind Kind) Notification {
	note := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Kind:      kind,
		CreatedAt: n.now(),
	}

	n.mu.Lock()
	if n.mount == nil {
		n.mount = n.container.Ensure(view.ToastContainer)
	}
	n.items = append(n.items, note)
	if n.autoDismiss > 0 {
		id := note.ID
		n.timers[id] = n.afterFunc(n.autoDismiss, func() {
			n.Dismiss(id)
		})
	}
	n.publish()
	n.mu.Unlock()

	n.logger.Debug("notification shown", "id", note.ID, "kind", kind, "message", message)

	for _, fn := range n.listeners {
		fn(note)
	}
	return note
}

// Dismiss removes the toast with the given id. It reports whether the toast
// was still visible.
func (n *Notifier) Dismiss(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	idx := -1
	for i, item := range n.items {
		if item.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	n.items = append(n.items[:idx], n.items[idx+1:]...)
	if t, ok := n.timers[id]; ok {
		t.Stop()
		delete(n.timers, id)
	}
	n.publish()
	return true
}

// DismissNewest removes the most recent toast, if any.
func (n *Notifier) DismissNewest() bool {
	n.mu.Lock()
	if len(n.items) == 0 {
		n.mu.Unlock()
		return false
	}
	id := n.items[len(n.items)-1].ID
	n.mu.Unlock()

	return n.Dismiss(id)
}

// Visible returns the toasts currently shown, oldest first.
func (n *Notifier) Visible() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.items...)
}

// Pending returns the number of armed auto-dismiss timers.
func (n *Notifier) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.timers)
}

// publish writes a snapshot of the visible toasts to the container. Caller
// holds n.mu.
func (n *Notifier) publish() {
	if n.mount == nil {
		return
	}
	n.mount.Set(append([]Notification(nil), n.items...))
}
