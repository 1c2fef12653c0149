// Package tui provides the terminal dashboard for deskboard using bubbletea.
// It lays out the view surface (chart mounts, search results and toasts),
// redraws whenever a mount changes and forwards keys to the core components.
package tui

import (
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/npratt/deskboard/internal/helpdesk"
	"github.com/npratt/deskboard/internal/notify"
	"github.com/npratt/deskboard/internal/search"
	"github.com/npratt/deskboard/internal/view"
)

// StatsSource provides the most recently applied stats snapshot.
type StatsSource interface {
	Last() (*helpdesk.Stats, time.Time)
}

// SearchBox receives search input and exposes the rendered results.
type SearchBox interface {
	Input(text string)
	Results() (search.Results, bool)
	State() search.State
}

// Toaster shows and dismisses notifications.
type Toaster interface {
	Notify(message string, kind notify.Kind) notify.Notification
	Visible() []notify.Notification
	DismissNewest() bool
}

// Mutator issues ticket changes in the background.
type Mutator interface {
	UpdateStatus(ticketID int64, status helpdesk.Status)
	Assign(ticketID, userID int64)
}

// ExportFunc writes every rendered chart to disk and returns the paths.
type ExportFunc func() ([]string, error)

// TUI is the terminal dashboard.
type TUI struct {
	surface   *view.Surface
	stats     StatsSource
	searcher  SearchBox
	toaster   Toaster
	mutator   Mutator
	exporter  ExportFunc
	copyText  func(string) error
	onRefresh func()
	onQuit    func()
	admin     bool
}

// Option configures the TUI.
type Option func(*TUI)

// New creates a new TUI drawing the given surface.
func New(surface *view.Surface, opts ...Option) *TUI {
	t := &TUI{
		surface:  surface,
		copyText: clipboard.WriteAll,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithStats sets the stats provider for the header.
func WithStats(s StatsSource) Option {
	return func(t *TUI) {
		t.stats = s
	}
}

// WithSearcher sets the search component behind the search box.
func WithSearcher(s SearchBox) Option {
	return func(t *TUI) {
		t.searcher = s
	}
}

// WithToaster sets the notification service.
func WithToaster(n Toaster) Option {
	return func(t *TUI) {
		t.toaster = n
	}
}

// WithMutator sets the component that performs status and assign changes.
func WithMutator(m Mutator) Option {
	return func(t *TUI) {
		t.mutator = m
	}
}

// WithExporter sets the callback invoked when the user presses 'e'.
func WithExporter(fn ExportFunc) Option {
	return func(t *TUI) {
		t.exporter = fn
	}
}

// WithClipboard replaces the clipboard writer used by 'y'.
func WithClipboard(fn func(string) error) Option {
	return func(t *TUI) {
		t.copyText = fn
	}
}

// WithOnRefresh sets the callback invoked when the user presses 'R'.
func WithOnRefresh(fn func()) Option {
	return func(t *TUI) {
		t.onRefresh = fn
	}
}

// WithOnQuit sets the callback invoked when the user quits.
func WithOnQuit(fn func()) Option {
	return func(t *TUI) {
		t.onQuit = fn
	}
}

// WithAdmin shows the admin chart variants in the layout.
func WithAdmin(admin bool) Option {
	return func(t *TUI) {
		t.admin = admin
	}
}

// Run starts the TUI and blocks until it exits.
func (t *TUI) Run() error {
	m := newModel(t)

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
