package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/npratt/deskboard/internal/helpdesk"
	"github.com/npratt/deskboard/internal/search"
	"github.com/npratt/deskboard/internal/view"
)

// FocusedPane represents which pane currently has keyboard focus.
type FocusedPane int

const (
	// FocusCharts means dashboard keys are active (default).
	FocusCharts FocusedPane = iota
	// FocusSearch means keys go to the search box.
	FocusSearch
	// FocusPrompt means keys go to the assign prompt.
	FocusPrompt
)

// chartMounts lists the chart mount ids in display order.
var chartMounts = []string{
	view.StatusChart,
	view.PriorityChart,
	view.AdminStatusChart,
	view.AdminPriorityChart,
}

// model is the bubbletea model for the TUI.
type model struct {
	surface *view.Surface

	// Collaborators
	stats     StatsSource
	searcher  SearchBox
	toaster   Toaster
	mutator   Mutator
	exporter  ExportFunc
	copyText  func(string) error
	onRefresh func()
	onQuit    func()
	admin     bool

	// UI state
	width       int
	height      int
	now         time.Time
	focusedPane FocusedPane
	searchInput textinput.Model
	promptInput textinput.Model
	selected    int
	exporting   bool
}

// surfaceChangedMsg signals that one or more mounts changed.
type surfaceChangedMsg struct{}

// newModel creates a new model from the TUI configuration.
func newModel(t *TUI) model {
	si := textinput.New()
	si.Placeholder = "search tickets"
	si.Prompt = "/ "
	si.CharLimit = 200

	pi := textinput.New()
	pi.Placeholder = "user id"
	pi.Prompt = "assign to: "
	pi.CharLimit = 12

	return model{
		surface:     t.surface,
		stats:       t.stats,
		searcher:    t.searcher,
		toaster:     t.toaster,
		mutator:     t.mutator,
		exporter:    t.exporter,
		copyText:    t.copyText,
		onRefresh:   t.onRefresh,
		onQuit:      t.onQuit,
		admin:       t.admin,
		now:         time.Now(),
		searchInput: si,
		promptInput: pi,
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{doTick(), tea.EnterAltScreen}
	if m.surface != nil {
		cmds = append(cmds, waitForChange(m.surface.Changes()))
	}
	return tea.Batch(cmds...)
}

// Update, handleKey and friends are implemented in update.go
// View is implemented in view.go

// results returns the rendered search results, if any.
func (m model) results() (search.Results, bool) {
	if m.searcher == nil {
		return search.Results{}, false
	}
	return m.searcher.Results()
}

// selectedTicket returns the highlighted search result.
func (m model) selectedTicket() (helpdesk.TicketSummary, bool) {
	r, ok := m.results()
	if !ok || r.State != search.Displayed || len(r.Items) == 0 {
		return helpdesk.TicketSummary{}, false
	}
	idx := clampIndex(m.selected, len(r.Items))
	return r.Items[idx], true
}

// visibleCharts returns the chart mount ids present on the surface.
func (m model) visibleCharts() []string {
	if m.surface == nil {
		return nil
	}
	var ids []string
	for _, id := range chartMounts {
		if _, ok := m.surface.FindMount(id); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
