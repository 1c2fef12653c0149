package tui

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/npratt/deskboard/internal/helpdesk"
	"github.com/npratt/deskboard/internal/notify"
)

// tickInterval drives the header clock and the "refreshed ago" label.
const tickInterval = time.Second

// tickMsg signals a periodic tick.
type tickMsg time.Time

// exportResultMsg carries the outcome of a chart export.
type exportResultMsg struct {
	paths []string
	err   error
}

// waitForChange creates a command that waits for the next surface change.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return surfaceChangedMsg{}
	}
}

// doTick creates a command that waits for the tick interval and sends a tickMsg.
func doTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model. It handles all message types and updates the model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.searchInput.Width = max(10, msg.Width-10)
		return m, nil

	case surfaceChangedMsg:
		// Results may have shrunk under the cursor.
		if r, ok := m.results(); ok {
			m.selected = clampIndex(m.selected, len(r.Items))
		}
		return m, waitForChange(m.surface.Changes())

	case tickMsg:
		m.now = time.Time(msg)
		return m, doTick()

	case exportResultMsg:
		m.exporting = false
		m.handleExportResult(msg)
		return m, nil

	default:
		return m, nil
	}
}

// handleKey processes keyboard input and returns the updated model and command.
func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global keys: always work regardless of focus
	if key == "ctrl+c" {
		return m.quit()
	}

	switch m.focusedPane {
	case FocusSearch:
		return m.handleSearchKey(msg)
	case FocusPrompt:
		return m.handlePromptKey(msg)
	}

	switch key {
	case "q":
		return m.quit()

	case "/":
		m.focusedPane = FocusSearch
		return m, m.searchInput.Focus()

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "down", "j":
		if r, ok := m.results(); ok && m.selected < len(r.Items)-1 {
			m.selected++
		}
		return m, nil

	case "1", "2", "3", "4", "5":
		idx := int(key[0] - '1')
		m.setStatus(helpdesk.Statuses[idx])
		return m, nil

	case "a":
		if _, ok := m.selectedTicket(); !ok {
			m.toast("Select a ticket first", notify.Warning)
			return m, nil
		}
		m.focusedPane = FocusPrompt
		m.promptInput.SetValue("")
		return m, m.promptInput.Focus()

	case "y":
		m.copySelected()
		return m, nil

	case "e":
		return m.startExport()

	case "R":
		if m.onRefresh != nil {
			m.onRefresh()
		}
		return m, nil

	case "x":
		if m.toaster != nil {
			m.toaster.DismissNewest()
		}
		return m, nil

	default:
		return m, nil
	}
}

// handleSearchKey handles keys while the search box has focus.
func (m model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.focusedPane = FocusCharts
		m.searchInput.Blur()
		return m, nil

	case "up":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "down":
		if r, ok := m.results(); ok && m.selected < len(r.Items)-1 {
			m.selected++
		}
		return m, nil
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if after := m.searchInput.Value(); after != before {
		m.selected = 0
		if m.searcher != nil {
			m.searcher.Input(after)
		}
	}
	return m, cmd
}

// handlePromptKey handles keys while the assign prompt is open.
func (m model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePrompt()
		return m, nil

	case "enter":
		value := strings.TrimSpace(m.promptInput.Value())
		userID, err := strconv.ParseInt(value, 10, 64)
		if err != nil || userID <= 0 {
			m.toast(fmt.Sprintf("Invalid user id %q", value), notify.Warning)
			return m, nil
		}
		ticket, ok := m.selectedTicket()
		m.closePrompt()
		if ok && m.mutator != nil {
			slog.Debug("assign requested", "ticket", ticket.ID, "user", userID)
			m.mutator.Assign(ticket.ID, userID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.promptInput, cmd = m.promptInput.Update(msg)
	return m, cmd
}

func (m *model) closePrompt() {
	m.focusedPane = FocusCharts
	m.promptInput.Blur()
	m.promptInput.SetValue("")
}

func (m model) quit() (tea.Model, tea.Cmd) {
	if m.onQuit != nil {
		m.onQuit()
	}
	return m, tea.Quit
}

// setStatus moves the selected ticket to status.
func (m *model) setStatus(status helpdesk.Status) {
	ticket, ok := m.selectedTicket()
	if !ok {
		m.toast("Select a ticket first", notify.Warning)
		return
	}
	if m.mutator == nil {
		return
	}
	slog.Debug("status change requested", "ticket", ticket.ID, "status", status)
	m.mutator.UpdateStatus(ticket.ID, status)
}

// copySelected copies the selected ticket id to the clipboard.
func (m *model) copySelected() {
	ticket, ok := m.selectedTicket()
	if !ok || m.copyText == nil {
		return
	}
	id := strconv.FormatInt(ticket.ID, 10)
	if err := m.copyText(id); err != nil {
		slog.Warn("clipboard write failed", "error", err)
		m.toast("Copy failed: "+err.Error(), notify.Danger)
		return
	}
	m.toast(fmt.Sprintf("Copied ticket #%s", id), notify.Info)
}

// startExport runs the exporter off the update loop.
func (m model) startExport() (tea.Model, tea.Cmd) {
	if m.exporter == nil || m.exporting {
		return m, nil
	}
	m.exporting = true
	export := m.exporter
	return m, func() tea.Msg {
		paths, err := export()
		return exportResultMsg{paths: paths, err: err}
	}
}

func (m *model) handleExportResult(msg exportResultMsg) {
	if msg.err != nil {
		slog.Warn("chart export failed", "error", msg.err)
		m.toast("Export failed: "+msg.err.Error(), notify.Danger)
		return
	}
	m.toast(fmt.Sprintf("Exported %s", strings.Join(msg.paths, ", ")), notify.Success)
}

func (m *model) toast(message string, kind notify.Kind) {
	if m.toaster != nil {
		m.toaster.Notify(message, kind)
	}
}
