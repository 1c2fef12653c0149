package tui

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/npratt/deskboard/internal/charts"
	"github.com/npratt/deskboard/internal/helpdesk"
	"github.com/npratt/deskboard/internal/notify"
	"github.com/npratt/deskboard/internal/search"
	"github.com/npratt/deskboard/internal/view"
)

const (
	minWidth  = 60
	minHeight = 15

	// labelWidth is the column reserved for chart labels.
	labelWidth = 12
	// maxResultRows caps how many search results are drawn.
	maxResultRows = 10
)

// View implements tea.Model. This renders the full TUI display.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// Handle too small terminal
	if m.width < minWidth || m.height < minHeight {
		return m.renderTooSmall()
	}

	w := safeWidth(m.width - 4) // Account for container borders

	var sections []string
	sections = append(sections, m.renderHeader(w))
	sections = append(sections, m.renderDivider(w))
	sections = append(sections, m.renderCharts(w))
	sections = append(sections, m.renderDivider(w))
	sections = append(sections, m.renderSearch(w))
	if toasts := m.renderToasts(w); toasts != "" {
		sections = append(sections, m.renderDivider(w))
		sections = append(sections, toasts)
	}
	sections = append(sections, m.renderDivider(w))
	sections = append(sections, m.renderFooter())

	content := strings.Join(sections, "\n")

	rendered := styles.Container.
		Width(safeWidth(m.width - 2)).
		Render(content)

	return lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top, rendered)
}

// renderTooSmall renders a minimal message for terminals that are too small.
func (m model) renderTooSmall() string {
	return fmt.Sprintf("Terminal too small (%dx%d). Need %dx%d minimum.",
		m.width, m.height, minWidth, minHeight)
}

// renderHeader renders the title, clock and ticket totals.
func (m model) renderHeader(w int) string {
	title := "DESKBOARD"
	if m.admin {
		title += " (admin)"
	}
	styledTitle := styles.Title.Render(title)
	clock := styles.Clock.Render(m.now.Format("Mon Jan 2 15:04:05"))

	titleLine := lipgloss.JoinHorizontal(
		lipgloss.Top,
		styledTitle,
		strings.Repeat(" ", max(1, w-lipgloss.Width(styledTitle)-lipgloss.Width(clock))),
		clock,
	)

	var stats *helpdesk.Stats
	var refreshed string
	if m.stats != nil {
		s, at := m.stats.Last()
		stats = s
		if s != nil {
			refreshed = "refreshed " + humanize.RelTime(at, m.now, "ago", "from now")
		}
	}

	var totalsLine string
	if stats == nil {
		totalsLine = styles.Muted.Render("waiting for stats...")
	} else {
		totals := styles.Totals.Render(fmt.Sprintf("total: %s  mine: %s  urgent: %s",
			humanize.Comma(stats.TotalTickets),
			humanize.Comma(stats.MyAssignedTickets),
			humanize.Comma(stats.UrgentTickets)))
		ago := styles.Muted.Render(refreshed)
		totalsLine = lipgloss.JoinHorizontal(
			lipgloss.Top,
			totals,
			strings.Repeat(" ", max(1, w-lipgloss.Width(totals)-lipgloss.Width(ago))),
			ago,
		)
	}

	return strings.Join([]string{titleLine, totalsLine}, "\n")
}

// renderDivider renders a horizontal divider line.
func (m model) renderDivider(w int) string {
	return styles.Divider.Render(strings.Repeat("─", w))
}

// renderCharts renders every mounted chart as horizontal bars.
func (m model) renderCharts(w int) string {
	ids := m.visibleCharts()
	if len(ids) == 0 {
		return styles.Muted.Render("no charts mounted")
	}

	var blocks []string
	for _, id := range ids {
		blocks = append(blocks, m.renderChart(id, w))
	}
	return strings.Join(blocks, "\n")
}

// renderChart renders the chart bound to one mount.
func (m model) renderChart(id string, w int) string {
	slot, _ := charts.SlotForMount(id)
	title := slot.Title
	if id == view.AdminStatusChart || id == view.AdminPriorityChart {
		title += " (admin)"
	}
	lines := []string{styles.ChartTitle.Render(title)}

	mount, _ := m.surface.FindMount(id)
	h, ok := mount.Content().(*charts.Handle)
	if !ok || h == nil {
		lines = append(lines, styles.Muted.Render("  loading..."))
		return strings.Join(lines, "\n")
	}

	series := h.Series()
	total := series.Total()
	peak := 0.0
	for _, v := range series.Values {
		peak = math.Max(peak, v)
	}

	valueWidth := 12
	barSpace := max(1, w-labelWidth-valueWidth-3)
	for i, v := range series.Values {
		n := 0
		if peak > 0 {
			n = int(math.Round(v / peak * float64(barSpace)))
		}
		bar := lipgloss.NewStyle().
			Foreground(lipgloss.Color(series.Colors[i])).
			Render(strings.Repeat("█", n))

		value := fmt.Sprintf("%d", int64(v))
		if h.Kind() == charts.Doughnut && total > 0 {
			value = fmt.Sprintf("%d (%.0f%%)", int64(v), v/total*100)
		}

		label := truncate(series.Labels[i], labelWidth)
		lines = append(lines, fmt.Sprintf("  %-*s %s %s",
			labelWidth, label, bar, styles.Muted.Render(value)))
	}
	return strings.Join(lines, "\n")
}

// renderSearch renders the search box and its results.
func (m model) renderSearch(w int) string {
	lines := []string{m.searchInput.View()}

	r, ok := m.results()
	state := search.Idle
	if m.searcher != nil {
		state = m.searcher.State()
	}

	switch {
	case state == search.Pending:
		lines = append(lines, styles.Muted.Render("  searching..."))
	case !ok || r.State == search.Cleared:
		lines = append(lines, styles.Muted.Render("  type at least 2 characters to search"))
	case r.State == search.Empty:
		lines = append(lines, styles.Muted.Render("  No tickets found"))
	case r.State == search.Errored:
		lines = append(lines, styles.Error.Render("  Search failed: "+r.Err))
	case r.State == search.Displayed:
		selected := clampIndex(m.selected, len(r.Items))
		start := 0
		if selected >= maxResultRows {
			start = selected - maxResultRows + 1
		}
		end := min(len(r.Items), start+maxResultRows)
		for i := start; i < end; i++ {
			lines = append(lines, m.renderResult(r.Items[i], i == selected, w))
		}
		if len(r.Items) > maxResultRows {
			lines = append(lines, styles.Muted.Render(
				fmt.Sprintf("  %d of %d results", end-start, len(r.Items))))
		}
	}
	return strings.Join(lines, "\n")
}

// renderResult renders one search result row.
func (m model) renderResult(t helpdesk.TicketSummary, selected bool, w int) string {
	id := fmt.Sprintf("#%d", t.ID)
	badge := badgeStyle(t.Status.BadgeClass).Render(t.Status.DisplayName)
	category := styles.Muted.Render(t.Category.DisplayName)

	titleWidth := max(10, w-len(id)-lipgloss.Width(badge)-lipgloss.Width(category)-8)
	title := truncate(sanitize(t.Title), titleWidth)

	cursor := "  "
	if selected {
		cursor = "> "
		title = styles.Selected.Render(title)
	}
	return fmt.Sprintf("%s%s %s  %s  %s", cursor, styles.TicketID.Render(id), title, badge, category)
}

// renderToasts renders visible notifications, newest last.
func (m model) renderToasts(w int) string {
	if m.toaster == nil {
		return ""
	}
	visible := m.toaster.Visible()
	if len(visible) == 0 {
		return ""
	}
	var lines []string
	for _, n := range visible {
		lines = append(lines, toastStyle(n.Kind).Render(truncate(n.Message, w)))
	}
	return strings.Join(lines, "\n")
}

// renderFooter renders keyboard shortcuts help text, or the open prompt.
func (m model) renderFooter() string {
	switch m.focusedPane {
	case FocusPrompt:
		return m.promptInput.View() + styles.Footer.Render("  enter: assign  esc: cancel")
	case FocusSearch:
		return styles.Footer.Render("type to search  ↑/↓: select  esc: done  ctrl+c: quit")
	default:
		return styles.Footer.Render("/: search  1-5: set status  a: assign  y: copy id  e: export  R: refresh  x: dismiss  q: quit")
	}
}

// badgeStyle maps a backend badge class onto a terminal style.
func badgeStyle(class string) lipgloss.Style {
	switch class {
	case "primary":
		return styles.BadgePrimary
	case "success":
		return styles.BadgeSuccess
	case "warning":
		return styles.BadgeWarning
	case "danger":
		return styles.BadgeDanger
	case "info":
		return styles.BadgeInfo
	default:
		return styles.BadgeSecondary
	}
}

// toastStyle maps a notification kind onto a terminal style.
func toastStyle(kind notify.Kind) lipgloss.Style {
	switch kind {
	case notify.Success:
		return styles.ToastSuccess
	case notify.Danger:
		return styles.ToastDanger
	case notify.Warning:
		return styles.ToastWarning
	default:
		return styles.ToastInfo
	}
}

// sanitize drops control characters so backend text cannot emit escape
// sequences into the terminal.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// truncate shortens s to at most w runes, marking the cut with "...".
func truncate(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w <= 3 {
		return string(r[:max(0, w)])
	}
	return string(r[:w-3]) + "..."
}

// safeWidth returns a width that is at least 1 to prevent negative values.
func safeWidth(w int) int {
	if w < 1 {
		return 1
	}
	return w
}
