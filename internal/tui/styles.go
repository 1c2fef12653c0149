package tui

import "github.com/charmbracelet/lipgloss"

// styles contains all lipgloss styles used by the TUI.
var styles = struct {
	// Layout styles
	Container lipgloss.Style
	Divider   lipgloss.Style

	// Header styles
	Title  lipgloss.Style
	Clock  lipgloss.Style
	Totals lipgloss.Style
	Muted  lipgloss.Style

	// Footer style
	Footer lipgloss.Style

	// Chart and search styles
	ChartTitle lipgloss.Style
	TicketID   lipgloss.Style
	Selected   lipgloss.Style
	Error      lipgloss.Style

	// Badge colors, keyed by the backend's badge class
	BadgePrimary   lipgloss.Style
	BadgeSuccess   lipgloss.Style
	BadgeWarning   lipgloss.Style
	BadgeDanger    lipgloss.Style
	BadgeInfo      lipgloss.Style
	BadgeSecondary lipgloss.Style

	// Toasts
	ToastSuccess lipgloss.Style
	ToastDanger  lipgloss.Style
	ToastWarning lipgloss.Style
	ToastInfo    lipgloss.Style
}{
	// Layout styles
	Container: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")),

	Divider: lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")),

	// Header styles
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("212")),

	Clock: lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")),

	Totals: lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")),

	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	// Footer style
	Footer: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	ChartTitle: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("252")),

	TicketID: lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")),

	Selected: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		Background(lipgloss.Color("236")),

	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")),

	BadgePrimary:   lipgloss.NewStyle().Foreground(lipgloss.Color("#0d6efd")),
	BadgeSuccess:   lipgloss.NewStyle().Foreground(lipgloss.Color("#28a745")),
	BadgeWarning:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ffc107")),
	BadgeDanger:    lipgloss.NewStyle().Foreground(lipgloss.Color("#dc3545")),
	BadgeInfo:      lipgloss.NewStyle().Foreground(lipgloss.Color("#17a2b8")),
	BadgeSecondary: lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d")),

	ToastSuccess: lipgloss.NewStyle().
		Foreground(lipgloss.Color("82")),

	ToastDanger: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("196")),

	ToastWarning: lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")),

	ToastInfo: lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")),
}
