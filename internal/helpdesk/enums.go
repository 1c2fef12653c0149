package helpdesk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Status is a ticket workflow state as named by the backend.
type Status string

// Ticket statuses.
const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusClosed     Status = "CLOSED"
	StatusReopened   Status = "REOPENED"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved, StatusClosed, StatusReopened}

// ParseStatus accepts a backend name ("IN_PROGRESS") or a display name
// ("In Progress"), case-insensitively.
func ParseStatus(s string) (Status, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
	for _, st := range Statuses {
		if string(st) == norm {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown ticket status %q", s)
}

// Label returns the display label for the status.
func (s Status) Label() Label {
	if l, ok := knownLabels[string(s)]; ok {
		return l
	}
	return Label{Name: string(s), DisplayName: string(s)}
}

// Label is an enum value rendered for display: the backend name, a human
// label and a badge style class.
type Label struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName"`
	BadgeClass  string `json:"badgeClass,omitempty"`
}

// knownLabels maps backend enum names to their display form, so a bare
// string such as "IN_PROGRESS" decodes to a full Label.
var knownLabels = map[string]Label{
	// statuses
	"OPEN":        {Name: "OPEN", DisplayName: "Open", BadgeClass: "info"},
	"IN_PROGRESS": {Name: "IN_PROGRESS", DisplayName: "In Progress", BadgeClass: "warning"},
	"RESOLVED":    {Name: "RESOLVED", DisplayName: "Resolved", BadgeClass: "success"},
	"CLOSED":      {Name: "CLOSED", DisplayName: "Closed", BadgeClass: "secondary"},
	"REOPENED":    {Name: "REOPENED", DisplayName: "Reopened", BadgeClass: "danger"},

	// priorities
	"LOW":    {Name: "LOW", DisplayName: "Low", BadgeClass: "success"},
	"MEDIUM": {Name: "MEDIUM", DisplayName: "Medium", BadgeClass: "warning"},
	"HIGH":   {Name: "HIGH", DisplayName: "High", BadgeClass: "danger"},
	"URGENT": {Name: "URGENT", DisplayName: "Urgent", BadgeClass: "danger"},

	// categories
	"HARDWARE": {Name: "HARDWARE", DisplayName: "Hardware"},
	"SOFTWARE": {Name: "SOFTWARE", DisplayName: "Software"},
	"NETWORK":  {Name: "NETWORK", DisplayName: "Network"},
	"ACCESS":   {Name: "ACCESS", DisplayName: "Access & Permissions"},
	"EMAIL":    {Name: "EMAIL", DisplayName: "Email"},
	"PRINTER":  {Name: "PRINTER", DisplayName: "Printer"},
	"PHONE":    {Name: "PHONE", DisplayName: "Phone"},
	"OTHER":    {Name: "OTHER", DisplayName: "Other"},
}

// UnmarshalJSON accepts either the object form
// {"displayName": ..., "badgeClass": ...} or a bare enum name.
func (l *Label) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = Label{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		if known, ok := knownLabels[name]; ok {
			*l = known
			return nil
		}
		*l = Label{Name: name, DisplayName: name}
		return nil
	}

	type plain Label
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = Label(p)
	return nil
}

// String returns the display name.
func (l Label) String() string {
	return l.DisplayName
}
