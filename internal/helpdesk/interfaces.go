// Package helpdesk provides the HTTP client for the helpdesk REST API and
// the wire types it exchanges. Consumers depend on the narrow interfaces
// below so they can be tested against MockClient.
package helpdesk

import "context"

// Stats is the aggregate ticket snapshot returned by GET /api/stats.
// A Stats value is never mutated after decoding.
type Stats struct {
	TotalTickets        int64 `json:"totalTickets" yaml:"total_tickets"`
	OpenTickets         int64 `json:"openTickets" yaml:"open_tickets"`
	InProgressTickets   int64 `json:"inProgressTickets" yaml:"in_progress_tickets"`
	ResolvedTickets     int64 `json:"resolvedTickets" yaml:"resolved_tickets"`
	ClosedTickets       int64 `json:"closedTickets" yaml:"closed_tickets"`
	UrgentTickets       int64 `json:"urgentTickets" yaml:"urgent_tickets"`
	HighPriorityTickets int64 `json:"highPriorityTickets" yaml:"high_priority_tickets"`
	MyAssignedTickets   int64 `json:"myAssignedTickets" yaml:"my_assigned_tickets"`
}

// TicketSummary is one entry of a search result.
type TicketSummary struct {
	ID                 int64  `json:"id"`
	Title              string `json:"title"`
	Status             Label  `json:"status"`
	Category           Label  `json:"category"`
	Priority           Label  `json:"priority"`
	AssignedToUsername string `json:"assignedToUsername,omitempty"`
}

// StatsReader fetches dashboard statistics.
type StatsReader interface {
	// Stats retrieves the current aggregate ticket counts.
	Stats(ctx context.Context) (*Stats, error)
}

// TicketSearcher runs keyword searches.
type TicketSearcher interface {
	// SearchTickets returns tickets matching keyword in backend order.
	SearchTickets(ctx context.Context, keyword string) ([]TicketSummary, error)
}

// TicketUpdater performs state-changing ticket calls.
type TicketUpdater interface {
	// UpdateStatus moves a ticket to the given status.
	UpdateStatus(ctx context.Context, ticketID int64, status Status) error

	// Assign assigns a ticket to the given user.
	Assign(ctx context.Context, ticketID, userID int64) error
}

// API combines all helpdesk operations.
type API interface {
	StatsReader
	TicketSearcher
	TicketUpdater
}
