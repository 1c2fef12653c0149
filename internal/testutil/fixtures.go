package testutil

// Sample helpdesk API responses

// SampleStatsJSON is a typical GET /api/stats response.
var SampleStatsJSON = `{
  "totalTickets": 42,
  "openTickets": 12,
  "inProgressTickets": 7,
  "resolvedTickets": 15,
  "closedTickets": 8,
  "urgentTickets": 3,
  "highPriorityTickets": 5,
  "myAssignedTickets": 4
}`

// EmptyStatsJSON is a stats response for an empty helpdesk.
var EmptyStatsJSON = `{
  "totalTickets": 0,
  "openTickets": 0,
  "inProgressTickets": 0,
  "resolvedTickets": 0,
  "closedTickets": 0,
  "urgentTickets": 0,
  "highPriorityTickets": 0,
  "myAssignedTickets": 0
}`

// SampleSearchJSON is a search response using the object label form.
var SampleSearchJSON = `[
  {"id": 101, "title": "Printer jams on floor 3", "status": {"displayName": "Open", "badgeClass": "info"}, "category": {"displayName": "Printer"}},
  {"id": 102, "title": "Printer driver missing", "status": {"displayName": "In Progress", "badgeClass": "warning"}, "category": {"displayName": "Software"}}
]`

// EnumSearchJSON is a search response using bare enum names, as the
// backend emits when labels are not expanded.
var EnumSearchJSON = `[
  {"id": 7, "title": "VPN drops every hour", "status": "IN_PROGRESS", "priority": "URGENT", "category": "NETWORK", "assignedToUsername": "agent1"}
]`

// EmptySearchJSON is a search response with no matches.
var EmptySearchJSON = `[]`

// MutationSuccessJSON is a typical status/assign response body.
var MutationSuccessJSON = `{"id": 42, "status": "RESOLVED"}`
