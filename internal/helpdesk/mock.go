package helpdesk

import (
	"context"
	"sync"
)

// DynamicSearchFunc is a callback for dynamic SearchTickets responses.
// It is invoked without the mock's lock held, so it may block.
type DynamicSearchFunc func(ctx context.Context, keyword string) ([]TicketSummary, error, bool)

// DynamicStatsFunc is a callback for dynamic Stats responses.
// It is invoked without the mock's lock held, so it may block.
type DynamicStatsFunc func(ctx context.Context) (*Stats, error, bool)

// MockClient is a mock implementation of API for testing.
// It records all calls and returns configured responses.
type MockClient struct {
	mu sync.Mutex

	// Configured responses
	StatsResponse     *Stats
	StatsError        error
	SearchResponses   map[string][]TicketSummary
	SearchError       error
	UpdateStatusError error
	AssignError       error

	// Dynamic response callbacks
	DynamicStats  DynamicStatsFunc
	DynamicSearch DynamicSearchFunc

	// Call tracking
	StatsCalls        int
	SearchCalls       []string
	UpdateStatusCalls []UpdateStatusCall
	AssignCalls       []AssignCall
}

// UpdateStatusCall records an UpdateStatus call.
type UpdateStatusCall struct {
	TicketID int64
	Status   Status
}

// AssignCall records an Assign call.
type AssignCall struct {
	TicketID int64
	UserID   int64
}

// NewMockClient creates a new MockClient with initialized maps.
func NewMockClient() *MockClient {
	return &MockClient{
		SearchResponses: make(map[string][]TicketSummary),
	}
}

// Stats implements StatsReader.
func (m *MockClient) Stats(ctx context.Context) (*Stats, error) {
	m.mu.Lock()
	m.StatsCalls++
	dynamic := m.DynamicStats
	m.mu.Unlock()

	if dynamic != nil {
		if stats, err, handled := dynamic(ctx); handled {
			return stats, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StatsError != nil {
		return nil, m.StatsError
	}
	if m.StatsResponse == nil {
		return &Stats{}, nil
	}
	stats := *m.StatsResponse
	return &stats, nil
}

// SearchTickets implements TicketSearcher.
func (m *MockClient) SearchTickets(ctx context.Context, keyword string) ([]TicketSummary, error) {
	m.mu.Lock()
	m.SearchCalls = append(m.SearchCalls, keyword)
	dynamic := m.DynamicSearch
	m.mu.Unlock()

	if dynamic != nil {
		if tickets, err, handled := dynamic(ctx, keyword); handled {
			return tickets, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SearchError != nil {
		return nil, m.SearchError
	}
	return m.SearchResponses[keyword], nil
}

// UpdateStatus implements TicketUpdater.
func (m *MockClient) UpdateStatus(ctx context.Context, ticketID int64, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateStatusCalls = append(m.UpdateStatusCalls, UpdateStatusCall{
		TicketID: ticketID,
		Status:   status,
	})

	return m.UpdateStatusError
}

// Assign implements TicketUpdater.
func (m *MockClient) Assign(ctx context.Context, ticketID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AssignCalls = append(m.AssignCalls, AssignCall{
		TicketID: ticketID,
		UserID:   userID,
	})

	return m.AssignError
}

// SetStats configures the Stats response.
func (m *MockClient) SetStats(stats Stats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatsResponse = &stats
	m.StatsError = nil
}

// SetSearchResponse configures a SearchTickets response for a keyword.
func (m *MockClient) SetSearchResponse(keyword string, tickets []TicketSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchResponses[keyword] = tickets
}

// GetSearchCalls returns a copy of the recorded search keywords.
func (m *MockClient) GetSearchCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.SearchCalls...)
}

// GetStatsCalls returns the number of Stats calls.
func (m *MockClient) GetStatsCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.StatsCalls
}

// GetUpdateStatusCalls returns a copy of the recorded UpdateStatus calls.
func (m *MockClient) GetUpdateStatusCalls() []UpdateStatusCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]UpdateStatusCall(nil), m.UpdateStatusCalls...)
}

// GetAssignCalls returns a copy of the recorded Assign calls.
func (m *MockClient) GetAssignCalls() []AssignCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]AssignCall(nil), m.AssignCalls...)
}

// Reset clears all recorded calls.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StatsCalls = 0
	m.SearchCalls = nil
	m.UpdateStatusCalls = nil
	m.AssignCalls = nil
}

// Verify MockClient implements all interfaces.
var (
	_ API            = (*MockClient)(nil)
	_ StatsReader    = (*MockClient)(nil)
	_ TicketSearcher = (*MockClient)(nil)
	_ TicketUpdater  = (*MockClient)(nil)
)
