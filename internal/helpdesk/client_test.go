package helpdesk

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/npratt/deskboard/internal/testutil"
)

func newTestClient(t *testing.T, backend *testutil.FakeBackend, opts ...Option) *Client {
	t.Helper()
	c, err := NewClient(backend.URL, opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClient_RejectsRelativeURL(t *testing.T) {
	if _, err := NewClient("/api"); err == nil {
		t.Fatal("expected error for relative base url")
	}
}

func TestClient_Stats(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	client := newTestClient(t, backend)

	stats, err := client.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Stats{
		TotalTickets:        42,
		OpenTickets:         12,
		InProgressTickets:   7,
		ResolvedTickets:     15,
		ClosedTickets:       8,
		UrgentTickets:       3,
		HighPriorityTickets: 5,
		MyAssignedTickets:   4,
	}
	if *stats != want {
		t.Errorf("Stats() = %+v, want %+v", *stats, want)
	}
}

func TestClient_StatsErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "http error",
			status: http.StatusInternalServerError,
			body:   `{"error":"boom"}`,
			check: func(t *testing.T, err error) {
				var httpErr *HTTPError
				if !errors.As(err, &httpErr) {
					t.Fatalf("expected *HTTPError, got %T", err)
				}
				if httpErr.Status != http.StatusInternalServerError {
					t.Errorf("Status = %d, want 500", httpErr.Status)
				}
				if StatusCode(err) != 500 {
					t.Errorf("StatusCode() = %d, want 500", StatusCode(err))
				}
			},
		},
		{
			name:   "parse error",
			status: http.StatusOK,
			body:   `<html>login</html>`,
			check: func(t *testing.T, err error) {
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("expected *ParseError, got %T", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := testutil.NewFakeBackend(t)
			backend.SetStats(tt.status, tt.body)
			client := newTestClient(t, backend)

			_, err := client.Stats(context.Background())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			tt.check(t, err)
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	client := newTestClient(t, backend)
	backend.Close()

	_, err := client.Stats(context.Background())

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %T (%v)", err, err)
	}
	if Describe(err) != "server unreachable" {
		t.Errorf("Describe() = %q", Describe(err))
	}
}

func TestClient_SearchTickets(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.SetSearch("printer jam", testutil.SampleSearchJSON)
	client := newTestClient(t, backend)

	tickets, err := client.SearchTickets(context.Background(), "printer jam")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tickets) != 2 {
		t.Fatalf("expected 2 tickets, got %d", len(tickets))
	}
	if tickets[0].ID != 101 || tickets[1].ID != 102 {
		t.Errorf("expected backend order [101 102], got [%d %d]", tickets[0].ID, tickets[1].ID)
	}
	if tickets[1].Status.DisplayName != "In Progress" || tickets[1].Status.BadgeClass != "warning" {
		t.Errorf("unexpected status label: %+v", tickets[1].Status)
	}
	if tickets[0].Category.DisplayName != "Printer" {
		t.Errorf("unexpected category label: %+v", tickets[0].Category)
	}

	calls := backend.GetCalls()
	last := calls[len(calls)-1]
	if last.Query != "keyword=printer+jam" {
		t.Errorf("query = %q, want keyword=printer+jam", last.Query)
	}
}

func TestClient_SearchTicketsEnumLabels(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.SetSearch("vpn", testutil.EnumSearchJSON)
	client := newTestClient(t, backend)

	tickets, err := client.SearchTickets(context.Background(), "vpn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := tickets[0]
	if got.Status.DisplayName != "In Progress" || got.Status.BadgeClass != "warning" {
		t.Errorf("status = %+v", got.Status)
	}
	if got.Priority.DisplayName != "Urgent" {
		t.Errorf("priority = %+v", got.Priority)
	}
	if got.Category.DisplayName != "Network" {
		t.Errorf("category = %+v", got.Category)
	}
}

func TestClient_SearchPathOverride(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	client := newTestClient(t, backend, WithSearchPath("/api/other"))

	_, err := client.SearchTickets(context.Background(), "pr")
	if StatusCode(err) != http.StatusNotFound {
		t.Fatalf("expected 404 from unknown path, got %v", err)
	}
}

func TestClient_Mutations(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	client := newTestClient(t, backend)

	if err := client.UpdateStatus(context.Background(), 42, StatusResolved); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if err := client.Assign(context.Background(), 42, 7); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	calls := backend.GetCalls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if calls[0].Method != http.MethodPost || calls[0].Path != "/api/tickets/42/status" || calls[0].Query != "status=RESOLVED" {
		t.Errorf("unexpected status call: %+v", calls[0])
	}
	if calls[1].Path != "/api/tickets/42/assign" || calls[1].Query != "userId=7" {
		t.Errorf("unexpected assign call: %+v", calls[1])
	}
}

func TestClient_MutationHTTPError(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.SetMutate(http.StatusInternalServerError, `{"error":"boom"}`)
	client := newTestClient(t, backend)

	err := client.UpdateStatus(context.Background(), 42, StatusResolved)
	if StatusCode(err) != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %v", err)
	}
	if !strings.Contains(Describe(err), "500") {
		t.Errorf("Describe() = %q", Describe(err))
	}
}

func TestClient_MutationEmptyBody(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.SetMutate(http.StatusOK, "")
	client := newTestClient(t, backend)

	if err := client.Assign(context.Background(), 1, 2); err != nil {
		t.Fatalf("empty body should be accepted, got %v", err)
	}
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	client := newTestClient(t, backend, WithRateLimit(0.001, 1))

	if _, err := client.Stats(context.Background()); err != nil {
		t.Fatalf("first request should use the burst: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Stats(ctx)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError from limiter wait, got %T (%v)", err, err)
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{in: "RESOLVED", want: StatusResolved},
		{in: "in progress", want: StatusInProgress},
		{in: " in_progress ", want: StatusInProgress},
		{in: "reopened", want: StatusReopened},
		{in: "done", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStatus_Label(t *testing.T) {
	l := StatusClosed.Label()
	if l.DisplayName != "Closed" || l.BadgeClass != "secondary" {
		t.Errorf("unexpected label %+v", l)
	}
	if Status("WEIRD").Label().DisplayName != "WEIRD" {
		t.Error("unknown status should fall back to its name")
	}
}
