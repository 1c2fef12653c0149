package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/npratt/deskboard/internal/helpdesk"
	"github.com/npratt/deskboard/internal/testutil"
	"github.com/npratt/deskboard/internal/view"
)

type fixture struct {
	mock     *helpdesk.MockClient
	timers   *testutil.FakeTimers
	surface  *view.Surface
	searcher *Searcher
}

func newFixture(t *testing.T, client helpdesk.TicketSearcher) *fixture {
	t.Helper()
	f := &fixture{
		timers:  testutil.NewFakeTimers(),
		surface: view.NewSurface(view.SearchResults),
	}
	if client == nil {
		f.mock = helpdesk.NewMockClient()
		client = f.mock
	}
	f.searcher = New(client, f.surface, view.SearchResults,
		WithAfterFunc(f.timers.AfterFunc),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return f
}

func ticket(id int64, title string) helpdesk.TicketSummary {
	return helpdesk.TicketSummary{
		ID:       id,
		Title:    title,
		Status:   helpdesk.StatusOpen.Label(),
		Category: helpdesk.Label{Name: "HARDWARE", DisplayName: "Hardware"},
	}
}

func TestSearcher_DebounceArmsTimer(t *testing.T) {
	f := newFixture(t, nil)

	f.searcher.Input("printer")

	last := f.timers.Last()
	if last == nil {
		t.Fatal("expected a debounce timer")
	}
	if last.Delay != 300*time.Millisecond {
		t.Errorf("Delay = %v, want 300ms", last.Delay)
	}
	if f.searcher.State() != Pending {
		t.Errorf("State() = %v, want pending", f.searcher.State())
	}
	if len(f.mock.GetSearchCalls()) != 0 {
		t.Error("no request should be issued before the timer fires")
	}
}

func TestSearcher_NewInputCancelsPendingTimer(t *testing.T) {
	f := newFixture(t, nil)

	f.searcher.Input("pri")
	first := f.timers.Last()
	f.searcher.Input("print")

	if !first.Stopped() {
		t.Error("previous timer should be cancelled by new input")
	}
	if n := f.timers.FireAll(); n != 1 {
		t.Errorf("fired %d timers, want 1", n)
	}

	calls := f.mock.GetSearchCalls()
	if len(calls) != 1 || calls[0] != "print" {
		t.Errorf("search calls = %v, want [print]", calls)
	}
}

func TestSearcher_ShortQueryClearsWithoutRequest(t *testing.T) {
	f := newFixture(t, nil)
	f.mock.SetSearchResponse("printer", []helpdesk.TicketSummary{ticket(1, "Printer jam")})

	f.searcher.Input("printer")
	f.timers.FireAll()

	pending := len(f.timers.All())
	f.searcher.Input(" p ")

	if len(f.timers.All()) != pending {
		t.Error("sub-threshold input should not arm a timer")
	}
	if f.searcher.State() != Idle {
		t.Errorf("State() = %v, want idle", f.searcher.State())
	}
	r, ok := f.searcher.Results()
	if !ok || r.State != Cleared || len(r.Items) != 0 {
		t.Errorf("results = %+v, want cleared", r)
	}
	if calls := f.mock.GetSearchCalls(); len(calls) != 1 {
		t.Errorf("search calls = %v, want only the first", calls)
	}
}

func TestSearcher_DisplaysResultsInBackendOrder(t *testing.T) {
	f := newFixture(t, nil)
	f.mock.SetSearchResponse("net", []helpdesk.TicketSummary{
		ticket(9, "VPN down"),
		ticket(3, "Wifi flaky"),
		ticket(5, "DNS"),
	})

	f.searcher.Input("net")
	f.timers.FireAll()

	r, _ := f.searcher.Results()
	if r.State != Displayed {
		t.Fatalf("State = %v, want displayed", r.State)
	}
	var ids []int64
	for _, it := range r.Items {
		ids = append(ids, it.ID)
	}
	if len(ids) != 3 || ids[0] != 9 || ids[1] != 3 || ids[2] != 5 {
		t.Errorf("ids = %v, want [9 3 5]", ids)
	}
	if r.Items[0].Status.DisplayName != "Open" || r.Items[0].Category.DisplayName != "Hardware" {
		t.Errorf("unexpected labels: %+v", r.Items[0])
	}
	if f.searcher.Accepted() != "net" {
		t.Errorf("Accepted() = %q", f.searcher.Accepted())
	}
}

func TestSearcher_ErrorRendersInline(t *testing.T) {
	f := newFixture(t, nil)
	f.mock.SearchError = &helpdesk.HTTPError{Method: "GET", URL: "/api/tickets/search", Status: 503}

	f.searcher.Input("vpn")
	f.timers.FireAll()

	r, _ := f.searcher.Results()
	if r.State != Errored {
		t.Fatalf("State = %v, want errored", r.State)
	}
	if r.Err != "server returned 503" {
		t.Errorf("Err = %q", r.Err)
	}
	if f.searcher.State() != Errored {
		t.Errorf("searcher state = %v", f.searcher.State())
	}
}

// Three searches are in flight at once; responses arrive 1, 3, 2. Only the
// third query's results may appear.
func TestSearcher_OnlyLatestTokenRenders(t *testing.T) {
	gates := map[string]chan struct{}{
		"pri":   make(chan struct{}),
		"prin":  make(chan struct{}),
		"print": make(chan struct{}),
	}
	results := map[string][]helpdesk.TicketSummary{
		"pri":   {ticket(1, "one")},
		"prin":  {ticket(2, "two")},
		"print": {ticket(3, "three")},
	}

	f := newFixture(t, nil)
	f.mock.DynamicSearch = func(ctx context.Context, keyword string) ([]helpdesk.TicketSummary, error, bool) {
		<-gates[keyword]
		return results[keyword], nil, true
	}

	var wg sync.WaitGroup
	for i, q := range []string{"pri", "prin", "print"} {
		f.searcher.Input(q)
		timer := f.timers.Last()
		wg.Add(1)
		go func() {
			defer wg.Done()
			timer.Fire()
		}()
		want := i + 1
		testutil.Eventually(t, time.Second, func() bool {
			return len(f.mock.GetSearchCalls()) == want
		}, "search issued")
	}

	close(gates["pri"])
	close(gates["print"])
	testutil.Eventually(t, time.Second, func() bool {
		r, _ := f.searcher.Results()
		return r.State == Displayed
	}, "latest results displayed")
	close(gates["prin"])
	wg.Wait()

	r, _ := f.searcher.Results()
	if r.Query != "print" || len(r.Items) != 1 || r.Items[0].ID != 3 {
		t.Errorf("results = %+v, want only the third query's", r)
	}
	if f.searcher.Token() != 3 {
		t.Errorf("Token() = %d, want 3", f.searcher.Token())
	}
}

func TestSearcher_StaleResponseReturnsErrStale(t *testing.T) {
	release := make(chan struct{})
	f := newFixture(t, nil)
	f.mock.DynamicSearch = func(ctx context.Context, keyword string) ([]helpdesk.TicketSummary, error, bool) {
		if keyword == "old" {
			<-release
		}
		return nil, nil, false
	}

	f.searcher.Input("old")
	token := f.searcher.Token()

	errCh := make(chan error, 1)
	go func() { errCh <- f.searcher.execute(token, "old") }()
	testutil.Eventually(t, time.Second, func() bool {
		return len(f.mock.GetSearchCalls()) == 1
	}, "old search issued")

	f.searcher.Input("new")
	close(release)

	if err := <-errCh; !errors.Is(err, ErrStale) {
		t.Errorf("execute() = %v, want ErrStale", err)
	}
	if _, ok := f.searcher.Results(); ok {
		t.Error("stale response must not render")
	}
}

func TestSearcher_RerunIssuesCurrentQuery(t *testing.T) {
	f := newFixture(t, nil)
	f.mock.SetSearchResponse("printer", []helpdesk.TicketSummary{ticket(1, "Printer jam")})

	f.searcher.Rerun()
	if len(f.timers.All()) != 0 {
		t.Fatal("Rerun without a query should do nothing")
	}

	f.searcher.Input("printer")
	f.timers.FireAll()

	f.searcher.Rerun()
	last := f.timers.Last()
	if last.Delay != 0 {
		t.Errorf("rerun Delay = %v, want 0", last.Delay)
	}
	last.Fire()

	calls := f.mock.GetSearchCalls()
	if len(calls) != 2 || calls[1] != "printer" {
		t.Errorf("search calls = %v", calls)
	}
}

func TestSearcher_MissingMountIsIgnored(t *testing.T) {
	mock := helpdesk.NewMockClient()
	timers := testutil.NewFakeTimers()
	s := New(mock, view.NewSurface(), view.SearchResults, WithAfterFunc(timers.AfterFunc))

	s.Input("printer")
	timers.FireAll()

	if s.State() != Empty {
		t.Errorf("State() = %v, want empty", s.State())
	}
	if _, ok := s.Results(); ok {
		t.Error("Results() should report no mount")
	}
}

func TestSearcher_NoResultsEndToEnd(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	client, err := helpdesk.NewClient(backend.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	f := newFixture(t, client)

	f.searcher.Input("pr")
	f.timers.FireAll()

	r, ok := f.searcher.Results()
	if !ok {
		t.Fatal("expected results to be rendered")
	}
	if r.State != Empty {
		t.Errorf("State = %v, want empty (no results), err %q", r.State, r.Err)
	}
	if backend.CallCount("GET", "/api/tickets/search") != 1 {
		t.Errorf("expected one search request, got calls %+v", backend.GetCalls())
	}
}

func TestSearcher_CancelledContextSkipsRequest(t *testing.T) {
	mock := helpdesk.NewMockClient()
	timers := testutil.NewFakeTimers()
	surface := view.NewSurface(view.SearchResults)
	ctx, cancel := context.WithCancel(context.Background())
	s := New(mock, surface, view.SearchResults,
		WithAfterFunc(timers.AfterFunc),
		WithContext(ctx),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	s.Input("printer")
	cancel()
	timers.FireAll()

	if calls := mock.GetSearchCalls(); len(calls) != 0 {
		t.Errorf("search calls = %v, want none", calls)
	}
	if r, ok := s.Results(); ok && r.State != Cleared {
		t.Errorf("results rendered after cancel: %+v", r)
	}
}

func TestSearcher_CancelAbortsInFlightSearch(t *testing.T) {
	mock := helpdesk.NewMockClient()
	timers := testutil.NewFakeTimers()
	surface := view.NewSurface(view.SearchResults)
	ctx, cancel := context.WithCancel(context.Background())
	s := New(mock, surface, view.SearchResults,
		WithAfterFunc(timers.AfterFunc),
		WithTimeout(time.Minute),
		WithContext(ctx),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	mock.DynamicSearch = func(ctx context.Context, keyword string) ([]helpdesk.TicketSummary, error, bool) {
		<-ctx.Done()
		return nil, ctx.Err(), true
	}

	s.Input("printer")
	done := make(chan struct{})
	go func() {
		defer close(done)
		timers.FireAll()
	}()
	testutil.Eventually(t, time.Second, func() bool {
		return len(mock.GetSearchCalls()) == 1
	}, "search issued")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("search did not return after cancel")
	}

	if r, ok := s.Results(); ok && r.State == Errored {
		t.Errorf("cancelled search rendered an error: %+v", r)
	}
	if s.State() != Pending {
		t.Errorf("State() = %v, want pending", s.State())
	}
}
