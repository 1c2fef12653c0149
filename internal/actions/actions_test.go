package actions

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/npratt/deskboard/internal/helpdesk"
	"github.com/npratt/deskboard/internal/notify"
	"github.com/npratt/deskboard/internal/testutil"
	"github.com/npratt/deskboard/internal/view"
)

type fixture struct {
	timers   *testutil.FakeTimers
	notifier *notify.Notifier
	reloads  atomic.Int32
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{timers: testutil.NewFakeTimers()}
	// Toasts stay until dismissed so only reload timers come from f.timers.
	f.notifier = notify.New(view.NewSurface(), notify.WithAutoDismiss(0))
	return f
}

func (f *fixture) actions(client helpdesk.TicketUpdater) *Actions {
	return New(client, f.notifier, ReloaderFunc(func() { f.reloads.Add(1) }),
		WithAfterFunc(f.timers.AfterFunc),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestActions_UpdateStatusSuccess(t *testing.T) {
	f := newFixture(t)
	backend := testutil.NewFakeBackend(t)
	client, err := helpdesk.NewClient(backend.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	a := f.actions(client)
	a.UpdateStatus(42, helpdesk.StatusResolved)
	a.Wait()

	toasts := f.notifier.Visible()
	if len(toasts) != 1 {
		t.Fatalf("expected 1 toast, got %d", len(toasts))
	}
	if toasts[0].Kind != notify.Success {
		t.Errorf("Kind = %s, want success", toasts[0].Kind)
	}
	if toasts[0].Message != "Ticket #42 status updated to Resolved" {
		t.Errorf("Message = %q", toasts[0].Message)
	}

	timers := f.timers.All()
	if len(timers) != 1 {
		t.Fatalf("expected one reload timer, got %d", len(timers))
	}
	if timers[0].Delay != time.Second {
		t.Errorf("reload delay = %v, want 1s", timers[0].Delay)
	}
	if f.reloads.Load() != 0 {
		t.Error("reload must wait for the delay")
	}
	timers[0].Fire()
	if f.reloads.Load() != 1 {
		t.Errorf("reloads = %d, want 1", f.reloads.Load())
	}

	if backend.CallCount(http.MethodPost, "/api/tickets/42/status") != 1 {
		t.Errorf("calls = %+v", backend.GetCalls())
	}
}

func TestActions_UpdateStatusServerError(t *testing.T) {
	f := newFixture(t)
	backend := testutil.NewFakeBackend(t)
	backend.SetMutate(http.StatusInternalServerError, `{"error":"boom"}`)
	client, err := helpdesk.NewClient(backend.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	a := f.actions(client)
	a.UpdateStatus(42, helpdesk.StatusResolved)
	a.Wait()

	toasts := f.notifier.Visible()
	if len(toasts) != 1 {
		t.Fatalf("expected 1 toast, got %d", len(toasts))
	}
	if toasts[0].Kind != notify.Danger {
		t.Errorf("Kind = %s, want danger", toasts[0].Kind)
	}
	if !strings.Contains(toasts[0].Message, "server returned 500") {
		t.Errorf("Message = %q", toasts[0].Message)
	}
	if len(f.timers.All()) != 0 {
		t.Error("no reload should be scheduled after a failure")
	}
	if f.reloads.Load() != 0 {
		t.Error("no reload should happen after a failure")
	}
}

func TestActions_Assign(t *testing.T) {
	f := newFixture(t)
	mock := helpdesk.NewMockClient()

	a := f.actions(mock)
	a.Assign(7, 3)
	a.Wait()

	calls := mock.GetAssignCalls()
	if len(calls) != 1 || calls[0].TicketID != 7 || calls[0].UserID != 3 {
		t.Errorf("assign calls = %+v", calls)
	}
	toasts := f.notifier.Visible()
	if len(toasts) != 1 || toasts[0].Message != "Ticket #7 assigned to user 3" {
		t.Errorf("toasts = %+v", toasts)
	}
	if len(f.timers.All()) != 1 {
		t.Error("expected a reload timer")
	}
}

func TestActions_AssignNetworkError(t *testing.T) {
	f := newFixture(t)
	mock := helpdesk.NewMockClient()
	mock.AssignError = &helpdesk.NetworkError{Method: "POST", URL: "/api/tickets/7/assign", Err: errors.New("refused")}

	a := f.actions(mock)
	a.Assign(7, 3)
	a.Wait()

	toasts := f.notifier.Visible()
	if len(toasts) != 1 || toasts[0].Kind != notify.Danger {
		t.Fatalf("toasts = %+v", toasts)
	}
	if toasts[0].Message != "Failed to assign ticket #7: server unreachable" {
		t.Errorf("Message = %q", toasts[0].Message)
	}
}

func TestActions_ReturnsImmediately(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	a := f.actions(blockingUpdater{release: release})

	done := make(chan struct{})
	go func() {
		a.UpdateStatus(1, helpdesk.StatusClosed)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("UpdateStatus blocked on the backend call")
	}
	if len(f.notifier.Visible()) != 0 {
		t.Error("no toast before the call completes")
	}

	close(release)
	a.Wait()
	if len(f.notifier.Visible()) != 1 {
		t.Error("expected a toast after completion")
	}
}

func TestActions_NilReloader(t *testing.T) {
	f := newFixture(t)
	a := New(helpdesk.NewMockClient(), f.notifier, nil, WithAfterFunc(f.timers.AfterFunc))

	a.UpdateStatus(1, helpdesk.StatusOpen)
	a.Wait()

	if len(f.timers.All()) != 0 {
		t.Error("no reload timer without a reloader")
	}
}

type blockingUpdater struct {
	release chan struct{}
}

func (b blockingUpdater) UpdateStatus(ctx context.Context, ticketID int64, status helpdesk.Status) error {
	<-b.release
	return nil
}

func (b blockingUpdater) Assign(ctx context.Context, ticketID, userID int64) error {
	<-b.release
	return nil
}
