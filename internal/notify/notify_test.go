package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/npratt/deskboard/internal/testutil"
	"github.com/npratt/deskboard/internal/view"
)

func newTestNotifier(t *testing.T, opts ...Option) (*Notifier, *view.Surface, *testutil.FakeTimers) {
	t.Helper()
	surface := view.NewSurface()
	timers := testutil.NewFakeTimers()
	opts = append([]Option{WithAfterFunc(timers.AfterFunc)}, opts...)
	return New(surface, opts...), surface, timers
}

func toasts(t *testing.T, surface *view.Surface) []Notification {
	t.Helper()
	mount, ok := surface.FindMount(view.ToastContainer)
	if !ok {
		t.Fatal("toast container not created")
	}
	items, _ := mount.Content().([]Notification)
	return items
}

func TestNotifier_ContainerCreatedLazilyOnce(t *testing.T) {
	n, surface, _ := newTestNotifier(t)

	if _, ok := surface.FindMount(view.ToastContainer); ok {
		t.Fatal("container should not exist before the first notification")
	}

	n.Notify("first", Info)
	first, _ := surface.FindMount(view.ToastContainer)
	n.Notify("second", Info)
	second, _ := surface.FindMount(view.ToastContainer)

	if first != second {
		t.Error("container should be created exactly once")
	}
	if got := toasts(t, surface); len(got) != 2 {
		t.Errorf("expected 2 toasts, got %d", len(got))
	}
}

func TestNotifier_UsesExistingContainer(t *testing.T) {
	surface := view.NewSurface(view.ToastContainer)
	existing, _ := surface.FindMount(view.ToastContainer)

	n := New(surface, WithAutoDismiss(0))
	n.Notify("hello", Success)

	if existing.Content() == nil {
		t.Error("toast should render into the pre-registered container")
	}
}

func TestNotifier_NotifyFields(t *testing.T) {
	fixed := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	n, _, timers := newTestNotifier(t, WithClock(func() time.Time { return fixed }))

	note := n.Notify("Ticket #42 updated", Success)

	if note.ID == "" || note.Message != "Ticket #42 updated" || note.Kind != Success {
		t.Errorf("unexpected notification %+v", note)
	}
	if !note.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v", note.CreatedAt)
	}
	if timers.Last() == nil || timers.Last().Delay != 5*time.Second {
		t.Error("expected a 5s auto-dismiss timer")
	}
}

func TestNotifier_RapidNotifyUniqueIDsAndNoGrowth(t *testing.T) {
	n, surface, timers := newTestNotifier(t)

	const count = 50
	seen := make(map[string]bool)
	for i := 0; i < count; i++ {
		note := n.Notify("saved", Success)
		if seen[note.ID] {
			t.Fatalf("duplicate id %s", note.ID)
		}
		seen[note.ID] = true
	}
	if len(n.Visible()) != count {
		t.Fatalf("Visible() = %d, want %d", len(n.Visible()), count)
	}

	// Dismiss a few by hand, let the rest time out.
	for _, note := range n.Visible()[:10] {
		if !n.Dismiss(note.ID) {
			t.Errorf("Dismiss(%s) = false", note.ID)
		}
	}
	if fired := timers.FireAll(); fired != count-10 {
		t.Errorf("fired %d timers, want %d", fired, count-10)
	}

	if got := len(n.Visible()); got != 0 {
		t.Errorf("Visible() = %d after dismissal, want 0", got)
	}
	if n.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", n.Pending())
	}
	if got := toasts(t, surface); len(got) != 0 {
		t.Errorf("container still holds %d toasts", len(got))
	}
}

func TestNotifier_DismissStopsTimer(t *testing.T) {
	n, _, timers := newTestNotifier(t)

	note := n.Notify("bye", Warning)
	n.Dismiss(note.ID)

	if !timers.Last().Stopped() {
		t.Error("dismissal should stop the auto-dismiss timer")
	}
	if n.Dismiss(note.ID) {
		t.Error("second Dismiss should report false")
	}
}

func TestNotifier_DismissNewest(t *testing.T) {
	n, _, _ := newTestNotifier(t)

	if n.DismissNewest() {
		t.Error("DismissNewest on empty should be false")
	}
	a := n.Notify("a", Info)
	n.Notify("b", Info)

	if !n.DismissNewest() {
		t.Fatal("DismissNewest should remove b")
	}
	visible := n.Visible()
	if len(visible) != 1 || visible[0].ID != a.ID {
		t.Errorf("Visible() = %+v, want only a", visible)
	}
}

func TestNotifier_NoAutoDismiss(t *testing.T) {
	n, _, timers := newTestNotifier(t, WithAutoDismiss(0))

	n.Notify("sticky", Danger)
	if len(timers.All()) != 0 {
		t.Error("no timer should be armed with auto-dismiss disabled")
	}
}

func TestNotifier_Listener(t *testing.T) {
	var got []Notification
	n, _, _ := newTestNotifier(t, WithListener(func(note Notification) { got = append(got, note) }))

	n.Notify("one", Success)
	n.Notify("two", Danger)

	if len(got) != 2 || got[1].Kind != Danger {
		t.Errorf("listener got %+v", got)
	}
}

func TestNotifier_ConcurrentNotifyAndDismiss(t *testing.T) {
	n, _, timers := newTestNotifier(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			note := n.Notify("x", Info)
			n.Dismiss(note.ID)
		}()
	}
	wg.Wait()
	timers.FireAll()

	if len(n.Visible()) != 0 || n.Pending() != 0 {
		t.Errorf("expected no toasts or timers, got %d/%d", len(n.Visible()), n.Pending())
	}
}
