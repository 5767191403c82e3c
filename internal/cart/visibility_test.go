package cart

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// transitionRecorder captures onChange transitions for assertions.
type transitionRecorder struct {
	mu     sync.Mutex
	states []bool
}

func (r *transitionRecorder) record(shown bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, shown)
}

func (r *transitionRecorder) snapshot() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bool, len(r.states))
	copy(out, r.states)
	return out
}

func TestSignalStartsHidden(t *testing.T) {
	s := NewSignal(time.Second, nil)
	defer s.Close()

	if s.Shown() {
		t.Fatal("expected initial state Hidden")
	}
}

func TestMutationShowsThenAutoHides(t *testing.T) {
	rec := &transitionRecorder{}
	s := NewSignal(60*time.Millisecond, rec.record)
	defer s.Close()

	s.CartMutated(1)
	if !s.Shown() {
		t.Fatal("expected Shown after 0->1 mutation on non-exempt route")
	}

	time.Sleep(150 * time.Millisecond)
	if s.Shown() {
		t.Fatal("expected auto-hide after window elapsed")
	}

	states := rec.snapshot()
	if len(states) != 2 || !states[0] || states[1] {
		t.Fatalf("expected transitions [shown hidden], got %v", states)
	}
}

func TestMutationReArmsCountdown(t *testing.T) {
	// A mutation late in the window pushes the hide out to a full fresh
	// window from the mutation, not from the original show.
	s := NewSignal(100*time.Millisecond, nil)
	defer s.Close()

	s.CartMutated(1)
	time.Sleep(70 * time.Millisecond)
	s.CartMutated(2) // re-arm at t=70ms; hide expected around t=170ms

	time.Sleep(60 * time.Millisecond) // t=130ms, past the original window
	if !s.Shown() {
		t.Fatal("expected still Shown: re-arm must reset the countdown")
	}

	time.Sleep(100 * time.Millisecond) // t=230ms, past the re-armed window
	if s.Shown() {
		t.Fatal("expected Hidden after re-armed window elapsed")
	}
}

func TestEmptyCartForcesHidden(t *testing.T) {
	s := NewSignal(time.Minute, nil)
	defer s.Close()

	s.CartMutated(2)
	if !s.Shown() {
		t.Fatal("expected Shown")
	}

	s.CartMutated(0)
	if s.Shown() {
		t.Fatal("expected Hidden when count drops to 0, regardless of timer")
	}
}

func TestExemptRouteNeverShows(t *testing.T) {
	for _, route := range []Route{RouteCart, RouteCheckout, RouteAuth} {
		s := NewSignal(time.Minute, nil)
		s.RouteChanged(route)
		s.CartMutated(3)
		if s.Shown() {
			t.Fatalf("expected mutation on %s route to stay Hidden", route)
		}
		s.Close()
	}
}

func TestNavigateToCartHidesImmediatelyWithoutFlicker(t *testing.T) {
	rec := &transitionRecorder{}
	s := NewSignal(50*time.Millisecond, rec.record)
	defer s.Close()

	s.CartMutated(1)
	s.RouteChanged(RouteCart)
	if s.Shown() {
		t.Fatal("expected immediate Hidden on navigating to cart")
	}

	// The cancelled countdown must not fire a late hide (or re-show)
	time.Sleep(120 * time.Millisecond)
	states := rec.snapshot()
	want := []bool{true, false}
	if len(states) != len(want) {
		t.Fatalf("expected exactly [shown hidden] with no late transitions, got %v", states)
	}
}

func TestLeavingExemptRouteWithItemsShows(t *testing.T) {
	s := NewSignal(time.Minute, nil)
	defer s.Close()

	s.RouteChanged(RouteCart)
	s.CartMutated(1)
	if s.Shown() {
		t.Fatal("expected Hidden on cart route")
	}

	s.RouteChanged(RouteHome)
	if !s.Shown() {
		t.Fatal("expected Shown after returning to a non-exempt route with items")
	}
}

func TestAttachDrivesSignalFromStore(t *testing.T) {
	s := NewSignal(time.Minute, nil)
	defer s.Close()

	store := NewStore(feePolicy(0, 0), nil)
	s.Attach(store)

	store.AddItem(testProduct("P1", 1000, 5), 1)
	if !s.Shown() {
		t.Fatal("expected store mutation to show the signal")
	}

	store.Clear()
	if s.Shown() {
		t.Fatal("expected store clear to hide the signal")
	}
}

func TestCloseCancelsPendingTimer(t *testing.T) {
	s := NewSignal(50*time.Millisecond, nil)
	s.CartMutated(1)
	s.Close()

	// goleak in TestMain verifies the AfterFunc goroutine is gone; the
	// stale callback must also not flip state after Close.
	time.Sleep(80 * time.Millisecond)
	if !s.Shown() {
		t.Fatal("expected cancelled countdown to leave state untouched")
	}
}
