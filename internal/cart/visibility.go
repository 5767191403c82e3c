package cart

import (
	"sync"
	"time"

	"grocli/internal/logging"
)

// Route identifies the active screen for visibility decisions.
type Route string

const (
	RouteHome     Route = "home"
	RouteCategory Route = "category"
	RouteProduct  Route = "product"
	RouteCart     Route = "cart"
	RouteCheckout Route = "checkout"
	RouteAuth     Route = "auth"
	RouteOrders   Route = "orders"
	RoutePartner  Route = "partner"
)

// CartExempt reports whether the sticky cart bar must never show on this
// screen.
func (r Route) CartExempt() bool {
	switch r {
	case RouteCart, RouteCheckout, RouteAuth:
		return true
	}
	return false
}

// Signal is the time-windowed "show the floating cart bar" boolean. It is a
// two-state machine (Hidden/Shown): a qualifying cart mutation on a
// non-exempt route shows the bar and arms the auto-hide window; each further
// mutation re-arms it; an empty cart, an exempt route, or the window
// elapsing hides it.
type Signal struct {
	mu     sync.Mutex
	window time.Duration

	shown bool
	units int
	route Route

	timer *time.Timer
	gen   uint64 // invalidates stale timer callbacks after cancel/re-arm

	onChange func(bool)
}

// NewSignal creates a hidden signal. onChange fires outside the lock on
// every Hidden<->Shown transition; it may be nil.
func NewSignal(window time.Duration, onChange func(bool)) *Signal {
	if window <= 0 {
		window = 3 * time.Second
	}
	return &Signal{
		window:   window,
		route:    RouteHome,
		onChange: onChange,
	}
}

// Attach subscribes the signal to a cart store's mutation hook.
func (s *Signal) Attach(store *Store) {
	store.OnMutate(func(t Totals) { s.CartMutated(t.Units) })
}

// CartMutated feeds a new unit count into the state machine. A count > 0 on
// a non-exempt route shows the bar and (re-)arms the countdown; a count of 0
// forces Hidden regardless of timer state.
func (s *Signal) CartMutated(units int) {
	s.mu.Lock()
	s.units = units
	changed, shown := s.evaluateLocked(true)
	s.mu.Unlock()

	s.emit(changed, shown)
}

// RouteChanged feeds the active route. Entering an exempt route (including
// the explicit navigate-to-cart case) hides immediately and cancels any
// pending countdown; entering a non-exempt route with items present shows
// and arms.
func (s *Signal) RouteChanged(route Route) {
	s.mu.Lock()
	s.route = route
	changed, shown := s.evaluateLocked(true)
	s.mu.Unlock()

	s.emit(changed, shown)
}

// Shown returns the current visibility.
func (s *Signal) Shown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shown
}

// Close cancels any pending countdown. The signal stays usable; Close exists
// so tests and shutdown paths do not leak an armed timer.
func (s *Signal) Close() {
	s.mu.Lock()
	s.cancelLocked()
	s.mu.Unlock()
}

// evaluateLocked applies the transition rules. rearm controls whether a
// still-qualifying Shown state resets the countdown (true for mutations and
// route entries). Returns whether visibility changed and its new value.
func (s *Signal) evaluateLocked(rearm bool) (bool, bool) {
	qualifies := s.units > 0 && !s.route.CartExempt()

	switch {
	case !qualifies && s.shown:
		s.shown = false
		s.cancelLocked()
		return true, false
	case !qualifies:
		// Hidden and staying hidden; make sure no countdown survives
		s.cancelLocked()
		return false, false
	case !s.shown:
		s.shown = true
		s.armLocked()
		return true, true
	default:
		if rearm {
			s.armLocked()
		}
		return false, true
	}
}

// armLocked cancels any pending countdown and starts a fresh one. There is
// never more than one live timer.
func (s *Signal) armLocked() {
	s.cancelLocked()
	gen := s.gen
	s.timer = time.AfterFunc(s.window, func() { s.expire(gen) })
}

// cancelLocked stops the countdown and invalidates in-flight callbacks.
func (s *Signal) cancelLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// expire is the countdown callback. A stale generation means the timer was
// cancelled or re-armed after this callback was already scheduled.
func (s *Signal) expire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || !s.shown {
		s.mu.Unlock()
		return
	}
	s.shown = false
	s.timer = nil
	s.mu.Unlock()

	logging.UIDebug("sticky bar auto-hide elapsed")
	s.emit(true, false)
}

func (s *Signal) emit(changed, shown bool) {
	if changed && s.onChange != nil {
		s.onChange(shown)
	}
}
