package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"grocli/internal/anim"
	"grocli/internal/api"
	"grocli/internal/cart"
	"grocli/internal/config"
	"grocli/internal/session"
	"grocli/internal/types"
)

// newTestApp builds a root model over a stub backend and an optional
// persisted identity.
func newTestApp(t *testing.T, identity *types.Profile) (Model, *cart.Store, *cart.Signal, *session.Store) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{}}`))
	}))
	t.Cleanup(server.Close)

	creds := session.NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	if identity != nil {
		if err := creds.Save(session.Credentials{Token: "tok", Profile: *identity}); err != nil {
			t.Fatalf("seed credentials: %v", err)
		}
	}

	client := api.New(server.URL, time.Second)
	sess := session.NewStore(creds, client)
	sess.Restore()

	store := cart.NewStore(config.DefaultCartConfig(), client)
	signal := cart.NewSignal(time.Hour, nil)
	signal.Attach(store)
	t.Cleanup(signal.Close)

	model := NewModel(Deps{
		Client:  client,
		Cart:    store,
		Signal:  signal,
		Session: sess,
		Coord:   anim.NewCoordinator(800*time.Millisecond, 2.0),
		Styles:  testStyles(),
	})
	next, _ := model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(Model), store, signal, sess
}

func consumer() *types.Profile {
	return &types.Profile{ID: "u1", Name: "Asha", Phone: "9876543210", Role: types.RoleConsumer}
}

func TestAppRedirectsToLoginWhenSignedOut(t *testing.T) {
	model, _, _, _ := newTestApp(t, nil)
	if !strings.Contains(model.View(), "Sign in") {
		t.Fatalf("expected login screen for a signed-out session")
	}
}

func TestAppAddToCartShowsStickyBar(t *testing.T) {
	model, store, signal, _ := newTestApp(t, consumer())

	next, cmd := model.Update(addToCartMsg{
		product: sampleProduct("p1", "Toned Milk", 3200),
		rowRect: anim.Rect{X: 4, Y: 6, W: 24, H: 1},
	})
	model = next.(Model)

	if len(store.Items()) != 1 {
		t.Fatalf("expected the product in the cart")
	}
	if !signal.Shown() {
		t.Fatalf("expected sticky bar shown after mutation on the home route")
	}
	if cmd == nil {
		t.Fatalf("expected a frame tick command to start the fly transfer")
	}
	if !strings.Contains(model.View(), "1 item") {
		t.Fatalf("expected sticky bar in view")
	}
}

func TestAppNavigateToCartHidesBar(t *testing.T) {
	model, _, signal, _ := newTestApp(t, consumer())

	next, _ := model.Update(addToCartMsg{
		product: sampleProduct("p1", "Toned Milk", 3200),
		rowRect: anim.Rect{X: 4, Y: 6, W: 24, H: 1},
	})
	model = next.(Model)

	next, _ = model.Update(keyRune('b'))
	model = next.(Model)

	if signal.Shown() {
		t.Fatalf("expected bar hidden on the cart screen")
	}
	if !strings.Contains(model.View(), "Your basket") {
		t.Fatalf("expected cart screen after b")
	}
}

func TestAppOrderPlacedClearsCartAndShowsHistory(t *testing.T) {
	model, store, _, sess := newTestApp(t, consumer())
	store.AddItem(sampleProduct("p1", "Toned Milk", 3200), 2)

	next, _ := model.Update(orderPlacedMsg{
		order: &types.Order{ID: "ord-1", Total: 6400},
		gen:   sess.Generation(),
	})
	model = next.(Model)

	if len(store.Items()) != 0 {
		t.Fatalf("expected cart cleared after placement")
	}
	if model.route != cart.RouteOrders {
		t.Fatalf("expected orders route, got %s", model.route)
	}
	if !strings.Contains(model.statusLine, "ord-1") {
		t.Fatalf("expected confirmation status line")
	}
}

func TestAppDropsOrderResultAfterLogout(t *testing.T) {
	model, store, _, sess := newTestApp(t, consumer())
	store.AddItem(sampleProduct("p1", "Toned Milk", 3200), 2)

	gen := sess.Generation()
	sess.Logout(context.Background())

	next, _ := model.Update(orderPlacedMsg{
		order: &types.Order{ID: "ord-1", Total: 6400},
		gen:   gen,
	})
	model = next.(Model)

	if model.route == cart.RouteOrders {
		t.Fatalf("stale order result must not navigate")
	}
	if model.statusLine != "" {
		t.Fatalf("stale order result must not announce success")
	}
}

func TestAppSessionExpiryForcesLogout(t *testing.T) {
	model, store, _, sess := newTestApp(t, consumer())
	store.AddItem(sampleProduct("p1", "Toned Milk", 3200), 1)

	next, cmd := model.Update(loadErrMsg{err: api.ErrSessionExpired})
	model = next.(Model)
	if cmd == nil {
		t.Fatalf("expected a logout command on session expiry")
	}

	refreshed := cmd()
	if snap := sess.Snapshot(); snap.Identity != nil {
		t.Fatalf("expected identity cleared after expiry, got %+v", snap.Identity)
	}
	if sess.Token() != "" {
		t.Fatalf("expected token cleared after expiry")
	}

	next, _ = model.Update(refreshed)
	model = next.(Model)
	if len(store.Items()) != 0 {
		t.Fatalf("expected cart cleared after forced logout")
	}
	if !strings.Contains(model.View(), "Sign in") {
		t.Fatalf("expected login screen after forced logout")
	}
}

func TestAppSessionExpiryDuringCheckoutForcesLogout(t *testing.T) {
	model, _, _, sess := newTestApp(t, consumer())

	_, cmd := model.Update(orderFailedMsg{err: api.ErrSessionExpired})
	if cmd == nil {
		t.Fatalf("expected a logout command on session expiry")
	}
	cmd()
	if snap := sess.Snapshot(); snap.Identity != nil {
		t.Fatalf("expected identity cleared after expiry during checkout")
	}
}

func TestAppPartnerLandsOnDeliveries(t *testing.T) {
	model, _, _, _ := newTestApp(t, &types.Profile{
		ID: "d1", Name: "Ravi", Role: types.RolePartner,
	})
	if !strings.Contains(model.View(), "Deliveries") {
		t.Fatalf("expected partner screen for a partner identity")
	}
}

func TestAppAdminGetsRedirectShell(t *testing.T) {
	model, _, _, _ := newTestApp(t, &types.Profile{
		ID: "a1", Name: "Meera", Role: types.RoleAdmin,
	})
	view := model.View()
	if !strings.Contains(view, "admin dashboard") {
		t.Fatalf("expected dashboard pointer for an admin identity")
	}
	if strings.Contains(view, "Shop by category") {
		t.Fatalf("admins must not see the shopping surface")
	}
}

func TestAppExternalLogoutClearsCart(t *testing.T) {
	model, store, _, _ := newTestApp(t, consumer())
	store.AddItem(sampleProduct("p1", "Toned Milk", 3200), 1)

	next, _ := model.Update(SessionRefreshedMsg{Snapshot: session.Snapshot{Ready: true}})
	model = next.(Model)

	if len(store.Items()) != 0 {
		t.Fatalf("expected cart cleared when another process logged out")
	}
	if !strings.Contains(model.View(), "Sign in") {
		t.Fatalf("expected login screen after external logout")
	}
}
