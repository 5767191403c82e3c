package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"grocli/internal/anim"
	"grocli/internal/api"
	"grocli/internal/cart"
	"grocli/internal/logging"
	"grocli/internal/notify"
	"grocli/internal/session"
	"grocli/internal/types"
)

// Deps carries the shared stores and services the app model runs on. The
// caller (the CLI entrypoint) constructs and wires them; the model never
// creates its own.
type Deps struct {
	Client  *api.Client
	Cart    *cart.Store
	Signal  *cart.Signal
	Session *session.Store
	Coord   *anim.Coordinator
	Notify  *notify.Manager
	Styles  Styles
}

// Model is the root bubbletea model: it owns routing, dispatches intent
// messages from the pages into store mutations and API commands, and draws
// the sticky cart bar and the fly-to-cart overlay on top of the active page.
type Model struct {
	deps  Deps
	route cart.Route

	catalog  CatalogPage
	cartPage CartPage
	checkout CheckoutPage
	login    LoginPage
	orders   OrdersPage
	partner  PartnerPage
	bar      StickyBar

	frame     anim.Frame
	haveFrame bool

	statusLine string
	width      int
	height     int
}

// NewModel builds the root model over the given dependencies.
func NewModel(deps Deps) Model {
	return Model{
		deps:     deps,
		route:    cart.RouteHome,
		catalog:  NewCatalogPage(deps.Styles),
		cartPage: NewCartPage(deps.Styles, deps.Cart),
		checkout: NewCheckoutPage(deps.Styles, deps.Cart),
		login:    NewLoginPage(deps.Styles),
		orders:   NewOrdersPage(deps.Styles),
		partner:  NewPartnerPage(deps.Styles),
		bar:      NewStickyBar(deps.Styles, deps.Cart, deps.Coord),
	}
}

// Init kicks off the storefront load and the catalog's loading spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadStorefront(), m.catalog.Init(), m.initialRoleCmd())
}

// initialRoleCmd loads role-specific data when the session restored an
// identity before the program started.
func (m Model) initialRoleCmd() tea.Cmd {
	snap := m.deps.Session.Snapshot()
	if snap.Identity != nil && snap.Identity.Role == types.RolePartner {
		return m.loadPartnerOrders()
	}
	return nil
}

// navigate switches routes and feeds the visibility signal, which handles
// the hide-on-cart-screen and show-on-return rules itself.
func (m *Model) navigate(route cart.Route) {
	if m.route == route {
		return
	}
	m.route = route
	m.statusLine = ""
	m.deps.Signal.RouteChanged(route)
}

// guardedRoute applies session and role guards on top of the requested
// route: not-ready renders as-is (loading), no identity forces auth, and a
// partner identity lives on the partner screen.
func (m *Model) guardedRoute() cart.Route {
	snap := m.deps.Session.Snapshot()
	if !snap.Ready {
		return m.route
	}
	if snap.Identity == nil {
		return cart.RouteAuth
	}
	if snap.Identity.Role == types.RolePartner {
		return cart.RoutePartner
	}
	return m.route
}

// Update is the message pump.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.catalog.SetSize(msg.Width, msg.Height)
		m.cartPage.SetSize(msg.Width, msg.Height)
		m.orders.SetSize(msg.Width, msg.Height)
		m.partner.SetSize(msg.Width, msg.Height)
		m.bar.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if model, cmd, handled := m.handleGlobalKey(msg); handled {
			return model, cmd
		}
		return m.updateActivePage(msg)

	case VisibilityChangedMsg:
		// state already changed inside the signal; the push exists to
		// trigger this render
		return m, nil

	case SessionRefreshedMsg:
		return m.applySession(msg.Snapshot)

	case FrameTickMsg:
		return m.stepTransfer()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.catalog, cmd = m.catalog.Update(msg)
		return m, cmd

	case openCategoryMsg:
		return m, m.loadProducts(msg.name)

	case openProductMsg:
		m.navigate(cart.RouteProduct)
		return m, nil

	case leaveProductMsg:
		m.navigate(cart.RouteCategory)
		return m, nil

	case addToCartMsg:
		return m.addToCart(msg)

	case applyCouponMsg:
		return m, m.applyCoupon(msg.code)

	case clearCouponMsg:
		m.deps.Cart.ClearCoupon()
		m.cartPage.SetCouponError("")
		return m, nil

	case proceedToCheckoutMsg:
		m.checkout.Reset()
		m.navigate(cart.RouteCheckout)
		return m, nil

	case placeOrderMsg:
		return m, m.placeOrder(msg)

	case loginSubmitMsg:
		return m, m.submitLogin(msg)

	case advanceStatusMsg:
		return m, m.advanceStatus(msg)

	case storefrontLoadedMsg:
		m.catalog.SetStorefront(msg.storefront)
		return m, nil

	case productsLoadedMsg:
		m.catalog.SetProducts(msg.category, msg.products)
		m.navigate(cart.RouteCategory)
		return m, nil

	case loadErrMsg:
		if sessionExpired(msg.err) {
			return m, m.logout()
		}
		m.statusLine = friendlyError(msg.err)
		return m, nil

	case loginResultMsg:
		return m.finishLogin(msg)

	case couponResultMsg:
		if sessionExpired(msg.err) {
			return m, m.logout()
		}
		if msg.err != nil {
			m.cartPage.SetCouponError(friendlyError(msg.err))
		} else {
			m.cartPage.SetCouponError("")
		}
		return m, nil

	case orderPlacedMsg:
		return m.finishOrder(msg)

	case orderFailedMsg:
		if sessionExpired(msg.err) {
			return m, m.logout()
		}
		m.checkout.SetError(friendlyError(msg.err))
		return m, nil

	case ordersLoadedMsg:
		m.orders.SetOrders(msg.orders)
		return m, nil

	case partnerOrdersLoadedMsg:
		m.partner.SetOrders(msg.orders)
		return m, nil

	case statusUpdatedMsg:
		m.partner.ApplyUpdate(msg.order)
		return m, nil
	}

	return m, nil
}

// handleGlobalKey serves app-level shortcuts. Text-entry screens only get
// ctrl+c so typing "b" or "o" still works.
func (m Model) handleGlobalKey(key tea.KeyMsg) (Model, tea.Cmd, bool) {
	if key.String() == "ctrl+c" {
		return m, tea.Quit, true
	}

	route := m.guardedRoute()
	typing := route == cart.RouteAuth || route == cart.RouteCheckout ||
		(route == cart.RouteCart && m.cartPage.couponOpen)
	if typing {
		return m, nil, false
	}

	switch key.String() {
	case "q":
		return m, tea.Quit, true
	case "b":
		if route != cart.RouteCart && route != cart.RoutePartner {
			m.navigate(cart.RouteCart)
			return m, nil, true
		}
	case "h":
		if route != cart.RoutePartner {
			m.navigate(cart.RouteHome)
			return m, nil, true
		}
	case "o":
		if route != cart.RoutePartner {
			m.navigate(cart.RouteOrders)
			return m, m.loadOrders(), true
		}
	case "ctrl+l":
		return m, m.logout(), true
	case "esc":
		switch route {
		case cart.RouteCart:
			m.navigate(cart.RouteHome)
			return m, nil, true
		case cart.RouteCheckout:
			m.navigate(cart.RouteCart)
			return m, nil, true
		}
	case "R":
		if route == cart.RoutePartner {
			return m, m.loadPartnerOrders(), true
		}
	}
	return m, nil, false
}

func (m Model) updateActivePage(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.guardedRoute() {
	case cart.RouteAuth:
		m.login, cmd = m.login.Update(msg)
	case cart.RoutePartner:
		m.partner, cmd = m.partner.Update(msg)
	case cart.RouteCart:
		m.cartPage, cmd = m.cartPage.Update(msg)
	case cart.RouteCheckout:
		m.checkout, cmd = m.checkout.Update(msg)
	case cart.RouteOrders:
		m.orders, cmd = m.orders.Update(msg)
	default:
		m.catalog, cmd = m.catalog.Update(msg)
	}
	return m, cmd
}

// addToCart mutates the store (which drives the visibility signal through
// its hook) and launches the fly transfer from the product row.
func (m Model) addToCart(msg addToCartMsg) (tea.Model, tea.Cmd) {
	m.deps.Cart.AddItem(msg.product, 1)
	m.deps.Coord.Start(msg.rowRect, msg.product.ID, nil)
	return m, frameTick()
}

// stepTransfer advances the fly animation one frame and keeps the tick loop
// alive while a transfer is in flight.
func (m Model) stepTransfer() (tea.Model, tea.Cmd) {
	frame, done, ok := m.deps.Coord.Step()
	if !ok || done {
		m.haveFrame = false
		return m, nil
	}
	m.frame = frame
	m.haveFrame = true
	return m, frameTick()
}

func frameTick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(t time.Time) tea.Msg {
		return FrameTickMsg(t)
	})
}

const fps = 60

func (m Model) applySession(snap session.Snapshot) (tea.Model, tea.Cmd) {
	if snap.Identity == nil {
		// another grocli process logged out; drop local cart state too
		m.deps.Cart.Clear()
		m.navigate(cart.RouteAuth)
		return m, nil
	}
	if m.route == cart.RouteAuth {
		m.navigate(cart.RouteHome)
	}
	if snap.Identity.Role == types.RolePartner {
		return m, m.loadPartnerOrders()
	}
	return m, nil
}

func (m Model) finishLogin(msg loginResultMsg) (tea.Model, tea.Cmd) {
	if sessionExpired(msg.err) {
		return m, m.logout()
	}
	if msg.err != nil {
		m.login.SetResult(false, friendlyError(msg.err))
		return m, nil
	}
	if !msg.ok {
		m.login.SetResult(false, "")
		return m, nil
	}
	m.login.SetResult(true, "")
	m.navigate(cart.RouteHome)

	cmds := []tea.Cmd{m.registerDevice()}
	snap := m.deps.Session.Snapshot()
	if snap.Identity != nil && snap.Identity.Role == types.RolePartner {
		cmds = append(cmds, m.loadPartnerOrders())
	} else {
		cmds = append(cmds, m.loadStorefront())
	}
	return m, tea.Batch(cmds...)
}

// registerDevice pushes the install's notification token after a login.
// Failure is logged and swallowed; push registration never blocks shopping.
func (m Model) registerDevice() tea.Cmd {
	mgr := m.deps.Notify
	if mgr == nil {
		return nil
	}
	return func() tea.Msg {
		if err := mgr.EnsureRegistered(context.Background()); err != nil {
			logging.Notify("registration skipped: %v", err)
		}
		return nil
	}
}

func (m Model) finishOrder(msg orderPlacedMsg) (tea.Model, tea.Cmd) {
	if !m.deps.Session.StillCurrent(msg.gen) {
		logging.Order("dropping order result from a logged-out session")
		return m, nil
	}
	m.deps.Cart.Clear()
	m.checkout.Reset()
	m.navigate(cart.RouteOrders)
	m.statusLine = fmt.Sprintf("Order %s placed. Total %s.", msg.order.ID, msg.order.Total.Rupees())
	return m, m.loadOrders()
}

// Commands. Each snapshots what it needs before going async and reports back
// through a typed message.

func (m Model) loadStorefront() tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		sf, err := client.FetchStorefront(context.Background())
		if err != nil {
			return loadErrMsg{err: err}
		}
		return storefrontLoadedMsg{storefront: sf}
	}
}

func (m Model) loadProducts(category string) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		products, err := client.GetProductsByCategory(context.Background(), category)
		if err != nil {
			return loadErrMsg{err: err}
		}
		return productsLoadedMsg{category: category, products: products}
	}
}

func (m Model) applyCoupon(code string) tea.Cmd {
	store := m.deps.Cart
	return func() tea.Msg {
		err := store.ApplyCoupon(context.Background(), code)
		return couponResultMsg{code: code, err: err}
	}
}

func (m Model) placeOrder(msg placeOrderMsg) tea.Cmd {
	client := m.deps.Client
	gen := m.deps.Session.Generation()
	req := api.PlaceOrderRequest{
		Items:         m.deps.Cart.OrderItems(),
		CouponCode:    m.deps.Cart.AppliedCoupon(),
		Address:       msg.address,
		PaymentMethod: msg.payment,
	}
	return func() tea.Msg {
		order, err := client.PlaceOrder(context.Background(), req)
		if err != nil {
			return orderFailedMsg{err: err}
		}
		return orderPlacedMsg{order: order, gen: gen}
	}
}

func (m Model) submitLogin(msg loginSubmitMsg) tea.Cmd {
	sess := m.deps.Session
	return func() tea.Msg {
		ok, err := sess.Login(context.Background(), msg.phone, msg.password)
		return loginResultMsg{ok: ok, err: err}
	}
}

func (m Model) logout() tea.Cmd {
	sess := m.deps.Session
	store := m.deps.Cart
	return func() tea.Msg {
		sess.Logout(context.Background())
		store.Clear()
		return SessionRefreshedMsg{Snapshot: sess.Snapshot()}
	}
}

func (m Model) loadOrders() tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		orders, err := client.OrderHistory(context.Background())
		if err != nil {
			return loadErrMsg{err: err}
		}
		return ordersLoadedMsg{orders: orders}
	}
}

func (m Model) loadPartnerOrders() tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		orders, err := client.AssignedOrders(context.Background())
		if err != nil {
			return loadErrMsg{err: err}
		}
		return partnerOrdersLoadedMsg{orders: orders}
	}
}

func (m Model) advanceStatus(msg advanceStatusMsg) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		order, err := client.UpdateOrderStatus(context.Background(), msg.orderID, msg.status)
		if err != nil {
			return loadErrMsg{err: err}
		}
		return statusUpdatedMsg{order: order}
	}
}

// View renders header, active page, sticky bar, and footer, then composites
// the fly overlay on top.
func (m Model) View() string {
	snap := m.deps.Session.Snapshot()
	if !snap.Ready {
		return m.deps.Styles.Muted.Render("Starting up...")
	}

	if snap.Identity != nil && snap.Identity.Role == types.RoleAdmin {
		return m.adminView(snap.Identity)
	}

	route := m.guardedRoute()

	var page string
	switch route {
	case cart.RouteAuth:
		page = m.login.View()
	case cart.RoutePartner:
		page = m.partner.View()
	case cart.RouteCart:
		page = m.cartPage.View()
	case cart.RouteCheckout:
		page = m.checkout.View()
	case cart.RouteOrders:
		page = m.orders.View()
	default:
		page = m.catalog.View()
	}

	var sb strings.Builder
	sb.WriteString(m.headerView(snap))
	sb.WriteString("\n")
	sb.WriteString(m.deps.Styles.Content.Render(page))
	sb.WriteString("\n")

	if m.statusLine != "" {
		sb.WriteString(m.deps.Styles.Success.Render("  " + m.statusLine))
		sb.WriteString("\n")
	}

	if m.deps.Signal.Shown() && !route.CartExempt() {
		sb.WriteString(m.bar.View())
		sb.WriteString("\n")
	}
	sb.WriteString(m.footerView(route))

	out := sb.String()
	if m.haveFrame {
		out = m.composeOverlay(out)
	}
	return out
}

func (m Model) headerView(snap session.Snapshot) string {
	title := " QuickBasket "
	who := ""
	if snap.Identity != nil {
		who = snap.Identity.Name
	}
	return m.deps.Styles.Header.Render(title) + "  " + m.deps.Styles.Muted.Render(who)
}

func (m Model) footerView(route cart.Route) string {
	switch route {
	case cart.RoutePartner:
		return m.deps.Styles.Footer.Render("R refresh · ctrl+l sign out · q quit")
	case cart.RouteAuth:
		return m.deps.Styles.Footer.Render("ctrl+c quit")
	default:
		return m.deps.Styles.Footer.Render("h home · b basket · o orders · ctrl+l sign out · q quit")
	}
}

// adminView is the redirect shell for admin accounts: the shopping surface
// is consumer-only, so admins get pointed at the web dashboard instead.
func (m Model) adminView(identity *types.Profile) string {
	var sb strings.Builder
	sb.WriteString(m.deps.Styles.Header.Render(" QuickBasket "))
	sb.WriteString("\n\n")
	sb.WriteString(m.deps.Styles.Title.Render("Hi " + identity.Name))
	sb.WriteString("\n")
	sb.WriteString("  This terminal client covers shopping and deliveries only.\n")
	sb.WriteString("  Manage the store from the admin dashboard in your browser.\n\n")
	sb.WriteString(m.deps.Styles.Footer.Render("ctrl+l sign out · q quit"))
	return sb.String()
}

// composeOverlay paints the in-flight transfer glyph over the rendered
// screen at the frame's cell position. The glyph thins out as opacity drops
// so the landing reads as a fade.
func (m Model) composeOverlay(screen string) string {
	row := int(m.frame.Rect.Y)
	col := int(m.frame.Rect.X)
	if row < 0 || col < 0 {
		return screen
	}

	glyph := "●"
	if m.frame.Opacity < 0.3 {
		glyph = "·"
	} else if m.frame.Opacity < 0.7 {
		glyph = "•"
	}
	glyph = m.deps.Styles.FlyGlyph.Render(glyph)

	lines := strings.Split(screen, "\n")
	if row >= len(lines) {
		return screen
	}
	line := []rune(lines[row])
	for len(line) <= col {
		line = append(line, ' ')
	}
	lines[row] = string(line[:col]) + glyph + string(line[col+1:])
	return strings.Join(lines, "\n")
}

// sessionExpired reports whether an API failure means the backend rejected
// our token. Expiry forces a local logout: identity and persisted
// credentials are cleared even though the remote invalidation may itself
// fail, and the guards then route to the login screen.
func sessionExpired(err error) bool {
	return err != nil && errors.Is(err, api.ErrSessionExpired)
}

// friendlyError turns the API error taxonomy into copy fit for the screen.
func friendlyError(err error) string {
	switch {
	case err == nil:
		return ""
	case api.IsValidation(err):
		return err.Error()
	case errors.Is(err, api.ErrSessionExpired):
		return "Your session expired. Sign in again."
	case api.IsNetwork(err):
		return "Can't reach QuickBasket right now. Check your connection."
	default:
		return err.Error()
	}
}
