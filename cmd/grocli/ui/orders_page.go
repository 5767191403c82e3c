package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"grocli/internal/types"
)

// OrdersPage renders the consumer's order history.
type OrdersPage struct {
	styles   Styles
	viewport viewport.Model
	orders   []types.Order
	loaded   bool
}

// NewOrdersPage creates the history screen.
func NewOrdersPage(styles Styles) OrdersPage {
	return OrdersPage{
		styles:   styles,
		viewport: viewport.New(80, 20),
	}
}

// SetSize updates the viewport.
func (p *OrdersPage) SetSize(w, h int) {
	p.viewport.Width = w
	p.viewport.Height = h - 4
	p.refresh()
}

// SetOrders installs the fetched history.
func (p *OrdersPage) SetOrders(orders []types.Order) {
	p.orders = orders
	p.loaded = true
	p.refresh()
}

func (p *OrdersPage) refresh() {
	if !p.loaded {
		p.viewport.SetContent(p.styles.Muted.Render("Loading your orders..."))
		return
	}
	if len(p.orders) == 0 {
		p.viewport.SetContent(p.styles.Muted.Render("No orders yet."))
		return
	}

	var sb strings.Builder
	for _, o := range p.orders {
		sb.WriteString(p.styles.Subtitle.Render(fmt.Sprintf("#%s", o.ID)))
		sb.WriteString(fmt.Sprintf("  %s  %s\n", o.CreatedAt.Format("02 Jan 15:04"), statusBadge(p.styles, o.Status)))
		for _, item := range o.Items {
			sb.WriteString(fmt.Sprintf("    %s x%d\n", item.Name, item.Quantity))
		}
		sb.WriteString("    " + p.styles.Price.Render(o.Total.Rupees()) + "\n\n")
	}
	p.viewport.SetContent(sb.String())
}

func statusBadge(styles Styles, status types.OrderStatus) string {
	switch status {
	case types.OrderDelivered:
		return styles.Success.Render(string(status))
	case types.OrderCancelled:
		return styles.Error.Render(string(status))
	default:
		return styles.Warning.Render(string(status))
	}
}

// Update scrolls the viewport.
func (p OrdersPage) Update(msg tea.Msg) (OrdersPage, tea.Cmd) {
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

// View renders the page.
func (p OrdersPage) View() string {
	return p.styles.Title.Render("Your orders") + "\n" + p.viewport.View()
}
