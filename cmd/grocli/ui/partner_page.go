package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"grocli/internal/types"
)

// advanceStatusMsg asks the app to push an assigned order to its next status.
type advanceStatusMsg struct {
	orderID string
	status  types.OrderStatus
}

// PartnerPage renders a delivery partner's assigned orders and lets them
// advance the status pipeline.
type PartnerPage struct {
	styles Styles

	orders []types.Order
	cursor int
	loaded bool
	busy   bool

	width, height int
}

// NewPartnerPage creates the partner screen.
func NewPartnerPage(styles Styles) PartnerPage {
	return PartnerPage{styles: styles}
}

// SetSize updates layout dimensions.
func (p *PartnerPage) SetSize(w, h int) {
	p.width = w
	p.height = h
}

// SetOrders installs the assigned order list.
func (p *PartnerPage) SetOrders(orders []types.Order) {
	p.orders = orders
	p.loaded = true
	p.busy = false
	if p.cursor >= len(orders) {
		p.cursor = 0
	}
}

// ApplyUpdate swaps in an order returned by a status change.
func (p *PartnerPage) ApplyUpdate(order *types.Order) {
	p.busy = false
	if order == nil {
		return
	}
	for i := range p.orders {
		if p.orders[i].ID == order.ID {
			p.orders[i] = *order
			return
		}
	}
}

// nextStatus is the partner-side delivery pipeline. Terminal states have no
// successor.
func nextStatus(s types.OrderStatus) (types.OrderStatus, bool) {
	switch s {
	case types.OrderPlaced:
		return types.OrderAccepted, true
	case types.OrderAccepted:
		return types.OrderOutForDelivery, true
	case types.OrderOutForDelivery:
		return types.OrderDelivered, true
	}
	return "", false
}

// Update handles list navigation and status advancement.
func (p PartnerPage) Update(msg tea.Msg) (PartnerPage, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	if p.busy {
		return p, nil
	}

	switch key.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.orders)-1 {
			p.cursor++
		}
	case "enter", " ":
		if p.cursor < len(p.orders) {
			order := p.orders[p.cursor]
			if next, ok := nextStatus(order.Status); ok {
				p.busy = true
				id := order.ID
				return p, func() tea.Msg { return advanceStatusMsg{orderID: id, status: next} }
			}
		}
	}
	return p, nil
}

// View renders the assigned orders.
func (p PartnerPage) View() string {
	var sb strings.Builder
	sb.WriteString(p.styles.Title.Render("Deliveries"))
	sb.WriteString("\n")

	if !p.loaded {
		sb.WriteString(p.styles.Muted.Render("Loading assigned orders..."))
		return sb.String()
	}
	if len(p.orders) == 0 {
		sb.WriteString(p.styles.Muted.Render("Nothing assigned right now."))
		return sb.String()
	}

	for i, o := range p.orders {
		line := fmt.Sprintf("#%-10s %-18s %s %s",
			truncate(o.ID, 10), statusBadge(p.styles, o.Status),
			p.styles.Price.Render(o.Total.Rupees()),
			truncate(o.Address.Line1+", "+o.Address.City, 30))
		if i == p.cursor {
			line = p.styles.Selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	if p.busy {
		sb.WriteString(p.styles.Warning.Render("Updating..."))
	} else if p.cursor < len(p.orders) {
		if next, ok := nextStatus(p.orders[p.cursor].Status); ok {
			sb.WriteString(p.styles.Muted.Render(fmt.Sprintf("enter to mark %s", next)))
		} else {
			sb.WriteString(p.styles.Muted.Render("order is in a final state"))
		}
	}
	return sb.String()
}
