package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"grocli/internal/cart"
)

// applyCouponMsg asks the app to validate and apply a coupon code.
type applyCouponMsg struct {
	code string
}

// clearCouponMsg removes the applied coupon.
type clearCouponMsg struct{}

// proceedToCheckoutMsg moves to the checkout screen.
type proceedToCheckoutMsg struct{}

// CartPage renders the basket with line controls and the coupon field.
type CartPage struct {
	styles Styles
	store  *cart.Store

	cursor      int
	couponInput textinput.Model
	couponOpen  bool
	couponErr   string

	width, height int
}

// NewCartPage creates the cart screen over the shared store.
func NewCartPage(styles Styles, store *cart.Store) CartPage {
	ti := textinput.New()
	ti.Placeholder = "coupon code"
	ti.CharLimit = 24
	ti.Width = 24

	return CartPage{
		styles:      styles,
		store:       store,
		couponInput: ti,
	}
}

// SetSize updates layout dimensions.
func (p *CartPage) SetSize(w, h int) {
	p.width = w
	p.height = h
}

// SetCouponError surfaces a rejected coupon inline.
func (p *CartPage) SetCouponError(msg string) {
	p.couponErr = msg
}

// Update handles cart keys. Mutations go straight to the store; totals are
// re-derived there, never here.
func (p CartPage) Update(msg tea.Msg) (CartPage, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	if p.couponOpen {
		switch key.Type {
		case tea.KeyEnter:
			code := strings.TrimSpace(p.couponInput.Value())
			p.couponOpen = false
			p.couponInput.Blur()
			if code == "" {
				return p, nil
			}
			return p, func() tea.Msg { return applyCouponMsg{code: code} }
		case tea.KeyEsc:
			p.couponOpen = false
			p.couponInput.Blur()
			return p, nil
		}
		var cmd tea.Cmd
		p.couponInput, cmd = p.couponInput.Update(msg)
		return p, cmd
	}

	items := p.store.Items()
	switch key.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(items)-1 {
			p.cursor++
		}
	case "+", "=":
		if p.cursor < len(items) {
			li := items[p.cursor]
			p.store.SetQuantity(li.ProductID, li.Quantity+1)
		}
	case "-":
		if p.cursor < len(items) {
			li := items[p.cursor]
			// qty 1 minus one removes the line, per store semantics
			p.store.SetQuantity(li.ProductID, li.Quantity-1)
			if p.cursor >= len(p.store.Items()) && p.cursor > 0 {
				p.cursor--
			}
		}
	case "x", "delete":
		if p.cursor < len(items) {
			p.store.RemoveItem(items[p.cursor].ProductID)
			if p.cursor >= len(p.store.Items()) && p.cursor > 0 {
				p.cursor--
			}
		}
	case "c":
		p.couponOpen = true
		p.couponErr = ""
		p.couponInput.SetValue("")
		p.couponInput.Focus()
		return p, textinput.Blink
	case "r":
		if p.store.AppliedCoupon() != "" {
			return p, func() tea.Msg { return clearCouponMsg{} }
		}
	case "enter":
		if len(items) > 0 {
			return p, func() tea.Msg { return proceedToCheckoutMsg{} }
		}
	}
	return p, nil
}

// View renders the basket.
func (p CartPage) View() string {
	var sb strings.Builder
	sb.WriteString(p.styles.Title.Render("Your basket"))
	sb.WriteString("\n")

	items := p.store.Items()
	if len(items) == 0 {
		sb.WriteString(p.styles.Muted.Render("Your basket is empty. Go grab something fresh."))
		return sb.String()
	}

	for i, li := range items {
		line := fmt.Sprintf("%-26s x%-3d %s", truncate(li.Product.Name, 26), li.Quantity,
			p.styles.Price.Render(li.LineTotal().Rupees()))
		if i == p.cursor {
			line = p.styles.Selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	totals := p.store.Totals()
	sb.WriteString(p.styles.Divider.Render(strings.Repeat("─", 44)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  %-32s %s\n", "Subtotal", totals.Subtotal.Rupees()))
	if totals.Discount > 0 {
		label := "Discount"
		if code := p.store.AppliedCoupon(); code != "" {
			label = "Discount (" + code + ")"
		}
		sb.WriteString(p.styles.Success.Render(fmt.Sprintf("  %-32s -%s", label, totals.Discount.Rupees())))
		sb.WriteString("\n")
	}
	feeLabel := totals.DeliveryFee.Rupees()
	if totals.DeliveryFee == 0 {
		feeLabel = "FREE"
	}
	sb.WriteString(fmt.Sprintf("  %-32s %s\n", "Delivery", feeLabel))
	sb.WriteString(p.styles.Subtitle.Render(fmt.Sprintf("  %-32s %s", "To pay", totals.Total.Rupees())))
	sb.WriteString("\n")

	if p.couponOpen {
		sb.WriteString("\n  Coupon: " + p.couponInput.View() + "\n")
	} else if p.couponErr != "" {
		sb.WriteString("\n" + p.styles.Error.Render("  "+p.couponErr) + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(p.styles.Muted.Render("+/- qty · x remove · c coupon · r remove coupon · enter checkout"))
	return sb.String()
}
