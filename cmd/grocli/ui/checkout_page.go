package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"grocli/internal/cart"
	"grocli/internal/types"
)

// placeOrderMsg asks the app to submit the order.
type placeOrderMsg struct {
	address types.Address
	payment types.PaymentMethod
}

// checkoutField indexes the focusable inputs.
const (
	fieldLine1 = iota
	fieldCity
	fieldPincode
	fieldCount
)

// CheckoutPage collects the address and payment method.
type CheckoutPage struct {
	styles Styles
	store  *cart.Store

	inputs  []textinput.Model
	focus   int
	payment types.PaymentMethod

	submitting bool
	errText    string
}

// NewCheckoutPage creates the checkout screen.
func NewCheckoutPage(styles Styles, store *cart.Store) CheckoutPage {
	mk := func(placeholder string, width int) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.Width = width
		ti.CharLimit = 64
		return ti
	}

	inputs := make([]textinput.Model, fieldCount)
	inputs[fieldLine1] = mk("flat / street", 40)
	inputs[fieldCity] = mk("city", 24)
	inputs[fieldPincode] = mk("pincode", 8)
	inputs[fieldLine1].Focus()

	return CheckoutPage{
		styles:  styles,
		store:   store,
		inputs:  inputs,
		payment: types.PaymentCOD,
	}
}

// Reset clears transient state when re-entering the screen.
func (p *CheckoutPage) Reset() {
	p.submitting = false
	p.errText = ""
}

// SetError surfaces a failed placement; the cart is untouched and the user
// can retry.
func (p *CheckoutPage) SetError(msg string) {
	p.submitting = false
	p.errText = msg
}

// Update handles field navigation and submission.
func (p CheckoutPage) Update(msg tea.Msg) (CheckoutPage, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	if p.submitting {
		return p, nil
	}

	switch key.Type {
	case tea.KeyTab, tea.KeyDown:
		p.setFocus((p.focus + 1) % fieldCount)
		return p, textinput.Blink
	case tea.KeyShiftTab, tea.KeyUp:
		p.setFocus((p.focus + fieldCount - 1) % fieldCount)
		return p, textinput.Blink
	case tea.KeyEnter:
		return p.submit()
	}

	switch key.String() {
	case "ctrl+p":
		if p.payment == types.PaymentCOD {
			p.payment = types.PaymentOnline
		} else {
			p.payment = types.PaymentCOD
		}
		return p, nil
	}

	var cmd tea.Cmd
	p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
	return p, cmd
}

func (p *CheckoutPage) setFocus(i int) {
	p.inputs[p.focus].Blur()
	p.focus = i
	p.inputs[p.focus].Focus()
}

func (p CheckoutPage) submit() (CheckoutPage, tea.Cmd) {
	address := types.Address{
		Line1:   strings.TrimSpace(p.inputs[fieldLine1].Value()),
		City:    strings.TrimSpace(p.inputs[fieldCity].Value()),
		Pincode: strings.TrimSpace(p.inputs[fieldPincode].Value()),
	}
	if address.Line1 == "" || address.City == "" || address.Pincode == "" {
		p.errText = "All address fields are required."
		return p, nil
	}

	p.submitting = true
	p.errText = ""
	payment := p.payment
	return p, func() tea.Msg { return placeOrderMsg{address: address, payment: payment} }
}

// View renders the form.
func (p CheckoutPage) View() string {
	var sb strings.Builder
	sb.WriteString(p.styles.Title.Render("Checkout"))
	sb.WriteString("\n")

	totals := p.store.Totals()
	sb.WriteString("  To pay: " + p.styles.Price.Render(totals.Total.Rupees()))
	sb.WriteString("\n\n")

	labels := []string{"Address", "City", "Pincode"}
	for i, input := range p.inputs {
		sb.WriteString("  " + p.styles.Subtitle.Render(labels[i]) + "\n")
		sb.WriteString("  " + input.View() + "\n")
	}

	sb.WriteString("\n  Payment: ")
	if p.payment == types.PaymentCOD {
		sb.WriteString(p.styles.Badge.Render("Cash on delivery"))
	} else {
		sb.WriteString(p.styles.Badge.Render("Pay online"))
	}
	sb.WriteString(p.styles.Muted.Render("  (ctrl+p to switch)"))
	sb.WriteString("\n")

	if p.submitting {
		sb.WriteString("\n" + p.styles.Warning.Render("  Placing your order..."))
	} else if p.errText != "" {
		sb.WriteString("\n" + p.styles.Error.Render("  "+p.errText))
		sb.WriteString(p.styles.Muted.Render("  press enter to retry"))
	} else {
		sb.WriteString("\n" + p.styles.Muted.Render("  enter to place order · esc back to basket"))
	}
	return sb.String()
}
