package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// loginSubmitMsg asks the app to authenticate.
type loginSubmitMsg struct {
	phone    string
	password string
}

// LoginPage is the auth screen shown whenever no identity is present.
type LoginPage struct {
	styles Styles

	phone    textinput.Model
	password textinput.Model
	focus    int

	submitting bool
	errText    string
}

// NewLoginPage creates the login form.
func NewLoginPage(styles Styles) LoginPage {
	phone := textinput.New()
	phone.Placeholder = "phone number"
	phone.CharLimit = 10
	phone.Width = 24
	phone.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 64
	password.Width = 24

	return LoginPage{
		styles:   styles,
		phone:    phone,
		password: password,
	}
}

// SetResult applies the login outcome.
func (p *LoginPage) SetResult(ok bool, errText string) {
	p.submitting = false
	if !ok && errText == "" {
		errText = "Phone number or password is incorrect."
	}
	p.errText = errText
}

// Update handles form input.
func (p LoginPage) Update(msg tea.Msg) (LoginPage, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	if p.submitting {
		return p, nil
	}

	switch key.Type {
	case tea.KeyTab, tea.KeyDown, tea.KeyShiftTab, tea.KeyUp:
		if p.focus == 0 {
			p.focus = 1
			p.phone.Blur()
			p.password.Focus()
		} else {
			p.focus = 0
			p.password.Blur()
			p.phone.Focus()
		}
		return p, textinput.Blink
	case tea.KeyEnter:
		phone := strings.TrimSpace(p.phone.Value())
		password := p.password.Value()
		if phone == "" || password == "" {
			p.errText = "Enter your phone number and password."
			return p, nil
		}
		p.submitting = true
		p.errText = ""
		return p, func() tea.Msg { return loginSubmitMsg{phone: phone, password: password} }
	}

	var cmd tea.Cmd
	if p.focus == 0 {
		p.phone, cmd = p.phone.Update(msg)
	} else {
		p.password, cmd = p.password.Update(msg)
	}
	return p, cmd
}

// View renders the form.
func (p LoginPage) View() string {
	var sb strings.Builder
	sb.WriteString(p.styles.Title.Render("Sign in to QuickBasket"))
	sb.WriteString("\n")
	sb.WriteString("  " + p.styles.Subtitle.Render("Phone") + "\n")
	sb.WriteString("  " + p.phone.View() + "\n")
	sb.WriteString("  " + p.styles.Subtitle.Render("Password") + "\n")
	sb.WriteString("  " + p.password.View() + "\n")

	if p.submitting {
		sb.WriteString("\n" + p.styles.Warning.Render("  Signing in..."))
	} else if p.errText != "" {
		sb.WriteString("\n" + p.styles.Error.Render("  "+p.errText))
	} else {
		sb.WriteString("\n" + p.styles.Muted.Render("  tab to switch fields · enter to sign in"))
	}
	return sb.String()
}
