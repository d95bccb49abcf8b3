// Package login implements the account screen: signing in, registering,
// redeeming activation tokens, and resetting passwords.
package login

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/tvo/listkeeper/internal/auth"
	"github.com/tvo/listkeeper/internal/model"
	"github.com/tvo/listkeeper/internal/theme"
	"github.com/tvo/listkeeper/internal/ui"
)

// LoggedInMsg is dispatched when credentials check out.
type LoggedInMsg struct {
	User model.User
}

// resultMsg carries the outcome of an account action back to the view.
type resultMsg struct {
	user *model.User
	info string
	err  error
}

// Account actions offered on the first screen.
const (
	actionLogin        = "login"
	actionRegister     = "register"
	actionActivate     = "activate"
	actionRequestReset = "request_reset"
	actionConfirmReset = "confirm_reset"
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	action   string
	email    string
	password string
	token    string
}

// Model is the account screen component.
type Model struct {
	service *auth.Service
	form    *huh.Form
	fb      *formBindings
	picking bool
	info    string
	errText string
	width   int
	height  int
}

// New creates a new account screen model.
func New(service *auth.Service, width, height int) Model {
	m := Model{
		service: service,
		fb:      &formBindings{},
		picking: true,
		width:   width,
		height:  height,
	}
	m.form = m.buildActionForm()
	return m
}

// Init starts the action picker.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update handles messages for the account screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if result, ok := msg.(resultMsg); ok {
		return m.handleResult(result)
	}

	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		if m.picking {
			m.picking = false
			m.form = m.buildActionFields(m.fb.action)
			return m, m.form.Init()
		}
		return m, m.submit()
	}
	if m.form.State == huh.StateAborted {
		return m.backToPicker("")
	}

	return m, cmd
}

// handleResult shows the outcome and either signs in or returns to the
// action picker.
func (m Model) handleResult(result resultMsg) (Model, tea.Cmd) {
	if result.err != nil {
		m.errText = ui.FriendlyError(result.err)
		m.form = m.buildActionFields(m.fb.action)
		m.picking = false
		return m, m.form.Init()
	}
	if result.user != nil {
		user := *result.user
		return m, func() tea.Msg { return LoggedInMsg{User: user} }
	}
	return m.backToPicker(result.info)
}

func (m Model) backToPicker(info string) (Model, tea.Cmd) {
	m.picking = true
	m.info = info
	m.errText = ""
	m.fb.password = ""
	m.fb.token = ""
	m.form = m.buildActionForm()
	return m, m.form.Init()
}

// View renders the account screen.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	var sections []string
	sections = append(sections, titleStyle.Render("listkeeper"))
	if m.info != "" {
		sections = append(sections, theme.HelpStyle.Render(m.info))
	}
	if m.errText != "" {
		sections = append(sections, theme.ErrorStyle.Render(m.errText))
	}
	if m.form != nil {
		sections = append(sections, m.form.View())
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildActionForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Account").
				Options(
					huh.NewOption("Sign in", actionLogin),
					huh.NewOption("Register", actionRegister),
					huh.NewOption("Activate account", actionActivate),
					huh.NewOption("Forgot password", actionRequestReset),
					huh.NewOption("Redeem reset token", actionConfirmReset),
				).
				Value(&m.fb.action),
		),
	).WithWidth(m.formWidth())
}

// buildActionFields returns the form for the chosen action.
func (m *Model) buildActionFields(action string) *huh.Form {
	emailField := huh.NewInput().
		Title("Email").
		Placeholder("you@example.com").
		Value(&m.fb.email)
	passwordField := huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Value(&m.fb.password)
	tokenField := huh.NewInput().
		Title("Token").
		Placeholder("paste the token from the email").
		Value(&m.fb.token)

	var fields []huh.Field
	switch action {
	case actionLogin, actionRegister:
		fields = []huh.Field{emailField, passwordField}
	case actionActivate:
		fields = []huh.Field{tokenField}
	case actionRequestReset:
		fields = []huh.Field{emailField}
	case actionConfirmReset:
		fields = []huh.Field{tokenField, passwordField}
	}

	return huh.NewForm(huh.NewGroup(fields...)).WithWidth(m.formWidth())
}

// submit runs the chosen account action against the service.
func (m Model) submit() tea.Cmd {
	service := m.service
	action := m.fb.action
	email := m.fb.email
	password := m.fb.password
	token := m.fb.token

	return func() tea.Msg {
		ctx := context.Background()
		switch action {
		case actionLogin:
			user, err := service.Login(ctx, email, password)
			return resultMsg{user: user, err: err}

		case actionRegister:
			_, err := service.Register(ctx, email, password)
			if err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{info: "Registered. Check your email for the activation token."}

		case actionActivate:
			_, err := service.Activate(ctx, token)
			if err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{info: "Account activated. Sign in to continue."}

		case actionRequestReset:
			if err := service.RequestPasswordReset(ctx, email); err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{info: "If that address is registered, a reset token is on its way."}

		case actionConfirmReset:
			_, err := service.ConfirmPasswordReset(ctx, token, password)
			if err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{info: "Password changed. Sign in with the new one."}
		}
		return resultMsg{}
	}
}

func (m Model) formWidth() int {
	w := m.width - 6
	if w < 30 {
		w = 30
	}
	return w
}
