package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/askmydocs/askdocs/internal/api"
	"github.com/askmydocs/askdocs/internal/log"
	"github.com/askmydocs/askdocs/internal/tui"
	"github.com/askmydocs/askdocs/internal/tui/commands"
)

const (
	msgPasswordMismatch   = "Passwords do not match"
	msgRegisterSuccessful = "Registration successful! Redirecting to login..."
)

// RegisterModel is the account creation form.
type RegisterModel struct {
	deps       tui.Deps
	mountID    string
	inputs     []textinput.Model // email, password, confirm
	focus      int
	err        string
	success    string
	submitting bool
	spinner    spinner.Model
	width      int
	height     int

	ctrlCPending bool
}

// NewRegisterModel creates the registration form.
func NewRegisterModel(deps tui.Deps, width, height int) RegisterModel {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email:            "
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password:         "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	confirm := textinput.New()
	confirm.Placeholder = "password"
	confirm.Prompt = "Confirm password: "
	confirm.EchoMode = textinput.EchoPassword
	confirm.EchoCharacter = '•'
	confirm.CharLimit = 128

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := RegisterModel{
		deps:    deps,
		mountID: uuid.NewString(),
		inputs:  []textinput.Model{email, password, confirm},
		spinner: sp,
		width:   width,
		height:  height,
	}
	m.resize(width)
	return m
}

// Init returns the initial command for the register view.
func (m RegisterModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the register view.
func (m RegisterModel) Update(msg tea.Msg) (RegisterModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, tui.DefaultKeyMap.ToggleAuth):
			return m, commands.NavigateCmd(tui.NavigateMsg{Route: tui.RouteLogin})

		case key.Matches(msg, tui.DefaultKeyMap.Tab), msg.String() == "up", msg.String() == "down":
			m.focus = nextFocus(m.inputs, m.focus, msg.String() == "shift+tab" || msg.String() == "up")
			return m, nil

		case msg.String() == tui.KeyEnter:
			return m.submit()
		}

	case tui.RegisterResultMsg:
		if msg.MountID != m.mountID {
			return m, nil
		}
		m.submitting = false
		if msg.Err != nil {
			m.err = api.UserMessage(msg.Err)
			m.deps.Logger.Failure(log.EventRegisterFailed, msg.Err, zap.String("email", msg.Email))
			return m, nil
		}
		m.deps.Logger.Event(log.EventRegisterSucceeded, zap.String("email", msg.Email))
		m.success = msgRegisterSuccessful
		for i := range m.inputs {
			m.inputs[i].Reset()
		}
		return m, commands.RedirectCmd(m.deps.RegisterRedirect, m.mountID)

	case tui.RedirectMsg:
		if msg.MountID != m.mountID {
			return m, nil
		}
		return m, commands.NavigateCmd(tui.NavigateMsg{Route: tui.RouteLogin})

	case spinner.TickMsg:
		if m.submitting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize(msg.Width)
		return m, nil
	}

	if m.submitting || m.success != "" {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m RegisterModel) submit() (RegisterModel, tea.Cmd) {
	if m.submitting || m.success != "" {
		return m, nil
	}
	m.err = ""
	if m.inputs[1].Value() != m.inputs[2].Value() {
		m.err = msgPasswordMismatch
		return m, nil
	}
	m.submitting = true
	email := strings.TrimSpace(m.inputs[0].Value())
	return m, tea.Batch(
		commands.RegisterCmd(m.deps.Gateway, m.mountID, email, m.inputs[1].Value()),
		m.spinner.Tick,
	)
}

func (m *RegisterModel) resize(width int) {
	for i := range m.inputs {
		m.inputs[i].Width = boxWidth(width, maxFormWidth) - 24
	}
}

// View renders the register view.
func (m RegisterModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("AskMyDocs · Create account"))
	b.WriteString("\n\n")

	for _, in := range m.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.success != "":
		b.WriteString(tui.SuccessStyle.Render(m.success))
		b.WriteString("\n\n")
	case m.submitting:
		b.WriteString(m.spinner.View() + " Creating account...")
		b.WriteString("\n\n")
	case m.err != "":
		b.WriteString(tui.ErrorStyle.Render(m.err))
		b.WriteString("\n\n")
	}

	b.WriteString(renderFooter([]string{"Tab: Next field", "Enter: Register", "Ctrl+R: Sign in"}, m.ctrlCPending))

	return tui.BoxStyle.Width(boxWidth(m.width, maxFormWidth)).Render(b.String())
}

// Err returns the inline error, if any.
func (m RegisterModel) Err() string { return m.err }

// Success returns the confirmation shown after registering.
func (m RegisterModel) Success() string { return m.success }

// SetCtrlCPending sets the Ctrl+C pending state for display.
func (m *RegisterModel) SetCtrlCPending(pending bool) {
	m.ctrlCPending = pending
}
