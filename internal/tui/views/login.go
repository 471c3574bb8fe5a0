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

// LoginModel is the sign-in form.
type LoginModel struct {
	deps       tui.Deps
	mountID    string
	inputs     []textinput.Model // email, password
	focus      int
	err        string
	notice     string
	submitting bool
	spinner    spinner.Model
	width      int
	height     int

	ctrlCPending bool
}

// NewLoginModel creates the login form. notice is shown above the form,
// e.g. after a session expires.
func NewLoginModel(deps tui.Deps, notice string, width, height int) LoginModel {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email:    "
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := LoginModel{
		deps:    deps,
		mountID: uuid.NewString(),
		inputs:  []textinput.Model{email, password},
		notice:  notice,
		spinner: sp,
		width:   width,
		height:  height,
	}
	m.resize(width)
	return m
}

// Init returns the initial command for the login view.
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the login view.
func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, tui.DefaultKeyMap.ToggleAuth):
			return m, commands.NavigateCmd(tui.NavigateMsg{Route: tui.RouteRegister})

		case key.Matches(msg, tui.DefaultKeyMap.Tab), msg.String() == "up", msg.String() == "down":
			m.cycleFocus(msg.String() == "shift+tab" || msg.String() == "up")
			return m, nil

		case msg.String() == tui.KeyEnter:
			if m.submitting {
				return m, nil
			}
			m.err = ""
			m.notice = ""
			m.submitting = true
			email := strings.TrimSpace(m.inputs[0].Value())
			return m, tea.Batch(
				commands.LoginCmd(m.deps.Gateway, m.mountID, email, m.inputs[1].Value()),
				m.spinner.Tick,
			)
		}

	case tui.LoginResultMsg:
		if msg.MountID != m.mountID {
			return m, nil
		}
		m.submitting = false
		if msg.Err != nil {
			m.err = api.UserMessage(msg.Err)
			m.deps.Logger.Failure(log.EventLoginFailed, msg.Err, zap.String("email", msg.Email))
			return m, nil
		}
		if err := m.deps.Store.SetToken(msg.Token); err != nil {
			m.err = "Could not save session: " + err.Error()
			m.deps.Logger.Failure(log.EventLoginFailed, err, zap.String("email", msg.Email))
			return m, nil
		}
		m.deps.Logger.Event(log.EventLoginSucceeded, zap.String("email", msg.Email))
		m.inputs[1].Reset()
		return m, commands.NavigateCmd(tui.NavigateMsg{Route: tui.RouteDashboard})

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

	if m.submitting {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *LoginModel) cycleFocus(back bool) {
	m.focus = nextFocus(m.inputs, m.focus, back)
}

func (m *LoginModel) resize(width int) {
	for i := range m.inputs {
		m.inputs[i].Width = boxWidth(width, maxFormWidth) - 16
	}
}

// View renders the login view.
func (m LoginModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("AskMyDocs · Sign in"))
	b.WriteString("\n\n")

	if m.notice != "" {
		b.WriteString(tui.WarningStyle.Render(m.notice))
		b.WriteString("\n\n")
	}

	for _, in := range m.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.submitting:
		b.WriteString(m.spinner.View() + " Signing in...")
		b.WriteString("\n\n")
	case m.err != "":
		b.WriteString(tui.ErrorStyle.Render(m.err))
		b.WriteString("\n\n")
	}

	b.WriteString(renderFooter([]string{"Tab: Next field", "Enter: Sign in", "Ctrl+R: Register"}, m.ctrlCPending))

	return tui.BoxStyle.Width(boxWidth(m.width, maxFormWidth)).Render(b.String())
}

// Err returns the inline error, if any.
func (m LoginModel) Err() string { return m.err }

// Notice returns the message shown above the form, if any.
func (m LoginModel) Notice() string { return m.notice }

// SetCtrlCPending sets the Ctrl+C pending state for display.
func (m *LoginModel) SetCtrlCPending(pending bool) {
	m.ctrlCPending = pending
}

// nextFocus moves focus among inputs and returns the new index.
func nextFocus(inputs []textinput.Model, cur int, back bool) int {
	inputs[cur].Blur()
	if back {
		cur = (cur + len(inputs) - 1) % len(inputs)
	} else {
		cur = (cur + 1) % len(inputs)
	}
	inputs[cur].Focus()
	return cur
}
