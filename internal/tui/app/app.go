// Package app provides the main TUI application that wires all views together.
package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/askmydocs/askdocs/internal/log"
	"github.com/askmydocs/askdocs/internal/tui"
	"github.com/askmydocs/askdocs/internal/tui/views"
)

const (
	ctrlCTimeout       = time.Second
	noticeSessionEnded = "Session expired. Please log in again."
)

// App is the main TUI application that wires all views together.
type App struct {
	model *tui.Model

	// active is the route whose view is mounted.
	active tui.Route

	// View models. The login view always exists so the guard can fall
	// back to it from View.
	loginView     views.LoginModel
	registerView  views.RegisterModel
	dashboardView views.DashboardModel
	chatView      views.ChatModel
}

// New creates a new App. The first screen is the dashboard when a session
// was restored and login otherwise.
func New(deps tui.Deps) *App {
	model := tui.NewModel(deps)
	return &App{
		model:     model,
		active:    -1,
		loginView: views.NewLoginModel(deps, "", model.Width, model.Height),
	}
}

// Init mounts the first screen.
func (a *App) Init() tea.Cmd {
	a.model.Logger.Event(log.EventStarted, zap.Bool("authenticated", a.authenticated()))
	return a.mount(a.resolve(), "")
}

func (a *App) authenticated() bool {
	return a.model.Store != nil && a.model.Store.IsAuthenticated()
}

// resolve applies the guard to the requested route.
func (a *App) resolve() tui.Route {
	return Guard(a.authenticated(), a.model.Route)
}

// mount builds a fresh view for route and returns its Init command.
func (a *App) mount(route tui.Route, notice string) tea.Cmd {
	a.active = route
	a.model.Route = route
	w, h := a.model.Width, a.model.Height
	deps := a.model.Deps

	switch route {
	case tui.RouteLogin:
		a.loginView = views.NewLoginModel(deps, notice, w, h)
		return a.loginView.Init()
	case tui.RouteRegister:
		a.registerView = views.NewRegisterModel(deps, w, h)
		return a.registerView.Init()
	case tui.RouteDashboard:
		a.dashboardView = views.NewDashboardModel(deps, w, h)
		return a.dashboardView.Init()
	case tui.RouteChat:
		a.chatView = views.NewChatModel(deps, a.model.Filename, w, h)
		return a.chatView.Init()
	}
	return nil
}

// Update handles messages and updates the application state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The session can be cleared from anywhere; re-check before routing.
	var guardCmd tea.Cmd
	if route := a.resolve(); route != a.active {
		guardCmd = a.mount(route, "")
	}
	cmd := a.update(msg)
	if guardCmd == nil {
		return a, cmd
	}
	return a, tea.Batch(guardCmd, cmd)
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.model.Width = msg.Width
		a.model.Height = msg.Height
		return a.updateActive(msg)

	case tea.KeyMsg:
		if msg.String() == tui.KeyCtrlC {
			if a.model.CtrlCPending {
				// Second press within timeout - exit
				return tea.Quit
			}
			a.model.CtrlCPending = true
			return tea.Tick(ctrlCTimeout, func(time.Time) tea.Msg {
				return tui.CtrlCResetMsg{}
			})
		}

	case tui.CtrlCResetMsg:
		a.model.CtrlCPending = false
		return nil

	case tui.NavigateMsg:
		a.model.Route = msg.Route
		if msg.Route == tui.RouteChat {
			a.model.Filename = msg.Filename
		}
		return a.mount(a.resolve(), msg.Notice)

	case tui.SessionExpiredMsg:
		a.model.Logger.Event(log.EventSessionExpired)
		return a.signOut(noticeSessionEnded)

	case tui.LogoutMsg:
		a.model.Logger.Event(log.EventLoggedOut)
		return a.signOut("")
	}

	return a.updateActive(msg)
}

func (a *App) signOut(notice string) tea.Cmd {
	if a.model.Store != nil {
		if err := a.model.Store.Clear(); err != nil {
			a.model.Logger.Failure(log.EventLoggedOut, err)
		}
	}
	a.model.Route = tui.RouteLogin
	a.model.Filename = ""
	return a.mount(tui.RouteLogin, notice)
}

// updateActive forwards msg to the mounted view only. Results addressed to
// a view that has since been replaced are dropped here or by its mount id.
func (a *App) updateActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.active {
	case tui.RouteLogin:
		a.loginView, cmd = a.loginView.Update(msg)
	case tui.RouteRegister:
		a.registerView, cmd = a.registerView.Update(msg)
	case tui.RouteDashboard:
		a.dashboardView, cmd = a.dashboardView.Update(msg)
	case tui.RouteChat:
		a.chatView, cmd = a.chatView.Update(msg)
	}
	return cmd
}

// View renders the current application state.
func (a *App) View() string {
	a.loginView.SetCtrlCPending(a.model.CtrlCPending)
	a.registerView.SetCtrlCPending(a.model.CtrlCPending)
	a.dashboardView.SetCtrlCPending(a.model.CtrlCPending)
	a.chatView.SetCtrlCPending(a.model.CtrlCPending)

	route := a.resolve()
	if route != a.active {
		// Not mounted yet; never render a protected view without a session.
		route = tui.RouteLogin
	}

	var content string
	switch route {
	case tui.RouteLogin:
		content = a.loginView.View()
	case tui.RouteRegister:
		content = a.registerView.View()
	case tui.RouteDashboard:
		content = a.dashboardView.View()
	case tui.RouteChat:
		return a.chatView.View()
	}

	return lipgloss.Place(
		a.model.Width,
		a.model.Height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

// Route returns the screen currently shown.
func (a *App) Route() tui.Route {
	if r := a.resolve(); r != a.active {
		return tui.RouteLogin
	}
	return a.active
}

// Dashboard returns the dashboard view state.
func (a *App) Dashboard() views.DashboardModel { return a.dashboardView }

// Chat returns the chat view state.
func (a *App) Chat() views.ChatModel { return a.chatView }

// Login returns the login view state.
func (a *App) Login() views.LoginModel { return a.loginView }
