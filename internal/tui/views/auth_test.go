package views

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/askmydocs/askdocs/internal/tui"
	"github.com/askmydocs/askdocs/internal/tui/tuitest"
)

func TestLogin_StoresTokenAndNavigates(t *testing.T) {
	deps, backend := newDeps(t, false)
	backend.AddUser("a@b.co", "pw")

	m := NewLoginModel(deps, "", 80, 24)
	h := tuitest.New(t, func(msg tea.Msg) tea.Cmd {
		var cmd tea.Cmd
		m, cmd = m.Update(msg)
		return cmd
	})

	h.Type("a@b.co")
	h.Press(tea.KeyTab)
	h.Type("pw")
	h.Press(tea.KeyEnter)
	h.Until(func() bool { return sawNavigate(h, tui.RouteDashboard) })

	if got := deps.Store.Token(); got != testToken {
		t.Errorf("token = %q, want %q", got, testToken)
	}
	if m.Err() != "" {
		t.Errorf("unexpected error %q", m.Err())
	}
}

func TestLogin_ValidationErrorInline(t *testing.T) {
	deps, backend := newDeps(t, false)

	m := NewLoginModel(deps, "", 80, 24)
	h := tuitest.New(t, func(msg tea.Msg) tea.Cmd {
		var cmd tea.Cmd
		m, cmd = m.Update(msg)
		return cmd
	})

	h.Press(tea.KeyEnter)
	h.Until(func() bool { return m.Err() != "" })

	if m.Err() != "Email is required" {
		t.Errorf("error = %q", m.Err())
	}
	if n := len(backend.Calls()); n != 0 {
		t.Errorf("backend calls = %d, want 0", n)
	}
	if deps.Store.IsAuthenticated() {
		t.Error("store should stay signed out")
	}
}

func TestLogin_ServerRejection(t *testing.T) {
	deps, _ := newDeps(t, false)

	m := NewLoginModel(deps, "", 80, 24)
	h := tuitest.New(t, func(msg tea.Msg) tea.Cmd {
		var cmd tea.Cmd
		m, cmd = m.Update(msg)
		return cmd
	})

	h.Type("nobody@b.co")
	h.Press(tea.KeyTab)
	h.Type("pw")
	h.Press(tea.KeyEnter)
	h.Until(func() bool { return m.Err() != "" })

	if m.Err() != "Invalid credentials" {
		t.Errorf("error = %q", m.Err())
	}
}

func TestLogin_ToggleToRegister(t *testing.T) {
	deps, _ := newDeps(t, false)
	m := NewLoginModel(deps, "", 80, 24)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if cmd == nil {
		t.Fatal("expected a navigation command")
	}
	nav, ok := cmd().(tui.NavigateMsg)
	if !ok || nav.Route != tui.RouteRegister {
		t.Errorf("got %#v, want navigation to register", nav)
	}
}

func TestRegister_PasswordMismatchMakesNoCall(t *testing.T) {
	deps, backend := newDeps(t, false)
	m := NewRegisterModel(deps, 80, 24)

	m, _ = m.Update(keyRunes("new@b.co"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(keyRunes("one"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m, _ = m.Update(keyRunes("two"))
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Error("mismatch should not issue a command")
	}
	if m.Err() != msgPasswordMismatch {
		t.Errorf("error = %q, want %q", m.Err(), msgPasswordMismatch)
	}
	if n := len(backend.Calls()); n != 0 {
		t.Errorf("backend calls = %d, want 0", n)
	}
}

func TestRegister_SuccessRedirectsToLogin(t *testing.T) {
	deps, backend := newDeps(t, false)

	m := NewRegisterModel(deps, 80, 24)
	h := tuitest.New(t, func(msg tea.Msg) tea.Cmd {
		var cmd tea.Cmd
		m, cmd = m.Update(msg)
		return cmd
	})

	h.Type("new@b.co")
	h.Press(tea.KeyTab)
	h.Type("secret")
	h.Press(tea.KeyTab)
	h.Type("secret")
	h.Press(tea.KeyEnter)
	h.Until(func() bool { return m.Success() != "" })

	if m.Success() != msgRegisterSuccessful {
		t.Errorf("success = %q", m.Success())
	}
	h.Until(func() bool { return sawNavigate(h, tui.RouteLogin) })

	if n := backend.Count("POST", "/auth/register"); n != 1 {
		t.Errorf("register calls = %d, want 1", n)
	}
}

func TestRegister_DuplicateShowsDetail(t *testing.T) {
	deps, backend := newDeps(t, false)
	backend.AddUser("taken@b.co", "pw")

	m := NewRegisterModel(deps, 80, 24)
	h := tuitest.New(t, func(msg tea.Msg) tea.Cmd {
		var cmd tea.Cmd
		m, cmd = m.Update(msg)
		return cmd
	})

	h.Type("taken@b.co")
	h.Press(tea.KeyTab)
	h.Type("pw")
	h.Press(tea.KeyTab)
	h.Type("pw")
	h.Press(tea.KeyEnter)
	h.Until(func() bool { return m.Err() != "" })

	if m.Err() != "Email already registered" {
		t.Errorf("error = %q", m.Err())
	}
	if m.Success() != "" {
		t.Error("no success message expected")
	}
}

func TestRegister_StaleRedirectIgnored(t *testing.T) {
	deps, _ := newDeps(t, false)
	m := NewRegisterModel(deps, 80, 24)

	_, cmd := m.Update(tui.RedirectMsg{MountID: "someone-else"})
	if cmd != nil {
		t.Error("redirect for another mount should be dropped")
	}
}

func TestLogin_DropsResultFromEarlierForm(t *testing.T) {
	deps, _ := newDeps(t, false)
	earlier := NewLoginModel(deps, "", 80, 24)
	m := NewLoginModel(deps, "", 80, 24)

	m, cmd := m.Update(tui.LoginResultMsg{MountID: earlier.mountID, Email: "a@b.co", Token: "stale-token"})
	if cmd != nil {
		t.Error("expected no command for a result from another form")
	}
	if deps.Store.IsAuthenticated() {
		t.Errorf("token stored from another form: %q", deps.Store.Token())
	}
	if m.Err() != "" {
		t.Errorf("unexpected error %q", m.Err())
	}
}

func TestRegister_DropsResultFromEarlierForm(t *testing.T) {
	deps, _ := newDeps(t, false)
	earlier := NewRegisterModel(deps, 80, 24)
	m := NewRegisterModel(deps, 80, 24)

	m, cmd := m.Update(tui.RegisterResultMsg{MountID: earlier.mountID, Email: "a@b.co"})
	if cmd != nil {
		t.Error("expected no redirect for a result from another form")
	}
	if m.Success() != "" {
		t.Errorf("success = %q, want none", m.Success())
	}
}
