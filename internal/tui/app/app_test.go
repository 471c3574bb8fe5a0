package app

import (
	"net/http"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/askmydocs/askdocs/internal/api"
	"github.com/askmydocs/askdocs/internal/log"
	"github.com/askmydocs/askdocs/internal/session"
	"github.com/askmydocs/askdocs/internal/testutil"
	"github.com/askmydocs/askdocs/internal/tui"
	"github.com/askmydocs/askdocs/internal/tui/tuitest"
)

const testToken = "tok-1"

func newTestApp(t *testing.T, token string) (*App, *tuitest.Harness, *testutil.Backend, *session.Store) {
	t.Helper()
	backend := testutil.NewBackend(t, testToken)

	store, err := session.NewStore(session.NewMemoryStorage())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if token != "" {
		if err := store.SetToken(token); err != nil {
			t.Fatalf("SetToken: %v", err)
		}
	}

	deps := tui.NewDeps(nil, store, api.New(backend.URL(), store), log.Nop(), func(string) error { return nil })
	deps.CitationJumpDelay = time.Millisecond
	deps.RegisterRedirect = time.Millisecond

	a := New(deps)
	h := tuitest.New(t, func(msg tea.Msg) tea.Cmd {
		_, cmd := a.Update(msg)
		return cmd
	})
	return a, h, backend, store
}

func TestScenario_LoginUploadedDocumentAsk(t *testing.T) {
	a, h, backend, store := newTestApp(t, "")
	backend.AddUser("a@b.co", "pw")
	backend.AddFile("a.pdf", "2024-01-01")
	backend.SetQueryReply(testutil.QueryReply{Body: map[string]any{
		"response": "Summary.",
		"sources":  []map[string]any{{"page": "3", "content": "..."}},
	}})

	h.Run(a.Init())
	if a.Route() != tui.RouteLogin {
		t.Fatalf("start route = %s, want login", a.Route())
	}

	h.Type("a@b.co")
	h.Press(tea.KeyTab)
	h.Type("pw")
	h.Press(tea.KeyEnter)
	h.Until(func() bool { return a.Route() == tui.RouteDashboard && len(a.Dashboard().Visible()) == 1 })

	if store.Token() != testToken {
		t.Errorf("token = %q", store.Token())
	}
	if got := a.Dashboard().Visible()[0].Filename; got != "a.pdf" {
		t.Errorf("document = %q", got)
	}

	h.Press(tea.KeyEnter)
	h.Until(func() bool { return a.Route() == tui.RouteChat && !a.Chat().Loading() })
	if a.Chat().Filename() != "a.pdf" {
		t.Errorf("chat filename = %q", a.Chat().Filename())
	}

	h.Type("What is this about?")
	h.Press(tea.KeyEnter)
	h.Until(func() bool {
		msgs := a.Chat().Messages()
		return len(msgs) == 1 && !msgs[0].IsPending
	})

	msg := a.Chat().Messages()[0]
	if msg.Answer != "Summary." {
		t.Errorf("answer = %q", msg.Answer)
	}
	if len(msg.Sources) != 1 || msg.Sources[0].Page != "3" {
		t.Errorf("sources = %+v", msg.Sources)
	}
	h.Until(func() bool { return a.Chat().ActivePage() == 3 })

	if n := backend.Count(http.MethodGet, "/chat/history/a.pdf"); n != 1 {
		t.Errorf("history fetches = %d, want 1", n)
	}
}

func TestRestoredSessionStartsOnDashboard(t *testing.T) {
	a, h, _, _ := newTestApp(t, testToken)

	h.Run(a.Init())
	if a.Route() != tui.RouteDashboard {
		t.Errorf("route = %s, want dashboard", a.Route())
	}
}

func TestSessionExpiredReturnsToLogin(t *testing.T) {
	a, h, _, store := newTestApp(t, "stale")

	h.Run(a.Init())
	h.Until(func() bool { return a.Route() == tui.RouteLogin })

	if store.IsAuthenticated() {
		t.Error("expired session should be cleared")
	}
	if a.Login().Notice() != noticeSessionEnded {
		t.Errorf("notice = %q", a.Login().Notice())
	}
}

func TestLogoutClearsSession(t *testing.T) {
	a, h, _, store := newTestApp(t, testToken)
	h.Run(a.Init())

	h.Type("L")
	h.Until(func() bool { return a.Route() == tui.RouteLogin })

	if store.IsAuthenticated() {
		t.Error("logout should clear the session")
	}
}

func TestClearedTokenRevokesAccessOnNextRender(t *testing.T) {
	a, h, _, store := newTestApp(t, testToken)
	h.Run(a.Init())
	if a.Route() != tui.RouteDashboard {
		t.Fatalf("route = %s", a.Route())
	}

	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	if a.Route() != tui.RouteLogin {
		t.Errorf("route = %s, want login", a.Route())
	}
	if !strings.Contains(a.View(), "Sign in") {
		t.Error("view should render the login form")
	}

	a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	if a.active != tui.RouteLogin {
		t.Errorf("mounted = %s, want login", a.active)
	}
}

func TestProtectedNavigationWhileSignedOut(t *testing.T) {
	a, h, _, _ := newTestApp(t, "")
	h.Run(a.Init())

	a.Update(tui.NavigateMsg{Route: tui.RouteChat, Filename: "a.pdf"})
	if a.Route() != tui.RouteLogin {
		t.Errorf("route = %s, want login", a.Route())
	}
}

func TestRegisterThenBackToLogin(t *testing.T) {
	a, h, backend, _ := newTestApp(t, "")
	h.Run(a.Init())

	h.Send(tea.KeyMsg{Type: tea.KeyCtrlR})
	h.Until(func() bool { return a.Route() == tui.RouteRegister })

	h.Type("new@b.co")
	h.Press(tea.KeyTab)
	h.Type("pw")
	h.Press(tea.KeyTab)
	h.Type("pw")
	h.Press(tea.KeyEnter)
	h.Until(func() bool { return a.Route() == tui.RouteLogin })

	if n := backend.Count(http.MethodPost, "/auth/register"); n != 1 {
		t.Errorf("register calls = %d, want 1", n)
	}
}

func TestDoubleCtrlCQuits(t *testing.T) {
	a, _, _, _ := newTestApp(t, "")
	a.Init()

	a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !a.model.CtrlCPending {
		t.Fatal("first Ctrl+C should arm the exit")
	}

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("second Ctrl+C should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}

	a.Update(tui.CtrlCResetMsg{})
	if a.model.CtrlCPending {
		t.Error("reset should disarm the exit")
	}
}
