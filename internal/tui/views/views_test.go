package views

import (
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

// newDeps wires views to a fake backend. signedIn stores the backend's
// token before the view is built.
func newDeps(t *testing.T, signedIn bool) (tui.Deps, *testutil.Backend) {
	t.Helper()
	backend := testutil.NewBackend(t, testToken)

	store, err := session.NewStore(session.NewMemoryStorage())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if signedIn {
		if err := store.SetToken(testToken); err != nil {
			t.Fatalf("SetToken: %v", err)
		}
	}

	client := api.New(backend.URL(), store)
	deps := tui.NewDeps(nil, store, client, log.Nop(), func(string) error { return nil })
	deps.CitationJumpDelay = time.Millisecond
	deps.RegisterRedirect = time.Millisecond
	return deps, backend
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sawNavigate(h *tuitest.Harness, route tui.Route) bool {
	for _, msg := range h.Seen() {
		if nav, ok := msg.(tui.NavigateMsg); ok && nav.Route == route {
			return true
		}
	}
	return false
}
