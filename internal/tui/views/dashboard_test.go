package views

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/askmydocs/askdocs/internal/api"
	"github.com/askmydocs/askdocs/internal/docs"
	"github.com/askmydocs/askdocs/internal/testutil"
	"github.com/askmydocs/askdocs/internal/tui"
	"github.com/askmydocs/askdocs/internal/tui/tuitest"
)

func mountDashboard(t *testing.T, deps tui.Deps) (*DashboardModel, *tuitest.Harness) {
	t.Helper()
	m := NewDashboardModel(deps, 100, 40)
	h := tuitest.New(t, func(msg tea.Msg) tea.Cmd {
		var cmd tea.Cmd
		m, cmd = m.Update(msg)
		return cmd
	})
	h.Run(m.Init())
	h.Until(func() bool { return !m.loading })
	return &m, h
}

func filenames(records []docs.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Filename
	}
	return out
}

func TestDashboard_LoadsDocumentsInServerOrder(t *testing.T) {
	deps, backend := newDeps(t, true)
	backend.AddUser("a@b.co", "pw")
	backend.AddFile("b.pdf", "2024-01-02")
	backend.AddFile("a.pdf", "2024-01-01")

	m, _ := mountDashboard(t, deps)

	got := filenames(m.Visible())
	if strings.Join(got, ",") != "b.pdf,a.pdf" {
		t.Errorf("documents = %v", got)
	}
	if m.email != "a@b.co" {
		t.Errorf("email = %q", m.email)
	}
	if u := deps.Store.User(); u == nil || u.Email != "a@b.co" {
		t.Errorf("store profile = %+v", u)
	}
	if n := backend.Count("GET", "/chat/files"); n != 1 {
		t.Errorf("list calls = %d, want 1", n)
	}
}

func TestDashboard_SearchIsCaseInsensitive(t *testing.T) {
	deps, backend := newDeps(t, true)
	backend.AddFile("annual_report.pdf", "2024-01-01")
	backend.AddFile("notes.pdf", "2024-01-01")

	m, h := mountDashboard(t, deps)

	h.Type("/")
	h.Type("Report")

	got := filenames(m.Visible())
	if len(got) != 1 || got[0] != "annual_report.pdf" {
		t.Errorf("visible = %v", got)
	}

	h.Press(tea.KeyEsc)
	if n := len(m.Visible()); n != 2 {
		t.Errorf("after clearing search visible = %d, want 2", n)
	}
}

func TestDashboard_WrongExtensionMakesNoCall(t *testing.T) {
	deps, backend := newDeps(t, true)
	dir := testutil.TempFiles(t, map[string]string{"notes.txt": "hello"})

	m, h := mountDashboard(t, deps)
	before := len(backend.Calls())

	h.Type("u")
	h.Type(filepath.Join(dir, "notes.txt"))
	h.Press(tea.KeyEnter)

	if m.Alert() != "Please select a PDF file" {
		t.Errorf("alert = %q", m.Alert())
	}
	if n := len(backend.Calls()); n != before {
		t.Errorf("backend calls went from %d to %d", before, n)
	}
}

func TestDashboard_UploadRefetchesList(t *testing.T) {
	deps, backend := newDeps(t, true)
	dir := testutil.TempFiles(t, map[string]string{"report.pdf": string(testutil.MinimalPDF(1))})

	m, h := mountDashboard(t, deps)

	h.Type("u")
	// Terminals paste dropped files as quoted paths.
	h.Type("'" + filepath.Join(dir, "report.pdf") + "'")
	h.Press(tea.KeyEnter)
	h.Until(func() bool { return len(m.Visible()) == 1 })

	if got := m.Visible()[0].Filename; got != "report.pdf" {
		t.Errorf("uploaded = %q", got)
	}
	if n := backend.Count("GET", "/chat/files"); n != 2 {
		t.Errorf("list calls = %d, want 2", n)
	}
	if m.Alert() != "" {
		t.Errorf("unexpected alert %q", m.Alert())
	}
}

func TestDashboard_UploadFailureKeepsList(t *testing.T) {
	deps, backend := newDeps(t, true)
	backend.AddFile("a.pdf", "2024-01-01")
	backend.FailUploads("Error processing PDF")
	dir := testutil.TempFiles(t, map[string]string{"bad.pdf": "not really"})

	m, h := mountDashboard(t, deps)

	h.Type("u")
	h.Type(filepath.Join(dir, "bad.pdf"))
	h.Press(tea.KeyEnter)
	h.Until(func() bool { return m.Alert() != "" })

	if m.Alert() != "Upload failed: Error processing PDF" {
		t.Errorf("alert = %q", m.Alert())
	}
	if got := filenames(m.Visible()); len(got) != 1 || got[0] != "a.pdf" {
		t.Errorf("visible = %v", got)
	}
}

func TestDashboard_EnterOpensChat(t *testing.T) {
	deps, backend := newDeps(t, true)
	backend.AddFile("a.pdf", "2024-01-01")

	_, h := mountDashboard(t, deps)
	h.Press(tea.KeyEnter)
	h.Until(func() bool { return sawNavigate(h, tui.RouteChat) })

	for _, msg := range h.Seen() {
		if nav, ok := msg.(tui.NavigateMsg); ok && nav.Filename != "a.pdf" {
			t.Errorf("navigated with filename %q", nav.Filename)
		}
	}
}

func TestDashboard_SessionExpired(t *testing.T) {
	deps, _ := newDeps(t, false)
	if err := deps.Store.SetToken("stale"); err != nil {
		t.Fatal(err)
	}

	m := NewDashboardModel(deps, 100, 40)
	h := tuitest.New(t, func(msg tea.Msg) tea.Cmd {
		var cmd tea.Cmd
		m, cmd = m.Update(msg)
		return cmd
	})
	h.Run(m.Init())
	h.Until(func() bool {
		for _, msg := range h.Seen() {
			if _, ok := msg.(tui.SessionExpiredMsg); ok {
				return true
			}
		}
		return false
	})
}

func TestDashboard_StaleLoadDropped(t *testing.T) {
	deps, _ := newDeps(t, true)
	m := NewDashboardModel(deps, 100, 40)

	m, _ = m.Update(tui.DocumentsLoadedMsg{
		MountID: "previous-mount",
		Docs:    []docs.Record{{Filename: "ghost.pdf"}},
	})
	if n := len(m.Visible()); n != 0 {
		t.Errorf("visible = %d, want 0", n)
	}
	if !m.loading {
		t.Error("stale response should not end loading")
	}
}

func TestDashboard_LogoutKey(t *testing.T) {
	deps, _ := newDeps(t, true)
	m := NewDashboardModel(deps, 100, 40)

	_, cmd := m.Update(keyRunes("L"))
	if cmd == nil {
		t.Fatal("expected logout command")
	}
	if _, ok := cmd().(tui.LogoutMsg); !ok {
		t.Error("L should request logout")
	}
}

func TestDashboard_FailedRefetchKeepsList(t *testing.T) {
	deps, backend := newDeps(t, true)
	backend.AddFile("a.pdf", "2024-01-01")

	m, h := mountDashboard(t, deps)
	if got := filenames(m.Visible()); len(got) != 1 || got[0] != "a.pdf" {
		t.Fatalf("before refetch visible = %v", got)
	}

	h.Send(tui.DocumentsLoadedMsg{
		MountID: m.mountID,
		Err:     &api.Error{Kind: api.KindNetwork, Op: "list", Err: errors.New("connection refused")},
	})

	if got := filenames(m.Visible()); len(got) != 1 || got[0] != "a.pdf" {
		t.Errorf("after failed refetch visible = %v, want [a.pdf]", got)
	}
	if m.loading {
		t.Error("still loading after failed refetch")
	}
}
