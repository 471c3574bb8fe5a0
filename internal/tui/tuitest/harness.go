// Package tuitest drives Bubble Tea models in tests without a terminal.
package tuitest

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/askmydocs/askdocs/internal/tui"
)

// Timeout bounds every Until call.
const Timeout = 5 * time.Second

// Harness is a minimal event loop. Commands run on goroutines; only the
// application's own messages are fed back, so cursor blinks and spinner
// ticks never loop.
type Harness struct {
	t      *testing.T
	update func(tea.Msg) tea.Cmd
	msgs   chan tea.Msg

	mu   sync.Mutex
	seen []tea.Msg
}

// New creates a Harness that delivers messages to update.
func New(t *testing.T, update func(tea.Msg) tea.Cmd) *Harness {
	t.Helper()
	return &Harness{
		t:      t,
		update: update,
		msgs:   make(chan tea.Msg, 1024),
	}
}

// Run executes cmd in the background.
func (h *Harness) Run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	go func() { h.msgs <- cmd() }()
}

// Send delivers msg synchronously and runs the command it returns.
func (h *Harness) Send(msg tea.Msg) {
	h.Run(h.update(msg))
}

// Type sends s as typed runes.
func (h *Harness) Type(s string) {
	h.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// Press sends a special key such as tea.KeyEnter.
func (h *Harness) Press(k tea.KeyType) {
	h.Send(tea.KeyMsg{Type: k})
}

// Until processes messages until done reports true.
func (h *Harness) Until(done func() bool) {
	h.t.Helper()
	deadline := time.After(Timeout)
	for !done() {
		select {
		case msg := <-h.msgs:
			h.dispatch(msg)
		case <-deadline:
			h.t.Fatalf("timed out after %s; messages seen: %d", Timeout, len(h.Seen()))
		}
	}
}

// Seen returns every application message delivered so far.
func (h *Harness) Seen() []tea.Msg {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]tea.Msg, len(h.seen))
	copy(out, h.seen)
	return out
}

func (h *Harness) dispatch(msg tea.Msg) {
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			h.Run(c)
		}
		return
	}
	if !isAppMsg(msg) {
		return
	}
	h.mu.Lock()
	h.seen = append(h.seen, msg)
	h.mu.Unlock()
	h.Send(msg)
}

func isAppMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case tui.NavigateMsg, tui.SessionExpiredMsg, tui.LogoutMsg, tui.RedirectMsg,
		tui.LoginResultMsg, tui.RegisterResultMsg,
		tui.DocumentsLoadedMsg, tui.UploadDoneMsg,
		tui.HistoryLoadedMsg, tui.QueryResultMsg, tui.CitationJumpMsg,
		tui.PageCountMsg, tui.ViewerOpenedMsg:
		return true
	}
	return false
}
