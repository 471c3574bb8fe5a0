// Package views provides TUI view components for the AskMyDocs client.
package views

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/askmydocs/askdocs/internal/api"
	"github.com/askmydocs/askdocs/internal/tui"
)

// maxFormWidth bounds the auth forms.
const maxFormWidth = 60

// sessionExpired reports whether err means the stored token was rejected,
// and returns the command that tells the app.
func sessionExpired(err error) (tea.Cmd, bool) {
	if !errors.Is(err, api.ErrSessionExpired) {
		return nil, false
	}
	return func() tea.Msg { return tui.SessionExpiredMsg{} }, true
}

// renderFooter joins key hints and appends the exit hint.
func renderFooter(hints []string, ctrlCPending bool) string {
	hintsStr := tui.DimStyle.Render(strings.Join(hints, " · "))

	ctrlCHint := tui.DimStyle.Render("Ctrl+C: Exit")
	if ctrlCPending {
		ctrlCHint = tui.WarningStyle.Render("Press Ctrl+C again to exit")
	}
	return hintsStr + " · " + ctrlCHint
}

// boxWidth returns the width of a framed view on a screen of width w.
func boxWidth(w, max int) int {
	bw := max
	if w-4 < bw {
		bw = w - 4
	}
	if bw < 20 {
		bw = 20
	}
	return bw
}
