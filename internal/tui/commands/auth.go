// Package commands provides Bubble Tea commands for TUI operations.
package commands

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/askmydocs/askdocs/internal/tui"
)

// LoginCmd exchanges credentials for a token. The result is tagged with
// the mount id of the form that sent it.
func LoginCmd(gw tui.Gateway, mountID, email, password string) tea.Cmd {
	return func() tea.Msg {
		token, err := gw.Login(context.Background(), email, password)
		return tui.LoginResultMsg{MountID: mountID, Email: email, Token: token, Err: err}
	}
}

// RegisterCmd creates an account.
func RegisterCmd(gw tui.Gateway, mountID, email, password string) tea.Cmd {
	return func() tea.Msg {
		err := gw.Register(context.Background(), email, password)
		return tui.RegisterResultMsg{MountID: mountID, Email: email, Err: err}
	}
}

// RedirectCmd delivers a RedirectMsg for mountID once delay has passed.
func RedirectCmd(delay time.Duration, mountID string) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return tui.RedirectMsg{MountID: mountID}
	})
}

// NavigateCmd navigates immediately.
func NavigateCmd(msg tui.NavigateMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}
