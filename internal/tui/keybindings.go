package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the TUI.
type KeyMap struct {
	// Navigation
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Escape key.Binding
	Tab    key.Binding

	// Control
	CtrlC key.Binding

	// Auth
	ToggleAuth key.Binding

	// Dashboard
	Upload  key.Binding
	Search  key.Binding
	Refresh key.Binding
	Logout  key.Binding

	// Chat
	PrevCitation key.Binding
	NextCitation key.Binding
	PrevPage     key.Binding
	NextPage     key.Binding
	OpenViewer   key.Binding
	Suggestion1  key.Binding
	Suggestion2  key.Binding
	Focus        key.Binding
}

// DefaultKeyMap provides the default key bindings for the TUI.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab", "shift+tab"),
		key.WithHelp("tab", "next field"),
	),
	CtrlC: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "exit"),
	),
	ToggleAuth: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "login/register"),
	),
	Upload: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "upload"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Logout: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "log out"),
	),
	PrevCitation: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "prev citation"),
	),
	NextCitation: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "next citation"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("<", ","),
		key.WithHelp("<", "prev page"),
	),
	NextPage: key.NewBinding(
		key.WithKeys(">", "."),
		key.WithHelp(">", "next page"),
	),
	OpenViewer: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open document"),
	),
	Suggestion1: key.NewBinding(
		key.WithKeys("alt+1"),
		key.WithHelp("alt+1", "suggestion"),
	),
	Suggestion2: key.NewBinding(
		key.WithKeys("alt+2"),
		key.WithHelp("alt+2", "suggestion"),
	),
	Focus: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "input/citations"),
	),
}
