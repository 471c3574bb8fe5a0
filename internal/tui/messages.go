package tui

import (
	"github.com/askmydocs/askdocs/internal/chat"
	"github.com/askmydocs/askdocs/internal/docs"
)

// Route names a screen.
type Route int

const (
	RouteLogin Route = iota
	RouteRegister
	RouteDashboard
	RouteChat
)

func (r Route) String() string {
	switch r {
	case RouteLogin:
		return "login"
	case RouteRegister:
		return "register"
	case RouteDashboard:
		return "dashboard"
	case RouteChat:
		return "chat"
	default:
		return "unknown"
	}
}

// Protected reports whether the route requires a session.
func (r Route) Protected() bool {
	return r == RouteDashboard || r == RouteChat
}

// ============================================================================
// Navigation Messages
// ============================================================================

// NavigateMsg requests a screen change. Filename keys the chat route.
type NavigateMsg struct {
	Route    Route
	Filename string
	Notice   string // shown once on the destination screen
}

// SessionExpiredMsg signals that the server rejected the stored token.
type SessionExpiredMsg struct{}

// LogoutMsg requests that the session be cleared.
type LogoutMsg struct{}

// CtrlCResetMsg clears the pending double Ctrl+C exit.
type CtrlCResetMsg struct{}

// ============================================================================
// Auth Messages
// ============================================================================

// LoginResultMsg carries the outcome of a login attempt.
type LoginResultMsg struct {
	MountID string
	Email   string
	Token   string
	Err     error
}

// RedirectMsg fires when a timed redirect elapses. Views drop it unless
// MountID matches their own.
type RedirectMsg struct {
	MountID string
}

// RegisterResultMsg carries the outcome of a registration attempt.
type RegisterResultMsg struct {
	MountID string
	Email   string
	Err     error
}

// ============================================================================
// Dashboard Messages
// ============================================================================

// DocumentsLoadedMsg carries the document list and the profile fetched on
// dashboard mount. ProfileErr never affects the list.
type DocumentsLoadedMsg struct {
	MountID    string
	Docs       []docs.Record
	Email      string
	Err        error
	ProfileErr error
}

// UploadDoneMsg carries the outcome of an upload.
type UploadDoneMsg struct {
	MountID  string
	Filename string
	Err      error
}

// ============================================================================
// Chat Messages
// ============================================================================

// HistoryLoadedMsg carries the stored conversation for a document.
type HistoryLoadedMsg struct {
	MountID  string
	Filename string
	Messages []chat.Message
	Err      error
}

// QueryResultMsg carries the answer for the pending message MessageID.
type QueryResultMsg struct {
	MountID   string
	MessageID string
	Answer    chat.Answer
	Err       error
}

// CitationJumpMsg moves the viewer to Page after an answer arrives.
type CitationJumpMsg struct {
	MountID   string
	MessageID string
	Page      int
}

// PageCountMsg carries the document length for the viewer.
type PageCountMsg struct {
	MountID string
	Count   int
	Err     error
}

// ViewerOpenedMsg reports whether the system viewer could be launched.
type ViewerOpenedMsg struct {
	Err error
}
