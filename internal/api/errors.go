package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failed gateway call.
type Kind int

const (
	// KindValidation is input rejected before any request is made.
	KindValidation Kind = iota + 1
	// KindAuth is a login or registration rejected by the server.
	KindAuth
	// KindUpload is a rejected upload.
	KindUpload
	// KindQuery is a rejected question.
	KindQuery
	// KindFetch is a failed background read (document list, history, profile).
	KindFetch
	// KindNetwork is a request that could not complete.
	KindNetwork
	// KindSessionExpired is a 401 on an authenticated call.
	KindSessionExpired
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindUpload:
		return "upload"
	case KindQuery:
		return "query"
	case KindFetch:
		return "fetch"
	case KindNetwork:
		return "network"
	case KindSessionExpired:
		return "session expired"
	default:
		return "unknown"
	}
}

// unknownDetail is shown when the server gave no reason.
const unknownDetail = "Unknown error"

// ErrSessionExpired matches any error of KindSessionExpired via errors.Is.
var ErrSessionExpired = errors.New("session expired")

// Error is returned by every Client operation.
type Error struct {
	Kind   Kind
	Op     string // e.g. "upload"
	Status int    // HTTP status, 0 when no response was received
	Detail string // server-provided reason, verbatim
	Err    error
}

func (e *Error) Error() string {
	msg := e.Detail
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = unknownDetail
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, msg, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrSessionExpired) match by kind.
func (e *Error) Is(target error) bool {
	return target == ErrSessionExpired && e.Kind == KindSessionExpired
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// UserMessage returns the text to show a user for err: the server's detail
// verbatim when there is one.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	switch {
	case apiErr.Kind == KindSessionExpired:
		return "Session expired. Please log in again."
	case apiErr.Detail != "":
		return apiErr.Detail
	case apiErr.Kind == KindNetwork && apiErr.Err != nil:
		return "Network error: " + apiErr.Err.Error()
	default:
		return unknownDetail
	}
}

// parseDetail extracts the "detail" field of an error body. It handles the
// plain string form and the list-of-objects form used for validation errors.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
		Loc []any  `json:"loc"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 {
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg == "" {
				continue
			}
			if n := len(it.Loc); n > 0 {
				parts = append(parts, fmt.Sprintf("%v: %s", it.Loc[n-1], it.Msg))
			} else {
				parts = append(parts, it.Msg)
			}
		}
		return strings.Join(parts, "; ")
	}

	return string(envelope.Detail)
}
