package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrEmptyQuestion is returned when the question is blank.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrPending is returned when a question is submitted while another is
	// still awaiting its answer.
	ErrPending = errors.New("a question is already awaiting an answer")
)

// Thread is the ordered conversation for one document. Insertion order is
// conversation order. At most one message is pending and it is always last.
type Thread struct {
	messages []Message
	now      func() time.Time
}

// NewThread creates an empty thread.
func NewThread() *Thread {
	return &Thread{now: time.Now}
}

// Replace discards the settled messages and loads history in their place.
// A pending message is kept, still last, so an answer that arrives after
// the history resolves it normally. History messages without an ID are
// given one.
func (t *Thread) Replace(history []Message) {
	msgs := make([]Message, 0, len(history)+1)
	for _, m := range history {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		m.IsPending = false
		msgs = append(msgs, m.clone())
	}
	if t.Pending() {
		msgs = append(msgs, t.messages[len(t.messages)-1])
	}
	t.messages = msgs
}

// Append adds a pending message for question and returns it.
func (t *Thread) Append(question string) (Message, error) {
	if strings.TrimSpace(question) == "" {
		return Message{}, ErrEmptyQuestion
	}
	if t.Pending() {
		return Message{}, ErrPending
	}
	msg := Message{
		ID:        uuid.NewString(),
		Question:  question,
		Timestamp: t.now().UTC().Format(time.RFC3339Nano),
		IsPending: true,
	}
	t.messages = append(t.messages, msg)
	return msg, nil
}

// Resolve fills in the answer for the pending message with the given id.
// It reports false when no pending message has that id.
func (t *Thread) Resolve(id string, ans Answer) bool {
	i := t.index(id)
	if i < 0 || !t.messages[i].IsPending {
		return false
	}
	m := &t.messages[i]
	m.Answer = ans.Answer
	m.Sources = append([]Citation(nil), ans.Sources...)
	m.Timestamp = t.now().UTC().Format(time.RFC3339Nano)
	m.IsPending = false
	return true
}

// Remove deletes the message with the given id.
func (t *Thread) Remove(id string) bool {
	i := t.index(id)
	if i < 0 {
		return false
	}
	t.messages = append(t.messages[:i], t.messages[i+1:]...)
	return true
}

// Pending reports whether the last message is awaiting its answer.
func (t *Thread) Pending() bool {
	n := len(t.messages)
	return n > 0 && t.messages[n-1].IsPending
}

// Len returns the number of messages.
func (t *Thread) Len() int {
	return len(t.messages)
}

// Messages returns a copy of the messages in conversation order. Sources
// are copied too, so callers cannot reach the thread's citations.
func (t *Thread) Messages() []Message {
	out := make([]Message, len(t.messages))
	for i, m := range t.messages {
		out[i] = m.clone()
	}
	return out
}

// Get returns a copy of the message with the given id.
func (t *Thread) Get(id string) (Message, bool) {
	i := t.index(id)
	if i < 0 {
		return Message{}, false
	}
	return t.messages[i].clone(), true
}

func (m Message) clone() Message {
	if m.Sources != nil {
		m.Sources = append([]Citation(nil), m.Sources...)
	}
	return m
}

func (t *Thread) index(id string) int {
	for i := range t.messages {
		if t.messages[i].ID == id {
			return i
		}
	}
	return -1
}
