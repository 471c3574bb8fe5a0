// Package chat models the per-document conversation thread: questions,
// grounded answers, and the page citations that support them.
package chat

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// UnknownPage is the page value the backend uses when a chunk carries no
// page metadata.
const UnknownPage = "Unknown"

// Citation points at the page of the document an answer was drawn from.
type Citation struct {
	Page    string `json:"page"`
	Content string `json:"content"`
}

// UnmarshalJSON accepts page as either a JSON number or a string.
func (c *Citation) UnmarshalJSON(data []byte) error {
	var raw struct {
		Page    json.RawMessage `json:"page"`
		Content string          `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Content = raw.Content
	c.Page = UnknownPage

	if len(raw.Page) == 0 || string(raw.Page) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.Page, &s); err == nil {
		c.Page = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw.Page, &n); err != nil {
		return fmt.Errorf("citation page: %w", err)
	}
	c.Page = n.String()
	return nil
}

// PageNumber returns the cited page as an integer. It reports false for the
// Unknown sentinel and for anything that is not a positive number.
func (c Citation) PageNumber() (int, bool) {
	p := strings.TrimSpace(c.Page)
	if p == "" || p == UnknownPage {
		return 0, false
	}
	n, err := strconv.Atoi(p)
	if err != nil {
		// Some loaders report pages as floats ("3.0").
		f, ferr := strconv.ParseFloat(p, 64)
		if ferr != nil {
			return 0, false
		}
		n = int(f)
	}
	if n < 1 {
		return 0, false
	}
	return n, true
}

// Message is one question/answer exchange. ID is assigned by the client and
// never sent to the server.
type Message struct {
	ID        string     `json:"-"`
	Question  string     `json:"question"`
	Answer    string     `json:"answer"`
	Timestamp string     `json:"timestamp"`
	Sources   []Citation `json:"sources,omitempty"`
	IsPending bool       `json:"-"`
}

// Answer is the server's reply to a submitted question.
type Answer struct {
	Answer  string     `json:"response"`
	Sources []Citation `json:"sources,omitempty"`
}

// FirstCitedPage returns the page of the first citation when it is a real
// page number. Only the first citation is considered.
func FirstCitedPage(sources []Citation) (int, bool) {
	if len(sources) == 0 {
		return 0, false
	}
	return sources[0].PageNumber()
}
