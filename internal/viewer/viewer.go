// Package viewer holds the document pane state shown beside a chat: which
// document is open and which page is active.
package viewer

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// State is the viewer's active page. The zero page count means the length
// of the document is not known yet and pages are only clamped below.
type State struct {
	filename  string
	page      int
	pageCount int
}

// New opens filename at page 1.
func New(filename string) State {
	return State{filename: filename, page: 1}
}

// Filename returns the open document.
func (s State) Filename() string { return s.filename }

// Page returns the active page, 1-based.
func (s State) Page() int { return s.page }

// PageCount returns the document length, or 0 if unknown.
func (s State) PageCount() int { return s.pageCount }

// GoTo moves to page, clamped to the document.
func (s State) GoTo(page int) State {
	s.page = s.clamp(page)
	return s
}

// Next moves one page forward.
func (s State) Next() State { return s.GoTo(s.page + 1) }

// Prev moves one page back.
func (s State) Prev() State { return s.GoTo(s.page - 1) }

// WithPageCount records the document length and re-clamps the active page.
func (s State) WithPageCount(n int) State {
	if n < 0 {
		n = 0
	}
	s.pageCount = n
	s.page = s.clamp(s.page)
	return s
}

// Label renders the position, e.g. "Page 3 of 12".
func (s State) Label() string {
	if s.pageCount > 0 {
		return fmt.Sprintf("Page %d of %d", s.page, s.pageCount)
	}
	return fmt.Sprintf("Page %d", s.page)
}

func (s State) clamp(page int) int {
	if s.pageCount > 0 && page > s.pageCount {
		page = s.pageCount
	}
	if page < 1 {
		page = 1
	}
	return page
}

var disableConfigDir sync.Once

// PageCount returns the number of pages in a PDF.
func PageCount(data []byte) (int, error) {
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("counting pages: %w", err)
	}
	return n, nil
}
