package commands

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/askmydocs/askdocs/internal/tui"
	"github.com/askmydocs/askdocs/internal/viewer"
)

// LoadHistoryCmd fetches the conversation for filename.
func LoadHistoryCmd(gw tui.Gateway, mountID, filename string) tea.Cmd {
	return func() tea.Msg {
		msgs, err := gw.FetchHistory(context.Background(), filename)
		return tui.HistoryLoadedMsg{MountID: mountID, Filename: filename, Messages: msgs, Err: err}
	}
}

// SubmitQueryCmd asks question about filename on behalf of the pending
// message messageID.
func SubmitQueryCmd(gw tui.Gateway, mountID, messageID, filename, question string) tea.Cmd {
	return func() tea.Msg {
		ans, err := gw.SubmitQuery(context.Background(), filename, question)
		return tui.QueryResultMsg{MountID: mountID, MessageID: messageID, Answer: ans, Err: err}
	}
}

// CitationJumpCmd moves the viewer to page after delay.
func CitationJumpCmd(delay time.Duration, mountID, messageID string, page int) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return tui.CitationJumpMsg{MountID: mountID, MessageID: messageID, Page: page}
	})
}

// LoadPageCountCmd downloads filename and counts its pages.
func LoadPageCountCmd(gw tui.Gateway, mountID, filename string) tea.Cmd {
	return func() tea.Msg {
		data, err := gw.DownloadDocument(context.Background(), filename)
		if err != nil {
			return tui.PageCountMsg{MountID: mountID, Err: err}
		}
		n, err := viewer.PageCount(data)
		return tui.PageCountMsg{MountID: mountID, Count: n, Err: err}
	}
}

// OpenViewerCmd opens url with open.
func OpenViewerCmd(open func(string) error, url string) tea.Cmd {
	return func() tea.Msg {
		if open == nil {
			open = viewer.Open
		}
		return tui.ViewerOpenedMsg{Err: open(url)}
	}
}
