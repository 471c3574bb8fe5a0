package views

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/askmydocs/askdocs/internal/api"
	"github.com/askmydocs/askdocs/internal/chat"
	"github.com/askmydocs/askdocs/internal/log"
	"github.com/askmydocs/askdocs/internal/tui"
	"github.com/askmydocs/askdocs/internal/tui/commands"
	"github.com/askmydocs/askdocs/internal/viewer"
)

// Suggested first questions for an empty thread.
var suggestions = []string{
	"What is this document about?",
	"Summarize the key points",
}

const msgEmptyQuestion = "Please enter a question"

// chatFocus is where key presses go.
type chatFocus int

const (
	focusInput chatFocus = iota
	focusCitations
)

// citationRef locates one citation in the thread.
type citationRef struct {
	messageID string
	index     int
	citation  chat.Citation
}

// ChatModel is the per-document question and answer screen with the
// document viewer beside it.
type ChatModel struct {
	deps     tui.Deps
	filename string
	mountID  string

	thread         *chat.Thread
	viewer         viewer.State
	historyLoading bool
	selected       int // index into citations(), -1 for none
	focus          chatFocus
	alert          string

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	width    int
	height   int

	ctrlCPending bool
}

// NewChatModel creates the chat screen for filename. Every call is a new
// mount with its own thread.
func NewChatModel(deps tui.Deps, filename string, width, height int) ChatModel {
	in := textinput.New()
	in.Placeholder = "Ask a question about this document..."
	in.Prompt = "> "
	in.CharLimit = 2000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))

	m := ChatModel{
		deps:           deps,
		filename:       filename,
		mountID:        uuid.NewString(),
		thread:         chat.NewThread(),
		viewer:         viewer.New(filename),
		historyLoading: true,
		selected:       -1,
		input:          in,
		viewport:       viewport.New(80, 10),
		spinner:        sp,
	}
	m.resize(width, height)
	m.refresh()
	return m
}

// Init loads the history and the page count for the document.
func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(
		commands.LoadHistoryCmd(m.deps.Gateway, m.mountID, m.filename),
		commands.LoadPageCountCmd(m.deps.Gateway, m.mountID, m.filename),
		textinput.Blink,
		m.spinner.Tick,
	)
}

// Update handles messages for the chat view.
func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tui.HistoryLoadedMsg:
		if msg.MountID != m.mountID || msg.Filename != m.filename {
			return m, nil
		}
		m.historyLoading = false
		if msg.Err != nil {
			if cmd, ok := sessionExpired(msg.Err); ok {
				return m, cmd
			}
			m.deps.Logger.Failure(log.EventHistoryLoadFailed, msg.Err, zap.String("filename", m.filename))
			m.refresh()
			return m, nil
		}
		m.deps.Logger.Event(log.EventHistoryLoaded, zap.String("filename", m.filename), zap.Int("count", len(msg.Messages)))
		m.thread.Replace(msg.Messages)
		m.refresh()
		return m, nil

	case tui.QueryResultMsg:
		if msg.MountID != m.mountID {
			return m, nil
		}
		return m.handleQueryResult(msg)

	case tui.CitationJumpMsg:
		if msg.MountID != m.mountID {
			return m, nil
		}
		m.viewer = m.viewer.GoTo(msg.Page)
		return m, nil

	case tui.PageCountMsg:
		if msg.MountID != m.mountID {
			return m, nil
		}
		if msg.Err != nil {
			if cmd, ok := sessionExpired(msg.Err); ok {
				return m, cmd
			}
			m.deps.Logger.Failure(log.EventViewerFailed, msg.Err, zap.String("filename", m.filename))
			return m, nil
		}
		m.viewer = m.viewer.WithPageCount(msg.Count)
		return m, nil

	case tui.ViewerOpenedMsg:
		if msg.Err != nil {
			m.deps.Logger.Failure(log.EventViewerFailed, msg.Err, zap.String("filename", m.filename))
			m.alert = "Could not open viewer: " + msg.Err.Error()
		}
		return m, nil

	case spinner.TickMsg:
		if m.thread.Pending() || m.historyLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			if m.thread.Pending() {
				m.refresh()
			}
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m ChatModel) handleKey(msg tea.KeyMsg) (ChatModel, tea.Cmd) {
	km := tui.DefaultKeyMap

	if key.Matches(msg, km.Escape) {
		return m, commands.NavigateCmd(tui.NavigateMsg{Route: tui.RouteDashboard})
	}
	if key.Matches(msg, km.Focus) {
		m.toggleFocus()
		return m, nil
	}
	if m.thread.Len() == 0 && m.input.Value() == "" {
		for i, b := range []key.Binding{km.Suggestion1, km.Suggestion2} {
			if key.Matches(msg, b) {
				m.input.SetValue(suggestions[i])
				m.input.CursorEnd()
				m.focus = focusInput
				return m, m.input.Focus()
			}
		}
	}

	if m.focus == focusCitations {
		return m.handleNavKey(msg)
	}

	switch msg.String() {
	case tui.KeyEnter:
		return m.submit()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.thread.Pending() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ChatModel) handleNavKey(msg tea.KeyMsg) (ChatModel, tea.Cmd) {
	km := tui.DefaultKeyMap
	refs := m.citations()

	switch {
	case key.Matches(msg, km.NextCitation):
		if len(refs) > 0 {
			m.selected = (m.selected + 1) % len(refs)
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, km.PrevCitation):
		if len(refs) > 0 {
			if m.selected <= 0 {
				m.selected = len(refs) - 1
			} else {
				m.selected--
			}
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, km.Enter):
		if m.selected >= 0 && m.selected < len(refs) {
			if page, ok := refs[m.selected].citation.PageNumber(); ok {
				m.viewer = m.viewer.GoTo(page)
			}
		}
		return m, nil

	case key.Matches(msg, km.NextPage):
		m.viewer = m.viewer.Next()
		return m, nil

	case key.Matches(msg, km.PrevPage):
		m.viewer = m.viewer.Prev()
		return m, nil

	case key.Matches(msg, km.OpenViewer):
		url := m.deps.Gateway.DocumentURL(m.filename, m.viewer.Page())
		return m, commands.OpenViewerCmd(m.deps.OpenURL, url)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *ChatModel) toggleFocus() {
	if m.focus == focusInput {
		m.focus = focusCitations
		m.input.Blur()
		if m.selected < 0 && len(m.citations()) > 0 {
			m.selected = len(m.citations()) - 1
		}
	} else {
		m.focus = focusInput
		m.input.Focus()
	}
	m.refresh()
}

// submit appends the pending message before the request is made, so the
// question is on screen whatever the network does.
func (m ChatModel) submit() (ChatModel, tea.Cmd) {
	question := strings.TrimSpace(m.input.Value())
	pending, err := m.thread.Append(question)
	switch {
	case errors.Is(err, chat.ErrEmptyQuestion):
		m.alert = msgEmptyQuestion
		return m, nil
	case errors.Is(err, chat.ErrPending):
		return m, nil
	case err != nil:
		m.alert = err.Error()
		return m, nil
	}

	m.alert = ""
	m.input.Reset()
	m.refresh()
	return m, tea.Batch(
		commands.SubmitQueryCmd(m.deps.Gateway, m.mountID, pending.ID, m.filename, question),
		m.spinner.Tick,
	)
}

func (m ChatModel) handleQueryResult(msg tui.QueryResultMsg) (ChatModel, tea.Cmd) {
	if msg.Err != nil {
		m.thread.Remove(msg.MessageID)
		m.clampSelection()
		m.refresh()
		if cmd, ok := sessionExpired(msg.Err); ok {
			return m, cmd
		}
		m.deps.Logger.Failure(log.EventQueryFailed, msg.Err, zap.String("filename", m.filename))
		m.alert = "Query failed: " + api.UserMessage(msg.Err)
		return m, nil
	}

	if !m.thread.Resolve(msg.MessageID, msg.Answer) {
		return m, nil
	}
	m.deps.Logger.Event(log.EventQuerySucceeded,
		zap.String("filename", m.filename),
		zap.Int("sources", len(msg.Answer.Sources)),
	)
	m.refresh()

	if page, ok := chat.FirstCitedPage(msg.Answer.Sources); ok {
		return m, commands.CitationJumpCmd(m.deps.CitationJumpDelay, m.mountID, msg.MessageID, page)
	}
	return m, nil
}

// citations flattens every citation in the thread in display order.
func (m ChatModel) citations() []citationRef {
	var refs []citationRef
	for _, msg := range m.thread.Messages() {
		for i, c := range msg.Sources {
			refs = append(refs, citationRef{messageID: msg.ID, index: i, citation: c})
		}
	}
	return refs
}

func (m *ChatModel) clampSelection() {
	if n := len(m.citations()); m.selected >= n {
		m.selected = n - 1
	}
}

func (m *ChatModel) resize(width, height int) {
	m.width = width
	m.height = height

	chatWidth := m.chatWidth()
	vpHeight := height - 12
	if vpHeight < 5 {
		vpHeight = 5
	}
	m.viewport.Width = chatWidth - 4
	m.viewport.Height = vpHeight
	m.input.Width = chatWidth - 8
}

// sideBySide reports whether the viewer pane fits beside the chat.
func (m ChatModel) sideBySide() bool {
	return m.width >= 100
}

func (m ChatModel) chatWidth() int {
	w := m.width - 4
	if m.sideBySide() {
		w = m.width*2/3 - 2
	}
	if w < 30 {
		w = 30
	}
	return w
}

// refresh re-renders the thread into the viewport and scrolls to the end.
func (m *ChatModel) refresh() {
	m.viewport.SetContent(m.renderThread())
	m.viewport.GotoBottom()
}

func (m ChatModel) renderThread() string {
	msgs := m.thread.Messages()
	if len(msgs) == 0 {
		if m.historyLoading {
			return tui.DimStyle.Render("Loading conversation...")
		}
		var b strings.Builder
		b.WriteString(tui.DimStyle.Render("No questions yet. Try one of these:"))
		for i, s := range suggestions {
			b.WriteString("\n  ")
			b.WriteString(tui.SelectedStyle.Render(fmt.Sprintf("alt+%d", i+1)))
			b.WriteString(" " + s)
		}
		return b.String()
	}

	wrap := lipgloss.NewStyle().Width(m.viewport.Width)
	var selectedRef *citationRef
	if refs := m.citations(); m.selected >= 0 && m.selected < len(refs) {
		selectedRef = &refs[m.selected]
	}

	var b strings.Builder
	for i, msg := range msgs {
		b.WriteString(wrap.Render(tui.QuestionStyle.Render("You: ") + msg.Question))
		b.WriteString("\n")
		if msg.IsPending {
			b.WriteString(tui.AnswerStyle.Render("Assistant: ") + m.spinner.View() + " Thinking...")
		} else {
			b.WriteString(wrap.Render(tui.AnswerStyle.Render("Assistant: ") + msg.Answer))
			if len(msg.Sources) > 0 {
				b.WriteString("\n")
				b.WriteString(renderCitations(msg, selectedRef))
			}
		}
		if i < len(msgs)-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

func renderCitations(msg chat.Message, selected *citationRef) string {
	chips := make([]string, 0, len(msg.Sources)+1)
	chips = append(chips, tui.DimStyle.Render("Sources:"))
	for i, c := range msg.Sources {
		label := "p." + c.Page
		if c.Page == chat.UnknownPage {
			label = "p.?"
		}
		style := tui.CitationStyle
		if selected != nil && selected.messageID == msg.ID && selected.index == i {
			style = tui.ActiveCitationStyle
		}
		chips = append(chips, style.Render(label))
	}
	return strings.Join(chips, " ")
}

func (m ChatModel) renderViewer() string {
	var b strings.Builder
	b.WriteString(tui.TitleStyle.Render(m.filename))
	b.WriteString("\n")
	b.WriteString(m.viewer.Label())
	b.WriteString("\n\n")

	refs := m.citations()
	if m.selected >= 0 && m.selected < len(refs) {
		c := refs[m.selected].citation
		b.WriteString(tui.SelectedStyle.Render("Citation, page " + c.Page))
		b.WriteString("\n")
		b.WriteString(c.Content)
		b.WriteString("\n\n")
	}
	b.WriteString(tui.DimStyle.Render("o: open at this page"))
	return b.String()
}

// View renders the chat view.
func (m ChatModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Chat: " + m.filename))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")

	if m.thread.Pending() {
		b.WriteString(tui.DimStyle.Render(m.input.View()))
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")
	if m.alert != "" {
		b.WriteString(tui.ErrorStyle.Render(m.alert))
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	chatBox := tui.BoxStyle.Width(m.chatWidth()).Render(b.String())
	pane := tui.PaneStyle.Width(m.viewerWidth()).Render(m.renderViewer())

	if m.sideBySide() {
		return lipgloss.JoinHorizontal(lipgloss.Top, chatBox, pane)
	}
	return lipgloss.JoinVertical(lipgloss.Left, pane, chatBox)
}

func (m ChatModel) viewerWidth() int {
	if m.sideBySide() {
		return m.width - m.chatWidth() - 6
	}
	return m.chatWidth()
}

func (m ChatModel) renderFooter() string {
	var hints []string
	if m.focus == focusCitations {
		hints = []string{"[ ]: Citation", "Enter: Go to page", "< >: Page", "o: Open", "Tab: Ask"}
	} else {
		hints = []string{"Enter: Ask", "Tab: Citations", "PgUp/PgDn: Scroll", "Esc: Back"}
	}
	return renderFooter(hints, m.ctrlCPending)
}

// Filename returns the document this chat is about.
func (m ChatModel) Filename() string { return m.filename }

// Messages returns the thread in conversation order.
func (m ChatModel) Messages() []chat.Message { return m.thread.Messages() }

// Loading reports whether the history is still being fetched.
func (m ChatModel) Loading() bool { return m.historyLoading }

// ActivePage returns the page shown in the viewer.
func (m ChatModel) ActivePage() int { return m.viewer.Page() }

// Alert returns the inline alert, if any.
func (m ChatModel) Alert() string { return m.alert }

// SetCtrlCPending sets the Ctrl+C pending state for display.
func (m *ChatModel) SetCtrlCPending(pending bool) {
	m.ctrlCPending = pending
}
