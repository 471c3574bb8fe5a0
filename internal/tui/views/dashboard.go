package views

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/askmydocs/askdocs/internal/api"
	"github.com/askmydocs/askdocs/internal/docs"
	"github.com/askmydocs/askdocs/internal/log"
	"github.com/askmydocs/askdocs/internal/session"
	"github.com/askmydocs/askdocs/internal/tui"
	"github.com/askmydocs/askdocs/internal/tui/commands"
)

// ============================================================================
// DocumentItem
// ============================================================================

// DocumentItem implements list.Item for the document list.
type DocumentItem struct {
	record docs.Record
}

// Title returns the filename for list display.
func (i DocumentItem) Title() string {
	return i.record.Filename
}

// Description returns the upload date for list display.
func (i DocumentItem) Description() string {
	return "Uploaded " + i.record.DisplayDate()
}

// FilterValue returns the value used for filtering in the list.
func (i DocumentItem) FilterValue() string {
	return i.record.Filename
}

// ============================================================================
// DashboardModel
// ============================================================================

// DashboardModel is the document list screen.
type DashboardModel struct {
	deps    tui.Deps
	mountID string

	all     []docs.Record
	loading bool
	email   string

	list       list.Model
	search     textinput.Model
	searching  bool
	upload     textinput.Model
	promptOpen bool
	uploadBusy bool
	alert      string
	status     string
	spinner    spinner.Model
	width      int
	height     int

	ctrlCPending bool
}

// maxDashboardWidth is the maximum width for the dashboard box.
const maxDashboardWidth = 110

// NewDashboardModel creates the dashboard. Every call is a new mount: its
// responses are tagged with a fresh mount id.
func NewDashboardModel(deps tui.Deps, width, height int) DashboardModel {
	contentWidth := boxWidth(width, maxDashboardWidth) - 8

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("#7C3AED")).
		BorderForeground(lipgloss.Color("#7C3AED"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("#9CA3AF"))

	l := list.New(nil, delegate, contentWidth, listHeight(height))
	l.Title = "Your documents"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false) // search goes through docs.Filter
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "filename"
	search.CharLimit = 200

	upload := textinput.New()
	upload.Prompt = "Upload: "
	upload.Placeholder = "path to a file (paste or drop it here)"
	upload.CharLimit = 4096

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	email := ""
	if deps.Store != nil {
		if u := deps.Store.User(); u != nil {
			email = u.Email
		}
	}

	return DashboardModel{
		deps:    deps,
		mountID: uuid.NewString(),
		loading: true,
		email:   email,
		list:    l,
		search:  search,
		upload:  upload,
		spinner: sp,
		width:   width,
		height:  height,
	}
}

func listHeight(height int) int {
	h := height - 14
	if h < 5 {
		h = 5
	}
	return h
}

// Init fetches the document list once per mount.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(
		commands.LoadDocumentsCmd(m.deps.Gateway, m.mountID),
		m.spinner.Tick,
	)
}

// Update handles messages for the dashboard view.
func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case m.promptOpen:
			return m.updateUploadPrompt(msg)
		case m.searching:
			return m.updateSearch(msg)
		}

		switch {
		case key.Matches(msg, tui.DefaultKeyMap.Upload):
			if m.uploadBusy {
				return m, nil
			}
			m.alert = ""
			m.promptOpen = true
			m.upload.Reset()
			return m, m.upload.Focus()

		case key.Matches(msg, tui.DefaultKeyMap.Search):
			m.searching = true
			return m, m.search.Focus()

		case key.Matches(msg, tui.DefaultKeyMap.Refresh):
			m.loading = true
			return m, tea.Batch(commands.LoadDocumentsCmd(m.deps.Gateway, m.mountID), m.spinner.Tick)

		case key.Matches(msg, tui.DefaultKeyMap.Logout):
			return m, func() tea.Msg { return tui.LogoutMsg{} }

		case key.Matches(msg, tui.DefaultKeyMap.Escape):
			if m.search.Value() != "" {
				m.search.Reset()
				m.applyFilter()
			}
			return m, nil

		case key.Matches(msg, tui.DefaultKeyMap.Enter):
			if item, ok := m.list.SelectedItem().(DocumentItem); ok {
				return m, commands.NavigateCmd(tui.NavigateMsg{Route: tui.RouteChat, Filename: item.record.Filename})
			}
			return m, nil
		}

	case tui.DocumentsLoadedMsg:
		if msg.MountID != m.mountID {
			return m, nil
		}
		return m.handleDocuments(msg)

	case tui.UploadDoneMsg:
		if msg.MountID != m.mountID {
			return m, nil
		}
		return m.handleUpload(msg)

	case spinner.TickMsg:
		if m.loading || m.uploadBusy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(boxWidth(msg.Width, maxDashboardWidth)-8, listHeight(msg.Height))
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m DashboardModel) updateUploadPrompt(msg tea.KeyMsg) (DashboardModel, tea.Cmd) {
	switch msg.String() {
	case tui.KeyEsc:
		m.promptOpen = false
		m.upload.Blur()
		return m, nil

	case tui.KeyEnter:
		path := commands.UploadPath(m.upload.Value())
		m.promptOpen = false
		m.upload.Blur()
		if path == "" {
			return m, nil
		}
		name := filepath.Base(path)
		ext := m.deps.Gateway.Extension()
		if !docs.HasExtension(name, ext) {
			m.alert = fmt.Sprintf("Please select a %s file", strings.ToUpper(strings.TrimPrefix(ext, ".")))
			m.deps.Logger.Event(log.EventUploadRejected, zap.String("filename", name))
			return m, nil
		}
		m.alert = ""
		m.uploadBusy = true
		m.status = "Uploading " + name + "..."
		return m, tea.Batch(commands.UploadCmd(m.deps.Gateway, m.mountID, path), m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.upload, cmd = m.upload.Update(msg)
	return m, cmd
}

func (m DashboardModel) updateSearch(msg tea.KeyMsg) (DashboardModel, tea.Cmd) {
	switch msg.String() {
	case tui.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.Reset()
		m.applyFilter()
		return m, nil
	case tui.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m DashboardModel) handleDocuments(msg tui.DocumentsLoadedMsg) (DashboardModel, tea.Cmd) {
	m.loading = false

	if msg.ProfileErr != nil {
		m.deps.Logger.Failure(log.EventProfileLoadFailed, msg.ProfileErr)
	} else if msg.Email != "" {
		m.email = msg.Email
		m.rememberEmail(msg.Email)
	}

	if msg.Err != nil {
		if cmd, ok := sessionExpired(msg.Err); ok {
			return m, cmd
		}
		// The previously loaded list stays on screen.
		m.deps.Logger.Failure(log.EventDocumentsLoadFailed, msg.Err)
		return m, nil
	}

	m.deps.Logger.Event(log.EventDocumentsLoaded, zap.Int("count", len(msg.Docs)))
	m.all = msg.Docs
	m.applyFilter()
	return m, nil
}

func (m DashboardModel) handleUpload(msg tui.UploadDoneMsg) (DashboardModel, tea.Cmd) {
	m.uploadBusy = false
	m.status = ""

	if msg.Err != nil {
		if cmd, ok := sessionExpired(msg.Err); ok {
			return m, cmd
		}
		m.deps.Logger.Failure(log.EventUploadFailed, msg.Err, zap.String("filename", msg.Filename))
		m.alert = "Upload failed: " + api.UserMessage(msg.Err)
		return m, nil
	}

	m.deps.Logger.Event(log.EventUploadSucceeded, zap.String("filename", msg.Filename))
	m.status = "Uploaded " + msg.Filename
	m.loading = true
	return m, tea.Batch(commands.LoadDocumentsCmd(m.deps.Gateway, m.mountID), m.spinner.Tick)
}

// rememberEmail keeps the server's view of the email on the session
// profile without losing the token's expiry.
func (m DashboardModel) rememberEmail(email string) {
	if m.deps.Store == nil {
		return
	}
	p := &session.Profile{Email: email}
	if cur := m.deps.Store.User(); cur != nil {
		p.ExpiresAt = cur.ExpiresAt
	}
	m.deps.Store.SetUser(p)
}

func (m *DashboardModel) applyFilter() {
	filtered := docs.Filter(m.all, m.search.Value())
	items := make([]list.Item, len(filtered))
	for i, r := range filtered {
		items[i] = DocumentItem{record: r}
	}
	m.list.SetItems(items)
}

// Visible returns the documents currently listed after search.
func (m DashboardModel) Visible() []docs.Record {
	items := m.list.Items()
	out := make([]docs.Record, 0, len(items))
	for _, it := range items {
		if d, ok := it.(DocumentItem); ok {
			out = append(out, d.record)
		}
	}
	return out
}

// Alert returns the inline alert, if any.
func (m DashboardModel) Alert() string { return m.alert }

// View renders the dashboard view.
func (m DashboardModel) View() string {
	var b strings.Builder

	header := tui.TitleStyle.Render("AskMyDocs")
	if m.email != "" {
		header += tui.DimStyle.Render("  ·  " + m.email)
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	}
	if m.promptOpen {
		b.WriteString(m.upload.View())
		b.WriteString("\n\n")
	}

	switch {
	case m.loading && len(m.all) == 0:
		b.WriteString(m.spinner.View() + " Loading documents...")
	case len(m.all) == 0:
		b.WriteString(tui.DimStyle.Render("No documents yet. Press u to upload a PDF."))
	case len(m.list.Items()) == 0:
		b.WriteString(tui.DimStyle.Render(fmt.Sprintf("No documents match %q", m.search.Value())))
	default:
		b.WriteString(m.list.View())
	}
	b.WriteString("\n\n")

	if m.uploadBusy {
		b.WriteString(m.spinner.View() + " " + m.status)
		b.WriteString("\n\n")
	} else if m.status != "" {
		b.WriteString(tui.SuccessStyle.Render(m.status))
		b.WriteString("\n\n")
	}
	if m.alert != "" {
		b.WriteString(tui.ErrorStyle.Render(m.alert))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderFooter())

	return tui.BoxStyle.
		Width(boxWidth(m.width, maxDashboardWidth)).
		Render(b.String())
}

func (m DashboardModel) renderFooter() string {
	var hints []string
	switch {
	case m.promptOpen:
		hints = []string{"Enter: Upload", "Esc: Cancel"}
	case m.searching:
		hints = []string{"Enter: Done", "Esc: Clear"}
	default:
		hints = []string{"Enter: Chat", "u: Upload", "/: Search", "r: Refresh", "L: Log out"}
	}
	return renderFooter(hints, m.ctrlCPending)
}

// SetCtrlCPending sets the Ctrl+C pending state for display.
func (m *DashboardModel) SetCtrlCPending(pending bool) {
	m.ctrlCPending = pending
}
