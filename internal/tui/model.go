package tui

import (
	"context"
	"io"
	"time"

	"github.com/askmydocs/askdocs/internal/api"
	"github.com/askmydocs/askdocs/internal/chat"
	"github.com/askmydocs/askdocs/internal/config"
	"github.com/askmydocs/askdocs/internal/docs"
	"github.com/askmydocs/askdocs/internal/log"
	"github.com/askmydocs/askdocs/internal/session"
)

// Gateway is the subset of the backend client the views use.
// *api.Client satisfies it.
type Gateway interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password string) error
	Me(ctx context.Context) (api.User, error)
	ListDocuments(ctx context.Context) ([]docs.Record, error)
	UploadDocument(ctx context.Context, name string, r io.Reader) error
	FetchHistory(ctx context.Context, filename string) ([]chat.Message, error)
	SubmitQuery(ctx context.Context, filename, question string) (chat.Answer, error)
	DocumentURL(filename string, page int) string
	DownloadDocument(ctx context.Context, filename string) ([]byte, error)
	Extension() string
}

var _ Gateway = (*api.Client)(nil)

// Deps are the collaborators shared by every view.
type Deps struct {
	Store   *session.Store
	Gateway Gateway
	Logger  *log.Logger

	// CitationJumpDelay is the pause before a new answer's first citation
	// is shown in the viewer.
	CitationJumpDelay time.Duration
	// RegisterRedirect is the pause before a successful registration
	// returns to the login screen.
	RegisterRedirect time.Duration
	// OpenURL launches the system document viewer.
	OpenURL func(url string) error
}

// NewDeps builds Deps with the timings from cfg.
func NewDeps(cfg *config.Config, store *session.Store, gw Gateway, logger *log.Logger, openURL func(string) error) Deps {
	d := Deps{
		Store:             store,
		Gateway:           gw,
		Logger:            logger,
		CitationJumpDelay: time.Second,
		RegisterRedirect:  2 * time.Second,
		OpenURL:           openURL,
	}
	if cfg != nil {
		if cfg.Chat.CitationJumpDelayMs > 0 {
			d.CitationJumpDelay = time.Duration(cfg.Chat.CitationJumpDelayMs) * time.Millisecond
		}
		if cfg.Chat.RegisterRedirectMs > 0 {
			d.RegisterRedirect = time.Duration(cfg.Chat.RegisterRedirectMs) * time.Millisecond
		}
	}
	return d
}

// Model is the application-level state the router owns.
type Model struct {
	Deps

	// Requested screen; the guard decides what is actually shown.
	Route    Route
	Filename string // document open in the chat route

	// Terminal dimensions
	Width  int
	Height int

	// Ctrl+C confirmation state
	CtrlCPending bool // True when waiting for second Ctrl+C press
}

// NewModel creates a Model starting on the dashboard; the guard sends
// signed-out users to login.
func NewModel(deps Deps) *Model {
	return &Model{
		Deps:   deps,
		Route:  RouteDashboard,
		Width:  80,
		Height: 24,
	}
}
