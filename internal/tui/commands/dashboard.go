package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/askmydocs/askdocs/internal/docs"
	"github.com/askmydocs/askdocs/internal/tui"
)

// LoadDocumentsCmd fetches the document list and the signed-in profile
// concurrently. A profile failure is reported separately and never
// discards the list.
func LoadDocumentsCmd(gw tui.Gateway, mountID string) tea.Cmd {
	return func() tea.Msg {
		msg := tui.DocumentsLoadedMsg{MountID: mountID}

		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			records, err := gw.ListDocuments(ctx)
			if err != nil {
				return err
			}
			msg.Docs = records
			return nil
		})
		g.Go(func() error {
			user, err := gw.Me(ctx)
			if err != nil {
				msg.ProfileErr = err
				return nil
			}
			msg.Email = user.Email
			return nil
		})
		msg.Err = g.Wait()
		return msg
	}
}

// UploadCmd uploads the file at path. The stored name is the path's base
// name.
func UploadCmd(gw tui.Gateway, mountID, path string) tea.Cmd {
	return func() tea.Msg {
		name := filepath.Base(path)
		f, err := os.Open(path)
		if err != nil {
			return tui.UploadDoneMsg{MountID: mountID, Filename: name, Err: fmt.Errorf("opening %s: %w", name, err)}
		}
		defer f.Close()

		err = gw.UploadDocument(context.Background(), name, f)
		return tui.UploadDoneMsg{MountID: mountID, Filename: name, Err: err}
	}
}

// UploadPath normalizes a typed or dropped path for UploadCmd.
func UploadPath(input string) string {
	return docs.CleanDroppedPath(input)
}
