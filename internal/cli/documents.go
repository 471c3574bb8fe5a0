package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/askmydocs/askdocs/internal/api"
	"github.com/askmydocs/askdocs/internal/docs"
	"github.com/askmydocs/askdocs/internal/log"
	"github.com/askmydocs/askdocs/internal/ui"
	"github.com/askmydocs/askdocs/internal/viewer"
)

var (
	filesSearch string
	openPage    int
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List uploaded documents",
	Args:  cobra.NoArgs,
	RunE:  runFiles,
}

var uploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Upload a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

var openCmd = &cobra.Command{
	Use:   "open <filename>",
	Short: "Open a document in the system viewer",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpen,
}

func init() {
	filesCmd.Flags().StringVar(&filesSearch, "search", "", "Only list filenames containing this text (case-insensitive)")
	openCmd.Flags().IntVar(&openPage, "page", 1, "Page to open at")
}

func runFiles(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.requireAuth(); err != nil {
		return err
	}
	records, err := rt.client.ListDocuments(cmd.Context())
	if err != nil {
		return rt.fail(log.EventDocumentsLoadFailed, err)
	}
	rt.logger.Event(log.EventDocumentsLoaded, zap.Int("count", len(records)))

	out := cmd.OutOrStdout()
	visible := docs.Filter(records, filesSearch)
	if len(visible) == 0 {
		if filesSearch != "" {
			fmt.Fprintln(out, dimLabel.Sprint("No documents match your search."))
		} else {
			fmt.Fprintln(out, dimLabel.Sprint("No documents yet. Upload one with: askdocs upload <path>"))
		}
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, titleLabel.Sprint("FILENAME")+"\t"+titleLabel.Sprint("UPLOADED"))
	for _, r := range visible {
		fmt.Fprintf(tw, "%s\t%s\n", r.Filename, r.DisplayDate())
	}
	return tw.Flush()
}

func runUpload(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.requireAuth(); err != nil {
		return err
	}

	path := docs.CleanDroppedPath(args[0])
	name := filepath.Base(path)
	if !docs.HasExtension(name, rt.client.Extension()) {
		// The client rejects the name before touching the network.
		err := rt.client.UploadDocument(cmd.Context(), name, nil)
		rt.logger.Event(log.EventUploadRejected, zap.String("filename", name))
		return errors.New(api.UserMessage(err))
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	progress := ui.NewProgress(cmd.ErrOrStderr(), "Uploading "+name)
	progress.Start()
	err = rt.client.UploadDocument(cmd.Context(), name, f)
	progress.Finish(err)
	if err != nil {
		failure := rt.fail(log.EventUploadFailed, err)
		return fmt.Errorf("Upload failed: %s", failure.Error())
	}
	rt.logger.Event(log.EventUploadSucceeded, zap.String("filename", name))

	fmt.Fprintf(cmd.OutOrStdout(), "%s Uploaded %s\n", successLabel.Sprint("✓"), name)
	return nil
}

func runOpen(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()

	state := viewer.New(args[0]).GoTo(openPage)
	url := rt.client.DocumentURL(state.Filename(), state.Page())
	fmt.Fprintln(cmd.OutOrStdout(), url)
	if err := viewer.Open(url); err != nil {
		rt.logger.Failure(log.EventViewerFailed, err, zap.String("filename", state.Filename()))
		return fmt.Errorf("opening viewer: %w", err)
	}
	return nil
}
