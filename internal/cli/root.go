// Package cli defines Cobra command definitions for the askdocs CLI.
// This file contains the root command, persistent flags, and the TUI launch.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/askmydocs/askdocs/internal/tui"
	"github.com/askmydocs/askdocs/internal/tui/app"
	"github.com/askmydocs/askdocs/internal/viewer"
)

var (
	verbose    bool
	ephemeral  bool
	apiURL     string
	configPath string
	version    = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "askdocs",
	Short: "Ask questions about your documents",
	Long: `askdocs is a terminal client for AskMyDocs. Upload PDFs, then ask
questions and get answers with page citations from the documents.

Run without arguments in a terminal to open the interactive interface.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// When no subcommand is provided, launch TUI if TTY, list the subcommands otherwise
		if !tui.IsTTY() {
			return tui.Fallback(cmd.OutOrStdout())
		}

		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.Close()

		deps := tui.NewDeps(rt.cfg, rt.store, rt.client, rt.logger, viewer.Open)
		return tui.Run(app.New(deps))
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorLabel.Sprint("Error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (overrides ASKDOCS_API_URL and the config file)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.askdocs/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log debug events to the log file")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep the session in memory only")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(openCmd)
}
