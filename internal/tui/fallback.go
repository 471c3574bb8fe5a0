package tui

import (
	"fmt"
	"io"
)

// fallbackCommands are suggested when there is no terminal to draw on.
var fallbackCommands = []string{
	"askdocs login --email you@example.com --password-stdin",
	"askdocs files",
	"askdocs upload <path.pdf>",
	"askdocs ask <filename> \"<question>\"",
}

// Fallback handles non-TTY execution by pointing at the subcommands.
func Fallback(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "Non-TTY environment detected."); err != nil {
		return err
	}
	fmt.Fprintln(w, "Use the non-interactive commands instead:")
	for _, c := range fallbackCommands {
		fmt.Fprintf(w, "  %s\n", c)
	}
	return nil
}
