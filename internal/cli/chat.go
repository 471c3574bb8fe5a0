package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/askmydocs/askdocs/internal/chat"
	"github.com/askmydocs/askdocs/internal/log"
	"github.com/askmydocs/askdocs/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history <filename>",
	Short: "Show the conversation for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var askCmd = &cobra.Command{
	Use:   "ask <filename> <question>",
	Short: "Ask a question about a document",
	Long: `Ask a question about an uploaded document. The answer is printed with
the pages it cites. Words after the filename are joined into one question.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func runHistory(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.requireAuth(); err != nil {
		return err
	}
	filename := args[0]
	msgs, err := rt.client.FetchHistory(cmd.Context(), filename)
	if err != nil {
		return rt.fail(log.EventHistoryLoadFailed, err)
	}
	rt.logger.Event(log.EventHistoryLoaded, zap.String("filename", filename), zap.Int("count", len(msgs)))

	out := cmd.OutOrStdout()
	if len(msgs) == 0 {
		fmt.Fprintln(out, dimLabel.Sprintf("No questions asked about %s yet.", filename))
		return nil
	}
	for i, m := range msgs {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printExchange(out, m.Question, m.Answer, m.Sources)
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.requireAuth(); err != nil {
		return err
	}
	filename := args[0]
	question := strings.TrimSpace(strings.Join(args[1:], " "))
	if question == "" {
		return errors.New("Please enter a question")
	}

	progress := ui.NewProgress(cmd.ErrOrStderr(), "Thinking")
	progress.Start()
	ans, err := rt.client.SubmitQuery(cmd.Context(), filename, question)
	progress.Finish(err)
	if err != nil {
		failure := rt.fail(log.EventQueryFailed, err)
		return fmt.Errorf("Query failed: %s", failure.Error())
	}
	rt.logger.Event(log.EventQuerySucceeded, zap.String("filename", filename), zap.Int("sources", len(ans.Sources)))

	printExchange(cmd.OutOrStdout(), question, ans.Answer, ans.Sources)
	return nil
}

func printExchange(w io.Writer, question, answer string, sources []chat.Citation) {
	fmt.Fprintf(w, "%s %s\n", titleLabel.Sprint("Q:"), question)
	fmt.Fprintf(w, "%s %s\n", successLabel.Sprint("A:"), answer)
	if len(sources) == 0 {
		return
	}
	labels := make([]string, 0, len(sources))
	for _, c := range sources {
		labels = append(labels, citationLabel(c))
	}
	fmt.Fprintln(w, dimLabel.Sprint("Sources: "+strings.Join(labels, ", ")))
}

func citationLabel(c chat.Citation) string {
	if n, ok := c.PageNumber(); ok {
		return fmt.Sprintf("Page %d", n)
	}
	return "Page " + c.Page
}
