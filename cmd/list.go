package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/internal/store"
)

var (
	listSearch string
	listWatch  bool
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved conversations",
	Long: `List saved conversations grouped by the day they were last updated.

Use --search to filter by title and --watch to keep the list on screen,
refreshing whenever another agent-chat process saves or deletes a session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		st, closeStore := openStore(ctx)
		defer closeStore()

		out := cmd.OutOrStdout()
		if !listWatch {
			displaySessions(out, st.Search(listSearch), listSearch, time.Now())
			return nil
		}

		st.Watch(ctx, cfg.Storage.PollInterval, func(sessions []*internal.Session) {
			if listSearch != "" {
				sessions = filterSessions(sessions, listSearch)
			}
			if f, ok := out.(*os.File); ok && isTerminalFile(f) {
				_, _ = fmt.Fprint(out, "\033[H\033[2J")
			}
			displaySessions(out, sessions, listSearch, time.Now())
		})
		return nil
	},
}

func filterSessions(sessions []*internal.Session, query string) []*internal.Session {
	filtered := make([]*internal.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.MatchesQuery(query) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func displaySessions(out io.Writer, sessions []*internal.Session, query string, now time.Time) {
	if len(sessions) == 0 {
		if query != "" {
			_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 No conversations match %q", query)))
		} else {
			_, _ = fmt.Fprintln(out, headerStyle.Render("📋 No conversations yet"))
		}
		return
	}

	_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 %d conversation(s)", len(sessions))))
	_, _ = fmt.Fprintln(out)

	for _, group := range store.GroupByDay(sessions, now) {
		_, _ = fmt.Fprintln(out, groupStyle.Render(group.Label))

		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		for _, session := range group.Sessions {
			title := session.Title
			if r := []rune(title); len(r) > 50 {
				title = string(r[:47]) + "..."
			}
			_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t\n",
				idStyle.Render(session.ID),
				title,
				countStyle.Render(strconv.Itoa(len(session.Messages))+" msgs"),
				dateStyle.Render(relativeTime(session.UpdatedAt, now)))
		}
		_ = w.Flush()
		_, _ = fmt.Fprintln(out)
	}

	_, _ = fmt.Fprintln(out, hintStyle.Render("💡 Tip: continue one with `agent-chat chat --session "+sessions[0].ID+"`"))
}

func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func isTerminalFile(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Only show conversations whose title contains this text")
	listCmd.Flags().BoolVarP(&listWatch, "watch", "w", false, "Keep listing and refresh on changes")
}
