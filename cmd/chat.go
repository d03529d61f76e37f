package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/internal/chat"
	"github.com/iksnae/agent-chat/internal/export"
	"github.com/iksnae/agent-chat/internal/store"
)

var chatSessionID string

const chatHelp = `Commands:
  /new                    start a new conversation
  /load <id>              continue a saved conversation
  /list [query]           list saved conversations
  /delete [id]            delete a conversation (default: the current one)
  /export <format> [dir]  export the current conversation (json, md, txt, yaml, jsonl)
  /copy                   copy the current conversation to the clipboard
  /title                  show the current title
  /help                   show this help
  /quit                   leave`

// chatCmd represents the interactive chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start an interactive conversation with the agent service.

Every line you type is sent as a turn. Conversations are saved after the
first reply and can be continued later with --session.

` + chatHelp,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, closeStore := openStore(ctx)
		defer closeStore()

		manager := chat.NewManager(newAgentClient(), st)
		r := &repl{
			in:      cmd.InOrStdin(),
			out:     cmd.OutOrStdout(),
			store:   st,
			manager: manager,
			orch:    chat.NewOrchestrator(manager),
		}

		if chatSessionID != "" {
			if err := manager.LoadSession(ctx, chatSessionID); err != nil {
				if errors.Is(err, internal.ErrSessionNotFound) {
					return fmt.Errorf("session not found: %s (use 'agent-chat list' to see saved conversations)", chatSessionID)
				}
				return err
			}
			r.printTranscript()
		} else {
			manager.CreateSession(ctx)
		}

		return r.run(ctx)
	},
}

// repl reads lines from in and turns them into turns or slash commands
type repl struct {
	in      io.Reader
	out     io.Writer
	store   *store.Store
	manager *chat.Manager
	orch    *chat.Orchestrator
}

func (r *repl) run(ctx context.Context) error {
	r.printf("%s\n", headerStyle.Render("💬 "+r.manager.Active().Title()))
	r.printf("%s\n\n", hintStyle.Render("Type a message, or /help for commands."))

	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		r.printf("%s ", userMessageStyle.Render(">"))
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()

		if strings.HasPrefix(strings.TrimSpace(line), "/") {
			if quit := r.command(ctx, strings.TrimSpace(line)); quit {
				return nil
			}
			continue
		}
		r.send(ctx, line)

		if ctx.Err() != nil {
			break
		}
	}
	r.printf("\n")
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

func (r *repl) send(ctx context.Context, text string) {
	var outcome chat.Outcome
	var turnErr error
	_ = internal.ShowProgress(ctx, "Thinking...", func() error {
		outcome, turnErr = r.orch.SendTurn(ctx, text)
		return nil
	})

	switch {
	case errors.Is(turnErr, internal.ErrEmptyInput):
		return
	case errors.Is(turnErr, internal.ErrNoActiveSession):
		r.printf("%s\n", warningStyle.Render("No active conversation. Use /new or /load <id>."))
		return
	case errors.Is(turnErr, internal.ErrTurnInFlight):
		r.printf("%s\n", warningStyle.Render("Still waiting for the previous reply."))
		return
	case turnErr != nil:
		r.printf("%s %v\n", errorStyle.Render("✗"), turnErr)
		return
	}

	displayMessage(r.out, 0, outcome.Reply, 0)
	if outcome.Failed() {
		internal.LogDebug("Turn fault: %v", outcome.Err)
	}
}

// command runs a slash command and reports whether the REPL should exit
func (r *repl) command(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	switch name {
	case "/quit", "/exit", "/q":
		return true

	case "/help", "/?":
		r.printf("%s\n\n", chatHelp)

	case "/new":
		r.manager.CreateSession(ctx)
		r.printf("%s\n\n", successStyle.Render("✓ Started a new conversation"))

	case "/load":
		if len(args) != 1 {
			r.printf("%s\n", warningStyle.Render("Usage: /load <id>"))
			return false
		}
		if err := r.manager.LoadSession(ctx, args[0]); err != nil {
			r.printf("%s %v\n", errorStyle.Render("✗"), err)
			return false
		}
		r.printTranscript()

	case "/list":
		query := strings.Join(args, " ")
		displaySessions(r.out, r.store.Search(query), query, time.Now())

	case "/delete":
		id := r.manager.Active().SessionID()
		if len(args) > 0 {
			id = args[0]
		}
		session, ok := r.store.Get(id)
		if !ok {
			r.printf("%s\n", warningStyle.Render("Nothing saved under "+id))
			return false
		}
		r.manager.DeleteSession(id)
		r.printf("%s\n", successStyle.Render(fmt.Sprintf("✓ Deleted %q", session.Title)))
		if r.manager.State() == chat.Uninitialized {
			r.printf("%s\n", hintStyle.Render("No active conversation. Use /new or /load <id>."))
		}

	case "/export":
		session := r.manager.Snapshot()
		if session.IsEmpty() {
			r.printf("%s\n", warningStyle.Render("Nothing to export yet"))
			return false
		}
		exportFormat, dir := "md", "."
		if len(args) > 0 {
			exportFormat = args[0]
		}
		if len(args) > 1 {
			dir = args[1]
		}
		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			r.printf("%s %v\n", errorStyle.Render("✗"), err)
			return false
		}
		path, err := export.WriteFile(session, exporter, dir, time.Now())
		if err != nil {
			r.printf("%s %v\n", errorStyle.Render("✗"), err)
			return false
		}
		r.printf("%s\n", successStyle.Render("✓ Exported to "+path))

	case "/copy":
		session := r.manager.Snapshot()
		if session.IsEmpty() {
			r.printf("%s\n", warningStyle.Render("Nothing to copy yet"))
			return false
		}
		if err := export.CopyToClipboard(session); err != nil {
			r.printf("%s %v\n", errorStyle.Render("✗"), err)
			return false
		}
		r.printf("%s\n", successStyle.Render("✓ Copied to clipboard"))

	case "/title":
		if r.manager.State() == chat.Uninitialized {
			r.printf("%s\n", hintStyle.Render("No active conversation"))
			return false
		}
		r.printf("%s %s\n", titleStyle.Render(r.manager.Active().Title()),
			hintStyle.Render("("+r.manager.Active().SessionID()+", "+r.manager.State().String()+")"))

	default:
		r.printf("%s\n", warningStyle.Render("Unknown command "+name+", try /help"))
	}
	return false
}

func (r *repl) printTranscript() {
	session := r.manager.Snapshot()
	if session == nil {
		return
	}
	displaySessionHeader(r.out, session)
	for i, msg := range session.Messages {
		displayMessage(r.out, i+1, msg, len(session.Messages))
	}
}

func (r *repl) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatSessionID, "session", "", "Continue a saved conversation")
}
