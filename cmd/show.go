package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/internal/export"
)

var limit int

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a saved conversation",
	Long:  `Display the messages of a saved conversation.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, closeStore := openStore(cmd.Context())
		defer closeStore()

		session, ok := st.Get(args[0])
		if !ok {
			return fmt.Errorf("session not found: %s (use 'agent-chat list' to see saved conversations)", args[0])
		}

		out := cmd.OutOrStdout()
		displaySessionHeader(out, session)

		messagesToShow := session.Messages
		total := len(messagesToShow)
		if limit > 0 && limit < total {
			messagesToShow = messagesToShow[:limit]
		}

		for i, msg := range messagesToShow {
			displayMessage(out, i+1, msg, total)
		}

		if limit > 0 && limit < total {
			_, _ = fmt.Fprintln(out)
			_, _ = fmt.Fprintln(out, lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				Italic(true).
				Render(fmt.Sprintf("... (%d more message(s))", total-limit)))
		}
		return nil
	},
}

func displaySessionHeader(out io.Writer, session *internal.Session) {
	if session == nil {
		return
	}
	_, _ = fmt.Fprintln(out, sessionHeaderStyle.Render(fmt.Sprintf("💬 %s", session.Title)))

	metaParts := []string{
		fmt.Sprintf("Created: %s", session.CreatedAt.Local().Format(export.TimestampLayout)),
		fmt.Sprintf("Updated: %s", session.UpdatedAt.Local().Format(export.TimestampLayout)),
		fmt.Sprintf("Messages: %d", len(session.Messages)),
	}
	if identity := internal.ResolveIdentity(session); !identity.IsBound() {
		metaParts = append(metaParts, "Not linked to the agent service")
	}
	_, _ = fmt.Fprintln(out, sessionMetaStyle.Render(strings.Join(metaParts, " • ")))
	_, _ = fmt.Fprintln(out)
}

func displayMessage(out io.Writer, index int, msg internal.Message, total int) {
	var actorStyle lipgloss.Style
	var actorLabel string

	switch msg.Role {
	case internal.RoleUser:
		actorStyle = userMessageStyle
		actorLabel = "👤 " + msg.Label()
	default:
		actorStyle = assistantMessageStyle
		actorLabel = "🤖 " + msg.Label()
	}

	header := actorStyle.Render(actorLabel)
	if total > 0 {
		header += " " + hintStyle.Render(fmt.Sprintf("[%d/%d]", index, total))
	}
	_, _ = fmt.Fprintln(out, header)

	content := strings.TrimSpace(msg.Content)
	if content != "" {
		content = wrapText(content, 80)
		_, _ = fmt.Fprintln(out, messageContentStyle.Render(content))
	} else {
		_, _ = fmt.Fprintln(out, messageContentStyle.Foreground(lipgloss.Color("240")).Render("(empty message)"))
	}

	_, _ = fmt.Fprintln(out)
}

func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				if currentLine != "" {
					wrapped = append(wrapped, currentLine)
					currentLine = word
				} else {
					wrapped = append(wrapped, word)
					currentLine = ""
				}
			} else {
				if currentLine == "" {
					currentLine = word
				} else {
					currentLine += " " + word
				}
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit number of messages to show")
}
