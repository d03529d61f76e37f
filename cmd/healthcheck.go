package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/internal/agent"
	"github.com/iksnae/agent-chat/internal/kv"
	"github.com/iksnae/agent-chat/internal/store"
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check session storage and the agent service",
	Long: `Check the health of agent-chat by verifying:
  • The configured session storage can be opened
  • Saved sessions can be read
  • The agent service answers HTTP

This command is useful for debugging configuration issues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHealthcheck(cmd.Context(), cmd.OutOrStdout(), cfg, newAgentClient())
	},
}

func runHealthcheck(ctx context.Context, out io.Writer, c *internal.Config, client *agent.Client) error {
	line := func(a ...any) { _, _ = fmt.Fprintln(out, a...) }
	printf := func(format string, a ...any) { _, _ = fmt.Fprintf(out, format, a...) }

	line(sectionStyle.Render("🔍 agent-chat Health Check"))
	line()

	// Step 1: open the durable area
	line(infoStyle.Render("Step 1: Opening session storage..."))
	storageOK := false
	sessionCount := 0
	area, err := kv.Open(ctx, c.Storage.Location)
	opened := err == nil
	if !opened {
		line(errorStyle.Render("❌ Failed to open session storage:"), err)
	} else {
		defer func() { _ = area.Close() }()
		line(successStyle.Render(fmt.Sprintf("✅ %s storage opened", area.Backend())))
		if verbose {
			printf("   Location: %s\n", c.Storage.Location)
			printf("   Key: %s\n", c.Storage.Key)
		}
	}
	line()

	// Step 2: read the session list
	if opened {
		line(infoStyle.Render("Step 2: Reading saved sessions..."))
		readCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_, _, err := area.Get(readCtx, c.Storage.Key)
		cancel()
		if err != nil {
			line(errorStyle.Render("❌ Failed to read sessions:"), err)
		} else {
			storageOK = true
			sessions := store.New(area, c.Storage.Key).List()
			sessionCount = len(sessions)
			if sessionCount > 0 {
				line(successStyle.Render(fmt.Sprintf("✅ Found %d session(s)", sessionCount)))
				if verbose {
					for i, s := range sessions {
						if i == 5 {
							printf("   ... and %d more\n", sessionCount-5)
							break
						}
						printf("   [%d] %s (ID: %s)\n", i+1, s.Title, s.ID)
					}
				}
			} else {
				line(warningStyle.Render("⚠️  No sessions saved yet"))
			}
		}
		line()
	}

	// Step 3: reach the agent service
	line(infoStyle.Render("Step 3: Contacting the agent service..."))
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	status, err := client.Ping(pingCtx)
	cancel()
	agentOK := err == nil
	if agentOK {
		line(successStyle.Render(fmt.Sprintf("✅ Agent service reachable at %s", client.Endpoint())))
		if verbose {
			printf("   App: %s\n", client.AppName())
			printf("   Status: %d\n", status)
		}
	} else {
		line(warningStyle.Render(fmt.Sprintf("⚠️  Agent service not reachable at %s", client.Endpoint())))
		if verbose {
			printf("   %v\n", err)
		}
		line("   New conversations will use local ids until it is back.")
	}
	line()

	// Summary
	line(sectionStyle.Render("📊 Summary"))
	line()

	switch {
	case storageOK && agentOK:
		line(successStyle.Render("✅ Health check passed!"))
		line(successStyle.Render(fmt.Sprintf("   • Sessions: %d saved", sessionCount)))
		return nil
	case storageOK:
		line(warningStyle.Render("⚠️  Storage works but the agent service is unreachable"))
		line("   • Saved conversations can be listed and exported")
		line("   • Replies will fail until the service is reachable")
		return nil
	default:
		line(errorStyle.Render("❌ Health check failed"))
		line("   • Session storage is not available")
		return fmt.Errorf("health check failed: session storage unavailable")
	}
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
