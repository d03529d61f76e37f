package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iksnae/agent-chat/internal/metrics"
	"github.com/iksnae/agent-chat/internal/server"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local /api/chat proxy",
	Long: `Run a local HTTP proxy in front of the agent service.

  GET  /api/chat   create a session, returns {userId, sessionId}
  POST /api/chat   run a turn, {userId, sessionId, message, history} -> {response}
  GET  /healthz    liveness
  GET  /metrics    prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr := cfg.Server.Listen
		if listenAddr != "" {
			addr = listenAddr
		}

		metrics.MustRegister()
		return server.New(newAgentClient()).ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "Listen address (default :3000)")
}
