package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/agent-chat/internal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	configPath  string
	storagePath string
	endpoint    string
	appName     string
	logFormat   string
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"

	// cfg is loaded once per invocation by the root PersistentPreRunE
	cfg *internal.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "agent-chat",
	Short: "Chat with an agent service from the terminal",
	Long: `A terminal client for a conversational agent service.

Conversations are kept locally so you can come back to them, search them,
and export them. The agent service is only asked to create sessions and
answer turns; nothing is stored remotely by this tool.

Quick Start:
  agent-chat chat                        # Start a new conversation
  agent-chat list                        # List saved conversations
  agent-chat chat --session <id>         # Continue a conversation
  agent-chat export <id> --format md     # Export as Markdown
  agent-chat serve                       # Run the local /api/chat proxy

Configuration is read from ~/.agent-chat/config.yaml, a .env file in the
working directory, and the ADK_SERVER_ENDPOINT / ADK_APP_NAME environment
variables.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		internal.SetVerbose(verbose)
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and environment, then applies flags
func loadConfig() (*internal.Config, error) {
	path := configPath
	if path == "" {
		path = internal.DefaultConfigPath()
	}
	c, err := internal.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if storagePath != "" {
		c.Storage.Location = storagePath
	}
	if endpoint != "" {
		c.Agent.Endpoint = endpoint
	}
	if appName != "" {
		if c.Agent.Author == c.Agent.AppName {
			c.Agent.Author = appName
		}
		c.Agent.AppName = appName
	}
	if logFormat != "" {
		c.Log.Format = logFormat
	}

	internal.SetLogOutput(os.Stderr, c.Log.Format)
	if verbose {
		internal.SetLogLevel(internal.LogLevelDebug)
	} else {
		internal.SetLogLevel(internal.LogLevelFromString(c.Log.Level))
	}
	return c, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.agent-chat/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "Session storage: sqlite file path, redis:// URL, or \"memory\"")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Agent service base URL (overrides ADK_SERVER_ENDPOINT)")
	rootCmd.PersistentFlags().StringVar(&appName, "app", "", "Agent application name (overrides ADK_APP_NAME)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console or json")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
