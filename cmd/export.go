package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/internal/export"
)

var (
	format      string
	outputDir   string
	toClipboard bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a conversation to a file or the clipboard",
	Long: `Export a saved conversation as json, md, txt, yaml or jsonl.

Files are named chat-<title>-<date>.<ext> and written to --out.
With --clipboard a short plain-text transcript is copied instead.
Use 'agent-chat list' to see available session IDs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, closeStore := openStore(cmd.Context())
		defer closeStore()

		session, ok := st.Get(args[0])
		if !ok {
			return fmt.Errorf("session not found: %s (use 'agent-chat list' to see saved conversations)", args[0])
		}

		if toClipboard {
			if err := export.CopyToClipboard(session); err != nil {
				return err
			}
			internal.PrintSuccess("Conversation copied to clipboard")
			return nil
		}

		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		var path string
		err = internal.ShowProgress(cmd.Context(), fmt.Sprintf("Exporting %q to %s", session.Title, outputDir), func() error {
			var writeErr error
			path, writeErr = export.WriteFile(session, exporter, outputDir, time.Now())
			return writeErr
		})
		if err != nil {
			return err
		}

		internal.PrintSuccess(fmt.Sprintf("Export complete: %s", path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "md", "Export format (json, md, txt, yaml, jsonl)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().BoolVar(&toClipboard, "clipboard", false, "Copy a plain-text transcript to the clipboard instead of writing a file")
}
