package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/internal/export"
)

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import a conversation exported as json",
	Long: `Import a conversation previously written by 'agent-chat export --format json'.

The exported file does not carry the agent-service user. Importing over a
saved conversation keeps that conversation's link; a new one is linked to a
fresh remote session the first time it is opened with
'agent-chat chat --session <id>'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()

		session, err := export.ParseJSON(f)
		if err != nil {
			return err
		}
		if session.IsEmpty() {
			return fmt.Errorf("%s has no messages to import", args[0])
		}

		st, closeStore := openStore(cmd.Context())
		defer closeStore()

		if existing, exists := st.Get(session.ID); exists {
			// exports carry no user id; keep the stored link to the agent service
			session.UserID = existing.UserID
			internal.PrintWarning(fmt.Sprintf("Replacing existing conversation %s", session.ID))
		}
		st.Save(session)
		internal.PrintSuccess(fmt.Sprintf("Imported %q as %s", session.Title, session.ID))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
