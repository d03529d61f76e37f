package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iksnae/agent-chat/internal"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <session-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved conversation",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, closeStore := openStore(cmd.Context())
		defer closeStore()

		session, ok := st.Get(args[0])
		if !ok {
			return fmt.Errorf("session not found: %s", args[0])
		}
		st.Delete(session.ID)
		internal.PrintSuccess(fmt.Sprintf("Deleted %q", session.Title))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
