package cmd

import (
	"github.com/spf13/cobra"
)

func authCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Drive and Docs",
		Long:  "Open the printed URL, approve access and paste the code (or the whole redirect URL) back. The token is saved to token_file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.auth().Authorize(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
