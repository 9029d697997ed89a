package cmd

import (
	"github.com/spf13/cobra"

	"github.com/smartlawnotes/lawnotes/toolserver"
)

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return toolserver.New(a.converter(), a.reader(), a.logger).Serve()
		},
	}
}
