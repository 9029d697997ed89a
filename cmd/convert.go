package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/smartlawnotes/lawnotes/docsmd"
)

func convertCmd(a *app) *cobra.Command {
	var (
		startIndex int
		noFormat   bool
	)

	cmd := cobra.Command{
		Use:   "convert FILE",
		Short: "Print the Google Docs requests for a markdown file as JSON",
		Long:  "Print the Google Docs batchUpdate requests that insert a markdown file. Use - to read from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if startIndex < 1 {
				return errors.New("start index must be at least 1")
			}

			var (
				data []byte
				err  error
			)
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Wrap(err, "failed to read from stdin")
				}
			} else {
				data, err = os.ReadFile(args[0])
				if err != nil {
					return errors.Wrapf(err, "failed to read file %q", args[0])
				}
			}

			conv := a.converter()
			if noFormat {
				conv = docsmd.NewConverter(docsmd.WithLogger(a.logger))
			}
			requests := conv.Convert(cmd.Context(), string(data), startIndex)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return errors.Wrap(enc.Encode(requests), "failed to write requests")
		},
	}

	cmd.Flags().IntVar(&startIndex, "start-index", 1, "Document index of the first insertion.")
	cmd.Flags().BoolVar(&noFormat, "no-format", false, "Skip the prettier formatting pass.")

	return &cmd
}
