package cmd

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/smartlawnotes/lawnotes/pipeline"
)

func runCmd(a *app) *cobra.Command {
	var (
		skipDownload   bool
		skipTranscribe bool
		skipNotes      bool
		skipUpload     bool
	)

	cmd := cobra.Command{
		Use:   "run",
		Short: "Run every step for every configured class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var steps []pipeline.Step

			if !skipDownload {
				if a.cfg.DriveParentFolderID == "" {
					a.logger.Warn("skipping download: no Drive parent folder configured")
				} else {
					step, err := a.downloadStep(ctx)
					if err != nil {
						return err
					}
					steps = append(steps, step)
				}
			}
			if !skipTranscribe {
				steps = append(steps, a.transcribeStep())
			}
			if !skipNotes {
				noteSteps, release, err := a.notesSteps(ctx)
				if err != nil {
					return err
				}
				defer release()
				steps = append(steps, noteSteps...)
			}
			if !skipUpload {
				if a.cfg.DriveClassesFolderID == "" {
					a.logger.Warn("skipping upload: no Drive classes folder configured")
				} else {
					step, err := a.uploadStep(ctx)
					if err != nil {
						return err
					}
					steps = append(steps, step)
				}
			}

			return a.run(ctx, steps...)
		},
	}

	cmd.Flags().BoolVar(&skipDownload, "skip-download", false, "Do not download recordings from Drive.")
	cmd.Flags().BoolVar(&skipTranscribe, "skip-transcribe", false, "Do not transcribe recordings.")
	cmd.Flags().BoolVar(&skipNotes, "skip-notes", false, "Do not generate lecture or reading notes.")
	cmd.Flags().BoolVar(&skipUpload, "skip-upload", false, "Do not upload notes to Google Docs.")

	return &cmd
}

func downloadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Download lecture recordings from Drive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			step, err := a.downloadStep(cmd.Context())
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), step)
		},
	}
}

func transcribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe",
		Short: "Transcribe downloaded lecture recordings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), a.transcribeStep())
		},
	}
}

func notesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "notes",
		Short: "Generate notes from transcripts and readings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, release, err := a.notesSteps(cmd.Context())
			if err != nil {
				return err
			}
			defer release()
			return a.run(cmd.Context(), steps...)
		},
	}
}

func uploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload",
		Short: "Append generated notes to the class Google Docs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			step, err := a.uploadStep(cmd.Context())
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), step)
		},
	}
}

// run executes steps and fails when any class failed as a whole. Per-file
// failures only show up in the summaries.
func (a *app) run(ctx context.Context, steps ...pipeline.Step) error {
	sums, err := pipeline.New(a.cfg, a.logger).Run(ctx, steps...)
	if err != nil {
		return err
	}

	var failed error
	for _, sum := range sums {
		failed = multierr.Append(failed, sum.Err)
	}
	if failed != nil {
		n := len(multierr.Errors(failed))
		a.logger.Error("pipeline finished with errors", zap.Int("failures", n))
		return errors.Wrapf(failed, "%d class step(s) failed", n)
	}
	a.logger.Info("pipeline finished", zap.Int("steps", len(sums)))
	return nil
}
