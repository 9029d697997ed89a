package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/smartlawnotes/lawnotes/config"
	"github.com/smartlawnotes/lawnotes/log"
)

var (
	fConfig string
	fDebug  bool
	fLogDir string
)

func Root() *cobra.Command {
	a := &app{}

	cmd := cobra.Command{
		Use:           "lawnotes",
		Short:         "Turn lecture recordings and readings into study notes",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			log.Flush()
		},
	}

	pflags := cmd.PersistentFlags()

	pflags.StringVar(&fConfig, "config", "lawnotes.yaml", "Path to the YAML config file. A missing file is ignored.")
	pflags.BoolVar(&fDebug, "debug", false, "Print debug messages to the console.")
	pflags.StringVar(&fLogDir, "log-dir", "", "Directory for the debug log file. Overrides log_dir; empty disables the file.")

	cmd.AddCommand(runCmd(a))
	cmd.AddCommand(downloadCmd(a))
	cmd.AddCommand(transcribeCmd(a))
	cmd.AddCommand(notesCmd(a))
	cmd.AddCommand(uploadCmd(a))
	cmd.AddCommand(convertCmd(a))
	cmd.AddCommand(authCmd(a))
	cmd.AddCommand(serveCmd(a))

	return &cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadFile(fConfig)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-dir") {
		cfg.LogDir = fLogDir
	}

	path, err := log.Set(log.Options{Dir: cfg.LogDir, Debug: fDebug})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = log.Get()
	if path != "" {
		a.logger.Debug("logging to file", zap.String("path", path))
	}
	return nil
}
