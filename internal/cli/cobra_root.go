package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"classifyd/internal/config"
)

// buildRootCmdWith constructs the Cobra command tree wired to the fn* actions.
func buildRootCmdWith(opts *Options) *cobra.Command {
	var (
		cfg config.Config
		log zerolog.Logger
	)
	root := &cobra.Command{
		Use:   "classifyd",
		Short: "Image classification service",
		Long: "classifyd downloads the model artifact if needed, loads it once and classifies images.\n" +
			"Without a subcommand it fetches and loads the model, runs preflight checks and exits.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
	}

	// Persistent flags -> Options
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "Config file (.yaml, .json or .toml; defaults CLASSIFYD_CONFIG)")
	root.PersistentFlags().StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level: debug|info|warn|error (defaults CLASSIFYD_LOG_LEVEL or info)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = resolveConfig(opts); err != nil {
			return err
		}
		log = newLogger(cfg.LogLevel, cmd.ErrOrStderr())
		return nil
	}
	root.RunE = func(cmd *cobra.Command, args []string) error {
		return fnCheck(cmd.Context(), cfg, log, cmd.OutOrStdout())
	}

	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "Load the model and serve HTTP",
		Example: "  classifyd serve\n  classifyd serve --addr 127.0.0.1:5000",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return fnServe(ctx, cfg, log)
		},
	}
	serveCmd.Flags().StringVar(&opts.Addr, "addr", opts.Addr, "HTTP listen address (defaults CLASSIFYD_ADDR or 0.0.0.0:5000)")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Fetch and load the model, run preflight checks and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fnCheck(cmd.Context(), cfg, log, cmd.OutOrStdout())
		},
	}

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the model artifact if it is absent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fnFetch(cmd.Context(), cfg, log, cmd.OutOrStdout())
		},
	}

	predictCmd := &cobra.Command{
		Use:     "predict <image>",
		Short:   "Classify one local image and print the result",
		Example: "  classifyd predict screenshot.png",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return fnPredict(cmd.Context(), cfg, log, cmd.OutOrStdout(), args[0])
		},
	}

	root.AddCommand(serveCmd, checkCmd, fetchCmd, predictCmd)
	return root
}
