package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/energymon/internal/config"
	"codeberg.org/mutker/energymon/internal/logger"
	"codeberg.org/mutker/energymon/internal/metrics"
	"codeberg.org/mutker/energymon/internal/monitor"
	"codeberg.org/mutker/energymon/internal/pid"
	"codeberg.org/mutker/energymon/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:   "energymon",
	Short: "Monitor device power draw and suggest which device to turn off.",
	Long: `Tracks the power draw of a fixed set of devices, logs the total consumption
on every tick and suggests turning off the largest consumer whenever the total
exceeds the configured threshold. Runs until interrupted.

Settings are read from /etc/energymon.toml, ./energymon.toml or the file named
by --config or ENERGYMON_CONFIG, then from ENERGYMON_* variables and flags.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context(), cmd.Flags())
	},
}

// Execute runs the energymon CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	config.RegisterFlags(rootCmd.Flags())
}

func run(ctx context.Context, flags *pflag.FlagSet) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return err
	}

	level, err := logger.ParseLevel(string(cfg.LogLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse log level: %v\n", err)
		return err
	}

	closer, err := logger.Init(logger.Options{
		Level:     level,
		File:      cfg.LogFile,
		IsService: logger.IsService(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return err
	}
	defer func() {
		if err := closer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
	}()

	log := logger.Default()
	log.Debug().Str("version", version.Short()).Msg("Config loaded")

	if err := pid.Write(cfg.PIDFile); err != nil {
		log.ErrorWithContext(err, "pid", "write").Str("path", cfg.PIDFile).Msg("Failed to write PID file")
		return err
	}
	defer func() {
		if err := pid.Remove(cfg.PIDFile); err != nil {
			fmt.Fprintf(os.Stderr, "failed to remove PID file: %v\n", err)
		}
	}()

	recorder, err := metrics.NewService(metrics.Config{
		Enabled:    cfg.MetricsAddr != "",
		ListenAddr: cfg.MetricsAddr,
	}, log)
	if err != nil {
		log.ErrorWithContext(err, "metrics", "init").Msg("Failed to initialize metrics")
		return err
	}

	session, err := monitor.FromConfig(cfg, log, recorder)
	if err != nil {
		log.ErrorWithContext(err, "monitor", "init").Msg("Failed to initialize monitoring session")
		if closeErr := recorder.Close(); closeErr != nil {
			log.ErrorWithContext(closeErr, "metrics", "close").Msg("Failed to close metrics")
		}
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go handleSignals(ctx, cancel, log)

	return session.Run(ctx)
}

func handleSignals(ctx context.Context, cancel context.CancelFunc, log logger.Logger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case <-sigs:
		log.Info().Msg("Received termination signal.")
		cancel()
	case <-ctx.Done():
	}
}
