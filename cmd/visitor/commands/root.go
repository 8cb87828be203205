package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"resume-visitor/internal/components/config"
	"resume-visitor/internal/components/telemetry"

	"github.com/spf13/cobra"
)

var (
	verbose    *bool
	configPath *string
)

var otelProviders telemetry.Telemetry

var rootCmd = &cobra.Command{
	Use:   "visitor",
	Short: "visitor reports and verifies the visitor count of the resume site.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
		initOtel(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		shutdownOtel()
	},
}

func init() {
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging/instrumentation.")
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The config file to read.")
}

func initOtel(ctx context.Context) {
	t, err := telemetry.SetupFromEnv(ctx, "resume-visitor")
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no telemetry.json5 found, otel exporters disabled")
		return
	}
	if err != nil {
		slog.Warn("failed to setup telemetry", "err", err)
		return
	}
	otelProviders = t
}

func shutdownOtel() {
	err := otelProviders.Shutdown(context.Background())
	if err != nil {
		slog.Warn("failed to shutdown telemetry", "err", err)
	}
}

// exit flushes telemetry before exiting, os.Exit skips PersistentPostRun.
func exit(code int) {
	shutdownOtel()
	os.Exit(code)
}

func readConfig() (Config, error) {
	cfg, err := config.Read[Config](*configPath)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file found, using defaults", "path", *configPath)
		return Config{}, nil
	}
	return cfg, err
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
