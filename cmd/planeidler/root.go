package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"planeidler-sim/internal/logging"
)

var (
	logLevel string
	logPath  string
)

var rootCmd = &cobra.Command{
	Use:   "planeidler",
	Short: "PlaneIdler airport simulation toolkit",
	Long:  "planeidler runs the airport idle simulation headless, replays flight event logs and inspects the catalog.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnv(cmd, ".env")
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the process logger from the persistent flags and makes
// it the slog default. quiet drops console output, for the TUI.
func newLogger(quiet bool) (*slog.Logger, io.Closer, error) {
	opts := logging.Options{Level: logLevel, File: logPath}
	if quiet {
		opts.Out = io.Discard
	}
	l, closer, err := logging.NewWithOptions(opts)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(l)
	return l, closer, nil
}

// envFlags maps flags to the environment variables that supply their
// defaults when the flag is not given on the command line.
var envFlags = map[string]string{
	"log-level":  "LOG_LEVEL",
	"log-path":   "LOG_PATH",
	"admin-addr": "ADMIN_ADDR",
}

// loadEnv reads the dotenv files into the environment and then applies
// envFlags to cmd. Flags are parsed before this runs, so defaults taken from
// the environment at init time would miss the dotenv values.
func loadEnv(cmd *cobra.Command, files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	for name, key := range envFlags {
		f := cmd.Flags().Lookup(name)
		if f == nil || f.Changed {
			continue
		}
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		if err := f.Value.Set(v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log-path", "", "Write logs as JSON to this rotated file instead of STDOUT")
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(catalogCmd)
}
