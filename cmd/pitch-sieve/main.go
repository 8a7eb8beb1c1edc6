package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"pitch-sieve/internal/config"
	"pitch-sieve/internal/logger"

	"github.com/spf13/cobra"
)

const AppVersion = "0.3.0"

var (
	cfgFile   string
	logLevel  string
	logFormat string

	cfg    *config.Config
	appLog *logger.ZerologAdapter
)

func main() {
	configureRuntime()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "pitch-sieve:", err)
		os.Exit(1)
	}
}

// configureRuntime favours throughput for decode-heavy workloads.
func configureRuntime() {
	runtime.GOMAXPROCS(runtime.NumCPU())
	if os.Getenv("GOGC") == "" {
		// Mats live in C memory; the Go heap stays small.
		debug.SetGCPercent(200)
	}
}

var rootCmd = &cobra.Command{
	Use:           "pitch-sieve",
	Short:         "Curate usable frames from sports broadcast footage",
	Version:       AppVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("log-level") {
			loaded.Log.Level = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			loaded.Log.Format = logFormat
		}

		level, err := logger.ParseLevel(loaded.Log.Level)
		if err != nil {
			return err
		}
		cfg = loaded
		appLog = logger.New(loaded.Log.Format, level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "console or json")

	rootCmd.AddCommand(newExtractCmd())
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(newConfigCmd())

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\n\n%s", err, cmd.UsageString())
	})
}
