package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/teslashibe/agecam/internal/config"
	"github.com/teslashibe/agecam/internal/log"
	"github.com/teslashibe/agecam/pkg/app"
)

// Version is the application version.
const Version = "0.1.0"

var (
	// cfg is shared by every subcommand and filled from env, then flags
	cfg      = defaultConfig()
	logLevel string
)

func defaultConfig() app.Config {
	c := app.DefaultConfig()
	c.LoadEnvConfig()
	return c
}

var rootCmd = &cobra.Command{
	Use:           "agecam",
	Short:         "Live webcam age estimation",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Init(logLevel)
	},
}

// Execute runs the root command with a context cancelled on Ctrl+C or SIGTERM.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.ModelsDir, "models", cfg.ModelsDir, "Directory with the cascade and age network files (env AGECAM_MODELS)")
	flags.StringVar(&cfg.AgeBackend, "age-backend", cfg.AgeBackend, "Age network backend: caffe or tflite")
	flags.StringVar(&cfg.AgeModel, "age-model", cfg.AgeModel, "Path to the .tflite age model (tflite backend)")
	flags.IntVar(&cfg.Threads, "threads", cfg.Threads, "TFLite interpreter threads (0 = default)")
	flags.StringVar(&logLevel, "log-level", config.LogLevel(), "Log level: debug, info, warn, error (env LOG_LEVEL)")
	flags.BoolVar(&cfg.Debug, "debug", false, "Enable verbose debug logging")
	flags.BoolVar(&cfg.DebugFrames, "debug-frames", false, "Log every capture tick (very verbose)")
}
