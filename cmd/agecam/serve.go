package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/teslashibe/agecam/pkg/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the live age detector with the web dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&cfg.Addr, "addr", cfg.Addr, "Dashboard listen address, empty to disable (env AGECAM_ADDR)")
	serveCmd.Flags().IntVar(&cfg.Device, "device", cfg.Device, "Camera device index (env AGECAM_DEVICE)")
	serveCmd.Flags().DurationVar(&cfg.Interval, "interval", cfg.Interval, "Capture tick period")
	serveCmd.Flags().BoolVar(&cfg.Window, "window", false, "Also show a native preview window (s start, x stop, q quit)")
	serveCmd.Flags().BoolVar(&cfg.AutoStart, "autostart", false, "Start the camera immediately")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, cfg app.Config) error {
	a, err := app.New(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "🎥 Age Detector")
	if err := a.Init(); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer a.Shutdown()

	if cfg.Addr != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "🌐 Dashboard on %s (Ctrl+C to exit)\n", cfg.Addr)
	}
	return a.Run(cmd.Context())
}
