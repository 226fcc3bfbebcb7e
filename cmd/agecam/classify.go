package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/teslashibe/agecam/internal/log"
	"github.com/teslashibe/agecam/pkg/app"
	"github.com/teslashibe/agecam/pkg/debug"
)

var outDir string

var classifyCmd = &cobra.Command{
	Use:   "classify FILE...",
	Short: "Estimate the age of the first face in each image",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClassify(cmd, cfg, args)
	},
}

func init() {
	classifyCmd.Flags().StringVarP(&outDir, "out", "o", "", "Write annotated images to this directory")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, cfg app.Config, files []string) error {
	debug.Enabled = cfg.Debug

	models, err := app.LoadModels(cfg)
	if err != nil {
		return err
	}
	defer models.Close()
	ann := models.Annotator()

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	var bar *progressbar.ProgressBar
	if len(files) > 1 {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("🔍 Classifying"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	failed := 0
	for _, file := range files {
		if ctxErr := cmd.Context().Err(); ctxErr != nil {
			return ctxErr
		}

		res, err := app.ClassifyImage(ann, file, outputPath(outDir, file))
		switch {
		case err != nil:
			failed++
			log.Warn("classify failed", "file", file, "error", err)
		case res.Found:
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", file, res.Label)
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "%s\tno face\n", file)
		}

		if bar != nil {
			bar.Add(1)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(files))
	}
	return nil
}

// outputPath maps an input image to its annotated copy in dir.
func outputPath(dir, file string) string {
	if dir == "" {
		return ""
	}
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return filepath.Join(dir, base+"_age.jpg")
}
