package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"framextract/internal/config"
	"framextract/internal/execution"
	"framextract/internal/extraction"
	"framextract/internal/failures"
	"framextract/internal/frames"
)

// runFlags are shared by extract and plan.
type runFlags struct {
	file      string
	window    int
	delimiter string
	videos    string
	images    string
}

func (f *runFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.file, "file", "f", "", "Annotation table: a path for standalone mode, or a bare name read from the annotations directory")
	flags.IntVarP(&f.window, "window", "w", 0, "Frames to extract before and after each annotated frame (default from config)")
	flags.StringVarP(&f.delimiter, "delimiter", "d", "", "Table delimiter: a single character or tab, comma, semicolon, pipe (default auto-detect)")
	flags.StringVar(&f.videos, "videos", "", "Directory holding the videos (standalone mode)")
	flags.StringVar(&f.images, "images", "", "Directory receiving the images (standalone mode, default working directory)")
}

func (f *runFlags) options(cmd *cobra.Command, cfg *config.Config) (extraction.Options, error) {
	table := strings.TrimSpace(f.file)
	if table == "" {
		return extraction.Options{}, failures.Wrap(failures.ErrConfiguration, "cli", "parse flags", "annotation table not supplied; use -f or --file", nil)
	}
	window := cfg.Extraction.Window
	if cmd.Flags().Changed("window") {
		window = f.window
	}
	if window < 0 || window > frames.MaxRadius {
		return extraction.Options{}, failures.Wrap(failures.ErrConfiguration, "cli", "parse flags", fmt.Sprintf("--window must be between 0 and %d, got %d", frames.MaxRadius, window), nil)
	}
	wd, err := os.Getwd()
	if err != nil {
		return extraction.Options{}, failures.Wrap(failures.ErrConfiguration, "cli", "resolve working directory", "", err)
	}
	return extraction.Options{
		Config: cfg,
		Inputs: execution.Inputs{
			TablePath:  table,
			VideoRoot:  strings.TrimSpace(f.videos),
			ImageRoot:  strings.TrimSpace(f.images),
			WorkingDir: wd,
		},
		Window:    window,
		Delimiter: f.delimiter,
	}, nil
}
