package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"framextract/internal/annotation"
	"framextract/internal/extraction"
	"framextract/internal/logging"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	var verbose bool

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract annotated frames into the image tree",
		Long: `Extract reads the annotation table, expands every annotated frame into its
window and writes one JPEG per frame under <images>/<family>/<genus>/<species>/.

A table path with a directory component runs in standalone mode and needs
--videos. A bare table name runs in managed mode against the configured
annotations, videos and images directories.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, cfg)
			if err != nil {
				return err
			}

			logger, closer, err := ctx.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()
			opts.Logger = logger

			store, err := ctx.openManifest()
			if err != nil {
				logging.WarnWithContext(logger, "run manifest unavailable", "manifest_open_failed",
					logging.String(logging.FieldImpact, "run is not recorded in history"),
					logging.Error(err),
				)
			} else if store != nil {
				defer store.Close()
				opts.Manifest = store
			}

			out := cmd.OutOrStdout()
			var progress *progressReporter
			switch {
			case verbose:
				opts.Reporter = newNarrationReporter(out)
			case shouldColorize(cmd.ErrOrStderr()):
				progress = newProgressReporter(cmd.ErrOrStderr())
				opts.Reporter = progress
			}

			summary, err := extraction.Run(cmd.Context(), opts)
			if progress != nil {
				progress.finish()
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(out, renderSummary(summary))
			fmt.Fprintln(out, "Done!")
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every successful read and write")
	return cmd
}

func renderSummary(s extraction.Summary) string {
	runID := s.RunID
	if runID == "" {
		runID = "-"
	}
	rows := [][]string{
		{"Run", runID},
		{"Mode", s.Context.Mode.String()},
		{"Image root", s.Context.ImageRoot},
		{"Left frames", strconv.Itoa(s.Channels[annotation.Left])},
		{"Right frames", strconv.Itoa(s.Channels[annotation.Right])},
		{"Written", fmt.Sprintf("%d of %d", s.Written, s.Planned)},
		{"Dropped duplicates", strconv.Itoa(s.Dropped)},
		{"Elapsed", s.Elapsed.Round(time.Millisecond).String()},
	}
	return renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft})
}
