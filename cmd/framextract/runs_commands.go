package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"framextract/internal/failures"
	"framextract/internal/manifest"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the extraction run history",
	}
	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	return runsCmd
}

// withManifest opens the run manifest for the duration of fn.
func (c *commandContext) withManifest(fn func(*manifest.Store) error) error {
	store, err := c.openManifest()
	if err != nil {
		return err
	}
	if store == nil {
		return failures.Wrap(failures.ErrConfiguration, "cli", "open manifest", "run manifest is disabled (manifest.enabled = false)", nil)
	}
	defer store.Close()
	return fn(store)
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManifest(func(store *manifest.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					if runs == nil {
						runs = []manifest.Run{}
					}
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, r := range runs {
					rows = append(rows, []string{
						shortID(r.ID),
						formatTime(r.StartedAt),
						string(r.Status),
						r.Mode,
						strconv.Itoa(r.Window),
						strconv.Itoa(r.FramesWritten),
						r.TablePath,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Started", "Status", "Mode", "Window", "Frames", "Table"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output runs as JSON")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var showFrames bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run by ID or unique ID prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManifest(func(store *manifest.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					if errors.Is(err, manifest.ErrAmbiguousID) {
						return failures.Wrap(failures.ErrConfiguration, "cli", "show run", "", err)
					}
					return err
				}
				if run == nil {
					return failures.Wrap(failures.ErrNotFound, "cli", "show run", "no run matches "+args[0], nil)
				}

				out := cmd.OutOrStdout()
				finished := "-"
				if run.FinishedAt != nil {
					finished = formatTime(*run.FinishedAt)
				}
				rows := [][]string{
					{"ID", run.ID},
					{"Status", string(run.Status)},
					{"Mode", run.Mode},
					{"Table", run.TablePath},
					{"Videos", run.VideoRoot},
					{"Images", run.ImageRoot},
					{"Window", strconv.Itoa(run.Window)},
					{"Frames written", strconv.Itoa(run.FramesWritten)},
					{"Started", formatTime(run.StartedAt)},
					{"Finished", finished},
				}
				if run.ErrorKind != "" {
					rows = append(rows, []string{"Error", run.ErrorKind + ": " + run.ErrorMessage})
				}
				fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))

				if !showFrames {
					return nil
				}
				frames, err := store.Frames(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				if len(frames) == 0 {
					fmt.Fprintln(out, "No frames recorded")
					return nil
				}
				frameRows := make([][]string, 0, len(frames))
				for _, f := range frames {
					frameRows = append(frameRows, []string{f.Channel, f.Video, strconv.Itoa(f.Center), strconv.Itoa(f.Index), f.Path})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Channel", "Video", "Center", "Frame", "Path"},
					frameRows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&showFrames, "frames", false, "List every frame the run wrote")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
