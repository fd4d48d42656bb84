package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"framextract/internal/extraction"
	"framextract/internal/output"
)

type plannedFrame struct {
	Channel string `json:"channel"`
	Video   string `json:"video"`
	Center  int    `json:"center"`
	Frame   int    `json:"frame"`
	Output  string `json:"output"`
}

type planView struct {
	Mode      string         `json:"mode"`
	Table     string         `json:"table"`
	VideoRoot string         `json:"video_root"`
	ImageRoot string         `json:"image_root"`
	Window    int            `json:"window"`
	Warnings  []string       `json:"warnings,omitempty"`
	Dropped   int            `json:"dropped_duplicates"`
	Frames    []plannedFrame `json:"frames"`
}

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the frames an extraction would write without decoding anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, cfg)
			if err != nil {
				return err
			}
			prep, err := extraction.Prepare(opts)
			if err != nil {
				return err
			}

			view := buildPlanView(prep)
			if asJSON {
				return writeJSON(cmd, view)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Mode: %s\nTable: %s\nVideos: %s\nImages: %s\nWindow: %d\n",
				view.Mode, view.Table, view.VideoRoot, view.ImageRoot, view.Window)
			for _, w := range view.Warnings {
				fmt.Fprintf(out, "Warning: %s\n", w)
			}
			for _, cp := range prep.Plan.Channels {
				for _, g := range cp.Groups {
					if len(g.Dropped) > 0 {
						fmt.Fprintf(out, "Dropped duplicate frames %s for %s (%s)\n", joinInts(g.Dropped), g.Video, g.Channel)
					}
				}
			}
			if len(view.Frames) == 0 {
				fmt.Fprintln(out, "No frames to extract")
				return nil
			}

			rows := make([][]string, 0, len(view.Frames))
			for _, f := range view.Frames {
				rows = append(rows, []string{f.Channel, f.Video, strconv.Itoa(f.Center), strconv.Itoa(f.Frame), f.Output})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Channel", "Video", "Center", "Frame", "Output"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d frames planned\n", len(view.Frames))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the plan as JSON")
	return cmd
}

func buildPlanView(prep *extraction.Prepared) planView {
	view := planView{
		Mode:      prep.Context.Mode.String(),
		Table:     prep.Context.TablePath,
		VideoRoot: prep.Context.VideoRoot,
		ImageRoot: prep.Context.ImageRoot,
		Window:    prep.Plan.Radius,
		Warnings:  prep.Warnings,
		Dropped:   prep.Plan.DroppedCount(),
		Frames:    make([]plannedFrame, 0, prep.Plan.Total()),
	}
	for _, cp := range prep.Plan.Channels {
		for _, g := range cp.Groups {
			for _, req := range g.Requests {
				dir := output.Dir(prep.Context.ImageRoot, req.Meta)
				target := filepath.Join(dir, output.Filename(req.Video, req.Frame, req.Width, req.Meta))
				if rel, err := filepath.Rel(prep.Context.ImageRoot, target); err == nil {
					target = rel
				}
				view.Frames = append(view.Frames, plannedFrame{
					Channel: string(req.Channel),
					Video:   req.Video,
					Center:  req.Center,
					Frame:   req.Frame,
					Output:  target,
				})
			}
		}
	}
	return view
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
