package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"framextract/internal/config"
	"framextract/internal/deps"
	"framextract/internal/failures"
	"framextract/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report decoder tools and managed directory access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			probeCtx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			var lines []string
			lines = append(lines, renderSectionHeader("Decoder", colorize)...)
			decoder := preflight.CheckDecoder(cfg)
			lines = append(lines, resultLine(decoder, statusError, colorize))
			statuses := deps.WithVersions(probeCtx, preflight.CheckSystemDeps(cfg))
			depLines, missing := dependencyLines(statuses, colorize)
			lines = append(lines, depLines...)

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Managed Directories", colorize)...)
			dirs := preflight.RunAll(probeCtx, cfg)
			for _, r := range dirs {
				lines = append(lines, resultLine(r, statusWarn, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Run Manifest", colorize)...)
			lines = append(lines, manifestLine(cfg, colorize))

			for _, line := range lines {
				fmt.Fprintln(out, line)
			}

			if !decoder.Passed || len(missing) > 0 {
				return failures.Wrap(failures.ErrConfiguration, "cli", "status", "decoder not usable: "+strings.Join(append(missing, failedNames(decoder)...), ", "), nil)
			}
			return nil
		},
	}
}

func resultLine(r preflight.Result, failKind statusKind, colorize bool) string {
	if r.Passed {
		return renderStatusLine(r.Name, statusOK, r.Detail, colorize)
	}
	return renderStatusLine(r.Name, failKind, r.Detail, colorize)
}

// dependencyLines renders binaries and returns the names of required ones
// that are missing.
func dependencyLines(statuses []deps.Status, colorize bool) ([]string, []string) {
	lines := make([]string, 0, len(statuses))
	var missing []string
	for _, dep := range statuses {
		if dep.Available {
			message := "Ready"
			if dep.Detail != "" {
				message = dep.Detail
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}
		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		if dep.Optional {
			lines = append(lines, renderStatusLine(dep.Name, statusInfo, detail+" (optional)", colorize))
			continue
		}
		lines = append(lines, renderStatusLine(dep.Name, statusError, detail, colorize))
		missing = append(missing, dep.Name)
	}
	return lines, missing
}

func manifestLine(cfg *config.Config, colorize bool) string {
	if !cfg.Manifest.Enabled {
		return renderStatusLine("Manifest", statusInfo, "Disabled", colorize)
	}
	return renderStatusLine("Manifest", statusOK, cfg.Manifest.Path, colorize)
}

func failedNames(results ...preflight.Result) []string {
	var names []string
	for _, r := range preflight.Failed(results) {
		names = append(names, r.Name)
	}
	return names
}
