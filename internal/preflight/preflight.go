package preflight

import (
	"context"

	"framextract/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll checks the managed-mode directories for the given config.
func RunAll(_ context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	return []Result{
		CheckDirectoryReadable("Annotations directory", cfg.Paths.AnnotationsDir),
		CheckDirectoryReadable("Videos directory", cfg.Paths.VideosDir),
		CheckOutputDirectory("Images directory", cfg.Paths.ImagesDir),
	}
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
