//go:build !opencv

package video

import "framextract/internal/failures"

// OpenCVAvailable reports whether this binary was built with the gocv backend.
const OpenCVAvailable = false

func newOpenCVOpener(Options) (Opener, error) {
	return nil, failures.Wrap(failures.ErrConfiguration, "video", "select decoder", `decoder "opencv" requires a build with -tags opencv`, nil)
}
