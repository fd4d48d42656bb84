// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: per-stream properties including frame counts and rates
//
// Inspect runs ffprobe against a file. Result.FrameCount reports the exact
// frame count of the first video stream when the container records one, which
// the video package uses for precise boundary checks.
package ffprobe
