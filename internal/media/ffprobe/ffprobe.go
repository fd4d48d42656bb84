package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index        int    `json:"index"`
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Duration     string `json:"duration"`
	AvgFrameRate string `json:"avg_frame_rate"`
	NBFrames     string `json:"nb_frames"`
	NBReadFrames string `json:"nb_read_frames"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// Options tunes an inspection.
type Options struct {
	// CountFrames decodes the first video stream to count frames exactly. It
	// is slow but works for containers that do not record nb_frames.
	CountFrames bool
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary, path string, opts Options) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	args := []string{"-v", "error", "-hide_banner", "-select_streams", "v:0"}
	if opts.CountFrames {
		args = append(args, "-count_frames")
	}
	args = append(args, "-show_format", "-show_streams", "-of", "json", "--", path)

	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.Output()
	if err != nil {
		detail := ""
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, detail)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// Video returns the first video stream.
func (r Result) Video() (Stream, bool) {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "video") {
			return stream, true
		}
	}
	return Stream{}, false
}

// FrameCount returns the exact number of frames in the first video stream.
// The second result is false when ffprobe reported no usable count.
func (r Result) FrameCount() (int, bool) {
	stream, ok := r.Video()
	if !ok {
		return 0, false
	}
	for _, raw := range []string{stream.NBReadFrames, stream.NBFrames} {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}

// FrameRate returns the average frame rate of the first video stream, or 0.
func (r Result) FrameRate() float64 {
	stream, ok := r.Video()
	if !ok {
		return 0
	}
	num, den, found := strings.Cut(strings.TrimSpace(stream.AvgFrameRate), "/")
	n := parseFloat(num)
	if !found {
		return finite(n)
	}
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return finite(n / d)
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return finite(parseFloat(r.Format.Duration))
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
