package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/disintegration/imaging"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"framextract/internal/failures"
	"framextract/internal/logging"
	"framextract/internal/media/ffprobe"
)

func init() {
	ffmpeg.LogCompiledCommand = false
}

// FFmpegOpener decodes frames by running ffmpeg once per frame.
type FFmpegOpener struct {
	binary          string
	probeBinary     string
	probeFrameCount bool
	logger          *slog.Logger
}

// NewFFmpegOpener constructs the ffmpeg backend.
func NewFFmpegOpener(opts Options) *FFmpegOpener {
	binary := strings.TrimSpace(opts.FFmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegOpener{
		binary:          binary,
		probeBinary:     strings.TrimSpace(opts.FFprobeBinary),
		probeFrameCount: opts.ProbeFrameCount,
		logger:          logging.NewComponentLogger(opts.Logger, "video"),
	}
}

// Open verifies the file exists and, when enabled, probes its frame count.
func (o *FFmpegOpener) Open(ctx context.Context, path string) (Handle, error) {
	if err := CheckExists(path); err != nil {
		return nil, err
	}
	h := &ffmpegHandle{opener: o, path: path}
	if o.probeFrameCount {
		if n, ok := o.streamFrameTotal(ctx, path); ok {
			h.bounds = bounds{count: n, known: true}
		}
	}
	return h, nil
}

// streamFrameTotal reads nb_frames from the container and falls back to a
// decoding frame count when the container does not record one.
func (o *FFmpegOpener) streamFrameTotal(ctx context.Context, path string) (int, bool) {
	for _, opts := range []ffprobe.Options{{}, {CountFrames: true}} {
		result, err := ffprobe.Inspect(ctx, o.probeBinary, path, opts)
		if err != nil {
			o.logger.Debug("frame count probe failed; boundary check disabled",
				logging.String(logging.FieldVideo, path),
				logging.Error(err),
			)
			return 0, false
		}
		if n, ok := result.FrameCount(); ok {
			o.logger.Debug("frame count probed",
				logging.String(logging.FieldVideo, path),
				logging.Int("frame_count", n),
				logging.Bool("counted", opts.CountFrames),
				logging.Any("frame_rate", result.FrameRate()),
				logging.Any("duration_seconds", result.DurationSeconds()),
			)
			return n, true
		}
	}
	o.logger.Debug("frame count unavailable; boundary check disabled", logging.String(logging.FieldVideo, path))
	return 0, false
}

type ffmpegHandle struct {
	opener *FFmpegOpener
	path   string
	bounds bounds
	closed bool
}

func (h *ffmpegHandle) Decode(ctx context.Context, index int) (image.Image, error) {
	if h.closed {
		return nil, &failures.FrameError{Video: h.path, Frame: index, Err: errClosed}
	}
	if err := h.bounds.check(h.path, index); err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, h.opener.binary, FrameArgs(h.path, index)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			err = fmt.Errorf("%w: %s", err, detail)
		}
		return nil, &failures.FrameError{Video: h.path, Frame: index, Err: fmt.Errorf("ffmpeg: %w", err)}
	}
	if stdout.Len() == 0 {
		return nil, &failures.FrameError{Video: h.path, Frame: index, Err: errors.New("ffmpeg produced no image")}
	}
	img, err := imaging.Decode(&stdout)
	if err != nil {
		return nil, &failures.FrameError{Video: h.path, Frame: index, Err: fmt.Errorf("decode jpeg: %w", err)}
	}
	return img, nil
}

func (h *ffmpegHandle) Close() error {
	h.closed = true
	return nil
}

// FrameArgs returns the ffmpeg arguments that write frame index of path to
// stdout as a single JPEG.
func FrameArgs(path string, index int) []string {
	stream := ffmpeg.Input(path).
		Output("pipe:", ffmpeg.KwArgs{
			"vf":      fmt.Sprintf(`select=eq(n\,%d)`, index),
			"vframes": 1,
			"format":  "image2",
			"vcodec":  "mjpeg",
		})
	return append([]string{"-hide_banner", "-loglevel", "error", "-nostdin"}, stream.GetArgs()...)
}
