package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"framextract/internal/config"
	"framextract/internal/failures"
	"framextract/internal/logging"
)

// Opener opens video files for frame decoding.
type Opener interface {
	Open(ctx context.Context, path string) (Handle, error)
}

// Handle decodes frames from one open video.
type Handle interface {
	Decode(ctx context.Context, index int) (image.Image, error)
	Close() error
}

// Options configures backend selection.
type Options struct {
	Decoder       string
	FFmpegBinary  string
	FFprobeBinary string
	// ProbeFrameCount enables exact boundary checks against the stream
	// frame count.
	ProbeFrameCount bool
	Logger          *slog.Logger
}

// OptionsFromConfig maps extraction config onto decoder options.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	if cfg == nil {
		return Options{Logger: logger}
	}
	return Options{
		Decoder:         cfg.Extraction.Decoder,
		FFmpegBinary:    cfg.FFmpegBinary(),
		FFprobeBinary:   cfg.FFprobeBinary(),
		ProbeFrameCount: cfg.Extraction.ProbeFrameCount,
		Logger:          logger,
	}
}

// NewOpener returns the backend named by opts.Decoder.
func NewOpener(opts Options) (Opener, error) {
	opts.Logger = logging.NewComponentLogger(opts.Logger, "video")
	switch strings.ToLower(strings.TrimSpace(opts.Decoder)) {
	case "", config.DecoderFFmpeg:
		return NewFFmpegOpener(opts), nil
	case config.DecoderOpenCV:
		return newOpenCVOpener(opts)
	default:
		return nil, failures.Wrap(failures.ErrConfiguration, "video", "select decoder", fmt.Sprintf("unknown decoder %q", opts.Decoder), nil)
	}
}

// CheckExists reports ErrNotFound unless path is an existing regular file.
// Every backend runs it before opening a video.
func CheckExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return failures.Wrap(failures.ErrNotFound, "video", "open", fmt.Sprintf("video file %s does not exist", path), nil)
		}
		return failures.Wrap(failures.ErrNotFound, "video", "open", fmt.Sprintf("video file %s is not accessible", path), err)
	}
	if info.IsDir() {
		return failures.Wrap(failures.ErrNotFound, "video", "open", fmt.Sprintf("video path %s is a directory", path), nil)
	}
	return nil
}

// bounds tracks an optional known frame count.
type bounds struct {
	count int
	known bool
}

func (b bounds) check(video string, index int) error {
	if index < 0 || (b.known && index >= b.count) {
		detail := fmt.Errorf("index %d outside [0, %d)", index, b.count)
		if !b.known {
			detail = fmt.Errorf("index %d is negative", index)
		}
		return &failures.FrameError{Video: video, Frame: index, OutOfRange: true, Err: detail}
	}
	return nil
}

var errClosed = errors.New("video handle closed")
