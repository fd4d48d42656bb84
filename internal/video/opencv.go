//go:build opencv

package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"gocv.io/x/gocv"

	"framextract/internal/failures"
	"framextract/internal/logging"
)

// OpenCVAvailable reports whether this binary was built with the gocv backend.
const OpenCVAvailable = true

type openCVOpener struct {
	probeFrameCount bool
	logger          *slog.Logger
}

func newOpenCVOpener(opts Options) (Opener, error) {
	return &openCVOpener{
		probeFrameCount: opts.ProbeFrameCount,
		logger:          logging.NewComponentLogger(opts.Logger, "video"),
	}, nil
}

func (o *openCVOpener) Open(ctx context.Context, path string) (Handle, error) {
	if err := CheckExists(path); err != nil {
		return nil, err
	}
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, &failures.FrameError{Video: path, Frame: 0, Err: fmt.Errorf("open capture: %w", err)}
	}
	h := &openCVHandle{path: path, capture: capture, mat: gocv.NewMat()}
	if o.probeFrameCount {
		if n := int(capture.Get(gocv.VideoCaptureFrameCount)); n > 0 {
			h.bounds = bounds{count: n, known: true}
			o.logger.Debug("frame count probed",
				logging.String(logging.FieldVideo, path),
				logging.Int("frame_count", n),
			)
		}
	}
	return h, nil
}

type openCVHandle struct {
	path    string
	capture *gocv.VideoCapture
	mat     gocv.Mat
	bounds  bounds
}

func (h *openCVHandle) Decode(ctx context.Context, index int) (image.Image, error) {
	if h.capture == nil {
		return nil, &failures.FrameError{Video: h.path, Frame: index, Err: errClosed}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := h.bounds.check(h.path, index); err != nil {
		return nil, err
	}
	h.capture.Set(gocv.VideoCapturePosFrames, float64(index))
	if ok := h.capture.Read(&h.mat); !ok || h.mat.Empty() {
		return nil, &failures.FrameError{Video: h.path, Frame: index, Err: errors.New("capture returned no frame")}
	}
	img, err := h.mat.ToImage()
	if err != nil {
		return nil, &failures.FrameError{Video: h.path, Frame: index, Err: fmt.Errorf("convert frame: %w", err)}
	}
	return img, nil
}

func (h *openCVHandle) Close() error {
	if h.capture == nil {
		return nil
	}
	err := h.capture.Close()
	_ = h.mat.Close()
	h.capture = nil
	return err
}
