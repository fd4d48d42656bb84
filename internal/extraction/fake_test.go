package extraction

import (
	"context"
	"errors"
	"image"
	"image/color"
	"path/filepath"

	"framextract/internal/failures"
	"framextract/internal/testsupport"
	"framextract/internal/video"
)

// fakeOpener serves solid images for indices below a per-video frame count.
type fakeOpener struct {
	counts  map[string]int
	opened  []string
	decoded []int
	open    int
	maxOpen int
}

func newFakeOpener(counts map[string]int) *fakeOpener {
	return &fakeOpener{counts: counts}
}

func (f *fakeOpener) Open(_ context.Context, path string) (video.Handle, error) {
	if err := video.CheckExists(path); err != nil {
		return nil, err
	}
	f.opened = append(f.opened, filepath.Base(path))
	f.open++
	f.maxOpen = max(f.maxOpen, f.open)
	count, ok := f.counts[filepath.Base(path)]
	if !ok {
		count = 1 << 20
	}
	return &fakeHandle{opener: f, path: path, count: count}, nil
}

type fakeHandle struct {
	opener *fakeOpener
	path   string
	count  int
	closed bool
}

func (h *fakeHandle) Decode(_ context.Context, index int) (image.Image, error) {
	if h.closed {
		return nil, errors.New("decode after close")
	}
	if index < 0 || index >= h.count {
		return nil, &failures.FrameError{Video: h.path, Frame: index}
	}
	h.opener.decoded = append(h.opener.decoded, index)
	return testsupport.Image(4, 3, color.Gray{Y: uint8(index % 256)}), nil
}

func (h *fakeHandle) Close() error {
	if !h.closed {
		h.closed = true
		h.opener.open--
	}
	return nil
}
