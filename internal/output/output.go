// Package output names and writes extracted frames.
//
// Dir and Filename are pure functions of the frame request, so repeated runs
// over the same table produce identical paths and overwrite earlier output
// instead of duplicating it.
package output

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"framextract/internal/annotation"
	"framextract/internal/failures"
	"framextract/internal/fileutil"
	"framextract/internal/frames"
	"framextract/internal/logging"
	"framextract/internal/textutil"
)

// Extension is the fixed file extension of written frames.
const Extension = ".jpg"

// Dir returns imageRoot/family/genus/species with each segment lowercased.
func Dir(imageRoot string, meta annotation.Metadata) string {
	return filepath.Join(
		imageRoot,
		segment(meta.Family, annotation.PlaceholderFamily),
		segment(meta.Genus, annotation.PlaceholderGenus),
		segment(meta.Species, annotation.PlaceholderSpecies),
	)
}

// Filename returns <base>_frame-<padded index>_length-<length>.jpg where base
// is the video file name without its extension and with spaces replaced by
// underscores.
func Filename(videoFile string, index, width int, meta annotation.Metadata) string {
	name := filepath.Base(videoFile)
	base := textutil.Underscore(strings.TrimSuffix(name, filepath.Ext(name)))
	length := strings.TrimSpace(meta.Length)
	if length == "" {
		length = annotation.PlaceholderLength
	}
	length = textutil.PathSegment(length, annotation.PlaceholderLength)
	return fmt.Sprintf("%s_frame-%s_length-%s%s", base, frames.Pad(index, width), length, Extension)
}

func segment(value, fallback string) string {
	return textutil.PathSegment(textutil.Lower(value), fallback)
}

// Writer encodes frames to JPEG and writes them atomically. Bucket
// directories are created on first use and remembered for the life of the
// writer. A Writer is not safe for concurrent use.
type Writer struct {
	quality int
	made    map[string]struct{}
	logger  *slog.Logger
}

// NewWriter returns a writer encoding at the given JPEG quality (1-100).
// Out-of-range values fall back to 95.
func NewWriter(quality int, logger *slog.Logger) *Writer {
	if quality < 1 || quality > 100 {
		quality = 95
	}
	return &Writer{
		quality: quality,
		made:    make(map[string]struct{}),
		logger:  logging.NewComponentLogger(logger, "output"),
	}
}

// Write stores img at dir/name and returns the full path.
func (w *Writer) Write(dir, name string, img image.Image) (string, error) {
	if img == nil {
		return "", failures.Wrap(failures.ErrWrite, "output", "write", fmt.Sprintf("no image for %s", name), nil)
	}
	if err := w.ensureDir(dir); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	err := fileutil.WriteAtomic(path, 0o644, func(out io.Writer) error {
		return imaging.Encode(out, img, imaging.JPEG, imaging.JPEGQuality(w.quality))
	})
	if err != nil {
		return "", failures.Wrap(failures.ErrWrite, "output", "write", path, err)
	}
	return path, nil
}

// Created reports how many distinct directories the writer has ensured.
func (w *Writer) Created() int {
	return len(w.made)
}

func (w *Writer) ensureDir(dir string) error {
	if _, ok := w.made[dir]; ok {
		return nil
	}
	if err := mkdirAll(dir); err != nil {
		return failures.Wrap(failures.ErrWrite, "output", "create directory", dir, err)
	}
	w.made[dir] = struct{}{}
	w.logger.Debug("image directory ready", logging.String("dir", dir))
	return nil
}
