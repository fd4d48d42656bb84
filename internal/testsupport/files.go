package testsupport

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Image returns a solid test image of the given size.
func Image(width, height int, c color.Color) image.Image {
	return imaging.New(width, height, c)
}

// WriteJPEG writes a small solid-color JPEG to path and returns the path.
func WriteJPEG(t testing.TB, path string, width, height int) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	img := Image(width, height, color.NRGBA{R: 200, G: 80, B: 40, A: 255})
	if err := imaging.Save(img, path, imaging.JPEGQuality(90)); err != nil {
		t.Fatalf("save jpeg %s: %v", path, err)
	}
	return path
}

// StubFFmpeg writes an ffmpeg stand-in into dir that prints fixture for any
// selected frame below failFrom and exits non-zero otherwise. It returns the
// stub path.
func StubFFmpeg(t testing.TB, dir, fixture string, failFrom int) string {
	t.Helper()

	script := fmt.Sprintf(`#!/bin/sh
frame=""
for a in "$@"; do
  case "$a" in
    select=eq*) frame=${a##*,}; frame=${frame%%)} ;;
  esac
done
if [ -n "$frame" ] && [ "$frame" -ge %d ]; then
  echo "frame $frame not available" >&2
  exit 1
fi
cat '%s'
`, failFrom, fixture)
	path := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}
	return path
}

// AnnotationHeader is the legacy tab-separated header row.
var AnnotationHeader = []string{
	"Number", "FilenameLeft", "FrameLeft", "FilenameRight", "FrameRight",
	"Length", "Family", "Genus", "Species",
}

// WriteTable writes a tab-separated annotation table with the legacy header
// followed by rows, and returns its path.
func WriteTable(t testing.TB, path string, rows ...[]string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString(strings.Join(AnnotationHeader, "\t"))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write table %s: %v", path, err)
	}
	return path
}
