package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"framextract/internal/config"
	"framextract/internal/deps"
	"framextract/internal/execution"
	"framextract/internal/failures"
	"framextract/internal/video"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckDirectoryReadable verifies that the directory exists and can be listed.
func CheckDirectoryReadable(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "read ok")
}

// CheckOutputDirectory passes when path is a writable directory or when it
// does not exist yet but its nearest existing ancestor is writable.
func CheckOutputDirectory(name, path string) Result {
	if _, err := os.Stat(path); err == nil || !errors.Is(err, fs.ErrNotExist) {
		return CheckDirectoryAccess(name, path)
	}
	parent := filepath.Dir(path)
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	res := CheckDirectoryAccess(name, parent)
	if !res.Passed {
		res.Detail = fmt.Sprintf("%s (error: cannot be created under %s)", path, parent)
		return res
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

func checkDirectory(name, path string, mode uint32, ok string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, ok)}
}

// CheckRunRoots validates the resolved roots of an extraction run. A missing
// or unreadable video root is ErrNotFound; an image root that cannot be
// written is ErrWrite.
func CheckRunRoots(ctx execution.Context) error {
	if res := CheckDirectoryReadable("video root", ctx.VideoRoot); !res.Passed {
		return failures.Wrap(failures.ErrNotFound, "preflight", "video root", res.Detail, nil)
	}
	if res := CheckOutputDirectory("image root", ctx.ImageRoot); !res.Passed {
		return failures.Wrap(failures.ErrWrite, "preflight", "image root", res.Detail, nil)
	}
	return nil
}

// CheckSystemDeps evaluates the external binaries the configured decoder needs.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	usesFFmpeg := cfg.Extraction.Decoder != config.DecoderOpenCV
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for frame decoding",
			Optional:    !usesFFmpeg,
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Used for exact frame-count boundary checks",
			Optional:    !(usesFFmpeg && cfg.Extraction.ProbeFrameCount),
		},
	}
	return deps.CheckBinaries(requirements)
}

// CheckDecoder reports whether the configured decoder backend is usable in
// this build.
func CheckDecoder(cfg *config.Config) Result {
	const name = "Decoder"
	switch cfg.Extraction.Decoder {
	case config.DecoderOpenCV:
		if !video.OpenCVAvailable {
			return Result{Name: name, Detail: "opencv (error: binary built without -tags opencv)"}
		}
		return Result{Name: name, Passed: true, Detail: "opencv (gocv)"}
	default:
		return Result{Name: name, Passed: true, Detail: "ffmpeg"}
	}
}
