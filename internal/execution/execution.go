// Package execution decides where an extraction run reads its annotation
// table and videos from and where it writes images.
//
// A bare table name selects managed mode: the table, videos and images live
// under fixed convention roots. A table path with a directory component
// selects standalone mode, where the caller supplies the roots.
package execution

import (
	"fmt"
	"path/filepath"
	"strings"

	"framextract/internal/failures"
)

// Mode tags how the run roots were resolved.
type Mode int

const (
	Standalone Mode = iota + 1
	Managed
)

func (m Mode) String() string {
	switch m {
	case Standalone:
		return "standalone"
	case Managed:
		return "managed"
	default:
		return "unknown"
	}
}

// Inputs are the caller-supplied values. Empty roots mean "not supplied".
type Inputs struct {
	TablePath  string
	VideoRoot  string
	ImageRoot  string
	WorkingDir string
}

// Conventions are the managed-mode roots.
type Conventions struct {
	AnnotationsDir string
	VideosDir      string
	ImagesDir      string
}

// Context is the resolved, read-only set of run locations.
type Context struct {
	Mode      Mode
	TablePath string
	VideoRoot string
	ImageRoot string
}

// Resolution pairs the resolved context with warnings the caller should log.
type Resolution struct {
	Context  Context
	Warnings []string
}

// Resolve computes the execution context. It never touches the filesystem and
// never changes the process working directory.
func Resolve(in Inputs, conv Conventions) (Resolution, error) {
	table := strings.TrimSpace(in.TablePath)
	if table == "" {
		return Resolution{}, failures.Wrap(failures.ErrConfiguration, "execution", "resolve", "annotation table path is required", nil)
	}
	videoRoot := strings.TrimSpace(in.VideoRoot)
	imageRoot := strings.TrimSpace(in.ImageRoot)
	workDir := strings.TrimSpace(in.WorkingDir)

	if !hasDirComponent(table) {
		return resolveManaged(table, videoRoot, imageRoot, conv)
	}

	if videoRoot == "" {
		return Resolution{}, failures.Wrap(
			failures.ErrConfiguration,
			"execution",
			"resolve",
			fmt.Sprintf("a video directory is required when the table is given as a path (%s); pass --videos", table),
			nil,
		)
	}
	var res Resolution
	if imageRoot == "" {
		if workDir == "" {
			return Resolution{}, failures.Wrap(failures.ErrConfiguration, "execution", "resolve", "working directory unknown and no image directory supplied", nil)
		}
		imageRoot = workDir
		res.Warnings = append(res.Warnings, fmt.Sprintf("no image directory supplied; images will be written under the working directory %s", workDir))
	}
	res.Context = Context{
		Mode:      Standalone,
		TablePath: absolute(table, workDir),
		VideoRoot: absolute(videoRoot, workDir),
		ImageRoot: absolute(imageRoot, workDir),
	}
	return res, nil
}

func resolveManaged(table, videoRoot, imageRoot string, conv Conventions) (Resolution, error) {
	if conv.AnnotationsDir == "" || conv.VideosDir == "" || conv.ImagesDir == "" {
		return Resolution{}, failures.Wrap(failures.ErrConfiguration, "execution", "resolve", "managed directories are not configured", nil)
	}
	var res Resolution
	if videoRoot != "" || imageRoot != "" {
		res.Warnings = append(res.Warnings, "table given by name; supplied video/image directories are ignored in favor of managed directories")
	}
	res.Context = Context{
		Mode:      Managed,
		TablePath: filepath.Join(conv.AnnotationsDir, table),
		VideoRoot: filepath.Clean(conv.VideosDir),
		ImageRoot: filepath.Clean(conv.ImagesDir),
	}
	return res, nil
}

// hasDirComponent inspects the raw path; filepath.Dir would clean "./t.tsv"
// down to a bare name.
func hasDirComponent(p string) bool {
	return strings.ContainsRune(p, filepath.Separator) || strings.ContainsRune(p, '/')
}

func absolute(p, base string) string {
	if filepath.IsAbs(p) || base == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
