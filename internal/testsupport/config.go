package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"framextract/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.AnnotationsDir = filepath.Join(base, "annotations")
	cfgVal.Paths.VideosDir = filepath.Join(base, "videos")
	cfgVal.Paths.ImagesDir = filepath.Join(base, "images")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Manifest.Path = filepath.Join(base, "manifest.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithManifestDisabled turns off the run manifest.
func WithManifestDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Manifest.Enabled = false
	}
}

// WithWindow sets the default window radius.
func WithWindow(radius int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Extraction.Window = radius
	}
}

// WithManagedDirs creates the managed annotation, video and image roots.
func WithManagedDirs() ConfigOption {
	return func(b *configBuilder) {
		for _, dir := range []string{b.cfg.Paths.AnnotationsDir, b.cfg.Paths.VideosDir, b.cfg.Paths.ImagesDir} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				b.t.Fatalf("mkdir %s: %v", dir, err)
			}
		}
	}
}

// WithStubbedBinaries points ffmpeg_binary and ffprobe_binary at scripts
// that print "<name> version 0.0-stub" and exit 0.
func WithStubbedBinaries() ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		for name, target := range map[string]*string{
			"ffmpeg":  &b.cfg.Extraction.FFmpegBinary,
			"ffprobe": &b.cfg.Extraction.FFprobeBinary,
		} {
			path := filepath.Join(binDir, name+"-stub")
			script := fmt.Sprintf("#!/bin/sh\necho '%s version 0.0-stub'\n", name)
			if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
			*target = path
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.ImagesDir)
}
