package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"framextract/internal/config"
	"framextract/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	tablePath  string
	videoDir   string
	imageDir   string
}

// setupCLITestEnv writes a config whose ffmpeg is a stub that serves a JPEG
// fixture for every frame below failFrom.
func setupCLITestEnv(t *testing.T, failFrom int, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithManagedDirs()}, opts...)...)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	binDir := filepath.Join(base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	fixture := testsupport.WriteJPEG(t, filepath.Join(base, "fixture.jpg"), 8, 6)
	cfg.Extraction.FFmpegBinary = testsupport.StubFFmpeg(t, binDir, fixture, failFrom)

	env := &cliTestEnv{
		cfg:        cfg,
		configPath: filepath.Join(base, "config.toml"),
		baseDir:    base,
		tablePath:  filepath.Join(base, "data", "ann.txt"),
		videoDir:   filepath.Join(base, "vids"),
		imageDir:   filepath.Join(base, "out"),
	}
	writeTestConfig(t, env.configPath, cfg)
	return env
}

func (e *cliTestEnv) writeStereoTable(t *testing.T) {
	t.Helper()
	testsupport.WriteTable(t, e.tablePath,
		[]string{"1", "camA.mp4", "50", "camB.mp4", "75", "120", "NA", "NA", "NA"},
	)
	for _, v := range []string{"camA.mp4", "camB.mp4"} {
		testsupport.WriteFile(t, filepath.Join(e.videoDir, v), 64)
	}
}

func (e *cliTestEnv) standaloneArgs(cmd string, extra ...string) []string {
	args := []string{cmd, "-f", e.tablePath, "--videos", e.videoDir, "--images", e.imageDir}
	return append(args, extra...)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file %s: %v", path, err)
	}
}
