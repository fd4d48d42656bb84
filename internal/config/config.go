package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the managed-mode convention roots and the log directory.
type Paths struct {
	AnnotationsDir string `toml:"annotations_dir"`
	VideosDir      string `toml:"videos_dir"`
	ImagesDir      string `toml:"images_dir"`
	LogDir         string `toml:"log_dir"`
}

// Extraction contains defaults applied to every extraction run.
type Extraction struct {
	// Window is the default window radius when --window is not supplied.
	Window int `toml:"window"`
	// Delimiter forces the annotation table delimiter; empty means auto-detect.
	Delimiter string `toml:"delimiter"`
	// KeyColumn names the identifying column required in the legacy schema.
	// Empty disables the requirement.
	KeyColumn   string `toml:"key_column"`
	JPEGQuality int    `toml:"jpeg_quality"`
	// Decoder selects the frame decoder backend: "ffmpeg" or "opencv".
	Decoder       string `toml:"decoder"`
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	// ProbeFrameCount enables a precise boundary check using the stream frame
	// count reported by ffprobe.
	ProbeFrameCount bool `toml:"probe_frame_count"`
}

// Manifest contains configuration for the run history database.
type Manifest struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for framextract.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Extraction Extraction `toml:"extraction"`
	Manifest   Manifest   `toml:"manifest"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("framextract.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories framextract writes into. The
// managed video root is read-only input and is never created.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ImagesDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Manifest.Enabled && strings.TrimSpace(c.Manifest.Path) != "" {
		if err := os.MkdirAll(filepath.Dir(c.Manifest.Path), 0o755); err != nil {
			return fmt.Errorf("create manifest directory: %w", err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for frame decoding.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Extraction.FFmpegBinary); bin != "" {
		return bin
	}
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable used for stream inspection.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Extraction.FFprobeBinary); bin != "" {
		return bin
	}
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultDataDir() string {
	if base, ok := os.LookupEnv("XDG_DATA_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "framextract")
	}
	return "~/.local/share/framextract"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
