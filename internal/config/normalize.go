package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeManifest(); err != nil {
		return err
	}
	c.normalizeExtraction()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key    string
		env    string
		target *string
	}{
		{"paths.annotations_dir", "FRAMEXTRACT_ANNOTATIONS_DIR", &c.Paths.AnnotationsDir},
		{"paths.videos_dir", "FRAMEXTRACT_VIDEOS_DIR", &c.Paths.VideosDir},
		{"paths.images_dir", "FRAMEXTRACT_IMAGES_DIR", &c.Paths.ImagesDir},
		{"paths.log_dir", "", &c.Paths.LogDir},
	}
	for _, field := range fields {
		if field.env != "" {
			if value, ok := os.LookupEnv(field.env); ok && strings.TrimSpace(value) != "" {
				*field.target = strings.TrimSpace(value)
			}
		}
		expanded, err := expandPath(strings.TrimSpace(*field.target))
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.target = expanded
	}
	return nil
}

func (c *Config) normalizeManifest() error {
	var err error
	if strings.TrimSpace(c.Manifest.Path) == "" {
		c.Manifest.Path = Default().Manifest.Path
	}
	if c.Manifest.Path, err = expandPath(strings.TrimSpace(c.Manifest.Path)); err != nil {
		return fmt.Errorf("manifest.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeExtraction() {
	c.Extraction.KeyColumn = strings.TrimSpace(c.Extraction.KeyColumn)
	c.Extraction.Decoder = strings.ToLower(strings.TrimSpace(c.Extraction.Decoder))
	if c.Extraction.Decoder == "" {
		c.Extraction.Decoder = defaultDecoder
	}
	if c.Extraction.JPEGQuality == 0 {
		c.Extraction.JPEGQuality = defaultJPEGQuality
	}
	c.Extraction.FFmpegBinary = strings.TrimSpace(c.Extraction.FFmpegBinary)
	c.Extraction.FFprobeBinary = strings.TrimSpace(c.Extraction.FFprobeBinary)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
