package config

import (
	"errors"
	"fmt"
	"strings"

	"framextract/internal/frames"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateManifest(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	for key, value := range map[string]string{
		"paths.annotations_dir": c.Paths.AnnotationsDir,
		"paths.videos_dir":      c.Paths.VideosDir,
		"paths.images_dir":      c.Paths.ImagesDir,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	return nil
}

func (c *Config) validateExtraction() error {
	if w := c.Extraction.Window; w < 0 || w > frames.MaxRadius {
		return fmt.Errorf("extraction.window must be between 0 and %d, got %d", frames.MaxRadius, w)
	}
	if q := c.Extraction.JPEGQuality; q < 1 || q > 100 {
		return fmt.Errorf("extraction.jpeg_quality must be between 1 and 100, got %d", q)
	}
	switch c.Extraction.Decoder {
	case DecoderFFmpeg, DecoderOpenCV:
	default:
		return fmt.Errorf("extraction.decoder: unsupported value %q (want %q or %q)", c.Extraction.Decoder, DecoderFFmpeg, DecoderOpenCV)
	}
	if len([]rune(c.Extraction.Delimiter)) > 1 {
		switch strings.ToLower(c.Extraction.Delimiter) {
		case "tab", `\t`, "comma", "semicolon", "pipe":
		default:
			return fmt.Errorf("extraction.delimiter must be a single character or one of tab, comma, semicolon, pipe; got %q", c.Extraction.Delimiter)
		}
	}
	return nil
}

func (c *Config) validateManifest() error {
	if c.Manifest.Enabled && strings.TrimSpace(c.Manifest.Path) == "" {
		return errors.New("manifest.path must be set when manifest.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
