package config

import "path/filepath"

const (
	defaultConfigPath  = "~/.config/framextract/config.toml"
	defaultKeyColumn   = "Number"
	defaultJPEGQuality = 95
	defaultDecoder     = DecoderFFmpeg
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

// Decoder backends understood by Extraction.Decoder.
const (
	DecoderFFmpeg = "ffmpeg"
	DecoderOpenCV = "opencv"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	data := defaultDataDir()
	return Config{
		Paths: Paths{
			AnnotationsDir: filepath.Join(data, "annotations"),
			VideosDir:      filepath.Join(data, "videos"),
			ImagesDir:      filepath.Join(data, "images"),
			LogDir:         filepath.Join(data, "logs"),
		},
		Extraction: Extraction{
			KeyColumn:   defaultKeyColumn,
			JPEGQuality: defaultJPEGQuality,
			Decoder:     defaultDecoder,
		},
		Manifest: Manifest{
			Enabled: true,
			Path:    filepath.Join(data, "manifest.db"),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
