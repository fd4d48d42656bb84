package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"framextract/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Output receives console or JSON records; defaults to stderr.
	Output io.Writer
	// LogFile, when set, additionally receives every record as JSON.
	LogFile string
	NoColor bool
}

// New constructs a slog logger using the provided options. The returned
// closer releases the log file, if any.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	addSource := levelVar.Level() <= slog.LevelDebug

	var primary slog.Handler
	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "json":
		primary = newJSONHandler(out, levelVar, addSource)
	case "console", "":
		primary = tint.NewHandler(out, &tint.Options{
			Level:      levelVar,
			AddSource:  addSource,
			TimeFormat: time.TimeOnly,
			NoColor:    opts.NoColor || !isTerminal(out),
		})
	default:
		return nil, nopCloser{}, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	path := strings.TrimSpace(opts.LogFile)
	if path == "" {
		return slog.New(primary), nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nopCloser{}, fmt.Errorf("ensure log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
	if err != nil {
		return nil, nopCloser{}, fmt.Errorf("open log file %s: %w", path, err)
	}
	return slog.New(TeeHandler(primary, newJSONHandler(file, levelVar, true))), file, nil
}

// NewFromConfig creates a logger using application config defaults. Records
// are appended to framextract.log in the configured log directory.
func NewFromConfig(cfg *config.Config, out io.Writer) (*slog.Logger, io.Closer, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", Output: out})
	}
	opts := Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: out,
	}
	if dir := strings.TrimSpace(cfg.Paths.LogDir); dir != "" {
		opts.LogFile = filepath.Join(dir, "framextract.log")
	}
	return New(opts)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newJSONHandler(w io.Writer, lvl slog.Leveler, addSource bool) slog.Handler {
	opts := slog.HandlerOptions{
		Level:     lvl,
		AddSource: addSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	}
	return slog.NewJSONHandler(w, &opts)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
