package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"framextract/internal/annotation"
	"framextract/internal/config"
	"framextract/internal/execution"
	"framextract/internal/failures"
	"framextract/internal/fileutil"
	"framextract/internal/frames"
	"framextract/internal/logging"
	"framextract/internal/manifest"
	"framextract/internal/output"
	"framextract/internal/preflight"
	"framextract/internal/video"
)

// LockPath returns the advisory lock file guarding imageRoot. Locks live under
// the log directory so the image tree only ever holds images.
func LockPath(cfg *config.Config, imageRoot string) string {
	dir := strings.TrimSpace(cfg.Paths.LogDir)
	if dir == "" {
		dir = os.TempDir()
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.Clean(imageRoot)))
	return filepath.Join(dir, "locks", id.String()+".lock")
}

// Options configures a run. Zero values fall back to Config.
type Options struct {
	Config *config.Config
	Inputs execution.Inputs
	// Window is the radius around each annotated frame; it must be >= 0.
	Window int
	// Delimiter overrides the configured table delimiter when non-empty.
	Delimiter string

	Opener   video.Opener
	Manifest *manifest.Store
	Reporter Reporter
	Logger   *slog.Logger
}

// Prepared is everything computed before any frame is decoded.
type Prepared struct {
	Context  execution.Context
	Warnings []string
	Table    *annotation.Table
	Plan     Plan
}

// Summary reports what a run did.
type Summary struct {
	RunID    string
	Context  execution.Context
	Written  int
	Planned  int
	Dropped  int
	Channels map[annotation.Channel]int
	Elapsed  time.Duration
}

// Prepare resolves roots, loads and normalizes the table and builds the plan.
// It touches nothing under the image root.
func Prepare(opts Options) (*Prepared, error) {
	cfg := opts.Config
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	if opts.Window < 0 || opts.Window > frames.MaxRadius {
		return nil, failures.Wrap(failures.ErrConfiguration, "extraction", "prepare", fmt.Sprintf("window must be between 0 and %d, got %d", frames.MaxRadius, opts.Window), nil)
	}

	res, err := execution.Resolve(opts.Inputs, execution.Conventions{
		AnnotationsDir: cfg.Paths.AnnotationsDir,
		VideosDir:      cfg.Paths.VideosDir,
		ImagesDir:      cfg.Paths.ImagesDir,
	})
	if err != nil {
		return nil, err
	}

	delimiter := opts.Delimiter
	if strings.TrimSpace(delimiter) == "" {
		delimiter = cfg.Extraction.Delimiter
	}
	table, err := annotation.ReadTable(res.Context.TablePath, delimiter)
	if err != nil {
		return nil, err
	}
	set, err := annotation.Normalize(table, annotation.Options{KeyColumn: cfg.Extraction.KeyColumn})
	if err != nil {
		return nil, err
	}
	return &Prepared{
		Context:  res.Context,
		Warnings: res.Warnings,
		Table:    table,
		Plan:     BuildPlan(set, opts.Window),
	}, nil
}

// Run executes a full extraction: left channel, then right channel.
func Run(ctx context.Context, opts Options) (Summary, error) {
	start := time.Now()
	logger := logging.NewComponentLogger(opts.Logger, "extraction")
	cfg := opts.Config
	if cfg == nil {
		def := config.Default()
		cfg = &def
		opts.Config = cfg
	}

	prep, err := Prepare(opts)
	if err != nil {
		return Summary{}, err
	}
	for _, w := range prep.Warnings {
		logging.WarnWithContext(logger, w, "root_resolution",
			logging.String("mode", prep.Context.Mode.String()),
			logging.String("image_root", prep.Context.ImageRoot),
		)
	}
	if err := preflight.CheckRunRoots(prep.Context); err != nil {
		return Summary{}, err
	}

	opener := opts.Opener
	if opener == nil {
		opener, err = video.NewOpener(video.OptionsFromConfig(cfg, opts.Logger))
		if err != nil {
			return Summary{}, err
		}
	}

	lockPath := LockPath(cfg, prep.Context.ImageRoot)
	lock, err := fileutil.LockDir(filepath.Dir(lockPath), filepath.Base(lockPath))
	if err != nil {
		if errors.Is(err, fileutil.ErrLocked) {
			return Summary{}, failures.Wrap(failures.ErrConfiguration, "extraction", "lock image root", "another extraction is writing to "+prep.Context.ImageRoot, err)
		}
		return Summary{}, failures.Wrap(failures.ErrWrite, "extraction", "lock image root", prep.Context.ImageRoot, err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Debug("release image root lock failed", logging.Error(err))
		}
	}()

	summary := Summary{
		Context:  prep.Context,
		Planned:  prep.Plan.Total(),
		Dropped:  prep.Plan.DroppedCount(),
		Channels: make(map[annotation.Channel]int, 2),
	}

	var recorder Recorder
	if opts.Manifest != nil {
		run, err := opts.Manifest.StartRun(ctx, manifest.RunInfo{
			TablePath: prep.Context.TablePath,
			Mode:      prep.Context.Mode.String(),
			VideoRoot: prep.Context.VideoRoot,
			ImageRoot: prep.Context.ImageRoot,
			Window:    prep.Plan.Radius,
		})
		if err != nil {
			logging.WarnWithContext(logger, "run manifest unavailable", "manifest_start_failed",
				logging.String(logging.FieldImpact, "run is not recorded in history"),
				logging.Error(err),
			)
		} else {
			summary.RunID = run.ID
			recorder = manifestRecorder{store: opts.Manifest, runID: run.ID}
		}
	}
	ctx = logging.WithRunID(ctx, summary.RunID)
	logger = logging.WithContext(ctx, logger)
	logger.Info("extraction started",
		logging.String("mode", prep.Context.Mode.String()),
		logging.String("table", prep.Context.TablePath),
		logging.String("video_root", prep.Context.VideoRoot),
		logging.String("image_root", prep.Context.ImageRoot),
		logging.Int("window", prep.Plan.Radius),
		logging.Int("planned", summary.Planned),
	)

	reporter := opts.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}
	reporter.Report(Event{Kind: EventRunStarted, Total: summary.Planned})

	proc := NewProcessor(ProcessorOptions{
		Opener:    opener,
		Writer:    output.NewWriter(cfg.Extraction.JPEGQuality, opts.Logger),
		VideoRoot: prep.Context.VideoRoot,
		ImageRoot: prep.Context.ImageRoot,
		Reporter:  reporter,
		Recorder:  recorder,
		Logger:    opts.Logger,
		Total:     summary.Planned,
	})

	var runErr error
	for _, cp := range prep.Plan.Channels {
		before := proc.Done()
		runErr = proc.ProcessChannel(ctx, cp)
		summary.Channels[cp.Channel] = proc.Done() - before
		if runErr != nil {
			break
		}
	}
	summary.Written = proc.Done()
	summary.Elapsed = time.Since(start)

	if opts.Manifest != nil && summary.RunID != "" {
		if err := opts.Manifest.FinishRun(context.WithoutCancel(ctx), summary.RunID, runErr); err != nil {
			logger.Warn("run manifest not finalized",
				logging.String(logging.FieldEventType, "manifest_finish_failed"),
				logging.String(logging.FieldImpact, "run stays marked running in history"),
				logging.Error(err),
			)
		}
	}

	if runErr != nil {
		logger.Error("extraction aborted",
			logging.String("error_kind", failures.Kind(runErr)),
			logging.Int("written", summary.Written),
			logging.Error(runErr),
		)
		return summary, runErr
	}
	logger.Info("extraction complete",
		logging.Int("written", summary.Written),
		logging.Int("dropped_duplicates", summary.Dropped),
		logging.String("elapsed", summary.Elapsed.Round(time.Millisecond).String()),
	)
	return summary, nil
}

type manifestRecorder struct {
	store *manifest.Store
	runID string
}

func (m manifestRecorder) RecordFrame(ctx context.Context, w Written) error {
	return m.store.RecordFrame(ctx, m.runID, manifest.Frame{
		Channel:   string(w.Request.Channel),
		Video:     w.Request.Video,
		Index:     w.Request.Frame,
		Center:    w.Request.Center,
		Path:      w.Path,
		WrittenAt: w.At,
	})
}
