package extraction

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"framextract/internal/logging"
	"framextract/internal/output"
	"framextract/internal/video"
)

// Written describes a frame that reached disk.
type Written struct {
	Request Request
	Path    string
	At      time.Time
}

// Recorder persists written frames, typically into the run manifest.
type Recorder interface {
	RecordFrame(ctx context.Context, w Written) error
}

// Processor executes channel plans against one video root and image root.
type Processor struct {
	opener    video.Opener
	writer    *output.Writer
	videoRoot string
	imageRoot string
	reporter  Reporter
	recorder  Recorder
	logger    *slog.Logger
	sampler   *logging.ProgressSampler

	done  int
	total int
}

// ProcessorOptions configures a Processor.
type ProcessorOptions struct {
	Opener    video.Opener
	Writer    *output.Writer
	VideoRoot string
	ImageRoot string
	Reporter  Reporter
	Recorder  Recorder
	Logger    *slog.Logger
	// Total is the number of requests the caller intends to process, used
	// for progress reporting.
	Total int
}

// NewProcessor constructs a Processor.
func NewProcessor(opts ProcessorOptions) *Processor {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}
	writer := opts.Writer
	if writer == nil {
		writer = output.NewWriter(0, opts.Logger)
	}
	return &Processor{
		opener:    opts.Opener,
		writer:    writer,
		videoRoot: opts.VideoRoot,
		imageRoot: opts.ImageRoot,
		reporter:  reporter,
		recorder:  opts.Recorder,
		logger:    logging.NewComponentLogger(opts.Logger, "extraction"),
		sampler:   logging.NewProgressSampler(10),
		total:     opts.Total,
	}
}

// Done returns the number of frames written so far.
func (p *Processor) Done() int {
	return p.done
}

// ProcessChannel runs every group of the channel in order. The first error
// stops processing and is returned unchanged.
func (p *Processor) ProcessChannel(ctx context.Context, cp ChannelPlan) error {
	ctx = logging.WithChannel(ctx, string(cp.Channel))
	for _, g := range cp.Groups {
		if err := p.processGroup(ctx, g); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) processGroup(ctx context.Context, g GroupPlan) error {
	ctx = logging.WithVideo(ctx, g.Video)
	logger := logging.WithContext(ctx, p.logger)
	path := filepath.Join(p.videoRoot, g.Video)

	if len(g.Dropped) > 0 {
		logging.WarnWithContext(logger, "duplicate annotations dropped",
			"duplicate_annotation",
			logging.Any("frames", g.Dropped),
			logging.String(logging.FieldImpact, "no images are written for these frames or their windows"),
		)
		p.reporter.Report(Event{Kind: EventDuplicatesDropped, Channel: g.Channel, Video: g.Video, Dropped: g.Dropped, Done: p.done, Total: p.total})
	}

	if len(g.Requests) == 0 {
		return video.CheckExists(path)
	}

	handle, err := p.opener.Open(ctx, path)
	if err != nil {
		return err
	}
	closed := false
	defer func() {
		if !closed {
			_ = handle.Close()
		}
	}()

	p.reporter.Report(Event{Kind: EventGroupStarted, Channel: g.Channel, Video: g.Video, Done: p.done, Total: p.total})
	logger.Debug("video opened", logging.Int("requests", len(g.Requests)), logging.Int("pad_width", g.Width))

	for _, req := range g.Requests {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := handle.Decode(ctx, req.Frame)
		if err != nil {
			return err
		}
		p.reporter.Report(Event{Kind: EventFrameDecoded, Channel: g.Channel, Video: g.Video, Frame: req.Frame, Done: p.done, Total: p.total})

		dir := output.Dir(p.imageRoot, req.Meta)
		written, err := p.writer.Write(dir, output.Filename(req.Video, req.Frame, req.Width, req.Meta), img)
		if err != nil {
			return err
		}
		p.done++
		if p.recorder != nil {
			if err := p.recorder.RecordFrame(ctx, Written{Request: req, Path: written, At: time.Now()}); err != nil {
				logger.Warn("manifest record failed",
					logging.String(logging.FieldEventType, "manifest_write_failed"),
					logging.String(logging.FieldImpact, "frame is on disk but missing from run history"),
					logging.Int(logging.FieldFrame, req.Frame),
					logging.Error(err),
				)
			}
		}
		p.reporter.Report(Event{Kind: EventFrameWritten, Channel: g.Channel, Video: g.Video, Frame: req.Frame, Path: written, Done: p.done, Total: p.total})
		if p.sampler.ShouldLog(p.done, p.total, string(g.Channel)) {
			logger.Info("extraction progress", logging.Int("done", p.done), logging.Int("total", p.total))
		}
	}

	closed = true
	if err := handle.Close(); err != nil {
		logger.Debug("video close failed", logging.Error(err))
	}
	p.reporter.Report(Event{Kind: EventGroupFinished, Channel: g.Channel, Video: g.Video, Done: p.done, Total: p.total})
	return nil
}
