package extraction

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"framextract/internal/annotation"
	"framextract/internal/config"
	"framextract/internal/execution"
	"framextract/internal/failures"
	"framextract/internal/fileutil"
	"framextract/internal/frames"
	"framextract/internal/manifest"
	"framextract/internal/testsupport"
)

type fixture struct {
	cfg    *config.Config
	base   string
	table  string
	videos string
	images string
}

func newFixture(t *testing.T, videos []string, rows ...[]string) fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithManifestDisabled())
	base := testsupport.BaseDir(cfg)
	f := fixture{
		cfg:    cfg,
		base:   base,
		table:  testsupport.WriteTable(t, filepath.Join(base, "data", "ann.txt"), rows...),
		videos: filepath.Join(base, "vids"),
		images: filepath.Join(base, "out"),
	}
	for _, v := range videos {
		testsupport.WriteFile(t, filepath.Join(f.videos, v), 64)
	}
	return f
}

func (f fixture) options(opener *fakeOpener, window int) Options {
	return Options{
		Config: f.cfg,
		Inputs: execution.Inputs{
			TablePath:  f.table,
			VideoRoot:  f.videos,
			ImageRoot:  f.images,
			WorkingDir: f.base,
		},
		Window: window,
		Opener: opener,
	}
}

func listImages(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read dir %s: %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".jpg" {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names
}

func stereoRow() []string {
	return []string{"1", "camA.mp4", "50", "camB.mp4", "75", "120", "NA", "NA", "NA"}
}

func TestRunStereoWindow(t *testing.T) {
	f := newFixture(t, []string{"camA.mp4", "camB.mp4"}, stereoRow())
	opener := newFakeOpener(nil)

	summary, err := Run(context.Background(), f.options(opener, 2))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{
		"camA_frame-48_length-120.jpg",
		"camA_frame-49_length-120.jpg",
		"camA_frame-50_length-120.jpg",
		"camA_frame-51_length-120.jpg",
		"camA_frame-52_length-120.jpg",
		"camB_frame-73_length-120.jpg",
		"camB_frame-74_length-120.jpg",
		"camB_frame-75_length-120.jpg",
		"camB_frame-76_length-120.jpg",
		"camB_frame-77_length-120.jpg",
	}
	got := listImages(t, filepath.Join(f.images, "fam", "gen", "sp"))
	if !slices.Equal(got, want) {
		t.Fatalf("images = %v, want %v", got, want)
	}
	if summary.Written != 10 || summary.Planned != 10 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.Channels[annotation.Left] != 5 || summary.Channels[annotation.Right] != 5 {
		t.Fatalf("unexpected channel counts %+v", summary.Channels)
	}
	if !slices.Equal(opener.opened, []string{"camA.mp4", "camB.mp4"}) {
		t.Fatalf("expected left video then right video, got %v", opener.opened)
	}
	if opener.maxOpen != 1 || opener.open != 0 {
		t.Fatalf("expected one handle at a time and all closed, max=%d open=%d", opener.maxOpen, opener.open)
	}
	if summary.Context.Mode != execution.Standalone {
		t.Fatalf("mode = %v", summary.Context.Mode)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	f := newFixture(t, []string{"camA.mp4", "camB.mp4"}, stereoRow())
	for range 2 {
		if _, err := Run(context.Background(), f.options(newFakeOpener(nil), 1)); err != nil {
			t.Fatalf("Run: %v", err)
		}
	}
	if got := listImages(t, filepath.Join(f.images, "fam", "gen", "sp")); len(got) != 6 {
		t.Fatalf("expected 6 images after two runs, got %v", got)
	}
}

func TestRunFrameBeyondVideoAborts(t *testing.T) {
	f := newFixture(t, []string{"camA.mp4", "camB.mp4"}, stereoRow())
	opener := newFakeOpener(map[string]int{"camA.mp4": 51})

	_, err := Run(context.Background(), f.options(opener, 2))
	var frameErr *failures.FrameError
	if !errors.As(err, &frameErr) {
		t.Fatalf("expected FrameError, got %v", err)
	}
	if filepath.Base(frameErr.Video) != "camA.mp4" || frameErr.Frame != 51 {
		t.Fatalf("unexpected frame error %+v", frameErr)
	}
	if failures.ExitCode(err) != 5 {
		t.Fatalf("exit code = %d", failures.ExitCode(err))
	}

	got := listImages(t, filepath.Join(f.images, "fam", "gen", "sp"))
	want := []string{
		"camA_frame-48_length-120.jpg",
		"camA_frame-49_length-120.jpg",
		"camA_frame-50_length-120.jpg",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("images = %v, want %v", got, want)
	}
	if slices.Contains(opener.opened, "camB.mp4") {
		t.Fatal("right channel must not start after an abort")
	}
	if opener.open != 0 {
		t.Fatal("handle left open after abort")
	}
}

func TestRunMissingVideo(t *testing.T) {
	f := newFixture(t, []string{"camB.mp4"}, stereoRow())
	opener := newFakeOpener(nil)

	_, err := Run(context.Background(), f.options(opener, 0))
	if !errors.Is(err, failures.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(opener.decoded) != 0 {
		t.Fatalf("expected no decode attempts, got %v", opener.decoded)
	}
}

func TestRunStandaloneRequiresVideoRoot(t *testing.T) {
	f := newFixture(t, nil)
	opts := f.options(newFakeOpener(nil), 0)
	opts.Inputs.VideoRoot = ""
	opts.Inputs.TablePath = filepath.Join(f.base, "data", "absent.txt")

	_, err := Run(context.Background(), opts)
	if !errors.Is(err, failures.ErrConfiguration) {
		t.Fatalf("expected configuration error before table read, got %v", err)
	}
}

func TestRunRejectsOutOfRangeWindow(t *testing.T) {
	f := newFixture(t, []string{"camA.mp4", "camB.mp4"}, stereoRow())
	for _, window := range []int{-1, frames.MaxRadius + 1, math.MaxInt / 2} {
		opener := newFakeOpener(nil)
		if _, err := Run(context.Background(), f.options(opener, window)); !errors.Is(err, failures.ErrConfiguration) {
			t.Fatalf("window %d: expected configuration error, got %v", window, err)
		}
		if len(opener.opened) != 0 {
			t.Fatalf("window %d: opened %v", window, opener.opened)
		}
	}
}

func TestRunDropsDuplicateAnnotations(t *testing.T) {
	f := newFixture(t, []string{"camA.mp4", "camB.mp4", "camC.mp4"},
		[]string{"1", "camA.mp4", "50", "camB.mp4", "75", "120", "Labridae", "Labrus", "Bergylta"},
		[]string{"2", "camA.mp4", "50", "camC.mp4", "10", "99", "Sparidae", "Pagrus", "Pagrus"},
	)
	var events []Event
	opts := f.options(newFakeOpener(nil), 1)
	opts.Reporter = ReporterFunc(func(e Event) { events = append(events, e) })

	summary, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := listImages(t, filepath.Join(f.images, "labridae", "labrus", "bergylta")); !slices.Equal(got, []string{
		"camB_frame-74_length-120.jpg", "camB_frame-75_length-120.jpg", "camB_frame-76_length-120.jpg",
	}) {
		t.Fatalf("labridae images = %v", got)
	}
	if got := listImages(t, filepath.Join(f.images, "sparidae", "pagrus", "pagrus")); !slices.Equal(got, []string{
		"camC_frame-09_length-99.jpg", "camC_frame-10_length-99.jpg", "camC_frame-11_length-99.jpg",
	}) {
		t.Fatalf("sparidae images = %v", got)
	}
	if summary.Dropped != 1 || summary.Written != 6 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	idx := slices.IndexFunc(events, func(e Event) bool { return e.Kind == EventDuplicatesDropped })
	if idx < 0 || events[idx].Video != "camA.mp4" || !slices.Equal(events[idx].Dropped, []int{50}) {
		t.Fatalf("expected duplicate event for camA.mp4, got %+v", events)
	}
	if events[0].Kind != EventRunStarted || events[0].Total != 6 {
		t.Fatalf("expected run started event first, got %+v", events[0])
	}
}

func TestRunFallsBackToWorkingDirForImages(t *testing.T) {
	f := newFixture(t, []string{"camA.mp4", "camB.mp4"}, stereoRow())
	opts := f.options(newFakeOpener(nil), 0)
	opts.Inputs.ImageRoot = ""

	summary, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Context.ImageRoot != f.base {
		t.Fatalf("image root = %s, want %s", summary.Context.ImageRoot, f.base)
	}
	if got := listImages(t, filepath.Join(f.base, "fam", "gen", "sp")); len(got) != 2 {
		t.Fatalf("expected images under working dir, got %v", got)
	}
}

func TestRunManagedMode(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithManifestDisabled(), testsupport.WithManagedDirs())
	testsupport.WriteTable(t, filepath.Join(cfg.Paths.AnnotationsDir, "survey.txt"), stereoRow())
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.VideosDir, "camA.mp4"), 8)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.VideosDir, "camB.mp4"), 8)

	summary, err := Run(context.Background(), Options{
		Config: cfg,
		Inputs: execution.Inputs{TablePath: "survey.txt", VideoRoot: "/ignored", WorkingDir: t.TempDir()},
		Opener: newFakeOpener(nil),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Context.Mode != execution.Managed {
		t.Fatalf("mode = %v", summary.Context.Mode)
	}
	if got := listImages(t, filepath.Join(cfg.Paths.ImagesDir, "fam", "gen", "sp")); !slices.Equal(got, []string{
		"camA_frame-50_length-120.jpg", "camB_frame-75_length-120.jpg",
	}) {
		t.Fatalf("images = %v", got)
	}
}

func TestRunRecordsManifest(t *testing.T) {
	f := newFixture(t, []string{"camA.mp4", "camB.mp4"}, stereoRow())
	store := testsupport.MustOpenManifest(t, f.cfg)
	opts := f.options(newFakeOpener(nil), 1)
	opts.Manifest = store

	summary, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	run, err := store.GetRun(context.Background(), summary.RunID)
	if err != nil || run == nil {
		t.Fatalf("GetRun: %v, %v", run, err)
	}
	if run.Status != manifest.StatusCompleted || run.FramesWritten != 6 || run.Window != 1 {
		t.Fatalf("unexpected run %+v", run)
	}
	frames, err := store.Frames(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("Frames: %v", err)
	}
	if len(frames) != 6 || frames[0].Channel != "left" || frames[5].Channel != "right" || frames[0].Center != 50 {
		t.Fatalf("unexpected frames %+v", frames)
	}

	failing := f.options(newFakeOpener(map[string]int{"camB.mp4": 10}), 0)
	failing.Manifest = store
	summary, err = Run(context.Background(), failing)
	if err == nil {
		t.Fatal("expected failure")
	}
	run, _ = store.GetRun(context.Background(), summary.RunID)
	if run == nil || run.Status != manifest.StatusFailed || run.ErrorKind != "frame_extraction" || run.FramesWritten != 1 {
		t.Fatalf("unexpected failed run %+v", run)
	}
}

func TestRunRefusesLockedImageRoot(t *testing.T) {
	f := newFixture(t, []string{"camA.mp4", "camB.mp4"}, stereoRow())
	lockPath := LockPath(f.cfg, f.images)
	lock, err := fileutil.LockDir(filepath.Dir(lockPath), filepath.Base(lockPath))
	if err != nil {
		t.Fatalf("LockDir: %v", err)
	}
	defer lock.Unlock()

	_, err = Run(context.Background(), f.options(newFakeOpener(nil), 0))
	if !errors.Is(err, failures.ErrConfiguration) || !errors.Is(err, fileutil.ErrLocked) {
		t.Fatalf("expected lock conflict, got %v", err)
	}
}

func TestRunLeavesOnlyImagesInImageRoot(t *testing.T) {
	f := newFixture(t, []string{"camA.mp4", "camB.mp4"}, stereoRow())
	if _, err := Run(context.Background(), f.options(newFakeOpener(nil), 1)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	err := filepath.WalkDir(f.images, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) != ".jpg" {
			t.Errorf("unexpected file in image root: %s", path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk image root: %v", err)
	}
	if !strings.HasPrefix(LockPath(f.cfg, f.images), f.cfg.Paths.LogDir) {
		t.Fatalf("lock %s not under log dir %s", LockPath(f.cfg, f.images), f.cfg.Paths.LogDir)
	}
}

func TestPrepareDoesNotTouchImageRoot(t *testing.T) {
	f := newFixture(t, []string{"camA.mp4", "camB.mp4"}, stereoRow())
	prep, err := Prepare(f.options(nil, 3))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if prep.Plan.Total() != 14 {
		t.Fatalf("planned = %d", prep.Plan.Total())
	}
	if _, err := os.Stat(f.images); !os.IsNotExist(err) {
		t.Fatalf("expected image root untouched, stat err = %v", err)
	}
}

func TestRunSchemaError(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithManifestDisabled())
	base := testsupport.BaseDir(cfg)
	table := filepath.Join(base, "data", "bad.csv")
	if err := os.MkdirAll(filepath.Dir(table), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(table, []byte("FilenameLeft,FrameLeft\na.mp4,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Run(context.Background(), Options{
		Config: cfg,
		Inputs: execution.Inputs{TablePath: table, VideoRoot: base, WorkingDir: base},
		Opener: newFakeOpener(nil),
	})
	if !errors.Is(err, failures.ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
	for _, col := range []string{"FilenameRight", "Species"} {
		if !strings.Contains(err.Error(), col) {
			t.Fatalf("expected %s named in %q", col, err.Error())
		}
	}
}
