package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"framextract/internal/failures"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// ErrAmbiguousID reports that a run ID prefix matched more than one run.
var ErrAmbiguousID = errors.New("run id prefix matches more than one run")

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the manifest database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("manifest path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure manifest directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// StartRun inserts a running run and returns it with a fresh ID.
func (s *Store) StartRun(ctx context.Context, info RunInfo) (*Run, error) {
	now := time.Now().UTC()
	run := &Run{
		ID:        uuid.NewString(),
		TablePath: info.TablePath,
		Mode:      info.Mode,
		VideoRoot: info.VideoRoot,
		ImageRoot: info.ImageRoot,
		Window:    info.Window,
		Status:    StatusRunning,
		StartedAt: now,
	}
	err := s.exec(ctx,
		`INSERT INTO runs (id, table_path, mode, video_root, image_root, window_radius, status, started_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.TablePath, run.Mode, run.VideoRoot, run.ImageRoot, run.Window, run.Status,
		now.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RecordFrame stores one written frame and bumps the run's frame counter.
func (s *Store) RecordFrame(ctx context.Context, runID string, frame Frame) error {
	ctx = ensureContext(ctx)
	writtenAt := frame.WrittenAt
	if writtenAt.IsZero() {
		writtenAt = time.Now()
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO frames (run_id, channel, video, frame_index, center_index, path, written_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, frame.Channel, frame.Video, frame.Index, frame.Center, frame.Path,
			writtenAt.UTC().Format(timeLayout),
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE runs SET frames_written = frames_written + 1 WHERE id = ?`, runID); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// FinishRun marks a run completed, or failed when runErr is non-nil.
func (s *Store) FinishRun(ctx context.Context, runID string, runErr error) error {
	status := StatusCompleted
	var kind, message any
	if runErr != nil {
		status = StatusFailed
		kind = failures.Kind(runErr)
		message = runErr.Error()
	}
	err := s.exec(ctx,
		`UPDATE runs SET status = ?, error_kind = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		status, kind, message, time.Now().UTC().Format(timeLayout), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun fetches a run by full ID or unique prefix. It returns nil when no
// run matches.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	pattern := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(id) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id LIMIT 2`,
		id, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.ID == id {
			return run, nil
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}
}

// Frames returns the frames recorded for a run in write order.
func (s *Store) Frames(ctx context.Context, runID string) ([]Frame, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT channel, video, frame_index, center_index, path, written_at
         FROM frames WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var (
			f         Frame
			writtenAt string
		)
		if err := rows.Scan(&f.Channel, &f.Video, &f.Index, &f.Center, &f.Path, &writtenAt); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		f.WrittenAt = parseTime(writtenAt)
		frames = append(frames, f)
	}
	return frames, rows.Err()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}
