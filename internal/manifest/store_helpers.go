package manifest

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// timeLayout has fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = `id, table_path, mode, video_root, image_root, window_radius, status,
    frames_written, error_kind, error_message, started_at, finished_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run        Run
		status     string
		errorKind  sql.NullString
		errorMsg   sql.NullString
		startedAt  string
		finishedAt sql.NullString
	)
	if err := row.Scan(
		&run.ID, &run.TablePath, &run.Mode, &run.VideoRoot, &run.ImageRoot, &run.Window, &status,
		&run.FramesWritten, &errorKind, &errorMsg, &startedAt, &finishedAt,
	); err != nil {
		return nil, err
	}
	run.Status = Status(status)
	run.ErrorKind = errorKind.String
	run.ErrorMessage = errorMsg.String
	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		t := parseTime(finishedAt.String)
		run.FinishedAt = &t
	}
	return &run, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
