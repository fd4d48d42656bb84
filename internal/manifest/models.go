package manifest

import "time"

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// RunInfo describes a run at start.
type RunInfo struct {
	TablePath string
	Mode      string
	VideoRoot string
	ImageRoot string
	Window    int
}

// Run is a recorded extraction run.
type Run struct {
	ID            string
	TablePath     string
	Mode          string
	VideoRoot     string
	ImageRoot     string
	Window        int
	Status        Status
	FramesWritten int
	ErrorKind     string
	ErrorMessage  string
	StartedAt     time.Time
	FinishedAt    *time.Time
}

// Frame is one written image.
type Frame struct {
	Channel   string
	Video     string
	Index     int
	Center    int
	Path      string
	WrittenAt time.Time
}
