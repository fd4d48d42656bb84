package failures

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration   = errors.New("configuration error")
	ErrSchema          = errors.New("schema error")
	ErrParse           = errors.New("parse error")
	ErrNotFound        = errors.New("not found")
	ErrFrameExtraction = errors.New("frame extraction error")
	ErrFrameOutOfRange = errors.New("frame index out of range")
	ErrWrite           = errors.New("write error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrConfiguration
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FrameError reports a seek/decode failure for one frame of one video. It
// always matches ErrFrameExtraction; when the cause is a known boundary
// violation it also matches ErrFrameOutOfRange.
type FrameError struct {
	Video      string
	Frame      int
	OutOfRange bool
	Err        error
}

func (e *FrameError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: frame %d of %q", ErrFrameExtraction, e.Frame, e.Video)
	if e.OutOfRange {
		b.WriteString(": ")
		b.WriteString(ErrFrameOutOfRange.Error())
	} else {
		b.WriteString(": the file could not be read or the frame index exceeds the video length")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *FrameError) Unwrap() []error {
	errs := []error{ErrFrameExtraction}
	if e.OutOfRange {
		errs = append(errs, ErrFrameOutOfRange)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Kind returns a short label for the error class, or "error" when err carries
// no marker.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrSchema):
		return "schema"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrFrameExtraction):
		return "frame_extraction"
	case errors.Is(err, ErrWrite):
		return "write"
	default:
		return "error"
	}
}

// ExitCode maps an error to the process exit status the CLI terminates with.
func ExitCode(err error) int {
	switch Kind(err) {
	case "":
		return 0
	case "configuration":
		return 2
	case "schema", "parse":
		return 3
	case "not_found":
		return 4
	case "frame_extraction":
		return 5
	case "write":
		return 6
	default:
		return 1
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "extraction failure"
	}
	return strings.Join(parts, ": ")
}
