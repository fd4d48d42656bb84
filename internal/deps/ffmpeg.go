package deps

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
)

// Version runs "<command> -version" and returns the first line of output, or
// an empty string when the binary cannot report one. ffmpeg and ffprobe both
// answer this flag.
func Version(ctx context.Context, command string) string {
	command = strings.TrimSpace(command)
	if command == "" {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, command, "-version").Output()
	if err != nil {
		return ""
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text())
	}
	return ""
}

// WithVersions fills Detail of every available status with the binary's
// reported version line.
func WithVersions(ctx context.Context, statuses []Status) []Status {
	for i := range statuses {
		if !statuses[i].Available || statuses[i].Detail != "" {
			continue
		}
		command := statuses[i].Path
		if command == "" {
			command = statuses[i].Command
		}
		statuses[i].Detail = Version(ctx, command)
	}
	return statuses
}
