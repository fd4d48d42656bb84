package deps

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external binary and what framextract uses it for.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is a requirement plus the outcome of looking it up.
type Status struct {
	Requirement
	// Path is the resolved executable when Available.
	Path      string
	Available bool
	Detail    string
}

// Check resolves a single requirement against PATH.
func Check(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(req.Command)
	switch {
	case err == nil:
		status.Path = path
		status.Available = true
	case errors.Is(err, exec.ErrNotFound):
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
	default:
		status.Detail = fmt.Sprintf("binary %q unusable: %v", req.Command, err)
	}
	return status
}

// CheckBinaries resolves every requirement in order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		results[i] = Check(req)
	}
	return results
}
