// Package failures defines the error taxonomy shared by the extraction
// pipeline.
//
// Every failure is fatal to a run, so the markers exist for reporting rather
// than recovery: the CLI uses Kind and ExitCode to tell the operator which
// class of problem stopped the batch and which file, frame, or column caused
// it. Tag errors with Wrap (or FrameError for decode failures) at the point
// where the offending input is known; callers further up should only add
// context with fmt.Errorf("...: %w", err).
package failures
