// Package extraction turns a normalized annotation table into JPEG files.
//
// BuildPlan is pure: for every channel and video group it computes the pad
// width, drops duplicate annotations, and expands each surviving frame into
// its window. A Processor executes one channel of a plan, keeping exactly one
// video handle open at a time. Run ties resolution, table loading, planning,
// locking, the manifest and both channels together.
//
// Every error aborts the run. Files already written stay on disk; a re-run
// rewrites them under the same names.
package extraction
