// Package manifest records extraction runs in a SQLite database.
//
// Each run gets a UUID, the roots it resolved, its outcome, and one row per
// frame written. The history answers "which run produced this file" after the
// fact and backs the `runs` CLI commands. A run that aborts keeps the frames
// it wrote, matching what is left on disk.
package manifest
