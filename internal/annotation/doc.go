// Package annotation reads stereo annotation tables and splits them into
// per-channel work.
//
// ReadTable parses a delimited text file into a header and rows, detecting the
// delimiter when none is given. Normalize validates the legacy schema,
// substitutes placeholder taxonomy for missing labels, and groups the left and
// right observations by video file. Group.Deduplicate removes annotated frames
// that appear more than once for the same video so no output file is written
// with an ambiguous label.
package annotation
