// Package video decodes single frames from video files by absolute index.
//
// An Opener checks that a file exists and returns a Handle; the Handle decodes
// frames one at a time and must be closed when the caller is done with the
// video. Handles are not safe for concurrent use.
//
// The default backend shells out to ffmpeg for every frame, with the command
// line compiled by ffmpeg-go. Builds tagged "opencv" can select a gocv backend
// that keeps one capture open per handle and seeks within it.
package video
