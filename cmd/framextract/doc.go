// Package main hosts the framextract CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the logger and
// the optional run manifest, and hands extraction work to internal/extraction.
// Commands own presentation only: narration, progress, tables and status
// lines. New behavior belongs in the internal packages first.
package main
