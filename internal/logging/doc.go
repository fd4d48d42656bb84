// Package logging assembles structured slog loggers used across framextract.
//
// Console output goes through a tint handler for readable, colorized terminal
// logs; JSON output uses the standard slog JSON handler with compact key
// names. An optional log file always receives JSON so runs can be audited
// after the fact. Context helpers stamp run IDs, channels, and video names
// onto log lines so a failure can be traced to the exact group that caused it.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
