// Package config loads, normalizes, and validates framextract configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for the
// managed-mode roots. The Config type centralizes the deployment conventions
// (where managed annotation tables, videos, and images live) together with
// the extraction, manifest, and logging knobs the CLI needs.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
