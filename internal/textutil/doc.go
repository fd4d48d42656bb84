// Package textutil provides small string helpers for building output paths:
// locale-independent lowercasing and filesystem-safe path segments.
package textutil
