package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// segmentReplacer replaces characters that would split or escape a single
// path segment.
var segmentReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	"\x00", "",
)

// Lower folds s to lower case without locale-specific rules.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// PathSegment returns value usable as exactly one directory name. Ordinary
// values pass through unchanged; separators become dashes and the special
// names "." and ".." are replaced by fallback.
func PathSegment(value, fallback string) string {
	value = strings.TrimSpace(segmentReplacer.Replace(value))
	if value == "" || value == "." || value == ".." {
		return fallback
	}
	return value
}

// Underscore replaces every space in s with an underscore.
func Underscore(s string) string {
	return strings.ReplaceAll(s, " ", "_")
}
