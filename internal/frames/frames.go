// Package frames expands annotated frame indices into extraction windows.
package frames

import (
	"math"
	"strconv"
	"strings"
)

const (
	// MaxIndex is the largest frame index accepted from an annotation table.
	MaxIndex = math.MaxInt32
	// MaxRadius bounds the window radius. Expand clamps to it.
	MaxRadius = 1 << 20
)

// Expand returns the inclusive range [center-radius, center+radius]. A
// negative radius is treated as zero. Indices are not clamped to any video
// length.
func Expand(center, radius int) []int {
	radius = min(max(radius, 0), MaxRadius)
	out := make([]int, 0, 2*radius+1)
	for d := -radius; d <= radius; d++ {
		out = append(out, center+d)
	}
	return out
}

// PadWidth is the decimal digit count of the largest index. An empty slice
// yields 1.
func PadWidth(indices []int) int {
	if len(indices) == 0 {
		return 1
	}
	maxIndex := indices[0]
	for _, v := range indices[1:] {
		maxIndex = max(maxIndex, v)
	}
	return len(strconv.Itoa(maxIndex))
}

// Pad formats index zero-padded to width, counting a leading minus sign
// toward the width. Wider values are not truncated.
func Pad(index, width int) string {
	s := strconv.Itoa(index)
	if len(s) >= width {
		return s
	}
	zeros := strings.Repeat("0", width-len(s))
	if index < 0 {
		return "-" + zeros + s[1:]
	}
	return zeros + s
}
