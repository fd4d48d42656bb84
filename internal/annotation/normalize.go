package annotation

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"framextract/internal/failures"
	"framextract/internal/frames"
)

// Channel identifies one camera of a stereo pair.
type Channel string

const (
	Left  Channel = "left"
	Right Channel = "right"
)

// Placeholders substituted for missing labels.
const (
	PlaceholderFamily  = "fam"
	PlaceholderGenus   = "gen"
	PlaceholderSpecies = "sp"
	PlaceholderLength  = "na"
)

// DefaultKeyColumn is the identifying column required by the legacy schema.
const DefaultKeyColumn = "Number"

// Column names of the legacy schema.
const (
	ColFilenameLeft  = "FilenameLeft"
	ColFrameLeft     = "FrameLeft"
	ColFilenameRight = "FilenameRight"
	ColFrameRight    = "FrameRight"
	ColLength        = "Length"
	ColFamily        = "Family"
	ColGenus         = "Genus"
	ColSpecies       = "Species"
)

var requiredColumns = []string{
	ColFilenameLeft, ColFrameLeft, ColFilenameRight, ColFrameRight,
	ColLength, ColFamily, ColGenus, ColSpecies,
}

// Metadata is shared by both channels of one row.
type Metadata struct {
	Family  string
	Genus   string
	Species string
	Length  string
	Key     string
}

// Record is one channel's observation from one row.
type Record struct {
	Line  int
	Video string
	Frame int
	Meta  Metadata
}

// Group holds every record of one channel that refers to the same video.
type Group struct {
	Channel Channel
	Video   string
	Records []Record
}

// ChannelSet is the normalized table.
type ChannelSet struct {
	Left  []Group
	Right []Group
}

// Groups returns the groups of the requested channel.
func (s ChannelSet) Groups(ch Channel) []Group {
	if ch == Right {
		return s.Right
	}
	return s.Left
}

// Options tunes normalization.
type Options struct {
	// KeyColumn must be present in the header when non-empty.
	KeyColumn string
}

// Normalize validates the table schema and splits it into channel groups.
func Normalize(t *Table, opts Options) (ChannelSet, error) {
	if t == nil {
		return ChannelSet{}, failures.Wrap(failures.ErrSchema, "annotation", "normalize", "no table", nil)
	}
	required := requiredColumns
	if key := strings.TrimSpace(opts.KeyColumn); key != "" {
		required = append(slices.Clone(requiredColumns), key)
	}
	var missing []string
	idx := make(map[string]int, len(required))
	for _, name := range required {
		i := t.Column(name)
		if i < 0 {
			missing = append(missing, name)
			continue
		}
		idx[name] = i
	}
	if len(missing) > 0 {
		return ChannelSet{}, failures.Wrap(
			failures.ErrSchema,
			"annotation",
			"normalize",
			fmt.Sprintf("table %s is missing required columns: %s", displayPath(t), strings.Join(missing, ", ")),
			nil,
		)
	}

	left := newGrouper(Left)
	right := newGrouper(Right)
	for n, row := range t.Rows {
		line := n + 2
		if n < len(t.Lines) {
			line = t.Lines[n]
		}
		meta := Metadata{
			Family:  orPlaceholder(row[idx[ColFamily]], PlaceholderFamily),
			Genus:   orPlaceholder(row[idx[ColGenus]], PlaceholderGenus),
			Species: orPlaceholder(row[idx[ColSpecies]], PlaceholderSpecies),
			Length:  orPlaceholder(row[idx[ColLength]], PlaceholderLength),
		}
		if key := strings.TrimSpace(opts.KeyColumn); key != "" {
			meta.Key = strings.TrimSpace(row[idx[key]])
		}
		if err := left.add(row[idx[ColFilenameLeft]], row[idx[ColFrameLeft]], ColFilenameLeft, ColFrameLeft, line, meta); err != nil {
			return ChannelSet{}, err
		}
		if err := right.add(row[idx[ColFilenameRight]], row[idx[ColFrameRight]], ColFilenameRight, ColFrameRight, line, meta); err != nil {
			return ChannelSet{}, err
		}
	}
	return ChannelSet{Left: left.groups(), Right: right.groups()}, nil
}

// Deduplicate returns the records whose frame index is unique within the
// group, plus the sorted distinct frame indices that were dropped.
func (g Group) Deduplicate() (kept []Record, dropped []int) {
	counts := make(map[int]int, len(g.Records))
	for _, r := range g.Records {
		counts[r.Frame]++
	}
	kept = make([]Record, 0, len(g.Records))
	for _, r := range g.Records {
		if counts[r.Frame] == 1 {
			kept = append(kept, r)
		}
	}
	for frame, n := range counts {
		if n > 1 {
			dropped = append(dropped, frame)
		}
	}
	slices.Sort(dropped)
	return kept, dropped
}

// Frames returns every annotated frame index in the group, duplicates included.
func (g Group) Frames() []int {
	frames := make([]int, len(g.Records))
	for i, r := range g.Records {
		frames[i] = r.Frame
	}
	return frames
}

type grouper struct {
	channel Channel
	order   []string
	byVideo map[string]*Group
}

func newGrouper(ch Channel) *grouper {
	return &grouper{channel: ch, byVideo: make(map[string]*Group)}
}

func (g *grouper) add(video, frame, videoCol, frameCol string, line int, meta Metadata) error {
	noVideo, noFrame := IsMissing(video), IsMissing(frame)
	switch {
	case noVideo && noFrame:
		return nil
	case noVideo:
		return failures.Wrap(failures.ErrSchema, "annotation", "normalize", fmt.Sprintf("line %d: %s is empty but %s is set", line, videoCol, frameCol), nil)
	case noFrame:
		return failures.Wrap(failures.ErrSchema, "annotation", "normalize", fmt.Sprintf("line %d: %s is empty but %s is set", line, frameCol, videoCol), nil)
	}
	index, err := parseFrame(frame)
	if err != nil {
		return failures.Wrap(failures.ErrSchema, "annotation", "normalize", fmt.Sprintf("line %d: column %s", line, frameCol), err)
	}
	video = strings.TrimSpace(video)
	grp, ok := g.byVideo[video]
	if !ok {
		grp = &Group{Channel: g.channel, Video: video}
		g.byVideo[video] = grp
		g.order = append(g.order, video)
	}
	grp.Records = append(grp.Records, Record{Line: line, Video: video, Frame: index, Meta: meta})
	return nil
}

func (g *grouper) groups() []Group {
	names := slices.Clone(g.order)
	slices.Sort(names)
	out := make([]Group, 0, len(names))
	for _, name := range names {
		out = append(out, *g.byVideo[name])
	}
	return out
}

func parseFrame(value string) (int, error) {
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("frame index %d is negative", n)
		}
		if n > frames.MaxIndex {
			return 0, fmt.Errorf("frame index %d is too large", n)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("frame index %q is not a whole number", value)
	}
	if f < 0 {
		return 0, fmt.Errorf("frame index %q is negative", value)
	}
	if f > frames.MaxIndex {
		return 0, fmt.Errorf("frame index %q is too large", value)
	}
	return int(f), nil
}

func orPlaceholder(value, placeholder string) string {
	if IsMissing(value) {
		return placeholder
	}
	return strings.TrimSpace(value)
}

func displayPath(t *Table) string {
	if t.Path == "" {
		return "<input>"
	}
	return t.Path
}
