package extraction

import (
	"framextract/internal/annotation"
	"framextract/internal/frames"
)

// Request is one frame to decode and write.
type Request struct {
	Channel annotation.Channel
	Video   string
	Frame   int
	// Center is the annotated frame this request was expanded from.
	Center int
	Width  int
	Meta   annotation.Metadata
}

// GroupPlan is the work for one video within one channel.
type GroupPlan struct {
	Channel  annotation.Channel
	Video    string
	Width    int
	Requests []Request
	// Dropped lists annotated frames removed because they appeared more
	// than once for this video.
	Dropped []int
}

// ChannelPlan is the ordered work for one channel.
type ChannelPlan struct {
	Channel annotation.Channel
	Groups  []GroupPlan
}

// Plan holds the left channel followed by the right channel.
type Plan struct {
	Radius   int
	Channels []ChannelPlan
}

// BuildPlan computes every frame request for set. Duplicates are removed
// before window expansion; the pad width comes from the largest annotated
// frame of each group.
func BuildPlan(set annotation.ChannelSet, radius int) Plan {
	radius = min(max(radius, 0), frames.MaxRadius)
	plan := Plan{Radius: radius}
	for _, ch := range []annotation.Channel{annotation.Left, annotation.Right} {
		cp := ChannelPlan{Channel: ch}
		for _, g := range set.Groups(ch) {
			cp.Groups = append(cp.Groups, planGroup(g, radius))
		}
		plan.Channels = append(plan.Channels, cp)
	}
	return plan
}

func planGroup(g annotation.Group, radius int) GroupPlan {
	width := frames.PadWidth(g.Frames())
	kept, dropped := g.Deduplicate()
	gp := GroupPlan{
		Channel:  g.Channel,
		Video:    g.Video,
		Width:    width,
		Dropped:  dropped,
		Requests: make([]Request, 0, len(kept)),
	}
	for _, rec := range kept {
		for _, idx := range frames.Expand(rec.Frame, radius) {
			gp.Requests = append(gp.Requests, Request{
				Channel: g.Channel,
				Video:   g.Video,
				Frame:   idx,
				Center:  rec.Frame,
				Width:   width,
				Meta:    rec.Meta,
			})
		}
	}
	return gp
}

// Total returns the number of frame requests across all channels.
func (p Plan) Total() int {
	n := 0
	for _, cp := range p.Channels {
		n += cp.Total()
	}
	return n
}

// Total returns the number of frame requests in the channel.
func (cp ChannelPlan) Total() int {
	n := 0
	for _, g := range cp.Groups {
		n += len(g.Requests)
	}
	return n
}

// DroppedCount returns how many distinct (video, frame) pairs were dropped as
// duplicates across the plan.
func (p Plan) DroppedCount() int {
	n := 0
	for _, cp := range p.Channels {
		for _, g := range cp.Groups {
			n += len(g.Dropped)
		}
	}
	return n
}
