package extraction

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"framextract/internal/annotation"
	"framextract/internal/failures"
	"framextract/internal/frames"
)

func group(ch annotation.Channel, video string, frames ...int) annotation.Group {
	g := annotation.Group{Channel: ch, Video: video}
	for _, f := range frames {
		g.Records = append(g.Records, annotation.Record{Video: video, Frame: f, Meta: annotation.Metadata{Length: "10"}})
	}
	return g
}

func requestFrames(g GroupPlan) []int {
	out := make([]int, len(g.Requests))
	for i, r := range g.Requests {
		out[i] = r.Frame
	}
	return out
}

func TestBuildPlanExpandsWindows(t *testing.T) {
	set := annotation.ChannelSet{
		Left:  []annotation.Group{group(annotation.Left, "camA.mp4", 50)},
		Right: []annotation.Group{group(annotation.Right, "camB.mp4", 75)},
	}
	plan := BuildPlan(set, 2)
	if len(plan.Channels) != 2 || plan.Channels[0].Channel != annotation.Left || plan.Channels[1].Channel != annotation.Right {
		t.Fatalf("expected left then right, got %+v", plan.Channels)
	}
	left := plan.Channels[0].Groups[0]
	if !reflect.DeepEqual(requestFrames(left), []int{48, 49, 50, 51, 52}) {
		t.Fatalf("left frames = %v", requestFrames(left))
	}
	if left.Width != 2 || left.Requests[0].Center != 50 || left.Requests[0].Width != 2 {
		t.Fatalf("unexpected left plan %+v", left)
	}
	if got := requestFrames(plan.Channels[1].Groups[0]); !reflect.DeepEqual(got, []int{73, 74, 75, 76, 77}) {
		t.Fatalf("right frames = %v", got)
	}
	if plan.Total() != 10 {
		t.Fatalf("Total = %d", plan.Total())
	}
}

func TestBuildPlanDeduplicatesBeforeExpanding(t *testing.T) {
	set := annotation.ChannelSet{
		Left: []annotation.Group{group(annotation.Left, "camA.mp4", 50, 60, 50)},
	}
	plan := BuildPlan(set, 1)
	g := plan.Channels[0].Groups[0]
	if !reflect.DeepEqual(requestFrames(g), []int{59, 60, 61}) {
		t.Fatalf("expected only frame 60 window, got %v", requestFrames(g))
	}
	if !reflect.DeepEqual(g.Dropped, []int{50}) || plan.DroppedCount() != 1 {
		t.Fatalf("dropped = %v", g.Dropped)
	}
}

func TestBuildPlanWidthFromMaxAnnotatedFrame(t *testing.T) {
	set := annotation.ChannelSet{
		Left: []annotation.Group{group(annotation.Left, "camA.mp4", 8, 1200, 1200)},
	}
	g := BuildPlan(set, 2).Channels[0].Groups[0]
	if g.Width != 4 {
		t.Fatalf("width = %d, want 4", g.Width)
	}
	for _, r := range g.Requests {
		if r.Width != 4 {
			t.Fatalf("request width %d", r.Width)
		}
	}
	// window past a power of ten keeps the group width
	g = BuildPlan(annotation.ChannelSet{Left: []annotation.Group{group(annotation.Left, "camA.mp4", 99)}}, 2).Channels[0].Groups[0]
	if g.Width != 2 || g.Requests[len(g.Requests)-1].Frame != 101 {
		t.Fatalf("unexpected plan %+v", g)
	}
}

func TestBuildPlanKeepsTableOrderWithinGroup(t *testing.T) {
	set := annotation.ChannelSet{
		Left: []annotation.Group{group(annotation.Left, "camA.mp4", 30, 10, 20)},
	}
	g := BuildPlan(set, 0).Channels[0].Groups[0]
	if !reflect.DeepEqual(requestFrames(g), []int{30, 10, 20}) {
		t.Fatalf("frames = %v", requestFrames(g))
	}
}

func TestBuildPlanNegativeRadius(t *testing.T) {
	set := annotation.ChannelSet{Left: []annotation.Group{group(annotation.Left, "camA.mp4", 5)}}
	plan := BuildPlan(set, -3)
	if plan.Radius != 0 || plan.Total() != 1 {
		t.Fatalf("unexpected plan %+v", plan)
	}
}

func TestBuildPlanClampsHugeRadius(t *testing.T) {
	set := annotation.ChannelSet{Left: []annotation.Group{group(annotation.Left, "camA.mp4", 5)}}
	plan := BuildPlan(set, math.MaxInt/2)
	if plan.Radius != frames.MaxRadius || plan.Total() != 2*frames.MaxRadius+1 {
		t.Fatalf("radius=%d total=%d", plan.Radius, plan.Total())
	}
}

func TestProcessChannelChecksEmptyGroups(t *testing.T) {
	dir := t.TempDir()
	proc := NewProcessor(ProcessorOptions{
		Opener:    newFakeOpener(nil),
		VideoRoot: dir,
		ImageRoot: t.TempDir(),
	})
	cp := ChannelPlan{Channel: annotation.Left, Groups: []GroupPlan{{
		Channel: annotation.Left,
		Video:   "gone.mp4",
		Dropped: []int{12},
	}}}
	err := proc.ProcessChannel(context.Background(), cp)
	if !errors.Is(err, failures.ErrNotFound) {
		t.Fatalf("expected not found for fully deduplicated missing video, got %v", err)
	}
}
