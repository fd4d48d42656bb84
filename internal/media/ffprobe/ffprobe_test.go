package ffprobe

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "audio", NBFrames: "999"},
			{CodecType: "video", NBFrames: "250", AvgFrameRate: "25/1"},
		},
		Format: Format{Duration: "10.0"},
	}
	n, ok := result.FrameCount()
	if !ok || n != 250 {
		t.Fatalf("FrameCount = %d, %v", n, ok)
	}
	if result.FrameRate() != 25 {
		t.Fatalf("unexpected frame rate %v", result.FrameRate())
	}
	if result.DurationSeconds() != 10 {
		t.Fatalf("unexpected duration %v", result.DurationSeconds())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "video", NBFrames: "N/A", AvgFrameRate: "0/0"}},
		Format:  Format{Duration: "bad"},
	}
	if _, ok := result.FrameCount(); ok {
		t.Fatal("expected unknown frame count")
	}
	if result.FrameRate() != 0 {
		t.Fatalf("expected zero frame rate, got %v", result.FrameRate())
	}
	if result.DurationSeconds() != 0 {
		t.Fatalf("expected zero duration, got %v", result.DurationSeconds())
	}
	if _, ok := (Result{}).FrameCount(); ok {
		t.Fatal("expected no video stream")
	}
}

func TestFrameCountPrefersCountedFrames(t *testing.T) {
	result := Result{Streams: []Stream{{CodecType: "video", NBFrames: "300", NBReadFrames: "298"}}}
	if n, _ := result.FrameCount(); n != 298 {
		t.Fatalf("expected counted frames, got %d", n)
	}
}

func TestInspectParsesStubOutput(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffprobe")
	script := "#!/bin/sh\ncat <<'JSON'\n{\"streams\":[{\"index\":0,\"codec_type\":\"video\",\"nb_frames\":\"120\"}],\"format\":{\"duration\":\"4.8\"}}\nJSON\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	result, err := Inspect(context.Background(), stub, "/videos/camA.mp4", Options{})
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if n, ok := result.FrameCount(); !ok || n != 120 {
		t.Fatalf("FrameCount = %d, %v", n, ok)
	}
}

func TestInspectReportsFailure(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffprobe")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\necho 'moov atom not found' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	if _, err := Inspect(context.Background(), stub, "/videos/bad.mp4", Options{}); err == nil {
		t.Fatal("expected error")
	}
	if _, err := Inspect(context.Background(), stub, " ", Options{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}
