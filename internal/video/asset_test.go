package video_test

import (
	"errors"
	"testing"

	"reelreview/internal/services"
	"reelreview/internal/video"
)

func sampleAsset() video.Asset {
	return video.Asset{ID: "vid-1", Title: "Spot", DurationMs: 10000, FrameRate: 30, Width: 1920, Height: 1080}
}

func TestValidate(t *testing.T) {
	if err := sampleAsset().Validate(); err != nil {
		t.Fatalf("expected valid asset, got %v", err)
	}
	cases := map[string]func(*video.Asset){
		"missing id":     func(a *video.Asset) { a.ID = "  " },
		"negative time":  func(a *video.Asset) { a.DurationMs = -1 },
		"zero rate":      func(a *video.Asset) { a.FrameRate = 0 },
		"negative width": func(a *video.Asset) { a.Width = -1 },
	}
	for name, mutate := range cases {
		a := sampleAsset()
		mutate(&a)
		if err := a.Validate(); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestTimestampRange(t *testing.T) {
	a := sampleAsset()
	for _, ms := range []int64{0, 500, 10000} {
		if err := a.CheckTimestamp(ms); err != nil {
			t.Fatalf("%d should be in range: %v", ms, err)
		}
	}
	for _, ms := range []int64{-1, 10001} {
		if err := a.CheckTimestamp(ms); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("%d should be rejected, got %v", ms, err)
		}
	}
	if a.Clamp(20000) != 10000 || a.Clamp(-5) != 0 {
		t.Fatal("clamp did not pin to the video range")
	}
}

func TestTimecodeAndFrames(t *testing.T) {
	a := sampleAsset()
	if got := a.Timecode(500); got != "00:00:00:15" {
		t.Fatalf("unexpected timecode %q", got)
	}
	if got := a.FrameCount(); got != 301 {
		t.Fatalf("expected 301 frames, got %d", got)
	}
	next, err := a.Step(500, 1)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if next != 534 {
		t.Fatalf("expected 534, got %d", next)
	}
}

func TestPercentAndAspect(t *testing.T) {
	a := sampleAsset()
	if got := a.Percent(2500); got != 25 {
		t.Fatalf("expected 25%%, got %v", got)
	}
	if got := (video.Asset{}).Percent(100); got != 0 {
		t.Fatalf("zero-length asset should place markers at 0, got %v", got)
	}
	if got := a.AspectRatio(); got < 1.77 || got > 1.78 {
		t.Fatalf("unexpected aspect ratio %v", got)
	}
}
