package video

import (
	"fmt"
	"math"
	"strings"

	"reelreview/internal/services"
	"reelreview/internal/timecode"
)

// Asset is the descriptor of a reviewable video.
type Asset struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	SourceURL      string  `json:"source_url"`
	ThumbnailURL   string  `json:"thumbnail_url,omitempty"`
	DurationMs     int64   `json:"duration_ms"`
	FrameRate      float64 `json:"frame_rate"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	AllowDownloads bool    `json:"allow_downloads"`
}

// Validate checks the invariants every engine operation relies on.
func (a Asset) Validate() error {
	switch {
	case strings.TrimSpace(a.ID) == "":
		return invalid("video id is required")
	case a.DurationMs < 0:
		return invalid(fmt.Sprintf("duration must be >= 0, got %d", a.DurationMs))
	case a.FrameRate <= 0 || math.IsNaN(a.FrameRate) || math.IsInf(a.FrameRate, 0):
		return invalid(fmt.Sprintf("frame rate must be > 0, got %v", a.FrameRate))
	case a.Width < 0 || a.Height < 0:
		return invalid(fmt.Sprintf("dimensions must be >= 0, got %dx%d", a.Width, a.Height))
	}
	return nil
}

// Contains reports whether ms lies inside [0, DurationMs].
func (a Asset) Contains(ms int64) bool {
	return ms >= 0 && ms <= a.DurationMs
}

// CheckTimestamp returns a validation error when ms is outside the video.
func (a Asset) CheckTimestamp(ms int64) error {
	if a.Contains(ms) {
		return nil
	}
	return services.Wrap(services.ErrValidation, "video", "timestamp",
		fmt.Sprintf("timestamp %dms outside [0, %d]", ms, a.DurationMs), nil)
}

// Clamp pins ms into [0, DurationMs].
func (a Asset) Clamp(ms int64) int64 {
	return timecode.Clamp(ms, a.DurationMs)
}

// Timecode renders ms as SMPTE at the asset's frame rate.
func (a Asset) Timecode(ms int64) string {
	return timecode.MsToSMPTE(ms, a.FrameRate)
}

// FrameCount returns the number of frames in the asset.
func (a Asset) FrameCount() int64 {
	last, err := timecode.FrameIndex(a.DurationMs, a.FrameRate)
	if err != nil || a.DurationMs <= 0 {
		return 0
	}
	return last + 1
}

// Step moves ms by delta frames, clamped to the asset.
func (a Asset) Step(ms int64, delta int) (int64, error) {
	return timecode.StepFrames(ms, delta, a.FrameRate, a.DurationMs)
}

// Percent returns ms as a percentage of the duration, used to place timeline
// markers. A zero-length asset places everything at 0.
func (a Asset) Percent(ms int64) float64 {
	if a.DurationMs <= 0 {
		return 0
	}
	return float64(a.Clamp(ms)) / float64(a.DurationMs) * 100
}

// AspectRatio returns width/height, or zero when unknown.
func (a Asset) AspectRatio() float64 {
	if a.Width <= 0 || a.Height <= 0 {
		return 0
	}
	return float64(a.Width) / float64(a.Height)
}

func invalid(message string) error {
	return services.Wrap(services.ErrValidation, "video", "validate", message, nil)
}
