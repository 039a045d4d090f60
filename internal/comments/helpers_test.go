package comments_test

import (
	"testing"
	"time"

	"reelreview/internal/comments"
	"reelreview/internal/video"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testAsset() video.Asset {
	return video.Asset{ID: "vid-1", Title: "Launch spot", DurationMs: 10000, FrameRate: 30, Width: 1920, Height: 1080}
}

func mustNew(t *testing.T, d comments.Draft) comments.Comment {
	t.Helper()
	c, err := comments.New(d, testAsset(), baseTime)
	if err != nil {
		t.Fatalf("new comment: %v", err)
	}
	return c
}

func ids(list []comments.Comment) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
