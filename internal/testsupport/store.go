package testsupport

import (
	"context"
	"testing"

	"reelreview/internal/config"
	"reelreview/internal/store"
	"reelreview/internal/video"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewVideo returns a one-minute 24 fps 1080p asset with the given id.
func NewVideo(id string) video.Asset {
	return video.Asset{
		ID:         id,
		Title:      "Clip " + id,
		SourceURL:  "https://media.example.com/" + id + ".mp4",
		DurationMs: 60_000,
		FrameRate:  24,
		Width:      1920,
		Height:     1080,
	}
}

// MustSaveVideo registers a NewVideo asset in st.
func MustSaveVideo(t testing.TB, st *store.Store, id string) video.Asset {
	t.Helper()

	asset := NewVideo(id)
	if err := st.SaveVideo(context.Background(), asset); err != nil {
		t.Fatalf("store.SaveVideo: %v", err)
	}
	return asset
}
