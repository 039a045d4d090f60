package testsupport

import (
	"path/filepath"
	"testing"

	"reelreview/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithRequiredApprovers overrides the approval quorum for new sessions.
func WithRequiredApprovers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Review.DefaultRequiredApprovers = n
	}
}

// WithMaxContentLength overrides the comment length limit.
func WithMaxContentLength(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Comments.MaxContentLength = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}

// WithDrawing replaces the drawing section.
func WithDrawing(d config.Drawing) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Drawing = d
	}
}
