package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"reelreview/internal/comments"
	"reelreview/internal/config"
	"reelreview/internal/logging"
	"reelreview/internal/metrics"
	"reelreview/internal/review"
	"reelreview/internal/services"
	"reelreview/internal/store"
	"reelreview/internal/video"
)

// Repository abstracts the persistence operations the service needs.
// *store.Store satisfies it.
type Repository interface {
	SaveVideo(ctx context.Context, asset video.Asset) error
	GetVideo(ctx context.Context, id string) (*store.VideoRecord, error)
	ListVideos(ctx context.Context) ([]*store.VideoRecord, error)
	RemoveVideo(ctx context.Context, id string) (bool, error)
	SaveComment(ctx context.Context, c comments.Comment) error
	SaveComments(ctx context.Context, list []comments.Comment) error
	GetComment(ctx context.Context, id string) (*comments.Comment, error)
	CommentsByVideo(ctx context.Context, videoID string) ([]comments.Comment, error)
	DeleteComments(ctx context.Context, ids ...string) (int64, error)
	SaveReview(ctx context.Context, state review.State) error
	GetReview(ctx context.Context, id string) (*review.State, error)
	SessionsByVideo(ctx context.Context, videoID string) ([]review.Session, error)
	Stats(ctx context.Context) (store.Stats, error)
}

// Service translates API requests into load, engine, persist cycles. Writes
// are serialized so each mutation works on a consistent snapshot.
type Service struct {
	repo      Repository
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *metrics.Metrics
	directory comments.Directory
	now       func() time.Time

	mu sync.Mutex
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics records domain counters on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDirectory resolves @-mentions against a team directory.
func WithDirectory(dir comments.Directory) Option {
	return func(s *Service) { s.directory = dir }
}

// NewService constructs a Service around repo. A nil config uses defaults.
func NewService(repo Repository, cfg *config.Config, opts ...Option) *Service {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	s := &Service{repo: repo, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "api")
	return s
}

// Stats returns persisted activity counts.
func (s *Service) Stats(ctx context.Context) (StoreStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return StoreStats{}, s.fail(ctx, "stats", err)
	}
	return FromStats(stats), nil
}

// RegisterVideo validates and stores a video asset.
func (s *Service) RegisterVideo(ctx context.Context, req RegisterVideoRequest) (Video, error) {
	if err := validateRequest("register video", req); err != nil {
		return Video{}, s.fail(ctx, "register_video", err)
	}
	asset := video.Asset{
		ID:             strings.TrimSpace(req.ID),
		Title:          strings.TrimSpace(req.Title),
		SourceURL:      req.SourceURL,
		ThumbnailURL:   req.ThumbnailURL,
		DurationMs:     req.DurationMs,
		FrameRate:      req.FrameRate,
		Width:          req.Width,
		Height:         req.Height,
		AllowDownloads: req.AllowDownloads,
	}
	if asset.FrameRate == 0 {
		asset.FrameRate = s.cfg.Review.DefaultFrameRate
	}
	if err := asset.Validate(); err != nil {
		return Video{}, s.fail(ctx, "register_video", err)
	}
	if err := s.repo.SaveVideo(ctx, asset); err != nil {
		return Video{}, s.fail(ctx, "register_video", err)
	}
	ctx = services.WithVideoID(ctx, asset.ID)
	logging.WithContext(ctx, s.logger).Info("video registered",
		logging.String(logging.FieldEventType, "video_registered"),
		logging.Int64("duration_ms", asset.DurationMs),
		logging.Any("frame_rate", asset.FrameRate),
	)
	return s.Video(ctx, asset.ID)
}

// Video returns one registered video.
func (s *Service) Video(ctx context.Context, id string) (Video, error) {
	rec, err := s.loadVideo(ctx, id)
	if err != nil {
		return Video{}, s.fail(ctx, "video", err)
	}
	return FromVideo(rec), nil
}

// Videos lists every registered video.
func (s *Service) Videos(ctx context.Context) ([]Video, error) {
	recs, err := s.repo.ListVideos(ctx)
	if err != nil {
		return nil, s.fail(ctx, "videos", err)
	}
	out := make([]Video, 0, len(recs))
	for _, rec := range recs {
		out = append(out, FromVideo(rec))
	}
	return out, nil
}

// RemoveVideo deletes a video together with its comments and review
// sessions.
func (s *Service) RemoveVideo(ctx context.Context, id string) error {
	ctx = services.WithVideoID(ctx, id)
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.repo.RemoveVideo(ctx, id)
	if err != nil {
		return s.fail(ctx, "remove_video", err)
	}
	if !removed {
		return s.fail(ctx, "remove_video",
			services.Wrap(services.ErrNotFound, "api", "remove video", fmt.Sprintf("video %s not found", id), nil))
	}
	logging.WithContext(ctx, s.logger).Info("video removed",
		logging.String(logging.FieldEventType, "video_removed"),
	)
	return nil
}

func (s *Service) loadVideo(ctx context.Context, id string) (*store.VideoRecord, error) {
	rec, err := s.repo.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, services.Wrap(services.ErrNotFound, "api", "load video", fmt.Sprintf("video %s not found", id), nil)
	}
	return rec, nil
}

// fail records err against operation and returns it unchanged. Recoverable
// errors are caller mistakes and log at warn; the rest log at error.
func (s *Service) fail(ctx context.Context, operation string, err error) error {
	if err == nil {
		return nil
	}
	kind := services.KindOf(err)
	s.metrics.Error(operation, string(kind))
	logger := logging.WithContext(ctx, s.logger)
	attrs := []logging.Attr{
		logging.String("operation", operation),
		logging.String("error_kind", string(kind)),
		logging.Error(err),
	}
	if services.IsRecoverable(err) {
		logging.WarnWithContext(logger, "request rejected", "request_rejected",
			append(attrs, logging.String(logging.FieldErrorHint, "fix the request and retry"))...)
	} else {
		logging.ErrorWithContext(logger, "operation failed", "operation_failed", attrs...)
	}
	return err
}
