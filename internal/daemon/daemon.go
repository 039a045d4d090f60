package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"reelreview/internal/api"
	"reelreview/internal/config"
	"reelreview/internal/logging"
	"reelreview/internal/metrics"
	"reelreview/internal/store"
)

// Daemon serves the review API and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	service *api.Service
	metrics *metrics.Metrics
	server  *apiServer

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	mu        sync.Mutex
	startedAt time.Time
}

// New constructs a daemon around an open store.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil {
		return nil, errors.New("daemon requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	m := metrics.New()
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    st,
		metrics:  m,
		service:  api.NewService(st, cfg, api.WithLogger(logger), api.WithMetrics(m)),
		lockPath: cfg.LockPath(),
		lock:     flock.New(cfg.LockPath()),
	}
	d.server = newAPIServer(cfg.Paths.APIBind, d, logging.NewComponentLogger(logger, "api-server"))
	return d, nil
}

// Start acquires the daemon lock and starts serving HTTP on the configured
// bind address. The server shuts down when ctx is cancelled.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another reelreview daemon instance is already running")
	}

	if err := d.server.start(ctx); err != nil {
		_ = d.lock.Unlock()
		return err
	}

	d.mu.Lock()
	d.startedAt = time.Now().UTC()
	d.mu.Unlock()
	d.running.Store(true)
	d.logger.Info("reelreview daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("lock", d.lockPath),
		logging.String("address", d.Addr()),
		logging.String("database", d.store.Path()),
	)
	return nil
}

// Stop shuts down the HTTP server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.server.stop()
	if err := d.lock.Unlock(); err != nil {
		logging.WarnWithContext(d.logger, "failed to release daemon lock", "lock_release_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the lock file if no daemon is running"),
		)
	}
	d.running.Store(false)
	d.logger.Info("reelreview daemon stopped", logging.String(logging.FieldEventType, "daemon_stopped"))
}

// Close stops the daemon and closes the store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Handler returns the HTTP handler serving the API, for embedding and tests.
func (d *Daemon) Handler() http.Handler {
	return d.server.handler
}

// Service returns the service facade the API delegates to.
func (d *Daemon) Service() *api.Service {
	return d.service
}

// Addr returns the listening address, or the configured bind address before
// Start.
func (d *Daemon) Addr() string {
	return d.server.addr()
}

// Status reports runtime information and store counts.
func (d *Daemon) Status(ctx context.Context) (api.DaemonStatus, error) {
	stats, err := d.service.Stats(ctx)
	if err != nil {
		return api.DaemonStatus{}, err
	}
	d.mu.Lock()
	started := d.startedAt
	d.mu.Unlock()

	status := api.DaemonStatus{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
		APIBind:      d.Addr(),
		Stats:        stats,
		Database:     api.FromHealth(d.store.CheckHealth(ctx)),
	}
	if d.running.Load() && !started.IsZero() {
		status.StartedAt = started.Format(time.RFC3339)
	}
	return status, nil
}
