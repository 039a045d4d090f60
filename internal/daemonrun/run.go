package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"reelreview/internal/config"
	"reelreview/internal/daemon"
	"reelreview/internal/logging"
	"reelreview/internal/store"
)

// Options configures daemon process runtime behavior.
type Options struct {
	// LogLevel overrides logging.level when set.
	LogLevel string
	// LogFormat overrides logging.format when set.
	LogFormat string
}

// Run starts the reelreview daemon and blocks until ctx is cancelled or the
// process receives SIGINT or SIGTERM.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	runCfg := *cfg
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		runCfg.Logging.Level = level
	}
	if format := strings.TrimSpace(opts.LogFormat); format != "" {
		runCfg.Logging.Format = format
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := runCfg.EnsureDirectories(); err != nil {
		return err
	}
	logger, closeLog, err := logging.NewDaemon(&runCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closeLog() //nolint:errcheck

	logConfigSnapshot(logger, &runCfg)

	pidPath := PIDPath(&runCfg)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	st, err := store.Open(&runCfg)
	if err != nil {
		logging.ErrorWithContext(logger, "open review store", "store_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.data_dir permissions and database integrity"),
		)
		return err
	}

	d, err := daemon.New(&runCfg, st, logger)
	if err != nil {
		st.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logging.ErrorWithContext(logger, "daemon start failed", "daemon_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "stop the other daemon or change paths.api_bind"),
		)
		return err
	}

	<-signalCtx.Done()
	logger.Info("reelreview daemon shutting down", logging.String(logging.FieldEventType, "daemon_shutdown"))
	return nil
}

// PIDPath returns the pid file written while the daemon runs.
func PIDPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.DataDir, "reelreviewd.pid")
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.String("data_dir", cfg.Paths.DataDir),
		logging.String("log_dir", cfg.Paths.LogDir),
		logging.String("api_bind", cfg.Paths.APIBind),
		logging.Int("default_required_approvers", cfg.Review.DefaultRequiredApprovers),
		logging.Any("default_frame_rate", cfg.Review.DefaultFrameRate),
		logging.Int("max_content_length", cfg.Comments.MaxContentLength),
	)
}
