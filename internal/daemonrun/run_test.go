package daemonrun_test

import (
	"context"
	"os"
	"testing"

	"reelreview/internal/daemonrun"
	"reelreview/internal/testsupport"
)

func TestRunStopsWhenContextCancelled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := daemonrun.Run(ctx, cfg, daemonrun.Options{LogLevel: "debug", LogFormat: "json"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(daemonrun.PIDPath(cfg)); !os.IsNotExist(err) {
		t.Fatalf("expected pid file removed, got %v", err)
	}
	info, err := os.Stat(cfg.DaemonLogPath())
	if err != nil {
		t.Fatalf("expected daemon log file: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("expected startup records in daemon log")
	}
	if _, err := os.Stat(cfg.DatabasePath()); err != nil {
		t.Fatalf("expected database created: %v", err)
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if err := daemonrun.Run(context.Background(), nil, daemonrun.Options{}); err == nil {
		t.Fatal("expected error without config")
	}
}
