// safebox-server exposes the detonation workflow over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/safeboxlab/safebox/internal/analysis"
	"github.com/safeboxlab/safebox/internal/config"
	"github.com/safeboxlab/safebox/internal/hostcmd"
	"github.com/safeboxlab/safebox/internal/notify"
	"github.com/safeboxlab/safebox/internal/report"
	"github.com/safeboxlab/safebox/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	if cfg.APISecret == "" {
		fmt.Fprintln(os.Stderr, "SAFEBOX_API_SECRET must be set")
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg, "safebox-server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("starting safebox-server",
		"version", config.Version,
		"build_time", config.BuildTime,
		"port", cfg.ListenPort,
		"reports_dir", cfg.ReportsDir,
	)

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM,
	)
	defer cancel()

	runner := analysis.NewRunner(hostcmd.NewRunner(logger), logger)
	store := report.NewStore(cfg.ReportsDir)
	notifier := notify.New(cfg.CallbackURL, logger)

	handler := server.NewHandler(runner, store, notifier, cfg, logger)
	srv := server.NewServer(cfg.ListenPort, handler, cfg.APISecret, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server exited with error", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "err", err)
			os.Exit(1)
		}
	}

	logger.Info("server stopped cleanly")
}
