package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwtly10/go-reqbench/internal/config"
	"github.com/jwtly10/go-reqbench/internal/db"
	"github.com/jwtly10/go-reqbench/internal/history"
	"github.com/jwtly10/go-reqbench/internal/server"
	"github.com/jwtly10/go-reqbench/internal/workbench"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("Failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := cfg.Server.Logger

	d, err := db.Initialize(cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer d.Close()
	logger.Info("Database initialized", "path", cfg.Database.Path)

	wb := workbench.New(history.NewRepository(d), logger)
	defer wb.Close()

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: server.NewServer(wb, logger, &cfg.Server),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", srv.Addr, "url", cfg.Server.HTTPURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}
