package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const version = "0.1.0"

// SetupLogger sets up the internal logger for the CLI tool, logging to a file in the user's home directory
// so log lines never land on top of the dashboard
func SetupLogger(debug bool) (*slog.Logger, error) {
	// Logs will be saved at ~/.reqbench/logs/reqbench-cli.log
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error getting home directory: %w", err)
	}

	logsDir := filepath.Join(homeDir, ".reqbench", "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating logs directory: %w", err)
	}

	logFile := filepath.Join(logsDir, "reqbench-cli.log")
	f, err := os.OpenFile(logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)

	logger.Info("reqbench CLI started", "version", version)

	return logger, nil
}
