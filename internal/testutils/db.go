package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jwtly10/go-reqbench/internal/config"
	"github.com/jwtly10/go-reqbench/internal/db"
)

// SetupTestDB creates a new SQLite database for testing and applies all migrations.
func SetupTestDB(t *testing.T) (*db.Database, func()) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")

	database, err := db.Initialize(config.DatabaseConfig{
		Path: path,
	}, TestLogger())
	if err != nil {
		t.Fatalf("Could not initialize database: %v", err)
	}

	cleanup := func() {
		database.Close()
	}

	return database, cleanup
}

// TestLogger is a quiet logger for tests, only warnings and above reach stderr
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}
