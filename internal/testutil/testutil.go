// Package testutil builds application contexts backed by a throwaway SQLite
// database and upload directory.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/feedasfor-cyber/expense-management-app/internal/appcontext"
	"github.com/feedasfor-cyber/expense-management-app/internal/config"
	"github.com/feedasfor-cyber/expense-management-app/internal/filestore"
	"github.com/feedasfor-cyber/expense-management-app/internal/metrics"
	"go.uber.org/zap/zaptest"
)

const (
	Username = "admin"
	Password = "secret123"
)

// NewContext returns a migrated context whose resources are released when
// the test ends.
func NewContext(t testing.TB) *appcontext.Context {
	t.Helper()
	dir := t.TempDir()

	db, err := config.OpenDB(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	files, err := filestore.NewLocal(filepath.Join(dir, "uploads"))
	if err != nil {
		t.Fatalf("file store: %v", err)
	}

	recorder, err := metrics.New()
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}

	return &appcontext.Context{
		DB:                 db,
		Logger:             zaptest.NewLogger(t),
		Files:              files,
		Metrics:            recorder,
		AuthUsername:       Username,
		AuthPassword:       Password,
		Environment:        "test",
		DetailMaxPageSize:  200,
		PreviewMaxPageSize: 1000,
	}
}
