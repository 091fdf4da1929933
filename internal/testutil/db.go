package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/devflow-dev/devflow/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())

	conn, err := db.Connect("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.MigrateDatabase(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// A single connection keeps the shared-cache database alive and serializes writers.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return conn
}

// NewFileDB returns a migrated SQLite database in a temp file with an
// unbounded pool, for tests that need real concurrent connections.
// Transactions begin IMMEDIATE so writers wait on the busy timeout
// instead of failing on lock upgrade.
func NewFileDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "devflow.db")
	dsn := path + "?_foreign_keys=on&_busy_timeout=10000&_txlock=immediate"

	conn, err := db.Connect("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.MigrateDatabase(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	return conn
}
