// Package dbtest opens migrated SQLite databases for tests.
package dbtest

import (
	"testing"

	"github.com/EnmanuelReynoso23/el-pensum/database"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated in-memory SQLite database closed at test cleanup
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	return open(t, ":memory:")
}

// OpenFile is Open backed by the file at path, so handles opened on the same
// path see the same data
func OpenFile(t testing.TB, path string) *gorm.DB {
	t.Helper()
	return open(t, path)
}

func open(t testing.TB, dsn string) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
