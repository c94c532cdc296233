// Package storagetest stellt eine In-Memory-SQLite-Datenbank für Tests bereit.
package storagetest

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"paper-sorts/config"
	"paper-sorts/storage"
)

// Open öffnet eine frische In-Memory-Datenbank, die mit dem Test geschlossen wird.
func Open(t testing.TB) *storage.DB {
	t.Helper()
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: ":memory:"}
	db, err := storage.Open(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
