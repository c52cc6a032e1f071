// Package testdb provides a migrated in-memory SQLite database for tests.
package testdb

import (
	"context"
	"testing"

	"github.com/helixml/dagforge/infrastructure/persistence"
	"github.com/helixml/dagforge/internal/database"
)

// New opens an in-memory SQLite database with every dagforge table migrated.
// It is closed when the test finishes.
func New(t *testing.T) database.Database {
	t.Helper()
	db, err := database.NewDatabase(context.Background(), "sqlite:///:memory:")
	if err != nil {
		t.Fatalf("testdb.New: open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := persistence.AutoMigrate(db); err != nil {
		t.Fatalf("testdb.New: auto migrate: %v", err)
	}
	return db
}

// WithSchema opens an unmigrated in-memory database and runs statements
// against it.
func WithSchema(t *testing.T, statements ...string) database.Database {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewDatabase(ctx, "sqlite:///:memory:")
	if err != nil {
		t.Fatalf("testdb.WithSchema: open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	for _, stmt := range statements {
		if err := db.Session(ctx).Exec(stmt).Error; err != nil {
			t.Fatalf("testdb.WithSchema: %v\nSQL: %s", err, stmt)
		}
	}
	return db
}
