// Package testutil provides test helpers for trove.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/trovehq/trove/internal/model"
	"github.com/trovehq/trove/internal/service"
	"github.com/trovehq/trove/internal/storage"
)

// TestDB wraps an in-memory storage instance for tests.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory SQLite database. Cleanup is
// registered automatically.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// SeedRecords saves the given records, failing the test on error.
func (db *TestDB) SeedRecords(ctx context.Context, records ...model.PurchaseRecord) {
	db.t.Helper()
	if err := db.Storage.SaveRecords(ctx, records); err != nil {
		db.t.Fatalf("failed to seed records: %v", err)
	}
}

// Record builds a purchase record with sensible test defaults.
func Record(id, userID, product string, price float64, purchased, created time.Time, retailer string) model.PurchaseRecord {
	return model.PurchaseRecord{
		ID:           id,
		UserID:       userID,
		ProductName:  product,
		Price:        price,
		PurchaseDate: purchased,
		CreatedAt:    created,
		Retailer:     retailer,
	}
}

// SequentialIDs is a deterministic IDProvider for tests.
type SequentialIDs struct {
	Prefix string
	n      int
}

// NewID returns prefix-1, prefix-2, and so on.
func (s *SequentialIDs) NewID() string {
	s.n++
	return fmt.Sprintf("%s-%d", s.Prefix, s.n)
}
