// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/trovehq/trove/internal/model"
)

// Storage defines the contract for our persistence layer. Record lists are
// always returned in insertion order, which the duplicate scan depends on
// for anchor selection and tie-breaking.
type Storage interface {
	// Record operations
	SaveRecords(ctx context.Context, records []model.PurchaseRecord) error
	UpdateRecord(ctx context.Context, record *model.PurchaseRecord) error
	GetRecordByID(ctx context.Context, id string) (*model.PurchaseRecord, error)
	GetRecordsForUser(ctx context.Context, userID string) ([]model.PurchaseRecord, error)
	GetUserIDs(ctx context.Context) ([]string, error)

	// Consolidation operations
	ArchiveRecords(ctx context.Context, primaryID string, duplicateIDs []string) error
	LogConsolidation(ctx context.Context, entry model.ConsolidationEntry) error
	GetConsolidationLog(ctx context.Context, userID string) ([]model.ConsolidationEntry, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
