package model

import "time"

// ConsolidationEntry is the audit record written after one duplicate group
// is consolidated. ScanID correlates all entries produced by one batch
// scan pass.
type ConsolidationEntry struct {
	CreatedAt   time.Time
	ScanID      string
	UserID      string
	PrimaryID   string
	Reason      string
	ArchivedIDs []string
}

// ScanSummary aggregates the outcome of one batch scan.
type ScanSummary struct {
	ScanID             string
	UsersScanned       int
	RecordsScanned     int
	GroupsConsolidated int
	RecordsArchived    int
	GroupsFailed       int
}
