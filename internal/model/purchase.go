// Package model defines the core domain types for purchase tracking.
package model

import (
	"time"
)

// PurchaseRecord represents a single captured purchase from any capture
// channel (email receipt, retailer sync, browser extension, mobile OCR,
// bank inference).
type PurchaseRecord struct {
	PurchaseDate time.Time
	CreatedAt    time.Time
	ID           string
	UserID       string
	ProductName  string // Free-text product description
	Retailer     string // Free-text retailer name
	ArchivedInto string // ID of the primary record this one was folded into
	Price        float64
	Archived     bool
}
