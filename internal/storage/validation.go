// Package storage provides the data persistence layer for trove.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/trovehq/trove/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrEmptySlice    = errors.New("slice cannot be empty")
	ErrInvalidRecord = errors.New("invalid purchase record")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRecords validates a slice of purchase records.
func validateRecords(records []model.PurchaseRecord) error {
	if records == nil {
		return fmt.Errorf("%w: records", ErrNilParameter)
	}
	if len(records) == 0 {
		return fmt.Errorf("%w: records", ErrEmptySlice)
	}

	for i, rec := range records {
		if err := validateRecord(&rec); err != nil {
			return fmt.Errorf("record at index %d: %w", i, err)
		}
	}
	return nil
}

// validateRecord validates a single purchase record. Purchase date and
// retailer may legitimately be missing on some capture channels; the
// duplicate scan degrades those dimensions to zero similarity instead of
// rejecting the record.
func validateRecord(rec *model.PurchaseRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if rec.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRecord)
	}
	if rec.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidRecord)
	}
	if rec.ProductName == "" {
		return fmt.Errorf("%w: missing product name", ErrInvalidRecord)
	}
	if rec.Price < 0 {
		return fmt.Errorf("%w: negative price", ErrInvalidRecord)
	}
	return nil
}
