package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/trovehq/trove/internal/common"
	"github.com/trovehq/trove/internal/dedup"
	"github.com/trovehq/trove/internal/model"
)

// SaveRecords saves multiple purchase records to the database. Each
// record's fingerprint is computed from its normalized fields on the way in.
func (s *SQLiteStorage) SaveRecords(ctx context.Context, records []model.PurchaseRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecords(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO purchase_records (
			id, user_id, product_name, purchase_price, purchase_date,
			retailer, fingerprint, archived, archived_into, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range records {
		fingerprint := dedup.Fingerprint(&rec)
		createdAt := rec.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}

		// A zero purchase date is stored as NULL so it reads back zero.
		var purchaseDate any
		if !rec.PurchaseDate.IsZero() {
			purchaseDate = rec.PurchaseDate
		}

		if _, err := stmt.ExecContext(ctx,
			rec.ID, rec.UserID, rec.ProductName, rec.Price, purchaseDate,
			rec.Retailer, fingerprint, rec.Archived, rec.ArchivedInto, createdAt,
		); err != nil {
			return fmt.Errorf("failed to save record %s: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

// UpdateRecord rewrites an existing record's purchase fields. The
// fingerprint is recomputed from the updated values.
func (s *SQLiteStorage) UpdateRecord(ctx context.Context, record *model.PurchaseRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecord(record); err != nil {
		return err
	}

	var purchaseDate any
	if !record.PurchaseDate.IsZero() {
		purchaseDate = record.PurchaseDate
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE purchase_records
		SET product_name = ?, purchase_price = ?, purchase_date = ?,
		    retailer = ?, fingerprint = ?
		WHERE id = ?
	`, record.ProductName, record.Price, purchaseDate,
		record.Retailer, dedup.Fingerprint(record), record.ID)
	if err != nil {
		return fmt.Errorf("failed to update record %s: %w", record.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("record %s: %w", record.ID, common.ErrNotFound)
	}
	return nil
}

// GetRecordByID fetches a single record.
func (s *SQLiteStorage) GetRecordByID(ctx context.Context, id string) (*model.PurchaseRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, product_name, purchase_price, purchase_date,
		       retailer, archived, COALESCE(archived_into, ''), created_at
		FROM purchase_records WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetRecordsForUser returns one user's active (non-archived) records in
// insertion order. The duplicate scan relies on this ordering for anchor
// selection and primary tie-breaking.
func (s *SQLiteStorage) GetRecordsForUser(ctx context.Context, userID string) ([]model.PurchaseRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, product_name, purchase_price, purchase_date,
		       retailer, archived, COALESCE(archived_into, ''), created_at
		FROM purchase_records
		WHERE user_id = ? AND archived = 0
		ORDER BY rowid
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.PurchaseRecord
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// GetUserIDs returns every user that owns at least one active record.
func (s *SQLiteStorage) GetUserIDs(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT user_id FROM purchase_records WHERE archived = 0 ORDER BY user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []string
	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, fmt.Errorf("failed to scan user ID: %w", scanErr)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// ArchiveRecords marks the given duplicates archived into the primary.
// Records are never hard-deleted.
func (s *SQLiteStorage) ArchiveRecords(ctx context.Context, primaryID string, duplicateIDs []string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(primaryID, "primaryID"); err != nil {
		return err
	}
	if len(duplicateIDs) == 0 {
		return fmt.Errorf("%w: duplicateIDs", ErrEmptySlice)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE purchase_records SET archived = 1, archived_into = ? WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, id := range duplicateIDs {
		if _, err := stmt.ExecContext(ctx, primaryID, id); err != nil {
			return fmt.Errorf("failed to archive record %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// LogConsolidation appends one group's consolidation outcome to the audit log.
func (s *SQLiteStorage) LogConsolidation(ctx context.Context, entry model.ConsolidationEntry) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(entry.PrimaryID, "entry.PrimaryID"); err != nil {
		return err
	}

	archivedJSON, err := json.Marshal(entry.ArchivedIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal archived IDs: %w", err)
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO consolidation_log (scan_id, user_id, primary_id, archived_ids, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ScanID, entry.UserID, entry.PrimaryID, string(archivedJSON), entry.Reason, createdAt)
	if err != nil {
		return fmt.Errorf("failed to log consolidation: %w", err)
	}
	return nil
}

// GetConsolidationLog returns a user's consolidation history, newest first.
func (s *SQLiteStorage) GetConsolidationLog(ctx context.Context, userID string) ([]model.ConsolidationEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT scan_id, user_id, primary_id, archived_ids, COALESCE(reason, ''), created_at
		FROM consolidation_log
		WHERE user_id = ?
		ORDER BY id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query consolidation log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.ConsolidationEntry
	for rows.Next() {
		var entry model.ConsolidationEntry
		var archivedJSON string
		if scanErr := rows.Scan(&entry.ScanID, &entry.UserID, &entry.PrimaryID,
			&archivedJSON, &entry.Reason, &entry.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan consolidation entry: %w", scanErr)
		}
		if unmarshalErr := json.Unmarshal([]byte(archivedJSON), &entry.ArchivedIDs); unmarshalErr != nil {
			return nil, fmt.Errorf("failed to unmarshal archived IDs: %w", unmarshalErr)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// rowScanner lets scanRecord work for both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*model.PurchaseRecord, error) {
	var rec model.PurchaseRecord
	var purchaseDate sql.NullTime
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.ProductName, &rec.Price,
		&purchaseDate, &rec.Retailer, &rec.Archived, &rec.ArchivedInto,
		&rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}
	if purchaseDate.Valid {
		rec.PurchaseDate = purchaseDate.Time
	}
	return &rec, nil
}
