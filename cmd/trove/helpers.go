package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/trovehq/trove/internal/common"
	"github.com/trovehq/trove/internal/dedup"
	"github.com/trovehq/trove/internal/storage"
)

// expandPath expands a leading ~ and $VAR style environment variables in a
// file path.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}
	return os.ExpandEnv(path)
}

// openStorage opens the configured database, retrying briefly so a scan
// started while another trove process holds the write lock does not fail
// outright.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := expandPath(viper.GetString("database.path"))
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".local", "share", "trove", "trove.db")
	}

	var store *storage.SQLiteStorage
	err := common.WithRetry(ctx, func() error {
		var openErr error
		store, openErr = storage.NewSQLiteStorage(dbPath)
		return openErr
	}, common.RetryOptions{MaxAttempts: 3})
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("failed to open database at %s", dbPath), err)
	}
	return store, nil
}

// detectorConfig builds the detector configuration from viper, validating
// the configured weights.
func detectorConfig() (dedup.Config, error) {
	cfg := dedup.Config{
		Threshold: viper.GetFloat64("dedup.threshold"),
		Weights: dedup.Weights{
			Name:     viper.GetFloat64("dedup.weights.name"),
			Price:    viper.GetFloat64("dedup.weights.price"),
			Date:     viper.GetFloat64("dedup.weights.date"),
			Retailer: viper.GetFloat64("dedup.weights.retailer"),
		},
	}
	if err := cfg.Weights.Validate(); err != nil {
		return dedup.Config{}, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}
	return cfg, nil
}
