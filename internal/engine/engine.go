// Package engine orchestrates batch duplicate scans over stored purchase
// records. It pairs the pure dedup core with the storage layer: fetch one
// user's records, group duplicates, consolidate each group, and issue
// archive commands. Per-user scans run concurrently; the core itself holds
// no shared mutable state.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/trovehq/trove/internal/common"
	"github.com/trovehq/trove/internal/dedup"
	"github.com/trovehq/trove/internal/model"
	"github.com/trovehq/trove/internal/service"
)

// ScanEngine runs duplicate scans over a storage backend.
type ScanEngine struct {
	storage     service.Storage
	detector    *dedup.Detector
	policy      dedup.MergePolicy
	ids         common.IDProvider
	onUserDone  func(userID string)
	workers     int
	userTimeout time.Duration
	dryRun      bool
}

// Config holds configuration options for the scan engine.
type Config struct {
	MergePolicy dedup.MergePolicy
	IDProvider  common.IDProvider
	// OnUserDone is invoked after each user's scan completes, for
	// progress reporting.
	OnUserDone  func(userID string)
	Detector    dedup.Config
	Workers     int
	UserTimeout time.Duration
	// DryRun reports groups without archiving or logging consolidations.
	DryRun bool
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Detector:    dedup.DefaultConfig(),
		MergePolicy: dedup.LogOnlyMergePolicy{},
		IDProvider:  common.UUIDProvider{},
		Workers:     4,
		UserTimeout: 30 * time.Second,
	}
}

// New creates a scan engine with the default configuration.
func New(storage service.Storage) *ScanEngine {
	return NewWithConfig(storage, DefaultConfig())
}

// NewWithConfig creates a scan engine with custom configuration.
func NewWithConfig(storage service.Storage, config Config) *ScanEngine {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.IDProvider == nil {
		config.IDProvider = common.UUIDProvider{}
	}
	if config.Detector.Observer == nil {
		config.Detector.Observer = observeVerdict
	}

	return &ScanEngine{
		storage:     storage,
		detector:    dedup.NewWithConfig(config.Detector),
		policy:      config.MergePolicy,
		ids:         config.IDProvider,
		onUserDone:  config.OnUserDone,
		workers:     config.Workers,
		userTimeout: config.UserTimeout,
		dryRun:      config.DryRun,
	}
}

// ScanAllUsers runs a duplicate scan for every user with active records.
// User scans are independent and run concurrently up to the configured
// worker limit. A failure scanning one user is logged and does not abort
// the others.
func (e *ScanEngine) ScanAllUsers(ctx context.Context) (*model.ScanSummary, error) {
	users, err := e.storage.GetUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	scanID := e.ids.NewID()
	slog.Info("Starting duplicate scan",
		"scan_id", scanID,
		"users", len(users),
		"workers", e.workers,
		"dry_run", e.dryRun)

	var counters scanCounters
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, userID := range users {
		userID := userID
		g.Go(func() error {
			userCtx := gctx
			if e.userTimeout > 0 {
				var cancel context.CancelFunc
				userCtx, cancel = context.WithTimeout(gctx, e.userTimeout)
				defer cancel()
			}

			if scanErr := e.scanUser(userCtx, scanID, userID, &counters); scanErr != nil {
				common.LogError(scanErr, "User scan failed", common.Fields{
					"scan_id": scanID,
					"user_id": userID,
				})
			}
			counters.users.Add(1)
			if e.onUserDone != nil {
				e.onUserDone(userID)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := counters.summary(scanID)
	slog.Info("Duplicate scan complete",
		"scan_id", scanID,
		"users_scanned", summary.UsersScanned,
		"records_scanned", summary.RecordsScanned,
		"groups_consolidated", summary.GroupsConsolidated,
		"records_archived", summary.RecordsArchived,
		"groups_failed", summary.GroupsFailed)
	return summary, nil
}

// ScanUser runs a duplicate scan for a single user.
func (e *ScanEngine) ScanUser(ctx context.Context, userID string) (*model.ScanSummary, error) {
	scanID := e.ids.NewID()
	var counters scanCounters
	if err := e.scanUser(ctx, scanID, userID, &counters); err != nil {
		return nil, err
	}
	counters.users.Add(1)
	return counters.summary(scanID), nil
}

func (e *ScanEngine) scanUser(ctx context.Context, scanID, userID string, counters *scanCounters) error {
	records, err := e.storage.GetRecordsForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load records for user %s: %w", userID, err)
	}
	counters.records.Add(int64(len(records)))
	if len(records) < 2 {
		return nil
	}

	refs := make([]*model.PurchaseRecord, len(records))
	for i := range records {
		refs[i] = &records[i]
	}

	groups := e.detector.BuildGroups(refs)
	for _, group := range groups {
		if consErr := e.consolidateGroup(ctx, scanID, userID, group); consErr != nil {
			counters.failed.Add(1)
			metricConsolidationFailures.Inc()
			common.LogError(consErr, "Group consolidation failed, skipping group", common.Fields{
				"scan_id":  scanID,
				"user_id":  userID,
				"group_sz": len(group.Members),
			})
			continue
		}
		counters.groups.Add(1)
		counters.archived.Add(int64(len(group.Members) - 1))
	}
	return nil
}

// consolidateGroup designates the group's primary, runs the merge policy,
// and persists the outcome: the merged primary when the policy changed it,
// then the archive commands. In dry-run mode only the primary selection
// happens.
func (e *ScanEngine) consolidateGroup(ctx context.Context, scanID, userID string, group *model.DuplicateGroup) error {
	merged, err := dedup.Consolidate(ctx, group, e.policy)
	if err != nil {
		return fmt.Errorf("merge policy failed: %w", err)
	}

	duplicateIDs := group.DuplicateIDs()
	slog.Info("Consolidating duplicate group",
		"scan_id", scanID,
		"user_id", userID,
		"primary_id", group.Primary.ID,
		"duplicates", duplicateIDs,
		"merged", merged,
		"dry_run", e.dryRun)

	if e.dryRun {
		return nil
	}

	if merged {
		if err := e.storage.UpdateRecord(ctx, group.Primary); err != nil {
			return fmt.Errorf("%w: %v", common.ErrConsolidationFailed, err)
		}
	}

	if err := e.storage.ArchiveRecords(ctx, group.Primary.ID, duplicateIDs); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConsolidationFailed, err)
	}

	entry := model.ConsolidationEntry{
		ScanID:      scanID,
		UserID:      userID,
		PrimaryID:   group.Primary.ID,
		ArchivedIDs: duplicateIDs,
	}
	if err := e.storage.LogConsolidation(ctx, entry); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConsolidationFailed, err)
	}

	metricGroupsConsolidated.Inc()
	metricRecordsArchived.Add(float64(len(duplicateIDs)))
	return nil
}

// CheckNewRecord compares a newly captured record against the owning
// user's stored records before insertion. The verdict references the first
// stored record that crosses the duplicate threshold, in storage order.
func (e *ScanEngine) CheckNewRecord(ctx context.Context, candidate *model.PurchaseRecord) (model.DuplicateVerdict, error) {
	records, err := e.storage.GetRecordsForUser(ctx, candidate.UserID)
	if err != nil {
		return model.DuplicateVerdict{}, fmt.Errorf("failed to load records for user %s: %w", candidate.UserID, err)
	}

	refs := make([]*model.PurchaseRecord, len(records))
	for i := range records {
		refs[i] = &records[i]
	}
	return e.detector.CheckRecord(candidate, refs), nil
}

// scanCounters aggregates scan statistics across concurrent user scans.
type scanCounters struct {
	users    atomic.Int64
	records  atomic.Int64
	groups   atomic.Int64
	archived atomic.Int64
	failed   atomic.Int64
}

func (c *scanCounters) summary(scanID string) *model.ScanSummary {
	return &model.ScanSummary{
		ScanID:             scanID,
		UsersScanned:       int(c.users.Load()),
		RecordsScanned:     int(c.records.Load()),
		GroupsConsolidated: int(c.groups.Load()),
		RecordsArchived:    int(c.archived.Load()),
		GroupsFailed:       int(c.failed.Load()),
	}
}
