package dedup

import (
	"context"
	"log/slog"
	"sort"

	"github.com/trovehq/trove/internal/model"
)

// MergePolicy decides how field-level data from archived duplicates folds
// into the surviving primary record. Implementations must be deterministic:
// the same group must always produce the same merge.
type MergePolicy interface {
	Merge(ctx context.Context, primary *model.PurchaseRecord, duplicates []*model.PurchaseRecord) error
}

// Consolidate designates the group's primary record: members are ordered
// ascending by creation timestamp (ties keep input order) and the earliest
// becomes primary. The chosen policy then runs over primary and duplicates.
// The returned flag reports whether the policy mutated the primary, so the
// caller knows to write it back; persisting the archive flags is likewise
// the caller's job.
func Consolidate(ctx context.Context, group *model.DuplicateGroup, policy MergePolicy) (bool, error) {
	sort.SliceStable(group.Members, func(i, j int) bool {
		return group.Members[i].CreatedAt.Before(group.Members[j].CreatedAt)
	})
	group.Primary = group.Members[0]

	if policy == nil {
		return false, nil
	}

	before := *group.Primary
	if err := policy.Merge(ctx, group.Primary, group.Members[1:]); err != nil {
		return false, err
	}
	return *group.Primary != before, nil
}

// LogOnlyMergePolicy records the merge that would happen without copying
// any field data. This is the default policy.
type LogOnlyMergePolicy struct{}

// Merge logs the intended consolidation and performs no field copy.
func (LogOnlyMergePolicy) Merge(_ context.Context, primary *model.PurchaseRecord, duplicates []*model.PurchaseRecord) error {
	for _, dup := range duplicates {
		slog.Info("Would merge duplicate into primary",
			"primary_id", primary.ID,
			"duplicate_id", dup.ID,
			"user_id", primary.UserID)
	}
	return nil
}

// FieldFillMergePolicy fills empty fields on the primary from its
// duplicates: the primary's non-empty value always wins, otherwise the
// earliest duplicate with a non-empty value supplies it. Duplicates arrive
// already sorted by creation time.
type FieldFillMergePolicy struct{}

// Merge copies missing field values from duplicates onto the primary.
func (FieldFillMergePolicy) Merge(_ context.Context, primary *model.PurchaseRecord, duplicates []*model.PurchaseRecord) error {
	for _, dup := range duplicates {
		if primary.ProductName == "" && dup.ProductName != "" {
			primary.ProductName = dup.ProductName
		}
		if primary.Retailer == "" && dup.Retailer != "" {
			primary.Retailer = dup.Retailer
		}
		if primary.Price == 0 && dup.Price != 0 {
			primary.Price = dup.Price
		}
		if primary.PurchaseDate.IsZero() && !dup.PurchaseDate.IsZero() {
			primary.PurchaseDate = dup.PurchaseDate
		}
	}
	return nil
}
