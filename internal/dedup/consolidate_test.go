package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trovehq/trove/internal/model"
)

func TestConsolidatePrimarySelection(t *testing.T) {
	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	group := &model.DuplicateGroup{
		Members: []*model.PurchaseRecord{
			{ID: "third", CreatedAt: base.Add(2 * time.Hour)},
			{ID: "first", CreatedAt: base},
			{ID: "second", CreatedAt: base.Add(time.Hour)},
		},
	}

	merged, err := Consolidate(context.Background(), group, LogOnlyMergePolicy{})
	require.NoError(t, err)

	assert.False(t, merged)
	assert.Equal(t, "first", group.Primary.ID)
	assert.Equal(t, []string{"second", "third"}, group.DuplicateIDs())
}

func TestConsolidateCreationTies(t *testing.T) {
	// Equal creation timestamps keep input order: the stable sort leaves
	// the earlier-listed record first.
	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	group := &model.DuplicateGroup{
		Members: []*model.PurchaseRecord{
			{ID: "listed-first", CreatedAt: base},
			{ID: "listed-second", CreatedAt: base},
		},
	}

	merged, err := Consolidate(context.Background(), group, nil)
	require.NoError(t, err)
	assert.False(t, merged)
	assert.Equal(t, "listed-first", group.Primary.ID)
}

func TestConsolidateReportsMergedPrimary(t *testing.T) {
	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	group := &model.DuplicateGroup{
		Members: []*model.PurchaseRecord{
			{ID: "p", ProductName: "Echo Dot", CreatedAt: base},
			{ID: "d", ProductName: "Echo Dot", Retailer: "Amazon", CreatedAt: base.Add(time.Hour)},
		},
	}

	merged, err := Consolidate(context.Background(), group, FieldFillMergePolicy{})
	require.NoError(t, err)

	assert.True(t, merged)
	assert.Equal(t, "Amazon", group.Primary.Retailer)
}

func TestConsolidateNoopFillReportsUnchanged(t *testing.T) {
	// FieldFill with a fully populated primary touches nothing, so the
	// caller has no write-back to persist.
	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	group := &model.DuplicateGroup{
		Members: []*model.PurchaseRecord{
			{ID: "p", ProductName: "Echo Dot", Price: 49.99, Retailer: "Amazon", PurchaseDate: base, CreatedAt: base},
			{ID: "d", ProductName: "Echo Dot 5th Gen", Price: 44.99, Retailer: "Best Buy", PurchaseDate: base, CreatedAt: base.Add(time.Hour)},
		},
	}

	merged, err := Consolidate(context.Background(), group, FieldFillMergePolicy{})
	require.NoError(t, err)
	assert.False(t, merged)
}

func TestLogOnlyMergePolicyCopiesNothing(t *testing.T) {
	primary := &model.PurchaseRecord{ID: "p", ProductName: ""}
	dup := &model.PurchaseRecord{ID: "d", ProductName: "Echo Dot", Retailer: "Amazon"}

	require.NoError(t, LogOnlyMergePolicy{}.Merge(context.Background(), primary, []*model.PurchaseRecord{dup}))

	assert.Empty(t, primary.ProductName)
	assert.Empty(t, primary.Retailer)
}

func TestFieldFillMergePolicy(t *testing.T) {
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	primary := &model.PurchaseRecord{ID: "p", ProductName: "Echo Dot", Price: 0, Retailer: ""}
	dups := []*model.PurchaseRecord{
		{ID: "d1", ProductName: "Echo Dot 5th Gen", Price: 49.99, Retailer: "Amazon", PurchaseDate: date},
		{ID: "d2", Price: 44.99, Retailer: "Best Buy"},
	}

	require.NoError(t, FieldFillMergePolicy{}.Merge(context.Background(), primary, dups))

	// Primary's non-empty name wins; empty fields fill from the earliest
	// duplicate that has a value.
	assert.Equal(t, "Echo Dot", primary.ProductName)
	assert.Equal(t, 49.99, primary.Price)
	assert.Equal(t, "Amazon", primary.Retailer)
	assert.Equal(t, date, primary.PurchaseDate)
}
