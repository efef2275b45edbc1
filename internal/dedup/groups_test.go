package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trovehq/trove/internal/model"
)

// nameOnlyDetector weights the product name at 1.0 so group behavior can
// be pinned with exact edit distances.
func nameOnlyDetector() *Detector {
	return NewWithConfig(Config{
		Weights:   Weights{Name: 1.0},
		Threshold: DefaultThreshold,
	})
}

func namedRecord(id, name string) *model.PurchaseRecord {
	return &model.PurchaseRecord{ID: id, ProductName: name}
}

func TestBuildGroupsBasic(t *testing.T) {
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	mk := func(id string, created time.Time) *model.PurchaseRecord {
		return &model.PurchaseRecord{
			ID:           id,
			UserID:       "u1",
			ProductName:  "Echo Dot 5th Gen",
			Price:        49.99,
			PurchaseDate: date,
			Retailer:     "Amazon",
			CreatedAt:    created,
		}
	}

	records := []*model.PurchaseRecord{
		mk("later", date.Add(48*time.Hour)),
		mk("earliest", date),
		{ID: "unrelated", UserID: "u1", ProductName: "Garden Hose", Price: 20, PurchaseDate: date.AddDate(0, 2, 0), Retailer: "Home Depot", CreatedAt: date},
	}

	groups := New().BuildGroups(records)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Members, 2)

	// Consolidation picks the earliest-created member as primary even
	// though it appeared second in input order.
	_, err := Consolidate(context.Background(), groups[0], nil)
	require.NoError(t, err)
	assert.Equal(t, "earliest", groups[0].Primary.ID)
	assert.Equal(t, []string{"later"}, groups[0].DuplicateIDs())
}

func TestBuildGroupsNotTransitive(t *testing.T) {
	// A↔B and B↔C both cross the threshold, but A↔C does not. Membership
	// is decided against the group's anchor only, so C stays out of A's
	// group and never forms its own.
	a := namedRecord("a", "aaaaaaaaaa")
	b := namedRecord("b", "aaaaaaaaab") // distance 1 from a: 0.9
	c := namedRecord("c", "aaaaaaaabb") // distance 1 from b, distance 2 from a: 0.8

	det := nameOnlyDetector()
	require.Greater(t, det.Compare(a, b).Confidence, 0.8)
	require.Greater(t, det.Compare(b, c).Confidence, 0.8)
	require.LessOrEqual(t, det.Compare(a, c).Confidence, 0.8)

	groups := det.BuildGroups([]*model.PurchaseRecord{a, b, c})
	require.Len(t, groups, 1)
	assert.Equal(t, []*model.PurchaseRecord{a, b}, groups[0].Members)
}

func TestBuildGroupsIdempotent(t *testing.T) {
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	records := []*model.PurchaseRecord{
		{ID: "1", ProductName: "MacBook Air M3", Price: 1099, PurchaseDate: date, Retailer: "Apple", CreatedAt: date},
		{ID: "2", ProductName: "MacBook Air M3", Price: 1099, PurchaseDate: date, Retailer: "Apple", CreatedAt: date.Add(time.Hour)},
		{ID: "3", ProductName: "USB-C Cable", Price: 12, PurchaseDate: date, Retailer: "Amazon", CreatedAt: date},
	}

	det := New()
	first := det.BuildGroups(records)
	second := det.BuildGroups(records)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Members, second[0].Members)
}

func TestBuildGroupsSurvivesPanic(t *testing.T) {
	// A nil record panics during scoring; the pair degrades to
	// non-duplicate and the rest of the scan continues.
	a := namedRecord("a", "aaaaaaaaaa")
	b := namedRecord("b", "aaaaaaaaaa")

	groups := nameOnlyDetector().BuildGroups([]*model.PurchaseRecord{a, nil, b})
	require.Len(t, groups, 1)
	assert.Equal(t, []*model.PurchaseRecord{a, b}, groups[0].Members)
}

func TestCheckRecordFirstMatch(t *testing.T) {
	candidate := namedRecord("new", "aaaaaaaaaa")
	existing := []*model.PurchaseRecord{
		namedRecord("e1", "zzzzzzzzzz"),
		namedRecord("e2", "aaaaaaaaab"), // 0.9: crosses threshold first
		namedRecord("e3", "aaaaaaaaaa"), // 1.0: higher, but later in order
	}

	verdict := nameOnlyDetector().CheckRecord(candidate, existing)

	require.True(t, verdict.IsDuplicate)
	assert.Equal(t, "e2", verdict.ExistingID)
	assert.InDelta(t, 0.9, verdict.Confidence, 1e-9)
}

func TestCheckRecordNoMatch(t *testing.T) {
	candidate := namedRecord("new", "aaaaaaaaaa")
	existing := []*model.PurchaseRecord{
		namedRecord("e1", "zzzzzzzzzz"),
	}

	verdict := nameOnlyDetector().CheckRecord(candidate, existing)

	assert.False(t, verdict.IsDuplicate)
	assert.Zero(t, verdict.Confidence)
	assert.Empty(t, verdict.ExistingID)
}
