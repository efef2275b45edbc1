package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "identical", a: "kitten", b: "kitten", want: 0},
		{name: "classic kitten sitting", a: "kitten", b: "sitting", want: 3},
		{name: "empty left", a: "", b: "abc", want: 3},
		{name: "empty right", a: "abc", b: "", want: 3},
		{name: "both empty", a: "", b: "", want: 0},
		{name: "single substitution", a: "cat", b: "bat", want: 1},
		{name: "insertion", a: "cat", b: "cats", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, levenshtein(tt.a, tt.b))
		})
	}
}

func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "identical after normalization", a: "iPhone 15 Pro!!", b: "iphone 15 pro", want: 1.0},
		{name: "self similarity", a: "AirPods Pro 2", b: "AirPods Pro 2", want: 1.0},
		{name: "substring", a: "iPhone 15 Pro Max", b: "iPhone 15 Pro", want: 0.9},
		{name: "totally different", a: "x", b: "y", want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, nameSimilarity(tt.a, tt.b), 1e-9)
		})
	}

	t.Run("edit distance fallback", func(t *testing.T) {
		// "kitten" vs "sitting": distance 3, longest 7.
		assert.InDelta(t, 1.0-3.0/7.0, nameSimilarity("kitten", "sitting"), 1e-9)
	})
}

func TestPriceSimilarity(t *testing.T) {
	tests := []struct {
		name string
		p1   float64
		p2   float64
		want float64
	}{
		{name: "identical", p1: 100, p2: 100, want: 1.0},
		{name: "within five percent", p1: 100, p2: 104, want: 1.0},
		{name: "within ten percent", p1: 100, p2: 110, want: 0.9},
		{name: "within twenty percent", p1: 100, p2: 120, want: 0.8},
		{name: "double the price clamps to zero", p1: 100, p2: 200, want: 0.0},
		{name: "both zero", p1: 0, p2: 0, want: 1.0},
		{name: "negative price is malformed", p1: -5, p2: 100, want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, priceSimilarity(tt.p1, tt.p2), 1e-9)
		})
	}

	t.Run("linear falloff past twenty percent", func(t *testing.T) {
		// diff=30, avg=115, pct≈0.2609: 0.8 − (0.2609−0.20)×2 ≈ 0.678.
		got := priceSimilarity(100, 130)
		assert.InDelta(t, 0.8-(30.0/115.0-0.20)*2, got, 1e-9)
	})
}

func TestDateSimilarity(t *testing.T) {
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		d1   time.Time
		d2   time.Time
		want float64
	}{
		{name: "identical", d1: base, d2: base, want: 1.0},
		{name: "same day hours apart", d1: base, d2: base.Add(6 * time.Hour), want: 0.95},
		{name: "one day", d1: base, d2: base.AddDate(0, 0, 1), want: 0.95},
		{name: "three days", d1: base, d2: base.AddDate(0, 0, 3), want: 0.9},
		{name: "a week", d1: base, d2: base.AddDate(0, 0, 7), want: 0.8},
		{name: "eight days", d1: base, d2: base.AddDate(0, 0, 8), want: 0.6},
		{name: "forty five days", d1: base, d2: base.AddDate(0, 0, 45), want: 0.3},
		{name: "order does not matter", d1: base.AddDate(0, 0, 8), d2: base, want: 0.6},
		{name: "zero date is malformed", d1: time.Time{}, d2: base, want: 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, dateSimilarity(tt.d1, tt.d2), 1e-9)
		})
	}
}

func TestRetailerSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "identical", a: "Amazon", b: "amazon", want: 1.0},
		{name: "same canonical group", a: "Amazon.com", b: "AMZN", want: 0.95},
		{name: "itunes is apple", a: "iTunes", b: "Apple", want: 0.95},
		{name: "hyphenated walmart", a: "Wal-Mart", b: "walmart.com", want: 0.95},
		{name: "apple storefront", a: "Apple Store", b: "iTunes", want: 0.95},
		{name: "different retailers", a: "Target", b: "Walmart", want: 0.0},
		{name: "unknown retailers differ", a: "Corner Shop", b: "Other Shop", want: 0.0},
		{name: "unknown retailer matches itself", a: "Corner Shop", b: "corner shop", want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, retailerSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}
