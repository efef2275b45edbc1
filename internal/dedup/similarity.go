package dedup

import (
	"math"
	"strings"
	"time"
)

// nameSimilarity scores two free-text product names in [0, 1]. Identical
// normalized names score 1.0, substring containment scores 0.9, and
// everything else falls back to normalized Levenshtein distance.
func nameSimilarity(a, b string) float64 {
	na := NormalizeProductName(a)
	nb := NormalizeProductName(b)

	if na == nb {
		return 1.0
	}
	if na != "" && nb != "" && (strings.Contains(na, nb) || strings.Contains(nb, na)) {
		return 0.9
	}

	longest := len([]rune(na))
	if n := len([]rune(nb)); n > longest {
		longest = n
	}

	dist := levenshtein(na, nb)
	sim := 1.0 - float64(dist)/float64(longest)
	if sim < 0 {
		return 0
	}
	return sim
}

// levenshtein computes the edit distance between two strings with unit
// costs for insertion, deletion, and substitution.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	ra := []rune(a)
	rb := []rune(b)

	matrix := make([][]int, len(ra)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(rb)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(rb); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			deletion := matrix[i-1][j] + 1
			insertion := matrix[i][j-1] + 1
			substitution := matrix[i-1][j-1] + cost

			minimum := deletion
			if insertion < minimum {
				minimum = insertion
			}
			if substitution < minimum {
				minimum = substitution
			}
			matrix[i][j] = minimum
		}
	}

	return matrix[len(ra)][len(rb)]
}

// priceSimilarity scores two prices by their percentage difference relative
// to the pair's average. A malformed price (negative or NaN) on either side
// yields 0 for this dimension.
func priceSimilarity(p1, p2 float64) float64 {
	if p1 < 0 || p2 < 0 || math.IsNaN(p1) || math.IsNaN(p2) {
		return 0
	}

	avg := (p1 + p2) / 2
	if avg == 0 {
		return 1.0
	}

	pct := math.Abs(p1-p2) / avg
	switch {
	case pct <= 0.05:
		return 1.0
	case pct <= 0.10:
		return 0.9
	case pct <= 0.20:
		return 0.8
	default:
		sim := 0.8 - (pct-0.20)*2
		if sim < 0 {
			return 0
		}
		return sim
	}
}

// dateSimilarity scores two purchase dates by their gap in days, fractional
// gaps included. A missing (zero) date on either side yields 0.
func dateSimilarity(d1, d2 time.Time) float64 {
	if d1.IsZero() || d2.IsZero() {
		return 0
	}

	diffDays := math.Abs(d1.Sub(d2).Hours()) / 24
	switch {
	case diffDays == 0:
		return 1.0
	case diffDays <= 1:
		return 0.95
	case diffDays <= 3:
		return 0.9
	case diffDays <= 7:
		return 0.8
	case diffDays <= 30:
		return 0.6
	default:
		return 0.3
	}
}

// retailerSimilarity scores two retailer names. Identical names after
// lower-casing and trimming score 1.0; distinct spellings in the same
// canonical alias group score 0.95; anything else scores 0. The alias
// table deliberately does not collapse spellings here, so "amazon.com"
// against "amzn" reports 0.95 rather than 1.0.
func retailerSimilarity(a, b string) float64 {
	na := strings.TrimSpace(strings.ToLower(a))
	nb := strings.TrimSpace(strings.ToLower(b))

	if na == nb {
		return 1.0
	}

	ga, okA := retailerGroups[na]
	gb, okB := retailerGroups[nb]
	if okA && okB && ga == gb {
		return 0.95
	}
	return 0.0
}
