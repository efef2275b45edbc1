// Package dedup implements the duplicate detection and consolidation engine.
// It decides, for one user's purchase records, which records describe the
// same real-world purchase, groups them, and designates a canonical survivor.
package dedup

import (
	"strings"
	"unicode"
)

// retailerAliases maps known retailer spellings to a canonical name.
// Lookups happen after lower-casing and trimming. The table is never
// mutated after initialization.
var retailerAliases = map[string]string{
	"amazon":      "amazon",
	"amazon.com":  "amazon",
	"amzn":        "amazon",
	"apple":       "apple",
	"apple.com":   "apple",
	"apple store": "apple",
	"best buy":    "bestbuy",
	"bestbuy":     "bestbuy",
	"bestbuy.com": "bestbuy",
	"target":      "target",
	"target.com":  "target",
	"walmart":     "walmart",
	"walmart.com": "walmart",
	"wal-mart":    "walmart",
}

// retailerGroups maps normalized retailer names to a canonical group key.
// Two retailers in the same group are treated as near-identical even when
// the alias table maps them to different canonical names (e.g. itunes and
// apple).
var retailerGroups = map[string]string{
	"amazon":      "amazon",
	"amzn":        "amazon",
	"amazon.com":  "amazon",
	"apple":       "apple",
	"apple.com":   "apple",
	"apple store": "apple",
	"itunes":      "apple",
	"best buy":    "bestbuy",
	"bestbuy":     "bestbuy",
	"bestbuy.com": "bestbuy",
	"target":      "target",
	"target.com":  "target",
	"walmart":     "walmart",
	"walmart.com": "walmart",
	"wal-mart":    "walmart",
}

// NormalizeProductName canonicalizes a free-text product name for
// comparison: lower-case, strip everything that is not a letter, digit, or
// whitespace, and collapse whitespace runs to a single space.
func NormalizeProductName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeRetailer canonicalizes a retailer name. Known spellings collapse
// to a canonical name via the alias table; unrecognized values pass through
// lower-cased and trimmed.
func NormalizeRetailer(retailer string) string {
	cleaned := strings.TrimSpace(strings.ToLower(retailer))
	if canonical, ok := retailerAliases[cleaned]; ok {
		return canonical
	}
	return cleaned
}
