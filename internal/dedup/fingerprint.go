package dedup

import (
	"crypto/sha256"
	"fmt"

	"github.com/trovehq/trove/internal/model"
)

// Fingerprint hashes a record's normalized identifying fields into a
// candidate bucket key. Records with equal fingerprints are likely
// duplicates, but the reverse does not hold, so duplicate verdicts always
// come from the full pairwise comparison. The hash is stored with the
// record and surfaced in scan statistics only.
func Fingerprint(r *model.PurchaseRecord) string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		NormalizeProductName(r.ProductName),
		r.Price,
		r.PurchaseDate.Format("2006-01-02"),
		NormalizeRetailer(r.Retailer))
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
