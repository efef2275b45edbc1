package model

// SimilarityVector holds the four per-field similarity scores for one
// compared pair. Each score is in [0, 1]. Vectors are produced fresh per
// comparison and never persisted.
type SimilarityVector struct {
	Name     float64
	Price    float64
	Date     float64
	Retailer float64
}

// DuplicateVerdict is the result of comparing one record against another.
type DuplicateVerdict struct {
	ExistingID  string
	Reason      string
	Similarity  SimilarityVector
	Confidence  float64
	IsDuplicate bool
}

// DuplicateGroup is a set of records judged to describe the same purchase,
// produced by one batch scan pass. Groups always have at least two members.
// Once consolidated, Primary identifies the surviving record.
type DuplicateGroup struct {
	Primary *PurchaseRecord
	Members []*PurchaseRecord
}

// DuplicateIDs returns the IDs of every member except the primary.
func (g *DuplicateGroup) DuplicateIDs() []string {
	ids := make([]string, 0, len(g.Members)-1)
	for _, m := range g.Members {
		if g.Primary != nil && m.ID == g.Primary.ID {
			continue
		}
		ids = append(ids, m.ID)
	}
	return ids
}
