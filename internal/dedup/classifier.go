package dedup

import (
	"fmt"
	"math"
	"strings"

	"github.com/trovehq/trove/internal/model"
)

// Default weights for combining the per-field similarity scores into one
// confidence value. They sum to exactly 1.0.
const (
	DefaultNameWeight     = 0.4
	DefaultPriceWeight    = 0.3
	DefaultDateWeight     = 0.2
	DefaultRetailerWeight = 0.1
)

// DefaultThreshold is the confidence above which (strictly) a pair is
// classified duplicate.
const DefaultThreshold = 0.8

// reasonThreshold is the per-field score above which (strictly) a field
// contributes a clause to the verdict's reason string.
const reasonThreshold = 0.9

// Weights configures the relative importance of each similarity dimension.
type Weights struct {
	Name     float64
	Price    float64
	Date     float64
	Retailer float64
}

// DefaultWeights returns the standard dimension weights.
func DefaultWeights() Weights {
	return Weights{
		Name:     DefaultNameWeight,
		Price:    DefaultPriceWeight,
		Date:     DefaultDateWeight,
		Retailer: DefaultRetailerWeight,
	}
}

// Validate ensures the weights are non-negative and sum to 1.0.
func (w Weights) Validate() error {
	if w.Name < 0 || w.Price < 0 || w.Date < 0 || w.Retailer < 0 {
		return fmt.Errorf("similarity weights must be non-negative: %+v", w)
	}
	sum := w.Name + w.Price + w.Date + w.Retailer
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("similarity weights must sum to 1.0, got %g", sum)
	}
	return nil
}

// Config holds the tunable parameters of a Detector. Observer, when set,
// is invoked with every verdict the detector produces; it must be safe for
// concurrent use.
type Config struct {
	Observer  func(model.DuplicateVerdict)
	Weights   Weights
	Threshold float64
}

// DefaultConfig returns the standard detector configuration.
func DefaultConfig() Config {
	return Config{
		Weights:   DefaultWeights(),
		Threshold: DefaultThreshold,
	}
}

// Detector compares purchase records and classifies pairs as duplicates.
// A Detector is stateless with respect to its inputs and safe for
// concurrent use.
type Detector struct {
	observer  func(model.DuplicateVerdict)
	weights   Weights
	threshold float64
}

// New creates a detector with the default configuration.
func New() *Detector {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a detector with custom weights and threshold.
func NewWithConfig(config Config) *Detector {
	return &Detector{
		observer:  config.Observer,
		weights:   config.Weights,
		threshold: config.Threshold,
	}
}

// Similarity computes the four per-field similarity scores for a pair of
// records.
func (d *Detector) Similarity(a, b *model.PurchaseRecord) model.SimilarityVector {
	return model.SimilarityVector{
		Name:     nameSimilarity(a.ProductName, b.ProductName),
		Price:    priceSimilarity(a.Price, b.Price),
		Date:     dateSimilarity(a.PurchaseDate, b.PurchaseDate),
		Retailer: retailerSimilarity(a.Retailer, b.Retailer),
	}
}

// Compare scores candidate against existing and returns the full verdict.
// The verdict's ExistingID references the existing side of the pair.
func (d *Detector) Compare(candidate, existing *model.PurchaseRecord) model.DuplicateVerdict {
	sim := d.Similarity(candidate, existing)
	confidence := d.weights.Name*sim.Name +
		d.weights.Price*sim.Price +
		d.weights.Date*sim.Date +
		d.weights.Retailer*sim.Retailer

	verdict := model.DuplicateVerdict{
		ExistingID:  existing.ID,
		Similarity:  sim,
		Confidence:  confidence,
		IsDuplicate: confidence > d.threshold,
	}
	if verdict.IsDuplicate {
		verdict.Reason = buildReason(sim)
	}
	return verdict
}

// buildReason assembles a human-readable explanation from the per-field
// scores. Only fields that individually exceed the reason threshold
// contribute, in a fixed order. A duplicate verdict can carry an empty
// reason when several moderate scores combine past the confidence
// threshold without any single field standing out.
func buildReason(sim model.SimilarityVector) string {
	var clauses []string
	if sim.Name > reasonThreshold {
		clauses = append(clauses, "identical product name")
	}
	if sim.Price > reasonThreshold {
		clauses = append(clauses, "identical price")
	}
	if sim.Date > reasonThreshold {
		clauses = append(clauses, "same purchase date")
	}
	if sim.Retailer > reasonThreshold {
		clauses = append(clauses, "same retailer")
	}
	return strings.Join(clauses, ", ")
}
