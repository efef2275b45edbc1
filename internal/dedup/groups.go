package dedup

import (
	"log/slog"

	"github.com/trovehq/trove/internal/model"
)

// BuildGroups partitions one user's records into duplicate groups. Records
// are scanned in input order; each unprocessed record anchors a new group
// and every later unprocessed record is compared against that anchor only.
//
// Because membership is decided against the anchor rather than against any
// later-added member, grouping is not transitively closed: a record that
// matches a group member but not the anchor stays out of the group. Do not
// replace this with transitive clustering without a product decision.
//
// Input records are never mutated. Only groups with two or more members are
// returned.
func (d *Detector) BuildGroups(records []*model.PurchaseRecord) []*model.DuplicateGroup {
	var groups []*model.DuplicateGroup
	processed := make(map[int]bool, len(records))

	for i := 0; i < len(records); i++ {
		if processed[i] {
			continue
		}
		processed[i] = true

		members := []*model.PurchaseRecord{records[i]}
		for j := i + 1; j < len(records); j++ {
			if processed[j] {
				continue
			}
			verdict := d.compareSafe(records[i], records[j])
			if verdict.IsDuplicate {
				members = append(members, records[j])
				processed[j] = true
			}
		}

		if len(members) > 1 {
			groups = append(groups, &model.DuplicateGroup{Members: members})
		}
	}

	return groups
}

// CheckRecord compares a newly captured record against a user's existing
// records in order and returns the verdict for the first existing record
// that crosses the duplicate threshold. This is first-match, not
// best-match: a later record with a higher score is never preferred. When
// nothing matches, the returned verdict is non-duplicate with zero
// confidence.
func (d *Detector) CheckRecord(candidate *model.PurchaseRecord, existing []*model.PurchaseRecord) model.DuplicateVerdict {
	for _, rec := range existing {
		verdict := d.compareSafe(candidate, rec)
		if verdict.IsDuplicate {
			return verdict
		}
	}
	return model.DuplicateVerdict{}
}

// compareSafe scores one pair, converting any panic during scoring into a
// logged non-duplicate verdict so a single bad record cannot abort an
// entire scan.
func (d *Detector) compareSafe(candidate, existing *model.PurchaseRecord) (verdict model.DuplicateVerdict) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Comparison failed, treating pair as non-duplicate",
				"candidate_id", recordID(candidate),
				"existing_id", recordID(existing),
				"panic", r)
			verdict = model.DuplicateVerdict{ExistingID: recordID(existing)}
		}
		if d.observer != nil {
			d.observer(verdict)
		}
	}()
	return d.Compare(candidate, existing)
}

func recordID(r *model.PurchaseRecord) string {
	if r == nil {
		return ""
	}
	return r.ID
}
