package domain

import "time"

// ExposureBucket is the running total and count for one number key within a
// (gameType, side) grouping. It is a computed view over the bet pool and owns
// no state across aggregation runs.
type ExposureBucket struct {
	Total int64 `json:"total"`
	Count int   `json:"count"`
}

// ExposureReport is the aggregation engine's output: per-number exposure
// totals grouped by game type and side, plus the grand total of everything
// that survived filtering. Warnings lists malformed entries that were skipped
// rather than aborting the whole fold.
type ExposureReport struct {
	Buckets     map[GameType]map[Side]map[string]ExposureBucket `json:"buckets"`
	GrandTotal  int64                                           `json:"grand_total"`
	Warnings    []string                                        `json:"warnings,omitempty"`
	GeneratedAt time.Time                                       `json:"generated_at"`
}

// Bucket returns the bucket for (gt, side, key), or a zero bucket when the
// grouping does not exist.
func (r ExposureReport) Bucket(gt GameType, side Side, key string) ExposureBucket {
	if sides, ok := r.Buckets[gt]; ok {
		if keys, ok := sides[side]; ok {
			return keys[key]
		}
	}
	return ExposureBucket{}
}
