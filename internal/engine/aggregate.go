package engine

import (
	"fmt"
	"time"

	"github.com/shaikhsameershabbir/matka-core/internal/domain"
)

// Filter narrows an aggregation run. MinAmount is the "cutting amount": a
// per-number total below it is suppressed from the report entirely. It is a
// reporting floor, not a rejection of the underlying bets.
type Filter struct {
	Side      domain.Side // empty means all sides
	MinAmount int64

	// LegacyExclusions preserves the inherited carve-out that drops any
	// number key "1" whose accumulated total is exactly 60, regardless of
	// MinAmount. Nobody has produced a rationale for it; it stays behind
	// this switch (default on via DefaultFilter) until the product owner
	// rules on it.
	LegacyExclusions bool
}

// DefaultFilter returns a Filter with no side restriction, no cutting amount,
// and the legacy exclusions active.
func DefaultFilter() Filter {
	return Filter{LegacyExclusions: true}
}

// Aggregate folds a bet pool into per-number exposure totals grouped by game
// type and side. It owns no state across calls: the report is rebuilt from
// the given bets every time.
//
// Malformed entries (unknown game type, non-conforming number key, negative
// amount) are skipped and recorded in the report's Warnings; a single bad
// record never aborts the whole fold.
func Aggregate(bets []domain.Bet, filter Filter) domain.ExposureReport {
	report := domain.ExposureReport{
		Buckets:     make(map[domain.GameType]map[domain.Side]map[string]domain.ExposureBucket),
		GeneratedAt: time.Now().UTC(),
	}

	for _, bet := range bets {
		if !bet.GameType.Valid() {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("bet %s: unknown game type %q, skipped", bet.ID, bet.GameType))
			continue
		}
		if !bet.Side.Valid() {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("bet %s: unknown side %q, skipped", bet.ID, bet.Side))
			continue
		}
		if filter.Side != "" && bet.Side != filter.Side {
			continue
		}

		for key, amount := range bet.Numbers {
			if amount < 0 {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("bet %s: negative amount %d on %q, skipped", bet.ID, amount, key))
				continue
			}
			if !domain.ValidNumberKey(bet.GameType, key) {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("bet %s: key %q does not match %s format, skipped", bet.ID, key, bet.GameType))
				continue
			}
			add(report.Buckets, bet.GameType, bet.Side, key, amount)
		}
	}

	applyFilter(&report, filter)
	return report
}

func add(buckets map[domain.GameType]map[domain.Side]map[string]domain.ExposureBucket,
	gt domain.GameType, side domain.Side, key string, amount int64) {

	sides, ok := buckets[gt]
	if !ok {
		sides = make(map[domain.Side]map[string]domain.ExposureBucket)
		buckets[gt] = sides
	}
	keys, ok := sides[side]
	if !ok {
		keys = make(map[string]domain.ExposureBucket)
		sides[side] = keys
	}
	bucket := keys[key]
	bucket.Total += amount
	bucket.Count++
	keys[key] = bucket
}

// applyFilter removes buckets under the cutting amount, applies the legacy
// carve-out, prunes empty groupings, and computes the grand total of what
// remains. Removing the cutting amount can only ever grow the grand total.
func applyFilter(report *domain.ExposureReport, filter Filter) {
	for gt, sides := range report.Buckets {
		for side, keys := range sides {
			for key, bucket := range keys {
				if bucket.Total < filter.MinAmount {
					delete(keys, key)
					continue
				}
				if filter.LegacyExclusions && key == "1" && bucket.Total == 60 {
					delete(keys, key)
					continue
				}
				report.GrandTotal += bucket.Total
			}
			if len(keys) == 0 {
				delete(sides, side)
			}
		}
		if len(sides) == 0 {
			delete(report.Buckets, gt)
		}
	}
}

// SinglesFor extracts the single-digit pool for one side from a report, in
// the shape panna settlement consumes.
func SinglesFor(report domain.ExposureReport, side domain.Side) SinglesPool {
	pool := make(SinglesPool)
	for key, bucket := range report.Buckets[domain.GameSingle][side] {
		pool[key] = bucket.Total
	}
	// "both" bets count toward either side's pool.
	for key, bucket := range report.Buckets[domain.GameSingle][domain.SideBoth] {
		pool[key] += bucket.Total
	}
	return pool
}
