// Package engine implements the settlement and aggregation engines: pure
// computations over bets, declared results, and the rate table.
package engine

import (
	"fmt"

	"github.com/shaikhsameershabbir/matka-core/internal/domain"
)

// RateTable maps every game type to its integer multiplier ("pays N× stake").
type RateTable map[domain.GameType]int64

// DefaultRates is the canonical rate table. The legacy call sites disagreed
// on single (9 vs 10), triple panna (800 vs 1000) and full sangam (1800 vs
// 10000); the table fixes one value per game and Validate refuses to run with
// a partial table, so any future change is a deliberate configuration edit.
func DefaultRates() RateTable {
	return RateTable{
		domain.GameSingle:          10,
		domain.GameJodi:            90,
		domain.GameSinglePanna:     150,
		domain.GameDoublePanna:     300,
		domain.GameTriplePanna:     1000,
		domain.GameHalfSangamOpen:  1000,
		domain.GameHalfSangamClose: 1000,
		domain.GameFullSangam:      10000,
	}
}

// Validate checks that every known game type has a positive multiplier.
// A missing rate is a configuration error that must stop startup: a silent
// fallback multiplier would misprice real money.
func (rt RateTable) Validate() error {
	for _, gt := range domain.AllGameTypes() {
		mult, ok := rt[gt]
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrMissingRate, gt)
		}
		if mult <= 0 {
			return fmt.Errorf("%w: %s has non-positive multiplier %d", domain.ErrMissingRate, gt, mult)
		}
	}
	return nil
}

// For returns the multiplier for the given game type.
func (rt RateTable) For(gt domain.GameType) (int64, error) {
	mult, ok := rt[gt]
	if !ok || mult <= 0 {
		return 0, fmt.Errorf("%w: %s", domain.ErrMissingRate, gt)
	}
	return mult, nil
}
