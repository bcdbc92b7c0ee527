package domain

// PayoutBreakdown is the settlement engine's output for a single bet. All
// amounts are in the smallest currency unit.
//
// For panna bets Total decomposes exactly into BaseWin (the panna's flat
// multiplier) plus DigitSumWin (the cross-reference payout against the
// single-digit pool). For every other game type DigitSumWin is zero.
type PayoutBreakdown struct {
	BetID          string
	BaseWin        int64
	DigitSumWin    int64
	Total          int64
	AlreadySettled bool // Total echoed from the stored payout, not recomputed
}

// Ratio returns the display win/stake ratio. ok is false when the stake is
// zero, in which case the ratio is undefined rather than a division by zero.
func (p PayoutBreakdown) Ratio(stake int64) (float64, bool) {
	if stake == 0 {
		return 0, false
	}
	return float64(p.Total) / float64(stake), true
}
