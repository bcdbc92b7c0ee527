package engine

import (
	"fmt"
	"strconv"

	"github.com/shaikhsameershabbir/matka-core/internal/domain"
)

// SinglesPool is the aggregated single-digit bet pool for one market, side,
// and day: digit key ("0".."9") to total staked amount. Panna settlement
// reads it for the digit-sum cross payout.
type SinglesPool map[string]int64

// SinglePools holds one SinglesPool per side. Only the sides a bet actually
// settles against need to be present.
type SinglePools map[domain.Side]SinglesPool

// ComputePayout computes the payout for a single bet given the declared
// result. It is pure: it never mutates the bet and touches no storage.
//
// Settling an already-settled bet is a no-op that echoes the stored payout,
// so repeated invocation cannot double-pay. A bet whose side requires a
// result side that has not been declared yet fails with ErrUnsettleable; the
// caller retries after declaration.
func ComputePayout(bet domain.Bet, result domain.Result, rates RateTable, pools SinglePools) (domain.PayoutBreakdown, error) {
	if bet.Settled && bet.Payout != nil {
		return domain.PayoutBreakdown{
			BetID:          bet.ID,
			Total:          *bet.Payout,
			AlreadySettled: true,
		}, nil
	}

	if err := requireSides(bet, result); err != nil {
		return domain.PayoutBreakdown{}, err
	}

	rate, err := rates.For(bet.GameType)
	if err != nil {
		return domain.PayoutBreakdown{}, err
	}

	breakdown := domain.PayoutBreakdown{BetID: bet.ID}

	switch bet.GameType {
	case domain.GameSingle:
		for _, side := range settleSides(bet.Side) {
			ank, _ := resultAnk(result, side)
			breakdown.BaseWin += bet.Numbers[strconv.Itoa(ank)] * rate
		}

	case domain.GameJodi:
		main, _ := result.MainDigits()
		breakdown.BaseWin = bet.Numbers[main] * rate

	case domain.GameSinglePanna, domain.GameDoublePanna, domain.GameTriplePanna:
		singleRate, err := rates.For(domain.GameSingle)
		if err != nil {
			return domain.PayoutBreakdown{}, err
		}
		for _, side := range settleSides(bet.Side) {
			digits, _ := result.DigitsFor(side)
			staked := bet.Numbers[digits]
			if staked == 0 {
				continue
			}
			breakdown.BaseWin += staked * rate

			// A winning panna also pays the correlated single-digit pool,
			// keyed by the panna's digit sum modulo 10.
			ank, ankErr := domain.Ank(digits)
			if ankErr != nil {
				return domain.PayoutBreakdown{}, fmt.Errorf("settle bet %s: %w", bet.ID, ankErr)
			}
			breakdown.DigitSumWin += pools[side][strconv.Itoa(ank)] * singleRate
		}

	case domain.GameHalfSangamOpen:
		// key "PPP-D": open panna plus close single digit, both must match.
		openDigits, _ := result.DigitsFor(domain.SideOpen)
		closeAnk, _ := result.CloseAnk()
		key := openDigits + "-" + strconv.Itoa(closeAnk)
		breakdown.BaseWin = bet.Numbers[key] * rate

	case domain.GameHalfSangamClose:
		// key "D-PPP": open single digit plus close panna.
		openAnk, _ := result.OpenAnk()
		closeDigits, _ := result.DigitsFor(domain.SideClose)
		key := strconv.Itoa(openAnk) + "-" + closeDigits
		breakdown.BaseWin = bet.Numbers[key] * rate

	case domain.GameFullSangam:
		openDigits, _ := result.DigitsFor(domain.SideOpen)
		closeDigits, _ := result.DigitsFor(domain.SideClose)
		key := openDigits + "-" + closeDigits
		breakdown.BaseWin = bet.Numbers[key] * rate

	default:
		return domain.PayoutBreakdown{}, fmt.Errorf("%w: %s", domain.ErrMissingRate, bet.GameType)
	}

	breakdown.Total = breakdown.BaseWin + breakdown.DigitSumWin
	return breakdown, nil
}

// requireSides verifies that every result side the bet settles against has
// been declared.
func requireSides(bet domain.Bet, result domain.Result) error {
	for _, side := range requiredSides(bet) {
		if _, ok := result.DigitsFor(side); !ok {
			return fmt.Errorf("%w: bet %s needs %s digits for %s/%s",
				domain.ErrUnsettleable, bet.ID, side, result.MarketID, result.Date)
		}
	}
	return nil
}

// requiredSides lists the result sides a bet's settlement reads. Jodi and the
// sangam types always span both declarations; otherwise the bet's own side
// decides.
func requiredSides(bet domain.Bet) []domain.Side {
	if bet.GameType == domain.GameJodi || bet.GameType.IsSangam() || bet.Side == domain.SideBoth {
		return []domain.Side{domain.SideOpen, domain.SideClose}
	}
	return []domain.Side{bet.Side}
}

// settleSides lists the sides a single/panna bet's numbers are matched
// against: one for open or close, both for a "both" bet.
func settleSides(side domain.Side) []domain.Side {
	if side == domain.SideBoth {
		return []domain.Side{domain.SideOpen, domain.SideClose}
	}
	return []domain.Side{side}
}

func resultAnk(result domain.Result, side domain.Side) (int, bool) {
	if side == domain.SideOpen {
		return result.OpenAnk()
	}
	return result.CloseAnk()
}
