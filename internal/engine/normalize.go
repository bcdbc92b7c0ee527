package engine

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shaikhsameershabbir/matka-core/internal/domain"
)

// Line is the normalized record shape every raw bet grouping reduces to:
// one side, one number key, one amount.
type Line struct {
	GameType  domain.GameType
	Side      domain.Side
	NumberKey string
	Amount    int64
}

// NormalizeRaw converts a raw bet-number document into normalized lines.
// Legacy documents arrive in three shapes:
//
//	split   {"open": {"5": 100}, "close": {"7": 50}}
//	unified {"both": {"5": 100}}
//	flat    {"5": 100, "7": 50}
//
// Flat documents inherit defaultSide. Malformed entries (non-numeric amount,
// unparseable key map) are skipped with a recorded warning; normalization of
// the remaining entries proceeds.
func NormalizeRaw(gt domain.GameType, defaultSide domain.Side, raw map[string]any) ([]Line, []string) {
	var lines []Line
	var warnings []string

	nested := false
	for _, field := range []struct {
		key  string
		side domain.Side
	}{
		{"open", domain.SideOpen},
		{"close", domain.SideClose},
		{"both", domain.SideBoth},
	} {
		sub, ok := raw[field.key]
		if !ok {
			continue
		}
		nested = true
		subMap, ok := sub.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("%s grouping is %T, not an object; skipped", field.key, sub))
			continue
		}
		sideLines, sideWarnings := flatten(gt, field.side, subMap)
		lines = append(lines, sideLines...)
		warnings = append(warnings, sideWarnings...)
	}

	if !nested {
		flatLines, flatWarnings := flatten(gt, defaultSide, raw)
		lines = append(lines, flatLines...)
		warnings = append(warnings, flatWarnings...)
	}

	return lines, warnings
}

// flatten converts one {numberKey: amount} object into lines.
func flatten(gt domain.GameType, side domain.Side, raw map[string]any) ([]Line, []string) {
	var lines []Line
	var warnings []string

	for key, value := range raw {
		amount, err := toAmount(value)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("key %q: %v; skipped", key, err))
			continue
		}
		if amount < 0 {
			warnings = append(warnings, fmt.Sprintf("key %q: negative amount %d; skipped", key, amount))
			continue
		}
		lines = append(lines, Line{GameType: gt, Side: side, NumberKey: key, Amount: amount})
	}
	return lines, warnings
}

// BetFromLines assembles a validated domain.Bet from normalized lines, all of
// which must share the bet's game type and side. TotalAmount is derived, so
// the sum invariant holds by construction; Validate still runs to reject
// non-conforming number keys.
func BetFromLines(id, userID, marketID, date string, gt domain.GameType, side domain.Side, lines []Line) (domain.Bet, error) {
	numbers := make(map[string]int64, len(lines))
	var total int64
	for _, line := range lines {
		if line.GameType != gt || line.Side != side {
			return domain.Bet{}, fmt.Errorf("%w: line %s/%s does not belong to %s/%s bet",
				domain.ErrInvalidBet, line.GameType, line.Side, gt, side)
		}
		numbers[line.NumberKey] += line.Amount
		total += line.Amount
	}

	bet := domain.Bet{
		ID:          id,
		UserID:      userID,
		MarketID:    marketID,
		GameType:    gt,
		Side:        side,
		Numbers:     numbers,
		TotalAmount: total,
		Date:        date,
	}
	if err := bet.Validate(); err != nil {
		return domain.Bet{}, err
	}
	return bet, nil
}

// toAmount coerces the value types legacy documents carry amounts in.
func toAmount(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("amount %v is not an integer", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("amount %q is not numeric", n)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("amount has unsupported type %T", v)
	}
}
