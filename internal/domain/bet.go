package domain

import (
	"fmt"
	"strings"
	"time"
)

// GameType identifies one of the matka game variants. The set is closed; the
// rate table and the number-key validator must cover every value.
type GameType string

const (
	GameSingle          GameType = "single"
	GameJodi            GameType = "jodi"
	GameSinglePanna     GameType = "single_panna"
	GameDoublePanna     GameType = "double_panna"
	GameTriplePanna     GameType = "triple_panna"
	GameHalfSangamOpen  GameType = "half_sangam_open"
	GameHalfSangamClose GameType = "half_sangam_close"
	GameFullSangam      GameType = "full_sangam"
)

// AllGameTypes returns every game type in declaration order.
func AllGameTypes() []GameType {
	return []GameType{
		GameSingle, GameJodi,
		GameSinglePanna, GameDoublePanna, GameTriplePanna,
		GameHalfSangamOpen, GameHalfSangamClose, GameFullSangam,
	}
}

// IsPanna reports whether the game type belongs to the panna family, whose
// wins also pay the correlated single-digit pool via digit sum.
func (g GameType) IsPanna() bool {
	return g == GameSinglePanna || g == GameDoublePanna || g == GameTriplePanna
}

// IsSangam reports whether the game type is a composite open+close bet.
func (g GameType) IsSangam() bool {
	return g == GameHalfSangamOpen || g == GameHalfSangamClose || g == GameFullSangam
}

// Valid reports whether g is a known game type.
func (g GameType) Valid() bool {
	switch g {
	case GameSingle, GameJodi, GameSinglePanna, GameDoublePanna,
		GameTriplePanna, GameHalfSangamOpen, GameHalfSangamClose, GameFullSangam:
		return true
	}
	return false
}

// Side identifies which of a market's two daily declarations a bet targets.
type Side string

const (
	SideOpen  Side = "open"
	SideClose Side = "close"
	SideBoth  Side = "both"
)

// Valid reports whether s is a known side.
func (s Side) Valid() bool {
	return s == SideOpen || s == SideClose || s == SideBoth
}

// Bet is a single wager. Numbers maps a game-type-dependent number key to the
// amount staked on it, in the smallest currency unit. TotalAmount must equal
// the sum of the Numbers values.
type Bet struct {
	ID          string
	UserID      string
	MarketID    string
	GameType    GameType
	Side        Side
	Numbers     map[string]int64
	TotalAmount int64
	Date        string // market day, YYYY-MM-DD
	CreatedAt   time.Time
	Settled     bool
	Payout      *int64
	SettledAt   *time.Time
}

// Validate checks the bet's structural invariants: known game type and side,
// number keys conforming to the game type's format, non-negative amounts, and
// TotalAmount equal to the sum of the per-number stakes. Violations return
// an error wrapping ErrInvalidBet.
func (b Bet) Validate() error {
	if !b.GameType.Valid() {
		return fmt.Errorf("%w: unknown game type %q", ErrInvalidBet, b.GameType)
	}
	if !b.Side.Valid() {
		return fmt.Errorf("%w: unknown side %q", ErrInvalidBet, b.Side)
	}
	if b.GameType.IsSangam() && b.Side != SideBoth {
		return fmt.Errorf("%w: %s bets span both sides, got side %q", ErrInvalidBet, b.GameType, b.Side)
	}
	if len(b.Numbers) == 0 {
		return fmt.Errorf("%w: no numbers selected", ErrInvalidBet)
	}

	var sum int64
	for key, amount := range b.Numbers {
		if amount < 0 {
			return fmt.Errorf("%w: negative amount %d on %q", ErrInvalidBet, amount, key)
		}
		if !ValidNumberKey(b.GameType, key) {
			return fmt.Errorf("%w: key %q does not match %s format", ErrInvalidBet, key, b.GameType)
		}
		sum += amount
	}
	if sum != b.TotalAmount {
		return fmt.Errorf("%w: total %d does not equal sum of stakes %d", ErrInvalidBet, b.TotalAmount, sum)
	}
	if b.TotalAmount <= 0 {
		return fmt.Errorf("%w: total amount must be positive", ErrInvalidBet)
	}
	return nil
}

// ValidNumberKey reports whether key conforms to the number format of the
// given game type: one digit for single, two for jodi, a three-digit panna
// with the matching repetition pattern for the panna family, and a
// dash-joined composite for the sangam types.
func ValidNumberKey(gt GameType, key string) bool {
	switch gt {
	case GameSingle:
		return isDigits(key) && len(key) == 1
	case GameJodi:
		return isDigits(key) && len(key) == 2
	case GameSinglePanna:
		return pannaKind(key) == GameSinglePanna
	case GameDoublePanna:
		return pannaKind(key) == GameDoublePanna
	case GameTriplePanna:
		return pannaKind(key) == GameTriplePanna
	case GameHalfSangamOpen:
		// open-side panna paired with a close-side single digit: "PPP-D"
		open, close, ok := SplitSangamKey(key)
		return ok && pannaKind(open) != "" && isDigits(close) && len(close) == 1
	case GameHalfSangamClose:
		// open-side single digit paired with a close-side panna: "D-PPP"
		open, close, ok := SplitSangamKey(key)
		return ok && isDigits(open) && len(open) == 1 && pannaKind(close) != ""
	case GameFullSangam:
		open, close, ok := SplitSangamKey(key)
		return ok && pannaKind(open) != "" && pannaKind(close) != ""
	}
	return false
}

// SplitSangamKey splits a composite sangam number key into its open and close
// halves. It returns ok=false when the key is not exactly two dash-joined
// parts.
func SplitSangamKey(key string) (open, close string, ok bool) {
	parts := strings.Split(key, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// pannaKind classifies a three-digit string by its digit-repetition pattern:
// all distinct (single panna), exactly one pair (double panna), or all equal
// (triple panna). It returns "" for anything that is not a panna.
func pannaKind(s string) GameType {
	if len(s) != 3 || !isDigits(s) {
		return ""
	}
	switch {
	case s[0] == s[1] && s[1] == s[2]:
		return GameTriplePanna
	case s[0] == s[1] || s[1] == s[2] || s[0] == s[2]:
		return GameDoublePanna
	default:
		return GameSinglePanna
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
