package domain

import (
	"fmt"
	"time"
)

// Result holds the declared digits for one market on one market day. A side's
// digits are declared at most once; declarations are append-only and never
// edited.
type Result struct {
	MarketID        string
	Date            string // market day, YYYY-MM-DD
	OpenDigits      *string
	CloseDigits     *string
	OpenDeclaredAt  *time.Time
	CloseDeclaredAt *time.Time
}

// DigitsFor returns the declared digits for the given side, or ok=false when
// that side has not been declared yet. SideBoth requires both declarations.
func (r Result) DigitsFor(side Side) (string, bool) {
	switch side {
	case SideOpen:
		if r.OpenDigits == nil {
			return "", false
		}
		return *r.OpenDigits, true
	case SideClose:
		if r.CloseDigits == nil {
			return "", false
		}
		return *r.CloseDigits, true
	}
	return "", false
}

// OpenAnk returns the open side's single digit (digit sum of the open panna
// modulo 10), or ok=false when the open side is undeclared.
func (r Result) OpenAnk() (int, bool) {
	if r.OpenDigits == nil {
		return 0, false
	}
	ank, err := Ank(*r.OpenDigits)
	if err != nil {
		return 0, false
	}
	return ank, true
}

// CloseAnk returns the close side's single digit, or ok=false when the close
// side is undeclared.
func (r Result) CloseAnk() (int, bool) {
	if r.CloseDigits == nil {
		return 0, false
	}
	ank, err := Ank(*r.CloseDigits)
	if err != nil {
		return 0, false
	}
	return ank, true
}

// MainDigits returns the derived two-digit jodi (open ank followed by close
// ank), or ok=false until both sides are declared.
func (r Result) MainDigits() (string, bool) {
	openAnk, ok := r.OpenAnk()
	if !ok {
		return "", false
	}
	closeAnk, ok := r.CloseAnk()
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%d%d", openAnk, closeAnk), true
}

// Ank computes the digit sum of a digit string modulo 10.
func Ank(digits string) (int, error) {
	if !isDigits(digits) {
		return 0, fmt.Errorf("ank of non-digit string %q", digits)
	}
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i] - '0')
	}
	return sum % 10, nil
}
