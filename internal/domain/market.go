package domain

import "time"

// Weekdays is a bitmask over the seven weekdays on which a market runs.
// Bit 0 is Monday, bit 6 is Sunday.
type Weekdays uint8

const (
	Monday Weekdays = 1 << iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday

	// AllWeek has every weekday set.
	AllWeek Weekdays = 1<<7 - 1
)

// Contains reports whether the given calendar weekday is set in the mask.
func (w Weekdays) Contains(d time.Weekday) bool {
	// time.Weekday counts Sunday as 0; the mask is Monday-based.
	idx := (int(d) + 6) % 7
	return w&(1<<idx) != 0
}

// WeekdaysFromLegacyCount converts the legacy "days 1..N are active, starting
// Monday" integer encoding into an explicit mask. The legacy form cannot
// express arbitrary day sets (e.g. Tue/Thu/Sat only) and is accepted only at
// the ingestion boundary.
func WeekdaysFromLegacyCount(n int) Weekdays {
	if n <= 0 {
		return 0
	}
	if n >= 7 {
		return AllWeek
	}
	return Weekdays(1<<n - 1)
}

// MarketSchedule is the slice of a Market that the lifecycle clock consumes.
// OpenTime and CloseTime are raw strings as supplied by the admin workflow:
// either a bare "HH:mm" or a full RFC3339 timestamp whose date portion is
// discarded.
type MarketSchedule struct {
	OpenTime  string
	CloseTime string
	RunDays   Weekdays
}

// Market is a matka market as configured by the external admin workflow.
// It is read-only to this core.
type Market struct {
	ID        string
	Name      string
	OpenTime  string
	CloseTime string
	RunDays   Weekdays
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Schedule returns the market's clock-facing schedule.
func (m Market) Schedule() MarketSchedule {
	return MarketSchedule{
		OpenTime:  m.OpenTime,
		CloseTime: m.CloseTime,
		RunDays:   m.RunDays,
	}
}
