// Package clock implements the market lifecycle clock: a pure classification
// of wall-clock time against a market's configured schedule into the betting
// phase currently in effect.
package clock

import (
	"fmt"
	"time"

	"github.com/shaikhsameershabbir/matka-core/internal/domain"
)

// loadingWindow is the operational buffer before each declaration during
// which no new bets are accepted.
const loadingWindow = 15 * time.Minute

// timeOfDayLayouts are the accepted bare time-of-day formats. Full RFC3339
// timestamps are also accepted; their date portion is discarded.
var timeOfDayLayouts = []string{"15:04", "15:04:05"}

// Classify determines the betting phase for the given schedule at the given
// instant. It is pure and side-effect-free: the day's phase intervals are
// derived from the schedule anchored to now's calendar date, and the first
// half-open interval [start, end) containing now wins.
//
// A schedule whose times cannot be parsed, or whose close does not follow its
// open, fails closed: ClosedForDay with ScheduleErr set and no betting
// permitted.
func Classify(now time.Time, schedule domain.MarketSchedule) domain.PhaseResult {
	openHour, openMin, err := parseTimeOfDay(schedule.OpenTime)
	if err != nil {
		return failClosed()
	}
	closeHour, closeMin, err := parseTimeOfDay(schedule.CloseTime)
	if err != nil {
		return failClosed()
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	openAt := midnight.Add(time.Duration(openHour)*time.Hour + time.Duration(openMin)*time.Minute)
	closeAt := midnight.Add(time.Duration(closeHour)*time.Hour + time.Duration(closeMin)*time.Minute)
	nextMidnight := midnight.AddDate(0, 0, 1)

	if !closeAt.After(openAt) {
		return failClosed()
	}

	if !schedule.RunDays.Contains(now.Weekday()) {
		res := domain.PhaseResult{Phase: domain.PhaseClosedForWeek}
		setNext(&res, now, "day_rollover", nextMidnight, "market closed today, next market day begins at midnight")
		return res
	}

	openLoadingAt := openAt.Add(-loadingWindow)
	closeLoadingAt := closeAt.Add(-loadingWindow)
	// A close time within the loading window of the open time would fold the
	// close-betting interval negative; clamp so the intervals stay ordered.
	if closeLoadingAt.Before(openAt) {
		closeLoadingAt = openAt
	}

	var res domain.PhaseResult
	switch {
	case now.Before(openLoadingAt):
		res.Phase = domain.PhaseOpenBetting
		res.CanPlayOpen, res.CanPlayClose, res.CanPlayBoth = true, true, true
		setNext(&res, now, "open_loading", openLoadingAt,
			fmt.Sprintf("open betting closes at %s", openLoadingAt.Format("15:04")))
	case now.Before(openAt):
		res.Phase = domain.PhaseOpenLoading
		setNext(&res, now, "open_declared", openAt,
			fmt.Sprintf("open result expected at %s", openAt.Format("15:04")))
	case now.Before(closeLoadingAt):
		res.Phase = domain.PhaseCloseBetting
		res.CanPlayClose = true
		setNext(&res, now, "close_loading", closeLoadingAt,
			fmt.Sprintf("close betting closes at %s", closeLoadingAt.Format("15:04")))
	case now.Before(closeAt):
		res.Phase = domain.PhaseCloseLoading
		setNext(&res, now, "close_declared", closeAt,
			fmt.Sprintf("close result expected at %s", closeAt.Format("15:04")))
	default:
		res.Phase = domain.PhaseClosedForDay
		setNext(&res, now, "day_rollover", nextMidnight, "market closed, next market day begins at midnight")
	}
	return res
}

func failClosed() domain.PhaseResult {
	return domain.PhaseResult{
		Phase:       domain.PhaseClosedForDay,
		ScheduleErr: true,
	}
}

func setNext(res *domain.PhaseResult, now time.Time, kind string, at time.Time, message string) {
	res.NextEvent = &domain.NextEvent{Kind: kind, Time: at, Message: message}
	res.TimeUntilNext = at.Sub(now)
}

// parseTimeOfDay extracts the hour and minute from either a bare time-of-day
// string ("HH:mm" or "HH:mm:ss") or a full RFC3339 timestamp.
func parseTimeOfDay(s string) (hour, minute int, err error) {
	if s == "" {
		return 0, 0, fmt.Errorf("%w: empty time", domain.ErrBadSchedule)
	}
	for _, layout := range timeOfDayLayouts {
		if t, perr := time.Parse(layout, s); perr == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	if t, perr := time.Parse(time.RFC3339, s); perr == nil {
		return t.Hour(), t.Minute(), nil
	}
	return 0, 0, fmt.Errorf("%w: cannot parse %q", domain.ErrBadSchedule, s)
}
