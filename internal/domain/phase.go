package domain

import "time"

// Phase is the betting phase a market is in at a given instant. Exactly one
// phase applies per instant; the phases partition the market day.
type Phase string

const (
	PhaseClosedForWeek Phase = "closed_for_week"
	PhasePreOpen       Phase = "pre_open"
	PhaseOpenBetting   Phase = "open_betting"
	PhaseOpenLoading   Phase = "open_loading"
	PhaseCloseBetting  Phase = "close_betting"
	PhaseCloseLoading  Phase = "close_loading"
	PhaseClosedForDay  Phase = "closed_for_day"
)

// NextEvent describes the next phase boundary after the current instant.
type NextEvent struct {
	Kind    string    `json:"kind"`
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// PhaseResult is the lifecycle clock's answer for one market at one instant:
// the current phase and which bet sides may be accepted right now.
//
// ScheduleErr is set when the market's configured times could not be parsed;
// in that case the clock fails closed (ClosedForDay, no betting).
type PhaseResult struct {
	Phase         Phase         `json:"phase"`
	CanPlayOpen   bool          `json:"can_play_open"`
	CanPlayClose  bool          `json:"can_play_close"`
	CanPlayBoth   bool          `json:"can_play_both"`
	NextEvent     *NextEvent    `json:"next_event,omitempty"`
	TimeUntilNext time.Duration `json:"time_until_next"`
	ScheduleErr   bool          `json:"schedule_err,omitempty"`
}

// CanPlay reports whether a bet on the given side is accepted in this phase.
func (p PhaseResult) CanPlay(side Side) bool {
	switch side {
	case SideOpen:
		return p.CanPlayOpen
	case SideClose:
		return p.CanPlayClose
	case SideBoth:
		return p.CanPlayBoth
	}
	return false
}
