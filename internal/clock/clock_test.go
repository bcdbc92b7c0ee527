package clock

import (
	"testing"
	"time"

	"github.com/shaikhsameershabbir/matka-core/internal/domain"
)

func schedule(open, close string) domain.MarketSchedule {
	return domain.MarketSchedule{
		OpenTime:  open,
		CloseTime: close,
		RunDays:   domain.AllWeek,
	}
}

// at returns a Monday at the given clock time.
func at(hour, min int) time.Time {
	return time.Date(2024, 7, 1, hour, min, 0, 0, time.UTC) // 2024-07-01 is a Monday
}

func TestClassify_OpenLoadingScenario(t *testing.T) {
	// open=10:00 close=11:00, now=09:50 -> OpenLoading, nothing playable,
	// next event is the open declaration at 10:00.
	res := Classify(at(9, 50), schedule("10:00", "11:00"))

	if res.Phase != domain.PhaseOpenLoading {
		t.Fatalf("expected open_loading, got %s", res.Phase)
	}
	if res.CanPlayOpen || res.CanPlayClose || res.CanPlayBoth {
		t.Errorf("no betting should be allowed during loading: %+v", res)
	}
	if res.NextEvent == nil {
		t.Fatal("expected a next event")
	}
	want := at(10, 0)
	if !res.NextEvent.Time.Equal(want) {
		t.Errorf("expected next event at %v, got %v", want, res.NextEvent.Time)
	}
	if res.TimeUntilNext != 10*time.Minute {
		t.Errorf("expected 10m until next event, got %v", res.TimeUntilNext)
	}
}

func TestClassify_CloseBettingScenario(t *testing.T) {
	// open=10:00 close=11:00, now=10:15 -> CloseBetting, close only.
	res := Classify(at(10, 15), schedule("10:00", "11:00"))

	if res.Phase != domain.PhaseCloseBetting {
		t.Fatalf("expected close_betting, got %s", res.Phase)
	}
	if res.CanPlayOpen {
		t.Error("open side already resolved, canPlayOpen must be false")
	}
	if !res.CanPlayClose {
		t.Error("canPlayClose must be true during close betting")
	}
	if res.CanPlayBoth {
		t.Error("canPlayBoth must be false once the open side resolved")
	}
}

func TestClassify_PhaseSequence(t *testing.T) {
	sched := schedule("10:00", "14:00")

	cases := []struct {
		hour, min int
		want      domain.Phase
	}{
		{0, 0, domain.PhaseOpenBetting},
		{9, 44, domain.PhaseOpenBetting},
		{9, 45, domain.PhaseOpenLoading},
		{9, 59, domain.PhaseOpenLoading},
		{10, 0, domain.PhaseCloseBetting},
		{13, 44, domain.PhaseCloseBetting},
		{13, 45, domain.PhaseCloseLoading},
		{13, 59, domain.PhaseCloseLoading},
		{14, 0, domain.PhaseClosedForDay},
		{23, 59, domain.PhaseClosedForDay},
	}
	for _, tc := range cases {
		res := Classify(at(tc.hour, tc.min), sched)
		if res.Phase != tc.want {
			t.Errorf("%02d:%02d: expected %s, got %s", tc.hour, tc.min, tc.want, res.Phase)
		}
	}
}

func TestClassify_DayPartition(t *testing.T) {
	// Every minute of the day must land in exactly one phase, and the can*
	// flags must respect the phase they belong to.
	sched := schedule("09:30", "12:00")

	for min := 0; min < 24*60; min++ {
		now := at(0, 0).Add(time.Duration(min) * time.Minute)
		res := Classify(now, sched)

		switch res.Phase {
		case domain.PhaseOpenBetting, domain.PhaseOpenLoading,
			domain.PhaseCloseBetting, domain.PhaseCloseLoading,
			domain.PhaseClosedForDay:
		default:
			t.Fatalf("%v: unexpected phase %s", now, res.Phase)
		}

		if res.CanPlayBoth && !(res.CanPlayOpen && res.CanPlayClose) {
			t.Errorf("%v: canPlayBoth implies both sides playable", now)
		}
		playable := res.CanPlayOpen || res.CanPlayClose
		betting := res.Phase == domain.PhaseOpenBetting || res.Phase == domain.PhaseCloseBetting
		if playable && !betting {
			t.Errorf("%v: betting allowed outside a betting phase (%s)", now, res.Phase)
		}
		if betting && !playable {
			t.Errorf("%v: betting phase %s with no playable side", now, res.Phase)
		}
	}
}

func TestClassify_ClosedForWeek(t *testing.T) {
	sched := domain.MarketSchedule{
		OpenTime:  "10:00",
		CloseTime: "11:00",
		RunDays:   domain.Monday | domain.Tuesday,
	}

	saturday := time.Date(2024, 7, 6, 10, 30, 0, 0, time.UTC)
	res := Classify(saturday, sched)
	if res.Phase != domain.PhaseClosedForWeek {
		t.Fatalf("expected closed_for_week on Saturday, got %s", res.Phase)
	}
	if res.CanPlayOpen || res.CanPlayClose || res.CanPlayBoth {
		t.Error("no betting on an off day")
	}

	monday := time.Date(2024, 7, 1, 10, 30, 0, 0, time.UTC)
	if res := Classify(monday, sched); res.Phase == domain.PhaseClosedForWeek {
		t.Error("Monday is a run day, must not be closed_for_week")
	}
}

func TestClassify_RFC3339Times(t *testing.T) {
	// Full timestamps must normalize identically to bare HH:mm; the date
	// portion is discarded.
	bare := Classify(at(9, 50), schedule("10:00", "11:00"))
	full := Classify(at(9, 50), schedule("1970-01-01T10:00:00Z", "1970-01-01T11:00:00Z"))

	if bare.Phase != full.Phase {
		t.Errorf("bare %s != rfc3339 %s", bare.Phase, full.Phase)
	}
	if full.Phase != domain.PhaseOpenLoading {
		t.Errorf("expected open_loading, got %s", full.Phase)
	}
}

func TestClassify_MalformedScheduleFailsClosed(t *testing.T) {
	cases := []domain.MarketSchedule{
		schedule("not-a-time", "11:00"),
		schedule("10:00", ""),
		schedule("25:99", "11:00"),
		schedule("11:00", "10:00"), // close before open
	}
	for _, sched := range cases {
		res := Classify(at(10, 0), sched)
		if res.Phase != domain.PhaseClosedForDay {
			t.Errorf("schedule %+v: expected closed_for_day, got %s", sched, res.Phase)
		}
		if !res.ScheduleErr {
			t.Errorf("schedule %+v: expected ScheduleErr", sched)
		}
		if res.CanPlayOpen || res.CanPlayClose || res.CanPlayBoth {
			t.Errorf("schedule %+v: fail closed means no betting", sched)
		}
	}
}

func TestClassify_NextEventChain(t *testing.T) {
	sched := schedule("10:00", "11:00")

	res := Classify(at(8, 0), sched)
	if res.NextEvent == nil || !res.NextEvent.Time.Equal(at(9, 45)) {
		t.Fatalf("expected next event at 09:45, got %+v", res.NextEvent)
	}

	res = Classify(at(10, 30), sched)
	if res.NextEvent == nil || !res.NextEvent.Time.Equal(at(10, 45)) {
		t.Fatalf("expected next event at 10:45, got %+v", res.NextEvent)
	}

	res = Classify(at(12, 0), sched)
	next := at(0, 0).AddDate(0, 0, 1)
	if res.NextEvent == nil || !res.NextEvent.Time.Equal(next) {
		t.Fatalf("expected rollover at next midnight, got %+v", res.NextEvent)
	}
}

func TestMemo_ReusesWithinWindow(t *testing.T) {
	m := NewMemo(30 * time.Second)
	sched := schedule("10:00", "11:00")
	now := at(9, 50)

	first := m.Classify("mkt-1", now, sched)
	// Same market and minute: the cached result must come back even if the
	// schedule given changes, proving no recomputation happened.
	second := m.Classify("mkt-1", now.Add(5*time.Second), schedule("12:00", "13:00"))
	if first.Phase != second.Phase {
		t.Errorf("expected memoized phase %s, got %s", first.Phase, second.Phase)
	}

	// A different market must not share the entry.
	other := m.Classify("mkt-2", now, schedule("12:00", "13:00"))
	if other.Phase != domain.PhaseOpenBetting {
		t.Errorf("expected fresh classification for mkt-2, got %s", other.Phase)
	}
}

func TestMemo_ExpiresAcrossMinutes(t *testing.T) {
	m := NewMemo(30 * time.Second)
	sched := schedule("10:00", "11:00")

	first := m.Classify("mkt-1", at(9, 44), sched)
	if first.Phase != domain.PhaseOpenBetting {
		t.Fatalf("expected open_betting at 09:44, got %s", first.Phase)
	}
	second := m.Classify("mkt-1", at(9, 45), sched)
	if second.Phase != domain.PhaseOpenLoading {
		t.Errorf("minute rolled, expected open_loading, got %s", second.Phase)
	}

	m.Cleanup(at(9, 50))
}
