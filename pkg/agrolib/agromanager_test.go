package agrolib

import (
	"strings"
	"testing"
	"time"

	"github.com/agroslabs/agros/pkg/logger"
)

func newTestManager(t *testing.T, campaigns []Campaign) (*AgroManager, *Bus) {
	t.Helper()
	bus := NewBus()
	am := NewAgroManager(NewKiosk(), bus, logger.NewNopLogger())
	if err := am.Initialize(campaigns); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return am, bus
}

// runManager ticks the manager over every day of [from, to].
func runManager(am *AgroManager, from, to time.Time) {
	for day := from; !day.After(to); day = AddDays(day, 1) {
		am.Advance(day)
	}
}

func TestAgroManagerInitializeErrors(t *testing.T) {
	am := NewAgroManager(NewKiosk(), NewBus(), logger.NewNopLogger())

	t.Run("no campaigns", func(t *testing.T) {
		wantValidation(t, am.Initialize(nil))
	})

	t.Run("missing start date", func(t *testing.T) {
		wantValidation(t, am.Initialize([]Campaign{{}}))
	})

	t.Run("decreasing start dates", func(t *testing.T) {
		err := am.Initialize([]Campaign{
			{StartDate: Day(2001, 1, 1)},
			{StartDate: Day(2000, 12, 31)},
		})
		wantValidation(t, err)
		if !strings.Contains(err.Error(), "strictly increasing") {
			t.Fatalf("error = %q", err)
		}
	})

	t.Run("repeated start date", func(t *testing.T) {
		wantValidation(t, am.Initialize([]Campaign{
			{StartDate: Day(2001, 1, 1)},
			{StartDate: Day(2001, 1, 1)},
		}))
	})

	t.Run("crop start outside campaign window", func(t *testing.T) {
		crop := testCropConfig()
		crop.StartDate = Day(2002, 2, 1)
		crop.EndDate = Day(2002, 8, 1)
		wantValidation(t, am.Initialize([]Campaign{
			{StartDate: Day(2001, 1, 1), Crop: &crop},
			{StartDate: Day(2002, 1, 1)},
		}))
	})

	t.Run("timed event outside campaign window", func(t *testing.T) {
		timed := testTimedConfig()
		timed.Events[0].Day = Day(2002, 6, 1)
		wantValidation(t, am.Initialize([]Campaign{
			{StartDate: Day(2001, 1, 1), TimedEvents: []TimedEventsConfig{timed}},
			{StartDate: Day(2002, 1, 1)},
		}))
	})
}

func TestAgroManagerEndDate(t *testing.T) {
	t.Run("maturity crop plus trailing fallow", func(t *testing.T) {
		crop := CropConfig{
			CropID:      "grain-maize",
			StartDate:   Day(2001, 3, 1),
			StartType:   "sowing",
			EndType:     "maturity",
			MaxDuration: 150,
		}
		am, _ := newTestManager(t, []Campaign{
			{StartDate: Day(2001, 3, 1), Crop: &crop},
			{StartDate: Day(2002, 1, 1)},
		})
		end, err := am.EndDate()
		if err != nil {
			t.Fatalf("EndDate: %v", err)
		}
		want := AddDays(Day(2001, 3, 1), 150)
		if !end.Equal(want) {
			t.Fatalf("EndDate = %s, want %s", end.Format(DayLayout), want.Format(DayLayout))
		}
		if !am.StartDate().Equal(Day(2001, 3, 1)) {
			t.Fatalf("StartDate = %s", am.StartDate().Format(DayLayout))
		}
	})

	t.Run("latest timed event wins over earlier crop end", func(t *testing.T) {
		crop := testCropConfig()
		timed := testTimedConfig()
		timed.Events = []TimedEvent{{Day: Day(2001, 9, 15), Params: nil}}
		am, _ := newTestManager(t, []Campaign{
			{StartDate: Day(2001, 1, 1), Crop: &crop, TimedEvents: []TimedEventsConfig{timed}},
		})
		end, err := am.EndDate()
		if err != nil {
			t.Fatalf("EndDate: %v", err)
		}
		if !end.Equal(Day(2001, 9, 15)) {
			t.Fatalf("EndDate = %s, want 2001-09-15", end.Format(DayLayout))
		}
	})

	t.Run("all campaigns fallow", func(t *testing.T) {
		am, _ := newTestManager(t, []Campaign{
			{StartDate: Day(2001, 1, 1)},
			{StartDate: Day(2002, 1, 1)},
		})
		_, err := am.EndDate()
		wantValidation(t, err)
	})
}

func TestAgroManagerBoundarySwap(t *testing.T) {
	// The first campaign's crop would finish by harvest exactly on the
	// second campaign's start day. Retirement happens before dispatch, so
	// the crop never sees that day and never finishes.
	crop := CropConfig{
		CropID:      "cover-rye",
		StartDate:   Day(2001, 1, 1),
		StartType:   "sowing",
		EndDate:     Day(2001, 2, 1),
		EndType:     "harvest",
		MaxDuration: 300,
	}
	am, bus := newTestManager(t, []Campaign{
		{StartDate: Day(2001, 1, 1), Crop: &crop},
		{StartDate: Day(2001, 2, 1)},
	})
	starts := recordSignals(bus, SigCropStart)
	finishes := recordSignals(bus, SigCropFinish)

	runManager(am, Day(2001, 1, 1), Day(2001, 2, 1))

	if len(starts.events) != 1 {
		t.Fatalf("got %d crop starts, want 1", len(starts.events))
	}
	if len(finishes.events) != 0 {
		t.Fatalf("retired crop still finished: %+v", finishes.events)
	}
	if am.ActiveCampaign() != 1 {
		t.Fatalf("active campaign = %d, want 1", am.ActiveCampaign())
	}
	if am.ActiveCrop() != nil {
		t.Fatal("fallow campaign reports a crop")
	}
}

func TestAgroManagerTerminateOnExhaustedQueue(t *testing.T) {
	crop := CropConfig{
		CropID:      "spring-barley",
		StartDate:   Day(2001, 1, 1),
		StartType:   "sowing",
		EndType:     "maturity",
		MaxDuration: 60,
	}
	am, bus := newTestManager(t, []Campaign{
		{StartDate: Day(2001, 1, 1), Crop: &crop},
		{StartDate: Day(2001, 1, 15)},
		{StartDate: Day(2001, 2, 1)},
	})
	terms := recordSignals(bus, SigTerminate)

	runManager(am, Day(2001, 1, 1), Day(2001, 1, 14))
	if am.Terminated() {
		t.Fatal("terminated while the crop campaign was active")
	}

	am.Advance(Day(2001, 1, 15))
	if !am.Terminated() {
		t.Fatal("not terminated although only fallow campaigns remain")
	}
	if len(terms.events) != 1 {
		t.Fatalf("got %d terminate events, want 1", len(terms.events))
	}
	if !terms.events[0].Day.Equal(Day(2001, 1, 15)) {
		t.Fatalf("terminate day = %s, want 2001-01-15", terms.events[0].Day.Format(DayLayout))
	}

	// Crossing into the second fallow campaign stays silent.
	runManager(am, Day(2001, 1, 16), Day(2001, 2, 2))
	if len(terms.events) != 1 {
		t.Fatalf("terminate repeated: got %d events", len(terms.events))
	}
}

func TestAgroManagerNoTerminateBeforeLastRealCampaign(t *testing.T) {
	crop := CropConfig{
		CropID:      "spring-barley",
		StartDate:   Day(2001, 2, 1),
		StartType:   "sowing",
		EndType:     "maturity",
		MaxDuration: 30,
	}
	am, bus := newTestManager(t, []Campaign{
		{StartDate: Day(2001, 1, 1)},
		{StartDate: Day(2001, 2, 1), Crop: &crop},
		{StartDate: Day(2001, 4, 1)},
	})
	terms := recordSignals(bus, SigTerminate)

	runManager(am, Day(2001, 1, 1), Day(2001, 3, 31))
	if len(terms.events) != 0 {
		t.Fatalf("terminated while a crop campaign was still queued: %+v", terms.events)
	}

	am.Advance(Day(2001, 4, 1))
	if len(terms.events) != 1 {
		t.Fatalf("got %d terminate events, want 1", len(terms.events))
	}
}

func TestAgroManagerDispatchOrder(t *testing.T) {
	kiosk := NewKiosk()
	bus := NewBus()
	am := NewAgroManager(kiosk, bus, logger.NewNopLogger())

	crop := CropConfig{
		CropID:      "sugar-beet",
		StartDate:   Day(2001, 1, 2),
		StartType:   "sowing",
		EndType:     "maturity",
		MaxDuration: 200,
	}
	timed := TimedEventsConfig{
		EventSignal: "irrigate",
		Name:        "single shot",
		Events:      []TimedEvent{{Day: Day(2001, 1, 2), Params: nil}},
	}
	state := StateEventsConfig{
		EventSignal:   "apply_npk",
		EventState:    "DVS",
		ZeroCondition: "rising",
		Name:          "stage driven",
		Events:        []StateEvent{{Threshold: 0.5, Params: nil}},
	}
	err := am.Initialize([]Campaign{{
		StartDate:   Day(2001, 1, 1),
		Crop:        &crop,
		TimedEvents: []TimedEventsConfig{timed},
		StateEvents: []StateEventsConfig{state},
	}})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	rec := recordSignals(bus, SigCropStart, SigIrrigate, SigApplyNPK)

	kiosk.Set("DVS", 0.2)
	am.Advance(Day(2001, 1, 1))
	kiosk.Set("DVS", 0.8)
	am.Advance(Day(2001, 1, 2))

	want := []Signal{SigCropStart, SigIrrigate, SigApplyNPK}
	got := rec.signals()
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d = %q, want %q (order %v)", i, got[i], want[i], got)
		}
	}
}
