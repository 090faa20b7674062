package agrolib

import (
	"testing"
	"time"

	"github.com/agroslabs/agros/pkg/logger"
)

// eventRecorder collects events seen on a bus for assertions.
type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) record(e Event) {
	r.events = append(r.events, e)
}

func (r *eventRecorder) signals() []Signal {
	sigs := make([]Signal, len(r.events))
	for i, e := range r.events {
		sigs[i] = e.Signal
	}
	return sigs
}

// recordSignals subscribes a recorder to the given signals.
func recordSignals(bus *Bus, sigs ...Signal) *eventRecorder {
	r := &eventRecorder{}
	for _, s := range sigs {
		bus.Subscribe(s, r.record)
	}
	return r
}

func mustCropCalendar(t *testing.T, bus *Bus, cfg CropConfig) *CropCalendar {
	t.Helper()
	cc, err := NewCropCalendar(bus, logger.NewNopLogger(), cfg)
	if err != nil {
		t.Fatalf("NewCropCalendar: %v", err)
	}
	return cc
}

func mustTimedDispatcher(t *testing.T, bus *Bus, cfg TimedEventsConfig) *TimedEventsDispatcher {
	t.Helper()
	te, err := NewTimedEventsDispatcher(bus, logger.NewNopLogger(), cfg)
	if err != nil {
		t.Fatalf("NewTimedEventsDispatcher: %v", err)
	}
	return te
}

func mustStateDispatcher(t *testing.T, kiosk *Kiosk, bus *Bus, log logger.Logger, cfg StateEventsConfig) *StateEventsDispatcher {
	t.Helper()
	se, err := NewStateEventsDispatcher(kiosk, bus, log, cfg)
	if err != nil {
		t.Fatalf("NewStateEventsDispatcher: %v", err)
	}
	return se
}

// tickRange advances cc for every day of [from, to].
func tickRange(cc *CropCalendar, from, to time.Time) {
	for day := from; !day.After(to); day = AddDays(day, 1) {
		cc.Advance(day)
	}
}

func wantValidation(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected a validation error, got nil")
	}
	if !IsValidation(err) {
		t.Fatalf("expected a validation error, got %T: %v", err, err)
	}
}
