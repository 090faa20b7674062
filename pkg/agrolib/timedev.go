package agrolib

import (
	"sort"
	"strings"
	"time"

	"github.com/agroslabs/agros/pkg/logger"
)

// TimedEvent is one day-to-payload entry of a timed-event table.
type TimedEvent struct {
	Day    time.Time
	Params map[string]any
}

// TimedEventsConfig is the declarative definition of one timed-event
// table.
type TimedEventsConfig struct {
	EventSignal string
	Name        string
	Comment     string
	Events      []TimedEvent
}

// TimedEventsDispatcher fires a configured signal on exact calendar
// days. The entry list is immutable after construction.
type TimedEventsDispatcher struct {
	signal  Signal
	name    string
	comment string

	events []TimedEvent
	counts map[time.Time]int

	bus *Bus
	log logger.Logger
}

// NewTimedEventsDispatcher builds a dispatcher from its table
// definition. It fails with a ValidationError when the signal name is
// unknown, the table is empty, or a day carries more than one entry.
func NewTimedEventsDispatcher(bus *Bus, log logger.Logger, cfg TimedEventsConfig) (*TimedEventsDispatcher, error) {
	sig, err := ParseSignal(cfg.EventSignal)
	if err != nil {
		return nil, err
	}
	if len(cfg.Events) == 0 {
		return nil, newValidationError("events table %q has no entries", cfg.Name)
	}

	events := make([]TimedEvent, len(cfg.Events))
	counts := make(map[time.Time]int, len(cfg.Events))
	for i, ev := range cfg.Events {
		events[i] = TimedEvent{Day: ToDay(ev.Day), Params: ev.Params}
		counts[events[i].Day]++
	}

	var multi []string
	for day, n := range counts {
		if n > 1 {
			multi = append(multi, day.Format(DayLayout))
		}
	}
	if len(multi) > 0 {
		sort.Strings(multi)
		return nil, newValidationError("events table %q has more than one event on days: %s",
			cfg.Name, strings.Join(multi, ", "))
	}

	return &TimedEventsDispatcher{
		signal:  sig,
		name:    cfg.Name,
		comment: cfg.Comment,
		events:  events,
		counts:  counts,
		bus:     bus,
		log:     log,
	}, nil
}

// Validate checks that every entry falls inside the campaign window. A
// zero nextCampaignStart leaves the window open-ended.
func (te *TimedEventsDispatcher) Validate(campaignStart, nextCampaignStart time.Time) error {
	for _, ev := range te.events {
		if !inWindow(ev.Day, campaignStart, nextCampaignStart) {
			return newValidationError("timed event at day %s not in campaign window (%s)",
				ev.Day.Format(DayLayout), formatWindow(campaignStart, nextCampaignStart))
		}
	}
	return nil
}

// Advance fires the table's signal for every entry scheduled on day.
func (te *TimedEventsDispatcher) Advance(day time.Time) {
	if te.counts[day] == 0 {
		return
	}
	for _, ev := range te.events {
		if !ev.Day.Equal(day) {
			continue
		}
		te.log.Info("timed event dispatched from %q at day %s", te.name, day.Format(DayLayout))
		te.bus.Emit(Event{Signal: te.signal, Day: day, Params: ev.Params})
	}
}

// EndDate returns the last day carrying an entry. Construction
// guarantees the table is not empty.
func (te *TimedEventsDispatcher) EndDate() time.Time {
	var last time.Time
	for day := range te.counts {
		if day.After(last) {
			last = day
		}
	}
	return last
}

// Signal returns the signal this table fires.
func (te *TimedEventsDispatcher) Signal() Signal {
	return te.signal
}

// Name returns the table name.
func (te *TimedEventsDispatcher) Name() string {
	return te.name
}
