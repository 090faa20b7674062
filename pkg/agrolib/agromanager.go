// Package agrolib implements the agros campaign scheduling engine: a
// sequence of non-overlapping campaigns advanced by a daily tick, each
// optionally carrying a crop calendar and tables of calendar- or
// state-triggered events, all broadcasting over a synchronous signal
// bus.
package agrolib

import (
	"time"

	"github.com/agroslabs/agros/pkg/logger"
)

// Campaign is one interval of an agromanagement sequence. Any of the
// three parts may be absent; a campaign with all three absent is fallow.
type Campaign struct {
	StartDate   time.Time
	Crop        *CropConfig
	TimedEvents []TimedEventsConfig
	StateEvents []StateEventsConfig
}

// bundle holds the built collaborators of one campaign.
type bundle struct {
	crop  *CropCalendar
	timed []*TimedEventsDispatcher
	state []*StateEventsDispatcher
}

func (b bundle) fallow() bool {
	return b.crop == nil && len(b.timed) == 0 && len(b.state) == 0
}

// AgroManager owns the campaign queue and forwards every daily tick to
// the active campaign's crop calendar and event dispatchers. Bundles are
// built once during Initialize and held in an immutable slice; a cursor
// marks the active campaign and retired bundles are never addressed
// again.
type AgroManager struct {
	kiosk *Kiosk
	bus   *Bus
	log   logger.Logger

	starts  []time.Time
	bundles []bundle
	cursor  int

	startDate  time.Time
	endDate    time.Time
	terminated bool
}

// NewAgroManager creates a manager bound to the given kiosk and bus.
// Initialize must run before the first tick.
func NewAgroManager(kiosk *Kiosk, bus *Bus, log logger.Logger) *AgroManager {
	return &AgroManager{kiosk: kiosk, bus: bus, log: log}
}

// Initialize validates the campaign sequence and builds every bundle.
// Campaign start dates must be strictly increasing; each campaign's crop
// calendar and timed tables are validated against the campaign's window,
// open-ended for the last campaign.
func (am *AgroManager) Initialize(campaigns []Campaign) error {
	if len(campaigns) == 0 {
		return newValidationError("agromanagement definition has no campaigns")
	}

	starts := make([]time.Time, 0, len(campaigns))
	var prev time.Time
	for _, c := range campaigns {
		if c.StartDate.IsZero() {
			return newValidationError("campaign start must be given as a date")
		}
		day := ToDay(c.StartDate)
		if !prev.IsZero() && !day.After(prev) {
			return newValidationError("campaign start dates not strictly increasing at %s", day.Format(DayLayout))
		}
		prev = day
		starts = append(starts, day)
	}

	bundles := make([]bundle, 0, len(campaigns))
	for i, c := range campaigns {
		// Zero next start marks the open-ended window of the last
		// campaign.
		var next time.Time
		if i+1 < len(starts) {
			next = starts[i+1]
		}

		var b bundle
		if c.Crop != nil {
			cc, err := NewCropCalendar(am.bus, am.log, *c.Crop)
			if err != nil {
				return err
			}
			if err := cc.Validate(starts[i], next); err != nil {
				return err
			}
			b.crop = cc
		}
		for _, cfg := range c.TimedEvents {
			te, err := NewTimedEventsDispatcher(am.bus, am.log, cfg)
			if err != nil {
				return err
			}
			if err := te.Validate(starts[i], next); err != nil {
				return err
			}
			b.timed = append(b.timed, te)
		}
		for _, cfg := range c.StateEvents {
			se, err := NewStateEventsDispatcher(am.kiosk, am.bus, am.log, cfg)
			if err != nil {
				return err
			}
			b.state = append(b.state, se)
		}
		bundles = append(bundles, b)
	}

	am.starts = starts
	am.bundles = bundles
	am.cursor = 0
	am.startDate = starts[0]
	am.endDate = time.Time{}
	am.terminated = false
	return nil
}

// StartDate returns the first day the manager expects a tick for.
func (am *AgroManager) StartDate() time.Time {
	return am.startDate
}

// EndDate returns the last day any event or crop cycle end is defined
// for, memoized after the first call. Fallow campaigns contribute
// nothing, so trailing empty campaigns never stretch the run; a
// definition where every campaign is fallow has no resolvable end date
// and fails with a ValidationError.
func (am *AgroManager) EndDate() (time.Time, error) {
	if !am.endDate.IsZero() {
		return am.endDate, nil
	}
	var end time.Time
	for _, b := range am.bundles {
		if b.crop != nil {
			if d := b.crop.EndDate(); d.After(end) {
				end = d
			}
		}
		for _, te := range b.timed {
			if d := te.EndDate(); d.After(end) {
				end = d
			}
		}
	}
	if end.IsZero() {
		return time.Time{}, newValidationError("empty agromanagement definition: no campaigns with a crop calendar or timed events")
	}
	am.endDate = end
	return end, nil
}

// Advance forwards one daily tick. A campaign boundary retires the
// outgoing bundle before anything is dispatched, so the retiring
// campaign never observes the new campaign's start day. Dispatch order
// within the tick is fixed: crop calendar, timed dispatchers in list
// order, state dispatchers in list order.
func (am *AgroManager) Advance(day time.Time) {
	if am.cursor+1 < len(am.starts) && day.Equal(am.starts[am.cursor+1]) {
		am.cursor++
		if !am.terminated && am.exhausted() {
			am.terminated = true
			am.log.Info("campaign queue exhausted on day %s", day.Format(DayLayout))
			am.bus.Emit(Event{Signal: SigTerminate, Day: day})
		}
	}

	b := am.bundles[am.cursor]
	if b.crop != nil {
		b.crop.Advance(day)
	}
	for _, te := range b.timed {
		te.Advance(day)
	}
	for _, se := range b.state {
		se.Advance(day)
	}
}

// exhausted reports whether no bundle from the cursor onward can ever
// dispatch anything again.
func (am *AgroManager) exhausted() bool {
	for _, b := range am.bundles[am.cursor:] {
		if !b.fallow() {
			return false
		}
	}
	return true
}

// Campaigns returns the number of campaigns in the sequence.
func (am *AgroManager) Campaigns() int {
	return len(am.bundles)
}

// ActiveCampaign returns the index of the campaign the next tick will be
// dispatched to.
func (am *AgroManager) ActiveCampaign() int {
	return am.cursor
}

// ActiveCrop returns the active campaign's crop calendar, or nil when
// the campaign carries none.
func (am *AgroManager) ActiveCrop() *CropCalendar {
	if len(am.bundles) == 0 {
		return nil
	}
	return am.bundles[am.cursor].crop
}

// Terminated reports whether the terminate signal was emitted.
func (am *AgroManager) Terminated() bool {
	return am.terminated
}
