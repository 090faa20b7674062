package agrolib

import (
	"time"

	"github.com/agroslabs/agros/pkg/logger"
)

// CropStartType marks how a crop cycle begins.
type CropStartType string

const (
	StartSowing    CropStartType = "sowing"
	StartEmergence CropStartType = "emergence"
)

// ParseCropStartType resolves a configured crop start type.
func ParseCropStartType(s string) (CropStartType, error) {
	switch t := CropStartType(s); t {
	case StartSowing, StartEmergence:
		return t, nil
	}
	return "", newValidationError("crop start type %q is not defined", s)
}

// CropEndType marks how a crop cycle ends.
type CropEndType string

const (
	EndMaturity CropEndType = "maturity"
	EndHarvest  CropEndType = "harvest"
	EndEarliest CropEndType = "earliest"
)

// ParseCropEndType resolves a configured crop end type.
func ParseCropEndType(s string) (CropEndType, error) {
	switch t := CropEndType(s); t {
	case EndMaturity, EndHarvest, EndEarliest:
		return t, nil
	}
	return "", newValidationError("crop end type %q is not defined", s)
}

// FinishReason is carried by crop_finish events.
type FinishReason string

const (
	FinishHarvest     FinishReason = "harvest"
	FinishMaxDuration FinishReason = "max_duration"
)

// CropConfig is the declarative definition of one crop cycle. Start and
// end types arrive as raw strings from the document and are resolved
// against their closed enums when the calendar is built.
type CropConfig struct {
	CropID      string
	StartDate   time.Time
	StartType   string
	EndDate     time.Time
	EndType     string
	MaxDuration int
}

// CropCalendar starts, tracks and finishes a single crop cycle inside
// one campaign. It emits crop_start and crop_finish on the bus and also
// observes crop_finish fired by others, so a cycle ended externally is
// not finished twice.
type CropCalendar struct {
	cropID      string
	startDate   time.Time
	startType   CropStartType
	endDate     time.Time
	endType     CropEndType
	maxDuration int

	bus *Bus
	log logger.Logger

	duration int
	inCycle  bool
}

// NewCropCalendar builds a crop calendar and subscribes it to
// crop_finish. Unknown start or end types fail with a ValidationError.
func NewCropCalendar(bus *Bus, log logger.Logger, cfg CropConfig) (*CropCalendar, error) {
	startType, err := ParseCropStartType(cfg.StartType)
	if err != nil {
		return nil, err
	}
	endType, err := ParseCropEndType(cfg.EndType)
	if err != nil {
		return nil, err
	}
	if cfg.MaxDuration < 0 {
		return nil, newValidationError("max duration for crop %q must not be negative", cfg.CropID)
	}
	cc := &CropCalendar{
		cropID:      cfg.CropID,
		startDate:   ToDay(cfg.StartDate),
		startType:   startType,
		endType:     endType,
		maxDuration: cfg.MaxDuration,
		bus:         bus,
		log:         log,
	}
	if !cfg.EndDate.IsZero() {
		cc.endDate = ToDay(cfg.EndDate)
	}
	bus.Subscribe(SigCropFinish, cc.onCropFinish)
	return cc, nil
}

// Validate checks the cycle internally and against the campaign window.
// A zero nextCampaignStart leaves the window open-ended.
func (cc *CropCalendar) Validate(campaignStart, nextCampaignStart time.Time) error {
	end := cc.endDate
	if cc.endType == EndMaturity {
		end = AddDays(cc.startDate, cc.maxDuration)
	} else if end.IsZero() {
		return newValidationError("crop %q has end type %q but no end date", cc.cropID, cc.endType)
	}
	if !cc.startDate.Before(end) {
		return newValidationError("end date %s before or equal to start date %s for crop %q",
			end.Format(DayLayout), cc.startDate.Format(DayLayout), cc.cropID)
	}
	if !inWindow(cc.startDate, campaignStart, nextCampaignStart) {
		return newValidationError("start date %s for crop %q not within campaign window (%s)",
			cc.startDate.Format(DayLayout), cc.cropID, formatWindow(campaignStart, nextCampaignStart))
	}
	return nil
}

// Advance runs the calendar for one day. The duration counter increments
// first, so it reads 0 on the start day and grows by one per active day.
// A finish by date ("harvest") can be overridden by the duration check
// ("max_duration") in the same tick; that precedence is part of the
// calendar's contract, including a same-day finish when max duration is
// zero.
func (cc *CropCalendar) Advance(day time.Time) {
	if cc.inCycle {
		cc.duration++
	}

	if day.Equal(cc.startDate) {
		cc.duration = 0
		cc.inCycle = true
		cc.log.Info("starting crop (%s) on day %s", cc.cropID, day.Format(DayLayout))
		cc.bus.Emit(Event{
			Signal: SigCropStart,
			Day:    day,
			Crop: &CropStartInfo{
				CropID:    cc.cropID,
				StartType: cc.startType,
				EndType:   cc.endType,
			},
		})
	}

	if !cc.inCycle {
		return
	}

	var reason FinishReason
	if cc.endType == EndHarvest || cc.endType == EndEarliest {
		if !day.Before(cc.endDate) {
			reason = FinishHarvest
		}
	}
	if cc.duration >= cc.maxDuration {
		reason = FinishMaxDuration
	}
	if reason == "" {
		return
	}

	cc.inCycle = false
	cc.log.Info("finishing crop (%s) on day %s, reason: %s", cc.cropID, day.Format(DayLayout), reason)
	cc.bus.Emit(Event{
		Signal: SigCropFinish,
		Day:    day,
		Finish: &CropFinishInfo{Reason: reason, Delete: true},
	})
}

// onCropFinish registers that the cycle ended, regardless of who ended
// it.
func (cc *CropCalendar) onCropFinish(Event) {
	cc.inCycle = false
}

// CropID returns the crop identifier.
func (cc *CropCalendar) CropID() string {
	return cc.cropID
}

// StartDate returns the first day of the cycle.
func (cc *CropCalendar) StartDate() time.Time {
	return cc.startDate
}

// EndDate returns the last day the cycle can reach: the configured end
// date for harvest/earliest cycles, start date plus max duration
// otherwise.
func (cc *CropCalendar) EndDate() time.Time {
	if cc.endType == EndHarvest || cc.endType == EndEarliest {
		return cc.endDate
	}
	return AddDays(cc.startDate, cc.maxDuration)
}

// InCycle reports whether the crop cycle is currently active.
func (cc *CropCalendar) InCycle() bool {
	return cc.inCycle
}

// Duration returns the number of days the current cycle has been active.
func (cc *CropCalendar) Duration() int {
	return cc.duration
}
