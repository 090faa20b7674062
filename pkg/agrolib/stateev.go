package agrolib

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agroslabs/agros/pkg/logger"
)

// ZeroCondition selects which sign transitions of current-minus-threshold
// fire a state event.
type ZeroCondition string

const (
	CrossRising  ZeroCondition = "rising"
	CrossFalling ZeroCondition = "falling"
	CrossEither  ZeroCondition = "either"
)

// ParseZeroCondition resolves a configured zero-condition mode.
func ParseZeroCondition(s string) (ZeroCondition, error) {
	switch c := ZeroCondition(s); c {
	case CrossRising, CrossFalling, CrossEither:
		return c, nil
	}
	return "", newValidationError("zero condition %q is not defined", s)
}

// StateEvent is one threshold-to-payload entry of a state-event table.
type StateEvent struct {
	Threshold float64
	Params    map[string]any
}

// StateEventsConfig is the declarative definition of one state-event
// table.
type StateEventsConfig struct {
	EventSignal   string
	EventState    string
	ZeroCondition string
	Name          string
	Comment       string
	Events        []StateEvent
}

// signUnset marks a previous-sign slot that has not been observed yet.
// Valid observed signs are -1, 0 and +1.
const signUnset int8 = -128

// StateEventsDispatcher fires a configured signal when a watched kiosk
// variable crosses an entry's threshold. Each entry tracks the sign of
// current-minus-threshold from the previous tick; the first observation
// never fires.
type StateEventsDispatcher struct {
	signal    Signal
	variable  string
	condition ZeroCondition
	name      string
	comment   string

	events []StateEvent
	signs  []int8

	kiosk *Kiosk
	bus   *Bus
	log   logger.Logger
}

// NewStateEventsDispatcher builds a dispatcher from its table
// definition. It fails with a ValidationError when the signal name or
// zero condition is unknown or a threshold repeats within the table.
func NewStateEventsDispatcher(kiosk *Kiosk, bus *Bus, log logger.Logger, cfg StateEventsConfig) (*StateEventsDispatcher, error) {
	sig, err := ParseSignal(cfg.EventSignal)
	if err != nil {
		return nil, err
	}
	cond, err := ParseZeroCondition(cfg.ZeroCondition)
	if err != nil {
		return nil, err
	}

	counts := make(map[float64]int, len(cfg.Events))
	for _, ev := range cfg.Events {
		counts[ev.Threshold]++
	}
	var multi []float64
	for threshold, n := range counts {
		if n > 1 {
			multi = append(multi, threshold)
		}
	}
	if len(multi) > 0 {
		sort.Float64s(multi)
		parts := make([]string, len(multi))
		for i, threshold := range multi {
			parts[i] = fmt.Sprintf("%v", threshold)
		}
		return nil, newValidationError("events table %q has more than one event for thresholds: %s",
			cfg.Name, strings.Join(parts, ", "))
	}

	events := make([]StateEvent, len(cfg.Events))
	copy(events, cfg.Events)
	signs := make([]int8, len(events))
	for i := range signs {
		signs[i] = signUnset
	}

	return &StateEventsDispatcher{
		signal:    sig,
		variable:  cfg.EventState,
		condition: cond,
		name:      cfg.Name,
		comment:   cfg.Comment,
		events:    events,
		signs:     signs,
		kiosk:     kiosk,
		bus:       bus,
		log:       log,
	}, nil
}

// Advance evaluates every entry against the watched variable's current
// value. A missing variable is recoverable: the tick is skipped for this
// dispatcher and previous signs stay untouched.
func (se *StateEventsDispatcher) Advance(day time.Time) {
	current, ok := se.kiosk.Get(se.variable)
	if !ok {
		se.log.Warning("state variable %q not (yet) available in kiosk", se.variable)
		return
	}
	for i := range se.events {
		sign := signOf(current - se.events[i].Threshold)
		prev := se.signs[i]
		se.signs[i] = sign
		if prev == signUnset {
			continue
		}
		if !crossed(se.condition, prev, sign) {
			continue
		}
		se.log.Info("state event dispatched from %q at threshold %v", se.name, se.events[i].Threshold)
		se.bus.Emit(Event{Signal: se.signal, Day: day, Params: se.events[i].Params})
	}
}

// Variable returns the watched variable name.
func (se *StateEventsDispatcher) Variable() string {
	return se.variable
}

// Signal returns the signal this table fires.
func (se *StateEventsDispatcher) Signal() Signal {
	return se.signal
}

// Name returns the table name.
func (se *StateEventsDispatcher) Name() string {
	return se.name
}

func signOf(x float64) int8 {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	default:
		return 0
	}
}

// crossed reports whether the prev-to-next sign transition satisfies
// cond. Callers must filter out unset previous signs.
func crossed(cond ZeroCondition, prev, next int8) bool {
	switch cond {
	case CrossRising:
		return prev == -1 && next >= 0
	case CrossFalling:
		return prev == 1 && next <= 0
	case CrossEither:
		return (prev == -1 && next >= 0) || (prev == 1 && next <= 0)
	default:
		return false
	}
}
