package agrolib

import (
	"context"
	"time"

	"github.com/agroslabs/agros/pkg/logger"
)

// EngineOpts configures a single simulation run. All fields are
// optional.
type EngineOpts struct {
	// Model publishes state variables before each tick. A nil model
	// leaves the kiosk untouched; state-event dispatchers then log
	// their missing variable and skip, which is the documented
	// recoverable condition.
	Model Model
	// Handlers receive run callbacks.
	Handlers *Handlers
	// Logger defaults to a nop logger.
	Logger logger.Logger
}

// Engine drives one simulation run from the sequence start date to its
// end date, one tick per simulated day. It is single-threaded: Run and
// Tick must not be called concurrently.
type Engine struct {
	kiosk    *Kiosk
	bus      *Bus
	mgr      *AgroManager
	model    Model
	handlers *Handlers
	log      logger.Logger

	startDate time.Time
	endDate   time.Time

	day        time.Time
	ticks      int
	terminated bool
}

// NewEngine validates doc and builds a ready-to-run engine. Validation
// failures surface as ValidationErrors.
func NewEngine(doc *Document, opts *EngineOpts) (*Engine, error) {
	if opts == nil {
		opts = &EngineOpts{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	handlers := opts.Handlers
	if handlers == nil {
		handlers = &Handlers{}
	}
	handlers.setDefault()

	kiosk := NewKiosk()
	bus := NewBus()
	mgr := NewAgroManager(kiosk, bus, log)
	if err := mgr.Initialize(doc.Campaigns); err != nil {
		return nil, err
	}
	end, err := mgr.EndDate()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		kiosk:     kiosk,
		bus:       bus,
		mgr:       mgr,
		model:     opts.Model,
		handlers:  handlers,
		log:       log,
		startDate: mgr.StartDate(),
		endDate:   end,
	}
	e.subscribe()
	return e, nil
}

// subscribe wires the consumer handlers onto the bus. The engine's own
// terminate subscription stops the run loop.
func (e *Engine) subscribe() {
	e.bus.Subscribe(SigCropStart, func(ev Event) {
		if ev.Crop != nil {
			e.handlers.CropStartHandler(ev.Day, *ev.Crop)
		}
	})
	e.bus.Subscribe(SigCropFinish, func(ev Event) {
		if ev.Finish != nil {
			e.handlers.CropFinishHandler(ev.Day, *ev.Finish)
		}
	})
	e.bus.Subscribe(SigTerminate, func(ev Event) {
		e.terminated = true
		e.handlers.TerminateHandler(ev.Day)
	})
	for _, sig := range ActionSignals {
		sig := sig
		e.bus.Subscribe(sig, func(ev Event) {
			e.handlers.ActionHandler(sig, ev.Day, ev.Params)
		})
	}
}

// Run executes the tick loop. It stops after the sequence end date, when
// the campaign queue is exhausted, or when ctx is cancelled between
// ticks.
func (e *Engine) Run(ctx context.Context) error {
	for day := e.startDate; !day.After(e.endDate); day = AddDays(day, 1) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		e.Tick(day)
		if e.terminated {
			break
		}
	}
	return nil
}

// Tick runs one simulated day: the model publishes its variables, then
// the campaign scheduler dispatches. Days must strictly increase across
// calls.
func (e *Engine) Tick(day time.Time) {
	day = ToDay(day)
	e.day = day
	if e.model != nil {
		e.model.Step(day, e.kiosk)
	}
	e.mgr.Advance(day)
	e.ticks++
	e.handlers.TickHandler(day, e.kiosk.Snapshot())
}

// Kiosk returns the run's variable registry.
func (e *Engine) Kiosk() *Kiosk {
	return e.kiosk
}

// Bus returns the run's signal bus, e.g. for extra subscriptions before
// the first tick.
func (e *Engine) Bus() *Bus {
	return e.bus
}

// Manager returns the run's campaign scheduler.
func (e *Engine) Manager() *AgroManager {
	return e.mgr
}

// StartDate returns the first simulated day.
func (e *Engine) StartDate() time.Time {
	return e.startDate
}

// EndDate returns the last simulated day.
func (e *Engine) EndDate() time.Time {
	return e.endDate
}

// TotalDays returns the number of days the full run covers.
func (e *Engine) TotalDays() int {
	return DaysBetween(e.startDate, e.endDate) + 1
}

// Ticks returns the number of ticks executed so far.
func (e *Engine) Ticks() int {
	return e.ticks
}

// Day returns the most recently ticked day.
func (e *Engine) Day() time.Time {
	return e.day
}

// Terminated reports whether the terminate signal stopped the run.
func (e *Engine) Terminated() bool {
	return e.terminated
}
