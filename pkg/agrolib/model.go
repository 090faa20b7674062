package agrolib

import (
	"math/rand"
	"time"
)

// Model produces state variable values for each simulated day. Step runs
// before the scheduler tick, so within a tick dispatchers read the
// values of the same day and the kiosk stays single-writer.
type Model interface {
	Step(day time.Time, k *Kiosk)
}

// RampModel writes a linearly increasing variable, a stand-in for a
// development stage that grows from Start by StepSize per day.
type RampModel struct {
	Variable string
	Start    float64
	StepSize float64

	value   float64
	started bool
}

// Step advances the ramp by one day and publishes the value.
func (m *RampModel) Step(day time.Time, k *Kiosk) {
	if !m.started {
		m.value = m.Start
		m.started = true
	} else {
		m.value += m.StepSize
	}
	k.Set(m.Variable, m.value)
}

// NoiseModel writes a seeded pseudo-random variable in [Min, Max), a
// stand-in for an externally driven state such as soil moisture. The
// same seed reproduces the same series.
type NoiseModel struct {
	Variable string
	Min      float64
	Max      float64
	Seed     int64

	rng *rand.Rand
}

// Step publishes the next value of the series.
func (m *NoiseModel) Step(day time.Time, k *Kiosk) {
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(m.Seed))
	}
	k.Set(m.Variable, m.Min+(m.Max-m.Min)*m.rng.Float64())
}

// MultiModel steps several models in order.
type MultiModel []Model

// Step runs every contained model.
func (mm MultiModel) Step(day time.Time, k *Kiosk) {
	for _, m := range mm {
		m.Step(day, k)
	}
}
