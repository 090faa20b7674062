// Package models builds the state variable generators a run steps each
// simulated day. The builtin kinds cover a linear ramp and seeded noise;
// the script kind loads a JavaScript file so a run can compute arbitrary
// kiosk variables.
package models

import (
	"fmt"

	"github.com/agroslabs/agros/pkg/agrolib"
	"github.com/agroslabs/agros/pkg/logger"
)

// Model kinds accepted by Build.
const (
	KindRamp   = "ramp"
	KindNoise  = "noise"
	KindScript = "script"
)

// Build constructs the model described by spec. An empty kind means the
// run publishes no state variables; Build then returns a nil model,
// which the engine treats as no-op.
func Build(l logger.Logger, spec agrolib.ModelSpec) (agrolib.Model, error) {
	switch spec.Kind {
	case "":
		return nil, nil
	case KindRamp:
		if spec.Variable == "" {
			return nil, fmt.Errorf("model kind %q needs a variable name", spec.Kind)
		}
		return &agrolib.RampModel{
			Variable: spec.Variable,
			Start:    spec.Start,
			StepSize: spec.Step,
		}, nil
	case KindNoise:
		if spec.Variable == "" {
			return nil, fmt.Errorf("model kind %q needs a variable name", spec.Kind)
		}
		if spec.Max < spec.Min {
			return nil, fmt.Errorf("model kind %q needs min <= max, got [%v, %v]", spec.Kind, spec.Min, spec.Max)
		}
		return &agrolib.NoiseModel{
			Variable: spec.Variable,
			Min:      spec.Min,
			Max:      spec.Max,
			Seed:     spec.Seed,
		}, nil
	case KindScript:
		if spec.Script == "" {
			return nil, fmt.Errorf("model kind %q needs a script path", spec.Kind)
		}
		return LoadScript(l, spec.Script)
	default:
		return nil, fmt.Errorf("unknown model kind %q", spec.Kind)
	}
}
