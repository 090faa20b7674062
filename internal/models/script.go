package models

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dop251/goja"
	requirePkg "github.com/dop251/goja_nodejs/require"

	"github.com/agroslabs/agros/pkg/agrolib"
	"github.com/agroslabs/agros/pkg/logger"
)

// stepCallback is the function a model script must define. It is called
// once per simulated day with the day string and the current kiosk
// variables and returns an object of numbers to publish.
const stepCallback = "step"

// ErrStepNotDefined is returned when a model script does not define
// the step function.
var ErrStepNotDefined = errors.New("script does not define a step function")

// ScriptModel steps a user supplied JavaScript file. The script keeps
// whatever state it needs in its own globals; only the numbers returned
// from step reach the kiosk. The runtime is single threaded, the engine
// goroutine is its only caller.
type ScriptModel struct {
	path    string
	runtime *goja.Runtime
	step    goja.Callable
	l       logger.Logger
}

// LoadScript creates a js runtime, runs the script file to load its
// symbols and resolves the step function.
func LoadScript(l logger.Logger, path string) (*ScriptModel, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	registry := new(requirePkg.Registry)
	runtime := goja.New()
	registry.Enable(runtime)
	if err := runtime.Set("print", print(l)); err != nil {
		return nil, err
	}
	if _, err := runtime.RunString(string(b)); err != nil {
		return nil, fmt.Errorf("model script %s: %w", path, err)
	}
	step, ok := goja.AssertFunction(runtime.Get(stepCallback))
	if !ok {
		return nil, ErrStepNotDefined
	}
	return &ScriptModel{
		path:    path,
		runtime: runtime,
		step:    step,
		l:       l,
	}, nil
}

// Step calls the script's step function for day. A script error aborts
// the day's update, not the run.
func (m *ScriptModel) Step(day time.Time, k *agrolib.Kiosk) {
	v, err := m.step(goja.Undefined(),
		m.runtime.ToValue(day.Format(agrolib.DayLayout)),
		m.runtime.ToValue(k.Snapshot()))
	if err != nil {
		m.l.Error("model script %s: %v", m.path, err)
		return
	}
	for name, val := range exportVars(v) {
		k.Set(name, val)
	}
}

// exportVars converts a step return value into kiosk variables. Numeric
// members survive, everything else is dropped.
func exportVars(v goja.Value) map[string]float64 {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	out := make(map[string]float64)
	switch vars := v.Export().(type) {
	case map[string]interface{}:
		for name, raw := range vars {
			if f, ok := toFloat(raw); ok {
				out[name] = f
			}
		}
	case map[string]float64:
		for name, f := range vars {
			out[name] = f
		}
	}
	return out
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// print gives scripts a logging helper routed through the run logger.
func print(l logger.Logger) func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, v := range call.Arguments {
			parts = append(parts, fmt.Sprint(v.Export()))
		}
		l.Info("script: %s", strings.Join(parts, " "))
		return nil
	}
}
