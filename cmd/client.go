package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/vbauerster/mpb/v8"

	cmdCommon "github.com/agroslabs/agros/cmd/common"
	"github.com/agroslabs/agros/common"
	"github.com/agroslabs/agros/pkg/agrocli"
	"github.com/agroslabs/agros/pkg/agrolib"
)

func runStopped(tc *TickCounter) func(tr *common.TickingResponse) error {
	return func(tr *common.TickingResponse) error {
		tc.Stop()
		tc.bar.Abort(false)
		return agrocli.ErrDisconnect
	}
}

func runFailed(p *mpb.Progress, tc *TickCounter) func(tr *common.TickingResponse) error {
	return func(tr *common.TickingResponse) error {
		tc.Stop()
		tc.bar.Abort(false)
		fmt.Fprintf(p, "run failed: %s\n", tr.Error)
		return agrocli.ErrDisconnect
	}
}

func runProgress(tc *TickCounter) func(tr *common.TickingResponse) error {
	var last int64
	return func(tr *common.TickingResponse) error {
		ticks := int64(tr.Ticks)
		if d := ticks - last; d > 0 {
			tc.IncrBy(int(d))
			last = ticks
		}
		return nil
	}
}

func runSignal(p *mpb.Progress) func(tr *common.TickingResponse) error {
	return func(tr *common.TickingResponse) error {
		if tr.Event == nil {
			return nil
		}
		fmt.Fprintln(p, formatEvent(tr.Event))
		return nil
	}
}

func runComplete(bar *mpb.Bar, tc *TickCounter) func(tr *common.TickingResponse) error {
	return func(tr *common.TickingResponse) error {
		tc.Stop()
		// fill the day bar
		if !bar.Completed() {
			bar.SetCurrent(int64(tr.Ticks))
		}
		return agrocli.ErrDisconnect
	}
}

func runTerminated(p *mpb.Progress, bar *mpb.Bar, tc *TickCounter) func(tr *common.TickingResponse) error {
	return func(tr *common.TickingResponse) error {
		tc.Stop()
		fmt.Fprintf(p, "campaign queue terminated the run on %s\n", tr.Day.Format(agrolib.DayLayout))
		bar.SetTotal(int64(tr.Ticks), true)
		return agrocli.ErrDisconnect
	}
}

// RegisterHandlers wires the ticking stream of a run into a progress bar
// and live event lines. Terminal actions return ErrDisconnect so the
// Listen loop ends cleanly. The initialTicks argument pre-fills the bar
// when attaching to a run that already ticked part of its day range.
func RegisterHandlers(client *agrocli.Client, totalDays int, initialTicks int) {
	rr := time.Millisecond * 30
	tc := NewTickCounter(rr)
	p := mpb.New(mpb.WithWidth(64), mpb.WithRefreshRate(rr))
	bar := cmdCommon.InitBarWithProgress(p, "", int64(totalDays), int64(initialTicks))
	tc.SetBar(bar)
	tc.Start()
	client.AddHandler(
		common.UPDATE_TICKING,
		agrocli.NewTickingHandler(common.ActionStopped, runStopped(tc)),
	)
	client.AddHandler(
		common.UPDATE_TICKING,
		agrocli.NewTickingHandler(common.ActionProgress, runProgress(tc)),
	)
	client.AddHandler(
		common.UPDATE_TICKING,
		agrocli.NewTickingHandler(common.ActionSignal, runSignal(p)),
	)
	client.AddHandler(
		common.UPDATE_TICKING,
		agrocli.NewTickingHandler(common.ActionComplete, runComplete(bar, tc)),
	)
	client.AddHandler(
		common.UPDATE_TICKING,
		agrocli.NewTickingHandler(common.ActionTerminated, runTerminated(p, bar, tc)),
	)
	client.AddHandler(
		common.UPDATE_TICKING,
		agrocli.NewTickingHandler(common.ActionFailed, runFailed(p, tc)),
	)
}

// formatEvent renders one fired event as a single line, day first.
func formatEvent(e *agrolib.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %-12s", e.Day.Format(agrolib.DayLayout), e.Signal)
	switch {
	case e.Crop != nil:
		fmt.Fprintf(&b, " crop=%s start=%s end=%s", e.Crop.CropID, e.Crop.StartType, e.Crop.EndType)
	case e.Finish != nil:
		fmt.Fprintf(&b, " reason=%s", e.Finish.Reason)
		if e.Finish.Delete {
			b.WriteString(" delete=true")
		}
	case len(e.Params) > 0:
		keys := make([]string, 0, len(e.Params))
		for k := range e.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.Params[k])
		}
	}
	return b.String()
}
