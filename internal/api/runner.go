package api

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adhocore/gronx"

	"github.com/agroslabs/agros/common"
	"github.com/agroslabs/agros/internal/models"
	"github.com/agroslabs/agros/internal/scheduler"
	"github.com/agroslabs/agros/internal/server"
	"github.com/agroslabs/agros/pkg/agrolib"
)

// StartRun creates a run from params and either launches it or schedules
// it. It implements server.Controller for callers without a daemon
// connection; requests arriving over the socket go through runHandler so
// their connection is attached before the first tick.
func (s *Api) StartRun(params *common.RunParams) (*agrolib.Run, error) {
	return s.startRun(params, nil)
}

func (s *Api) startRun(m *common.RunParams, sconn *server.SyncConn) (*agrolib.Run, error) {
	if m.Document == "" {
		return nil, errors.New("document is required")
	}
	doc, err := agrolib.LoadDocumentFile(s.fs, m.Document)
	if err != nil {
		return nil, err
	}
	// Reject model specs that can never build before the run record
	// enters the registry.
	if _, err := models.Build(s.runLog, m.Model); err != nil {
		return nil, err
	}

	name := m.Name
	if name == "" {
		base := filepath.Base(m.Document)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	run := agrolib.NewRun(name, m.Document, m.Model)
	run.Campaigns = len(doc.Campaigns)
	run.NoJournal = m.NoJournal

	// A probe engine validates the campaign sequence and measures the
	// simulated window without starting anything.
	probe, err := agrolib.NewEngine(doc, nil)
	if err != nil {
		return nil, err
	}
	run.StartDate = probe.StartDate()
	run.EndDate = probe.EndDate()
	run.TotalDays = probe.TotalDays()

	// Cron takes priority for triggering; StartAt can set the first
	// occurrence.
	if m.CronExpr != "" {
		run.CronExpr = m.CronExpr
		firstTrigger := m.StartAt
		if firstTrigger.IsZero() || !firstTrigger.After(time.Now()) {
			next, cronErr := gronx.NextTickAfter(m.CronExpr, time.Now(), false)
			if cronErr != nil {
				return nil, fmt.Errorf("invalid cron expression %q: %w", m.CronExpr, cronErr)
			}
			firstTrigger = next
		}
		run.StartAt = firstTrigger
		s.manager.AddRun(run)
		if s.scheduler != nil {
			s.scheduler.Add(scheduler.ScheduleEvent{
				RunId:     run.Id,
				TriggerAt: firstTrigger,
				CronExpr:  m.CronExpr,
			})
		}
		// The scheduler starts the run when the trigger fires.
		return run, nil
	}

	if !m.StartAt.IsZero() && m.StartAt.After(time.Now()) {
		run.StartAt = m.StartAt
		s.manager.AddRun(run)
		if s.scheduler != nil {
			s.scheduler.Add(scheduler.ScheduleEvent{
				RunId:     run.Id,
				TriggerAt: m.StartAt,
			})
		}
		return run, nil
	}

	s.manager.AddRun(run)
	if err := s.launchRun(run, doc, sconn); err != nil {
		run.Status = agrolib.StatusFailed
		run.Error = err.Error()
		run.FinishedAt = time.Now()
		s.manager.UpdateRun(run)
		return nil, err
	}
	return run, nil
}

// launchRun builds the engine for run and starts its tick loop in a
// background goroutine. sconn, when not nil, is attached to the pool
// before the first tick so no updates are missed.
func (s *Api) launchRun(run *agrolib.Run, doc *agrolib.Document, sconn *server.SyncConn) error {
	model, err := models.Build(s.runLog, run.Model)
	if err != nil {
		return err
	}
	uid := run.Id
	eng, err := agrolib.NewEngine(doc, &agrolib.EngineOpts{
		Model:  model,
		Logger: s.runLog,
		Handlers: &agrolib.Handlers{
			TickHandler: func(day time.Time, vars map[string]float64) {
				run.CurrentDay = day
				run.Ticks++
				s.pool.Broadcast(uid, server.MakeResult(common.UPDATE_TICKING, &common.TickingResponse{
					RunId:     uid,
					Action:    common.ActionProgress,
					Day:       day,
					Ticks:     run.Ticks,
					TotalDays: run.TotalDays,
				}))
				s.notifier.Broadcast("run.progress", server.RunProgressNotification{
					RunId: uid,
					Ticks: run.Ticks,
					Day:   day.Format(agrolib.DayLayout),
				})
			},
			CropStartHandler: func(day time.Time, crop agrolib.CropStartInfo) {
				run.Events++
				ev := agrolib.Event{Signal: agrolib.SigCropStart, Day: day, Crop: &crop}
				s.broadcastEvent(uid, run, &ev)
			},
			CropFinishHandler: func(day time.Time, finish agrolib.CropFinishInfo) {
				run.Events++
				ev := agrolib.Event{Signal: agrolib.SigCropFinish, Day: day, Finish: &finish}
				s.broadcastEvent(uid, run, &ev)
			},
			ActionHandler: func(sig agrolib.Signal, day time.Time, params map[string]any) {
				run.Events++
				ev := agrolib.Event{Signal: sig, Day: day, Params: params}
				s.broadcastEvent(uid, run, &ev)
			},
			TerminateHandler: func(day time.Time) {
				run.Events++
				ev := agrolib.Event{Signal: agrolib.SigTerminate, Day: day}
				s.broadcastEvent(uid, run, &ev)
			},
		},
	})
	if err != nil {
		return err
	}
	if !run.NoJournal && s.journal != nil {
		s.journal.Attach(eng.Bus(), uid, s.runLog)
	}

	s.pool.AddRun(uid, sconn)

	ctx, cancel := context.WithCancel(context.Background())
	run.SetCancel(cancel)
	run.Status = agrolib.StatusRunning
	s.manager.UpdateRun(run)
	s.notifier.Broadcast("run.started", server.RunStartedNotification{
		RunId:     uid,
		Name:      run.Name,
		TotalDays: run.TotalDays,
	})

	go func() {
		defer cancel()
		err := eng.Run(ctx)
		run.CurrentDay = eng.Day()
		run.Ticks = eng.Ticks()
		run.Terminated = eng.Terminated()
		run.FinishedAt = time.Now()
		run.SetCancel(nil)

		final := &common.TickingResponse{
			RunId:     uid,
			Day:       run.CurrentDay,
			Ticks:     run.Ticks,
			TotalDays: run.TotalDays,
		}
		switch {
		case err != nil:
			run.Status = agrolib.StatusStopped
			final.Action = common.ActionStopped
		case run.Terminated:
			run.Status = agrolib.StatusFinished
			final.Action = common.ActionTerminated
		default:
			run.Status = agrolib.StatusFinished
			final.Action = common.ActionComplete
		}
		s.pool.Broadcast(uid, server.MakeResult(common.UPDATE_TICKING, final))
		if run.Status == agrolib.StatusFinished {
			s.notifier.Broadcast("run.complete", server.RunCompleteNotification{
				RunId:      uid,
				Ticks:      run.Ticks,
				Terminated: run.Terminated,
			})
			// A recurring run goes back to waiting for its next cron
			// occurrence; the scheduler has already re-armed its heap.
			if run.IsRecurring() {
				if next, cronErr := gronx.NextTickAfter(run.CronExpr, time.Now(), false); cronErr == nil {
					run.Status = agrolib.StatusScheduled
					run.StartAt = next
				}
			}
		}
		s.manager.UpdateRun(run)
		s.pool.DetachConnections(uid)
	}()
	return nil
}

func (s *Api) broadcastEvent(uid string, run *agrolib.Run, ev *agrolib.Event) {
	s.pool.Broadcast(uid, server.MakeResult(common.UPDATE_TICKING, &common.TickingResponse{
		RunId:  uid,
		Action: common.ActionSignal,
		Day:    ev.Day,
		Ticks:  run.Ticks,
		Event:  ev,
	}))
	s.notifier.Broadcast("run.event", server.RunEventNotification{
		RunId:  uid,
		Signal: string(ev.Signal),
		Day:    ev.Day.Format(agrolib.DayLayout),
		Params: ev.Params,
	})
}

// TriggerScheduled starts a scheduled run whose trigger time arrived.
// The scheduler calls it from its own goroutine; it is also used at
// daemon startup for runs whose start time passed while the daemon was
// down.
func (s *Api) TriggerScheduled(runId string) {
	run := s.manager.GetRun(runId)
	if run == nil {
		s.log.Printf("Schedule fired for unknown run %s\n", runId)
		return
	}
	if run.IsActive() {
		s.log.Printf("Run %s still active, skipping trigger\n", runId)
		return
	}
	doc, err := agrolib.LoadDocumentFile(s.fs, run.Document)
	if err != nil {
		s.failRun(run, err)
		return
	}
	// Fresh occurrence, fresh progress.
	run.Ticks = 0
	run.Events = 0
	run.CurrentDay = time.Time{}
	run.Terminated = false
	run.Error = ""
	run.FinishedAt = time.Time{}
	if err := s.launchRun(run, doc, nil); err != nil {
		s.failRun(run, err)
	}
}

func (s *Api) failRun(run *agrolib.Run, err error) {
	s.log.Printf("Run %s failed to start: %v", run.Id, err)
	run.Status = agrolib.StatusFailed
	run.Error = err.Error()
	run.FinishedAt = time.Now()
	s.manager.UpdateRun(run)
	s.pool.Broadcast(run.Id, server.InitError(err))
	s.pool.WriteError(run.Id, server.ErrorTypeCritical, err.Error())
	s.notifier.Broadcast("run.error", server.RunErrorNotification{
		RunId: run.Id,
		Error: err.Error(),
	})
}

// StopRun stops an executing run or cancels a scheduled one. Stopping a
// recurring run cancels the whole schedule.
func (s *Api) StopRun(runId string) (*common.StopResponse, error) {
	run := s.manager.GetRun(runId)
	if run == nil {
		return nil, errors.New("run not found")
	}

	if run.Status == agrolib.StatusScheduled {
		if s.scheduler != nil {
			s.scheduler.Remove(runId)
		}
		run.Status = agrolib.StatusStopped
		run.FinishedAt = time.Now()
		s.manager.UpdateRun(run)
		msg := fmt.Sprintf("Cancelled scheduled run: %s", run.Name)
		if run.IsRecurring() {
			msg = fmt.Sprintf("Cancelled recurring schedule for %s", run.Name)
		}
		return &common.StopResponse{RunId: runId, Status: run.Status, Message: msg}, nil
	}

	if !run.IsActive() {
		return nil, errors.New("run not running")
	}
	if run.IsRecurring() && s.scheduler != nil {
		s.scheduler.Remove(runId)
	}
	if err := run.Stop(); err != nil {
		return nil, err
	}
	return &common.StopResponse{RunId: runId, Status: agrolib.StatusStopped}, nil
}

// RemoveRun flushes one finished run and drops its journal.
func (s *Api) RemoveRun(runId string) error {
	if err := s.manager.FlushOne(runId); err != nil {
		return err
	}
	if s.journal != nil {
		return s.journal.DeleteRun(runId)
	}
	return nil
}
