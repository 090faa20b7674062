package scheduler

import (
	"container/heap"
	"context"
	"time"

	"github.com/adhocore/gronx"

	"github.com/agroslabs/agros/pkg/agrolib"
)

const maxSleepCap = 60 * time.Second

// Scheduler manages deferred run starts using a min-heap.
// It runs a background goroutine that sleeps until the next event's
// trigger time, then calls the onTrigger callback with the run id.
type Scheduler struct {
	addChan    chan ScheduleEvent
	removeChan chan string
	ctx        context.Context
}

// New creates and starts a new Scheduler.
// The onTrigger callback is invoked when a scheduled event fires.
// The scheduler goroutine exits when ctx is cancelled.
func New(ctx context.Context, onTrigger func(string)) *Scheduler {
	s := &Scheduler{
		addChan:    make(chan ScheduleEvent, 64),
		removeChan: make(chan string, 64),
		ctx:        ctx,
	}
	go s.run(onTrigger)
	return s
}

// Add enqueues a new schedule event.
func (s *Scheduler) Add(event ScheduleEvent) {
	select {
	case s.addChan <- event:
	case <-s.ctx.Done():
	}
}

// Remove cancels a scheduled event by run id.
func (s *Scheduler) Remove(runId string) {
	select {
	case s.removeChan <- runId:
	case <-s.ctx.Done():
	}
}

// run is the core scheduler goroutine implementing the active-object pattern.
// It maintains a min-heap of events and sleeps with a 60s max-sleep-cap.
// For recurring events (CronExpr != ""), after firing it computes the next
// occurrence and re-adds it to the heap automatically.
func (s *Scheduler) run(onTrigger func(string)) {
	h := &scheduleHeap{}
	heap.Init(h)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		if h.Len() == 0 {
			// No events; block indefinitely on channels
			return nil
		}
		next := (*h)[0].TriggerAt
		dur := time.Until(next)
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	timerCh := resetTimer()

	for {
		select {
		case <-s.ctx.Done():
			return

		case event := <-s.addChan:
			heapPush(h, event)
			timerCh = resetTimer()

		case runId := <-s.removeChan:
			heapRemoveById(h, runId)
			timerCh = resetTimer()

		case <-timerCh:
			// Check and fire all events whose time has arrived
			now := time.Now()
			for h.Len() > 0 && !(*h)[0].TriggerAt.After(now) {
				event := heapPop(h)
				onTrigger(event.RunId)
				// For recurring events, compute next cron occurrence and re-add.
				if event.CronExpr != "" {
					next, err := nextCronOccurrence(event.CronExpr, time.Now())
					if err == nil {
						heapPush(h, ScheduleEvent{
							RunId:     event.RunId,
							TriggerAt: next,
							CronExpr:  event.CronExpr,
						})
					}
				}
			}
			timerCh = resetTimer()
		}
	}
}

// nextCronOccurrence returns the next time the cron expression fires strictly
// after start. Uses gronx.NextTickAfter with inclRefTime=false.
func nextCronOccurrence(expr string, start time.Time) (time.Time, error) {
	return gronx.NextTickAfter(expr, start, false)
}

// hasOccurrenceWithinYear checks if a cron expression has any occurrence
// within 1 year from the given time. Returns false for invalid expressions
// or if no occurrence exists within the 1-year window.
func hasOccurrenceWithinYear(expr string, from time.Time) bool {
	next, err := gronx.NextTickAfter(expr, from, false)
	if err != nil {
		return false
	}
	return next.Before(from.Add(365 * 24 * time.Hour))
}

// LoadSchedules scans the run registry at daemon startup to detect missed
// starts and identify future scheduled events to add to the scheduler heap.
//
// Scheduled runs whose StartAt already passed are returned in missed for an
// immediate start; so are scheduled one-shot runs without a StartAt, which
// means the daemon went down between accepting and starting them. Scheduled
// runs with a StartAt ahead of now are returned in future as ScheduleEvents
// ready to push into the heap. Runs in any other status are skipped.
//
// For missed recurring runs (CronExpr != ""), the next cron occurrence is
// computed and added to future so the recurring schedule continues.
func LoadSchedules(runs []*agrolib.Run, now time.Time) (missed []*agrolib.Run, future []ScheduleEvent) {
	for _, run := range runs {
		if run.Status != agrolib.StatusScheduled {
			continue
		}
		if run.StartAt.IsZero() {
			if run.IsRecurring() {
				next, err := nextCronOccurrence(run.CronExpr, now)
				if err == nil {
					future = append(future, ScheduleEvent{
						RunId:     run.Id,
						TriggerAt: next,
						CronExpr:  run.CronExpr,
					})
				}
				continue
			}
			missed = append(missed, run)
			continue
		}
		if run.StartAt.Before(now) {
			missed = append(missed, run)
			// For recurring runs, also compute the next occurrence and add to future.
			if run.IsRecurring() {
				next, err := nextCronOccurrence(run.CronExpr, now)
				if err == nil {
					future = append(future, ScheduleEvent{
						RunId:     run.Id,
						TriggerAt: next,
						CronExpr:  run.CronExpr,
					})
				}
			}
		} else {
			future = append(future, ScheduleEvent{
				RunId:     run.Id,
				TriggerAt: run.StartAt,
				CronExpr:  run.CronExpr,
			})
		}
	}
	return missed, future
}
