package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/agroslabs/agros/pkg/agrolib"
)

// loadRunSpec is a compact spec for building test run records.
type loadRunSpec struct {
	id       string
	status   agrolib.RunStatus
	startAt  time.Time
	cronExpr string
}

// makeLoadRuns builds run records from the given specs.
func makeLoadRuns(t *testing.T, specs []loadRunSpec) []*agrolib.Run {
	t.Helper()
	runs := make([]*agrolib.Run, 0, len(specs))
	for _, s := range specs {
		runs = append(runs, &agrolib.Run{
			Id:       s.id,
			Status:   s.status,
			StartAt:  s.startAt,
			CronExpr: s.cronExpr,
		})
	}
	return runs
}

func TestScheduler_AddAndFire(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	fired := make(map[string]bool)
	onTrigger := func(id string) {
		mu.Lock()
		fired[id] = true
		mu.Unlock()
	}

	s := New(ctx, onTrigger)

	// Schedule an event 100ms from now
	s.Add(ScheduleEvent{
		RunId:     "run1",
		TriggerAt: time.Now().Add(100 * time.Millisecond),
	})

	// Wait enough time for the event to fire
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if !fired["run1"] {
		t.Fatal("expected run1 to fire")
	}
}

func TestScheduler_CancelBeforeFire(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	fired := make(map[string]bool)
	onTrigger := func(id string) {
		mu.Lock()
		fired[id] = true
		mu.Unlock()
	}

	s := New(ctx, onTrigger)

	// Schedule an event 2s from now (plenty of margin)
	s.Add(ScheduleEvent{
		RunId:     "run2",
		TriggerAt: time.Now().Add(2 * time.Second),
	})

	// Give the goroutine time to process the add
	time.Sleep(100 * time.Millisecond)

	// Cancel it before it fires
	s.Remove("run2")

	// Give the goroutine time to process the remove
	time.Sleep(100 * time.Millisecond)

	// Wait past the trigger time
	time.Sleep(2 * time.Second)

	mu.Lock()
	defer mu.Unlock()
	if fired["run2"] {
		t.Fatal("expected run2 NOT to fire after cancel")
	}
}

func TestScheduler_ShutdownViaContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	fired := make(map[string]bool)
	onTrigger := func(id string) {
		mu.Lock()
		fired[id] = true
		mu.Unlock()
	}

	s := New(ctx, onTrigger)

	// Schedule an event 500ms from now
	s.Add(ScheduleEvent{
		RunId:     "run3",
		TriggerAt: time.Now().Add(500 * time.Millisecond),
	})

	// Cancel context immediately
	cancel()

	// Wait past the trigger time
	time.Sleep(700 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if fired["run3"] {
		t.Fatal("expected run3 NOT to fire after context cancel")
	}
	_ = s // ensure scheduler is referenced
}

func TestScheduler_EmptyDoesNotFire(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	firedCount := 0
	onTrigger := func(id string) {
		firedCount++
	}

	_ = New(ctx, onTrigger)

	// Wait a bit to ensure nothing spurious fires
	time.Sleep(200 * time.Millisecond)

	if firedCount != 0 {
		t.Fatalf("expected no triggers on empty scheduler, got %d", firedCount)
	}
}

func TestScheduler_MultipleEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	fired := []string{}
	onTrigger := func(id string) {
		mu.Lock()
		fired = append(fired, id)
		mu.Unlock()
	}

	s := New(ctx, onTrigger)

	// Schedule two events at different times
	s.Add(ScheduleEvent{
		RunId:     "first",
		TriggerAt: time.Now().Add(100 * time.Millisecond),
	})
	s.Add(ScheduleEvent{
		RunId:     "second",
		TriggerAt: time.Now().Add(200 * time.Millisecond),
	})

	// Wait for both to fire
	time.Sleep(400 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(fired) != 2 {
		t.Fatalf("expected 2 triggers, got %d", len(fired))
	}
	// First should fire before second
	if fired[0] != "first" {
		t.Errorf("expected first to fire first, got %s", fired[0])
	}
	if fired[1] != "second" {
		t.Errorf("expected second to fire second, got %s", fired[1])
	}
}

func TestScheduler_RemoveNonexistent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New(ctx, func(id string) {})

	// Removing a nonexistent id should not panic
	s.Remove("nonexistent")
}

func TestLoadSchedules_MissedRuns(t *testing.T) {
	now := time.Now()
	runs := makeLoadRuns(t, []loadRunSpec{
		{id: "past1", status: agrolib.StatusScheduled, startAt: now.Add(-1 * time.Hour)},
		{id: "past2", status: agrolib.StatusScheduled, startAt: now.Add(-10 * time.Minute)},
	})

	missed, future := LoadSchedules(runs, now)

	if len(missed) != 2 {
		t.Fatalf("expected 2 missed runs, got %d", len(missed))
	}
	if len(future) != 0 {
		t.Fatalf("expected 0 future events, got %d", len(future))
	}
}

func TestLoadSchedules_FutureRuns(t *testing.T) {
	now := time.Now()
	runs := makeLoadRuns(t, []loadRunSpec{
		{id: "future1", status: agrolib.StatusScheduled, startAt: now.Add(1 * time.Hour)},
		{id: "future2", status: agrolib.StatusScheduled, startAt: now.Add(2 * time.Hour)},
	})

	missed, future := LoadSchedules(runs, now)

	if len(missed) != 0 {
		t.Fatalf("expected 0 missed runs, got %d", len(missed))
	}
	if len(future) != 2 {
		t.Fatalf("expected 2 future events, got %d", len(future))
	}
}

func TestLoadSchedules_MixedRuns(t *testing.T) {
	now := time.Now()
	runs := makeLoadRuns(t, []loadRunSpec{
		{id: "past1", status: agrolib.StatusScheduled, startAt: now.Add(-30 * time.Minute)},
		{id: "future1", status: agrolib.StatusScheduled, startAt: now.Add(30 * time.Minute)},
		{id: "stopped1", status: agrolib.StatusStopped, startAt: now.Add(-1 * time.Hour)},
		{id: "finished1", status: agrolib.StatusFinished, startAt: now.Add(-2 * time.Hour)},
		{id: "running1", status: agrolib.StatusRunning, startAt: now.Add(1 * time.Hour)},
	})

	missed, future := LoadSchedules(runs, now)

	if len(missed) != 1 {
		t.Fatalf("expected 1 missed run, got %d", len(missed))
	}
	if missed[0].Id != "past1" {
		t.Errorf("expected missed run to be 'past1', got %q", missed[0].Id)
	}
	if len(future) != 1 {
		t.Fatalf("expected 1 future event, got %d", len(future))
	}
	if future[0].RunId != "future1" {
		t.Errorf("expected future event to be 'future1', got %q", future[0].RunId)
	}
}

func TestLoadSchedules_InterruptedImmediateRun(t *testing.T) {
	// A scheduled one-shot run without a start time means the daemon
	// went down between accepting and starting it.
	now := time.Now()
	runs := makeLoadRuns(t, []loadRunSpec{
		{id: "interrupted", status: agrolib.StatusScheduled},
	})

	missed, future := LoadSchedules(runs, now)

	if len(missed) != 1 || missed[0].Id != "interrupted" {
		t.Fatalf("expected the interrupted run to be missed, got %v", missed)
	}
	if len(future) != 0 {
		t.Fatalf("expected 0 future events, got %d", len(future))
	}
}

func TestLoadSchedules_Empty(t *testing.T) {
	missed, future := LoadSchedules(nil, time.Now())
	if len(missed) != 0 || len(future) != 0 {
		t.Errorf("expected empty results for empty registry, got missed=%d future=%d", len(missed), len(future))
	}
}

func TestLoadSchedules_FutureEventPreservesFields(t *testing.T) {
	now := time.Now()
	startAt := now.Add(1 * time.Hour)
	runs := makeLoadRuns(t, []loadRunSpec{
		{id: "cron1", status: agrolib.StatusScheduled, startAt: startAt, cronExpr: "0 2 * * *"},
	})

	_, future := LoadSchedules(runs, now)

	if len(future) != 1 {
		t.Fatalf("expected 1 future event, got %d", len(future))
	}
	ev := future[0]
	if ev.RunId != "cron1" {
		t.Errorf("expected RunId 'cron1', got %q", ev.RunId)
	}
	if ev.CronExpr != "0 2 * * *" {
		t.Errorf("expected CronExpr '0 2 * * *', got %q", ev.CronExpr)
	}
	if !ev.TriggerAt.Equal(startAt) {
		t.Errorf("expected TriggerAt %v, got %v", startAt, ev.TriggerAt)
	}
}

func TestNextCronOccurrence_ValidExpr(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	next, err := nextCronOccurrence("0 2 * * *", now)
	if err != nil {
		t.Fatalf("expected no error: %v", err)
	}
	// Should be 2026-03-01 02:00 UTC
	if next.Hour() != 2 || next.Minute() != 0 {
		t.Errorf("expected 02:00, got %v", next)
	}
}

func TestNextCronOccurrence_InvalidExpr(t *testing.T) {
	_, err := nextCronOccurrence("bad-expr", time.Now())
	if err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestHasOccurrenceWithinYear(t *testing.T) {
	// A valid common expression should have occurrences
	now := time.Now()
	if !hasOccurrenceWithinYear("0 2 * * *", now) {
		t.Error("expected daily cron to have occurrence in next year")
	}
}

func TestHasOccurrenceWithinYear_InvalidExpr(t *testing.T) {
	if hasOccurrenceWithinYear("bad-cron", time.Now()) {
		t.Error("invalid cron should return false")
	}
}

// Missed recurring schedules on daemon restart:
// LoadSchedules must both report the missed run and compute the next cron tick.

func TestLoadSchedules_MissedRecurring_ComputesNextOccurrence(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	// scheduled 1 hour before now, with a cron expression
	runs := makeLoadRuns(t, []loadRunSpec{
		{id: "recurring1", status: agrolib.StatusScheduled, startAt: now.Add(-1 * time.Hour), cronExpr: "0 2 * * *"},
	})

	missed, future := LoadSchedules(runs, now)

	// Should be reported missed for immediate start
	if len(missed) != 1 {
		t.Fatalf("expected 1 missed run, got %d", len(missed))
	}
	if missed[0].Id != "recurring1" {
		t.Errorf("expected missed run 'recurring1', got %q", missed[0].Id)
	}

	// AND a future event computed from the cron expression
	if len(future) != 1 {
		t.Fatalf("expected 1 future event for next cron occurrence, got %d", len(future))
	}
	if future[0].RunId != "recurring1" {
		t.Errorf("expected future event RunId 'recurring1', got %q", future[0].RunId)
	}
	if future[0].CronExpr != "0 2 * * *" {
		t.Errorf("expected CronExpr preserved in future event, got %q", future[0].CronExpr)
	}
	// Next occurrence must be after now
	if !future[0].TriggerAt.After(now) {
		t.Errorf("expected future TriggerAt to be after now (%v), got %v", now, future[0].TriggerAt)
	}
}

func TestLoadSchedules_RecurringWithoutStartAt(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	// recurring run that was never armed with a concrete start time
	runs := makeLoadRuns(t, []loadRunSpec{
		{id: "cron-only", status: agrolib.StatusScheduled, cronExpr: "*/30 * * * *"},
	})

	missed, future := LoadSchedules(runs, now)

	if len(missed) != 0 {
		t.Fatalf("expected 0 missed runs, got %d", len(missed))
	}
	if len(future) != 1 {
		t.Fatalf("expected 1 future event, got %d", len(future))
	}
	if !future[0].TriggerAt.After(now) {
		t.Errorf("expected TriggerAt after now, got %v", future[0].TriggerAt)
	}
}

// Recurring re-schedule after fire:
// the scheduler must re-enqueue an event with CronExpr after triggering it.

func TestScheduler_RecurringReSchedule(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	fireCount := 0
	onTrigger := func(id string) {
		mu.Lock()
		fireCount++
		mu.Unlock()
	}

	s := New(ctx, onTrigger)

	// Schedule a recurring event every 100ms
	s.Add(ScheduleEvent{
		RunId:     "recurring",
		TriggerAt: time.Now().Add(100 * time.Millisecond),
		CronExpr:  "* * * * *", // every minute; scheduler uses next occurrence logic
	})

	// Wait enough for 2 firings; with a 1-minute cron the second won't fire in 500ms.
	// So we just verify it fired at least once and the event stays alive.
	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	count := fireCount
	mu.Unlock()

	if count < 1 {
		t.Fatal("expected recurring event to fire at least once")
	}
}
