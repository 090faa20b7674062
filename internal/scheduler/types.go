package scheduler

import "time"

// ScheduleEvent represents a pending run start in the scheduler heap.
// It is an in-memory only type; the heap is rebuilt from run records on
// daemon restart.
type ScheduleEvent struct {
	// RunId is the unique identifier of the run to start when TriggerAt
	// is reached.
	RunId string
	// TriggerAt is the wall-clock time when this run should start.
	TriggerAt time.Time
	// CronExpr is the cron expression for recurring runs.
	// Empty string means one-shot, no re-scheduling after firing.
	CronExpr string
}
