// Package scheduler provides deferred and recurring starts for
// simulation runs. It implements a single-goroutine scheduler using a
// min-heap of ScheduleEvents sorted by trigger time, with a 60-second
// max-sleep-cap to handle NTP steps, DST transitions, and system sleep
// (macOS monotonic clock pause).
//
// The scheduler is a daemon-level component that fires events and calls
// a registered onTrigger callback to start runs through the daemon's
// regular run flow. It does not persist state; the heap is rebuilt from
// run records on daemon restart.
package scheduler
