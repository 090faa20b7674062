package scheduler

import (
	"testing"
	"time"
)

func TestHeapPushPopOrdering(t *testing.T) {
	h := &scheduleHeap{}

	t1 := time.Now().Add(3 * time.Hour)
	t2 := time.Now().Add(1 * time.Hour)
	t3 := time.Now().Add(2 * time.Hour)

	heapPush(h, ScheduleEvent{RunId: "run3", TriggerAt: t1})
	heapPush(h, ScheduleEvent{RunId: "run1", TriggerAt: t2})
	heapPush(h, ScheduleEvent{RunId: "run2", TriggerAt: t3})

	// Pop should return in ascending TriggerAt order (min-heap)
	first := heapPop(h)
	if first.RunId != "run1" {
		t.Errorf("expected run1 (earliest), got %s", first.RunId)
	}
	second := heapPop(h)
	if second.RunId != "run2" {
		t.Errorf("expected run2 (middle), got %s", second.RunId)
	}
	third := heapPop(h)
	if third.RunId != "run3" {
		t.Errorf("expected run3 (latest), got %s", third.RunId)
	}
}

func TestHeapEmpty(t *testing.T) {
	h := &scheduleHeap{}
	if h.Len() != 0 {
		t.Errorf("expected empty heap, got len %d", h.Len())
	}
}

func TestHeapDuplicateTriggerTimes(t *testing.T) {
	h := &scheduleHeap{}
	sameTime := time.Now().Add(1 * time.Hour)

	heapPush(h, ScheduleEvent{RunId: "runA", TriggerAt: sameTime})
	heapPush(h, ScheduleEvent{RunId: "runB", TriggerAt: sameTime})
	heapPush(h, ScheduleEvent{RunId: "runC", TriggerAt: sameTime})

	if h.Len() != 3 {
		t.Fatalf("expected 3 items, got %d", h.Len())
	}

	// All three should be popped without error (any order is valid for equal times)
	seen := map[string]bool{}
	for h.Len() > 0 {
		e := heapPop(h)
		if seen[e.RunId] {
			t.Errorf("duplicate pop for %s", e.RunId)
		}
		seen[e.RunId] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected 3 distinct items, got %d", len(seen))
	}
}

func TestHeapRemoveById(t *testing.T) {
	h := &scheduleHeap{}

	t1 := time.Now().Add(1 * time.Hour)
	t2 := time.Now().Add(2 * time.Hour)
	t3 := time.Now().Add(3 * time.Hour)

	heapPush(h, ScheduleEvent{RunId: "runA", TriggerAt: t1})
	heapPush(h, ScheduleEvent{RunId: "runB", TriggerAt: t2})
	heapPush(h, ScheduleEvent{RunId: "runC", TriggerAt: t3})

	// Remove the middle element
	removed := heapRemoveById(h, "runB")
	if !removed {
		t.Error("expected removal to succeed")
	}
	if h.Len() != 2 {
		t.Errorf("expected 2 items after removal, got %d", h.Len())
	}

	// Pop should return runA then runC
	first := heapPop(h)
	if first.RunId != "runA" {
		t.Errorf("expected runA, got %s", first.RunId)
	}
	second := heapPop(h)
	if second.RunId != "runC" {
		t.Errorf("expected runC, got %s", second.RunId)
	}
}

func TestHeapRemoveByIdNotFound(t *testing.T) {
	h := &scheduleHeap{}
	heapPush(h, ScheduleEvent{RunId: "runA", TriggerAt: time.Now()})

	removed := heapRemoveById(h, "nonexistent")
	if removed {
		t.Error("expected removal to fail for nonexistent id")
	}
	if h.Len() != 1 {
		t.Errorf("expected 1 item to remain, got %d", h.Len())
	}
}

func TestHeapRemoveOnly(t *testing.T) {
	h := &scheduleHeap{}
	heapPush(h, ScheduleEvent{RunId: "only", TriggerAt: time.Now()})

	removed := heapRemoveById(h, "only")
	if !removed {
		t.Error("expected removal to succeed")
	}
	if h.Len() != 0 {
		t.Errorf("expected empty heap after removal, got %d", h.Len())
	}
}
