package engine

import (
	"sync"
	"time"
)

// Schedulable is notified by a Scheduler when its next scheduled firing
// arrives. now is the wall-clock time the scheduler observed, which may lag
// the requested fire time slightly.
type Schedulable interface {
	OnTimer(now time.Time)
}

// Scheduler is the generic periodic-task facility that Timer and
// TimeCounter conditions sit on top of: a way to ask "call me back at this
// wall-clock time" without each condition owning its own goroutine and
// timer bookkeeping. Conditions recompute their own next fire time (from
// at/every/during/until attributes) and call Reschedule again from within
// OnTimer, the same "reschedule(0) means recompute from now" convention the
// original engine uses.
type Scheduler interface {
	// Reschedule arranges for task.OnTimer to be called at, once. A zero
	// Time cancels any pending firing for task without scheduling a new
	// one. Calling Reschedule again before a pending firing replaces it.
	Reschedule(task Schedulable, at time.Time)

	// Stop cancels any pending firing for task and releases its resources.
	Stop(task Schedulable)
}

// TickerScheduler is the default Scheduler: one time.Timer per registered
// task, swapped out on every Reschedule call. It has no notion of the
// schedule grammar (weekday masks, sunrise offsets) itself — that logic
// lives in the condition that owns the task - it is only responsible for
// firing OnTimer once at the requested instant.
type TickerScheduler struct {
	mu      sync.Mutex
	timers  map[Schedulable]*time.Timer
	closing bool
}

// NewTickerScheduler returns a ready-to-use TickerScheduler.
func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{
		timers: make(map[Schedulable]*time.Timer),
	}
}

func (s *TickerScheduler) Reschedule(task Schedulable, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return
	}
	if t, ok := s.timers[task]; ok {
		t.Stop()
		delete(s.timers, task)
	}
	if at.IsZero() {
		return
	}
	d := time.Until(at)
	if d < 0 {
		d = 0
	}
	s.timers[task] = time.AfterFunc(d, func() {
		task.OnTimer(time.Now())
	})
}

func (s *TickerScheduler) Stop(task Schedulable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[task]; ok {
		t.Stop()
		delete(s.timers, task)
	}
}

// Close cancels every pending firing. Used on server shutdown.
func (s *TickerScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closing = true
	for task, t := range s.timers {
		t.Stop()
		delete(s.timers, task)
	}
}
