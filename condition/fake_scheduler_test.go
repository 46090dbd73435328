package condition

import (
	"time"

	"github.com/linknx-go/ruled/engine"
)

// fakeScheduler records the last Reschedule call per task instead of
// actually firing a timer, so condition tests can drive Schedulable.OnTimer
// deterministically.
type fakeScheduler struct {
	at map[engine.Schedulable]time.Time
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{at: make(map[engine.Schedulable]time.Time)}
}

func (s *fakeScheduler) Reschedule(task engine.Schedulable, at time.Time) {
	s.at[task] = at
}

func (s *fakeScheduler) Stop(task engine.Schedulable) {
	delete(s.at, task)
}

var _ engine.Scheduler = (*fakeScheduler)(nil)
