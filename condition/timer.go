package condition

import (
	"fmt"
	"sync"
	"time"

	"github.com/linknx-go/ruled/duration"
	"github.com/linknx-go/ruled/engine"
	"github.com/linknx-go/ruled/engine/traits"
)

func init() {
	engine.RegisterCondition("timer", func() engine.Condition { return &Timer{} })
}

// Timer exposes a latched boolean that the underlying Scheduler flips
// between the start and end of each active window: exactly one of At (a
// TimeSpec) or Every (an interval) defines when each window starts, and at
// most one of During (an interval, or -1 for "until Until") or Until (a
// TimeSpec) defines when it ends. Grounded on
// original_source/linknx/src/ruleserver.cpp's TimerCondition.
type Timer struct {
	traits.Kinded

	At      engine.TimeSpec
	Every   int
	During  int
	Until   engine.TimeSpec
	Trigger bool

	after int // every - during, when both every>0 and during>0

	mu          sync.Mutex
	value       bool
	inWindow    bool
	windowStart time.Time

	scheduler engine.Scheduler
	cl        engine.ChangeListener
}

func (c *Timer) Evaluate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

func (c *Timer) Configure(node engine.Node, ctx *engine.ConditionContext, cl engine.ChangeListener) error {
	atNode, hasAt := node.FirstChild("at")
	everyNode, hasEvery := node.FirstChild("every")
	if hasAt == hasEvery {
		return engine.NewConfigError("timer: exactly one of <at> or <every> is required")
	}
	duringNode, hasDuring := node.FirstChild("during")
	untilNode, hasUntil := node.FirstChild("until")
	if hasDuring && hasUntil {
		return engine.NewConfigError("timer: at most one of <during> or <until> is allowed")
	}

	if hasAt {
		spec, err := ParseTimeSpec(atNode.Text())
		if err != nil {
			return err
		}
		c.At = spec
	}
	if hasEvery {
		sec, err := duration.Parse(everyNode.Text(), false)
		if err != nil {
			return engine.NewConfigError("timer: bad <every>: %v", err)
		}
		c.Every = sec
	}
	if hasDuring {
		sec, err := duration.Parse(duringNode.Text(), true)
		if err != nil {
			return engine.NewConfigError("timer: bad <during>: %v", err)
		}
		c.During = sec
	}
	if hasUntil {
		spec, err := ParseTimeSpec(untilNode.Text())
		if err != nil {
			return err
		}
		c.Until = spec
		c.During = -1
	}
	if c.Every > 0 && c.During > 0 {
		if c.During > c.Every {
			return engine.NewConfigError("timer: <during> (%d) exceeds <every> (%d)", c.During, c.Every)
		}
		c.after = c.Every - c.During
	}

	c.Trigger = parseTrigger(node)
	c.scheduler = ctx.Scheduler
	c.cl = cl

	c.scheduleStart(time.Now())
	return nil
}

func (c *Timer) Serialize(node engine.MutableNode) {
	if c.At != nil {
		if s, ok := c.At.(fmt.Stringer); ok {
			node.AddChild("at").SetText(s.String())
		}
	}
	if c.Every > 0 {
		node.AddChild("every").SetText(duration.Format(c.Every))
	}
	switch {
	case c.During == -1 && c.Until != nil:
		if s, ok := c.Until.(fmt.Stringer); ok {
			node.AddChild("until").SetText(s.String())
		}
	case c.During > 0:
		node.AddChild("during").SetText(duration.Format(c.During))
	}
	if c.Trigger {
		node.SetAttr("trigger", "true")
	}
}

// scheduleStart computes the next window-start instant and registers it
// with the scheduler. Passing now as the reference time mirrors the
// original engine's reschedule(0) ("recompute from now") convention.
func (c *Timer) scheduleStart(now time.Time) {
	var start time.Time
	switch {
	case c.At != nil:
		start = c.At.Next(now)
	case !c.windowStart.IsZero():
		start = c.windowStart.Add(time.Duration(c.Every) * time.Second)
	default:
		start = now
	}
	c.mu.Lock()
	c.windowStart = start
	c.inWindow = false
	c.mu.Unlock()
	c.scheduler.Reschedule(c, start)
}

// OnTimer is invoked by the Scheduler at each window boundary: the first
// call after scheduleStart opens the window, the following call closes it.
func (c *Timer) OnTimer(now time.Time) {
	c.mu.Lock()
	opening := !c.inWindow
	c.mu.Unlock()

	if opening {
		c.openWindow(now)
		return
	}
	c.closeWindow(now)
}

func (c *Timer) openWindow(now time.Time) {
	c.mu.Lock()
	c.value = true
	c.inWindow = true
	c.mu.Unlock()

	if c.Trigger && c.cl != nil {
		c.cl.OnChange(nil)
	}

	var end time.Time
	switch {
	case c.During == -1 && c.Until != nil:
		end = c.Until.Next(now)
	case c.During > 0:
		end = now.Add(time.Duration(c.During) * time.Second)
	default:
		end = now
	}

	if end.After(now) {
		c.scheduler.Reschedule(c, end)
		return
	}
	// Point-in-time window: close immediately.
	c.closeWindow(now)
}

func (c *Timer) closeWindow(now time.Time) {
	c.mu.Lock()
	c.value = false
	c.inWindow = false
	c.mu.Unlock()

	if c.Trigger && c.cl != nil {
		c.cl.OnChange(nil)
	}

	switch {
	case c.Every > 0:
		// windowStart advances by Every regardless of During: the
		// start-to-start period is always the configured Every, and
		// scheduleStart computes it from the previous windowStart.
		c.scheduleStart(now)
	case c.At != nil:
		c.scheduleStart(now.Add(time.Second))
	}
}

var _ engine.Condition = (*Timer)(nil)
var _ engine.Schedulable = (*Timer)(nil)
