package condition

import (
	"sync"
	"time"

	"github.com/linknx-go/ruled/duration"
	"github.com/linknx-go/ruled/engine"
	"github.com/linknx-go/ruled/engine/traits"
)

func init() {
	engine.RegisterCondition("time-counter", func() engine.Condition { return &TimeCounter{} })
}

// TimeCounter wraps a sub-condition and accumulates wall-clock seconds
// during which it is true into a running counter, evaluating true once the
// counter reaches Threshold. The counter resets to zero after ResetDelay
// seconds of continuous false sub-condition state. Grounded on
// original_source/linknx/src/ruleserver.cpp's TimeCounterCondition.
type TimeCounter struct {
	traits.Kinded

	Condition  engine.Condition
	Threshold  int
	ResetDelay int

	mu        sync.Mutex
	counter   int
	lastVal   bool
	lastTime  time.Time
	scheduler engine.Scheduler
	cl        engine.ChangeListener
}

func (c *TimeCounter) Evaluate() bool {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evaluateLocked(now)
}

// evaluateLocked runs the accumulation algorithm described in the original
// engine: accrue elapsed true-time since the last observation, decide
// whether to (re)schedule a wakeup for the next projected edge (threshold
// crossing or counter reset), and reset the counter after ResetDelay of
// continuous false state.
func (c *TimeCounter) evaluateLocked(now time.Time) bool {
	val := c.Condition.Evaluate()

	if c.lastVal {
		c.counter += int(now.Sub(c.lastTime).Seconds())
	}

	switch {
	case val:
		c.lastTime = now
		c.lastVal = true
		wake := now.Add(time.Duration(c.Threshold-c.counter+1) * time.Second)
		if c.scheduler != nil {
			c.scheduler.Reschedule(c, wake)
		}
	case c.lastVal && !val:
		c.lastTime = now
		c.lastVal = false
		wake := now.Add(time.Duration(c.ResetDelay+1) * time.Second)
		if c.scheduler != nil {
			c.scheduler.Reschedule(c, wake)
		}
	}

	if !c.lastVal && !c.lastTime.IsZero() && now.Sub(c.lastTime) > time.Duration(c.ResetDelay)*time.Second {
		c.counter = 0
		c.lastTime = time.Time{}
	}

	return c.counter >= c.Threshold
}

// OnTimer forwards to the owning rule, mirroring the original engine's
// TimeCounterCondition::onTimer, which unconditionally calls
// cl->onChange(0) regardless of what the wakeup was projecting.
func (c *TimeCounter) OnTimer(now time.Time) {
	c.mu.Lock()
	c.evaluateLocked(now)
	c.mu.Unlock()
	if c.cl != nil {
		c.cl.OnChange(nil)
	}
}

func (c *TimeCounter) Configure(node engine.Node, ctx *engine.ConditionContext, cl engine.ChangeListener) error {
	sub, ok := node.FirstChild("condition")
	if !ok {
		return engine.NewConfigError("time-counter: missing condition child")
	}
	kind, ok := sub.Attr("type")
	if !ok {
		return engine.NewConfigError("time-counter: condition child missing type attribute")
	}
	inner, err := engine.NewCondition(kind)
	if err != nil {
		return err
	}
	if err := inner.Configure(sub, ctx, cl); err != nil {
		return err
	}
	c.Condition = inner

	thresholdStr, _ := node.Attr("threshold")
	threshold, err := duration.Parse(thresholdStr, false)
	if err != nil {
		return engine.NewConfigError("time-counter: bad threshold: %v", err)
	}
	c.Threshold = threshold

	resetStr, _ := node.Attr("resetdelay")
	reset, err := duration.Parse(resetStr, false)
	if err != nil {
		return engine.NewConfigError("time-counter: bad resetdelay: %v", err)
	}
	c.ResetDelay = reset

	c.scheduler = ctx.Scheduler
	c.cl = cl
	return nil
}

func (c *TimeCounter) Serialize(node engine.MutableNode) {
	node.SetAttr("threshold", duration.Format(c.Threshold))
	node.SetAttr("resetdelay", duration.Format(c.ResetDelay))
	child := node.AddChild("condition")
	child.SetAttr("type", c.Condition.Kind())
	c.Condition.Serialize(child)
}

var (
	_ engine.Condition   = (*TimeCounter)(nil)
	_ engine.Schedulable = (*TimeCounter)(nil)
)
