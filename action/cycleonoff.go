package action

import (
	"strconv"
	"sync/atomic"

	"github.com/linknx-go/ruled/duration"
	"github.com/linknx-go/ruled/engine"
	"github.com/linknx-go/ruled/engine/traits"
)

func init() {
	engine.RegisterAction("cycle-on-off", func() engine.Action { return &CycleOnOff{} })
}

// CycleOnOff writes true, waits On, writes false, waits Off, Count times,
// stopping early if StopCondition (when configured) evaluates true. The
// stop check happens only between steps, never mid-sleep; StopCondition's
// referenced objects are subscribed at configure time, and a change on any
// of them re-evaluates StopCondition and sets running false when it is
// true. Grounded on
// original_source/linknx/src/ruleserver.cpp's CycleOnOffAction.
type CycleOnOff struct {
	traits.Kinded
	traits.Delayed

	Object        engine.SwitchingObject
	On            int
	Off           int
	Count         int
	StopCondition engine.Condition

	running int32 // atomic bool
}

func (a *CycleOnOff) Configure(node engine.Node, ctx *engine.ActionContext) error {
	delay, err := parseDelay(node)
	if err != nil {
		return err
	}
	a.SetDelay(delay)

	id, ok := node.Attr("id")
	if !ok {
		return engine.NewConfigError("cycle-on-off: missing id attribute")
	}
	obj, err := ctx.Objects.GetObject(id)
	if err != nil {
		return err
	}
	sw, ok := obj.(engine.SwitchingObject)
	if !ok {
		return engine.NewConfigError("cycle-on-off: object %q is not a switching object", id)
	}
	a.Object = sw

	onStr, _ := node.Attr("on")
	on, err := duration.Parse(onStr, false)
	if err != nil {
		return engine.NewConfigError("cycle-on-off: bad on: %v", err)
	}
	a.On = on

	offStr, _ := node.Attr("off")
	off, err := duration.Parse(offStr, false)
	if err != nil {
		return engine.NewConfigError("cycle-on-off: bad off: %v", err)
	}
	a.Off = off

	countStr, _ := node.Attr("count")
	count, err := strconv.Atoi(countStr)
	if err != nil {
		return engine.NewConfigError("cycle-on-off: bad count: %q", countStr)
	}
	a.Count = count

	if sc, ok := node.FirstChild("stopcondition"); ok {
		kind, ok := sc.Attr("type")
		if !ok {
			return engine.NewConfigError("cycle-on-off: stopcondition missing type attribute")
		}
		cond, err := engine.NewCondition(kind)
		if err != nil {
			return err
		}
		condCtx := &engine.ConditionContext{Objects: ctx.Objects, Logf: ctx.Logf}
		if err := cond.Configure(sc, condCtx, engine.ChangeListenerFunc(func(engine.Object) {
			if cond.Evaluate() {
				a.stop()
			}
		})); err != nil {
			return err
		}
		a.StopCondition = cond
	}

	return nil
}

func (a *CycleOnOff) Serialize(node engine.MutableNode) {
	node.SetAttr("id", a.Object.ID())
	node.SetAttr("on", duration.Format(a.On))
	node.SetAttr("off", duration.Format(a.Off))
	node.SetAttr("count", strconv.Itoa(a.Count))
	if a.StopCondition != nil {
		child := node.AddChild("stopcondition")
		child.SetAttr("type", a.StopCondition.Kind())
		a.StopCondition.Serialize(child)
	}
}

func (a *CycleOnOff) stop() {
	atomic.StoreInt32(&a.running, 0)
}

func (a *CycleOnOff) isRunning() bool {
	return atomic.LoadInt32(&a.running) != 0
}

func (a *CycleOnOff) Run(ctx *engine.ActionContext, stop <-chan struct{}) {
	atomic.StoreInt32(&a.running, 1)
	if !runDelay(a.Delay(), stop) {
		return
	}

	for i := 0; i < a.Count; i++ {
		if !a.isRunning() {
			ctx.Logf("cycle-on-off: stopped early after %d of %d cycles", i, a.Count)
			return
		}
		if err := a.Object.SetBoolValue(true); err != nil {
			ctx.Logf("cycle-on-off: %v", &engine.RuntimeGatewayError{Err: err})
			return
		}
		if !sleepSeconds(a.On, stop) {
			return
		}
		if !a.isRunning() {
			ctx.Logf("cycle-on-off: stopped early after %d of %d cycles", i, a.Count)
			return
		}
		if err := a.Object.SetBoolValue(false); err != nil {
			ctx.Logf("cycle-on-off: %v", &engine.RuntimeGatewayError{Err: err})
			return
		}
		if !sleepSeconds(a.Off, stop) {
			return
		}
	}
	ctx.Logf("cycle-on-off: completed %d cycles", a.Count)
}

var _ engine.Action = (*CycleOnOff)(nil)
