package action

import (
	"strconv"
	"time"

	"github.com/linknx-go/ruled/duration"
	"github.com/linknx-go/ruled/engine"
	"github.com/linknx-go/ruled/engine/traits"
)

func init() {
	engine.RegisterAction("dim-up", func() engine.Action { return &DimRamp{} })
}

// DimRamp drives an 8-bit object from Start toward Stop (exclusive) in unit
// steps, spread evenly across Duration seconds. After each write it reads
// the object back; if an external writer has moved the value in the
// direction opposite the ramp, the ramp aborts early rather than fighting
// the external change. Grounded on
// original_source/linknx/src/ruleserver.cpp's DimUpAction.
type DimRamp struct {
	traits.Kinded
	traits.Delayed

	Object   engine.U8Object
	Start    int
	Stop     int
	Duration int
}

func (a *DimRamp) Configure(node engine.Node, ctx *engine.ActionContext) error {
	delay, err := parseDelay(node)
	if err != nil {
		return err
	}
	a.SetDelay(delay)

	id, ok := node.Attr("id")
	if !ok {
		return engine.NewConfigError("dim-up: missing id attribute")
	}
	obj, err := ctx.Objects.GetObject(id)
	if err != nil {
		return err
	}
	u8, ok := obj.(engine.U8Object)
	if !ok {
		return engine.NewConfigError("dim-up: object %q is not an 8-bit object", id)
	}
	a.Object = u8

	start, err := attrInt(node, "start")
	if err != nil {
		return err
	}
	stop, err := attrInt(node, "stop")
	if err != nil {
		return err
	}
	a.Start, a.Stop = start, stop

	durStr, _ := node.Attr("duration")
	dur, err := duration.Parse(durStr, false)
	if err != nil {
		return engine.NewConfigError("dim-up: bad duration: %v", err)
	}
	a.Duration = dur
	return nil
}

func attrInt(node engine.Node, name string) (int, error) {
	s, ok := node.Attr(name)
	if !ok {
		return 0, engine.NewConfigError("dim-up: missing %s attribute", name)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, engine.NewConfigError("dim-up: bad %s: %q", name, s)
	}
	return n, nil
}

func (a *DimRamp) Serialize(node engine.MutableNode) {
	node.SetAttr("id", a.Object.ID())
	node.SetAttr("start", strconv.Itoa(a.Start))
	node.SetAttr("stop", strconv.Itoa(a.Stop))
	node.SetAttr("duration", duration.Format(a.Duration))
}

func (a *DimRamp) Run(ctx *engine.ActionContext, stop <-chan struct{}) {
	if !runDelay(a.Delay(), stop) {
		return
	}
	if a.Stop == a.Start {
		return
	}

	step := 1
	if a.Stop < a.Start {
		step = -1
	}
	span := a.Stop - a.Start
	if span < 0 {
		span = -span
	}
	// duration * 1e6 / span microseconds.
	interval := time.Duration(int64(a.Duration)*1_000_000/int64(span)) * time.Microsecond

	for v := a.Start; v != a.Stop; v += step {
		if err := a.Object.SetIntValue(v); err != nil {
			ctx.Logf("dim-up: %v", &engine.RuntimeGatewayError{Err: err})
			return
		}
		if !sleep(interval, stop) {
			return
		}
		readback := a.Object.IntValue()
		if (step > 0 && readback < v) || (step < 0 && readback > v) {
			ctx.Logf("dim-up: %v", &engine.RampAborted{Reason: "external write opposed ramp direction"})
			return
		}
	}
}

var _ engine.Action = (*DimRamp)(nil)
