package action

import (
	"github.com/linknx-go/ruled/engine"
	"github.com/linknx-go/ruled/engine/traits"
)

func init() {
	engine.RegisterAction("copy-value", func() engine.Action { return &CopyValue{} })
}

// CopyValue reads From's current value as text and writes it to To. The two
// objects' types must match at configure time; a runtime write failure
// (destination rejects the value, or the underlying write fails) is logged
// and swallowed rather than propagated.
type CopyValue struct {
	traits.Kinded
	traits.Delayed

	From engine.Object
	To   engine.Object
}

func (a *CopyValue) Configure(node engine.Node, ctx *engine.ActionContext) error {
	delay, err := parseDelay(node)
	if err != nil {
		return err
	}
	a.SetDelay(delay)

	fromID, ok := node.Attr("from")
	if !ok {
		return engine.NewConfigError("copy-value: missing from attribute")
	}
	toID, ok := node.Attr("to")
	if !ok {
		return engine.NewConfigError("copy-value: missing to attribute")
	}
	from, err := ctx.Objects.GetObject(fromID)
	if err != nil {
		return err
	}
	to, err := ctx.Objects.GetObject(toID)
	if err != nil {
		return err
	}
	if from.Type() != to.Type() {
		return engine.NewConfigError("copy-value: type mismatch: %s is %s, %s is %s", fromID, from.Type(), toID, to.Type())
	}
	a.From = from
	a.To = to
	return nil
}

func (a *CopyValue) Serialize(node engine.MutableNode) {
	node.SetAttr("from", a.From.ID())
	node.SetAttr("to", a.To.ID())
}

func (a *CopyValue) Run(ctx *engine.ActionContext, stop <-chan struct{}) {
	if !runDelay(a.Delay(), stop) {
		return
	}

	literal := a.From.Value().String()
	v, err := a.To.CreateValue(literal)
	if err != nil {
		ctx.Logf("copy-value: %v", &engine.RuntimeGatewayError{Err: err})
		return
	}
	if err := a.To.SetValue(v); err != nil {
		ctx.Logf("copy-value: %v", &engine.RuntimeGatewayError{Err: err})
	}
}

var _ engine.Action = (*CopyValue)(nil)
