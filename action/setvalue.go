package action

import (
	"github.com/linknx-go/ruled/engine"
	"github.com/linknx-go/ruled/engine/traits"
)

func init() {
	engine.RegisterAction("set-value", func() engine.Action { return &SetValue{} })
}

// SetValue writes a literal value, parsed once at configure time, to a
// bound object.
type SetValue struct {
	traits.Kinded
	traits.Delayed

	Object engine.Object
	Value  engine.ObjectValue

	literal string
}

func (a *SetValue) Configure(node engine.Node, ctx *engine.ActionContext) error {
	delay, err := parseDelay(node)
	if err != nil {
		return err
	}
	a.SetDelay(delay)

	id, ok := node.Attr("id")
	if !ok {
		return engine.NewConfigError("set-value: missing id attribute")
	}
	obj, err := ctx.Objects.GetObject(id)
	if err != nil {
		return err
	}
	a.Object = obj

	lit, ok := node.Attr("value")
	if !ok {
		return engine.NewConfigError("set-value: missing value attribute")
	}
	a.literal = lit
	v, err := obj.CreateValue(lit)
	if err != nil {
		return engine.NewConfigError("set-value: bad value %q: %v", lit, err)
	}
	a.Value = v
	return nil
}

func (a *SetValue) Serialize(node engine.MutableNode) {
	node.SetAttr("id", a.Object.ID())
	node.SetAttr("value", a.literal)
}

func (a *SetValue) Run(ctx *engine.ActionContext, stop <-chan struct{}) {
	if !runDelay(a.Delay(), stop) {
		return
	}
	if err := a.Object.SetValue(a.Value); err != nil {
		ctx.Logf("set-value: %v", &engine.RuntimeGatewayError{Err: err})
	}
}

var _ engine.Action = (*SetValue)(nil)
