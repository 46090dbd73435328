//go:build lua

package condition

import (
	"github.com/linknx-go/ruled/engine"
	"github.com/linknx-go/ruled/engine/traits"
)

func init() {
	engine.RegisterCondition("lua", func() engine.Condition { return &ExternalScript{} })
}

// ExternalScript delegates evaluation to an external interpreter
// (ctx.Script), holding only an opaque code string itself. Only present
// when this module is built with the lua tag.
type ExternalScript struct {
	traits.Kinded

	Code string

	eval engine.ScriptEvaluator
}

func (c *ExternalScript) Evaluate() bool {
	ok, err := c.eval.Eval(c.Code)
	if err != nil {
		return false
	}
	return ok
}

func (c *ExternalScript) Configure(node engine.Node, ctx *engine.ConditionContext, cl engine.ChangeListener) error {
	if ctx.Script == nil {
		return engine.NewConfigError("lua condition: no script evaluator configured")
	}
	c.Code = node.Text()
	c.eval = ctx.Script
	return nil
}

func (c *ExternalScript) Serialize(node engine.MutableNode) {
	node.SetText(c.Code)
}

var _ engine.Condition = (*ExternalScript)(nil)
