// Package condition implements the condition tree node kinds: the logical
// combinators (And, Or, Not) and the leaves (ObjectCompare,
// ObjectSourceCompare, Timer, TimeCounter, ExternalScript). Every kind
// self-registers with the engine's condition factory in its own init(),
// mirroring how mgmt's resource kinds self-register with
// engine.RegisterResource.
package condition

import (
	"github.com/linknx-go/ruled/engine"
	"github.com/linknx-go/ruled/engine/traits"
)

func init() {
	engine.RegisterCondition("and", func() engine.Condition { return &And{} })
	engine.RegisterCondition("or", func() engine.Condition { return &Or{} })
	engine.RegisterCondition("not", func() engine.Condition { return &Not{} })
}

// And evaluates true iff every sub-condition evaluates true. An empty And
// evaluates true. Evaluation short-circuits at the first false child.
type And struct {
	traits.Kinded
	Conditions []engine.Condition
}

func (c *And) Evaluate() bool {
	for _, sub := range c.Conditions {
		if !sub.Evaluate() {
			return false
		}
	}
	return true
}

func (c *And) Configure(node engine.Node, ctx *engine.ConditionContext, cl engine.ChangeListener) error {
	subs, err := configureChildren(node, ctx, cl)
	if err != nil {
		return err
	}
	c.Conditions = subs
	return nil
}

func (c *And) Serialize(node engine.MutableNode) {
	serializeChildren(node, c.Conditions)
}

// Or evaluates true iff at least one sub-condition evaluates true. An empty
// Or evaluates false. Evaluation short-circuits at the first true child.
type Or struct {
	traits.Kinded
	Conditions []engine.Condition
}

func (c *Or) Evaluate() bool {
	for _, sub := range c.Conditions {
		if sub.Evaluate() {
			return true
		}
	}
	return false
}

func (c *Or) Configure(node engine.Node, ctx *engine.ConditionContext, cl engine.ChangeListener) error {
	subs, err := configureChildren(node, ctx, cl)
	if err != nil {
		return err
	}
	c.Conditions = subs
	return nil
}

func (c *Or) Serialize(node engine.MutableNode) {
	serializeChildren(node, c.Conditions)
}

// Not inverts its single child condition.
type Not struct {
	traits.Kinded
	Condition engine.Condition
}

func (c *Not) Evaluate() bool {
	return !c.Condition.Evaluate()
}

func (c *Not) Configure(node engine.Node, ctx *engine.ConditionContext, cl engine.ChangeListener) error {
	subs, err := configureChildren(node, ctx, cl)
	if err != nil {
		return err
	}
	if len(subs) != 1 {
		return engine.NewConfigError("not: expected exactly one child condition, got %d", len(subs))
	}
	c.Condition = subs[0]
	return nil
}

func (c *Not) Serialize(node engine.MutableNode) {
	serializeChildren(node, []engine.Condition{c.Condition})
}

// configureChildren builds and configures one sub-condition per <condition>
// child element, in document order.
func configureChildren(node engine.Node, ctx *engine.ConditionContext, cl engine.ChangeListener) ([]engine.Condition, error) {
	children := node.ChildrenNamed("condition")
	subs := make([]engine.Condition, 0, len(children))
	for _, child := range children {
		kind, ok := child.Attr("type")
		if !ok {
			return nil, engine.NewConfigError("condition: missing type attribute")
		}
		sub, err := engine.NewCondition(kind)
		if err != nil {
			return nil, err
		}
		if err := sub.Configure(child, ctx, cl); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

func serializeChildren(node engine.MutableNode, subs []engine.Condition) {
	for _, sub := range subs {
		child := node.AddChild("condition")
		child.SetAttr("type", sub.Kind())
		sub.Serialize(child)
	}
}

var (
	_ engine.Condition = (*And)(nil)
	_ engine.Condition = (*Or)(nil)
	_ engine.Condition = (*Not)(nil)
)
