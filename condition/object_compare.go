package condition

import (
	"github.com/linknx-go/ruled/engine"
	"github.com/linknx-go/ruled/engine/traits"
)

func init() {
	engine.RegisterCondition("object", func() engine.Condition { return &ObjectCompare{} })
	engine.RegisterCondition("object-src", func() engine.Condition { return &ObjectSourceCompare{} })
}

// operator is a bitmask over {eq, lt, gt}, exactly mirroring the original
// engine's internal op_m representation.
type operator int

const (
	opEq operator = 1 << iota
	opLt
	opGt
)

// parseOperator maps the six comparison operator tokens to their bitmask.
// "lte" maps to the same bitmask as "gte" (gt|eq rather than lt|eq): this is
// a bug present verbatim in the original engine's importXml (see
// DESIGN.md's open-question log) and is reproduced here rather than
// silently fixed.
func parseOperator(s string) (operator, error) {
	switch s {
	case "", "eq":
		return opEq, nil
	case "lt":
		return opLt, nil
	case "gt":
		return opGt, nil
	case "ne":
		return opLt | opGt, nil
	case "lte":
		return opGt | opEq, nil
	case "gte":
		return opGt | opEq, nil
	default:
		return 0, engine.NewConfigError("object condition: unknown operator: %q", s)
	}
}

// formatOperator is parseOperator's inverse. "lte" and "gte" parse to the
// same bitmask (see the bug note above), so that bitmask always formats back
// out as "gte" — the round trip is lossy on which spelling was originally
// used, but both spellings are already behaviorally identical, so no
// information that affects evaluation is lost.
func formatOperator(op operator) string {
	switch op {
	case opLt:
		return "lt"
	case opGt:
		return "gt"
	case opLt | opGt:
		return "ne"
	case opGt | opEq:
		return "gte"
	default:
		return "eq"
	}
}

func (op operator) match(cmp int) bool {
	switch cmp {
	case 0:
		return op&opEq != 0
	case -1:
		return op&opLt != 0
	case 1:
		return op&opGt != 0
	default:
		return false
	}
}

func parseTrigger(node engine.Node) bool {
	s, ok := node.Attr("trigger")
	if !ok {
		return false
	}
	switch s {
	case "false", "off", "no", "0", "":
		return false
	default:
		return true
	}
}

// ObjectCompare evaluates true if its referenced object's current value
// compares against a configured literal the way its operator demands. A
// condition with no configured value always evaluates true (useful when the
// condition exists purely to subscribe the owning rule to the object's
// changes via trigger).
type ObjectCompare struct {
	traits.Kinded

	Object  engine.Object
	Value   engine.ObjectValue
	Op      operator
	Trigger bool

	hasValue bool
}

func (c *ObjectCompare) Evaluate() bool {
	if !c.hasValue {
		return true
	}
	cmp := c.Object.Value().Compare(c.Value)
	return c.Op.match(cmp)
}

func (c *ObjectCompare) Configure(node engine.Node, ctx *engine.ConditionContext, cl engine.ChangeListener) error {
	return c.configure(node, ctx, cl)
}

func (c *ObjectCompare) configure(node engine.Node, ctx *engine.ConditionContext, cl engine.ChangeListener) error {
	id, ok := node.Attr("id")
	if !ok {
		return engine.NewConfigError("object condition: missing id attribute")
	}
	obj, err := ctx.Objects.GetObject(id)
	if err != nil {
		return err
	}
	c.Object = obj

	if s, ok := node.Attr("value"); ok {
		v, err := obj.CreateValue(s)
		if err != nil {
			return engine.NewConfigError("object condition: bad value %q: %v", s, err)
		}
		c.Value = v
		c.hasValue = true
	}

	opStr, _ := node.Attr("op")
	op, err := parseOperator(opStr)
	if err != nil {
		return err
	}
	c.Op = op

	c.Trigger = parseTrigger(node)
	if c.Trigger && cl != nil {
		obj.AddChangeListener(cl)
	}
	return nil
}

func (c *ObjectCompare) Serialize(node engine.MutableNode) {
	node.SetAttr("id", c.Object.ID())
	if c.hasValue {
		node.SetAttr("value", c.Value.String())
	}
	if c.Op != opEq {
		node.SetAttr("op", formatOperator(c.Op))
	}
	if c.Trigger {
		node.SetAttr("trigger", "true")
	}
}

// ObjectSourceCompare extends ObjectCompare with a source bus address: it
// additionally requires that the object's last write was attributed to
// that address.
type ObjectSourceCompare struct {
	ObjectCompare
	Src string
}

func (c *ObjectSourceCompare) Evaluate() bool {
	if c.Object.LastTx() != c.Src {
		return false
	}
	return c.ObjectCompare.Evaluate()
}

func (c *ObjectSourceCompare) Configure(node engine.Node, ctx *engine.ConditionContext, cl engine.ChangeListener) error {
	if err := c.ObjectCompare.configure(node, ctx, cl); err != nil {
		return err
	}
	src, ok := node.Attr("src")
	if !ok {
		return engine.NewConfigError("object-src condition: missing src attribute")
	}
	c.Src = src
	return nil
}

func (c *ObjectSourceCompare) Serialize(node engine.MutableNode) {
	c.ObjectCompare.Serialize(node)
	node.SetAttr("src", c.Src)
}

var (
	_ engine.Condition = (*ObjectCompare)(nil)
	_ engine.Condition = (*ObjectSourceCompare)(nil)
)
