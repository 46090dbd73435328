package action

import (
	"sync"
	"testing"

	"github.com/linknx-go/ruled/engine"
)

// stubObjectCondition is a minimal stand-in for condition.ObjectCompare,
// registered under the "object" kind so CycleOnOff's stopcondition tests
// don't need to import the condition package (which would otherwise create
// an import cycle through engine's registry-based design... it wouldn't
// actually cycle, but keeping action's tests self-contained avoids coupling
// them to condition's configuration shape).
type stubObjectCondition struct {
	object  engine.Object
	literal string
}

func (c *stubObjectCondition) Kind() string { return "object" }

func (c *stubObjectCondition) Evaluate() bool {
	v, err := c.object.CreateValue(c.literal)
	if err != nil {
		return false
	}
	return c.object.Value().Compare(v) == 0
}

func (c *stubObjectCondition) Configure(node engine.Node, ctx *engine.ConditionContext, cl engine.ChangeListener) error {
	id, _ := node.Attr("id")
	obj, err := ctx.Objects.GetObject(id)
	if err != nil {
		return err
	}
	c.object = obj
	c.literal, _ = node.Attr("value")
	if cl != nil {
		obj.AddChangeListener(cl)
	}
	return nil
}

func (c *stubObjectCondition) Serialize(node engine.MutableNode) {
	node.SetAttr("id", c.object.ID())
	node.SetAttr("value", c.literal)
}

var registerStubOnce sync.Once

func registerTestObjectCondition(t *testing.T) {
	t.Helper()
	registerStubOnce.Do(func() {
		engine.RegisterCondition("object", func() engine.Condition { return &stubObjectCondition{} })
	})
}
