package rule

import (
	"testing"
	"time"

	_ "github.com/linknx-go/ruled/action"
	_ "github.com/linknx-go/ruled/condition"
	"github.com/linknx-go/ruled/engine"
	"github.com/linknx-go/ruled/object"
	"github.com/linknx-go/ruled/util/semaphore"
)

func discardLogf(format string, v ...interface{}) {}

func newTestRule(id string, objects *object.Controller) *Rule {
	condCtx := &engine.ConditionContext{
		Objects:   objects,
		Scheduler: engine.NewTickerScheduler(),
		Logf:      discardLogf,
	}
	actCtx := &engine.ActionContext{
		Objects: objects,
		Logf:    discardLogf,
	}
	return New(id, condCtx, actCtx)
}

// TestEdgeOnlyDispatch is scenario S1: a rule with an object condition
// triggered on L1's change, and a SetValue action writing L2 on the rising
// edge.
func TestEdgeOnlyDispatch(t *testing.T) {
	objects := object.NewController()
	l1 := object.NewSwitchingObject("L1", false)
	l2 := object.NewSwitchingObject("L2", false)
	objects.Add(l1)
	objects.Add(l2)

	r := newTestRule("r1", objects)

	doc := newTestNode("rule")
	doc.SetAttr("id", "r1")
	cond := doc.AddChild("condition")
	cond.SetAttr("type", "object")
	cond.SetAttr("id", "L1")
	cond.SetAttr("value", "on")
	cond.SetAttr("trigger", "true")
	list := doc.AddChild("actionlist")
	act := list.AddChild("action")
	act.SetAttr("type", "set-value")
	act.SetAttr("id", "L2")
	act.SetAttr("value", "on")

	if err := r.Configure(doc); err != nil {
		t.Fatalf("configure: %v", err)
	}
	r.Evaluate()
	r.Wait()
	if l2.BoolValue() {
		t.Fatal("L2 should still be off before L1 flips")
	}

	l1.SetBoolValue(true)
	r.Wait()
	if !l2.BoolValue() {
		t.Fatal("expected L2 on after L1's rising edge")
	}

	// A second notification with no actual transition must not re-fire.
	l2.SetBoolValue(false) // reset to observe whether the rule re-fires
	l1.SetBoolValue(true)  // re-notify without L1 actually transitioning
	r.Wait()
	if l2.BoolValue() {
		t.Fatal("rule re-fired on a non-edge notification")
	}
}

func TestInactiveRuleNeverFires(t *testing.T) {
	objects := object.NewController()
	l1 := object.NewSwitchingObject("L1", false)
	l2 := object.NewSwitchingObject("L2", false)
	objects.Add(l1)
	objects.Add(l2)

	r := newTestRule("r1", objects)
	doc := newTestNode("rule")
	doc.SetAttr("id", "r1")
	doc.SetAttr("active", "off")
	cond := doc.AddChild("condition")
	cond.SetAttr("type", "object")
	cond.SetAttr("id", "L1")
	cond.SetAttr("value", "on")
	cond.SetAttr("trigger", "true")
	list := doc.AddChild("actionlist")
	act := list.AddChild("action")
	act.SetAttr("type", "set-value")
	act.SetAttr("id", "L2")
	act.SetAttr("value", "on")

	if err := r.Configure(doc); err != nil {
		t.Fatalf("configure: %v", err)
	}

	l1.SetBoolValue(true)
	r.Wait()
	if l2.BoolValue() {
		t.Fatal("inactive rule fired an action")
	}
}

func TestReconfigureReplacesBothActionLists(t *testing.T) {
	objects := object.NewController()
	l1 := object.NewSwitchingObject("L1", false)
	l2 := object.NewSwitchingObject("L2", false)
	l3 := object.NewSwitchingObject("L3", false)
	objects.Add(l1)
	objects.Add(l2)
	objects.Add(l3)

	r := newTestRule("r1", objects)
	doc := newTestNode("rule")
	doc.SetAttr("id", "r1")
	cond := doc.AddChild("condition")
	cond.SetAttr("type", "object")
	cond.SetAttr("id", "L1")
	cond.SetAttr("value", "on")
	cond.SetAttr("trigger", "true")
	list := doc.AddChild("actionlist")
	act := list.AddChild("action")
	act.SetAttr("type", "set-value")
	act.SetAttr("id", "L2")
	act.SetAttr("value", "on")
	if err := r.Configure(doc); err != nil {
		t.Fatalf("configure: %v", err)
	}

	update := newTestNode("rule")
	list2 := update.AddChild("actionlist")
	act2 := list2.AddChild("action")
	act2.SetAttr("type", "set-value")
	act2.SetAttr("id", "L3")
	act2.SetAttr("value", "on")
	if err := r.Reconfigure(update); err != nil {
		t.Fatalf("reconfigure: %v", err)
	}

	l1.SetBoolValue(true)
	r.Wait()
	if l2.BoolValue() {
		t.Fatal("old action list should have been discarded on reconfigure")
	}
	if !l3.BoolValue() {
		t.Fatal("new action list should have fired")
	}
}

func TestCycleOnOffViaRule(t *testing.T) {
	objects := object.NewController()
	trigger := object.NewSwitchingObject("Trig", false)
	lamp := object.NewSwitchingObject("Lamp", false)
	objects.Add(trigger)
	objects.Add(lamp)

	r := newTestRule("r1", objects)
	doc := newTestNode("rule")
	cond := doc.AddChild("condition")
	cond.SetAttr("type", "object")
	cond.SetAttr("id", "Trig")
	cond.SetAttr("value", "on")
	cond.SetAttr("trigger", "true")
	list := doc.AddChild("actionlist")
	act := list.AddChild("action")
	act.SetAttr("type", "cycle-on-off")
	act.SetAttr("id", "Lamp")
	act.SetAttr("on", "0")
	act.SetAttr("off", "0")
	act.SetAttr("count", "2")
	if err := r.Configure(doc); err != nil {
		t.Fatalf("configure: %v", err)
	}

	trigger.SetBoolValue(true)

	done := make(chan struct{})
	go func() {
		r.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cycle-on-off action did not complete")
	}
	if lamp.BoolValue() {
		t.Fatal("expected lamp off after an even cycle count")
	}
}

// TestRateLimitDropsExcessEdges configures a rule with a tight limit/burst
// meta pair and drives several rising edges in a row; only the edges the
// limiter admits should reach the action list.
func TestRateLimitDropsExcessEdges(t *testing.T) {
	objects := object.NewController()
	trigger := object.NewSwitchingObject("Trig", false)
	counter := object.NewU8Object("Count", 0)
	objects.Add(trigger)
	objects.Add(counter)

	r := newTestRule("r1", objects)
	doc := newTestNode("rule")
	doc.SetAttr("id", "r1")
	doc.SetAttr("limit", "0.001")
	doc.SetAttr("burst", "1")
	cond := doc.AddChild("condition")
	cond.SetAttr("type", "object")
	cond.SetAttr("id", "Trig")
	cond.SetAttr("value", "on")
	cond.SetAttr("trigger", "true")
	list := doc.AddChild("actionlist")
	act := list.AddChild("action")
	act.SetAttr("type", "set-value")
	act.SetAttr("id", "Count")
	act.SetAttr("value", "1")
	if err := r.Configure(doc); err != nil {
		t.Fatalf("configure: %v", err)
	}

	trigger.SetBoolValue(true)
	r.Wait()
	if counter.IntValue() != 1 {
		t.Fatalf("first edge should have been admitted, got %d", counter.IntValue())
	}

	trigger.SetBoolValue(false)
	r.Wait()
	counter.SetIntValue(0)

	trigger.SetBoolValue(true)
	r.Wait()
	if counter.IntValue() != 0 {
		t.Fatal("second edge arrived before the limiter could refill, expected it dropped")
	}
}

// TestSemaphoreSharedDispatchCompletes configures two rules sharing a sema
// name, fires both, and checks that both dispatched actions run to
// completion through the shared semaphore.
func TestSemaphoreSharedDispatchCompletes(t *testing.T) {
	objects := object.NewController()
	t1 := object.NewSwitchingObject("T1", false)
	t2 := object.NewSwitchingObject("T2", false)
	out := object.NewU8Object("Out", 0)
	objects.Add(t1)
	objects.Add(t2)
	objects.Add(out)

	registry := semaphore.NewRegistry()
	condCtx := &engine.ConditionContext{Objects: objects, Scheduler: engine.NewTickerScheduler(), Logf: discardLogf}
	actCtx := &engine.ActionContext{Objects: objects, Logf: discardLogf, Semaphores: registry}

	build := func(id, trig string) *Rule {
		r := New(id, condCtx, actCtx)
		doc := newTestNode("rule")
		doc.SetAttr("id", id)
		doc.SetAttr("sema", "shared")
		cond := doc.AddChild("condition")
		cond.SetAttr("type", "object")
		cond.SetAttr("id", trig)
		cond.SetAttr("value", "on")
		cond.SetAttr("trigger", "true")
		list := doc.AddChild("actionlist")
		act := list.AddChild("action")
		act.SetAttr("type", "set-value")
		act.SetAttr("id", "Out")
		act.SetAttr("value", "1")
		if err := r.Configure(doc); err != nil {
			t.Fatalf("configure %s: %v", id, err)
		}
		return r
	}

	r1 := build("r1", "T1")
	r2 := build("r2", "T2")

	t1.SetBoolValue(true)
	t2.SetBoolValue(true)
	r1.Wait()
	r2.Wait()
	if out.IntValue() != 1 {
		t.Fatalf("expected Out=1 after both rules dispatched, got %d", out.IntValue())
	}
}

// TestActionDelayRoundTrip configures a rule whose action carries a
// non-zero delay, exports it, and checks that the exported document's
// action element carries the delay attribute (in duration.Format's
// canonical form) and that a fresh rule can be configured from that
// document.
func TestActionDelayRoundTrip(t *testing.T) {
	objects := object.NewController()
	l1 := object.NewSwitchingObject("L1", false)
	l2 := object.NewSwitchingObject("L2", false)
	objects.Add(l1)
	objects.Add(l2)

	r := newTestRule("r1", objects)
	doc := newTestNode("rule")
	doc.SetAttr("id", "r1")
	cond := doc.AddChild("condition")
	cond.SetAttr("type", "object")
	cond.SetAttr("id", "L1")
	cond.SetAttr("value", "on")
	cond.SetAttr("trigger", "true")
	list := doc.AddChild("actionlist")
	act := list.AddChild("action")
	act.SetAttr("type", "set-value")
	act.SetAttr("id", "L2")
	act.SetAttr("value", "on")
	act.SetAttr("delay", "5s")
	if err := r.Configure(doc); err != nil {
		t.Fatalf("configure: %v", err)
	}

	exported := newTestNode("rule")
	r.Serialize(exported)

	exportedLists := exported.ChildrenNamed("actionlist")
	if len(exportedLists) != 1 {
		t.Fatalf("expected 1 exported actionlist, got %d", len(exportedLists))
	}
	exportedActions := exportedLists[0].ChildrenNamed("action")
	if len(exportedActions) != 1 {
		t.Fatalf("expected 1 exported action, got %d", len(exportedActions))
	}
	delayAttr, ok := exportedActions[0].Attr("delay")
	if !ok || delayAttr != "5" {
		t.Fatalf("expected exported action delay %q, got %q (present=%v)", "5", delayAttr, ok)
	}

	r2 := newTestRule("r2", objects)
	if err := r2.Configure(exported); err != nil {
		t.Fatalf("re-configure from exported document: %v", err)
	}
}
