// Package rule implements the Rule lifecycle: binding one condition tree to
// two action lists, detecting truth edges, and dispatching the
// corresponding action list as independent cooperative tasks. Grounded on
// original_source/linknx/src/ruleserver.cpp's Rule class.
package rule

import (
	"strconv"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/linknx-go/ruled/duration"
	"github.com/linknx-go/ruled/engine"
	"github.com/linknx-go/ruled/util/semaphore"
)

// Rule binds one condition tree with two action lists (fired on the rising
// and falling truth edge respectively), an active flag, and the last
// evaluated boolean used for edge detection.
type Rule struct {
	ID     string
	Active bool

	condEngine *engine.ConditionContext
	actEngine  *engine.ActionContext

	mu          sync.Mutex
	condition   engine.Condition
	trueActions []engine.Action
	falseActions []engine.Action
	prev        bool

	meta    engine.MetaParams
	limiter *rate.Limiter
	semas   []semaphore.Semaphore

	tasks sync.WaitGroup
}

// New returns a Rule ready to be configured, wired to the given condition
// and action collaborator contexts.
func New(id string, condEngine *engine.ConditionContext, actEngine *engine.ActionContext) *Rule {
	return &Rule{
		ID:         id,
		Active:     true,
		condEngine: condEngine,
		actEngine:  actEngine,
	}
}

// Configure performs the rule's initial configuration from a <rule>
// document element: active flag (absent means active), required condition
// child, and zero or more actionlist children.
func (r *Rule) Configure(node engine.Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.configureLocked(node, true)
}

// Reconfigure updates an existing rule in place: active is updated only if
// present, condition is replaced only if present, and if any actionlist is
// present, both polarities are discarded and rebuilt from the document.
func (r *Rule) Reconfigure(node engine.Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.configureLocked(node, false)
}

func (r *Rule) configureLocked(node engine.Node, initial bool) error {
	if active, ok := node.Attr("active"); ok {
		r.Active = parseActive(active)
	} else if initial {
		r.Active = true
	}
	// Absent "active" on reconfigure preserves the current value.

	condNode, hasCond := node.FirstChild("condition")
	if initial && !hasCond {
		return engine.NewConfigError("rule %q: condition is required", r.ID)
	}
	if hasCond {
		kind, ok := condNode.Attr("type")
		if !ok {
			return engine.NewConfigError("rule %q: condition missing type attribute", r.ID)
		}
		cond, err := engine.NewCondition(kind)
		if err != nil {
			return err
		}
		if err := cond.Configure(condNode, r.condEngine, r); err != nil {
			return err
		}
		r.condition = cond
	}

	r.configureMetaLocked(node)

	lists := node.ChildrenNamed("actionlist")
	if len(lists) > 0 {
		var trueActions, falseActions []engine.Action
		for _, list := range lists {
			onFalse := false
			if t, ok := list.Attr("type"); ok && t == "on-false" {
				onFalse = true
			}
			actions, err := configureActions(list, r.actEngine)
			if err != nil {
				return err
			}
			if onFalse {
				falseActions = append(falseActions, actions...)
			} else {
				trueActions = append(trueActions, actions...)
			}
		}
		r.trueActions = trueActions
		r.falseActions = falseActions
	}

	return nil
}

// configureMetaLocked reads the optional "limit", "burst", and "sema"
// attributes off the <rule> element itself — dispatch throttling knobs that
// live outside the condition/actionlist grammar, mirrored on the meta
// params a mgmt resource carries alongside its Res-specific fields. Absent
// attributes leave the current setting untouched, the same as "active".
func (r *Rule) configureMetaLocked(node engine.Node) {
	changed := false

	if s, ok := node.Attr("limit"); ok {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			r.meta.Limit = rate.Limit(f)
			changed = true
		}
	}
	if s, ok := node.Attr("burst"); ok {
		if n, err := strconv.Atoi(s); err == nil {
			r.meta.Burst = n
			changed = true
		}
	}
	if s, ok := node.Attr("sema"); ok {
		var names []string
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				names = append(names, part)
			}
		}
		r.meta.Sema = names
		changed = true
	}

	if !changed {
		return
	}

	if r.meta.Limit > 0 {
		r.limiter = rate.NewLimiter(r.meta.Limit, r.meta.Burst)
	} else {
		r.limiter = nil
	}

	r.semas = r.semas[:0]
	if r.actEngine.Semaphores != nil {
		for _, name := range r.meta.Sema {
			r.semas = append(r.semas, r.actEngine.Semaphores.GetOrCreate(name, 1))
		}
	}
}

func configureActions(node engine.Node, ctx *engine.ActionContext) ([]engine.Action, error) {
	children := node.ChildrenNamed("action")
	actions := make([]engine.Action, 0, len(children))
	for _, child := range children {
		kind, ok := child.Attr("type")
		if !ok {
			return nil, engine.NewConfigError("action: missing type attribute")
		}
		a, err := engine.NewAction(kind)
		if err != nil {
			return nil, err
		}
		if err := a.Configure(child, ctx); err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func parseActive(s string) bool {
	switch s {
	case "off", "false", "no":
		return false
	default:
		return true
	}
}

// Serialize writes the rule's current configuration back out as a <rule>
// element's contents.
func (r *Rule) Serialize(node engine.MutableNode) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node.SetAttr("id", r.ID)
	if !r.Active {
		node.SetAttr("active", "off")
	}
	if r.meta.Limit > 0 {
		node.SetAttr("limit", strconv.FormatFloat(float64(r.meta.Limit), 'g', -1, 64))
		node.SetAttr("burst", strconv.Itoa(r.meta.Burst))
	}
	if len(r.meta.Sema) > 0 {
		node.SetAttr("sema", strings.Join(r.meta.Sema, ","))
	}
	if r.condition != nil {
		cond := node.AddChild("condition")
		cond.SetAttr("type", r.condition.Kind())
		r.condition.Serialize(cond)
	}
	if len(r.trueActions) > 0 {
		serializeActionList(node, r.trueActions, false)
	}
	if len(r.falseActions) > 0 {
		serializeActionList(node, r.falseActions, true)
	}
}

func serializeActionList(node engine.MutableNode, actions []engine.Action, onFalse bool) {
	list := node.AddChild("actionlist")
	if onFalse {
		list.SetAttr("type", "on-false")
	}
	for _, a := range actions {
		child := list.AddChild("action")
		child.SetAttr("type", a.Kind())
		// Written here rather than by each action's own Serialize since
		// delay is common to every action kind via traits.Delayed; one
		// spot guarantees no kind forgets it.
		if d := a.Delay(); d != 0 {
			child.SetAttr("delay", duration.Format(d))
		}
		a.Serialize(child)
	}
}

// OnChange implements engine.ChangeListener: it re-evaluates the rule's
// condition and dispatches whichever action list corresponds to the edge
// observed. obj is accepted but unused — the original engine's Rule::onChange
// ignores its argument too, since evaluation always re-reads the whole
// condition tree rather than reacting to the specific object that changed.
func (r *Rule) OnChange(obj engine.Object) {
	r.mu.Lock()
	if !r.Active {
		r.mu.Unlock()
		return
	}
	cur := r.condition.Evaluate()
	prev := r.prev
	r.prev = cur

	var toRun []engine.Action
	switch {
	case cur && !prev:
		toRun = r.trueActions
	case !cur && prev:
		toRun = r.falseActions
	}
	limiter := r.limiter
	semas := r.semas
	r.mu.Unlock()

	if len(toRun) == 0 {
		return
	}
	if limiter != nil && !limiter.Allow() {
		if r.condEngine.Logf != nil {
			r.condEngine.Logf("rule %q: action dispatch rate-limited, edge dropped", r.ID)
		}
		return
	}

	for _, a := range toRun {
		r.dispatch(a, semas)
	}
}

// dispatch runs one action as its own cooperative task, independent of its
// siblings in the same action list. It acquires every named semaphore the
// rule's meta params list before running the action and releases them
// afterward, so rules sharing a sema name never run concurrently.
func (r *Rule) dispatch(a engine.Action, semas []semaphore.Semaphore) {
	r.tasks.Add(1)
	go func() {
		defer r.tasks.Done()
		for _, s := range semas {
			s.P(1)
		}
		defer func() {
			for _, s := range semas {
				s.V(1)
			}
		}()
		a.Run(r.actEngine, nil)
	}()
}

// Evaluate forces an evaluation without waiting for an external change
// notification, useful right after Configure to pick up the rule's initial
// state.
func (r *Rule) Evaluate() {
	r.OnChange(nil)
}

// Wait blocks until every in-flight action task dispatched by this rule has
// returned. Used by tests and by RuleServer on shutdown.
func (r *Rule) Wait() {
	r.tasks.Wait()
}

var _ engine.ChangeListener = (*Rule)(nil)
