package engine

import (
	"sync"

	"github.com/iancoleman/strcase"
)

// Action is the common interface every node in an action list implements.
// Unlike Condition, an Action's Run is expected to run as a cooperative
// task: it may sleep (for its configured delay, or for a DimRamp/CycleOnOff
// step interval) and must check stop between sleeps so whoever holds the
// stop channel can cancel an in-flight action. rule.Rule dispatches every
// action with a nil stop channel, so actions it starts are not cancelled.
type Action interface {
	// Kind returns the action's type tag, e.g. "set-value" or "dim-up".
	Kind() string

	// Delay returns the configured pre-delay, in seconds, that Run waits
	// out (interruptibly) before performing its effect.
	Delay() int

	// Configure parses node's attributes into the action's fields,
	// resolving any object reference against ctx.Objects.
	Configure(node Node, ctx *ActionContext) error

	// Serialize writes the action's current configuration back out.
	Serialize(node MutableNode)

	// Run executes the action's effect. It must return promptly after
	// stop is closed, leaving no side effects in flight. Errors are
	// reported through ctx.Logf as RuntimeGatewayError rather than
	// returned, since an action list's later entries must still run.
	Run(ctx *ActionContext, stop <-chan struct{})
}

// ActionFactory builds a zero-value instance of one action kind.
type ActionFactory func() Action

var (
	actionMu       sync.RWMutex
	actionRegistry = make(map[string]ActionFactory)
)

// RegisterAction adds an action kind to the registry.
func RegisterAction(kind string, fn ActionFactory) {
	actionMu.Lock()
	defer actionMu.Unlock()
	if fn == nil {
		panic("engine: RegisterAction with nil factory for " + kind)
	}
	if _, exists := actionRegistry[kind]; exists {
		panic("engine: RegisterAction called twice for " + kind)
	}
	actionRegistry[kind] = fn
}

// NewAction builds a fresh, unconfigured Action for kind, normalized to
// kebab-case before lookup (see NewCondition). It returns a ConfigError if
// kind is not registered under either spelling.
func NewAction(kind string) (Action, error) {
	actionMu.RLock()
	fn, ok := actionRegistry[kind]
	if !ok {
		fn, ok = actionRegistry[strcase.ToKebab(kind)]
	}
	actionMu.RUnlock()
	if !ok {
		return nil, NewConfigError("unknown action type: %q", kind)
	}
	a := fn()
	if k, ok := a.(interface{ SetKind(string) }); ok {
		k.SetKind(kind)
	}
	return a, nil
}

// RegisteredActions returns the currently registered action type tags.
func RegisteredActions() []string {
	actionMu.RLock()
	defer actionMu.RUnlock()
	out := make([]string, 0, len(actionRegistry))
	for k := range actionRegistry {
		out = append(out, k)
	}
	return out
}
