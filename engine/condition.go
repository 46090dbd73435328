package engine

import (
	"sync"

	"github.com/iancoleman/strcase"
)

// Condition is the common interface every node in a condition tree
// implements: the leaves (object compare, object source compare, timer,
// time counter, external script) and the combinators (and, or, not). A
// Rule evaluates its root Condition synchronously, on whatever goroutine
// triggered re-evaluation (an object's change notification, or a timer
// firing), which is why Evaluate takes no arguments and must not block.
type Condition interface {
	// Kind returns the condition's type tag, e.g. "and" or "object".
	Kind() string

	// Evaluate returns the condition's current truth value. It must be
	// non-blocking, and it is side-effect free for every kind except
	// TimeCounter, which updates its accumulated counter and reschedules
	// its wakeup on each evaluation.
	Evaluate() bool

	// Configure parses node's attributes and children into the
	// condition's fields, resolving any object references against
	// ctx.Objects, and subscribes to whatever it needs to be notified of
	// changes through cl. Combinators recursively configure their
	// children with the same ctx and cl.
	Configure(node Node, ctx *ConditionContext, cl ChangeListener) error

	// Serialize writes the condition's current configuration back out,
	// the inverse of Configure.
	Serialize(node MutableNode)
}

// ConditionFactory builds a zero-value instance of one condition kind. Each
// condition implementation registers one of these under its type tag in
// init(), the same self-registration pattern resource kinds use.
type ConditionFactory func() Condition

var (
	conditionMu       sync.RWMutex
	conditionRegistry = make(map[string]ConditionFactory)
)

// RegisterCondition adds a condition kind to the registry. It panics if
// kind is already registered or the factory is nil, since that can only
// happen from a programming mistake at init time.
func RegisterCondition(kind string, fn ConditionFactory) {
	conditionMu.Lock()
	defer conditionMu.Unlock()
	if fn == nil {
		panic("engine: RegisterCondition with nil factory for " + kind)
	}
	if _, exists := conditionRegistry[kind]; exists {
		panic("engine: RegisterCondition called twice for " + kind)
	}
	conditionRegistry[kind] = fn
}

// NewCondition builds a fresh, unconfigured Condition for kind. kind is
// normalized to kebab-case before lookup (strcase.ToKebab), so a
// hand-edited document that spells a type attribute "ObjectSrc" or
// "object_src" still resolves to the registered "object-src" kind. It
// returns a ConfigError if kind is not registered under either spelling.
func NewCondition(kind string) (Condition, error) {
	conditionMu.RLock()
	fn, ok := conditionRegistry[kind]
	if !ok {
		fn, ok = conditionRegistry[strcase.ToKebab(kind)]
	}
	conditionMu.RUnlock()
	if !ok {
		return nil, NewConfigError("unknown condition type: %q", kind)
	}
	c := fn()
	if k, ok := c.(interface{ SetKind(string) }); ok {
		k.SetKind(kind)
	}
	return c, nil
}

// RegisteredConditions returns the currently registered condition type tags,
// for diagnostics and CLI introspection.
func RegisteredConditions() []string {
	conditionMu.RLock()
	defer conditionMu.RUnlock()
	out := make([]string, 0, len(conditionRegistry))
	for k := range conditionRegistry {
		out = append(out, k)
	}
	return out
}
