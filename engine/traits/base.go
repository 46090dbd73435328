// Package traits contains small mixins shared by condition and action node
// implementations, so each kind doesn't have to re-implement the bookkeeping
// methods required by the engine.Condition and engine.Action interfaces.
package traits

// Kinded contains a general implementation of the properties and methods
// needed to support a node's kind (its type tag, e.g. "and" or "set-value").
type Kinded struct {
	kind string
}

// Kind returns the string representation for the kind this node is.
func (obj *Kinded) Kind() string {
	return obj.kind
}

// SetKind sets the kind string for this node. It is normally only called by
// the node's own factory.
func (obj *Kinded) SetKind(kind string) {
	obj.kind = kind
}

// Delayed contains the shared pre-delay that every action in the catalog
// carries: the number of seconds to sleep before the action's side effect
// runs.
type Delayed struct {
	delay int
}

// Delay returns the configured pre-delay in seconds, satisfying the
// engine.Action interface.
func (obj *Delayed) Delay() int {
	return obj.delay
}

// SetDelay sets the pre-delay in seconds.
func (obj *Delayed) SetDelay(delay int) {
	obj.delay = delay
}
