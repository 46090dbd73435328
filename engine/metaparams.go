package engine

import (
	"golang.org/x/time/rate"
)

// MetaParams holds the per-rule knobs that apply to a rule's action
// dispatch regardless of which actions it runs, mirrored on the
// MetaParams a mgmt resource carries alongside its Res-specific fields.
// rule.Rule reads them from the optional "limit", "burst", and "sema"
// attributes of a <rule> element.
type MetaParams struct {
	// Limit caps the rate, in events per second, at which this rule is
	// allowed to re-run its action lists. Zero means unlimited.
	Limit rate.Limit

	// Burst is the maximum number of action-list dispatches the limiter
	// allows in a single burst above the steady Limit rate.
	Burst int

	// Sema names a set of counting semaphores (shared across rules by
	// name) that this rule's action dispatch must acquire before running,
	// and release afterward. Empty means no limiting.
	Sema []string
}

// DefaultMetaParams returns the zero-value MetaParams: no rate limit, no
// semaphore.
func DefaultMetaParams() MetaParams {
	return MetaParams{}
}

// Cmp returns true if the two MetaParams are equivalent.
func (obj *MetaParams) Cmp(meta *MetaParams) bool {
	if obj.Limit != meta.Limit {
		return false
	}
	if obj.Burst != meta.Burst {
		return false
	}
	if len(obj.Sema) != len(meta.Sema) {
		return false
	}
	for i, s := range obj.Sema {
		if meta.Sema[i] != s {
			return false
		}
	}
	return true
}

// Copy returns a distinct copy of obj.
func (obj *MetaParams) Copy() *MetaParams {
	sema := make([]string, len(obj.Sema))
	copy(sema, obj.Sema)
	return &MetaParams{
		Limit: obj.Limit,
		Burst: obj.Burst,
		Sema:  sema,
	}
}
