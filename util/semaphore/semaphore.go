// Package semaphore contains a simple counting semaphore built from a
// buffered channel.
package semaphore

import "sync"

// Semaphore is a basic counting semaphore built on a buffered channel. The
// zero value (nil) is an unlimited semaphore whose P and V never block; use
// NewSemaphore for a bounded one.
type Semaphore chan struct{}

// NewSemaphore builds a new semaphore with the given size. A size of zero or
// less is treated as unlimited: P and V never block.
func NewSemaphore(size int) Semaphore {
	if size <= 0 {
		return nil
	}
	return make(Semaphore, size)
}

// P acquires n resources (locks/acquires/increments the semaphore). It
// blocks until a slot is available. A nil (unlimited) semaphore never
// blocks.
func (s Semaphore) P(n int) {
	if s == nil {
		return
	}
	var e struct{}
	for i := 0; i < n; i++ {
		s <- e
	}
}

// V releases n resources (unlocks/releases/decrements the semaphore). A nil
// (unlimited) semaphore is a no-op.
func (s Semaphore) V(n int) {
	if s == nil {
		return
	}
	for i := 0; i < n; i++ {
		<-s
	}
}

// Registry hands out named semaphores shared across independent callers —
// several rules naming the same sema in their meta params contend on the
// same underlying channel rather than each getting their own.
type Registry struct {
	mu   sync.Mutex
	sems map[string]Semaphore
}

// NewRegistry returns an empty semaphore registry.
func NewRegistry() *Registry {
	return &Registry{sems: make(map[string]Semaphore)}
}

// GetOrCreate returns the named semaphore, creating it with the given size
// on first use. Later calls for the same name ignore size and return the
// existing semaphore, since resizing a live semaphore has no sound
// definition.
func (r *Registry) GetOrCreate(name string, size int) Semaphore {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sems[name]; ok {
		return s
	}
	s := NewSemaphore(size)
	r.sems[name] = s
	return s
}
