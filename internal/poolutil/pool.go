// Package poolutil provides a generic sync.Pool wrapper and the specific
// scratch-buffer pool the proxy's readiness loop recycles on every read
// (spec §4.5's "temporary 4 KiB buffer").
package poolutil

import "sync"

// Pool is a type-safe wrapper around sync.Pool.
type Pool[T any] struct {
	internal sync.Pool
}

// New creates a Pool whose items are produced by newFn when empty.
func New[T any](newFn func() T) *Pool[T] {
	return &Pool[T]{
		internal: sync.Pool{
			New: func() any {
				return newFn()
			},
		},
	}
}

// Get retrieves an item from the pool, creating one if none is idle.
func (p *Pool[T]) Get() T {
	return p.internal.Get().(T)
}

// Put returns an item to the pool for reuse.
func (p *Pool[T]) Put(item T) {
	p.internal.Put(item)
}

// RecvScratchSize is the size of the proxy's per-readiness-iteration recv
// buffer, per spec §4.5.
const RecvScratchSize = 4096

// RecvScratch is a process-wide pool of 4 KiB receive buffers shared across
// every connection the event loop services, avoiding one allocation per
// readable socket per iteration.
var RecvScratch = New(func() *[RecvScratchSize]byte {
	return &[RecvScratchSize]byte{}
})
