// Package arena implements the allocation region that a parsed Program and
// an interpreter session each hold. No caller allocates through it: AST
// nodes, environments and values are ordinary Go allocations reclaimed by
// the garbage collector, so an Arena's Count stays at zero.
//
// The teacher codebase leans on sync.Pool for its hot value types
// (internal/interp/runtime/pool.go) to cut GC pressure in tight loops;
// Arena generalizes that same "stop allocating one object at a time"
// idea into the single owning region the language spec calls for, rather
// than a pool of reusable-but-still-individually-freed objects.
package arena

import "sync/atomic"

// Arena counts the values allocated through Alloc; each pointer Alloc
// returns is an ordinary Go allocation.
// Arena is not safe for concurrent use — the language model is
// single-threaded per session (see spec §5).
type Arena struct {
	slabs [][]byte
	count atomic.Int64
}

// New creates an empty Arena.
func New() *Arena {
	return &Arena{}
}

// Count returns the number of values allocated from this arena so far.
// Used for diagnostics and tests, not for correctness.
func (a *Arena) Count() int64 {
	return a.count.Load()
}

// Alloc allocates a T from the arena and returns a pointer to it. Go's
// own allocator backs the memory (there is no real bump pointer over raw
// bytes here — that would require unsafe casts for no benefit in a
// garbage-collected host language); Alloc only increments Count, and the
// garbage collector reclaims the value like any other allocation.
func Alloc[T any](a *Arena) *T {
	a.count.Add(1)
	return new(T)
}
