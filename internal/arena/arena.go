// Package arena models the bump-allocated ownership region that a single
// lex+parse pass allocates its tokens, strings and AST nodes out of.
//
// The Go runtime already gives every heap value a stable address and frees
// it under GC control, so this is not a byte-slice bump allocator the way
// the C original is: it allocates ordinary Go values and keeps them alive
// through normal references, and only tracks allocation counts and bytes
// the way the C arena tracks block usage. Callers still thread one Arena
// through an entire parse and drop it as a unit, preserving the "one arena
// per parse" ownership story at the API level.
package arena

import "unsafe"

// Arena accounts for the allocations made during one lex+parse pass.
// The zero value is ready to use.
type Arena struct {
	count int
	bytes uintptr
}

// New returns a ready-to-use Arena.
func New() *Arena {
	return &Arena{}
}

// Alloc returns a zeroed *T, as arena_alloc_zero does in the original.
// Go zero-values every allocation already, so there is no separate
// non-zeroing variant.
func Alloc[T any](a *Arena) *T {
	v := new(T)
	a.count++
	a.bytes += unsafe.Sizeof(*v)
	return v
}

// AllocSlice returns a zeroed slice of n T values, tracked the same way
// a single oversized block would be tracked in the C arena.
func AllocSlice[T any](a *Arena, n int) []T {
	s := make([]T, n)
	a.count++
	var zero T
	a.bytes += unsafe.Sizeof(zero) * uintptr(n)
	return s
}

// Stats reports the number of allocations and approximate bytes accounted
// for since the last Reset.
func (a *Arena) Stats() (count int, bytes uintptr) {
	return a.count, a.bytes
}

// Reset clears the accounting counters. It does not and cannot free
// already-allocated Go values still referenced elsewhere; callers that
// want to actually reclaim memory must drop every reference to the
// arena's output, same as dropping the arena in the original invalidates
// every AST reference.
func (a *Arena) Reset() {
	a.count = 0
	a.bytes = 0
}

// Make allocates a T through Alloc and copies v into it, returning the
// arena-owned pointer. This is the call site every node constructor in
// the lexer and parser goes through instead of a bare composite-literal
// `&T{...}`, so the arena's accounting actually reflects the tree it
// claims to own.
func Make[T any](a *Arena, v T) *T {
	p := Alloc[T](a)
	*p = v
	return p
}

// MakeSlice commits an already-built Go slice into arena-accounted
// memory, for the common case where a node's children are gathered with
// ordinary append and then handed off to their owner at the point a
// production finishes. A nil items returns nil, matching the zero value
// callers already expect for "no children".
func MakeSlice[T any](a *Arena, items []T) []T {
	if items == nil {
		return nil
	}
	s := AllocSlice[T](a, len(items))
	copy(s, items)
	return s
}
