/*
NAME
  buffer.go

DESCRIPTION
  buffer.go provides a small-size-optimized ordered sequence container used
  throughout the engine for transient per-block lists (neighbour MVs,
  candidate reference frames, partial coefficient runs) where an inline
  capacity covers the common case and only pathological inputs spill to the
  heap.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package inline provides a generic small-size-optimized ordered sequence
// container.
package inline

import "errors"

// ErrCapacityOverflow is returned when growth would overflow the maximum
// representable capacity.
var ErrCapacityOverflow = errors.New("inline: capacity overflow")

// maxGrowCapacity bounds how large the external backing slice may grow to
// before growth is refused as an overflow rather than honest growth.
const maxGrowCapacity = 1 << 30

// Capacity is implemented by phantom marker types that carry an inline
// capacity as a compile-time constant via the Cap method; Go generics have
// no direct const type parameters, so the capacity rides on a zero-value
// receiver instead. See Cap4, Cap8 below for ready-made markers.
type Capacity interface {
	Cap() int
}

// Cap4 is an inline-capacity marker for buffers of up to 4 elements, the
// common case for per-block neighbour lists.
type Cap4 struct{}

// Cap returns the marker's inline capacity.
func (Cap4) Cap() int { return 4 }

// Cap8 is an inline-capacity marker for buffers of up to 8 elements.
type Cap8 struct{}

// Cap returns the marker's inline capacity.
func (Cap8) Cap() int { return 8 }

// Cap2 is an inline-capacity marker for buffers of up to 2 elements, sized
// for the common bi-predictive MV pair (mv_l0, mv_l1).
type Cap2 struct{}

// Cap returns the marker's inline capacity.
func (Cap2) Cap() int { return 2 }

// Buffer is an ordered sequence of T with inline capacity C.Cap(). While the
// number of elements is at most that capacity, elements live in an inline
// array and no heap allocation occurs. On the first push past capacity,
// Buffer allocates an external slice of capacity 2*N, copies the inline
// elements across, and never shrinks back to inline; only Clear returns it
// to the inline state.
type Buffer[T any, C Capacity] struct {
	inline   [8]T // oversized fixed backing; only the marker's Cap() slots are addressable
	inlineN  int
	heap     []T
	isInline bool
}

// New returns a ready-to-use Buffer with inline capacity C.Cap(). C.Cap()
// must not exceed 8; larger inline capacities should use a plain slice
// instead.
func New[T any, C Capacity]() *Buffer[T, C] {
	return &Buffer[T, C]{isInline: true}
}

func (b *Buffer[T, C]) inlineCap() int {
	var c C
	n := c.Cap()
	if n > len(b.inline) {
		return len(b.inline)
	}
	return n
}

// Len returns the number of elements currently held.
func (b *Buffer[T, C]) Len() int {
	if b.isInline {
		return b.inlineN
	}
	return len(b.heap)
}

// IsInline reports whether the buffer is still using inline storage. It is
// false iff at least one overflow past the inline capacity has occurred
// since construction or since the last Clear.
func (b *Buffer[T, C]) IsInline() bool {
	return b.isInline
}

// At returns the element at index i. It panics on an out-of-range index,
// matching slice semantics.
func (b *Buffer[T, C]) At(i int) T {
	if b.isInline {
		return b.inline[i]
	}
	return b.heap[i]
}

// Push appends v to the end of the sequence, spilling to the heap on first
// overflow past the inline capacity.
func (b *Buffer[T, C]) Push(v T) error {
	icap := b.inlineCap()
	if b.isInline {
		if b.inlineN < icap {
			b.inline[b.inlineN] = v
			b.inlineN++
			return nil
		}
		// Overflow: transition to heap storage. The fresh allocation and
		// copy happen into a local before being assigned to b, so a panic
		// mid-move never leaves b half-migrated.
		next := make([]T, icap, grow(icap))
		copy(next, b.inline[:icap])
		next = append(next, v)
		b.heap = next
		b.isInline = false
		return nil
	}

	if len(b.heap) == cap(b.heap) {
		n, err := growCapacity(cap(b.heap))
		if err != nil {
			return err
		}
		grown := make([]T, len(b.heap), n)
		copy(grown, b.heap)
		b.heap = grown
	}
	b.heap = append(b.heap, v)
	return nil
}

// Pop removes and returns the last element. It panics if the buffer is
// empty.
func (b *Buffer[T, C]) Pop() T {
	if b.isInline {
		b.inlineN--
		return b.inline[b.inlineN]
	}
	n := len(b.heap) - 1
	v := b.heap[n]
	b.heap = b.heap[:n]
	return v
}

// Clear empties the buffer and releases any external storage, returning it
// to the inline state.
func (b *Buffer[T, C]) Clear() {
	b.inlineN = 0
	b.heap = nil
	b.isInline = true
}

// Slice returns a copy of the held elements in forward order.
func (b *Buffer[T, C]) Slice() []T {
	n := b.Len()
	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = b.At(i)
	}
	return out
}

func grow(n int) int {
	if n == 0 {
		return 1
	}
	return 2 * n
}

func growCapacity(cur int) (int, error) {
	if cur > maxGrowCapacity/2 {
		return 0, ErrCapacityOverflow
	}
	if cur == 0 {
		return 1, nil
	}
	return 2 * cur, nil
}
