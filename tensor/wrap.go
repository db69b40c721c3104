// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package tensor implements ArbArray, the view/mut-view/owned envelope
// around a dense n-dimensional array of a single statically-known
// element type (spec.md §3.2), together with the fold/apply/window
// helpers the per-element kernel families build on (axis.go); these are
// plain functions over ArbArray, with no separate wrapper type.
package tensor

import "fmt"

// Mode distinguishes the three storage variants of an ArbArray.
type Mode uint8

const (
	// View is a borrowed, immutable view into someone else's buffer.
	View Mode = iota
	// ViewMut is a borrowed, mutable view. At most one ViewMut exists
	// per underlying buffer at any time (spec.md §3.2 invariant);
	// arbor relies on Go's ownership discipline (a ViewMut is only ever
	// handed to a single consumer) rather than runtime enforcement.
	ViewMut
	// Owned is an exclusively owned allocation.
	Owned
)

func (m Mode) String() string {
	switch m {
	case View:
		return "View"
	case ViewMut:
		return "ViewMut"
	case Owned:
		return "Owned"
	default:
		return "Mode(?)"
	}
}

// Shape is the per-axis extent of an n-dimensional array, outermost
// axis first.
type Shape []int

// Len returns the total element count implied by s.
func (s Shape) Len() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

func (s Shape) String() string {
	return fmt.Sprintf("%v", []int(s))
}

// ArbArray[T] is the view/mut-view/owned envelope over a dense array of
// T. Data always holds the full backing slice; Shape and Strides
// describe how it is interpreted. Strides are in elements, not bytes,
// matching the row-major (C) default. The isFortran flag is carried
// across View/ViewMut/ToOwned, but the ND helpers (Fold, FoldPar, Apply,
// ApplyPar) do not consult it: they always allocate C-order output.
type ArbArray[T any] struct {
	data      []T
	shape     Shape
	strides   []int
	mode      Mode
	isFortran bool
}

// NewOwned allocates a fresh, exclusively-owned ArbArray with the given
// shape, C-order strides, and zero-valued elements.
func NewOwned[T any](shape Shape) *ArbArray[T] {
	n := shape.Len()
	return &ArbArray[T]{
		data:    make([]T, n),
		shape:   append(Shape(nil), shape...),
		strides: cStrides(shape),
		mode:    Owned,
	}
}

// FromSlice wraps an existing slice as an Owned 1-D ArbArray without
// copying. Used by Expr constructors that receive a freshly allocated
// slice from a kernel.
func FromSlice[T any](data []T) *ArbArray[T] {
	return &ArbArray[T]{
		data:    data,
		shape:   Shape{len(data)},
		strides: []int{1},
		mode:    Owned,
	}
}

// ViewOf wraps data as a borrowed View with the given shape/strides. The
// caller is responsible for keeping the backing array alive for at least
// as long as the returned ArbArray is reachable — in arbor this is the
// job of the anchor list on the Expr that produced the view
// (spec.md §3.4).
func ViewOf[T any](data []T, shape Shape, strides []int) *ArbArray[T] {
	return &ArbArray[T]{data: data, shape: shape, strides: strides, mode: View}
}

func cStrides(shape Shape) []int {
	strides := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}
	return strides
}

// Mode reports the current storage variant.
func (a *ArbArray[T]) Mode() Mode { return a.mode }

// Shape reports the array's per-axis extents.
func (a *ArbArray[T]) Shape() Shape { return a.shape }

// Len reports the total element count (product of Shape).
func (a *ArbArray[T]) Len() int { return len(a.data) }

// Raw exposes the backing slice in its current (possibly strided)
// layout. Kernels index through Strides rather than assuming
// contiguity.
func (a *ArbArray[T]) Raw() []T { return a.data }

// Strides reports the per-axis element stride.
func (a *ArbArray[T]) Strides() []int { return a.strides }

// IsFortran reports whether the array's dominant stride ordering is
// column-major.
func (a *ArbArray[T]) IsFortran() bool { return a.isFortran }

// AsView returns a borrowed immutable view over the same buffer. Always
// succeeds, per spec.md §4.1 ("view() -> View: always succeeds").
func (a *ArbArray[T]) AsView() *ArbArray[T] {
	return &ArbArray[T]{data: a.data, shape: a.shape, strides: a.strides, mode: View, isFortran: a.isFortran}
}

// AsViewMut returns a borrowed mutable view over the same buffer. Only
// valid when the receiver is already ViewMut or Owned (spec.md §4.1).
func (a *ArbArray[T]) AsViewMut() (*ArbArray[T], bool) {
	if a.mode != ViewMut && a.mode != Owned {
		return nil, false
	}
	return &ArbArray[T]{data: a.data, shape: a.shape, strides: a.strides, mode: ViewMut, isFortran: a.isFortran}, true
}

// ToOwned returns an Owned ArbArray, deep-copying the backing buffer
// when the receiver is a View or ViewMut (spec.md §4.1).
func (a *ArbArray[T]) ToOwned() *ArbArray[T] {
	if a.mode == Owned {
		return a
	}
	cp := make([]T, len(a.data))
	copy(cp, a.data)
	return &ArbArray[T]{
		data:      cp,
		shape:     append(Shape(nil), a.shape...),
		strides:   cStrides(a.shape),
		mode:      Owned,
		isFortran: false,
	}
}

// Reshape returns a new ArbArray sharing the same backing data under a
// new shape. Only valid when newShape.Len() == a.Len(); callers
// (ND wrappers) verify this before calling.
func (a *ArbArray[T]) Reshape(newShape Shape) *ArbArray[T] {
	return &ArbArray[T]{
		data:      a.data,
		shape:     append(Shape(nil), newShape...),
		strides:   cStrides(newShape),
		mode:      a.mode,
		isFortran: a.isFortran,
	}
}

// Lane1D returns the backing slice reinterpreted as a flat 1-D slice,
// assuming C-contiguous layout. Most kernels operate lane-at-a-time over
// an already-selected 1-D slice; ND dispatch happens in the kernel
// package's axis-iteration helpers.
func (a *ArbArray[T]) Lane1D() []T { return a.data }
