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

// Package dynamic implements ArrOk, the tagged-dynamic tensor: a sum
// type over dtype.Tag, each variant wrapping a tensor.ArbArray[T] of the
// matching physical representation (spec.md §3.2/§4.1).
//
// The source implementation dispatches over the tag with a
// macro-generated match expression. Go has no macros, so the same
// "enumerate the tag set once, dispatch uniformly" shape is expressed
// with a small internal interface (arrLike) that every typed[T] wrapper
// satisfies; see dispatch_gen.go for the per-tag constructors, which
// play the role of the macro's generated arms (spec.md §9, "Replacing
// runtime-reflection dispatch").
package dynamic

import (
	"github.com/arborql/arbor/dtype"
	"github.com/arborql/arbor/tensor"
)

// arrLike is satisfied by typed[T] for every element type T in the
// closed dtype set. It carries exactly the operations that do not need
// to know T: storage-mode transitions and shape/length queries.
type arrLike interface {
	mode() tensor.Mode
	shp() tensor.Shape
	ln() int
	view() arrLike
	viewMut() (arrLike, bool)
	owned() arrLike
}

// typed[T] adapts a *tensor.ArbArray[T] to arrLike. It is never exposed
// outside this package; callers downcast through As[T] or Into[T].
type typed[T any] struct {
	a *tensor.ArbArray[T]
}

func (t typed[T]) mode() tensor.Mode               { return t.a.Mode() }
func (t typed[T]) shp() tensor.Shape                { return t.a.Shape() }
func (t typed[T]) ln() int                          { return t.a.Len() }
func (t typed[T]) view() arrLike                    { return typed[T]{t.a.AsView()} }
func (t typed[T]) owned() arrLike                   { return typed[T]{t.a.ToOwned()} }
func (t typed[T]) viewMut() (arrLike, bool) {
	v, ok := t.a.AsViewMut()
	if !ok {
		return nil, false
	}
	return typed[T]{v}, true
}

// ArrOk is the tagged dynamic tensor described by spec.md §3.2/§3.3.
type ArrOk struct {
	tag dtype.Tag
	v   arrLike
}

func wrap[T any](tag dtype.Tag, a *tensor.ArbArray[T]) ArrOk {
	return ArrOk{tag: tag, v: typed[T]{a}}
}

// Tag reports the dynamic element-type tag.
func (a ArrOk) Tag() dtype.Tag { return a.tag }

// Mode reports the current storage variant (View/ViewMut/Owned).
func (a ArrOk) Mode() tensor.Mode { return a.v.mode() }

// Shape reports the tensor's per-axis extents.
func (a ArrOk) Shape() tensor.Shape { return a.v.shp() }

// Len reports the total element count.
func (a ArrOk) Len() int { return a.v.ln() }

// IsValid reports whether a holds an initialized variant.
func (a ArrOk) IsValid() bool { return a.v != nil }

// View returns a borrowed-view ArrOk over the same buffer. Always
// succeeds (spec.md §4.1).
func (a ArrOk) View() ArrOk {
	return ArrOk{tag: a.tag, v: a.v.view()}
}

// ViewMut returns a mutable-view ArrOk over the same buffer, or false if
// the receiver is itself an immutable View (spec.md §4.1).
func (a ArrOk) ViewMut() (ArrOk, bool) {
	v, ok := a.v.viewMut()
	if !ok {
		return ArrOk{}, false
	}
	return ArrOk{tag: a.tag, v: v}, true
}

// ToOwned returns an Owned ArrOk, deep-copying if the receiver was a
// View/ViewMut (spec.md §4.1).
func (a ArrOk) ToOwned() ArrOk {
	return ArrOk{tag: a.tag, v: a.v.owned()}
}

// As attempts a safe downcast to *tensor.ArbArray[T]. It returns
// (nil, false) when the dynamic tag's physical representation is not T,
// rather than panicking, so callers that handle a subset of tags can
// probe before committing (spec.md §4.1's "safe dynamic dispatch").
func As[T any](a ArrOk) (*tensor.ArbArray[T], bool) {
	t, ok := a.v.(typed[T])
	if !ok {
		return nil, false
	}
	return t.a, true
}

// Into is the unsafe reinterpret primitive: the caller must have
// already verified a.Tag() matches T's tag exactly (e.g. via a
// Dispatch callback keyed on the tag). Passing a mismatched T panics,
// per spec.md §4.1 ("Precondition (caller-verified) ... else
// undefined") and §7 ("Panics are reserved for broken invariants").
func Into[T any](a ArrOk) *tensor.ArbArray[T] {
	t, ok := a.v.(typed[T])
	if !ok {
		panic("dynamic: into_dtype precondition violated: tag does not match requested type")
	}
	return t.a
}
