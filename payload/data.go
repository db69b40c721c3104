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

// Package payload implements Data, the node payload an Expr's base
// slot holds once evaluated (spec.md §3.3): a dynamic tensor, a vector
// of them, a shared tensor, a deferred selector lookup, or an OLS
// result.
package payload

import (
	"github.com/arborql/arbor/dynamic"
	"github.com/arborql/arbor/kernel"
	"github.com/arborql/arbor/selector"
	"github.com/arborql/arbor/tensor"
)

// Kind discriminates Data's variants.
type Kind uint8

const (
	// KArr holds a single dynamic tensor (Data::Arr).
	KArr Kind = iota
	// KArrVec holds a vector of dynamic tensors, e.g. SVD's multiple
	// outputs (Data::ArrVec).
	KArrVec
	// KArcArr holds a tensor shared between multiple Exprs
	// (Data::ArcArr). Go's garbage collector makes the "Arc" part
	// implicit: the *dynamic.ArrOk pointer is simply referenced from
	// more than one Data value.
	KArcArr
	// KContext holds a deferred selector lookup, resolved against a
	// Context at eval time (Data::Context).
	KContext
	// KOlsRes holds the result of a least-squares solve (Data::OlsRes).
	KOlsRes
)

// Data is the tagged union described by spec.md §3.3.
type Data struct {
	Kind   Kind
	Arr    dynamic.ArrOk
	ArrVec []dynamic.ArrOk
	ArcArr *dynamic.ArrOk
	Ctx    selector.Selector
	Ols    *kernel.OlsResult
}

// FromArr wraps a single dynamic tensor.
func FromArr(a dynamic.ArrOk) Data { return Data{Kind: KArr, Arr: a} }

// FromArrVec wraps a vector of dynamic tensors.
func FromArrVec(v []dynamic.ArrOk) Data { return Data{Kind: KArrVec, ArrVec: v} }

// FromShared wraps a tensor shared between multiple Exprs.
func FromShared(a *dynamic.ArrOk) Data { return Data{Kind: KArcArr, ArcArr: a} }

// FromSelector wraps a deferred lookup into an enclosing DataDict.
func FromSelector(sel selector.Selector) Data { return Data{Kind: KContext, Ctx: sel} }

// FromOls wraps a least-squares solve result.
func FromOls(r *kernel.OlsResult) Data { return Data{Kind: KOlsRes, Ols: r} }

// IsOwned reports whether evaluating this payload is known to have
// produced an exclusively-owned result (spec.md §3.4's owned tri-state,
// collapsed to a bool here since Data only appears post-resolution; the
// tri-state itself lives on Expr, see expr.OwnedState).
func (d Data) IsOwned() bool {
	switch d.Kind {
	case KArr:
		return d.Arr.Mode() == tensor.Owned
	case KArrVec:
		for _, a := range d.ArrVec {
			if a.Mode() != tensor.Owned {
				return false
			}
		}
		return true
	case KArcArr:
		// shared by construction: another Expr may hold the same
		// pointer, so this Expr does not exclusively own the buffer.
		return false
	case KOlsRes:
		return true
	default:
		return false
	}
}

// AsArr returns the single dynamic tensor, panicking if d is not a
// KArr/KArcArr payload — a broken-invariant case per spec.md §7 ("a
// Vec payload accessed as a scalar view").
func (d Data) AsArr() dynamic.ArrOk {
	switch d.Kind {
	case KArr:
		return d.Arr
	case KArcArr:
		return *d.ArcArr
	default:
		panic("payload: AsArr called on a non-scalar Data variant")
	}
}
