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

// Package dtype enumerates the closed set of element types that an
// ArbArray/ArrOk may carry, along with their physical representations
// and the two total orders (NaN-last ascending, NaN-first descending)
// used by sorting, ranking, and argsort kernels.
package dtype

import "fmt"

// Tag identifies one member of the fixed, compile-time-closed set of
// element types. New tags are never added dynamically; dispatch over
// Tag is exhaustive in every switch that matters (see the From*
// constructors in dynamic/dispatch_gen.go).
type Tag uint8

const (
	Bool Tag = iota
	F32
	F64
	I32
	I64
	Usize
	String
	Str // borrowed string view, never owns its bytes
	Object
	DateTime
	TimeDelta
	OptUsize
	VecUsize
	OptF32
	OptF64
	OptI32
	OptI64
	ntags
)

func (t Tag) String() string {
	switch t {
	case Bool:
		return "Bool"
	case F32:
		return "F32"
	case F64:
		return "F64"
	case I32:
		return "I32"
	case I64:
		return "I64"
	case Usize:
		return "Usize"
	case String:
		return "String"
	case Str:
		return "Str"
	case Object:
		return "Object"
	case DateTime:
		return "DateTime"
	case TimeDelta:
		return "TimeDelta"
	case OptUsize:
		return "OptUsize"
	case VecUsize:
		return "VecUsize"
	case OptF32:
		return "OptF32"
	case OptF64:
		return "OptF64"
	case OptI32:
		return "OptI32"
	case OptI64:
		return "OptI64"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

// Valid reports whether t is a member of the closed tag set.
func (t Tag) Valid() bool { return t < ntags }

// Numeric reports whether t's physical representation supports
// arithmetic (the aggregation/map/pairwise/rolling kernel families).
func (t Tag) Numeric() bool {
	switch t {
	case F32, F64, I32, I64, Usize, OptF32, OptF64, OptI32, OptI64:
		return true
	default:
		return false
	}
}

// Floating reports whether t admits a NaN sentinel natively.
func (t Tag) Floating() bool {
	switch t {
	case F32, F64, OptF32, OptF64:
		return true
	default:
		return false
	}
}

// HasNaN reports whether the type has a native "missing" representation
// (float NaN, or the DateTime/TimeDelta empty sentinel, or an Opt* None).
// Plain integer tags (I32, I64, Usize) do not and require an explicit
// fill value wherever the spec calls for one (shift, fillna, ...).
func (t Tag) HasNaN() bool {
	switch t {
	case F32, F64, DateTime, TimeDelta, OptUsize, OptF32, OptF64, OptI32, OptI64:
		return true
	default:
		return false
	}
}

// All enumerates every tag in the closed set, in declaration order.
// The From* constructors and dynamic.DispatchNumeric enumerate their
// arms by hand over this same closed set (dynamic/dispatch_gen.go),
// standing in for what a macro would otherwise generate.
func All() []Tag {
	out := make([]Tag, 0, int(ntags))
	for i := Tag(0); i < ntags; i++ {
		out = append(out, i)
	}
	return out
}
