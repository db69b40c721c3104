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

package dynamic

import (
	"fmt"

	"github.com/arborql/arbor/dtype"
	"github.com/arborql/arbor/internal/arberr"
	"github.com/arborql/arbor/tensor"
)

// The From* constructors enumerate the closed dtype set once, the way a
// macro would generate one match arm per tag. Every tag in dtype.All()
// has exactly one constructor here.

func FromBool(a *tensor.ArbArray[bool]) ArrOk { return wrap(dtype.Bool, a) }
func FromF32(a *tensor.ArbArray[float32]) ArrOk { return wrap(dtype.F32, a) }
func FromF64(a *tensor.ArbArray[float64]) ArrOk { return wrap(dtype.F64, a) }
func FromI32(a *tensor.ArbArray[int32]) ArrOk { return wrap(dtype.I32, a) }
func FromI64(a *tensor.ArbArray[int64]) ArrOk { return wrap(dtype.I64, a) }
func FromUsize(a *tensor.ArbArray[uint64]) ArrOk { return wrap(dtype.Usize, a) }
func FromString(a *tensor.ArbArray[string]) ArrOk { return wrap(dtype.String, a) }
func FromStr(a *tensor.ArbArray[string]) ArrOk { return wrap(dtype.Str, a) }
func FromObject(a *tensor.ArbArray[any]) ArrOk { return wrap(dtype.Object, a) }
func FromDateTime(a *tensor.ArbArray[dtype.DateTime]) ArrOk { return wrap(dtype.DateTime, a) }
func FromTimeDelta(a *tensor.ArbArray[dtype.TimeDelta]) ArrOk { return wrap(dtype.TimeDelta, a) }
func FromOptUsize(a *tensor.ArbArray[dtype.OptUsize]) ArrOk { return wrap(dtype.OptUsize, a) }
func FromVecUsize(a *tensor.ArbArray[[]uint64]) ArrOk { return wrap(dtype.VecUsize, a) }
func FromOptF32(a *tensor.ArbArray[dtype.OF32]) ArrOk { return wrap(dtype.OptF32, a) }
func FromOptF64(a *tensor.ArbArray[dtype.OF64]) ArrOk { return wrap(dtype.OptF64, a) }
func FromOptI32(a *tensor.ArbArray[dtype.OI32]) ArrOk { return wrap(dtype.OptI32, a) }
func FromOptI64(a *tensor.ArbArray[dtype.OI64]) ArrOk { return wrap(dtype.OptI64, a) }

// NumericVisitor is the "restricted arm" macro from spec.md §4.1: a
// caller that only handles numeric tags implements this interface and
// DispatchNumeric rejects everything else with dtype mismatch instead of
// forcing the caller to enumerate string/object/time arms it has no
// meaningful behavior for.
type NumericVisitor[R any] interface {
	VisitF32(*tensor.ArbArray[float32]) R
	VisitF64(*tensor.ArbArray[float64]) R
	VisitI32(*tensor.ArbArray[int32]) R
	VisitI64(*tensor.ArbArray[int64]) R
	VisitUsize(*tensor.ArbArray[uint64]) R
}

// DispatchNumeric forwards a to the matching Visit method of v, or
// returns an error if a's tag is not one of the five numeric tags.
func DispatchNumeric[R any](a ArrOk, v NumericVisitor[R]) (R, error) {
	var zero R
	switch a.Tag() {
	case dtype.F32:
		return v.VisitF32(Into[float32](a)), nil
	case dtype.F64:
		return v.VisitF64(Into[float64](a)), nil
	case dtype.I32:
		return v.VisitI32(Into[int32](a)), nil
	case dtype.I64:
		return v.VisitI64(Into[int64](a)), nil
	case dtype.Usize:
		return v.VisitUsize(Into[uint64](a)), nil
	default:
		return zero, fmt.Errorf("%w: expected a numeric tag, got %s", arberr.ErrDtypeMismatch, a.Tag())
	}
}
