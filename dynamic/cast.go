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

// numeric is the set of physical Go types castNumeric knows how to
// convert between.
type numeric interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint64
}

func castNumericSlice[S, D numeric](src []S) []D {
	out := make([]D, len(src))
	for i, v := range src {
		out[i] = D(v)
	}
	return out
}

// Cast elementwise-converts a to the target tag (spec.md §4.1). Casts
// between the five numeric tags (and Bool, treated as 0/1) go through
// castNumericSlice. DateTime<->integer casts require unit to be
// supplied (the unit the integer side is expressed in); it is ignored
// for all other conversions. Casting a tag to itself is the identity
// and returns a itself (not a copy), matching "identity when tags
// already match".
func (a ArrOk) Cast(target dtype.Tag, unit dtype.Unit) (ArrOk, error) {
	if a.Tag() == target {
		return a, nil
	}
	if a.Tag() == dtype.DateTime && isIntTag(target) {
		src := Into[dtype.DateTime](a).Lane1D()
		out := make([]int64, len(src))
		for i, d := range src {
			out[i] = d.ToExternal(unit)
		}
		return fromIntTag(target, out)
	}
	if target == dtype.DateTime && isIntTag(a.Tag()) {
		vals, err := toInt64(a)
		if err != nil {
			return ArrOk{}, err
		}
		out := make([]dtype.DateTime, len(vals))
		for i, v := range vals {
			out[i] = dtype.FromExternal(v, unit)
		}
		return FromDateTime(tensor.FromSlice(out)), nil
	}
	if !a.Tag().Numeric() && a.Tag() != dtype.Bool {
		return ArrOk{}, fmt.Errorf("%w: cannot cast %s to %s", arberr.ErrDtypeMismatch, a.Tag(), target)
	}
	if !target.Numeric() && target != dtype.Bool {
		return ArrOk{}, fmt.Errorf("%w: cannot cast %s to %s", arberr.ErrDtypeMismatch, a.Tag(), target)
	}
	f64, err := toFloat64(a)
	if err != nil {
		return ArrOk{}, err
	}
	switch target {
	case dtype.F32:
		return FromF32(tensor.FromSlice(castNumericSlice[float64, float32](f64))), nil
	case dtype.F64:
		return FromF64(tensor.FromSlice(f64)), nil
	case dtype.I32:
		return FromI32(tensor.FromSlice(castNumericSlice[float64, int32](f64))), nil
	case dtype.I64:
		return FromI64(tensor.FromSlice(castNumericSlice[float64, int64](f64))), nil
	case dtype.Usize:
		return FromUsize(tensor.FromSlice(castNumericSlice[float64, uint64](f64))), nil
	case dtype.Bool:
		out := make([]bool, len(f64))
		for i, v := range f64 {
			out[i] = v != 0
		}
		return FromBool(tensor.FromSlice(out)), nil
	default:
		return ArrOk{}, fmt.Errorf("%w: cannot cast to %s", arberr.ErrDtypeMismatch, target)
	}
}

func isIntTag(t dtype.Tag) bool {
	switch t {
	case dtype.I32, dtype.I64, dtype.Usize:
		return true
	default:
		return false
	}
}

func fromIntTag(t dtype.Tag, vals []int64) (ArrOk, error) {
	switch t {
	case dtype.I32:
		return FromI32(tensor.FromSlice(castNumericSlice[int64, int32](vals))), nil
	case dtype.I64:
		return FromI64(tensor.FromSlice(vals)), nil
	case dtype.Usize:
		return FromUsize(tensor.FromSlice(castNumericSlice[int64, uint64](vals))), nil
	default:
		return ArrOk{}, fmt.Errorf("%w: %s is not an integer tag", arberr.ErrDtypeMismatch, t)
	}
}

func toInt64(a ArrOk) ([]int64, error) {
	switch a.Tag() {
	case dtype.I32:
		return castNumericSlice[int32, int64](Into[int32](a).Lane1D()), nil
	case dtype.I64:
		return append([]int64(nil), Into[int64](a).Lane1D()...), nil
	case dtype.Usize:
		return castNumericSlice[uint64, int64](Into[uint64](a).Lane1D()), nil
	default:
		return nil, fmt.Errorf("%w: %s is not an integer tag", arberr.ErrDtypeMismatch, a.Tag())
	}
}

func toFloat64(a ArrOk) ([]float64, error) {
	switch a.Tag() {
	case dtype.F32:
		return castNumericSlice[float32, float64](Into[float32](a).Lane1D()), nil
	case dtype.F64:
		return append([]float64(nil), Into[float64](a).Lane1D()...), nil
	case dtype.I32:
		return castNumericSlice[int32, float64](Into[int32](a).Lane1D()), nil
	case dtype.I64:
		return castNumericSlice[int64, float64](Into[int64](a).Lane1D()), nil
	case dtype.Usize:
		return castNumericSlice[uint64, float64](Into[uint64](a).Lane1D()), nil
	case dtype.Bool:
		src := Into[bool](a).Lane1D()
		out := make([]float64, len(src))
		for i, v := range src {
			if v {
				out[i] = 1
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s is not numeric", arberr.ErrDtypeMismatch, a.Tag())
	}
}
