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
	"math"

	"github.com/arborql/arbor/dtype"
	"github.com/arborql/arbor/internal/arberr"
	"github.com/arborql/arbor/tensor"
)

// Gather builds a new owned ArrOk of the same tag as a, reading row
// idxs[i] of a into output row i. Every entry of idxs must be a valid
// row of a; use GatherOpt when some rows may have no source (a left or
// outer join's unmatched side, spec.md §4.4.6).
func Gather(a ArrOk, idxs []int) (ArrOk, error) {
	switch a.Tag() {
	case dtype.Bool:
		return FromBool(tensor.GatherIdx(Into[bool](a), idxs)), nil
	case dtype.F32:
		return FromF32(tensor.GatherIdx(Into[float32](a), idxs)), nil
	case dtype.F64:
		return FromF64(tensor.GatherIdx(Into[float64](a), idxs)), nil
	case dtype.I32:
		return FromI32(tensor.GatherIdx(Into[int32](a), idxs)), nil
	case dtype.I64:
		return FromI64(tensor.GatherIdx(Into[int64](a), idxs)), nil
	case dtype.Usize:
		return FromUsize(tensor.GatherIdx(Into[uint64](a), idxs)), nil
	case dtype.String, dtype.Str:
		return FromString(tensor.GatherIdx(Into[string](a), idxs)), nil
	case dtype.DateTime:
		return FromDateTime(tensor.GatherIdx(Into[dtype.DateTime](a), idxs)), nil
	case dtype.TimeDelta:
		return FromTimeDelta(tensor.GatherIdx(Into[dtype.TimeDelta](a), idxs)), nil
	default:
		return ArrOk{}, fmt.Errorf("%w: gather does not support %s", arberr.ErrDtypeMismatch, a.Tag())
	}
}

// GatherOpt is Gather's join-aware counterpart: an index of
// relate.NoMatch (-1) in idxs produces the tag's canonical "missing"
// sentinel (NaN for floats, NaT for DateTime/TimeDelta, the empty
// string for strings) rather than reading a.Lane1D() out of bounds.
// Integer and Bool lanes are widened to F64 first so NaN can mark the
// missing rows
// (spec.md §4.4.6: "padded with NONE where the opposite side has no
// match").
func GatherOpt(a ArrOk, idxs []int) (ArrOk, error) {
	switch a.Tag() {
	case dtype.F64, dtype.F32, dtype.I32, dtype.I64, dtype.Usize, dtype.Bool:
		casted, err := a.Cast(dtype.F64, dtype.Microsecond)
		if err != nil {
			return ArrOk{}, err
		}
		return gatherOptF64(casted, idxs)
	case dtype.DateTime:
		src := Into[dtype.DateTime](a).Lane1D()
		out := make([]dtype.DateTime, len(idxs))
		for i, idx := range idxs {
			if idx < 0 {
				out[i] = dtype.NaTMicros
				continue
			}
			out[i] = src[idx]
		}
		return FromDateTime(tensor.FromSlice(out)), nil
	case dtype.TimeDelta:
		src := Into[dtype.TimeDelta](a).Lane1D()
		out := make([]dtype.TimeDelta, len(idxs))
		for i, idx := range idxs {
			if idx < 0 {
				out[i] = dtype.NaTDelta
				continue
			}
			out[i] = src[idx]
		}
		return FromTimeDelta(tensor.FromSlice(out)), nil
	case dtype.String, dtype.Str:
		src := Into[string](a).Lane1D()
		out := make([]string, len(idxs))
		for i, idx := range idxs {
			if idx < 0 {
				continue
			}
			out[i] = src[idx]
		}
		return FromString(tensor.FromSlice(out)), nil
	default:
		return ArrOk{}, fmt.Errorf("%w: outer/left join gather does not support %s", arberr.ErrDtypeMismatch, a.Tag())
	}
}

func gatherOptF64(f64 ArrOk, idxs []int) (ArrOk, error) {
	src := Into[float64](f64).Lane1D()
	out := make([]float64, len(idxs))
	for i, idx := range idxs {
		if idx < 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = src[idx]
	}
	return FromF64(tensor.FromSlice(out)), nil
}
