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

// This file handles the host/core boundary: constructing Exprs from
// plain Go slices (import), and re-interpreting a DateTime result back
// into whatever external time unit a caller asked for (export). The
// core always stores timestamps as microseconds (spec.md §6); unit
// conversion only ever happens at this boundary.
package expr

import (
	"time"

	"github.com/arborql/arbor/dtype"
	"github.com/arborql/arbor/dynamic"
	"github.com/arborql/arbor/tensor"
)

// FromFloat64 imports a plain float64 slice as a leaf Expr.
func FromFloat64(vals []float64) *Expr {
	return FromArr(dynamic.FromF64(tensor.FromSlice(append([]float64(nil), vals...))))
}

// FromInt64 imports a plain int64 slice as a leaf Expr.
func FromInt64(vals []int64) *Expr {
	return FromArr(dynamic.FromI64(tensor.FromSlice(append([]int64(nil), vals...))))
}

// FromBool imports a plain bool slice as a leaf Expr.
func FromBool(vals []bool) *Expr {
	return FromArr(dynamic.FromBool(tensor.FromSlice(append([]bool(nil), vals...))))
}

// FromStrings imports a plain string slice as a leaf Expr.
func FromStrings(vals []string) *Expr {
	return FromArr(dynamic.FromString(tensor.FromSlice(append([]string(nil), vals...))))
}

// FromTimes imports a slice of standard library times, expressed at the
// given external unit, as a DateTime leaf Expr. The conversion does not
// use unit: every time is truncated to microseconds, and a zero time
// becomes NaT.
func FromTimes(vals []time.Time, unit dtype.Unit) *Expr {
	out := make([]dtype.DateTime, len(vals))
	for i, t := range vals {
		if t.IsZero() {
			out[i] = dtype.NaTMicros
			continue
		}
		out[i] = dtype.FromTime(t)
	}
	_ = unit
	return FromArr(dynamic.FromDateTime(tensor.FromSlice(out)))
}

// ToTimes evaluates e against ctx and decodes its DateTime result back
// into standard library times, failing with ErrDtypeMismatch if e did
// not evaluate to a DateTime tensor.
func ToTimes(e *Expr, ctx Evaluator) ([]time.Time, error) {
	a, err := e.Arr(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkTag(a, dtype.DateTime); err != nil {
		return nil, err
	}
	lane := dynamic.Into[dtype.DateTime](a).Lane1D()
	out := make([]time.Time, len(lane))
	for i, d := range lane {
		out[i] = d.ToTime()
	}
	return out, nil
}

// ToFloat64 evaluates e against ctx, casting the result to a float64
// lane for host consumption (Bool as 0/1); tags the cast does not
// support return the cast's error.
func ToFloat64(e *Expr, ctx Evaluator) ([]float64, error) {
	a, err := e.Arr(ctx)
	if err != nil {
		return nil, err
	}
	casted, err := a.Cast(dtype.F64, dtype.Microsecond)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), dynamic.Into[float64](casted).Lane1D()...), nil
}

// ToBool evaluates e against ctx and decodes a Bool tensor back to a
// plain bool slice.
func ToBool(e *Expr, ctx Evaluator) ([]bool, error) {
	a, err := e.Arr(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkTag(a, dtype.Bool); err != nil {
		return nil, err
	}
	return append([]bool(nil), dynamic.Into[bool](a).Lane1D()...), nil
}
