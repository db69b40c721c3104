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

// This file wires spec.md §4.3's aggregation kernel family onto Expr:
// each method appends a chain stage that reduces one axis of the
// node's dynamic tensor to a scalar-per-lane result, via kernel's plain
// []float64 reducers.
package expr

import (
	"github.com/arborql/arbor/dtype"
	"github.com/arborql/arbor/dynamic"
	"github.com/arborql/arbor/kernel"
	"github.com/arborql/arbor/payload"
	"github.com/arborql/arbor/tensor"
)

// toF64 casts a to F64, the common representation every aggregation/map
// kernel operates over. Casting a tensor already tagged F64 is free
// (dynamic.ArrOk.Cast's identity fast path).
func toF64(a dynamic.ArrOk) (*tensor.ArbArray[float64], error) {
	casted, err := a.Cast(dtype.F64, dtype.Microsecond)
	if err != nil {
		return nil, err
	}
	return dynamic.Into[float64](casted), nil
}

func (e *Expr) aggAxis(axis int, par bool, reduce func([]float64) float64) *Expr {
	return e.ChainF(func(d payload.Data, ctx Evaluator) (payload.Data, Evaluator, error) {
		a := d.AsArr()
		if err := checkAxis(a.Shape(), axis); err != nil {
			return payload.Data{}, ctx, err
		}
		f64, err := toF64(a)
		if err != nil {
			return payload.Data{}, ctx, err
		}
		out := tensor.FoldPar(f64, axis, par, reduce)
		return payload.FromArr(dynamic.FromF64(out)), ctx, nil
	}, RefFalse)
}

func (e *Expr) Sum(axis int, stable, par bool) *Expr {
	return e.aggAxis(axis, par, func(l []float64) float64 { return kernel.Sum(l, stable) })
}

func (e *Expr) Mean(axis int, stable bool, minPeriods int, par bool) *Expr {
	return e.aggAxis(axis, par, func(l []float64) float64 { return kernel.Mean(l, stable, minPeriods) })
}

func (e *Expr) Var(axis int, stable bool, minPeriods int, par bool) *Expr {
	return e.aggAxis(axis, par, func(l []float64) float64 { return kernel.Var(l, stable, minPeriods) })
}

func (e *Expr) Std(axis int, stable bool, minPeriods int, par bool) *Expr {
	return e.aggAxis(axis, par, func(l []float64) float64 { return kernel.Std(l, stable, minPeriods) })
}

func (e *Expr) Skew(axis int, minPeriods int, par bool) *Expr {
	return e.aggAxis(axis, par, func(l []float64) float64 { return kernel.Skew(l, minPeriods) })
}

func (e *Expr) Kurt(axis int, minPeriods int, par bool) *Expr {
	return e.aggAxis(axis, par, func(l []float64) float64 { return kernel.Kurt(l, minPeriods) })
}

func (e *Expr) Min(axis int, par bool) *Expr {
	return e.aggAxis(axis, par, kernel.Min)
}

func (e *Expr) Max(axis int, par bool) *Expr {
	return e.aggAxis(axis, par, kernel.Max)
}

func (e *Expr) Median(axis int, par bool) *Expr {
	return e.aggAxis(axis, par, kernel.Median)
}

func (e *Expr) Quantile(axis int, q float64, method kernel.QuantileMethod, par bool) *Expr {
	return e.aggAxis(axis, par, func(l []float64) float64 { return kernel.Quantile(l, q, method) })
}

func (e *Expr) CountNaN(axis int, par bool) *Expr {
	return e.aggAxis(axis, par, kernel.CountNaN)
}

func (e *Expr) CountNotNaN(axis int, par bool) *Expr {
	return e.aggAxis(axis, par, kernel.CountNotNaN)
}

func (e *Expr) Prod(axis int, par bool) *Expr {
	return e.aggAxis(axis, par, kernel.Prod)
}

func (e *Expr) First(axis int, par bool) *Expr {
	return e.aggAxis(axis, par, kernel.First)
}

func (e *Expr) Last(axis int, par bool) *Expr {
	return e.aggAxis(axis, par, kernel.Last)
}

func (e *Expr) ValidFirst(axis int, par bool) *Expr {
	return e.aggAxis(axis, par, kernel.ValidFirst)
}

func (e *Expr) ValidLast(axis int, par bool) *Expr {
	return e.aggAxis(axis, par, kernel.ValidLast)
}

func (e *Expr) Argmax(axis int, par bool) *Expr {
	return e.aggAxis(axis, par, func(l []float64) float64 { return float64(kernel.Argmax(l)) })
}

func (e *Expr) Argmin(axis int, par bool) *Expr {
	return e.aggAxis(axis, par, func(l []float64) float64 { return float64(kernel.Argmin(l)) })
}
