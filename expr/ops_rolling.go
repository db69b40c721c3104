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

// This file wires spec.md §4.3's rolling ("ts_*") kernel family onto
// Expr: fixed-size windows apply uniformly across every axis via
// rollAxis, which walks lanes the way the map family's mapAxis does (each ts_*
// kernel is itself a same-length lane transform), while the
// time-indexed variant consumes a second Expr (the datetime lane) to
// derive per-row window starts before reducing.
package expr

import (
	"time"

	"github.com/arborql/arbor/dtype"
	"github.com/arborql/arbor/dynamic"
	"github.com/arborql/arbor/kernel"
	"github.com/arborql/arbor/payload"
	"github.com/arborql/arbor/tensor"
	"github.com/arborql/arbor/window"
)

func (e *Expr) rollAxis(axis int, window, minPeriods int, f func([]float64) []float64) *Expr {
	return e.ChainF(func(d payload.Data, ctx Evaluator) (payload.Data, Evaluator, error) {
		if err := checkWindow(window, minPeriods); err != nil {
			return payload.Data{}, ctx, err
		}
		a := d.AsArr()
		if err := checkAxis(a.Shape(), axis); err != nil {
			return payload.Data{}, ctx, err
		}
		f64, err := toF64(a)
		if err != nil {
			return payload.Data{}, ctx, err
		}
		out := tensor.Apply(f64, axis, f)
		return payload.FromArr(dynamic.FromF64(out)), ctx, nil
	}, RefFalse)
}

// RollApply is the generic fixed-window counterpart of RollingByTime:
// the caller supplies its own reducer instead of picking one of the
// named ts_* kernels below (spec.md §4.5's "rolling_apply(window, fn)").
func (e *Expr) RollApply(axis, w, minPeriods int, reduceFn func([]float64) float64) *Expr {
	return e.rollAxis(axis, w, minPeriods, func(l []float64) []float64 { return kernel.Fold(l, w, minPeriods, reduceFn) })
}

func (e *Expr) TsSum(axis, w, minPeriods int, stable bool) *Expr {
	return e.rollAxis(axis, w, minPeriods, func(l []float64) []float64 { return kernel.TsSum(l, w, minPeriods, stable) })
}

func (e *Expr) TsSma(axis, w, minPeriods int, stable bool) *Expr {
	return e.rollAxis(axis, w, minPeriods, func(l []float64) []float64 { return kernel.TsSma(l, w, minPeriods, stable) })
}

func (e *Expr) TsEwm(axis, w, minPeriods int) *Expr {
	return e.rollAxis(axis, w, minPeriods, func(l []float64) []float64 { return kernel.TsEwm(l, w, minPeriods) })
}

func (e *Expr) TsWma(axis, w, minPeriods int) *Expr {
	return e.rollAxis(axis, w, minPeriods, func(l []float64) []float64 { return kernel.TsWma(l, w, minPeriods) })
}

func (e *Expr) TsStd(axis, w, minPeriods int, stable bool) *Expr {
	return e.rollAxis(axis, w, minPeriods, func(l []float64) []float64 { return kernel.TsStd(l, w, minPeriods, stable) })
}

func (e *Expr) TsVar(axis, w, minPeriods int, stable bool) *Expr {
	return e.rollAxis(axis, w, minPeriods, func(l []float64) []float64 { return kernel.TsVar(l, w, minPeriods, stable) })
}

func (e *Expr) TsSkew(axis, w, minPeriods int) *Expr {
	return e.rollAxis(axis, w, minPeriods, func(l []float64) []float64 { return kernel.TsSkew(l, w, minPeriods) })
}

func (e *Expr) TsKurt(axis, w, minPeriods int) *Expr {
	return e.rollAxis(axis, w, minPeriods, func(l []float64) []float64 { return kernel.TsKurt(l, w, minPeriods) })
}

func (e *Expr) TsMin(axis, w, minPeriods int) *Expr {
	return e.rollAxis(axis, w, minPeriods, func(l []float64) []float64 { return kernel.TsMin(l, w, minPeriods) })
}

func (e *Expr) TsMax(axis, w, minPeriods int) *Expr {
	return e.rollAxis(axis, w, minPeriods, func(l []float64) []float64 { return kernel.TsMax(l, w, minPeriods) })
}

func (e *Expr) TsRank(axis, w, minPeriods int, pct, rev bool) *Expr {
	return e.rollAxis(axis, w, minPeriods, func(l []float64) []float64 { return kernel.TsRank(l, w, minPeriods, pct, rev) })
}

func (e *Expr) TsProd(axis, w, minPeriods int) *Expr {
	return e.rollAxis(axis, w, minPeriods, func(l []float64) []float64 { return kernel.TsProd(l, w, minPeriods) })
}

func (e *Expr) TsMinMaxNorm(axis, w, minPeriods int) *Expr {
	return e.rollAxis(axis, w, minPeriods, func(l []float64) []float64 { return kernel.TsMinMaxNorm(l, w, minPeriods) })
}

func (e *Expr) TsMeanStdNorm(axis, w, minPeriods int) *Expr {
	return e.rollAxis(axis, w, minPeriods, func(l []float64) []float64 { return kernel.TsMeanStdNorm(l, w, minPeriods) })
}

func (e *Expr) TsReg(axis, w, minPeriods int) *Expr {
	return e.rollAxis(axis, w, minPeriods, func(l []float64) []float64 { return kernel.TsReg(l, w, minPeriods) })
}

func (e *Expr) TsTsf(axis, w, minPeriods int) *Expr {
	return e.rollAxis(axis, w, minPeriods, func(l []float64) []float64 { return kernel.TsTsf(l, w, minPeriods) })
}

func (e *Expr) TsRegSlope(axis, w, minPeriods int) *Expr {
	return e.rollAxis(axis, w, minPeriods, func(l []float64) []float64 { return kernel.TsRegSlope(l, w, minPeriods) })
}

// RollingByTime is spec.md §4.3's time-indexed rolling family
// ("rolling_apply_by_time"): idx supplies the sorted datetime lane, d
// the window duration, and by the calendar-anchor policy (spec.md §9);
// reduceFn is one of kernel's plain aggregation reducers (Sum, Mean,
// Std, ...). Each output position reduces e's values from idx's derived
// window start through the current row.
func (e *Expr) RollingByTime(idx *Expr, d time.Duration, by window.StartBy, minPeriods int, reduceFn func([]float64) float64) *Expr {
	return e.chainBinary(idx, func(l, r payload.Data) (payload.Data, error) {
		valArr := l.AsArr()
		idxArr := r.AsArr()
		if err := checkTag(idxArr, dtype.DateTime); err != nil {
			return payload.Data{}, err
		}
		if err := checkSameLength(valArr, idxArr); err != nil {
			return payload.Data{}, err
		}
		vf, err := toF64(valArr)
		if err != nil {
			return payload.Data{}, err
		}
		dt := dynamic.Into[dtype.DateTime](idxArr).Lane1D()
		starts, err := window.Derive(dt, d, by)
		if err != nil {
			return payload.Data{}, err
		}
		out := kernel.FoldByStarts(vf.Lane1D(), starts, minPeriods, reduceFn)
		return payload.FromArr(dynamic.FromF64(tensor.FromSlice(out))), nil
	})
}

// TsSumByTime, TsMeanByTime, and TsStdByTime are the three time-indexed
// reducers spec.md's end-to-end scenarios exercise directly; other
// reducers can be reached through RollingByTime itself.
func (e *Expr) TsSumByTime(idx *Expr, d time.Duration, by window.StartBy, minPeriods int, stable bool) *Expr {
	return e.RollingByTime(idx, d, by, minPeriods, func(l []float64) float64 { return kernel.Sum(l, stable) })
}

func (e *Expr) TsMeanByTime(idx *Expr, d time.Duration, by window.StartBy, minPeriods int, stable bool) *Expr {
	return e.RollingByTime(idx, d, by, minPeriods, func(l []float64) float64 { return kernel.Mean(l, stable, minPeriods) })
}

func (e *Expr) TsStdByTime(idx *Expr, d time.Duration, by window.StartBy, minPeriods int, stable bool) *Expr {
	return e.RollingByTime(idx, d, by, minPeriods, func(l []float64) float64 { return kernel.Std(l, stable, minPeriods) })
}
