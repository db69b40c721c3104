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

// This file wires spec.md §4.3's elementwise map kernel family onto
// Expr: each method appends a same-shape transform stage along one
// axis.
package expr

import (
	"github.com/arborql/arbor/dynamic"
	"github.com/arborql/arbor/kernel"
	"github.com/arborql/arbor/payload"
	"github.com/arborql/arbor/tensor"
)

func (e *Expr) mapAxis(axis int, par bool, f func([]float64) []float64) *Expr {
	return e.ChainF(func(d payload.Data, ctx Evaluator) (payload.Data, Evaluator, error) {
		a := d.AsArr()
		if err := checkAxis(a.Shape(), axis); err != nil {
			return payload.Data{}, ctx, err
		}
		f64, err := toF64(a)
		if err != nil {
			return payload.Data{}, ctx, err
		}
		out := tensor.ApplyPar(f64, axis, par, f)
		return payload.FromArr(dynamic.FromF64(out)), ctx, nil
	}, RefFalse)
}

func (e *Expr) Abs(axis int, par bool) *Expr  { return e.mapAxis(axis, par, kernel.Abs) }
func (e *Expr) Sqrt(axis int, par bool) *Expr { return e.mapAxis(axis, par, kernel.Sqrt) }
func (e *Expr) Ln(axis int, par bool) *Expr   { return e.mapAxis(axis, par, kernel.Ln) }
func (e *Expr) Exp(axis int, par bool) *Expr  { return e.mapAxis(axis, par, kernel.Exp) }
func (e *Expr) Sign(axis int, par bool) *Expr { return e.mapAxis(axis, par, kernel.Sign) }

func (e *Expr) Round(axis, precision int, par bool) *Expr {
	return e.mapAxis(axis, par, func(l []float64) []float64 { return kernel.Round(l, precision) })
}

func (e *Expr) Clip(axis int, min, max float64, par bool) *Expr {
	return e.mapAxis(axis, par, func(l []float64) []float64 { return kernel.Clip(l, min, max) })
}

func (e *Expr) Shift(axis, n int, fill float64, par bool) *Expr {
	return e.mapAxis(axis, par, func(l []float64) []float64 { return kernel.Shift(l, n, fill) })
}

func (e *Expr) Diff(axis, n int, fill float64, par bool) *Expr {
	return e.mapAxis(axis, par, func(l []float64) []float64 { return kernel.Diff(l, n, fill) })
}

func (e *Expr) PctChange(axis, n int, par bool) *Expr {
	return e.mapAxis(axis, par, func(l []float64) []float64 { return kernel.PctChange(l, n) })
}

func (e *Expr) CumSum(axis int, stable bool, par bool) *Expr {
	return e.mapAxis(axis, par, func(l []float64) []float64 { return kernel.CumSum(l, stable) })
}

func (e *Expr) CumProd(axis int, par bool) *Expr {
	return e.mapAxis(axis, par, kernel.CumProd)
}

func (e *Expr) FillNA(axis int, method kernel.FillMethod, value float64, par bool) *Expr {
	return e.mapAxis(axis, par, func(l []float64) []float64 { return kernel.FillNA(l, method, value) })
}

func (e *Expr) Winsorize(axis int, method kernel.WinsorizeMethod, param float64, par bool) *Expr {
	return e.mapAxis(axis, par, func(l []float64) []float64 { return kernel.Winsorize(l, method, param) })
}

func (e *Expr) ZScore(axis int, par bool) *Expr {
	return e.mapAxis(axis, par, kernel.ZScore)
}

func (e *Expr) Rank(axis int, pct, rev bool, par bool) *Expr {
	return e.mapAxis(axis, par, func(l []float64) []float64 { return kernel.Rank(l, pct, rev) })
}

func (e *Expr) SplitGroup(axis, groups int, rev bool, par bool) *Expr {
	return e.mapAxis(axis, par, func(l []float64) []float64 { return kernel.SplitGroup(l, groups, rev) })
}

// Argsort appends a stage producing, for every lane along axis, the
// permutation of indices that sorts that lane ascending (or descending
// if rev), per spec.md §9's resolved open question ("NaN-last, stable
// by position"). Each lane's result is itself a vector of indices
// rather than a scalar, so the stage wraps dtype.VecUsize instead of
// reusing mapAxis's same-tag float64 shape.
func (e *Expr) Argsort(axis int, rev bool, par bool) *Expr {
	return e.ChainF(func(d payload.Data, ctx Evaluator) (payload.Data, Evaluator, error) {
		a := d.AsArr()
		if err := checkAxis(a.Shape(), axis); err != nil {
			return payload.Data{}, ctx, err
		}
		f64, err := toF64(a)
		if err != nil {
			return payload.Data{}, ctx, err
		}
		out := tensor.FoldPar(f64, axis, par, func(lane []float64) []uint64 {
			idx := kernel.Argsort(lane, rev)
			u := make([]uint64, len(idx))
			for i, v := range idx {
				u[i] = uint64(v)
			}
			return u
		})
		return payload.FromArr(dynamic.FromVecUsize(out)), ctx, nil
	}, RefFalse)
}
