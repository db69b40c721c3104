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

// This file wires spec.md §4.3's pairwise kernel family (cov, corr,
// dot, lstsq and its derived regression statistics) onto pairs of
// Exprs.
package expr

import (
	"github.com/arborql/arbor/dynamic"
	"github.com/arborql/arbor/kernel"
	"github.com/arborql/arbor/payload"
	"github.com/arborql/arbor/tensor"
)

func pairwiseLanes(l, r payload.Data) ([]float64, []float64, error) {
	la, ra := l.AsArr(), r.AsArr()
	if err := checkSameLength(la, ra); err != nil {
		return nil, nil, err
	}
	lf, err := toF64(la)
	if err != nil {
		return nil, nil, err
	}
	rf, err := toF64(ra)
	if err != nil {
		return nil, nil, err
	}
	return lf.Lane1D(), rf.Lane1D(), nil
}

func (lhs *Expr) pairwiseScalar(rhs *Expr, reduce func(x, y []float64) float64) *Expr {
	return lhs.chainBinary(rhs, func(l, r payload.Data) (payload.Data, error) {
		x, y, err := pairwiseLanes(l, r)
		if err != nil {
			return payload.Data{}, err
		}
		return payload.FromArr(dynamic.FromF64(tensor.FromSlice([]float64{reduce(x, y)}))), nil
	})
}

func (lhs *Expr) Cov(rhs *Expr) *Expr { return lhs.pairwiseScalar(rhs, kernel.Cov) }

func (lhs *Expr) Corr(rhs *Expr, method kernel.CorrMethod) *Expr {
	return lhs.pairwiseScalar(rhs, func(x, y []float64) float64 { return kernel.Corr(x, y, method) })
}

func (lhs *Expr) Dot(rhs *Expr) *Expr { return lhs.pairwiseScalar(rhs, kernel.Dot) }

func (lhs *Expr) RegAlpha(rhs *Expr) *Expr { return lhs.pairwiseScalar(rhs, kernel.RegAlpha) }
func (lhs *Expr) RegBeta(rhs *Expr) *Expr  { return lhs.pairwiseScalar(rhs, kernel.RegBeta) }
func (lhs *Expr) RegResidMean(rhs *Expr) *Expr {
	return lhs.pairwiseScalar(rhs, kernel.RegResidMean)
}
func (lhs *Expr) RegResidStd(rhs *Expr) *Expr {
	return lhs.pairwiseScalar(rhs, kernel.RegResidStd)
}
func (lhs *Expr) RegResidSkew(rhs *Expr) *Expr {
	return lhs.pairwiseScalar(rhs, kernel.RegResidSkew)
}

// Lstsq fits y (the receiver) against x=rhs and returns an Expr wrapping
// the full OlsResult, per spec.md §3.3's OlsRes payload variant.
func (y *Expr) Lstsq(x *Expr) *Expr {
	return y.chainBinary(x, func(ly, lx payload.Data) (payload.Data, error) {
		yv, xv, err := pairwiseLanes(ly, lx)
		if err != nil {
			return payload.Data{}, err
		}
		res := kernel.Lstsq(xv, yv)
		r := res
		return payload.FromOls(&r), nil
	})
}

// TsCov/TsCorr are the rolling counterparts of Cov/Corr, windowed over
// both operands in lockstep (spec.md §4.3's rolling pairwise family).
func (lhs *Expr) TsCov(rhs *Expr, window, minPeriods int) *Expr {
	return lhs.rollingPairwiseOp(rhs, window, minPeriods, func(x, y []float64) []float64 { return kernel.TsCov(x, y, window, minPeriods) })
}

func (lhs *Expr) TsCorr(rhs *Expr, window, minPeriods int) *Expr {
	return lhs.rollingPairwiseOp(rhs, window, minPeriods, func(x, y []float64) []float64 { return kernel.TsCorr(x, y, window, minPeriods) })
}

func (lhs *Expr) rollingPairwiseOp(rhs *Expr, window, minPeriods int, roll func(x, y []float64) []float64) *Expr {
	return lhs.chainBinary(rhs, func(l, r payload.Data) (payload.Data, error) {
		if err := checkWindow(window, minPeriods); err != nil {
			return payload.Data{}, err
		}
		x, y, err := pairwiseLanes(l, r)
		if err != nil {
			return payload.Data{}, err
		}
		out := roll(x, y)
		return payload.FromArr(dynamic.FromF64(tensor.FromSlice(out))), nil
	})
}
