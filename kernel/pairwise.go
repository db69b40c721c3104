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

package kernel

import "math"

// Cov computes the (sample, ddof=1) covariance of x and y, pairwise
// dropping any position where either lane is NaN (spec.md §4.3
// "Pair-wise" family), matching Var so that Corr's cov/(sx*sy) is a
// correlation.
func Cov(x, y []float64) float64 {
	mx, my := pairwiseMeans(x, y)
	if math.IsNaN(mx) {
		return math.NaN()
	}
	var s float64
	n := 0
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		n++
		s += (x[i] - mx) * (y[i] - my)
	}
	if n < 2 {
		return math.NaN()
	}
	return s / float64(n-1)
}

func pairwiseMeans(x, y []float64) (float64, float64) {
	var sx, sy float64
	n := 0
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		sx += x[i]
		sy += y[i]
		n++
	}
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	return sx / float64(n), sy / float64(n)
}

// CorrMethod enumerates corr's two supported methods.
type CorrMethod string

const (
	Pearson  CorrMethod = "pearson"
	Spearman CorrMethod = "spearman"
)

// Corr computes the Pearson or Spearman correlation of x and y.
func Corr(x, y []float64, method CorrMethod) float64 {
	if method == Spearman {
		return Corr(Rank(x, true, false), Rank(y, true, false), Pearson)
	}
	cov := Cov(x, y)
	sx := Std(x, false, 1)
	sy := Std(y, false, 1)
	if sx == 0 || sy == 0 {
		return math.NaN()
	}
	return cov / (sx * sy)
}

// Dot computes the dot product of x and y, NaN-propagating.
func Dot(x, y []float64) float64 {
	var s float64
	for i := range x {
		s += x[i] * y[i]
	}
	return s
}

// OlsResult is the output of a least-squares solve (spec.md §3.3
// "OlsRes"): the solution vector, the singular values of the design
// matrix, its numerical rank, and the residual sum of squares.
type OlsResult struct {
	Params        []float64
	SingularValues []float64
	Rank          int
	ResidualSS    float64
}

// Lstsq solves the simple-linear-regression normal equations for y ~ x
// (single predictor plus intercept), returning an OlsResult. Per
// spec.md §1, the inner numerical method is orthogonal engineering; a
// direct normal-equations solve is sufficient here (n is a column
// length, not a large dense design matrix).
func Lstsq(x, y []float64) OlsResult {
	mx, my := pairwiseMeans(x, y)
	var sxx, sxy float64
	n := 0
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		dx := x[i] - mx
		sxx += dx * dx
		sxy += dx * (y[i] - my)
		n++
	}
	if n < 2 || sxx == 0 {
		return OlsResult{Params: []float64{math.NaN(), math.NaN()}, Rank: 0}
	}
	slope := sxy / sxx
	intercept := my - slope*mx
	var ss float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		resid := y[i] - (slope*x[i] + intercept)
		ss += resid * resid
	}
	return OlsResult{
		Params:         []float64{intercept, slope},
		SingularValues: []float64{math.Sqrt(sxx)},
		Rank:           2,
		ResidualSS:     ss,
	}
}

// regressionResiduals returns y[i] minus the fitted value at x[i] for
// the simple regression used by RegAlpha/RegBeta/RegResid*.
func regressionResiduals(x, y []float64) (resid []float64, slope, intercept float64) {
	res := Lstsq(x, y)
	intercept, slope = res.Params[0], res.Params[1]
	resid = make([]float64, len(x))
	for i := range x {
		resid[i] = y[i] - (slope*x[i] + intercept)
	}
	return resid, slope, intercept
}

// RegAlpha returns the regression intercept of y on x.
func RegAlpha(x, y []float64) float64 { _, _, b := regressionResiduals(x, y); return b }

// RegBeta returns the regression slope of y on x.
func RegBeta(x, y []float64) float64 { _, s, _ := regressionResiduals(x, y); return s }

// RegResidMean returns the mean residual of regressing y on x.
func RegResidMean(x, y []float64) float64 {
	resid, _, _ := regressionResiduals(x, y)
	return Mean(resid, false, 1)
}

// RegResidStd returns the residual standard deviation of regressing y
// on x.
func RegResidStd(x, y []float64) float64 {
	resid, _, _ := regressionResiduals(x, y)
	return Std(resid, false, 1)
}

// RegResidSkew returns the residual skewness of regressing y on x.
func RegResidSkew(x, y []float64) float64 {
	resid, _, _ := regressionResiduals(x, y)
	return Skew(resid, 1)
}
