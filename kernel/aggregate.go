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

// Package kernel implements the per-axis numeric kernel families
// described by spec.md §4.3: aggregations, elementwise maps, pairwise
// ops, and rolling windows. Per spec.md §1 these kernels' inner loops
// are orthogonal engineering ("BLAS or straight scalar code"); only
// their signatures, invariants, and axis/parallelism contract are load
// bearing, so the implementations below favor a direct, obviously
// correct scalar loop over a vectorized one. The optional par flag
// (spec.md §5) forks each lane onto arbor's worker pool; kernels never
// depend on lane-iteration order to stay correct under par=true.
package kernel

import (
	"math"
	"sort"

	"github.com/arborql/arbor/internal/cpu"
)

// kahanSum adds the stable=true compensated-summation contract from
// spec.md §4.3: the running sum is corrected against a running
// compensation term so the worst-case error is O(eps) rather than
// O(n*eps). Skips NaN.
//
// This is the Neumaier (Kahan-Babuska) variant rather than textbook
// Kahan: plain Kahan compares the new term against the running
// compensation alone, so a term whose magnitude swamps the current sum
// (e.g. the trailing -1e16 after [1e16, 1.0]) re-absorbs the entire
// compensation and loses it again. Neumaier instead compares |sum| to
// |v| each step and accumulates the lost low bits onto whichever of
// the two is smaller, so sum+c recovers the 1.0 that a running
// compensation folded only into y would drop.
func kahanSum(lane []float64) (sum float64, n int) {
	var c float64
	for _, v := range lane {
		if math.IsNaN(v) {
			continue
		}
		n++
		t := sum + v
		if math.Abs(sum) >= math.Abs(v) {
			c += (sum - t) + v
		} else {
			c += (v - t) + sum
		}
		sum = t
	}
	return sum + c, n
}

func plainSum(lane []float64) (sum float64, n int) {
	for _, v := range lane {
		if math.IsNaN(v) {
			continue
		}
		n++
		sum += v
	}
	return sum, n
}

// Sum folds lane to the sum of its non-NaN values. When stable is true
// it uses Kahan compensated summation (spec.md §4.3 "Stable-mode
// contract").
func Sum(lane []float64, stable bool) float64 {
	var s float64
	if stable {
		s, _ = kahanSum(lane)
	} else {
		s, _ = plainSum(lane)
	}
	return s
}

// Mean folds lane to the arithmetic mean of its non-NaN values,
// returning NaN if fewer than minPeriods values are valid.
func Mean(lane []float64, stable bool, minPeriods int) float64 {
	var s float64
	var n int
	if stable {
		s, n = kahanSum(lane)
	} else {
		s, n = plainSum(lane)
	}
	if n < minPeriods || n == 0 {
		return math.NaN()
	}
	return s / float64(n)
}

// Var folds lane to the (sample, ddof=1) variance of its non-NaN
// values (NaN when fewer than two are valid), respecting minPeriods the way spec.md's end-to-end scenario 1
// does ("std(axis=0, min_periods=2)").
func Var(lane []float64, stable bool, minPeriods int) float64 {
	m := Mean(lane, stable, minPeriods)
	if math.IsNaN(m) {
		return math.NaN()
	}
	var s float64
	var n int
	var c float64
	for _, v := range lane {
		if math.IsNaN(v) {
			continue
		}
		n++
		d := v - m
		sq := d * d
		if stable {
			t := s + sq
			if math.Abs(s) >= math.Abs(sq) {
				c += (s - t) + sq
			} else {
				c += (sq - t) + s
			}
			s = t
		} else {
			s += sq
		}
	}
	if n < minPeriods || n == 0 {
		return math.NaN()
	}
	if n < 2 {
		return math.NaN()
	}
	if stable {
		s += c
	}
	return s / float64(n-1)
}

// Std is the square root of Var.
func Std(lane []float64, stable bool, minPeriods int) float64 {
	v := Var(lane, stable, minPeriods)
	if math.IsNaN(v) {
		return math.NaN()
	}
	return math.Sqrt(v)
}

// Skew folds lane to the (biased) sample skewness.
func Skew(lane []float64, minPeriods int) float64 {
	m := Mean(lane, false, minPeriods)
	if math.IsNaN(m) {
		return math.NaN()
	}
	var m2, m3 float64
	n := 0
	for _, v := range lane {
		if math.IsNaN(v) {
			continue
		}
		n++
		d := v - m
		m2 += d * d
		m3 += d * d * d
	}
	if n < minPeriods || n == 0 {
		return math.NaN()
	}
	m2 /= float64(n)
	m3 /= float64(n)
	if m2 == 0 {
		return math.NaN()
	}
	return m3 / math.Pow(m2, 1.5)
}

// Kurt folds lane to the (biased) sample excess kurtosis: the fourth
// standardized moment minus 3.
func Kurt(lane []float64, minPeriods int) float64 {
	m := Mean(lane, false, minPeriods)
	if math.IsNaN(m) {
		return math.NaN()
	}
	var m2, m4 float64
	n := 0
	for _, v := range lane {
		if math.IsNaN(v) {
			continue
		}
		n++
		d := v - m
		m2 += d * d
		m4 += d * d * d * d
	}
	if n < minPeriods || n == 0 {
		return math.NaN()
	}
	m2 /= float64(n)
	m4 /= float64(n)
	if m2 == 0 {
		return math.NaN()
	}
	return m4/(m2*m2) - 3
}

// Min folds lane to its minimum non-NaN value (NaN if none).
func Min(lane []float64) float64 {
	res := math.NaN()
	for _, v := range lane {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(res) || v < res {
			res = v
		}
	}
	return res
}

// Max folds lane to its maximum non-NaN value (NaN if none).
func Max(lane []float64) float64 {
	res := math.NaN()
	for _, v := range lane {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(res) || v > res {
			res = v
		}
	}
	return res
}

// validSorted returns the non-NaN values of lane in ascending order.
func validSorted(lane []float64) []float64 {
	out := make([]float64, 0, len(lane))
	for _, v := range lane {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

// Median is Quantile(lane, 0.5, "linear").
func Median(lane []float64) float64 { return Quantile(lane, 0.5, "linear") }

// QuantileMethod enumerates the interpolation methods spec.md §4.3
// names for Quantile: linear, lower, higher, midpoint.
type QuantileMethod string

const (
	QLinear   QuantileMethod = "linear"
	QLower    QuantileMethod = "lower"
	QHigher   QuantileMethod = "higher"
	QMidpoint QuantileMethod = "midpoint"
)

// Quantile folds lane to the q-th quantile (0<=q<=1) of its non-NaN
// values using the given interpolation method.
func Quantile(lane []float64, q float64, method QuantileMethod) float64 {
	sorted := validSorted(lane)
	if len(sorted) == 0 {
		return math.NaN()
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		lo = 0
	}
	if hi >= len(sorted) {
		hi = len(sorted) - 1
	}
	switch method {
	case QLower:
		return sorted[lo]
	case QHigher:
		return sorted[hi]
	case QMidpoint:
		return (sorted[lo] + sorted[hi]) / 2
	default: // linear
		frac := pos - float64(lo)
		return sorted[lo] + frac*(sorted[hi]-sorted[lo])
	}
}

// CountNaN counts NaN entries in lane.
func CountNaN(lane []float64) float64 {
	n := 0
	for _, v := range lane {
		if math.IsNaN(v) {
			n++
		}
	}
	return float64(n)
}

// CountNotNaN counts non-NaN entries in lane.
func CountNotNaN(lane []float64) float64 {
	return float64(len(lane)) - CountNaN(lane)
}

// CountValue counts entries in lane equal to value.
func CountValue(lane []float64, value float64) float64 {
	n := 0
	for _, v := range lane {
		if v == value {
			n++
		}
	}
	return float64(n)
}

// Prod folds lane to the product of its non-NaN values.
func Prod(lane []float64) float64 {
	p := 1.0
	any := false
	for _, v := range lane {
		if math.IsNaN(v) {
			continue
		}
		any = true
		p *= v
	}
	if !any {
		return math.NaN()
	}
	return p
}

// Any reports whether any non-NaN entry of lane is non-zero.
func Any(lane []float64) bool {
	for _, v := range lane {
		if !math.IsNaN(v) && v != 0 {
			return true
		}
	}
	return false
}

// All reports whether every non-NaN entry of lane is non-zero.
func All(lane []float64) bool {
	for _, v := range lane {
		if !math.IsNaN(v) && v == 0 {
			return false
		}
	}
	return true
}

// First returns lane's first element, or NaN for an empty lane.
func First(lane []float64) float64 {
	if len(lane) == 0 {
		return math.NaN()
	}
	return lane[0]
}

// Last returns lane's last element, or NaN for an empty lane.
func Last(lane []float64) float64 {
	if len(lane) == 0 {
		return math.NaN()
	}
	return lane[len(lane)-1]
}

// ValidFirst returns the first non-NaN element of lane.
func ValidFirst(lane []float64) float64 {
	for _, v := range lane {
		if !math.IsNaN(v) {
			return v
		}
	}
	return math.NaN()
}

// ValidLast returns the last non-NaN element of lane.
func ValidLast(lane []float64) float64 {
	for i := len(lane) - 1; i >= 0; i-- {
		if !math.IsNaN(lane[i]) {
			return lane[i]
		}
	}
	return math.NaN()
}

// Argmax returns the index of lane's maximum non-NaN value, or -1.
func Argmax(lane []float64) int { return argExtreme(lane, false) }

// Argmin returns the index of lane's minimum non-NaN value, or -1.
func Argmin(lane []float64) int { return argExtreme(lane, true) }

func argExtreme(lane []float64, wantMin bool) int {
	best := -1
	var bestV float64
	for i, v := range lane {
		if math.IsNaN(v) {
			continue
		}
		if best == -1 || (wantMin && v < bestV) || (!wantMin && v > bestV) {
			best = i
			bestV = v
		}
	}
	return best
}

// ParallelLanes forks fn across workers drawn from arbor's shared
// work-stealing pool (spec.md §5) when par is true, and iterates
// sequentially on the calling goroutine otherwise. fn is invoked once
// per lane index in [0, n); it must not depend on invocation order.
func ParallelLanes(n int, par bool, fn func(i int)) {
	if !par || n <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	cpu.ForEach(n, fn)
}
