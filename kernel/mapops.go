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

import (
	"math"
	"sort"

	"github.com/arborql/arbor/dtype"
)

// unaryMath builds a same-shape map kernel from a scalar math.Func,
// covering abs/sign/sqrt/cbrt/ln/ln1p/log2/log10/exp/exp2/expm1/trig/
// ceil/floor/fract/trunc (spec.md §4.3 "Map (axis, parallel)").
func unaryMath(lane []float64, f func(float64) float64) []float64 {
	out := make([]float64, len(lane))
	for i, v := range lane {
		out[i] = f(v)
	}
	return out
}

func Abs(lane []float64) []float64   { return unaryMath(lane, math.Abs) }
func Sqrt(lane []float64) []float64  { return unaryMath(lane, math.Sqrt) }
func Cbrt(lane []float64) []float64  { return unaryMath(lane, math.Cbrt) }
func Ln(lane []float64) []float64    { return unaryMath(lane, math.Log) }
func Ln1p(lane []float64) []float64  { return unaryMath(lane, math.Log1p) }
func Log2(lane []float64) []float64  { return unaryMath(lane, math.Log2) }
func Log10(lane []float64) []float64 { return unaryMath(lane, math.Log10) }
func LogBase(lane []float64, base float64) []float64 {
	lb := math.Log(base)
	return unaryMath(lane, func(v float64) float64 { return math.Log(v) / lb })
}
func Exp(lane []float64) []float64   { return unaryMath(lane, math.Exp) }
func Exp2(lane []float64) []float64  { return unaryMath(lane, math.Exp2) }
func ExpM1(lane []float64) []float64 { return unaryMath(lane, math.Expm1) }
func Sin(lane []float64) []float64   { return unaryMath(lane, math.Sin) }
func Cos(lane []float64) []float64   { return unaryMath(lane, math.Cos) }
func Tan(lane []float64) []float64   { return unaryMath(lane, math.Tan) }
func Asin(lane []float64) []float64  { return unaryMath(lane, math.Asin) }
func Acos(lane []float64) []float64  { return unaryMath(lane, math.Acos) }
func Atan(lane []float64) []float64  { return unaryMath(lane, math.Atan) }
func Ceil(lane []float64) []float64  { return unaryMath(lane, math.Ceil) }
func Floor(lane []float64) []float64 { return unaryMath(lane, math.Floor) }
func Trunc(lane []float64) []float64 { return unaryMath(lane, math.Trunc) }
func Fract(lane []float64) []float64 {
	return unaryMath(lane, func(v float64) float64 { _, f := math.Modf(v); return f })
}

func Sign(lane []float64) []float64 {
	return unaryMath(lane, func(v float64) float64 {
		switch {
		case math.IsNaN(v):
			return v
		case v > 0:
			return 1
		case v < 0:
			return -1
		default:
			return 0
		}
	})
}

func Round(lane []float64, precision int) []float64 {
	mul := math.Pow(10, float64(precision))
	return unaryMath(lane, func(v float64) float64 { return math.Round(v*mul) / mul })
}

func Clip(lane []float64, min, max float64) []float64 {
	return unaryMath(lane, func(v float64) float64 {
		if math.IsNaN(v) {
			return v
		}
		if v < min {
			return min
		}
		if v > max {
			return max
		}
		return v
	})
}

func IsNaN(lane []float64) []bool {
	out := make([]bool, len(lane))
	for i, v := range lane {
		out[i] = math.IsNaN(v)
	}
	return out
}

func NotNaN(lane []float64) []bool {
	out := make([]bool, len(lane))
	for i, v := range lane {
		out[i] = !math.IsNaN(v)
	}
	return out
}

func IsFinite(lane []float64) []bool {
	out := make([]bool, len(lane))
	for i, v := range lane {
		out[i] = !math.IsNaN(v) && !math.IsInf(v, 0)
	}
	return out
}

func IsInf(lane []float64) []bool {
	out := make([]bool, len(lane))
	for i, v := range lane {
		out[i] = math.IsInf(v, 0)
	}
	return out
}

// Shift offsets lane by n positions (positive n shifts values forward,
// i.e. each output[i] = lane[i-n]), filling vacated positions with
// fill, written as given. There is no separate "no fill" case: a caller
// wanting the NaN sentinel in vacated positions passes math.NaN().
func Shift(lane []float64, n int, fill float64) []float64 {
	out := make([]float64, len(lane))
	for i := range out {
		src := i - n
		if src < 0 || src >= len(lane) {
			out[i] = fill
		} else {
			out[i] = lane[src]
		}
	}
	return out
}

// Diff computes lane[i] - lane[i-n], filling the first n positions with
// fill.
func Diff(lane []float64, n int, fill float64) []float64 {
	out := make([]float64, len(lane))
	for i := range out {
		src := i - n
		if src < 0 {
			out[i] = fill
		} else {
			out[i] = lane[i] - lane[src]
		}
	}
	return out
}

// PctChange computes (lane[i]-lane[i-n])/lane[i-n], NaN for the first n
// positions.
func PctChange(lane []float64, n int) []float64 {
	out := make([]float64, len(lane))
	for i := range out {
		src := i - n
		if src < 0 {
			out[i] = math.NaN()
		} else {
			out[i] = (lane[i] - lane[src]) / lane[src]
		}
	}
	return out
}

// CumSum computes the running sum, optionally Kahan-stabilized
// (spec.md §4.3 "cumsum (stable)"). The stable branch uses the same
// Neumaier (Kahan-Babuska) compensation as kernel/aggregate.go's
// kahanSum: comparing |sum| against |v| rather than folding v against
// a running compensation alone is what lets a later large-magnitude
// term not re-absorb and drop the compensation from an earlier one.
func CumSum(lane []float64, stable bool) []float64 {
	out := make([]float64, len(lane))
	var sum, c float64
	for i, v := range lane {
		if stable {
			t := sum + v
			if math.Abs(sum) >= math.Abs(v) {
				c += (sum - t) + v
			} else {
				c += (v - t) + sum
			}
			sum = t
			out[i] = sum + c
		} else {
			sum += v
			out[i] = sum
		}
	}
	return out
}

// CumProd computes the running product.
func CumProd(lane []float64) []float64 {
	out := make([]float64, len(lane))
	p := 1.0
	for i, v := range lane {
		p *= v
		out[i] = p
	}
	return out
}

// FillMethod enumerates fillna's fill strategies (spec.md §4.3).
type FillMethod string

const (
	FillForward  FillMethod = "ffill"
	FillBackward FillMethod = "bfill"
	FillValue    FillMethod = "vfill"
)

// FillNA replaces NaN entries in lane per method/value. For
// FillForward/FillBackward, value is ignored. Per spec.md §4.3's
// integer edge case, callers for non-NaN-admitting tags should skip
// calling FillNA entirely and return the array unchanged; FillNA itself
// always operates over []float64 since that is the only lane
// representation its caller ever constructs for such tags.
func FillNA(lane []float64, method FillMethod, value float64) []float64 {
	out := append([]float64(nil), lane...)
	switch method {
	case FillForward:
		var last float64 = math.NaN()
		haveLast := false
		for i, v := range out {
			if math.IsNaN(v) {
				if haveLast {
					out[i] = last
				}
			} else {
				last = v
				haveLast = true
			}
		}
	case FillBackward:
		var next float64 = math.NaN()
		haveNext := false
		for i := len(out) - 1; i >= 0; i-- {
			if math.IsNaN(out[i]) {
				if haveNext {
					out[i] = next
				}
			} else {
				next = out[i]
				haveNext = true
			}
		}
	default: // FillValue
		for i, v := range out {
			if math.IsNaN(v) {
				out[i] = value
			}
		}
	}
	return out
}

// WinsorizeMethod enumerates winsorize's outlier-detection strategies.
type WinsorizeMethod string

const (
	WinsorizeQuantile WinsorizeMethod = "quantile"
	WinsorizeMedian   WinsorizeMethod = "median"
	WinsorizeSigma    WinsorizeMethod = "sigma"
)

// Winsorize clamps outliers in lane according to method/param:
//   - quantile: clamp to the [param, 1-param] quantile range.
//   - median: clamp to median +/- param*MAD.
//   - sigma: clamp to mean +/- param*stddev.
func Winsorize(lane []float64, method WinsorizeMethod, param float64) []float64 {
	switch method {
	case WinsorizeQuantile:
		lo := Quantile(lane, param, QLinear)
		hi := Quantile(lane, 1-param, QLinear)
		return Clip(lane, lo, hi)
	case WinsorizeMedian:
		med := Median(lane)
		devs := make([]float64, len(lane))
		for i, v := range lane {
			devs[i] = math.Abs(v - med)
		}
		mad := Median(devs)
		return Clip(lane, med-param*mad, med+param*mad)
	default: // sigma
		m := Mean(lane, false, 1)
		s := Std(lane, false, 1)
		return Clip(lane, m-param*s, m+param*s)
	}
}

// ZScore standardizes lane to zero mean, unit variance.
func ZScore(lane []float64) []float64 {
	m := Mean(lane, false, 1)
	s := Std(lane, false, 1)
	out := make([]float64, len(lane))
	for i, v := range lane {
		if s == 0 {
			out[i] = 0
		} else {
			out[i] = (v - m) / s
		}
	}
	return out
}

// argsortIndices returns the permutation that sorts lane ascending,
// NaN-last, stable with respect to original position for ties
// (spec.md §9's open question on argsort stability: "the spec assumes
// NaN-last and stable with respect to position").
func argsortIndices(lane []float64, rev bool) []int {
	idx := make([]int, len(lane))
	for i := range idx {
		idx[i] = i
	}
	less := func(i, j int) bool {
		a, b := lane[idx[i]], lane[idx[j]]
		if rev {
			return dtype.CompareF64Rev(a, b) < 0
		}
		return dtype.CompareF64(a, b) < 0
	}
	sort.SliceStable(idx, less)
	return idx
}

// Argsort returns the permutation of lane's indices in ascending
// (or, if rev, descending) order.
func Argsort(lane []float64, rev bool) []int { return argsortIndices(lane, rev) }

// Rank assigns each element its rank among lane's valid entries. Ties
// receive the average of the contested ranks (spec.md §4.3). When pct
// is true the rank is divided by the count of valid (non-NaN) entries,
// not the total lane length — the behavior spec.md §9 pins down as the
// one to preserve given the open question of whether the source
// divides by window/valid count.
func Rank(lane []float64, pct bool, rev bool) []float64 {
	type entry struct {
		v   float64
		idx int
	}
	valid := make([]entry, 0, len(lane))
	for i, v := range lane {
		if !math.IsNaN(v) {
			valid = append(valid, entry{v, i})
		}
	}
	sort.Slice(valid, func(i, j int) bool {
		if rev {
			return valid[i].v > valid[j].v
		}
		return valid[i].v < valid[j].v
	})
	ranks := make([]float64, len(lane))
	for i := range ranks {
		ranks[i] = math.NaN()
	}
	i := 0
	for i < len(valid) {
		j := i
		for j < len(valid) && valid[j].v == valid[i].v {
			j++
		}
		avgRank := float64(i+j+1) / 2 // 1-based average of ranks i+1..j
		for k := i; k < j; k++ {
			ranks[valid[k].idx] = avgRank
		}
		i = j
	}
	if pct {
		n := float64(len(valid))
		if n > 0 {
			for idx := range ranks {
				if !math.IsNaN(ranks[idx]) {
					ranks[idx] /= n
				}
			}
		}
	}
	return ranks
}

// ArgPartition returns the indices of the k smallest elements of lane
// (unordered among themselves), NaN sorted last.
func ArgPartition(lane []float64, k int) []int {
	idx := argsortIndices(lane, false)
	if k > len(idx) {
		k = len(idx)
	}
	return idx[:k]
}

// Partition returns the k smallest values of lane (unordered).
func Partition(lane []float64, k int) []float64 {
	idx := ArgPartition(lane, k)
	out := make([]float64, len(idx))
	for i, ix := range idx {
		out[i] = lane[ix]
	}
	return out
}

// SplitGroup buckets each element of lane into one of g roughly
// equal-sized rank groups (1..g), optionally reversed.
func SplitGroup(lane []float64, g int, rev bool) []float64 {
	ranks := Rank(lane, true, rev)
	out := make([]float64, len(lane))
	for i, r := range ranks {
		if math.IsNaN(r) {
			out[i] = math.NaN()
			continue
		}
		bucket := int(math.Ceil(r*float64(g))) - 1
		if bucket < 0 {
			bucket = 0
		}
		if bucket >= g {
			bucket = g - 1
		}
		out[i] = float64(bucket + 1)
	}
	return out
}
