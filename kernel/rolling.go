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

	"github.com/arborql/arbor/internal/arberr"
)

// validateWindow enforces spec.md §4.3's rolling contract: window
// positive, min_periods <= window, with min_periods <= 0 taken as the
// default of 1.
func validateWindow(window, minPeriods int) error {
	if window <= 0 {
		return arberr.ErrBadWindow
	}
	if minPeriods <= 0 {
		minPeriods = 1
	}
	if minPeriods > window {
		return arberr.ErrBadMinPeriods
	}
	return nil
}

// rollingApply slides a window of size `window` across lane and reduces
// each window with reduceFn, outputting NaN wherever fewer than
// minPeriods non-NaN values fall in the window (spec.md §4.3: "The
// first window-1 positions output the NaN sentinel if fewer than
// min_periods valid values are in the window").
func rollingApply(lane []float64, window, minPeriods int, reduceFn func(win []float64) float64) []float64 {
	if minPeriods <= 0 {
		minPeriods = 1
	}
	out := make([]float64, len(lane))
	for i := range lane {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		win := lane[start : i+1]
		valid := 0
		for _, v := range win {
			if !math.IsNaN(v) {
				valid++
			}
		}
		if valid < minPeriods {
			out[i] = math.NaN()
			continue
		}
		out[i] = reduceFn(win)
	}
	return out
}

// Fold applies an arbitrary same-shape-as-Ts* rolling reduction over
// lane, for callers (DataDict.RollingApply) that supply their own
// reducer instead of one of the named ts_* kernels below.
func Fold(lane []float64, window, minPeriods int, reduceFn func(win []float64) float64) []float64 {
	return rollingApply(lane, window, minPeriods, reduceFn)
}

func TsSum(lane []float64, window, minPeriods int, stable bool) []float64 {
	return rollingApply(lane, window, minPeriods, func(w []float64) float64 { return Sum(w, stable) })
}

// TsSma is the rolling mean (spec.md's "ts_sma"). At window=1 it is the
// identity on non-NaN values, NaN-preserving (spec.md §8's rolling
// idempotence property).
func TsSma(lane []float64, window, minPeriods int, stable bool) []float64 {
	return rollingApply(lane, window, minPeriods, func(w []float64) float64 { return Mean(w, stable, 1) })
}

// TsEwm computes an exponentially-weighted moving average over each
// window with smoothing factor alpha = 2/(window+1), the conventional
// span-based EWM parameterization.
func TsEwm(lane []float64, window, minPeriods int) []float64 {
	alpha := 2.0 / (float64(window) + 1)
	return rollingApply(lane, window, minPeriods, func(w []float64) float64 {
		var num, den float64
		weight := 1.0
		for i := len(w) - 1; i >= 0; i-- {
			if math.IsNaN(w[i]) {
				weight *= (1 - alpha)
				continue
			}
			num += weight * w[i]
			den += weight
			weight *= (1 - alpha)
		}
		if den == 0 {
			return math.NaN()
		}
		return num / den
	})
}

// TsWma computes a linearly-weighted moving average (most recent sample
// weighted highest).
func TsWma(lane []float64, window, minPeriods int) []float64 {
	return rollingApply(lane, window, minPeriods, func(w []float64) float64 {
		var num, den float64
		for i, v := range w {
			if math.IsNaN(v) {
				continue
			}
			weight := float64(i + 1)
			num += weight * v
			den += weight
		}
		if den == 0 {
			return math.NaN()
		}
		return num / den
	})
}

func TsStd(lane []float64, window, minPeriods int, stable bool) []float64 {
	return rollingApply(lane, window, minPeriods, func(w []float64) float64 { return Std(w, stable, 1) })
}

func TsVar(lane []float64, window, minPeriods int, stable bool) []float64 {
	return rollingApply(lane, window, minPeriods, func(w []float64) float64 { return Var(w, stable, 1) })
}

func TsSkew(lane []float64, window, minPeriods int) []float64 {
	return rollingApply(lane, window, minPeriods, func(w []float64) float64 { return Skew(w, 1) })
}

func TsKurt(lane []float64, window, minPeriods int) []float64 {
	return rollingApply(lane, window, minPeriods, func(w []float64) float64 { return Kurt(w, 1) })
}

func TsMin(lane []float64, window, minPeriods int) []float64 {
	return rollingApply(lane, window, minPeriods, Min)
}

func TsMax(lane []float64, window, minPeriods int) []float64 {
	return rollingApply(lane, window, minPeriods, Max)
}

func TsArgmin(lane []float64, window, minPeriods int) []float64 {
	return rollingApply(lane, window, minPeriods, func(w []float64) float64 { return float64(Argmin(w)) })
}

func TsArgmax(lane []float64, window, minPeriods int) []float64 {
	return rollingApply(lane, window, minPeriods, func(w []float64) float64 { return float64(Argmax(w)) })
}

// TsRank ranks the last element of each window among the window's valid
// entries. When pct is true the rank divides by the count of valid
// entries in the window, per spec.md §9's resolved open question.
func TsRank(lane []float64, window, minPeriods int, pct, rev bool) []float64 {
	return rollingApply(lane, window, minPeriods, func(w []float64) float64 {
		ranks := Rank(w, pct, rev)
		return ranks[len(ranks)-1]
	})
}

func TsProd(lane []float64, window, minPeriods int) []float64 {
	return rollingApply(lane, window, minPeriods, Prod)
}

// TsProdMean is the geometric mean of each window.
func TsProdMean(lane []float64, window, minPeriods int) []float64 {
	return rollingApply(lane, window, minPeriods, func(w []float64) float64 {
		p := Prod(w)
		n := CountNotNaN(w)
		if n == 0 {
			return math.NaN()
		}
		return math.Pow(p, 1/n)
	})
}

// TsMinMaxNorm min-max normalizes the last element of each window
// against the window's range.
func TsMinMaxNorm(lane []float64, window, minPeriods int) []float64 {
	return rollingApply(lane, window, minPeriods, func(w []float64) float64 {
		lo, hi := Min(w), Max(w)
		last := w[len(w)-1]
		if hi == lo {
			return 0
		}
		return (last - lo) / (hi - lo)
	})
}

// TsMeanStdNorm z-scores the last element of each window against the
// window's mean/std (a rolling zscore).
func TsMeanStdNorm(lane []float64, window, minPeriods int) []float64 {
	return rollingApply(lane, window, minPeriods, func(w []float64) float64 {
		m := Mean(w, false, 1)
		s := Std(w, false, 1)
		last := w[len(w)-1]
		if s == 0 {
			return 0
		}
		return (last - m) / s
	})
}

// TsStable is the rolling Kahan-stabilized sum, an explicit alias for
// TsSum(..., stable=true) matching the source's distinct entry point.
func TsStable(lane []float64, window, minPeriods int) []float64 {
	return TsSum(lane, window, minPeriods, true)
}

// tsRegFit fits y=w against x=0..len(w)-1 by least squares and returns
// the slope and intercept; shared by TsReg, TsTsf and TsRegSlope.
func tsRegFit(w []float64) (slope, intercept float64) {
	x := make([]float64, len(w))
	for i := range x {
		x[i] = float64(i)
	}
	res := Lstsq(x, w)
	return res.Params[1], res.Params[0]
}

// TsReg returns, for each window, the fitted value at the window's last
// position.
func TsReg(lane []float64, window, minPeriods int) []float64 {
	return rollingApply(lane, window, minPeriods, func(w []float64) float64 {
		slope, intercept := tsRegFit(w)
		return slope*float64(len(w)-1) + intercept
	})
}

// TsTsf is "time series forecast": the fitted value one step beyond the
// window's last position.
func TsTsf(lane []float64, window, minPeriods int) []float64 {
	return rollingApply(lane, window, minPeriods, func(w []float64) float64 {
		slope, intercept := tsRegFit(w)
		return slope*float64(len(w)) + intercept
	})
}

func TsRegSlope(lane []float64, window, minPeriods int) []float64 {
	return rollingApply(lane, window, minPeriods, func(w []float64) float64 {
		slope, _ := tsRegFit(w)
		return slope
	})
}

func TsRegIntercept(lane []float64, window, minPeriods int) []float64 {
	return rollingApply(lane, window, minPeriods, func(w []float64) float64 {
		_, intercept := tsRegFit(w)
		return intercept
	})
}

func TsRegResidMean(lane []float64, window, minPeriods int) []float64 {
	return rollingApply(lane, window, minPeriods, func(w []float64) float64 {
		slope, intercept := tsRegFit(w)
		var sum float64
		for i, v := range w {
			fitted := slope*float64(i) + intercept
			sum += v - fitted
		}
		return sum / float64(len(w))
	})
}

// rollingPairwise applies a pairwise reducer (Cov/Corr) over matching
// windows of x and y.
func rollingPairwise(x, y []float64, window, minPeriods int, reduceFn func(wx, wy []float64) float64) []float64 {
	out := make([]float64, len(x))
	for i := range x {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		wx, wy := x[start:i+1], y[start:i+1]
		valid := 0
		for j := range wx {
			if !math.IsNaN(wx[j]) && !math.IsNaN(wy[j]) {
				valid++
			}
		}
		if valid < minPeriods {
			out[i] = math.NaN()
			continue
		}
		out[i] = reduceFn(wx, wy)
	}
	return out
}

func TsCov(x, y []float64, window, minPeriods int) []float64 {
	return rollingPairwise(x, y, window, minPeriods, Cov)
}

func TsCorr(x, y []float64, window, minPeriods int) []float64 {
	return rollingPairwise(x, y, window, minPeriods, func(wx, wy []float64) float64 { return Corr(wx, wy, Pearson) })
}

// FoldByStarts reduces lane[starts[i]:i+1] with reduceFn for every i,
// the time-window counterpart of rollingApply: rather than a fixed
// element count, each window's start is whatever the window package's
// two-pointer scan over a datetime lane has already derived (spec.md
// §4.3's time-window family, "rolling_apply_by_time"). min_periods still
// gates the NaN-fill contract the same way the fixed-size family does.
func FoldByStarts(lane []float64, starts []int, minPeriods int, reduceFn func(win []float64) float64) []float64 {
	if minPeriods <= 0 {
		minPeriods = 1
	}
	out := make([]float64, len(lane))
	for i := range lane {
		s := starts[i]
		if s < 0 {
			s = 0
		}
		if s > i {
			out[i] = math.NaN()
			continue
		}
		win := lane[s : i+1]
		valid := 0
		for _, v := range win {
			if !math.IsNaN(v) {
				valid++
			}
		}
		if valid < minPeriods {
			out[i] = math.NaN()
			continue
		}
		out[i] = reduceFn(win)
	}
	return out
}
