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
	"testing"
)

func almostEqual(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Abs(a-b) < 1e-9
}

func TestTsSmaRollingMean(t *testing.T) {
	lane := []float64{1.0, 2.0, math.NaN(), 4.0, 5.0}
	got := TsSma(lane, 3, 2, false)
	want := []float64{math.NaN(), 1.5, 1.5, 3.0, 4.5}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Fatalf("TsSma[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTsSmaIdempotentAtWindowOne(t *testing.T) {
	lane := []float64{3.0, math.NaN(), 7.0}
	got := TsSma(lane, 1, 1, false)
	for i := range lane {
		if !almostEqual(got[i], lane[i]) {
			t.Fatalf("TsSma(w=1)[%d] = %v, want %v", i, got[i], lane[i])
		}
	}
}

func TestStableSumCancellation(t *testing.T) {
	lane := []float64{1e16, 1.0, -1e16}
	if got := Sum(lane, false); got != 0.0 {
		t.Fatalf("non-stable sum = %v, want 0.0", got)
	}
	if got := Sum(lane, true); !almostEqual(got, 1.0) {
		t.Fatalf("stable sum = %v, want 1.0", got)
	}
}

func TestAggregationOn2DFloat(t *testing.T) {
	rows := [][]float64{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10, 11, 12}}
	for i, row := range rows {
		if got := Sum(row, false); got != float64([]int{10, 26, 42}[i]) {
			t.Fatalf("sum(row %d) = %v", i, got)
		}
	}
	cols := [][]float64{{1, 5, 9}, {2, 6, 10}, {3, 7, 11}, {4, 8, 12}}
	wantMean := []float64{5, 6, 7, 8}
	wantStd := []float64{4, 4, 4, 4}
	for i, col := range cols {
		if got := Mean(col, false, 1); got != wantMean[i] {
			t.Fatalf("mean(col %d) = %v, want %v", i, got, wantMean[i])
		}
		if got := Std(col, false, 2); !almostEqual(got, wantStd[i]) {
			t.Fatalf("std(col %d) = %v, want %v", i, got, wantStd[i])
		}
	}
}

func TestRankTiesAverageAndPctOverValidCount(t *testing.T) {
	lane := []float64{1, 1, 2, math.NaN()}
	ranks := Rank(lane, false, false)
	if !almostEqual(ranks[0], 1.5) || !almostEqual(ranks[1], 1.5) || !almostEqual(ranks[2], 3) {
		t.Fatalf("unexpected ranks: %v", ranks)
	}
	pct := Rank(lane, true, false)
	// 3 valid entries: ranks 1.5, 1.5, 3 divided by 3
	if !almostEqual(pct[0], 0.5) || !almostEqual(pct[2], 1.0) {
		t.Fatalf("unexpected pct ranks: %v", pct)
	}
}

func TestTimeRollingSumOverStartIndices(t *testing.T) {
	starts := []int{0, 0, 2, 3}
	vals := []float64{1, 2, 3, 4}
	got := make([]float64, len(vals))
	for i, s := range starts {
		got[i] = Sum(vals[s:i+1], false)
	}
	want := []float64{1, 3, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rolling-by-time sum[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
