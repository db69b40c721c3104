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

package tensor

import "testing"

func TestViewAlwaysSucceeds(t *testing.T) {
	a := FromSlice([]float64{1, 2, 3})
	v := a.AsView()
	if v.Mode() != View {
		t.Fatalf("expected View mode, got %v", v.Mode())
	}
	if len(v.Raw()) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(v.Raw()))
	}
}

func TestViewMutRequiresOwnedOrViewMut(t *testing.T) {
	a := FromSlice([]float64{1, 2, 3})
	if _, ok := a.AsViewMut(); !ok {
		t.Fatal("expected Owned array to yield a ViewMut")
	}
	view := a.AsView()
	if _, ok := view.AsViewMut(); ok {
		t.Fatal("expected View to not yield a ViewMut")
	}
}

func TestToOwnedCopies(t *testing.T) {
	base := []float64{1, 2, 3}
	a := FromSlice(base)
	view := a.AsView()
	owned := view.ToOwned()
	owned.Raw()[0] = 99
	if base[0] == 99 {
		t.Fatal("ToOwned on a View must deep-copy, not alias the source")
	}
}

func TestFoldSumAxis1(t *testing.T) {
	a := NewOwned[float64](Shape{3, 4})
	vals := [][]float64{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10, 11, 12}}
	for i, row := range vals {
		for j, v := range row {
			a.Raw()[i*4+j] = v
		}
	}
	sum := Fold(a, 1, func(lane []float64) float64 {
		var s float64
		for _, v := range lane {
			s += v
		}
		return s
	})
	want := []float64{10, 26, 42}
	got := sum.Raw()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sum(axis=1)[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
