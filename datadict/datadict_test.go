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

package datadict

import (
	"math"
	"testing"

	"github.com/arborql/arbor/expr"
	"github.com/arborql/arbor/selector"
)

func mustName(t *testing.T, s string) selector.Selector {
	t.Helper()
	sel, err := selector.NewName(s)
	if err != nil {
		t.Fatal(err)
	}
	return sel
}

func newTestDict(t *testing.T) *DataDict {
	t.Helper()
	d, err := New([]*expr.Expr{
		expr.FromStrings([]string{"a", "a", "b", "b", "c"}),
		expr.FromFloat64([]float64{1, 2, 3, 4, 5}),
	}, []string{"key", "val"})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestNewAssignsSyntheticNames(t *testing.T) {
	d, err := New([]*expr.Expr{expr.FromFloat64([]float64{1, 2})}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Names(); len(got) != 1 || got[0] != "column_0" {
		t.Fatalf("Names() = %v, want [column_0]", got)
	}
}

func TestGetByRegexSelector(t *testing.T) {
	d := newTestDict(t)
	cols, err := d.Get(mustName(t, "^v.*$"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cols) != 1 || cols[0].Name() != "val" {
		t.Fatalf("regex selector matched %d cols, want [val]", len(cols))
	}
}

func TestDropRemovesColumn(t *testing.T) {
	d := newTestDict(t)
	if err := d.Drop(mustName(t, "key")); err != nil {
		t.Fatal(err)
	}
	if d.NCols() != 1 || d.Names()[0] != "val" {
		t.Fatalf("after Drop: names=%v", d.Names())
	}
}

func TestGroupByApplySum(t *testing.T) {
	d := newTestDict(t)
	g, err := d.GroupBy(mustName(t, "key"), true, false)
	if err != nil {
		t.Fatal(err)
	}
	if g.NGroups() != 3 {
		t.Fatalf("NGroups() = %d, want 3", g.NGroups())
	}
	out, err := g.Apply(func(lane []float64) float64 {
		sum := 0.0
		for _, v := range lane {
			sum += v
		}
		return sum
	})
	if err != nil {
		t.Fatal(err)
	}
	valCol, err := out.Get(mustName(t, "val"))
	if err != nil {
		t.Fatal(err)
	}
	sums, err := expr.ToFloat64(valCol[0], nil)
	if err != nil {
		t.Fatal(err)
	}
	want := map[float64]bool{3: true, 7: true, 5: true}
	for _, s := range sums {
		if !want[s] {
			t.Errorf("unexpected group sum %v in %v", s, sums)
		}
	}
}

func TestJoinLeftFillsMissingAsNaN(t *testing.T) {
	left, err := New([]*expr.Expr{
		expr.FromInt64([]int64{1, 2, 3}),
		expr.FromFloat64([]float64{10, 20, 30}),
	}, []string{"id", "lv"})
	if err != nil {
		t.Fatal(err)
	}
	right, err := New([]*expr.Expr{
		expr.FromInt64([]int64{2, 3}),
		expr.FromFloat64([]float64{200, 300}),
	}, []string{"id", "rv"})
	if err != nil {
		t.Fatal(err)
	}
	joined, err := left.Join(right, mustName(t, "id"), mustName(t, "id"), LeftJoin, false, true)
	if err != nil {
		t.Fatal(err)
	}
	rvCol, err := joined.Get(mustName(t, "rv"))
	if err != nil {
		t.Fatal(err)
	}
	rv, err := expr.ToFloat64(rvCol[0], nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(rv) != 3 {
		t.Fatalf("len(rv) = %d, want 3", len(rv))
	}
	if !math.IsNaN(rv[0]) {
		t.Errorf("rv[0] = %v, want NaN for unmatched left row", rv[0])
	}
}

func TestSortByMultiKeyReverse(t *testing.T) {
	d, err := New([]*expr.Expr{
		expr.FromStrings([]string{"a", "a", "b"}),
		expr.FromFloat64([]float64{1, 3, 2}),
	}, []string{"grp", "v"})
	if err != nil {
		t.Fatal(err)
	}
	sorted, err := d.SortBy([]selector.Selector{mustName(t, "grp"), mustName(t, "v")}, []bool{false, true})
	if err != nil {
		t.Fatal(err)
	}
	vCol, err := sorted.Get(mustName(t, "v"))
	if err != nil {
		t.Fatal(err)
	}
	v, err := expr.ToFloat64(vCol[0], nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{3, 1, 2}
	for i, w := range want {
		if v[i] != w {
			t.Errorf("v[%d] = %v, want %v (got %v)", i, v[i], w, v)
		}
	}
}

func TestUniqueKeepsFirstOccurrence(t *testing.T) {
	d := newTestDict(t)
	u, err := d.Unique(mustName(t, "key"), false, false)
	if err != nil {
		t.Fatal(err)
	}
	if u.NCols() != 2 {
		t.Fatalf("NCols() = %d, want 2", u.NCols())
	}
	valCol, err := u.Get(mustName(t, "val"))
	if err != nil {
		t.Fatal(err)
	}
	vals, err := expr.ToFloat64(valCol[0], nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 3 || vals[0] != 1 || vals[1] != 3 {
		t.Fatalf("Unique(keepLast=false) kept %v, want first occurrences [1 3 5]", vals)
	}
}

func TestDropNaRowsDropsOnNaN(t *testing.T) {
	d, err := New([]*expr.Expr{
		expr.FromFloat64([]float64{1, math.NaN(), 3}),
	}, []string{"v"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := d.DropNaRows(selector.NewAll())
	if err != nil {
		t.Fatal(err)
	}
	vCol, err := out.Get(mustName(t, "v"))
	if err != nil {
		t.Fatal(err)
	}
	vals, err := expr.ToFloat64(vCol[0], nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 2 || vals[0] != 1 || vals[1] != 3 {
		t.Fatalf("DropNaRows kept %v, want [1 3]", vals)
	}
}

func TestApplyPreservesNames(t *testing.T) {
	d := newTestDict(t)
	out, err := d.Apply(func(e *expr.Expr) *expr.Expr { return e })
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Names(); got[0] != "key" || got[1] != "val" {
		t.Fatalf("Apply changed names to %v", got)
	}
}
