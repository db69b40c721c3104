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

package relate

import (
	"sort"
	"testing"

	"github.com/arborql/arbor/dynamic"
	"github.com/arborql/arbor/tensor"
)

func i64Keys(vals ...int64) Keys {
	return Keys{dynamic.FromI64(tensor.FromSlice(vals))}
}

func TestGroupIndicesSequential(t *testing.T) {
	keys := i64Keys(1, 2, 1, 3, 2, 1)
	g, err := GroupIndices(keys, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := g.Order; len(got) != 3 {
		t.Fatalf("expected 3 distinct groups, got %d", len(got))
	}
	k1, err := rowKey(keys, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := g.Rows(k1); !equalInts(got, []int{0, 2, 5}) {
		t.Fatalf("group for key 1 = %v", got)
	}
}

func TestGroupIndicesParallelMatchesSequential(t *testing.T) {
	vals := make([]int64, 5000)
	for i := range vals {
		vals[i] = int64(i % 37)
	}
	keys := i64Keys(vals...)

	seq, err := GroupIndices(keys, false)
	if err != nil {
		t.Fatal(err)
	}
	par, err := GroupIndices(keys, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(seq.Order) != len(par.Order) {
		t.Fatalf("group count mismatch: seq=%d par=%d", len(seq.Order), len(par.Order))
	}
	for _, k := range seq.Order {
		a := append([]int(nil), seq.Rows(k)...)
		b := append([]int(nil), par.Rows(k)...)
		sort.Ints(a)
		sort.Ints(b)
		if !equalInts(a, b) {
			t.Fatalf("rows for key %q differ: seq=%v par=%v", k, a, b)
		}
	}
}

func TestJoinLeft(t *testing.T) {
	// left join keeps exactly one output row per left row (spec.md
	// §4.4.6/§8): a left key matching several right rows takes the
	// first matching right row rather than expanding into a pair per
	// match.
	left := i64Keys(1, 2, 3)
	right := i64Keys(2, 2, 4)
	pairs, err := Join(left, right, false, false)
	if err != nil {
		t.Fatal(err)
	}
	want := [][2]int{{0, NoMatch}, {1, 0}, {2, NoMatch}}
	if len(pairs.Left) != len(want) {
		t.Fatalf("got %d pairs, want %d: %+v", len(pairs.Left), len(want), pairs)
	}
	for i, w := range want {
		if pairs.Left[i] != w[0] || pairs.Right[i] != w[1] {
			t.Fatalf("pair %d = (%d,%d), want %v", i, pairs.Left[i], pairs.Right[i], w)
		}
	}
}

func TestJoinOuterKeepsUnmatchedRight(t *testing.T) {
	left := i64Keys(1, 2)
	right := i64Keys(2, 3)
	pairs, err := Join(left, right, true, false)
	if err != nil {
		t.Fatal(err)
	}
	foundUnmatchedRight := false
	for i := range pairs.Left {
		if pairs.Left[i] == NoMatch && pairs.Right[i] == 1 {
			foundUnmatchedRight = true
		}
	}
	if !foundUnmatchedRight {
		t.Fatalf("expected an unmatched-right pair for key 3: %+v", pairs)
	}
}

func TestUniqueKeepFirstAndLast(t *testing.T) {
	keys := i64Keys(5, 5, 6, 5, 6)
	first, err := UniqueKeep(keys, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if !equalInts(first, []int{0, 2}) {
		t.Fatalf("keep-first = %v", first)
	}
	last, err := UniqueKeep(keys, true, false)
	if err != nil {
		t.Fatal(err)
	}
	if !equalInts(last, []int{3, 4}) {
		t.Fatalf("keep-last = %v", last)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
