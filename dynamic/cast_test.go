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

package dynamic

import (
	"testing"

	"github.com/arborql/arbor/dtype"
	"github.com/arborql/arbor/tensor"
)

func TestCastRoundTripWidensLosslessly(t *testing.T) {
	i32 := FromI32(tensor.FromSlice([]int32{1, 2, 3}))
	wide, err := i32.Cast(dtype.I64, 0)
	if err != nil {
		t.Fatal(err)
	}
	back, err := wide.Cast(dtype.I32, 0)
	if err != nil {
		t.Fatal(err)
	}
	got := Into[int32](back).Lane1D()
	want := []int32{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("round trip[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestCastIdentityReturnsSameTag(t *testing.T) {
	f := FromF64(tensor.FromSlice([]float64{1.5}))
	same, err := f.Cast(dtype.F64, 0)
	if err != nil {
		t.Fatal(err)
	}
	if same.Tag() != dtype.F64 {
		t.Fatalf("identity cast changed tag to %s", same.Tag())
	}
}

func TestCastDateTimeRequiresUnit(t *testing.T) {
	dt := FromDateTime(tensor.FromSlice([]dtype.DateTime{1_000_000}))
	ms, err := dt.Cast(dtype.I64, dtype.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	got := Into[int64](ms).Lane1D()[0]
	if got != 1000 {
		t.Fatalf("DateTime->ms cast = %d, want 1000", got)
	}
}

func TestIntoPanicsOnTagMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Into to panic on tag mismatch")
		}
	}()
	a := FromF64(tensor.FromSlice([]float64{1}))
	_ = Into[int64](a)
}

func TestAsIsSafeOnMismatch(t *testing.T) {
	a := FromF64(tensor.FromSlice([]float64{1}))
	if _, ok := As[int64](a); ok {
		t.Fatal("expected As to report false on tag mismatch")
	}
}
