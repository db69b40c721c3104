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

package codec

import (
	"math"
	"testing"

	"github.com/arborql/arbor/datadict"
	"github.com/arborql/arbor/dynamic"
	"github.com/arborql/arbor/expr"
	"github.com/arborql/arbor/tensor"
)

func TestEncodeDecodeArrFloat(t *testing.T) {
	src := dynamic.FromF64(tensor.FromSlice([]float64{1, 2, math.NaN(), 4}))
	blob, err := EncodeArr(src)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeArr(blob)
	if err != nil {
		t.Fatal(err)
	}
	arr, ok := dynamic.As[float64](got)
	if !ok {
		t.Fatalf("decoded tag = %v, want F64", got.Tag())
	}
	lane := arr.Lane1D()
	want := []float64{1, 2, 0 /* checked separately */, 4}
	for i, v := range want {
		if i == 2 {
			if !math.IsNaN(lane[i]) {
				t.Errorf("lane[2] = %v, want NaN", lane[i])
			}
			continue
		}
		if lane[i] != v {
			t.Errorf("lane[%d] = %v, want %v", i, lane[i], v)
		}
	}
}

func TestEncodeDecodeArrString(t *testing.T) {
	src := dynamic.FromString(tensor.FromSlice([]string{"alpha", "", "beta"}))
	blob, err := EncodeArr(src)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeArr(blob)
	if err != nil {
		t.Fatal(err)
	}
	arr, ok := dynamic.As[string](got)
	if !ok {
		t.Fatalf("decoded tag = %v, want String", got.Tag())
	}
	want := []string{"alpha", "", "beta"}
	for i, v := range want {
		if arr.Lane1D()[i] != v {
			t.Errorf("lane[%d] = %q, want %q", i, arr.Lane1D()[i], v)
		}
	}
}

func TestDumpLoadDict(t *testing.T) {
	a := expr.FromArr(dynamic.FromF64(tensor.FromSlice([]float64{1, 2, 3})))
	b := expr.FromArr(dynamic.FromI64(tensor.FromSlice([]int64{10, 20, 30})))
	d, err := datadict.New([]*expr.Expr{a, b}, []string{"x", "y"})
	if err != nil {
		t.Fatal(err)
	}
	blob, err := DumpDict(d)
	if err != nil {
		t.Fatal(err)
	}
	got, err := LoadDict(blob)
	if err != nil {
		t.Fatal(err)
	}
	if got.NCols() != 2 {
		t.Fatalf("NCols() = %d, want 2", got.NCols())
	}
	names := got.Names()
	if names[0] != "x" || names[1] != "y" {
		t.Fatalf("Names() = %v", names)
	}
	col, err := got.Column(0).Arr(got.AsContext())
	if err != nil {
		t.Fatal(err)
	}
	xs, ok := dynamic.As[float64](col)
	if !ok {
		t.Fatalf("column 0 tag = %v, want F64", col.Tag())
	}
	if xs.Lane1D()[1] != 2 {
		t.Errorf("x[1] = %v, want 2", xs.Lane1D()[1])
	}
}
