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
	"fmt"
	"strconv"

	"github.com/dchest/siphash"

	"github.com/arborql/arbor/dtype"
	"github.com/arborql/arbor/dynamic"
)

// seed keys the row hash. Fixed rather than random: the same key
// columns must partition identically across a sequential and a
// parallel run for results to be comparable in tests.
const (
	seedK0 = 0x5bd1e995_9e3779b9
	seedK1 = 0x85ebca6b_c2b2ae35
)

// Keys bundles the columns that make up a composite relational key.
// Every column must share the same length; rowKey reads one row across
// all of them.
type Keys []dynamic.ArrOk

// Len reports the shared row count, or 0 for an empty key set.
func (k Keys) Len() int {
	if len(k) == 0 {
		return 0
	}
	return k[0].Len()
}

// rowKey renders row i of every key column into a single comparable Go
// string. Equality of the returned string is exact key equality — the
// siphash in hashOf is only ever used to choose a partition, never as a
// substitute for this comparison, so hash collisions cannot corrupt a
// group or join result.
func rowKey(keys Keys, row int) (string, error) {
	if len(keys) == 1 {
		return scalarString(keys[0], row)
	}
	buf := make([]byte, 0, 16*len(keys))
	for _, col := range keys {
		s, err := scalarString(col, row)
		if err != nil {
			return "", err
		}
		buf = strconv.AppendQuote(buf, s)
		buf = append(buf, '|')
	}
	return string(buf), nil
}

// scalarString formats the value of column a at row i in a form that
// compares equal iff the underlying values compare equal. dispatch_gen.go
// enumerates the same closed tag set.
func scalarString(a dynamic.ArrOk, i int) (string, error) {
	switch a.Tag() {
	case dtype.Bool:
		return strconv.FormatBool(dynamic.Into[bool](a).Lane1D()[i]), nil
	case dtype.F32:
		return strconv.FormatFloat(float64(dynamic.Into[float32](a).Lane1D()[i]), 'g', -1, 32), nil
	case dtype.F64:
		return strconv.FormatFloat(dynamic.Into[float64](a).Lane1D()[i], 'g', -1, 64), nil
	case dtype.I32:
		return strconv.FormatInt(int64(dynamic.Into[int32](a).Lane1D()[i]), 10), nil
	case dtype.I64:
		return strconv.FormatInt(dynamic.Into[int64](a).Lane1D()[i], 10), nil
	case dtype.Usize:
		return strconv.FormatUint(uint64(dynamic.Into[uint64](a).Lane1D()[i]), 10), nil
	case dtype.String:
		return dynamic.Into[string](a).Lane1D()[i], nil
	case dtype.Str:
		return dynamic.Into[string](a).Lane1D()[i], nil
	case dtype.DateTime:
		return strconv.FormatInt(int64(dynamic.Into[dtype.DateTime](a).Lane1D()[i]), 10), nil
	default:
		return "", fmt.Errorf("relate: %s is not a valid key column type", a.Tag())
	}
}

// hashOf seeds a siphash-128 of s and folds it down to 64 bits, the same
// primitive the teacher's vectorized hash-partitioning path uses
// (vm/siphash_generic.go: siphash.Hash128(k0, k1, buf)) — arbor only
// needs one partition index per row, so the low half is kept and the
// high half discarded.
func hashOf(s string) uint64 {
	lo, _ := siphash.Hash128(seedK0, seedK1, []byte(s))
	return lo
}
