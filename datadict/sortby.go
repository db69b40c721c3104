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
	"fmt"
	"sort"

	"github.com/arborql/arbor/dtype"
	"github.com/arborql/arbor/dynamic"
	"github.com/arborql/arbor/internal/arberr"
	"github.com/arborql/arbor/selector"
)

// SortBy is the multi-key, per-key-reverse sort SPEC_FULL.md §D
// supplements beyond spec.md's distillation (grounded in
// original_source/tea-lazy/src/datadict/dict.rs's sort routines, which
// accept a per-column direction vector rather than a single global
// one). cols selects one or more sort keys in priority order; rev must
// either be empty (ascending throughout) or line up one-to-one with the
// resolved key columns. Ties use dtype's NaN-last total order, matching
// every other ranking/sorting operation in this engine.
func (d *DataDict) SortBy(cols []selector.Selector, rev []bool) (*DataDict, error) {
	var keyIdxs []int
	for _, sel := range cols {
		idxs, err := resolveSelector(sel, d.names, d.byName)
		if err != nil {
			return nil, err
		}
		keyIdxs = append(keyIdxs, idxs...)
	}
	if len(rev) != 0 && len(rev) != len(keyIdxs) {
		return nil, fmt.Errorf("%w: %d reverse flags for %d sort keys", arberr.ErrShapeMismatch, len(rev), len(keyIdxs))
	}

	nRows, err := d.rowCount()
	if err != nil {
		return nil, err
	}

	keys := make([]dynamic.ArrOk, len(keyIdxs))
	for i, idx := range keyIdxs {
		a, err := d.cols[idx].Arr(nil)
		if err != nil {
			return nil, err
		}
		keys[i] = a
	}

	order := make([]int, nRows)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		for k, key := range keys {
			reverse := len(rev) != 0 && rev[k]
			c := compareKeyRow(key, a, b)
			if c == 0 {
				continue
			}
			if reverse {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	return gatherRows(d, order)
}

// compareKeyRow orders rows i and j of a single key column, using
// dtype's NaN-last ascending total order for floating columns and plain
// comparisons elsewhere; unsupported key tags always compare equal so a
// later key (or input order, for a stable sort) decides.
func compareKeyRow(key dynamic.ArrOk, i, j int) int {
	switch key.Tag() {
	case dtype.F32:
		lane := dynamic.Into[float32](key).Lane1D()
		return dtype.CompareF64(float64(lane[i]), float64(lane[j]))
	case dtype.F64:
		lane := dynamic.Into[float64](key).Lane1D()
		return dtype.CompareF64(lane[i], lane[j])
	case dtype.I32:
		lane := dynamic.Into[int32](key).Lane1D()
		return compareOrdered(lane[i], lane[j])
	case dtype.I64:
		lane := dynamic.Into[int64](key).Lane1D()
		return compareOrdered(lane[i], lane[j])
	case dtype.Usize:
		lane := dynamic.Into[uint64](key).Lane1D()
		return compareOrdered(lane[i], lane[j])
	case dtype.Bool:
		lane := dynamic.Into[bool](key).Lane1D()
		return compareBool(lane[i], lane[j])
	case dtype.String, dtype.Str:
		lane := dynamic.Into[string](key).Lane1D()
		return compareOrdered(lane[i], lane[j])
	case dtype.DateTime:
		lane := dynamic.Into[dtype.DateTime](key).Lane1D()
		return dtype.CompareDateTime(lane[i], lane[j])
	default:
		return 0
	}
}

func compareOrdered[T int32 | int64 | uint64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a && b:
		return -1
	default:
		return 1
	}
}

func (d *DataDict) rowCount() (int, error) {
	if len(d.cols) == 0 {
		return 0, nil
	}
	a, err := d.cols[0].Arr(nil)
	if err != nil {
		return 0, err
	}
	return a.Len(), nil
}
