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

	"github.com/arborql/arbor/selector"
)

// DropNaRows returns a new DataDict with every row dropped that carries
// a missing value in any of the columns subset selects
// (original_source's "drop_na" — SPEC_FULL.md §D). Only numeric columns
// carry a missing-value representation (NaN, the same sentinel every
// aggregation/rolling kernel in this package already treats as
// missing); non-numeric columns in subset never cause a row to drop.
func (d *DataDict) DropNaRows(subset selector.Selector) (*DataDict, error) {
	idxs, err := resolveSelector(subset, d.names, d.byName)
	if err != nil {
		return nil, err
	}
	nRows, err := d.rowCount()
	if err != nil {
		return nil, err
	}

	var lanes [][]float64
	for _, idx := range idxs {
		a, err := d.cols[idx].Arr(nil)
		if err != nil {
			return nil, err
		}
		if !isNumericTag(a.Tag()) {
			continue
		}
		lane, err := toFloat64Lane(a)
		if err != nil {
			return nil, err
		}
		lanes = append(lanes, lane)
	}

	rows := make([]int, 0, nRows)
	for r := 0; r < nRows; r++ {
		keep := true
		for _, lane := range lanes {
			if math.IsNaN(lane[r]) {
				keep = false
				break
			}
		}
		if keep {
			rows = append(rows, r)
		}
	}
	logger.Printf("dict %s: drop_na_rows over %v -> %d/%d rows kept", d.id, idxs, len(rows), nRows)
	return gatherRows(d, rows)
}
