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

import "github.com/arborql/arbor/internal/cpu"

// Groups maps each distinct key (in the Order GroupIndices describes)
// to the row indices sharing it.
type Groups struct {
	Order []string
	Index map[string][]int
}

// Rows returns the group's member row indices, or nil if key is absent.
func (g *Groups) Rows(key string) []int { return g.Index[key] }

// GroupIndices partitions the rows of keys into groups of equal key.
// When par is false, Order is first-seen key order. When par is true,
// rows are first hash-partitioned into cpu.Partitions() buckets
// (spec.md §4.4.1's partition-size heuristic) and each bucket is grouped
// concurrently; bucket results are then concatenated bucket by bucket,
// so Order is deterministic but first-seen only within each bucket.
// Each group's row indices are ascending on both paths.
func GroupIndices(keys Keys, par bool) (*Groups, error) {
	n := keys.Len()
	if !par || n == 0 {
		return groupSequential(keys, 0, n)
	}
	return groupParallel(keys)
}

func groupSequential(keys Keys, lo, hi int) (*Groups, error) {
	g := &Groups{Index: make(map[string][]int)}
	for i := lo; i < hi; i++ {
		k, err := rowKey(keys, i)
		if err != nil {
			return nil, err
		}
		if _, ok := g.Index[k]; !ok {
			g.Order = append(g.Order, k)
		}
		g.Index[k] = append(g.Index[k], i)
	}
	return g, nil
}

func groupParallel(keys Keys) (*Groups, error) {
	n := keys.Len()
	numParts := cpu.Partitions()

	rowHash := make([]uint64, n)
	rowKeyStr := make([]string, n)
	errs := make([]error, n)
	cpu.ForEach(n, func(i int) {
		k, err := rowKey(keys, i)
		if err != nil {
			errs[i] = err
			return
		}
		rowKeyStr[i] = k
		rowHash[i] = hashOf(k)
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	buckets := make([][]int, numParts)
	for i := 0; i < n; i++ {
		p := int(rowHash[i] % uint64(numParts))
		buckets[p] = append(buckets[p], i)
	}

	partials := make([]*Groups, numParts)
	cpu.ForEach(numParts, func(p int) {
		pg := &Groups{Index: make(map[string][]int)}
		for _, i := range buckets[p] {
			k := rowKeyStr[i]
			if _, ok := pg.Index[k]; !ok {
				pg.Order = append(pg.Order, k)
			}
			pg.Index[k] = append(pg.Index[k], i)
		}
		partials[p] = pg
	})

	merged := &Groups{Index: make(map[string][]int)}
	for _, pg := range partials {
		for _, k := range pg.Order {
			if _, ok := merged.Index[k]; !ok {
				merged.Order = append(merged.Order, k)
			}
			merged.Index[k] = append(merged.Index[k], pg.Index[k]...)
		}
	}
	return merged, nil
}
