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

import "github.com/arborql/arbor/internal/cpu"

// LaneIter walks every 1-D lane of a along the given axis, invoking fn
// with the lane's elements as a contiguous slice (see gather) and its
// stride along that axis. Used by Fold, FoldPar, Apply and ApplyPar to
// implement axis-parameterized aggregation/map/rolling without
// duplicating index arithmetic per kernel.
func (a *ArbArray[T]) LaneIter(axis int, fn func(lane []T, stride int)) {
	if len(a.shape) == 0 {
		fn(a.data, 1)
		return
	}
	stride := a.strides[axis]
	laneLen := a.shape[axis]
	// outer shape excludes the reduction axis
	outer := make([]int, 0, len(a.shape)-1)
	outerStrides := make([]int, 0, len(a.shape)-1)
	for i, d := range a.shape {
		if i == axis {
			continue
		}
		outer = append(outer, d)
		outerStrides = append(outerStrides, a.strides[i])
	}
	idx := make([]int, len(outer))
	total := Shape(outer).Len()
	if total == 0 {
		total = 1
	}
	for n := 0; n < total; n++ {
		base := 0
		for i, d := range idx {
			base += d * outerStrides[i]
		}
		lane := gather(a.data, base, stride, laneLen)
		fn(lane, stride)
		// odometer increment over outer dims
		for i := len(idx) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < outer[i] {
				break
			}
			idx[i] = 0
		}
	}
}

// gather copies a strided lane into a contiguous scratch slice so
// kernels can operate on a plain []T. For the common case of stride==1
// (the reduction axis is the innermost / only axis) this returns a
// sub-slice with no copy.
func gather[T any](data []T, base, stride, n int) []T {
	if stride == 1 {
		return data[base : base+n]
	}
	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = data[base+i*stride]
	}
	return out
}

// Fold reduces every lane along axis to a scalar via reduceFn, returning
// a new Owned ArbArray[R] with that axis removed (the "Aggregations"
// kernel family, spec.md §4.3).
func Fold[T any, R any](a *ArbArray[T], axis int, reduceFn func(lane []T) R) *ArbArray[R] {
	outShape := make(Shape, 0, len(a.shape)-1)
	for i, d := range a.shape {
		if i != axis {
			outShape = append(outShape, d)
		}
	}
	if len(outShape) == 0 {
		outShape = Shape{1}
	}
	out := make([]R, 0, outShape.Len())
	a.LaneIter(axis, func(lane []T, _ int) {
		out = append(out, reduceFn(lane))
	})
	return FromSlice(out).Reshape(outShape)
}

// FoldPar is Fold's data-parallel counterpart (spec.md §5's opt-in par
// flag): when par is true, every lane is gathered up front and reduced
// across arbor's worker pool; lane order is otherwise unspecified, so
// reduceFn must not depend on invocation order. When par is false it
// behaves exactly like Fold.
func FoldPar[T any, R any](a *ArbArray[T], axis int, par bool, reduceFn func(lane []T) R) *ArbArray[R] {
	if !par {
		return Fold(a, axis, reduceFn)
	}
	outShape := make(Shape, 0, len(a.shape)-1)
	for i, d := range a.shape {
		if i != axis {
			outShape = append(outShape, d)
		}
	}
	if len(outShape) == 0 {
		outShape = Shape{1}
	}
	lanes := make([][]T, 0, outShape.Len())
	a.LaneIter(axis, func(lane []T, _ int) {
		lanes = append(lanes, lane)
	})
	out := make([]R, len(lanes))
	cpu.ForEach(len(lanes), func(i int) { out[i] = reduceFn(lanes[i]) })
	return FromSlice(out).Reshape(outShape)
}

// Apply maps every lane along axis through mapFn (same-shape
// transforms, the "Map" kernel family, spec.md §4.3), writing results
// into a freshly Owned array with the source's shape.
func Apply[T any](a *ArbArray[T], axis int, mapFn func(lane []T) []T) *ArbArray[T] {
	out := NewOwned[T](a.shape)
	outStride := out.strides[axis]
	laneLen := a.shape[axis]
	writeIdx := 0
	a.LaneIter(axis, func(lane []T, _ int) {
		res := mapFn(lane)
		base := writeIdx
		for i := 0; i < laneLen; i++ {
			out.data[base+i*outStride] = res[i]
		}
		writeIdx += outStrideAdvance(out.shape, axis, writeIdx)
	})
	return out
}

// ApplyPar is Apply's data-parallel counterpart (spec.md §5): each
// lane's input slice and output base offset are computed up front
// (sequentially, since that bookkeeping is inherently ordered), then
// every lane's mapFn call runs across arbor's worker pool. Each job
// writes a disjoint range of out.data, so no synchronization is needed
// beyond the final ForEach barrier.
func ApplyPar[T any](a *ArbArray[T], axis int, par bool, mapFn func(lane []T) []T) *ArbArray[T] {
	if !par {
		return Apply(a, axis, mapFn)
	}
	out := NewOwned[T](a.shape)
	outStride := out.strides[axis]
	laneLen := a.shape[axis]
	type job struct {
		lane []T
		base int
	}
	var jobs []job
	writeIdx := 0
	a.LaneIter(axis, func(lane []T, _ int) {
		jobs = append(jobs, job{lane: lane, base: writeIdx})
		writeIdx += outStrideAdvance(out.shape, axis, writeIdx)
	})
	cpu.ForEach(len(jobs), func(i int) {
		res := mapFn(jobs[i].lane)
		base := jobs[i].base
		for k := 0; k < laneLen; k++ {
			out.data[base+k*outStride] = res[k]
		}
	})
	return out
}

// outStrideAdvance is a helper used by Apply to walk the flat write
// cursor across outer dimensions once a lane has been written: given the
// base offset cur of one lane in a C-order array of the given shape, it
// returns the distance to the next lane's base, stepping the non-axis
// indices last-index-fastest, the order LaneIter visits lanes in. For a
// 1-D array (a single lane) it returns shape.Len().
func outStrideAdvance(shape Shape, axis, cur int) int {
	strides := cStrides(shape)
	delta := 0
	for i := len(shape) - 1; i >= 0; i-- {
		if i == axis {
			continue
		}
		c := (cur / strides[i]) % shape[i]
		if c+1 < shape[i] {
			return delta + strides[i]
		}
		delta -= c * strides[i]
	}
	return shape.Len()
}

// GatherIdx builds a new 1-D owned ArbArray by reading a.Lane1D() at
// each position in idxs, in order. Used by relational row-reshaping
// operations (groupby's per-group representative row, join's index
// pairing) that need to materialize a new column from scattered row
// indices rather than a contiguous slice.
func GatherIdx[T any](a *ArbArray[T], idxs []int) *ArbArray[T] {
	src := a.Lane1D()
	out := make([]T, len(idxs))
	for i, idx := range idxs {
		out[i] = src[idx]
	}
	return FromSlice(out)
}

// Window slides a fixed-size window (see the rolling/window package for
// time-aware windows) across a along its last axis, invoking fn with the
// window's contents and emitting one output element per input position
// (the "Rolling" kernel family, spec.md §4.3). Positions before the
// first full window still invoke fn with a shorter slice so min_periods
// policies can be applied uniformly.
func Window[T any, R any](lane []T, window int, fn func(win []T, end int) R) []R {
	out := make([]R, len(lane))
	for i := range lane {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		out[i] = fn(lane[start:i+1], i)
	}
	return out
}
