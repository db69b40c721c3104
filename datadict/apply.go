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
	"time"

	"github.com/arborql/arbor/dtype"
	"github.com/arborql/arbor/expr"
	"github.com/arborql/arbor/internal/arberr"
	"github.com/arborql/arbor/selector"
	"github.com/arborql/arbor/window"
)

// Eval forces every column's chain to completion (spec.md §4.5's
// "eval_inplace(selector, use_context)"). When useContext is true, each
// column sees d itself (via AsContext) so that Context(selector)-based
// Exprs resolve against it; a column rename that surfaces during eval
// is folded back into the name→index map immediately.
func (d *DataDict) Eval(useContext bool) error {
	var ctx expr.Evaluator
	if useContext {
		ctx = d.AsContext()
	}
	for i, c := range d.cols {
		if _, err := c.EvalInplace(ctx); err != nil {
			return err
		}
		if n := c.Name(); n != "" && n != d.names[i] {
			d.names[i] = n
		}
	}
	d.reindex()
	logger.Printf("dict %s: eval complete (%d cols, use_context=%v)", d.id, len(d.cols), useContext)
	return nil
}

// Apply returns a new DataDict with fn applied to every column
// (original_source's "apply_on_all" — SPEC_FULL.md §D). Every result
// is renamed back to its column's name, so names are preserved even if
// fn renames its result.
func (d *DataDict) Apply(fn func(*expr.Expr) *expr.Expr) (*DataDict, error) {
	newCols := make([]*expr.Expr, len(d.cols))
	for i, c := range d.cols {
		newCols[i] = fn(c).Rename(d.names[i])
	}
	return New(newCols, append([]string(nil), d.names...))
}

// RollingApply applies a fixed-window reduction to every numeric
// column, via Expr.RollApply (spec.md §4.5's "rolling_apply(window,
// fn)"). Non-numeric columns pass through unchanged.
func (d *DataDict) RollingApply(win, minPeriods int, reduceFn func([]float64) float64) (*DataDict, error) {
	newCols := make([]*expr.Expr, len(d.cols))
	for i, c := range d.cols {
		a, err := c.Arr(nil)
		if err != nil {
			return nil, err
		}
		if !isNumericTag(a.Tag()) {
			newCols[i] = c
			continue
		}
		newCols[i] = c.RollApply(0, win, minPeriods, reduceFn).Rename(d.names[i])
	}
	return New(newCols, append([]string(nil), d.names...))
}

// RollingApplyByTime derives per-row window starts from a unique
// datetime column (auto-detected when indexSel is nil) and reduces
// every other numeric column over those windows via Expr.RollingByTime
// (spec.md §4.5). Non-numeric columns pass through unchanged; the index
// column itself is left untouched.
func (d *DataDict) RollingApplyByTime(indexSel *selector.Selector, dur time.Duration, by window.StartBy, minPeriods int, reduceFn func([]float64) float64) (*DataDict, error) {
	indexIdx, err := d.resolveTimeIndex(indexSel)
	if err != nil {
		return nil, err
	}
	idxExpr := d.cols[indexIdx]

	newCols := make([]*expr.Expr, len(d.cols))
	for i, c := range d.cols {
		if i == indexIdx {
			newCols[i] = c
			continue
		}
		a, err := c.Arr(nil)
		if err != nil {
			return nil, err
		}
		if !isNumericTag(a.Tag()) {
			newCols[i] = c
			continue
		}
		newCols[i] = c.RollingByTime(idxExpr, dur, by, minPeriods, reduceFn).Rename(d.names[i])
	}
	logger.Printf("dict %s: rolling_apply_by_time over %s (index=%s)", d.id, dur, d.names[indexIdx])
	return New(newCols, append([]string(nil), d.names...))
}

// resolveTimeIndex implements spec.md §4.5's auto-detection: when
// indexSel is nil, exactly one DateTime column must exist, else
// ErrAmbiguousIndex.
func (d *DataDict) resolveTimeIndex(indexSel *selector.Selector) (int, error) {
	if indexSel != nil {
		idxs, err := resolveSelector(*indexSel, d.names, d.byName)
		if err != nil {
			return 0, err
		}
		if len(idxs) != 1 {
			return 0, fmt.Errorf("%w: time index selector must resolve to exactly one column", arberr.ErrAmbiguousIndex)
		}
		return idxs[0], nil
	}
	found := -1
	for i, c := range d.cols {
		a, err := c.Arr(nil)
		if err != nil {
			return 0, err
		}
		if a.Tag() == dtype.DateTime {
			if found != -1 {
				return 0, fmt.Errorf("%w: multiple datetime columns, specify one explicitly", arberr.ErrAmbiguousIndex)
			}
			found = i
		}
	}
	if found == -1 {
		return 0, fmt.Errorf("%w: no datetime column found", arberr.ErrAmbiguousIndex)
	}
	return found, nil
}

func isNumericTag(t dtype.Tag) bool {
	switch t {
	case dtype.F32, dtype.F64, dtype.I32, dtype.I64, dtype.Usize:
		return true
	default:
		return false
	}
}
