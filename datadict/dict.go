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

	"github.com/google/uuid"
	"golang.org/x/exp/maps"

	"github.com/arborql/arbor/expr"
	"github.com/arborql/arbor/internal/arberr"
	"github.com/arborql/arbor/selector"
)

// DataDict is the ordered (Vec<Expr>, shared name→index map) collection
// described by spec.md §3.5. Every column carries a non-empty name;
// synthetic names "column_N" are generated for positional construction.
// id is logged on groupby/join/rolling calls so independent operations
// against the same dict are traceable (SPEC_FULL.md §B).
type DataDict struct {
	id     uuid.UUID
	cols   []*expr.Expr
	names  []string
	byName map[string]int
}

// New builds a DataDict from cols, applying names positionally when
// given. A missing or empty name falls back to the column's own
// expr.Name(), and finally to a synthetic "column_N".
func New(cols []*expr.Expr, names []string) (*DataDict, error) {
	if names != nil && len(names) != len(cols) {
		return nil, fmt.Errorf("%w: got %d names for %d columns", arberr.ErrShapeMismatch, len(names), len(cols))
	}
	d := &DataDict{id: uuid.New()}
	for i, c := range cols {
		name := ""
		if names != nil {
			name = names[i]
		}
		if name == "" {
			name = c.Name()
		}
		if name == "" {
			name = fmt.Sprintf("column_%d", i)
		}
		d.cols = append(d.cols, c.Rename(name))
		d.names = append(d.names, name)
	}
	d.reindex()
	return d, nil
}

func (d *DataDict) reindex() {
	d.byName = make(map[string]int, len(d.names))
	for i, n := range d.names {
		d.byName[n] = i
	}
}

// ID reports the dict's identity, stamped at construction.
func (d *DataDict) ID() uuid.UUID { return d.id }

// NCols reports the column count.
func (d *DataDict) NCols() int { return len(d.cols) }

// Names returns a copy of the current column names, in column order.
func (d *DataDict) Names() []string { return append([]string(nil), d.names...) }

// SortedNames returns the dict's column names in lexical order rather
// than column order — a deterministic enumeration of the name→index
// map's keys, used by logging/debug output where column order would
// otherwise make two structurally-identical dicts print differently.
func (d *DataDict) SortedNames() []string {
	keys := maps.Keys(d.byName)
	sort.Strings(keys)
	return keys
}

// Column returns the column at the given absolute, already-resolved
// index. Panics if idx is out of range; it does no bounds checking of
// its own (resolveSelector's results are already in range).
func (d *DataDict) Column(idx int) *expr.Expr { return d.cols[idx] }

// resolveSelector expands sel into absolute column indices against the
// dict's current name list (spec.md §3.6/§4.5's selector table).
func resolveSelector(sel selector.Selector, names []string, byName map[string]int) ([]int, error) {
	switch sel.Kind {
	case selector.All:
		out := make([]int, len(names))
		for i := range names {
			out[i] = i
		}
		return out, nil
	case selector.Index:
		idx, err := selector.ResolveIndex(sel.Idx, len(names))
		if err != nil {
			return nil, err
		}
		return []int{idx}, nil
	case selector.Name:
		if sel.IsRegex() {
			var out []int
			for i, n := range names {
				if sel.MatchName(n) {
					out = append(out, i)
				}
			}
			return out, nil
		}
		idx, ok := byName[sel.Str]
		if !ok {
			return nil, fmt.Errorf("%w: column %q", arberr.ErrSelectorMiss, sel.Str)
		}
		return []int{idx}, nil
	case selector.VecIndex:
		out := make([]int, len(sel.Indices))
		for i, raw := range sel.Indices {
			idx, err := selector.ResolveIndex(raw, len(names))
			if err != nil {
				return nil, err
			}
			out[i] = idx
		}
		return out, nil
	case selector.VecName:
		var out []int
		for _, n := range sel.Names {
			named, err := selector.NewName(n)
			if err != nil {
				return nil, err
			}
			idxs, err := resolveSelector(named, names, byName)
			if err != nil {
				return nil, err
			}
			out = append(out, idxs...)
		}
		// a VecName selector mixing literal names with "^...$" regex
		// entries can name the same column twice; keep first occurrence.
		return selector.DedupIndices(out), nil
	default:
		return nil, fmt.Errorf("%w: unknown selector kind %d", arberr.ErrSelectorMiss, sel.Kind)
	}
}

// Get returns the columns matched by sel, in dict order.
func (d *DataDict) Get(sel selector.Selector) ([]*expr.Expr, error) {
	idxs, err := resolveSelector(sel, d.names, d.byName)
	if err != nil {
		return nil, err
	}
	out := make([]*expr.Expr, len(idxs))
	for i, idx := range idxs {
		out[i] = d.cols[idx]
	}
	return out, nil
}

// Set assigns vals to the columns matched by sel (spec.md §4.5's set
// contract): a single value broadcasts across every matched column,
// otherwise vals must line up one-to-one. Each assigned Expr is renamed
// to its target column's name. An Index selector one past the end, or a
// literal Name selector with no existing match, appends a new column.
func (d *DataDict) Set(sel selector.Selector, vals []*expr.Expr) error {
	if sel.Kind == selector.Index {
		idx := int(sel.Idx)
		if idx == len(d.cols) {
			if len(vals) != 1 {
				return fmt.Errorf("%w: appending via Index selector takes exactly one value", arberr.ErrShapeMismatch)
			}
			return d.appendColumn(fmt.Sprintf("column_%d", idx), vals[0])
		}
	}
	if sel.Kind == selector.Name && !sel.IsRegex() {
		if _, ok := d.byName[sel.Str]; !ok {
			if len(vals) != 1 {
				return fmt.Errorf("%w: appending via Name selector takes exactly one value", arberr.ErrShapeMismatch)
			}
			return d.appendColumn(sel.Str, vals[0])
		}
	}

	idxs, err := resolveSelector(sel, d.names, d.byName)
	if err != nil {
		return err
	}
	if len(vals) != 1 && len(vals) != len(idxs) {
		return fmt.Errorf("%w: %d values for %d matched columns", arberr.ErrShapeMismatch, len(vals), len(idxs))
	}
	for i, idx := range idxs {
		v := vals[0]
		if len(vals) > 1 {
			v = vals[i]
		}
		name := d.names[idx]
		d.cols[idx] = v.Rename(name)
	}
	return nil
}

func (d *DataDict) appendColumn(name string, v *expr.Expr) error {
	if _, exists := d.byName[name]; exists {
		return fmt.Errorf("%w: column %q already exists", arberr.ErrSelectorMiss, name)
	}
	d.cols = append(d.cols, v.Rename(name))
	d.names = append(d.names, name)
	d.byName[name] = len(d.names) - 1
	return nil
}

// InsertInplace uses c's own name: replacing the existing column of
// that name if present, appending otherwise (spec.md §4.5).
func (d *DataDict) InsertInplace(c *expr.Expr) error {
	name := c.Name()
	if name == "" {
		return fmt.Errorf("%w: InsertInplace requires a named Expr", arberr.ErrSelectorMiss)
	}
	if idx, ok := d.byName[name]; ok {
		d.cols[idx] = c
		return nil
	}
	return d.appendColumn(name, c)
}

// Drop removes the columns matched by sel.
func (d *DataDict) Drop(sel selector.Selector) error {
	idxs, err := resolveSelector(sel, d.names, d.byName)
	if err != nil {
		return err
	}
	drop := make(map[int]bool, len(idxs))
	for _, idx := range idxs {
		drop[idx] = true
	}
	newCols := d.cols[:0:0]
	newNames := d.names[:0:0]
	for i, c := range d.cols {
		if drop[i] {
			continue
		}
		newCols = append(newCols, c)
		newNames = append(newNames, d.names[i])
	}
	d.cols, d.names = newCols, newNames
	d.reindex()
	return nil
}

// Rename changes column old's name to new, keeping the map in sync.
func (d *DataDict) Rename(old, new string) error {
	idx, ok := d.byName[old]
	if !ok {
		return fmt.Errorf("%w: column %q", arberr.ErrSelectorMiss, old)
	}
	if _, exists := d.byName[new]; exists {
		return fmt.Errorf("%w: column %q already exists", arberr.ErrSelectorMiss, new)
	}
	d.cols[idx].Rename(new)
	d.names[idx] = new
	delete(d.byName, old)
	d.byName[new] = idx
	return nil
}
