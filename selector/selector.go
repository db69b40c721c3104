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

// Package selector implements ColumnSelector (spec.md §3.6): a
// descriptor picking zero or more columns from a DataDict by index,
// name, regex, or list.
package selector

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/arborql/arbor/internal/arberr"
)

// Kind discriminates the selector variants.
type Kind uint8

const (
	All Kind = iota
	Index
	Name
	VecIndex
	VecName
)

// Selector is a ColumnSelector. Exactly the fields relevant to Kind are
// populated; the zero value is All.
type Selector struct {
	Kind      Kind
	Idx       int32
	Str       string
	Indices   []int32
	Names     []string
	isRegex   bool
	compiled  *regexp.Regexp
}

// NewAll returns the All selector (every column).
func NewAll() Selector { return Selector{Kind: All} }

// NewIndex returns an Index selector; negative i counts from the end
// (spec.md §3.6).
func NewIndex(i int32) Selector { return Selector{Kind: Index, Idx: i} }

// NewName returns a Name selector. A name of the form "^...$" is
// promoted to an anchored regex matched against every column name
// (spec.md §3.6): "A name that begins with ^ and ends with $ is
// promoted to a regex and matched against every column."
func NewName(s string) (Selector, error) {
	sel := Selector{Kind: Name, Str: s}
	if len(s) >= 2 && strings.HasPrefix(s, "^") && strings.HasSuffix(s, "$") {
		re, err := regexp.Compile(s)
		if err != nil {
			return Selector{}, fmt.Errorf("%w: %v", arberr.ErrInvalidRegex, err)
		}
		sel.isRegex = true
		sel.compiled = re
	}
	return sel, nil
}

// NewVecIndex returns a selector over a list of indices.
func NewVecIndex(idx []int32) Selector { return Selector{Kind: VecIndex, Indices: idx} }

// NewVecName returns a selector over a list of names.
func NewVecName(names []string) Selector { return Selector{Kind: VecName, Names: names} }

// IsRegex reports whether the selector is a promoted "^...$" regex.
func (s Selector) IsRegex() bool { return s.isRegex }

// MatchName reports whether name matches s when s is a regex selector.
func (s Selector) MatchName(name string) bool {
	if !s.isRegex {
		return false
	}
	return s.compiled.MatchString(name)
}

// DedupIndices returns idxs with later duplicates of an already-seen
// index dropped, preserving first-occurrence order — the search arbor's
// VecName selector expansion needs when a caller lists the
// same column twice (e.g. "^a$" and "a" both matching column "a").
func DedupIndices(idxs []int) []int {
	out := make([]int, 0, len(idxs))
	for _, idx := range idxs {
		if slices.Contains(out, idx) {
			continue
		}
		out = append(out, idx)
	}
	return out
}

// ResolveIndex turns a possibly-negative index into an absolute offset
// into a column list of the given length, per spec.md §3.6 ("negative =
// from end").
func ResolveIndex(i int32, length int) (int, error) {
	idx := int(i)
	if idx < 0 {
		idx += length
	}
	if idx < 0 || idx >= length {
		return 0, fmt.Errorf("%w: index %d out of range for %d columns", arberr.ErrSelectorMiss, i, length)
	}
	return idx, nil
}
