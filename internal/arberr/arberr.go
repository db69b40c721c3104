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

// Package arberr defines the closed set of sentinel errors surfaced at
// the core's boundary (spec.md §7). Every chained Expr operation
// returns one of these (possibly wrapped with additional context via
// %w) rather than a bespoke error type per package, so that a host
// binding layer can translate on errors.Is rather than parsing strings.
package arberr

import "errors"

var (
	// ErrNotEvaluated is returned by Expr.TryView when step != 0.
	ErrNotEvaluated = errors.New("arbor: not yet evaluated")
	// ErrDtypeMismatch is returned when an operation requires a
	// specific tag and the dynamic tensor does not carry it.
	ErrDtypeMismatch = errors.New("arbor: dtype mismatch")
	// ErrShapeMismatch is returned when binary/window/join operand
	// lengths disagree.
	ErrShapeMismatch = errors.New("arbor: shape mismatch")
	// ErrBadAxis is returned for an out-of-range reduction axis.
	ErrBadAxis = errors.New("arbor: axis out of range")
	// ErrBadWindow is returned for a non-positive or out-of-range
	// rolling window size.
	ErrBadWindow = errors.New("arbor: invalid window size")
	// ErrBadMinPeriods is returned when min_periods > window or < 0.
	ErrBadMinPeriods = errors.New("arbor: invalid min_periods")
	// ErrSelectorMiss is returned when a name/index selector does not
	// resolve against the current DataDict.
	ErrSelectorMiss = errors.New("arbor: selector did not resolve")
	// ErrInvalidRegex is returned when a ^...$ selector fails to
	// compile as a regular expression.
	ErrInvalidRegex = errors.New("arbor: invalid selector regex")
	// ErrAmbiguousIndex is returned by rolling_apply_by_time when zero
	// or multiple datetime columns exist and no explicit index column
	// was given.
	ErrAmbiguousIndex = errors.New("arbor: ambiguous time index column")
)
