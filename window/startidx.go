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

// Package window derives rolling-window start indices, both for a fixed
// element count and for a time-sorted datetime lane (spec.md §4.3
// "Time-window start-index derivation", the "Rolling core" component of
// spec.md §2). Subsequent rolling aggregators (kernel package) consume
// the resulting starts slice to reduce each window in amortized
// O(sum(window_i)) rather than re-scanning from the lane start.
package window

import (
	"time"

	"github.com/arborql/arbor/dtype"
	"github.com/arborql/arbor/internal/arberr"
)

// StartBy selects how a time window's anchor snaps to calendar
// boundaries. Per spec.md §9's open question ("The exact meaning of
// start_by other than Full is only partially documented... an
// implementer should fix the set it supports and assert on the rest"),
// arbor fixes exactly the four policies below and panics on any other
// value passed to Derive.
type StartBy uint8

const (
	// Full anchors each window literally at dt[i]: the window is
	// [dt[i]-d, dt[i]].
	Full StartBy = iota
	// DurationStart anchors each window at the most recent multiple of
	// d since the Unix epoch at or before dt[i].
	DurationStart
	// WeekMonday anchors each window at the most recent Monday
	// 00:00:00 at or before dt[i], regardless of d.
	WeekMonday
	// MonthStart anchors each window at the first of the current
	// calendar month at or before dt[i].
	MonthStart
)

// Fixed derives start indices for a fixed-size window of `window`
// elements ending at each position: starts[i] = max(0, i-window+1).
// This is the non-time-aware counterpart of Derive; the kernel
// package's rollingApply computes the same start index inline rather
// than calling Fixed.
func Fixed(n, window int) []int {
	starts := make([]int, n)
	for i := range starts {
		s := i - window + 1
		if s < 0 {
			s = 0
		}
		starts[i] = s
	}
	return starts
}

// snap rounds t down to the calendar boundary the given policy
// specifies.
func snap(t time.Time, by StartBy, d time.Duration) time.Time {
	switch by {
	case DurationStart:
		if d <= 0 {
			return t
		}
		epoch := t.Unix()
		rem := epoch % int64(d/time.Second)
		if rem < 0 {
			rem += int64(d / time.Second)
		}
		return t.Add(-time.Duration(rem) * time.Second)
	case WeekMonday:
		wd := int(t.Weekday())
		if wd == 0 { // Sunday
			wd = 7
		}
		daysBack := wd - 1
		y, m, day := t.Date()
		monday := time.Date(y, m, day, 0, 0, 0, 0, t.Location()).AddDate(0, 0, -daysBack)
		return monday
	case MonthStart:
		y, m, _ := t.Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	default: // Full
		return t
	}
}

// Derive computes window start indices over a time-sorted (ascending,
// ties allowed) datetime lane dt, for a window of duration d and anchor
// policy by. For each i, starts[i] is the index of the first row whose
// datetime falls within [anchor(dt[i])-d, dt[i]] (spec.md §4.3). dt must
// already be sorted ascending; Derive does not sort it. Derive panics
// if by is not one of the four StartBy policies.
func Derive(dt []dtype.DateTime, d time.Duration, by StartBy) ([]int, error) {
	if by > MonthStart {
		panic("window: unsupported StartBy policy")
	}
	starts := make([]int, len(dt))
	lo := 0
	for i, cur := range dt {
		if cur.IsNaT() {
			starts[i] = i
			continue
		}
		anchor := snap(cur.ToTime(), by, d)
		lowerBound := anchor.Add(-d)
		for lo < i && dt[lo].ToTime().Before(lowerBound) {
			lo++
		}
		starts[i] = lo
	}
	return starts, nil
}

// ParseStartBy maps a policy name to a StartBy, returning
// arberr.ErrBadWindow for any name outside the fixed set arbor supports
// (spec.md §9).
func ParseStartBy(name string) (StartBy, error) {
	switch name {
	case "", "full":
		return Full, nil
	case "duration_start":
		return DurationStart, nil
	case "week_monday":
		return WeekMonday, nil
	case "month_start":
		return MonthStart, nil
	default:
		return 0, arberr.ErrBadWindow
	}
}
