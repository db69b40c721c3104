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

package expr

import (
	"fmt"

	"github.com/arborql/arbor/dtype"
	"github.com/arborql/arbor/dynamic"
	"github.com/arborql/arbor/internal/arberr"
	"github.com/arborql/arbor/tensor"
)

// checkAxis validates a reduction/map axis against shp before a chain
// stage is built, so a bad axis fails at construction time with a clear
// error rather than surfacing as an out-of-range panic deep inside a
// kernel (spec.md §4.3's axis contract).
func checkAxis(shp tensor.Shape, axis int) error {
	if axis < 0 || axis >= len(shp) {
		return fmt.Errorf("%w: axis %d for shape %s", arberr.ErrBadAxis, axis, shp)
	}
	return nil
}

// checkWindow validates the window/min_periods contract shared by every
// rolling operation (spec.md §4.3): window must be positive and
// 0 <= min_periods <= window; the kernels treat a min_periods of 0 as
// the default of 1.
func checkWindow(window, minPeriods int) error {
	if window <= 0 {
		return arberr.ErrBadWindow
	}
	if minPeriods < 0 {
		return arberr.ErrBadMinPeriods
	}
	if minPeriods > window {
		return arberr.ErrBadMinPeriods
	}
	return nil
}

// checkSameLength validates that two operand tensors agree in length,
// the precondition for every pairwise (cov/corr/lstsq/dot) kernel.
func checkSameLength(a, b dynamic.ArrOk) error {
	if a.Len() != b.Len() {
		return fmt.Errorf("%w: lengths %d and %d", arberr.ErrShapeMismatch, a.Len(), b.Len())
	}
	return nil
}

// checkNumeric validates that a's tag belongs to the numeric kernel
// families' supported set before a chain stage is appended (spec.md
// §4.1's "operations outside that set fail fast").
func checkNumeric(a dynamic.ArrOk) error {
	if !a.Tag().Numeric() {
		return fmt.Errorf("%w: %s is not numeric", arberr.ErrDtypeMismatch, a.Tag())
	}
	return nil
}

// checkTag validates that a carries exactly the expected tag.
func checkTag(a dynamic.ArrOk, want dtype.Tag) error {
	if a.Tag() != want {
		return fmt.Errorf("%w: expected %s, got %s", arberr.ErrDtypeMismatch, want, a.Tag())
	}
	return nil
}
