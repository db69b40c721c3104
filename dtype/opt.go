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

package dtype

// Opt is a nullable numeric scalar, backing the optional OptF32, OptF64,
// OptI32, OptI64 lanes mentioned in spec.md §3.1. Unlike the floating
// tags, which use NaN as their own sentinel, integer Opt lanes need an
// explicit validity bit.
type Opt[T Number] struct {
	Value T
	Valid bool
}

// Number constrains the physical types an Opt lane may hold.
type Number interface {
	~float32 | ~float64 | ~int32 | ~int64
}

// OF32, OF64, OI32, OI64 name the concrete Opt instantiations so
// the rest of the codebase can refer to them without repeating the
// generic instantiation at every call site.
type (
	OF32 = Opt[float32]
	OF64 = Opt[float64]
	OI32 = Opt[int32]
	OI64 = Opt[int64]
)

// NoneOf returns the invalid (missing) Opt value for T.
func NoneOf[T Number]() Opt[T] { return Opt[T]{} }

// SomeOf returns a valid Opt value wrapping v.
func SomeOf[T Number](v T) Opt[T] { return Opt[T]{Value: v, Valid: true} }
