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

// Package datadict implements DataDict (spec.md §3.5/§4.5): an ordered
// collection of named Exprs plus a name→index map, with
// ColumnSelector-based get/set/drop, in-place evaluation against itself
// as a Context, and the three row-reshaping operation families
// (groupby, rolling, join) built on top of package relate and package
// window.
package datadict

import (
	"log"
	"os"
)

var logger = log.New(os.Stderr, "datadict: ", log.LstdFlags)
