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

// Package expr implements Expr, the lazy, shareable handle to a
// deferred tensor computation (spec.md §3.4/§4.2): a payload base plus
// a chain of not-yet-applied transformations. Nothing runs until Value
// or EvalInplace is called; until then an Expr is just a description
// of work, cheap to construct, clone, and pass around a DataDict.
package expr
