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

// Package relate implements the groupby/join core (spec.md §4.4):
// seeded hashing of one or more key columns, a partition-size heuristic
// for fanning key-collection out across arbor's worker pool, and the
// index derivations (group membership, equi-join pairing, unique-keep)
// that DataDict's relational operations are built from. Every operation
// here deals in row indices, never in copied column data — the caller
// gathers whatever columns it needs from the resulting index slices.
package relate
