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

package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/arborql/arbor/datadict"
	"github.com/arborql/arbor/expr"
	"github.com/arborql/arbor/selector"
)

// DumpDict evaluates every column of d (against d itself as Context, so
// Context(selector)-based columns resolve) and serializes the whole
// dict — column names plus each column's encoded array — to a single
// zstd-compressed blob. This is the Dump half of SPEC_FULL.md's
// "Dump/Load debug surface"; it is not part of the evaluator's hot
// path and never runs inside a chain.
func DumpDict(d *datadict.DataDict) ([]byte, error) {
	names := d.Names()
	cols, err := d.Get(selector.NewAll())
	if err != nil {
		return nil, err
	}
	ctx := d.AsContext()

	var raw bytes.Buffer
	if err := binary.Write(&raw, binary.LittleEndian, magic); err != nil {
		return nil, err
	}
	if err := binary.Write(&raw, binary.LittleEndian, uint32(len(cols))); err != nil {
		return nil, err
	}
	for i, c := range cols {
		arr, err := c.Arr(ctx)
		if err != nil {
			return nil, fmt.Errorf("codec: evaluating column %q: %w", names[i], err)
		}
		owned := arr.ToOwned()
		if err := writeString(&raw, names[i]); err != nil {
			return nil, err
		}
		if err := writeHeader(&raw, owned.Tag(), owned.Shape()); err != nil {
			return nil, err
		}
		if err := writePayload(&raw, owned); err != nil {
			return nil, err
		}
	}
	return compress(raw.Bytes())
}

// LoadDict is the inverse of DumpDict, rebuilding a DataDict whose
// columns are leaf Exprs (step 0) over the decoded arrays.
func LoadDict(data []byte) (*datadict.DataDict, error) {
	raw, err := decompress(data)
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(raw)
	var gotMagic uint32
	if err := binary.Read(r, binary.LittleEndian, &gotMagic); err != nil {
		return nil, err
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("codec: bad dict magic %#x, expected %#x", gotMagic, magic)
	}
	var ncols uint32
	if err := binary.Read(r, binary.LittleEndian, &ncols); err != nil {
		return nil, err
	}
	names := make([]string, ncols)
	cols := make([]*expr.Expr, ncols)
	for i := range names {
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		tag, shape, err := readHeader(r)
		if err != nil {
			return nil, err
		}
		arr, err := readPayload(r, tag, shape)
		if err != nil {
			return nil, err
		}
		names[i] = name
		cols[i] = expr.FromArr(arr)
	}
	return datadict.New(cols, names)
}
