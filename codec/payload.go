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
	"io"

	"github.com/arborql/arbor/dtype"
	"github.com/arborql/arbor/dynamic"
	"github.com/arborql/arbor/tensor"
)

// writePayload enumerates the closed dtype set once (spec.md §3.1), the
// same shape dynamic/dispatch_gen.go's From* constructors take. A tag
// without a case here falls to the default branch and fails at run time
// with ErrUnsupportedDtype.
func writePayload(w *bytes.Buffer, a dynamic.ArrOk) error {
	switch a.Tag() {
	case dtype.Bool:
		return writeFixed(w, dynamic.Into[bool](a).Lane1D(), writeBool)
	case dtype.F32:
		return writeFixed(w, dynamic.Into[float32](a).Lane1D(), func(w *bytes.Buffer, v float32) error {
			return binary.Write(w, binary.LittleEndian, v)
		})
	case dtype.F64:
		return writeFixed(w, dynamic.Into[float64](a).Lane1D(), func(w *bytes.Buffer, v float64) error {
			return binary.Write(w, binary.LittleEndian, v)
		})
	case dtype.I32:
		return writeFixed(w, dynamic.Into[int32](a).Lane1D(), func(w *bytes.Buffer, v int32) error {
			return binary.Write(w, binary.LittleEndian, v)
		})
	case dtype.I64:
		return writeFixed(w, dynamic.Into[int64](a).Lane1D(), func(w *bytes.Buffer, v int64) error {
			return binary.Write(w, binary.LittleEndian, v)
		})
	case dtype.Usize:
		return writeFixed(w, dynamic.Into[uint64](a).Lane1D(), func(w *bytes.Buffer, v uint64) error {
			return binary.Write(w, binary.LittleEndian, v)
		})
	case dtype.String, dtype.Str:
		return writeFixed(w, dynamic.Into[string](a).Lane1D(), writeString)
	case dtype.DateTime:
		return writeFixed(w, dynamic.Into[dtype.DateTime](a).Lane1D(), func(w *bytes.Buffer, v dtype.DateTime) error {
			return binary.Write(w, binary.LittleEndian, int64(v))
		})
	case dtype.TimeDelta:
		return writeFixed(w, dynamic.Into[dtype.TimeDelta](a).Lane1D(), writeTimeDelta)
	case dtype.OptUsize:
		return writeFixed(w, dynamic.Into[dtype.OptUsize](a).Lane1D(), writeOptUsize)
	case dtype.VecUsize:
		return writeFixed(w, dynamic.Into[[]uint64](a).Lane1D(), writeUsizeVec)
	case dtype.OptF32:
		return writeFixed(w, dynamic.Into[dtype.OF32](a).Lane1D(), func(w *bytes.Buffer, v dtype.OF32) error {
			return writeOpt(w, v.Valid, func(w *bytes.Buffer) error { return binary.Write(w, binary.LittleEndian, v.Value) })
		})
	case dtype.OptF64:
		return writeFixed(w, dynamic.Into[dtype.OF64](a).Lane1D(), func(w *bytes.Buffer, v dtype.OF64) error {
			return writeOpt(w, v.Valid, func(w *bytes.Buffer) error { return binary.Write(w, binary.LittleEndian, v.Value) })
		})
	case dtype.OptI32:
		return writeFixed(w, dynamic.Into[dtype.OI32](a).Lane1D(), func(w *bytes.Buffer, v dtype.OI32) error {
			return writeOpt(w, v.Valid, func(w *bytes.Buffer) error { return binary.Write(w, binary.LittleEndian, v.Value) })
		})
	case dtype.OptI64:
		return writeFixed(w, dynamic.Into[dtype.OI64](a).Lane1D(), func(w *bytes.Buffer, v dtype.OI64) error {
			return writeOpt(w, v.Valid, func(w *bytes.Buffer) error { return binary.Write(w, binary.LittleEndian, v.Value) })
		})
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedDtype, a.Tag())
	}
}

func writeFixed[T any](w *bytes.Buffer, lane []T, enc func(*bytes.Buffer, T) error) error {
	for _, v := range lane {
		if err := enc(w, v); err != nil {
			return err
		}
	}
	return nil
}

func writeBool(w *bytes.Buffer, v bool) error {
	var b uint8
	if v {
		b = 1
	}
	return binary.Write(w, binary.LittleEndian, b)
}

func writeString(w *bytes.Buffer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := w.WriteString(s)
	return err
}

func writeTimeDelta(w *bytes.Buffer, td dtype.TimeDelta) error {
	if err := binary.Write(w, binary.LittleEndian, td.Micros); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, td.Months)
}

func writeOptUsize(w *bytes.Buffer, v dtype.OptUsize) error {
	return writeOpt(w, v.Valid, func(w *bytes.Buffer) error {
		return binary.Write(w, binary.LittleEndian, v.Value)
	})
}

func writeOpt(w *bytes.Buffer, valid bool, writeValue func(*bytes.Buffer) error) error {
	if err := writeBool(w, valid); err != nil {
		return err
	}
	if !valid {
		return nil
	}
	return writeValue(w)
}

func writeUsizeVec(w *bytes.Buffer, v []uint64) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(v))); err != nil {
		return err
	}
	for _, e := range v {
		if err := binary.Write(w, binary.LittleEndian, e); err != nil {
			return err
		}
	}
	return nil
}

func readPayload(r *bytes.Reader, tag dtype.Tag, shape tensor.Shape) (dynamic.ArrOk, error) {
	n := shape.Len()
	switch tag {
	case dtype.Bool:
		return readFixed(r, shape, n, dynamic.FromBool, readBool)
	case dtype.F32:
		return readFixed(r, shape, n, dynamic.FromF32, readBinary[float32])
	case dtype.F64:
		return readFixed(r, shape, n, dynamic.FromF64, readBinary[float64])
	case dtype.I32:
		return readFixed(r, shape, n, dynamic.FromI32, readBinary[int32])
	case dtype.I64:
		return readFixed(r, shape, n, dynamic.FromI64, readBinary[int64])
	case dtype.Usize:
		return readFixed(r, shape, n, dynamic.FromUsize, readBinary[uint64])
	case dtype.String:
		return readFixed(r, shape, n, dynamic.FromString, readString)
	case dtype.Str:
		return readFixed(r, shape, n, dynamic.FromStr, readString)
	case dtype.DateTime:
		return readFixed(r, shape, n, dynamic.FromDateTime, readDateTime)
	case dtype.TimeDelta:
		return readFixed(r, shape, n, dynamic.FromTimeDelta, readTimeDelta)
	case dtype.OptUsize:
		return readFixed(r, shape, n, dynamic.FromOptUsize, readOptUsize)
	case dtype.VecUsize:
		return readFixed(r, shape, n, dynamic.FromVecUsize, readUsizeVec)
	case dtype.OptF32:
		return readFixed(r, shape, n, dynamic.FromOptF32, readOpt[float32])
	case dtype.OptF64:
		return readFixed(r, shape, n, dynamic.FromOptF64, readOpt[float64])
	case dtype.OptI32:
		return readFixed(r, shape, n, dynamic.FromOptI32, readOpt[int32])
	case dtype.OptI64:
		return readFixed(r, shape, n, dynamic.FromOptI64, readOpt[int64])
	default:
		return dynamic.ArrOk{}, fmt.Errorf("%w: %s", ErrUnsupportedDtype, tag)
	}
}

func readFixed[T any](r *bytes.Reader, shape tensor.Shape, n int, from func(*tensor.ArbArray[T]) dynamic.ArrOk, dec func(*bytes.Reader) (T, error)) (dynamic.ArrOk, error) {
	data := make([]T, n)
	for i := range data {
		v, err := dec(r)
		if err != nil {
			return dynamic.ArrOk{}, err
		}
		data[i] = v
	}
	arr := tensor.FromSlice(data).Reshape(shape)
	return from(arr), nil
}

func readBool(r *bytes.Reader) (bool, error) {
	var b uint8
	if err := binary.Read(r, binary.LittleEndian, &b); err != nil {
		return false, err
	}
	return b != 0, nil
}

func readBinary[T any](r *bytes.Reader) (T, error) {
	var v T
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func readString(r *bytes.Reader) (string, error) {
	var ln uint32
	if err := binary.Read(r, binary.LittleEndian, &ln); err != nil {
		return "", err
	}
	buf := make([]byte, ln)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readDateTime(r *bytes.Reader) (dtype.DateTime, error) {
	v, err := readBinary[int64](r)
	return dtype.DateTime(v), err
}

func readTimeDelta(r *bytes.Reader) (dtype.TimeDelta, error) {
	micros, err := readBinary[int64](r)
	if err != nil {
		return dtype.TimeDelta{}, err
	}
	months, err := readBinary[int32](r)
	if err != nil {
		return dtype.TimeDelta{}, err
	}
	return dtype.TimeDelta{Micros: micros, Months: months}, nil
}

func readOptUsize(r *bytes.Reader) (dtype.OptUsize, error) {
	valid, err := readBool(r)
	if err != nil || !valid {
		return dtype.None, err
	}
	v, err := readBinary[uint64](r)
	if err != nil {
		return dtype.OptUsize{}, err
	}
	return dtype.Some(v), nil
}

func readUsizeVec(r *bytes.Reader) ([]uint64, error) {
	var ln uint32
	if err := binary.Read(r, binary.LittleEndian, &ln); err != nil {
		return nil, err
	}
	out := make([]uint64, ln)
	for i := range out {
		v, err := readBinary[uint64](r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func readOpt[T dtype.Number](r *bytes.Reader) (dtype.Opt[T], error) {
	valid, err := readBool(r)
	if err != nil || !valid {
		return dtype.NoneOf[T](), err
	}
	v, err := readBinary[T](r)
	if err != nil {
		return dtype.Opt[T]{}, err
	}
	return dtype.SomeOf(v), nil
}
