/*
Copyright © 2024 the MPAS-Ocean authors.
This file is part of MPAS-Ocean.

MPAS-Ocean is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

MPAS-Ocean is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with MPAS-Ocean.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package ncf contains helpers for reading and writing NetCDF variables
// as float64 values, regardless of how they are stored in the file.
package ncf

import (
	"fmt"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Has reports whether variable v is in f.
func Has(f *cdf.File, v string) bool {
	return len(f.Header.Lengths(v)) > 0
}

// Read reads all of non-record variable v out of f.
func Read(f *cdf.File, v string) (*sparse.DenseArray, error) {
	dims := f.Header.Lengths(v)
	if len(dims) == 0 {
		return nil, fmt.Errorf("ncf: variable %s not in file", v)
	}
	if f.Header.IsRecordVariable(v) {
		return nil, fmt.Errorf("ncf: variable %s is a record variable", v)
	}
	data := sparse.ZerosDense(dims...)
	r := f.Reader(v, nil, nil)
	buf := r.Zero(len(data.Elements))
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("ncf: reading variable %s: %v", v, err)
	}
	if err := convert(buf, data.Elements); err != nil {
		return nil, fmt.Errorf("ncf: reading variable %s: %v", v, err)
	}
	return data, nil
}

// ReadInts reads non-record integer variable v out of f.
func ReadInts(f *cdf.File, v string) ([]int, []int, error) {
	data, err := Read(f, v)
	if err != nil {
		return nil, nil, err
	}
	o := make([]int, len(data.Elements))
	for i, val := range data.Elements {
		o[i] = int(val)
	}
	return o, data.Shape, nil
}

// ReadRecord reads record rec of record variable v out of f.
// The returned array does not include the record dimension.
func ReadRecord(f *cdf.File, v string, rec int) (*sparse.DenseArray, error) {
	dims := f.Header.Lengths(v)
	if len(dims) == 0 {
		return nil, fmt.Errorf("ncf: variable %s not in file", v)
	}
	dims = dims[1:]
	nread := 1
	for _, dim := range dims {
		nread *= dim
	}
	start, end := make([]int, len(dims)+1), make([]int, len(dims)+1)
	start[0], end[0] = rec, rec+1
	r := f.Reader(v, start, end)
	buf := r.Zero(nread)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("ncf: reading record %d of variable %s: %v", rec, v, err)
	}
	data := sparse.ZerosDense(dims...)
	if err := convert(buf, data.Elements); err != nil {
		return nil, fmt.Errorf("ncf: reading record %d of variable %s: %v", rec, v, err)
	}
	return data, nil
}

func convert(buf interface{}, o []float64) error {
	switch b := buf.(type) {
	case []float64:
		copy(o, b)
	case []float32:
		for i, val := range b {
			o[i] = float64(val)
		}
	case []int32:
		for i, val := range b {
			o[i] = float64(val)
		}
	case []int16:
		for i, val := range b {
			o[i] = float64(val)
		}
	default:
		return fmt.Errorf("unsupported data type %T", buf)
	}
	return nil
}

// Write writes data to non-record variable v in f, converting it to the
// type the variable was defined with.
func Write(f *cdf.File, v string, data []float64) error {
	end := f.Header.Lengths(v)
	if len(end) == 0 {
		return fmt.Errorf("ncf: variable %s not in file", v)
	}
	n := 1
	for _, d := range end {
		n *= d
	}
	if len(data) != n {
		return fmt.Errorf("ncf: variable %s: dims are %d but array length is %d", v, n, len(data))
	}
	start := make([]int, len(end))
	return write(f.Writer(v, start, end), f.Header.ZeroValue(v, 0), data)
}

// WriteRecord writes data to record rec of record variable v in f.
func WriteRecord(f *cdf.File, v string, rec int, data []float64) error {
	dims := f.Header.Lengths(v)
	if len(dims) == 0 {
		return fmt.Errorf("ncf: variable %s not in file", v)
	}
	n := 1
	for _, d := range dims[1:] {
		n *= d
	}
	if len(data) != n {
		return fmt.Errorf("ncf: variable %s: record size is %d but array length is %d", v, n, len(data))
	}
	start := make([]int, len(dims))
	start[0] = rec
	return write(f.Writer(v, start, nil), f.Header.ZeroValue(v, 0), data)
}

func write(w cdf.Writer, zero interface{}, data []float64) error {
	var err error
	switch zero.(type) {
	case []float64:
		_, err = w.Write(data)
	case []float32:
		data32 := make([]float32, len(data))
		for i, e := range data {
			data32[i] = float32(e)
		}
		_, err = w.Write(data32)
	case []int32:
		dataInt := make([]int32, len(data))
		for i, e := range data {
			dataInt[i] = int32(e)
		}
		_, err = w.Write(dataInt)
	default:
		return fmt.Errorf("ncf: unsupported data type %T", zero)
	}
	return err
}

// Ints converts integer values to float64 for writing.
func Ints(v []int) []float64 {
	o := make([]float64, len(v))
	for i, x := range v {
		o[i] = float64(x)
	}
	return o
}
