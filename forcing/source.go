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

package forcing

import (
	"fmt"
	"os"

	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/internal/ncf"
	"github.com/ctessum/cdf"
)

// Source is a source of forcing data.
type Source interface {
	// Records returns the number of records of variable.
	Records(variable string) (int, error)

	// Read returns record rec of variable.
	Read(variable string, rec int) ([]float64, error)
}

// MemorySource is a Source that holds its records in memory.
// Keys are variable names; values are lists of records.
type MemorySource map[string][][]float64

// Records implements Source.
func (s MemorySource) Records(variable string) (int, error) {
	v, ok := s[variable]
	if !ok {
		return 0, fmt.Errorf("forcing: variable %s not in source", variable)
	}
	return len(v), nil
}

// Read implements Source.
func (s MemorySource) Read(variable string, rec int) ([]float64, error) {
	v, ok := s[variable]
	if !ok {
		return nil, fmt.Errorf("forcing: variable %s not in source", variable)
	}
	if rec < 0 || rec >= len(v) {
		return nil, fmt.Errorf("forcing: record %d of variable %s out of range [0, %d)", rec, variable, len(v))
	}
	return v[rec], nil
}

// NCFSource is a Source that reads from a NetCDF file. Variables are
// expected to have dimensions [Time, nCells]. Non-record variables
// are treated as a single record.
type NCFSource struct {
	f    *cdf.File
	nrec int
}

// NewNCFSource reads the header of NetCDF file r.
func NewNCFSource(r *os.File) (*NCFSource, error) {
	f, err := cdf.Open(r)
	if err != nil {
		return nil, fmt.Errorf("forcing: opening %s: %w", r.Name(), err)
	}
	info, err := r.Stat()
	if err != nil {
		return nil, fmt.Errorf("forcing: %w", err)
	}
	return &NCFSource{
		f:    f,
		nrec: int(f.Header.NumRecs(info.Size())),
	}, nil
}

// Records implements Source.
func (s *NCFSource) Records(variable string) (int, error) {
	if !ncf.Has(s.f, variable) {
		return 0, fmt.Errorf("forcing: variable %s not in file", variable)
	}
	if !s.f.Header.IsRecordVariable(variable) {
		return 1, nil
	}
	return s.nrec, nil
}

// Read implements Source.
func (s *NCFSource) Read(variable string, rec int) ([]float64, error) {
	n, err := s.Records(variable)
	if err != nil {
		return nil, err
	}
	if rec < 0 || rec >= n {
		return nil, fmt.Errorf("forcing: record %d of variable %s out of range [0, %d)", rec, variable, n)
	}
	if !s.f.Header.IsRecordVariable(variable) {
		d, err := ncf.Read(s.f, variable)
		if err != nil {
			return nil, err
		}
		return d.Elements, nil
	}
	d, err := ncf.ReadRecord(s.f, variable, rec)
	if err != nil {
		return nil, err
	}
	return d.Elements, nil
}
