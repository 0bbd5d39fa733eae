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

package ocean

import (
	"fmt"
	"os"

	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/internal/ncf"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/mesh"
	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Names of the state variables in MPAS-Ocean files. Each is stored
// with the vertical dimension innermost, e.g. layerThickness(Time, nCells,
// nVertLevels).
const (
	varNormalVelocity = "normalVelocity"
	varLayerThickness = "layerThickness"
	varTemperature    = "temperature"
	varSalinity       = "salinity"
)

// LoadState reads the given record of the state variables from a NetCDF
// file in MPAS-Ocean format. Variables without a record dimension are read
// in full and rec is ignored.
func LoadState(rw cdf.ReaderWriterAt, m *mesh.Mesh, idx TracerIndex, rec int) (*State, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("ocean.LoadState: %v", err)
	}
	s := NewState(m, idx.NumTracers())

	u, err := readLevels(f, varNormalVelocity, rec, m.NEdges, m.NVertLevels)
	if err != nil {
		return nil, fmt.Errorf("ocean.LoadState: %v", err)
	}
	s.NormalVelocity = u

	h, err := readLevels(f, varLayerThickness, rec, m.NCells, m.NVertLevels)
	if err != nil {
		return nil, fmt.Errorf("ocean.LoadState: %v", err)
	}
	s.LayerThickness = h

	n := m.NVertLevels * m.NCells
	for _, t := range []struct {
		name string
		i    int
	}{
		{varTemperature, idx.Temperature},
		{varSalinity, idx.Salinity},
	} {
		d, err := readLevels(f, t.name, rec, m.NCells, m.NVertLevels)
		if err != nil {
			return nil, fmt.Errorf("ocean.LoadState: %v", err)
		}
		copy(s.ActiveTracers.Elements[t.i*n:(t.i+1)*n], d.Elements)
	}
	return s, nil
}

// readLevels reads variable v(Time, nOuter, nVertLevels) and returns it
// with shape [nVertLevels, nOuter].
func readLevels(f *cdf.File, v string, rec, nOuter, nz int) (*sparse.DenseArray, error) {
	var d *sparse.DenseArray
	var err error
	if f.Header.IsRecordVariable(v) {
		d, err = ncf.ReadRecord(f, v, rec)
	} else {
		d, err = ncf.Read(f, v)
	}
	if err != nil {
		return nil, err
	}
	if len(d.Shape) != 2 || d.Shape[0] != nOuter || d.Shape[1] != nz {
		return nil, fmt.Errorf("variable %s has shape %v but should have shape [%d %d]", v, d.Shape, nOuter, nz)
	}
	o := sparse.ZerosDense(nz, nOuter)
	for i := 0; i < nOuter; i++ {
		for k := 0; k < nz; k++ {
			o.Elements[k*nOuter+i] = d.Elements[i*nz+k]
		}
	}
	return o, nil
}

// transposeLevels converts a [nVertLevels, nOuter] array to the
// nVertLevels-innermost order used in files.
func transposeLevels(a *sparse.DenseArray) []float64 {
	nz, n := a.Shape[0], a.Shape[1]
	o := make([]float64, len(a.Elements))
	for k := 0; k < nz; k++ {
		for i := 0; i < n; i++ {
			o[i*nz+k] = a.Elements[k*n+i]
		}
	}
	return o
}

// WriteState writes s to w as the first record of a NetCDF file in the
// format read by LoadState.
func WriteState(w *os.File, m *mesh.Mesh, s *State, idx TracerIndex) error {
	h := cdf.NewHeader(
		[]string{"Time", "nCells", "nEdges", "nVertLevels"},
		[]int{0, m.NCells, m.NEdges, m.NVertLevels})
	h.AddAttribute("", "comment", "MPAS-Ocean state file")

	n := m.NVertLevels * m.NCells
	tracer := func(i int) *sparse.DenseArray {
		t := sparse.ZerosDense(m.NVertLevels, m.NCells)
		copy(t.Elements, s.ActiveTracers.Elements[i*n:(i+1)*n])
		return t
	}
	vars := []struct {
		name, units, outer string
		data               *sparse.DenseArray
	}{
		{varNormalVelocity, "m s-1", "nEdges", s.NormalVelocity},
		{varLayerThickness, "m", "nCells", s.LayerThickness},
		{varTemperature, "degree_C", "nCells", tracer(idx.Temperature)},
		{varSalinity, "PSU", "nCells", tracer(idx.Salinity)},
	}
	for _, v := range vars {
		h.AddVariable(v.name, []string{"Time", v.outer, "nVertLevels"}, []float64{0})
		h.AddAttribute(v.name, "units", v.units)
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("ocean: writing state file: %v", err)
	}
	for _, v := range vars {
		if err := ncf.WriteRecord(f, v.name, 0, transposeLevels(v.data)); err != nil {
			return fmt.Errorf("ocean: writing variable %s: %v", v.name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}
