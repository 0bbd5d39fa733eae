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

package mesh

import (
	"fmt"
	"os"

	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/internal/ncf"
	"github.com/ctessum/cdf"
)

// Load reads a mesh from a NetCDF file in MPAS format. Connectivity
// variables in the file (cellsOnEdge, edgesOnCell) are 1-based, with 0
// marking a missing cell; they are converted to 0-based indices.
//
// The variables maxLevelEdgeTop, maxLevelEdgeBot, edgeSignOnCell,
// nCellsArray and nEdgesArray are optional and are derived by New
// when they are absent.
func Load(rw cdf.ReaderWriterAt) (*Mesh, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("mesh.Load: %v", err)
	}
	m := new(Mesh)

	cellsOnEdge, shape, err := ncf.ReadInts(f, "cellsOnEdge")
	if err != nil {
		return nil, fmt.Errorf("mesh.Load: %v", err)
	}
	if len(shape) != 2 || shape[1] != 2 {
		return nil, fmt.Errorf("mesh.Load: cellsOnEdge has shape %v; it should be [nEdges, 2]", shape)
	}
	m.CellsOnEdge = make([][2]int, shape[0])
	for e := range m.CellsOnEdge {
		m.CellsOnEdge[e] = [2]int{cellsOnEdge[2*e] - 1, cellsOnEdge[2*e+1] - 1}
	}

	edgesOnCell, shape, err := ncf.ReadInts(f, "edgesOnCell")
	if err != nil {
		return nil, fmt.Errorf("mesh.Load: %v", err)
	}
	if len(shape) != 2 {
		return nil, fmt.Errorf("mesh.Load: edgesOnCell has shape %v; it should be [nCells, maxEdges]", shape)
	}
	nCells, maxEdges := shape[0], shape[1]
	nEdgesOnCell, _, err := ncf.ReadInts(f, "nEdgesOnCell")
	if err != nil {
		return nil, fmt.Errorf("mesh.Load: %v", err)
	}
	if len(nEdgesOnCell) != nCells {
		return nil, fmt.Errorf("mesh.Load: nEdgesOnCell has length %d but there are %d cells",
			len(nEdgesOnCell), nCells)
	}
	m.NEdgesOnCell = nEdgesOnCell
	m.EdgesOnCell = make([][]int, nCells)
	for i := range m.EdgesOnCell {
		if nEdgesOnCell[i] > maxEdges || nEdgesOnCell[i] < 0 {
			return nil, fmt.Errorf("mesh.Load: cell %d has %d edges but maxEdges=%d", i, nEdgesOnCell[i], maxEdges)
		}
		m.EdgesOnCell[i] = make([]int, nEdgesOnCell[i])
		for j := range m.EdgesOnCell[i] {
			m.EdgesOnCell[i][j] = edgesOnCell[i*maxEdges+j] - 1
		}
	}

	if m.MaxLevelCell, _, err = ncf.ReadInts(f, "maxLevelCell"); err != nil {
		return nil, fmt.Errorf("mesh.Load: %v", err)
	}
	for _, v := range []struct {
		name string
		dst  *[]float64
	}{
		{"areaCell", &m.AreaCell},
		{"dcEdge", &m.DcEdge},
		{"dvEdge", &m.DvEdge},
		{"refBottomDepth", &m.RefBottomDepth},
	} {
		d, err := ncf.Read(f, v.name)
		if err != nil {
			return nil, fmt.Errorf("mesh.Load: %v", err)
		}
		*v.dst = d.Elements
	}

	for _, v := range []struct {
		name string
		dst  *[]int
	}{
		{"maxLevelEdgeTop", &m.MaxLevelEdgeTop},
		{"maxLevelEdgeBot", &m.MaxLevelEdgeBot},
		{"nCellsArray", &m.NCellsArray},
		{"nEdgesArray", &m.NEdgesArray},
	} {
		if !ncf.Has(f, v.name) {
			continue
		}
		if *v.dst, _, err = ncf.ReadInts(f, v.name); err != nil {
			return nil, fmt.Errorf("mesh.Load: %v", err)
		}
	}

	if ncf.Has(f, "edgeSignOnCell") {
		d, err := ncf.Read(f, "edgeSignOnCell")
		if err != nil {
			return nil, fmt.Errorf("mesh.Load: %v", err)
		}
		m.EdgeSignOnCell = make([][]float64, nCells)
		for i := range m.EdgeSignOnCell {
			m.EdgeSignOnCell[i] = d.Elements[i*maxEdges : i*maxEdges+nEdgesOnCell[i]]
		}
	}
	return New(m)
}

// Write writes m to w in the format read by Load.
func (m *Mesh) Write(w *os.File) error {
	h := cdf.NewHeader(
		[]string{"nCells", "nEdges", "maxEdges", "TWO", "nVertLevels", "nHaloTiers", "nEdgeHaloTiers"},
		[]int{m.NCells, m.NEdges, m.MaxEdges, 2, m.NVertLevels, len(m.NCellsArray), len(m.NEdgesArray)})
	h.AddAttribute("", "comment", "MPAS-Ocean mesh file")

	intVars := []struct {
		name string
		dims []string
		data []float64
	}{
		{"cellsOnEdge", []string{"nEdges", "TWO"}, m.cellsOnEdge1()},
		{"edgesOnCell", []string{"nCells", "maxEdges"}, m.edgesOnCell1()},
		{"nEdgesOnCell", []string{"nCells"}, ncf.Ints(m.NEdgesOnCell)},
		{"maxLevelCell", []string{"nCells"}, ncf.Ints(m.MaxLevelCell)},
		{"maxLevelEdgeTop", []string{"nEdges"}, ncf.Ints(m.MaxLevelEdgeTop)},
		{"maxLevelEdgeBot", []string{"nEdges"}, ncf.Ints(m.MaxLevelEdgeBot)},
		{"nCellsArray", []string{"nHaloTiers"}, ncf.Ints(m.NCellsArray)},
		{"nEdgesArray", []string{"nEdgeHaloTiers"}, ncf.Ints(m.NEdgesArray)},
	}
	floatVars := []struct {
		name, units string
		dims        []string
		data        []float64
	}{
		{"areaCell", "m2", []string{"nCells"}, m.AreaCell},
		{"dcEdge", "m", []string{"nEdges"}, m.DcEdge},
		{"dvEdge", "m", []string{"nEdges"}, m.DvEdge},
		{"refBottomDepth", "m", []string{"nVertLevels"}, m.refBottomDepth()},
		{"edgeSignOnCell", "1", []string{"nCells", "maxEdges"}, m.edgeSignOnCellFlat()},
	}
	for _, v := range intVars {
		h.AddVariable(v.name, v.dims, []int32{0})
	}
	for _, v := range floatVars {
		h.AddVariable(v.name, v.dims, []float64{0})
		h.AddAttribute(v.name, "units", v.units)
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("mesh: writing netcdf file: %v", err)
	}
	for _, v := range intVars {
		if err := ncf.Write(f, v.name, v.data); err != nil {
			return fmt.Errorf("mesh: writing variable %s: %v", v.name, err)
		}
	}
	for _, v := range floatVars {
		if err := ncf.Write(f, v.name, v.data); err != nil {
			return fmt.Errorf("mesh: writing variable %s: %v", v.name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

func (m *Mesh) cellsOnEdge1() []float64 {
	o := make([]float64, 2*m.NEdges)
	for e, c := range m.CellsOnEdge {
		o[2*e] = float64(c[0] + 1)
		o[2*e+1] = float64(c[1] + 1)
	}
	return o
}

func (m *Mesh) edgesOnCell1() []float64 {
	o := make([]float64, m.NCells*m.MaxEdges)
	for i, edges := range m.EdgesOnCell {
		for j, e := range edges[:m.NEdgesOnCell[i]] {
			o[i*m.MaxEdges+j] = float64(e + 1)
		}
	}
	return o
}

func (m *Mesh) edgeSignOnCellFlat() []float64 {
	o := make([]float64, m.NCells*m.MaxEdges)
	for i, s := range m.EdgeSignOnCell {
		copy(o[i*m.MaxEdges:(i+1)*m.MaxEdges], s[:m.NEdgesOnCell[i]])
	}
	return o
}

func (m *Mesh) refBottomDepth() []float64 {
	if m.RefBottomDepth != nil {
		return m.RefBottomDepth
	}
	return make([]float64, m.NVertLevels)
}
