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

import "fmt"

// Strip returns a mesh made of a single row of len(maxLevelCell) cells
// with nVertLevels levels of dz meters each. Every cell is 1 km wide
// and 1 km long. Interior edge i joins cells i and i+1; the last two
// edges close off the ends of the row. If nOwned > 0, only the first
// nOwned cells (and the edges between them) are owned and the rest are
// in the first halo tier.
//
// Strip is useful for testing and for single-column runs.
func Strip(nVertLevels int, dz float64, nOwned int, maxLevelCell ...int) (*Mesh, error) {
	n := len(maxLevelCell)
	if n == 0 {
		return nil, fmt.Errorf("mesh: a strip needs at least one cell")
	}
	const width = 1000.

	nEdges := n + 1
	m := &Mesh{
		NVertLevels:  nVertLevels,
		MaxLevelCell: append([]int{}, maxLevelCell...),
		CellsOnEdge:  make([][2]int, nEdges),
		EdgesOnCell:  make([][]int, n),
		AreaCell:     make([]float64, n),
		DcEdge:       make([]float64, nEdges),
		DvEdge:       make([]float64, nEdges),
	}
	for e := 0; e < n-1; e++ {
		m.CellsOnEdge[e] = [2]int{e, e + 1}
	}
	west, east := n-1, n
	m.CellsOnEdge[west] = [2]int{NoCell, 0}
	m.CellsOnEdge[east] = [2]int{n - 1, NoCell}
	for i := range m.EdgesOnCell {
		left, right := i-1, i
		if i == 0 {
			left = west
		}
		if i == n-1 {
			right = east
		}
		m.EdgesOnCell[i] = []int{left, right}
		m.AreaCell[i] = width * width
	}
	for e := range m.DcEdge {
		m.DcEdge[e] = width
		m.DvEdge[e] = width
	}
	m.RefBottomDepth = make([]float64, nVertLevels)
	for k := range m.RefBottomDepth {
		m.RefBottomDepth[k] = dz * float64(k+1)
	}
	if nOwned > 0 && nOwned < n {
		m.NCellsArray = []int{nOwned, n}
		// Interior edges between owned cells come first.
		m.NEdgesArray = []int{nOwned - 1, nEdges}
	}
	return New(m)
}
