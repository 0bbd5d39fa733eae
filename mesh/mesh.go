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

// Package mesh holds the horizontal and vertical topology of an
// unstructured ocean mesh.
//
// Cells and edges are identified by 0-based indices into the slices
// held by Mesh. Vertical levels are also 0-based, with level 0 at the
// surface; MaxLevelCell and friends hold the number of active levels,
// so that level k of cell i is active when k < MaxLevelCell[i].
// A missing cell on a boundary edge is marked with NoCell.
package mesh

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// NoCell marks the missing neighbor of a boundary edge.
const NoCell = -1

// Mesh is the topology of an unstructured mesh. It is immutable once
// New has returned.
type Mesh struct {
	NCells, NEdges int
	NVertLevels    int
	MaxEdges       int

	// CellsOnEdge holds the two cells on either side of each edge.
	CellsOnEdge [][2]int

	// EdgesOnCell holds the edges bounding each cell.
	EdgesOnCell  [][]int
	NEdgesOnCell []int

	// EdgeSignOnCell is -1 when the cell is the first cell of the
	// edge and +1 otherwise.
	EdgeSignOnCell [][]float64

	MaxLevelCell    []int
	MaxLevelEdgeTop []int
	MaxLevelEdgeBot []int

	AreaCell []float64 // [m²]
	DcEdge   []float64 // distance between cell centers across an edge [m]
	DvEdge   []float64 // length of an edge [m]

	// RefBottomDepth is the reference depth of the bottom of each
	// level [m].
	RefBottomDepth []float64

	// NCellsArray and NEdgesArray hold cumulative counts of the cells
	// and edges in each halo tier: element 0 is the owned range,
	// element 1 is the owned range plus the first halo layer, etc.
	NCellsArray []int
	NEdgesArray []int
}

// New fills in the derived fields of m that have not been set and
// checks that the result is consistent. The returned mesh is m.
//
// The derived fields are NCells, NEdges, NVertLevels, NEdgesOnCell,
// MaxEdges, EdgeSignOnCell, MaxLevelEdgeTop, MaxLevelEdgeBot,
// NCellsArray and NEdgesArray.
func New(m *Mesh) (*Mesh, error) {
	if m.NCells == 0 {
		m.NCells = len(m.MaxLevelCell)
	}
	if m.NEdges == 0 {
		m.NEdges = len(m.CellsOnEdge)
	}
	if m.NVertLevels == 0 {
		m.NVertLevels = len(m.RefBottomDepth)
	}
	if len(m.EdgesOnCell) != m.NCells {
		return nil, fmt.Errorf("mesh: EdgesOnCell has %d cells but there are %d cells",
			len(m.EdgesOnCell), m.NCells)
	}
	if len(m.CellsOnEdge) != m.NEdges {
		return nil, fmt.Errorf("mesh: CellsOnEdge has %d edges but there are %d edges",
			len(m.CellsOnEdge), m.NEdges)
	}
	if m.NEdgesOnCell == nil {
		m.NEdgesOnCell = make([]int, m.NCells)
		for i, e := range m.EdgesOnCell {
			m.NEdgesOnCell[i] = len(e)
		}
	}
	if m.MaxEdges == 0 {
		for _, n := range m.NEdgesOnCell {
			if n > m.MaxEdges {
				m.MaxEdges = n
			}
		}
	}
	if err := m.checkIndices(); err != nil {
		return nil, err
	}
	if m.EdgeSignOnCell == nil {
		m.setEdgeSigns()
	}
	if m.MaxLevelEdgeTop == nil || m.MaxLevelEdgeBot == nil {
		m.setEdgeLevels()
	}
	if len(m.NCellsArray) == 0 {
		m.NCellsArray = []int{m.NCells}
	}
	if len(m.NEdgesArray) == 0 {
		m.NEdgesArray = []int{m.NEdges}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// checkIndices makes sure the connectivity arrays point to real cells and
// edges before anything is derived from them.
func (m *Mesh) checkIndices() error {
	for e, c := range m.CellsOnEdge {
		if c[0] == NoCell && c[1] == NoCell {
			return fmt.Errorf("mesh: edge %d has no adjacent cells", e)
		}
		for _, i := range c {
			if i < NoCell || i >= m.NCells {
				return fmt.Errorf("mesh: edge %d refers to cell %d but there are %d cells", e, i, m.NCells)
			}
		}
	}
	for i, edges := range m.EdgesOnCell {
		if m.NEdgesOnCell[i] > len(edges) {
			return fmt.Errorf("mesh: cell %d has %d edges but NEdgesOnCell=%d", i, len(edges), m.NEdgesOnCell[i])
		}
		for _, e := range edges[:m.NEdgesOnCell[i]] {
			if e < 0 || e >= m.NEdges {
				return fmt.Errorf("mesh: cell %d refers to edge %d but there are %d edges", i, e, m.NEdges)
			}
			if m.CellsOnEdge[e][0] != i && m.CellsOnEdge[e][1] != i {
				return fmt.Errorf("mesh: cell %d lists edge %d, which is not adjacent to it", i, e)
			}
		}
	}
	return nil
}

func (m *Mesh) setEdgeSigns() {
	m.EdgeSignOnCell = make([][]float64, m.NCells)
	for i, edges := range m.EdgesOnCell {
		m.EdgeSignOnCell[i] = make([]float64, len(edges))
		for j, e := range edges[:m.NEdgesOnCell[i]] {
			if m.CellsOnEdge[e][0] == i {
				m.EdgeSignOnCell[i][j] = -1
			} else {
				m.EdgeSignOnCell[i][j] = 1
			}
		}
	}
}

// setEdgeLevels sets the active level counts of each edge from its
// adjacent cells. Boundary edges have no active top levels.
func (m *Mesh) setEdgeLevels() {
	top := make([]int, m.NEdges)
	bot := make([]int, m.NEdges)
	for e, c := range m.CellsOnEdge {
		switch {
		case c[0] == NoCell:
			bot[e] = m.MaxLevelCell[c[1]]
		case c[1] == NoCell:
			bot[e] = m.MaxLevelCell[c[0]]
		default:
			top[e] = min(m.MaxLevelCell[c[0]], m.MaxLevelCell[c[1]])
			bot[e] = max(m.MaxLevelCell[c[0]], m.MaxLevelCell[c[1]])
		}
	}
	if m.MaxLevelEdgeTop == nil {
		m.MaxLevelEdgeTop = top
	}
	if m.MaxLevelEdgeBot == nil {
		m.MaxLevelEdgeBot = bot
	}
}

// Validate checks the consistency of the mesh.
func (m *Mesh) Validate() error {
	if m.NVertLevels <= 0 {
		return fmt.Errorf("mesh: NVertLevels=%d but should be >0", m.NVertLevels)
	}
	for _, f := range []struct {
		name string
		n    int
		want int
	}{
		{"MaxLevelCell", len(m.MaxLevelCell), m.NCells},
		{"AreaCell", len(m.AreaCell), m.NCells},
		{"NEdgesOnCell", len(m.NEdgesOnCell), m.NCells},
		{"EdgeSignOnCell", len(m.EdgeSignOnCell), m.NCells},
		{"MaxLevelEdgeTop", len(m.MaxLevelEdgeTop), m.NEdges},
		{"MaxLevelEdgeBot", len(m.MaxLevelEdgeBot), m.NEdges},
		{"DcEdge", len(m.DcEdge), m.NEdges},
		{"DvEdge", len(m.DvEdge), m.NEdges},
	} {
		if f.n != f.want {
			return fmt.Errorf("mesh: %s has length %d but should have length %d", f.name, f.n, f.want)
		}
	}
	if m.RefBottomDepth != nil && len(m.RefBottomDepth) != m.NVertLevels {
		return fmt.Errorf("mesh: RefBottomDepth has length %d but there are %d levels",
			len(m.RefBottomDepth), m.NVertLevels)
	}
	if m.NCells > 0 && floats.Min(m.AreaCell) <= 0 {
		return fmt.Errorf("mesh: AreaCell contains non-positive values")
	}
	if m.NEdges > 0 && (floats.Min(m.DcEdge) <= 0 || floats.Min(m.DvEdge) <= 0) {
		return fmt.Errorf("mesh: DcEdge and DvEdge must be positive")
	}
	for i, k := range m.MaxLevelCell {
		if k < 0 || k > m.NVertLevels {
			return fmt.Errorf("mesh: MaxLevelCell[%d]=%d is outside of [0, %d]", i, k, m.NVertLevels)
		}
	}
	for e, c := range m.CellsOnEdge {
		top := m.MaxLevelEdgeTop[e]
		if top < 0 || m.MaxLevelEdgeBot[e] > m.NVertLevels || top > m.MaxLevelEdgeBot[e] {
			return fmt.Errorf("mesh: edge %d has MaxLevelEdgeTop=%d and MaxLevelEdgeBot=%d",
				e, top, m.MaxLevelEdgeBot[e])
		}
		for _, i := range c {
			if i == NoCell && top != 0 {
				return fmt.Errorf("mesh: boundary edge %d has MaxLevelEdgeTop=%d but should have 0", e, top)
			}
			if i != NoCell && top > m.MaxLevelCell[i] {
				return fmt.Errorf("mesh: MaxLevelEdgeTop[%d]=%d is deeper than MaxLevelCell[%d]=%d",
					e, top, i, m.MaxLevelCell[i])
			}
		}
	}
	if err := checkTiers("NCellsArray", m.NCellsArray, m.NCells); err != nil {
		return err
	}
	return checkTiers("NEdgesArray", m.NEdgesArray, m.NEdges)
}

func checkTiers(name string, a []int, n int) error {
	prev := 0
	for i, v := range a {
		if v < prev || v > n {
			return fmt.Errorf("mesh: %s[%d]=%d should be in [%d, %d]", name, i, v, prev, n)
		}
		prev = v
	}
	return nil
}

// CellRange returns the number of cells that are active in the given
// halo tier, where tier 1 is the owned cells, tier 2 adds the first
// halo layer, and so on. Tiers beyond the deepest halo return the total
// of the deepest halo.
func (m *Mesh) CellRange(tier int) int { return tierCount(m.NCellsArray, tier) }

// EdgeRange is the edge equivalent of CellRange.
func (m *Mesh) EdgeRange(tier int) int { return tierCount(m.NEdgesArray, tier) }

func tierCount(a []int, tier int) int {
	if len(a) == 0 {
		return 0
	}
	i := min(max(tier-1, 0), len(a)-1)
	return a[i]
}

// NeighborCell returns the cell on the other side of edge e from cell i,
// or NoCell if there is none.
func (m *Mesh) NeighborCell(i, e int) int {
	c := m.CellsOnEdge[e]
	if c[0] == i {
		return c[1]
	}
	return c[0]
}

func (m *Mesh) String() string {
	return fmt.Sprintf("mesh: %d cells (%d owned), %d edges (%d owned), %d levels, max %d edges per cell",
		m.NCells, m.CellRange(1), m.NEdges, m.EdgeRange(1), m.NVertLevels, m.MaxEdges)
}
