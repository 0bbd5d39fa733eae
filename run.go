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
	"runtime"
	"sync"
	"time"

	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/mesh"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/timekeeping"
	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// Parallel concurrently runs f for every index in [0, n) and returns
// once all of the calls have finished. Each index is processed exactly
// once, so f may write to index-specific locations without locking.
func Parallel(n int, f func(i int)) {
	nprocs := min(runtime.GOMAXPROCS(0), n) // number of processors
	if nprocs <= 1 {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			for ii := pp; ii < n; ii += nprocs {
				f(ii)
			}
			wg.Done()
		}(pp)
	}
	wg.Wait()
}

// ResetDiagnostics zeroes the mixing accumulators and the tracer
// tendencies. It should be run at the start of each time step, before
// any scheme adds its contribution.
func ResetDiagnostics() DomainManipulator {
	return func(d *Model) error {
		Zero(d.Diag.VertViscTopOfEdge, d.Diag.VertDiffTopOfCell, d.Tend.ActiveTracers)
		return nil
	}
}

// LayerThicknessEdge returns a function that updates
// d.Diag.LayerThicknessEdge from the current time level.
func LayerThicknessEdge() DomainManipulator {
	return func(d *Model) error {
		s, err := d.State(1)
		if err != nil {
			return err
		}
		return ComputeLayerThicknessEdge(d.Mesh, s.LayerThickness, d.Diag.LayerThicknessEdge)
	}
}

// ComputeLayerThicknessEdge sets the layer thickness at each active edge
// level to the mean of the thicknesses of the two adjacent cells. On
// boundary edges the thickness of the single adjacent cell is used.
// Edges in the first halo tier are included.
func ComputeLayerThicknessEdge(m *mesh.Mesh, thickness, thicknessEdge *sparse.DenseArray) error {
	if err := CheckShape("layerThickness", thickness, m.NVertLevels, m.NCells); err != nil {
		return err
	}
	if err := CheckShape("layerThicknessEdge", thicknessEdge, m.NVertLevels, m.NEdges); err != nil {
		return err
	}
	h, he := thickness.Elements, thicknessEdge.Elements
	nCells, nEdges := m.NCells, m.NEdges
	Parallel(m.EdgeRange(2), func(e int) {
		c := m.CellsOnEdge[e]
		for k := 0; k < m.MaxLevelEdgeBot[e]; k++ {
			switch {
			case c[0] == mesh.NoCell:
				he[k*nEdges+e] = h[k*nCells+c[1]]
			case c[1] == mesh.NoCell:
				he[k*nEdges+e] = h[k*nCells+c[0]]
			case k < m.MaxLevelEdgeTop[e]:
				he[k*nEdges+e] = 0.5 * (h[k*nCells+c[0]] + h[k*nCells+c[1]])
			case k < m.MaxLevelCell[c[0]]:
				he[k*nEdges+e] = h[k*nCells+c[0]]
			default:
				he[k*nEdges+e] = h[k*nCells+c[1]]
			}
		}
	})
	return nil
}

// AdvanceClock returns a function that moves the model clock forward by
// one time step and sets d.Done when the end of the run is reached.
func AdvanceClock() DomainManipulator {
	return func(d *Model) error {
		if d.Clock == nil {
			return fmt.Errorf("ocean: the model clock has not been set")
		}
		d.Clock.Advance()
		if d.Clock.Done() {
			d.Done = true
		}
		return nil
	}
}

// Log writes simulation status messages to log.
func Log(log logrus.FieldLogger) DomainManipulator {
	startTime := time.Now()
	timeStepTime := time.Now()

	iteration := 0

	return func(d *Model) error {
		iteration++
		fields := logrus.Fields{
			"iteration": iteration,
			"walltime":  time.Since(startTime).Round(time.Millisecond).String(),
			"Δwalltime": time.Since(timeStepTime).Round(time.Millisecond).String(),
		}
		if d.Clock != nil {
			fields["time"] = timekeeping.FormatTime(d.Clock.Current)
		}
		if d.Diag != nil {
			fields["maxVisc"] = d.Diag.VertViscTopOfEdge.Max()
			fields["maxDiff"] = d.Diag.VertDiffTopOfCell.Max()
		}
		log.WithFields(fields).Info("time step complete")
		timeStepTime = time.Now()
		return nil
	}
}
