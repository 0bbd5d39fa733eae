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

// Package vmix calculates vertical viscosity and diffusivity from the
// gradient Richardson number, following Pacanowski and Philander (1981).
//
// All fields are [level, cell] or [level, edge] arrays. Level 0 is the
// surface; interface quantities at level k are at the top of layer k, so
// level 0 is never set.
package vmix

import (
	"errors"
	"fmt"

	ocean "github.com/UCI-OCEANOGRAPHY/MPAS-Model"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/mesh"
	"github.com/ctessum/sparse"
)

// Config holds the Richardson mixing parameters.
type Config struct {
	// UseRichVisc and UseRichDiff turn on the viscosity and diffusivity
	// calculations.
	UseRichVisc, UseRichDiff bool

	RichMix        float64 // m2/s
	BkrdVertVisc   float64 // m2/s
	BkrdVertDiff   float64 // m2/s
	ConvectiveVisc float64 // m2/s
	ConvectiveDiff float64 // m2/s
}

// Richardson calculates Richardson number based vertical mixing.
type Richardson struct {
	Config

	viscosityEnabled, diffusivityEnabled bool
}

// New returns a Richardson mixing scheme. The enabled calculations are
// fixed at creation.
func New(cfg Config) *Richardson {
	return &Richardson{
		Config:             cfg,
		viscosityEnabled:   cfg.UseRichVisc,
		diffusivityEnabled: cfg.UseRichDiff,
	}
}

// Enabled reports whether either of the mixing calculations is turned on.
func (r *Richardson) Enabled() bool {
	return r.viscosityEnabled || r.diffusivityEnabled
}

// riTiny keeps the Richardson number finite when there is no shear.
const riTiny = 1.e-20

// ComputeNumbers calculates the Richardson number at the top of each
// owned edge and cell. velocity is [level, edge]; thickness, density and
// displacedDensity are [level, cell]; thicknessEdge is [level, edge].
// displacedDensity is the density of each parcel moved down one level.
// riTopOfEdge and riTopOfCell are overwritten.
func (r *Richardson) ComputeNumbers(m *mesh.Mesh, velocity, thickness, thicknessEdge, density, displacedDensity *sparse.DenseArray, riTopOfEdge, riTopOfCell *sparse.DenseArray) error {
	nz, nCells, nEdges := m.NVertLevels, m.NCells, m.NEdges
	for _, c := range []struct {
		name  string
		a     *sparse.DenseArray
		shape []int
	}{
		{"normalVelocity", velocity, []int{nz, nEdges}},
		{"layerThickness", thickness, []int{nz, nCells}},
		{"layerThicknessEdge", thicknessEdge, []int{nz, nEdges}},
		{"density", density, []int{nz, nCells}},
		{"displacedDensity", displacedDensity, []int{nz, nCells}},
		{"RiTopOfEdge", riTopOfEdge, []int{nz, nEdges}},
		{"RiTopOfCell", riTopOfCell, []int{nz, nCells}},
	} {
		if err := ocean.CheckShape(c.name, c.a, c.shape...); err != nil {
			return fmt.Errorf("vmix: %w", err)
		}
	}

	ddensityTopOfCell := make([]float64, nz*nCells)
	ddensityTopOfEdge := make([]float64, nz*nEdges)
	du2TopOfCell := make([]float64, nz*nCells)
	du2TopOfEdge := make([]float64, nz*nEdges)
	ocean.Zero(riTopOfEdge, riTopOfCell)

	rho, rhoDisp := density.Elements, displacedDensity.Elements
	u := velocity.Elements

	// Density jump across the top of each cell for a parcel moved down
	// from the level above.
	ocean.Parallel(m.CellRange(2), func(i int) {
		for k := 1; k < m.MaxLevelCell[i]; k++ {
			ddensityTopOfCell[k*nCells+i] = rhoDisp[(k-1)*nCells+i] - rho[k*nCells+i]
		}
	})

	ocean.Parallel(m.EdgeRange(2), func(e int) {
		c1, c2 := m.CellsOnEdge[e][0], m.CellsOnEdge[e][1]
		for k := 1; k < m.MaxLevelEdgeTop[e]; k++ {
			ddensityTopOfEdge[k*nEdges+e] = 0.5 * (ddensityTopOfCell[k*nCells+c1] + ddensityTopOfCell[k*nCells+c2])
			du := u[(k-1)*nEdges+e] - u[k*nEdges+e]
			du2TopOfEdge[k*nEdges+e] = du * du
		}
	})

	ocean.Parallel(m.CellRange(1), func(i int) {
		invArea := 1 / m.AreaCell[i]
		for _, e := range m.EdgesOnCell[i][:m.NEdgesOnCell[i]] {
			factor := 0.5 * m.DcEdge[e] * m.DvEdge[e] * invArea
			for k := 1; k < m.MaxLevelEdgeTop[e]; k++ {
				du2TopOfCell[k*nCells+i] += factor * du2TopOfEdge[k*nEdges+e]
			}
		}
	})

	const coef = -ocean.Gravity / ocean.RhoSw / 2
	ri, h := riTopOfEdge.Elements, thicknessEdge.Elements
	ocean.Parallel(m.EdgeRange(1), func(e int) {
		for k := 1; k < m.MaxLevelEdgeTop[e]; k++ {
			j := k*nEdges + e
			ri[j] = coef * ddensityTopOfEdge[j] * (h[j-nEdges] + h[j]) / (du2TopOfEdge[j] + riTiny)
		}
	})
	ri, h = riTopOfCell.Elements, thickness.Elements
	ocean.Parallel(m.CellRange(1), func(i int) {
		for k := 1; k < m.MaxLevelCell[i]; k++ {
			j := k*nCells + i
			ri[j] = coef * ddensityTopOfCell[j] * (h[j-nCells] + h[j]) / (du2TopOfCell[j] + riTiny)
		}
	})
	return nil
}

// VelocityViscosity adds the Richardson number based viscosity to visc
// at the top of each active level of each owned edge. Where the column
// is statically unstable (Ri <= 0) the viscosity is set to
// ConvectiveVisc, replacing any other contribution. Nothing is done if
// the viscosity calculation is turned off.
func (r *Richardson) VelocityViscosity(m *mesh.Mesh, riTopOfEdge, thicknessEdge, visc *sparse.DenseArray) error {
	if !r.viscosityEnabled {
		return nil
	}
	nz, nEdges := m.NVertLevels, m.NEdges
	if err := ocean.CheckShape("RiTopOfEdge", riTopOfEdge, nz, nEdges); err != nil {
		return fmt.Errorf("vmix: %w", err)
	}
	if err := ocean.CheckShape("layerThicknessEdge", thicknessEdge, nz, nEdges); err != nil {
		return fmt.Errorf("vmix: %w", err)
	}
	if err := ocean.CheckShape("vertViscTopOfEdge", visc, nz, nEdges); err != nil {
		return fmt.Errorf("vmix: %w", err)
	}
	ri, v := riTopOfEdge.Elements, visc.Elements
	ocean.Parallel(m.EdgeRange(1), func(e int) {
		for k := 1; k < m.MaxLevelEdgeTop[e]; k++ {
			j := k*nEdges + e
			if ri[j] > 0 {
				v[j] += r.viscosity(ri[j])
				v[j] = min(v[j], r.ConvectiveVisc)
			} else {
				v[j] = r.ConvectiveVisc
			}
		}
	})
	return nil
}

// TracerDiffusivity adds the Richardson number based diffusivity to diff
// at the top of each active level of each owned cell, with the same
// convective treatment as VelocityViscosity. Nothing is done if the
// diffusivity calculation is turned off.
func (r *Richardson) TracerDiffusivity(m *mesh.Mesh, riTopOfCell, thickness, diff *sparse.DenseArray) error {
	if !r.diffusivityEnabled {
		return nil
	}
	nz, nCells := m.NVertLevels, m.NCells
	if err := ocean.CheckShape("RiTopOfCell", riTopOfCell, nz, nCells); err != nil {
		return fmt.Errorf("vmix: %w", err)
	}
	if err := ocean.CheckShape("layerThickness", thickness, nz, nCells); err != nil {
		return fmt.Errorf("vmix: %w", err)
	}
	if err := ocean.CheckShape("vertDiffTopOfCell", diff, nz, nCells); err != nil {
		return fmt.Errorf("vmix: %w", err)
	}
	ri, d := riTopOfCell.Elements, diff.Elements
	ocean.Parallel(m.CellRange(1), func(i int) {
		for k := 1; k < m.MaxLevelCell[i]; k++ {
			j := k*nCells + i
			if ri[j] > 0 {
				d[j] += r.diffusivity(ri[j])
				d[j] = min(d[j], r.ConvectiveDiff)
			} else {
				d[j] = r.ConvectiveDiff
			}
		}
	})
	return nil
}

// viscosity returns the stable-column viscosity for Richardson number ri.
func (r *Richardson) viscosity(ri float64) float64 {
	x := 1 + 5*ri
	return r.BkrdVertVisc + r.RichMix/(x*x)
}

// diffusivity returns the stable-column diffusivity for Richardson
// number ri.
func (r *Richardson) diffusivity(ri float64) float64 {
	x := 1 + 5*ri
	return r.BkrdVertDiff + (r.BkrdVertVisc+r.RichMix/(x*x))/x
}

// Build calculates the density, the Richardson numbers and the mixing
// coefficients for the State at timeLevel (<= 0 means the current time
// level) and stores them in diag. diag.LayerThicknessEdge must already
// be up to date. Build does nothing when both calculations are turned off.
func (r *Richardson) Build(m *mesh.Mesh, states []*ocean.State, diag *ocean.Diagnostics, eos ocean.DensityProvider, idx ocean.TracerIndex, timeLevel int) error {
	if !r.Enabled() {
		return nil
	}
	if timeLevel <= 0 {
		timeLevel = 1
	}
	if timeLevel > len(states) {
		return fmt.Errorf("vmix: time level %d requested but there are %d time levels", timeLevel, len(states))
	}
	s := states[timeLevel-1]

	if err := eos.Density(m, s, idx, 0, ocean.Relative, diag.Density); err != nil {
		return fmt.Errorf("vmix: calculating density: %w", err)
	}
	if err := eos.Density(m, s, idx, 1, ocean.Relative, diag.DisplacedDensity); err != nil {
		return fmt.Errorf("vmix: calculating displaced density: %w", err)
	}

	errNumbers := r.ComputeNumbers(m, s.NormalVelocity, s.LayerThickness, diag.LayerThicknessEdge,
		diag.Density, diag.DisplacedDensity, diag.RiTopOfEdge, diag.RiTopOfCell)
	errVisc := r.VelocityViscosity(m, diag.RiTopOfEdge, diag.LayerThicknessEdge, diag.VertViscTopOfEdge)
	errDiff := r.TracerDiffusivity(m, diag.RiTopOfCell, s.LayerThickness, diag.VertDiffTopOfCell)
	return errors.Join(errNumbers, errVisc, errDiff)
}

// DomainManipulator returns a function that runs Build on the current
// time level of the model.
func (r *Richardson) DomainManipulator(eos ocean.DensityProvider, idx ocean.TracerIndex) ocean.DomainManipulator {
	return func(d *ocean.Model) error {
		return r.Build(d.Mesh, d.States, d.Diag, eos, idx, 1)
	}
}
