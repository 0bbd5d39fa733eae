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

	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/mesh"
	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
)

// TracerIndex holds the positions of the active tracers in
// State.ActiveTracers.
type TracerIndex struct {
	Temperature int
	Salinity    int
}

// DefaultTracers is the tracer ordering used in MPAS-Ocean files.
var DefaultTracers = TracerIndex{Temperature: 0, Salinity: 1}

// NumTracers returns the number of tracers needed to hold the indices in t.
func (t TracerIndex) NumTracers() int {
	return max(t.Temperature, t.Salinity) + 1
}

// State holds the prognostic fields at one time level.
type State struct {
	NormalVelocity *sparse.DenseArray // [level, edge], m/s
	LayerThickness *sparse.DenseArray // [level, cell], m
	ActiveTracers  *sparse.DenseArray // [tracer, level, cell]; °C and PSU
}

// NewState allocates a zeroed State for m with nTracers tracers.
func NewState(m *mesh.Mesh, nTracers int) *State {
	return &State{
		NormalVelocity: sparse.ZerosDense(m.NVertLevels, m.NEdges),
		LayerThickness: sparse.ZerosDense(m.NVertLevels, m.NCells),
		ActiveTracers:  sparse.ZerosDense(nTracers, m.NVertLevels, m.NCells),
	}
}

// Check makes sure the fields in s have the right shapes for m and idx.
func (s *State) Check(m *mesh.Mesh, idx TracerIndex) error {
	if err := CheckShape("normalVelocity", s.NormalVelocity, m.NVertLevels, m.NEdges); err != nil {
		return err
	}
	if err := CheckShape("layerThickness", s.LayerThickness, m.NVertLevels, m.NCells); err != nil {
		return err
	}
	if s.ActiveTracers == nil || len(s.ActiveTracers.Shape) != 3 {
		return fmt.Errorf("ocean: activeTracers should have 3 dimensions")
	}
	if s.ActiveTracers.Shape[0] < idx.NumTracers() {
		return fmt.Errorf("ocean: activeTracers has %d tracers but tracer index %+v needs %d",
			s.ActiveTracers.Shape[0], idx, idx.NumTracers())
	}
	return CheckShape("activeTracers", s.ActiveTracers, s.ActiveTracers.Shape[0], m.NVertLevels, m.NCells)
}

// Diagnostics holds fields that are diagnosed from the State.
//
// VertViscTopOfEdge and VertDiffTopOfCell are accumulators: each mixing
// scheme adds its contribution on top of what is already there, so they
// need to be reset at the start of each time step.
type Diagnostics struct {
	LayerThicknessEdge *sparse.DenseArray // [level, edge], m
	Density            *sparse.DenseArray // [level, cell], kg/m3
	DisplacedDensity   *sparse.DenseArray // [level, cell], kg/m3
	RiTopOfEdge        *sparse.DenseArray // [level, edge]
	RiTopOfCell        *sparse.DenseArray // [level, cell]
	VertViscTopOfEdge  *sparse.DenseArray // [level, edge], m2/s
	VertDiffTopOfCell  *sparse.DenseArray // [level, cell], m2/s
}

// NewDiagnostics allocates zeroed Diagnostics for m.
func NewDiagnostics(m *mesh.Mesh) *Diagnostics {
	nz := m.NVertLevels
	return &Diagnostics{
		LayerThicknessEdge: sparse.ZerosDense(nz, m.NEdges),
		Density:            sparse.ZerosDense(nz, m.NCells),
		DisplacedDensity:   sparse.ZerosDense(nz, m.NCells),
		RiTopOfEdge:        sparse.ZerosDense(nz, m.NEdges),
		RiTopOfCell:        sparse.ZerosDense(nz, m.NCells),
		VertViscTopOfEdge:  sparse.ZerosDense(nz, m.NEdges),
		VertDiffTopOfCell:  sparse.ZerosDense(nz, m.NCells),
	}
}

// Forcing holds per-cell surface forcing fields.
type Forcing struct {
	ChlorophyllData   *sparse.DenseArray // [cell], mg/m3
	ZenithAngle       *sparse.DenseArray // [cell], radians
	ClearSkyRadiation *sparse.DenseArray // [cell], W/m2

	// PenetrativeTemperatureFlux is the short-wave temperature flux
	// entering the surface [K m/s].
	PenetrativeTemperatureFlux *sparse.DenseArray

	// PenetrativeTemperatureFluxOBL is the part of
	// PenetrativeTemperatureFlux that reaches the bottom of the ocean
	// boundary layer [K m/s].
	PenetrativeTemperatureFluxOBL *sparse.DenseArray
}

// NewForcing allocates zeroed Forcing for m.
func NewForcing(m *mesh.Mesh) *Forcing {
	return &Forcing{
		ChlorophyllData:               sparse.ZerosDense(m.NCells),
		ZenithAngle:                   sparse.ZerosDense(m.NCells),
		ClearSkyRadiation:             sparse.ZerosDense(m.NCells),
		PenetrativeTemperatureFlux:    sparse.ZerosDense(m.NCells),
		PenetrativeTemperatureFluxOBL: sparse.ZerosDense(m.NCells),
	}
}

// Tendency holds tendencies of the prognostic fields.
type Tendency struct {
	ActiveTracers *sparse.DenseArray // [tracer, level, cell], thickness weighted
}

// NewTendency allocates a zeroed Tendency for m with nTracers tracers.
func NewTendency(m *mesh.Mesh, nTracers int) *Tendency {
	return &Tendency{ActiveTracers: sparse.ZerosDense(nTracers, m.NVertLevels, m.NCells)}
}

// CheckShape returns an error if a is nil or does not have the given shape.
func CheckShape(name string, a *sparse.DenseArray, shape ...int) error {
	if a == nil {
		return fmt.Errorf("ocean: %s has not been allocated", name)
	}
	if len(a.Shape) != len(shape) {
		return fmt.Errorf("ocean: %s has shape %v but should have shape %v", name, a.Shape, shape)
	}
	for i, s := range shape {
		if a.Shape[i] != s {
			return fmt.Errorf("ocean: %s has shape %v but should have shape %v", name, a.Shape, shape)
		}
	}
	return nil
}

// Zero sets all elements of the given arrays to zero.
func Zero(arrays ...*sparse.DenseArray) {
	for _, a := range arrays {
		for i := range a.Elements {
			a.Elements[i] = 0
		}
	}
}

// Field describes one model field for output and summaries.
type Field struct {
	Name        string
	Description string
	Units       string
	Dims        []string // NetCDF dimension names
	Dimensions  unit.Dimensions
	Data        *sparse.DenseArray
}

// Fields returns the diagnostic and forcing fields of d, plus the
// temperature tendency, in a fixed order.
func (d *Model) Fields() []Field {
	cellLev := []string{"nVertLevels", "nCells"}
	edgeLev := []string{"nVertLevels", "nEdges"}
	cell := []string{"nCells"}
	var o []Field
	if d.Diag != nil {
		o = append(o,
			Field{"layerThicknessEdge", "Layer thickness at edges", "m", edgeLev, dimLength, d.Diag.LayerThicknessEdge},
			Field{"density", "Density", "kg m-3", cellLev, dimDensity, d.Diag.Density},
			Field{"displacedDensity", "Density displaced one level deeper", "kg m-3", cellLev, dimDensity, d.Diag.DisplacedDensity},
			Field{"RiTopOfEdge", "Richardson number at the top of each edge", "1", edgeLev, dimNone, d.Diag.RiTopOfEdge},
			Field{"RiTopOfCell", "Richardson number at the top of each cell", "1", cellLev, dimNone, d.Diag.RiTopOfCell},
			Field{"vertViscTopOfEdge", "Vertical viscosity at the top of each edge", "m2 s-1", edgeLev, dimDiffusivity, d.Diag.VertViscTopOfEdge},
			Field{"vertDiffTopOfCell", "Vertical diffusivity at the top of each cell", "m2 s-1", cellLev, dimDiffusivity, d.Diag.VertDiffTopOfCell},
		)
	}
	if d.Forcing != nil {
		o = append(o,
			Field{"chlorophyllData", "Chlorophyll concentration", "mg m-3", cell, dimChlorophyll, d.Forcing.ChlorophyllData},
			Field{"zenithAngle", "Solar zenith angle", "radians", cell, dimAngle, d.Forcing.ZenithAngle},
			Field{"clearSkyRadiation", "Clear sky short-wave radiation", "W m-2", cell, dimIrradiance, d.Forcing.ClearSkyRadiation},
			Field{"penetrativeTemperatureFlux", "Penetrative short-wave temperature flux", "K m s-1", cell, dimTempFlux, d.Forcing.PenetrativeTemperatureFlux},
			Field{"penetrativeTemperatureFluxOBL", "Penetrative temperature flux at the bottom of the boundary layer", "K m s-1", cell, dimTempFlux, d.Forcing.PenetrativeTemperatureFluxOBL},
		)
	}
	if d.Tend != nil && d.Tend.ActiveTracers != nil {
		t := d.Tend.ActiveTracers
		n := t.Shape[1] * t.Shape[2]
		i0 := d.Tracers.Temperature * n
		temp := sparse.ZerosDense(t.Shape[1], t.Shape[2])
		copy(temp.Elements, t.Elements[i0:i0+n])
		o = append(o, Field{"temperatureTend", "Thickness-weighted temperature tendency", "K m s-1", cellLev, dimTempFlux, temp})
	}
	return o
}

// Field returns the field with the given name.
func (d *Model) Field(name string) (Field, error) {
	for _, f := range d.Fields() {
		if f.Name == name {
			return f, nil
		}
	}
	return Field{}, fmt.Errorf("ocean: undefined variable name '%s'", name)
}
