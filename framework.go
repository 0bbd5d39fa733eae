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

// Package ocean holds the fields and the run framework shared by the
// vertical mixing and short-wave absorption schemes of an
// unstructured-mesh ocean model.
package ocean

import (
	"fmt"

	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/mesh"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/timekeeping"
	"github.com/ctessum/sparse"
)

// DisplacementType specifies how the displacement passed to a
// DensityProvider is interpreted.
type DisplacementType int

const (
	// Relative displacement moves each parcel the given number of levels
	// down from its own level.
	Relative DisplacementType = iota

	// Absolute displacement moves every parcel to the given level.
	Absolute
)

func (t DisplacementType) String() string {
	switch t {
	case Relative:
		return "relative"
	case Absolute:
		return "absolute"
	default:
		return fmt.Sprintf("DisplacementType(%d)", int(t))
	}
}

// DensityProvider is an equation of state.
type DensityProvider interface {
	// Density calculates the density [kg/m3] of every active level of every
	// cell in m, with each parcel moved adiabatically according to
	// displacement and mode, and stores the result in out, which has
	// shape [nVertLevels, nCells].
	Density(m *mesh.Mesh, s *State, idx TracerIndex, displacement int, mode DisplacementType, out *sparse.DenseArray) error
}

// Model holds the current state of the model.
type Model struct {
	Mesh *mesh.Mesh

	// States holds the State at each time level. Time level 1 is
	// States[0].
	States []*State

	Diag    *Diagnostics
	Forcing *Forcing
	Tend    *Tendency
	Tracers TracerIndex

	Clock *timekeeping.Clock

	// InitFuncs are functions to be called in the given order
	// at the beginning of the simulation.
	InitFuncs []DomainManipulator

	// RunFuncs are functions to be called in the given order repeatedly
	// until "Done" is true. Therefore, the last function
	// in RunFuncs is responsible for setting "Done" to true at the
	// appropriate time.
	RunFuncs []DomainManipulator

	// CleanupFuncs are functions to be called in the given order
	// at the end of the simulation.
	CleanupFuncs []DomainManipulator

	// Done specifies whether the simulation is finished.
	Done bool
}

// DomainManipulator is a class of functions that operate on the entire model
// domain.
type DomainManipulator func(d *Model) error

// Init initializes the simulation by running d.InitFuncs.
func (d *Model) Init() error {
	for _, f := range d.InitFuncs {
		if err := f(d); err != nil {
			return err
		}
	}
	return nil
}

// Run carries out the simulation by running d.RunFuncs until d.Done is true.
func (d *Model) Run() error {
	for !d.Done {
		for _, f := range d.RunFuncs {
			if err := f(d); err != nil {
				return err
			}
		}
	}
	return nil
}

// Cleanup finishes the simulation by running d.CleanupFuncs.
func (d *Model) Cleanup() error {
	for _, f := range d.CleanupFuncs {
		if err := f(d); err != nil {
			return err
		}
	}
	return nil
}

// State returns the State at the given time level, where 1 is the
// current time level. Levels <= 0 resolve to 1.
func (d *Model) State(timeLevel int) (*State, error) {
	if timeLevel <= 0 {
		timeLevel = 1
	}
	if timeLevel > len(d.States) {
		return nil, fmt.Errorf("ocean: time level %d requested but there are %d time levels",
			timeLevel, len(d.States))
	}
	return d.States[timeLevel-1], nil
}

// InitFields returns a function that sets up the mesh and allocates the
// diagnostic, forcing and tendency fields. The given states are checked
// against the mesh; if none are given, a single zeroed State is allocated.
func InitFields(m *mesh.Mesh, idx TracerIndex, states ...*State) DomainManipulator {
	return func(d *Model) error {
		d.Mesh = m
		d.Tracers = idx
		if len(states) == 0 {
			states = []*State{NewState(m, idx.NumTracers())}
		}
		for i, s := range states {
			if err := s.Check(m, idx); err != nil {
				return fmt.Errorf("ocean: time level %d: %v", i+1, err)
			}
		}
		d.States = states
		d.Diag = NewDiagnostics(m)
		d.Forcing = NewForcing(m)
		d.Tend = NewTendency(m, states[0].ActiveTracers.Shape[0])
		return nil
	}
}

// SetClock returns a function that sets the model clock.
func SetClock(c *timekeeping.Clock) DomainManipulator {
	return func(d *Model) error {
		d.Clock = c
		return nil
	}
}
