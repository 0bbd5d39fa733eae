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

// Package eos contains equations of state for sea water.
package eos

import (
	"fmt"

	ocean "github.com/UCI-OCEANOGRAPHY/MPAS-Model"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/mesh"
	"github.com/ctessum/sparse"
)

// Linear is a linear equation of state:
//
//	ρ = RefDensity - Alpha·(T - RefTemperature) + Beta·(S - RefSalinity)
//
// It does not depend on pressure, so displacing a parcel does not change
// its density.
type Linear struct {
	Alpha          float64 // kg/m3/°C
	Beta           float64 // kg/m3/PSU
	RefTemperature float64 // °C
	RefSalinity    float64 // PSU
	RefDensity     float64 // kg/m3
}

// DefaultLinear returns the linear equation of state with MPAS-Ocean's
// default coefficients.
func DefaultLinear() *Linear {
	return &Linear{
		Alpha:          0.2,
		Beta:           0.8,
		RefTemperature: 5.0,
		RefSalinity:    35.0,
		RefDensity:     1000.0,
	}
}

// Density implements ocean.DensityProvider. Only displacements of 0 and 1
// level are supported. Levels below each column's active depth are set
// to zero.
func (l *Linear) Density(m *mesh.Mesh, s *ocean.State, idx ocean.TracerIndex, displacement int, mode ocean.DisplacementType, out *sparse.DenseArray) error {
	if displacement != 0 && displacement != 1 {
		return fmt.Errorf("eos: displacement %d (%s) is not supported; it should be 0 or 1", displacement, mode)
	}
	if mode != ocean.Relative && mode != ocean.Absolute {
		return fmt.Errorf("eos: invalid displacement type %s", mode)
	}
	if err := s.Check(m, idx); err != nil {
		return fmt.Errorf("eos: %v", err)
	}
	if err := ocean.CheckShape("density", out, m.NVertLevels, m.NCells); err != nil {
		return fmt.Errorf("eos: %v", err)
	}
	n := m.NCells
	nLev := m.NVertLevels * n
	tr := s.ActiveTracers.Elements
	T := tr[idx.Temperature*nLev : (idx.Temperature+1)*nLev]
	S := tr[idx.Salinity*nLev : (idx.Salinity+1)*nLev]
	rho := out.Elements
	ocean.Parallel(n, func(i int) {
		for k := 0; k < m.NVertLevels; k++ {
			j := k*n + i
			if k >= m.MaxLevelCell[i] {
				rho[j] = 0
				continue
			}
			rho[j] = l.RefDensity - l.Alpha*(T[j]-l.RefTemperature) + l.Beta*(S[j]-l.RefSalinity)
		}
	})
	return nil
}
