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

package eos

import (
	"math"
	"testing"

	ocean "github.com/UCI-OCEANOGRAPHY/MPAS-Model"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/mesh"
	"github.com/ctessum/sparse"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func TestLinear(t *testing.T) {
	m, err := mesh.Strip(3, 10, 0, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	idx := ocean.DefaultTracers
	s := ocean.NewState(m, 2)
	n := m.NVertLevels * m.NCells
	for k := 0; k < m.NVertLevels; k++ {
		for i := 0; i < m.NCells; i++ {
			s.ActiveTracers.Elements[idx.Temperature*n+k*m.NCells+i] = 20 - 5*float64(k)
			s.ActiveTracers.Elements[idx.Salinity*n+k*m.NCells+i] = 35 + float64(k)
		}
	}
	l := DefaultLinear()
	rho := sparse.ZerosDense(m.NVertLevels, m.NCells)
	displaced := sparse.ZerosDense(m.NVertLevels, m.NCells)
	if err := l.Density(m, s, idx, 0, ocean.Relative, rho); err != nil {
		t.Fatal(err)
	}
	if err := l.Density(m, s, idx, 1, ocean.Relative, displaced); err != nil {
		t.Fatal(err)
	}

	// 1000 - 0.2*(20-5) + 0.8*(35-35)
	if different(rho.Get(0, 0), 997, 1e-12) {
		t.Errorf("surface density: have %g, want 997", rho.Get(0, 0))
	}
	// 1000 - 0.2*(10-5) + 0.8*(37-35)
	if different(rho.Get(2, 0), 1000.6, 1e-12) {
		t.Errorf("bottom density: have %g, want 1000.6", rho.Get(2, 0))
	}
	if rho.Get(2, 1) != 0 {
		t.Errorf("inactive level should be zero, have %g", rho.Get(2, 1))
	}
	for i, v := range rho.Elements {
		if displaced.Elements[i] != v {
			t.Errorf("displaced density %d: have %g, want %g", i, displaced.Elements[i], v)
		}
	}
	// Density increases with depth in this column.
	if !(rho.Get(0, 0) < rho.Get(1, 0) && rho.Get(1, 0) < rho.Get(2, 0)) {
		t.Errorf("column is not stably stratified: %v", rho.Elements)
	}
}

func TestLinearErrors(t *testing.T) {
	m, err := mesh.Strip(2, 10, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	l := DefaultLinear()
	s := ocean.NewState(m, 2)
	rho := sparse.ZerosDense(m.NVertLevels, m.NCells)
	if err := l.Density(m, s, ocean.DefaultTracers, 2, ocean.Relative, rho); err == nil {
		t.Error("expected an error for displacement 2")
	}
	if err := l.Density(m, s, ocean.DefaultTracers, 0, ocean.Relative, sparse.ZerosDense(1)); err == nil {
		t.Error("expected an error for the wrong output shape")
	}
	if err := l.Density(m, s, ocean.TracerIndex{Temperature: 0, Salinity: 4}, 0, ocean.Relative, rho); err == nil {
		t.Error("expected an error for a missing tracer")
	}
}
