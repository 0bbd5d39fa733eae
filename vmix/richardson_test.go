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

package vmix

import (
	"fmt"
	"math"
	"testing"

	ocean "github.com/UCI-OCEANOGRAPHY/MPAS-Model"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/eos"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/mesh"
	"github.com/ctessum/sparse"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

var testConfig = Config{
	UseRichVisc:    true,
	UseRichDiff:    true,
	RichMix:        0.005,
	BkrdVertVisc:   1.0e-4,
	BkrdVertDiff:   1.0e-5,
	ConvectiveVisc: 1.0,
	ConvectiveDiff: 1.0,
}

func TestComputeNumbers(t *testing.T) {
	m, err := mesh.Strip(2, 10, 0, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	nz := m.NVertLevels
	u := sparse.ZerosDense(nz, m.NEdges)
	u.Set(0.2, 0, 0)
	u.Set(0.1, 1, 0)
	h := sparse.ZerosDense(nz, m.NCells)
	he := sparse.ZerosDense(nz, m.NEdges)
	for i := range h.Elements {
		h.Elements[i] = 10
	}
	for i := range he.Elements {
		he.Elements[i] = 10
	}
	rho := sparse.ZerosDense(nz, m.NCells)
	for i := 0; i < m.NCells; i++ {
		rho.Set(1000, 0, i)
		rho.Set(1001, 1, i)
	}
	riE := sparse.ZerosDense(nz, m.NEdges)
	riC := sparse.ZerosDense(nz, m.NCells)
	riE.Set(99, 0, 0) // overwritten with zero

	r := New(testConfig)
	if err := r.ComputeNumbers(m, u, h, he, rho, rho, riE, riC); err != nil {
		t.Fatal(err)
	}

	// du2 at the edge is 0.1²; each cell gets 0.5*dc*dv/area of it.
	wantE := ocean.Gravity / ocean.RhoSw / 2 * 20 / 0.01
	wantC := ocean.Gravity / ocean.RhoSw / 2 * 20 / (0.5 * 1000 * 1000 / 1e6 * 0.01)
	if different(riE.Get(1, 0), wantE, 1e-10) {
		t.Errorf("RiTopOfEdge: have %g, want %g", riE.Get(1, 0), wantE)
	}
	for i := 0; i < m.NCells; i++ {
		if different(riC.Get(1, i), wantC, 1e-10) {
			t.Errorf("RiTopOfCell %d: have %g, want %g", i, riC.Get(1, i), wantC)
		}
		if riC.Get(0, i) != 0 {
			t.Errorf("surface RiTopOfCell %d should be zero: %g", i, riC.Get(0, i))
		}
	}
	if riE.Get(0, 0) != 0 {
		t.Errorf("surface RiTopOfEdge should be zero: %g", riE.Get(0, 0))
	}
	for e := 1; e < m.NEdges; e++ {
		if riE.Get(1, e) != 0 {
			t.Errorf("boundary edge %d should be zero: %g", e, riE.Get(1, e))
		}
	}

	if err := r.ComputeNumbers(m, u, h, he, rho, sparse.ZerosDense(nz), riE, riC); err == nil {
		t.Error("expected a shape error")
	}
}

func TestCoefficients(t *testing.T) {
	m, err := mesh.Strip(4, 10, 0, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	nz := m.NVertLevels
	r := New(testConfig)
	riE := sparse.ZerosDense(nz, m.NEdges)
	riC := sparse.ZerosDense(nz, m.NCells)
	ris := []float64{0, 0.01, 0.1, 1}
	for k, ri := range ris {
		riE.Set(ri, k, 0)
		riC.Set(ri, k, 0)
	}
	visc := sparse.ZerosDense(nz, m.NEdges)
	diff := sparse.ZerosDense(nz, m.NCells)
	he := sparse.ZerosDense(nz, m.NEdges)
	h := sparse.ZerosDense(nz, m.NCells)
	if err := r.VelocityViscosity(m, riE, he, visc); err != nil {
		t.Fatal(err)
	}
	if err := r.TracerDiffusivity(m, riC, h, diff); err != nil {
		t.Fatal(err)
	}

	// Level 0 has Ri = 0 but is not an interface, so it is not set.
	if visc.Get(0, 0) != 0 || diff.Get(0, 0) != 0 {
		t.Errorf("surface: visc=%g, diff=%g", visc.Get(0, 0), diff.Get(0, 0))
	}
	for k := 2; k < nz; k++ {
		if !(visc.Get(k, 0) < visc.Get(k-1, 0)) {
			t.Errorf("viscosity should decrease with Ri: %v", visc.Elements)
		}
		if !(diff.Get(k, 0) < diff.Get(k-1, 0)) {
			t.Errorf("diffusivity should decrease with Ri: %v", diff.Elements)
		}
	}
	for k := 1; k < nz; k++ {
		v, d := visc.Get(k, 0), diff.Get(k, 0)
		if v < testConfig.BkrdVertVisc || v > testConfig.ConvectiveVisc {
			t.Errorf("level %d: viscosity %g out of bounds", k, v)
		}
		if d < testConfig.BkrdVertDiff || d > testConfig.ConvectiveDiff {
			t.Errorf("level %d: diffusivity %g out of bounds", k, d)
		}
	}
	x := 1 + 5*0.1
	wantV := testConfig.BkrdVertVisc + testConfig.RichMix/(x*x)
	wantD := testConfig.BkrdVertDiff + wantV/x
	if different(visc.Get(2, 0), wantV, 1e-12) {
		t.Errorf("viscosity: have %g, want %g", visc.Get(2, 0), wantV)
	}
	if different(diff.Get(2, 0), wantD, 1e-12) {
		t.Errorf("diffusivity: have %g, want %g", diff.Get(2, 0), wantD)
	}
}

func TestConvective(t *testing.T) {
	m, err := mesh.Strip(3, 10, 0, 3, 3)
	if err != nil {
		t.Fatal(err)
	}
	nz := m.NVertLevels
	cfg := testConfig
	cfg.ConvectiveVisc = 0.1
	cfg.ConvectiveDiff = 0.2
	r := New(cfg)

	riE := sparse.ZerosDense(nz, m.NEdges)
	riC := sparse.ZerosDense(nz, m.NCells)
	riE.Set(-1, 1, 0)
	riC.Set(-1, 1, 0)
	riE.Set(0.01, 2, 0)
	riC.Set(0.01, 2, 0)
	visc := sparse.ZerosDense(nz, m.NEdges)
	diff := sparse.ZerosDense(nz, m.NCells)
	// Contributions from other schemes.
	visc.Set(5, 1, 0)
	diff.Set(5, 1, 0)
	visc.Set(0.099, 2, 0)
	diff.Set(0.199, 2, 0)

	if err := r.VelocityViscosity(m, riE, sparse.ZerosDense(nz, m.NEdges), visc); err != nil {
		t.Fatal(err)
	}
	if err := r.TracerDiffusivity(m, riC, sparse.ZerosDense(nz, m.NCells), diff); err != nil {
		t.Fatal(err)
	}
	if visc.Get(1, 0) != 0.1 || diff.Get(1, 0) != 0.2 {
		t.Errorf("unstable interface should be convective: visc=%g, diff=%g", visc.Get(1, 0), diff.Get(1, 0))
	}
	if visc.Get(2, 0) != 0.1 || diff.Get(2, 0) != 0.2 {
		t.Errorf("accumulated coefficients should be capped: visc=%g, diff=%g", visc.Get(2, 0), diff.Get(2, 0))
	}
	// Ri = 0 is treated as unstable.
	if diff.Get(1, 1) != 0.2 {
		t.Errorf("neutral interface should be convective: diff=%g", diff.Get(1, 1))
	}
	// Boundary edges have no active interfaces.
	if visc.Get(1, 1) != 0 {
		t.Errorf("boundary edge viscosity should not be set: %g", visc.Get(1, 1))
	}
}

// stratifiedColumn returns a single 3-level column with 10 m layers,
// stable stratification and no velocity.
func stratifiedColumn(t *testing.T) (*mesh.Mesh, []*ocean.State, *ocean.Diagnostics) {
	m, err := mesh.Strip(3, 10, 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	s := ocean.NewState(m, 2)
	idx := ocean.DefaultTracers
	for k := 0; k < m.NVertLevels; k++ {
		s.LayerThickness.Set(10, k, 0)
		s.ActiveTracers.Set(20-5*float64(k), idx.Temperature, k, 0)
		s.ActiveTracers.Set(35, idx.Salinity, k, 0)
	}
	return m, []*ocean.State{s}, ocean.NewDiagnostics(m)
}

func TestBuildZeroShear(t *testing.T) {
	m, states, diag := stratifiedColumn(t)
	r := New(testConfig)
	if err := r.Build(m, states, diag, eos.DefaultLinear(), ocean.DefaultTracers, 0); err != nil {
		t.Fatal(err)
	}
	for k := 1; k < m.NVertLevels; k++ {
		ri := diag.RiTopOfCell.Get(k, 0)
		if !(ri > 0) || math.IsInf(ri, 0) {
			t.Errorf("level %d: Ri should be large, positive and finite: %g", k, ri)
		}
		d := diag.VertDiffTopOfCell.Get(k, 0)
		if math.IsNaN(d) || math.IsInf(d, 0) || d < testConfig.BkrdVertDiff {
			t.Errorf("level %d: bad diffusivity %g", k, d)
		}
		if different(d, testConfig.BkrdVertDiff, 1e-6) {
			t.Errorf("level %d: diffusivity should approach the background value: %g", k, d)
		}
	}
	// The column's boundary edges have no active interfaces.
	for i, v := range diag.VertViscTopOfEdge.Elements {
		if v != 0 {
			t.Errorf("edge viscosity %d should be zero: %g", i, v)
		}
	}
}

func TestBuildConvectiveZeroShear(t *testing.T) {
	m, err := mesh.Strip(3, 10, 0, 3, 3)
	if err != nil {
		t.Fatal(err)
	}
	s := ocean.NewState(m, 2)
	idx := ocean.DefaultTracers
	for i := 0; i < m.NCells; i++ {
		for k := 0; k < m.NVertLevels; k++ {
			s.LayerThickness.Set(10, k, i)
			// Warmer water below.
			s.ActiveTracers.Set(10+5*float64(k), idx.Temperature, k, i)
			s.ActiveTracers.Set(35, idx.Salinity, k, i)
		}
	}
	diag := ocean.NewDiagnostics(m)
	if err := ocean.ComputeLayerThicknessEdge(m, s.LayerThickness, diag.LayerThicknessEdge); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig
	cfg.ConvectiveVisc = 0.1
	cfg.ConvectiveDiff = 0.2
	r := New(cfg)
	if err := r.Build(m, []*ocean.State{s}, diag, eos.DefaultLinear(), idx, 1); err != nil {
		t.Fatal(err)
	}
	for k := 1; k < m.NVertLevels; k++ {
		for i := 0; i < m.NCells; i++ {
			ri := diag.RiTopOfCell.Get(k, i)
			if !(ri < 0) || math.IsInf(ri, 0) || math.IsNaN(ri) {
				t.Errorf("cell %d level %d: Ri should be negative and finite: %g", i, k, ri)
			}
			ddensity := diag.DisplacedDensity.Get(k-1, i) - diag.Density.Get(k, i)
			want := -ocean.Gravity / ocean.RhoSw / 2 * ddensity * 20 / riTiny
			if different(ri, want, 1e-10) {
				t.Errorf("cell %d level %d: Ri have %g, want %g", i, k, ri, want)
			}
			if d := diag.VertDiffTopOfCell.Get(k, i); d != cfg.ConvectiveDiff {
				t.Errorf("cell %d level %d: diffusivity %g should be %g", i, k, d, cfg.ConvectiveDiff)
			}
		}
		ri := diag.RiTopOfEdge.Get(k, 0)
		if !(ri < 0) || math.IsInf(ri, 0) || math.IsNaN(ri) {
			t.Errorf("edge level %d: Ri should be negative and finite: %g", k, ri)
		}
		if v := diag.VertViscTopOfEdge.Get(k, 0); v != cfg.ConvectiveVisc {
			t.Errorf("edge level %d: viscosity %g should be %g", k, v, cfg.ConvectiveVisc)
		}
	}
}

func TestBuildHalo(t *testing.T) {
	// Cells 0 and 1 are owned and cell 2 is a halo cell. Edge 0 joins
	// the owned cells; edge 1 joins cell 1 to the halo.
	m, err := mesh.Strip(2, 10, 2, 2, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if m.CellRange(1) != 2 || m.EdgeRange(1) != 1 || m.EdgeRange(2) != 4 {
		t.Fatalf("ranges: cells %d, edges %d %d", m.CellRange(1), m.EdgeRange(1), m.EdgeRange(2))
	}
	s := ocean.NewState(m, 2)
	idx := ocean.DefaultTracers
	for i := 0; i < m.NCells; i++ {
		for k := 0; k < m.NVertLevels; k++ {
			s.LayerThickness.Set(10, k, i)
			s.ActiveTracers.Set(20-5*float64(k), idx.Temperature, k, i)
			s.ActiveTracers.Set(35, idx.Salinity, k, i)
		}
	}
	// Shear only on the halo edge.
	s.NormalVelocity.Set(0.1, 0, 1)
	diag := ocean.NewDiagnostics(m)
	if err := ocean.ComputeLayerThicknessEdge(m, s.LayerThickness, diag.LayerThicknessEdge); err != nil {
		t.Fatal(err)
	}
	r := New(testConfig)
	if err := r.Build(m, []*ocean.State{s}, diag, eos.DefaultLinear(), idx, 1); err != nil {
		t.Fatal(err)
	}

	// The owned cell next to the halo gets half of the halo edge's shear.
	du2 := 0.5 * m.DcEdge[1] * m.DvEdge[1] / m.AreaCell[1] * 0.01
	ddensity := diag.DisplacedDensity.Get(0, 1) - diag.Density.Get(1, 1)
	want := -ocean.Gravity / ocean.RhoSw / 2 * ddensity * 20 / (du2 + riTiny)
	if ri := diag.RiTopOfCell.Get(1, 1); different(ri, want, 1e-10) {
		t.Errorf("owned cell 1: Ri have %g, want %g", ri, want)
	}
	if d := diag.VertDiffTopOfCell.Get(1, 1); different(d, r.diffusivity(want), 1e-10) {
		t.Errorf("owned cell 1: diffusivity have %g, want %g", d, r.diffusivity(want))
	}
	if !(diag.RiTopOfCell.Get(1, 0) > diag.RiTopOfCell.Get(1, 1)) {
		t.Errorf("cell 0 has no shear and should be more stable: %v", diag.RiTopOfCell.Elements)
	}
	if v := diag.VertViscTopOfEdge.Get(1, 0); v < testConfig.BkrdVertVisc {
		t.Errorf("owned edge viscosity should be set: %g", v)
	}

	for k := 0; k < m.NVertLevels; k++ {
		if v := diag.RiTopOfCell.Get(k, 2); v != 0 {
			t.Errorf("halo cell level %d: Ri should be zero: %g", k, v)
		}
		if v := diag.VertDiffTopOfCell.Get(k, 2); v != 0 {
			t.Errorf("halo cell level %d: diffusivity should be zero: %g", k, v)
		}
		for e := 1; e < m.NEdges; e++ {
			if v := diag.RiTopOfEdge.Get(k, e); v != 0 {
				t.Errorf("halo edge %d level %d: Ri should be zero: %g", e, k, v)
			}
			if v := diag.VertViscTopOfEdge.Get(k, e); v != 0 {
				t.Errorf("halo edge %d level %d: viscosity should be zero: %g", e, k, v)
			}
		}
	}
}

type countingEOS struct {
	calls int
	err   error
}

func (c *countingEOS) Density(m *mesh.Mesh, s *ocean.State, idx ocean.TracerIndex, displacement int, mode ocean.DisplacementType, out *sparse.DenseArray) error {
	c.calls++
	return c.err
}

func TestBuildDisabled(t *testing.T) {
	m, states, diag := stratifiedColumn(t)
	for i := range diag.VertDiffTopOfCell.Elements {
		diag.VertDiffTopOfCell.Elements[i] = 7
		diag.RiTopOfCell.Elements[i] = 3
	}
	e := &countingEOS{}
	r := New(Config{RichMix: 1, ConvectiveDiff: 1, ConvectiveVisc: 1})
	if r.Enabled() {
		t.Fatal("should be disabled")
	}
	if err := r.Build(m, states, diag, e, ocean.DefaultTracers, 1); err != nil {
		t.Fatal(err)
	}
	if e.calls != 0 {
		t.Errorf("equation of state called %d times", e.calls)
	}
	for i := range diag.VertDiffTopOfCell.Elements {
		if diag.VertDiffTopOfCell.Elements[i] != 7 || diag.RiTopOfCell.Elements[i] != 3 {
			t.Fatalf("fields changed at %d", i)
		}
	}
}

func TestBuildViscosityOnly(t *testing.T) {
	m, states, diag := stratifiedColumn(t)
	cfg := testConfig
	cfg.UseRichDiff = false
	r := New(cfg)
	if err := r.Build(m, states, diag, eos.DefaultLinear(), ocean.DefaultTracers, 1); err != nil {
		t.Fatal(err)
	}
	if diag.RiTopOfCell.Get(1, 0) == 0 {
		t.Error("Richardson numbers should still be calculated")
	}
	for i, v := range diag.VertDiffTopOfCell.Elements {
		if v != 0 {
			t.Errorf("diffusivity %d should not be set: %g", i, v)
		}
	}
}

func TestBuildErrors(t *testing.T) {
	m, states, diag := stratifiedColumn(t)
	r := New(testConfig)
	e := &countingEOS{err: fmt.Errorf("eos failed")}
	diag.RiTopOfCell.Set(3, 1, 0)
	if err := r.Build(m, states, diag, e, ocean.DefaultTracers, 1); err == nil {
		t.Error("expected an equation of state error")
	}
	if e.calls != 1 {
		t.Errorf("equation of state should be called once, was called %d times", e.calls)
	}
	if diag.RiTopOfCell.Get(1, 0) != 3 {
		t.Error("Richardson numbers should not be calculated after an equation of state error")
	}

	if err := r.Build(m, states, diag, eos.DefaultLinear(), ocean.DefaultTracers, 2); err == nil {
		t.Error("expected an error for a missing time level")
	}

	diag.VertViscTopOfEdge = sparse.ZerosDense(1)
	if err := r.Build(m, states, diag, eos.DefaultLinear(), ocean.DefaultTracers, 1); err == nil {
		t.Error("expected a shape error")
	}
	// The other calculations still run.
	if diag.VertDiffTopOfCell.Get(1, 0) == 0 {
		t.Error("diffusivity should be calculated even though viscosity failed")
	}
}
