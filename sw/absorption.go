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

// Package sw calculates the absorption of penetrating short-wave
// radiation in the upper ocean and the resulting temperature tendency.
package sw

import (
	"fmt"
	"io"
	"math"
	"time"

	ocean "github.com/UCI-OCEANOGRAPHY/MPAS-Model"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/forcing"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/mesh"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/timekeeping"
	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// Absorption scheme names.
const (
	Ohlmann00 = "ohlmann00"
	Jerlov    = "jerlov"
	None      = "none"
)

// ForcingGroup is the name of the forcing group holding the monthly
// chlorophyll, zenith angle and clear-sky radiation climatology.
const ForcingGroup = "shortwave_monthly_data"

// Config holds the short-wave absorption parameters.
type Config struct {
	// Type is the absorption scheme: Ohlmann00, Jerlov or None.
	Type string

	// JerlovWaterType selects the water type (1-5) for the Jerlov scheme.
	JerlovWaterType int

	// SurfaceBuoyancyDepth [m] is the depth of the ocean boundary layer
	// used to calculate PenetrativeTemperatureFluxOBL. Only its magnitude
	// is used.
	SurfaceBuoyancyDepth float64

	// UseBulkForcing turns on reading the Ohlmann forcing climatology.
	UseBulkForcing bool

	// Dt is the model time step, e.g. "00:30:00".
	Dt string
}

// Absorption calculates short-wave absorption.
type Absorption struct {
	Config

	forcing *forcing.Manager

	// Log receives configuration errors.
	Log logrus.FieldLogger

	restored bool
}

// New returns a new short-wave absorption scheme. mgr is the forcing
// manager for the Ohlmann climatology; it may be nil for the other
// schemes. If log is nil, the standard logger is used.
func New(cfg Config, mgr *forcing.Manager, log logrus.FieldLogger) *Absorption {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Absorption{
		Config:  cfg,
		forcing: mgr,
		Log:     log,
	}
}

// Init sets up the absorption scheme. For the Ohlmann scheme, it
// registers the monthly forcing climatology read from src, with f as the
// destination of the interpolated fields. An unknown scheme is a fatal
// error: it is logged with Fatal, which normally exits the program.
func (a *Absorption) Init(src forcing.Source, f *ocean.Forcing) error {
	switch a.Type {
	case Ohlmann00:
		return a.initOhlmann(src, f)
	case Jerlov:
		if _, err := jerlovWater(a.JerlovWaterType); err != nil {
			return err
		}
		return nil
	case None:
		return nil
	default:
		err := fmt.Errorf("sw: short-wave absorption type '%s' is not supported", a.Type)
		a.Log.WithField("config_sw_absorption_type", a.Type).Fatal(err)
		return err
	}
}

func (a *Absorption) initOhlmann(src forcing.Source, f *ocean.Forcing) error {
	if a.forcing == nil {
		return fmt.Errorf("sw: the %s scheme needs a forcing manager", Ohlmann00)
	}
	if f == nil {
		return fmt.Errorf("sw: forcing fields have not been allocated")
	}
	const (
		start      = "0000-01-01_00:00:00"
		cycleStart = "0000-01-01_00:00:00"
		cycle      = "0001-00-00_00:00:00"
		refTime    = "0000-01-15_00:00:00"
		interval   = "0000-01-00_00:00:00"
	)
	if err := a.forcing.InitGroup(ForcingGroup, src, start, cycleStart, cycle); err != nil {
		return fmt.Errorf("sw: %w", err)
	}
	for _, fld := range []struct {
		name   string
		target *sparse.DenseArray
	}{
		{"chlorophyllData", f.ChlorophyllData},
		{"clearSkyRadiation", f.ClearSkyRadiation},
		{"zenithAngle", f.ZenithAngle},
	} {
		if err := a.forcing.InitField(ForcingGroup, fld.name, fld.name, "constant", refTime, interval, fld.target); err != nil {
			return fmt.Errorf("sw: %w", err)
		}
	}
	a.Log.WithFields(logrus.Fields{
		"group": ForcingGroup,
		"type":  a.Type,
	}).Info("registered short-wave forcing")
	return nil
}

// RestoreForcingTimes reads the forcing times written at the end of a
// previous run. After restoring, the forcing clock is advanced from the
// restored time instead of being synchronized on the first time step.
func (a *Absorption) RestoreForcingTimes(r io.Reader) error {
	if a.forcing == nil {
		return nil
	}
	if err := a.forcing.ReadRestartTimes(r); err != nil {
		return fmt.Errorf("sw: %w", err)
	}
	a.restored = true
	return nil
}

// AcquireForcing updates the forcing fields for model time now. On the
// first time step the forcing clock is set to now; afterwards it is
// advanced by Dt. Nothing is done unless the Ohlmann scheme is used with
// bulk forcing.
func (a *Absorption) AcquireForcing(now time.Time, isFirstStep bool) error {
	if a.Type != Ohlmann00 || !a.UseBulkForcing {
		return nil
	}
	dt, err := timekeeping.ParseInterval(a.Dt)
	if err != nil {
		return fmt.Errorf("sw: config_dt: %w", err)
	}
	if isFirstStep && !a.restored {
		err = a.forcing.Sync(ForcingGroup, now)
	} else {
		err = a.forcing.Advance(ForcingGroup, dt)
	}
	if err != nil {
		return fmt.Errorf("sw: %w", err)
	}
	return nil
}

// fractionFunc returns the fraction of the surface flux remaining at a
// depth.
type fractionFunc func(depth float64) float64

// Tendency adds the temperature tendency [K m/s] from short-wave
// absorption to tend, which is [tracer, level, cell], for each cell in
// the first halo tier, and sets f.PenetrativeTemperatureFluxOBL to the
// part of the surface flux that reaches the bottom of the boundary
// layer. thickness is the layer thickness [level, cell].
func (a *Absorption) Tendency(m *mesh.Mesh, idx ocean.TracerIndex, thickness *sparse.DenseArray, f *ocean.Forcing, tend *sparse.DenseArray) error {
	var water JerlovWater
	switch a.Type {
	case None:
		return nil
	case Ohlmann00:
	case Jerlov:
		var err error
		if water, err = jerlovWater(a.JerlovWaterType); err != nil {
			return err
		}
	default:
		return fmt.Errorf("sw: short-wave absorption type '%s' is not supported", a.Type)
	}
	nz, n := m.NVertLevels, m.NCells
	if err := ocean.CheckShape("layerThickness", thickness, nz, n); err != nil {
		return fmt.Errorf("sw: %w", err)
	}
	if tend == nil || len(tend.Shape) != 3 || tend.Shape[0] <= idx.Temperature {
		return fmt.Errorf("sw: tracer tendency does not include temperature index %d", idx.Temperature)
	}
	if err := ocean.CheckShape("activeTracersTend", tend, tend.Shape[0], nz, n); err != nil {
		return fmt.Errorf("sw: %w", err)
	}
	for _, c := range []struct {
		name string
		a    *sparse.DenseArray
	}{
		{"chlorophyllData", f.ChlorophyllData},
		{"zenithAngle", f.ZenithAngle},
		{"clearSkyRadiation", f.ClearSkyRadiation},
		{"penetrativeTemperatureFlux", f.PenetrativeTemperatureFlux},
		{"penetrativeTemperatureFluxOBL", f.PenetrativeTemperatureFluxOBL},
	} {
		if err := ocean.CheckShape(c.name, c.a, n); err != nil {
			return fmt.Errorf("sw: %w", err)
		}
	}

	h := thickness.Elements
	tT := tend.Elements[idx.Temperature*nz*n : (idx.Temperature+1)*nz*n]
	flux := f.PenetrativeTemperatureFlux.Elements
	fluxOBL := f.PenetrativeTemperatureFluxOBL.Elements
	obl := math.Abs(a.SurfaceBuoyancyDepth)

	ocean.Parallel(m.CellRange(2), func(i int) {
		var frac fractionFunc
		if a.Type == Ohlmann00 {
			cloud := 1 - flux[i]/(ocean.HfluxFactor*(1.e-15+f.ClearSkyRadiation.Elements[i]))
			cloud = math.Min(math.Max(cloud, 0), 1)
			A, K := OSCoefficients(f.ChlorophyllData.Elements[i], f.ZenithAngle.Elements[i], cloud)
			frac = func(depth float64) float64 { return FractionAtDepth(depth, A, K) }
		} else {
			frac = water.Fraction
		}

		// weights[k] is the fraction of the surface flux at the top of
		// level k.
		weights := make([]float64, nz+1)
		weights[0] = 1
		maxLevel := m.MaxLevelCell[i]
		var depth float64
		for k := 0; k < maxLevel; k++ {
			depth += h[k*n+i]
			weights[k+1] = frac(depth)
			tT[k*n+i] += flux[i] * (weights[k] - weights[k+1])
		}

		// depLevel is the 1-based level containing the bottom of the
		// boundary layer.
		depLevel := maxLevel + 1
		depth = 0
		for k := 0; k < maxLevel; k++ {
			depth += h[k*n+i]
			if depth > obl {
				depLevel = k + 1
				break
			}
		}
		if depLevel == 1 || depLevel == maxLevel {
			depLevel = 2
		}
		fluxOBL[i] = flux[i] * weights[depLevel-1]
	})
	return nil
}

// InitFunc returns a function that runs Init with the model's forcing
// fields.
func (a *Absorption) InitFunc(src forcing.Source) ocean.DomainManipulator {
	return func(d *ocean.Model) error {
		return a.Init(src, d.Forcing)
	}
}

// DomainManipulator returns a function that acquires the forcing for the
// current model time and adds the short-wave tendency.
func (a *Absorption) DomainManipulator(idx ocean.TracerIndex) ocean.DomainManipulator {
	return func(d *ocean.Model) error {
		if d.Clock != nil {
			if err := a.AcquireForcing(d.Clock.Current, d.Clock.IsFirstStep()); err != nil {
				return err
			}
		}
		s, err := d.State(1)
		if err != nil {
			return err
		}
		return a.Tendency(d.Mesh, idx, s.LayerThickness, d.Forcing, d.Tend.ActiveTracers)
	}
}
