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

package oceanutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	ocean "github.com/UCI-OCEANOGRAPHY/MPAS-Model"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/forcing"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/internal/hash"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/mesh"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/sw"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/timekeeping"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/vmix"
	"github.com/sirupsen/logrus"
)

// fluxVariable is the optional state file variable holding the surface
// short-wave temperature flux.
const fluxVariable = "penetrativeTemperatureFlux"

func loadMesh(fileName string) (*mesh.Mesh, error) {
	if fileName == "" {
		return nil, fmt.Errorf("oceanutil: you need to specify a mesh file in the MeshFile configuration variable")
	}
	f, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("oceanutil: problem opening mesh file: %v", err)
	}
	defer f.Close()
	return mesh.Load(f)
}

// loadState reads the first record of the state in fileName, along with
// the surface short-wave flux if the file has one. flux is nil if it
// does not.
func loadState(fileName string, m *mesh.Mesh, log logrus.FieldLogger) (s *ocean.State, flux []float64, err error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, nil, fmt.Errorf("oceanutil: problem opening state file: %v", err)
	}
	defer f.Close()
	if s, err = ocean.LoadState(f, m, ocean.DefaultTracers, 0); err != nil {
		return nil, nil, err
	}

	src, err := forcing.NewNCFSource(f)
	if err != nil {
		return nil, nil, err
	}
	if _, err := src.Records(fluxVariable); err != nil {
		log.WithField("file", fileName).Warnf("state file has no %s; the short-wave flux is zero", fluxVariable)
		return s, nil, nil
	}
	if flux, err = src.Read(fluxVariable, 0); err != nil {
		return nil, nil, err
	}
	if len(flux) != m.NCells {
		return nil, nil, fmt.Errorf("oceanutil: %s has %d values but there are %d cells",
			fluxVariable, len(flux), m.NCells)
	}
	return s, flux, nil
}

// setFlux returns a function that copies the surface short-wave flux into
// the model forcing fields.
func setFlux(flux []float64) ocean.DomainManipulator {
	return func(d *ocean.Model) error {
		if flux != nil {
			copy(d.Forcing.PenetrativeTemperatureFlux.Elements, flux)
		}
		return nil
	}
}

// restoreForcingTimes returns a function that reads the forcing times
// from fileName if the file exists.
func restoreForcingTimes(a *sw.Absorption, fileName string, log logrus.FieldLogger) ocean.DomainManipulator {
	return func(d *ocean.Model) error {
		f, err := os.Open(fileName)
		if os.IsNotExist(err) {
			log.WithField("file", fileName).Info("no restart times file; starting forcing from the model clock")
			return nil
		} else if err != nil {
			return fmt.Errorf("oceanutil: opening restart times file: %v", err)
		}
		defer f.Close()
		return a.RestoreForcingTimes(f)
	}
}

// writeRestartTimes returns a function that writes the forcing times of
// mgr to fileName.
func writeRestartTimes(mgr *forcing.Manager, fileName string) ocean.DomainManipulator {
	return func(d *ocean.Model) error {
		f, err := os.Create(fileName)
		if err != nil {
			return fmt.Errorf("oceanutil: creating restart times file: %v", err)
		}
		if err := mgr.WriteRestartTimes(f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
}

// Diagnose loads the mesh and state given in c and, at each time step
// of the run, calculates the short-wave temperature tendency and the
// vertical viscosity and diffusivity. The state is not advanced. Output
// variables are written to c.OutputFile at each time step and a summary
// of the final fields is written to w.
func Diagnose(w io.Writer, log logrus.FieldLogger, c *Config) error {
	m, err := loadMesh(c.MeshFile)
	if err != nil {
		return err
	}
	log.WithField("file", c.MeshFile).Info(m.String())

	s, flux, err := loadState(c.StateFile, m, log)
	if err != nil {
		return err
	}

	clock, err := timekeeping.NewClock(c.StartTime, c.Shortwave.Dt, c.RunDuration)
	if err != nil {
		return fmt.Errorf("oceanutil: setting up the model clock: %v", err)
	}

	mgr := forcing.NewManager(log)
	absorption := sw.New(c.Shortwave, mgr, log)
	var src forcing.Source
	if c.Shortwave.Type == sw.Ohlmann00 {
		f, err := os.Open(c.ShortwaveForcingFile)
		if err != nil {
			return fmt.Errorf("oceanutil: problem opening short-wave forcing file: %v", err)
		}
		defer f.Close()
		ncfSrc, err := forcing.NewNCFSource(f)
		if err != nil {
			return err
		}
		src = ncfSrc
	}

	mixing := vmix.New(c.Mixing)
	eos := c.EOS

	d := &ocean.Model{
		InitFuncs: []ocean.DomainManipulator{
			ocean.InitFields(m, ocean.DefaultTracers, s),
			ocean.SetClock(clock),
			setFlux(flux),
			absorption.InitFunc(src),
		},
		RunFuncs: []ocean.DomainManipulator{
			ocean.ResetDiagnostics(),
			ocean.LayerThicknessEdge(),
			absorption.DomainManipulator(ocean.DefaultTracers),
			mixing.DomainManipulator(&eos, ocean.DefaultTracers),
		},
	}
	if c.RestartTimesFile != "" {
		d.InitFuncs = append(d.InitFuncs, restoreForcingTimes(absorption, c.RestartTimesFile, log))
	}
	if c.OutputFile != "" {
		o, err := ocean.NewOutputter(c.OutputFile, c.OutputVariables, nil)
		if err != nil {
			return err
		}
		o.Attributes["config_hash"] = hash.Hash(c)
		o.Attributes["mesh_hash"] = hash.Hash(m)
		o.Attributes["version"] = ocean.Version
		d.InitFuncs = append(d.InitFuncs, o.CheckOutputVars())
		d.RunFuncs = append(d.RunFuncs, o.Output())
		d.CleanupFuncs = append(d.CleanupFuncs, o.Close())
	}
	d.RunFuncs = append(d.RunFuncs, ocean.Log(log), ocean.AdvanceClock())
	if c.RestartTimesFile != "" {
		d.CleanupFuncs = append(d.CleanupFuncs, writeRestartTimes(mgr, c.RestartTimesFile))
	}

	if err := run(d); err != nil {
		return err
	}

	summary, err := d.Summarize()
	if err != nil {
		return err
	}
	return ocean.WriteSummary(w, summary)
}

// run initializes d and runs it to completion. The cleanup functions
// also run when a time step fails, so the output file is closed and the
// forcing times reached so far are saved.
func run(d *ocean.Model) error {
	if err := d.Init(); err != nil {
		return err
	}
	if err := d.Run(); err != nil {
		return errors.Join(err, d.Cleanup())
	}
	return d.Cleanup()
}
