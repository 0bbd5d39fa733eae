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
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/eos"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/sw"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/timekeeping"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/vmix"
	"github.com/lnashier/viper"
	"github.com/spf13/cast"
)

// Config holds the configuration of a diagnostic run.
type Config struct {
	Mixing    vmix.Config
	Shortwave sw.Config
	EOS       eos.Linear

	// StartTime is the model time of the first time step and
	// RunDuration is the length of the run. The time step is
	// Shortwave.Dt.
	StartTime, RunDuration string

	MeshFile             string
	StateFile            string
	ShortwaveForcingFile string

	// OutputFile is the netCDF file the OutputVariables are written to.
	// Nothing is written if it is empty.
	OutputFile      string
	OutputVariables map[string]string

	// RestartTimesFile holds the forcing times. If it exists at the
	// start of a run the forcing times are read from it, and they are
	// written to it at the end.
	RestartTimesFile string
}

// ParseConfig unmarshals a viper configuration for a diagnostic run and
// checks that it is valid. The short-wave absorption type and Jerlov
// water type are checked when the absorption scheme is initialized.
func ParseConfig(cfg *viper.Viper) (*Config, error) {
	var err error
	c := new(Config)

	bools := []struct {
		name string
		dst  *bool
	}{
		{"config_use_rich_visc", &c.Mixing.UseRichVisc},
		{"config_use_rich_diff", &c.Mixing.UseRichDiff},
		{"config_use_bulk_forcing", &c.Shortwave.UseBulkForcing},
	}
	for _, v := range bools {
		if *v.dst, err = cast.ToBoolE(cfg.Get(v.name)); err != nil {
			return nil, fmt.Errorf("oceanutil: parsing configuration variable %s: %v", v.name, err)
		}
	}

	floats := []struct {
		name        string
		dst         *float64
		nonNegative bool
	}{
		{"config_rich_mix", &c.Mixing.RichMix, true},
		{"config_bkrd_vert_visc", &c.Mixing.BkrdVertVisc, true},
		{"config_bkrd_vert_diff", &c.Mixing.BkrdVertDiff, true},
		{"config_convective_visc", &c.Mixing.ConvectiveVisc, true},
		{"config_convective_diff", &c.Mixing.ConvectiveDiff, true},
		{"config_surface_buoyancy_depth", &c.Shortwave.SurfaceBuoyancyDepth, false},
		{"config_eos_linear_alpha", &c.EOS.Alpha, false},
		{"config_eos_linear_beta", &c.EOS.Beta, false},
		{"config_eos_linear_Tref", &c.EOS.RefTemperature, false},
		{"config_eos_linear_Sref", &c.EOS.RefSalinity, false},
		{"config_eos_linear_densityref", &c.EOS.RefDensity, false},
	}
	for _, v := range floats {
		if *v.dst, err = cast.ToFloat64E(cfg.Get(v.name)); err != nil {
			return nil, fmt.Errorf("oceanutil: parsing configuration variable %s: %v", v.name, err)
		}
		if math.IsNaN(*v.dst) || math.IsInf(*v.dst, 0) {
			return nil, fmt.Errorf("oceanutil: parsing configuration: %s=%g but should be finite", v.name, *v.dst)
		}
		if v.nonNegative && *v.dst < 0 {
			return nil, fmt.Errorf("oceanutil: parsing configuration: %s=%g but should be >= 0", v.name, *v.dst)
		}
	}
	if !(c.EOS.RefDensity > 0) {
		return nil, fmt.Errorf("oceanutil: parsing configuration: config_eos_linear_densityref=%g but should be >0", c.EOS.RefDensity)
	}

	if c.Shortwave.JerlovWaterType, err = cast.ToIntE(cfg.Get("config_jerlov_water_type")); err != nil {
		return nil, fmt.Errorf("oceanutil: parsing configuration variable config_jerlov_water_type: %v", err)
	}
	c.Shortwave.Type = strings.TrimSpace(cfg.GetString("config_sw_absorption_type"))
	c.Shortwave.Dt = cfg.GetString("config_dt")
	c.StartTime = cfg.GetString("config_start_time")
	c.RunDuration = cfg.GetString("config_run_duration")

	if dt, err := timekeeping.ParseInterval(c.Shortwave.Dt); err != nil {
		return nil, fmt.Errorf("oceanutil: parsing configuration variable config_dt: %v", err)
	} else if dt.IsZero() {
		return nil, fmt.Errorf("oceanutil: parsing configuration: config_dt should be greater than zero")
	}
	if _, err := timekeeping.ParseTime(c.StartTime); err != nil {
		return nil, fmt.Errorf("oceanutil: parsing configuration variable config_start_time: %v", err)
	}
	if _, err := timekeeping.ParseInterval(c.RunDuration); err != nil {
		return nil, fmt.Errorf("oceanutil: parsing configuration variable config_run_duration: %v", err)
	}

	c.MeshFile = os.ExpandEnv(cfg.GetString("MeshFile"))
	c.StateFile = os.ExpandEnv(cfg.GetString("StateFile"))
	c.ShortwaveForcingFile = os.ExpandEnv(cfg.GetString("ShortwaveForcingFile"))
	c.RestartTimesFile = os.ExpandEnv(cfg.GetString("RestartTimesFile"))
	if c.MeshFile == "" {
		return nil, fmt.Errorf("oceanutil: you need to specify a mesh file in the MeshFile configuration variable")
	}
	if c.StateFile == "" {
		return nil, fmt.Errorf("oceanutil: you need to specify a state file in the StateFile configuration variable")
	}
	if c.Shortwave.Type == sw.Ohlmann00 && c.ShortwaveForcingFile == "" {
		return nil, fmt.Errorf("oceanutil: the %s short-wave absorption type needs "+
			"the ShortwaveForcingFile configuration variable", sw.Ohlmann00)
	}

	if c.OutputFile, err = checkOutputFile(cfg.GetString("OutputFile")); err != nil {
		return nil, err
	}
	vars, err := GetStringMapString("OutputVariables", cfg)
	if err != nil {
		return nil, err
	}
	c.OutputVariables = checkOutputVars(vars)
	return c, nil
}

// checkOutputVars removes end lines and expands environment
// variables in the output variables.
func checkOutputVars(vars map[string]string) map[string]string {
	o := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return o
}

// checkOutputFile expands any environment variables in the output file
// path and makes sure that its directory exists.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", nil
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("oceanutil: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if strings.TrimSpace(v) == "" {
			return o, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("oceanutil: parsing configuration variable %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("oceanutil: invalid type for configuration variable %s: %#v", varName, i)
	}
}
