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

// Package oceanutil contains the command-line interface of the ocean
// mixing diagnostics.
package oceanutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	ocean "github.com/UCI-OCEANOGRAPHY/MPAS-Model"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to the model.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			shorthand:  "c",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "MeshFile",
			usage: `
              MeshFile is the path to the netCDF file holding the mesh in MPAS format.
              It can include environment variables.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{meshCmd.Flags(), diagnoseCmd.Flags()},
		},
		{
			name: "StateFile",
			usage: `
              StateFile is the path to the netCDF file holding normalVelocity,
              layerThickness, temperature and salinity. The first record is used.
              If the file has a penetrativeTemperatureFlux variable [K m/s], it
              is used as the surface short-wave flux.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "ShortwaveForcingFile",
			usage: `
              ShortwaveForcingFile is the path to the netCDF file holding the monthly
              chlorophyllData, clearSkyRadiation and zenithAngle climatology used by
              the ohlmann00 short-wave absorption scheme.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the netCDF file where the output variables
              are written at each time step. If it is empty, no output is written.`,
			defaultVal: "",
			shorthand:  "o",
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies which model variables should be included in the
              output file. It can include equations in terms of the model fields
              (e.g., "Kv":"vertViscTopOfEdge"). If it is empty, every field is written.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "RestartTimesFile",
			usage: `
              RestartTimesFile is the path to the file holding the forcing times. If
              it exists at the beginning of a run, the forcing times are read from it.
              The forcing times are written to it at the end of the run.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "config_start_time",
			usage: `
              config_start_time is the model time of the first time step,
              in the format YYYY-MM-DD_hh:mm:ss.`,
			defaultVal: "0001-01-01_00:00:00",
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "config_run_duration",
			usage: `
              config_run_duration is the length of the run, in the format
              [[[Y-]M-]D_]hh:mm:ss.`,
			defaultVal: "0000_01:00:00",
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "config_dt",
			usage: `
              config_dt is the model time step. It is also the interval by which the
              short-wave forcing clock is advanced.`,
			defaultVal: "00:30:00",
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "config_use_rich_visc",
			usage: `
              config_use_rich_visc turns on the Richardson-number-based vertical
              viscosity.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "config_use_rich_diff",
			usage: `
              config_use_rich_diff turns on the Richardson-number-based vertical
              tracer diffusivity.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "config_rich_mix",
			usage: `
              config_rich_mix [m2/s] is the magnitude of the shear-driven mixing.`,
			defaultVal: 0.005,
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "config_bkrd_vert_visc",
			usage: `
              config_bkrd_vert_visc [m2/s] is the background vertical viscosity.`,
			defaultVal: 1.0e-4,
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "config_bkrd_vert_diff",
			usage: `
              config_bkrd_vert_diff [m2/s] is the background vertical diffusivity.`,
			defaultVal: 1.0e-5,
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "config_convective_visc",
			usage: `
              config_convective_visc [m2/s] is the viscosity used where the water
              column is statically unstable. It also caps the viscosity.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "config_convective_diff",
			usage: `
              config_convective_diff [m2/s] is the diffusivity used where the water
              column is statically unstable. It also caps the diffusivity.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "config_sw_absorption_type",
			usage: `
              config_sw_absorption_type is the short-wave absorption scheme:
              ohlmann00, jerlov or none.`,
			defaultVal: "jerlov",
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "config_jerlov_water_type",
			usage: `
              config_jerlov_water_type is the Jerlov optical water type used by the
              jerlov scheme: 1=I, 2=IA, 3=IB, 4=II, 5=III.`,
			defaultVal: 3,
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "config_surface_buoyancy_depth",
			usage: `
              config_surface_buoyancy_depth [m] is the depth of the ocean boundary
              layer used to calculate penetrativeTemperatureFluxOBL.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "config_use_bulk_forcing",
			usage: `
              config_use_bulk_forcing turns on reading the short-wave forcing
              climatology at each time step.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "config_eos_linear_alpha",
			usage: `
              config_eos_linear_alpha [kg/m3/K] is the thermal expansion coefficient
              of the linear equation of state.`,
			defaultVal: 0.2,
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "config_eos_linear_beta",
			usage: `
              config_eos_linear_beta [kg/m3/PSU] is the haline contraction coefficient
              of the linear equation of state.`,
			defaultVal: 0.8,
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "config_eos_linear_Tref",
			usage: `
              config_eos_linear_Tref [°C] is the reference temperature of the linear
              equation of state.`,
			defaultVal: 5.0,
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "config_eos_linear_Sref",
			usage: `
              config_eos_linear_Sref [PSU] is the reference salinity of the linear
              equation of state.`,
			defaultVal: 35.0,
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
		{
			name: "config_eos_linear_densityref",
			usage: `
              config_eos_linear_densityref [kg/m3] is the reference density of the
              linear equation of state.`,
			defaultVal: 1000.0,
			flagsets:   []*pflag.FlagSet{diagnoseCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("MPAS")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(v)
				set.StringP(option.name, option.shorthand, b.String(), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(meshCmd)
	Root.AddCommand(diagnoseCmd)
}

// defaultConfig returns a configuration holding the default value of
// every option.
func defaultConfig() *viper.Viper {
	v := viper.New()
	for _, option := range options {
		v.SetDefault(option.name, option.defaultVal)
	}
	return v
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("oceanutil: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "mpasocean",
	Short: "Vertical mixing and short-wave absorption diagnostics for an ocean model.",
	Long: `mpasocean calculates the Richardson-number-based vertical viscosity and
diffusivity and the short-wave heating of the upper ocean on an unstructured
MPAS-Ocean mesh. Use the subcommands specified below to access the model
functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'MPAS_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this program.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("mpasocean v%s\n", ocean.Version)
	},
	DisableAutoGenTag: true,
}

// meshCmd is a command that checks a mesh file.
var meshCmd = &cobra.Command{
	Use:   "mesh",
	Short: "Check a mesh file.",
	Long: `mesh loads and validates the mesh in the file given by the MeshFile
configuration variable and prints a description of it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadMesh(os.ExpandEnv(Cfg.GetString("MeshFile")))
		if err != nil {
			return err
		}
		cmd.Println(m)
		return nil
	},
	DisableAutoGenTag: true,
}

// diagnoseCmd is a command that calculates the mixing and absorption
// diagnostics.
var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Calculate mixing and short-wave absorption diagnostics.",
	Long: `diagnose loads the mesh and state given in the configuration and, at each
time step of the run, calculates the short-wave temperature tendency and the
Richardson-number-based vertical viscosity and diffusivity. The ocean state is
held fixed; only the forcing changes with time. The requested output variables
are written to OutputFile at each time step and a summary of the final fields
is printed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ParseConfig(Cfg)
		if err != nil {
			return err
		}
		return Diagnose(cmd.OutOrStdout(), logrus.StandardLogger(), c)
	},
	DisableAutoGenTag: true,
}
