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

import "github.com/ctessum/unit"

// Version gives the version number.
const Version = "0.1.0"

// physical constants
const (
	Gravity = 9.80616 // m/s2
	RhoSw   = 1026.0  // kg/m3, reference density of sea water
	CpSw    = 3.996e3 // J/kg/K, heat capacity of sea water

	// HfluxFactor converts a heat flux [W/m2] to a temperature flux [K m/s].
	HfluxFactor = 1. / (RhoSw * CpSw)
)

// Dimensions of the model fields.
var (
	dimLength      = unit.Dimensions{unit.LengthDim: 1}
	dimDiffusivity = unit.Dimensions{unit.LengthDim: 2, unit.TimeDim: -1}
	dimVelocity    = unit.Dimensions{unit.LengthDim: 1, unit.TimeDim: -1}
	dimDensity     = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -3}
	dimTempFlux    = unit.Dimensions{unit.TemperatureDim: 1, unit.LengthDim: 1, unit.TimeDim: -1}
	dimIrradiance  = unit.Dimensions{unit.MassDim: 1, unit.TimeDim: -3}
	dimChlorophyll = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -3}
	dimAngle       = unit.Dimensions{unit.AngleDim: 1}
	dimNone        = unit.Dimensions{}
)
