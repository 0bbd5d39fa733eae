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

package sw

import (
	"fmt"
	"math"
)

// JerlovWater holds the Paulson and Simpson (1977) two-band fit for one
// Jerlov optical water type.
type JerlovWater struct {
	Name string

	// R is the fraction of the flux in the red band.
	R float64

	// Zeta1 and Zeta2 are the e-folding depths [m] of the red and
	// blue-green bands.
	Zeta1, Zeta2 float64
}

// JerlovWaterTypes holds water types I, IA, IB, II and III, which are
// numbered 1 to 5 in the configuration.
var JerlovWaterTypes = [5]JerlovWater{
	{"I", 0.58, 0.35, 23},
	{"IA", 0.62, 0.6, 20},
	{"IB", 0.67, 1.0, 17},
	{"II", 0.77, 1.5, 14},
	{"III", 0.78, 1.4, 7.9},
}

// Fraction returns the fraction of the surface short-wave flux that
// remains at depth [m, positive down]. Like FractionAtDepth, it is zero
// at and below 200 m.
func (w JerlovWater) Fraction(depth float64) float64 {
	if -depth > -maxDepth {
		return w.R*math.Exp(-depth/w.Zeta1) + (1-w.R)*math.Exp(-depth/w.Zeta2)
	}
	return 0
}

// JerlovFraction returns the fraction of the surface short-wave flux
// that remains at depth for water type waterType (1-5).
func JerlovFraction(depth float64, waterType int) (float64, error) {
	w, err := jerlovWater(waterType)
	if err != nil {
		return 0, err
	}
	return w.Fraction(depth), nil
}

func jerlovWater(waterType int) (JerlovWater, error) {
	if waterType < 1 || waterType > len(JerlovWaterTypes) {
		return JerlovWater{}, fmt.Errorf("sw: Jerlov water type %d should be between 1 and %d",
			waterType, len(JerlovWaterTypes))
	}
	return JerlovWaterTypes[waterType-1], nil
}
