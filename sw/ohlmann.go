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

import "math"

// cloudyThreshold is the cloud fraction above which the cloudy-sky fit
// is used.
const cloudyThreshold = 0.1

// maxDepth is the depth [m] below which no short-wave radiation remains.
const maxDepth = 200.

// OSCoefficients returns the four-band amplitudes A and attenuation
// coefficients K [1/m] of Ohlmann and Siegel (2000) for chlorophyll
// concentration chl [mg/m3], solar zenith angle zenith [radians] and
// cloud fraction cloud [0-1]. The cloudy fit is used when cloud > 0.1
// and the clear-sky fit otherwise, so the coefficients are discontinuous
// at a cloud fraction of 0.1.
func OSCoefficients(chl, zenith, cloud float64) (A, K [4]float64) {
	c := chl
	if cloud > cloudyThreshold {
		f := cloud
		A = [4]float64{
			0.026*c + 0.112*f + 0.366,
			-0.009*c + 0.034*f + 0.207,
			-0.015*c - 0.006*f + 0.188,
			-0.023*c - 0.131*f + 0.169,
		}
		K = [4]float64{
			0.063*c - 0.015*f + 0.082,
			0.278*c - 0.562*f + 1.02,
			3.91*c - 12.91*f + 16.62,
			16.64*c - 478.28*f + 736.56,
		}
		return
	}
	z := zenith
	A = [4]float64{
		0.033*c - 0.025*z + 0.419,
		-0.010*c - 0.007*z + 0.231,
		-0.019*c - 0.003*z + 0.195,
		-0.006*c - 0.004*z + 0.154,
	}
	K = [4]float64{
		0.066*c + 0.006*z + 0.066,
		0.396*c - 0.027*z + 0.886,
		7.68*c - 2.49*z + 17.81,
		51.27*c + 13.14*z + 665.19,
	}
	return
}

// FractionAtDepth returns the fraction of the surface short-wave flux
// that remains at depth [m, positive down], given coefficients from
// OSCoefficients. It is zero at and below 200 m.
func FractionAtDepth(depth float64, A, K [4]float64) float64 {
	if -depth > -maxDepth {
		var f float64
		for i := range A {
			f += A[i] * math.Exp(-depth*K[i])
		}
		return f
	}
	return 0
}
