/*
Copyright © 2025 the WindsAloft authors.
This file is part of WindsAloft.

WindsAloft is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

WindsAloft is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with WindsAloft.  If not, see <http://www.gnu.org/licenses/>.
*/

package windsaloft

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

const (
	// metersToFeet converts geopotential height [m] to height [ft].
	metersToFeet = 3.281

	// feetPerFlightLevel is the number of feet in one flight level.
	feetPerFlightLevel = 100.
)

// Resample interpolates the wind components in u and v (and, if temp is not
// nil, temperature) from the pressure levels they are sampled on to the
// target flight levels in ladder, using the geopotential height in height to
// locate each pressure level on the flight-level axis. It also derives wind
// speed [m/s] and meteorological wind direction ["from" convention, degrees
// clockwise from true north, in [0,360)] at every target level. All outputs
// are rounded to the nearest integer, halves away from zero.
//
// Any grid point whose vertical profile contains NaN at any pressure level
// is excluded from interpolation and is NaN in every output field at every
// target level. Target levels outside a point's sampled range take the
// boundary value; no extrapolation is performed.
//
// Resample fails before any interpolation if the input grids disagree on
// shape or pressure levels (ShapeMismatchError) or if ladder is empty,
// negative, or not strictly increasing (InvalidLadderError).
func Resample(height, u, v, temp *LevelGrid, ladder []int) (*FlightLevelSet, error) {
	if err := validateLadder(ladder); err != nil {
		return nil, err
	}
	if len(height.Data.Shape) != 3 || height.Data.Shape[0] != len(height.Levels) {
		return nil, &ShapeMismatchError{Field: height.Name,
			Detail: fmt.Sprintf("shape %v does not hold %d pressure levels of 2-D data", height.Data.Shape, len(height.Levels))}
	}
	for _, g := range []*LevelGrid{u, v, temp} {
		if err := checkAlign(height, g); err != nil {
			return nil, err
		}
	}

	nz, ny, nx := height.Data.Shape[0], height.Data.Shape[1], height.Data.Shape[2]

	uOut := sparse.ZerosDense(len(ladder), ny, nx)
	vOut := sparse.ZerosDense(len(ladder), ny, nx)
	speedOut := sparse.ZerosDense(len(ladder), ny, nx)
	dirOut := sparse.ZerosDense(len(ladder), ny, nx)
	var tOut *sparse.DenseArray
	if temp != nil {
		tOut = sparse.ZerosDense(len(ladder), ny, nx)
	}

	flProfile := make([]float64, nz)
	uProfile := make([]float64, nz)
	vProfile := make([]float64, nz)
	var tProfile []float64
	if temp != nil {
		tProfile = make([]float64, nz)
	}

	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			missing := false
			for k := 0; k < nz; k++ {
				flProfile[k] = height.Data.Get(k, j, i) * metersToFeet / feetPerFlightLevel
				uProfile[k] = u.Data.Get(k, j, i)
				vProfile[k] = v.Data.Get(k, j, i)
				if math.IsNaN(flProfile[k]) || math.IsNaN(uProfile[k]) || math.IsNaN(vProfile[k]) {
					missing = true
				}
				if temp != nil {
					tProfile[k] = temp.Data.Get(k, j, i)
					if math.IsNaN(tProfile[k]) {
						missing = true
					}
				}
			}
			if missing {
				for l := range ladder {
					uOut.Set(math.NaN(), l, j, i)
					vOut.Set(math.NaN(), l, j, i)
					speedOut.Set(math.NaN(), l, j, i)
					dirOut.Set(math.NaN(), l, j, i)
					if tOut != nil {
						tOut.Set(math.NaN(), l, j, i)
					}
				}
				continue
			}

			// Pressure levels are conventionally ordered surface to
			// top, which puts the flight-level profile in decreasing
			// order. Interpolation requires it strictly increasing.
			if flProfile[0] > flProfile[nz-1] {
				floats.Reverse(flProfile)
				floats.Reverse(uProfile)
				floats.Reverse(vProfile)
				if temp != nil {
					floats.Reverse(tProfile)
				}
			}

			for l, fl := range ladder {
				uVal := interpolate(float64(fl), flProfile, uProfile)
				vVal := interpolate(float64(fl), flProfile, vProfile)
				uOut.Set(math.Round(uVal), l, j, i)
				vOut.Set(math.Round(vVal), l, j, i)
				speedOut.Set(math.Round(math.Sqrt(uVal*uVal+vVal*vVal)), l, j, i)
				dirOut.Set(roundDirection(windDirection(uVal, vVal)), l, j, i)
				if tOut != nil {
					tOut.Set(math.Round(interpolate(float64(fl), flProfile, tProfile)), l, j, i)
				}
			}
		}
	}

	s := &FlightLevelSet{
		Ladder: append([]int(nil), ladder...),
		Lats:   height.Lats,
		Lons:   height.Lons,
	}
	s.AddVariable(VarU, "West-East wind component", "m s-1", uOut)
	s.AddVariable(VarV, "South-North wind component", "m s-1", vOut)
	s.AddVariable(VarSpeed, "Wind speed", "m s-1", speedOut)
	s.AddVariable(VarDir, "Wind direction, from, clockwise from true north", "degrees", dirOut)
	if tOut != nil {
		s.AddVariable(VarTemp, "Temperature", "K", tOut)
	}
	return s, nil
}

// interpolate returns the piecewise linear interpolation of the samples
// (xs, ys) at x. xs must be strictly increasing. Values of x outside the
// sampled range are clamped to the boundary values.
func interpolate(x float64, xs, ys []float64) float64 {
	n := len(xs)
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	for k := 1; k < n; k++ {
		if x <= xs[k] {
			frac := (x - xs[k-1]) / (xs[k] - xs[k-1])
			return ys[k-1] + frac*(ys[k]-ys[k-1])
		}
	}
	return ys[n-1]
}

// windDirection converts wind vector components to the meteorological
// "wind from" direction [degrees clockwise from true north, in [0,360)].
func windDirection(u, v float64) float64 {
	dir := math.Mod(270.-math.Atan2(v, u)*180./math.Pi, 360.)
	if dir < 0 {
		dir += 360.
	}
	return dir
}

// roundDirection rounds a wind direction to the nearest integer while
// keeping it in [0,360): directions that round up to 360 wrap to 0.
func roundDirection(dir float64) float64 {
	return math.Mod(math.Round(dir), 360.)
}
