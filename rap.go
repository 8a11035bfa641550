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
	"io"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Variable names in RAP-derived NetCDF input files. Each atmospheric
// variable has dimensions [level, y, x]; level is the pressure-level
// coordinate [hPa] and XLAT/XLONG are the 2-D cell coordinates.
const (
	rapHeightVar = "HGT"
	rapUVar      = "UGRD"
	rapVVar      = "VGRD"
	rapTVar      = "TMP"
	rapLevelVar  = "level"
	rapLatVar    = "XLAT"
	rapLonVar    = "XLONG"
)

// RAPSource is a GridSource for NOAA Rapid Refresh (RAP) model output that
// has been converted from its native GRIB2 encoding to NetCDF. Decoding
// GRIB2 itself is a concern of whatever produced the file.
type RAPSource struct {
	file string
}

// NewRAPSource initializes a RAP source from the given NetCDF file.
func NewRAPSource(file string) *RAPSource {
	return &RAPSource{file: file}
}

func (r *RAPSource) open() (*os.File, *cdf.File, error) {
	f, err := os.Open(r.file)
	if err != nil {
		return nil, nil, err
	}
	ff, err := cdf.Open(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, ff, nil
}

// Nx helps fulfill the GridSource interface by returning the number of grid
// cells in the West-East direction.
func (r *RAPSource) Nx() (int, error) {
	f, ff, err := r.open()
	if err != nil {
		return -1, fmt.Errorf("nx: %v", err)
	}
	defer f.Close()
	return ff.Header.Lengths(rapHeightVar)[2], nil
}

// Ny helps fulfill the GridSource interface by returning the number of grid
// cells in the South-North direction.
func (r *RAPSource) Ny() (int, error) {
	f, ff, err := r.open()
	if err != nil {
		return -1, fmt.Errorf("ny: %v", err)
	}
	defer f.Close()
	return ff.Header.Lengths(rapHeightVar)[1], nil
}

// Nz helps fulfill the GridSource interface by returning the number of
// pressure levels.
func (r *RAPSource) Nz() (int, error) {
	f, ff, err := r.open()
	if err != nil {
		return -1, fmt.Errorf("nz: %v", err)
	}
	defer f.Close()
	return ff.Header.Lengths(rapHeightVar)[0], nil
}

// PressureLevels helps fulfill the GridSource interface by returning the
// ordered pressure levels [hPa].
func (r *RAPSource) PressureLevels() ([]float64, error) {
	f, ff, err := r.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dims := ff.Header.Lengths(rapLevelVar)
	if len(dims) == 0 {
		return nil, fmt.Errorf("windsaloft: rap source: variable %s not in file %s", rapLevelVar, r.file)
	}
	buf := make([]float32, dims[0])
	if _, err := ff.Reader(rapLevelVar, nil, nil).Read(buf); err != nil {
		return nil, fmt.Errorf("windsaloft: rap source: reading %s: %v", rapLevelVar, err)
	}
	levels := make([]float64, len(buf))
	for i, p := range buf {
		levels[i] = float64(p)
	}
	return levels, nil
}

// LatLon helps fulfill the GridSource interface by returning the cell
// coordinates, or nils if the file does not carry them.
func (r *RAPSource) LatLon() (lats, lons *sparse.DenseArray, err error) {
	f, ff, err := r.open()
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	if len(ff.Header.Lengths(rapLatVar)) == 0 || len(ff.Header.Lengths(rapLonVar)) == 0 {
		return nil, nil, nil
	}
	lats, err = readVarNCF(ff, rapLatVar)
	if err != nil {
		return nil, nil, err
	}
	lons, err = readVarNCF(ff, rapLonVar)
	if err != nil {
		return nil, nil, err
	}
	return lats, lons, nil
}

// Height helps fulfill the GridSource interface by returning geopotential
// height on pressure levels [m].
func (r *RAPSource) Height() NextData { return r.read(rapHeightVar) }

// U helps fulfill the GridSource interface by returning West-East wind
// speed on pressure levels [m/s].
func (r *RAPSource) U() NextData { return r.read(rapUVar) }

// V helps fulfill the GridSource interface by returning South-North wind
// speed on pressure levels [m/s].
func (r *RAPSource) V() NextData { return r.read(rapVVar) }

// T helps fulfill the GridSource interface by returning temperature on
// pressure levels [K], or nil if the file does not carry temperature.
func (r *RAPSource) T() NextData {
	f, ff, err := r.open()
	if err != nil {
		return func() (*sparse.DenseArray, error) { return nil, err }
	}
	ok := len(ff.Header.Lengths(rapTVar)) != 0
	f.Close()
	if !ok {
		return nil
	}
	return r.read(rapTVar)
}

// read returns a function that sequentially retrieves the 2-D array for
// each pressure level of the specified variable, returning io.EOF after
// the last level.
func (r *RAPSource) read(varName string) NextData {
	var k int
	return func() (*sparse.DenseArray, error) {
		f, ff, err := r.open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		dims := ff.Header.Lengths(varName)
		if len(dims) != 3 {
			return nil, fmt.Errorf("windsaloft: rap source: variable %s has %d dimensions, expected 3", varName, len(dims))
		}
		if k >= dims[0] {
			return nil, io.EOF
		}
		start := []int{k, 0, 0}
		end := []int{k + 1, dims[1], dims[2]}
		buf := make([]float32, dims[1]*dims[2])
		if _, err := ff.Reader(varName, start, end).Read(buf); err != nil {
			return nil, fmt.Errorf("windsaloft: rap source: reading %s level %d: %v", varName, k, err)
		}
		data := sparse.ZerosDense(dims[1], dims[2])
		for i, val := range buf {
			data.Elements[i] = float64(val)
		}
		k++
		return data, nil
	}
}

// readVarNCF reads an entire float32 variable out of netcdf file ff.
func readVarNCF(ff *cdf.File, varName string) (*sparse.DenseArray, error) {
	dims := ff.Header.Lengths(varName)
	n := 1
	for _, d := range dims {
		n *= d
	}
	buf := make([]float32, n)
	if _, err := ff.Reader(varName, nil, nil).Read(buf); err != nil {
		return nil, fmt.Errorf("windsaloft: reading netcdf variable %s: %v", varName, err)
	}
	data := sparse.ZerosDense(dims...)
	for i, val := range buf {
		data.Elements[i] = float64(val)
	}
	return data, nil
}
