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

	"github.com/ctessum/sparse"
)

// NextData is a type of function that returns the 2-D array for the next
// pressure level of a variable. If there are no more levels, it should
// return the io.EOF error.
type NextData func() (*sparse.DenseArray, error)

// GridSource specifies the methods that are necessary for a variable to
// supply pressure-level atmospheric data for resampling.
type GridSource interface {
	// Nx is the number of grid cells in the West-East direction.
	Nx() (int, error)
	// Ny is the number of grid cells in the South-North direction.
	Ny() (int, error)
	// Nz is the number of pressure levels.
	Nz() (int, error)

	// PressureLevels is the ordered list of pressure levels [hPa].
	PressureLevels() ([]float64, error)

	// LatLon is the latitude and longitude of each grid cell
	// [degrees north, degrees east].
	LatLon() (lats, lons *sparse.DenseArray, err error)

	// Height is geopotential height on pressure levels [m].
	Height() NextData
	// U is West-East wind speed on pressure levels [m/s].
	U() NextData
	// V is South-North wind speed on pressure levels [m/s].
	V() NextData
	// T is temperature on pressure levels [K]. It may return nil if the
	// source does not carry temperature.
	T() NextData
}

// LevelGrid holds one physical field sampled on a set of pressure levels
// over a fixed latitude/longitude grid.
type LevelGrid struct {
	// Name is the name of the physical field.
	Name string

	// Levels are the pressure levels [hPa], in the order the source
	// supplied them, conventionally surface to top.
	Levels []float64

	// Data has shape [len(Levels), rows, cols].
	Data *sparse.DenseArray

	// Lats and Lons are the grid cell coordinates, each with shape
	// [rows, cols]. They may be nil if the source does not carry them.
	Lats, Lons *sparse.DenseArray
}

// Rows returns the number of grid rows (South-North).
func (g *LevelGrid) Rows() int { return g.Data.Shape[1] }

// Cols returns the number of grid columns (West-East).
func (g *LevelGrid) Cols() int { return g.Data.Shape[2] }

// LoadLevelGrids assembles the height, U, V, and temperature level grids
// from the given source. The returned temperature grid is nil when the
// source does not carry temperature.
func LoadLevelGrids(s GridSource) (height, u, v, temp *LevelGrid, err error) {
	levels, err := s.PressureLevels()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("windsaloft: reading pressure levels: %v", err)
	}
	if len(levels) == 0 {
		return nil, nil, nil, nil, fmt.Errorf("windsaloft: source has no pressure levels")
	}
	lats, lons, err := s.LatLon()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("windsaloft: reading lat/lon: %v", err)
	}
	height, err = stackLevels("height", s.Height(), levels, lats, lons)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	u, err = stackLevels("u", s.U(), levels, lats, lons)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	v, err = stackLevels("v", s.V(), levels, lats, lons)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if tFunc := s.T(); tFunc != nil {
		temp, err = stackLevels("temp", tFunc, levels, lats, lons)
		if err != nil {
			return nil, nil, nil, nil, err
		}
	}
	return height, u, v, temp, nil
}

// stackLevels collects the per-level 2-D arrays from dataFunc into a single
// 3-D array with shape [levels, rows, cols].
func stackLevels(name string, dataFunc NextData, levels []float64, lats, lons *sparse.DenseArray) (*LevelGrid, error) {
	var data *sparse.DenseArray
	var k int
	for {
		layer, err := dataFunc()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("windsaloft: reading %s level %d: %v", name, k, err)
		}
		if len(layer.Shape) != 2 {
			return nil, fmt.Errorf("windsaloft: %s level %d: expected 2 dimensions but got %d", name, k, len(layer.Shape))
		}
		if data == nil {
			data = sparse.ZerosDense(len(levels), layer.Shape[0], layer.Shape[1])
		} else if layer.Shape[0] != data.Shape[1] || layer.Shape[1] != data.Shape[2] {
			return nil, &ShapeMismatchError{Field: name,
				Detail: fmt.Sprintf("level %d shape %v does not match level 0 shape %v",
					k, layer.Shape, data.Shape[1:])}
		}
		if k >= len(levels) {
			return nil, fmt.Errorf("windsaloft: %s: more data levels than pressure levels (%d)", name, len(levels))
		}
		for j := 0; j < layer.Shape[0]; j++ {
			for i := 0; i < layer.Shape[1]; i++ {
				data.Set(layer.Get(j, i), k, j, i)
			}
		}
		k++
	}
	if k != len(levels) {
		return nil, fmt.Errorf("windsaloft: %s: read %d data levels for %d pressure levels", name, k, len(levels))
	}
	return &LevelGrid{
		Name:   name,
		Levels: levels,
		Data:   data,
		Lats:   lats,
		Lons:   lons,
	}, nil
}

// ShapeMismatchError indicates that the input grids disagree on their
// dimensions or on their set of pressure levels.
type ShapeMismatchError struct {
	// Field is the name of the offending grid.
	Field  string
	Detail string
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("windsaloft: grid %s: %s", e.Field, e.Detail)
}

// InvalidLadderError indicates a flight-level ladder that is empty,
// contains negative levels, or is not strictly increasing.
type InvalidLadderError struct {
	Detail string
}

func (e *InvalidLadderError) Error() string {
	return fmt.Sprintf("windsaloft: invalid flight-level ladder: %s", e.Detail)
}

// checkAlign verifies that grid g has the same shape and pressure levels
// as the reference grid ref.
func checkAlign(ref, g *LevelGrid) error {
	if g == nil {
		return nil
	}
	if len(g.Data.Shape) != 3 {
		return &ShapeMismatchError{Field: g.Name,
			Detail: fmt.Sprintf("expected 3 dimensions but got %d", len(g.Data.Shape))}
	}
	for d, n := range ref.Data.Shape {
		if g.Data.Shape[d] != n {
			return &ShapeMismatchError{Field: g.Name,
				Detail: fmt.Sprintf("shape %v does not match %s shape %v", g.Data.Shape, ref.Name, ref.Data.Shape)}
		}
	}
	if len(g.Levels) != len(ref.Levels) {
		return &ShapeMismatchError{Field: g.Name,
			Detail: fmt.Sprintf("%d pressure levels do not match %s levels (%d)", len(g.Levels), ref.Name, len(ref.Levels))}
	}
	for k, p := range ref.Levels {
		if g.Levels[k] != p {
			return &ShapeMismatchError{Field: g.Name,
				Detail: fmt.Sprintf("pressure level %d is %g hPa but %s has %g hPa", k, g.Levels[k], ref.Name, p)}
		}
	}
	return nil
}

// validateLadder checks that the target flight-level ladder is non-empty,
// non-negative, and strictly increasing.
func validateLadder(ladder []int) error {
	if len(ladder) == 0 {
		return &InvalidLadderError{Detail: "ladder is empty"}
	}
	for i, fl := range ladder {
		if fl < 0 {
			return &InvalidLadderError{Detail: fmt.Sprintf("flight level %d is negative", fl)}
		}
		if i > 0 && fl <= ladder[i-1] {
			return &InvalidLadderError{Detail: fmt.Sprintf("flight levels %d and %d are not strictly increasing", ladder[i-1], fl)}
		}
	}
	return nil
}

// DefaultLadder returns the standard target flight levels: 0 to 500 in
// steps of 10 (hundreds of feet).
func DefaultLadder() []int {
	ladder := make([]int, 51)
	for i := range ladder {
		ladder[i] = i * 10
	}
	return ladder
}
