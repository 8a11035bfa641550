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
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/ctessum/sparse"
)

// memSource is an in-memory GridSource for testing.
type memSource struct {
	levels       []float64
	hgt, u, v, t []*sparse.DenseArray
	lats, lons   *sparse.DenseArray
}

func (m *memSource) Nx() (int, error) { return m.hgt[0].Shape[1], nil }
func (m *memSource) Ny() (int, error) { return m.hgt[0].Shape[0], nil }
func (m *memSource) Nz() (int, error) { return len(m.levels), nil }

func (m *memSource) PressureLevels() ([]float64, error) { return m.levels, nil }

func (m *memSource) LatLon() (*sparse.DenseArray, *sparse.DenseArray, error) {
	return m.lats, m.lons, nil
}

func nextFromSlice(layers []*sparse.DenseArray) NextData {
	var k int
	return func() (*sparse.DenseArray, error) {
		if k >= len(layers) {
			return nil, io.EOF
		}
		layer := layers[k]
		k++
		return layer, nil
	}
}

func (m *memSource) Height() NextData { return nextFromSlice(m.hgt) }
func (m *memSource) U() NextData      { return nextFromSlice(m.u) }
func (m *memSource) V() NextData      { return nextFromSlice(m.v) }
func (m *memSource) T() NextData {
	if m.t == nil {
		return nil
	}
	return nextFromSlice(m.t)
}

func constLayer(rows, cols int, val float64) *sparse.DenseArray {
	a := sparse.ZerosDense(rows, cols)
	for i := range a.Elements {
		a.Elements[i] = val
	}
	return a
}

func newMemSource(withTemp bool) *memSource {
	m := &memSource{
		levels: []float64{500, 700, 1000},
		lats:   constLayer(2, 3, 40),
		lons:   constLayer(2, 3, -100),
	}
	for k := range m.levels {
		m.hgt = append(m.hgt, constLayer(2, 3, flHeight(float64(250-k*100))))
		m.u = append(m.u, constLayer(2, 3, float64(30-k*10)))
		m.v = append(m.v, constLayer(2, 3, 0))
		if withTemp {
			m.t = append(m.t, constLayer(2, 3, float64(230+k*25)))
		}
	}
	return m
}

func TestLoadLevelGrids(t *testing.T) {
	height, u, v, temp, err := LoadLevelGrids(newMemSource(true))
	if err != nil {
		t.Fatal(err)
	}
	wantShape := []int{3, 2, 3}
	for _, g := range []*LevelGrid{height, u, v, temp} {
		if !reflect.DeepEqual(g.Data.Shape, wantShape) {
			t.Errorf("%s shape: want %v, got %v", g.Name, wantShape, g.Data.Shape)
		}
		if !reflect.DeepEqual(g.Levels, []float64{500, 700, 1000}) {
			t.Errorf("%s levels: got %v", g.Name, g.Levels)
		}
	}
	if height.Rows() != 2 || height.Cols() != 3 {
		t.Errorf("rows/cols: want 2/3, got %d/%d", height.Rows(), height.Cols())
	}
	if got := u.Data.Get(1, 0, 0); got != 20 {
		t.Errorf("u at level 1: want 20, got %g", got)
	}
	if got := temp.Data.Get(2, 1, 2); got != 280 {
		t.Errorf("temp at level 2: want 280, got %g", got)
	}
	if height.Lats == nil || height.Lats.Get(0, 0) != 40 {
		t.Error("height grid should carry latitudes")
	}
}

func TestLoadLevelGrids_noTemperature(t *testing.T) {
	_, _, _, temp, err := LoadLevelGrids(newMemSource(false))
	if err != nil {
		t.Fatal(err)
	}
	if temp != nil {
		t.Error("temperature grid should be nil when the source has no temperature")
	}
}

func TestLoadLevelGrids_layerShapeMismatch(t *testing.T) {
	m := newMemSource(false)
	m.hgt[1] = constLayer(3, 4, 0) // disagrees with the 2×3 first layer
	_, _, _, _, err := LoadLevelGrids(m)
	var sme *ShapeMismatchError
	if !errors.As(err, &sme) {
		t.Fatalf("want ShapeMismatchError, got %v", err)
	}
	if sme.Field != "height" {
		t.Errorf("offending field: want height, got %s", sme.Field)
	}
}

func TestLoadLevelGrids_levelCountMismatch(t *testing.T) {
	m := newMemSource(false)
	m.u = m.u[:2] // one data level short
	if _, _, _, _, err := LoadLevelGrids(m); err == nil {
		t.Error("expected an error for a short variable")
	}
}

func TestLoadLevelGrids_endToEnd(t *testing.T) {
	height, u, v, _, err := LoadLevelGrids(newMemSource(false))
	if err != nil {
		t.Fatal(err)
	}
	set, err := Resample(height, u, v, nil, []int{150})
	if err != nil {
		t.Fatal(err)
	}
	data, err := set.Field(VarU)
	if err != nil {
		t.Fatal(err)
	}
	if got := data.Get(0, 1, 2); got != 20 {
		t.Errorf("u at FL150: want 20, got %g", got)
	}
}

func TestValidateLadder(t *testing.T) {
	cases := []struct {
		name   string
		ladder []int
		ok     bool
	}{
		{"default", DefaultLadder(), true},
		{"single", []int{100}, true},
		{"zero only", []int{0}, true},
		{"empty", nil, false},
		{"negative", []int{-10}, false},
		{"repeated", []int{0, 0}, false},
		{"decreasing", []int{100, 50}, false},
	}
	for _, c := range cases {
		err := validateLadder(c.ladder)
		if c.ok && err != nil {
			t.Errorf("%s: unexpected error %v", c.name, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%s: expected an error", c.name)
		}
	}
}
