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
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ctessum/cdf"
)

// testSet resamples the grids from testGrids onto a short ladder.
func testSet(t *testing.T) *FlightLevelSet {
	t.Helper()
	height, u, v := testGrids()
	set, err := Resample(height, u, v, nil, []int{50, 150, 250})
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func TestFlightLevelSet_Level(t *testing.T) {
	set := testSet(t)
	level, err := set.Level(VarU, 150)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(level.Shape, []int{2, 2}) {
		t.Fatalf("level shape: want [2 2], got %v", level.Shape)
	}
	if got := level.Get(0, 0); got != 20 {
		t.Errorf("u at FL150 (0,0): want 20, got %g", got)
	}
	if got := level.Get(1, 0); !math.IsNaN(got) {
		t.Errorf("u at FL150 (1,0): want NaN, got %g", got)
	}

	if _, err := set.Level(VarU, 145); err == nil {
		t.Error("expected an error for a flight level outside the ladder")
	}
	if _, err := set.Level("nothere", 150); err == nil {
		t.Error("expected an error for an unknown field")
	}
}

func TestFlightLevelSet_WriteLoad(t *testing.T) {
	set := testSet(t)

	fname := filepath.Join(t.TempDir(), "flightlevels.ncf")
	f, err := os.Create(fname)
	if err != nil {
		t.Fatal(err)
	}
	if err := set.Write(f); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	f2, err := os.Open(fname)
	if err != nil {
		t.Fatal(err)
	}
	defer f2.Close()
	loaded, err := LoadFlightLevelSet(f2)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(loaded.Ladder, set.Ladder) {
		t.Errorf("ladder: want %v, got %v", set.Ladder, loaded.Ladder)
	}
	if loaded.Lats == nil || loaded.Lats.Get(1, 0) != 41 {
		t.Error("latitudes did not survive the round trip")
	}
	if loaded.Lons == nil || loaded.Lons.Get(0, 1) != -99 {
		t.Error("longitudes did not survive the round trip")
	}
	for _, name := range set.fieldNames() {
		want := set.Data[name]
		got, ok := loaded.Data[name]
		if !ok {
			t.Errorf("field %s missing after round trip", name)
			continue
		}
		if got.Description != want.Description || got.Units != want.Units {
			t.Errorf("%s attributes: want %q/%q, got %q/%q",
				name, want.Description, want.Units, got.Description, got.Units)
		}
		for i, w := range want.Data.Elements {
			g := got.Data.Elements[i]
			if w != g && !(math.IsNaN(w) && math.IsNaN(g)) {
				t.Errorf("%s element %d: want %g, got %g", name, i, w, g)
			}
		}
	}
}

// writeForeignFile writes a NetCDF file that is structurally similar to
// flight-level output but lacks the given attributes.
func writeForeignFile(t *testing.T, withVersion bool) string {
	t.Helper()

	h := cdf.NewHeader([]string{"fl", "y", "x"}, []int{1, 1, 1})
	if withVersion {
		h.AddAttribute("", "data_version", DataVersion)
	}
	h.AddVariable("fl", []string{"fl"}, []int32{0})
	h.AddVariable("u", []string{"fl", "y", "x"}, []float32{0})
	h.Define()

	fname := filepath.Join(t.TempDir(), "foreign.ncf")
	w, err := os.Create(fname)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	f, err := cdf.Create(w, h)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Writer("fl", []int{0}, []int{1}).Write([]int32{150}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Writer("u", []int{0, 0, 0}, []int{1, 1, 1}).Write([]float32{0}); err != nil {
		t.Fatal(err)
	}
	if err := cdf.UpdateNumRecs(w); err != nil {
		t.Fatal(err)
	}
	return fname
}

func TestLoadFlightLevelSet_foreignFile(t *testing.T) {
	cases := []struct {
		name        string
		withVersion bool
		wantErr     string
	}{
		{"no data_version", false, "data_version"},
		{"no variable attributes", true, "description"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f, err := os.Open(writeForeignFile(t, c.withVersion))
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			_, err = LoadFlightLevelSet(f)
			if err == nil {
				t.Fatal("expected an error for a file missing attributes")
			}
			if !strings.Contains(err.Error(), c.wantErr) {
				t.Errorf("error %q should mention %q", err, c.wantErr)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	set := testSet(t)
	var buf bytes.Buffer
	if err := set.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}

	var out map[string]map[string][][]*int
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	fl150, ok := out["150"]
	if !ok {
		t.Fatalf("flight level 150 missing from JSON; have %d levels", len(out))
	}
	u := fl150[VarU]
	if len(u) != 2 || len(u[0]) != 2 {
		t.Fatalf("u shape: want 2x2, got %dx%d", len(u), len(u[0]))
	}
	if u[0][0] == nil || *u[0][0] != 20 {
		t.Errorf("u at FL150 (0,0): want 20, got %v", u[0][0])
	}
	// The point with a missing level is null.
	if u[1][0] != nil {
		t.Errorf("u at FL150 (1,0): want null, got %d", *u[1][0])
	}
	if dir := fl150[VarDir]; dir[0][1] == nil || *dir[0][1] != 180 {
		t.Errorf("dir at FL150 (0,1): want 180, got %v", dir[0][1])
	}
}

func TestWriteCSV(t *testing.T) {
	set := testSet(t)
	dir := t.TempDir()
	if err := set.WriteCSV(dir); err != nil {
		t.Fatal(err)
	}

	// One file per flight level per field.
	matches, err := filepath.Glob(filepath.Join(dir, "FL*_*.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if want := len(set.Ladder) * len(set.Data); len(matches) != want {
		t.Fatalf("CSV file count: want %d, got %d", want, len(matches))
	}

	f, err := os.Open(filepath.Join(dir, "FL150_u.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"20", "0"}, {"", "0"}}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("FL150_u.csv: want %v, got %v", want, records)
	}
}
