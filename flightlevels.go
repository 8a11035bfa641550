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
	"os"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Output field names.
const (
	VarU     = "u"
	VarV     = "v"
	VarSpeed = "speed"
	VarDir   = "dir"
	VarTemp  = "temp"
)

// DataVersion is the version of the flight-level data format. It needs to
// be changed whenever the format changes.
const DataVersion = "1.1"

// FlightLevelSet holds fields resampled onto a ladder of flight levels.
type FlightLevelSet struct {
	// Ladder is the ordered list of target flight levels
	// (hundreds of feet).
	Ladder []int

	// Lats and Lons are the grid cell coordinates, each with shape
	// [rows, cols]. They may be nil.
	Lats, Lons *sparse.DenseArray

	// Data is a map of information about the resampled fields, with the
	// keys being the field names.
	Data map[string]struct {
		Description string             // variable description
		Units       string             // variable units
		Data        *sparse.DenseArray // shape [len(Ladder), rows, cols]
	}
}

// AddVariable adds data for a new field to s.
func (s *FlightLevelSet) AddVariable(name, description, units string, data *sparse.DenseArray) {
	if s.Data == nil {
		s.Data = make(map[string]struct {
			Description string
			Units       string
			Data        *sparse.DenseArray
		})
	}
	s.Data[name] = struct {
		Description string
		Units       string
		Data        *sparse.DenseArray
	}{
		Description: description,
		Units:       units,
		Data:        data,
	}
}

// Field returns the 3-D array for the named field.
func (s *FlightLevelSet) Field(name string) (*sparse.DenseArray, error) {
	d, ok := s.Data[name]
	if !ok {
		return nil, fmt.Errorf("windsaloft: no field %s in flight-level set", name)
	}
	return d.Data, nil
}

// Level returns a 2-D copy of the named field at flight level fl.
func (s *FlightLevelSet) Level(name string, fl int) (*sparse.DenseArray, error) {
	data, err := s.Field(name)
	if err != nil {
		return nil, err
	}
	for l, ladderFl := range s.Ladder {
		if ladderFl != fl {
			continue
		}
		out := sparse.ZerosDense(data.Shape[1], data.Shape[2])
		for j := 0; j < data.Shape[1]; j++ {
			for i := 0; i < data.Shape[2]; i++ {
				out.Set(data.Get(l, j, i), j, i)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("windsaloft: flight level %d is not in the ladder", fl)
}

// fieldNames returns the field names in s, sorted so iteration order is the
// same every time.
func (s *FlightLevelSet) fieldNames() []string {
	names := make([]string, 0, len(s.Data))
	for n := range s.Data {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Write writes s to netcdf file w.
func (s *FlightLevelSet) Write(w *os.File) error {
	names := s.fieldNames()
	if len(names) == 0 {
		return fmt.Errorf("windsaloft: writing an empty flight-level set")
	}
	shape := s.Data[names[0]].Data.Shape
	h := cdf.NewHeader([]string{"fl", "y", "x"}, []int{shape[0], shape[1], shape[2]})
	h.AddAttribute("", "comment", "WindsAloft flight-level wind data file")
	h.AddAttribute("", "data_version", DataVersion)

	h.AddVariable("fl", []string{"fl"}, []int32{0})
	h.AddAttribute("fl", "description", "Flight level")
	h.AddAttribute("fl", "units", "hundreds of feet")
	if s.Lats != nil && s.Lons != nil {
		h.AddVariable("XLAT", []string{"y", "x"}, []float32{0})
		h.AddAttribute("XLAT", "description", "Latitude")
		h.AddAttribute("XLAT", "units", "degrees north")
		h.AddVariable("XLONG", []string{"y", "x"}, []float32{0})
		h.AddAttribute("XLONG", "description", "Longitude")
		h.AddAttribute("XLONG", "units", "degrees east")
	}
	for _, name := range names {
		d := s.Data[name]
		h.AddVariable(name, []string{"fl", "y", "x"}, []float32{0})
		h.AddAttribute(name, "description", d.Description)
		h.AddAttribute(name, "units", d.Units)
	}
	h.Define()

	f, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return err
	}

	ladder32 := make([]int32, len(s.Ladder))
	for i, fl := range s.Ladder {
		ladder32[i] = int32(fl)
	}
	if err := writeNCFInt(f, "fl", ladder32); err != nil {
		return err
	}
	if s.Lats != nil && s.Lons != nil {
		if err := writeNCF(f, "XLAT", s.Lats); err != nil {
			return err
		}
		if err := writeNCF(f, "XLONG", s.Lons); err != nil {
			return err
		}
	}
	for _, name := range names {
		if err := writeNCF(f, name, s.Data[name].Data); err != nil {
			return fmt.Errorf("windsaloft: writing variable %s to netcdf file: %v", name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

// writeNCF writes data to variable Var in netcdf file f.
func writeNCF(f *cdf.File, Var string, data *sparse.DenseArray) error {
	data32 := make([]float32, len(data.Elements))
	for i, e := range data.Elements {
		data32[i] = float32(e)
	}
	end := f.Header.Lengths(Var)
	start := make([]int, len(end))
	w := f.Writer(Var, start, end)
	_, err := w.Write(data32)
	return err
}

// writeNCFInt writes integer data to variable Var in netcdf file f.
func writeNCFInt(f *cdf.File, Var string, data []int32) error {
	end := f.Header.Lengths(Var)
	start := make([]int, len(end))
	w := f.Writer(Var, start, end)
	_, err := w.Write(data)
	return err
}

// LoadFlightLevelSet loads flight-level data from a netcdf file.
func LoadFlightLevelSet(rw cdf.ReaderWriterAt) (*FlightLevelSet, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("windsaloft.LoadFlightLevelSet: %v", err)
	}

	dataVersion, ok := f.Header.GetAttribute("", "data_version").(string)
	if !ok {
		return nil, fmt.Errorf("windsaloft.LoadFlightLevelSet: file has no data_version attribute")
	}
	if dataVersion != DataVersion {
		return nil, fmt.Errorf("windsaloft.LoadFlightLevelSet: data version %s is incompatible "+
			"with the required version %s", dataVersion, DataVersion)
	}

	o := new(FlightLevelSet)
	for _, v := range f.Header.Variables() {
		dims := f.Header.Lengths(v)
		n := 1
		for _, d := range dims {
			n *= d
		}
		r := f.Reader(v, nil, nil)
		switch v {
		case "fl":
			tmp := make([]int32, n)
			if _, err := r.Read(tmp); err != nil {
				return nil, fmt.Errorf("windsaloft.LoadFlightLevelSet: reading fl: %v", err)
			}
			o.Ladder = make([]int, n)
			for i, fl := range tmp {
				o.Ladder[i] = int(fl)
			}
		case "XLAT", "XLONG":
			data, err := read32(r, dims, n)
			if err != nil {
				return nil, fmt.Errorf("windsaloft.LoadFlightLevelSet: reading %s: %v", v, err)
			}
			if v == "XLAT" {
				o.Lats = data
			} else {
				o.Lons = data
			}
		default:
			data, err := read32(r, dims, n)
			if err != nil {
				return nil, fmt.Errorf("windsaloft.LoadFlightLevelSet: reading %s: %v", v, err)
			}
			description, ok := f.Header.GetAttribute(v, "description").(string)
			if !ok {
				return nil, fmt.Errorf("windsaloft.LoadFlightLevelSet: variable %s has no description attribute", v)
			}
			units, ok := f.Header.GetAttribute(v, "units").(string)
			if !ok {
				return nil, fmt.Errorf("windsaloft.LoadFlightLevelSet: variable %s has no units attribute", v)
			}
			o.AddVariable(v, description, units, data)
		}
	}
	return o, nil
}

// read32 reads a float32 netcdf variable into a DenseArray with the
// given dimensions.
func read32(r cdf.Reader, dims []int, n int) (*sparse.DenseArray, error) {
	tmp := make([]float32, n)
	if _, err := r.Read(tmp); err != nil {
		return nil, err
	}
	data := sparse.ZerosDense(dims...)
	for i, val := range tmp {
		data.Elements[i] = float64(val)
	}
	return data, nil
}
