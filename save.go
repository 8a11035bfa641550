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
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ctessum/sparse"
)

// WriteJSON writes s to w as a JSON mapping from flight level to field name
// to a rows×cols array of integers, with null marking missing points.
func (s *FlightLevelSet) WriteJSON(w io.Writer) error {
	out := make(map[string]map[string][][]*int, len(s.Ladder))
	for l, fl := range s.Ladder {
		fields := make(map[string][][]*int, len(s.Data))
		for _, name := range s.fieldNames() {
			data := s.Data[name].Data
			rows := make([][]*int, data.Shape[1])
			for j := 0; j < data.Shape[1]; j++ {
				row := make([]*int, data.Shape[2])
				for i := 0; i < data.Shape[2]; i++ {
					if val := data.Get(l, j, i); !math.IsNaN(val) {
						v := int(val)
						row[i] = &v
					}
				}
				rows[j] = row
			}
			fields[name] = rows
		}
		out[strconv.Itoa(fl)] = fields
	}
	if err := json.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("windsaloft: encoding flight-level JSON: %v", err)
	}
	return nil
}

// WriteCSV writes s into directory dir as one file per flight level per
// field, named FL<level>_<field>.csv. Each file holds a rows×cols table of
// integers; missing points are empty cells.
func (s *FlightLevelSet) WriteCSV(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("windsaloft: creating CSV output directory: %v", err)
	}
	for _, name := range s.fieldNames() {
		data := s.Data[name].Data
		for l, fl := range s.Ladder {
			fname := filepath.Join(dir, fmt.Sprintf("FL%03d_%s.csv", fl, name))
			if err := writeLevelCSV(fname, data, l); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeLevelCSV writes one level of data (index l along the first
// dimension) to the CSV file fname.
func writeLevelCSV(fname string, data *sparse.DenseArray, l int) error {
	f, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("windsaloft: creating CSV file: %v", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	record := make([]string, data.Shape[2])
	for j := 0; j < data.Shape[1]; j++ {
		for i := 0; i < data.Shape[2]; i++ {
			if val := data.Get(l, j, i); math.IsNaN(val) {
				record[i] = ""
			} else {
				record[i] = strconv.Itoa(int(val))
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("windsaloft: writing CSV file %s: %v", fname, err)
		}
	}
	w.Flush()
	return w.Error()
}
