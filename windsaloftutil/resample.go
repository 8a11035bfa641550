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

package windsaloftutil

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialwx/windsaloft"
)

// Log receives status messages from the commands in this package.
var Log logrus.FieldLogger = logrus.StandardLogger()

// Resample reads pressure-level grids from inputFile (a local NetCDF file
// or an http(s) URL), interpolates them onto the flight levels in ladder,
// and writes the result to outputFile as NetCDF. If jsonFile or csvDir are
// not empty, JSON and CSV renderings are written there as well. Temperature
// is carried through the interpolation when includeTemp is true and the
// input carries it.
func Resample(inputFile, outputFile, jsonFile, csvDir string, ladder []int, includeTemp bool) error {
	if inputFile == "" {
		return fmt.Errorf("windsaloft: configuration variable InputFile is not specified")
	}
	if outputFile == "" {
		return fmt.Errorf("windsaloft: configuration variable OutputFile is not specified")
	}
	local, err := maybeDownload(inputFile)
	if err != nil {
		return err
	}

	src := windsaloft.NewRAPSource(local)
	height, u, v, temp, err := windsaloft.LoadLevelGrids(src)
	if err != nil {
		return err
	}
	if !includeTemp {
		temp = nil
	}

	start := time.Now()
	set, err := windsaloft.Resample(height, u, v, temp, ladder)
	if err != nil {
		return err
	}
	Log.WithFields(logrus.Fields{
		"input":   local,
		"levels":  len(ladder),
		"seconds": time.Since(start).Seconds(),
	}).Info("resampling finished")

	w, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("windsaloft: creating output file: %v", err)
	}
	if err := set.Write(w); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	if jsonFile != "" {
		jf, err := os.Create(jsonFile)
		if err != nil {
			return fmt.Errorf("windsaloft: creating JSON output file: %v", err)
		}
		if err := set.WriteJSON(jf); err != nil {
			jf.Close()
			return err
		}
		if err := jf.Close(); err != nil {
			return err
		}
	}
	if csvDir != "" {
		if err := set.WriteCSV(csvDir); err != nil {
			return err
		}
	}
	return nil
}
