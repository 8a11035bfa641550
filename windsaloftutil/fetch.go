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
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const nomadsBase = "https://nomads.ncep.noaa.gov/pub/data/nccf/com/rap/prod"

// Cycle returns the RAP forecast date ("YYYYMMDD") and cycle hour for the
// given time: the 12Z cycle once the hour reaches 12 UTC, otherwise 00Z.
// Callers pass the time explicitly; nothing here reads the wall clock.
func Cycle(t time.Time) (date, cycle string) {
	date = t.Format("20060102")
	cycle = "00"
	if t.Hour() >= 12 {
		cycle = "12"
	}
	return date, cycle
}

// ForecastURL returns the NOMADS URL of the RAP forecast file for the given
// date ("YYYYMMDD"), cycle hour ("00".."21"), and forecast hour.
func ForecastURL(date, cycle string, forecastHour int) string {
	return fmt.Sprintf("%s/rap.%s/rap.t%sz.awp130pgrbf%02d.grib2",
		nomadsBase, date, cycle, forecastHour)
}

// Fetch downloads the RAP forecast file for the given date, cycle, and
// forecast hour from NOMADS and saves it to savePath. There are no retries;
// a failed download is returned as an error.
func Fetch(date, cycle string, forecastHour int, savePath string) error {
	return fetchURL(ForecastURL(date, cycle, forecastHour), savePath)
}

// fetchURL downloads url and saves it to savePath.
func fetchURL(url, savePath string) error {
	Log.WithFields(logrus.Fields{
		"url":  url,
		"dest": savePath,
	}).Info("downloading forecast")

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("windsaloft: downloading %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("windsaloft: downloading %s: HTTP %s", url, resp.Status)
	}

	w, err := os.Create(savePath)
	if err != nil {
		return fmt.Errorf("windsaloft: creating %s: %v", savePath, err)
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		w.Close()
		return fmt.Errorf("windsaloft: saving %s: %v", savePath, err)
	}
	if err := w.Close(); err != nil {
		return err
	}
	Log.WithFields(logrus.Fields{
		"dest":  savePath,
		"bytes": n,
	}).Info("download finished")
	return nil
}

// maybeDownload checks if the input is an existing file locally. If not, and
// the input is an http(s) URL, it downloads the file and returns the path to
// the downloaded file.
func maybeDownload(path string) (string, error) {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return downloadHTTP(path)
	}
	return path, nil
}

// downloadHTTP downloads a file from the specified URL and returns the path
// to the downloaded file.
func downloadHTTP(url string) (string, error) {
	dir, err := ioutil.TempDir("", "windsaloft")
	if err != nil {
		return "", fmt.Errorf("windsaloft: failed creating temporary download directory: %v", err)
	}
	fname := filepath.Join(dir, filepath.Base(url))
	w, err := os.Create(fname)
	if err != nil {
		return "", fmt.Errorf("windsaloft: failed creating file for download: %v", err)
	}
	resp, err := http.Get(url)
	if err != nil {
		w.Close()
		return "", fmt.Errorf("windsaloft: downloading %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		w.Close()
		return "", fmt.Errorf("windsaloft: downloading %s: HTTP %s", url, resp.Status)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		w.Close()
		return "", fmt.Errorf("windsaloft: downloading %s: %v", url, err)
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return fname, nil
}
