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
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/lnashier/viper"
	"github.com/spatialwx/windsaloft"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to WindsAloft.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "InputFile",
			usage: `
              InputFile specifies the NetCDF file holding the pressure-level
              height, wind, and temperature grids to be resampled. It may be
              a local path or an http(s) URL.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{resampleCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile specifies the path where the resampled flight-level
              NetCDF data should be written.`,
			shorthand:  "o",
			defaultVal: "windsaloft_output.ncf",
			flagsets:   []*pflag.FlagSet{resampleCmd.Flags()},
		},
		{
			name: "JSONFile",
			usage: `
              JSONFile specifies an optional path for a JSON rendering of the
              flight-level data, one object per flight level. Empty disables
              JSON output.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{resampleCmd.Flags()},
		},
		{
			name: "CSVDir",
			usage: `
              CSVDir specifies an optional directory for CSV renderings of
              the flight-level data, one file per flight level per field.
              Empty disables CSV output.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{resampleCmd.Flags()},
		},
		{
			name: "FlightLevels",
			usage: `
              FlightLevels specifies the target flight levels (hundreds of
              feet) to resample onto, in increasing order.`,
			defaultVal: windsaloft.DefaultLadder(),
			flagsets:   []*pflag.FlagSet{resampleCmd.Flags()},
		},
		{
			name: "IncludeTemperature",
			usage: `
              IncludeTemperature specifies whether interpolated temperature
              should be included in the output in addition to wind.`,
			shorthand:  "t",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{resampleCmd.Flags()},
		},
		{
			name: "Fetch.Date",
			usage: `
              Fetch.Date specifies the forecast date to download.
              Format = "YYYYMMDD". Empty means the current UTC date.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags()},
		},
		{
			name: "Fetch.Cycle",
			usage: `
              Fetch.Cycle specifies the forecast cycle hour to download
              ("00" or "12"). Empty means the most recent cycle for the
              current UTC time.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags()},
		},
		{
			name: "Fetch.ForecastHour",
			usage: `
              Fetch.ForecastHour specifies the forecast hour to download.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags()},
		},
		{
			name: "Fetch.SavePath",
			usage: `
              Fetch.SavePath specifies where the downloaded forecast file
              should be saved.`,
			defaultVal: "rap_latest.grib2",
			flagsets:   []*pflag.FlagSet{fetchCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("WINDSALOFT")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case []int:
				if option.shorthand == "" {
					set.IntSlice(option.name, option.defaultVal.([]int), option.usage)
				} else {
					set.IntSliceP(option.name, option.shorthand, option.defaultVal.([]int), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(resampleCmd)
	Root.AddCommand(fetchCmd)
}

// toIntSlice converts a configuration value to a list of integers,
// accounting for the fact that a value bound to a command-line flag comes
// back as its string representation.
func toIntSlice(s interface{}) ([]int, error) {
	if str, ok := s.(string); ok {
		var o []int
		if err := json.Unmarshal([]byte(str), &o); err != nil {
			return nil, err
		}
		return o, nil
	}
	return cast.ToIntSliceE(s)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("windsaloft: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "windsaloft",
	Short: "A winds-aloft flight-level resampler.",
	Long: `WindsAloft resamples pressure-level atmospheric model output onto aviation
flight levels, deriving wind speed and direction at every grid point.
Use the subcommands specified below to access the functionality.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'WINDSALOFT_var' where 'var'
is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of WindsAloft.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("WindsAloft v%s\n", windsaloft.Version)
	},
	DisableAutoGenTag: true,
}

// resampleCmd is a command that resamples pressure-level data onto flight
// levels and writes the results.
var resampleCmd = &cobra.Command{
	Use:   "resample",
	Short: "Resample pressure-level data onto flight levels.",
	Long: `resample reads pressure-level height, wind, and temperature grids from the
input NetCDF file, interpolates them onto the configured flight levels, and
writes the derived flight-level fields as NetCDF and, optionally, JSON and
CSV.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ladder, err := toIntSlice(Cfg.Get("FlightLevels"))
		if err != nil {
			return fmt.Errorf("windsaloft: FlightLevels: %v", err)
		}
		return Resample(
			os.ExpandEnv(Cfg.GetString("InputFile")),
			os.ExpandEnv(Cfg.GetString("OutputFile")),
			os.ExpandEnv(Cfg.GetString("JSONFile")),
			os.ExpandEnv(Cfg.GetString("CSVDir")),
			ladder,
			Cfg.GetBool("IncludeTemperature"),
		)
	},
	DisableAutoGenTag: true,
}

// fetchCmd is a command that downloads a raw forecast file from NOMADS.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download a RAP forecast file.",
	Long: `fetch downloads a raw RAP forecast file from the NOAA NOMADS server for the
configured date, cycle, and forecast hour. If no date or cycle is given, the
most recent cycle for the current UTC time is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		date := Cfg.GetString("Fetch.Date")
		cycle := Cfg.GetString("Fetch.Cycle")
		if date == "" || cycle == "" {
			d, c := Cycle(time.Now().UTC())
			if date == "" {
				date = d
			}
			if cycle == "" {
				cycle = c
			}
		}
		return Fetch(date, cycle, Cfg.GetInt("Fetch.ForecastHour"),
			os.ExpandEnv(Cfg.GetString("Fetch.SavePath")))
	},
	DisableAutoGenTag: true,
}
