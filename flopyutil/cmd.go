/*
Copyright © 2018 the Flopy authors.
This file is part of Flopy.

Flopy is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Flopy is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Flopy.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package flopyutil provides the configuration and command-line
// interface for working with MODFLOW input decks.
package flopyutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/andyrich/flopy"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var logger *logrus.Logger

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	logger = logrus.StandardLogger()
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableSorting:  true,
	})

	// Options are the configuration options available to the flopy
	// commands.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the location of a TOML model manifest
              describing the input deck files of one model.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "verbose",
			usage: `
              verbose specifies whether progress information should be
              logged while loading files.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "DisFile",
			usage: `
              DisFile is the path to the discretization package file.`,
			defaultVal: "",
			flagsets: []*pflag.FlagSet{checkCmd.Flags(), convertCmd.Flags(),
				statsCmd.Flags(), wellsCmd.Flags()},
		},
		{
			name: "WelFile",
			usage: `
              WelFile is the path to the well stress package file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags(), wellsCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is where command results are written: the
              rewritten deck for 'convert', the spreadsheet for 'wells'.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags(), wellsCmd.Flags()},
		},
		{
			name: "level",
			usage: `
              level selects the check analysis level. At level 0 only
              summary results are reported; at level 1 every offending
              cell is listed.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{checkCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables maps names to expressions over the grid
              arrays (thickness, volume, top, botm, delr, delc, perlen)
              to be evaluated by the stats command, for example
              {"totalVolume":"sum(volume)"}.`,
			defaultVal: map[string]string{
				"minThickness": "min(thickness)",
				"totalVolume":  "sum(volume)",
			},
			flagsets: []*pflag.FlagSet{statsCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("FLOPY")

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
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}

	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(checkCmd)
	Root.AddCommand(convertCmd)
	Root.AddCommand(statsCmd)
	Root.AddCommand(wellsCmd)
}

// setConfig finds and reads in the model manifest, if there is one.
// Deck paths the manifest names resolve relative to the manifest's
// directory; values set on the command line win over the manifest.
func setConfig() error {
	if Cfg.GetBool("verbose") {
		logrus.SetLevel(logrus.DebugLevel)
	}
	cfgpath := Cfg.GetString("config")
	if cfgpath == "" {
		return nil
	}
	spec, err := LoadManifestFile(os.ExpandEnv(cfgpath))
	if err != nil {
		return err
	}
	set := func(key string, val interface{}) {
		if !flagChanged(key) {
			Cfg.Set(key, val)
		}
	}
	if spec.Name != "" {
		set("ModelName", spec.Name)
	}
	if spec.DisFile != "" {
		set("DisFile", spec.DisFile)
	}
	if spec.WelFile != "" {
		set("WelFile", spec.WelFile)
	}
	if spec.OutputFile != "" {
		set("OutputFile", spec.OutputFile)
	}
	if len(spec.OutputVariables) != 0 {
		set("OutputVariables", spec.OutputVariables)
	}
	return nil
}

// flagChanged reports whether the named option was set explicitly on
// the command line.
func flagChanged(name string) bool {
	for _, option := range options {
		if option.name != name || len(option.flagsets) == 0 {
			continue
		}
		if f := option.flagsets[0].Lookup(name); f != nil {
			return f.Changed
		}
	}
	return false
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "flopy",
	Short: "Read, check, and write MODFLOW input decks.",
	Long: `flopy models MODFLOW fixed-format input files in memory.
Use the subcommands specified below to check grid geometry, normalize
deck files, compute grid statistics, and export well schedules.

Configuration can be changed by using a TOML model manifest (and
providing the path to the file using the --config flag), by using
command-line arguments, or by setting environment variables in the
format 'FLOPY_var' where 'var' is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of flopy.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("flopy v%s\n", flopy.Version)
	},
	DisableAutoGenTag: true,
}

// loadDis builds a model container and loads the configured
// discretization package into it.
func loadDis() (*flopy.Model, *flopy.Dis, error) {
	path := os.ExpandEnv(Cfg.GetString("DisFile"))
	if path == "" {
		return nil, nil, fmt.Errorf("flopyutil: no discretization file specified")
	}
	m := flopy.NewModel(Cfg.GetString("ModelName"))
	m.Verbose = Cfg.GetBool("verbose")
	d, err := flopy.ReadDisFile(path, m)
	if err != nil {
		return nil, nil, err
	}
	return m, d, nil
}

// checkCmd checks the grid geometry for zero and negative cell
// thicknesses.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check grid geometry.",
	Long: `check loads the discretization package and verifies that every
active cell has a strictly positive thickness, reporting summary
statistics and, at level 1, every offending cell.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, d, err := loadDis()
		if err != nil {
			return err
		}
		thk := d.Thickness().Elements
		logger.WithFields(logrus.Fields{
			"min":   stats.StatsMin(thk),
			"max":   stats.StatsMax(thk),
			"mean":  stats.StatsMean(thk),
			"stdev": stats.StatsSampleStandardDeviation(thk),
		}).Info("cell thickness")

		level := Cfg.GetInt("level")
		ok, violations := d.CheckThickness(level)
		if ok {
			logger.Info("specified cell thickness is OK")
			return nil
		}
		for _, v := range violations {
			logger.WithFields(logrus.Fields{
				"layer":     v.Layer + 1,
				"row":       v.Row + 1,
				"column":    v.Column + 1,
				"thickness": v.Thickness,
			}).Warn("nonpositive cell thickness")
		}
		return fmt.Errorf("flopyutil: negative or zero cell thickness specified")
	},
	DisableAutoGenTag: true,
}

// convertCmd reads a deck and writes it back out in normalized form.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Normalize a deck file.",
	Long: `convert parses the discretization package (and the well package,
if one is given) and rewrites it in the fixed-format layout this
package produces, normalizing array control records and field widths.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, d, err := loadDis()
		if err != nil {
			return err
		}
		out := os.ExpandEnv(Cfg.GetString("OutputFile"))
		if out == "" {
			return fmt.Errorf("flopyutil: no output file specified")
		}
		if err := d.WriteFile(out); err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{"file": out}).Info("wrote discretization package")

		if welPath := os.ExpandEnv(Cfg.GetString("WelFile")); welPath != "" {
			w, err := flopy.ReadWelFile(welPath, m)
			if err != nil {
				return err
			}
			welOut := out + ".wel"
			if err := w.WriteFile(welOut); err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{"file": welOut}).Info("wrote well package")
		}
		return nil
	},
	DisableAutoGenTag: true,
}

// statsCmd evaluates expressions over the grid arrays.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compute grid statistics.",
	Long: `stats loads the discretization package and evaluates the
configured output variable expressions over its arrays.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, d, err := loadDis()
		if err != nil {
			return err
		}
		expressions, err := GetStringMapString("OutputVariables", Cfg)
		if err != nil {
			return err
		}
		gs, err := NewGridStats(expressions, nil)
		if err != nil {
			return err
		}
		results, err := gs.Evaluate(d)
		if err != nil {
			return err
		}
		for name, v := range results {
			cmd.Printf("%s: %G\n", name, v)
		}
		return nil
	},
	DisableAutoGenTag: true,
}

// wellsCmd exports the well schedule to a spreadsheet.
var wellsCmd = &cobra.Command{
	Use:   "wells",
	Short: "Export the well schedule.",
	Long: `wells loads the well stress package and exports the resolved
per-period well schedule (with carried-forward lists expanded) to a
Microsoft Excel workbook.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, d, err := loadDis()
		if err != nil {
			return err
		}
		welPath := os.ExpandEnv(Cfg.GetString("WelFile"))
		if welPath == "" {
			return fmt.Errorf("flopyutil: no well file specified")
		}
		w, err := flopy.ReadWelFile(welPath, m)
		if err != nil {
			return err
		}
		out := os.ExpandEnv(Cfg.GetString("OutputFile"))
		if out == "" {
			return fmt.Errorf("flopyutil: no output file specified")
		}
		if err := WriteWellWorkbook(out, w, d.Nper); err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{"file": out}).Info("wrote well schedule")
		return nil
	},
	DisableAutoGenTag: true,
}

// GetStringMapString returns a map[string]string from a viper
// configuration, accounting for the fact that it might be a json
// object if it was set from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapString(v), nil
	case string:
		o := make(map[string]string)
		if err := json.NewDecoder(bytes.NewBufferString(v)).Decode(&o); err != nil {
			return nil, fmt.Errorf("flopyutil: parsing %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("flopyutil: invalid type for %s: %#v", varName, i)
	}
}
