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

package flopyutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/andyrich/flopy"
)

// ModelManifest describes the input deck files making up one model.
// It is the schema for the TOML file named by the --config flag.
type ModelManifest struct {
	// Name is the model name, used in log messages.
	Name string

	// DisFile and WelFile are paths to the deck files, relative to
	// the manifest file's location unless absolute.
	DisFile string
	WelFile string

	// OutputFile is where command results are written.
	OutputFile string

	// OutputVariables maps names to expressions over the grid arrays
	// for the stats command.
	OutputVariables map[string]string
}

// LoadManifest reads a model manifest in TOML format.
func LoadManifest(r io.Reader) (*ModelManifest, error) {
	spec := new(ModelManifest)
	if _, err := toml.DecodeReader(r, spec); err != nil {
		return nil, fmt.Errorf("flopyutil: parsing model manifest: %v", err)
	}
	return spec, nil
}

// LoadManifestFile reads the model manifest file at path, resolving
// the deck file paths it names relative to the manifest's directory.
func LoadManifestFile(path string) (*ModelManifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("flopyutil: opening model manifest: %v", err)
	}
	defer f.Close()
	spec, err := LoadManifest(f)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	spec.DisFile = relToDir(spec.DisFile, dir)
	spec.WelFile = relToDir(spec.WelFile, dir)
	return spec, nil
}

func relToDir(path, dir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// LoadModel builds a model container holding the packages the
// manifest names.
func (spec *ModelManifest) LoadModel() (*flopy.Model, error) {
	if spec.DisFile == "" {
		return nil, fmt.Errorf("flopyutil: manifest names no discretization file")
	}
	m := flopy.NewModel(spec.Name)
	if _, err := flopy.ReadDisFile(spec.DisFile, m); err != nil {
		return nil, err
	}
	if spec.WelFile != "" {
		if _, err := flopy.ReadWelFile(spec.WelFile, m); err != nil {
			return nil, err
		}
	}
	return m, nil
}
