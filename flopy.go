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

// Package flopy reads and writes MODFLOW fixed-format input decks.
// It models each package input file (discretization, well stress, ...)
// as an in-memory structure with derived grid quantities, and
// serializes the structures back to the same fixed-format layout.
package flopy

import (
	"fmt"
	"io"
	"log"

	"github.com/ctessum/sparse"
)

// Version gives the version number.
const Version = "0.2.0"

// A Package is one MODFLOW input file modeled in memory.
type Package interface {
	// PackageName is the MODFLOW name of the package ("DIS", "WEL", ...).
	PackageName() string

	// WriteTo serializes the package in its fixed-format file layout.
	WriteTo(w io.Writer) error
}

// Model is a container for the packages making up one groundwater-flow
// model. It holds the information that crosses package boundaries: the
// package registry, the active-cell mask, and verbosity. It is a
// single-writer context; no concurrent access is expected.
type Model struct {
	Name string

	// Verbose specifies whether progress information
	// should be written to the standard logger while loading files.
	Verbose bool

	// Ibound is the active-cell mask with shape (nlay, nrow, ncol).
	// Cells where Ibound is zero do not participate in the simulation.
	// A nil Ibound means all cells are active.
	Ibound *sparse.DenseArray

	packages []Package
}

// NewModel returns a new model container with the given name.
func NewModel(name string) *Model {
	return &Model{Name: name}
}

// AddPackage registers p with the model, replacing any
// previously registered package with the same name.
func (m *Model) AddPackage(p Package) {
	for i, pp := range m.packages {
		if pp.PackageName() == p.PackageName() {
			m.packages[i] = p
			return
		}
	}
	m.packages = append(m.packages, p)
}

// GetPackage returns the registered package with the given
// MODFLOW name, or nil if there isn't one.
func (m *Model) GetPackage(name string) Package {
	for _, p := range m.packages {
		if p.PackageName() == name {
			return p
		}
	}
	return nil
}

// Dis returns the model's discretization package.
func (m *Model) Dis() *Dis {
	if d, ok := m.GetPackage("DIS").(*Dis); ok {
		return d
	}
	return nil
}

// NrowNcolNlayNper returns the model grid dimensions as defined by the
// discretization package, or an error if no discretization package
// has been registered.
func (m *Model) NrowNcolNlayNper() (nrow, ncol, nlay, nper int, err error) {
	d := m.Dis()
	if d == nil {
		return 0, 0, 0, 0, fmt.Errorf("flopy: model '%s' has no discretization package", m.Name)
	}
	return d.Nrow, d.Ncol, d.Nlay, d.Nper, nil
}

// active reports whether the cell at (k, i, j) participates in
// the simulation according to the Ibound mask.
func (m *Model) active(k, i, j int) bool {
	if m == nil || m.Ibound == nil {
		return true
	}
	return m.Ibound.Get(k, i, j) != 0
}

func (m *Model) logf(format string, args ...interface{}) {
	if m != nil && m.Verbose {
		log.Printf(format, args...)
	}
}
