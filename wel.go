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

package flopy

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// defaultWelHeading is written as the first comment line of well
// files that don't specify their own heading.
const defaultWelHeading = "# Well file for MODFLOW, generated by Flopy."

// A WellRecord is one point source/sink: the cell it acts on and its
// volumetric flux (negative for pumping). Indices are zero-based in
// memory; the file format is one-based. Aux holds the values of the
// auxiliary variables declared by the package options, in declaration
// order.
type WellRecord struct {
	Layer, Row, Column int
	Flux               float64
	Aux                []float64
}

// Wel is the MODFLOW well stress package: a list of well records for
// each stress period. Stress periods without their own list reuse the
// most recent prior period's list ("steady list carries forward"),
// unless explicitly cleared with an empty list.
type Wel struct {
	// Ipakcb is the cell-by-cell budget flag and unit number.
	Ipakcb int

	// Options holds the package option tokens (NOPRINT, AUX pairs...).
	Options []string
	// AuxNames are the declared auxiliary variable names, in order.
	AuxNames []string

	// Specify, Phiramp and PhirampUnit carry the MODFLOW-NWT SPECIFY
	// option for ramping well flux in drying cells.
	Specify     bool
	Phiramp     float64
	PhirampUnit int

	Heading string

	// periods holds the explicitly specified stress periods only: an
	// empty (non-nil) list means the period was cleared; absence means
	// the period carries the previous list forward.
	periods map[int][]WellRecord

	model *Model
}

// WelConfig holds the raw field values for constructing a Wel.
type WelConfig struct {
	Ipakcb           int
	Options          []string
	StressPeriodData map[int][]WellRecord
	Specify          bool
	Phiramp          float64
	PhirampUnit      int
	Heading          string
}

// NewWel constructs a well package and registers it with m (which may
// be nil for standalone use). Every record's auxiliary value count
// must match the aux variables declared in cfg.Options, or the
// construction fails with a ShapeError.
func NewWel(m *Model, cfg WelConfig) (*Wel, error) {
	w := &Wel{
		Ipakcb:      cfg.Ipakcb,
		Options:     cfg.Options,
		Specify:     cfg.Specify,
		Phiramp:     cfg.Phiramp,
		PhirampUnit: cfg.PhirampUnit,
		Heading:     cfg.Heading,
		periods:     make(map[int][]WellRecord),
		model:       m,
	}
	if w.Heading == "" {
		w.Heading = defaultWelHeading
	}
	w.AuxNames = auxNames(cfg.Options)
	for per, recs := range cfg.StressPeriodData {
		for _, rec := range recs {
			if len(rec.Aux) != len(w.AuxNames) {
				return nil, &ShapeError{
					Name: fmt.Sprintf("wel period %d aux values", per),
					Want: []int{len(w.AuxNames)},
					Got:  len(rec.Aux),
				}
			}
		}
		w.periods[per] = append([]WellRecord(nil), recs...)
	}
	if m != nil {
		m.AddPackage(w)
	}
	return w, nil
}

// auxNames extracts the auxiliary variable names declared by AUX or
// AUXILIARY option tokens.
func auxNames(options []string) []string {
	var names []string
	for i := 0; i < len(options); i++ {
		switch strings.ToUpper(options[i]) {
		case "AUX", "AUXILIARY":
			if i+1 < len(options) {
				names = append(names, options[i+1])
				i++
			}
		}
	}
	return names
}

// PackageName implements the Package interface.
func (w *Wel) PackageName() string { return "WEL" }

// Records returns the well list in effect for the given stress period,
// resolving the carry-forward rule: a period without its own list
// reuses the most recent prior period's list. The returned slice is
// the package's own storage; callers must not modify it.
func (w *Wel) Records(period int) []WellRecord {
	for p := period; p >= 0; p-- {
		if recs, ok := w.periods[p]; ok {
			return recs
		}
	}
	return nil
}

// SetRecords replaces the well list for the given stress period. An
// empty (non-nil) list explicitly clears the period, stopping the
// carry-forward of earlier lists.
func (w *Wel) SetRecords(period int, recs []WellRecord) {
	w.periods[period] = append([]WellRecord(nil), recs...)
}

// AddRecord inserts one record into the given stress period's list at
// the given position, replacing the record already there. An index of
// exactly the current list length appends. Anything else fails with an
// IndexError. If the period was inheriting a carried-forward list, the
// mutated copy becomes the period's own list.
func (w *Wel) AddRecord(period, index int, rec WellRecord) error {
	if len(rec.Aux) != len(w.AuxNames) {
		return &ShapeError{Name: "aux values", Want: []int{len(w.AuxNames)}, Got: len(rec.Aux)}
	}
	cur := w.Records(period)
	if index < 0 || index > len(cur) {
		return &IndexError{Op: "wel: add record", Index: index, Length: len(cur)}
	}
	recs := append([]WellRecord(nil), cur...)
	if index == len(recs) {
		recs = append(recs, rec)
	} else {
		recs[index] = rec
	}
	w.periods[period] = recs
	return nil
}

// MaxActiveCount returns the maximum number of wells active in any
// stress period, sizing the MXACTW field of the file header.
func (w *Wel) MaxActiveCount() int {
	max := 0
	for t := 0; t < w.nper(); t++ {
		if n := len(w.Records(t)); n > max {
			max = n
		}
	}
	return max
}

// Ncells returns the maximum number of cells that have a well,
// which other packages (e.g. the MT3DMS source/sink mixing package)
// use for sizing.
func (w *Wel) Ncells() int { return w.MaxActiveCount() }

// nper returns the simulation's stress period count: the model's
// discretization defines it, falling back to the latest explicitly
// specified period for standalone packages.
func (w *Wel) nper() int {
	if w.model != nil {
		if d := w.model.Dis(); d != nil {
			return d.Nper
		}
	}
	n := 0
	for per := range w.periods {
		if per+1 > n {
			n = per + 1
		}
	}
	return n
}

// WriteFile writes the package to the named file.
func (w *Wel) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("flopy: creating wel file: %v", err)
	}
	if err := w.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTo serializes the package in the fixed-format well file layout.
func (w *Wel) WriteTo(out io.Writer) error {
	if _, err := fmt.Fprintf(out, "%s\n", w.Heading); err != nil {
		return err
	}
	line := fmt.Sprintf("%10d%10d", w.MaxActiveCount(), w.Ipakcb)
	for _, opt := range w.Options {
		line += " " + opt
	}
	if _, err := fmt.Fprintf(out, "%s\n", line); err != nil {
		return err
	}
	if w.Specify {
		if _, err := fmt.Fprintf(out, "SPECIFY %10.5G %9d\n", w.Phiramp, w.PhirampUnit); err != nil {
			return err
		}
	}
	seen := false // whether any period has been specified yet
	for t := 0; t < w.nper(); t++ {
		recs, explicit := w.periods[t]
		if !explicit {
			itmp := 0
			if seen {
				itmp = -1
			}
			if _, err := fmt.Fprintf(out, "%10d\n", itmp); err != nil {
				return err
			}
			continue
		}
		seen = true
		if _, err := fmt.Fprintf(out, "%10d\n", len(recs)); err != nil {
			return err
		}
		for _, rec := range recs {
			// one-based on disk
			if _, err := fmt.Fprintf(out, "%10d%10d%10d%15.7G",
				rec.Layer+1, rec.Row+1, rec.Column+1, rec.Flux); err != nil {
				return err
			}
			for _, v := range rec.Aux {
				if _, err := fmt.Fprintf(out, arrayFieldFormat, v); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(out, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// welAction is the instruction a period's ITMP tag resolves to.
type welAction int

const (
	welCarryForward welAction = iota // ITMP < 0: reuse the previous list
	welClear                         // ITMP == 0: empty list
	welReplace                       // ITMP > 0: read that many records
)

// welInstruction is one stress period's parsed instruction.
type welInstruction struct {
	action  welAction
	records []WellRecord
}

// ReadWelFile loads a well package from the named file and registers
// it with m, whose discretization package defines the stress period
// count.
func ReadWelFile(path string, m *Model) (*Wel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("flopy: opening wel file: %v", err)
	}
	defer f.Close()
	nper := 0
	if m != nil {
		if d := m.Dis(); d != nil {
			nper = d.Nper
		}
	}
	return ReadWel(f, path, nper, m)
}

// ReadWel loads a well package from f. nper is the number of stress
// periods to read; the path is used for error reporting only, and m
// may be nil.
func ReadWel(f io.Reader, path string, nper int, m *Model) (*Wel, error) {
	if nper < 1 {
		return nil, fmt.Errorf("flopy: wel: stress period count %d must be positive", nper)
	}
	if m != nil {
		m.logf("loading wel package file %s", path)
	}
	r := newDeckReader(f, path)

	line, comments, err := r.skipComments()
	if err != nil {
		return nil, err
	}

	// Optional PARAMETER record. The parameter system is deprecated;
	// a zero parameter count is tolerated and skipped.
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), "PARAMETER") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, r.errf("PARAMETER record needs a parameter count")
		}
		np, err := r.parseInt(fields[1])
		if err != nil {
			return nil, err
		}
		if np > 0 {
			return nil, r.errf("well parameters are not supported (NPWEL=%d)", np)
		}
		if line, err = r.nextLine(); err != nil {
			return nil, err
		}
	}

	fields := strings.Fields(line)
	if len(fields) < 1 {
		return nil, r.errf("well header line needs MXACTW")
	}
	// MXACTW is recomputed from the data on write; read and discard.
	if _, err := r.parseInt(fields[0]); err != nil {
		return nil, err
	}
	ipakcb := 0
	if len(fields) > 1 {
		if ipakcb, err = r.parseInt(fields[1]); err != nil {
			return nil, err
		}
	}
	options := fields[2:]
	aux := auxNames(options)

	cfg := WelConfig{Ipakcb: ipakcb, Options: options}
	if len(comments) > 0 {
		cfg.Heading = comments[0]
	}

	nitems := 4 + len(aux)
	instructions := make([]welInstruction, 0, nper)
	for t := 0; t < nper; t++ {
		if line, err = r.nextLine(); err != nil {
			return nil, err
		}

		// MODFLOW-NWT well files may carry a SPECIFY record before a
		// period's ITMP line.
		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), "SPECIFY") {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return nil, r.errf("SPECIFY record needs a phiramp value")
			}
			cfg.Specify = true
			if cfg.Phiramp, err = r.parseFloat(fields[1]); err != nil {
				return nil, err
			}
			cfg.PhirampUnit = 2
			if len(fields) > 2 {
				if cfg.PhirampUnit, err = r.parseInt(fields[2]); err != nil {
					return nil, err
				}
			}
			if line, err = r.nextLine(); err != nil {
				return nil, err
			}
		}

		fields := strings.Fields(line)
		if len(fields) < 1 {
			return nil, r.errf("stress period %d needs an ITMP value", t+1)
		}
		itmp, err := r.parseInt(fields[0])
		if err != nil {
			return nil, err
		}
		itmpnp := 0
		if len(fields) > 1 {
			if itmpnp, err = r.parseInt(fields[1]); err != nil {
				return nil, err
			}
		}

		ins := welInstruction{action: welCarryForward}
		switch {
		case itmp == 0:
			ins.action = welClear
		case itmp > 0:
			ins.action = welReplace
			ins.records = make([]WellRecord, itmp)
			for n := 0; n < itmp; n++ {
				line, err := r.nextLine()
				if err != nil {
					return nil, err
				}
				rec, err := parseWellRecord(r, line, nitems, len(aux))
				if err != nil {
					return nil, err
				}
				ins.records[n] = rec
			}
		}
		instructions = append(instructions, ins)

		// Parameter activations are part of the deprecated parameter
		// system; skip them.
		for p := 0; p < itmpnp; p++ {
			if _, err := r.nextLine(); err != nil {
				return nil, err
			}
		}
	}

	// Resolve the per-period instructions sequentially. Carry-forward
	// periods get no entry of their own: absence from the map is what
	// makes Records reuse the most recent prior list.
	cfg.StressPeriodData = make(map[int][]WellRecord)
	for t, ins := range instructions {
		switch ins.action {
		case welClear:
			cfg.StressPeriodData[t] = []WellRecord{}
		case welReplace:
			cfg.StressPeriodData[t] = ins.records
		}
	}
	if m != nil {
		m.logf("wel package: %d stress periods", nper)
	}
	return NewWel(m, cfg)
}

// parseWellRecord parses one "LAYER ROW COLUMN FLUX [aux...]" line,
// converting the one-based file indices to zero-based.
func parseWellRecord(r *deckReader, line string, nitems, naux int) (WellRecord, error) {
	fields := strings.Fields(line)
	if len(fields) < nitems {
		return WellRecord{}, r.errf("well record needs %d values, got %d", nitems, len(fields))
	}
	var rec WellRecord
	var err error
	if rec.Layer, err = r.parseInt(fields[0]); err != nil {
		return WellRecord{}, err
	}
	if rec.Row, err = r.parseInt(fields[1]); err != nil {
		return WellRecord{}, err
	}
	if rec.Column, err = r.parseInt(fields[2]); err != nil {
		return WellRecord{}, err
	}
	rec.Layer--
	rec.Row--
	rec.Column--
	if rec.Flux, err = r.parseFloat(fields[3]); err != nil {
		return WellRecord{}, err
	}
	if naux > 0 {
		rec.Aux = make([]float64, naux)
		for n := 0; n < naux; n++ {
			if rec.Aux[n], err = r.parseFloat(fields[4+n]); err != nil {
				return WellRecord{}, err
			}
		}
	}
	return rec, nil
}
