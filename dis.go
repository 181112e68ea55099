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

	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
	"gonum.org/v1/gonum/floats"
)

// defaultDisHeading is written as the first comment line of
// discretization files that don't specify their own heading.
const defaultDisHeading = "# Discretization file for MODFLOW, generated by Flopy."

// Dis is the MODFLOW discretization package: the structured-grid
// geometry (layer/row/column counts, spacings, elevations, confining
// beds) and the stress-period time schedule.
//
// Spacing naming follows the MODFLOW convention, which is the reverse
// of what the names suggest: Delr is the spacing along a row and so
// varies over columns (length Ncol); Delc is the spacing along a
// column and varies over rows (length Nrow).
type Dis struct {
	Nlay, Nrow, Ncol, Nper int

	// Laycbd flags which layers have a Quasi-3D confining bed below
	// them. The bottom layer never has one; its flag is forced to zero.
	Laycbd []int

	Delr *sparse.DenseArray // column widths, shape (Ncol)
	Delc *sparse.DenseArray // row widths, shape (Nrow)

	// Top is the elevation of the top of layer 1, shape (Nrow, Ncol).
	Top *sparse.DenseArray
	// Botm holds the bottom elevation of every layer and confining
	// bed, top to bottom, shape (Nlay+ncbd, Nrow, Ncol).
	Botm *sparse.DenseArray

	// Stress-period schedule, each of length Nper.
	Perlen []float64
	Nstp   []int
	Tsmult []float64
	Steady []bool

	Itmuni TimeUnit
	Lenuni LengthUnit

	SR      SpatialReference
	Heading string

	model     *Model
	thickness *sparse.DenseArray
}

// DisConfig holds the raw field values for constructing a Dis.
// Every slice follows the broadcast convention: nil means the package
// default, a single value is broadcast to the full array, and anything
// else must match the declared shape exactly or the construction fails
// with a ShapeError.
type DisConfig struct {
	Delr   []float64 // default 1.0
	Delc   []float64 // default 1.0
	Laycbd []int     // default 0
	Top    []float64 // default 1.0
	Botm   []float64 // default 0.0
	Perlen []float64 // default 1.0
	Nstp   []int     // default 1
	Tsmult []float64 // default 1.0
	Steady []bool    // default true

	Itmuni TimeUnit
	Lenuni LengthUnit

	SR      SpatialReference
	Heading string
}

// NewDis constructs a discretization package on the given grid
// dimensions and registers it with m (which may be nil for standalone
// use). Layer thickness is computed eagerly.
func NewDis(m *Model, nlay, nrow, ncol, nper int, cfg DisConfig) (*Dis, error) {
	if nlay < 1 || nrow < 1 || ncol < 1 || nper < 1 {
		return nil, fmt.Errorf("flopy: dis: dimensions (%d,%d,%d,%d) must all be positive",
			nlay, nrow, ncol, nper)
	}
	d := &Dis{
		Nlay:   nlay,
		Nrow:   nrow,
		Ncol:   ncol,
		Nper:   nper,
		Itmuni: cfg.Itmuni,
		Lenuni: cfg.Lenuni,
		SR:     cfg.SR,
		model:  m,
	}
	d.Heading = cfg.Heading
	if d.Heading == "" {
		d.Heading = defaultDisHeading
	}

	var err error
	if d.Laycbd, err = broadcastInts("laycbd", cfg.Laycbd, 0, nlay); err != nil {
		return nil, err
	}
	d.Laycbd[nlay-1] = 0 // the bottom layer has no confining bed below it
	ncbd := d.confiningBedCount()

	if d.Delr, err = broadcastFloats("delr", cfg.Delr, 1, ncol); err != nil {
		return nil, err
	}
	if d.Delc, err = broadcastFloats("delc", cfg.Delc, 1, nrow); err != nil {
		return nil, err
	}
	if d.Top, err = broadcastFloats("top", cfg.Top, 1, nrow, ncol); err != nil {
		return nil, err
	}
	if d.Botm, err = broadcastFloats("botm", cfg.Botm, 0, nlay+ncbd, nrow, ncol); err != nil {
		return nil, err
	}
	if d.Perlen, err = broadcastFloatSlice("perlen", cfg.Perlen, 1, nper); err != nil {
		return nil, err
	}
	if d.Nstp, err = broadcastInts("nstp", cfg.Nstp, 1, nper); err != nil {
		return nil, err
	}
	if d.Tsmult, err = broadcastFloatSlice("tsmult", cfg.Tsmult, 1, nper); err != nil {
		return nil, err
	}
	if d.Steady, err = broadcastBools("steady", cfg.Steady, true, nper); err != nil {
		return nil, err
	}

	d.calculateThickness()
	if m != nil {
		m.AddPackage(d)
	}
	return d, nil
}

// broadcastFloatSlice is broadcastFloats for plain one-dimensional
// fields that don't warrant a DenseArray.
func broadcastFloatSlice(name string, vals []float64, def float64, n int) ([]float64, error) {
	a, err := broadcastFloats(name, vals, def, n)
	if err != nil {
		return nil, err
	}
	return a.Elements, nil
}

// PackageName implements the Package interface.
func (d *Dis) PackageName() string { return "DIS" }

// confiningBedCount is the number of Quasi-3D confining beds.
func (d *Dis) confiningBedCount() int {
	n := 0
	for _, v := range d.Laycbd {
		if v != 0 {
			n++
		}
	}
	return n
}

// calculateThickness recomputes the thickness of every layer and
// confining bed from the elevation surfaces.
func (d *Dis) calculateThickness() {
	nsurf := d.Nlay + d.confiningBedCount()
	thk := sparse.ZerosDense(nsurf, d.Nrow, d.Ncol)
	for i := 0; i < d.Nrow; i++ {
		for j := 0; j < d.Ncol; j++ {
			thk.Set(d.Top.Get(i, j)-d.Botm.Get(0, i, j), 0, i, j)
			for k := 1; k < nsurf; k++ {
				thk.Set(d.Botm.Get(k-1, i, j)-d.Botm.Get(k, i, j), k, i, j)
			}
		}
	}
	d.thickness = thk
}

// Thickness returns the derived cell thickness array, shape
// (Nlay+ncbd, Nrow, Ncol). A physically valid grid has strictly
// positive thickness everywhere; use CheckThickness to verify.
func (d *Dis) Thickness() *sparse.DenseArray { return d.thickness }

// LayerBottom returns the bottom elevation surface of the k-th layer or
// confining bed (zero-based, top to bottom), shape (Nrow, Ncol).
func (d *Dis) LayerBottom(k int) (*sparse.DenseArray, error) {
	nsurf := d.Nlay + d.confiningBedCount()
	if k < 0 || k >= nsurf {
		return nil, &IndexError{Op: "dis: layer bottom", Index: k, Length: nsurf}
	}
	b := sparse.ZerosDense(d.Nrow, d.Ncol)
	nrc := d.Nrow * d.Ncol
	copy(b.Elements, d.Botm.Elements[k*nrc:(k+1)*nrc])
	return b, nil
}

// CellVolumes returns the volume of every model cell, shape
// (Nlay, Nrow, Ncol): thickness × row width × column width.
func (d *Dis) CellVolumes() *sparse.DenseArray {
	vol := sparse.ZerosDense(d.Nlay, d.Nrow, d.Ncol)
	for k := 0; k < d.Nlay; k++ {
		for i := 0; i < d.Nrow; i++ {
			for j := 0; j < d.Ncol; j++ {
				vol.Set(d.thickness.Get(k, i, j)*d.Delc.Get(i)*d.Delr.Get(j), k, i, j)
			}
		}
	}
	return vol
}

// CellCentroidElevations returns the elevation of every model cell's
// vertical centroid, shape (Nlay, Nrow, Ncol).
func (d *Dis) CellCentroidElevations() *sparse.DenseArray {
	z := sparse.ZerosDense(d.Nlay, d.Nrow, d.Ncol)
	for i := 0; i < d.Nrow; i++ {
		for j := 0; j < d.Ncol; j++ {
			z.Set((d.Top.Get(i, j)+d.Botm.Get(0, i, j))/2, 0, i, j)
			for k := 1; k < d.Nlay; k++ {
				z.Set((d.Botm.Get(k-1, i, j)+d.Botm.Get(k, i, j))/2, k, i, j)
			}
		}
	}
	return z
}

// NodeCoordinates returns the cell centroid coordinates: y along the
// row direction (reversed so the first row is the largest coordinate,
// presenting a north-to-south cartesian ordering), x along the column
// direction, and the full 3-D z centroid array.
func (d *Dis) NodeCoordinates() (y, x []float64, z *sparse.DenseArray) {
	y = make([]float64, d.Nrow)
	for i := range y {
		if i == 0 {
			y[i] = d.Delc.Get(i) / 2
		} else {
			y[i] = y[i-1] + (d.Delc.Get(i)+d.Delc.Get(i-1))/2
		}
	}
	floats.Reverse(y)
	x = make([]float64, d.Ncol)
	for j := range x {
		if j == 0 {
			x[j] = d.Delr.Get(j) / 2
		} else {
			x[j] = x[j-1] + (d.Delr.Get(j)+d.Delr.Get(j-1))/2
		}
	}
	return y, x, d.CellCentroidElevations()
}

// NodeToIndex converts 1-based flat node numbers to 1-based
// (layer, row, column) triples using row-major ordering (layer
// slowest, column fastest). No bounds validation is performed:
// out-of-range nodes yield out-of-range triples silently, so callers
// must validate their input.
func (d *Dis) NodeToIndex(nodes ...int) [][3]int {
	nrc := d.Nrow * d.Ncol
	out := make([][3]int, len(nodes))
	for idx, node := range nodes {
		k := node / nrc
		if k*nrc < node {
			k++
		}
		ij := node - (k-1)*nrc
		i := ij / d.Ncol
		if i*d.Ncol < ij {
			i++
		}
		j := ij - (i-1)*d.Ncol
		out[idx] = [3]int{k, i, j}
	}
	return out
}

// IndexToNode converts 1-based (layer, row, column) triples to 1-based
// flat node numbers. As with NodeToIndex, no bounds validation is
// performed.
func (d *Dis) IndexToNode(lrcs ...[3]int) []int {
	nrc := d.Nrow * d.Ncol
	out := make([]int, len(lrcs))
	for idx, lrc := range lrcs {
		k, i, j := lrc[0], lrc[1], lrc[2]
		out[idx] = (k-1)*nrc + (i-1)*d.Ncol + j
	}
	return out
}

// StressPeriodDurations returns the stress-period lengths as
// dimensioned quantities in seconds. It fails if the time unit is
// undefined.
func (d *Dis) StressPeriodDurations() ([]*unit.Unit, error) {
	out := make([]*unit.Unit, d.Nper)
	for t, p := range d.Perlen {
		u, err := d.Itmuni.Measure(p)
		if err != nil {
			return nil, err
		}
		out[t] = u
	}
	return out, nil
}

// A ThicknessViolation reports one cell whose thickness is zero or
// negative. Indices are zero-based.
type ThicknessViolation struct {
	Layer, Row, Column int
	Thickness          float64
}

// CheckThickness checks the model layers for zero or negative cell
// thickness. Cells flagged inactive in the model's Ibound mask pass
// automatically. At level 0 only the summary result is returned; at
// level 1 the offending cells are also collected.
//
// The thickness array interleaves confining-bed surfaces between the
// layers they sit below; only the model layers are checked, since the
// Ibound mask has no entry for a confining bed.
func (d *Dis) CheckThickness(level int) (bool, []ThicknessViolation) {
	ok := true
	var violations []ThicknessViolation
	surf := 0
	for k := 0; k < d.Nlay; k++ {
		for i := 0; i < d.Nrow; i++ {
			for j := 0; j < d.Ncol; j++ {
				if d.model != nil && !d.model.active(k, i, j) {
					continue
				}
				if thk := d.thickness.Get(surf, i, j); thk <= 0 {
					ok = false
					if level < 1 {
						continue
					}
					violations = append(violations, ThicknessViolation{
						Layer: k, Row: i, Column: j, Thickness: thk,
					})
				}
			}
		}
		surf++
		if d.Laycbd[k] != 0 {
			surf++ // skip the confining-bed surface below this layer
		}
	}
	return ok, violations
}

// ReadCNF replaces the grid geometry with the discretization read from
// an MT3D configuration file: dimensions, column widths, row widths,
// top elevations, and per-cell layer thickness, from which the bottom
// elevations are derived by subtracting cumulative thickness from the
// top, layer by layer.
//
// Unlike the legacy tool this was ported from, the replacement is
// atomic: a malformed value fails with a ParseError and leaves the
// receiver unchanged. Confining-bed flags reset to zero because the
// layer count may change; the stress-period schedule is kept. The
// file's own wrapping is accepted regardless of valuesPerLine, which
// is retained for call compatibility with the legacy reader.
func (d *Dis) ReadCNF(path string, valuesPerLine int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("flopy: opening CNF file: %v", err)
	}
	defer f.Close()
	return d.readCNF(f, path)
}

func (d *Dis) readCNF(f io.Reader, path string) error {
	r := newDeckReader(f, path)

	line, err := r.nextLine()
	if err != nil {
		return err
	}
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return r.errf("dimension line needs nlay, nrow, and ncol")
	}
	var dims [3]int
	for n, tok := range fields[:3] {
		if dims[n], err = r.parseInt(tok); err != nil {
			return err
		}
	}
	nlay, nrow, ncol := dims[0], dims[1], dims[2]
	if nlay < 1 || nrow < 1 || ncol < 1 {
		return r.errf("dimensions (%d,%d,%d) must all be positive", nlay, nrow, ncol)
	}

	delr := make([]float64, ncol)
	if err := r.readFloats(delr); err != nil {
		return err
	}
	delc := make([]float64, nrow)
	if err := r.readFloats(delc); err != nil {
		return err
	}
	top := sparse.ZerosDense(nrow, ncol)
	if err := r.readFloats(top.Elements); err != nil {
		return err
	}
	dz := sparse.ZerosDense(nlay, nrow, ncol)
	if err := r.readFloats(dz.Elements); err != nil {
		return err
	}

	botm := sparse.ZerosDense(nlay, nrow, ncol)
	for i := 0; i < nrow; i++ {
		for j := 0; j < ncol; j++ {
			botm.Set(top.Get(i, j)-dz.Get(0, i, j), 0, i, j)
			for k := 1; k < nlay; k++ {
				botm.Set(botm.Get(k-1, i, j)-dz.Get(k, i, j), k, i, j)
			}
		}
	}

	// Everything parsed; apply.
	d.Nlay, d.Nrow, d.Ncol = nlay, nrow, ncol
	d.Laycbd = make([]int, nlay)
	delrArr := sparse.ZerosDense(ncol)
	copy(delrArr.Elements, delr)
	d.Delr = delrArr
	delcArr := sparse.ZerosDense(nrow)
	copy(delcArr.Elements, delc)
	d.Delc = delcArr
	d.Top = top
	d.Botm = botm
	d.calculateThickness()
	return nil
}

// WriteFile writes the package to the named file.
func (d *Dis) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("flopy: creating dis file: %v", err)
	}
	if err := d.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTo serializes the package in the fixed-format discretization
// file layout. Parsing the output with ReadDis yields numerically
// identical arrays at float32 precision.
func (d *Dis) WriteTo(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s\n", d.Heading); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "#%s\n", d.SR.headerString()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%10d%10d%10d%10d%10d%10d\n",
		d.Nlay, d.Nrow, d.Ncol, d.Nper, int(d.Itmuni), int(d.Lenuni)); err != nil {
		return err
	}
	for _, v := range d.Laycbd {
		if _, err := fmt.Fprintf(w, "%3d", v); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	if err := writeArrayBlock(w, d.Delr.Elements, 10); err != nil {
		return err
	}
	if err := writeArrayBlock(w, d.Delc.Elements, 10); err != nil {
		return err
	}
	if err := writeArrayBlock(w, d.Top.Elements, d.Ncol); err != nil {
		return err
	}
	nrc := d.Nrow * d.Ncol
	for k := 0; k < d.Nlay+d.confiningBedCount(); k++ {
		if err := writeArrayBlock(w, d.Botm.Elements[k*nrc:(k+1)*nrc], d.Ncol); err != nil {
			return err
		}
	}
	for t := 0; t < d.Nper; t++ {
		sstr := "SS"
		if !d.Steady[t] {
			sstr = "TR"
		}
		if _, err := fmt.Fprintf(w, "%14.6G%10d%10.6G %3s\n",
			d.Perlen[t], d.Nstp[t], d.Tsmult[t], sstr); err != nil {
			return err
		}
	}
	return nil
}

// ReadDisFile loads a discretization package from the named file and
// registers it with m.
func ReadDisFile(path string, m *Model) (*Dis, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("flopy: opening dis file: %v", err)
	}
	defer f.Close()
	return ReadDis(f, path, m)
}

// ReadDis loads a discretization package from r. The path is used for
// error reporting only; m may be nil.
func ReadDis(f io.Reader, path string, m *Model) (*Dis, error) {
	if m != nil {
		m.logf("loading dis package file %s", path)
	}
	r := newDeckReader(f, path)

	line, comments, err := r.skipComments()
	if err != nil {
		return nil, err
	}
	sr := parseSpatialReference(strings.Join(comments, ","))

	fields := strings.Fields(line)
	if len(fields) < 6 {
		return nil, r.errf("dimension line needs NLAY NROW NCOL NPER ITMUNI LENUNI")
	}
	var dims [6]int
	for n, tok := range fields[:6] {
		if dims[n], err = r.parseInt(tok); err != nil {
			return nil, err
		}
	}
	nlay, nrow, ncol, nper := dims[0], dims[1], dims[2], dims[3]
	if dims[4] < int(TimeUndefined) || dims[4] > int(TimeYears) {
		return nil, r.errf("unknown time unit code %d", dims[4])
	}
	if dims[5] < int(LengthUndefined) || dims[5] > int(LengthCentimeters) {
		return nil, r.errf("unknown length unit code %d", dims[5])
	}
	if nlay < 1 || nrow < 1 || ncol < 1 || nper < 1 {
		return nil, r.errf("dimensions (%d,%d,%d,%d) must all be positive", nlay, nrow, ncol, nper)
	}
	if m != nil {
		m.logf("dis package: %d layers, %d rows, %d columns, %d stress periods",
			nlay, nrow, ncol, nper)
	}

	laycbd := make([]int, nlay)
	if err := r.readInts(laycbd); err != nil {
		return nil, err
	}
	laycbd[nlay-1] = 0
	ncbd := 0
	for _, v := range laycbd {
		if v != 0 {
			ncbd++
		}
	}

	delr, err := r.readArrayBlock("delr", ncol)
	if err != nil {
		return nil, err
	}
	delc, err := r.readArrayBlock("delc", nrow)
	if err != nil {
		return nil, err
	}
	top, err := r.readArrayBlock("top", nrow, ncol)
	if err != nil {
		return nil, err
	}
	botm := sparse.ZerosDense(nlay+ncbd, nrow, ncol)
	nrc := nrow * ncol
	for k := 0; k < nlay+ncbd; k++ {
		b, err := r.readArrayBlock("botm", nrow, ncol)
		if err != nil {
			return nil, err
		}
		copy(botm.Elements[k*nrc:(k+1)*nrc], b.Elements)
	}

	perlen := make([]float64, nper)
	nstp := make([]int, nper)
	tsmult := make([]float64, nper)
	steady := make([]bool, nper)
	for t := 0; t < nper; t++ {
		line, err := r.nextLine()
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, r.errf("stress period line needs PERLEN NSTP TSMULT SS|TR")
		}
		if perlen[t], err = r.parseFloat(fields[0]); err != nil {
			return nil, err
		}
		if nstp[t], err = r.parseInt(fields[1]); err != nil {
			return nil, err
		}
		if tsmult[t], err = r.parseFloat(fields[2]); err != nil {
			return nil, err
		}
		switch strings.ToUpper(fields[3]) {
		case "SS":
			steady[t] = true
		case "TR":
			steady[t] = false
		default:
			return nil, r.errf("stress period state must be SS or TR, not '%s'", fields[3])
		}
	}

	heading := defaultDisHeading
	if len(comments) > 0 {
		heading = comments[0]
	}
	return NewDis(m, nlay, nrow, ncol, nper, DisConfig{
		Delr:    delr.Elements,
		Delc:    delc.Elements,
		Laycbd:  laycbd,
		Top:     top.Elements,
		Botm:    botm.Elements,
		Perlen:  perlen,
		Nstp:    nstp,
		Tsmult:  tsmult,
		Steady:  steady,
		Itmuni:  TimeUnit(dims[4]),
		Lenuni:  LengthUnit(dims[5]),
		SR:      sr,
		Heading: heading,
	})
}
