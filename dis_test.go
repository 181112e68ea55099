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
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ctessum/sparse"
)

// compareArrays checks a against want at the given relative tolerance.
func compareArrays(t *testing.T, name string, want, got *sparse.DenseArray, tol float64) {
	t.Helper()
	if len(want.Shape) != len(got.Shape) {
		t.Fatalf("%s: shape: want %v, got %v", name, want.Shape, got.Shape)
	}
	for i, n := range want.Shape {
		if got.Shape[i] != n {
			t.Fatalf("%s: shape: want %v, got %v", name, want.Shape, got.Shape)
		}
	}
	for i, w := range want.Elements {
		g := got.Elements[i]
		if different(w, g, tol) {
			t.Errorf("%s: element %d: want %g, got %g", name, i, w, g)
		}
	}
}

func different(a, b, tol float64) bool {
	if a == b {
		return false
	}
	return math.Abs(a-b) > tol*math.Max(math.Abs(a), math.Abs(b))
}

func compareFloats(t *testing.T, name string, want, got []float64, tol float64) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("%s: length: want %d, got %d", name, len(want), len(got))
	}
	for i := range want {
		if different(want[i], got[i], tol) {
			t.Errorf("%s: element %d: want %g, got %g", name, i, want[i], got[i])
		}
	}
}

// testDis is a small two-layer grid with distinct spacings and
// elevations, used throughout the tests.
func testDis(t *testing.T, m *Model) *Dis {
	t.Helper()
	d, err := NewDis(m, 2, 2, 3, 2, DisConfig{
		Delr: []float64{100, 200, 300},
		Delc: []float64{10, 20},
		Top:  []float64{50},
		Botm: []float64{
			// layer 1 bottom
			40, 40, 40,
			40, 40, 40,
			// layer 2 bottom
			0, 0, 0,
			0, 0, 0,
		},
		Perlen: []float64{1, 100},
		Nstp:   []int{1, 10},
		Tsmult: []float64{1, 1.5},
		Steady: []bool{true, false},
		Itmuni: TimeDays,
		Lenuni: LengthMeters,
	})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestDisThickness(t *testing.T) {
	d := testDis(t, nil)
	thk := d.Thickness()
	for i := 0; i < d.Nrow; i++ {
		for j := 0; j < d.Ncol; j++ {
			if got := thk.Get(0, i, j); got != 10 {
				t.Errorf("layer 1 thickness at (%d,%d): want 10, got %g", i, j, got)
			}
			if got := thk.Get(1, i, j); got != 40 {
				t.Errorf("layer 2 thickness at (%d,%d): want 40, got %g", i, j, got)
			}
		}
	}
}

func TestDisCellVolumes(t *testing.T) {
	d := testDis(t, nil)
	vol := d.CellVolumes()
	// thickness × delc(row) × delr(column)
	if got := vol.Get(0, 0, 0); got != 10*10*100 {
		t.Errorf("volume (0,0,0): want %g, got %g", 10.0*10*100, got)
	}
	if got := vol.Get(1, 1, 2); got != 40*20*300 {
		t.Errorf("volume (1,1,2): want %g, got %g", 40.0*20*300, got)
	}
}

func TestDisCellCentroidElevations(t *testing.T) {
	d := testDis(t, nil)
	z := d.CellCentroidElevations()
	if got := z.Get(0, 0, 0); got != 45 {
		t.Errorf("layer 1 centroid: want 45, got %g", got)
	}
	if got := z.Get(1, 1, 1); got != 20 {
		t.Errorf("layer 2 centroid: want 20, got %g", got)
	}
}

func TestDisNodeCoordinates(t *testing.T) {
	d := testDis(t, nil)
	y, x, z := d.NodeCoordinates()
	// Row coordinates run north to south: the first row has the
	// largest coordinate.
	compareFloats(t, "y", []float64{20, 5}, y, 0)
	compareFloats(t, "x", []float64{50, 200, 450}, x, 0)
	if got := z.Get(0, 0, 0); got != 45 {
		t.Errorf("z (0,0,0): want 45, got %g", got)
	}
}

func TestDisNodeIndexRoundTrip(t *testing.T) {
	d := testDis(t, nil) // (2, 2, 3)
	nnodes := d.Nlay * d.Nrow * d.Ncol
	for node := 1; node <= nnodes; node++ {
		lrc := d.NodeToIndex(node)[0]
		back := d.IndexToNode(lrc)[0]
		if back != node {
			t.Errorf("node %d -> %v -> %d", node, lrc, back)
		}
	}
	// Spot checks against the row-major, column-fastest layout.
	if got := d.NodeToIndex(1)[0]; got != [3]int{1, 1, 1} {
		t.Errorf("node 1: want [1 1 1], got %v", got)
	}
	if got := d.NodeToIndex(4)[0]; got != [3]int{1, 2, 1} {
		t.Errorf("node 4: want [1 2 1], got %v", got)
	}
	if got := d.NodeToIndex(7)[0]; got != [3]int{2, 1, 1} {
		t.Errorf("node 7: want [2 1 1], got %v", got)
	}
	if got := d.IndexToNode([3]int{2, 2, 3})[0]; got != 12 {
		t.Errorf("index (2,2,3): want 12, got %d", got)
	}
}

func TestDisLayerBottom(t *testing.T) {
	d := testDis(t, nil)
	b, err := d.LayerBottom(0)
	if err != nil {
		t.Fatal(err)
	}
	if got := b.Get(1, 2); got != 40 {
		t.Errorf("layer 1 bottom: want 40, got %g", got)
	}
	var indexErr *IndexError
	if _, err := d.LayerBottom(2); !errors.As(err, &indexErr) {
		t.Errorf("out-of-range layer: want an IndexError, got %v", err)
	}
}

func TestDisStressPeriodDurations(t *testing.T) {
	d := testDis(t, nil)
	durations, err := d.StressPeriodDurations()
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{86400, 8640000}
	for i, u := range durations {
		if u.Value() != want[i] {
			t.Errorf("period %d: want %g s, got %g", i+1, want[i], u.Value())
		}
	}

	d.Itmuni = TimeUndefined
	if _, err := d.StressPeriodDurations(); err == nil {
		t.Error("undefined time unit: want error, got nil")
	}
}

func TestDisRoundTrip(t *testing.T) {
	m := NewModel("roundtrip")
	d := testDis(t, m)
	d.SR = SpatialReference{
		Xul:           619653,
		Yul:           3353277,
		Rotation:      15,
		Proj4:         "EPSG:26916",
		StartDatetime: "1/1/2000",
	}

	var buf bytes.Buffer
	if err := d.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	d2, err := ReadDis(&buf, "roundtrip.dis", nil)
	if err != nil {
		t.Fatal(err)
	}

	if d2.Nlay != d.Nlay || d2.Nrow != d.Nrow || d2.Ncol != d.Ncol || d2.Nper != d.Nper {
		t.Fatalf("dimensions: want (%d,%d,%d,%d), got (%d,%d,%d,%d)",
			d.Nlay, d.Nrow, d.Ncol, d.Nper, d2.Nlay, d2.Nrow, d2.Ncol, d2.Nper)
	}
	if d2.Itmuni != d.Itmuni || d2.Lenuni != d.Lenuni {
		t.Errorf("units: want (%s,%s), got (%s,%s)", d.Itmuni, d.Lenuni, d2.Itmuni, d2.Lenuni)
	}

	const tol = 1e-6 // float32 file precision
	compareArrays(t, "delr", d.Delr, d2.Delr, tol)
	compareArrays(t, "delc", d.Delc, d2.Delc, tol)
	compareArrays(t, "top", d.Top, d2.Top, tol)
	compareArrays(t, "botm", d.Botm, d2.Botm, tol)
	compareArrays(t, "thickness", d.Thickness(), d2.Thickness(), tol)
	compareFloats(t, "perlen", d.Perlen, d2.Perlen, tol)
	compareFloats(t, "tsmult", d.Tsmult, d2.Tsmult, tol)
	for i := range d.Steady {
		if d2.Steady[i] != d.Steady[i] {
			t.Errorf("steady[%d]: want %v, got %v", i, d.Steady[i], d2.Steady[i])
		}
		if d2.Nstp[i] != d.Nstp[i] {
			t.Errorf("nstp[%d]: want %d, got %d", i, d.Nstp[i], d2.Nstp[i])
		}
	}

	if d2.SR != d.SR {
		t.Errorf("spatial reference: want %+v, got %+v", d.SR, d2.SR)
	}
}

func TestDisConfiningBed(t *testing.T) {
	d, err := NewDis(nil, 2, 1, 1, 1, DisConfig{
		Laycbd: []int{1, 1}, // the bottom flag must be forced to zero
		Top:    []float64{30},
		Botm: []float64{
			20, // layer 1 bottom
			15, // confining bed bottom
			0,  // layer 2 bottom
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if d.Laycbd[1] != 0 {
		t.Errorf("bottom layer confining bed flag: want 0, got %d", d.Laycbd[1])
	}
	thk := d.Thickness()
	want := []float64{10, 5, 15}
	for k, w := range want {
		if got := thk.Get(k, 0, 0); got != w {
			t.Errorf("surface %d thickness: want %g, got %g", k, w, got)
		}
	}

	var buf bytes.Buffer
	if err := d.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	d2, err := ReadDis(&buf, "cbd.dis", nil)
	if err != nil {
		t.Fatal(err)
	}
	compareArrays(t, "botm", d.Botm, d2.Botm, 1e-6)
	if d2.Laycbd[0] != 1 || d2.Laycbd[1] != 0 {
		t.Errorf("laycbd: want [1 0], got %v", d2.Laycbd)
	}
}

func TestDisCheckThickness(t *testing.T) {
	m := NewModel("checks")
	d, err := NewDis(m, 1, 2, 2, 1, DisConfig{
		Top:  []float64{10},
		Botm: []float64{0, 0, 0, 12}, // cell (0,1,1) has negative thickness
	})
	if err != nil {
		t.Fatal(err)
	}

	ok, violations := d.CheckThickness(1)
	if ok {
		t.Fatal("want a thickness violation, got none")
	}
	if len(violations) != 1 {
		t.Fatalf("violations: want 1, got %d", len(violations))
	}
	v := violations[0]
	if v.Layer != 0 || v.Row != 1 || v.Column != 1 || v.Thickness != -2 {
		t.Errorf("violation: got %+v", v)
	}

	// At level 0 the offending cells are not collected.
	ok, violations = d.CheckThickness(0)
	if ok || violations != nil {
		t.Errorf("level 0: want (false, nil), got (%v, %v)", ok, violations)
	}

	// Masking the offending cell out makes the check pass.
	m.Ibound = sparse.ZerosDense(1, 2, 2)
	for _, ij := range [][2]int{{0, 0}, {0, 1}, {1, 0}} {
		m.Ibound.Set(1, 0, ij[0], ij[1])
	}
	if ok, _ := d.CheckThickness(1); !ok {
		t.Error("inactive cell still reported as a violation")
	}
}

func TestDisCheckThicknessConfiningBed(t *testing.T) {
	// With a confining bed between the layers, layer 2's thickness
	// lives two surfaces down; the check must not stop at the bed.
	m := NewModel("cbd-checks")
	d, err := NewDis(m, 2, 1, 1, 1, DisConfig{
		Laycbd: []int{1, 0},
		Top:    []float64{30},
		Botm: []float64{
			20, // layer 1 bottom
			15, // confining bed bottom
			16, // layer 2 bottom: thickness -1
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	ok, violations := d.CheckThickness(1)
	if ok {
		t.Fatal("negative layer 2 thickness below a confining bed not reported")
	}
	if len(violations) != 1 {
		t.Fatalf("violations: want 1, got %d: %v", len(violations), violations)
	}
	v := violations[0]
	if v.Layer != 1 || v.Row != 0 || v.Column != 0 || v.Thickness != -1 {
		t.Errorf("violation: got %+v", v)
	}

	// Masking layer 2 out makes the check pass: the bed surface itself
	// has no Ibound entry and is not checked.
	m.Ibound = sparse.ZerosDense(2, 1, 1)
	m.Ibound.Set(1, 0, 0, 0)
	if ok, _ := d.CheckThickness(1); !ok {
		t.Error("inactive layer below a confining bed still reported")
	}
}

func TestDisBroadcastShape(t *testing.T) {
	_, err := NewDis(nil, 1, 2, 3, 1, DisConfig{
		Delr: []float64{1, 2}, // needs 1 or 3 values
	})
	var shapeErr *ShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("want a ShapeError, got %v", err)
	}
	if shapeErr.Name != "delr" || shapeErr.Got != 2 {
		t.Errorf("unexpected error detail: %+v", shapeErr)
	}
}

func TestDisInvalidDimensions(t *testing.T) {
	if _, err := NewDis(nil, 0, 1, 1, 1, DisConfig{}); err == nil {
		t.Error("zero layer count: want error, got nil")
	}
}

func TestReadDisBadInput(t *testing.T) {
	cases := []struct {
		name, text string
	}{
		{"truncated", "1 1 1\n"},
		{"bad time unit code", "1 1 1 1 9 2\n"},
		{"bad length unit code", "1 1 1 1 4 9\n"},
		{
			"bad steady flag",
			"1 1 1 1 4 2\n0\nCONSTANT 1\nCONSTANT 1\nCONSTANT 10\nCONSTANT 0\n1 1 1 XX\n",
		},
		{
			"bad array control record",
			"1 1 1 1 4 2\n0\nEXTERNAL 50\n",
		},
	}
	for _, c := range cases {
		_, err := ReadDis(strings.NewReader(c.text), c.name, nil)
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("%s: want a ParseError, got %v", c.name, err)
		}
	}
}

func TestReadCNF(t *testing.T) {
	d := testDis(t, nil)

	cnf := `2 2 2
1 2
3 4
100 100 100 100
10 10
10 10
40 40
40 40
`
	if err := d.readCNF(strings.NewReader(cnf), "test.cnf"); err != nil {
		t.Fatal(err)
	}
	if d.Nlay != 2 || d.Nrow != 2 || d.Ncol != 2 {
		t.Fatalf("dimensions: want (2,2,2), got (%d,%d,%d)", d.Nlay, d.Nrow, d.Ncol)
	}
	compareFloats(t, "delr", []float64{1, 2}, d.Delr.Elements, 0)
	compareFloats(t, "delc", []float64{3, 4}, d.Delc.Elements, 0)
	// Bottom elevations derive from the top minus cumulative thickness.
	if got := d.Botm.Get(0, 0, 0); got != 90 {
		t.Errorf("layer 1 bottom: want 90, got %g", got)
	}
	if got := d.Botm.Get(1, 1, 1); got != 50 {
		t.Errorf("layer 2 bottom: want 50, got %g", got)
	}
	if got := d.Thickness().Get(1, 0, 0); got != 40 {
		t.Errorf("layer 2 thickness: want 40, got %g", got)
	}
}

func TestReadCNFAtomic(t *testing.T) {
	d := testDis(t, nil)
	nlay, nrow, ncol := d.Nlay, d.Nrow, d.Ncol
	top := d.Top.Get(0, 0)

	bad := "2 2 2\n1 2\n3 4\n100 100 100 oops\n"
	err := d.readCNF(strings.NewReader(bad), "bad.cnf")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("want a ParseError, got %v", err)
	}
	// The receiver is unchanged after a failed read.
	if d.Nlay != nlay || d.Nrow != nrow || d.Ncol != ncol {
		t.Errorf("dimensions changed after failed read: (%d,%d,%d)", d.Nlay, d.Nrow, d.Ncol)
	}
	if got := d.Top.Get(0, 0); got != top {
		t.Errorf("top changed after failed read: %g", got)
	}
}
