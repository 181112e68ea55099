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
	"path/filepath"
	"testing"

	"github.com/tealeg/xlsx"

	"github.com/andyrich/flopy"
)

func TestWriteWellWorkbook(t *testing.T) {
	w, err := flopy.NewWel(nil, flopy.WelConfig{
		Options: []string{"AUX", "IFACE"},
		StressPeriodData: map[int][]flopy.WellRecord{
			0: {
				{Layer: 0, Row: 1, Column: 2, Flux: -100, Aux: []float64{6}},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	fileName := filepath.Join(t.TempDir(), "wells.xlsx")
	// Two periods: the second carries the first period's list forward
	// and must appear expanded in the output.
	if err := WriteWellWorkbook(fileName, w, 2); err != nil {
		t.Fatal(err)
	}

	f, err := xlsx.OpenFile(fileName)
	if err != nil {
		t.Fatal(err)
	}
	sheet := f.Sheets[0]
	// Header plus one record row per period.
	if got := len(sheet.Rows); got != 3 {
		t.Fatalf("row count: want 3, got %d", got)
	}

	header := sheet.Rows[0]
	if got := header.Cells[5].Value; got != "IFACE" {
		t.Errorf("aux header: want IFACE, got %q", got)
	}

	for i, wantPeriod := range []string{"1", "2"} {
		row := sheet.Rows[i+1]
		if got := row.Cells[0].Value; got != wantPeriod {
			t.Errorf("row %d period: want %s, got %q", i+1, wantPeriod, got)
		}
		// Indices are one-based on output.
		if got := row.Cells[1].Value; got != "1" {
			t.Errorf("row %d layer: want 1, got %q", i+1, got)
		}
		if got := row.Cells[3].Value; got != "3" {
			t.Errorf("row %d column: want 3, got %q", i+1, got)
		}
	}
}
