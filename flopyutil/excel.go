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

	"github.com/tealeg/xlsx"

	"github.com/andyrich/flopy"
)

// WriteWellWorkbook writes the resolved well schedule for stress
// periods [0, nper) to a Microsoft Excel file, one row per well
// record. Carried-forward period lists are expanded, so every period
// shows the list that is actually in effect. Layer, row, and column
// are written one-based to match the deck file convention.
func WriteWellWorkbook(fileName string, w *flopy.Wel, nper int) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("wells")
	if err != nil {
		return fmt.Errorf("flopyutil: creating well worksheet: %v", err)
	}

	header := sheet.AddRow()
	for _, h := range []string{"Period", "Layer", "Row", "Column", "Flux"} {
		header.AddCell().SetString(h)
	}
	for _, aux := range w.AuxNames {
		header.AddCell().SetString(aux)
	}

	for per := 0; per < nper; per++ {
		for _, rec := range w.Records(per) {
			row := sheet.AddRow()
			row.AddCell().SetInt(per + 1)
			row.AddCell().SetInt(rec.Layer + 1)
			row.AddCell().SetInt(rec.Row + 1)
			row.AddCell().SetInt(rec.Column + 1)
			row.AddCell().SetFloat(rec.Flux)
			for _, v := range rec.Aux {
				row.AddCell().SetFloat(v)
			}
		}
	}

	if err := f.Save(fileName); err != nil {
		return fmt.Errorf("flopyutil: saving well workbook: %v", err)
	}
	return nil
}
