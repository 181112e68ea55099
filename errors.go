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

import "fmt"

// ShapeError is returned when an array or record count doesn't match
// the dimensions it was declared with.
type ShapeError struct {
	// Name is the name of the offending variable ("delr", "botm", ...).
	Name string
	// Want is the declared shape.
	Want []int
	// Got is the number of values that were supplied.
	Got int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("flopy: %s: got %d values for shape %v", e.Name, e.Got, e.Want)
}

// ParseError is returned when a fixed-format line contains a malformed
// or missing token. Parse failures are not retried; they propagate to
// the caller, who decides whether to abort or skip the package.
type ParseError struct {
	// File is the name of the file being read, if known.
	File string
	// Line is the 1-based line number where the failure happened.
	Line int
	// Err is the underlying failure.
	Err error
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("flopy: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("flopy: %s: line %d: %v", e.File, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IndexError is returned when a record mutation refers to a position
// outside the bounds of the list being changed.
type IndexError struct {
	Op     string
	Index  int
	Length int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("flopy: %s: index %d out of range for list of length %d", e.Op, e.Index, e.Length)
}
