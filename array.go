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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ctessum/sparse"
)

// arrayFieldFormat is the field format for array data values. Seven
// significant digits round-trip the float32 precision of the file format.
const arrayFieldFormat = "%15.7G"

// broadcastFloats builds an array of the given shape from vals,
// following the MODFLOW input convention: no values means the uniform
// default, one value is broadcast to the whole array, and otherwise the
// value count must match the shape exactly.
func broadcastFloats(name string, vals []float64, def float64, shape ...int) (*sparse.DenseArray, error) {
	a := sparse.ZerosDense(shape...)
	switch len(vals) {
	case 0:
		for i := range a.Elements {
			a.Elements[i] = def
		}
	case 1:
		for i := range a.Elements {
			a.Elements[i] = vals[0]
		}
	case len(a.Elements):
		copy(a.Elements, vals)
	default:
		return nil, &ShapeError{Name: name, Want: shape, Got: len(vals)}
	}
	return a, nil
}

// broadcastInts is the integer version of broadcastFloats for
// one-dimensional fields.
func broadcastInts(name string, vals []int, def, n int) ([]int, error) {
	out := make([]int, n)
	switch len(vals) {
	case 0:
		for i := range out {
			out[i] = def
		}
	case 1:
		for i := range out {
			out[i] = vals[0]
		}
	case n:
		copy(out, vals)
	default:
		return nil, &ShapeError{Name: name, Want: []int{n}, Got: len(vals)}
	}
	return out, nil
}

// broadcastBools is the boolean version of broadcastFloats for
// one-dimensional fields.
func broadcastBools(name string, vals []bool, def bool, n int) ([]bool, error) {
	out := make([]bool, n)
	switch len(vals) {
	case 0:
		for i := range out {
			out[i] = def
		}
	case 1:
		for i := range out {
			out[i] = vals[0]
		}
	case n:
		copy(out, vals)
	default:
		return nil, &ShapeError{Name: name, Want: []int{n}, Got: len(vals)}
	}
	return out, nil
}

// uniform reports whether all elements are equal.
func uniform(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}

// writeArrayValues writes vals in the Util2d data block layout,
// wrapping lines every perLine values.
func writeArrayValues(w io.Writer, vals []float64, perLine int) error {
	for i, v := range vals {
		if _, err := fmt.Fprintf(w, arrayFieldFormat, v); err != nil {
			return err
		}
		if (i+1)%perLine == 0 || i == len(vals)-1 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeArrayBlock writes a Util2d array block: a CONSTANT control
// record for uniform arrays, otherwise an INTERNAL free-format control
// record followed by the data values.
func writeArrayBlock(w io.Writer, vals []float64, perLine int) error {
	if len(vals) == 0 {
		return fmt.Errorf("flopy: cannot write empty array block")
	}
	if uniform(vals) {
		_, err := fmt.Fprintf(w, "CONSTANT "+arrayFieldFormat+"\n", vals[0])
		return err
	}
	if _, err := io.WriteString(w, "INTERNAL  1.0  (FREE)  -1\n"); err != nil {
		return err
	}
	return writeArrayValues(w, vals, perLine)
}

// deckReader reads a fixed-format input deck line by line, tracking
// the line number for error reporting.
type deckReader struct {
	s    *bufio.Scanner
	path string
	line int
}

func newDeckReader(r io.Reader, path string) *deckReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &deckReader{s: s, path: path}
}

func (r *deckReader) errf(format string, args ...interface{}) error {
	return &ParseError{File: r.path, Line: r.line, Err: fmt.Errorf(format, args...)}
}

// nextLine returns the next line of the file. Running out of input is
// a parse error: callers only ask for lines the format says must exist.
func (r *deckReader) nextLine() (string, error) {
	if !r.s.Scan() {
		if err := r.s.Err(); err != nil {
			return "", &ParseError{File: r.path, Line: r.line, Err: err}
		}
		return "", r.errf("unexpected end of file")
	}
	r.line++
	return r.s.Text(), nil
}

// skipComments returns the first line that is not a '#' comment,
// along with the accumulated comment text.
func (r *deckReader) skipComments() (line string, comments []string, err error) {
	for {
		line, err = r.nextLine()
		if err != nil {
			return "", nil, err
		}
		if !strings.HasPrefix(line, "#") {
			return line, comments, nil
		}
		comments = append(comments, strings.TrimSpace(line))
	}
}

// parseFloat parses a data token at float32 precision, the native
// precision of the file format.
func (r *deckReader) parseFloat(tok string) (float64, error) {
	v, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return 0, r.errf("malformed real value '%s'", tok)
	}
	return v, nil
}

func (r *deckReader) parseInt(tok string) (int, error) {
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, r.errf("malformed integer value '%s'", tok)
	}
	return v, nil
}

// readFloats fills dst with whitespace-delimited values, reading as
// many lines as needed. Any line wrapping is accepted.
func (r *deckReader) readFloats(dst []float64) error {
	n := 0
	for n < len(dst) {
		line, err := r.nextLine()
		if err != nil {
			return err
		}
		for _, tok := range strings.Fields(line) {
			if n == len(dst) {
				return r.errf("too many values: expected %d", len(dst))
			}
			v, err := r.parseFloat(tok)
			if err != nil {
				return err
			}
			dst[n] = v
			n++
		}
	}
	return nil
}

// readInts fills dst with whitespace-delimited integers, reading as
// many lines as needed.
func (r *deckReader) readInts(dst []int) error {
	n := 0
	for n < len(dst) {
		line, err := r.nextLine()
		if err != nil {
			return err
		}
		for _, tok := range strings.Fields(line) {
			if n == len(dst) {
				return r.errf("too many values: expected %d", len(dst))
			}
			v, err := r.parseInt(tok)
			if err != nil {
				return err
			}
			dst[n] = v
			n++
		}
	}
	return nil
}

// readArrayBlock reads one Util2d array block of the given shape,
// handling CONSTANT and free-format INTERNAL control records.
func (r *deckReader) readArrayBlock(name string, shape ...int) (*sparse.DenseArray, error) {
	a := sparse.ZerosDense(shape...)
	line, err := r.nextLine()
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, r.errf("%s: empty array control record", name)
	}
	switch strings.ToUpper(fields[0]) {
	case "CONSTANT":
		if len(fields) < 2 {
			return nil, r.errf("%s: CONSTANT control record is missing its value", name)
		}
		v, err := r.parseFloat(fields[1])
		if err != nil {
			return nil, err
		}
		for i := range a.Elements {
			a.Elements[i] = v
		}
	case "INTERNAL":
		cnstnt := 1.0
		if len(fields) >= 2 {
			cnstnt, err = r.parseFloat(fields[1])
			if err != nil {
				return nil, err
			}
		}
		if err := r.readFloats(a.Elements); err != nil {
			return nil, err
		}
		if cnstnt != 1 {
			for i := range a.Elements {
				a.Elements[i] *= cnstnt
			}
		}
	default:
		return nil, r.errf("%s: unsupported array control record '%s'", name, fields[0])
	}
	return a, nil
}
