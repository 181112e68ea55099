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
	"strconv"
	"strings"
)

// Default geo-reference values used when a file header doesn't carry
// its own.
const (
	defaultProj4         = "EPSG:4326"
	defaultStartDatetime = "1/1/1970"
)

// SpatialReference places the model grid in geographic space: the
// upper-left corner coordinates, the clockwise grid rotation about
// that corner in degrees, the PROJ4 string (or EPSG code) of the
// coordinate system, and the simulation start datetime. It is encoded
// on the last '#' header line of the discretization file.
type SpatialReference struct {
	Xul, Yul      float64
	Rotation      float64
	Proj4         string
	StartDatetime string
}

// DefaultSpatialReference returns the geo-reference used when nothing
// is specified.
func DefaultSpatialReference() SpatialReference {
	return SpatialReference{Proj4: defaultProj4, StartDatetime: defaultStartDatetime}
}

// headerString encodes the geo-reference for the file header.
func (sr SpatialReference) headerString() string {
	proj := sr.Proj4
	if proj == "" {
		proj = defaultProj4
	}
	start := sr.StartDatetime
	if start == "" {
		start = defaultStartDatetime
	}
	return fmt.Sprintf("xul:%G,yul:%G,rotation:%G,proj4_str:%s,start_datetime:%s",
		sr.Xul, sr.Yul, sr.Rotation, proj, start)
}

// parseSpatialReference recovers a geo-reference from header comment
// text. Parsing is tolerant: missing or malformed items keep their
// default values, because header comments are free text in files not
// written by this package.
func parseSpatialReference(header string) SpatialReference {
	sr := DefaultSpatialReference()
	header = strings.Replace(header, "#", "", -1)
	for _, item := range strings.Split(header, ",") {
		item = strings.TrimSpace(item)
		lower := strings.ToLower(item)
		switch {
		case strings.HasPrefix(lower, "xul"):
			if v, err := parseHeaderFloat(item); err == nil {
				sr.Xul = v
			}
		case strings.HasPrefix(lower, "yul"):
			if v, err := parseHeaderFloat(item); err == nil {
				sr.Yul = v
			}
		case strings.HasPrefix(lower, "rotation"):
			if v, err := parseHeaderFloat(item); err == nil {
				sr.Rotation = v
			}
		case strings.HasPrefix(lower, "proj4_str"):
			if parts := strings.SplitN(item, ":", 2); len(parts) == 2 {
				sr.Proj4 = strings.TrimSpace(parts[1])
			}
		case strings.HasPrefix(lower, "start_datetime") || strings.HasPrefix(lower, "start"):
			if parts := strings.SplitN(item, ":", 2); len(parts) == 2 {
				sr.StartDatetime = strings.TrimSpace(parts[1])
			}
		}
	}
	return sr
}

func parseHeaderFloat(item string) (float64, error) {
	parts := strings.SplitN(item, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("flopy: no value in header item '%s'", item)
	}
	return strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
}
