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
	"strings"

	"github.com/ctessum/unit"
)

// TimeUnit is the ITMUNI time-unit code of the discretization file.
type TimeUnit int

// Time unit codes, in file order.
const (
	TimeUndefined TimeUnit = iota
	TimeSeconds
	TimeMinutes
	TimeHours
	TimeDays
	TimeYears
)

var timeUnitNames = []string{"undefined", "seconds", "minutes", "hours", "days", "years"}

// seconds per time unit; zero marks undefined.
var timeUnitSeconds = []float64{0, 1, 60, 3600, 86400, 365.25 * 86400}

func (u TimeUnit) String() string {
	if u < TimeUndefined || u > TimeYears {
		return fmt.Sprintf("TimeUnit(%d)", int(u))
	}
	return timeUnitNames[u]
}

// ParseTimeUnit converts a time-unit name to its ITMUNI code. Only the
// first letter is significant, matching the MODFLOW convention.
// Unknown names fail rather than defaulting.
func ParseTimeUnit(s string) (TimeUnit, error) {
	if s == "" {
		return TimeUndefined, fmt.Errorf("flopy: empty time unit")
	}
	switch strings.ToLower(s)[0] {
	case 'u':
		return TimeUndefined, nil
	case 's':
		return TimeSeconds, nil
	case 'm':
		return TimeMinutes, nil
	case 'h':
		return TimeHours, nil
	case 'd':
		return TimeDays, nil
	case 'y':
		return TimeYears, nil
	}
	return TimeUndefined, fmt.Errorf("flopy: unknown time unit '%s'", s)
}

// Measure returns v as a dimensioned quantity in SI seconds.
// It fails for the undefined unit.
func (u TimeUnit) Measure(v float64) (*unit.Unit, error) {
	if u <= TimeUndefined || u > TimeYears {
		return nil, fmt.Errorf("flopy: cannot convert time unit '%s' to seconds", u)
	}
	return unit.New(v*timeUnitSeconds[u], unit.Second), nil
}

// LengthUnit is the LENUNI length-unit code of the discretization file.
type LengthUnit int

// Length unit codes, in file order.
const (
	LengthUndefined LengthUnit = iota
	LengthFeet
	LengthMeters
	LengthCentimeters
)

var lengthUnitNames = []string{"undefined", "feet", "meters", "centimeters"}

// meters per length unit; zero marks undefined.
var lengthUnitMeters = []float64{0, 0.3048, 1, 0.01}

func (u LengthUnit) String() string {
	if u < LengthUndefined || u > LengthCentimeters {
		return fmt.Sprintf("LengthUnit(%d)", int(u))
	}
	return lengthUnitNames[u]
}

// ParseLengthUnit converts a length-unit name to its LENUNI code. Only
// the first letter is significant, matching the MODFLOW convention.
// Unknown names fail rather than defaulting.
func ParseLengthUnit(s string) (LengthUnit, error) {
	if s == "" {
		return LengthUndefined, fmt.Errorf("flopy: empty length unit")
	}
	switch strings.ToLower(s)[0] {
	case 'u':
		return LengthUndefined, nil
	case 'f':
		return LengthFeet, nil
	case 'm':
		return LengthMeters, nil
	case 'c':
		return LengthCentimeters, nil
	}
	return LengthUndefined, fmt.Errorf("flopy: unknown length unit '%s'", s)
}

// Measure returns v as a dimensioned quantity in SI meters.
// It fails for the undefined unit.
func (u LengthUnit) Measure(v float64) (*unit.Unit, error) {
	if u <= LengthUndefined || u > LengthCentimeters {
		return nil, fmt.Errorf("flopy: cannot convert length unit '%s' to meters", u)
	}
	return unit.New(v*lengthUnitMeters[u], unit.Meter), nil
}
