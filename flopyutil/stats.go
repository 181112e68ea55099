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
	"math"
	"sort"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/andyrich/flopy"
)

// GridStats evaluates named expressions over the arrays of a
// discretization package.
type GridStats struct {
	expressions map[string]string
	functions   map[string]govaluate.ExpressionFunction
}

// NewGridStats creates a GridStats from a map of output names to
// expressions and any additional functions the expressions may call.
// The built-in functions sum, min, max, and mean each take one array
// argument. The available array variables are thickness, volume, top,
// botm, delr, delc, and perlen.
func NewGridStats(expressions map[string]string, funcs map[string]govaluate.ExpressionFunction) (*GridStats, error) {
	gs := &GridStats{
		expressions: expressions,
		functions: map[string]govaluate.ExpressionFunction{
			"sum":  arrayFold("sum", func(acc, v float64) float64 { return acc + v }, 0),
			"min":  arrayFold("min", math.Min, math.Inf(1)),
			"max":  arrayFold("max", math.Max, math.Inf(-1)),
			"mean": arrayMean,
		},
	}
	for name, f := range funcs {
		gs.functions[name] = f
	}
	for name, expression := range gs.expressions {
		if _, err := govaluate.NewEvaluableExpressionWithFunctions(expression, gs.functions); err != nil {
			return nil, fmt.Errorf("flopyutil: parsing expression for %s: %v", name, err)
		}
	}
	return gs, nil
}

func arrayFold(name string, f func(acc, v float64) float64, init float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		vals, err := arrayArg(name, args...)
		if err != nil {
			return nil, err
		}
		acc := init
		for _, v := range vals {
			acc = f(acc, v)
		}
		return acc, nil
	}
}

func arrayMean(args ...interface{}) (interface{}, error) {
	vals, err := arrayArg("mean", args...)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("mean of an empty array")
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals)), nil
}

func arrayArg(name string, args ...interface{}) ([]float64, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s: need one argument but have %d", name, len(args))
	}
	vals, ok := args[0].([]float64)
	if !ok {
		return nil, fmt.Errorf("%s: argument must be an array, not %#v", name, args[0])
	}
	return vals, nil
}

// Evaluate computes the configured expressions over the arrays of d.
func (gs *GridStats) Evaluate(d *flopy.Dis) (map[string]float64, error) {
	params := map[string]interface{}{
		"thickness": d.Thickness().Elements,
		"volume":    d.CellVolumes().Elements,
		"top":       d.Top.Elements,
		"botm":      d.Botm.Elements,
		"delr":      d.Delr.Elements,
		"delc":      d.Delc.Elements,
		"perlen":    d.Perlen,
	}
	results := make(map[string]float64, len(gs.expressions))
	for name, expression := range gs.expressions {
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(expression, gs.functions)
		if err != nil {
			return nil, fmt.Errorf("flopyutil: parsing expression for %s: %v", name, err)
		}
		for _, v := range expr.Vars() {
			if _, ok := params[v]; !ok {
				return nil, fmt.Errorf("flopyutil: expression for %s: undefined variable %s (have %s)",
					name, v, strings.Join(paramNames(params), ", "))
			}
		}
		result, err := expr.Evaluate(params)
		if err != nil {
			return nil, fmt.Errorf("flopyutil: evaluating expression for %s: %v", name, err)
		}
		v, ok := result.(float64)
		if !ok {
			return nil, fmt.Errorf("flopyutil: expression for %s is not numeric: %#v", name, result)
		}
		results[name] = v
	}
	return results, nil
}

func paramNames(params map[string]interface{}) []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
