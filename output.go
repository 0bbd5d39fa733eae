/*
Copyright © 2024 the MPAS-Ocean authors.
This file is part of MPAS-Ocean.

MPAS-Ocean is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

MPAS-Ocean is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with MPAS-Ocean.  If not, see <http://www.gnu.org/licenses/>.
*/

package ocean

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"

	"github.com/Knetic/govaluate"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/internal/ncf"
	"github.com/UCI-OCEANOGRAPHY/MPAS-Model/timekeeping"
	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Outputter writes model fields to a NetCDF file, one record per call
// to the function returned by Output.
//
// outputVariables maps the names of the variables to be written to
// expressions that define how they should be calculated from the model
// fields (see Model.Fields), e.g.
//
//	"Kv":      "vertViscTopOfEdge",
//	"oblFrac": "penetrativeTemperatureFluxOBL / (penetrativeTemperatureFlux + 1e-20)",
//
// Expressions are evaluated element by element, so all of the fields in
// one expression must have the same dimensions.
type Outputter struct {
	fileName        string
	outputVariables map[string]string
	outputFunctions map[string]govaluate.ExpressionFunction

	names       []string
	expressions map[string]*govaluate.EvaluableExpression
	dims        map[string][]string

	w   *os.File
	f   *cdf.File
	rec int

	// Attributes are global attributes added to the output file.
	Attributes map[string]string
}

// NewOutputter initializes a new Outputter. If outputVariables is empty,
// every model field is written. Default functions available to the
// expressions are exp(x), log(x), abs(x), max(x, y) and min(x, y);
// outputFunctions can add to or replace them.
func NewOutputter(fileName string, outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	oneArg := func(name string, f func(float64) float64) govaluate.ExpressionFunction {
		return func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("ocean: got %d arguments for function '%s', but needs 1", len(arg), name)
			}
			return f(arg[0].(float64)), nil
		}
	}
	twoArg := func(name string, f func(float64, float64) float64) govaluate.ExpressionFunction {
		return func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 2 {
				return nil, fmt.Errorf("ocean: got %d arguments for function '%s', but needs 2", len(arg), name)
			}
			return f(arg[0].(float64), arg[1].(float64)), nil
		}
	}
	funcs := map[string]govaluate.ExpressionFunction{
		"exp": oneArg("exp", math.Exp),
		"log": oneArg("log", math.Log),
		"abs": oneArg("abs", math.Abs),
		"max": twoArg("max", math.Max),
		"min": twoArg("min", math.Min),
	}
	for key, val := range outputFunctions {
		funcs[key] = val
	}

	o := &Outputter{
		fileName:        fileName,
		outputVariables: make(map[string]string, len(outputVariables)),
		outputFunctions: funcs,
		expressions:     make(map[string]*govaluate.EvaluableExpression),
		Attributes:      make(map[string]string),
	}
	if err := checkOutputNames(outputVariables); err != nil {
		return nil, err
	}
	for name, expr := range outputVariables {
		e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, funcs)
		if err != nil {
			return nil, fmt.Errorf("ocean: output variable %s: %v", name, err)
		}
		o.expressions[name] = e
		o.outputVariables[name] = expr
		o.names = append(o.names, name)
	}
	sort.Strings(o.names)
	return o, nil
}

var outputNameRegexp = regexp.MustCompile(`^[A-Za-z]\w*$`)

// checkOutputNames checks whether the output variable names can be used
// as NetCDF variable names.
func checkOutputNames(o map[string]string) error {
	for key := range o {
		if !outputNameRegexp.MatchString(key) {
			return fmt.Errorf("ocean: output variable name '%s' includes unsupported characters", key)
		}
	}
	return nil
}

// CheckOutputVars ensures the output variables can be calculated
// and determines their dimensions.
func (o *Outputter) CheckOutputVars() DomainManipulator {
	return func(d *Model) error {
		if len(o.names) == 0 {
			for _, f := range d.Fields() {
				e, err := govaluate.NewEvaluableExpressionWithFunctions(f.Name, o.outputFunctions)
				if err != nil {
					return err
				}
				o.expressions[f.Name] = e
				o.outputVariables[f.Name] = f.Name
				o.names = append(o.names, f.Name)
			}
		}
		o.dims = make(map[string][]string)
		for _, name := range o.names {
			vars := o.expressions[name].Vars()
			if len(vars) == 0 {
				return fmt.Errorf("ocean: output variable %s does not use any model variables", name)
			}
			for _, v := range vars {
				f, err := d.Field(v)
				if err != nil {
					return err
				}
				if o.dims[name] == nil {
					o.dims[name] = f.Dims
				} else if !sameDims(o.dims[name], f.Dims) {
					return fmt.Errorf("ocean: output variable %s combines variables with dimensions %v and %v",
						name, o.dims[name], f.Dims)
				}
			}
		}
		return nil
	}
}

func sameDims(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Results calculates the output variables of o from the fields of d.
// 2-D variables are returned in [nVertLevels, n] order.
func (d *Model) Results(o *Outputter) (map[string][]float64, error) {
	fields := make(map[string][]float64)
	for _, f := range d.Fields() {
		fields[f.Name] = f.Data.Elements
	}
	out := make(map[string][]float64, len(o.names))
	for _, name := range o.names {
		e := o.expressions[name]
		vars := e.Vars()
		n := len(fields[vars[0]])
		vals := make([]float64, n)
		params := make(map[string]interface{}, len(vars))
		for i := 0; i < n; i++ {
			for _, v := range vars {
				params[v] = fields[v][i]
			}
			r, err := e.Evaluate(params)
			if err != nil {
				return nil, fmt.Errorf("ocean: calculating output variable %s: %v", name, err)
			}
			switch rr := r.(type) {
			case float64:
				vals[i] = rr
			case bool:
				if rr {
					vals[i] = 1
				}
			default:
				return nil, fmt.Errorf("ocean: output variable %s has unsupported type %T", name, r)
			}
		}
		out[name] = vals
	}
	return out, nil
}

// Output returns a function that writes the output variables of d to
// the next record of the output file, creating the file on the first call.
func (o *Outputter) Output() DomainManipulator {
	return func(d *Model) error {
		if o.dims == nil {
			if err := o.CheckOutputVars()(d); err != nil {
				return err
			}
		}
		if o.f == nil {
			if err := o.create(d); err != nil {
				return err
			}
		}
		results, err := d.Results(o)
		if err != nil {
			return err
		}
		for _, name := range o.names {
			data := results[name]
			if dims := o.dims[name]; len(dims) == 2 {
				data = transposeLevels(reshape(data, d, dims))
			}
			if err := ncf.WriteRecord(o.f, name, o.rec, data); err != nil {
				return fmt.Errorf("ocean: writing output variable %s: %v", name, err)
			}
		}
		var t string
		if d.Clock != nil {
			t = timekeeping.FormatTime(d.Clock.Current)
		}
		t = fmt.Sprintf("%-*s", strLen, t)[:strLen]
		if _, err := o.f.Writer("xtime", []int{o.rec, 0}, nil).Write(t); err != nil {
			return fmt.Errorf("ocean: writing output time: %v", err)
		}
		o.rec++
		return nil
	}
}

const strLen = 64

// reshape puts data into a [nVertLevels, n] array, where n is the size
// of the horizontal dimension in dims.
func reshape(data []float64, d *Model, dims []string) *sparse.DenseArray {
	n := d.Mesh.NCells
	if dims[1] == "nEdges" {
		n = d.Mesh.NEdges
	}
	a := sparse.ZerosDense(d.Mesh.NVertLevels, n)
	copy(a.Elements, data)
	return a
}

func (o *Outputter) create(d *Model) error {
	w, err := os.Create(o.fileName)
	if err != nil {
		return fmt.Errorf("ocean: creating output file: %v", err)
	}
	h := cdf.NewHeader(
		[]string{"Time", "nCells", "nEdges", "nVertLevels", "StrLen"},
		[]int{0, d.Mesh.NCells, d.Mesh.NEdges, d.Mesh.NVertLevels, strLen})
	h.AddAttribute("", "comment", "MPAS-Ocean diagnostics")
	attrs := make([]string, 0, len(o.Attributes))
	for k := range o.Attributes {
		attrs = append(attrs, k)
	}
	sort.Strings(attrs)
	for _, k := range attrs {
		h.AddAttribute("", k, o.Attributes[k])
	}
	h.AddVariable("xtime", []string{"Time", "StrLen"}, "")
	for _, name := range o.names {
		dims := o.dims[name]
		if len(dims) == 2 {
			// Files store the vertical dimension innermost.
			dims = []string{dims[1], dims[0]}
		}
		h.AddVariable(name, append([]string{"Time"}, dims...), []float64{0})
		h.AddAttribute(name, "expression", o.outputVariables[name])
		if f, err := d.Field(name); err == nil {
			h.AddAttribute(name, "units", f.Units)
			h.AddAttribute(name, "long_name", f.Description)
		}
	}
	h.Define()
	f, err := cdf.Create(w, h)
	if err != nil {
		w.Close()
		return fmt.Errorf("ocean: creating output file: %v", err)
	}
	o.w, o.f = w, f
	return nil
}

// Close returns a function that finalizes and closes the output file.
func (o *Outputter) Close() DomainManipulator {
	return func(d *Model) error {
		if o.w == nil {
			return nil
		}
		defer func() { o.w, o.f = nil, nil }()
		if err := cdf.UpdateNumRecs(o.w); err != nil {
			o.w.Close()
			return err
		}
		return o.w.Close()
	}
}

// Records returns the number of records that have been written.
func (o *Outputter) Records() int { return o.rec }
