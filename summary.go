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
	"io"
	"text/tabwriter"

	"github.com/ctessum/unit"
	"gonum.org/v1/gonum/floats"
)

// FieldSummary holds summary statistics of one model field.
type FieldSummary struct {
	Name           string
	Min, Max, Mean *unit.Unit
}

// Summarize returns the minimum, maximum and mean of each field of d over
// the owned cells and edges. Fields that contain NaN values return an
// error.
func (d *Model) Summarize() ([]FieldSummary, error) {
	var o []FieldSummary
	for _, f := range d.Fields() {
		vals := d.owned(f)
		if len(vals) == 0 {
			continue
		}
		if floats.HasNaN(vals) {
			return nil, fmt.Errorf("ocean: field %s contains NaN values", f.Name)
		}
		s := FieldSummary{
			Name: f.Name,
			Min:  unit.New(floats.Min(vals), f.Dimensions),
			Max:  unit.New(floats.Max(vals), f.Dimensions),
			Mean: unit.New(floats.Sum(vals)/float64(len(vals)), f.Dimensions),
		}
		if err := s.Max.Check(f.Dimensions); err != nil {
			return nil, fmt.Errorf("ocean: field %s: %v", f.Name, err)
		}
		o = append(o, s)
	}
	return o, nil
}

// owned returns the values of f at owned cells or edges.
func (d *Model) owned(f Field) []float64 {
	horiz := f.Dims[len(f.Dims)-1]
	var n, nOwned int
	switch horiz {
	case "nCells":
		n, nOwned = d.Mesh.NCells, d.Mesh.CellRange(1)
	case "nEdges":
		n, nOwned = d.Mesh.NEdges, d.Mesh.EdgeRange(1)
	default:
		return f.Data.Elements
	}
	nz := len(f.Data.Elements) / max(n, 1)
	o := make([]float64, 0, nz*nOwned)
	for k := 0; k < nz; k++ {
		o = append(o, f.Data.Elements[k*n:k*n+nOwned]...)
	}
	return o
}

// WriteSummary writes a table of the summary statistics in s to w.
func WriteSummary(w io.Writer, s []FieldSummary) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "Field\tMin\tMax\tMean\t")
	for _, f := range s {
		fmt.Fprintf(tw, "%s\t%.4g\t%.4g\t%.4g\t\n", f.Name, f.Min, f.Max, f.Mean)
	}
	return tw.Flush()
}
