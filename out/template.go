// Copyright 2024 The emfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/csem-bench/emfem/inp"
)

// dimension names of generated templates
const (
	DimX    = "x"    // coordinates along lines
	DimLine = "line" // real block followed by imaginary block
)

// NewTemplate returns a survey template with one zeroed variable of length 2*npts per target
//  x -- [npts] coordinates along lines
func NewTemplate(title string, targets []LineTarget, x []float64) (o *Dataset, err error) {
	npts := len(x)
	if npts == 0 {
		return nil, chk.Err("template requires at least one coordinate")
	}
	if len(targets) == 0 {
		return nil, chk.Err("template requires at least one line")
	}
	if title == "" {
		title = "survey template"
	}
	o = &Dataset{
		Dims:    []string{DimX, DimLine},
		Lengths: []int{npts, 2 * npts},
		Attrs:   []*Attribute{{Name: "title", Value: title}},
	}
	o.Vars = append(o.Vars, &Variable{
		Name:  DimX,
		Dims:  []string{DimX},
		Attrs: []*Attribute{{Name: "units", Value: "m"}},
		Data:  append([]float64{}, x...),
	})
	for _, t := range targets {
		if o.Var(t.Var) != nil {
			return nil, chk.Err("variable %q is repeated", t.Var)
		}
		o.Vars = append(o.Vars, &Variable{
			Name: t.Var,
			Dims: []string{DimLine},
			Attrs: []*Attribute{
				{Name: "description", Value: io.Sf("real parts followed by imaginary parts of %s", t.Id)},
			},
			Data: make([]float64, 2*npts),
		})
	}
	return
}

// TemplateSim writes the template of a simulation using the lines of its first active scenario
func TemplateSim(sim *inp.Simulation, verbose bool) (err error) {
	exp := &sim.Export
	if len(exp.Lines) == 0 {
		return chk.Err("no lines to export")
	}
	var line *inp.LineData
	for _, s := range sim.Scenarios {
		if !s.Skip {
			line = s.GetLine(exp.Lines[0].Line)
			break
		}
	}
	if line == nil {
		return chk.Err("cannot find line %q", exp.Lines[0].Line)
	}
	tpl, err := NewTemplate(sim.Data.Desc, Targets(exp), line.Coords())
	if err != nil {
		return
	}
	return tpl.Save(exp.Template, exp.Overwrite, verbose)
}
