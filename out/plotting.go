// Copyright 2024 The emfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"path/filepath"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/csem-bench/emfem/inp"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// plot size
var (
	PlotWidth  = 16 * vg.Centimeter
	PlotHeight = 10 * vg.Centimeter
)

// PlotLines plots real and imaginary parts of the line variables of a dataset
//  x  -- coordinates along lines. nil => coordinates are read from variable DimX or sample indices are used
//  fn -- filename with extension defining the format; e.g. layered_custEM_p2.png
func PlotLines(ds *Dataset, targets []LineTarget, x []float64, fn string, verbose bool) (err error) {

	// coordinates
	if x == nil {
		if v := ds.Var(DimX); v != nil {
			x, _ = v.Data.([]float64)
		}
	}

	// curves
	p := plot.New()
	p.Title.Text = strings.TrimSuffix(filepath.Base(fn), filepath.Ext(fn))
	p.X.Label.Text = "x"
	p.Y.Label.Text = "field"
	var curves []interface{}
	for _, t := range targets {
		vals, e := lineValues(ds, t.Var)
		if e != nil {
			return e
		}
		if x != nil && len(x) != len(vals) {
			return chk.Err("variable %q has %d samples but there are %d coordinates", t.Var, len(vals), len(x))
		}
		re := make(plotter.XYs, len(vals))
		im := make(plotter.XYs, len(vals))
		for i, v := range vals {
			xi := float64(i)
			if x != nil {
				xi = x[i]
			}
			re[i].X, re[i].Y = xi, real(v)
			im[i].X, im[i].Y = xi, imag(v)
		}
		curves = append(curves, "Re "+t.Var, re, "Im "+t.Var, im)
	}
	err = plotutil.AddLines(p, curves...)
	if err != nil {
		return chk.Err("cannot add lines to plot:\n%v", err)
	}

	// save
	err = p.Save(PlotWidth, PlotHeight, fn)
	if err != nil {
		return chk.Err("cannot save plot:\n%v", err)
	}
	if verbose {
		io.Pfblue2("file <%s> written\n", fn)
	}
	return
}

// PlotSim plots the exported datasets of a simulation
func PlotSim(sim *inp.Simulation, verbose bool) (files []string, err error) {
	exp := &sim.Export
	if exp.Plot == "" {
		return nil, chk.Err("plot format must be given")
	}
	targets := Targets(exp)
	for _, s := range sim.Scenarios {
		if s.Skip {
			continue
		}
		fn := filepath.Join(exp.DirOut, FileName(s.Label, exp.CodeLabel(), exp.Ext))
		ds, e := ReadDataset(fn)
		if e != nil {
			return files, e
		}
		fnplt := filepath.Join(exp.DirOut, FileName(s.Label, exp.CodeLabel(), exp.Plot))
		err = PlotLines(ds, targets, nil, fnplt, verbose)
		if err != nil {
			return
		}
		files = append(files, fnplt)
	}
	return
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

// lineValues returns the complex samples stored in a line variable
func lineValues(ds *Dataset, name string) (vals []complex128, err error) {
	v := ds.Var(name)
	if v == nil {
		return nil, chk.Err("dataset has no variable %q", name)
	}
	switch data := v.Data.(type) {
	case []float64:
		return Split(data)
	case []float32:
		f64 := make([]float64, len(data))
		for i, f := range data {
			f64[i] = float64(f)
		}
		return Split(f64)
	}
	return nil, chk.Err("variable %q must be of type DOUBLE or FLOAT", name)
}
