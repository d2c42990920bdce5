// Copyright 2024 The emfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package out implements the export of model results to netCDF datasets
package out

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/csem-bench/emfem/fem"
	"github.com/csem-bench/emfem/inp"
)

// Scenario describes the data exported for one geology scenario
type Scenario struct {
	Geology string                  // geology label; e.g. layered
	Lines   map[string][]complex128 // maps line identifier to samples
	Meta    *Metadata               // metadata record
}

// ExportOpts holds options for exporting datasets
type ExportOpts struct {
	DirOut    string       // output directory
	Code      string       // code label; e.g. custEM_p2
	Ext       string       // file extension; e.g. nc
	Targets   []LineTarget // variables to be replaced
	Overwrite bool         // overwrite existent files
	Verbose   bool         // show messages
}

// FileName returns the name of an exported dataset; e.g. layered_custEM_p2.nc
func FileName(geology, code, ext string) string {
	return io.Sf("%s_%s.%s", geology, code, ext)
}

// Export writes one dataset per scenario
//  Note: the template is not modified. Scenarios are processed in order and the first failure stops
//  the export; files of previous scenarios are kept
func Export(tpl *Dataset, scenarios []*Scenario, opts *ExportOpts) (files []string, err error) {
	if tpl == nil {
		return nil, chk.Err("template dataset is required")
	}
	if opts.Code == "" || opts.Ext == "" {
		return nil, chk.Err("code label and file extension must be given")
	}
	if opts.DirOut != "" {
		err = os.MkdirAll(opts.DirOut, 0777)
		if err != nil {
			return nil, chk.Err("cannot create output directory:\n%v", err)
		}
	}
	for _, scn := range scenarios {
		if scn.Geology == "" {
			return files, chk.Err("geology label must not be empty")
		}
		ds, e := Assemble(tpl, scn.Lines, opts.Targets, scn.Meta)
		if e != nil {
			return files, chk.Err("scenario %q: %v", scn.Geology, e)
		}
		fn := filepath.Join(opts.DirOut, FileName(scn.Geology, opts.Code, opts.Ext))
		err = ds.Save(fn, opts.Overwrite, opts.Verbose)
		if err != nil {
			return files, chk.Err("scenario %q: %v", scn.Geology, err)
		}
		files = append(files, fn)
	}
	return
}

// Targets returns the line targets of the export data
func Targets(exp *inp.ExportData) (targets []LineTarget) {
	targets = make([]LineTarget, len(exp.Lines))
	for i, l := range exp.Lines {
		targets[i] = LineTarget{Var: l.Var, Id: l.Id()}
	}
	return
}

// Scenarios reads the results of all scenarios at the export order and builds export descriptors
//  date -- generation time of metadata
func Scenarios(sim *inp.Simulation, date time.Time) (scenarios []*Scenario, err error) {
	exp := &sim.Export
	for _, s := range sim.Scenarios {
		if s.Skip {
			continue
		}
		key := sim.ModelKey(s, exp.Order)
		res, e := fem.ReadResults(sim.DirOut, key, sim.EncType)
		if e != nil {
			return nil, chk.Err("cannot read results of model %q:\n%v", key, e)
		}
		lines, e := res.Import(exp.Lines, exp.Comp)
		if e != nil {
			return nil, chk.Err("model %q: %v", key, e)
		}
		scenarios = append(scenarios, &Scenario{
			Geology: s.Label,
			Lines:   lines,
			Meta:    NewMetadata(res.Sum, exp.Machine, exp.Extent, exp.Note, date),
		})
	}
	return
}

// ExportSim exports the results of all scenarios of a simulation
func ExportSim(sim *inp.Simulation, verbose bool) (files []string, err error) {
	exp := &sim.Export
	if len(exp.Lines) == 0 {
		return nil, chk.Err("no lines to export")
	}
	if verbose {
		io.Pfyel("\n> Export %s: template = <%s>\n", exp.CodeLabel(), exp.Template)
	}
	tpl, err := ReadDataset(exp.Template)
	if err != nil {
		return
	}
	scenarios, err := Scenarios(sim, time.Now())
	if err != nil {
		return
	}
	opts := &ExportOpts{
		DirOut:    exp.DirOut,
		Code:      exp.CodeLabel(),
		Ext:       exp.Ext,
		Targets:   Targets(exp),
		Overwrite: exp.Overwrite,
		Verbose:   verbose,
	}
	return Export(tpl, scenarios, opts)
}
