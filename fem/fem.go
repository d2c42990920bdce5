// Copyright 2024 The emfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package fem drives the external finite element library to solve electromagnetic models
package fem

import (
	"os"
	"strings"
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/csem-bench/emfem/inp"
)

// FEM holds all data for solving one model and interpolating its field onto lines
type FEM struct {
	Sim     *inp.Simulation // simulation data
	Scn     *inp.Scenario   // geology scenario
	Key     string          // filename key of results; e.g. layered_earth_p2_E_t
	Model   *ModelData      // model identification
	Lib     Library         // external library
	Summary *Summary        // summary of run; available after Run
	Lines   []*LineResult   // interpolated lines; available after Run
	Verbose bool            // show messages
}

// NewFEM returns a new FEM structure
//  Input:
//   sim     -- simulation data
//   scn     -- geology scenario
//   order   -- polynomial order
//   verbose -- show messages
//  Note: parameters are checked before the library is touched
func NewFEM(sim *inp.Simulation, scn *inp.Scenario, order int, verbose bool) (o *FEM, err error) {

	// check parameters
	if scn.Params.SigGround == nil {
		err = scn.Params.PostProcess()
	} else {
		err = scn.Params.Check()
	}
	if err != nil {
		return nil, chk.Err("scenario %q: %v", scn.Label, err)
	}
	if order < 1 {
		return nil, chk.Err("scenario %q: polynomial order must be at least 1. %d is invalid", scn.Label, order)
	}

	// new FEM object
	o = &FEM{Sim: sim, Scn: scn, Key: sim.ModelKey(scn, order), Verbose: verbose}
	o.Model = &ModelData{
		Mod:       inp.Mod(order),
		Mesh:      scn.MeshName(order),
		Approach:  sim.Approach,
		Order:     order,
		MeshDir:   sim.MeshDir,
		DirOut:    sim.DirOut,
		Overwrite: sim.Data.Overwrite,
	}

	// previous results
	if !sim.Data.Overwrite {
		if _, e := os.Stat(out_sum_path(sim.DirOut, o.Key, sim.EncType)); e == nil {
			return nil, chk.Err("results of model %q exist and overwrite is off", o.Key)
		}
	}

	// construct model
	o.Lib, err = NewLibrary(&sim.Library, o.Model)
	if err != nil {
		return nil, chk.Err("cannot construct model %q:\n%v", o.Key, err)
	}
	return
}

// Run solves the model, interpolates all lines and saves results and summary
//  Note: nothing is saved if the library fails
func (o *FEM) Run() (err error) {

	// message
	if o.Verbose {
		io.Pfyel("\n> Model %s: mesh = %s, approach = %s\n", o.Model.Mod, o.Model.Mesh, o.Model.Approach)
		io.Pf("%v", &o.Scn.Params)
	}
	cputime := time.Now()

	// physical parameters
	o.msg("update parameters")
	err = o.Lib.UpdateParameters(&o.Scn.Params)
	if err != nil {
		return o.fail("update parameters", err)
	}

	// variational form
	o.msg("build variational form")
	err = o.Lib.BuildVarForm()
	if err != nil {
		return o.fail("build variational form", err)
	}

	// solve
	o.msg("solve main problem")
	err = o.Lib.Solve(o.Scn.ConvertH)
	if err != nil {
		return o.fail("solve", err)
	}

	// interpolation lines
	o.msg("create lines")
	for _, l := range o.Scn.Lines {
		err = o.Lib.CreateLine(l)
		if err != nil {
			return o.fail("create line "+l.Key(), err)
		}
	}
	o.msg("interpolate " + strings.Join(o.Scn.Fields, ", "))
	for _, l := range o.Scn.Lines {
		for _, f := range o.Scn.Fields {
			err = o.Lib.Interpolate(l.Key(), f)
			if err != nil {
				return o.fail("interpolate "+f+" onto "+l.Key(), err)
			}
		}
	}
	o.msg("synchronize")
	err = o.Lib.Synchronize()
	if err != nil {
		return o.fail("synchronize", err)
	}

	// import interpolated data
	lines := make([]*LineResult, 0, len(o.Scn.Lines)*len(o.Scn.Fields))
	for _, l := range o.Scn.Lines {
		for _, f := range o.Scn.Fields {
			vals, e := o.Lib.Import(l.Key(), f)
			if e != nil {
				return o.fail("import "+f+" of "+l.Key(), e)
			}
			res, e := NewLineResult(l, f, vals)
			if e != nil {
				return o.fail("import", e)
			}
			lines = append(lines, res)
		}
	}

	// statistics
	stats, err := o.Lib.Stats()
	if err != nil {
		return o.fail("statistics", err)
	}
	err = stats.Check()
	if err != nil {
		return o.fail("statistics", err)
	}
	now := time.Now()

	// summary
	o.Lines = lines
	o.Summary = &Summary{
		Key:      o.Key,
		Mod:      o.Model.Mod,
		Mesh:     o.Model.Mesh,
		Approach: o.Model.Approach,
		Order:    o.Model.Order,
		Runtime:  now.Sub(cputime).Seconds(),
		Stats:    *stats,
		Version:  o.Lib.Version(),
		Date:     now,
	}
	if o.Verbose {
		io.Pflmag("cpu time   = %v\n", now.Sub(cputime))
	}

	// save lines first; summary marks complete results
	err = SaveLines(o.Lines, o.Sim.DirOut, o.Key, o.Sim.EncType, o.Verbose)
	if err != nil {
		return
	}
	return o.Summary.Save(o.Sim.DirOut, o.Sim.EncType, o.Verbose)
}

// RunAll runs all models of all scenarios
//  Note: a failure aborts the remaining models of its scenario only. The first error is returned
func RunAll(sim *inp.Simulation, verbose bool) (err error) {
	for _, scn := range sim.Scenarios {
		if scn.Skip {
			continue
		}
		for _, p := range sim.Orders {
			e := runOne(sim, scn, p, verbose)
			if e != nil {
				if verbose {
					io.PfRed("> %v\n", e)
				}
				if err == nil {
					err = e
				}
				break
			}
		}
	}
	return
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

func runOne(sim *inp.Simulation, scn *inp.Scenario, order int, verbose bool) (err error) {
	o, err := NewFEM(sim, scn, order, verbose)
	if err != nil {
		return
	}
	return o.Run()
}

func (o *FEM) msg(step string) {
	if o.Verbose {
		io.Pf("> %s\n", step)
	}
}

func (o *FEM) fail(step string, err error) error {
	return chk.Err("model %q: %s failed:\n%v", o.Key, step, err)
}
