// Copyright 2024 The emfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/csem-bench/emfem/fem"
	"github.com/csem-bench/emfem/inp"
	"github.com/stretchr/testify/require"
)

// readSim reads the whole space simulation and redirects all outputs to dir
func readSim(tst *testing.T, dir string) (sim *inp.Simulation) {
	sim, err := inp.ReadSim("../inp/data/ws.sim", "", false)
	require.NoError(tst, err)
	sim.DirOut = filepath.Join(dir, "results")
	sim.Export.Template = filepath.Join(dir, "survey.nc")
	sim.Export.DirOut = filepath.Join(dir, "export")
	require.NoError(tst, os.MkdirAll(sim.DirOut, 0777))
	return
}

func Test_export01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("export01. two scenarios")

	dir := tst.TempDir()
	date := time.Now()
	scenarios := []*Scenario{
		{Geology: "layered", Lines: testLines(), Meta: testMeta(date)},
		{Geology: "block", Lines: testLines(), Meta: testMeta(date)},
	}
	opts := &ExportOpts{DirOut: dir, Code: "custEM_p2", Ext: "nc", Targets: testTargets}
	files, err := Export(testTemplate(2), scenarios, opts)
	require.NoError(tst, err)
	chk.Strings(tst, "files", files, []string{
		filepath.Join(dir, "layered_custEM_p2.nc"),
		filepath.Join(dir, "block_custEM_p2.nc"),
	})
	for _, fn := range files {
		ds, err := ReadDataset(fn)
		require.NoError(tst, err)
		chk.Array(tst, "line_1", 1e-17, ds.Var("line_1").Data.([]float64), []float64{1, 3, 2, -1})
		chk.String(tst, ds.Attr("title").(string), "test survey")
	}

	// overwrite is off
	_, err = Export(testTemplate(2), scenarios, opts)
	require.Error(tst, err)
	io.Pforan("err = %v\n", err)
	require.Contains(tst, err.Error(), "overwrite is off")

	// overwrite is on
	opts.Overwrite = true
	_, err = Export(testTemplate(2), scenarios, opts)
	require.NoError(tst, err)

	// invalid inputs
	_, err = Export(nil, scenarios, opts)
	require.Error(tst, err)
	_, err = Export(testTemplate(2), []*Scenario{{Lines: testLines(), Meta: testMeta(date)}}, opts)
	require.Error(tst, err)
	_, err = Export(testTemplate(2), scenarios, &ExportOpts{DirOut: dir, Targets: testTargets})
	require.Error(tst, err)
}

func Test_export02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("export02. run, template, export and plot")

	// run
	dir := tst.TempDir()
	sim := readSim(tst, dir)
	err := fem.RunAll(sim, chk.Verbose)
	if err != nil {
		tst.Errorf("RunAll failed:\n%v", err)
		return
	}

	// template
	err = TemplateSim(sim, chk.Verbose)
	require.NoError(tst, err)
	tpl, err := ReadDataset(sim.Export.Template)
	require.NoError(tst, err)
	chk.Int(tst, "len(x)", tpl.Length(DimX), 5)
	chk.Int(tst, "len(line)", tpl.Length(DimLine), 10)
	chk.Array(tst, "x", 1e-12, tpl.Var(DimX).Data.([]float64), []float64{-1e4, -5e3, 0, 5e3, 1e4})

	// export
	files, err := ExportSim(sim, chk.Verbose)
	require.NoError(tst, err)
	chk.Strings(tst, "files", files, []string{
		filepath.Join(sim.Export.DirOut, "layered_custEM_p2.nc"),
		filepath.Join(sim.Export.DirOut, "block_custEM_p2.nc"),
	})

	// check exported values against model results
	for i, s := range []string{"layered", "block"} {
		scn := sim.GetScenario(s)
		res, err := fem.ReadResults(sim.DirOut, sim.ModelKey(scn, 2), sim.EncType)
		require.NoError(tst, err)
		ds, err := ReadDataset(files[i])
		require.NoError(tst, err)
		for _, l := range sim.Export.Lines {
			vals, err := Split(ds.Var(l.Var).Data.([]float64))
			require.NoError(tst, err)
			Ex, err := res.Get(l.Line, l.Field).Component(0)
			require.NoError(tst, err)
			chk.ArrayC(tst, io.Sf("%s: %s", s, l.Var), 1e-17, vals, Ex)
		}
		chk.String(tst, ds.Attr("machine").(string), "test machine")
		chk.String(tst, ds.Attr("version").(string), "wholespace 1.0")
		chk.String(tst, ds.Attr("NOTE").(string), "final")
		chk.Int32s(tst, "n_procs", ds.Attr("n_procs").([]int32), []int32{1})
		_, err = time.Parse(DateLayout, ds.Attr("date").(string))
		require.NoError(tst, err)
	}

	// plot
	plots, err := PlotSim(sim, chk.Verbose)
	require.NoError(tst, err)
	chk.Int(tst, "nplots", len(plots), 2)
	for _, fn := range plots {
		chk.String(tst, filepath.Ext(fn), ".png")
		info, err := os.Stat(fn)
		require.NoError(tst, err)
		require.True(tst, info.Size() > 0)
	}

	// overwrite is off
	sim.Export.Overwrite = false
	_, err = ExportSim(sim, chk.Verbose)
	require.Error(tst, err)
}

func Test_export03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("export03. missing results and template")

	dir := tst.TempDir()
	sim := readSim(tst, dir)

	// no template
	_, err := ExportSim(sim, chk.Verbose)
	require.Error(tst, err)

	// no results
	require.NoError(tst, TemplateSim(sim, chk.Verbose))
	_, err = ExportSim(sim, chk.Verbose)
	require.Error(tst, err)
	io.Pforan("err = %v\n", err)
	require.Contains(tst, err.Error(), "cannot read results")
	_, err = os.Stat(sim.Export.DirOut)
	require.True(tst, os.IsNotExist(err))
}
