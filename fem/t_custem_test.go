// Copyright 2024 The emfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
	"github.com/stretchr/testify/require"
)

// fakePython writes an interpreter which ignores the script and writes out as the results file
func fakePython(tst *testing.T, dir string, out *custemOutput) string {
	b, err := json.Marshal(out)
	require.NoError(tst, err)
	fn := filepath.Join(dir, "fakepython")
	sh := "#!/bin/sh\ncat > \"${1%run.py}out.json\" <<'EOF'\n" + string(b) + "\nEOF\n"
	require.NoError(tst, os.WriteFile(fn, []byte(sh), 0755))
	return fn
}

func Test_custem01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("custem01. script")

	sim := readSim("csem.sim", tst.TempDir())
	blk := sim.GetScenario("block")
	o, err := NewFEM(sim, blk, 2, chk.Verbose)
	require.NoError(tst, err)
	lib := o.Lib.(*Custem)

	_, err = lib.Script()
	require.Error(tst, err)

	require.NoError(tst, lib.UpdateParameters(&blk.Params))
	require.NoError(tst, lib.BuildVarForm())
	require.NoError(tst, lib.Solve(blk.ConvertH))
	for _, l := range blk.Lines {
		require.NoError(tst, lib.CreateLine(l))
	}
	require.Error(tst, lib.CreateLine(blk.Lines[0]))
	require.Error(tst, lib.Interpolate("l1m_line_x", "H_t"))
	require.Error(tst, lib.Interpolate("l9m_line_x", "E_t"))
	for _, l := range blk.Lines {
		require.NoError(tst, lib.Interpolate(l.Key(), "E_t"))
	}

	script, err := lib.Script()
	require.NoError(tst, err)
	if chk.Verbose {
		io.Pf("%s\n", script)
	}
	for _, s := range []string{
		`M = MOD("p2", "block_model_p2", "E_t", p=2, overwrite=True,`,
		`sigma_anom=[0.1,0.01,0.002],`,
		`J=800)`,
		`M.solve_main_problem(convert_to_H=False)`,
		`M.IB.create_line_meshes("x", x0=-10000, x1=10000, y=-3000, z=-600.1, n_segs=100, line_name="l1m")`,
		`M.IB.interpolate("l3m_line_x", "E_t")`,
		`P.import_line_data("l2m_line_x", key="k1", EH="E")`,
		`d = np.asarray(P.line_data["k1_E_t"])`,
		`M.IB.synchronize()`,
	} {
		if !strings.Contains(script, s) {
			tst.Errorf("script does not contain:\n%s", s)
		}
	}

	name, args := lib.Command("run.py")
	chk.String(tst, name, "mpirun")
	chk.Strings(tst, "args", args, []string{"-n", "48", "python3", "run.py"})
	lib.Lib.Mpirun = ""
	name, args = lib.Command("run.py")
	chk.String(tst, name, "python3")
	chk.Strings(tst, "args", args, []string{"run.py"})
}

func Test_custem02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("custem02. run with fake interpreter")

	// results written by interpreter
	dirout := tst.TempDir()
	sim := readSim("csem.sim", dirout)
	blk := sim.GetScenario("block")
	out := &custemOutput{
		Version: "custEM v1.0.0",
		Stats: Stats{Nprocs: 48, MaxRAM: 281.8, Ncells: 1000, Nnodes: 200, Ndof: 5000, MinVol: 0.1, MaxVol: 1e9,
			Bounds: [][]float64{{-1e5, 1e5}, {-1e5, 1e5}, {-1e5, 1e5}}},
	}
	for i, l := range blk.Lines {
		re := utlAlloc(l.Npts(), 3, float64(i))
		im := utlAlloc(l.Npts(), 3, -float64(i))
		out.Lines = append(out.Lines, custemLine{Line: l.Key(), Field: "E_t", Re: re, Im: im})
	}
	sim.Library.Python = fakePython(tst, tst.TempDir(), out)
	sim.Library.Mpirun = ""

	// run
	o, err := NewFEM(sim, blk, 2, chk.Verbose)
	require.NoError(tst, err)
	err = o.Run()
	if err != nil {
		tst.Errorf("Run failed:\n%v", err)
		return
	}

	// check
	res, err := ReadResults(dirout, o.Key, sim.EncType)
	require.NoError(tst, err)
	chk.String(tst, res.Sum.Version, "custEM v1.0.0")
	chk.Int(tst, "ndof", res.Sum.Stats.Ndof, 5000)
	chk.Int(tst, "nlines", len(res.Lines), 3)
	Ex, err := res.Get("l2m_line_x", "E_t").Component(0)
	require.NoError(tst, err)
	chk.Int(tst, "npts", len(Ex), 101)
	chk.Complex128(tst, "Ex[100]", 1e-17, Ex[100], 1-1i)
}

func Test_custem03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("custem03. failures do not persist results")

	// failing interpreter
	dirout := tst.TempDir()
	sim := readSim("csem.sim", dirout)
	blk := sim.GetScenario("block")
	sim.Library.Python = "false"
	sim.Library.Mpirun = ""
	o, err := NewFEM(sim, blk, 2, chk.Verbose)
	require.NoError(tst, err)
	err = o.Run()
	require.Error(tst, err)
	require.Contains(tst, err.Error(), "synchronize failed")
	_, err = ReadResults(dirout, o.Key, sim.EncType)
	require.Error(tst, err)

	// interpreter with wrong number of samples
	dir := tst.TempDir()
	out := &custemOutput{Version: "custEM v1.0.0"}
	for _, l := range blk.Lines {
		out.Lines = append(out.Lines, custemLine{Line: l.Key(), Field: "E_t", Re: utlAlloc(3, 3, 0), Im: utlAlloc(3, 3, 0)})
	}
	sim.Library.Python = fakePython(tst, dir, out)
	o, err = NewFEM(sim, blk, 2, chk.Verbose)
	require.NoError(tst, err)
	err = o.Run()
	require.Error(tst, err)
	require.Contains(tst, err.Error(), "3 samples")
	_, err = os.Stat(out_lines_path(dirout, o.Key, sim.EncType))
	require.True(tst, os.IsNotExist(err))
}

// utlAlloc allocates a matrix filled with v
func utlAlloc(m, n int, v float64) (a [][]float64) {
	a = utl.Alloc(m, n)
	for i := range a {
		utl.Fill(a[i], v)
	}
	return
}
