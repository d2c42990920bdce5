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
	"github.com/stretchr/testify/require"
)

func Test_dataset01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dataset01. round trip")

	// dataset with all kinds of attributes
	ds := testTemplate(4)
	ds.SetAttrs(testMeta(time.Now()).Attrs())
	ds.Var("line_2").Data = []float64{1, 2, 3, 4, -1, -2, -3, -4}
	ds.Vars = append(ds.Vars, &Variable{Name: "label", Dims: []string{DimX}, Data: "abcd"})

	// save and read
	fn := filepath.Join(tst.TempDir(), "ds.nc")
	require.NoError(tst, ds.Save(fn, false, chk.Verbose))
	res, err := ReadDataset(fn)
	require.NoError(tst, err)

	// check
	chk.Strings(tst, "dims", res.Dims, []string{DimX, DimLine})
	chk.Ints(tst, "lengths", res.Lengths, []int{4, 8})
	chk.String(tst, res.Attr("title").(string), "test survey")
	chk.String(tst, res.Attr("NOTE").(string), "final")
	chk.Int32s(tst, "n_procs", res.Attr("n_procs").([]int32), []int32{48})
	chk.Array(tst, "max_volume", 1e-17, res.Attr("max_volume").([]float64), []float64{1e9})
	chk.Array(tst, "x", 1e-17, res.Var(DimX).Data.([]float64), []float64{0, 1, 2, 3})
	chk.Array(tst, "line_2", 1e-17, res.Var("line_2").Data.([]float64), []float64{1, 2, 3, 4, -1, -2, -3, -4})
	chk.String(tst, res.Var("label").Data.(string), "abcd")
	require.Len(tst, res.Var("line_1").Attrs, 1)
	chk.String(tst, res.Var("line_1").Attrs[0].Value.(string), "real parts followed by imaginary parts of t1_E_t")

	// attributes keep their order
	var names []string
	for _, a := range res.Attrs {
		names = append(names, a.Name)
	}
	chk.Strings(tst, "attributes", names, append([]string{"title"}, MetaKeys...))
}

func Test_dataset02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dataset02. overwrite policy and atomic write")

	dir := tst.TempDir()
	fn := filepath.Join(dir, "ds.nc")
	ds := testTemplate(3)
	require.NoError(tst, ds.Save(fn, false, chk.Verbose))
	before, err := os.ReadFile(fn)
	require.NoError(tst, err)

	// not overwriting
	ds.Var("line_1").Data = []float64{1, 1, 1, 1, 1, 1}
	err = ds.Save(fn, false, chk.Verbose)
	require.Error(tst, err)
	require.Contains(tst, err.Error(), "overwrite is off")
	after, _ := os.ReadFile(fn)
	require.Equal(tst, before, after)

	// invalid dataset leaves the previous file untouched
	bad := ds.Clone()
	bad.Var("line_1").Dims = []string{"nonexistent"}
	require.Error(tst, bad.Save(fn, true, chk.Verbose))
	after, _ = os.ReadFile(fn)
	require.Equal(tst, before, after)

	// overwriting
	require.NoError(tst, ds.Save(fn, true, chk.Verbose))
	res, err := ReadDataset(fn)
	require.NoError(tst, err)
	chk.Array(tst, "line_1", 1e-17, res.Var("line_1").Data.([]float64), []float64{1, 1, 1, 1, 1, 1})

	// no temporary files are left
	files, _ := filepath.Glob(filepath.Join(dir, ".tmp-*"))
	chk.Int(tst, "ntmp", len(files), 0)

	// missing template
	_, err = ReadDataset(filepath.Join(dir, "missing.nc"))
	require.Error(tst, err)
}

func Test_dataset03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dataset03. variables filled to their end")

	dir := tst.TempDir()
	fn := filepath.Join(dir, "layered_custEM_p2.nc")
	tpl, err := NewTemplate("t", []LineTarget{{Var: "line_1", Id: "t1_E_t"}}, []float64{0, 1})
	require.NoError(tst, err)
	err = tpl.Save(fn, true, chk.Verbose)
	if err != nil {
		tst.Errorf("Save failed:\n%v", err)
		return
	}
	res, err := ReadDataset(fn)
	require.NoError(tst, err)
	chk.Array(tst, "x", 1e-17, res.Var(DimX).Data.([]float64), []float64{0, 1})
	chk.Array(tst, "line_1", 1e-17, res.Var("line_1").Data.([]float64), []float64{0, 0, 0, 0})

	// one element per variable and all data types
	ds := &Dataset{Dims: []string{"one"}, Lengths: []int{1}}
	ds.Vars = []*Variable{
		{Name: "b", Dims: []string{"one"}, Data: []uint8{7}},
		{Name: "c", Dims: []string{"one"}, Data: "z"},
		{Name: "s", Dims: []string{"one"}, Data: []int16{-3}},
		{Name: "i", Dims: []string{"one"}, Data: []int32{5}},
		{Name: "f", Dims: []string{"one"}, Data: []float32{0.5}},
		{Name: "d", Dims: []string{"one"}, Data: []float64{-2.5}},
	}
	fn = filepath.Join(dir, "one.nc")
	require.NoError(tst, ds.Save(fn, true, chk.Verbose))
	res, err = ReadDataset(fn)
	require.NoError(tst, err)
	require.Equal(tst, []uint8{7}, res.Var("b").Data)
	require.Equal(tst, "z", res.Var("c").Data)
	require.Equal(tst, []int16{-3}, res.Var("s").Data)
	require.Equal(tst, []int32{5}, res.Var("i").Data)
	require.Equal(tst, []float32{0.5}, res.Var("f").Data)
	require.Equal(tst, []float64{-2.5}, res.Var("d").Data)
}

func Test_dataset04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dataset04. netCDF-4 template")

	fn := filepath.Join(tst.TempDir(), "block_model_and_survey.nc")
	data := append([]byte("\x89HDF\r\n\x1a\n"), make([]byte, 64)...)
	require.NoError(tst, os.WriteFile(fn, data, 0644))
	_, err := ReadDataset(fn)
	require.Error(tst, err)
	require.Contains(tst, err.Error(), "netCDF-4/HDF5 which is not supported")
}
