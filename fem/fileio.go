// Copyright 2024 The emfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/csem-bench/emfem/inp"
)

// LineResult holds the field interpolated onto one line
type LineResult struct {
	Line  string      // line key; e.g. l1m_line_x
	Field string      // field; e.g. E_t
	X     []float64   // [npts] coordinates along line axis
	Re    [][]float64 // [npts][3] real part of x, y and z components
	Im    [][]float64 // [npts][3] imaginary part of x, y and z components
}

// NewLineResult returns a new line result after checking the number of samples
func NewLineResult(line *inp.LineData, field string, vals [][]complex128) (o *LineResult, err error) {
	if len(vals) != line.Npts() {
		return nil, chk.Err("line %q: field %s has %d samples but %d segments require %d", line.Key(), field, len(vals), line.Nsegs, line.Npts())
	}
	o = &LineResult{Line: line.Key(), Field: field, X: line.Coords()}
	o.Re = make([][]float64, len(vals))
	o.Im = make([][]float64, len(vals))
	for i, v := range vals {
		if len(v) != inp.Ncomps {
			return nil, chk.Err("line %q: sample %d of field %s has %d components. %d are required", line.Key(), i, field, len(v), inp.Ncomps)
		}
		o.Re[i] = make([]float64, inp.Ncomps)
		o.Im[i] = make([]float64, inp.Ncomps)
		for j, c := range v {
			o.Re[i][j], o.Im[i][j] = real(c), imag(c)
		}
	}
	return
}

// Component returns the complex values of one component along the line
func (o *LineResult) Component(comp int) (vals []complex128, err error) {
	if comp < 0 || comp >= inp.Ncomps {
		return nil, chk.Err("component index %d is out of range [0, %d)", comp, inp.Ncomps)
	}
	vals = make([]complex128, len(o.Re))
	for i := range o.Re {
		vals[i] = complex(o.Re[i][comp], o.Im[i][comp])
	}
	return
}

// Results holds all results of one model read back from the results directory
type Results struct {
	Sum   *Summary      // summary of run
	Lines []*LineResult // interpolated lines

	// auxiliary
	id2res map[string]*LineResult // maps line:field to result
}

// ReadResults reads summary and line results of one model
func ReadResults(dir, key, enctype string) (o *Results, err error) {
	o = new(Results)
	o.Sum, err = ReadSum(dir, key, enctype)
	if err != nil {
		return nil, err
	}
	o.Lines, err = ReadLines(dir, key, enctype)
	if err != nil {
		return nil, err
	}
	o.id2res = make(map[string]*LineResult)
	for _, l := range o.Lines {
		o.id2res[l.Line+":"+l.Field] = l
	}
	return
}

// Get returns the result of field along line
//  Note: returns nil if not found
func (o *Results) Get(lineKey, field string) *LineResult {
	return o.id2res[lineKey+":"+field]
}

// Import collects one component of the exported lines into a map keyed by line identifier; e.g. t1_E_t
//  Note: lines absent from results are not added to the map
func (o *Results) Import(targets []*inp.ExportLine, comp int) (data map[string][]complex128, err error) {
	data = make(map[string][]complex128)
	for _, t := range targets {
		res := o.Get(t.Line, t.Field)
		if res == nil {
			continue
		}
		data[t.Id()], err = res.Component(comp)
		if err != nil {
			return nil, chk.Err("line %q: %v", t.Line, err)
		}
	}
	return
}

// SaveLines saves line results to a file
func SaveLines(lines []*LineResult, dir, key, enctype string, verbose bool) (err error) {

	// buffer and encoder
	var buf bytes.Buffer
	enc := io.NewEncoder(&buf, enctype)

	// encode lines
	err = enc.Encode(lines)
	if err != nil {
		return chk.Err("cannot encode line results\n%v", err)
	}

	// save file
	return save_file(out_lines_path(dir, key, enctype), &buf, verbose)
}

// ReadLines reads line results from a file
func ReadLines(dir, key, enctype string) (lines []*LineResult, err error) {

	// open file
	fn := out_lines_path(dir, key, enctype)
	fil, err := os.Open(fn)
	if err != nil {
		return nil, chk.Err("cannot open line results file\n%v", err)
	}
	defer fil.Close()

	// decode lines
	dec := io.NewDecoder(fil, enctype)
	err = dec.Decode(&lines)
	if err != nil {
		return nil, chk.Err("cannot decode line results in <%s>\n%v", fn, err)
	}
	return
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

func out_lines_path(dir, key, enctype string) string {
	return filepath.Join(dir, io.Sf("%s_lines.%s", key, enctype))
}

func out_sum_path(dir, key, enctype string) string {
	return filepath.Join(dir, io.Sf("%s_sum.%s", key, enctype))
}

// save_file writes buf to a temporary file which is renamed to filename on success
func save_file(filename string, buf *bytes.Buffer, verbose bool) (err error) {
	fil, err := os.CreateTemp(filepath.Dir(filename), ".tmp-"+filepath.Base(filename)+"-*")
	if err != nil {
		return
	}
	tmp := fil.Name()
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()
	_, err = fil.Write(buf.Bytes())
	if err != nil {
		fil.Close()
		return
	}
	err = fil.Close()
	if err != nil {
		return
	}
	err = os.Rename(tmp, filename)
	if err != nil {
		return
	}
	if verbose {
		io.Pfblue2("file <%s> written\n", filename)
	}
	return
}
