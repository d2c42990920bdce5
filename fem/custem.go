// Copyright 2024 The emfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/csem-bench/emfem/inp"
)

func init() {
	liballocators["custem"] = func(lib *inp.LibData, mdl *ModelData) (Library, error) {
		return NewCustem(lib, mdl)
	}
}

// Custem records the calls to the custEM library and runs them as one python script under MPI
//  Note: calls are batched; Synchronize renders the script, runs it and reads the results back
type Custem struct {
	Lib   *inp.LibData // library data
	Model *ModelData   // model identification

	// recorded calls
	Params   *inp.PhysParams // physical parameters
	VarForm  bool            // variational form was requested
	Solved   bool            // solve was requested
	ConvertH bool            // convert E-fields to H-fields
	Lines    []*inp.LineData // interpolation lines
	Interps  []custemInterp  // interpolation requests
	key2line map[string]bool // existent lines

	// results
	out *custemOutput
}

// NewCustem returns a new custEM bridge
func NewCustem(lib *inp.LibData, mdl *ModelData) (o *Custem, err error) {
	if lib.Python == "" {
		return nil, chk.Err("custem: python interpreter must be given")
	}
	if mdl.Mesh == "" || mdl.Mod == "" || mdl.Approach == "" {
		return nil, chk.Err("custem: model name, mesh name and approach must be given")
	}
	return &Custem{Lib: lib, Model: mdl, key2line: make(map[string]bool)}, nil
}

// UpdateParameters records the physical parameters
func (o *Custem) UpdateParameters(prms *inp.PhysParams) (err error) {
	if prms.SigGround == nil {
		return chk.Err("custem: conductivities have not been computed")
	}
	o.Params = prms
	return
}

// BuildVarForm records the request to build the variational form
func (o *Custem) BuildVarForm() (err error) {
	if o.Params == nil {
		return chk.Err("custem: parameters must be updated before building the variational form")
	}
	o.VarForm = true
	return
}

// Solve records the request to solve the main problem
func (o *Custem) Solve(convertToH bool) (err error) {
	if !o.VarForm {
		return chk.Err("custem: variational form must be built before solving")
	}
	o.Solved, o.ConvertH = true, convertToH
	return
}

// CreateLine records an interpolation line
func (o *Custem) CreateLine(line *inp.LineData) (err error) {
	if !o.Solved {
		return chk.Err("custem: lines must be created after solving")
	}
	if o.key2line[line.Key()] {
		return chk.Err("custem: line %q exists already", line.Key())
	}
	o.Lines = append(o.Lines, line)
	o.key2line[line.Key()] = true
	return
}

// Interpolate records an interpolation request
func (o *Custem) Interpolate(lineKey, field string) (err error) {
	if !o.key2line[lineKey] {
		return chk.Err("custem: cannot interpolate onto unknown line %q", lineKey)
	}
	if !inp.ValidField(field) {
		return chk.Err("custem: cannot interpolate unknown field %q", field)
	}
	if field[0] == 'H' && !o.ConvertH {
		return chk.Err("custem: H-fields are not available because conversion was switched off")
	}
	o.Interps = append(o.Interps, custemInterp{Line: lineKey, Field: field})
	return
}

// Synchronize runs the recorded calls and reads the interpolated data
func (o *Custem) Synchronize() (err error) {

	// script
	script, err := o.Script()
	if err != nil {
		return
	}
	err = os.MkdirAll(o.Model.DirOut, 0777)
	if err != nil {
		return chk.Err("custem: cannot create results directory:\n%v", err)
	}
	fnpy := o.path("run.py")
	fnout := o.path("out.json")
	err = os.WriteFile(fnpy, []byte(script), 0644)
	if err != nil {
		return chk.Err("custem: cannot write script:\n%v", err)
	}
	os.Remove(fnout)

	// run
	name, args := o.Command(fnpy)
	cmd := exec.Command(name, args...)
	cmd.Dir = o.Model.DirOut
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err = cmd.Run()
	if err != nil {
		return chk.Err("custem: %s %s failed: %v\n%s", name, strings.Join(args, " "), err, tail(stderr.String(), 20))
	}

	// results
	b, err := os.ReadFile(fnout)
	if err != nil {
		return chk.Err("custem: cannot read results of script:\n%v", err)
	}
	out := new(custemOutput)
	err = json.Unmarshal(b, out)
	if err != nil {
		return chk.Err("custem: cannot decode results in <%s>:\n%v", fnout, err)
	}
	o.out = out
	return
}

// Import returns the interpolated data of field along line
func (o *Custem) Import(lineKey, field string) (vals [][]complex128, err error) {
	if o.out == nil {
		return nil, chk.Err("custem: results are not available before synchronizing")
	}
	for _, l := range o.out.Lines {
		if l.Line != lineKey || l.Field != field {
			continue
		}
		if len(l.Re) != len(l.Im) {
			return nil, chk.Err("custem: line %q: real and imaginary parts have different lengths", lineKey)
		}
		vals = make([][]complex128, len(l.Re))
		for i := range l.Re {
			if len(l.Re[i]) != len(l.Im[i]) {
				return nil, chk.Err("custem: line %q: sample %d is inconsistent", lineKey, i)
			}
			vals[i] = make([]complex128, len(l.Re[i]))
			for j := range l.Re[i] {
				vals[i][j] = complex(l.Re[i][j], l.Im[i][j])
			}
		}
		return
	}
	return nil, chk.Err("custem: cannot find field %s along line %q", field, lineKey)
}

// Stats returns the statistics reported by the script
func (o *Custem) Stats() (stats *Stats, err error) {
	if o.out == nil {
		return nil, chk.Err("custem: statistics are not available before synchronizing")
	}
	s := o.out.Stats
	if s.Nprocs == 0 {
		s.Nprocs = o.Lib.Nprocs
	}
	return &s, nil
}

// Version returns the custEM version
func (o *Custem) Version() string {
	if o.out == nil {
		return ""
	}
	return o.out.Version
}

// Command returns the program and arguments running the script
func (o *Custem) Command(fnpy string) (name string, args []string) {
	if o.Lib.Mpirun == "" {
		return o.Lib.Python, []string{fnpy}
	}
	args = []string{"-n", io.Sf("%d", o.Lib.Nprocs)}
	args = append(args, o.Lib.Args...)
	args = append(args, o.Lib.Python, fnpy)
	return o.Lib.Mpirun, args
}

// Script renders the python script with all recorded calls
func (o *Custem) Script() (script string, err error) {
	if !o.Solved {
		return "", chk.Err("custem: nothing to run; main problem has not been solved")
	}
	data := &custemScript{
		ModelData: o.Model,
		Freq:      o.Params.Freq,
		Current:   o.Params.Current,
		SigGround: o.Params.SigGroundDeep2(),
		SigAnom:   o.Params.SigAnom,
		ConvertH:  o.ConvertH,
		Lines:     o.Lines,
		Interps:   o.Interps,
		Output:    o.path("out.json"),
	}
	for i, a := range o.Interps {
		data.Imports = append(data.Imports, custemImport{
			Line:  a.Line,
			Field: a.Field,
			Key:   io.Sf("k%d", i),
			EH:    a.Field[:1],
		})
	}
	var b bytes.Buffer
	err = custemTemplate.Execute(&b, data)
	if err != nil {
		return "", chk.Err("custem: cannot render script:\n%v", err)
	}
	return b.String(), nil
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

type custemInterp struct {
	Line  string // line key
	Field string // field; e.g. E_t
}

type custemImport struct {
	Line  string // line key
	Field string // field; e.g. E_t
	Key   string // import key
	EH    string // E or H
}

// Id returns the key of the imported data; e.g. k0_E_t
func (o custemImport) Id() string {
	return o.Key + "_" + o.Field
}

type custemScript struct {
	*ModelData
	Freq      float64
	Current   float64
	SigGround [][]float64
	SigAnom   []float64
	ConvertH  bool
	Lines     []*inp.LineData
	Interps   []custemInterp
	Imports   []custemImport
	Output    string
}

type custemLine struct {
	Line  string      `json:"line"`
	Field string      `json:"field"`
	Re    [][]float64 `json:"re"`
	Im    [][]float64 `json:"im"`
}

type custemOutput struct {
	Version string       `json:"version"`
	Stats   Stats        `json:"stats"`
	Lines   []custemLine `json:"lines"`
}

func (o *Custem) path(suffix string) string {
	return filepath.Join(o.Model.DirOut, io.Sf("%s_%s_%s", o.Model.Mesh, o.Model.Mod, suffix))
}

// tail returns the last n lines of s
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

var custemFuncs = template.FuncMap{
	"py": func(v interface{}) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
	"pybool": func(v bool) string {
		if v {
			return "True"
		}
		return "False"
	},
	"fixed": func(l *inp.LineData) string {
		a, b := l.FixedCoords()
		switch l.Axis {
		case "x":
			return io.Sf("y=%v, z=%v", a, b)
		case "y":
			return io.Sf("x=%v, z=%v", a, b)
		}
		return io.Sf("x=%v, y=%v", a, b)
	},
}

var custemTemplate = template.Must(template.New("custem").Funcs(custemFuncs).Parse(`# generated by emfem. do not edit
import json
import resource
import numpy as np
from mpi4py import MPI
from custEM.core import MOD
from custEM.post import PlotFD
import custEM as ce

comm = MPI.COMM_WORLD

M = MOD({{py .Mod}}, {{py .Mesh}}, {{py .Approach}}, p={{.Order}}, overwrite={{pybool .Overwrite}},
        m_dir={{py .MeshDir}}, r_dir={{py .DirOut}})

M.MP.update_model_parameters(f={{.Freq}},
                             sigma_ground={{py .SigGround}},{{if .SigAnom}}
                             sigma_anom={{py .SigAnom}},{{end}}
                             J={{.Current}})
M.FE.build_var_form()
M.solve_main_problem(convert_to_H={{pybool .ConvertH}})
{{range .Lines}}
M.IB.create_line_meshes({{py .Axis}}, x0={{.X0}}, x1={{.X1}}, {{fixed .}}, n_segs={{.Nsegs}}, line_name={{py .Name}})
{{- end}}
{{range .Interps}}
M.IB.interpolate({{py .Line}}, {{py .Field}})
{{- end}}
M.IB.synchronize()

xyz = M.FS.mesh.coordinates()
lo = [comm.allreduce(v, op=MPI.MIN) for v in xyz.min(axis=0).tolist()]
hi = [comm.allreduce(v, op=MPI.MAX) for v in xyz.max(axis=0).tolist()]
ram = comm.allreduce(resource.getrusage(resource.RUSAGE_SELF).ru_maxrss, op=MPI.SUM)

if comm.Get_rank() == 0:
    P = PlotFD(mod={{py .Mod}}, mesh={{py .Mesh}}, approach={{py .Approach}}, r_dir={{py .DirOut}})
    out = {'version': ce.__version__, 'lines': []}
{{- range .Imports}}
    P.import_line_data({{py .Line}}, key={{py .Key}}, EH={{py .EH}})
    d = np.asarray(P.line_data[{{py .Id}}])
    out['lines'].append({'line': {{py .Line}}, 'field': {{py .Field}}, 're': d.real.tolist(), 'im': d.imag.tolist()})
{{- end}}
    out['stats'] = {
        'nprocs': comm.Get_size(),
        'max_ram': ram / 1024.**2,
        'n_cells': int(P.cells),
        'n_nodes': int(P.nodes),
        'n_dof': int(P.dof),
        'min_vol': float(P.min_volume),
        'max_vol': float(P.max_volume),
        'bounds': [[lo[i], hi[i]] for i in range(3)],
    }
    with open({{py .Output}}, 'w') as f:
        json.dump(out, f)
`))
