// Copyright 2024 The emfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from a (.sim) JSON file
package inp

import (
	"encoding/json"
	goio "io"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Data holds global data for simulations
type Data struct {
	Desc      string `json:"desc"`      // description of simulation
	MeshDir   string `json:"meshdir"`   // directory with meshes; e.g. ./meshes
	DirOut    string `json:"dirout"`    // directory for model results; e.g. ./results
	Encoder   string `json:"encoder"`   // encoder name; e.g. "gob" "json"
	Overwrite bool   `json:"overwrite"` // overwrite results of previous runs of the same model
}

// LibData holds data for the external finite element library
type LibData struct {
	Name   string   `json:"name"`   // library name; e.g. "custem", "wholespace"
	Python string   `json:"python"` // python interpreter; e.g. python3
	Mpirun string   `json:"mpirun"` // MPI launcher; e.g. mpirun. empty => run serial
	Nprocs int      `json:"nprocs"` // number of MPI processes
	Args   []string `json:"args"`   // extra launcher arguments; e.g. ["--bind-to", "core"]
}

// Scenario holds the data of one geology scenario
type Scenario struct {
	Label    string      `json:"label"`    // geology label; e.g. "layered" or "block"
	Mesh     string      `json:"mesh"`     // mesh name prefix; e.g. "layered_earth" => layered_earth_p2
	ConvertH bool        `json:"converth"` // convert E-fields to H-fields after solving
	Fields   []string    `json:"fields"`   // fields to be interpolated; e.g. ["E_t", "H_t"]
	Params   PhysParams  `json:"params"`   // physical parameters
	Lines    []*LineData `json:"lines"`    // interpolation lines
	Skip     bool        `json:"skip"`     // do not run scenario

	// derived
	key2line map[string]*LineData // maps line key to line data
}

// ExportLine pairs a dataset variable with the interpolated data of one line
type ExportLine struct {
	Var   string `json:"var"`   // dataset variable; e.g. "line_1"
	Line  string `json:"line"`  // line key; e.g. "l1m_line_x"
	Key   string `json:"key"`   // import key; e.g. "t1"
	Field string `json:"field"` // field; e.g. "E_t"
}

// ExportData holds data for exporting results to netCDF files
type ExportData struct {
	Template  string        `json:"template"`  // template dataset; e.g. ../block_model_and_survey.nc
	DirOut    string        `json:"dirout"`    // directory for datasets; e.g. ../results
	Order     int           `json:"order"`     // polynomial order of exported results
	Code      string        `json:"code"`      // code label prefix; e.g. "custEM" => custEM_p2
	Ext       string        `json:"ext"`       // file extension; e.g. "nc"
	Comp      int           `json:"comp"`      // field component: 0=x, 1=y, 2=z
	Lines     []*ExportLine `json:"lines"`     // exported lines
	Machine   string        `json:"machine"`   // machine description. empty => host description
	Extent    string        `json:"extent"`    // domain extent description. empty => from mesh bounds
	Note      string        `json:"note"`      // status note; e.g. "final"
	Overwrite bool          `json:"overwrite"` // overwrite existent datasets
	Plot      string        `json:"plot"`      // plot format; e.g. "png". empty => no plots
}

// Simulation holds all simulation data
type Simulation struct {

	// input
	Data      Data        `json:"data"`      // global simulation data
	Library   LibData     `json:"library"`   // external library data
	Approach  string      `json:"approach"`  // field approach; e.g. "E_t"
	Orders    []int       `json:"orders"`    // polynomial orders; e.g. [2, 1]
	Scenarios []*Scenario `json:"scenarios"` // all geology scenarios
	Export    ExportData  `json:"export"`    // export data

	// derived
	Key     string // simulation key; e.g. csem.sim => csem or csem-alias
	DirIn   string // directory of .sim file
	DirOut  string // directory to save model results
	MeshDir string // directory with meshes
	EncType string // encoder type
}

// Simulation //////////////////////////////////////////////////////////////////////////////////////

// ReadSim reads all simulation data from a .sim JSON file
//  Input:
//   simfilepath -- simulation (.sim) filename including full path
//   alias       -- word to be appended to simulation key
//   erasefiles  -- erase previous results of all models defined in file
func ReadSim(simfilepath, alias string, erasefiles bool) (o *Simulation, err error) {

	// read file
	b, err := os.ReadFile(os.ExpandEnv(simfilepath))
	if err != nil {
		return nil, chk.Err("cannot read simulation file %q:\n%v", simfilepath, err)
	}

	// set default values
	o = new(Simulation)
	o.SetDefault()

	// decode
	err = json.Unmarshal(b, o)
	if err != nil {
		return nil, chk.Err("cannot unmarshal simulation file %q:\n%v", simfilepath, err)
	}

	// input directory and filename key
	o.DirIn = os.ExpandEnv(filepath.Dir(simfilepath))
	o.Key = io.FnKey(simfilepath)
	if alias != "" {
		o.Key += "-" + alias
	}

	// derived data
	err = o.PostProcess()
	if err != nil {
		return nil, chk.Err("invalid simulation file %q:\n%v", simfilepath, err)
	}

	// create directory and erase previous model results
	err = os.MkdirAll(o.DirOut, 0777)
	if err != nil {
		return nil, chk.Err("cannot create directory for output results (%s): %v", o.DirOut, err)
	}
	if erasefiles {
		for _, scn := range o.Scenarios {
			for _, p := range o.Orders {
				io.RemoveAll(filepath.Join(o.DirOut, o.ModelKey(scn, p)+"_*"))
			}
		}
	}
	return
}

// SetDefault sets default values
func (o *Simulation) SetDefault() {
	o.Data.Encoder = "json"
	o.Data.Overwrite = true
	o.Library.Name = "custem"
	o.Library.Python = "python3"
	o.Library.Mpirun = "mpirun"
	o.Library.Nprocs = 1
	o.Approach = "E_t"
	o.Orders = []int{2, 1}
	o.Export.Order = 2
	o.Export.Code = "custEM"
	o.Export.Ext = "nc"
	o.Export.Note = "final"
	o.Export.Overwrite = true
}

// PostProcess checks the data just read and computes derived values
func (o *Simulation) PostProcess() (err error) {

	// directories
	o.DirOut = o.Path(o.Data.DirOut)
	if o.Data.DirOut == "" {
		o.DirOut = "/tmp/emfem/" + o.Key
	}
	o.MeshDir = o.Path(o.Data.MeshDir)
	if o.Data.MeshDir == "" {
		o.MeshDir = filepath.Join(o.DirIn, "meshes")
	}

	// encoder type
	o.EncType = o.Data.Encoder
	if o.EncType != "gob" && o.EncType != "json" {
		o.EncType = "gob"
	}

	// library and model
	if o.Library.Name == "" {
		return chk.Err("library name must be given")
	}
	if o.Library.Nprocs < 1 {
		o.Library.Nprocs = 1
	}
	if o.Approach == "" {
		return chk.Err("field approach must be given")
	}
	if len(o.Orders) == 0 {
		return chk.Err("at least one polynomial order must be given")
	}
	for _, p := range o.Orders {
		if p < 1 {
			return chk.Err("polynomial order must be at least 1. %d is invalid", p)
		}
	}

	// scenarios
	if len(o.Scenarios) == 0 {
		return chk.Err("at least one scenario must be given")
	}
	labels := make(map[string]bool)
	for i, scn := range o.Scenarios {
		if labels[scn.Label] {
			return chk.Err("scenario %d: label %q is repeated", i, scn.Label)
		}
		labels[scn.Label] = true
		err = scn.PostProcess()
		if err != nil {
			return chk.Err("scenario %d (%s): %v", i, scn.Label, err)
		}
	}

	// export data
	return o.Export.PostProcess(o)
}

// Path expands environment variables in p and resolves it with respect to the .sim file directory
func (o *Simulation) Path(p string) string {
	p = os.ExpandEnv(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(o.DirIn, p)
}

// ModelKey returns the filename key of the results of one model; e.g. layered_earth_p2_E_t
func (o *Simulation) ModelKey(scn *Scenario, order int) string {
	return io.Sf("%s_%s", scn.MeshName(order), o.Approach)
}

// GetScenario returns the scenario with given label
//  Note: returns nil if not found
func (o *Simulation) GetScenario(label string) *Scenario {
	for _, scn := range o.Scenarios {
		if scn.Label == label {
			return scn
		}
	}
	return nil
}

// GetInfo returns formatted information
func (o *Simulation) GetInfo(w goio.Writer) (err error) {
	b, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return
}

// Scenario ////////////////////////////////////////////////////////////////////////////////////////

// PostProcess checks the scenario and computes the physical parameters
func (o *Scenario) PostProcess() (err error) {
	if o.Label == "" {
		return chk.Err("geology label must not be empty")
	}
	if o.Mesh == "" {
		return chk.Err("mesh name must not be empty")
	}
	if len(o.Fields) == 0 {
		o.Fields = []string{"E_t"}
	}
	for _, f := range o.Fields {
		if !ValidField(f) {
			return chk.Err("field %q is invalid", f)
		}
	}
	if len(o.Lines) == 0 {
		return chk.Err("at least one interpolation line must be given")
	}
	o.key2line = make(map[string]*LineData)
	for _, l := range o.Lines {
		err = l.Check()
		if err != nil {
			return
		}
		if _, ok := o.key2line[l.Key()]; ok {
			return chk.Err("line %q is repeated", l.Key())
		}
		o.key2line[l.Key()] = l
	}
	return o.Params.PostProcess()
}

// MeshName returns the mesh name for a polynomial order; e.g. block_model_p2
func (o *Scenario) MeshName(order int) string {
	return io.Sf("%s_p%d", o.Mesh, order)
}

// Mod returns the model name for a polynomial order; e.g. p2
func Mod(order int) string {
	return io.Sf("p%d", order)
}

// GetLine returns the line with given key
//  Note: returns nil if not found
func (o *Scenario) GetLine(key string) *LineData {
	return o.key2line[key]
}

// HasField tells whether field is interpolated in this scenario
func (o *Scenario) HasField(field string) bool {
	for _, f := range o.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// ValidField tells whether field is a known field type; e.g. "E_t", "H_s"
func ValidField(field string) bool {
	switch field {
	case "E_t", "H_t", "E_s", "H_s":
		return true
	}
	return false
}

// Export //////////////////////////////////////////////////////////////////////////////////////////

// PostProcess checks export data against the scenarios
func (o *ExportData) PostProcess(sim *Simulation) (err error) {
	if len(o.Lines) == 0 {
		return
	}
	if o.Order < 1 {
		return chk.Err("export: polynomial order must be at least 1. %d is invalid", o.Order)
	}
	if o.Code == "" || o.Ext == "" {
		return chk.Err("export: code label and file extension must be given")
	}
	if o.Comp < 0 || o.Comp >= Ncomps {
		return chk.Err("export: component index %d is out of range [0, %d)", o.Comp, Ncomps)
	}
	vars := make(map[string]bool)
	for _, l := range o.Lines {
		if l.Var == "" || l.Key == "" {
			return chk.Err("export: variable and key of line %q must be given", l.Line)
		}
		if vars[l.Var] {
			return chk.Err("export: variable %q is repeated", l.Var)
		}
		vars[l.Var] = true
		for _, scn := range sim.Scenarios {
			if scn.Skip {
				continue
			}
			if scn.GetLine(l.Line) == nil {
				return chk.Err("export: line %q is not defined in scenario %q", l.Line, scn.Label)
			}
			if !scn.HasField(l.Field) {
				return chk.Err("export: field %q is not interpolated in scenario %q", l.Field, scn.Label)
			}
		}
	}
	o.Template = sim.Path(o.Template)
	o.DirOut = sim.Path(o.DirOut)
	if o.DirOut == "" {
		o.DirOut = sim.DirOut
	}
	return
}

// CodeLabel returns the code label of exported datasets; e.g. custEM_p2
func (o *ExportData) CodeLabel() string {
	return io.Sf("%s_p%d", o.Code, o.Order)
}

// Id returns the identifier of the line data; e.g. t1_E_t
func (o *ExportLine) Id() string {
	return o.Key + "_" + o.Field
}
