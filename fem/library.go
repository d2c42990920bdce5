// Copyright 2024 The emfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/chk"
	"github.com/csem-bench/emfem/inp"
)

// Library defines the external finite element library that solves one model
//  Note: all calls are blocking. Parallelism, if any, is internal to the library
type Library interface {
	// sets frequency, conductivities and source current
	UpdateParameters(prms *inp.PhysParams) (err error)
	// builds the variational form
	BuildVarForm() (err error)
	// solves the main problem
	Solve(convertToH bool) (err error)
	// creates an interpolation line
	CreateLine(line *inp.LineData) (err error)
	// interpolates field onto line
	Interpolate(lineKey, field string) (err error)
	// synchronizes all processes
	Synchronize() (err error)
	// imports interpolated data [npts][3]
	Import(lineKey, field string) (vals [][]complex128, err error)
	// statistics of last solution
	Stats() (stats *Stats, err error)
	// library version; e.g. "1.0.0"
	Version() string
}

// Stats holds statistics of a solution as reported by the library
type Stats struct {
	Nprocs int         `json:"nprocs"`  // number of processes
	MaxRAM float64     `json:"max_ram"` // peak memory usage [GiB]
	Ncells int         `json:"n_cells"` // number of cells
	Nnodes int         `json:"n_nodes"` // number of nodes
	Ndof   int         `json:"n_dof"`   // number of degrees of freedom
	MinVol float64     `json:"min_vol"` // minimum cell volume
	MaxVol float64     `json:"max_vol"` // maximum cell volume
	Bounds [][]float64 `json:"bounds"`  // [3][2] mesh bounds: xmin,xmax, ymin,ymax, zmin,zmax
}

// Check checks whether statistics are consistent
func (o *Stats) Check() (err error) {
	if o.Nprocs < 1 {
		return chk.Err("number of processes must be at least 1. %d is invalid", o.Nprocs)
	}
	if o.Ncells < 0 || o.Nnodes < 0 || o.Ndof < 0 {
		return chk.Err("mesh counts must not be negative: cells=%d nodes=%d dof=%d", o.Ncells, o.Nnodes, o.Ndof)
	}
	if o.MinVol > o.MaxVol {
		return chk.Err("minimum volume (%g) is greater than maximum volume (%g)", o.MinVol, o.MaxVol)
	}
	if len(o.Bounds) != 3 {
		return chk.Err("mesh bounds must have 3 rows. %d is invalid", len(o.Bounds))
	}
	for i, b := range o.Bounds {
		if len(b) != 2 {
			return chk.Err("mesh bounds row %d must have 2 values. %d is invalid", i, len(b))
		}
	}
	return
}

// ModelData identifies one model instance
type ModelData struct {
	Mod       string // model name; e.g. p2
	Mesh      string // mesh name; e.g. layered_earth_p2
	Approach  string // field approach; e.g. E_t
	Order     int    // polynomial order
	MeshDir   string // directory with meshes
	DirOut    string // directory of library results
	Overwrite bool   // overwrite previous library results
}

// liballocators holds all available libraries
var liballocators = make(map[string]func(lib *inp.LibData, mdl *ModelData) (Library, error))

// NewLibrary constructs a new model using the library named lib.Name
func NewLibrary(lib *inp.LibData, mdl *ModelData) (Library, error) {
	alloc, ok := liballocators[lib.Name]
	if !ok {
		return nil, chk.Err("cannot find library named %q", lib.Name)
	}
	return alloc(lib, mdl)
}
