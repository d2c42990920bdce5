// Copyright 2024 The emfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"os"
	"runtime"
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/csem-bench/emfem/fem"
)

// MetaKeys holds the keys of the metadata record in the order they are written
var MetaKeys = []string{
	"runtime",
	"n_procs",
	"max_ram",
	"n_cells",
	"n_nodes",
	"n_dof",
	"extent",
	"min_volume",
	"max_volume",
	"machine",
	"version",
	"date",
	"NOTE",
}

// DateLayout is the layout of the date attribute; e.g. 2020-05-28T14:03:12.123456
const DateLayout = "2006-01-02T15:04:05.000000"

// Metadata holds the provenance record attached to exported datasets
type Metadata struct {
	Runtime   string  // runtime; e.g. "232 s"
	Nprocs    int     // number of processes
	MaxRAM    string  // peak memory; e.g. "244.1 GiB"
	Ncells    int     // number of cells
	Nnodes    int     // number of nodes
	Ndof      int     // number of degrees of freedom
	Extent    string  // domain extent; e.g. "x = -100000 - 100000; y = ..."
	MinVolume float64 // minimum cell volume
	MaxVolume float64 // maximum cell volume
	Machine   string  // machine description
	Version   string  // software version; e.g. "custEM v1.0"
	Date      string  // generation timestamp
	Note      string  // status note; e.g. "final"
}

// NewMetadata returns the metadata of a model run
//  machine -- machine description. empty => host description
//  extent  -- extent description. empty => computed from mesh bounds
//  note    -- status note
//  date    -- generation time
func NewMetadata(sum *fem.Summary, machine, extent, note string, date time.Time) (o *Metadata) {
	if machine == "" {
		machine = HostDescription()
	}
	if extent == "" {
		extent = ExtentString(sum.Stats.Bounds)
	}
	return &Metadata{
		Runtime:   sum.RuntimeString(),
		Nprocs:    sum.Stats.Nprocs,
		MaxRAM:    sum.MaxRAMString(),
		Ncells:    sum.Stats.Ncells,
		Nnodes:    sum.Stats.Nnodes,
		Ndof:      sum.Stats.Ndof,
		Extent:    extent,
		MinVolume: sum.Stats.MinVol,
		MaxVolume: sum.Stats.MaxVol,
		Machine:   machine,
		Version:   sum.Version,
		Date:      date.Format(DateLayout),
		Note:      note,
	}
}

// Validate checks that all fields are set
func (o *Metadata) Validate() (err error) {
	strs := []struct{ key, val string }{
		{"runtime", o.Runtime},
		{"max_ram", o.MaxRAM},
		{"extent", o.Extent},
		{"machine", o.Machine},
		{"version", o.Version},
		{"date", o.Date},
		{"NOTE", o.Note},
	}
	for _, s := range strs {
		if s.val == "" {
			return chk.Err("metadata %q must not be empty", s.key)
		}
	}
	if o.Nprocs < 1 {
		return chk.Err("metadata \"n_procs\" must be at least 1. %d is invalid", o.Nprocs)
	}
	if o.Ncells < 0 || o.Nnodes < 0 || o.Ndof < 0 {
		return chk.Err("metadata counts must not be negative: n_cells=%d n_nodes=%d n_dof=%d", o.Ncells, o.Nnodes, o.Ndof)
	}
	if o.MinVolume > o.MaxVolume {
		return chk.Err("metadata \"min_volume\" (%g) is greater than \"max_volume\" (%g)", o.MinVolume, o.MaxVolume)
	}
	return
}

// Attrs returns the metadata as netCDF attributes in the order of MetaKeys
//  Counts are stored as INT, volumes as DOUBLE and all other fields as CHAR
func (o *Metadata) Attrs() []*Attribute {
	vals := map[string]interface{}{
		"runtime":    o.Runtime,
		"n_procs":    []int32{int32(o.Nprocs)},
		"max_ram":    o.MaxRAM,
		"n_cells":    []int32{int32(o.Ncells)},
		"n_nodes":    []int32{int32(o.Nnodes)},
		"n_dof":      []int32{int32(o.Ndof)},
		"extent":     o.Extent,
		"min_volume": []float64{o.MinVolume},
		"max_volume": []float64{o.MaxVolume},
		"machine":    o.Machine,
		"version":    o.Version,
		"date":       o.Date,
		"NOTE":       o.Note,
	}
	attrs := make([]*Attribute, len(MetaKeys))
	for i, key := range MetaKeys {
		attrs[i] = &Attribute{Name: key, Value: vals[key]}
	}
	return attrs
}

// ExtentString formats mesh bounds as in "x = -100000 - 100000; y = -100000 - 100000; z = -100000 - 100000"
func ExtentString(bounds [][]float64) string {
	if len(bounds) != 3 {
		return ""
	}
	return io.Sf("x = %g - %g; y = %g - %g; z = %g - %g",
		bounds[0][0], bounds[0][1], bounds[1][0], bounds[1][1], bounds[2][0], bounds[2][1])
}

// HostDescription describes the machine running this program
func HostDescription() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown host"
	}
	return io.Sf("%s; %d CPUs; %s/%s", host, runtime.NumCPU(), runtime.GOOS, runtime.GOARCH)
}
