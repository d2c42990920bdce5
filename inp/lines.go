// Copyright 2024 The emfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
)

// LineData holds the definition of a regularly spaced interpolation line
//  Example: {"axis":"x", "x0":-1e4, "x1":1e4, "y":-3e3, "z":-600.1, "nsegs":100, "name":"l1m"}
//  The two coordinates not belonging to the axis are fixed; e.g. y and z for an x-line
type LineData struct {
	Axis  string  `json:"axis"`  // direction: "x", "y" or "z"
	X0    float64 `json:"x0"`    // start coordinate along axis
	X1    float64 `json:"x1"`    // end coordinate along axis
	X     float64 `json:"x"`     // fixed x-coordinate (y- and z-lines)
	Y     float64 `json:"y"`     // fixed y-coordinate (x- and z-lines)
	Z     float64 `json:"z"`     // fixed z-coordinate (x- and y-lines)
	Nsegs int     `json:"nsegs"` // number of segments
	Name  string  `json:"name"`  // line name; e.g. "l1m"
}

// Key returns the name used by the library to identify the line; e.g. "l1m_line_x"
func (o *LineData) Key() string {
	return o.Name + "_line_" + o.Axis
}

// Npts returns the number of sample points; i.e. the vertices of the segments
func (o *LineData) Npts() int {
	return o.Nsegs + 1
}

// Check validates the line definition
func (o *LineData) Check() (err error) {
	if o.Name == "" {
		return chk.Err("line name must not be empty")
	}
	if o.axisIndex() < 0 {
		return chk.Err("line %q: axis must be \"x\", \"y\" or \"z\". %q is invalid", o.Name, o.Axis)
	}
	if o.Nsegs < 1 {
		return chk.Err("line %q: number of segments must be at least 1. %d is invalid", o.Name, o.Nsegs)
	}
	if o.X1 <= o.X0 {
		return chk.Err("line %q: end coordinate (%g) must be greater than start coordinate (%g)", o.Name, o.X1, o.X0)
	}
	return
}

// Coords returns the coordinates along the axis
func (o *LineData) Coords() []float64 {
	return utl.LinSpace(o.X0, o.X1, o.Npts())
}

// Points returns the 3D coordinates of all sample points
func (o *LineData) Points() (X [][]float64) {
	idx := o.axisIndex()
	coords := o.Coords()
	X = make([][]float64, len(coords))
	for i, c := range coords {
		X[i] = []float64{o.X, o.Y, o.Z}
		X[i][idx] = c
	}
	return
}

// FixedCoords returns the two coordinates kept constant along the line
func (o *LineData) FixedCoords() (a, b float64) {
	switch o.Axis {
	case "x":
		return o.Y, o.Z
	case "y":
		return o.X, o.Z
	}
	return o.X, o.Y
}

func (o *LineData) axisIndex() int {
	switch o.Axis {
	case "x":
		return 0
	case "y":
		return 1
	case "z":
		return 2
	}
	return -1
}
