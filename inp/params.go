// Copyright 2024 The emfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/ctessum/unit"
	"gonum.org/v1/gonum/mat"
)

// dimensions of the physical parameters
var (
	OhmMeter        = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: 3, unit.TimeDim: -3, unit.CurrentDim: -2}
	SiemensPerMeter = unit.Dimensions{unit.MassDim: -1, unit.LengthDim: -3, unit.TimeDim: 3, unit.CurrentDim: 2}
	Ampere          = unit.Dimensions{unit.CurrentDim: 1}
)

// Ncomps is the number of components of the conductivity vector of each layer
const Ncomps = 3

// AnisoData holds one anisotropy scaling of the ground conductivity tensor
type AnisoData struct {
	Layer  int     `json:"layer"`  // layer index
	Comp   int     `json:"comp"`   // component index: 0=xx, 1=yy, 2=zz
	Factor float64 `json:"factor"` // multiplier; e.g. 0.5 for VTI anisotropy
}

// PhysParams holds the physical parameters of one scenario
type PhysParams struct {

	// input data
	Freq      float64      `json:"freq"`      // frequency [Hz]
	Current   float64      `json:"current"`   // source current [A]
	Nlayers   int          `json:"nlayers"`   // number of layers in mesh
	Nblocks   int          `json:"nblocks"`   // number of anomalies (blocks) in mesh
	ResGround []float64    `json:"resground"` // [nlayers] resistivities of layers [Ω·m]
	ResBlocks []float64    `json:"resblocks"` // [nblocks] resistivities of anomalies [Ω·m]
	Aniso     []*AnisoData `json:"aniso"`     // anisotropy scalings of the ground tensor

	// derived
	SigGround *mat.Dense // [nlayers][3] conductivities of layers [S/m]
	SigAnom   []float64  // [nblocks] conductivities of anomalies [S/m]
}

// Check validates the input data. It must be called before any library call
func (o *PhysParams) Check() (err error) {
	if o.Freq <= 0 {
		return chk.Err("frequency must be positive. %g is invalid", o.Freq)
	}
	if o.Current <= 0 {
		return chk.Err("source current must be positive. %g is invalid", o.Current)
	}
	if o.Nlayers < 1 {
		return chk.Err("number of layers must be at least 1. %d is invalid", o.Nlayers)
	}
	if len(o.ResGround) != o.Nlayers {
		return chk.Err("parameter mismatch: %d ground resistivities given but mesh has %d layers", len(o.ResGround), o.Nlayers)
	}
	if len(o.ResBlocks) != o.Nblocks {
		return chk.Err("parameter mismatch: %d block resistivities given but mesh has %d blocks", len(o.ResBlocks), o.Nblocks)
	}
	for i, r := range o.ResGround {
		if r <= 0 || math.IsInf(r, 0) || math.IsNaN(r) {
			return chk.Err("resistivity of layer %d must be positive and finite. %g is invalid", i, r)
		}
	}
	for i, r := range o.ResBlocks {
		if r <= 0 || math.IsInf(r, 0) || math.IsNaN(r) {
			return chk.Err("resistivity of block %d must be positive and finite. %g is invalid", i, r)
		}
	}
	for _, a := range o.Aniso {
		if a.Layer < 0 || a.Layer >= o.Nlayers {
			return chk.Err("anisotropy layer index %d is out of range [0, %d)", a.Layer, o.Nlayers)
		}
		if a.Comp < 0 || a.Comp >= Ncomps {
			return chk.Err("anisotropy component index %d is out of range [0, %d)", a.Comp, Ncomps)
		}
		if a.Factor <= 0 {
			return chk.Err("anisotropy factor must be positive. %g is invalid", a.Factor)
		}
	}
	return
}

// PostProcess computes the conductivities from the resistivities and applies the anisotropy
func (o *PhysParams) PostProcess() (err error) {
	err = o.Check()
	if err != nil {
		return
	}
	o.SigGround = mat.NewDense(o.Nlayers, Ncomps, nil)
	for i, r := range o.ResGround {
		s, err := Conductivity(r)
		if err != nil {
			return chk.Err("layer %d: %v", i, err)
		}
		for j := 0; j < Ncomps; j++ {
			o.SigGround.Set(i, j, s)
		}
	}
	for _, a := range o.Aniso {
		o.SigGround.Set(a.Layer, a.Comp, o.SigGround.At(a.Layer, a.Comp)*a.Factor)
	}
	o.SigAnom = make([]float64, len(o.ResBlocks))
	for i, r := range o.ResBlocks {
		o.SigAnom[i], err = Conductivity(r)
		if err != nil {
			return chk.Err("block %d: %v", i, err)
		}
	}
	return
}

// SigGroundDeep2 returns a copy of the ground conductivity tensor as a nested slice
func (o *PhysParams) SigGroundDeep2() (res [][]float64) {
	if o.SigGround == nil {
		return
	}
	r, _ := o.SigGround.Dims()
	res = make([][]float64, r)
	for i := 0; i < r; i++ {
		res[i] = mat.Row(nil, i, o.SigGround)
	}
	return
}

// Source returns the source current as a physical quantity
func (o *PhysParams) Source() *unit.Unit {
	return unit.New(o.Current, Ampere)
}

// Frequency returns the frequency as a physical quantity
func (o *PhysParams) Frequency() *unit.Unit {
	return unit.New(o.Freq, unit.Herz)
}

// String returns a short description of the parameters
func (o *PhysParams) String() (l string) {
	l = io.Sf("f = %v, J = %v\n", o.Frequency(), o.Source())
	if o.SigGround != nil {
		l += io.Sf("sigma_ground = %v\n", mat.Formatted(o.SigGround, mat.Prefix("               ")))
	}
	if len(o.SigAnom) > 0 {
		l += io.Sf("sigma_anom   = %v\n", o.SigAnom)
	}
	return
}

// Conductivity inverts a resistivity [Ω·m] into a conductivity [S/m]
func Conductivity(resistivity float64) (float64, error) {
	sig := unit.Div(unit.New(1, unit.Dimless), unit.New(resistivity, OhmMeter))
	if err := sig.Check(SiemensPerMeter); err != nil {
		return 0, err
	}
	return sig.Value(), nil
}
