// Copyright 2024 The emfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"
	"math/cmplx"
	"runtime"

	"github.com/cpmech/gosl/chk"
	"github.com/csem-bench/emfem/inp"
)

func init() {
	liballocators["wholespace"] = func(lib *inp.LibData, mdl *ModelData) (Library, error) {
		return NewWholeSpace(mdl), nil
	}
}

// magnetic permeability of free space [H/m]
const mu0 = 4e-7 * math.Pi

// WholeSpace computes the fields of a horizontal electric dipole in a homogeneous whole space
//  The conductivity is the horizontal conductivity of the first layer. Secondary fields are zero
//  Note: this is an analytic estimate for dry runs; the mesh is not used
type WholeSpace struct {
	Model  *ModelData // model identification
	Src0   []float64  // start of source wire
	Src1   []float64  // end of source wire
	Extent float64    // half-size of cubic domain reported in statistics

	// recorded data
	prms     *inp.PhysParams
	varform  bool
	solved   bool
	convertH bool
	lines    map[string]*inp.LineData
	data     map[string][][]complex128 // maps line:field to [npts][3] values
	synced   bool
}

// NewWholeSpace returns a new analytic backend with a 200 m source wire at 550 m depth
func NewWholeSpace(mdl *ModelData) *WholeSpace {
	return &WholeSpace{
		Model:  mdl,
		Src0:   []float64{-100, 0, -550},
		Src1:   []float64{100, 0, -550},
		Extent: 1e5,
		lines:  make(map[string]*inp.LineData),
		data:   make(map[string][][]complex128),
	}
}

// UpdateParameters sets the physical parameters
func (o *WholeSpace) UpdateParameters(prms *inp.PhysParams) (err error) {
	if prms.SigGround == nil {
		return chk.Err("wholespace: conductivities have not been computed")
	}
	o.prms = prms
	return
}

// BuildVarForm does nothing but checks the call order
func (o *WholeSpace) BuildVarForm() (err error) {
	if o.prms == nil {
		return chk.Err("wholespace: parameters must be updated before building the variational form")
	}
	o.varform = true
	return
}

// Solve does nothing but checks the call order
func (o *WholeSpace) Solve(convertToH bool) (err error) {
	if !o.varform {
		return chk.Err("wholespace: variational form must be built before solving")
	}
	o.solved, o.convertH = true, convertToH
	return
}

// CreateLine registers an interpolation line
func (o *WholeSpace) CreateLine(line *inp.LineData) (err error) {
	if !o.solved {
		return chk.Err("wholespace: lines must be created after solving")
	}
	if _, ok := o.lines[line.Key()]; ok {
		return chk.Err("wholespace: line %q exists already", line.Key())
	}
	o.lines[line.Key()] = line
	return
}

// Interpolate computes field at all points of line
func (o *WholeSpace) Interpolate(lineKey, field string) (err error) {
	line, ok := o.lines[lineKey]
	if !ok {
		return chk.Err("wholespace: cannot interpolate onto unknown line %q", lineKey)
	}
	if !inp.ValidField(field) {
		return chk.Err("wholespace: cannot interpolate unknown field %q", field)
	}
	if field[0] == 'H' && !o.convertH {
		return chk.Err("wholespace: H-fields are not available because conversion was switched off")
	}
	X := line.Points()
	vals := make([][]complex128, len(X))
	for i, x := range X {
		switch field {
		case "E_t":
			vals[i] = o.Efield(x)
		case "H_t":
			vals[i] = o.Hfield(x)
		default:
			vals[i] = make([]complex128, inp.Ncomps)
		}
	}
	o.data[lineKey+":"+field] = vals
	o.synced = false
	return
}

// Synchronize marks interpolated data as available
func (o *WholeSpace) Synchronize() (err error) {
	o.synced = true
	return
}

// Import returns the interpolated data
func (o *WholeSpace) Import(lineKey, field string) (vals [][]complex128, err error) {
	if !o.synced {
		return nil, chk.Err("wholespace: results are not available before synchronizing")
	}
	vals, ok := o.data[lineKey+":"+field]
	if !ok {
		return nil, chk.Err("wholespace: cannot find field %s along line %q", field, lineKey)
	}
	return
}

// Stats returns statistics of the (virtual) domain
func (o *WholeSpace) Stats() (stats *Stats, err error) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	L := o.Extent
	vol := 8 * L * L * L
	return &Stats{
		Nprocs: 1,
		MaxRAM: float64(mem.Sys) / (1 << 30),
		Ncells: 1,
		Nnodes: 8,
		Ndof:   0,
		MinVol: vol,
		MaxVol: vol,
		Bounds: [][]float64{{-L, L}, {-L, L}, {-L, L}},
	}, nil
}

// Version returns the version of the analytic backend
func (o *WholeSpace) Version() string {
	return "wholespace 1.0"
}

// Efield computes the electric field at x
//  E = p e^{-ikr} / (4 π σ r³) [ (d r̂)(3 + 3ikr - k²r²) r̂ - (1 + ikr - k²r²) d ] with d along the wire
func (o *WholeSpace) Efield(x []float64) (E []complex128) {
	p, sig, k, r, rhat, d := o.geometry(x)
	E = make([]complex128, inp.Ncomps)
	if r == 0 {
		return
	}
	ikr := 1i * k * complex(r, 0)
	kr2 := k * k * complex(r*r, 0)
	c := complex(p/(4*math.Pi*sig*r*r*r), 0) * cmplx.Exp(-ikr)
	dr := d[0]*rhat[0] + d[1]*rhat[1] + d[2]*rhat[2]
	for i := 0; i < inp.Ncomps; i++ {
		E[i] = c * (complex(dr*rhat[i], 0)*(3+3*ikr-kr2) - complex(d[i], 0)*(1+ikr-kr2))
	}
	return
}

// Hfield computes the magnetic field at x
//  H = p (1 + ikr) e^{-ikr} / (4 π r²) (d × r̂)
func (o *WholeSpace) Hfield(x []float64) (H []complex128) {
	p, _, k, r, rhat, d := o.geometry(x)
	H = make([]complex128, inp.Ncomps)
	if r == 0 {
		return
	}
	ikr := 1i * k * complex(r, 0)
	c := complex(p/(4*math.Pi*r*r), 0) * (1 + ikr) * cmplx.Exp(-ikr)
	H[0] = c * complex(d[1]*rhat[2]-d[2]*rhat[1], 0)
	H[1] = c * complex(d[2]*rhat[0]-d[0]*rhat[2], 0)
	H[2] = c * complex(d[0]*rhat[1]-d[1]*rhat[0], 0)
	return
}

// Wavenumber returns k = sqrt(-i ω μ0 σ) with negative imaginary part
func Wavenumber(freq, sig float64) complex128 {
	a := math.Sqrt(2 * math.Pi * freq * mu0 * sig / 2)
	return complex(a, -a)
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

// geometry returns the dipole moment, conductivity, wavenumber, distance, unit vector and wire direction
func (o *WholeSpace) geometry(x []float64) (p, sig float64, k complex128, r float64, rhat, d []float64) {
	sig = o.prms.SigGround.At(0, 0)
	k = Wavenumber(o.prms.Freq, sig)
	rhat = make([]float64, 3)
	d = make([]float64, 3)
	var ds float64
	for i := 0; i < 3; i++ {
		d[i] = o.Src1[i] - o.Src0[i]
		ds += d[i] * d[i]
		rhat[i] = x[i] - (o.Src0[i]+o.Src1[i])/2
		r += rhat[i] * rhat[i]
	}
	ds, r = math.Sqrt(ds), math.Sqrt(r)
	p = o.prms.Current * ds
	for i := 0; i < 3; i++ {
		d[i] /= ds
		if r > 0 {
			rhat[i] /= r
		}
	}
	return
}
