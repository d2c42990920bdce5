// Copyright 2024 The emfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"
)

// Interleave stacks real and imaginary parts as the columns of an N×2 matrix and flattens it
// column-major. The result holds the real block followed by the imaginary block; it does not
// alternate real and imaginary parts:
//   [(1+2i), (3-1i)] => [1, 3, 2, -1]
func Interleave(vals []complex128) (res []float64, err error) {
	n := len(vals)
	if n == 0 {
		return nil, chk.Err("cannot interleave empty sequence")
	}
	m := mat.NewDense(n, 2, nil)
	for i, v := range vals {
		m.Set(i, 0, real(v))
		m.Set(i, 1, imag(v))
	}
	var t mat.Dense
	t.CloneFrom(m.T())
	return t.RawMatrix().Data, nil
}

// Split is the inverse of Interleave
func Split(data []float64) (vals []complex128, err error) {
	if len(data) == 0 || len(data)%2 != 0 {
		return nil, chk.Err("cannot split sequence of length %d into real and imaginary blocks", len(data))
	}
	n := len(data) / 2
	m := mat.NewDense(2, n, data)
	vals = make([]complex128, n)
	for i := range vals {
		vals[i] = complex(m.At(0, i), m.At(1, i))
	}
	return
}
