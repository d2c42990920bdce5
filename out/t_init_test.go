// Copyright 2024 The emfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// testMeta returns a complete metadata record
func testMeta(date time.Time) *Metadata {
	return &Metadata{
		Runtime:   "232 s",
		Nprocs:    48,
		MaxRAM:    "244.1 GiB",
		Ncells:    1000,
		Nnodes:    200,
		Ndof:      5000,
		Extent:    "x = -100000 - 100000; y = -100000 - 100000; z = -100000 - 100000",
		MinVolume: 0.5,
		MaxVolume: 1e9,
		Machine:   "test machine",
		Version:   "custEM v1.0.0",
		Date:      date.Format(DateLayout),
		Note:      "final",
	}
}

// testTemplate returns a template with three lines of npts samples
func testTemplate(npts int) *Dataset {
	x := make([]float64, npts)
	for i := range x {
		x[i] = float64(i)
	}
	tpl, err := NewTemplate("test survey", testTargets, x)
	if err != nil {
		chk.Panic("%v", err)
	}
	return tpl
}

var testTargets = []LineTarget{
	{Var: "line_1", Id: "t1_E_t"},
	{Var: "line_2", Id: "t2_E_t"},
	{Var: "line_3", Id: "t3_E_t"},
}
