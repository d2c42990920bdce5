// Copyright 2024 The emfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/csem-bench/emfem/inp"
)

func init() {
	io.Verbose = false
}

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// readSim reads a simulation file from the inp package and sets the output directory
func readSim(fn, dirout string) (sim *inp.Simulation) {
	sim, err := inp.ReadSim("../inp/data/"+fn, "", false)
	if err != nil {
		chk.Panic("cannot read simulation:\n%v", err)
	}
	if dirout != "" {
		sim.DirOut = dirout
	}
	return
}
