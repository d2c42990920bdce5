// Copyright 2024 The emfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/csem-bench/emfem/fem"
	"github.com/csem-bench/emfem/inp"
	"github.com/csem-bench/emfem/out"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			for i := 8; i > 3; i-- {
				chk.CallerInfo(i)
			}
			io.PfRed("ERROR: %v\n", err)
			os.Exit(1)
		}
	}()

	// read input parameters
	fnamepath, _ := io.ArgToFilename(0, "", ".sim", true)
	mode := io.ArgToString(1, "all")
	verbose := io.ArgToBool(2, true)
	erasePrev := io.ArgToBool(3, false)
	alias := io.ArgToString(4, "")

	// message
	if verbose {
		io.PfWhite("\nemfem -- CSEM model driver and netCDF export\n\n")
		io.Pf("Copyright 2024 The emfem Authors. All rights reserved.\n")
		io.Pf("Use of this source code is governed by a BSD-style\n")
		io.Pf("license that can be found in the LICENSE file.\n\n")

		io.Pf("\n%v\n", io.ArgsTable("INPUT ARGUMENTS",
			"filename path", "fnamepath", fnamepath,
			"run | export | all | template | plot", "mode", mode,
			"show messages", "verbose", verbose,
			"erase previous results", "erasePrev", erasePrev,
			"word to add to results", "alias", alias,
		))
	}

	// simulation data
	sim, err := inp.ReadSim(fnamepath, alias, erasePrev && (mode == "run" || mode == "all"))
	if err != nil {
		chk.Panic("%v", err)
	}

	// run
	var files []string
	switch mode {
	case "run":
		err = fem.RunAll(sim, verbose)
	case "export":
		files, err = out.ExportSim(sim, verbose)
	case "all":
		err = fem.RunAll(sim, verbose)
		if err == nil {
			files, err = out.ExportSim(sim, verbose)
		}
	case "template":
		err = out.TemplateSim(sim, verbose)
	case "plot":
		files, err = out.PlotSim(sim, verbose)
	default:
		chk.Panic("mode %q is invalid. options: run, export, all, template, plot", mode)
	}
	if err != nil {
		chk.Panic("%s failed:\n%v", mode, err)
	}

	// message
	if verbose {
		if len(files) > 0 {
			io.Pf("\n%d files written\n", len(files))
		}
		io.PfGreen("\n> Success\n")
	}
}
