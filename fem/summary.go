// Copyright 2024 The emfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"bytes"
	"os"
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Summary records the provenance of one model run
type Summary struct {

	// model
	Key      string // filename key of model; e.g. layered_earth_p2_E_t
	Mod      string // model name; e.g. p2
	Mesh     string // mesh name; e.g. layered_earth_p2
	Approach string // field approach; e.g. E_t
	Order    int    // polynomial order

	// run
	Runtime float64   // wall time of solution and interpolation [s]
	Stats   Stats     // statistics reported by library
	Version string    // library version
	Date    time.Time // time when run finished
}

// RuntimeString returns the runtime formatted as in "232 s"
func (o *Summary) RuntimeString() string {
	return io.Sf("%.0f s", o.Runtime)
}

// MaxRAMString returns the peak memory formatted as in "244.1 GiB"
func (o *Summary) MaxRAMString() string {
	return io.Sf("%.1f GiB", o.Stats.MaxRAM)
}

// Save saves summary to disc
func (o *Summary) Save(dir, enctype string, verbose bool) (err error) {

	// buffer and encoder
	var buf bytes.Buffer
	enc := io.NewEncoder(&buf, enctype)

	// encode summary
	err = enc.Encode(o)
	if err != nil {
		return chk.Err("cannot encode summary\n%v", err)
	}

	// save file
	return save_file(out_sum_path(dir, o.Key, enctype), &buf, verbose)
}

// ReadSum reads summary back
func ReadSum(dir, key, enctype string) (o *Summary, err error) {

	// open file
	fn := out_sum_path(dir, key, enctype)
	fil, err := os.Open(fn)
	if err != nil {
		return nil, chk.Err("cannot open summary file\n%v", err)
	}
	defer fil.Close()

	// decode summary
	o = new(Summary)
	dec := io.NewDecoder(fil, enctype)
	err = dec.Decode(o)
	if err != nil {
		return nil, chk.Err("cannot decode summary in <%s>\n%v", fn, err)
	}
	return
}
