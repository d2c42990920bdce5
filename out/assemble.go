// Copyright 2024 The emfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"sort"
	"strings"

	"github.com/cpmech/gosl/chk"
)

// LineTarget pairs a dataset variable with a line identifier
type LineTarget struct {
	Var string // dataset variable; e.g. line_1
	Id  string // line identifier; e.g. t1_E_t
}

// Assemble returns a new dataset with the template line variables replaced by the interleaved
// line data and the metadata record attached as global attributes
//  Input:
//   tpl     -- template dataset; not modified
//   lines   -- maps line identifier to complex samples
//   targets -- variables to be replaced
//   meta    -- metadata record
//  Note: all targets must have data in lines; otherwise a "missing line data" error is returned
func Assemble(tpl *Dataset, lines map[string][]complex128, targets []LineTarget, meta *Metadata) (ds *Dataset, err error) {

	// check metadata
	if meta == nil {
		return nil, chk.Err("metadata record is required")
	}
	err = meta.Validate()
	if err != nil {
		return
	}

	// check lines
	var missing []string
	for _, t := range targets {
		if _, ok := lines[t.Id]; !ok {
			missing = append(missing, t.Id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, chk.Err("missing line data: %s", strings.Join(missing, ", "))
	}

	// check template schema and interleave
	data := make([][]float64, len(targets))
	for i, t := range targets {
		v := tpl.Var(t.Var)
		if v == nil {
			return nil, chk.Err("schema mismatch: template has no variable %q", t.Var)
		}
		if len(v.Dims) != 1 {
			return nil, chk.Err("schema mismatch: variable %q must be 1-D. it has %d dimensions", t.Var, len(v.Dims))
		}
		n := tpl.Length(v.Dims[0])
		if n != 2*len(lines[t.Id]) {
			return nil, chk.Err("schema mismatch: variable %q has length %d but line %q has %d samples", t.Var, n, t.Id, len(lines[t.Id]))
		}
		switch v.Data.(type) {
		case []float64, []float32:
		default:
			return nil, chk.Err("schema mismatch: variable %q must be of type DOUBLE or FLOAT", t.Var)
		}
		data[i], err = Interleave(lines[t.Id])
		if err != nil {
			return nil, chk.Err("line %q: %v", t.Id, err)
		}
	}

	// new dataset
	ds = tpl.Clone()
	for i, t := range targets {
		v := ds.Var(t.Var)
		if _, ok := v.Data.([]float32); ok {
			f32 := make([]float32, len(data[i]))
			for j, x := range data[i] {
				f32[j] = float32(x)
			}
			v.Data = f32
			continue
		}
		v.Data = data[i]
	}
	ds.SetAttrs(meta.Attrs())
	return
}

// SetAttrs replaces existent global attributes and appends new ones
func (o *Dataset) SetAttrs(attrs []*Attribute) {
	for _, a := range attrs {
		found := false
		for _, b := range o.Attrs {
			if b.Name == a.Name {
				b.Value = cloneValue(a.Value)
				found = true
				break
			}
		}
		if !found {
			o.Attrs = append(o.Attrs, &Attribute{Name: a.Name, Value: cloneValue(a.Value)})
		}
	}
}
