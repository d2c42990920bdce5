// Copyright 2024 The emfem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"bytes"
	goio "io"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/ctessum/cdf"
)

// Attribute holds a netCDF attribute
//  Value is one of []uint8, string, []int16, []int32, []float32 or []float64
type Attribute struct {
	Name  string
	Value interface{}
}

// Variable holds a netCDF variable and its data
//  Data is one of []uint8, string (CHAR), []int16, []int32, []float32 or []float64
type Variable struct {
	Name  string
	Dims  []string
	Attrs []*Attribute
	Data  interface{}
}

// Dataset holds the contents of a netCDF classic file in memory
type Dataset struct {
	Dims    []string     // dimension names
	Lengths []int        // dimension lengths
	Attrs   []*Attribute // global attributes
	Vars    []*Variable  // variables
}

// ReadDataset reads all dimensions, attributes and variables of a netCDF file
//  Note: datasets with a record (unlimited) dimension are not supported
func ReadDataset(filename string) (o *Dataset, err error) {

	// open file
	fil, err := os.Open(filename)
	if err != nil {
		return nil, chk.Err("cannot open dataset:\n%v", err)
	}
	defer fil.Close()
	magic := make([]byte, len(hdf5Magic))
	if n, _ := fil.ReadAt(magic, 0); n == len(magic) && bytes.Equal(magic, hdf5Magic) {
		return nil, chk.Err("dataset <%s> is netCDF-4/HDF5 which is not supported. convert it to netCDF classic; e.g. nccopy -k classic", filename)
	}
	f, err := cdf.Open(fil)
	if err != nil {
		return nil, chk.Err("cannot read netCDF header of <%s>:\n%v", filename, err)
	}
	h := f.Header

	// dimensions
	o = new(Dataset)
	o.Dims = h.Dimensions("")
	o.Lengths = h.Lengths("")
	for i, l := range o.Lengths {
		if l == 0 {
			return nil, chk.Err("dataset <%s> has record dimension %q which is not supported", filename, o.Dims[i])
		}
	}

	// attributes
	o.Attrs = readAttrs(h, "")

	// variables
	for _, name := range h.Variables() {
		v := &Variable{Name: name, Dims: h.Dimensions(name), Attrs: readAttrs(h, name)}
		r := f.Reader(name, nil, nil)
		buf := r.Zero(-1)
		_, err = r.Read(buf)
		if err != nil {
			return nil, chk.Err("cannot read variable %q of <%s>:\n%v", name, filename, err)
		}
		v.Data = buf
		if _, ischar := h.ZeroValue(name, 0).(string); ischar {
			v.Data = string(buf.([]uint8))
		}
		o.Vars = append(o.Vars, v)
	}
	return
}

// Var returns the variable named name
//  Note: returns nil if not found
func (o *Dataset) Var(name string) *Variable {
	for _, v := range o.Vars {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Attr returns the value of the global attribute named name
//  Note: returns nil if not found
func (o *Dataset) Attr(name string) interface{} {
	for _, a := range o.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return nil
}

// Length returns the length of dimension dim or -1 if not found
func (o *Dataset) Length(dim string) int {
	for i, d := range o.Dims {
		if d == dim {
			return o.Lengths[i]
		}
	}
	return -1
}

// Clone returns a deep copy of the dataset
func (o *Dataset) Clone() *Dataset {
	c := &Dataset{
		Dims:    append([]string{}, o.Dims...),
		Lengths: append([]int{}, o.Lengths...),
		Attrs:   cloneAttrs(o.Attrs),
	}
	for _, v := range o.Vars {
		c.Vars = append(c.Vars, &Variable{
			Name:  v.Name,
			Dims:  append([]string{}, v.Dims...),
			Attrs: cloneAttrs(v.Attrs),
			Data:  cloneValue(v.Data),
		})
	}
	return c
}

// Header returns a defined netCDF header describing the dataset
func (o *Dataset) Header() (h *cdf.Header, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = chk.Err("invalid dataset: %v", r)
		}
	}()
	h = cdf.NewHeader(o.Dims, o.Lengths)
	for _, a := range o.Attrs {
		h.AddAttribute("", a.Name, a.Value)
	}
	for _, v := range o.Vars {
		h.AddVariable(v.Name, v.Dims, v.Data)
		for _, a := range v.Attrs {
			h.AddAttribute(v.Name, a.Name, a.Value)
		}
	}
	h.Define()
	if errs := h.Check(); len(errs) > 0 {
		return nil, chk.Err("invalid netCDF header: %v", errs)
	}
	return
}

// Save writes the dataset to a temporary file in the target directory and renames it to filename
//  overwrite -- replace existent file; otherwise it is an error if filename exists
//  Note: on failure the temporary file is removed and filename is untouched
func (o *Dataset) Save(filename string, overwrite bool, verbose bool) (err error) {

	// existent file
	if !overwrite {
		if _, e := os.Stat(filename); e == nil {
			return chk.Err("dataset <%s> exists and overwrite is off", filename)
		}
	}

	// header
	h, err := o.Header()
	if err != nil {
		return
	}

	// temporary file
	fil, err := os.CreateTemp(filepath.Dir(filename), ".tmp-"+filepath.Base(filename)+"-*")
	if err != nil {
		return chk.Err("cannot create temporary file:\n%v", err)
	}
	tmp := fil.Name()
	closed := false
	defer func() {
		if err != nil {
			if !closed {
				fil.Close()
			}
			os.Remove(tmp)
		}
	}()

	// write
	f, err := cdf.Create(fil, h)
	if err != nil {
		return chk.Err("cannot write netCDF header:\n%v", err)
	}
	for _, v := range o.Vars {
		n, e := f.Writer(v.Name, nil, nil).Write(v.Data)
		if e == goio.EOF && n == dataLen(v.Data) {
			e = nil // writer reports EOF when the variable is filled
		}
		err = e
		if err != nil {
			return chk.Err("cannot write variable %q:\n%v", v.Name, err)
		}
	}
	err = cdf.UpdateNumRecs(fil)
	if err != nil {
		return chk.Err("cannot update number of records:\n%v", err)
	}
	err = fil.Sync()
	if err != nil {
		return
	}
	closed = true
	err = fil.Close()
	if err != nil {
		return
	}

	// rename
	err = os.Rename(tmp, filename)
	if err != nil {
		return chk.Err("cannot rename temporary file:\n%v", err)
	}
	if verbose {
		io.Pfblue2("file <%s> written\n", filename)
	}
	return
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

// hdf5Magic is the signature of HDF5 files; i.e. netCDF-4
var hdf5Magic = []byte("\x89HDF\r\n\x1a\n")

// dataLen returns the number of elements of variable data
func dataLen(data interface{}) int {
	switch v := data.(type) {
	case string:
		return len(v)
	case []uint8:
		return len(v)
	case []int16:
		return len(v)
	case []int32:
		return len(v)
	case []float32:
		return len(v)
	case []float64:
		return len(v)
	}
	return -1
}

func readAttrs(h *cdf.Header, v string) (attrs []*Attribute) {
	for _, a := range h.Attributes(v) {
		attrs = append(attrs, &Attribute{Name: a, Value: cloneValue(h.GetAttribute(v, a))})
	}
	return
}

func cloneAttrs(attrs []*Attribute) (res []*Attribute) {
	for _, a := range attrs {
		res = append(res, &Attribute{Name: a.Name, Value: cloneValue(a.Value)})
	}
	return
}

func cloneValue(val interface{}) interface{} {
	switch v := val.(type) {
	case []uint8:
		return append([]uint8{}, v...)
	case []int16:
		return append([]int16{}, v...)
	case []int32:
		return append([]int32{}, v...)
	case []float32:
		return append([]float32{}, v...)
	case []float64:
		return append([]float64{}, v...)
	}
	return val
}
