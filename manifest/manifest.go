// Copyright 2025 The TIR Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package manifest loads YAML descriptions of a function signature and of
// the values of a call, and binds them into a preamble plan.
package manifest

import (
	"fmt"
	"sort"

	"github.com/gx-org/backend/dtype"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/exp/maps"
	"gopkg.in/yaml.v3"

	"github.com/tir-org/tir/arith"
	"github.com/tir-org/tir/binder"
	"github.com/tir-org/tir/ir"
)

type (
	// Manifest describes a signature and the actual values to bind it to.
	Manifest struct {
		Signature Signature `yaml:"signature"`
		Actuals   []Value   `yaml:"actuals"`
	}

	// Signature is an ordered list of formal parameters.
	Signature struct {
		Params []Param `yaml:"params"`
	}

	// Param is a formal parameter: either a scalar expression or a buffer.
	Param struct {
		Name   string      `yaml:"name"`
		Scalar string      `yaml:"scalar,omitempty"`
		Buffer *BufferSpec `yaml:"buffer,omitempty"`
		// Fuzzy tolerates an actual value with fewer axes than the formal
		// buffer, provided the leading formal axes are of length 1.
		Fuzzy bool `yaml:"fuzzy,omitempty"`
	}

	// Value is an actual argument: a scalar expression, a buffer
	// descriptor, or the name of an opaque runtime tensor handle.
	Value struct {
		Scalar string      `yaml:"scalar,omitempty"`
		Buffer *BufferSpec `yaml:"buffer,omitempty"`
		Handle string      `yaml:"handle,omitempty"`
	}

	// BufferSpec describes a buffer with symbolic shape and strides.
	BufferSpec struct {
		DType      string      `yaml:"dtype"`
		Shape      []string    `yaml:"shape"`
		Strides    []string    `yaml:"strides,omitempty"`
		Data       string      `yaml:"data,omitempty"`
		Device     *DeviceSpec `yaml:"device,omitempty"`
		RebindAddr bool        `yaml:"rebind_addr,omitempty"`
	}

	// DeviceSpec locates a buffer on a device.
	DeviceSpec struct {
		Kind  string `yaml:"kind"`
		Index int64  `yaml:"index"`
	}

	// Plan is the output of binding a manifest.
	Plan struct {
		DefMap *ir.DefMap
		Binder *binder.ArgBinder
	}
)

var dtypeNames = map[string]dtype.DataType{
	"bool":     dtype.Bool,
	"bfloat16": dtype.Bfloat16,
	"float32":  dtype.Float32,
	"float64":  dtype.Float64,
	"int32":    dtype.Int32,
	"int64":    dtype.Int64,
	"uint32":   dtype.Uint32,
	"uint64":   dtype.Uint64,
}

var deviceNames = map[string]ir.DeviceKind{
	"cpu":       ir.DeviceCPU,
	"cuda":      ir.DeviceCUDA,
	"cuda_host": ir.DeviceCUDAHost,
	"opencl":    ir.DeviceOpenCL,
	"vulkan":    ir.DeviceVulkan,
	"metal":     ir.DeviceMetal,
	"rocm":      ir.DeviceROCm,
}

// Parse decodes a YAML manifest.
func Parse(src []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := yaml.Unmarshal(src, m); err != nil {
		return nil, errors.Errorf("cannot decode manifest: %v", err)
	}
	if len(m.Signature.Params) != len(m.Actuals) {
		return nil, errors.Errorf("manifest has %d parameters but %d actual values", len(m.Signature.Params), len(m.Actuals))
	}
	return m, nil
}

func parseDType(name string) (dtype.DataType, error) {
	dt, ok := dtypeNames[name]
	if !ok {
		valid := maps.Keys(dtypeNames)
		sort.Strings(valid)
		return dtype.Invalid, errors.Errorf("unknown data type %q: must be one of %v", name, valid)
	}
	return dt, nil
}

func (spec *BufferSpec) toBuffer(scope *varScope, name string) (*ir.Buffer, error) {
	dt, err := parseDType(spec.DType)
	if err != nil {
		return nil, errors.Errorf("buffer %s: %v", name, err)
	}
	shape, err := scope.parseExprs(spec.Shape)
	if err != nil {
		return nil, errors.Errorf("buffer %s: %v", name, err)
	}
	strides, err := scope.parseExprs(spec.Strides)
	if err != nil {
		return nil, errors.Errorf("buffer %s: %v", name, err)
	}
	if len(strides) > 0 && len(strides) != len(shape) {
		return nil, errors.Errorf("buffer %s declares %d strides for %d axes", name, len(strides), len(shape))
	}
	dataName := spec.Data
	if dataName == "" {
		dataName = name + ".data"
	}
	buf := &ir.Buffer{
		Name:       name,
		Data:       scope.variable(dataName, ir.KindPtr),
		DType:      dt,
		Shape:      shape,
		Strides:    strides,
		AddrRebind: spec.RebindAddr,
	}
	if spec.Device != nil {
		kind, ok := deviceNames[spec.Device.Kind]
		if !ok {
			valid := maps.Keys(deviceNames)
			sort.Strings(valid)
			return nil, errors.Errorf("buffer %s: unknown device kind %q: must be one of %v", name, spec.Device.Kind, valid)
		}
		buf.DeviceKind = kind.Expr()
		buf.DeviceIndex = ir.Int(spec.Device.Index)
	}
	return buf, nil
}

func (p *Param) check(i int) error {
	if p.Name == "" {
		return errors.Errorf("parameter %d has no name", i)
	}
	if (p.Scalar == "") == (p.Buffer == nil) {
		return errors.Errorf("parameter %s must declare exactly one of scalar or buffer", p.Name)
	}
	return nil
}

func (v *Value) check(i int) error {
	set := 0
	for _, has := range []bool{v.Scalar != "", v.Buffer != nil, v.Handle != ""} {
		if has {
			set++
		}
	}
	if set != 1 {
		return errors.Errorf("actual value %d must declare exactly one of scalar, buffer or handle", i)
	}
	return nil
}

// Check validates the shape of the manifest before any binding, reporting
// every ill-formed parameter at once.
func (m *Manifest) Check() error {
	var errs error
	for i := range m.Signature.Params {
		errs = multierr.Append(errs, m.Signature.Params[i].check(i))
	}
	for i := range m.Actuals {
		errs = multierr.Append(errs, m.Actuals[i].check(i))
	}
	return errs
}

// Bind binds every parameter of the signature, in order, against its
// actual value. Binding is all or nothing: the first hard error aborts and
// no plan is returned.
func (m *Manifest) Bind() (*Plan, error) {
	if err := m.Check(); err != nil {
		return nil, err
	}
	scope := newVarScope()
	defMap := ir.NewDefMap()
	bnd := binder.New(defMap, arith.New())
	for i := range m.Signature.Params {
		param := &m.Signature.Params[i]
		if err := bindParam(bnd, scope, param, &m.Actuals[i]); err != nil {
			return nil, err
		}
	}
	return &Plan{DefMap: defMap, Binder: bnd}, nil
}

func bindParam(bnd *binder.ArgBinder, scope *varScope, param *Param, actual *Value) error {
	if param.Scalar != "" {
		if actual.Scalar == "" {
			return errors.Errorf("parameter %s is a scalar but its actual value is not", param.Name)
		}
		formal, err := scope.parseExpr(param.Scalar)
		if err != nil {
			return errors.Errorf("parameter %s: %v", param.Name, err)
		}
		value, err := scope.parseExpr(actual.Scalar)
		if err != nil {
			return errors.Errorf("parameter %s: %v", param.Name, err)
		}
		return bnd.Bind(formal, value, param.Name, false)
	}
	formal, err := param.Buffer.toBuffer(scope, param.Name)
	if err != nil {
		return err
	}
	switch {
	case actual.Buffer != nil:
		value, err := actual.Buffer.toBuffer(scope, param.Name+".in")
		if err != nil {
			return err
		}
		return bnd.BindBuffer(formal, value, param.Name, param.Fuzzy)
	case actual.Handle != "":
		handle := scope.variable(actual.Handle, ir.KindPtr)
		return bnd.BindTensorHandle(formal, handle, param.Name, param.Fuzzy)
	default:
		return errors.Errorf("parameter %s is a buffer but its actual value is a scalar", param.Name)
	}
}

// String renders the plan in a readable form: definitions, then the
// initialization nest, then the consistency checks.
func (p *Plan) String() string {
	var out string
	for v, def := range p.DefMap.All() {
		out += fmt.Sprintf("def %s = %s\n", v, def)
	}
	for _, stmt := range p.Binder.InitNest() {
		out += stmt.String() + "\n"
	}
	for _, stmt := range p.Binder.Asserts() {
		out += stmt.String() + "\n"
	}
	return out
}
