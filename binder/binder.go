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

// Package binder matches formal symbolic values against the values of a
// concrete call and accumulates the variable definitions, assertions, and
// initialization statements a code generator splices into the program
// preamble.
//
// Consider a function f(tA(shape=n), tB(shape=3), tC(shape=n+2)) where n
// is decided by the caller. Binding a call f(bufferA, bufferB, bufferC)
// produces the sequence:
//
//   - define n = bufferA.shape[0]
//   - assert bufferB.shape[0] == 3
//   - assert bufferC.shape[0] == n + 2
//
// Variables occurring in a constraint must be resolvable from an earlier
// position of the argument list: a signature f(tA(shape=n+3)) with no
// argument defining n is rejected.
package binder

import (
	"fmt"

	"github.com/gx-org/backend/dtype"
	"github.com/pkg/errors"
	"github.com/tir-org/tir/base/ordered"
	"github.com/tir-org/tir/ir"
)

// Prover is the symbolic reasoning capability the binder depends on.
// ProveEqual must be sound: it may fail to prove a true equality but must
// never prove a false one.
type Prover interface {
	// Substitute replaces defined variables by their definitions.
	Substitute(e ir.Expr, defs *ir.DefMap) ir.Expr
	// ProveEqual returns true if x equals y for every assignment of their
	// free variables.
	ProveEqual(x, y ir.Expr) bool
}

// ArgBinder accumulates the output of binding one function signature.
// One instance is created per signature and discarded once its collections
// have been consumed. The definition map is owned by the caller and may be
// shared across nested binding sessions.
type ArgBinder struct {
	defMap *ir.DefMap
	prover Prover

	defs         []*ir.Var
	asserts      []ir.Stmt
	initNest     []ir.Stmt
	handleDTypes *ordered.Map[*ir.Var, dtype.DataType]
}

// New returns a binder registering new definitions in defMap and eliding
// checks the prover can discharge statically.
func New(defMap *ir.DefMap, prover Prover) *ArgBinder {
	return &ArgBinder{
		defMap:       defMap,
		prover:       prover,
		handleDTypes: ordered.NewMap[*ir.Var, dtype.DataType](),
	}
}

// Defs returns the variables the binding introduced, in introduction order.
func (b *ArgBinder) Defs() []*ir.Var {
	return b.defs
}

// Asserts returns the generated consistency checks. They carry no ordering
// constraint among themselves but must run after InitNest.
func (b *ArgBinder) Asserts() []ir.Stmt {
	return b.asserts
}

// InitNest returns the ordered initialization statements. A let binding
// appears before every use of its variable and a guard assertion appears
// before the read it makes safe; the code generator must preserve this
// order.
func (b *ArgBinder) InitNest() []ir.Stmt {
	return b.initNest
}

// HandleDTypes maps each pointer variable bound from a tensor handle to
// the element type it points to, for passes needing pointer arithmetic.
func (b *ArgBinder) HandleDTypes() *ordered.Map[*ir.Var, dtype.DataType] {
	return b.handleDTypes
}

// Bind matches the formal expression against an actual value under a
// human readable argument name. A formal consisting of a single undefined
// variable is registered as a new definition, materialized with a let when
// withLet is set. Any other formal becomes a runtime assertion unless the
// prover discharges it statically.
func (b *ArgBinder) Bind(formal, actual ir.Expr, argName string, withLet bool) error {
	if formal == nil || actual == nil {
		return errors.Errorf("argument %s: cannot bind a nil expression", argName)
	}
	if ir.Equal(formal, actual) {
		return nil
	}
	if v, ok := formal.(*ir.Var); ok && !b.defMap.Defined(v) {
		b.defMap.Define(v, actual)
		b.defs = append(b.defs, v)
		if withLet {
			b.initNest = append(b.initNest, ir.Let(v, actual))
		}
		return nil
	}
	if free := b.undefinedVars(formal); len(free) > 0 {
		return errors.Errorf("argument %s uses variable(s) %s which cannot be resolved from the signature", argName, ir.VarNames(free))
	}
	expected := b.prover.Substitute(formal, b.defMap)
	if b.prover.ProveEqual(expected, actual) {
		return nil
	}
	b.asserts = append(b.asserts, ir.Assert(
		ir.Eq(expected, actual),
		fmt.Sprintf("argument %s has an unsatisfied constraint: %s == %s", argName, expected, actual),
	))
	return nil
}

// undefinedVars returns the variables of a formal expression with no entry
// in the definition map. Such variables can never be resolved from the
// signature and must be reported rather than treated as unconstrained.
func (b *ArgBinder) undefinedVars(formal ir.Expr) []*ir.Var {
	var free []*ir.Var
	for _, v := range ir.FreeVars(formal) {
		if !b.defMap.Defined(v) {
			free = append(free, v)
		}
	}
	return free
}

// BindArray matches two same-length sequences of expressions element-wise
// under names derived from argName.
func (b *ArgBinder) BindArray(formal, actual []ir.Expr, argName string) error {
	if len(formal) != len(actual) {
		return errors.Errorf("argument %s expects a sequence of %d expressions, got %d", argName, len(formal), len(actual))
	}
	for i := range formal {
		if err := b.Bind(formal[i], actual[i], fmt.Sprintf("%s[%d]", argName, i), false); err != nil {
			return err
		}
	}
	return nil
}

// BindBuffer matches a formal buffer descriptor against an actual one.
// With fuzzyMatch set, the actual buffer may have fewer axes than the
// formal as long as every formal leading axis with no actual counterpart
// is provably of length 1.
func (b *ArgBinder) BindBuffer(formal, actual *ir.Buffer, argName string, fuzzyMatch bool) error {
	if formal.DType != actual.DType {
		return errors.Errorf("argument %s has element type %s while %s is expected", argName, actual.DType.String(), formal.DType.String())
	}
	if formal.DeviceKind != nil && actual.DeviceKind != nil {
		if err := b.Bind(formal.DeviceKind, actual.DeviceKind, argName+".device_kind", false); err != nil {
			return err
		}
	}
	if formal.DeviceIndex != nil && actual.DeviceIndex != nil {
		if err := b.Bind(formal.DeviceIndex, actual.DeviceIndex, argName+".device_index", false); err != nil {
			return err
		}
	}
	offset, err := b.matchRank(formal, actual, argName, fuzzyMatch)
	if err != nil {
		return err
	}
	for i, dim := range actual.Shape {
		name := fmt.Sprintf("%s.shape[%d]", argName, offset+i)
		if err := b.Bind(formal.Shape[offset+i], dim, name, false); err != nil {
			return err
		}
	}
	if err := b.bindStrides(formal, actual, argName, offset); err != nil {
		return err
	}
	if formal.Data != nil && actual.Data != nil {
		if err := b.Bind(formal.Data, actual.Data, argName+".data", formal.AddrRebind); err != nil {
			return err
		}
	}
	return nil
}

// matchRank checks the axis counts of the two buffers and returns the
// number of leading formal axes without an actual counterpart.
func (b *ArgBinder) matchRank(formal, actual *ir.Buffer, argName string, fuzzyMatch bool) (int, error) {
	if formal.Rank() == actual.Rank() {
		return 0, nil
	}
	if !fuzzyMatch {
		return 0, errors.Errorf("argument %s has %d axes while %d are expected", argName, actual.Rank(), formal.Rank())
	}
	if actual.Rank() > formal.Rank() {
		return 0, errors.Errorf("argument %s has %d axes while at most %d are expected", argName, actual.Rank(), formal.Rank())
	}
	offset := formal.Rank() - actual.Rank()
	for i := 0; i < offset; i++ {
		dim := b.prover.Substitute(formal.Shape[i], b.defMap)
		if !b.prover.ProveEqual(dim, ir.Int(1)) {
			return 0, errors.Errorf("argument %s: cannot prove leading axis %d of length %s equal to 1", argName, i, dim)
		}
	}
	return offset, nil
}

// bindStrides matches explicit strides when both descriptors carry them.
// A formal without strides constrains nothing; strides supplied only by
// the actual are accepted as is.
func (b *ArgBinder) bindStrides(formal, actual *ir.Buffer, argName string, offset int) error {
	if len(formal.Strides) == 0 || len(actual.Strides) == 0 {
		return nil
	}
	formalStrides := formal.Strides
	if offset > 0 && len(formalStrides) == formal.Rank() && len(actual.Strides) == actual.Rank() {
		// Trailing alignment, mirroring the shape policy: strides of the
		// peeled unit axes constrain nothing.
		formalStrides = formalStrides[offset:]
	}
	return b.BindArray(formalStrides, actual.Strides, argName+".strides")
}
