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

package binder

import (
	"fmt"

	"github.com/gx-org/backend/dtype"
	"github.com/pkg/errors"
	"github.com/tir-org/tir/ir"
)

// BindTensorHandle matches a formal buffer descriptor against an opaque
// runtime tensor handle. Every field of the handle is only knowable by
// generating a memory read, so the binding emits let statements into the
// initialization nest, together with the assertions that make each read
// safe. A shape or stride element is never read before an assertion,
// earlier in the nest, checking its index against the dimension count.
//
// With fuzzyMatch set, leading formal axes provably of length 1 constrain
// nothing, and the generated code aligns the remaining formal axes with
// the trailing axes of the handle through an offset computed at run time,
// since the handle rank is only known after reading it.
func (b *ArgBinder) BindTensorHandle(buf *ir.Buffer, handle *ir.Var, argName string, fuzzyMatch bool) error {
	if buf == nil || handle == nil {
		return errors.Errorf("argument %s: cannot bind a nil buffer or handle", argName)
	}
	code, bits, lanes, err := ir.DTypeFields(buf.DType)
	if err != nil {
		return errors.Wrapf(err, "argument %s", argName)
	}
	vNDim := ir.NewVar(argName+".ndim", ir.KindIntLen)
	if err := b.Bind(vNDim, ir.HandleRead(handle, ir.FieldNDim), vNDim.Name, true); err != nil {
		return err
	}
	peel := b.peelUnitAxes(buf, fuzzyMatch)
	bound := buf.Rank() - peel
	b.assertRank(vNDim, bound, argName, fuzzyMatch)
	offset, err := b.shapeOffset(vNDim, bound, argName, fuzzyMatch)
	if err != nil {
		return err
	}
	if err := b.bindHandleShape(buf, handle, vNDim, offset, peel, argName); err != nil {
		return err
	}
	if err := b.bindHandleStrides(buf, handle, vNDim, offset, peel, argName); err != nil {
		return err
	}
	b.asserts = append(b.asserts, ir.Assert(
		ir.And(
			ir.And(
				ir.Eq(ir.HandleRead(handle, ir.FieldDTypeCode), ir.Int(code)),
				ir.Eq(ir.HandleRead(handle, ir.FieldDTypeBits), ir.Int(bits)),
			),
			ir.Eq(ir.HandleRead(handle, ir.FieldDTypeLanes), ir.Int(lanes)),
		),
		fmt.Sprintf("argument %s expects an element type of %s", argName, buf.DType.String()),
	))
	if buf.DeviceKind != nil {
		if err := b.Bind(buf.DeviceKind, ir.HandleRead(handle, ir.FieldDeviceKind), argName+".device_kind", false); err != nil {
			return err
		}
	}
	if buf.DeviceIndex != nil {
		if err := b.Bind(buf.DeviceIndex, ir.HandleRead(handle, ir.FieldDeviceIndex), argName+".device_index", false); err != nil {
			return err
		}
	}
	b.asserts = append(b.asserts, ir.Assert(
		ir.Eq(ir.HandleRead(handle, ir.FieldByteOffset), ir.Int(0)),
		fmt.Sprintf("argument %s expects its data to start at the allocation", argName),
	))
	if buf.Data != nil {
		if err := b.Bind(buf.Data, ir.HandleRead(handle, ir.FieldData), argName+".data", true); err != nil {
			return err
		}
		b.handleDTypes.Set(buf.Data, buf.DType)
	}
	return nil
}

// peelUnitAxes returns how many leading formal axes are provably of
// length 1 and can be skipped under fuzzy matching. An axis that cannot
// be proven is kept: the handle must then provide it, or the generated
// rank check fails at call time.
func (b *ArgBinder) peelUnitAxes(buf *ir.Buffer, fuzzyMatch bool) int {
	if !fuzzyMatch {
		return 0
	}
	peel := 0
	for peel < buf.Rank() {
		dim := b.prover.Substitute(buf.Shape[peel], b.defMap)
		if !b.prover.ProveEqual(dim, ir.Int(1)) {
			break
		}
		peel++
	}
	return peel
}

func (b *ArgBinder) assertRank(vNDim *ir.Var, bound int, argName string, fuzzyMatch bool) {
	if fuzzyMatch {
		b.asserts = append(b.asserts, ir.Assert(
			ir.Ge(vNDim, ir.Int(int64(bound))),
			fmt.Sprintf("argument %s expects a tensor with at least %d axes", argName, bound),
		))
		return
	}
	b.asserts = append(b.asserts, ir.Assert(
		ir.Eq(vNDim, ir.Int(int64(bound))),
		fmt.Sprintf("argument %s expects a tensor with %d axes", argName, bound),
	))
}

// shapeOffset returns the expression aligning formal axis reads with the
// trailing axes of the handle. Without fuzzy matching the alignment is the
// identity.
func (b *ArgBinder) shapeOffset(vNDim *ir.Var, bound int, argName string, fuzzyMatch bool) (ir.Expr, error) {
	if !fuzzyMatch || bound == 0 {
		return ir.Int(0), nil
	}
	vOffset := ir.NewVar(argName+".shape_offset", ir.KindIntLen)
	err := b.Bind(vOffset, ir.Max(ir.Int(0), ir.Sub(vNDim, ir.Int(int64(bound)))), vOffset.Name, true)
	return vOffset, err
}

func axisIndex(offset ir.Expr, i int) ir.Expr {
	if imm, ok := offset.(*ir.IntImm); ok && imm.Value == 0 {
		return ir.Int(int64(i))
	}
	return ir.Add(ir.Int(int64(i)), offset)
}

// bindHandleShape extracts each axis length of the handle. Every element
// read is let-bound to a fresh variable inside the init nest, right after
// its bounds assertion, so that no later consumer of the binding output
// re-reads handle memory; the formal dimension is bound against that
// variable.
func (b *ArgBinder) bindHandleShape(buf *ir.Buffer, handle, vNDim *ir.Var, offset ir.Expr, peel int, argName string) error {
	bound := buf.Rank() - peel
	if bound == 0 {
		return nil
	}
	vShape := ir.NewVar(argName+".shape", ir.KindPtr)
	if err := b.Bind(vShape, ir.HandleRead(handle, ir.FieldShape), vShape.Name, true); err != nil {
		return err
	}
	b.handleDTypes.Set(vShape, dtype.Int64)
	for i := 0; i < bound; i++ {
		idx := axisIndex(offset, i)
		name := fmt.Sprintf("%s.shape[%d]", argName, peel+i)
		b.initNest = append(b.initNest, ir.Assert(
			ir.Lt(idx, vNDim),
			fmt.Sprintf("%s: axis index out of bounds", name),
		))
		vDim := ir.NewVar(fmt.Sprintf("%s.shape_%d", argName, peel+i), ir.KindIntLen)
		b.initNest = append(b.initNest, ir.Let(vDim, ir.Index(vShape, idx)))
		if err := b.Bind(buf.Shape[peel+i], vDim, name, false); err != nil {
			return err
		}
	}
	return nil
}

// bindHandleStrides matches explicit formal strides against the handle
// stride array. The stride pointer may be null at call time, in which case
// the handle is row-major contiguous: the bound value falls back to the
// product of the trailing axis lengths, so a null pointer constrains
// nothing beyond contiguity.
func (b *ArgBinder) bindHandleStrides(buf *ir.Buffer, handle, vNDim *ir.Var, offset ir.Expr, peel int, argName string) error {
	bound := buf.Rank() - peel
	if len(buf.Strides) == 0 || bound == 0 {
		return nil
	}
	if len(buf.Strides) != buf.Rank() {
		return errors.Errorf("argument %s declares %d strides for %d axes", argName, len(buf.Strides), buf.Rank())
	}
	vStrides := ir.NewVar(argName+".strides", ir.KindPtr)
	if err := b.Bind(vStrides, ir.HandleRead(handle, ir.FieldStrides), vStrides.Name, true); err != nil {
		return err
	}
	b.handleDTypes.Set(vStrides, dtype.Int64)
	isNull := ir.Eq(vStrides, ir.Null())
	for i := 0; i < bound; i++ {
		axis := peel + i
		idx := axisIndex(offset, i)
		name := fmt.Sprintf("%s.strides[%d]", argName, axis)
		b.initNest = append(b.initNest, ir.Assert(
			ir.Lt(idx, vNDim),
			fmt.Sprintf("%s: axis index out of bounds", name),
		))
		value := &ir.CondExpr{
			Cond: isNull,
			Then: b.rowMajorStride(buf, axis),
			Else: ir.Index(vStrides, idx),
		}
		vStride := ir.NewVar(fmt.Sprintf("%s.strides_%d", argName, axis), ir.KindIntLen)
		b.initNest = append(b.initNest, ir.Let(vStride, value))
		if err := b.Bind(buf.Strides[axis], vStride, name, false); err != nil {
			return err
		}
	}
	return nil
}

// rowMajorStride returns the contiguous stride of an axis, the product of
// the axis lengths after it. Shapes are substituted so the result is
// expressed with the values bound earlier in the nest.
func (b *ArgBinder) rowMajorStride(buf *ir.Buffer, axis int) ir.Expr {
	var stride ir.Expr = ir.Int(1)
	for j := buf.Rank() - 1; j > axis; j-- {
		stride = ir.Mul(b.prover.Substitute(buf.Shape[j], b.defMap), stride)
	}
	return stride
}
