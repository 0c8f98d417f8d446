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

package ir

import (
	"fmt"

	"github.com/gx-org/backend/dtype"
	"github.com/pkg/errors"
)

// HandleField identifies a field of an opaque runtime tensor handle.
// The field order and byte offsets are fixed by the runtime ABI and must
// match it exactly for generated reads to be correct.
type HandleField int

const (
	// FieldData is the data pointer.
	FieldData HandleField = iota
	// FieldDeviceKind is the device kind.
	FieldDeviceKind
	// FieldDeviceIndex is the device index.
	FieldDeviceIndex
	// FieldNDim is the number of axes.
	FieldNDim
	// FieldDTypeCode is the element type code.
	FieldDTypeCode
	// FieldDTypeBits is the element width in bits.
	FieldDTypeBits
	// FieldDTypeLanes is the element vector lane count.
	FieldDTypeLanes
	// FieldShape is the pointer to the per-axis size array.
	FieldShape
	// FieldStrides is the pointer to the per-axis stride array, possibly
	// null.
	FieldStrides
	// FieldByteOffset is the byte offset of the data within the
	// allocation.
	FieldByteOffset
)

// fieldOffsets are the byte offsets of each handle field on a 64-bit
// target.
var fieldOffsets = map[HandleField]int{
	FieldData:        0,
	FieldDeviceKind:  8,
	FieldDeviceIndex: 12,
	FieldNDim:        16,
	FieldDTypeCode:   20,
	FieldDTypeBits:   21,
	FieldDTypeLanes:  22,
	FieldShape:       24,
	FieldStrides:     32,
	FieldByteOffset:  40,
}

var fieldNames = map[HandleField]string{
	FieldData:        "data",
	FieldDeviceKind:  "device_kind",
	FieldDeviceIndex: "device_index",
	FieldNDim:        "ndim",
	FieldDTypeCode:   "dtype.code",
	FieldDTypeBits:   "dtype.bits",
	FieldDTypeLanes:  "dtype.lanes",
	FieldShape:       "shape",
	FieldStrides:     "strides",
	FieldByteOffset:  "byte_offset",
}

// Offset returns the byte offset of the field within the handle.
func (f HandleField) Offset() int {
	return fieldOffsets[f]
}

// String returns the runtime name of the field.
func (f HandleField) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// FieldExpr reads a fixed field from an opaque tensor handle. Fixed fields
// need no bounds check, unlike the shape and stride array elements reached
// through them.
type FieldExpr struct {
	Handle *Var
	Field  HandleField
}

var _ Expr = (*FieldExpr)(nil)

func (*FieldExpr) expr() {}

// HandleRead returns the expression reading a field of handle.
func HandleRead(handle *Var, field HandleField) *FieldExpr {
	return &FieldExpr{Handle: handle, Field: field}
}

// String representation of the field read.
func (x *FieldExpr) String() string {
	return fmt.Sprintf("%s->%s", x.Handle, x.Field)
}

// Element type codes of the runtime ABI.
const (
	dtypeCodeInt    = 0
	dtypeCodeUint   = 1
	dtypeCodeFloat  = 2
	dtypeCodeBfloat = 4
	dtypeCodeBool   = 6
)

// DTypeFields returns the type code, bit width and lane count encoding dt
// in a tensor handle.
func DTypeFields(dt dtype.DataType) (code, bits, lanes int64, err error) {
	switch dt {
	case dtype.Bool:
		code = dtypeCodeBool
	case dtype.Int32, dtype.Int64:
		code = dtypeCodeInt
	case dtype.Uint32, dtype.Uint64:
		code = dtypeCodeUint
	case dtype.Float32, dtype.Float64:
		code = dtypeCodeFloat
	case dtype.Bfloat16:
		code = dtypeCodeBfloat
	default:
		return 0, 0, 0, errors.Errorf("data type %s has no tensor handle encoding", dt.String())
	}
	return code, int64(dtype.Sizeof(dt)) * 8, 1, nil
}
