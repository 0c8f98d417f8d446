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
	"strings"

	"github.com/gx-org/backend/dtype"
)

// Buffer describes a region of memory holding an array, with symbolic
// shape and strides. A formal buffer may contain free variables; an actual
// buffer is the descriptor supplied by a caller, itself possibly still
// symbolic when nested inside another signature.
type Buffer struct {
	// Name of the buffer, used to derive diagnostic names.
	Name string
	// Data is the base pointer variable.
	Data *Var
	// DType is the element data type.
	DType dtype.DataType
	// Shape is the symbolic size of each axis.
	Shape []Expr
	// Strides is the symbolic element stride of each axis. A nil slice
	// means the buffer is assumed row-major contiguous downstream.
	Strides []Expr
	// DeviceKind and DeviceIndex locate the memory.
	DeviceKind  Expr
	DeviceIndex Expr
	// AddrRebind requests that the base pointer be materialized with a
	// let binding instead of a pure substitution. The caller decides;
	// the binder is agnostic to why.
	AddrRebind bool
}

// Rank returns the number of axes of the buffer.
func (b *Buffer) Rank() int {
	return len(b.Shape)
}

// String representation of the buffer.
func (b *Buffer) String() string {
	dims := make([]string, len(b.Shape))
	for i, d := range b.Shape {
		dims[i] = d.String()
	}
	return fmt.Sprintf("%s: %s[%s]", b.Name, b.DType.String(), strings.Join(dims, ", "))
}
