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

package ir_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/backend/dtype"
	"github.com/tir-org/tir/ir"
)

func TestExprString(t *testing.T) {
	n := ir.NewVar("n", ir.KindIntLen)
	h := ir.NewVar("h", ir.KindPtr)
	tests := []struct {
		expr ir.Expr
		want string
	}{
		{expr: ir.Int(42), want: "42"},
		{expr: n, want: "n"},
		{expr: ir.Null(), want: "null"},
		{expr: ir.Add(n, ir.Int(2)), want: "(n + 2)"},
		{expr: ir.Lt(ir.Int(1), n), want: "(1 < n)"},
		{expr: ir.Max(ir.Int(0), n), want: "max(0, n)"},
		{expr: ir.Index(h, ir.Int(3)), want: "h[3]"},
		{expr: ir.HandleRead(h, ir.FieldNDim), want: "h->ndim"},
		{expr: ir.HandleRead(h, ir.FieldDTypeLanes), want: "h->dtype.lanes"},
		{
			expr: &ir.CondExpr{Cond: ir.Eq(n, ir.Int(0)), Then: ir.Int(1), Else: n},
			want: "select((n == 0), 1, n)",
		},
	}
	for _, test := range tests {
		if got := test.expr.String(); got != test.want {
			t.Errorf("got %s, want %s", got, test.want)
		}
	}
}

func TestStmtString(t *testing.T) {
	n := ir.NewVar("n", ir.KindIntLen)
	if got, want := ir.Let(n, ir.Int(5)).String(), "let n = 5"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
	got := ir.Assert(ir.Eq(n, ir.Int(5)), "n must be 5").String()
	if want := `assert (n == 5), "n must be 5"`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestEqual(t *testing.T) {
	n := ir.NewVar("n", ir.KindIntLen)
	other := ir.NewVar("n", ir.KindIntLen)
	tests := []struct {
		x, y ir.Expr
		want bool
	}{
		{x: n, y: n, want: true},
		{x: n, y: other, want: false},
		{x: ir.Int(3), y: ir.Int(3), want: true},
		{x: ir.Int(3), y: ir.Int(4), want: false},
		{x: ir.Add(n, ir.Int(2)), y: ir.Add(n, ir.Int(2)), want: true},
		{x: ir.Add(n, ir.Int(2)), y: ir.Add(ir.Int(2), n), want: false},
		{x: ir.Null(), y: ir.Null(), want: true},
	}
	for _, test := range tests {
		if got := ir.Equal(test.x, test.y); got != test.want {
			t.Errorf("Equal(%s, %s) = %v, want %v", test.x, test.y, got, test.want)
		}
	}
}

func TestFreeVars(t *testing.T) {
	n := ir.NewVar("n", ir.KindIntLen)
	m := ir.NewVar("m", ir.KindIntLen)
	expr := ir.Add(ir.Mul(n, m), n)
	got := ir.FreeVars(expr)
	want := []*ir.Var{n, m}
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b *ir.Var) bool { return a == b })); diff != "" {
		t.Errorf("free variables mismatch (-want +got):\n%s", diff)
	}
}

func TestDefMap(t *testing.T) {
	n := ir.NewVar("n", ir.KindIntLen)
	m := ir.NewVar("m", ir.KindIntLen)
	defs := ir.NewDefMap()
	defs.Define(n, ir.Int(5))
	defs.Define(m, n)
	if got, want := defs.Len(), 2; got != want {
		t.Fatalf("got %d definitions, want %d", got, want)
	}
	var order []string
	for v := range defs.All() {
		order = append(order, v.Name)
	}
	if diff := cmp.Diff([]string{"n", "m"}, order); diff != "" {
		t.Errorf("definition order mismatch (-want +got):\n%s", diff)
	}
	if !defs.Defined(n) {
		t.Errorf("n is not defined")
	}
	if defs.Defined(ir.NewVar("n", ir.KindIntLen)) {
		t.Errorf("a distinct variable named n is defined")
	}
}

func TestDTypeFields(t *testing.T) {
	tests := []struct {
		dt                dtype.DataType
		code, bits, lanes int64
	}{
		{dt: dtype.Float32, code: 2, bits: 32, lanes: 1},
		{dt: dtype.Float64, code: 2, bits: 64, lanes: 1},
		{dt: dtype.Int32, code: 0, bits: 32, lanes: 1},
		{dt: dtype.Uint64, code: 1, bits: 64, lanes: 1},
		{dt: dtype.Bfloat16, code: 4, bits: 16, lanes: 1},
		{dt: dtype.Bool, code: 6, bits: 8, lanes: 1},
	}
	for _, test := range tests {
		code, bits, lanes, err := ir.DTypeFields(test.dt)
		if err != nil {
			t.Errorf("DTypeFields(%s): %v", test.dt.String(), err)
			continue
		}
		if code != test.code || bits != test.bits || lanes != test.lanes {
			t.Errorf("DTypeFields(%s) = (%d, %d, %d), want (%d, %d, %d)",
				test.dt.String(), code, bits, lanes, test.code, test.bits, test.lanes)
		}
	}
	if _, _, _, err := ir.DTypeFields(dtype.Invalid); err == nil {
		t.Errorf("DTypeFields(invalid) did not fail")
	}
}

func TestHandleFieldOffsets(t *testing.T) {
	// The offsets are part of the runtime ABI: field order and alignment
	// on a 64-bit target.
	tests := []struct {
		field ir.HandleField
		want  int
	}{
		{field: ir.FieldData, want: 0},
		{field: ir.FieldDeviceKind, want: 8},
		{field: ir.FieldDeviceIndex, want: 12},
		{field: ir.FieldNDim, want: 16},
		{field: ir.FieldDTypeCode, want: 20},
		{field: ir.FieldShape, want: 24},
		{field: ir.FieldStrides, want: 32},
		{field: ir.FieldByteOffset, want: 40},
	}
	for _, test := range tests {
		if got := test.field.Offset(); got != test.want {
			t.Errorf("%s offset is %d, want %d", test.field, got, test.want)
		}
	}
}

func TestDeviceKindString(t *testing.T) {
	tests := []struct {
		kind ir.DeviceKind
		want string
	}{
		{kind: ir.DeviceCPU, want: "cpu"},
		{kind: ir.DeviceCUDA, want: "cuda"},
		{kind: ir.DeviceMetal, want: "metal"},
		{kind: ir.DeviceKind(99), want: "device(99)"},
	}
	for _, test := range tests {
		if got := test.kind.String(); got != test.want {
			t.Errorf("got %s, want %s", got, test.want)
		}
	}
}
