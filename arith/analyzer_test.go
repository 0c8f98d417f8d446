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

package arith_test

import (
	"testing"

	"github.com/tir-org/tir/arith"
	"github.com/tir-org/tir/ir"
)

func TestProveEqual(t *testing.T) {
	n := ir.NewVar("n", ir.KindIntLen)
	m := ir.NewVar("m", ir.KindIntLen)
	h := ir.NewVar("h", ir.KindPtr)
	tests := []struct {
		name string
		x, y ir.Expr
		want bool
	}{
		{
			name: "equal constants",
			x:    ir.Int(7),
			y:    ir.Int(7),
			want: true,
		},
		{
			name: "folded sum",
			x:    ir.Add(ir.Int(5), ir.Int(2)),
			y:    ir.Int(7),
			want: true,
		},
		{
			name: "unequal constants",
			x:    ir.Int(7),
			y:    ir.Int(8),
			want: false,
		},
		{
			name: "same variable",
			x:    n,
			y:    n,
			want: true,
		},
		{
			name: "distinct variables",
			x:    n,
			y:    m,
			want: false,
		},
		{
			name: "commuted sum",
			x:    ir.Add(n, ir.Int(2)),
			y:    ir.Add(ir.Int(2), n),
			want: true,
		},
		{
			name: "folded symbolic sum",
			x:    ir.Add(ir.Add(n, ir.Int(2)), ir.Int(3)),
			y:    ir.Add(n, ir.Int(5)),
			want: true,
		},
		{
			name: "cancelled constant",
			x:    ir.Sub(ir.Add(n, ir.Int(2)), ir.Int(2)),
			y:    n,
			want: true,
		},
		{
			name: "unit factor",
			x:    ir.Mul(n, ir.Int(1)),
			y:    n,
			want: true,
		},
		{
			name: "zero factor",
			x:    ir.Mul(n, ir.Int(0)),
			y:    ir.Int(0),
			want: true,
		},
		{
			name: "commuted product",
			x:    ir.Mul(n, m),
			y:    ir.Mul(m, n),
			want: true,
		},
		{
			// (2^62 + 1)^2 and 2^124 + 2^63 differ by exactly one;
			// folding must stay exact at magnitudes where floats round.
			name: "large product off by one",
			x:    ir.Mul(ir.Int(1<<62+1), ir.Int(1<<62+1)),
			y:    ir.Add(ir.Mul(ir.Int(1<<62), ir.Int(1<<62)), ir.Mul(ir.Int(2), ir.Int(1<<62))),
			want: false,
		},
		{
			name: "large product folded",
			x:    ir.Mul(ir.Int(1<<62+1), ir.Int(1<<62+1)),
			y:    ir.Add(ir.Add(ir.Mul(ir.Int(1<<62), ir.Int(1<<62)), ir.Mul(ir.Int(2), ir.Int(1<<62))), ir.Int(1)),
			want: true,
		},
		{
			name: "different symbolic sums",
			x:    ir.Add(n, ir.Int(2)),
			y:    ir.Add(n, ir.Int(3)),
			want: false,
		},
		{
			name: "opaque integer division",
			x:    ir.Div(ir.Int(7), ir.Int(2)),
			y:    ir.Int(3),
			want: false,
		},
		{
			name: "same division",
			x:    ir.Div(n, ir.Int(2)),
			y:    ir.Div(n, ir.Int(2)),
			want: true,
		},
		{
			name: "same field read",
			x:    ir.HandleRead(h, ir.FieldNDim),
			y:    ir.HandleRead(h, ir.FieldNDim),
			want: true,
		},
		{
			name: "distinct field reads",
			x:    ir.HandleRead(h, ir.FieldNDim),
			y:    ir.HandleRead(h, ir.FieldDeviceKind),
			want: false,
		},
		{
			name: "folded maximum",
			x:    ir.Max(ir.Int(0), ir.Int(3)),
			y:    ir.Int(3),
			want: true,
		},
		{
			name: "commuted maximum",
			x:    ir.Max(n, m),
			y:    ir.Max(m, n),
			want: true,
		},
	}
	a := arith.New()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := a.ProveEqual(test.x, test.y); got != test.want {
				t.Errorf("ProveEqual(%s, %s) = %v, want %v", test.x, test.y, got, test.want)
			}
		})
	}
}

func TestSubstitute(t *testing.T) {
	n := ir.NewVar("n", ir.KindIntLen)
	m := ir.NewVar("m", ir.KindIntLen)
	a := arith.New()
	defs := ir.NewDefMap()
	defs.Define(n, ir.Int(5))
	defs.Define(m, ir.Add(n, ir.Int(2)))
	tests := []struct {
		expr ir.Expr
		want string
	}{
		{expr: n, want: "5"},
		{expr: m, want: "(5 + 2)"},
		{expr: ir.Add(m, ir.Int(1)), want: "((5 + 2) + 1)"},
		{expr: ir.Int(3), want: "3"},
	}
	for _, test := range tests {
		got := a.Substitute(test.expr, defs)
		if got.String() != test.want {
			t.Errorf("Substitute(%s) = %s, want %s", test.expr, got, test.want)
		}
	}
}

func TestSubstituteKeepsUndefined(t *testing.T) {
	n := ir.NewVar("n", ir.KindIntLen)
	a := arith.New()
	got := a.Substitute(ir.Add(n, ir.Int(2)), ir.NewDefMap())
	if got.String() != "(n + 2)" {
		t.Errorf("Substitute(n + 2) = %s, want (n + 2)", got)
	}
}
