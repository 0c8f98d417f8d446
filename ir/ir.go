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

// Package ir defines the symbolic expression and statement nodes consumed
// and produced by argument binding.
//
// Expressions are immutable trees over integer immediates, named variables,
// and arithmetic or comparison operators. Statements are the let bindings
// and assertions collected by the binder for a downstream code generator.
package ir

import (
	"fmt"
	"go/token"
	"strings"
)

type (
	// Expr is a node in a symbolic expression tree.
	Expr interface {
		fmt.Stringer
		expr()
	}

	// Kind describes what a variable stands for.
	Kind int

	// Var is a named, typed symbolic unknown. A variable may appear in
	// multiple formal positions across a signature; identity is pointer
	// identity, not name equality.
	Var struct {
		Name string
		Knd  Kind
	}

	// IntImm is an integer immediate.
	IntImm struct {
		Value int64
	}

	// NullImm is the null pointer immediate.
	NullImm struct{}

	// BinaryExpr combines two expressions with an arithmetic, comparison,
	// or logical operator from go/token.
	BinaryExpr struct {
		Op   token.Token
		X, Y Expr
	}

	// MaxExpr is the maximum of two expressions.
	MaxExpr struct {
		X, Y Expr
	}

	// CondExpr selects Then or Else depending on Cond.
	CondExpr struct {
		Cond Expr
		Then Expr
		Else Expr
	}

	// IndexExpr reads the element at Index from the array pointed to by
	// Ptr. The read is unchecked: the binder is responsible for sequencing
	// a bounds assertion ahead of it.
	IndexExpr struct {
		Ptr   Expr
		Index Expr
	}
)

const (
	// KindIntLen marks a variable holding an axis length or any other
	// integer quantity.
	KindIntLen Kind = iota
	// KindPtr marks a pointer-valued variable.
	KindPtr
)

var (
	_ Expr = (*Var)(nil)
	_ Expr = (*IntImm)(nil)
	_ Expr = (*NullImm)(nil)
	_ Expr = (*BinaryExpr)(nil)
	_ Expr = (*MaxExpr)(nil)
	_ Expr = (*CondExpr)(nil)
	_ Expr = (*IndexExpr)(nil)
)

func (*Var) expr()        {}
func (*IntImm) expr()     {}
func (*NullImm) expr()    {}
func (*BinaryExpr) expr() {}
func (*MaxExpr) expr()    {}
func (*CondExpr) expr()   {}
func (*IndexExpr) expr()  {}

// NewVar returns a new variable.
func NewVar(name string, kind Kind) *Var {
	return &Var{Name: name, Knd: kind}
}

// Int returns an integer immediate.
func Int(v int64) *IntImm {
	return &IntImm{Value: v}
}

// Null returns the null pointer immediate.
func Null() *NullImm {
	return &NullImm{}
}

// Add returns x + y.
func Add(x, y Expr) *BinaryExpr { return &BinaryExpr{Op: token.ADD, X: x, Y: y} }

// Sub returns x - y.
func Sub(x, y Expr) *BinaryExpr { return &BinaryExpr{Op: token.SUB, X: x, Y: y} }

// Mul returns x * y.
func Mul(x, y Expr) *BinaryExpr { return &BinaryExpr{Op: token.MUL, X: x, Y: y} }

// Div returns x / y.
func Div(x, y Expr) *BinaryExpr { return &BinaryExpr{Op: token.QUO, X: x, Y: y} }

// Eq returns x == y.
func Eq(x, y Expr) *BinaryExpr { return &BinaryExpr{Op: token.EQL, X: x, Y: y} }

// Neq returns x != y.
func Neq(x, y Expr) *BinaryExpr { return &BinaryExpr{Op: token.NEQ, X: x, Y: y} }

// Lt returns x < y.
func Lt(x, y Expr) *BinaryExpr { return &BinaryExpr{Op: token.LSS, X: x, Y: y} }

// Le returns x <= y.
func Le(x, y Expr) *BinaryExpr { return &BinaryExpr{Op: token.LEQ, X: x, Y: y} }

// Ge returns x >= y.
func Ge(x, y Expr) *BinaryExpr { return &BinaryExpr{Op: token.GEQ, X: x, Y: y} }

// And returns x && y.
func And(x, y Expr) *BinaryExpr { return &BinaryExpr{Op: token.LAND, X: x, Y: y} }

// Max returns the maximum of x and y.
func Max(x, y Expr) *MaxExpr { return &MaxExpr{X: x, Y: y} }

// Index returns the element read ptr[index].
func Index(ptr, index Expr) *IndexExpr {
	return &IndexExpr{Ptr: ptr, Index: index}
}

// String representation of the variable.
func (v *Var) String() string { return v.Name }

// String representation of the immediate.
func (x *IntImm) String() string { return fmt.Sprint(x.Value) }

// String representation of the null pointer.
func (*NullImm) String() string { return "null" }

// String representation of the binary expression.
func (x *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", x.X, x.Op, x.Y)
}

// String representation of the maximum.
func (x *MaxExpr) String() string {
	return fmt.Sprintf("max(%s, %s)", x.X, x.Y)
}

// String representation of the conditional.
func (x *CondExpr) String() string {
	return fmt.Sprintf("select(%s, %s, %s)", x.Cond, x.Then, x.Else)
}

// String representation of the element read.
func (x *IndexExpr) String() string {
	return fmt.Sprintf("%s[%s]", x.Ptr, x.Index)
}

// Equal reports structural equality of two expressions. Variables compare
// by identity.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch aT := a.(type) {
	case *Var:
		return Expr(aT) == b
	case *IntImm:
		bT, ok := b.(*IntImm)
		return ok && aT.Value == bT.Value
	case *NullImm:
		_, ok := b.(*NullImm)
		return ok
	case *BinaryExpr:
		bT, ok := b.(*BinaryExpr)
		return ok && aT.Op == bT.Op && Equal(aT.X, bT.X) && Equal(aT.Y, bT.Y)
	case *MaxExpr:
		bT, ok := b.(*MaxExpr)
		return ok && Equal(aT.X, bT.X) && Equal(aT.Y, bT.Y)
	case *CondExpr:
		bT, ok := b.(*CondExpr)
		return ok && Equal(aT.Cond, bT.Cond) && Equal(aT.Then, bT.Then) && Equal(aT.Else, bT.Else)
	case *IndexExpr:
		bT, ok := b.(*IndexExpr)
		return ok && Equal(aT.Ptr, bT.Ptr) && Equal(aT.Index, bT.Index)
	case *FieldExpr:
		bT, ok := b.(*FieldExpr)
		return ok && aT.Handle == bT.Handle && aT.Field == bT.Field
	default:
		return false
	}
}

// VisitVars calls f for every variable in the expression tree, stopping
// early if f returns false.
func VisitVars(e Expr, f func(*Var) bool) bool {
	switch eT := e.(type) {
	case nil:
		return true
	case *Var:
		return f(eT)
	case *BinaryExpr:
		return VisitVars(eT.X, f) && VisitVars(eT.Y, f)
	case *MaxExpr:
		return VisitVars(eT.X, f) && VisitVars(eT.Y, f)
	case *CondExpr:
		return VisitVars(eT.Cond, f) && VisitVars(eT.Then, f) && VisitVars(eT.Else, f)
	case *IndexExpr:
		return VisitVars(eT.Ptr, f) && VisitVars(eT.Index, f)
	case *FieldExpr:
		return f(eT.Handle)
	default:
		return true
	}
}

// FreeVars returns the variables appearing in the expression, in first
// occurrence order.
func FreeVars(e Expr) []*Var {
	var vars []*Var
	seen := make(map[*Var]bool)
	VisitVars(e, func(v *Var) bool {
		if !seen[v] {
			seen[v] = true
			vars = append(vars, v)
		}
		return true
	})
	return vars
}

// VarNames formats a list of variables as a comma separated string.
func VarNames(vars []*Var) string {
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name
	}
	return strings.Join(names, ", ")
}
