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

package arith

import (
	"fmt"
	"go/token"

	"github.com/tir-org/tir/ir"
)

// Analyzer substitutes definitions into expressions and proves equalities
// between them. Proofs are best effort: ProveEqual may return false for a
// true equality but never returns true for a false one.
type Analyzer struct{}

// New returns a new analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Substitute replaces every variable defined in defs by its definition,
// recursively, and returns the rewritten expression. Expressions without
// defined variables are returned unchanged.
func (a *Analyzer) Substitute(e ir.Expr, defs *ir.DefMap) ir.Expr {
	switch eT := e.(type) {
	case *ir.Var:
		def, ok := defs.Def(eT)
		if !ok {
			return eT
		}
		return a.Substitute(def, defs)
	case *ir.BinaryExpr:
		x, y := a.Substitute(eT.X, defs), a.Substitute(eT.Y, defs)
		if x == eT.X && y == eT.Y {
			return eT
		}
		return &ir.BinaryExpr{Op: eT.Op, X: x, Y: y}
	case *ir.MaxExpr:
		x, y := a.Substitute(eT.X, defs), a.Substitute(eT.Y, defs)
		if x == eT.X && y == eT.Y {
			return eT
		}
		return &ir.MaxExpr{X: x, Y: y}
	case *ir.CondExpr:
		cond := a.Substitute(eT.Cond, defs)
		then := a.Substitute(eT.Then, defs)
		els := a.Substitute(eT.Else, defs)
		if cond == eT.Cond && then == eT.Then && els == eT.Else {
			return eT
		}
		return &ir.CondExpr{Cond: cond, Then: then, Else: els}
	case *ir.IndexExpr:
		ptr, index := a.Substitute(eT.Ptr, defs), a.Substitute(eT.Index, defs)
		if ptr == eT.Ptr && index == eT.Index {
			return eT
		}
		return &ir.IndexExpr{Ptr: ptr, Index: index}
	default:
		// Immediates and handle field reads contain nothing to replace.
		return e
	}
}

// ProveEqual returns true if x and y are equal for every assignment of
// their free variables. It folds both sides to constants when possible,
// then falls back to comparing canonical forms.
func (a *Analyzer) ProveEqual(x, y ir.Expr) bool {
	if x == nil || y == nil {
		return false
	}
	cx, cy := canon(x).simplify(), canon(y).simplify()
	if xI, yI := toInt(cx), toInt(cy); xI != nil && yI != nil {
		return xI.Cmp(yI) == 0
	}
	return cx.compare(cy)
}

// canon translates an ir expression into its canonical form. Variables are
// qualified by identity so that two distinct variables sharing a name never
// compare equal.
func canon(e ir.Expr) canonical {
	switch eT := e.(type) {
	case *ir.IntImm:
		return newInt(eT.Value)
	case *ir.Var:
		return newSym(symName(eT))
	case *ir.NullImm:
		return newSym("<null>")
	case *ir.BinaryExpr:
		return canonBinary(eT)
	case *ir.MaxExpr:
		return newNary(opMax, true, canon(eT.X), canon(eT.Y))
	case *ir.CondExpr:
		return newNary("select", false, canon(eT.Cond), canon(eT.Then), canon(eT.Else))
	case *ir.IndexExpr:
		return newNary("index", false, canon(eT.Ptr), canon(eT.Index))
	case *ir.FieldExpr:
		return newNary("field", false, newSym(symName(eT.Handle)), newSym(eT.Field.String()))
	default:
		return newSym(fmt.Sprintf("<%T>%p", e, e))
	}
}

func canonBinary(e *ir.BinaryExpr) canonical {
	x, y := canon(e.X), canon(e.Y)
	switch e.Op {
	case token.ADD:
		return newNary(opAdd, true, x, y)
	case token.SUB:
		return newNary(opAdd, true, x, newNary(opNeg, false, y))
	case token.MUL:
		return newNary(opMul, true, x, y)
	case token.QUO:
		// Division is kept opaque: truncation does not fold like the
		// ring operators.
		return newNary(opDiv, false, x, y)
	case token.EQL:
		return newNary("==", true, x, y)
	case token.NEQ:
		return newNary("!=", true, x, y)
	case token.LSS:
		return newNary("<", false, x, y)
	case token.LEQ:
		return newNary("<=", false, x, y)
	case token.GTR:
		return newNary("<", false, y, x)
	case token.GEQ:
		return newNary("<=", false, y, x)
	case token.LAND:
		return newNary("&&", true, x, y)
	case token.LOR:
		return newNary("||", true, x, y)
	default:
		return newNary(e.Op.String(), false, x, y)
	}
}

func symName(v *ir.Var) string {
	return fmt.Sprintf("%s@%p", v.Name, v)
}
