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

import "fmt"

type (
	// Stmt is a statement collected by the binder. The binder treats
	// statements as opaque leaves: it only orders them.
	Stmt interface {
		fmt.Stringer
		stmt()
	}

	// LetStmt defines a variable for the remainder of the generated
	// preamble. Lets produced while binding an opaque tensor handle wrap
	// memory reads and must therefore execute exactly once, before any
	// use of the variable.
	LetStmt struct {
		Var   *Var
		Value Expr
	}

	// AssertStmt aborts the generated program with Message when Cond does
	// not hold at call time.
	AssertStmt struct {
		Cond    Expr
		Message string
	}
)

var (
	_ Stmt = (*LetStmt)(nil)
	_ Stmt = (*AssertStmt)(nil)
)

func (*LetStmt) stmt()    {}
func (*AssertStmt) stmt() {}

// Let returns a statement defining v as value.
func Let(v *Var, value Expr) *LetStmt {
	return &LetStmt{Var: v, Value: value}
}

// Assert returns a statement checking cond at call time.
func Assert(cond Expr, message string) *AssertStmt {
	return &AssertStmt{Cond: cond, Message: message}
}

// String representation of the let statement.
func (s *LetStmt) String() string {
	return fmt.Sprintf("let %s = %s", s.Var, s.Value)
}

// String representation of the assertion.
func (s *AssertStmt) String() string {
	return fmt.Sprintf("assert %s, %q", s.Cond, s.Message)
}
