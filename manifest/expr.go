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

package manifest

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"

	"github.com/pkg/errors"
	"github.com/tir-org/tir/ir"
)

// varScope hands out one variable per name so that a name used across
// several positions of a manifest always denotes the same symbolic
// unknown.
type varScope struct {
	vars map[string]*ir.Var
}

func newVarScope() *varScope {
	return &varScope{vars: make(map[string]*ir.Var)}
}

func (s *varScope) variable(name string, kind ir.Kind) *ir.Var {
	if v, ok := s.vars[name]; ok {
		return v
	}
	v := ir.NewVar(name, kind)
	s.vars[name] = v
	return v
}

// parseExpr parses a symbolic expression written in Go syntax: integer
// literals, identifiers, and the +, -, * and / operators.
func (s *varScope) parseExpr(src string) (ir.Expr, error) {
	node, err := parser.ParseExpr(src)
	if err != nil {
		return nil, errors.Errorf("cannot parse expression %q: %v", src, err)
	}
	expr, err := s.fromAST(node)
	if err != nil {
		return nil, errors.Errorf("cannot parse expression %q: %v", src, err)
	}
	return expr, nil
}

func (s *varScope) fromAST(node ast.Expr) (ir.Expr, error) {
	switch nodeT := node.(type) {
	case *ast.Ident:
		return s.variable(nodeT.Name, ir.KindIntLen), nil
	case *ast.BasicLit:
		if nodeT.Kind != token.INT {
			return nil, errors.Errorf("literal %s is not an integer", nodeT.Value)
		}
		value, err := strconv.ParseInt(nodeT.Value, 0, 64)
		if err != nil {
			return nil, errors.Errorf("cannot parse integer %s: %v", nodeT.Value, err)
		}
		return ir.Int(value), nil
	case *ast.ParenExpr:
		return s.fromAST(nodeT.X)
	case *ast.UnaryExpr:
		if nodeT.Op != token.SUB {
			return nil, errors.Errorf("unary operator %s not supported", nodeT.Op)
		}
		x, err := s.fromAST(nodeT.X)
		if err != nil {
			return nil, err
		}
		return ir.Sub(ir.Int(0), x), nil
	case *ast.BinaryExpr:
		x, err := s.fromAST(nodeT.X)
		if err != nil {
			return nil, err
		}
		y, err := s.fromAST(nodeT.Y)
		if err != nil {
			return nil, err
		}
		switch nodeT.Op {
		case token.ADD, token.SUB, token.MUL, token.QUO:
			return &ir.BinaryExpr{Op: nodeT.Op, X: x, Y: y}, nil
		default:
			return nil, errors.Errorf("operator %s not supported", nodeT.Op)
		}
	default:
		return nil, errors.Errorf("expression node %T not supported", node)
	}
}

func (s *varScope) parseExprs(srcs []string) ([]ir.Expr, error) {
	if len(srcs) == 0 {
		return nil, nil
	}
	exprs := make([]ir.Expr, len(srcs))
	for i, src := range srcs {
		expr, err := s.parseExpr(src)
		if err != nil {
			return nil, err
		}
		exprs[i] = expr
	}
	return exprs, nil
}
