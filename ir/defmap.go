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
	"iter"
	"strings"

	"github.com/tir-org/tir/base/ordered"
)

// DefMap maps variables to the expressions they resolve to. One map is
// threaded through every binding session of a signature, including nested
// sessions, so that a variable bound while binding one parameter is visible
// when binding the next. At most one session may mutate the map at a time:
// there is no locking here.
type DefMap struct {
	defs *ordered.Map[*Var, Expr]
}

// NewDefMap returns a new empty definition map.
func NewDefMap() *DefMap {
	return &DefMap{defs: ordered.NewMap[*Var, Expr]()}
}

// Define maps v to value.
func (m *DefMap) Define(v *Var, value Expr) {
	m.defs.Set(v, value)
}

// Def returns the expression v resolves to, if any.
func (m *DefMap) Def(v *Var) (Expr, bool) {
	return m.defs.Get(v)
}

// Defined returns true if v has a definition.
func (m *DefMap) Defined(v *Var) bool {
	return m.defs.Has(v)
}

// Len returns the number of definitions.
func (m *DefMap) Len() int {
	return m.defs.Len()
}

// All iterates over the definitions in the order they were registered.
func (m *DefMap) All() iter.Seq2[*Var, Expr] {
	return m.defs.All()
}

// String representation of the definition map.
func (m *DefMap) String() string {
	var kvs []string
	for v, def := range m.defs.All() {
		kvs = append(kvs, fmt.Sprintf("%s = %s", v, def))
	}
	return strings.Join(kvs, "\n")
}
