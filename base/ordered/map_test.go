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

package ordered_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tir-org/tir/base/ordered"
)

func TestMapOrder(t *testing.T) {
	m := ordered.NewMap[string, int]()
	m.Set("c", 3)
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 10)
	var keys []string
	var values []int
	for k, v := range m.All() {
		keys = append(keys, k)
		values = append(values, v)
	}
	if diff := cmp.Diff([]string{"c", "a", "b"}, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3, 10, 2}, values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if got, want := m.Len(), 3; got != want {
		t.Errorf("got %d elements, want %d", got, want)
	}
}

func TestMapGet(t *testing.T) {
	m := ordered.NewMap[string, int]()
	m.Set("a", 1)
	if v, ok := m.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v, want 1, true", v, ok)
	}
	if _, ok := m.Get("b"); ok {
		t.Errorf("Get(b) found a missing key")
	}
	if !m.Has("a") || m.Has("b") {
		t.Errorf("Has reports wrong membership")
	}
}

func TestMapClone(t *testing.T) {
	m := ordered.NewMap[string, int]()
	m.Set("a", 1)
	clone := m.Clone()
	clone.Set("b", 2)
	if m.Has("b") {
		t.Errorf("clone shares storage with the original")
	}
	if !clone.Has("a") {
		t.Errorf("clone misses keys of the original")
	}
}
