/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package idgen

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDv7_FormatAndUniqueness(t *testing.T) {
	gen := UUIDv7()
	seen := make(map[string]struct{}, 200)
	for i := 0; i < 200; i++ {
		id := gen()
		u, err := uuid.Parse(id)
		if err != nil {
			t.Fatalf("parse %q: %v", id, err)
		}
		if u.Version() != 7 {
			t.Fatalf("expected v7, got %d", u.Version())
		}
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate at %d: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestSequence(t *testing.T) {
	gen := Sequence("el-")
	if a, b := gen(), gen(); a != "el-1" || b != "el-2" {
		t.Fatalf("got %q %q", a, b)
	}
	if other := Sequence("el-")(); other != "el-1" {
		t.Fatalf("sequences should be independent, got %q", other)
	}
}
