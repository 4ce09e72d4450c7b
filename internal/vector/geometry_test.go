/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"
	"testing"
)

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	in := r.Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
	out := r.Inset(-16, -16)
	if out.X != -6 || out.W != 132 {
		t.Fatalf("unexpected outset: %+v", out)
	}
}

func TestAffineBasic(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 3))
	p := m.Apply(Pt{1, 1})
	if p.X != 12 || p.Y != 8 { // (1*2+10, 1*3+5)
		t.Fatalf("unexpected transform result: %+v", p)
	}
}

func TestAffineInvertRoundTrip(t *testing.T) {
	m := Translate(30, -7).Mul(Rotate(Radians(33))).Mul(Scale(1.7, 1.7))
	inv := m.Invert()
	for _, p := range []Pt{{0, 0}, {12.5, -3}, {400, 250}} {
		q := inv.Apply(m.Apply(p))
		if !q.Near(p, 1e-9) {
			t.Fatalf("round trip %v -> %v", p, q)
		}
	}
	if Scale(0, 0).Invert() != Identity {
		t.Fatalf("singular matrix should invert to identity")
	}
}

func TestBoxNode_HitRotated(t *testing.T) {
	n := NewBox(R(0, 0, 100, 20), 90, 1)
	// rotated 90° about (50,10): the box now spans x∈[40,60], y∈[-40,60]
	if !n.Hit(Pt{50, -30}) {
		t.Fatalf("expected hit above centre after rotation")
	}
	if n.Hit(Pt{5, 10}) {
		t.Fatalf("left end should be outside after rotation")
	}
	b := n.Bounds()
	if math.Abs(b.W-20) > 1e-9 || math.Abs(b.H-100) > 1e-9 {
		t.Fatalf("unexpected bounds: %+v", b)
	}
}

func TestBoxNode_HitScaled(t *testing.T) {
	n := NewBox(R(0, 0, 100, 100), 0, 2)
	if !n.Hit(Pt{-40, -40}) {
		t.Fatalf("scaled box should cover outside its local rect")
	}
	if NewBox(R(0, 0, 100, 100), 0, 0.5).Hit(Pt{10, 10}) {
		t.Fatalf("shrunk box should not cover its local corner")
	}
}

func TestTopMost(t *testing.T) {
	nodes := []Node{NewBox(R(0, 0, 100, 100), 0, 1), NewBox(R(50, 50, 100, 100), 0, 1)}
	if i := TopMost(nodes, Pt{75, 75}); i != 1 {
		t.Fatalf("overlap should pick last node, got %d", i)
	}
	if i := TopMost(nodes, Pt{10, 10}); i != 0 {
		t.Fatalf("got %d", i)
	}
	if i := TopMost(nodes, Pt{500, 500}); i != -1 {
		t.Fatalf("miss should be -1, got %d", i)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(math.NaN(), 0.4, 1) != 0.4 || Clamp(7, 0.5, 3) != 3 || Clamp(0.1, 0.5, 3) != 0.5 || Clamp(2, 0.5, 3) != 2 {
		t.Fatalf("clamp mismatch")
	}
}
