/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package viewport

import (
	"math"
	"testing"

	"lumina/internal/domain"
	"lumina/internal/vector"
)

func TestCompute_Examples(t *testing.T) {
	cases := []struct {
		name   string
		layout domain.Layout
		w, h   float64
		cw, ch float64
		scale  float64
	}{
		{"landscape fits", domain.LayoutLandscape, 900, 700, 800, 600, 1.0},
		{"folded-h halves", domain.LayoutFoldedH, 500, 500, 1000, 700, 0.5},
		{"portrait tiny", domain.LayoutPortrait, 10, 10, 600, 800, 0.4},
		{"zero area", domain.LayoutFoldedV, 0, 0, 600, 1000, 0.4},
		{"negative", domain.LayoutPortrait, -5, 400, 600, 800, 0.4},
		{"nan", domain.LayoutPortrait, math.NaN(), 400, 600, 800, 0.4},
		{"height bound", domain.LayoutPortrait, 2000, 560, 600, 800, 0.7},
	}
	for _, c := range cases {
		tr := Compute(c.layout, c.w, c.h)
		if tr.CanvasWidth != c.cw || tr.CanvasHeight != c.ch || math.Abs(tr.ScaleFactor-c.scale) > 1e-12 {
			t.Fatalf("%s: got %+v", c.name, tr)
		}
	}
}

func TestCompute_AlwaysInRange(t *testing.T) {
	for _, l := range domain.Layouts {
		for w := -100.0; w < 3000; w += 137 {
			for h := -100.0; h < 3000; h += 211 {
				s := Compute(l, w, h).ScaleFactor
				if s < MinScale || s > MaxScale {
					t.Fatalf("%s %vx%v: scale %v", l, w, h, s)
				}
			}
		}
	}
}

func TestViewport_ResizeSubtractsPadding(t *testing.T) {
	v := New(domain.LayoutLandscape)
	tr := v.Resize(864, 664)
	if tr.ScaleFactor != 1 {
		t.Fatalf("expected 1.0, got %v", tr.ScaleFactor)
	}
	tr = v.Resize(464, 364)
	if tr.ScaleFactor != 0.5 {
		t.Fatalf("expected 0.5, got %v", tr.ScaleFactor)
	}
	if v.Current() != tr {
		t.Fatalf("current not cached")
	}
	tr = v.SetLayout(domain.LayoutPortrait)
	if tr.CanvasWidth != 600 || tr.ScaleFactor != 0.4 {
		t.Fatalf("unexpected after layout change: %+v", tr)
	}
}

func TestViewport_PlacementCentred(t *testing.T) {
	v := New(domain.LayoutLandscape)
	v.Resize(1064, 864)
	p := v.Placement()
	if p != vector.R(132, 132, 800, 600) {
		t.Fatalf("placement %+v", p)
	}
}

func TestCoordinateRoundTrip(t *testing.T) {
	origin := vector.Pt{X: 37.5, Y: -12}
	pts := []vector.Pt{{X: 0, Y: 0}, {X: 599.9, Y: 799.9}, {X: 123.456, Y: 78.9}}
	for s := MinScale; s <= MaxScale+1e-9; s += 0.05 {
		for _, p := range pts {
			q := ToCanvas(ToScreen(p, origin, s), origin, s)
			if !q.Near(p, 1e-9) {
				t.Fatalf("scale %v: %v -> %v", s, p, q)
			}
		}
	}
	v := New(domain.LayoutFoldedH)
	v.Resize(700, 600)
	p := vector.Pt{X: 250, Y: 90}
	if !v.ToCanvas(v.ToScreen(p)).Near(p, 1e-9) {
		t.Fatalf("viewport round trip failed")
	}
}
