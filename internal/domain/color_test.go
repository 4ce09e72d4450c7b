/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"image/color"
	"math"
	"testing"
)

func TestParseColor(t *testing.T) {
	cases := map[string]color.NRGBA{
		"#000":      {0, 0, 0, 255},
		"#1f2937":   {0x1f, 0x29, 0x37, 255},
		"#7f1d1d4d": {0x7f, 0x1d, 0x1d, 0x4d},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Fatalf("%s: got %v err %v", in, got, err)
		}
	}
	for _, bad := range []string{"reddish", "#12", "#zzzzzz", ""} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
	if Hex(color.NRGBA{0xd4, 0xaf, 0x37, 0xff}) != "#d4af37" {
		t.Fatalf("hex mismatch")
	}
}

func TestParseColor_CSSForms(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	for _, in := range []string{"red", "RED", "rgb(255, 0, 0)", "hsl(0, 100%, 50%)", "#f00"} {
		got, err := ParseColor(in)
		if err != nil || got != red {
			t.Fatalf("%s: got %v err %v", in, got, err)
		}
	}
	f, err := ParseBackground("rgb(253, 242, 248)")
	if err != nil || f.IsGradient() || f.Solid != (color.NRGBA{0xfd, 0xf2, 0xf8, 0xff}) {
		t.Fatalf("rgb background: %+v %v", f, err)
	}
}

func TestParseBackground_FunctionalStops(t *testing.T) {
	f, err := ParseBackground("linear-gradient(to right, rgb(0, 0, 0) 10%, hsl(0, 100%, 50%), white 90%)")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(f.Stops) != 3 || f.Angle != 90 {
		t.Fatalf("unexpected gradient %+v", f)
	}
	want := []Stop{
		{Offset: 0.1, Color: color.NRGBA{A: 255}},
		{Offset: 0.5, Color: color.NRGBA{R: 255, A: 255}},
		{Offset: 0.9, Color: white},
	}
	for i, s := range f.Stops {
		if math.Abs(s.Offset-want[i].Offset) > 1e-9 || s.Color != want[i].Color {
			t.Fatalf("stop %d: got %+v want %+v", i, s, want[i])
		}
	}
	if _, err := ParseBackground("linear-gradient(90deg, #000 abc%, #fff)"); err == nil {
		t.Fatalf("expected error for a bad stop position")
	}
}

func TestParseBackgroundSolidAndFallback(t *testing.T) {
	f, err := ParseBackground("#fdf2f8")
	if err != nil || f.IsGradient() || f.Solid != (color.NRGBA{0xfd, 0xf2, 0xf8, 0xff}) {
		t.Fatalf("solid: %+v %v", f, err)
	}
	f, err = ParseBackground("url(paper.png)")
	if err == nil || f.Solid != white {
		t.Fatalf("expected white fallback with error, got %+v %v", f, err)
	}
}

func TestParseBackgroundPresets(t *testing.T) {
	for _, b := range Backgrounds {
		if _, err := ParseBackground(b); err != nil {
			t.Fatalf("%s: %v", b, err)
		}
	}
	f, _ := ParseBackground("linear-gradient(120deg, #a1c4fd 0%, #c2e9fb 100%)")
	if f.Angle != 120 || len(f.Stops) != 2 || f.Stops[1].Offset != 1 {
		t.Fatalf("unexpected gradient: %+v", f)
	}
	f, _ = ParseBackground("linear-gradient(to top, #fad0c4 0%, #ffd1ff 100%)")
	if f.AngleFor(600, 800) != 0 {
		t.Fatalf("to top should be 0deg, got %v", f.AngleFor(600, 800))
	}
}

func TestCornerGradientAngle(t *testing.T) {
	f, err := ParseBackground(DefaultBackground)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !f.Corner {
		t.Fatalf("expected corner gradient")
	}
	if a := f.AngleFor(100, 100); math.Abs(a-135) > 1e-9 {
		t.Fatalf("square box should give 135deg, got %v", a)
	}
	// the gradient line of a corner gradient runs from corner to corner
	// when the box is square
	x1, y1, x2, y2 := f.Line(100, 100)
	if math.Abs(x1) > 1e-9 || math.Abs(y1) > 1e-9 || math.Abs(x2-100) > 1e-9 || math.Abs(y2-100) > 1e-9 {
		t.Fatalf("line %v,%v -> %v,%v", x1, y1, x2, y2)
	}
}

func TestStopOffsetsInterpolate(t *testing.T) {
	f, err := ParseBackground("linear-gradient(90deg, #000, #111, #222 80%, #333)")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []float64{0, 0.4, 0.8, 1}
	for i, s := range f.Stops {
		if math.Abs(s.Offset-want[i]) > 1e-9 {
			t.Fatalf("stop %d offset %v want %v", i, s.Offset, want[i])
		}
	}
}
