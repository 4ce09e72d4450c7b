/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Text measurement for placed card elements. Element content is laid out
// pre-wrapped: only explicit newlines break lines, every line is centred.

import (
	"strings"

	"golang.org/x/image/font"

	"lumina/internal/domain"
)

// LineHeight is the line height factor relative to the font size.
const LineHeight = 1.25

// Line is one laid out line and its advance width.
type Line struct {
	Text  string
	Width float64
}

// TextBox is the measured content of one element.
type TextBox struct {
	Lines  []Line
	Width  float64
	Height float64
	// LineHeight is the distance between baselines.
	LineHeight float64
	// Ascent is the distance from a line's top to its baseline.
	Ascent float64
}

// Measurer measures element content.
type Measurer interface {
	Measure(content string, family domain.FontFamily, size float64) TextBox
}

// Measure lays out content with the library's faces.
func (fl *FontLibrary) Measure(content string, family domain.FontFamily, size float64) TextBox {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	face, err := fl.face(family, size)
	if err != nil {
		return Fixed{}.Measure(content, family, size)
	}
	d := &font.Drawer{Face: face}
	m := face.Metrics()
	asc := float64(m.Ascent) / 64
	desc := float64(m.Descent) / 64
	return layout(content, size, func(s string) float64 {
		return float64(d.MeasureString(s)) / 64
	}, asc, desc)
}

// Fixed is a deterministic measurer for tests: every rune advances
// Advance·size (0.6 when zero).
type Fixed struct{ Advance float64 }

func (f Fixed) Measure(content string, _ domain.FontFamily, size float64) TextBox {
	adv := f.Advance
	if adv == 0 {
		adv = 0.6
	}
	return layout(content, size, func(s string) float64 {
		return float64(len([]rune(s))) * adv * size
	}, size*0.8, size*0.2)
}

func layout(content string, size float64, width func(string) float64, ascent, descent float64) TextBox {
	lh := size * LineHeight
	box := TextBox{LineHeight: lh}
	// centre the glyph extent within the line box, as CSS does with half-leading
	box.Ascent = ascent + (lh-(ascent+descent))/2
	for _, s := range strings.Split(content, "\n") {
		w := width(s)
		box.Lines = append(box.Lines, Line{Text: s, Width: w})
		if w > box.Width {
			box.Width = w
		}
	}
	box.Height = float64(len(box.Lines)) * lh
	return box
}
