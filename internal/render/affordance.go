/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"lumina/internal/domain"
	"lumina/internal/textlayout"
	"lumina/internal/vector"
)

// ControlKind identifies an on-canvas control of the selected element.
type ControlKind int

const (
	ControlScaleDown ControlKind = iota
	ControlDelete
	ControlScaleUp
	ControlColor
	ControlFont
)

func (k ControlKind) String() string {
	switch k {
	case ControlScaleDown:
		return "scale-down"
	case ControlDelete:
		return "delete"
	case ControlScaleUp:
		return "scale-up"
	case ControlColor:
		return "color"
	case ControlFont:
		return "font"
	}
	return "unknown"
}

// Control is one button. Rect lives in the element's local frame.
type Control struct {
	Kind   ControlKind
	Rect   vector.Rect
	Label  string
	Color  string
	Font   domain.FontFamily
	Active bool
}

// Affordance is the selection decoration: a dashed outline plus controls.
// It moves, rotates and scales with the element.
type Affordance struct {
	ElementID string
	Outline   vector.Rect
	Transform vector.Affine2D
	Controls  []Control
}

// Geometry of the affordance in canvas units.
const (
	OutlineOutset  = 16.0
	ButtonSize     = 24.0
	ButtonGap      = 8.0
	ButtonRowLift  = 32.0
	SwatchSize     = 16.0
	SwatchGap      = 4.0
	PaletteDrop    = 16.0
	PalettePadding = 4.0
	FontLabelSize  = 10.0
)

func newAffordance(b Box, m textlayout.Measurer) Affordance {
	outline := b.Rect.Inset(-OutlineOutset, -OutlineOutset)
	a := Affordance{ElementID: b.Element.ID, Outline: outline, Transform: b.Transform()}

	rowW := 3*ButtonSize + 2*ButtonGap
	x := outline.X + (outline.W-rowW)/2
	y := outline.Y - ButtonRowLift
	for i, c := range []Control{
		{Kind: ControlScaleDown, Label: "-"},
		{Kind: ControlDelete, Label: "×"},
		{Kind: ControlScaleUp, Label: "+"},
	} {
		c.Rect = vector.R(x+float64(i)*(ButtonSize+ButtonGap), y, ButtonSize, ButtonSize)
		a.Controls = append(a.Controls, c)
	}

	if b.Element.Kind != domain.KindText {
		return a
	}
	// palette: swatches, a separator, then one button per font
	var widths []float64
	total := PalettePadding * 2
	for range domain.Colors {
		widths = append(widths, SwatchSize)
	}
	fontW := make([]float64, len(domain.Fonts))
	for i, f := range domain.Fonts {
		fontW[i] = m.Measure(f.Label(), domain.FontSans, FontLabelSize).Width + 16
		widths = append(widths, fontW[i])
	}
	const sep = 1 + 2*SwatchGap
	for _, w := range widths {
		total += w
	}
	total += float64(len(widths)-1)*SwatchGap + sep
	px := outline.X + (outline.W-total)/2 + PalettePadding
	py := outline.Y + outline.H + PaletteDrop + PalettePadding
	for _, col := range domain.Colors {
		a.Controls = append(a.Controls, Control{
			Kind:   ControlColor,
			Rect:   vector.R(px, py, SwatchSize, SwatchSize),
			Color:  col,
			Active: col == b.Element.Color,
		})
		px += SwatchSize + SwatchGap
	}
	px += sep
	for i, f := range domain.Fonts {
		a.Controls = append(a.Controls, Control{
			Kind:   ControlFont,
			Rect:   vector.R(px, py, fontW[i], SwatchSize),
			Label:  f.Label(),
			Font:   f,
			Active: f == b.Element.FontFamily,
		})
		px += fontW[i] + SwatchGap
	}
	return a
}

// HitControl maps a canvas point into the element frame and returns the
// control under it.
func (a *Affordance) HitControl(p vector.Pt) (Control, bool) {
	if a == nil {
		return Control{}, false
	}
	q := a.Transform.Invert().Apply(p)
	for _, c := range a.Controls {
		if c.Rect.Contains(q) {
			return c, true
		}
	}
	return Control{}, false
}
