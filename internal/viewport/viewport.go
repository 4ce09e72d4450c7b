/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package viewport maps the fixed-size logical canvas onto the available
// screen area.
package viewport

import (
	"math"

	"lumina/internal/domain"
	"lumina/internal/vector"
)

// Scale bounds: never upscale past 1:1, never shrink below 0.4.
const (
	MinScale = 0.4
	MaxScale = 1.0
	// Padding is subtracted from the container on each axis before fitting.
	Padding = 64.0
)

// Transform is the derived canvas size and display scale.
type Transform struct {
	CanvasWidth  float64
	CanvasHeight float64
	ScaleFactor  float64
}

// Compute fits layout into availableW×availableH. Zero, negative or NaN
// sizes produce the minimum scale.
func Compute(layout domain.Layout, availableW, availableH float64) Transform {
	cw, ch := layout.Dimensions()
	t := Transform{CanvasWidth: cw, CanvasHeight: ch, ScaleFactor: MinScale}
	if !(availableW > 0) || !(availableH > 0) {
		return t
	}
	t.ScaleFactor = vector.Clamp(math.Min(availableW/cw, availableH/ch), MinScale, MaxScale)
	return t
}

// ScreenSize is the on-screen size of the scaled canvas.
func (t Transform) ScreenSize() vector.Size {
	return vector.Size{W: t.CanvasWidth * t.ScaleFactor, H: t.CanvasHeight * t.ScaleFactor}
}

// Viewport caches the last Transform for a container.
type Viewport struct {
	layout     domain.Layout
	padding    float64
	containerW float64
	containerH float64
	current    Transform
}

// New returns a viewport for layout with the default padding and no container yet.
func New(layout domain.Layout) *Viewport {
	v := &Viewport{layout: layout, padding: Padding}
	v.recompute()
	return v
}

// SetPadding overrides the container padding.
func (v *Viewport) SetPadding(p float64) {
	if p < 0 {
		p = 0
	}
	v.padding = p
	v.recompute()
}

// Resize records the container size and recomputes. Safe to call on every
// resize event.
func (v *Viewport) Resize(containerW, containerH float64) Transform {
	v.containerW, v.containerH = containerW, containerH
	v.recompute()
	return v.current
}

// SetLayout switches the canvas format and recomputes.
func (v *Viewport) SetLayout(l domain.Layout) Transform {
	v.layout = l
	v.recompute()
	return v.current
}

func (v *Viewport) Current() Transform    { return v.current }
func (v *Viewport) Layout() domain.Layout { return v.layout }

func (v *Viewport) recompute() {
	v.current = Compute(v.layout, v.containerW-v.padding, v.containerH-v.padding)
}

// Placement is the screen rectangle of the scaled canvas centred in the
// container. Its origin is the canvas origin on screen.
func (v *Viewport) Placement() vector.Rect {
	s := v.current.ScreenSize()
	return vector.R((v.containerW-s.W)/2, (v.containerH-s.H)/2, s.W, s.H)
}

// ToCanvas converts a screen point to canvas space.
func (v *Viewport) ToCanvas(screen vector.Pt) vector.Pt {
	return ToCanvas(screen, v.Placement().Min(), v.current.ScaleFactor)
}

// ToScreen converts a canvas point to screen space.
func (v *Viewport) ToScreen(canvas vector.Pt) vector.Pt {
	return ToScreen(canvas, v.Placement().Min(), v.current.ScaleFactor)
}

// ToCanvas is (screen - origin) / scale.
func ToCanvas(screen, origin vector.Pt, scale float64) vector.Pt {
	return screen.Sub(origin).Div(scale)
}

// ToScreen is canvas*scale + origin.
func ToScreen(canvas, origin vector.Pt, scale float64) vector.Pt {
	return canvas.Mul(scale).Add(origin)
}
