/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"image/color"
	"log/slog"

	"lumina/internal/domain"
	"lumina/internal/scene"
	"lumina/internal/textlayout"
	"lumina/internal/vector"
)

var (
	gold      = color.NRGBA{R: 0xd4, G: 0xaf, B: 0x37, A: 0xff}
	gray800   = color.NRGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}
	redFrame  = color.NRGBA{R: 0x7f, G: 0x1d, B: 0x1d, A: 77}
	faintEdge = color.NRGBA{A: 26}
	foldLine  = color.NRGBA{A: 26}
	foldLight = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 128}
	black     = color.NRGBA{A: 0xff}
)

// Frame is a band of Width drawn along the inside of Rect.
type Frame struct {
	Rect  vector.Rect
	Width float64
	Color color.NRGBA
}

// Line is a straight hairline.
type Line struct {
	From, To vector.Pt
	Width    float64
	Color    color.NRGBA
}

// Options control composition.
type Options struct {
	// Print omits every editing affordance.
	Print bool
}

// Composition is the full layer stack of the card, bottom to top:
// background, border frames, fold lines, element boxes, affordance.
type Composition struct {
	Width, Height float64
	Background    domain.Fill
	Frames        []Frame
	Folds         []Line
	Boxes         []Box
	Affordance    *Affordance
	Print         bool
}

// Compose builds the composition for a snapshot.
func Compose(snap scene.Snapshot, m textlayout.Measurer, opts Options) Composition {
	w, h := snap.Settings.Layout.Dimensions()
	fill, err := domain.ParseBackground(snap.Settings.Background)
	if err != nil {
		slog.Default().Warn("background not understood, using white", slog.String("background", snap.Settings.Background), slog.Any("err", err))
	}
	c := Composition{
		Width:      w,
		Height:     h,
		Background: fill,
		Frames:     Frames(snap.Settings.Border, w, h),
		Folds:      Folds(snap.Settings.Layout, w, h),
		Print:      opts.Print,
	}
	selected, editing := snap.Selected, snap.Editing
	if opts.Print {
		selected, editing = "", ""
	}
	c.Boxes = Layout(snap.Elements, selected, editing, m)
	if !opts.Print {
		for _, b := range c.Boxes {
			if b.Selected && !b.Editing {
				a := newAffordance(b, m)
				c.Affordance = &a
			}
		}
	}
	return c
}

// Frames returns the decorative frame bands for a border token.
func Frames(b domain.Border, w, h float64) []Frame {
	full := vector.R(0, 0, w, h)
	switch b {
	case domain.BorderSimpleGold:
		return []Frame{
			{Rect: full, Width: 12, Color: gold},
			{Rect: full.Inset(12, 12), Width: 2, Color: faintEdge},
		}
	case domain.BorderDoubleGold:
		return []Frame{
			{Rect: full.Inset(8, 8), Width: 4, Color: gold},
			{Rect: full.Inset(16, 16), Width: 1, Color: gold},
		}
	case domain.BorderModernBlack:
		return []Frame{{Rect: full.Inset(24, 24), Width: 1, Color: gray800}}
	case domain.BorderFancyRed:
		return []Frame{{Rect: full, Width: 8, Color: redFrame}}
	}
	return nil
}

// Folds returns the fold hairline (plus its light edge) for folded layouts.
func Folds(l domain.Layout, w, h float64) []Line {
	switch l {
	case domain.LayoutFoldedH:
		x := w / 2
		return []Line{
			{From: vector.Pt{X: x, Y: 0}, To: vector.Pt{X: x, Y: h}, Width: 1, Color: foldLine},
			{From: vector.Pt{X: x + 1, Y: 0}, To: vector.Pt{X: x + 1, Y: h}, Width: 1, Color: foldLight},
		}
	case domain.LayoutFoldedV:
		y := h / 2
		return []Line{
			{From: vector.Pt{X: 0, Y: y}, To: vector.Pt{X: w, Y: y}, Width: 1, Color: foldLine},
			{From: vector.Pt{X: 0, Y: y + 1}, To: vector.Pt{X: w, Y: y + 1}, Width: 1, Color: foldLight},
		}
	}
	return nil
}

// ElementColor resolves an element's colour token, black when unparseable.
func ElementColor(e domain.Element) color.NRGBA { return domain.MustColor(e.Color, black) }

// HitElement returns the id of the top-most element under a canvas point.
func (c Composition) HitElement(p vector.Pt) (string, bool) {
	if i := vector.TopMost(Nodes(c.Boxes), p); i >= 0 {
		return c.Boxes[i].Element.ID, true
	}
	return "", false
}

// Contains reports whether p lies on the canvas.
func (c Composition) Contains(p vector.Pt) bool {
	return vector.R(0, 0, c.Width, c.Height).Contains(p)
}

// Box returns the box for an element id.
func (c Composition) Box(id string) (Box, bool) {
	for _, b := range c.Boxes {
		if b.Element.ID == id {
			return b, true
		}
	}
	return Box{}, false
}
