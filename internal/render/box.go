/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render turns a scene snapshot into a Composition: positioned and
// measured element boxes plus the decorative layers around them. Exporters
// and the desktop UI draw a Composition, the drag controller hit-tests it.
package render

import (
	"math"
	"sort"

	"lumina/internal/domain"
	"lumina/internal/textlayout"
	"lumina/internal/vector"
)

// Minimum element box and the minimum width of a box in edit mode.
const (
	MinBoxSize      = 50.0
	MinEditingWidth = 200.0
)

// Box is one element positioned on the canvas. Rect is the untransformed
// box; rotation and scale are applied about its centre.
type Box struct {
	Element  domain.Element
	Rect     vector.Rect
	Text     textlayout.TextBox
	Selected bool
	Editing  bool
}

// Transform maps the box's local frame to canvas space.
func (b Box) Transform() vector.Affine2D {
	return vector.CenteredTransform(b.Rect.Center(), b.Element.Rotation, b.Element.Scale)
}

// Hit reports whether a canvas point lies on the transformed box.
func (b Box) Hit(p vector.Pt) bool { return b.node().Hit(p) }

// Bounds is the axis-aligned extent of the transformed box.
func (b Box) Bounds() vector.Rect { return b.node().Bounds() }

func (b Box) node() *vector.BoxNode {
	return vector.NewBox(b.Rect, b.Element.Rotation, b.Element.Scale)
}

// LineOrigin returns the left end of line i's baseline in the local frame,
// horizontally centred in the box.
func (b Box) LineOrigin(i int) vector.Pt {
	l := b.Text.Lines[i]
	return vector.Pt{
		X: b.Rect.X + (b.Rect.W-l.Width)/2,
		Y: b.Rect.Y + float64(i)*b.Text.LineHeight + b.Text.Ascent,
	}
}

// Layout measures and positions every element, ordered bottom to top by
// StackOrder. Elements sharing a StackOrder keep insertion order, so the
// later one paints on top.
func Layout(elements []domain.Element, selectedID, editingID string, m textlayout.Measurer) []Box {
	boxes := make([]Box, 0, len(elements))
	for _, e := range elements {
		tb := m.Measure(e.Content, e.FontFamily, e.FontSize)
		editing := e.ID == editingID && e.Kind == domain.KindText
		minW := MinBoxSize
		if editing {
			minW = MinEditingWidth
		}
		boxes = append(boxes, Box{
			Element:  e,
			Rect:     vector.R(e.X, e.Y, math.Max(tb.Width, minW), math.Max(tb.Height, MinBoxSize)),
			Text:     tb,
			Selected: e.ID == selectedID,
			Editing:  editing,
		})
	}
	sort.SliceStable(boxes, func(i, j int) bool {
		return boxes[i].Element.StackOrder < boxes[j].Element.StackOrder
	})
	return boxes
}

// Nodes exposes boxes in paint order for vector.TopMost.
func Nodes(boxes []Box) []vector.Node {
	nodes := make([]vector.Node, len(boxes))
	for i, b := range boxes {
		nodes[i] = b
	}
	return nodes
}
