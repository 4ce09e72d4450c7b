/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Node is a placed item that can be hit-tested in canvas space.
type Node interface {
	Bounds() Rect
	Transform() Affine2D
	Hit(p Pt) bool
}

// BoxNode is an axis-aligned box in its local frame that is rotated and
// scaled about its own centre, the way CSS applies transform-origin: center.
type BoxNode struct {
	Rect     Rect
	Rotation float64 // degrees, clockwise in a y-down frame
	Scale    float64
}

func NewBox(r Rect, rotationDeg, scale float64) *BoxNode {
	return &BoxNode{Rect: r, Rotation: rotationDeg, Scale: scale}
}

// Transform maps local box coordinates to canvas coordinates.
func (n *BoxNode) Transform() Affine2D {
	return CenteredTransform(n.Rect.Center(), n.Rotation, n.Scale)
}

// Bounds returns the transformed axis-aligned bounds.
func (n *BoxNode) Bounds() Rect { return n.Transform().Bounds(n.Rect) }

// Hit reports whether p (canvas space) falls inside the transformed box.
func (n *BoxNode) Hit(p Pt) bool {
	q := n.Transform().Invert().Apply(p)
	return n.Rect.Contains(q)
}

// CenteredTransform builds translate(c) * rotate * scale * translate(-c).
// A zero scale is treated as 1 so that unset values never collapse a box.
func CenteredTransform(c Pt, rotationDeg, scale float64) Affine2D {
	if scale == 0 {
		scale = 1
	}
	return Translate(c.X, c.Y).
		Mul(Rotate(Radians(rotationDeg))).
		Mul(Scale(scale, scale)).
		Mul(Translate(-c.X, -c.Y))
}

// TopMost returns the index of the last node hit by p, or -1.
// Callers pass nodes in paint order so the last hit is the visible one.
func TopMost(nodes []Node, p Pt) int {
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].Hit(p) {
			return i
		}
	}
	return -1
}
