/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package drag implements pointer-driven direct manipulation of the card:
// hit-testing, selection, the drag gesture and the on-canvas controls of the
// selected element.
//
// The drag gesture captures the pointer-to-anchor offset once at pointer-down
// (in canvas units) and on every move sets position = canvasPointer - offset,
// so the grabbed point stays under the pointer at any display scale.
package drag

import (
	"context"
	"log/slog"

	"lumina/internal/domain"
	applog "lumina/internal/log"
	"lumina/internal/render"
	"lumina/internal/scene"
	"lumina/internal/textlayout"
	"lumina/internal/vector"
	"lumina/internal/viewport"
)

// State of the gesture machine.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Target says what a pointer-down landed on.
type Target int

const (
	TargetOutside Target = iota
	TargetCanvas
	TargetElement
	TargetControl
)

func (t Target) String() string {
	switch t {
	case TargetCanvas:
		return "canvas"
	case TargetElement:
		return "element"
	case TargetControl:
		return "control"
	}
	return "outside"
}

// Controller owns the gesture state and mutates the scene.
type Controller struct {
	scene    *scene.Scene
	view     *viewport.Viewport
	measurer textlayout.Measurer
	log      *slog.Logger

	state  State
	dragID string
	offset vector.Pt
}

// New wires a controller to a scene and its viewport.
func New(s *scene.Scene, v *viewport.Viewport, m textlayout.Measurer) *Controller {
	return &Controller{scene: s, view: v, measurer: m, log: applog.WithComponent("drag")}
}

func (c *Controller) State() State       { return c.state }
func (c *Controller) DraggingID() string { return c.dragID }

// Offset is the captured pointer-to-anchor offset of the current drag.
func (c *Controller) Offset() vector.Pt { return c.offset }

// ToCanvas converts a screen point through the current viewport.
func (c *Controller) ToCanvas(screen vector.Pt) vector.Pt { return c.view.ToCanvas(screen) }

func (c *Controller) compose() render.Composition {
	return render.Compose(c.scene.Snapshot(), c.measurer, render.Options{})
}

// PointerDown resolves what lies under a screen point and reacts: a control
// of the selected element runs, an element starts a drag, empty canvas and
// anything outside the canvas clear selection and edit mode.
func (c *Controller) PointerDown(screen vector.Pt) Target {
	p := c.ToCanvas(screen)
	comp := c.compose()
	if ctl, ok := comp.Affordance.HitControl(p); ok {
		c.runControl(comp.Affordance.ElementID, ctl)
		return TargetControl
	}
	if id, ok := comp.HitElement(p); ok {
		c.PointerDownOnElement(id, screen)
		return TargetElement
	}
	if comp.Contains(p) {
		c.PointerDownOnCanvas()
		return TargetCanvas
	}
	c.PointerDownOutside()
	return TargetOutside
}

// PointerDownOnElement selects id and starts dragging it.
func (c *Controller) PointerDownOnElement(id string, screen vector.Pt) bool {
	e, ok := c.scene.Element(id)
	if !ok {
		return false
	}
	p := c.ToCanvas(screen)
	c.offset = p.Sub(vector.Pt{X: e.X, Y: e.Y})
	c.scene.Select(id)
	c.state = Dragging
	c.dragID = id
	applog.WithOperation(c.log, "drag").DebugContext(applog.WithElement(context.Background(), id), "drag start",
		slog.Float64("offset_x", c.offset.X), slog.Float64("offset_y", c.offset.Y))
	return true
}

// PointerMove repositions the dragged element. A vanished element ends the
// gesture without error.
func (c *Controller) PointerMove(screen vector.Pt) bool {
	if c.state != Dragging {
		return false
	}
	p := c.ToCanvas(screen).Sub(c.offset)
	if !c.scene.UpdateElement(c.dragID, domain.Patch{X: domain.Ptr(p.X), Y: domain.Ptr(p.Y)}) {
		c.reset()
		return false
	}
	return true
}

// PointerUp ends a drag. The last move already placed the element.
func (c *Controller) PointerUp() {
	if c.state == Dragging {
		applog.WithOperation(c.log, "drag").Debug("drag end", applog.Element(c.dragID))
	}
	c.reset()
}

// PointerLeave behaves like PointerUp.
func (c *Controller) PointerLeave() { c.PointerUp() }

// PointerDownOnCanvas handles a press on empty canvas.
func (c *Controller) PointerDownOnCanvas() {
	c.reset()
	c.scene.ClearSelection()
}

// PointerDownOutside handles a press anywhere off the canvas. Drag state is
// left alone.
func (c *Controller) PointerDownOutside() { c.scene.ClearSelection() }

func (c *Controller) reset() {
	c.state = Idle
	c.dragID = ""
	c.offset = vector.Pt{}
}

// DoubleClick enters edit mode for a TEXT element under the pointer.
func (c *Controller) DoubleClick(screen vector.Pt) bool {
	id, ok := c.compose().HitElement(c.ToCanvas(screen))
	if !ok {
		return false
	}
	return c.DoubleClickElement(id)
}

// DoubleClickElement enters edit mode when id is a TEXT element.
func (c *Controller) DoubleClickElement(id string) bool {
	if !c.scene.StartEditing(id) {
		return false
	}
	c.log.Debug("edit start", applog.Element(id))
	return true
}

// EditText replaces the content of the element being edited.
func (c *Controller) EditText(content string) bool {
	id := c.scene.EditingID()
	if id == "" {
		return false
	}
	return c.scene.UpdateElement(id, domain.Patch{Content: domain.Ptr(content)})
}

// CommitEdit leaves edit mode keeping the current content.
func (c *Controller) CommitEdit() { c.scene.StopEditing() }

// AdjustScale changes an element's scale by delta, clamped; position is kept.
func (c *Controller) AdjustScale(id string, delta float64) bool {
	e, ok := c.scene.Element(id)
	if !ok {
		return false
	}
	// round away float drift from repeated 0.1 steps
	next := vector.FloatRound(e.Scale+delta, 6)
	return c.scene.UpdateElement(id, domain.Patch{Scale: domain.Ptr(next)})
}

// ScaleSelected steps the selected element up (dir > 0) or down.
func (c *Controller) ScaleSelected(dir int) bool {
	step := domain.ScaleStep
	if dir < 0 {
		step = -step
	}
	return c.AdjustScale(c.scene.SelectedID(), step)
}

// DeleteSelected removes the selected element.
func (c *Controller) DeleteSelected() bool {
	id := c.scene.SelectedID()
	if id == "" {
		return false
	}
	if c.dragID == id {
		c.reset()
	}
	if !c.scene.DeleteElement(id) {
		return false
	}
	c.log.Info("element deleted", applog.Element(id))
	return true
}

// SetSelectedColor recolours the selected element.
func (c *Controller) SetSelectedColor(col string) bool {
	return c.scene.UpdateElement(c.scene.SelectedID(), domain.Patch{Color: domain.Ptr(col)})
}

// SetSelectedFont changes the typeface of the selected element.
func (c *Controller) SetSelectedFont(f domain.FontFamily) bool {
	return c.scene.UpdateElement(c.scene.SelectedID(), domain.Patch{FontFamily: domain.Ptr(f)})
}

func (c *Controller) runControl(id string, ctl render.Control) {
	c.log.Debug("control", applog.Element(id), slog.String("kind", ctl.Kind.String()))
	switch ctl.Kind {
	case render.ControlScaleDown:
		c.AdjustScale(id, -domain.ScaleStep)
	case render.ControlScaleUp:
		c.AdjustScale(id, domain.ScaleStep)
	case render.ControlDelete:
		if c.scene.DeleteElement(id) {
			c.log.Info("element deleted", applog.Element(id))
		}
	case render.ControlColor:
		c.scene.UpdateElement(id, domain.Patch{Color: domain.Ptr(ctl.Color)})
	case render.ControlFont:
		c.scene.UpdateElement(id, domain.Patch{FontFamily: domain.Ptr(ctl.Font)})
	}
}
