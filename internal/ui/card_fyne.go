//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"lumina/internal/editor"
	"lumina/internal/export"
	applog "lumina/internal/log"
	"lumina/internal/vector"
)

var workspace = color.NRGBA{R: 0xf3, G: 0xf4, B: 0xf6, A: 0xff}

// CardCanvas shows the card centred and scaled in its area and feeds pointer
// input to the session's controller. The card image is rendered with the same
// raster path as PNG export.
type CardCanvas struct {
	widget.BaseWidget
	sess *editor.Session
	log  *slog.Logger

	// OnEdit is called when a double click puts a text block into edit mode.
	OnEdit func(id string)
	// OnChanged is called after any pointer gesture that changed the card.
	OnChanged func()
}

var (
	_ desktop.Mouseable   = (*CardCanvas)(nil)
	_ desktop.Hoverable   = (*CardCanvas)(nil)
	_ fyne.DoubleTappable = (*CardCanvas)(nil)
)

func NewCardCanvas(s *editor.Session) *CardCanvas {
	c := &CardCanvas{sess: s, log: applog.WithComponent("ui.canvas")}
	c.ExtendBaseWidget(c)
	return c
}

func toPt(p fyne.Position) vector.Pt { return vector.Pt{X: float64(p.X), Y: float64(p.Y)} }

func (c *CardCanvas) changed() {
	c.Refresh()
	if c.OnChanged != nil {
		c.OnChanged()
	}
}

func (c *CardCanvas) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	target := c.sess.Controller().PointerDown(toPt(e.Position))
	c.log.Debug("pointer down", slog.String("target", target.String()))
	c.changed()
}

func (c *CardCanvas) MouseUp(_ *desktop.MouseEvent) { c.sess.Controller().PointerUp() }

func (c *CardCanvas) MouseIn(_ *desktop.MouseEvent) {}

func (c *CardCanvas) MouseMoved(e *desktop.MouseEvent) {
	if c.sess.Controller().PointerMove(toPt(e.Position)) {
		c.Refresh()
	}
}

// MouseOut ends a drag the same way releasing the button does.
func (c *CardCanvas) MouseOut() {
	c.sess.Controller().PointerLeave()
	c.changed()
}

func (c *CardCanvas) DoubleTapped(e *fyne.PointEvent) {
	if !c.sess.Controller().DoubleClick(toPt(e.Position)) {
		return
	}
	c.changed()
	if c.OnEdit != nil {
		c.OnEdit(c.sess.Scene().EditingID())
	}
}

// draw paints the workspace and the scaled card at the viewport placement.
// w and h are device pixels; the widget size is in logical units.
func (c *CardCanvas) draw(w, h int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(workspace), image.Point{}, draw.Src)
	size := c.Size()
	if w <= 0 || h <= 0 || size.Width <= 0 {
		return dst
	}
	ratio := float64(w) / float64(size.Width)
	v := c.sess.Viewport()
	img, err := export.RenderImage(c.sess.Composition(false), export.Options{PixelScale: v.Current().ScaleFactor * ratio})
	if err != nil {
		c.log.Error("card render failed", applog.Err(err))
		return dst
	}
	place := v.Placement()
	at := image.Pt(int(math.Round(place.X*ratio)), int(math.Round(place.Y*ratio)))
	draw.Draw(dst, img.Bounds().Add(at), img, image.Point{}, draw.Over)
	return dst
}

func (c *CardCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(workspace)
	r := canvas.NewRaster(c.draw)
	return &cardRenderer{c: c, bg: bg, raster: r, objects: []fyne.CanvasObject{bg, r}}
}

type cardRenderer struct {
	c       *CardCanvas
	bg      *canvas.Rectangle
	raster  *canvas.Raster
	objects []fyne.CanvasObject
}

func (r *cardRenderer) Destroy()                     {}
func (r *cardRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *cardRenderer) MinSize() fyne.Size           { return fyne.NewSize(320, 320) }
func (r *cardRenderer) Refresh()                     { canvas.Refresh(r.raster) }

// Layout fits the viewport to the new area before the raster repaints.
func (r *cardRenderer) Layout(size fyne.Size) {
	r.c.sess.Resize(float64(size.Width), float64(size.Height))
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	r.raster.Resize(size)
	r.raster.Move(fyne.NewPos(0, 0))
}
