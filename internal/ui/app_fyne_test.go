//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests validate the Fyne-based UI components. They are gated behind the
// "fyne" build tag so CI (which is headless) does not need Fyne or a display.
// To run locally:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"

	"lumina/internal/domain"
	"lumina/internal/editor"
	"lumina/internal/idgen"
	"lumina/internal/textlayout"
)

func newCard(t *testing.T) (*CardCanvas, *editor.Session) {
	t.Helper()
	test.NewTempApp(t)
	s := editor.New(editor.Options{IDs: idgen.Sequence("e"), Measurer: textlayout.Fixed{}})
	c := NewCardCanvas(s)
	c.Resize(fyne.NewSize(664, 864))
	return c, s
}

func TestCardCanvas_LayoutFitsViewport(t *testing.T) {
	c, s := newCard(t)
	r := test.WidgetRenderer(c).(*cardRenderer)
	r.Layout(fyne.NewSize(664, 864))
	tr := s.Viewport().Current()
	if tr.ScaleFactor != 1 || tr.CanvasWidth != 600 {
		t.Fatalf("unexpected transform %+v", tr)
	}
	r.Layout(fyne.NewSize(364, 464))
	if got := s.Viewport().Current().ScaleFactor; got != 0.5 {
		t.Fatalf("expected 0.5 after shrinking, got %v", got)
	}
}

func TestCardCanvas_ClickSelectsAndDrags(t *testing.T) {
	c, s := newCard(t)
	test.WidgetRenderer(c).Layout(fyne.NewSize(664, 864))
	id := s.Scene().Elements()[0].ID
	// initial greeting sits at canvas (150,200); the canvas origin is (32,32)
	down := &desktop.MouseEvent{Button: desktop.MouseButtonPrimary}
	down.Position = fyne.NewPos(32+160, 32+210)
	c.MouseDown(down)
	if s.Scene().SelectedID() != id {
		t.Fatalf("expected %s selected, got %q", id, s.Scene().SelectedID())
	}
	move := &desktop.MouseEvent{}
	move.Position = fyne.NewPos(32+200, 32+250)
	c.MouseMoved(move)
	c.MouseUp(move)
	e, _ := s.Scene().Element(id)
	if e.X != 190 || e.Y != 240 {
		t.Fatalf("dragged to (%v,%v)", e.X, e.Y)
	}
}

func TestCardCanvas_DoubleTapEntersEdit(t *testing.T) {
	c, s := newCard(t)
	test.WidgetRenderer(c).Layout(fyne.NewSize(664, 864))
	var edited string
	c.OnEdit = func(id string) { edited = id }
	c.DoubleTapped(&fyne.PointEvent{Position: fyne.NewPos(32+160, 32+210)})
	if edited == "" || s.Scene().EditingID() != edited {
		t.Fatalf("expected edit mode, got %q", edited)
	}
}

func TestCardCanvas_DrawSize(t *testing.T) {
	c, s := newCard(t)
	s.SetBorder(domain.BorderSimpleGold)
	test.WidgetRenderer(c).Layout(fyne.NewSize(664, 864))
	img := c.draw(664, 864)
	if b := img.Bounds(); b.Dx() != 664 || b.Dy() != 864 {
		t.Fatalf("unexpected raster bounds %v", b)
	}
}

func TestApplyCustomBackground_SetsHex(t *testing.T) {
	_, s := newCard(t)
	applyCustomBackground(s, color.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff})
	if got := s.Settings().Background; got != "#123456" {
		t.Fatalf("background %q", got)
	}
	if fill, err := domain.ParseBackground(s.Settings().Background); err != nil || fill.IsGradient() {
		t.Fatalf("custom colour should parse as solid: %+v %v", fill, err)
	}
}
