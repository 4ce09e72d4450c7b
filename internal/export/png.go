/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"lumina/internal/domain"
	"lumina/internal/render"
)

var (
	primary     = color.NRGBA{R: 0xb9, G: 0x1d, B: 0x1d, A: 0xff}
	deleteRed   = color.NRGBA{R: 0xef, G: 0x44, B: 0x44, A: 0xff}
	buttonWhite = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	buttonInk   = color.NRGBA{R: 0x4b, G: 0x55, B: 0x63, A: 0xff}
)

// faceCache parses each font once per render and sizes faces lazily.
type faceCache struct {
	opt   Options
	fonts map[domain.FontFamily]*truetype.Font
	faces map[string]font.Face
}

func newFaceCache(opt Options) *faceCache {
	return &faceCache{opt: opt, fonts: map[domain.FontFamily]*truetype.Font{}, faces: map[string]font.Face{}}
}

func (fc *faceCache) face(family domain.FontFamily, size float64) (font.Face, error) {
	key := fmt.Sprintf("%s@%g", family, size)
	if f, ok := fc.faces[key]; ok {
		return f, nil
	}
	ttf, ok := fc.fonts[family]
	if !ok {
		var err error
		ttf, err = truetype.Parse(fc.opt.fonts().Data(family))
		if err != nil {
			return nil, fmt.Errorf("failed to parse font %s: %w", family, err)
		}
		fc.fonts[family] = ttf
	}
	f := truetype.NewFace(ttf, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	fc.faces[key] = f
	return f, nil
}

// RenderImage rasterizes a composition. Affordances are drawn when present,
// so the same path feeds the editor preview.
func RenderImage(c render.Composition, opt Options) (image.Image, error) {
	s := opt.scale()
	w := int(math.Round(c.Width * s))
	h := int(math.Round(c.Height * s))
	dc := gg.NewContext(w, h)
	fc := newFaceCache(opt)

	// gradients are evaluated in device pixels, so set them up before scaling
	fill := c.Background
	if fill.IsGradient() {
		x1, y1, x2, y2 := fill.Line(c.Width, c.Height)
		g := gg.NewLinearGradient(x1*s, y1*s, x2*s, y2*s)
		for _, st := range fill.Stops {
			g.AddColorStop(st.Offset, st.Color)
		}
		dc.SetFillStyle(g)
	} else {
		dc.SetColor(fill.Solid)
	}
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()

	dc.Scale(s, s)
	// stroke widths are not affected by the context matrix
	lineWidth := func(v float64) { dc.SetLineWidth(v * s) }

	for _, f := range c.Frames {
		dc.SetColor(f.Color)
		lineWidth(f.Width)
		dc.DrawRectangle(f.Rect.X+f.Width/2, f.Rect.Y+f.Width/2, f.Rect.W-f.Width, f.Rect.H-f.Width)
		dc.Stroke()
	}
	for _, l := range c.Folds {
		dc.SetColor(l.Color)
		lineWidth(l.Width)
		dc.DrawLine(l.From.X, l.From.Y, l.To.X, l.To.Y)
		dc.Stroke()
	}
	for _, b := range c.Boxes {
		if err := drawBox(dc, fc, b); err != nil {
			return nil, err
		}
	}
	if c.Affordance != nil {
		if b, ok := c.Box(c.Affordance.ElementID); ok {
			if err := drawAffordance(dc, fc, b, c.Affordance, s); err != nil {
				return nil, err
			}
		}
	}
	return dc.Image(), nil
}

func pushElementFrame(dc *gg.Context, b render.Box) {
	ctr := b.Rect.Center()
	dc.Push()
	dc.RotateAbout(gg.Radians(b.Element.Rotation), ctr.X, ctr.Y)
	sc := b.Element.Scale
	if sc == 0 {
		sc = 1
	}
	dc.ScaleAbout(sc, sc, ctr.X, ctr.Y)
}

func drawBox(dc *gg.Context, fc *faceCache, b render.Box) error {
	face, err := fc.face(b.Element.FontFamily, b.Element.FontSize)
	if err != nil {
		return err
	}
	pushElementFrame(dc, b)
	defer dc.Pop()
	dc.SetFontFace(face)
	dc.SetColor(render.ElementColor(b.Element))
	for i, line := range b.Text.Lines {
		o := b.LineOrigin(i)
		dc.DrawString(line.Text, o.X, o.Y)
	}
	return nil
}

func drawAffordance(dc *gg.Context, fc *faceCache, b render.Box, a *render.Affordance, s float64) error {
	label, err := fc.face(domain.FontSans, 12)
	if err != nil {
		return err
	}
	small, err := fc.face(domain.FontSans, render.FontLabelSize)
	if err != nil {
		return err
	}
	pushElementFrame(dc, b)
	defer dc.Pop()

	o := a.Outline
	dc.SetColor(primary)
	dc.SetLineWidth(2 * s)
	dc.SetDash(6*s, 4*s)
	dc.DrawRoundedRectangle(o.X, o.Y, o.W, o.H, 8)
	dc.Stroke()
	dc.SetDash()

	for _, ctl := range a.Controls {
		r := ctl.Rect
		ctr := r.Center()
		switch ctl.Kind {
		case render.ControlScaleDown, render.ControlScaleUp, render.ControlDelete:
			bg, ink := buttonWhite, buttonInk
			if ctl.Kind == render.ControlDelete {
				bg, ink = deleteRed, buttonWhite
			}
			dc.SetColor(bg)
			dc.DrawCircle(ctr.X, ctr.Y, r.W/2)
			dc.Fill()
			dc.SetFontFace(label)
			dc.SetColor(ink)
			dc.DrawStringAnchored(ctl.Label, ctr.X, ctr.Y, 0.5, 0.35)
		case render.ControlColor:
			dc.SetColor(domain.MustColor(ctl.Color, buttonWhite))
			dc.DrawCircle(ctr.X, ctr.Y, r.W/2)
			dc.Fill()
			if ctl.Active {
				dc.SetColor(primary)
				dc.SetLineWidth(2 * s)
				dc.DrawCircle(ctr.X, ctr.Y, r.W/2+2)
				dc.Stroke()
			}
		case render.ControlFont:
			bg, ink := buttonWhite, buttonInk
			if ctl.Active {
				bg, ink = primary, buttonWhite
			}
			dc.SetColor(bg)
			dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, 4)
			dc.Fill()
			dc.SetFontFace(small)
			dc.SetColor(ink)
			dc.DrawStringAnchored(ctl.Label, ctr.X, ctr.Y, 0.5, 0.35)
		}
	}
	return nil
}

// WritePNG encodes the composition as PNG.
func WritePNG(w io.Writer, c render.Composition, opt Options) error {
	img, err := RenderImage(c, opt)
	if err != nil {
		return err
	}
	dc := gg.NewContextForImage(img)
	return dc.EncodePNG(w)
}

// ExportPNG writes the composition to a PNG file.
func ExportPNG(path string, c render.Composition, opt Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := WritePNG(f, c, opt); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}
