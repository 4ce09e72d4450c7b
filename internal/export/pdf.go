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
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"lumina/internal/domain"
	"lumina/internal/render"
	"lumina/internal/version"
)

// pdfFamily is the name each embedded face is registered under.
func pdfFamily(f domain.FontFamily) string { return "lumina-" + string(f) }

// WritePDF writes a single-page PDF whose page size equals the canvas in points.
// Text is embedded as UTF-8 TrueType so it stays selectable.
//
// Gradients are drawn between their first and last stops; every preset fill
// has exactly two.
func WritePDF(w io.Writer, c render.Composition, opt Options) error {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: c.Width, Ht: c.Height},
	})
	pdf.SetTitle("Lumina card", true)
	pdf.SetCreator("lumina "+version.Version, true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	lib := opt.fonts()
	for _, f := range domain.Fonts {
		pdf.AddUTF8FontFromBytes(pdfFamily(f), "", lib.Data(f))
	}
	pdf.AddPage()

	bg := c.Background
	if bg.IsGradient() && len(bg.Stops) >= 2 {
		first, last := bg.Stops[0], bg.Stops[len(bg.Stops)-1]
		x1, y1, x2, y2 := bg.Line(c.Width, c.Height)
		// move the endpoints onto the outer stops
		sx, sy := x1+(x2-x1)*first.Offset, y1+(y2-y1)*first.Offset
		ex, ey := x1+(x2-x1)*last.Offset, y1+(y2-y1)*last.Offset
		// gofpdf gradient vectors are unit-square fractions with y pointing up
		pdf.LinearGradient(0, 0, c.Width, c.Height,
			int(first.Color.R), int(first.Color.G), int(first.Color.B),
			int(last.Color.R), int(last.Color.G), int(last.Color.B),
			sx/c.Width, 1-sy/c.Height, ex/c.Width, 1-ey/c.Height)
	} else {
		fill := bg.First()
		withAlpha(pdf, fill, func() {
			pdf.SetFillColor(int(fill.R), int(fill.G), int(fill.B))
			pdf.Rect(0, 0, c.Width, c.Height, "F")
		})
	}

	for _, f := range c.Frames {
		withAlpha(pdf, f.Color, func() {
			pdf.SetDrawColor(int(f.Color.R), int(f.Color.G), int(f.Color.B))
			pdf.SetLineWidth(f.Width)
			pdf.Rect(f.Rect.X+f.Width/2, f.Rect.Y+f.Width/2, f.Rect.W-f.Width, f.Rect.H-f.Width, "D")
		})
	}
	for _, l := range c.Folds {
		withAlpha(pdf, l.Color, func() {
			pdf.SetDrawColor(int(l.Color.R), int(l.Color.G), int(l.Color.B))
			pdf.SetLineWidth(l.Width)
			pdf.Line(l.From.X, l.From.Y, l.To.X, l.To.Y)
		})
	}

	for _, b := range c.Boxes {
		e := b.Element
		ctr := b.Rect.Center()
		sc := e.Scale
		if sc == 0 {
			sc = 1
		}
		col := render.ElementColor(e)
		pdf.TransformBegin()
		// gofpdf rotates counter-clockwise; element rotation is clockwise on screen
		pdf.TransformRotate(-e.Rotation, ctr.X, ctr.Y)
		pdf.TransformScale(sc*100, sc*100, ctr.X, ctr.Y)
		pdf.SetFont(pdfFamily(e.FontFamily), "", e.FontSize)
		withAlpha(pdf, col, func() {
			pdf.SetTextColor(int(col.R), int(col.G), int(col.B))
			for i, line := range b.Text.Lines {
				o := b.LineOrigin(i)
				pdf.Text(o.X, o.Y, line.Text)
			}
		})
		pdf.TransformEnd()
	}

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.Output(w)
}

func withAlpha(pdf *gofpdf.Fpdf, c color.NRGBA, draw func()) {
	if c.A == 0xff {
		draw()
		return
	}
	pdf.SetAlpha(float64(c.A)/255, "Normal")
	draw()
	pdf.SetAlpha(1, "Normal")
}

// ExportPDF writes the composition to a PDF file.
func ExportPDF(path string, c render.Composition, opt Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create pdf: %w", err)
	}
	if err := WritePDF(f, c, opt); err != nil {
		_ = f.Close()
		return fmt.Errorf("write pdf: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close pdf: %w", err)
	}
	return nil
}
