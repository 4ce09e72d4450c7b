/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"lumina/internal/render"
)

// WriteSVG writes the composition as a standalone SVG document in canvas units.
// Affordances are never part of vector output.
func WriteSVG(w io.Writer, c render.Composition) error {
	var buf bytes.Buffer
	wf := func(format string, a ...any) { _, _ = fmt.Fprintf(&buf, format, a...) }

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%s\" height=\"%s\" viewBox=\"0 0 %s %s\">\n",
		num(c.Width), num(c.Height), num(c.Width), num(c.Height))

	bg := c.Background
	if bg.IsGradient() {
		x1, y1, x2, y2 := bg.Line(c.Width, c.Height)
		wf("  <defs>\n")
		wf("    <linearGradient id=\"bg\" gradientUnits=\"userSpaceOnUse\" x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\">\n",
			num(x1), num(y1), num(x2), num(y2))
		for _, st := range bg.Stops {
			wf("      <stop offset=\"%s\" stop-color=\"%s\"%s/>\n", num(st.Offset), rgbHex(st.Color), opacity("stop-opacity", st.Color))
		}
		wf("    </linearGradient>\n")
		wf("  </defs>\n")
		wf("  <rect x=\"0\" y=\"0\" width=\"%s\" height=\"%s\" fill=\"url(#bg)\"/>\n", num(c.Width), num(c.Height))
	} else {
		wf("  <rect x=\"0\" y=\"0\" width=\"%s\" height=\"%s\" fill=\"%s\"%s/>\n",
			num(c.Width), num(c.Height), rgbHex(bg.Solid), opacity("fill-opacity", bg.Solid))
	}

	for _, f := range c.Frames {
		wf("  <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"%s\"%s/>\n",
			num(f.Rect.X+f.Width/2), num(f.Rect.Y+f.Width/2), num(f.Rect.W-f.Width), num(f.Rect.H-f.Width),
			rgbHex(f.Color), num(f.Width), opacity("stroke-opacity", f.Color))
	}
	for _, l := range c.Folds {
		wf("  <line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\" stroke=\"%s\" stroke-width=\"%s\"%s/>\n",
			num(l.From.X), num(l.From.Y), num(l.To.X), num(l.To.Y), rgbHex(l.Color), num(l.Width), opacity("stroke-opacity", l.Color))
	}

	for _, b := range c.Boxes {
		e := b.Element
		ctr := b.Rect.Center()
		sc := e.Scale
		if sc == 0 {
			sc = 1
		}
		wf("  <g data-id=\"%s\" transform=\"translate(%s %s) rotate(%s) scale(%s) translate(%s %s)\">\n",
			escAttr(e.ID), num(ctr.X), num(ctr.Y), num(e.Rotation), num(sc), num(-ctr.X), num(-ctr.Y))
		col := render.ElementColor(e)
		wf("    <text font-family=\"%s\" font-size=\"%s\" fill=\"%s\"%s text-anchor=\"middle\">\n",
			escAttr(cssFamily(e.FontFamily)), num(e.FontSize), rgbHex(col), opacity("fill-opacity", col))
		for i, line := range b.Text.Lines {
			o := b.LineOrigin(i)
			wf("      <tspan x=\"%s\" y=\"%s\" xml:space=\"preserve\">%s</tspan>\n", num(ctr.X), num(o.Y), escText(line.Text))
		}
		wf("    </text>\n")
		wf("  </g>\n")
	}
	wf("</svg>\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// ExportSVG writes the composition to an SVG file.
func ExportSVG(path string, c render.Composition) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	var buf bytes.Buffer
	if err := WriteSVG(&buf, c); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// num prints coordinates without trailing zeros.
func num(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

func rgbHex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func opacity(attr string, c color.NRGBA) string {
	if c.A == 0xff {
		return ""
	}
	return fmt.Sprintf(" %s=\"%s\"", attr, num(float64(c.A)/255))
}

var (
	attrEscaper = strings.NewReplacer("&", "&amp;", "\"", "&quot;", "<", "&lt;", "\n", " ", "\r", "")
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

func escAttr(s string) string { return attrEscaper.Replace(s) }
func escText(s string) string { return textEscaper.Replace(s) }
