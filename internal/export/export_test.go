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
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lumina/internal/domain"
	"lumina/internal/idgen"
	"lumina/internal/render"
	"lumina/internal/scene"
	"lumina/internal/textlayout"
)

func sampleScene(bg string, border domain.Border) *scene.Scene {
	s := scene.New(
		scene.WithIDs(idgen.Sequence("e")),
		scene.WithSettings(domain.Settings{Background: bg, Layout: domain.LayoutPortrait, Border: border}),
	)
	s.AddElement(domain.KindText, "Tom & Jerry <3", domain.Geometry{X: 100, Y: 100, FontSize: 32, Color: "#1f2937", FontFamily: domain.FontSerif, Rotation: 15, Scale: 1.5})
	s.AddElement(domain.KindSticker, "♥", domain.Geometry{X: 300, Y: 400, FontSize: domain.StickerFontSize, Color: domain.StickerColor, FontFamily: domain.FontSans, Scale: 1})
	s.Select("e1")
	return s
}

func compose(s *scene.Scene, print bool) render.Composition {
	return render.Compose(s.Snapshot(), textlayout.Default(), render.Options{Print: print})
}

func TestWriteSVG_GradientAndEscaping(t *testing.T) {
	c := compose(sampleScene(domain.DefaultBackground, domain.BorderSimpleGold), true)
	var buf bytes.Buffer
	if err := WriteSVG(&buf, c); err != nil {
		t.Fatalf("svg: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"viewBox=\"0 0 600 800\"",
		"<linearGradient id=\"bg\"",
		"stop-color=\"#b91d1d\"",
		"fill=\"url(#bg)\"",
		"Tom &amp; Jerry &lt;3",
		"rotate(15) scale(1.5)",
		"stroke-width=\"12\"",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("svg missing %q:\n%s", want, out)
		}
	}
}

func TestRenderImage_SolidBackgroundAndScale(t *testing.T) {
	c := compose(sampleScene("#ff0000", domain.BorderNone), true)
	img, err := RenderImage(c, Options{PixelScale: 0.5})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 300 || b.Dy() != 400 {
		t.Fatalf("unexpected size %v", b)
	}
	r, g, bl, _ := img.At(2, 2).RGBA()
	if r>>8 != 0xff || g>>8 != 0 || bl>>8 != 0 {
		t.Fatalf("corner pixel not red: %v", img.At(2, 2))
	}
}

func TestRenderImage_GradientRunsTopToBottom(t *testing.T) {
	c := compose(sampleScene("linear-gradient(to bottom, #000000, #ffffff)", domain.BorderNone), true)
	img, err := RenderImage(c, Options{PixelScale: 0.25})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	top := color.GrayModel.Convert(img.At(1, 1)).(color.Gray)
	bottom := color.GrayModel.Convert(img.At(1, img.Bounds().Dy()-2)).(color.Gray)
	if top.Y >= bottom.Y {
		t.Fatalf("expected dark top and light bottom, got %d and %d", top.Y, bottom.Y)
	}
}

func TestRenderImage_WithAffordance(t *testing.T) {
	c := compose(sampleScene("#ffffff", domain.BorderNone), false)
	if c.Affordance == nil {
		t.Fatalf("selected element should carry an affordance")
	}
	if _, err := RenderImage(c, Options{PixelScale: 0.5}); err != nil {
		t.Fatalf("render preview: %v", err)
	}
}

func TestWritePDF_Header(t *testing.T) {
	c := compose(sampleScene(domain.DefaultBackground, domain.BorderFancyRed), true)
	var buf bytes.Buffer
	if err := WritePDF(&buf, c, Options{}); err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", buf.Bytes()[:16])
	}
}

func TestBatchExport_Presets(t *testing.T) {
	c := compose(sampleScene("#fde68a", domain.BorderDoubleGold), true)
	cases := []struct {
		preset PresetName
		want   []string
	}{
		{PresetWeb, []string{"card.png", "card.svg"}},
		{PresetPrint, []string{"card.pdf", "card.png"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.preset), func(t *testing.T) {
			dir := t.TempDir()
			got, err := BatchExport(c, BatchOptions{Preset: tc.preset, OutDir: dir, PixelScale: 0.25})
			if err != nil {
				t.Fatalf("batch: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("wrote %v", got)
			}
			for i, name := range tc.want {
				if got[i] != filepath.Join(dir, name) {
					t.Fatalf("path %d = %s", i, got[i])
				}
				st, err := os.Stat(got[i])
				if err != nil || st.Size() == 0 {
					t.Fatalf("missing or empty %s: %v", got[i], err)
				}
			}
		})
	}
}

func TestBatchExport_UnknownFormat(t *testing.T) {
	c := compose(sampleScene("#ffffff", domain.BorderNone), true)
	if _, err := BatchExport(c, BatchOptions{Formats: []string{"gif"}, OutDir: t.TempDir()}); err == nil {
		t.Fatalf("expected error for gif")
	}
}

func TestExportFile_ByExtension(t *testing.T) {
	c := compose(sampleScene("#ffffff", domain.BorderNone), true)
	dir := t.TempDir()
	if err := ExportFile(filepath.Join(dir, "x.SVG"), c, Options{}); err != nil {
		t.Fatalf("svg by ext: %v", err)
	}
	if err := ExportFile(filepath.Join(dir, "x.bmp"), c, Options{}); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

type fakeSurface struct {
	s *scene.Scene
}

func (f fakeSurface) ClearSelection() { f.s.ClearSelection() }
func (f fakeSurface) PrintComposition() render.Composition {
	return compose(f.s, true)
}

func TestPrint_ClearsSelectionFirst(t *testing.T) {
	s := sampleScene("#ffffff", domain.BorderNone)
	var got render.Composition
	p := PrinterFunc(func(_ context.Context, c render.Composition) error {
		got = c
		return nil
	})
	if err := Print(context.Background(), fakeSurface{s}, p, time.Millisecond); err != nil {
		t.Fatalf("print: %v", err)
	}
	if s.SelectedID() != "" {
		t.Fatalf("selection should be cleared")
	}
	if !got.Print || got.Affordance != nil {
		t.Fatalf("printer should receive a print composition")
	}
	for _, b := range got.Boxes {
		if b.Selected || b.Editing {
			t.Fatalf("box %s still decorated", b.Element.ID)
		}
	}
	if len(got.Boxes) != 2 {
		t.Fatalf("expected 2 boxes, got %d", len(got.Boxes))
	}
}

func TestPrepare_RunPrintsSnapshot(t *testing.T) {
	s := sampleScene("#ffffff", domain.BorderNone)
	var got render.Composition
	done := false
	j, err := Prepare(fakeSurface{s}, PrinterFunc(func(_ context.Context, c render.Composition) error {
		got = c
		return nil
	}), time.Millisecond)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	j.Done = func() { done = true }
	if s.SelectedID() != "" {
		t.Fatalf("prepare should clear the selection")
	}
	s.AddElement(domain.KindSticker, "★", domain.Geometry{X: 10, Y: 10, FontSize: 40, Color: "#000", Scale: 1})
	if err := j.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(got.Boxes) != 2 || !done {
		t.Fatalf("got %d boxes done=%v", len(got.Boxes), done)
	}
	if _, err := Prepare(fakeSurface{s}, nil, 0); err == nil {
		t.Fatalf("expected error without printer")
	}
}

func TestPrint_Errors(t *testing.T) {
	s := sampleScene("#ffffff", domain.BorderNone)
	boom := errors.New("paper jam")
	err := Print(context.Background(), fakeSurface{s}, PrinterFunc(func(context.Context, render.Composition) error { return boom }), 0)
	if !errors.Is(err, boom) {
		t.Fatalf("want printer error, got %v", err)
	}
	// the card survives a failed print
	if s.Len() != 2 {
		t.Fatalf("elements lost")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err = Print(ctx, fakeSurface{s}, PrinterFunc(func(context.Context, render.Composition) error { called = true; return nil }), time.Second)
	if !errors.Is(err, context.Canceled) || called {
		t.Fatalf("cancelled print should not reach printer: %v", err)
	}
}

func TestFilePrinter_WritesPDF(t *testing.T) {
	s := sampleScene(domain.DefaultBackground, domain.BorderModernBlack)
	out := filepath.Join(t.TempDir(), "card.pdf")
	if err := Print(context.Background(), fakeSurface{s}, FilePrinter{Path: out}, 0); err != nil {
		t.Fatalf("print to file: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil || !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("pdf not written: %v", err)
	}
}
