/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"lumina/internal/domain"
	"lumina/internal/export"
	"lumina/internal/idgen"
	"lumina/internal/render"
	"lumina/internal/textlayout"
	"lumina/internal/vector"
)

type stubGen struct{ text string }

func (g stubGen) Generate(context.Context, string) string { return g.text }

func newSession(opts Options) *Session {
	opts.IDs = idgen.Sequence("e")
	opts.Rand = rand.New(rand.NewPCG(1, 2))
	opts.Measurer = textlayout.Fixed{}
	return New(opts)
}

func TestNew_SeedsInitialCard(t *testing.T) {
	s := newSession(Options{})
	els := s.Scene().Elements()
	if len(els) != 1 {
		t.Fatalf("expected the initial greeting, got %d elements", len(els))
	}
	e := els[0]
	if e.Content != domain.InitialText || e.X != 150 || e.Y != 200 || e.FontSize != 42 || e.FontFamily != domain.FontSerif {
		t.Fatalf("initial element %+v", e)
	}
	if st := s.Settings(); st != domain.DefaultSettings() {
		t.Fatalf("settings %+v", st)
	}
	if s.Scene().SelectedID() != "" {
		t.Fatalf("nothing should be selected on open")
	}
	if newSession(Options{Blank: true}).Scene().Len() != 0 {
		t.Fatalf("blank session should be empty")
	}
}

func TestAddText_SelectsNewBlock(t *testing.T) {
	s := newSession(Options{})
	id := s.AddText("")
	e, ok := s.Scene().Element(id)
	if !ok {
		t.Fatalf("element %s missing", id)
	}
	if e.Content != domain.PlaceholderText || e.X != 200 || e.Y != 300 || e.FontFamily != domain.FontHand || e.StackOrder != 2 {
		t.Fatalf("unexpected text element %+v", e)
	}
	if s.Scene().SelectedID() != id {
		t.Fatalf("new text should be selected")
	}
}

func TestAddSticker_RandomPlacement(t *testing.T) {
	s := newSession(Options{Blank: true})
	for i := 0; i < 20; i++ {
		id := s.AddSticker("🎈")
		e, _ := s.Scene().Element(id)
		if e.X < 100 || e.X >= 400 || e.Y < 100 || e.Y >= 500 || e.Rotation < -15 || e.Rotation >= 15 {
			t.Fatalf("sticker out of range: %+v", e)
		}
		if e.Kind != domain.KindSticker || e.FontSize != 64 || s.Scene().SelectedID() != id {
			t.Fatalf("sticker %+v", e)
		}
	}
}

func TestSetLayout_RefitsViewport(t *testing.T) {
	s := newSession(Options{})
	s.Resize(864, 1064)
	tr := s.SetLayout(domain.LayoutLandscape)
	if s.Settings().Layout != domain.LayoutLandscape || s.Viewport().Layout() != domain.LayoutLandscape {
		t.Fatalf("layout not applied")
	}
	if tr.CanvasWidth != 800 || tr.CanvasHeight != 600 || tr.ScaleFactor != 1 {
		t.Fatalf("transform %+v", tr)
	}
}

func TestMagicWrite(t *testing.T) {
	s := newSession(Options{Generator: stubGen{text: "Warm wishes"}})
	if _, ok := s.MagicWrite(context.Background(), "   "); ok {
		t.Fatalf("blank prompt must not generate")
	}
	if s.Scene().Len() != 1 {
		t.Fatalf("blank prompt added an element")
	}
	id, ok := s.MagicWrite(context.Background(), "for grandma")
	if !ok {
		t.Fatalf("expected generation")
	}
	e, _ := s.Scene().Element(id)
	if e.Content != "Warm wishes" || e.Kind != domain.KindText || s.Scene().SelectedID() != id {
		t.Fatalf("generated element %+v", e)
	}
}

type gateGen struct {
	started chan struct{}
	release chan struct{}
}

func (g gateGen) Generate(context.Context, string) string {
	close(g.started)
	<-g.release
	return "done"
}

func TestGenerate_SingleFlight(t *testing.T) {
	g := gateGen{started: make(chan struct{}), release: make(chan struct{})}
	s := newSession(Options{Generator: g})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, ok := s.Generate(context.Background(), "first"); !ok {
			t.Errorf("first request should run")
		}
	}()
	<-g.started
	if !s.Assistant().Pending() {
		t.Fatalf("expected pending request")
	}
	if _, ok := s.MagicWrite(context.Background(), "second"); ok {
		t.Fatalf("second request must be refused while pending")
	}
	close(g.release)
	wg.Wait()
}

func TestPrint_ClearsSelectionAndSendsPrintComposition(t *testing.T) {
	var got render.Composition
	calls := 0
	s := newSession(Options{
		PrintDelay: time.Millisecond,
		Printer: export.PrinterFunc(func(_ context.Context, c render.Composition) error {
			calls++
			got = c
			return nil
		}),
	})
	id := s.AddText("hello")
	s.Scene().StartEditing(id)
	if err := s.Print(context.Background()); err != nil {
		t.Fatalf("print: %v", err)
	}
	if calls != 1 || !got.Print || got.Affordance != nil {
		t.Fatalf("printer got %+v after %d calls", got, calls)
	}
	if s.Scene().SelectedID() != "" || s.Scene().EditingID() != "" {
		t.Fatalf("selection and edit mode should be cleared")
	}
	if s.Scene().Len() != 2 {
		t.Fatalf("print must not change the card")
	}
}

func TestStartPrint_SnapshotsBeforeDelay(t *testing.T) {
	got := make(chan render.Composition, 1)
	s := newSession(Options{
		PrintDelay: 20 * time.Millisecond,
		Printer: export.PrinterFunc(func(_ context.Context, c render.Composition) error {
			got <- c
			return nil
		}),
	})
	s.AddText("hello")
	job, err := s.StartPrint()
	if err != nil {
		t.Fatalf("start print: %v", err)
	}
	if s.Scene().SelectedID() != "" {
		t.Fatalf("selection should be cleared before the delay")
	}
	select {
	case <-got:
		t.Fatalf("printer ran before the job")
	default:
	}
	errc := make(chan error, 1)
	go func() { errc <- job.Run(context.Background()) }()
	// edits made while the job waits are not printed
	s.AddSticker("🎈")
	if err := <-errc; err != nil {
		t.Fatalf("run: %v", err)
	}
	if c := <-got; len(c.Boxes) != 2 {
		t.Fatalf("printed %d boxes, want the 2 captured", len(c.Boxes))
	}
}

func TestPrint_WithoutPrinter(t *testing.T) {
	s := newSession(Options{})
	if err := s.Print(context.Background()); err == nil {
		t.Fatalf("expected error without printer")
	}
}

func TestExport_SVG(t *testing.T) {
	s := newSession(Options{})
	out := filepath.Join(t.TempDir(), "card.svg")
	if err := s.Export(out, export.Options{}); err != nil {
		t.Fatalf("export: %v", err)
	}
	if st, err := os.Stat(out); err != nil || st.Size() == 0 {
		t.Fatalf("svg missing: %v", err)
	}
}

func TestDragThroughSession(t *testing.T) {
	s := newSession(Options{})
	tr := s.Resize(664, 864) // exactly fits portrait at scale 1
	if tr.ScaleFactor != 1 {
		t.Fatalf("scale %v", tr.ScaleFactor)
	}
	origin := s.Viewport().Placement().Min()
	id := s.Scene().Elements()[0].ID
	// grab the initial greeting a little inside its box
	grab := origin.Add(vector.Pt{X: 160, Y: 210})
	ctl := s.Controller()
	if !ctl.PointerDownOnElement(id, grab) {
		t.Fatalf("pointer down failed")
	}
	ctl.PointerMove(grab.Add(vector.Pt{X: 30, Y: -20}))
	ctl.PointerUp()
	e, _ := s.Scene().Element(id)
	if e.X != 180 || e.Y != 180 {
		t.Fatalf("dragged to (%v,%v)", e.X, e.Y)
	}
}
