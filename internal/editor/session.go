/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor ties the card model, the viewport, the pointer controller and
// the outside collaborators (greeting generation, printing) into one session.
//
// A Session is owned by a single goroutine, the UI loop. Generation may run
// elsewhere through Generate; its result is applied with AddText back on the
// owning goroutine.
package editor

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"lumina/internal/domain"
	"lumina/internal/drag"
	"lumina/internal/export"
	"lumina/internal/greeting"
	"lumina/internal/idgen"
	applog "lumina/internal/log"
	"lumina/internal/render"
	"lumina/internal/scene"
	"lumina/internal/telemetry"
	"lumina/internal/textlayout"
	"lumina/internal/viewport"
)

// Options configure a new session. Zero values pick the defaults.
type Options struct {
	Settings   *domain.Settings
	IDs        idgen.Generator
	Rand       *rand.Rand
	Measurer   textlayout.Measurer
	Generator  greeting.Generator
	Printer    export.Printer
	PrintDelay time.Duration
	Padding    float64
	// Blank skips the initial greeting line.
	Blank bool
}

// Session is one open card.
type Session struct {
	scene     *scene.Scene
	view      *viewport.Viewport
	ctl       *drag.Controller
	measurer  textlayout.Measurer
	assistant *greeting.Assistant
	printer   export.Printer
	delay     time.Duration
	log       *slog.Logger
}

// New creates a session holding the initial card.
func New(opts Options) *Session {
	var so []scene.Option
	if opts.Settings != nil {
		so = append(so, scene.WithSettings(*opts.Settings))
	}
	if opts.IDs != nil {
		so = append(so, scene.WithIDs(opts.IDs))
	}
	if opts.Rand != nil {
		so = append(so, scene.WithRand(opts.Rand))
	}
	sc := scene.New(so...)
	m := opts.Measurer
	if m == nil {
		m = textlayout.Default()
	}
	v := viewport.New(sc.Settings().Layout)
	if opts.Padding > 0 {
		v.SetPadding(opts.Padding)
	}
	delay := opts.PrintDelay
	if delay <= 0 {
		delay = export.DefaultPrintDelay
	}
	s := &Session{
		scene:     sc,
		view:      v,
		ctl:       drag.New(sc, v, m),
		measurer:  m,
		assistant: greeting.NewAssistant(opts.Generator),
		printer:   opts.Printer,
		delay:     delay,
		log:       applog.WithComponent("editor"),
	}
	if !opts.Blank {
		sc.AddElement(domain.KindText, domain.InitialText, domain.InitialElement)
	}
	return s
}

func (s *Session) Scene() *scene.Scene                    { return s.scene }
func (s *Session) Viewport() *viewport.Viewport           { return s.view }
func (s *Session) Controller() *drag.Controller           { return s.ctl }
func (s *Session) Measurer() textlayout.Measurer          { return s.measurer }
func (s *Session) Assistant() *greeting.Assistant         { return s.assistant }
func (s *Session) SetPrinter(p export.Printer)            { s.printer = p }
func (s *Session) Snapshot() scene.Snapshot               { return s.scene.Snapshot() }
func (s *Session) Settings() domain.Settings              { return s.scene.Settings() }
func (s *Session) ClearSelection()                        { s.scene.ClearSelection() }
func (s *Session) Resize(w, h float64) viewport.Transform { return s.view.Resize(w, h) }

// AddText appends a text block at the default position and selects it.
// An empty string adds the placeholder text.
func (s *Session) AddText(text string) string {
	if text == "" {
		text = domain.PlaceholderText
	}
	id := s.scene.AddElement(domain.KindText, text, s.scene.TextGeometry())
	s.scene.Select(id)
	applog.WithOperation(s.log, "add").Info("text added", applog.Element(id))
	return id
}

// AddSticker appends a sticker at a random position and tilt and selects it.
func (s *Session) AddSticker(glyph string) string {
	id := s.scene.AddElement(domain.KindSticker, glyph, s.scene.StickerGeometry())
	s.scene.Select(id)
	applog.WithOperation(s.log, "add").Info("sticker added", applog.Element(id), slog.String("glyph", glyph))
	return id
}

// SetLayout switches the card format and refits the viewport.
func (s *Session) SetLayout(l domain.Layout) viewport.Transform {
	s.scene.SetLayout(l)
	t := s.view.SetLayout(l)
	s.log.Debug("layout changed", applog.Layout(string(l)), slog.Float64("scale", t.ScaleFactor))
	return t
}

func (s *Session) SetBorder(b domain.Border) { s.scene.SetBorder(b) }
func (s *Session) SetBackground(bg string)   { s.scene.SetBackground(bg) }

// Generate asks the assistant for a greeting. ok is false for a blank prompt
// or while another request is pending. Safe to call off the owning goroutine.
func (s *Session) Generate(ctx context.Context, prompt string) (string, bool) {
	return s.assistant.Write(ctx, prompt)
}

// MagicWrite generates a greeting and appends it as a selected text block.
func (s *Session) MagicWrite(ctx context.Context, prompt string) (string, bool) {
	text, ok := s.Generate(ctx, strings.TrimSpace(prompt))
	if !ok {
		return "", false
	}
	return s.AddText(text), true
}

// Composition renders the current state; print drops every affordance.
func (s *Session) Composition(print bool) render.Composition {
	return render.Compose(s.scene.Snapshot(), s.measurer, render.Options{Print: print})
}

// PrintComposition is the print-mode composition.
func (s *Session) PrintComposition() render.Composition { return s.Composition(true) }

// Print clears the selection and hands the card to the configured printer.
// Failures are logged and returned; the card itself is untouched.
func (s *Session) Print(ctx context.Context) error {
	j, err := s.StartPrint()
	if err != nil {
		return err
	}
	return j.Run(ctx)
}

// StartPrint clears the selection and captures the print snapshot on the
// calling goroutine. The returned job can run elsewhere.
func (s *Session) StartPrint() (*export.Job, error) {
	j, err := export.Prepare(s, s.printer, s.delay)
	if err != nil {
		return nil, err
	}
	layout, n := string(s.scene.Settings().Layout), s.scene.Len()
	j.Done = func() { telemetry.CardPrinted(layout, n) }
	return j, nil
}

// Export writes the card to path, choosing the format from the extension.
func (s *Session) Export(path string, opt export.Options) error {
	s.scene.ClearSelection()
	if err := export.ExportFile(path, s.PrintComposition(), opt); err != nil {
		applog.WithOperation(s.log, "export").Error("export failed", slog.String("path", path), applog.Err(err))
		return err
	}
	applog.WithOperation(s.log, "export").Info("card exported", slog.String("path", path))
	telemetry.CardExported(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	return nil
}
