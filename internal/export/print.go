/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	applog "lumina/internal/log"
	"lumina/internal/render"
)

// DefaultPrintDelay lets the surface repaint without selection chrome
// before the printer is invoked.
const DefaultPrintDelay = 100 * time.Millisecond

// Printer receives the print-mode composition of a card.
type Printer interface {
	Print(ctx context.Context, c render.Composition) error
}

// PrinterFunc adapts a function to Printer.
type PrinterFunc func(ctx context.Context, c render.Composition) error

func (f PrinterFunc) Print(ctx context.Context, c render.Composition) error { return f(ctx, c) }

// ExportFile picks the exporter from the file extension.
func ExportFile(path string, c render.Composition, opt Options) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return ExportPDF(path, c, opt)
	case ".png":
		return ExportPNG(path, c, opt)
	case ".svg":
		return ExportSVG(path, c)
	default:
		return fmt.Errorf("unsupported export format %q", filepath.Ext(path))
	}
}

// FilePrinter "prints" by writing the card to Path.
type FilePrinter struct {
	Path    string
	Options Options
}

func (p FilePrinter) Print(ctx context.Context, c render.Composition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ExportFile(p.Path, c, p.Options)
}

// SpoolPrinter hands a temporary PDF to a system print command such as lp.
type SpoolPrinter struct {
	Command string
	Args    []string
	Options Options
}

func (p SpoolPrinter) Print(ctx context.Context, c render.Composition) error {
	cmdName := p.Command
	if cmdName == "" {
		cmdName = "lp"
	}
	tmp, err := os.CreateTemp("", "lumina-*.pdf")
	if err != nil {
		return fmt.Errorf("spool temp file: %w", err)
	}
	name := tmp.Name()
	defer func() { _ = os.Remove(name) }()
	if err := WritePDF(tmp, c, p.Options); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	args := append(append([]string{}, p.Args...), name)
	out, err := exec.CommandContext(ctx, cmdName, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", cmdName, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Printable is the editing surface being printed.
type Printable interface {
	ClearSelection()
	PrintComposition() render.Composition
}

// Job is a print snapshot waiting out its commit delay. Run only reads the
// snapshot, so it may run on any goroutine once Prepare has returned.
type Job struct {
	Composition render.Composition
	printer     Printer
	delay       time.Duration
	// Done runs after a successful print.
	Done func()
}

// Prepare clears the selection and snapshots the print composition. It must
// run on the goroutine that owns src.
func Prepare(src Printable, p Printer, delay time.Duration) (*Job, error) {
	if p == nil {
		return nil, errors.New("no printer configured")
	}
	src.ClearSelection()
	return &Job{Composition: src.PrintComposition(), printer: p, delay: delay}, nil
}

// Run waits the delay so the surface can settle, then sends the snapshot to
// the printer. Printer failures are logged and returned.
func (j *Job) Run(ctx context.Context) error {
	if j.delay > 0 {
		t := time.NewTimer(j.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	l := applog.WithOperation(applog.WithComponent("export"), "print")
	start := time.Now()
	if err := j.printer.Print(ctx, j.Composition); err != nil {
		l.Error("print failed", applog.Err(err))
		return err
	}
	l.Info("card printed", slog.Int("elements", len(j.Composition.Boxes)), slog.Duration("took", time.Since(start)))
	if j.Done != nil {
		j.Done()
	}
	return nil
}

// Print prepares and runs a job in one call; the editing state is left as
// it is whether or not the printer succeeds.
func Print(ctx context.Context, src Printable, p Printer, delay time.Duration) error {
	j, err := Prepare(src, p, delay)
	if err != nil {
		return err
	}
	return j.Run(ctx)
}
