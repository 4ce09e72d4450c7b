/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"

	"lumina/internal/config"
	"lumina/internal/crash"
	"lumina/internal/domain"
	"lumina/internal/editor"
	"lumina/internal/export"
	"lumina/internal/greeting"
	applog "lumina/internal/log"
	"lumina/internal/storage"
	"lumina/internal/telemetry"
	"lumina/internal/ui"
	"lumina/internal/version"
)

func usage() {
	fmt.Println("Lumina greeting card editor")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  lumina version|-v|--version                Show version")
	fmt.Println("  lumina layouts                             List layouts, borders, fonts and backgrounds")
	fmt.Println("  lumina render [card flags] <out>           Render a card to .png, .svg or .pdf")
	fmt.Println("         -preset web|print                   ...or write every preset format into <out> as a directory")
	fmt.Println("  lumina print [card flags] [-cmd lp]        Send a card to the system printer")
	fmt.Println("  lumina generate [-copy] <prompt>           Write a greeting with the AI assistant")
	fmt.Println("  lumina history [n]                         Show recently generated greetings")
	fmt.Println("  lumina ui                                  Launch desktop UI (build with -tags fyne)")
	fmt.Println()
	fmt.Println("Card flags: -layout -border -background -text (repeatable) -sticker (repeatable) -generate <prompt>")
}

func main() { os.Exit(run(os.Args[1:])) }

type app struct {
	cfg  config.AppConfig
	key  string
	log  *slog.Logger
	hist *storage.History
}

func run(args []string) int {
	cfg, key, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", applog.Err(cfgErr))
	}
	tc := telemetry.FromEnv()
	tc.OptIn = tc.OptIn || cfg.General.TelemetryOptIn
	tel := telemetry.New(tc)
	telemetry.SetDefault(tel)
	defer func() {
		tel.Flush(context.Background())
		tel.Close()
	}()
	// commands that build a card install their own Recover with the session
	defer crash.Recover(nil)

	a := &app{cfg: cfg, key: key, log: l}
	defer a.closeHistory()

	l.Debug("start", slog.Int("args", len(args)))
	if len(args) == 0 {
		usage()
		return 0
	}
	var err error
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Println("Lumina greeting card editor")
		fmt.Println(version.String())
		return 0
	case "layouts":
		printCatalog()
		return 0
	case "render":
		err = a.render(args[1:])
	case "print":
		err = a.print(args[1:])
	case "generate":
		err = a.generate(args[1:])
	case "history":
		err = a.history(args[1:])
	case "ui":
		err = a.ui()
	case "help", "-h", "--help":
		usage()
		return 0
	default:
		fmt.Printf("unknown command %q\n", args[0])
		usage()
		return 2
	}
	if err != nil {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Println(ue.Error())
			usage()
			return 2
		}
		l.Error("command failed", slog.String("cmd", args[0]), applog.Err(err))
		fmt.Println("Error:", err)
		return 1
	}
	return 0
}

type usageError string

func (e usageError) Error() string { return string(e) }

// openHistory is best effort; generation works without it.
func (a *app) openHistory(ctx context.Context) *storage.History {
	if a.hist != nil {
		return a.hist
	}
	h, err := storage.OpenHistory(ctx, a.cfg.History.DSN)
	if err != nil {
		a.log.Warn("greeting history unavailable", applog.Err(err))
		return nil
	}
	a.hist = h
	return h
}

func (a *app) closeHistory() {
	if a.hist != nil {
		_ = a.hist.Close()
	}
}

func (a *app) client(ctx context.Context) *greeting.Client {
	c := greeting.NewClient(a.cfg.Greeting.Client(a.key))
	if h := a.openHistory(ctx); h != nil {
		c.SetRecorder(h)
	}
	return c
}

func (a *app) session(gen greeting.Generator, printer export.Printer) *editor.Session {
	st, err := a.cfg.Editor.Settings()
	if err != nil {
		a.log.Warn("editor settings partly ignored", applog.Err(err))
	}
	return editor.New(editor.Options{
		Settings:   &st,
		Generator:  gen,
		Printer:    printer,
		PrintDelay: a.cfg.Export.PrintDelay(),
		Padding:    a.cfg.Editor.ViewportPadding,
	})
}

func (a *app) exportOptions() export.Options {
	return export.Options{PixelScale: a.cfg.Export.PixelScale}
}

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string     { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

// cardFlags describe a card on the command line.
type cardFlags struct {
	layout, border, background, generate string
	texts, stickers                      stringList
}

func (f *cardFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.layout, "layout", "", "portrait | landscape | folded-h | folded-v")
	fs.StringVar(&f.border, "border", "", "none | simple-gold | double-gold | modern-black | fancy-red")
	fs.StringVar(&f.background, "background", "", "CSS colour or linear-gradient(...)")
	fs.StringVar(&f.generate, "generate", "", "add an AI-written greeting for this prompt")
	fs.Var(&f.texts, "text", "add a text block (repeatable)")
	fs.Var(&f.stickers, "sticker", "add a sticker glyph (repeatable)")
}

// apply builds the card on sess.
func (f *cardFlags) apply(ctx context.Context, sess *editor.Session) error {
	if f.layout != "" {
		l, err := domain.ParseLayout(f.layout)
		if err != nil {
			return err
		}
		sess.SetLayout(l)
	}
	if f.border != "" {
		b, err := domain.ParseBorder(f.border)
		if err != nil {
			return err
		}
		sess.SetBorder(b)
	}
	if f.background != "" {
		if _, err := domain.ParseBackground(f.background); err != nil {
			return err
		}
		sess.SetBackground(f.background)
	}
	for _, t := range f.texts {
		sess.AddText(strings.ReplaceAll(t, `\n`, "\n"))
	}
	for _, s := range f.stickers {
		sess.AddSticker(s)
	}
	if strings.TrimSpace(f.generate) != "" {
		if _, ok := sess.MagicWrite(ctx, f.generate); !ok {
			return errors.New("greeting generation refused")
		}
	}
	return nil
}

func (a *app) render(args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	var cf cardFlags
	cf.register(fs)
	preset := fs.String("preset", "", "web | print: write every preset format into <out>")
	scale := fs.Float64("scale", 0, "raster pixel scale (default from config)")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if fs.NArg() < 1 {
		return usageError("render requires <out>")
	}
	out := fs.Arg(0)
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Greeting.Timeout()+10*time.Second)
	defer cancel()
	var gen greeting.Generator
	if cf.generate != "" {
		gen = a.client(ctx)
	}
	sess := a.session(gen, nil)
	defer crash.Recover(sess)
	if err := cf.apply(ctx, sess); err != nil {
		return err
	}
	opt := a.exportOptions()
	if *scale > 0 {
		opt.PixelScale = *scale
	}
	if *preset != "" {
		files, err := export.BatchExport(sess.PrintComposition(), export.BatchOptions{
			Preset:     export.PresetName(*preset),
			OutDir:     out,
			PixelScale: *scale,
			Render:     opt,
		})
		for _, f := range files {
			fmt.Println("Wrote", f)
			telemetry.CardExported(strings.TrimPrefix(filepath.Ext(f), "."))
		}
		return err
	}
	if err := sess.Export(out, opt); err != nil {
		return err
	}
	fmt.Println("Wrote", out)
	return nil
}

func (a *app) print(args []string) error {
	fs := flag.NewFlagSet("print", flag.ContinueOnError)
	var cf cardFlags
	cf.register(fs)
	cmd := fs.String("cmd", a.cfg.Export.PrintCommand, "print command receiving a PDF (default lp)")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Greeting.Timeout()+time.Minute)
	defer cancel()
	var gen greeting.Generator
	if cf.generate != "" {
		gen = a.client(ctx)
	}
	printer := export.SpoolPrinter{Command: *cmd, Options: a.exportOptions()}
	sess := a.session(gen, printer)
	defer crash.Recover(sess)
	if err := cf.apply(ctx, sess); err != nil {
		return err
	}
	if err := sess.Print(ctx); err != nil {
		return err
	}
	fmt.Println("Card sent to printer")
	return nil
}

func (a *app) generate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	copyOut := fs.Bool("copy", false, "copy the greeting to the clipboard")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	prompt := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if prompt == "" {
		return usageError("generate requires <prompt>")
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Greeting.Timeout()+5*time.Second)
	defer cancel()
	text := a.client(ctx).Generate(ctx, prompt)
	fmt.Println(text)
	if *copyOut {
		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Println("(copied to clipboard)")
	}
	return nil
}

func (a *app) history(args []string) error {
	n := 20
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return usageError("history takes a positive count")
		}
		n = v
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	h := a.openHistory(ctx)
	if h == nil {
		return errors.New("greeting history unavailable")
	}
	entries, err := h.Recent(ctx, n)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No greetings generated yet.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %-11s %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Outcome, e.Text)
		fmt.Printf("%18s prompt: %s\n", "", e.Prompt)
	}
	return nil
}

func (a *app) ui() error {
	ctx := context.Background()
	client := a.client(ctx)
	var printer export.Printer
	if a.cfg.Export.PrintCommand != "" {
		printer = export.SpoolPrinter{Command: a.cfg.Export.PrintCommand, Options: a.exportOptions()}
	} else {
		printer = export.FilePrinter{
			Path:    filepath.Join(a.cfg.Export.Dir, "print", "card.pdf"),
			Options: a.exportOptions(),
		}
	}
	sess := a.session(client, printer)
	opts := ui.Options{Session: sess, Printer: printer, ExportOptions: a.exportOptions()}
	if a.hist != nil {
		opts.History = a.hist
	}
	return ui.Run(opts)
}

func printCatalog() {
	fmt.Println("Layouts:")
	for _, l := range domain.Layouts {
		w, h := l.Dimensions()
		fmt.Printf("  %-10s %-16s %4.0f x %-4.0f\n", l, l.Label(), w, h)
	}
	fmt.Println("Borders:")
	for _, b := range domain.Borders {
		fmt.Printf("  %-13s %s\n", b, b.Label())
	}
	fmt.Println("Fonts:")
	for _, f := range domain.Fonts {
		fmt.Printf("  %-11s %s\n", f, f.Label())
	}
	fmt.Println("Backgrounds:")
	for i, bg := range domain.Backgrounds {
		fmt.Printf("  %2d  %s\n", i, bg)
	}
	fmt.Println("Stickers:")
	fmt.Printf("  %s\n", strings.Join(domain.Stickers, " "))
}
