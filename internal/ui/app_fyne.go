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
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"lumina/internal/crash"
	"lumina/internal/domain"
	"lumina/internal/editor"
	"lumina/internal/export"
	"lumina/internal/greeting"
	applog "lumina/internal/log"
	"lumina/internal/version"
)

const printTimeout = 2 * time.Minute

// Run opens the card editor window and blocks until it is closed.
func Run(opts Options) error {
	l := applog.WithComponent("ui")
	sess := opts.Session
	if sess == nil {
		sess = editor.New(editor.Options{})
	}
	defer crash.Recover(sess)
	l.Info("starting UI", slog.String("version", version.String()))

	fyneApp := app.NewWithID("lumina")
	w := fyneApp.NewWindow("Lumina")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 860)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	setStatus := func(format string, a ...any) { status.SetText(fmt.Sprintf(format, a...)) }

	card := NewCardCanvas(sess)
	card.OnEdit = func(id string) { showEditDialog(w, sess, card, id) }

	if opts.Printer != nil {
		sess.SetPrinter(opts.Printer)
	}

	tabs := container.NewAppTabs(
		container.NewTabItem("Layout", layoutTab(sess, card)),
		container.NewTabItem("Style", styleTab(w, sess, card)),
		container.NewTabItem("Decor", decorTab(sess, card)),
		container.NewTabItem("Magic", magicTab(sess, card, setStatus)),
	)

	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentPrintIcon(), func() {
			if opts.Printer == nil {
				dialog.ShowInformation("Print", "No printer is configured.", w)
				return
			}
			job, err := sess.StartPrint()
			if err != nil {
				setStatus("Print failed: %v", err)
				return
			}
			card.Refresh()
			setStatus("Printing...")
			go runPrintJob(job, setStatus)
		}),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() { showExportDialog(w, sess, card, opts.ExportOptions, setStatus) }),
		widget.NewToolbarAction(theme.HistoryIcon(), func() {
			if opts.History == nil {
				dialog.ShowInformation("History", "Greeting history is not available.", w)
				return
			}
			showHistoryDialog(w, sess, card, opts.History)
		}),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.InfoIcon(), func() {
			dialog.ShowInformation("About", "Lumina "+version.String(), w)
		}),
	)

	// Keyboard: Delete removes the selection, Escape leaves edit mode.
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		ctl := sess.Controller()
		switch ev.Name {
		case fyne.KeyDelete:
			if ctl.DeleteSelected() {
				card.Refresh()
			}
		case fyne.KeyEscape:
			ctl.CommitEdit()
			sess.ClearSelection()
			card.Refresh()
		case fyne.KeyPlus, fyne.KeyEqual:
			if ctl.ScaleSelected(1) {
				card.Refresh()
			}
		case fyne.KeyMinus:
			if ctl.ScaleSelected(-1) {
				card.Refresh()
			}
		}
	})

	split := container.NewHSplit(card, tabs)
	split.Offset = 0.72
	w.SetContent(container.NewBorder(toolbar, status, nil, nil, split))
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		l.Info("window closed")
	})
	w.ShowAndRun()
	return nil
}

// runPrintJob waits out the commit delay and prints off the UI goroutine,
// reporting back through fyne.Do.
func runPrintJob(job *export.Job, setStatus func(string, ...any)) {
	ctx, cancel := context.WithTimeout(context.Background(), printTimeout)
	defer cancel()
	err := job.Run(ctx)
	fyne.Do(func() {
		if err != nil {
			setStatus("Print failed: %v", err)
			return
		}
		setStatus("Card sent to printer")
	})
}

func layoutTab(sess *editor.Session, card *CardCanvas) fyne.CanvasObject {
	layoutLabels := make([]string, len(domain.Layouts))
	for i, lay := range domain.Layouts {
		layoutLabels[i] = lay.Label()
	}
	layouts := widget.NewRadioGroup(layoutLabels, func(sel string) {
		for _, lay := range domain.Layouts {
			if lay.Label() == sel {
				sess.SetLayout(lay)
				card.Refresh()
				return
			}
		}
	})
	layouts.SetSelected(sess.Settings().Layout.Label())
	layouts.Required = true

	borderLabels := make([]string, len(domain.Borders))
	for i, b := range domain.Borders {
		borderLabels[i] = b.Label()
	}
	borders := widget.NewSelect(borderLabels, func(sel string) {
		for _, b := range domain.Borders {
			if b.Label() == sel {
				sess.SetBorder(b)
				card.Refresh()
				return
			}
		}
	})
	borders.SetSelected(sess.Settings().Border.Label())

	return container.NewVBox(
		widget.NewLabelWithStyle("Card Format", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		layouts,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Border", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		borders,
	)
}

// swatch draws a background preset; gradients show their outer stops.
func swatch(bg string) fyne.CanvasObject {
	fill, _ := domain.ParseBackground(bg)
	if fill.IsGradient() {
		first, last := fill.Stops[0].Color, fill.Stops[len(fill.Stops)-1].Color
		// fyne measures angles from the vertical, css from "to top"
		return canvas.NewLinearGradient(first, last, fill.AngleFor(1, 1)-180)
	}
	r := canvas.NewRectangle(fill.Solid)
	r.StrokeColor = color.NRGBA{A: 0x30}
	r.StrokeWidth = 1
	return r
}

func styleTab(w fyne.Window, sess *editor.Session, card *CardCanvas) fyne.CanvasObject {
	var cells []fyne.CanvasObject
	for _, bg := range domain.Backgrounds {
		bg := bg
		btn := widget.NewButton("", func() {
			sess.SetBackground(bg)
			card.Refresh()
		})
		btn.Importance = widget.LowImportance
		cells = append(cells, container.NewStack(btn, swatch(bg)))
	}
	grid := container.NewGridWrap(fyne.NewSize(56, 56), cells...)
	custom := widget.NewButtonWithIcon("Custom Color", theme.ColorPaletteIcon(), func() {
		picker := dialog.NewColorPicker("Background", "Pick a card colour", func(c color.Color) {
			applyCustomBackground(sess, c)
			card.Refresh()
		}, w)
		picker.Advanced = true
		picker.Show()
	})
	return container.NewVBox(
		widget.NewLabelWithStyle("Background", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		grid,
		custom,
	)
}

// applyCustomBackground sets a solid background from a picked colour.
func applyCustomBackground(sess *editor.Session, c color.Color) {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	sess.SetBackground(domain.Hex(nc))
}

func decorTab(sess *editor.Session, card *CardCanvas) fyne.CanvasObject {
	addText := widget.NewButtonWithIcon("Add Text", theme.ContentAddIcon(), func() {
		sess.AddText("")
		card.Refresh()
	})
	addText.Importance = widget.HighImportance
	var stickers []fyne.CanvasObject
	for _, s := range domain.Stickers {
		s := s
		stickers = append(stickers, widget.NewButton(s, func() {
			sess.AddSticker(s)
			card.Refresh()
		}))
	}
	return container.NewVBox(
		addText,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Stickers", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewGridWithColumns(4, stickers...),
	)
}

func magicTab(sess *editor.Session, card *CardCanvas, setStatus func(string, ...any)) fyne.CanvasObject {
	prompt := widget.NewMultiLineEntry()
	prompt.SetPlaceHolder("e.g. For my sister's 30th birthday, funny and sweet")
	prompt.Wrapping = fyne.TextWrapWord
	busy := widget.NewProgressBarInfinite()
	busy.Hide()

	var write *widget.Button
	write = widget.NewButtonWithIcon("Write Greeting", theme.MailComposeIcon(), func() {
		text := strings.TrimSpace(prompt.Text)
		if text == "" || sess.Assistant().Pending() {
			return
		}
		write.Disable()
		busy.Show()
		busy.Start()
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			msg, ok := sess.Generate(ctx, text)
			fyne.Do(func() {
				busy.Stop()
				busy.Hide()
				write.Enable()
				if !ok {
					return
				}
				sess.AddText(msg)
				prompt.SetText("")
				card.Refresh()
				setStatus("Greeting added")
			})
		}()
	})
	write.Importance = widget.HighImportance
	return container.NewVBox(
		widget.NewLabelWithStyle("AI Writer", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabel("Describe who the card is for and the tone you want."),
		prompt,
		write,
		busy,
	)
}

func showEditDialog(w fyne.Window, sess *editor.Session, card *CardCanvas, id string) {
	e, ok := sess.Scene().Element(id)
	if !ok {
		return
	}
	entry := widget.NewMultiLineEntry()
	entry.SetText(e.Content)
	entry.OnChanged = func(s string) {
		if sess.Controller().EditText(s) {
			card.Refresh()
		}
	}
	d := dialog.NewCustom("Edit text", "Done", entry, w)
	d.SetOnClosed(func() {
		sess.Controller().CommitEdit()
		card.Refresh()
	})
	d.Resize(fyne.NewSize(380, 220))
	d.Show()
	w.Canvas().Focus(entry)
}

func showExportDialog(w fyne.Window, sess *editor.Session, card *CardCanvas, opt export.Options, setStatus func(string, ...any)) {
	d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if uc == nil {
			return
		}
		path := uc.URI().Path()
		// exporters write the file themselves
		_ = uc.Close()
		if err := sess.Export(path, opt); err != nil {
			dialog.ShowError(err, w)
			return
		}
		card.Refresh()
		setStatus("Saved %s", path)
	}, w)
	d.SetFileName("card.png")
	d.Show()
}

func showHistoryDialog(w fyne.Window, sess *editor.Session, card *CardCanvas, src HistorySource) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	entries, err := src.Recent(ctx, 50)
	if err != nil {
		dialog.ShowError(err, w)
		return
	}
	if len(entries) == 0 {
		dialog.ShowInformation("History", "No greetings generated yet.", w)
		return
	}
	var d dialog.Dialog
	list := widget.NewList(
		func() int { return len(entries) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) { o.(*widget.Label).SetText(historyLine(entries[i])) },
	)
	list.OnSelected = func(i widget.ListItemID) {
		sess.AddText(entries[i].Text)
		card.Refresh()
		if d != nil {
			d.Hide()
		}
	}
	d = dialog.NewCustom("Recent greetings", "Close", container.NewGridWrap(fyne.NewSize(520, 360), list), w)
	d.Show()
}

func historyLine(e greeting.Entry) string {
	text := e.Text
	if len([]rune(text)) > 60 {
		text = string([]rune(text)[:57]) + "..."
	}
	return e.CreatedAt.Local().Format("Jan 2 15:04") + "  " + text
}
