/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the card data model: placed elements, the card-wide
// settings and the closed token sets for layout, border and font. Tokens are
// the stable external format and serialize as plain strings.

import (
	"fmt"
	"strings"
)

// ElementKind discriminates text blocks from stickers.
type ElementKind string

const (
	KindText    ElementKind = "TEXT"
	KindSticker ElementKind = "STICKER"
)

// Scale bounds shared by every mutation path.
const (
	MinScale  = 0.5
	MaxScale  = 3.0
	ScaleStep = 0.1
)

// Element is one placed item on the card. X/Y is the canvas-space top-left
// anchor before rotation and scale (both applied about the box centre).
type Element struct {
	ID         string      `json:"id"`
	Kind       ElementKind `json:"type"`
	Content    string      `json:"content"`
	X          float64     `json:"x"`
	Y          float64     `json:"y"`
	FontSize   float64     `json:"fontSize"`
	Color      string      `json:"color"`
	FontFamily FontFamily  `json:"fontFamily"`
	Rotation   float64     `json:"rotation"`
	Scale      float64     `json:"scale"`
	StackOrder int         `json:"zIndex"`
}

// Geometry carries the attributes a caller chooses when adding an element.
type Geometry struct {
	X, Y       float64
	FontSize   float64
	Color      string
	FontFamily FontFamily
	Rotation   float64
	Scale      float64
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Content    *string
	X, Y       *float64
	FontSize   *float64
	Color      *string
	FontFamily *FontFamily
	Rotation   *float64
	Scale      *float64
	StackOrder *int
}

// Ptr returns a pointer to v, handy for building a Patch.
func Ptr[T any](v T) *T { return &v }

// Apply merges the non-nil fields of p into e. ID and Kind never change.
func (p Patch) Apply(e *Element) {
	if p.Content != nil {
		e.Content = *p.Content
	}
	if p.X != nil {
		e.X = *p.X
	}
	if p.Y != nil {
		e.Y = *p.Y
	}
	if p.FontSize != nil {
		e.FontSize = *p.FontSize
	}
	if p.Color != nil {
		e.Color = *p.Color
	}
	if p.FontFamily != nil {
		e.FontFamily = *p.FontFamily
	}
	if p.Rotation != nil {
		e.Rotation = *p.Rotation
	}
	if p.Scale != nil {
		e.Scale = *p.Scale
	}
	if p.StackOrder != nil {
		e.StackOrder = *p.StackOrder
	}
}

// ClampScale limits s to [MinScale, MaxScale]. NaN maps to 1.
func ClampScale(s float64) float64 {
	if s != s {
		return 1
	}
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}

// Layout is the card format token.
type Layout string

const (
	LayoutPortrait  Layout = "portrait"
	LayoutLandscape Layout = "landscape"
	LayoutFoldedH   Layout = "folded-h"
	LayoutFoldedV   Layout = "folded-v"
)

// Layouts lists every layout in display order.
var Layouts = []Layout{LayoutPortrait, LayoutLandscape, LayoutFoldedH, LayoutFoldedV}

// Dimensions returns the logical canvas size. Unknown tokens fall back to portrait.
func (l Layout) Dimensions() (w, h float64) {
	switch l {
	case LayoutLandscape:
		return 800, 600
	case LayoutFoldedH:
		return 1000, 700
	case LayoutFoldedV:
		return 600, 1000
	default:
		return 600, 800
	}
}

// Folded reports whether the layout shows a fold line.
func (l Layout) Folded() bool { return l == LayoutFoldedH || l == LayoutFoldedV }

// Label is the human name used in the toolbar and CLI listings.
func (l Layout) Label() string {
	switch l {
	case LayoutPortrait:
		return "Portrait"
	case LayoutLandscape:
		return "Landscape"
	case LayoutFoldedH:
		return "Folded (side)"
	case LayoutFoldedV:
		return "Folded (top)"
	}
	return string(l)
}

// Border is the decorative frame token.
type Border string

const (
	BorderNone        Border = "none"
	BorderSimpleGold  Border = "simple-gold"
	BorderDoubleGold  Border = "double-gold"
	BorderModernBlack Border = "modern-black"
	BorderFancyRed    Border = "fancy-red"
)

var Borders = []Border{BorderNone, BorderSimpleGold, BorderDoubleGold, BorderModernBlack, BorderFancyRed}

func (b Border) Label() string {
	switch b {
	case BorderNone:
		return "None"
	case BorderSimpleGold:
		return "Thin Gold"
	case BorderDoubleGold:
		return "Double Gold"
	case BorderModernBlack:
		return "Modern"
	case BorderFancyRed:
		return "Red Frame"
	}
	return string(b)
}

// FontFamily is the typeface token.
type FontFamily string

const (
	FontSerif FontFamily = "font-serif"
	FontSans  FontFamily = "font-sans"
	FontHand  FontFamily = "font-hand"
)

var Fonts = []FontFamily{FontSerif, FontSans, FontHand}

func (f FontFamily) Label() string {
	switch f {
	case FontSerif:
		return "Serif"
	case FontSans:
		return "Sans"
	case FontHand:
		return "Handwritten"
	}
	return string(f)
}

// Settings are the card-wide singletons.
type Settings struct {
	Background string `json:"background"`
	Layout     Layout `json:"layout"`
	Border     Border `json:"border"`
}

// DefaultSettings mirrors a fresh card: red envelope gradient, portrait, no border.
func DefaultSettings() Settings {
	return Settings{Background: DefaultBackground, Layout: LayoutPortrait, Border: BorderNone}
}

func ParseLayout(s string) (Layout, error) {
	for _, l := range Layouts {
		if strings.EqualFold(string(l), strings.TrimSpace(s)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown layout %q", s)
}

func ParseBorder(s string) (Border, error) {
	for _, b := range Borders {
		if strings.EqualFold(string(b), strings.TrimSpace(s)) {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown border %q", s)
}

// ParseFont accepts either the token ("font-hand") or the short name ("hand").
func ParseFont(s string) (FontFamily, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range Fonts {
		if s == string(f) || "font-"+s == string(f) || s == strings.ToLower(f.Label()) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown font %q", s)
}
