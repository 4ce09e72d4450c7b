/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

const gradientPrefix = "linear-gradient("

var errNotGradient = errors.New("not a linear-gradient")

// ParseColor parses a CSS colour token: hex (#rgb, #rrggbb, #rrggbbaa),
// rgb()/hsl() functions and named colours.
func ParseColor(s string) (color.NRGBA, error) {
	c, err := csscolorparser.Parse(strings.TrimSpace(s))
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	r, g, b, a := c.RGBA255()
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

// MustColor parses s and falls back to fallback on error.
func MustColor(s string, fallback color.NRGBA) color.NRGBA {
	c, err := ParseColor(s)
	if err != nil {
		return fallback
	}
	return c
}

// Hex formats c as #rrggbb, or #rrggbbaa when not opaque.
func Hex(c color.NRGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Stop is a gradient colour stop with Offset in [0,1].
type Stop struct {
	Offset float64
	Color  color.NRGBA
}

// Fill is a parsed background: a solid colour when Stops is empty, a
// linear gradient otherwise.
type Fill struct {
	Solid color.NRGBA
	// Angle in CSS degrees (0 = towards top, 90 = towards right).
	Angle float64
	// Corner is set for "to <v> <h>" forms, whose angle depends on the box.
	Corner  bool
	cornerX float64
	cornerY float64
	Stops   []Stop
}

var white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// IsGradient reports whether f has gradient stops.
func (f Fill) IsGradient() bool { return len(f.Stops) > 0 }

// AngleFor resolves the CSS angle for a w×h box.
func (f Fill) AngleFor(w, h float64) float64 {
	if !f.Corner {
		return f.Angle
	}
	deg := math.Atan2(f.cornerX*h, -f.cornerY*w) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Line returns the gradient line endpoints for a w×h box at the origin,
// following the CSS definition: through the centre, long enough that the
// corners get the first and last stop colours.
func (f Fill) Line(w, h float64) (x1, y1, x2, y2 float64) {
	rad := f.AngleFor(w, h) * math.Pi / 180
	dx, dy := math.Sin(rad), -math.Cos(rad)
	half := (math.Abs(w*dx) + math.Abs(h*dy)) / 2
	cx, cy := w/2, h/2
	return cx - dx*half, cy - dy*half, cx + dx*half, cy + dy*half
}

// First returns the first visible colour (the solid, or the first stop).
func (f Fill) First() color.NRGBA {
	if len(f.Stops) > 0 {
		return f.Stops[0].Color
	}
	return f.Solid
}

// ParseBackground parses a background token. Anything unparseable yields
// solid white together with the error so callers can log and carry on.
func ParseBackground(s string) (Fill, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(strings.ToLower(s), gradientPrefix) {
		c, err := ParseColor(s)
		if err != nil {
			return Fill{Solid: white}, fmt.Errorf("background: %w", err)
		}
		return Fill{Solid: c}, nil
	}
	f, err := parseLinearGradient(s)
	if err != nil {
		return Fill{Solid: white}, fmt.Errorf("background %q: %w", s, err)
	}
	return f, nil
}

func parseLinearGradient(s string) (Fill, error) {
	if !strings.HasPrefix(strings.ToLower(s), gradientPrefix) || !strings.HasSuffix(s, ")") {
		return Fill{}, errNotGradient
	}
	args := splitTopLevel(s[len(gradientPrefix) : len(s)-1])
	if len(args) == 0 {
		return Fill{}, errNotGradient
	}
	f := Fill{Angle: 180}
	head := strings.ToLower(strings.TrimSpace(args[0]))
	switch {
	case strings.HasSuffix(head, "deg"):
		a, err := strconv.ParseFloat(strings.TrimSuffix(head, "deg"), 64)
		if err != nil {
			return Fill{}, fmt.Errorf("angle %q: %w", head, err)
		}
		f.Angle = a
		args = args[1:]
	case strings.HasPrefix(head, "to "):
		if err := f.setDirection(strings.Fields(head)[1:]); err != nil {
			return Fill{}, err
		}
		args = args[1:]
	}
	if len(args) < 2 {
		return Fill{}, errors.New("gradient needs at least two stops")
	}
	offsets := make([]float64, len(args))
	for i, a := range args {
		token, off, err := splitStop(a)
		if err != nil {
			return Fill{}, err
		}
		c, err := ParseColor(token)
		if err != nil {
			return Fill{}, err
		}
		offsets[i] = off
		f.Stops = append(f.Stops, Stop{Color: c})
	}
	fillOffsets(offsets)
	for i := range f.Stops {
		f.Stops[i].Offset = offsets[i]
	}
	f.Solid = f.Stops[0].Color
	return f, nil
}

// splitStop separates a colour stop into its colour token and an optional
// trailing percentage; a missing position is reported as -1.
func splitStop(a string) (string, float64, error) {
	a = strings.TrimSpace(a)
	i := strings.LastIndexByte(a, ' ')
	if i < 0 || !strings.HasSuffix(a, "%") || strings.LastIndexByte(a, ')') > i {
		return a, -1, nil
	}
	pct, err := strconv.ParseFloat(a[i+1:len(a)-1], 64)
	if err != nil {
		return "", 0, fmt.Errorf("stop %q: %w", a, err)
	}
	return strings.TrimSpace(a[:i]), pct / 100, nil
}

func (f *Fill) setDirection(words []string) error {
	var x, y float64
	for _, w := range words {
		switch w {
		case "left":
			x = -1
		case "right":
			x = 1
		case "top":
			y = -1
		case "bottom":
			y = 1
		default:
			return fmt.Errorf("unknown direction %q", w)
		}
	}
	switch {
	case x != 0 && y != 0:
		f.Corner, f.cornerX, f.cornerY = true, x, y
	case x > 0:
		f.Angle = 90
	case x < 0:
		f.Angle = 270
	case y < 0:
		f.Angle = 0
	case y > 0:
		f.Angle = 180
	default:
		return errors.New("empty direction")
	}
	return nil
}

// fillOffsets resolves missing (-1) stop positions: ends default to 0 and 1,
// gaps are spread evenly between their known neighbours.
func fillOffsets(o []float64) {
	if o[0] < 0 {
		o[0] = 0
	}
	if o[len(o)-1] < 0 {
		o[len(o)-1] = 1
	}
	last := 0
	for i := 1; i < len(o); i++ {
		if o[i] < 0 {
			continue
		}
		if gap := i - last; gap > 1 {
			step := (o[i] - o[last]) / float64(gap)
			for j := last + 1; j < i; j++ {
				o[j] = o[last] + step*float64(j-last)
			}
		}
		last = i
	}
}

func splitTopLevel(s string) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(s[start:]); tail != "" {
		out = append(out, tail)
	}
	return out
}
