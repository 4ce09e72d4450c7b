/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene holds the authoritative card state: the ordered element list,
// the card-wide settings and the transient selection/edit state.
//
// A Scene has a single owner (the editor session on the UI event loop) and
// takes no locks. Every mutation is visible to the next read.
package scene

import (
	"math/rand/v2"
	"slices"

	"lumina/internal/domain"
	"lumina/internal/idgen"
)

// Scene is the mutable card model.
type Scene struct {
	elements []domain.Element
	settings domain.Settings

	selected string
	editing  string

	ids idgen.Generator
	rng *rand.Rand
}

// Option configures a Scene.
type Option func(*Scene)

// WithIDs sets the id generator (default UUIDv7).
func WithIDs(gen idgen.Generator) Option { return func(s *Scene) { s.ids = gen } }

// WithRand sets the randomness used for sticker placement.
func WithRand(r *rand.Rand) Option { return func(s *Scene) { s.rng = r } }

// WithSettings replaces the default card settings.
func WithSettings(st domain.Settings) Option { return func(s *Scene) { s.settings = st } }

// New returns an empty scene with default settings.
func New(opts ...Option) *Scene {
	s := &Scene{settings: domain.DefaultSettings()}
	for _, o := range opts {
		o(s)
	}
	if s.ids == nil {
		s.ids = idgen.Default
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return s
}

// AddElement appends a new element with a fresh id and StackOrder = count+1.
func (s *Scene) AddElement(kind domain.ElementKind, content string, g domain.Geometry) string {
	scale := g.Scale
	if scale == 0 {
		scale = 1
	}
	e := domain.Element{
		ID:         s.ids(),
		Kind:       kind,
		Content:    content,
		X:          g.X,
		Y:          g.Y,
		FontSize:   g.FontSize,
		Color:      g.Color,
		FontFamily: g.FontFamily,
		Rotation:   g.Rotation,
		Scale:      domain.ClampScale(scale),
		StackOrder: len(s.elements) + 1,
	}
	s.elements = append(s.elements, e)
	return e.ID
}

func (s *Scene) index(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.elements, func(e domain.Element) bool { return e.ID == id })
}

// UpdateElement merges p into the element. It reports false when id is unknown.
func (s *Scene) UpdateElement(id string, p domain.Patch) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	e := &s.elements[i]
	p.Apply(e)
	e.Scale = domain.ClampScale(e.Scale)
	return true
}

// DeleteElement removes the element and drops any selection or edit state
// that referenced it.
func (s *Scene) DeleteElement(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.elements = slices.Delete(s.elements, i, i+1)
	if s.selected == id {
		s.selected = ""
	}
	if s.editing == id {
		s.editing = ""
	}
	return true
}

func (s *Scene) SetBackground(bg string)   { s.settings.Background = bg }
func (s *Scene) SetLayout(l domain.Layout) { s.settings.Layout = l }
func (s *Scene) SetBorder(b domain.Border) { s.settings.Border = b }
func (s *Scene) Settings() domain.Settings { return s.settings }
func (s *Scene) Len() int                  { return len(s.elements) }
func (s *Scene) SelectedID() string        { return s.selected }
func (s *Scene) EditingID() string         { return s.editing }

// Elements returns a copy of the elements in insertion order.
func (s *Scene) Elements() []domain.Element { return slices.Clone(s.elements) }

// Element returns a copy of one element.
func (s *Scene) Element(id string) (domain.Element, bool) {
	i := s.index(id)
	if i < 0 {
		return domain.Element{}, false
	}
	return s.elements[i], true
}

// Select marks id as the selected element. Unknown ids are ignored.
// Selecting a different element ends edit mode on the previous one.
func (s *Scene) Select(id string) bool {
	if s.index(id) < 0 {
		return false
	}
	if s.editing != "" && s.editing != id {
		s.editing = ""
	}
	s.selected = id
	return true
}

// StartEditing enters inline edit mode for a TEXT element and selects it.
func (s *Scene) StartEditing(id string) bool {
	i := s.index(id)
	if i < 0 || s.elements[i].Kind != domain.KindText {
		return false
	}
	s.selected = id
	s.editing = id
	return true
}

// StopEditing leaves edit mode, keeping the selection and the current content.
func (s *Scene) StopEditing() { s.editing = "" }

// ClearSelection drops both the selection and edit mode.
func (s *Scene) ClearSelection() {
	s.selected = ""
	s.editing = ""
}

// TextGeometry is the placement of a newly added text block.
func (s *Scene) TextGeometry() domain.Geometry { return domain.DefaultText }

// StickerGeometry scatters a sticker over the upper-left part of the card
// with a slight tilt: x in [100,400), y in [100,500), rotation in [-15,15).
func (s *Scene) StickerGeometry() domain.Geometry {
	return domain.Geometry{
		X:          s.rng.Float64()*300 + 100,
		Y:          s.rng.Float64()*400 + 100,
		FontSize:   domain.StickerFontSize,
		Color:      domain.StickerColor,
		FontFamily: domain.FontSans,
		Rotation:   (s.rng.Float64() - 0.5) * 30,
		Scale:      1,
	}
}

// Snapshot is an immutable copy of everything a renderer needs.
type Snapshot struct {
	Elements []domain.Element
	Settings domain.Settings
	Selected string
	Editing  string
}

// Snapshot copies the current state.
func (s *Scene) Snapshot() Snapshot {
	return Snapshot{Elements: s.Elements(), Settings: s.settings, Selected: s.selected, Editing: s.editing}
}
