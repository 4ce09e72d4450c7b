/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"lumina/internal/domain"
)

// FontLibrary maps card font tokens to parsed OpenType fonts and caches
// sized faces. The Go font family ships embedded, so every token resolves
// without touching the file system: sans is Go Regular, serif Go Medium and
// the handwritten token Go Italic.
// Faces are not safe for concurrent use, hence the mutex.
type FontLibrary struct {
	mu    sync.Mutex
	fonts map[domain.FontFamily]*opentype.Font
	data  map[domain.FontFamily][]byte
	faces map[faceKey]font.Face
}

type faceKey struct {
	family domain.FontFamily
	size   float64
}

// TTF returns the raw font bytes for a token, for renderers that parse fonts
// themselves (freetype, gofpdf). Unknown tokens get the sans font.
func TTF(f domain.FontFamily) []byte {
	switch f {
	case domain.FontSerif:
		return gomedium.TTF
	case domain.FontHand:
		return goitalic.TTF
	default:
		return goregular.TTF
	}
}

var (
	defaultLib     *FontLibrary
	defaultLibOnce sync.Once
)

// Default returns the shared library over the embedded Go fonts.
func Default() *FontLibrary {
	defaultLibOnce.Do(func() {
		lib, err := NewFontLibrary()
		if err != nil {
			// embedded fonts are known-good
			panic(err)
		}
		defaultLib = lib
	})
	return defaultLib
}

// NewFontLibrary parses the embedded fonts for every token.
func NewFontLibrary() (*FontLibrary, error) {
	fl := &FontLibrary{
		fonts: make(map[domain.FontFamily]*opentype.Font),
		data:  make(map[domain.FontFamily][]byte),
		faces: make(map[faceKey]font.Face),
	}
	for _, f := range domain.Fonts {
		if err := fl.load(f, TTF(f)); err != nil {
			return nil, err
		}
	}
	return fl, nil
}

// LoadTTF replaces the font behind a token with a file from disk.
func (fl *FontLibrary) LoadTTF(family domain.FontFamily, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	return fl.load(family, data)
}

func (fl *FontLibrary) load(family domain.FontFamily, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.fonts[family] = f
	fl.data[family] = data
	for k := range fl.faces {
		if k.family == family {
			delete(fl.faces, k)
		}
	}
	return nil
}

// Data returns the font bytes currently bound to a token.
func (fl *FontLibrary) Data(family domain.FontFamily) []byte {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if d, ok := fl.data[family]; ok {
		return d
	}
	return fl.data[domain.FontSans]
}

// face returns a cached face; callers hold fl.mu.
func (fl *FontLibrary) face(family domain.FontFamily, size float64) (font.Face, error) {
	if size <= 0 {
		size = 12
	}
	k := faceKey{family: family, size: size}
	if f, ok := fl.faces[k]; ok {
		return f, nil
	}
	otf, ok := fl.fonts[family]
	if !ok {
		otf = fl.fonts[domain.FontSans]
	}
	f, err := opentype.NewFace(otf, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, fmt.Errorf("face %s@%v: %w", family, size, err)
	}
	fl.faces[k] = f
	return f, nil
}
