/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"lumina/internal/domain"
	"lumina/internal/textlayout"
)

// Options are shared by every exporter.
type Options struct {
	// Fonts supplies font data; nil means the embedded Go fonts.
	Fonts *textlayout.FontLibrary
	// PixelScale multiplies the canvas size for raster output (default 1).
	PixelScale float64
}

func (o Options) fonts() *textlayout.FontLibrary {
	if o.Fonts == nil {
		return textlayout.Default()
	}
	return o.Fonts
}

func (o Options) scale() float64 {
	if o.PixelScale <= 0 {
		return 1
	}
	return o.PixelScale
}

// cssFamily is the font stack written into SVG output.
func cssFamily(f domain.FontFamily) string {
	switch f {
	case domain.FontSerif:
		return "Georgia, 'Times New Roman', serif"
	case domain.FontHand:
		return "'Dancing Script', 'Brush Script MT', cursive"
	default:
		return "Helvetica, Arial, sans-serif"
	}
}
