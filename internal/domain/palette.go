/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Sticker glyphs offered by the sticker palette.
var Stickers = []string{
	"⭐", "✨", "🌟", "💫",
	"💋", "💄", "👄", "💌",
	"🌹", "🌷", "🌸", "💐",
	"🎂", "🍰", "🧁", "🎁",
	"🎈", "🎉", "🕯️", "🧸",
	"❤️", "💖", "💍", "🕊️",
}

// Colors are the quick-pick text colours.
var Colors = []string{
	"#1f2937", // gray 800
	"#dc2626", // red 600
	"#d97706",
	"#059669",
	"#2563eb",
	"#7c3aed",
	"#db2777",
	"#ffffff",
}

// Backgrounds are the preset card fills: six solids then four gradients.
var Backgrounds = []string{
	"#ffffff",
	"#fdf2f8",
	"#fffbeb",
	"#f0fdf4",
	"#eff6ff",
	"#fafafa",
	"linear-gradient(to bottom right, #b91d1d, #7f1d1d)", // red envelope
	"linear-gradient(135deg, #fdfbfb 0%, #ebedee 100%)",
	"linear-gradient(to top, #fad0c4 0%, #ffd1ff 100%)",
	"linear-gradient(120deg, #a1c4fd 0%, #c2e9fb 100%)",
}

// DefaultBackground is the red envelope gradient.
var DefaultBackground = Backgrounds[6]

// Defaults for newly added elements.
var (
	DefaultText = Geometry{X: 200, Y: 300, FontSize: 24, Color: "#1f2937", FontFamily: FontHand, Scale: 1}

	InitialText = "Happy Birthday!"
	// PlaceholderText is what a freshly added text block says.
	PlaceholderText = "Double click to edit"
	InitialElement  = Geometry{X: 150, Y: 200, FontSize: 42, Color: "#1f2937", FontFamily: FontSerif, Scale: 1}

	StickerFontSize = 64.0
	StickerColor    = "#000"
)
