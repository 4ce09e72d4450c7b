/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"lumina/internal/render"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// PrintDPI is the raster density the print preset targets.
const PrintDPI = 300

// BatchOptions controls a multi-format export of one card.
//
// Files are written as <OutDir>/<Name>.<ext>. An empty OutDir resolves to
// exports/<preset>; an empty Name to "card".
type BatchOptions struct {
	Preset  PresetName
	Formats []string // pdf, png, svg; empty means preset defaults
	OutDir  string
	Name    string
	// PixelScale overrides the preset's raster scale when > 0.
	PixelScale float64
	Render     Options
}

// BatchExport renders the composition in every requested format and returns
// the written paths in order.
func BatchExport(c render.Composition, opt BatchOptions) ([]string, error) {
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	baseOut := opt.OutDir
	if baseOut == "" {
		preset := string(opt.Preset)
		if preset == "" {
			preset = string(PresetPrint)
		}
		baseOut = filepath.Join("exports", preset)
	}
	name := opt.Name
	if name == "" {
		name = "card"
	}
	ro := opt.Render
	ro.PixelScale = presetPixelScale(opt.Preset)
	if opt.PixelScale > 0 {
		ro.PixelScale = opt.PixelScale
	}

	var written []string
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		out := filepath.Join(baseOut, name+"."+f)
		var err error
		switch f {
		case "pdf":
			err = ExportPDF(out, c, ro)
		case "png":
			err = ExportPNG(out, c, ro)
		case "svg":
			err = ExportSVG(out, c)
		default:
			return written, fmt.Errorf("unknown format: %s", f)
		}
		if err != nil {
			return written, fmt.Errorf("%s: %w", f, err)
		}
		written = append(written, out)
	}
	return written, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "svg"}
	case PresetPrint:
		return []string{"pdf", "png"}
	default:
		return []string{"pdf"}
	}
}

func presetPixelScale(p PresetName) float64 {
	if p == PresetWeb {
		return 1
	}
	return PrintDPI / 72.0
}
