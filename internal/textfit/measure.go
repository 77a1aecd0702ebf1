/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textfit sizes and wraps item text into its box: pick the largest
// font size whose wrapped lines fit the height, mirroring what the canvas
// renderer will draw. Measurement is isolated behind a small interface so
// layout stays deterministic under test.
package textfit

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"corkboard/internal/memo"
)

// Measurer reports the advance width of a string at a font size.
type Measurer interface {
	Width(text, fontFamily string, size float64) float64
}

// FaceMeasurer measures with real truetype faces. Faces are cached per
// family and size; the zero value is not usable, construct with
// NewGoFontMeasurer or register families explicitly.
type FaceMeasurer struct {
	mu       sync.Mutex
	families map[string]*truetype.Font
	fallback *truetype.Font
	faces    map[faceKey]font.Face
	widths   *memo.Cache[widthKey, float64]
}

type faceKey struct {
	family string
	size   float64
}

// widthCacheSize bounds memoized string measurements; oldest fall out first.
const widthCacheSize = 200

type widthKey struct {
	text   string
	family string
	size   float64
}

// NewGoFontMeasurer returns a measurer loaded with the Go font family:
// regular (the fallback), bold, italic and mono.
func NewGoFontMeasurer() (*FaceMeasurer, error) {
	m := &FaceMeasurer{
		families: make(map[string]*truetype.Font),
		faces:    make(map[faceKey]font.Face),
		widths:   memo.New[widthKey, float64](widthCacheSize),
	}
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	m.fallback = regular
	m.families["sans-serif"] = regular
	for name, ttf := range map[string][]byte{
		"bold":      gobold.TTF,
		"italic":    goitalic.TTF,
		"monospace": gomono.TTF,
	} {
		f, err := truetype.Parse(ttf)
		if err != nil {
			return nil, err
		}
		m.families[name] = f
	}
	// Common board font names resolve onto the bundled faces.
	m.families["Courier New"] = m.families["monospace"]
	return m, nil
}

// Register adds a parsed font under a logical family name. Faces and widths
// measured under that name before the call are dropped.
func (m *FaceMeasurer) Register(family string, f *truetype.Font) {
	m.mu.Lock()
	m.families[family] = f
	for key := range m.faces {
		if key.family == family {
			delete(m.faces, key)
		}
	}
	m.mu.Unlock()
	m.widths.Clear()
}

// Face returns a cached face for family at size, falling back to the
// regular face for unknown families.
func (m *FaceMeasurer) Face(family string, size float64) font.Face {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := faceKey{family: family, size: size}
	if f, ok := m.faces[key]; ok {
		return f
	}
	tf := m.families[family]
	if tf == nil {
		tf = m.fallback
	}
	face := truetype.NewFace(tf, &truetype.Options{Size: size})
	m.faces[key] = face
	return face
}

// Width implements Measurer. Results are memoized; the faces themselves are
// not safe for concurrent use, so raw measurement stays serialized.
func (m *FaceMeasurer) Width(text, fontFamily string, size float64) float64 {
	key := widthKey{text: text, family: fontFamily, size: size}
	return m.widths.GetOrCompute(key, func() float64 {
		face := m.Face(fontFamily, size)
		m.mu.Lock()
		defer m.mu.Unlock()
		d := font.Drawer{Face: face}
		return float64(d.MeasureString(text)) / 64
	})
}
