/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textfit

import (
	"math"
	"strings"

	"corkboard/internal/memo"
)

// Line heights as a multiple of the font size.
const (
	LineHeight       = 1.2
	SimpleLineHeight = 1.3
)

// startFactor scales the starting font size with the box perimeter; a
// 150x150 note starts the search at 24px.
const startFactor = 0.08

// MinFontSize is the hard floor of the fit search.
const MinFontSize = 2

// Fit is a sized and wrapped text layout.
type Fit struct {
	FontSize   float64
	Lines      []string
	LineHeight float64
}

// Height returns the total laid-out height.
func (f Fit) Height() float64 {
	return float64(len(f.Lines)) * f.FontSize * f.LineHeight
}

// fitCacheSize bounds the memoized layouts; oldest fall out first.
const fitCacheSize = 50

type fitKey struct {
	text    string
	w, h    float64
	font    string
	marginL float64
	marginR float64
}

// Fitter memoizes fit results per (text, box, font, margins).
type Fitter struct {
	m     Measurer
	cache *memo.Cache[fitKey, Fit]
}

// NewFitter wraps a measurer with a bounded result cache.
func NewFitter(m Measurer) *Fitter {
	return &Fitter{m: m, cache: memo.New[fitKey, Fit](fitCacheSize)}
}

// Fit sizes text into a box. Identical inputs return the identical cached
// layout.
func (f *Fitter) Fit(text string, w, h float64, fontFamily string, marginL, marginR float64) Fit {
	key := fitKey{text: text, w: w, h: h, font: fontFamily, marginL: marginL, marginR: marginR}
	return f.cache.GetOrCompute(key, func() Fit {
		return FitText(f.m, text, w, h, fontFamily, marginL, marginR)
	})
}

// Clear drops the memoized layouts, e.g. after the draw context was lost.
func (f *Fitter) Clear() { f.cache.Clear() }

// StartSize returns the initial font size for a box.
func StartSize(w, h float64) float64 {
	s := math.Round((w + h) * startFactor)
	if s < MinFontSize {
		return MinFontSize
	}
	return s
}

// FitText finds the largest font size in [MinFontSize, StartSize] whose
// wrapped lines fit the box height, wrapping against the box width minus
// margins. The floor is returned even when its layout still overflows.
func FitText(m Measurer, text string, w, h float64, fontFamily string, marginL, marginR float64) Fit {
	avail := w - marginL - marginR
	size := StartSize(w, h)
	for {
		lines := Wrap(m, text, fontFamily, size, avail)
		total := float64(len(lines)) * size * LineHeight
		if total <= h || size <= MinFontSize {
			return Fit{FontSize: size, Lines: lines, LineHeight: LineHeight}
		}
		size--
	}
}

// FitSimple is the small-note variant: it starts at a caller-supplied size,
// steps down by 2 until below 8px and by 1 after that, and floors at 6px.
func FitSimple(m Measurer, text string, fontFamily string, w, h, startSize float64) Fit {
	size := startSize
	for {
		lines := Wrap(m, text, fontFamily, size, w)
		total := float64(len(lines)) * size * SimpleLineHeight
		if total <= h || size <= 6 {
			return Fit{FontSize: size, Lines: lines, LineHeight: SimpleLineHeight}
		}
		if size >= 8 {
			size -= 2
		} else {
			size--
		}
		if size < 6 {
			size = 6
		}
	}
}

// Wrap splits text on explicit newlines, then greedily word-wraps each
// paragraph to the available width. A single word wider than the box gets a
// line of its own and overflows.
func Wrap(m Measurer, text, fontFamily string, size, avail float64) []string {
	if text == "" {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := words[0]
		for _, word := range words[1:] {
			joined := cur + " " + word
			if m.Width(joined, fontFamily, size) <= avail {
				cur = joined
				continue
			}
			lines = append(lines, cur)
			cur = word
		}
		lines = append(lines, cur)
	}
	return lines
}
