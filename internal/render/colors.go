/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"corkboard/internal/geom"
)

// Styling constants for selection, hover and connection-endpoint pulse.
const (
	hoverBorderWidth  = 2.0
	selectBorderWidth = 3.0
	pulseBorderWidth  = 3.0

	hoverColor  = "#ffd700"
	selectColor = "#ff0000"
	pulseColor  = "#9932cc"
	groupGlow   = "#b8a6d9"
	guideColor  = "#00c2ff"
	knobColor   = "#4caf50"
)

// selectDash is the dash pattern of the selected-item border.
var selectDash = []float64{6, 4}

// groupPalette assigns stable border colors to groups by index.
var groupPalette = []string{
	"#e6194b", "#3cb44b", "#4363d8", "#f58231",
	"#911eb4", "#46f0f0", "#f032e6", "#bcf60c",
}

// GroupColor returns the palette color of the nth group.
func GroupColor(n int) string {
	if n < 0 {
		n = -n
	}
	return groupPalette[n%len(groupPalette)]
}

// ParseHex parses #rgb or #rrggbb into components in [0, 1]. Unparseable
// input yields mid gray, so a malformed stored color degrades visibly but
// harmlessly.
func ParseHex(s string) (r, g, b float64) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6:
	default:
		return 0.5, 0.5, 0.5
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0.5, 0.5, 0.5
	}
	return float64(v>>16&0xff) / 255, float64(v>>8&0xff) / 255, float64(v&0xff) / 255
}

// Shade shifts a hex color's brightness by delta in [-1, 1] and returns it
// as hex again.
func Shade(s string, delta float64) string {
	r, g, b := ParseHex(s)
	clamp := func(v float64) int {
		return int(geom.Clamp(v+delta, 0, 1)*255 + 0.5)
	}
	return fmt.Sprintf("#%02x%02x%02x", clamp(r), clamp(g), clamp(b))
}

// Luminance returns perceived brightness in [0, 1].
func Luminance(s string) float64 {
	r, g, b := ParseHex(s)
	return 0.299*r + 0.587*g + 0.114*b
}

// ContrastColor picks black or white for legible text on a background.
func ContrastColor(bg string) string {
	if Luminance(bg) > 0.5 {
		return "#000000"
	}
	return "#ffffff"
}

// rgba builds a color.Color from components in [0, 1].
func rgba(r, g, b, a float64) color.Color {
	return color.NRGBA{
		R: uint8(geom.Clamp(r, 0, 1)*255 + 0.5),
		G: uint8(geom.Clamp(g, 0, 1)*255 + 0.5),
		B: uint8(geom.Clamp(b, 0, 1)*255 + 0.5),
		A: uint8(geom.Clamp(a, 0, 1)*255 + 0.5),
	}
}
