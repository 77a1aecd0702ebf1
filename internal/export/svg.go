/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"corkboard/internal/domain"
	"corkboard/internal/pick"
	"corkboard/internal/render"
)

// ExportBoardSVG writes the whole board as one SVG document. The viewBox
// uses world coordinates, so elements keep their model positions; width and
// height attributes carry the pixel size derived from the scale. Image items
// reference their source URL instead of embedding pixels.
func ExportBoardSVG(b *domain.Board, outPath string, opt Options) error {
	if b == nil {
		return fmt.Errorf("board is nil")
	}
	opt = opt.withDefaults()
	bounds := ContentBounds(b, opt.Margin)
	pxW := int(math.Ceil(bounds.W * opt.Scale))
	pxH := int(math.Ceil(bounds.H * opt.Scale))

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%dpx\" height=\"%dpx\" viewBox=\"%g %g %g %g\">\n",
		pxW, pxH, bounds.X, bounds.Y, bounds.W, bounds.H)
	wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n",
		bounds.X, bounds.Y, bounds.W, bounds.H, canvasColorOf(b))

	p := pick.New(nil)

	for i := range b.Connections {
		c := &b.Connections[i]
		from := b.ItemByID(c.FromItem)
		to := b.ItemByID(c.ToItem)
		if from == nil || to == nil {
			continue
		}
		curve := p.CurveBetween(*from, *to)
		col := c.Color
		if col == "" {
			col = exportTwineColor
		}
		wf("  <path d=\"M %g %g C %g %g, %g %g, %g %g\" fill=\"none\" stroke=\"%s\" stroke-width=\"%g\"/>\n",
			curve.P0.X, curve.P0.Y, curve.C1.X, curve.C1.Y, curve.C2.X, curve.C2.Y, curve.P3.X, curve.P3.Y,
			col, c.EffectiveWidth())
	}

	for _, idx := range domain.DrawOrder(b) {
		it := b.Items[idx]
		w, h := domain.BaseSize(it, 0)

		if it.Rotation != 0 {
			wf("  <g transform=\"rotate(%g %g %g)\">\n", it.Rotation, it.X+w/2, it.Y+h/2)
		}

		switch it.Type {
		case domain.ItemText:
			writeSVGTextBlock(wf, textOf(it), it.Data.TextColor, "#ffffff", 14, it.X+w/2, it.Y+h/2)
		case domain.ItemImage:
			wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"#ffffff\" stroke=\"%s\" stroke-width=\"0.5\"/>\n",
				it.X, it.Y, w, h, exportFrameColor)
			if it.Data.ImageURL != "" {
				wf("  <image x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" href=\"%s\" preserveAspectRatio=\"xMidYMid slice\"/>\n",
					it.X+2, it.Y+2, w-4, h-4, escAttr(it.Data.ImageURL))
			} else {
				wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n",
					it.X+2, it.Y+2, w-4, h-4, exportImageColor)
			}
			if it.Label != "" {
				wf("  <text x=\"%g\" y=\"%g\" text-anchor=\"middle\" font-family=\"sans-serif\" font-size=\"9\" fill=\"#44403a\">%s</text>\n",
					it.X+w/2, it.Y+h-6, escText(it.Label))
			}
		case domain.ItemNote:
			wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\" stroke=\"%s\" stroke-width=\"0.5\"/>\n",
				it.X, it.Y, w, h, itemFill(it), exportFrameColor)
			tc := it.Data.TextColor
			if tc == "" {
				tc = "#333333"
			}
			// Simple top-left stacking; the font family is a hint only.
			pad := 6.0
			cy := it.Y + pad + 12
			for _, line := range strings.Split(it.Data.Text, "\n") {
				if line != "" {
					wf("  <text x=\"%g\" y=\"%g\" font-family=\"%s\" font-size=\"12\" fill=\"%s\">%s</text>\n",
						it.X+pad, cy, escAttr(fontFamilyOf(it)), tc, escText(line))
				}
				cy += 12 * 1.2
			}
		default:
			fill := itemFill(it)
			wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\" stroke=\"%s\" stroke-width=\"0.5\"/>\n",
				it.X, it.Y, w, h, fill, exportFrameColor)
			if it.Label != "" {
				wf("  <text x=\"%g\" y=\"%g\" text-anchor=\"middle\" font-family=\"sans-serif\" font-size=\"12\" font-weight=\"bold\" fill=\"%s\">%s</text>\n",
					it.X+w/2, it.Y+h/2+4, render.ContrastColor(fill), escText(it.Label))
			}
		}

		if it.Rotation != 0 {
			wf("  </g>\n")
		}
	}

	wf("</svg>\n")

	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func writeSVGTextBlock(wf func(string, ...any), text, colorHex, fallback string, size, cx, cy float64) {
	if text == "" {
		return
	}
	if colorHex == "" {
		colorHex = fallback
	}
	lines := strings.Split(text, "\n")
	step := size * 1.2
	y := cy - step*float64(len(lines)-1)/2 + size*0.35
	for _, line := range lines {
		if line != "" {
			wf("  <text x=\"%g\" y=\"%g\" text-anchor=\"middle\" font-family=\"sans-serif\" font-size=\"%g\" fill=\"%s\">%s</text>\n",
				cx, y, size, colorHex, escText(line))
		}
		y += step
	}
}

func fontFamilyOf(it domain.Item) string {
	if it.Data.Font != "" {
		return it.Data.Font
	}
	return "sans-serif"
}

func escAttr(s string) string {
	// naive escaping sufficient for our simple usage
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, '&', 'q', 'u', 'o', 't', ';')
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '\n':
			out = append(out, ' ')
		case '\r':
			// skip
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
