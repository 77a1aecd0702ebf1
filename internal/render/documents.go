/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"github.com/fogleman/gg"

	"corkboard/internal/domain"
)

// Paper palette shared by the document presets.
const (
	paperColor      = "#faf8f0"
	legalPaperColor = "#fdf6c9"
	ruleColor       = "#bcd6e8"
	legalRuleColor  = "#9bb8d4"
	gridColor       = "#e0ded6"
	marginRuleColor = "#e88a8a"
	coilColor       = "#8a8a8a"
	punchColor      = "#c19a6b"

	ruleSpacing = 12.0
	gridSpacing = 10.0
)

func (r *Renderer) drawDocumentBody(dc *gg.Context, it domain.Item, w, h float64) {
	preset := it.Data.Preset
	if preset == "" {
		preset = domain.DocBlank
	}

	paper := paperColor
	if preset == domain.DocLegal {
		paper = legalPaperColor
	}
	dc.SetHexColor(paper)
	dc.DrawRectangle(it.X, it.Y, w, h)
	dc.Fill()

	switch preset {
	case domain.DocLooseleaf:
		r.drawRules(dc, it, w, h, ruleColor)
		r.drawMarginRule(dc, it, h)
		r.drawPunchHoles(dc, it, h)
	case domain.DocGrid:
		r.drawGrid(dc, it, w, h)
	case domain.DocLegal:
		r.drawRules(dc, it, w, h, legalRuleColor)
		r.drawMarginRule(dc, it, h)
	case domain.DocSpiral:
		r.drawRules(dc, it, w, h, ruleColor)
		r.drawCoil(dc, it, h)
	}

	r.drawEffect(dc, it, w, h)

	if it.Data.Text == "" {
		return
	}
	marginL := docPlainMarginL
	switch preset {
	case domain.DocLooseleaf, domain.DocLegal:
		marginL = docRuledMarginL
	case domain.DocSpiral:
		marginL = 12.0
	}
	fit := r.fitter.Fit(it.Data.Text, w, h-docTextTop, fontOf(it), marginL, docMarginRight)
	if len(fit.Lines) == 0 {
		return
	}
	tc := it.Data.TextColor
	if tc == "" {
		tc = "#3a3a3a"
	}
	dc.SetFontFace(r.faces.Face(fontOf(it), fit.FontSize))
	dc.SetHexColor(tc)
	step := fit.FontSize * fit.LineHeight
	y := it.Y + docTextTop + step/2
	for _, line := range fit.Lines {
		if y > it.Y+h-step/2 {
			break
		}
		if line != "" {
			dc.DrawStringAnchored(line, it.X+marginL, y, 0, 0.5)
		}
		y += step
	}
}

func (r *Renderer) drawRules(dc *gg.Context, it domain.Item, w, h float64, color string) {
	dc.SetHexColor(color)
	dc.SetLineWidth(0.75)
	for y := it.Y + ruleSpacing*1.5; y < it.Y+h-2; y += ruleSpacing {
		dc.DrawLine(it.X+2, y, it.X+w-2, y)
		dc.Stroke()
	}
}

func (r *Renderer) drawMarginRule(dc *gg.Context, it domain.Item, h float64) {
	dc.SetHexColor(marginRuleColor)
	dc.SetLineWidth(1)
	dc.DrawLine(it.X+docRuledMarginL-2, it.Y+2, it.X+docRuledMarginL-2, it.Y+h-2)
	dc.Stroke()
}

func (r *Renderer) drawGrid(dc *gg.Context, it domain.Item, w, h float64) {
	dc.SetHexColor(gridColor)
	dc.SetLineWidth(0.5)
	for x := it.X + gridSpacing; x < it.X+w; x += gridSpacing {
		dc.DrawLine(x, it.Y, x, it.Y+h)
		dc.Stroke()
	}
	for y := it.Y + gridSpacing; y < it.Y+h; y += gridSpacing {
		dc.DrawLine(it.X, y, it.X+w, y)
		dc.Stroke()
	}
}

// drawPunchHoles renders the three-hole punch of a looseleaf page. The
// holes are filled with the canvas color so they read as cut-outs.
func (r *Renderer) drawPunchHoles(dc *gg.Context, it domain.Item, h float64) {
	dc.SetHexColor(punchColor)
	for _, f := range []float64{0.25, 0.5, 0.75} {
		dc.DrawCircle(it.X+6, it.Y+h*f, 2.5)
		dc.Fill()
	}
}

func (r *Renderer) drawCoil(dc *gg.Context, it domain.Item, h float64) {
	dc.SetHexColor(coilColor)
	dc.SetLineWidth(1.25)
	for y := it.Y + 7.0; y < it.Y+h-4; y += 14 {
		dc.DrawCircle(it.X+2, y, 4)
		dc.Stroke()
	}
}
