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

	"corkboard/internal/assets"
	"corkboard/internal/domain"
	"corkboard/internal/textfit"
)

// Type defaults applied when a record carries no explicit styling.
const (
	defaultNoteColor     = "#ffeb3b"
	defaultNoteText      = "#333333"
	defaultTextItemText  = "#ffffff"
	defaultStandardColor = "#9e9e9e"
	defaultFontFamily    = "sans-serif"

	noteTextPad      = 8.0
	noteStartSize    = 14.0
	textItemMargin   = 4.0
	docTextTop       = 10.0
	docMarginRight   = 6.0
	docRuledMarginL  = 16.0
	docPlainMarginL  = 8.0
	imageFramePad    = 2.0
	placeholderColor = "#d8d8d8"
)

// drawItems paints all visible items bottom to top; the dragged item, if
// any, is lifted to the very top for the duration of the drag.
func (r *Renderer) drawItems(dc *gg.Context, b *domain.Board) {
	var deferred *domain.Item
	for _, idx := range domain.DrawOrder(b) {
		it := &b.Items[idx]
		w, h := r.ItemDims(*it)
		if !r.cam.IsVisible(it.X, it.Y, w, h) {
			continue
		}
		if it.ID == r.dragged {
			deferred = it
			continue
		}
		r.drawItem(dc, b, *it, w, h)
	}
	if deferred != nil {
		w, h := r.ItemDims(*deferred)
		r.drawItem(dc, b, *deferred, w, h)
	}
}

func (r *Renderer) drawItem(dc *gg.Context, b *domain.Board, it domain.Item, w, h float64) {
	dc.Push()
	if it.Rotation != 0 {
		dc.RotateAbout(gg.Radians(it.Rotation), it.X+w/2, it.Y+h/2)
	}
	// Text items float without a body, so nothing to shade.
	if it.Type != domain.ItemText && it.Data.Shadow != domain.ShadowNone {
		dc.SetRGBA(0, 0, 0, 0.25)
		dc.DrawRectangle(it.X+3, it.Y+4, w, h)
		dc.Fill()
	}
	if r.showGroupBorders && it.GroupID != "" && b.GroupByID(it.GroupID) != nil {
		gr, ggr, gb := ParseHex(groupGlow)
		dc.SetRGBA(gr, ggr, gb, 0.4)
		dc.DrawRectangle(it.X-3, it.Y-3, w+6, h+6)
		dc.Fill()
	}

	switch it.Type {
	case domain.ItemNote:
		r.drawNoteBody(dc, it, w, h)
	case domain.ItemText:
		r.drawTextBody(dc, it, w, h)
	case domain.ItemImage:
		r.drawImageBody(dc, it, w, h)
	case domain.ItemDocument:
		r.drawDocumentBody(dc, it, w, h)
	default:
		r.drawStandardBody(dc, it, w, h)
	}

	r.drawFastener(dc, it, w, h)
	r.drawItemBorder(dc, it, b, w, h)
	dc.Pop()
}

func (r *Renderer) drawNoteBody(dc *gg.Context, it domain.Item, w, h float64) {
	c := it.Color
	if c == "" {
		c = defaultNoteColor
	}
	dc.SetHexColor(c)
	dc.DrawRectangle(it.X, it.Y, w, h)
	dc.Fill()

	if it.Data.Text == "" {
		return
	}
	fit := textfit.FitSimple(r.faces, it.Data.Text, fontOf(it), w-2*noteTextPad, h-2*noteTextPad, noteStartSize)
	tc := it.Data.TextColor
	if tc == "" {
		tc = defaultNoteText
	}
	r.drawFitCentered(dc, fit, tc, fontOf(it), it.X+w/2, it.Y+h/2)
}

func (r *Renderer) drawTextBody(dc *gg.Context, it domain.Item, w, h float64) {
	if it.Data.Text == "" {
		return
	}
	fit := r.fitter.Fit(it.Data.Text, w, h, fontOf(it), textItemMargin, textItemMargin)
	tc := it.Data.TextColor
	if tc == "" {
		tc = defaultTextItemText
	}
	r.drawFitCentered(dc, fit, tc, fontOf(it), it.X+w/2, it.Y+h/2)
}

func (r *Renderer) drawImageBody(dc *gg.Context, it domain.Item, w, h float64) {
	border := it.Data.BorderColor
	if border == "" {
		border = domain.BorderWhite
	}

	px, py, pw, ph := it.X, it.Y, w, h
	if border != domain.BorderNone {
		bc := "#ffffff"
		if border == domain.BorderBlack {
			bc = "#111111"
		}
		dc.SetHexColor(bc)
		dc.DrawRectangle(it.X, it.Y, w, h)
		dc.Fill()
		px += imageFramePad
		py += imageFramePad
		pw -= 2 * imageFramePad
		ph -= 2 * imageFramePad
	}
	if it.Data.Preset == domain.PresetPortrait {
		ph -= domain.PolaroidBottomMargin
	}

	img, st := r.assets.Lookup(it.Data.ImageURL)
	switch st {
	case assets.StateReady:
		b := img.Bounds()
		dc.Push()
		dc.Translate(px, py)
		dc.Scale(pw/float64(b.Dx()), ph/float64(b.Dy()))
		dc.DrawImage(img, 0, 0)
		dc.Pop()
	case assets.StateLoading:
		r.drawPlaceholder(dc, "Loading...", px, py, pw, ph)
	default:
		r.drawPlaceholder(dc, "No image", px, py, pw, ph)
	}

	// The polaroid strip doubles as a caption area.
	if it.Data.Preset == domain.PresetPortrait && it.Label != "" {
		dc.SetFontFace(r.faces.Face(defaultFontFamily, 9))
		dc.SetHexColor("#44403a")
		dc.DrawStringAnchored(it.Label, it.X+w/2, it.Y+h-domain.PolaroidBottomMargin/2-1, 0.5, 0.5)
	}
}

func (r *Renderer) drawPlaceholder(dc *gg.Context, msg string, x, y, w, h float64) {
	dc.SetHexColor(placeholderColor)
	dc.DrawRectangle(x, y, w, h)
	dc.Fill()
	dc.SetFontFace(r.faces.Face(defaultFontFamily, 10))
	dc.SetHexColor("#666666")
	dc.DrawStringAnchored(msg, x+w/2, y+h/2, 0.5, 0.5)
}

func (r *Renderer) drawStandardBody(dc *gg.Context, it domain.Item, w, h float64) {
	c := it.Color
	if c == "" {
		c = defaultStandardColor
	}
	dc.SetHexColor(c)
	dc.DrawRectangle(it.X, it.Y, w, h)
	dc.Fill()

	if it.Label != "" {
		dc.SetFontFace(r.faces.Face("bold", 12))
		dc.SetHexColor(ContrastColor(c))
		dc.DrawStringAnchored(it.Label, it.X+w/2, it.Y+h/2, 0.5, 0.5)
	}
}

// drawFitCentered paints a fitted text block centered on (cx, cy).
func (r *Renderer) drawFitCentered(dc *gg.Context, fit textfit.Fit, textColor, family string, cx, cy float64) {
	if len(fit.Lines) == 0 {
		return
	}
	dc.SetFontFace(r.faces.Face(family, fit.FontSize))
	dc.SetHexColor(textColor)
	step := fit.FontSize * fit.LineHeight
	y := cy - fit.Height()/2 + step/2
	for _, line := range fit.Lines {
		if line != "" {
			dc.DrawStringAnchored(line, cx, y, 0.5, 0.5)
		}
		y += step
	}
}

func fontOf(it domain.Item) string {
	if it.Data.Font != "" {
		return it.Data.Font
	}
	return defaultFontFamily
}

// drawItemBorder draws the state border: the connection-draw pulse wins,
// then selection, then the group highlight, then plain hover.
func (r *Renderer) drawItemBorder(dc *gg.Context, it domain.Item, b *domain.Board, w, h float64) {
	switch {
	case it.ID == r.pulseTarget:
		pr, pg, pb := ParseHex(pulseColor)
		dc.SetRGBA(pr, pg, pb, r.pulsePhase())
		dc.SetLineWidth(pulseBorderWidth)
		dc.DrawRectangle(it.X, it.Y, w, h)
		dc.Stroke()
	case r.isSelected(it.ID):
		dc.SetHexColor(selectColor)
		dc.SetLineWidth(selectBorderWidth)
		dc.SetDash(selectDash...)
		dc.DrawRectangle(it.X, it.Y, w, h)
		dc.Stroke()
		dc.SetDash()
	case r.showGroupBorders && it.GroupID != "" && b.GroupByID(it.GroupID) != nil:
		dc.SetHexColor(groupGlow)
		dc.SetLineWidth(hoverBorderWidth)
		dc.SetDash(4, 3)
		dc.DrawRectangle(it.X, it.Y, w, h)
		dc.Stroke()
		dc.SetDash()
	case it.ID == r.hoverItem:
		dc.SetHexColor(hoverColor)
		dc.SetLineWidth(hoverBorderWidth)
		dc.DrawRectangle(it.X, it.Y, w, h)
		dc.Stroke()
	}
}

func (r *Renderer) isSelected(id string) bool {
	_, ok := r.selected[id]
	return ok
}
