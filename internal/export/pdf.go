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
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"corkboard/internal/domain"
	"corkboard/internal/pick"
	"corkboard/internal/render"
)

// ExportBoardPDF writes the board as a single-page vector PDF at outPath.
// The page is sized to the content bounds, one world unit per point, so the
// document scales without rasterization. Text uses built-in Helvetica to
// stay vector without font embedding; images and surface effects render as
// plain frames.
func ExportBoardPDF(b *domain.Board, name, outPath string, opt Options) error {
	if b == nil {
		return fmt.Errorf("board is nil")
	}
	opt = opt.withDefaults()
	bounds := ContentBounds(b, opt.Margin)
	ox, oy := -bounds.X, -bounds.Y

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: bounds.W, Ht: bounds.H},
		OrientationStr: "",
	})
	pdf.SetTitle(name, false)
	pdf.SetAuthor("Corkboard", false)
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: bounds.W, Ht: bounds.H})

	// Canvas background
	setFillColor(pdf, canvasColorOf(b))
	pdf.Rect(0, 0, bounds.W, bounds.H, "F")

	p := pick.New(nil)

	// Connections hang under the items, as on the canvas.
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
		setDrawColor(pdf, col)
		pdf.SetLineWidth(c.EffectiveWidth())
		pdf.CurveBezierCubic(
			curve.P0.X+ox, curve.P0.Y+oy,
			curve.C1.X+ox, curve.C1.Y+oy,
			curve.C2.X+ox, curve.C2.Y+oy,
			curve.P3.X+ox, curve.P3.Y+oy,
			"D",
		)
	}

	for _, idx := range domain.DrawOrder(b) {
		it := b.Items[idx]
		w, h := domain.BaseSize(it, 0)
		x, y := it.X+ox, it.Y+oy

		if it.Rotation != 0 {
			pdf.TransformBegin()
			// Canvas rotation is clockwise; gofpdf rotates counter-clockwise.
			pdf.TransformRotate(-it.Rotation, x+w/2, y+h/2)
		}

		switch it.Type {
		case domain.ItemText:
			drawPDFTextBlock(pdf, textOf(it), it.Data.TextColor, "#ffffff", 14, x+w/2, y+h/2)
		case domain.ItemImage:
			setFillColor(pdf, "#ffffff")
			setDrawColor(pdf, exportFrameColor)
			pdf.SetLineWidth(0.5)
			pdf.Rect(x, y, w, h, "FD")
			setFillColor(pdf, exportImageColor)
			pdf.Rect(x+2, y+2, w-4, h-4, "F")
			if it.Label != "" {
				drawPDFCentered(pdf, it.Label, "#44403a", 9, x+w/2, y+h-6)
			}
		case domain.ItemNote:
			setFillColor(pdf, itemFill(it))
			setDrawColor(pdf, exportFrameColor)
			pdf.SetLineWidth(0.5)
			pdf.Rect(x, y, w, h, "FD")
			tc := it.Data.TextColor
			if tc == "" {
				tc = "#333333"
			}
			// Simple top-left flow; overflow is not clipped.
			pad := 6.0
			cy := y + pad + 12
			pdf.SetFont("Helvetica", "", 12)
			setTextColor(pdf, tc)
			for _, line := range strings.Split(it.Data.Text, "\n") {
				pdf.Text(x+pad, cy, line)
				cy += 12 * 1.2
			}
		default:
			fill := itemFill(it)
			setFillColor(pdf, fill)
			setDrawColor(pdf, exportFrameColor)
			pdf.SetLineWidth(0.5)
			pdf.Rect(x, y, w, h, "FD")
			if it.Label != "" {
				drawPDFCentered(pdf, it.Label, render.ContrastColor(fill), 12, x+w/2, y+h/2)
			}
		}

		if it.Rotation != 0 {
			pdf.TransformEnd()
		}
	}

	if !filepath.IsAbs(outPath) {
		if abs, err := filepath.Abs(outPath); err == nil {
			outPath = abs
		}
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func textOf(it domain.Item) string {
	if it.Data.Text != "" {
		return it.Data.Text
	}
	return it.Label
}

// drawPDFTextBlock stacks lines centered on (cx, cy).
func drawPDFTextBlock(pdf *gofpdf.Fpdf, text, colorHex, fallback string, size, cx, cy float64) {
	if text == "" {
		return
	}
	if colorHex == "" {
		colorHex = fallback
	}
	lines := strings.Split(text, "\n")
	step := size * 1.2
	y := cy - step*float64(len(lines)-1)/2
	for _, line := range lines {
		drawPDFCentered(pdf, line, colorHex, size, cx, y)
		y += step
	}
}

func drawPDFCentered(pdf *gofpdf.Fpdf, s, colorHex string, size, cx, cy float64) {
	pdf.SetFont("Helvetica", "", size)
	setTextColor(pdf, colorHex)
	pdf.Text(cx-pdf.GetStringWidth(s)/2, cy+size*0.35, s)
}

func setDrawColor(pdf *gofpdf.Fpdf, hex string) {
	r, g, b := render.ParseHex(hex)
	pdf.SetDrawColor(int(r*255), int(g*255), int(b*255))
}

func setFillColor(pdf *gofpdf.Fpdf, hex string) {
	r, g, b := render.ParseHex(hex)
	pdf.SetFillColor(int(r*255), int(g*255), int(b*255))
}

func setTextColor(pdf *gofpdf.Fpdf, hex string) {
	r, g, b := render.ParseHex(hex)
	pdf.SetTextColor(int(r*255), int(g*255), int(b*255))
}
