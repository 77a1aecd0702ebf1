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
)

// defaultCanvasColor is the cork tone used when a board has no explicit
// canvas color.
const defaultCanvasColor = "#c19a6b"

// drawBackground fills the visible world with the canvas color and lays the
// optional background image centered on the world origin. Runs under the
// world transform.
func (r *Renderer) drawBackground(dc *gg.Context, b *domain.Board) {
	vis := r.cam.VisibleWorld()
	c := b.CanvasColor
	if c == "" {
		c = defaultCanvasColor
	}
	dc.SetHexColor(c)
	dc.DrawRectangle(vis.X, vis.Y, vis.W, vis.H)
	dc.Fill()

	if b.BackgroundImage == "" {
		return
	}
	img, st := r.assets.Lookup(b.BackgroundImage)
	if st != assets.StateReady {
		return
	}
	scale := b.BackgroundScale
	if scale <= 0 {
		scale = 1
	}
	dc.Push()
	dc.Scale(scale, scale)
	dc.DrawImageAnchored(img, 0, 0, 0.5, 0.5)
	dc.Pop()
}

// drawBoardChrome draws board-type decoration in screen space atop the
// background: the legal pad's header bar and the spiral notebook's frayed
// left edge. Runs with the identity transform.
func (r *Renderer) drawBoardChrome(dc *gg.Context, b *domain.Board) {
	switch b.BoardType {
	case domain.BoardLegal:
		r.drawLegalHeader(dc)
	case domain.BoardSpiral:
		r.drawSpiralEdge(dc)
	}
}

func (r *Renderer) drawLegalHeader(dc *gg.Context) {
	w := float64(r.w)

	// Binding strip with a stitch line under it.
	dc.SetRGBA(0.45, 0.35, 0.2, 0.9)
	dc.DrawRectangle(0, 0, w, 26)
	dc.Fill()

	dc.SetRGBA(0.9, 0.85, 0.7, 0.8)
	dc.SetLineWidth(1.5)
	dc.SetDash(4, 4)
	dc.DrawLine(0, 20, w, 20)
	dc.Stroke()
	dc.SetDash()
}

func (r *Renderer) drawSpiralEdge(dc *gg.Context) {
	h := float64(r.h)

	// Torn paper strip along the left border.
	dc.SetRGBA(0.96, 0.95, 0.9, 0.95)
	dc.MoveTo(0, 0)
	for y := 0.0; y < h; y += 14 {
		dc.LineTo(20+6*frayOffset(y), y)
	}
	dc.LineTo(0, h)
	dc.ClosePath()
	dc.Fill()

	// Coil rings.
	dc.SetRGBA(0.35, 0.35, 0.38, 1)
	dc.SetLineWidth(2)
	for y := 24.0; y < h-12; y += 34 {
		dc.DrawCircle(12, y, 6)
		dc.Stroke()
	}
}

// frayOffset is a cheap deterministic ripple for the torn edge.
func frayOffset(y float64) float64 {
	v := int(y/14) % 3
	return float64(v) / 2
}
