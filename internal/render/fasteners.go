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

const (
	pinBodyColor = "#d64541"
	pinRimColor  = "#8c2420"
	tapeColor    = "#f0ead2"
	tapeLen      = 34.0
	tapeWidth    = 12.0
)

// drawFastener pins or tapes an image/document to the board. Items with
// no explicit fastener get the pushpin.
func (r *Renderer) drawFastener(dc *gg.Context, it domain.Item, w, h float64) {
	if it.Type != domain.ItemImage && it.Type != domain.ItemDocument {
		return
	}
	f := it.Data.FastenerType
	if f == "" {
		f = domain.FastenerPushpin
	}
	switch f {
	case domain.FastenerTapeTop:
		drawTape(dc, it.X+w/2, it.Y, -0.05)
	case domain.FastenerTapeTopBottom:
		drawTape(dc, it.X+w/2, it.Y, -0.05)
		drawTape(dc, it.X+w/2, it.Y+h, 0.04)
	case domain.FastenerTapeCorners:
		drawTape(dc, it.X, it.Y, -gg.Radians(45))
		drawTape(dc, it.X+w, it.Y, gg.Radians(45))
		drawTape(dc, it.X, it.Y+h, gg.Radians(45))
		drawTape(dc, it.X+w, it.Y+h, -gg.Radians(45))
	default:
		drawPushpin(dc, it.X+w/2, it.Y+4)
	}
}

func drawPushpin(dc *gg.Context, cx, cy float64) {
	dc.SetRGBA(0, 0, 0, 0.3)
	dc.DrawCircle(cx+1, cy+2, 4.5)
	dc.Fill()

	dc.SetHexColor(pinBodyColor)
	dc.DrawCircle(cx, cy, 5)
	dc.Fill()
	dc.SetHexColor(pinRimColor)
	dc.SetLineWidth(1)
	dc.DrawCircle(cx, cy, 5)
	dc.Stroke()

	dc.SetRGBA(1, 1, 1, 0.6)
	dc.DrawCircle(cx-1.5, cy-1.5, 1.5)
	dc.Fill()
}

// drawTape lays a translucent strip centered on (cx, cy), tilted by the
// given angle in radians.
func drawTape(dc *gg.Context, cx, cy, angle float64) {
	dc.Push()
	dc.RotateAbout(angle, cx, cy)

	tr, tg, tb := ParseHex(tapeColor)
	dc.SetRGBA(tr, tg, tb, 0.55)
	dc.DrawRectangle(cx-tapeLen/2, cy-tapeWidth/2, tapeLen, tapeWidth)
	dc.Fill()

	dc.SetRGBA(1, 1, 1, 0.35)
	dc.SetLineWidth(0.75)
	dc.DrawLine(cx-tapeLen/2, cy-tapeWidth/2, cx+tapeLen/2, cy-tapeWidth/2)
	dc.Stroke()
	dc.DrawLine(cx-tapeLen/2, cy+tapeWidth/2, cx+tapeLen/2, cy+tapeWidth/2)
	dc.Stroke()

	dc.Pop()
}
