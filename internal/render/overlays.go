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
	"corkboard/internal/geom"
	"corkboard/internal/pick"
)

const groupBorderPad = 15.0

// drawGroupBorders frames every non-empty group with a dashed border in
// the group's palette color and writes its name above the frame. Runs
// inside the world transform.
func (r *Renderer) drawGroupBorders(dc *gg.Context, b *domain.Board) {
	z := r.cam.Zoom
	for i := range b.Groups {
		g := &b.Groups[i]
		var box geom.Rect
		found := false
		for _, it := range b.Items {
			if it.GroupID != g.ID {
				continue
			}
			w, h := r.ItemDims(it)
			rect := geom.R(it.X, it.Y, w, h)
			if !found {
				box = rect
				found = true
			} else {
				box = box.Union(rect)
			}
		}
		if !found {
			continue
		}
		box = box.Expand(groupBorderPad)

		color := GroupColor(i)
		dc.SetHexColor(color)
		dc.SetLineWidth(2 / z)
		dc.SetDash(8/z, 5/z)
		dc.DrawRectangle(box.X, box.Y, box.W, box.H)
		dc.Stroke()
		dc.SetDash()

		if g.Name != "" {
			dc.SetFontFace(r.faces.Face(defaultFontFamily, 12/z))
			dc.DrawStringAnchored(g.Name, box.X, box.Y-8/z, 0, 1)
		}
	}
}

// drawOriginCross marks world (0,0) so users can find their way home
// after panning far out.
func (r *Renderer) drawOriginCross(dc *gg.Context) {
	z := r.cam.Zoom
	dc.SetRGBA(1, 1, 1, 0.4)
	dc.SetLineWidth(1.5 / z)
	dc.DrawLine(-12/z, 0, 12/z, 0)
	dc.Stroke()
	dc.DrawLine(0, -12/z, 0, 12/z)
	dc.Stroke()
	dc.DrawCircle(0, 0, 3/z)
	dc.Stroke()
}

// drawGuides paints snap alignment lines during drags. Runs inside the
// world transform; widths divide by zoom to stay hairline-thin on screen.
func (r *Renderer) drawGuides(dc *gg.Context) {
	z := r.cam.Zoom
	dc.SetHexColor(guideColor)
	dc.SetLineWidth(1 / z)
	dc.SetDash(6/z, 4/z)
	for _, s := range r.guides {
		dc.DrawLine(s.A.X, s.A.Y, s.B.X, s.B.Y)
		dc.Stroke()
	}
	dc.SetDash()
}

// drawBoxSelect paints the rubber-band rectangle in screen space.
func (r *Renderer) drawBoxSelect(dc *gg.Context, rect geom.Rect) {
	rect = rect.Normalized()
	hr, hg, hb := ParseHex(hoverColor)
	dc.SetRGBA(hr, hg, hb, 0.12)
	dc.DrawRectangle(rect.X, rect.Y, rect.W, rect.H)
	dc.Fill()
	dc.SetHexColor(hoverColor)
	dc.SetLineWidth(1.5)
	dc.SetDash(5, 3)
	dc.DrawRectangle(rect.X, rect.Y, rect.W, rect.H)
	dc.Stroke()
	dc.SetDash()
}

// drawHandles shows resize corners and the rotation knob, but only when
// exactly one item is selected. Handles live in screen space so their
// size is independent of zoom.
func (r *Renderer) drawHandles(dc *gg.Context, b *domain.Board) {
	if len(r.selected) != 1 {
		return
	}
	var it *domain.Item
	for id := range r.selected {
		it = b.ItemByID(id)
	}
	if it == nil {
		return
	}

	handles := r.picker.Handles(*it, r.cam)

	var nw, ne, knob *pick.Handle
	for i := range handles {
		switch handles[i].Kind {
		case pick.HandleNW:
			nw = &handles[i]
		case pick.HandleNE:
			ne = &handles[i]
		case pick.HandleRotate:
			knob = &handles[i]
		}
	}
	if nw != nil && ne != nil && knob != nil {
		dc.SetRGBA(1, 1, 1, 0.7)
		dc.SetLineWidth(1)
		dc.DrawLine((nw.X+ne.X)/2, (nw.Y+ne.Y)/2, knob.X, knob.Y)
		dc.Stroke()
	}

	for _, hd := range handles {
		if hd.Kind == pick.HandleRotate {
			dc.SetHexColor(knobColor)
			dc.DrawCircle(hd.X, hd.Y, pick.RotateHandleRadius)
			dc.Fill()
			dc.SetHexColor("#ffffff")
			dc.SetLineWidth(1.5)
			dc.DrawCircle(hd.X, hd.Y, pick.RotateHandleRadius)
			dc.Stroke()
			continue
		}
		half := pick.HandleSize / 2
		dc.SetHexColor("#ffffff")
		dc.DrawRectangle(hd.X-half, hd.Y-half, pick.HandleSize, pick.HandleSize)
		dc.Fill()
		dc.SetHexColor("#555555")
		dc.SetLineWidth(1)
		dc.DrawRectangle(hd.X-half, hd.Y-half, pick.HandleSize, pick.HandleSize)
		dc.Stroke()
	}
}
