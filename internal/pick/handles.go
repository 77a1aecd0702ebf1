/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package pick

import (
	"math"

	"corkboard/internal/camera"
	"corkboard/internal/domain"
	"corkboard/internal/geom"
)

// HandleKind identifies one of the manipulation handles shown around the
// selected item.
type HandleKind string

const (
	HandleNW     HandleKind = "nw"
	HandleNE     HandleKind = "ne"
	HandleSW     HandleKind = "sw"
	HandleSE     HandleKind = "se"
	HandleRotate HandleKind = "rotate"
)

const (
	// HandleSize is the edge length of a corner handle in screen pixels.
	HandleSize = 12.0
	// RotateHandleRadius is the radius of the rotation knob in pixels.
	RotateHandleRadius = 7.0
	// rotateHandleGap is the screen distance between the top edge and
	// the rotation knob.
	rotateHandleGap = 30.0
)

// Handle is a manipulation affordance positioned in screen space.
type Handle struct {
	Kind HandleKind
	X, Y float64
}

// Handles returns the four corner handles plus the rotation knob for an
// item, already projected to screen coordinates. The positions follow
// the item's rotation so the handles stay glued to its visual corners.
func (p *Picker) Handles(it domain.Item, cam *camera.Camera) []Handle {
	w, h := p.dims(it)
	cx, cy := it.X+w/2, it.Y+h/2

	rot := func(wx, wy float64) (float64, float64) {
		p := geom.Pt{X: wx, Y: wy}
		if it.Rotation != 0 {
			p = geom.RotateAround(p, geom.Pt{X: cx, Y: cy}, it.Rotation)
		}
		return cam.WorldToScreen(p.X, p.Y)
	}

	nwx, nwy := rot(it.X, it.Y)
	nex, ney := rot(it.X+w, it.Y)
	swx, swy := rot(it.X, it.Y+h)
	sex, sey := rot(it.X+w, it.Y+h)

	// The knob sits a fixed screen distance above the rotated top edge.
	tcx, tcy := rot(cx, it.Y)
	scx, scy := cam.WorldToScreen(cx, cy)
	ux, uy := tcx-scx, tcy-scy
	if d := math.Hypot(ux, uy); d > 0 {
		ux, uy = ux/d, uy/d
	} else {
		ux, uy = 0, -1
	}

	return []Handle{
		{Kind: HandleNW, X: nwx, Y: nwy},
		{Kind: HandleNE, X: nex, Y: ney},
		{Kind: HandleSW, X: swx, Y: swy},
		{Kind: HandleSE, X: sex, Y: sey},
		{Kind: HandleRotate, X: tcx + ux*rotateHandleGap, Y: tcy + uy*rotateHandleGap},
	}
}

// HandleAt reports which handle, if any, lies under a screen point. The
// rotation knob is checked first since it can overlap a corner on very
// small items.
func (p *Picker) HandleAt(it domain.Item, cam *camera.Camera, sx, sy float64) (HandleKind, bool) {
	handles := p.Handles(it, cam)
	for i := len(handles) - 1; i >= 0; i-- {
		hd := handles[i]
		if hd.Kind == HandleRotate {
			if math.Hypot(sx-hd.X, sy-hd.Y) <= RotateHandleRadius {
				return hd.Kind, true
			}
			continue
		}
		half := HandleSize / 2
		if geom.R(hd.X-half, hd.Y-half, HandleSize, HandleSize).Contains(geom.Pt{X: sx, Y: sy}) {
			return hd.Kind, true
		}
	}
	return "", false
}
