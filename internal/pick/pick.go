/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package pick maps pointer positions to board elements. Items are tested
// against their axis-aligned box in world space, topmost first; connections
// by sampled distance to their curve. Rotation is deliberately ignored, so
// a rotated item is picked by its unrotated box. Tolerances are given in
// screen pixels and divided by the zoom, keeping the clickable slop
// constant on screen.
package pick

import (
	"corkboard/internal/camera"
	"corkboard/internal/domain"
	"corkboard/internal/geom"
)

// Dims resolves the drawn size of an item; the renderer supplies one backed
// by the asset cache so image items measure by their real aspect.
type Dims func(domain.Item) (w, h float64)

// DefaultConnThreshold is the screen-pixel pick distance for connections.
const DefaultConnThreshold = 12.0

// fallbackTol widens a missed exact hit to absorb drag-start jitter.
const fallbackTol = 3.0

// curveSamples intervals give 21 sampled points along each connection.
const curveSamples = 20

// Picker hit-tests one board with a fixed dimension resolver.
type Picker struct {
	dims Dims
}

// New returns a Picker. A nil dims falls back to preset-table sizes with
// an unknown image aspect.
func New(dims Dims) *Picker {
	if dims == nil {
		dims = func(it domain.Item) (float64, float64) {
			return domain.BaseSize(it, 0)
		}
	}
	return &Picker{dims: dims}
}

// AttachPoint is where a connection meets an item: the center lifted by a
// quarter of the item height.
func AttachPoint(it domain.Item, w, h float64) geom.Pt {
	return geom.Pt{X: it.X + w/2, Y: it.Y + h/2 - h/4}
}

// CurveBetween builds the connection curve for two endpoint items.
func (p *Picker) CurveBetween(from, to domain.Item) geom.Curve {
	fw, fh := p.dims(from)
	tw, th := p.dims(to)
	return geom.ConnCurve(AttachPoint(from, fw, fh), AttachPoint(to, tw, th))
}

// ItemRect returns an item's world-space box.
func (p *Picker) ItemRect(it domain.Item) geom.Rect {
	w, h := p.dims(it)
	return geom.R(it.X, it.Y, w, h)
}

// ItemAt returns the topmost item under a screen point, or nil. tol is
// extra slop in screen pixels; with zero tolerance a miss is retried once
// with the fallback slop.
func (p *Picker) ItemAt(b *domain.Board, cam *camera.Camera, sx, sy, tol float64) *domain.Item {
	wx, wy := cam.ScreenToWorld(sx, sy)
	pt := geom.Pt{X: wx, Y: wy}

	if it := p.itemAtWorld(b, pt, tol/cam.Zoom); it != nil {
		return it
	}
	if tol == 0 {
		return p.itemAtWorld(b, pt, fallbackTol/cam.Zoom)
	}
	return nil
}

func (p *Picker) itemAtWorld(b *domain.Board, pt geom.Pt, slop float64) *domain.Item {
	order := domain.DrawOrder(b)
	for i := len(order) - 1; i >= 0; i-- {
		it := &b.Items[order[i]]
		if p.ItemRect(*it).Expand(slop).Contains(pt) {
			return it
		}
	}
	return nil
}

// ConnectionAt returns the first connection whose curve passes within the
// threshold (screen pixels) of a screen point, or nil. Connections with a
// missing endpoint are skipped.
func (p *Picker) ConnectionAt(b *domain.Board, cam *camera.Camera, sx, sy, threshold float64) *domain.Connection {
	if threshold <= 0 {
		threshold = DefaultConnThreshold
	}
	wx, wy := cam.ScreenToWorld(sx, sy)
	pt := geom.Pt{X: wx, Y: wy}
	limit := threshold / cam.Zoom

	for i := range b.Connections {
		c := &b.Connections[i]
		from := b.ItemByID(c.FromItem)
		to := b.ItemByID(c.ToItem)
		if from == nil || to == nil {
			continue
		}
		curve := p.CurveBetween(*from, *to)
		if curve.MinDistance(pt, curveSamples) <= limit {
			return c
		}
	}
	return nil
}

// ItemsInRect returns the ids of all items whose box intersects a world
// rectangle, used to complete a box selection.
func (p *Picker) ItemsInRect(b *domain.Board, r geom.Rect) []string {
	r = r.Normalized()
	var ids []string
	for _, it := range b.Items {
		if p.ItemRect(it).Intersects(r) {
			ids = append(ids, it.ID)
		}
	}
	return ids
}
