/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package camera maps between world coordinates, where board items live,
// and screen coordinates on the canvas. The transform is
// translate(X, Y) followed by scale(Zoom), so
// world = (screen - offset) / zoom and screen = world*zoom + offset.
package camera

import "corkboard/internal/geom"

// Zoom bounds.
const (
	MinZoom = 0.1
	MaxZoom = 5.0
)

// cullMargin widens the visibility frustum so items partially off screen
// and connection sag near the edge still draw.
const cullMargin = 100.0

// Camera is the viewport state. ViewW/ViewH are the canvas size in screen
// pixels and feed the visibility frustum.
type Camera struct {
	X, Y  float64
	Zoom  float64
	ViewW float64
	ViewH float64
}

// New returns a camera at the origin with zoom 1.
func New(viewW, viewH float64) *Camera {
	return &Camera{Zoom: 1, ViewW: viewW, ViewH: viewH}
}

// SetViewport records a new canvas size.
func (c *Camera) SetViewport(w, h float64) {
	c.ViewW, c.ViewH = w, h
}

// Reset recenters the camera at the origin with zoom 1.
func (c *Camera) Reset() {
	c.X, c.Y, c.Zoom = 0, 0, 1
}

// Pan shifts the camera by a screen-space delta.
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx
	c.Y += dy
}

// ZoomAt changes zoom by delta, clamped to [MinZoom, MaxZoom], keeping the
// world point under the screen point (sx, sy) fixed on screen.
func (c *Camera) ZoomAt(delta, sx, sy float64) {
	old := c.Zoom
	z := geom.Clamp(old+delta, MinZoom, MaxZoom)
	if z == old {
		return
	}
	wx, wy := c.ScreenToWorld(sx, sy)
	c.Zoom = z
	c.X = sx - wx*z
	c.Y = sy - wy*z
}

// ScreenToWorld converts a canvas point to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (float64, float64) {
	return (sx - c.X) / c.Zoom, (sy - c.Y) / c.Zoom
}

// WorldToScreen converts a world point to canvas coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (float64, float64) {
	return wx*c.Zoom + c.X, wy*c.Zoom + c.Y
}

// VisibleWorld returns the world rectangle covered by the canvas.
func (c *Camera) VisibleWorld() geom.Rect {
	x0, y0 := c.ScreenToWorld(0, 0)
	x1, y1 := c.ScreenToWorld(c.ViewW, c.ViewH)
	return geom.R(x0, y0, x1-x0, y1-y0)
}

// IsVisible reports whether a world-space box intersects the frustum,
// expanded by the cull margin in world pixels.
func (c *Camera) IsVisible(x, y, w, h float64) bool {
	return c.VisibleWorld().Expand(cullMargin).Intersects(geom.R(x, y, w, h))
}
