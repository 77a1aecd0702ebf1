/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

// Snap guides for item drags: while items move, their bounding box is
// compared against nearby static rects and snaps to aligned edges and
// centers. Deterministic and UI-agnostic so it unit-tests cleanly.

import (
	"math"

	"corkboard/internal/geom"
)

// SnapOptions controls which guide candidates are considered and the
// threshold.
type SnapOptions struct {
	// Threshold is the maximum distance (world units) at which snapping
	// occurs. Typical on-screen values are 6-8 px, so callers divide by zoom.
	Threshold float64
	// Snap to edges (left, right, top, bottom).
	SnapToEdges bool
	// Snap to centers (cx, cy).
	SnapToCenters bool
}

// Anchor is a static reference rect (another item's bounds). Weight biases
// selection when distances tie; use 1 when uncertain.
type Anchor struct {
	Rect   geom.Rect
	Weight float64
}

// Guide is a visual alignment line produced by a snap. Orientation is
// "vertical" or "horizontal"; Kind is "edge" or "center"; Position is the
// x (vertical) or y (horizontal) coordinate.
type Guide struct {
	Orientation string
	Kind        string
	Position    float64
	From, To    geom.Pt
}

// Seg returns the guide's drawable segment.
func (g Guide) Seg() geom.Seg { return geom.Seg{A: g.From, B: g.To} }

// ComputeGuides snaps a moving rectangle against anchors, independently in
// X and Y, and returns the snapped rect plus the guides to render.
func ComputeGuides(moving geom.Rect, anchors []Anchor, opts SnapOptions) (geom.Rect, []Guide) {
	if opts.Threshold <= 0 {
		opts.Threshold = 6
	}
	var guides []Guide

	bestDX, bestDXDist, bestDXGuide := 0.0, math.Inf(1), Guide{}
	bestDY, bestDYDist, bestDYGuide := 0.0, math.Inf(1), Guide{}

	mxL, mxR := moving.X, moving.X+moving.W
	mxT, mxB := moving.Y, moving.Y+moving.H
	mxCX, mxCY := moving.X+moving.W/2, moving.Y+moving.H/2

	for _, a := range anchors {
		axL, axR := a.Rect.X, a.Rect.X+a.Rect.W
		axT, axB := a.Rect.Y, a.Rect.Y+a.Rect.H
		axCX, axCY := a.Rect.X+a.Rect.W/2, a.Rect.Y+a.Rect.H/2

		if opts.SnapToEdges {
			consider(&bestDX, &bestDXDist, &bestDXGuide, mxL-axL, opts.Threshold, a.Weight, verticalGuide(axL, moving, a.Rect, "edge"))
			consider(&bestDX, &bestDXDist, &bestDXGuide, mxR-axR, opts.Threshold, a.Weight, verticalGuide(axR, moving, a.Rect, "edge"))
			// Abutting edges: left-to-right and right-to-left.
			consider(&bestDX, &bestDXDist, &bestDXGuide, mxL-axR, opts.Threshold, a.Weight, verticalGuide(axR, moving, a.Rect, "edge"))
			consider(&bestDX, &bestDXDist, &bestDXGuide, mxR-axL, opts.Threshold, a.Weight, verticalGuide(axL, moving, a.Rect, "edge"))
		}
		if opts.SnapToCenters {
			consider(&bestDX, &bestDXDist, &bestDXGuide, mxCX-axCX, opts.Threshold, a.Weight, verticalGuide(axCX, moving, a.Rect, "center"))
		}

		if opts.SnapToEdges {
			consider(&bestDY, &bestDYDist, &bestDYGuide, mxT-axT, opts.Threshold, a.Weight, horizontalGuide(axT, moving, a.Rect, "edge"))
			consider(&bestDY, &bestDYDist, &bestDYGuide, mxB-axB, opts.Threshold, a.Weight, horizontalGuide(axB, moving, a.Rect, "edge"))
			consider(&bestDY, &bestDYDist, &bestDYGuide, mxT-axB, opts.Threshold, a.Weight, horizontalGuide(axB, moving, a.Rect, "edge"))
			consider(&bestDY, &bestDYDist, &bestDYGuide, mxB-axT, opts.Threshold, a.Weight, horizontalGuide(axT, moving, a.Rect, "edge"))
		}
		if opts.SnapToCenters {
			consider(&bestDY, &bestDYDist, &bestDYGuide, mxCY-axCY, opts.Threshold, a.Weight, horizontalGuide(axCY, moving, a.Rect, "center"))
		}
	}

	snapped := moving
	if bestDXDist <= opts.Threshold {
		snapped.X = moving.X - bestDX
		guides = append(guides, bestDXGuide)
	}
	if bestDYDist <= opts.Threshold {
		snapped.Y = moving.Y - bestDY
		guides = append(guides, bestDYGuide)
	}
	return snapped, guides
}

func consider(bestDelta, bestDist *float64, bestGuide *Guide, delta, threshold, weight float64, g Guide) {
	dist := math.Abs(delta)
	if dist > threshold {
		return
	}
	if weight < 1 {
		weight = 1
	}
	if dist/weight < *bestDist {
		*bestDist = dist
		*bestDelta = delta
		*bestGuide = g
	}
}

func verticalGuide(x float64, a, b geom.Rect, kind string) Guide {
	minY := math.Min(a.Y, b.Y)
	maxY := math.Max(a.Y+a.H, b.Y+b.H)
	return Guide{
		Orientation: "vertical",
		Kind:        kind,
		Position:    x,
		From:        geom.P(x, minY),
		To:          geom.P(x, maxY),
	}
}

func horizontalGuide(y float64, a, b geom.Rect, kind string) Guide {
	minX := math.Min(a.X, b.X)
	maxX := math.Max(a.X+a.W, b.X+b.W)
	return Guide{
		Orientation: "horizontal",
		Kind:        kind,
		Position:    y,
		From:        geom.P(minX, y),
		To:          geom.P(maxX, y),
	}
}
