/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package render

import (
	"math"

	"github.com/fogleman/gg"

	"corkboard/internal/domain"
	"corkboard/internal/geom"
	"corkboard/internal/pick"
)

// defaultConnColor is the twine tone used when a connection has no color.
const defaultConnColor = "#8b4513"

// connSegments samples the curve for the width/brightness modulation.
const connSegments = 20

// drawConnections draws every resolvable connection in stored order. A
// connection is culled only when both endpoints are off screen, so a
// string into the viewport still hangs in from outside.
func (r *Renderer) drawConnections(dc *gg.Context, b *domain.Board) {
	for i := range b.Connections {
		c := &b.Connections[i]
		from := b.ItemByID(c.FromItem)
		to := b.ItemByID(c.ToItem)
		if from == nil || to == nil {
			continue
		}
		fw, fh := r.ItemDims(*from)
		tw, th := r.ItemDims(*to)
		if !r.cam.IsVisible(from.X, from.Y, fw, fh) && !r.cam.IsVisible(to.X, to.Y, tw, th) {
			continue
		}
		curve := geom.ConnCurve(
			pick.AttachPoint(*from, fw, fh),
			pick.AttachPoint(*to, tw, th),
		)
		r.drawCurve(dc, curve, *c, c.ID == r.hoverConn)
	}
}

// drawCurve renders one hanging string: an offset shadow copy, then the
// curve as segments whose thickness swells toward the middle and whose
// brightness ripples along the length. Hover thickens the string and adds
// a glow pass beneath it.
func (r *Renderer) drawCurve(dc *gg.Context, curve geom.Curve, c domain.Connection, hovered bool) {
	color := c.Color
	if color == "" {
		color = defaultConnColor
	}
	base := c.EffectiveWidth()
	if hovered {
		base *= 1.5
	}

	// Shadow copy, displaced like the items' shadows.
	shadow := curve.Offset(2, 3)
	dc.SetHexColor(Shade(color, -0.35))
	r.strokeCurvePlain(dc, shadow, base)

	if hovered {
		hr, hg, hb := ParseHex(hoverColor)
		dc.SetRGBA(hr, hg, hb, 0.35)
		r.strokeCurvePlain(dc, curve, base*4)
	}

	dc.SetLineCapRound()
	for i := 0; i < connSegments; i++ {
		t0 := float64(i) / connSegments
		t1 := float64(i+1) / connSegments
		tm := (t0 + t1) / 2
		p0 := curve.Point(t0)
		p1 := curve.Point(t1)

		dc.SetHexColor(Shade(color, 0.08*math.Sin(3*math.Pi*tm)))
		dc.SetLineWidth(base * (1 + 0.3*math.Sin(math.Pi*tm)))
		dc.DrawLine(p0.X, p0.Y, p1.X, p1.Y)
		dc.Stroke()
	}
}

// strokeCurvePlain strokes the whole curve at one width.
func (r *Renderer) strokeCurvePlain(dc *gg.Context, curve geom.Curve, width float64) {
	dc.SetLineCapRound()
	dc.SetLineWidth(width)
	dc.MoveTo(curve.P0.X, curve.P0.Y)
	dc.CubicTo(curve.C1.X, curve.C1.Y, curve.C2.X, curve.C2.Y, curve.P3.X, curve.P3.Y)
	dc.Stroke()
}

// drawConnectionPreview renders the in-flight connection overlay while the
// user drags toward a target: a halo on the source, a gradient line to the
// cursor, an arrowhead, a target ring and a pulsing dot. All widths divide
// by zoom so the overlay keeps its screen weight. Runs under the world
// transform.
func (r *Renderer) drawConnectionPreview(dc *gg.Context, b *domain.Board) {
	pv := r.preview
	from := b.ItemByID(pv.FromID)
	if from == nil {
		return
	}
	z := r.cam.Zoom
	fw, fh := r.ItemDims(*from)
	src := pick.AttachPoint(*from, fw, fh)
	cx, cy := r.cam.ScreenToWorld(pv.SX, pv.SY)

	// Source halo.
	dc.SetRGBA(1, 0.84, 0, 0.35)
	dc.DrawCircle(src.X, src.Y, 14/z)
	dc.Fill()

	// Gradient line from source to cursor.
	grad := gg.NewLinearGradient(src.X, src.Y, cx, cy)
	sr, sg, sb := ParseHex(hoverColor)
	pr, pg, pb := ParseHex(pulseColor)
	grad.AddColorStop(0, rgba(sr, sg, sb, 0.9))
	grad.AddColorStop(1, rgba(pr, pg, pb, 0.9))
	dc.SetStrokeStyle(grad)
	dc.SetLineWidth(3 / z)
	dc.DrawLine(src.X, src.Y, cx, cy)
	dc.Stroke()

	// Arrowhead at the cursor.
	ang := math.Atan2(cy-src.Y, cx-src.X)
	size := 12 / z
	dc.SetRGBA(pr, pg, pb, 0.9)
	dc.MoveTo(cx, cy)
	dc.LineTo(cx-size*math.Cos(ang-0.4), cy-size*math.Sin(ang-0.4))
	dc.LineTo(cx-size*math.Cos(ang+0.4), cy-size*math.Sin(ang+0.4))
	dc.ClosePath()
	dc.Fill()

	// Target zone ring and pulsing cursor dot.
	dc.SetRGBA(pr, pg, pb, 0.5)
	dc.SetLineWidth(2 / z)
	dc.DrawCircle(cx, cy, 24/z)
	dc.Stroke()

	dc.SetRGBA(pr, pg, pb, r.pulsePhase())
	dc.DrawCircle(cx, cy, 4/z)
	dc.Fill()
}
