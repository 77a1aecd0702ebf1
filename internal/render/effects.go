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
	"math/rand"

	"github.com/fogleman/gg"

	"corkboard/internal/domain"
)

// drawEffect overlays the configured paper distress on a document. The
// generator is reseeded from the scene seed and the item's own seed on
// every frame, so the noise holds still while the scene is open.
func (r *Renderer) drawEffect(dc *gg.Context, it domain.Item, w, h float64) {
	effect := it.Data.Effect
	if effect == "" || effect == domain.EffectNone {
		return
	}
	intensity := it.Data.EffectIntensity
	if intensity < 1 {
		intensity = 2
	}
	if intensity > 4 {
		intensity = 4
	}
	rng := rand.New(rand.NewSource(int64(r.sceneSeed*1000 + it.Data.EffectSeed)))

	switch effect {
	case domain.EffectCrumpled:
		drawCrumpled(dc, rng, it.X, it.Y, w, h, intensity)
	case domain.EffectTorn:
		drawTorn(dc, rng, it.X, it.Y, w, h, intensity)
	case domain.EffectBurned:
		drawBurned(dc, rng, it.X, it.Y, w, h, intensity)
	}
}

// drawCrumpled scatters faint shaded triangles and a few crease lines so
// the page reads as flattened-out paper.
func drawCrumpled(dc *gg.Context, rng *rand.Rand, x, y, w, h float64, intensity int) {
	for i := 0; i < 8*intensity; i++ {
		cx := x + rng.Float64()*w
		cy := y + rng.Float64()*h
		r1 := 4 + rng.Float64()*10
		a1 := rng.Float64() * 2 * math.Pi
		a2 := a1 + 0.8 + rng.Float64()*1.6
		dc.MoveTo(cx, cy)
		dc.LineTo(cx+r1*math.Cos(a1), cy+r1*math.Sin(a1))
		dc.LineTo(cx+r1*math.Cos(a2), cy+r1*math.Sin(a2))
		dc.ClosePath()
		if rng.Float64() < 0.5 {
			dc.SetRGBA(0, 0, 0, 0.05)
		} else {
			dc.SetRGBA(1, 1, 1, 0.07)
		}
		dc.Fill()
	}
	dc.SetRGBA(0, 0, 0, 0.08)
	dc.SetLineWidth(0.75)
	for i := 0; i < 3*intensity; i++ {
		x1 := x + rng.Float64()*w
		y1 := y + rng.Float64()*h
		x2 := x1 + (rng.Float64()-0.5)*w*0.7
		y2 := y1 + (rng.Float64()-0.5)*h*0.7
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}
}

// drawTorn roughens the page outline with a jittered edge on all four
// sides. The jitter amplitude grows with intensity.
func drawTorn(dc *gg.Context, rng *rand.Rand, x, y, w, h float64, intensity int) {
	amp := 1.5 * float64(intensity)
	jitter := func() float64 { return (rng.Float64() - 0.5) * 2 * amp }

	dc.SetRGBA(0, 0, 0, 0.18)
	dc.SetLineWidth(1)
	for t := 0.0; t < w; t += 6 {
		dc.LineTo(x+t, y+jitter())
	}
	dc.Stroke()
	for t := 0.0; t < h; t += 6 {
		dc.LineTo(x+w+jitter(), y+t)
	}
	dc.Stroke()
	for t := w; t > 0; t -= 6 {
		dc.LineTo(x+t, y+h+jitter())
	}
	dc.Stroke()
	for t := h; t > 0; t -= 6 {
		dc.LineTo(x+jitter(), y+t)
	}
	dc.Stroke()
}

// drawBurned places scorch spots near the edges plus a darkened rim.
func drawBurned(dc *gg.Context, rng *rand.Rand, x, y, w, h float64, intensity int) {
	for i := 0; i < 3*intensity; i++ {
		// Bias the spots toward the border of the page.
		var cx, cy float64
		if rng.Float64() < 0.5 {
			cx = x + rng.Float64()*w
			if rng.Float64() < 0.5 {
				cy = y + rng.Float64()*h*0.15
			} else {
				cy = y + h - rng.Float64()*h*0.15
			}
		} else {
			cy = y + rng.Float64()*h
			if rng.Float64() < 0.5 {
				cx = x + rng.Float64()*w*0.15
			} else {
				cx = x + w - rng.Float64()*w*0.15
			}
		}
		radius := 3 + rng.Float64()*7
		grad := gg.NewRadialGradient(cx, cy, 0, cx, cy, radius)
		grad.AddColorStop(0, rgba(0.17, 0.10, 0.05, 0.55))
		grad.AddColorStop(0.7, rgba(0.36, 0.23, 0.12, 0.3))
		grad.AddColorStop(1, rgba(0.36, 0.23, 0.12, 0))
		dc.SetFillStyle(grad)
		dc.DrawCircle(cx, cy, radius)
		dc.Fill()
	}
	dc.SetRGBA(0.17, 0.1, 0.05, 0.25)
	dc.SetLineWidth(2 + float64(intensity))
	dc.DrawRectangle(x+1, y+1, w-2, h-2)
	dc.Stroke()
}
