/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "math"

// Curve is a cubic Bézier. The renderer and the hit tester must agree on the
// exact same geometry for a connection, so both build it through ConnCurve.
type Curve struct {
	P0, C1, C2, P3 Pt
}

// maxSag caps how far a connection string hangs below its endpoints.
const maxSag = 100.0

// ConnCurve builds the hanging-string curve between two attachment points.
// Control points sit 25% along the straight segment, pushed down by half the
// sag, where sag grows with distance up to maxSag. Short connections look
// nearly straight, long ones hang like twine on a corkboard.
func ConnCurve(a, b Pt) Curve {
	dist := Dist(a, b)
	sag := math.Min(0.15*dist, maxSag)
	dx := b.X - a.X
	dy := b.Y - a.Y
	return Curve{
		P0: a,
		C1: Pt{X: a.X + dx*0.25, Y: a.Y + dy*0.25 + sag/2},
		C2: Pt{X: a.X + dx*0.75, Y: a.Y + dy*0.75 + sag/2},
		P3: b,
	}
}

// Point evaluates the curve at t in [0, 1].
func (c Curve) Point(t float64) Pt {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	cc := 3 * mt * t * t
	d := t * t * t
	return Pt{
		X: a*c.P0.X + b*c.C1.X + cc*c.C2.X + d*c.P3.X,
		Y: a*c.P0.Y + b*c.C1.Y + cc*c.C2.Y + d*c.P3.Y,
	}
}

// Offset returns the curve translated by (dx, dy). Used for the drop-shadow
// pass under connections.
func (c Curve) Offset(dx, dy float64) Curve {
	d := Pt{dx, dy}
	return Curve{P0: c.P0.Add(d), C1: c.C1.Add(d), C2: c.C2.Add(d), P3: c.P3.Add(d)}
}

// MinDistance samples the curve at the given number of steps and returns the
// smallest distance from p to a sample. 20 steps (21 samples) matches the
// renderer's segment count.
func (c Curve) MinDistance(p Pt, steps int) float64 {
	if steps < 1 {
		steps = 1
	}
	best := math.Inf(1)
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		if d := Dist(p, c.Point(t)); d < best {
			best = d
		}
	}
	return best
}
