/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"math"
	"testing"
)

func TestRectContainsAndExpand(t *testing.T) {
	r := R(10, 10, 20, 20)
	if !r.Contains(P(10, 10)) || !r.Contains(P(30, 30)) {
		t.Fatalf("edges should be inclusive")
	}
	if r.Contains(P(9.9, 10)) {
		t.Fatalf("outside point reported inside")
	}
	e := r.Expand(5)
	if e.X != 5 || e.Y != 5 || e.W != 30 || e.H != 30 {
		t.Fatalf("Expand wrong: %+v", e)
	}
	if !e.Contains(P(9.9, 10)) {
		t.Fatalf("expanded rect should contain point near edge")
	}
}

func TestRectNormalized(t *testing.T) {
	r := Rect{X: 100, Y: 100, W: -40, H: -30}.Normalized()
	if r.X != 60 || r.Y != 70 || r.W != 40 || r.H != 30 {
		t.Fatalf("Normalized wrong: %+v", r)
	}
}

func TestRectIntersects(t *testing.T) {
	a := R(0, 0, 10, 10)
	cases := []struct {
		b    Rect
		want bool
	}{
		{R(5, 5, 10, 10), true},
		{R(10, 10, 5, 5), true}, // touching corners count
		{R(11, 0, 5, 5), false},
		{R(-20, -20, 5, 5), false},
	}
	for _, c := range cases {
		if got := a.Intersects(c.b); got != c.want {
			t.Fatalf("Intersects(%+v) = %v, want %v", c.b, got, c.want)
		}
	}
}

func TestRotateAroundQuarterTurn(t *testing.T) {
	got := RotateAround(P(10, 0), P(0, 0), 90)
	if math.Abs(got.X) > 1e-9 || math.Abs(got.Y-10) > 1e-9 {
		t.Fatalf("quarter turn wrong: %+v", got)
	}
}

func TestConnCurveEndpointsAndSag(t *testing.T) {
	c := ConnCurve(P(0, 0), P(200, 0))
	if c.P0 != P(0, 0) || c.P3 != P(200, 0) {
		t.Fatalf("endpoints moved: %+v", c)
	}
	// sag = 0.15*200 = 30, controls at 25%/75% pushed down by 15
	if c.C1.X != 50 || c.C1.Y != 15 || c.C2.X != 150 || c.C2.Y != 15 {
		t.Fatalf("controls wrong: %+v", c)
	}
	// curve midpoint hangs below the chord
	mid := c.Point(0.5)
	if mid.Y <= 0 {
		t.Fatalf("curve should sag below endpoints, midpoint %+v", mid)
	}
}

func TestConnCurveSagIsCapped(t *testing.T) {
	c := ConnCurve(P(0, 0), P(10000, 0))
	if got := c.C1.Y; got != maxSag/2 {
		t.Fatalf("sag should cap at %v, control offset %v", maxSag, got)
	}
}

func TestCurveMinDistance(t *testing.T) {
	c := ConnCurve(P(0, 0), P(100, 0))
	if d := c.MinDistance(P(0, 0), 20); d != 0 {
		t.Fatalf("distance at endpoint should be 0, got %v", d)
	}
	d := c.MinDistance(P(50, 200), 20)
	if d < 150 || d > 200 {
		t.Fatalf("implausible distance %v", d)
	}
}
