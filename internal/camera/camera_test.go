package camera

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestScreenWorldRoundTrip(t *testing.T) {
	cams := []*Camera{
		New(800, 600),
		{X: 120, Y: -44, Zoom: 0.25, ViewW: 800, ViewH: 600},
		{X: -999.5, Y: 31.25, Zoom: 5, ViewW: 1920, ViewH: 1080},
		{X: 3, Y: 7, Zoom: 0.1, ViewW: 640, ViewH: 480},
	}
	points := [][2]float64{{0, 0}, {400, 300}, {-250.5, 1024}, {1e4, -1e4}}
	for _, c := range cams {
		for _, p := range points {
			sx, sy := c.WorldToScreen(p[0], p[1])
			wx, wy := c.ScreenToWorld(sx, sy)
			if math.Abs(wx-p[0]) > eps || math.Abs(wy-p[1]) > eps {
				t.Fatalf("round trip drift at zoom %v: (%v,%v) -> (%v,%v)", c.Zoom, p[0], p[1], wx, wy)
			}
		}
	}
}

func TestZoomAtKeepsFocalPointFixed(t *testing.T) {
	// Camera at origin, zoom 1; zoom in by 0.5 on (400, 300).
	c := New(800, 600)
	wx, wy := c.ScreenToWorld(400, 300)
	c.ZoomAt(0.5, 400, 300)
	if c.Zoom != 1.5 {
		t.Fatalf("zoom = %v, want 1.5", c.Zoom)
	}
	sx, sy := c.WorldToScreen(wx, wy)
	if math.Abs(sx-400) > eps || math.Abs(sy-300) > eps {
		t.Fatalf("focal point moved to (%v,%v)", sx, sy)
	}
}

func TestZoomAtFocalInvarianceAcrossRange(t *testing.T) {
	c := &Camera{X: 37, Y: -80, Zoom: 0.8, ViewW: 800, ViewH: 600}
	focals := [][2]float64{{0, 0}, {799, 599}, {123.5, 456.25}}
	deltas := []float64{0.1, -0.3, 2.0, -0.6, 0.05}
	for _, f := range focals {
		for _, d := range deltas {
			wx, wy := c.ScreenToWorld(f[0], f[1])
			before := c.Zoom
			c.ZoomAt(d, f[0], f[1])
			if c.Zoom < MinZoom || c.Zoom > MaxZoom {
				t.Fatalf("zoom escaped clamp: %v", c.Zoom)
			}
			if c.Zoom == before {
				continue
			}
			sx, sy := c.WorldToScreen(wx, wy)
			if math.Abs(sx-f[0]) > 1e-6 || math.Abs(sy-f[1]) > 1e-6 {
				t.Fatalf("focal (%v,%v) drifted to (%v,%v) after delta %v", f[0], f[1], sx, sy, d)
			}
		}
	}
}

func TestZoomAtClamps(t *testing.T) {
	c := New(800, 600)
	c.ZoomAt(100, 0, 0)
	if c.Zoom != MaxZoom {
		t.Fatalf("zoom = %v, want clamp at %v", c.Zoom, MaxZoom)
	}
	c.ZoomAt(-100, 0, 0)
	if c.Zoom != MinZoom {
		t.Fatalf("zoom = %v, want clamp at %v", c.Zoom, MinZoom)
	}
	// At the boundary a further push is a no-op and must not move the pan.
	x, y := c.X, c.Y
	c.ZoomAt(-1, 400, 300)
	if c.X != x || c.Y != y {
		t.Fatalf("no-op zoom moved the camera")
	}
}

func TestPanIsScreenSpace(t *testing.T) {
	c := &Camera{Zoom: 2, ViewW: 800, ViewH: 600}
	wx, wy := c.ScreenToWorld(100, 100)
	c.Pan(50, -30)
	sx, sy := c.WorldToScreen(wx, wy)
	if math.Abs(sx-150) > eps || math.Abs(sy-70) > eps {
		t.Fatalf("pan delta not screen-space: (%v,%v)", sx, sy)
	}
}

func TestIsVisibleUsesWorldMargin(t *testing.T) {
	c := New(800, 600)

	if !c.IsVisible(0, 0, 10, 10) {
		t.Fatalf("on-screen item culled")
	}
	// Within the 100px world margin left of the frustum.
	if !c.IsVisible(-105, 10, 10, 10) {
		t.Fatalf("item inside margin culled")
	}
	if c.IsVisible(-200, 10, 50, 10) {
		t.Fatalf("item beyond margin drawn")
	}

	// Zoomed in 2x the frustum covers half the world span; the margin
	// stays 100 world pixels.
	c.Zoom = 2
	if c.IsVisible(510, 10, 10, 10) {
		t.Fatalf("item right of zoomed frustum+margin drawn")
	}
	if !c.IsVisible(495, 10, 10, 10) {
		t.Fatalf("item inside zoomed margin culled")
	}
}

func TestVisibleWorldTracksCamera(t *testing.T) {
	c := &Camera{X: -100, Y: 50, Zoom: 0.5, ViewW: 800, ViewH: 600}
	r := c.VisibleWorld()
	if r.X != 200 || r.Y != -100 || r.W != 1600 || r.H != 1200 {
		t.Fatalf("visible world wrong: %+v", r)
	}
}
