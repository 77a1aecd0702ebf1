package pick

import (
	"testing"

	"corkboard/internal/board"
	"corkboard/internal/camera"
	"corkboard/internal/domain"
	"corkboard/internal/geom"
)

func fixedDims(w, h float64) Dims {
	return func(domain.Item) (float64, float64) { return w, h }
}

func sized(id string, x, y float64, z int) domain.Item {
	return domain.Item{ID: id, Type: domain.ItemNote, X: x, Y: y, ZIndex: z}
}

func TestItemAtPicksTopmost(t *testing.T) {
	// A (lower z) and B (higher z) overlap at (50, 50).
	b := &domain.Board{Items: []domain.Item{
		sized("A", 20, 20, 0),
		sized("B", 40, 40, 1),
	}}
	p := New(fixedDims(60, 60))
	cam := camera.New(800, 600)

	hit := p.ItemAt(b, cam, 50, 50, 0)
	if hit == nil || hit.ID != "B" {
		t.Fatalf("expected B, got %+v", hit)
	}

	// After sendToBack(B) the same point yields A.
	e := board.NewEngine(b)
	if err := e.SendToBack("B"); err != nil {
		t.Fatalf("sendToBack: %v", err)
	}
	hit = p.ItemAt(b, cam, 50, 50, 0)
	if hit == nil || hit.ID != "A" {
		t.Fatalf("after sendToBack expected A, got %+v", hit)
	}
}

func TestItemAtExpandsToleranceByZoom(t *testing.T) {
	b := &domain.Board{Items: []domain.Item{sized("A", 0, 0, 0)}}
	p := New(fixedDims(10, 10))
	cam := camera.New(800, 600)
	cam.Zoom = 2

	// World point (14,5) is 4 world px right of the box. tol 10 screen px
	// = 5 world px at zoom 2: hit.
	if hit := p.ItemAt(b, cam, 28, 10, 10); hit == nil {
		t.Fatalf("tolerance should reach the item")
	}
	// tol 6 screen px = 3 world px: miss (fallback only applies at tol 0).
	if hit := p.ItemAt(b, cam, 28, 10, 6); hit != nil {
		t.Fatalf("tolerance should not reach the item")
	}
}

func TestItemAtZeroToleranceFallsBack(t *testing.T) {
	b := &domain.Board{Items: []domain.Item{sized("A", 0, 0, 0)}}
	p := New(fixedDims(10, 10))
	cam := camera.New(800, 600)

	// 2 world px outside the box: the implicit 3px fallback catches it.
	if hit := p.ItemAt(b, cam, 12, 5, 0); hit == nil {
		t.Fatalf("fallback tolerance should catch a near miss")
	}
	if hit := p.ItemAt(b, cam, 14, 5, 0); hit != nil {
		t.Fatalf("4px off must stay a miss, got %v", hit.ID)
	}
}

func TestItemAtIgnoresRotation(t *testing.T) {
	b := &domain.Board{Items: []domain.Item{
		{ID: "R", Type: domain.ItemNote, X: 0, Y: 0, Rotation: 45},
	}}
	p := New(fixedDims(40, 40))
	cam := camera.New(800, 600)
	// The unrotated corner still hits even though the rotated shape has
	// moved away from it.
	if hit := p.ItemAt(b, cam, 1, 1, 0); hit == nil {
		t.Fatalf("rotation must not affect hit testing")
	}
}

func TestConnectionAtSamplesCurve(t *testing.T) {
	// Notes at (0,0) and (200,0), 40x40: attachment points (20,10) and
	// (220,10), sag = min(0.15*200, 100) = 30.
	b := &domain.Board{
		Items: []domain.Item{sized("A", 0, 0, 0), sized("B", 200, 0, 1)},
		Connections: []domain.Connection{
			{ID: "c1", FromItem: "A", ToItem: "B"},
		},
	}
	p := New(fixedDims(40, 40))
	cam := camera.New(800, 600)

	// The curve midpoint hangs around (120, 10 + 3/4*15); probing the
	// midpoint x at the sagged y should hit.
	mid := p.CurveBetween(b.Items[0], b.Items[1]).Point(0.5)
	if hit := p.ConnectionAt(b, cam, mid.X, mid.Y, 0); hit == nil || hit.ID != "c1" {
		t.Fatalf("midpoint probe missed the connection")
	}

	// Far away: no hit.
	if hit := p.ConnectionAt(b, cam, 120, 200, 0); hit != nil {
		t.Fatalf("distant probe matched %v", hit.ID)
	}
}

func TestConnectionAtSkipsDanglingEndpoints(t *testing.T) {
	b := &domain.Board{
		Items: []domain.Item{sized("A", 0, 0, 0)},
		Connections: []domain.Connection{
			{ID: "dangling", FromItem: "A", ToItem: "gone"},
		},
	}
	p := New(fixedDims(40, 40))
	cam := camera.New(800, 600)
	if hit := p.ConnectionAt(b, cam, 20, 10, 0); hit != nil {
		t.Fatalf("dangling connection must be unpickable")
	}
}

func TestConnectionThresholdScalesWithZoom(t *testing.T) {
	b := &domain.Board{
		Items:       []domain.Item{sized("A", 0, 0, 0), sized("B", 200, 0, 1)},
		Connections: []domain.Connection{{ID: "c1", FromItem: "A", ToItem: "B"}},
	}
	p := New(fixedDims(40, 40))

	cam := camera.New(800, 600)
	end := geom.Pt{X: 20, Y: 10}

	// 11 world px above the endpoint: inside the default 12px threshold
	// at zoom 1.
	sx, sy := cam.WorldToScreen(end.X, end.Y-11)
	if hit := p.ConnectionAt(b, cam, sx, sy, 0); hit == nil {
		t.Fatalf("zoom 1: 11px should be within threshold")
	}

	// At zoom 2 the same world offset is 22 screen px from the curve,
	// beyond 12 screen px, so the threshold shrinks in world terms.
	cam.Zoom = 2
	sx, sy = cam.WorldToScreen(end.X, end.Y-11)
	if hit := p.ConnectionAt(b, cam, sx, sy, 0); hit != nil {
		t.Fatalf("zoom 2: 11 world px must now miss")
	}
}

func TestItemsInRect(t *testing.T) {
	b := &domain.Board{Items: []domain.Item{
		sized("in", 10, 10, 0),
		sized("edge", 95, 10, 1),
		sized("out", 300, 300, 2),
	}}
	p := New(fixedDims(20, 20))

	ids := p.ItemsInRect(b, geom.R(0, 0, 100, 100))
	if len(ids) != 2 {
		t.Fatalf("got %v, want [in edge]", ids)
	}
	// Dragging the rubber band up-left gives a negative-size rect; it must
	// normalize.
	ids = p.ItemsInRect(b, geom.R(100, 100, -100, -100))
	if len(ids) != 2 {
		t.Fatalf("normalized rect got %v", ids)
	}
}
