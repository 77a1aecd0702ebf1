package interact

import (
	"context"
	"encoding/json"
	"testing"

	"corkboard/internal/domain"
)

// stubClipboard replaces the system clipboard with an in-memory string for
// the duration of the test.
func stubClipboard(t *testing.T) *string {
	t.Helper()
	var buf string
	origRead, origWrite := readClipboard, writeClipboard
	readClipboard = func() (string, error) { return buf, nil }
	writeClipboard = func(s string) error { buf = s; return nil }
	t.Cleanup(func() { readClipboard, writeClipboard = origRead, origWrite })
	return &buf
}

func TestCopyPlacesSelectionOnClipboard(t *testing.T) {
	buf := stubClipboard(t)
	c, _, _ := newTestController(t, &domain.Board{
		Items: []domain.Item{
			note("a", 40, 40, 50, 50),
			note("b", 200, 40, 50, 50),
			note("c", 100, 150, 50, 50),
		},
		Connections: []domain.Connection{
			{ID: "ab", FromItem: "a", ToItem: "b"},
			{ID: "ac", FromItem: "a", ToItem: "c"},
		},
	})

	c.SetSelection([]string{"a", "b"})
	if err := c.Copy(); err != nil {
		t.Fatalf("Copy: %v", err)
	}

	var p clipPayload
	if err := json.Unmarshal([]byte(*buf), &p); err != nil {
		t.Fatalf("clipboard is not JSON: %v", err)
	}
	if p.App != clipApp {
		t.Fatalf("app marker = %q, want %q", p.App, clipApp)
	}
	if len(p.Items) != 2 {
		t.Fatalf("copied %d items, want 2", len(p.Items))
	}
	// Only the connection fully inside the selection travels along.
	if len(p.Connections) != 1 || p.Connections[0].ID != "ab" {
		t.Fatalf("connections = %+v, want just ab", p.Connections)
	}
}

func TestPasteRemapsIdsAndOffsetsItems(t *testing.T) {
	buf := stubClipboard(t)
	ctx := context.Background()
	c, mut, _ := newTestController(t, &domain.Board{})

	payload := clipPayload{
		App: clipApp,
		Items: []domain.Item{
			note("old-a", 40, 40, 50, 50),
			note("old-b", 200, 40, 50, 50),
		},
		Connections: []domain.Connection{{ID: "c1", FromItem: "old-a", ToItem: "old-b"}},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	*buf = string(raw)

	if err := c.Paste(ctx); err != nil {
		t.Fatalf("Paste: %v", err)
	}
	if len(mut.added) != 2 {
		t.Fatalf("added %d items, want 2", len(mut.added))
	}
	for _, it := range mut.added {
		if it.ID == "old-a" || it.ID == "old-b" {
			t.Fatalf("pasted item kept its old id %q", it.ID)
		}
		if it.Y != 60 {
			t.Fatalf("pasted y = %v, want copied position plus offset", it.Y)
		}
	}
	if len(mut.conns) != 1 {
		t.Fatalf("pasted %d connections, want 1", len(mut.conns))
	}
	if mut.conns[0][0] != mut.added[0].ID || mut.conns[0][1] != mut.added[1].ID {
		t.Fatalf("connection endpoints %v not remapped to the new ids", mut.conns[0])
	}
	if sel := c.Selection(); len(sel) != 2 {
		t.Fatalf("pasted items not selected: %v", sel)
	}
}

func TestPasteAssignsAscendingZIndexes(t *testing.T) {
	buf := stubClipboard(t)
	ctx := context.Background()
	c, mut, _ := newTestController(t, &domain.Board{Items: []domain.Item{
		{ID: "existing", Type: domain.ItemNote, ZIndex: 4},
	}})

	payload := clipPayload{App: clipApp, Items: []domain.Item{
		note("x", 0, 0, 50, 50),
		note("y", 100, 0, 50, 50),
	}}
	raw, _ := json.Marshal(payload)
	*buf = string(raw)

	if err := c.Paste(ctx); err != nil {
		t.Fatalf("Paste: %v", err)
	}
	if mut.added[0].ZIndex != 5 || mut.added[1].ZIndex != 6 {
		t.Fatalf("pasted z = %d, %d, want 5, 6", mut.added[0].ZIndex, mut.added[1].ZIndex)
	}
}

func TestPasteIgnoresForeignClipboardText(t *testing.T) {
	buf := stubClipboard(t)
	*buf = "grocery list: eggs, coffee"
	ctx := context.Background()
	c, mut, _ := newTestController(t, &domain.Board{})

	if err := c.Paste(ctx); err != nil {
		t.Fatalf("Paste returned %v for foreign text", err)
	}
	if len(mut.added) != 0 {
		t.Fatalf("foreign text created items: %v", mut.added)
	}
}

func TestCopyWithEmptySelectionIsANoOp(t *testing.T) {
	buf := stubClipboard(t)
	c, _, _ := newTestController(t, &domain.Board{Items: []domain.Item{
		note("a", 40, 40, 50, 50),
	}})

	if err := c.Copy(); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if *buf != "" {
		t.Fatalf("empty selection wrote to the clipboard: %q", *buf)
	}
}
