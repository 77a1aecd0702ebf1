package board

import (
	"testing"

	"corkboard/internal/domain"
)

func noteAt(id string, x, y float64) domain.Item {
	return domain.Item{
		ID: id, Type: domain.ItemNote, X: x, Y: y,
		Data: domain.ItemData{Width: domain.Float64(40), Height: domain.Float64(40)},
	}
}

func TestAddItemAssignsID(t *testing.T) {
	e := NewEngine(nil)
	it := e.AddItem(domain.Item{Type: domain.ItemNote})
	if it.ID == "" {
		t.Fatalf("expected generated id")
	}
	other := e.AddItem(domain.Item{Type: domain.ItemNote})
	if other.ID == it.ID {
		t.Fatalf("ids must be unique")
	}
	if got := len(e.Snapshot().Items); got != 2 {
		t.Fatalf("expected 2 items, got %d", got)
	}
}

func TestUpdateItemMergesPatch(t *testing.T) {
	e := NewEngine(&domain.Board{Items: []domain.Item{noteAt("n1", 0, 0)}})
	err := e.UpdateItem("n1", map[string]any{
		"x":     12.5,
		"color": "#ff0000",
		"data":  map[string]any{"text": "hello", "width": 80},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	b := e.Snapshot()
	it := b.ItemByID("n1")
	if it.X != 12.5 || it.Color != "#ff0000" {
		t.Fatalf("top-level fields not merged: %+v", it)
	}
	if it.Data.Text != "hello" {
		t.Fatalf("data.text not merged: %+v", it.Data)
	}
	if it.Data.Width == nil || *it.Data.Width != 80 {
		t.Fatalf("data.width not merged: %+v", it.Data)
	}
	if it.Data.Height == nil || *it.Data.Height != 40 {
		t.Fatalf("untouched data fields must survive the merge: %+v", it.Data)
	}
}

func TestUpdateItemNullClearsOptionalField(t *testing.T) {
	e := NewEngine(&domain.Board{Items: []domain.Item{noteAt("n1", 0, 0)}})
	if err := e.UpdateItem("n1", map[string]any{"data": map[string]any{"width": nil}}); err != nil {
		t.Fatalf("update: %v", err)
	}
	it := e.Snapshot().ItemByID("n1")
	if it.Data.Width != nil {
		t.Fatalf("null patch should clear width, got %v", *it.Data.Width)
	}
	if it.Data.Height == nil {
		t.Fatalf("height should be untouched")
	}
}

func TestUpdateItemUnknownID(t *testing.T) {
	e := NewEngine(nil)
	if err := e.UpdateItem("ghost", map[string]any{"x": 1}); err == nil {
		t.Fatalf("expected error for unknown item")
	}
}

func TestUpdateItemsAppliesBatch(t *testing.T) {
	e := NewEngine(&domain.Board{Items: []domain.Item{noteAt("a", 0, 0), noteAt("b", 0, 0)}})
	err := e.UpdateItems([]ItemUpdate{
		{ID: "a", Changes: map[string]any{"x": 10}},
		{ID: "b", Changes: map[string]any{"y": 20}},
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	b := e.Snapshot()
	if b.ItemByID("a").X != 10 || b.ItemByID("b").Y != 20 {
		t.Fatalf("batch not applied: %+v", b.Items)
	}
}

func TestDeleteItemCascadesConnections(t *testing.T) {
	// Add A and B, connect them, then delete A: the connection must go
	// with it and B must remain.
	e := NewEngine(nil)
	e.AddItem(noteAt("A", 0, 0))
	e.AddItem(noteAt("B", 200, 0))
	e.AddItem(noteAt("C", 400, 0))
	if _, err := e.AddConnection("A", "B"); err != nil {
		t.Fatalf("connect A-B: %v", err)
	}
	if _, err := e.AddConnection("B", "C"); err != nil {
		t.Fatalf("connect B-C: %v", err)
	}

	if err := e.DeleteItem("A"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	b := e.Snapshot()
	if b.ItemByID("A") != nil {
		t.Fatalf("A still present")
	}
	if b.ItemByID("B") == nil || b.ItemByID("C") == nil {
		t.Fatalf("unrelated items removed")
	}
	if len(b.Connections) != 1 || b.Connections[0].FromItem != "B" {
		t.Fatalf("cascade wrong, connections: %+v", b.Connections)
	}
}

func TestAddConnectionValidatesEndpoints(t *testing.T) {
	e := NewEngine(nil)
	e.AddItem(noteAt("A", 0, 0))
	if _, err := e.AddConnection("A", "A"); err == nil {
		t.Fatalf("self connection should be rejected")
	}
	if _, err := e.AddConnection("A", "missing"); err == nil {
		t.Fatalf("dangling endpoint should be rejected")
	}
	c, err := e.AddConnection("A", e.AddItem(noteAt("", 10, 10)).ID)
	if err != nil {
		t.Fatalf("valid connection rejected: %v", err)
	}
	if c.ID == "" {
		t.Fatalf("connection id not assigned")
	}
}

func TestUpdateAndDeleteConnection(t *testing.T) {
	e := NewEngine(nil)
	e.AddItem(noteAt("A", 0, 0))
	e.AddItem(noteAt("B", 100, 0))
	c, _ := e.AddConnection("A", "B")

	if err := e.UpdateConnection(c.ID, map[string]any{"color": "#00ff00", "width": 4}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got := e.Snapshot().ConnectionByID(c.ID)
	if got.Color != "#00ff00" || got.Width != 4 {
		t.Fatalf("connection patch not applied: %+v", got)
	}

	if err := e.DeleteConnection(c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if e.Snapshot().ConnectionByID(c.ID) != nil {
		t.Fatalf("connection still present")
	}
	if err := e.DeleteConnection(c.ID); err == nil {
		t.Fatalf("double delete should error")
	}
}

func TestClearBoardKeepsCanvasSettings(t *testing.T) {
	e := NewEngine(&domain.Board{
		Items:       []domain.Item{noteAt("A", 0, 0)},
		Connections: []domain.Connection{{ID: "c", FromItem: "A", ToItem: "A"}},
		Groups:      []domain.Group{{ID: "g"}},
		CanvasColor: "#332211",
		BoardType:   domain.BoardLegal,
	})
	e.ClearBoard()
	b := e.Snapshot()
	if len(b.Items) != 0 || len(b.Connections) != 0 || len(b.Groups) != 0 {
		t.Fatalf("board not cleared: %+v", b)
	}
	if b.CanvasColor != "#332211" || b.BoardType != domain.BoardLegal {
		t.Fatalf("canvas settings should survive clear: %+v", b)
	}
}

func TestNextZPlacesOnTop(t *testing.T) {
	e := NewEngine(&domain.Board{Items: []domain.Item{
		{ID: "a", ZIndex: 4},
		{ID: "b", ZIndex: 7},
	}})
	if z := e.NextZ(""); z != 8 {
		t.Fatalf("NextZ = %d, want 8", z)
	}
	if z := e.NextZ("emptygroup"); z != 0 {
		t.Fatalf("NextZ empty bucket = %d, want 0", z)
	}
}
