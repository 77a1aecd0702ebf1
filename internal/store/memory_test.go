package store

import (
	"context"
	"encoding/json"
	"testing"
)

func TestMemoryFlagRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	got, err := m.GetFlag(ctx, "scene-1", "board")
	if err != nil {
		t.Fatalf("GetFlag on empty store: %v", err)
	}
	if got != nil {
		t.Fatalf("missing flag should read nil, got %s", got)
	}

	if err := m.SetFlag(ctx, "scene-1", "board", json.RawMessage(`{"items":[]}`)); err != nil {
		t.Fatalf("SetFlag: %v", err)
	}
	got, err = m.GetFlag(ctx, "scene-1", "board")
	if err != nil {
		t.Fatalf("GetFlag: %v", err)
	}
	if string(got) != `{"items":[]}` {
		t.Fatalf("flag round trip mismatch: %s", got)
	}

	// Another scene stays independent.
	got, err = m.GetFlag(ctx, "scene-2", "board")
	if err != nil || got != nil {
		t.Fatalf("scene-2 should be empty, got %s err %v", got, err)
	}

	// nil value deletes.
	if err := m.SetFlag(ctx, "scene-1", "board", nil); err != nil {
		t.Fatalf("delete flag: %v", err)
	}
	got, _ = m.GetFlag(ctx, "scene-1", "board")
	if got != nil {
		t.Fatalf("deleted flag still present: %s", got)
	}
}

func TestMemorySettings(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.SetSetting(ctx, "currentBoardId", json.RawMessage(`"b1"`)); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	got, err := m.GetSetting(ctx, "currentBoardId")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if string(got) != `"b1"` {
		t.Fatalf("setting mismatch: %s", got)
	}
	if err := m.SetSetting(ctx, "currentBoardId", nil); err != nil {
		t.Fatalf("delete setting: %v", err)
	}
	if got, _ := m.GetSetting(ctx, "currentBoardId"); got != nil {
		t.Fatalf("deleted setting still present: %s", got)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	if err := m.SetFlag(ctx, "s", "k", json.RawMessage(`"abc"`)); err != nil {
		t.Fatalf("SetFlag: %v", err)
	}
	got, _ := m.GetFlag(ctx, "s", "k")
	got[1] = 'X'
	again, _ := m.GetFlag(ctx, "s", "k")
	if string(again) != `"abc"` {
		t.Fatalf("caller mutation leaked into store: %s", again)
	}
}

func TestMemoryScenes(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	_ = m.SetFlag(ctx, "a", "board", json.RawMessage(`1`))
	_ = m.SetFlag(ctx, "b", "board", json.RawMessage(`2`))
	ids, err := m.Scenes(ctx)
	if err != nil {
		t.Fatalf("Scenes: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("want 2 scenes, got %v", ids)
	}
	// Dropping the last flag drops the scene.
	_ = m.SetFlag(ctx, "b", "board", nil)
	ids, _ = m.Scenes(ctx)
	if len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("want [a], got %v", ids)
	}
}
