package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestItemJSONKeepsMigrationFields(t *testing.T) {
	it := Item{
		ID:   "a1",
		Type: ItemImage,
		X:    10, Y: 20,
		ZIndex: 3,
		Data: ItemData{
			ImageURL:  "https://example.com/cat.png",
			Preset:    PresetMedium,
			OldWidth:  Float64(320),
			OldHeight: Float64(200),
		},
		MigrationApplied: true,
	}

	b, err := json.Marshal(it)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, key := range []string{`"_migrationApplied":true`, `"_oldWidth":320`, `"_oldHeight":200`} {
		if !strings.Contains(s, key) {
			t.Fatalf("serialized item missing %s: %s", key, s)
		}
	}

	var got Item
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.MigrationApplied || got.Data.OldWidth == nil || *got.Data.OldWidth != 320 {
		t.Fatalf("migration fields lost in round trip: %+v", got)
	}
}

func TestItemJSONOmitsUnsetDimensions(t *testing.T) {
	b, err := json.Marshal(Item{ID: "n1", Type: ItemNote})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "width") || strings.Contains(string(b), "_old") {
		t.Fatalf("unset optional fields serialized: %s", b)
	}
}

func TestItemCloneIsDeep(t *testing.T) {
	orig := Item{ID: "x", Type: ItemNote, Data: ItemData{Width: Float64(100)}}
	c := orig.Clone()
	*c.Data.Width = 999
	if *orig.Data.Width != 100 {
		t.Fatalf("clone shares width pointer with original")
	}
}

func TestConnectionEffectiveWidth(t *testing.T) {
	if w := (Connection{}).EffectiveWidth(); w != DefaultConnWidth {
		t.Fatalf("zero width should fall back to default, got %v", w)
	}
	if w := (Connection{Width: 5}).EffectiveWidth(); w != 5 {
		t.Fatalf("explicit width ignored, got %v", w)
	}
}

func TestBoardAccessors(t *testing.T) {
	b := &Board{
		Items:       []Item{{ID: "i1"}, {ID: "i2"}},
		Connections: []Connection{{ID: "c1", FromItem: "i1", ToItem: "i2"}},
		Groups:      []Group{{ID: "g1", ZIndex: 2}},
	}
	if b.ItemByID("i2") == nil || b.ItemByID("nope") != nil {
		t.Fatalf("ItemByID lookup wrong")
	}
	if b.ConnectionByID("c1") == nil || b.ConnectionByID("") != nil {
		t.Fatalf("ConnectionByID lookup wrong")
	}
	if g := b.GroupByID("g1"); g == nil || g.ZIndex != 2 {
		t.Fatalf("GroupByID lookup wrong")
	}
}

func TestBoardCloneIsDeep(t *testing.T) {
	b := &Board{
		Items:  []Item{{ID: "i1", Data: ItemData{Width: Float64(50)}}},
		Groups: []Group{{ID: "g1"}},
	}
	c := b.Clone()
	c.Items[0].X = 77
	*c.Items[0].Data.Width = 1
	c.Groups[0].ZIndex = 9
	if b.Items[0].X != 0 || *b.Items[0].Data.Width != 50 || b.Groups[0].ZIndex != 0 {
		t.Fatalf("board clone shares state with original")
	}
}
