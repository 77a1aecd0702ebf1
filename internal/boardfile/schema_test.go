package boardfile

import (
	"os"
	"path/filepath"
	"testing"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"corkboard/internal/domain"
)

func validateAgainstSchema(t *testing.T, docPath string) *gojsonschema.Result {
	t.Helper()
	data, err := os.ReadFile(docPath)
	if err != nil {
		t.Fatalf("read board file: %v", err)
	}
	schemaBytes, err := os.ReadFile(filepath.Join("..", "..", "docs", "board.schema.json"))
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		t.Fatalf("schema validate error: %v", err)
	}
	return result
}

func TestSavedFileConformsToSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.board.json")
	b := &domain.Board{
		Items: []domain.Item{
			{ID: "n", Type: domain.ItemNote, X: 0, Y: 0, ZIndex: 1, Data: domain.ItemData{Text: "note"}},
			{ID: "i", Type: domain.ItemImage, X: 10, Y: 10, ZIndex: 2,
				Data: domain.ItemData{ImageURL: "https://example.com/p.png", Preset: domain.PresetMedium, BorderColor: domain.BorderWhite}},
			{ID: "d", Type: domain.ItemDocument, X: 20, Y: 20, ZIndex: 3, Rotation: 4,
				Data: domain.ItemData{Preset: domain.DocLooseleaf, Size: domain.SizeLarge, Effect: domain.EffectBurned, EffectIntensity: 3, EffectSeed: 42}},
			{ID: "t", Type: domain.ItemText, X: 30, Y: 30, ZIndex: 4, Data: domain.ItemData{Text: "floating"}},
			{ID: "s", Type: domain.ItemStandard, X: 40, Y: 40, ZIndex: 5, GroupID: "g",
				Data: domain.ItemData{Width: domain.Float64(80), Height: domain.Float64(60)}},
		},
		Connections: []domain.Connection{
			{ID: "c", FromItem: "n", ToItem: "i", Width: 3, LabelItemID: "t"},
		},
		Groups:    []domain.Group{{ID: "g", Name: "evidence", ZIndex: 2}},
		BoardType: domain.BoardSpiral,
	}
	if err := Save(path, "Schema Exercise", b); err != nil {
		t.Fatalf("Save: %v", err)
	}

	result := validateAgainstSchema(t, path)
	if !result.Valid() {
		for _, e := range result.Errors() {
			t.Logf("schema error: %s", e)
		}
		t.Fatalf("saved board file does not conform to schema")
	}
}

func TestSchemaRejectsUnknownItemType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.board.json")
	bad := `{
  "formatVersion": 1,
  "board": {
    "items": [{"id": "x", "type": "sticker", "x": 0, "y": 0, "zIndex": 1, "data": {}}],
    "connections": []
  }
}
`
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatalf("write bad file: %v", err)
	}
	result := validateAgainstSchema(t, path)
	if result.Valid() {
		t.Fatalf("schema accepted an unknown item type")
	}
}
