package boardfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"corkboard/internal/domain"
)

func sampleBoard() *domain.Board {
	return &domain.Board{
		Items: []domain.Item{
			{ID: "n1", Type: domain.ItemNote, X: 100, Y: 120, Color: "#ffeb3b", ZIndex: 1,
				Data: domain.ItemData{Text: "who had access?"}},
			{ID: "i1", Type: domain.ItemImage, X: 300, Y: 80, ZIndex: 2, Label: "suspect",
				Data: domain.ItemData{ImageURL: "https://example.com/a.png", Preset: domain.PresetPortrait},
				MigrationApplied: true},
		},
		Connections: []domain.Connection{
			{ID: "c1", FromItem: "n1", ToItem: "i1", Color: "#ff0000"},
		},
		Groups:      []domain.Group{{ID: "g1", Name: "clues", ZIndex: 1}},
		CanvasColor: "#204060",
		BoardType:   domain.BoardCork,
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case.board.json")
	if err := Save(path, "Case Wall", sampleBoard()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"formatVersion\"") {
		t.Fatalf("file is not pretty-printed:\n%s", data)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.FormatVersion != FormatVersion {
		t.Fatalf("formatVersion = %d, want %d", f.FormatVersion, FormatVersion)
	}
	if f.Name != "Case Wall" {
		t.Fatalf("name = %q", f.Name)
	}
	if len(f.Board.Items) != 2 || len(f.Board.Connections) != 1 || len(f.Board.Groups) != 1 {
		t.Fatalf("board shape lost: %d items %d conns %d groups",
			len(f.Board.Items), len(f.Board.Connections), len(f.Board.Groups))
	}
	if f.Board.Items[0].Data.Text != "who had access?" {
		t.Fatalf("item data lost: %+v", f.Board.Items[0].Data)
	}
	if f.Migrated {
		t.Fatalf("clean file reported a migration")
	}
}

func TestSaveEmptyBoardWritesArrays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.board.json")
	if err := Save(path, "", &domain.Board{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"items": []`) {
		t.Fatalf("nil items not normalized to []:\n%s", data)
	}
	if !strings.Contains(string(data), `"connections": []`) {
		t.Fatalf("nil connections not normalized to []:\n%s", data)
	}
}

func TestSaveCreatesTimestampedBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "case.board.json")
	b := sampleBoard()
	if err := Save(path, "v1", b); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	b.Items = b.Items[:1]
	if err := Save(path, "v2", b); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	ents, err := os.ReadDir(filepath.Join(dir, BackupsDirName))
	if err != nil {
		t.Fatalf("read backups dir: %v", err)
	}
	baks := 0
	for _, e := range ents {
		if strings.HasSuffix(e.Name(), ".bak") {
			baks++
		}
	}
	if baks != 1 {
		t.Fatalf("want 1 backup after second save, got %d", baks)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Name != "v2" || len(f.Board.Items) != 1 {
		t.Fatalf("main file should hold the second save, got name=%q items=%d", f.Name, len(f.Board.Items))
	}
}

func TestLoadRecoversFromLatestBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "case.board.json")
	b := sampleBoard()
	if err := Save(path, "good", b); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := Save(path, "newer", b); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	// Corrupt the main file.
	if err := os.WriteFile(path, []byte("{truncated"), 0o644); err != nil {
		t.Fatalf("corrupt file: %v", err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load should recover from backup: %v", err)
	}
	if f.Name != "good" {
		t.Fatalf("recovered name = %q, want the backed-up save", f.Name)
	}
	if len(f.Board.Items) != 2 {
		t.Fatalf("recovered board lost items: %d", len(f.Board.Items))
	}
}

func TestLoadFailsWithoutFileOrBackup(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("Load of missing file without backups should fail")
	}
}

func TestLoadMigratesLegacyImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.board.json")
	legacy := `{
  "formatVersion": 1,
  "board": {
    "items": [
      {"id": "img", "type": "image", "x": 0, "y": 0, "zIndex": 1,
       "data": {"imageUrl": "https://example.com/x.png", "width": 300, "height": 200}}
    ],
    "connections": []
  }
}
`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("write legacy file: %v", err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !f.Migrated {
		t.Fatalf("legacy file should report migration")
	}
	it := f.Board.Items[0]
	if !it.MigrationApplied {
		t.Fatalf("item not marked migrated")
	}
	if it.Data.Width != nil || it.Data.Height != nil {
		t.Fatalf("legacy dimensions still authoritative: %+v", it.Data)
	}
	if it.Data.OldWidth == nil || *it.Data.OldWidth != 300 {
		t.Fatalf("old width not preserved: %+v", it.Data.OldWidth)
	}
}
