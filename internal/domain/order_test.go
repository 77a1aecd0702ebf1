package domain

import "testing"

func drawIDs(b *Board) []string {
	items := ItemsInDrawOrder(b)
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func TestDrawOrderGroupedItemLayersWithItsGroup(t *testing.T) {
	// Ungrouped U sits in bucket 0 with z=1; A's group also sits at bucket
	// 0 but A's z=5 draws it after U. Raising the group lifts A above.
	b := &Board{
		Items: []Item{
			{ID: "A", ZIndex: 5, GroupID: "G1"},
			{ID: "U", ZIndex: 1},
		},
		Groups: []Group{{ID: "G1", ZIndex: 0}},
	}
	got := drawIDs(b)
	if got[0] != "U" || got[1] != "A" {
		t.Fatalf("bucket 0 order wrong: %v", got)
	}

	b.Groups[0].ZIndex = 3
	got = drawIDs(b)
	if got[0] != "U" || got[1] != "A" {
		t.Fatalf("raised group order wrong: %v", got)
	}

	b.Groups[0].ZIndex = -1
	got = drawIDs(b)
	if got[0] != "A" || got[1] != "U" {
		t.Fatalf("lowered group should draw first: %v", got)
	}
}

func TestDrawOrderTiesKeepInsertionOrder(t *testing.T) {
	b := &Board{Items: []Item{
		{ID: "first", ZIndex: 2},
		{ID: "second", ZIndex: 2},
		{ID: "third", ZIndex: 2},
	}}
	got := drawIDs(b)
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tie order changed: got %v want %v", got, want)
		}
	}
}

func TestDrawOrderDanglingGroupFallsToBucketZero(t *testing.T) {
	b := &Board{Items: []Item{
		{ID: "ghost", ZIndex: 0, GroupID: "gone"},
		{ID: "plain", ZIndex: 1},
	}}
	got := drawIDs(b)
	if got[0] != "ghost" || got[1] != "plain" {
		t.Fatalf("dangling group should layer as ungrouped: %v", got)
	}
}

func TestBucketItemsSortsByZ(t *testing.T) {
	b := &Board{
		Items: []Item{
			{ID: "a", ZIndex: 3, GroupID: "g"},
			{ID: "b", ZIndex: 1, GroupID: "g"},
			{ID: "c", ZIndex: 2},
			{ID: "d", ZIndex: 0, GroupID: "g"},
		},
		Groups: []Group{{ID: "g"}},
	}
	idx := BucketItems(b, "g")
	if len(idx) != 3 {
		t.Fatalf("expected 3 grouped items, got %d", len(idx))
	}
	want := []string{"d", "b", "a"}
	for i, j := range idx {
		if b.Items[j].ID != want[i] {
			t.Fatalf("bucket order wrong at %d: got %s want %s", i, b.Items[j].ID, want[i])
		}
	}
	if got := BucketItems(b, ""); len(got) != 1 || b.Items[got[0]].ID != "c" {
		t.Fatalf("ungrouped bucket wrong: %v", got)
	}
}
