/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"strings"
	"testing"

	"corkboard/internal/domain"
)

func TestBuildLaysOutSectionsAsColumns(t *testing.T) {
	o, errs := Parse(`Board: Case wall

# Leads
note Alibi: Check the alibi
text Memo: Call the lab

# People
Witness: Saw a blue car`)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %+v", errs)
	}

	b, berrs := Build(o)
	if len(berrs) != 0 {
		t.Fatalf("unexpected build errors: %+v", berrs)
	}
	if len(b.Items) != 5 {
		t.Fatalf("expected 5 items (2 headers, 3 nodes), got %d", len(b.Items))
	}

	hdr := b.Items[0]
	if hdr.Type != domain.ItemText || hdr.Label != "Leads" {
		t.Fatalf("expected Leads header first, got %+v", hdr)
	}
	if hdr.X != 60 || hdr.Y != 60 {
		t.Fatalf("unexpected header position: %g,%g", hdr.X, hdr.Y)
	}
	if hdr.Data.Width == nil || *hdr.Data.Width != 200 || hdr.Data.Height == nil || *hdr.Data.Height != 40 {
		t.Fatalf("unexpected header size: %+v", hdr.Data)
	}

	alibi := b.Items[1]
	if alibi.Type != domain.ItemNote || alibi.Data.Text != "Check the alibi" {
		t.Fatalf("unexpected note: %+v", alibi)
	}
	// Below the header: 60 + 40 header height + 40 row gap.
	if alibi.X != 60 || alibi.Y != 140 {
		t.Fatalf("unexpected note position: %g,%g", alibi.X, alibi.Y)
	}
	// Notes are 150 tall, so the next row starts at 140+150+40.
	if memo := b.Items[2]; memo.Y != 330 {
		t.Fatalf("unexpected memo y: %g", memo.Y)
	}

	// Second section opens a new column: 60 + 200 column width + 80 gap.
	people := b.Items[3]
	if people.Label != "People" || people.X != 340 || people.Y != 60 {
		t.Fatalf("unexpected second header: %+v", people)
	}
	if witness := b.Items[4]; witness.X != 340 || witness.Y != 140 {
		t.Fatalf("unexpected witness position: %g,%g", witness.X, witness.Y)
	}

	for i, it := range b.Items {
		if it.ZIndex != i+1 {
			t.Fatalf("expected z-index %d for item %d, got %d", i+1, i, it.ZIndex)
		}
	}
}

func TestBuildResolvesLinksCaseInsensitive(t *testing.T) {
	o, errs := Parse(`# Wall
note Clue: muddy boots
note Car: blue sedan

clue -> CAR : leads to`)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %+v", errs)
	}

	b, berrs := Build(o)
	if len(berrs) != 0 {
		t.Fatalf("unexpected build errors: %+v", berrs)
	}
	if len(b.Connections) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(b.Connections))
	}
	conn := b.Connections[0]
	if conn.FromItem != b.Items[1].ID || conn.ToItem != b.Items[2].ID {
		t.Fatalf("unexpected connection endpoints: %+v", conn)
	}
	if conn.LabelItemID == "" {
		t.Fatalf("expected a label item riding the connection")
	}
	lbl := b.ItemByID(conn.LabelItemID)
	if lbl == nil || lbl.Type != domain.ItemText || lbl.Data.Text != "leads to" {
		t.Fatalf("unexpected label item: %+v", lbl)
	}
	// Midpoint of the two note centers (135,215) and (135,405), minus half
	// the label size.
	if lbl.X != 85 || lbl.Y != 295 {
		t.Fatalf("unexpected label position: %g,%g", lbl.X, lbl.Y)
	}
}

func TestBuildReportsUnknownAndSelfLinks(t *testing.T) {
	o, errs := Parse(`note A: first

A -> B
A -> a`)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %+v", errs)
	}

	b, berrs := Build(o)
	if len(b.Connections) != 0 {
		t.Fatalf("expected no connections, got %d", len(b.Connections))
	}
	if len(berrs) != 2 {
		t.Fatalf("expected 2 build errors, got %+v", berrs)
	}
	if berrs[0].Line != 3 || !strings.Contains(berrs[0].Message, "unknown item label") {
		t.Fatalf("unexpected first error: %+v", berrs[0])
	}
	if berrs[1].Line != 4 || !strings.Contains(berrs[1].Message, "itself") {
		t.Fatalf("unexpected second error: %+v", berrs[1])
	}
}

func TestBuildAppliesTags(t *testing.T) {
	o, errs := Parse(`# T
note Hot: lead @red @pushpin
image Mug: pic.png @portrait @tape-top
doc Memo: report @legal @large @torn
text Title: headline @blue`)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %+v", errs)
	}

	b, berrs := Build(o)
	if len(berrs) != 0 {
		t.Fatalf("unexpected build errors: %+v", berrs)
	}

	hot := b.Items[1]
	if hot.Color != "#ef9a9a" || hot.Data.FastenerType != domain.FastenerPushpin {
		t.Fatalf("unexpected note tags applied: %+v", hot)
	}
	if hot.Data.Text != "lead" {
		t.Fatalf("expected tags stripped from note text, got %q", hot.Data.Text)
	}

	mug := b.Items[2]
	if mug.Data.ImageURL != "pic.png" || mug.Data.Preset != domain.PresetPortrait || mug.Data.FastenerType != domain.FastenerTapeTop {
		t.Fatalf("unexpected image tags applied: %+v", mug)
	}

	memo := b.Items[3]
	if memo.Data.Preset != domain.DocLegal || memo.Data.Size != domain.SizeLarge || memo.Data.Effect != domain.EffectTorn {
		t.Fatalf("unexpected document tags applied: %+v", memo)
	}

	title := b.Items[4]
	if title.Data.TextColor != "#90caf9" {
		t.Fatalf("expected blue text color on text item, got %+v", title)
	}
}
