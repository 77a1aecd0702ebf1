/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model for a corkboard: items pinned to the
// board, string connections between them, and named groups. The structures
// serialize to the JSON stored under a scene's flag namespace, so field names
// are part of the wire format and must stay stable.

// ItemType discriminates the board item variants.
type ItemType string

const (
	ItemNote     ItemType = "note"
	ItemImage    ItemType = "image"
	ItemDocument ItemType = "document"
	ItemText     ItemType = "text"
	ItemStandard ItemType = "standard"
)

// Board background textures. Legal draws a header bar, spiral a frayed
// left edge; cork is the plain pinboard.
const (
	BoardCork   = "cork"
	BoardLegal  = "legal"
	BoardSpiral = "spiral"
)

// Image presets (named frame sizes). Portrait is a polaroid-style frame
// with a wide bottom margin.
const (
	PresetPortrait = "portrait"
	PresetSmall    = "small"
	PresetMedium   = "medium"
	PresetLarge    = "large"
	PresetXL       = "xl"
	PresetXXL      = "xxl"
)

// Document presets (paper styles).
const (
	DocBlank     = "blank"
	DocLooseleaf = "looseleaf"
	DocGrid      = "grid"
	DocLegal     = "legal"
	DocSpiral    = "spiral"
)

// Document sizes.
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
	SizeXLarge = "xlarge"
)

// Fasteners drawn atop image/document items.
const (
	FastenerPushpin       = "pushpin"
	FastenerTapeTop       = "tape-top"
	FastenerTapeTopBottom = "tape-top-bottom"
	FastenerTapeCorners   = "tape-all-corners"
)

// Procedural paper damage for document items.
const (
	EffectNone     = "none"
	EffectCrumpled = "crumpled"
	EffectTorn     = "torn"
	EffectBurned   = "burned"
)

// Image border colors.
const (
	BorderWhite = "white"
	BorderBlack = "black"
	BorderNone  = "none"
)

// ShadowNone disables the drop shadow under an item; the empty string means
// the default shadow.
const ShadowNone = "none"

// ItemData carries the type-specific options of an item. All fields are
// optional; which ones apply depends on Item.Type:
//
//   - note:     width, height, textColor, font, shadow
//   - image:    imageUrl, preset (image preset), borderColor, fastenerType,
//     width, height (authoritative once resized), shadow
//   - document: preset (paper style), size or width/height, text, font,
//     effect, effectIntensity (1..4), effectSeed (0..100),
//     fastenerType, shadow
//   - text:     width, height, textColor, font, text
//
// Width/Height are pointers because "unset" is meaningful: once a user
// resizes an item they become authoritative and displace any preset-derived
// size forever.
type ItemData struct {
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`

	TextColor string `json:"textColor,omitempty"`
	Font      string `json:"font,omitempty"`
	Text      string `json:"text,omitempty"`

	ImageURL    string `json:"imageUrl,omitempty"`
	Preset      string `json:"preset,omitempty"`
	BorderColor string `json:"borderColor,omitempty"`

	Size            string `json:"size,omitempty"`
	Effect          string `json:"effect,omitempty"`
	EffectIntensity int    `json:"effectIntensity,omitempty"`
	EffectSeed      int    `json:"effectSeed,omitempty"`

	FastenerType string `json:"fastenerType,omitempty"`
	Shadow       string `json:"shadow,omitempty"`

	// Pre-migration dimensions preserved by the forward migration; the
	// JSON keys keep their stored underscore names. See MigrateItems.
	OldWidth  *float64 `json:"_oldWidth,omitempty"`
	OldHeight *float64 `json:"_oldHeight,omitempty"`
}

// Clone returns a copy with freshly allocated pointer fields so that edits to
// the clone never leak back into the original.
func (d ItemData) Clone() ItemData {
	c := d
	c.Width = clonePtr(d.Width)
	c.Height = clonePtr(d.Height)
	c.OldWidth = clonePtr(d.OldWidth)
	c.OldHeight = clonePtr(d.OldHeight)
	return c
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Float64 is a convenience for building optional dimension fields.
func Float64(v float64) *float64 { return &v }

// Item is a single element pinned to the board. X/Y are the world
// coordinates of the top-left corner; Rotation is in degrees around the
// item's center; ZIndex orders items within their group bucket.
type Item struct {
	ID               string   `json:"id"`
	Type             ItemType `json:"type"`
	X                float64  `json:"x"`
	Y                float64  `json:"y"`
	Color            string   `json:"color,omitempty"`
	Label            string   `json:"label,omitempty"`
	Rotation         float64  `json:"rotation,omitempty"`
	ZIndex           int      `json:"zIndex"`
	GroupID          string   `json:"groupId,omitempty"`
	Data             ItemData `json:"data"`
	MigrationApplied bool     `json:"_migrationApplied,omitempty"`
}

// Clone returns a deep copy of the item.
func (it Item) Clone() Item {
	c := it
	c.Data = it.Data.Clone()
	return c
}

// Connection is a labeled string between two items. Width is the line
// thickness; LabelItemID optionally names an item that rides the string as
// its draggable label. A connection whose endpoints no longer resolve is
// skipped by the renderer and hit tester, never auto-deleted here.
type Connection struct {
	ID          string  `json:"id"`
	FromItem    string  `json:"fromItem"`
	ToItem      string  `json:"toItem"`
	Color       string  `json:"color,omitempty"`
	Width       float64 `json:"width,omitempty"`
	LabelItemID string  `json:"labelItemId,omitempty"`
}

// DefaultConnWidth is the line thickness used when Connection.Width is zero.
const DefaultConnWidth = 2.0

// EffectiveWidth returns the thickness to draw with.
func (c Connection) EffectiveWidth() float64 {
	if c.Width > 0 {
		return c.Width
	}
	return DefaultConnWidth
}

// Group names a set of items and layers them as a unit: the group's ZIndex
// orders the whole group against other groups and ungrouped items.
type Group struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	ZIndex int    `json:"zIndex"`
}

// Board is the root aggregate stored per scene.
type Board struct {
	Items           []Item       `json:"items"`
	Connections     []Connection `json:"connections"`
	Groups          []Group      `json:"groups,omitempty"`
	CanvasColor     string       `json:"canvasColor,omitempty"`
	BackgroundImage string       `json:"backgroundImage,omitempty"`
	BackgroundScale float64      `json:"backgroundScale,omitempty"`
	BoardType       string       `json:"boardType,omitempty"`
}

// BoardInfo identifies a board in the cross-scene global boards collection.
type BoardInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ItemByID returns a pointer into Items, or nil.
func (b *Board) ItemByID(id string) *Item {
	for i := range b.Items {
		if b.Items[i].ID == id {
			return &b.Items[i]
		}
	}
	return nil
}

// ConnectionByID returns a pointer into Connections, or nil.
func (b *Board) ConnectionByID(id string) *Connection {
	for i := range b.Connections {
		if b.Connections[i].ID == id {
			return &b.Connections[i]
		}
	}
	return nil
}

// GroupByID returns a pointer into Groups, or nil.
func (b *Board) GroupByID(id string) *Group {
	for i := range b.Groups {
		if b.Groups[i].ID == id {
			return &b.Groups[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	c := &Board{
		CanvasColor:     b.CanvasColor,
		BackgroundImage: b.BackgroundImage,
		BackgroundScale: b.BackgroundScale,
		BoardType:       b.BoardType,
	}
	c.Items = make([]Item, len(b.Items))
	for i, it := range b.Items {
		c.Items[i] = it.Clone()
	}
	c.Connections = append([]Connection(nil), b.Connections...)
	c.Groups = append([]Group(nil), b.Groups...)
	return c
}
