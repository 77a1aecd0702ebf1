/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"fmt"
	"strings"

	"corkboard/internal/domain"
)

// Layout constants for the generated board, in world units. Sections become
// columns left to right; nodes stack top to bottom within their column.
const (
	layoutStartX  = 60.0
	layoutStartY  = 60.0
	layoutColGap  = 80.0
	layoutRowGap  = 40.0
	layoutMinColW = 200.0

	sectionHeaderW = 200.0
	sectionHeaderH = 40.0

	linkLabelW = 100.0
	linkLabelH = 30.0
)

// tagColors maps color tag names to the canvas palette.
var tagColors = map[string]string{
	"yellow": "#ffeb3b",
	"red":    "#ef9a9a",
	"blue":   "#90caf9",
	"green":  "#a5d6a7",
	"orange": "#ffcc80",
	"pink":   "#f48fb1",
	"purple": "#ce93d8",
}

// Build lays out an outline as a board. Each section becomes a column headed
// by a text item; links are resolved against item labels case-insensitively,
// first definition wins. Unresolvable or self-referential links are reported
// and skipped; a link label becomes a small text item riding the string.
func Build(o Outline) (*domain.Board, []Error) {
	b := &domain.Board{Items: []domain.Item{}, Connections: []domain.Connection{}}
	var errs []Error

	byLabel := map[string]string{}
	z := 0
	x := layoutStartX

	for _, sec := range o.Sections {
		y := layoutStartY
		colW := layoutMinColW

		if strings.TrimSpace(sec.Title) != "" {
			z++
			b.Items = append(b.Items, domain.Item{
				ID:     domain.NewID(),
				Type:   domain.ItemText,
				X:      x,
				Y:      y,
				Label:  sec.Title,
				ZIndex: z,
				Data: domain.ItemData{
					Width:  domain.Float64(sectionHeaderW),
					Height: domain.Float64(sectionHeaderH),
					Text:   sec.Title,
				},
			})
			y += sectionHeaderH + layoutRowGap
		}

		for _, n := range sec.Nodes {
			it := newItem(n)
			it.X = x
			it.Y = y
			z++
			it.ZIndex = z
			applyTags(&it, n.Tags)
			b.Items = append(b.Items, it)

			w, h := domain.BaseSize(it, 0)
			if w > colW {
				colW = w
			}
			y += h + layoutRowGap

			if n.Label != "" {
				key := strings.ToLower(n.Label)
				if _, ok := byLabel[key]; !ok {
					byLabel[key] = it.ID
				}
			}
		}

		x += colW + layoutColGap
	}

	for _, l := range o.Links {
		from, okFrom := byLabel[strings.ToLower(l.From)]
		if !okFrom {
			errs = append(errs, Error{Line: l.LineNo, Column: 1, Message: fmt.Sprintf("unknown item label %q", l.From)})
			continue
		}
		to, okTo := byLabel[strings.ToLower(l.To)]
		if !okTo {
			errs = append(errs, Error{Line: l.LineNo, Column: 1, Message: fmt.Sprintf("unknown item label %q", l.To)})
			continue
		}
		if from == to {
			errs = append(errs, Error{Line: l.LineNo, Column: 1, Message: fmt.Sprintf("cannot link %q to itself", l.From)})
			continue
		}

		conn := domain.Connection{ID: domain.NewID(), FromItem: from, ToItem: to}
		if l.Label != "" {
			fi := b.ItemByID(from)
			ti := b.ItemByID(to)
			if fi != nil && ti != nil {
				fx, fy := itemCenter(*fi)
				tx, ty := itemCenter(*ti)
				z++
				lbl := domain.Item{
					ID:     domain.NewID(),
					Type:   domain.ItemText,
					X:      (fx+tx)/2 - linkLabelW/2,
					Y:      (fy+ty)/2 - linkLabelH/2,
					ZIndex: z,
					Data: domain.ItemData{
						Width:  domain.Float64(linkLabelW),
						Height: domain.Float64(linkLabelH),
						Text:   l.Label,
					},
				}
				b.Items = append(b.Items, lbl)
				conn.LabelItemID = lbl.ID
			}
		}
		b.Connections = append(b.Connections, conn)
	}

	return b, errs
}

func newItem(n Node) domain.Item {
	it := domain.Item{ID: domain.NewID(), Label: n.Label}
	switch n.Kind {
	case NodeText:
		it.Type = domain.ItemText
		it.Data.Text = n.Text
	case NodeImage:
		it.Type = domain.ItemImage
		it.Data.ImageURL = n.Text
	case NodeDocument:
		it.Type = domain.ItemDocument
		it.Data.Text = n.Text
	default:
		it.Type = domain.ItemNote
		it.Data.Text = n.Text
	}
	return it
}

// applyTags interprets the tag vocabulary per item type. Color tags map to
// the item color (text color for text items); the remaining tags bind to
// the presets, sizes, effects and fasteners the type supports. Unknown tags
// are ignored so outlines stay forward compatible.
func applyTags(it *domain.Item, tags []string) {
	for _, t := range tags {
		if c, ok := tagColors[t]; ok {
			if it.Type == domain.ItemText {
				it.Data.TextColor = c
			} else {
				it.Color = c
			}
			continue
		}
		switch it.Type {
		case domain.ItemImage:
			switch t {
			case domain.PresetPortrait, domain.PresetSmall, domain.PresetMedium, domain.PresetLarge, domain.PresetXL, domain.PresetXXL:
				it.Data.Preset = t
			case domain.FastenerPushpin, domain.FastenerTapeTop, domain.FastenerTapeTopBottom, domain.FastenerTapeCorners:
				it.Data.FastenerType = t
			}
		case domain.ItemDocument:
			switch t {
			case domain.DocBlank, domain.DocLooseleaf, domain.DocGrid, domain.DocLegal, domain.DocSpiral:
				it.Data.Preset = t
			case domain.SizeSmall, domain.SizeMedium, domain.SizeLarge, domain.SizeXLarge:
				it.Data.Size = t
			case domain.EffectCrumpled, domain.EffectTorn, domain.EffectBurned:
				it.Data.Effect = t
			case domain.FastenerPushpin, domain.FastenerTapeTop, domain.FastenerTapeTopBottom, domain.FastenerTapeCorners:
				it.Data.FastenerType = t
			}
		default:
			switch t {
			case domain.FastenerPushpin, domain.FastenerTapeTop, domain.FastenerTapeTopBottom, domain.FastenerTapeCorners:
				it.Data.FastenerType = t
			}
		}
	}
}

func itemCenter(it domain.Item) (cx, cy float64) {
	w, h := domain.BaseSize(it, 0)
	return it.X + w/2, it.Y + h/2
}
