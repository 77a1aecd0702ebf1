/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// PolaroidBottomMargin is the extra framing below the photo area of the
// portrait preset, in world pixels.
const PolaroidBottomMargin = 15.0

// imageLongEdges maps an image preset to the long edge of the photo area.
var imageLongEdges = map[string]float64{
	PresetPortrait: 65,
	PresetSmall:    120,
	PresetMedium:   140,
	PresetLarge:    200,
	PresetXL:       280,
	PresetXXL:      400,
}

// ImageLongEdge returns the photo long edge for an image preset.
func ImageLongEdge(preset string) (float64, bool) {
	e, ok := imageLongEdges[preset]
	return e, ok
}

// docSizes maps a document size name to its paper dimensions.
var docSizes = map[string][2]float64{
	SizeSmall:  {60, 60},
	SizeMedium: {100, 120},
	SizeLarge:  {140, 180},
	SizeXLarge: {200, 260},
}

// DocSizeDims returns the paper dimensions for a document size name.
func DocSizeDims(size string) (w, h float64, ok bool) {
	d, ok := docSizes[size]
	return d[0], d[1], ok
}

// DefaultSize returns the intrinsic size of an item type when neither
// explicit dimensions nor a preset apply.
func DefaultSize(t ItemType) (w, h float64) {
	switch t {
	case ItemNote:
		return 150, 150
	case ItemText:
		return 200, 100
	case ItemImage:
		e := imageLongEdges[PresetMedium]
		return e, e
	case ItemDocument:
		d := docSizes[SizeMedium]
		return d[0], d[1]
	default:
		return 100, 100
	}
}

// BaseSize resolves the drawn dimensions of an item. Explicit data
// dimensions always win; otherwise image items scale their preset's long
// edge by the actual image aspect (width/height; pass 0 while the asset is
// unresolved) and document items use their size table. The portrait preset
// adds the polaroid bottom margin after scaling.
func BaseSize(it Item, aspect float64) (w, h float64) {
	w, h = fallbackSize(it, aspect)
	if it.Data.Width != nil {
		w = *it.Data.Width
	}
	if it.Data.Height != nil {
		h = *it.Data.Height
	}
	return w, h
}

func fallbackSize(it Item, aspect float64) (float64, float64) {
	switch it.Type {
	case ItemImage:
		edge, ok := ImageLongEdge(it.Data.Preset)
		if !ok {
			return DefaultSize(ItemImage)
		}
		w, h := scaleToLongEdge(edge, aspect)
		if it.Data.Preset == PresetPortrait {
			h += PolaroidBottomMargin
		}
		return w, h
	case ItemDocument:
		if w, h, ok := DocSizeDims(it.Data.Size); ok {
			return w, h
		}
		return DefaultSize(ItemDocument)
	default:
		return DefaultSize(it.Type)
	}
}

// scaleToLongEdge fits an aspect ratio into a square of the given edge. An
// unknown aspect (<= 0) yields a square placeholder.
func scaleToLongEdge(edge, aspect float64) (w, h float64) {
	switch {
	case aspect <= 0:
		return edge, edge
	case aspect >= 1:
		return edge, edge / aspect
	default:
		return edge * aspect, edge
	}
}
