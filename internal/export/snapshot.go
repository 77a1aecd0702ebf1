/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"fmt"
	"image"
	"math"

	"corkboard/internal/board"
	"corkboard/internal/camera"
	"corkboard/internal/domain"
	"corkboard/internal/geom"
	"corkboard/internal/pick"
	"corkboard/internal/render"
)

// Options controls board snapshot output for all formats.
// - Scale maps world units to output pixels; default 1.
// - Margin pads the content bounds in world units.
// - MaxDim caps the output pixel size per side; the scale is reduced to fit.
//
//nolint:revive // clarity is preferred
type Options struct {
	Scale  float64
	Margin float64
	MaxDim int
}

const (
	defaultScale  = 1.0
	defaultMargin = 40.0
	defaultMaxDim = 4096

	// An empty board still exports a canvas of this size.
	emptyBoardW = 800.0
	emptyBoardH = 600.0
)

// Default colors for vector output when an element carries no styling.
// Raster output inherits the canvas defaults through the renderer.
const (
	exportNoteColor     = "#ffeb3b"
	exportStandardColor = "#9e9e9e"
	exportPaperColor    = "#faf8f0"
	exportImageColor    = "#d8d8d8"
	exportCanvasColor   = "#c19a6b"
	exportTwineColor    = "#8b4513"
	exportFrameColor    = "#3c322a"
)

func (o Options) withDefaults() Options {
	if o.Scale <= 0 {
		o.Scale = defaultScale
	}
	if o.Margin <= 0 {
		o.Margin = defaultMargin
	}
	if o.MaxDim <= 0 {
		o.MaxDim = defaultMaxDim
	}
	return o
}

// ContentBounds returns the world rect covering every item plus the margin.
// Connections hang between item centers, so item rects already bound them
// up to the curve sag covered by the margin.
func ContentBounds(b *domain.Board, margin float64) geom.Rect {
	p := pick.New(nil)
	var r geom.Rect
	first := true
	for _, it := range b.Items {
		ir := p.ItemRect(it)
		if first {
			r = ir
			first = false
		} else {
			r = r.Union(ir)
		}
	}
	if first {
		r = geom.R(0, 0, emptyBoardW, emptyBoardH)
	}
	return geom.R(r.X-margin, r.Y-margin, r.W+2*margin, r.H+2*margin)
}

// RenderSnapshot draws the whole board into an image, fitted to its content
// bounds. The full canvas pipeline runs, so the snapshot matches what the
// board view shows minus selection state.
func RenderSnapshot(b *domain.Board, opt Options) (image.Image, error) {
	opt = opt.withDefaults()
	bounds := ContentBounds(b, opt.Margin)

	scale := opt.Scale
	if s := float64(opt.MaxDim) / bounds.W; s < scale {
		scale = s
	}
	if s := float64(opt.MaxDim) / bounds.H; s < scale {
		scale = s
	}
	pxW := int(math.Ceil(bounds.W * scale))
	pxH := int(math.Ceil(bounds.H * scale))
	if pxW < 1 {
		pxW = 1
	}
	if pxH < 1 {
		pxH = 1
	}

	eng := board.NewEngine(b)
	cam := camera.New(float64(pxW), float64(pxH))
	cam.Zoom = scale
	cam.X = -bounds.X * scale
	cam.Y = -bounds.Y * scale

	r, err := render.New(eng, cam, pxW, pxH)
	if err != nil {
		return nil, fmt.Errorf("snapshot renderer: %w", err)
	}
	// One-shot rendering: no scheduler loop needed.
	r.Stop()
	img := r.RenderFrame()
	if img == nil {
		return nil, errors.New("render snapshot failed")
	}
	return img, nil
}

// itemFill picks the body color vector exporters paint an item with.
func itemFill(it domain.Item) string {
	if it.Color != "" {
		return it.Color
	}
	switch it.Type {
	case domain.ItemNote:
		return exportNoteColor
	case domain.ItemImage:
		return exportImageColor
	case domain.ItemDocument:
		return exportPaperColor
	default:
		return exportStandardColor
	}
}

func canvasColorOf(b *domain.Board) string {
	if b.CanvasColor != "" {
		return b.CanvasColor
	}
	return exportCanvasColor
}
