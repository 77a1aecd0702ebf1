/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package render draws a board frame by frame onto a raster canvas. Draw
// requests coalesce through a scheduler so pointer-move bursts cost one
// frame; every frame redraws the world from the engine snapshot under the
// camera transform and finishes with screen-space overlays (handles, box
// select, board chrome). The frame callback never panics outward; draw
// errors are logged and the frame dropped.
package render

import (
	"image"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/fogleman/gg"

	"corkboard/internal/assets"
	"corkboard/internal/board"
	"corkboard/internal/camera"
	"corkboard/internal/domain"
	"corkboard/internal/geom"
	"corkboard/internal/log"
	"corkboard/internal/pick"
	"corkboard/internal/textfit"
)

// ConnPreview is the in-flight connection overlay: a pinned source item and
// the cursor's screen position.
type ConnPreview struct {
	FromID string
	SX, SY float64
}

// Renderer owns the canvas for one board view.
type Renderer struct {
	eng    *board.Engine
	cam    *camera.Camera
	assets *assets.Cache
	fitter *textfit.Fitter
	faces  *textfit.FaceMeasurer
	picker *pick.Picker
	sched  *Scheduler
	logger *slog.Logger

	mu    sync.Mutex
	dc    *gg.Context
	w, h  int
	lost  bool
	epoch time.Time
	now   func() time.Time

	selected         map[string]struct{}
	hoverItem        string
	hoverConn        string
	pulseTarget      string
	dragged          string
	preview          *ConnPreview
	boxSelect        *geom.Rect
	guides           []geom.Seg
	showGroupBorders bool
	showCenter       bool
	sceneSeed        int

	present func(image.Image)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithPresent installs the callback receiving each finished frame.
func WithPresent(fn func(image.Image)) Option {
	return func(r *Renderer) { r.present = fn }
}

// WithAssets shares an existing asset cache instead of creating one.
func WithAssets(c *assets.Cache) Option {
	return func(r *Renderer) { r.assets = c }
}

// WithClock overrides the time source driving the pulse animation.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// New builds a renderer over an engine and camera with a w x h canvas.
func New(eng *board.Engine, cam *camera.Camera, w, h int, opts ...Option) (*Renderer, error) {
	faces, err := textfit.NewGoFontMeasurer()
	if err != nil {
		return nil, err
	}
	r := &Renderer{
		eng:      eng,
		cam:      cam,
		faces:    faces,
		fitter:   textfit.NewFitter(faces),
		logger:   log.WithComponent("render"),
		w:        w,
		h:        h,
		epoch:    time.Now(),
		now:      time.Now,
		selected: make(map[string]struct{}),
	}
	for _, o := range opts {
		o(r)
	}
	if r.assets == nil {
		r.assets = assets.NewCache()
	}
	r.picker = pick.New(r.ItemDims)
	r.sched = NewScheduler(r.performDraw)
	// Loads resolving in the background mark the frame dirty.
	r.assets.SetOnReady(func() { r.Draw() })
	cam.SetViewport(float64(w), float64(h))
	return r, nil
}

// Picker returns the hit tester bound to this renderer's dimensions, so
// clicks measure image items by their loaded aspect.
func (r *Renderer) Picker() *pick.Picker { return r.picker }

// Assets exposes the image cache (shared with export).
func (r *Renderer) Assets() *assets.Cache { return r.assets }

// ItemDims resolves the drawn size of an item, consulting the asset cache
// for image aspect ratios.
func (r *Renderer) ItemDims(it domain.Item) (float64, float64) {
	if it.Type == domain.ItemImage {
		if img, st := r.assets.Lookup(it.Data.ImageURL); st == assets.StateReady {
			return domain.BaseSize(it, assets.Aspect(img))
		}
	}
	return domain.BaseSize(it, 0)
}

// Draw schedules a redraw on the next frame tick; bursts coalesce.
func (r *Renderer) Draw() { r.sched.Request() }

// Refresh is an alias for Draw.
func (r *Renderer) Refresh() { r.Draw() }

// Stop halts the frame scheduler.
func (r *Renderer) Stop() { r.sched.Stop() }

// SetSelected replaces the selection with a single item; empty clears it.
func (r *Renderer) SetSelected(id string) {
	r.mu.Lock()
	r.selected = make(map[string]struct{})
	if id != "" {
		r.selected[id] = struct{}{}
	}
	r.mu.Unlock()
	r.Draw()
}

// SetSelection replaces the selection with a set of items.
func (r *Renderer) SetSelection(ids []string) {
	r.mu.Lock()
	r.selected = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		r.selected[id] = struct{}{}
	}
	r.mu.Unlock()
	r.Draw()
}

// Selection returns the selected ids.
func (r *Renderer) Selection() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.selected))
	for id := range r.selected {
		out = append(out, id)
	}
	return out
}

// SetHoverItem marks the hovered item; empty clears.
func (r *Renderer) SetHoverItem(id string) {
	r.mu.Lock()
	changed := r.hoverItem != id
	r.hoverItem = id
	r.mu.Unlock()
	if changed {
		r.Draw()
	}
}

// SetHoverConnection marks the hovered connection; empty clears.
func (r *Renderer) SetHoverConnection(id string) {
	r.mu.Lock()
	changed := r.hoverConn != id
	r.hoverConn = id
	r.mu.Unlock()
	if changed {
		r.Draw()
	}
}

// SetPulseTarget marks the connection-draw target item that pulses.
func (r *Renderer) SetPulseTarget(id string) {
	r.mu.Lock()
	r.pulseTarget = id
	r.mu.Unlock()
	r.Draw()
}

// SetDragged names the item drawn last while a drag is live.
func (r *Renderer) SetDragged(id string) {
	r.mu.Lock()
	r.dragged = id
	r.mu.Unlock()
}

// SetConnectionPreview pins the preview source and cursor position.
func (r *Renderer) SetConnectionPreview(fromID string, sx, sy float64) {
	r.mu.Lock()
	r.preview = &ConnPreview{FromID: fromID, SX: sx, SY: sy}
	r.mu.Unlock()
	r.Draw()
}

// ClearConnectionPreview discards the preview overlay.
func (r *Renderer) ClearConnectionPreview() {
	r.mu.Lock()
	r.preview = nil
	r.pulseTarget = ""
	r.mu.Unlock()
	r.Draw()
}

// SetBoxSelectRect sets the screen-space rubber band; nil clears it.
func (r *Renderer) SetBoxSelectRect(rect *geom.Rect) {
	r.mu.Lock()
	r.boxSelect = rect
	r.mu.Unlock()
	r.Draw()
}

// SetGuides installs the world-space alignment guides shown during drags;
// nil clears them.
func (r *Renderer) SetGuides(segs []geom.Seg) {
	r.mu.Lock()
	r.guides = segs
	r.mu.Unlock()
	r.Draw()
}

// SetShowGroupBorders toggles group border overlays.
func (r *Renderer) SetShowGroupBorders(on bool) {
	r.mu.Lock()
	r.showGroupBorders = on
	r.mu.Unlock()
	r.Draw()
}

// SetShowCenter toggles the world-origin crosshair.
func (r *Renderer) SetShowCenter(on bool) {
	r.mu.Lock()
	r.showCenter = on
	r.mu.Unlock()
	r.Draw()
}

// SetSceneSeed fixes the per-scene component of document effect seeding.
func (r *Renderer) SetSceneSeed(seed int) {
	r.mu.Lock()
	r.sceneSeed = seed
	r.mu.Unlock()
}

// SetSize resizes the canvas, rebuilding the draw context.
func (r *Renderer) SetSize(w, h int) {
	r.mu.Lock()
	r.w, r.h = w, h
	r.dc = nil
	r.mu.Unlock()
	r.cam.SetViewport(float64(w), float64(h))
	r.Draw()
}

// InvalidateContext handles a lost draw context: the context is rebuilt and
// every cache restarts cold on the next frame.
func (r *Renderer) InvalidateContext() {
	r.mu.Lock()
	r.lost = true
	r.mu.Unlock()
	r.Draw()
}

func (r *Renderer) performDraw() {
	img := r.RenderFrame()
	if img != nil && r.present != nil {
		r.present(img)
	}
}

// RenderFrame draws one complete frame and returns it. Any panic inside the
// pipeline is logged and yields a nil frame instead of crashing the loop.
func (r *Renderer) RenderFrame() (img image.Image) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("frame draw failed", "panic", p)
			img = nil
		}
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lost {
		r.dc = nil
		r.assets.Clear()
		r.fitter.Clear()
		r.lost = false
	}
	if r.dc == nil || r.dc.Width() != r.w || r.dc.Height() != r.h {
		r.dc = gg.NewContext(r.w, r.h)
	}
	dc := r.dc

	b := r.eng.Snapshot()

	// 1. Clear, then world pass under the camera transform.
	dc.Identity()
	dc.SetHexColor("#1a1a1a")
	dc.Clear()

	dc.Push()
	dc.Translate(r.cam.X, r.cam.Y)
	dc.Scale(r.cam.Zoom, r.cam.Zoom)

	r.drawBackground(dc, b)
	r.drawConnections(dc, b)
	r.drawItems(dc, b)
	if len(r.guides) > 0 {
		r.drawGuides(dc)
	}
	if r.preview != nil {
		r.drawConnectionPreview(dc, b)
	}
	if r.showGroupBorders {
		r.drawGroupBorders(dc, b)
	}
	if r.showCenter {
		r.drawOriginCross(dc)
	}
	dc.Pop()

	// 2. Screen-space overlays.
	r.drawBoardChrome(dc, b)
	if r.boxSelect != nil {
		r.drawBoxSelect(dc, *r.boxSelect)
	}
	r.drawHandles(dc, b)

	return dc.Image()
}

// pulsePhase returns the 0..1 alpha factor of the endpoint pulse.
func (r *Renderer) pulsePhase() float64 {
	t := float64(r.now().Sub(r.epoch).Milliseconds())
	return 0.5 + 0.5*math.Sin(t/200)
}
