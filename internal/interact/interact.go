/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package interact turns pointer and keyboard events into board mutations
// through an explicit state machine. One Controller serves one board view;
// it owns the selection, drives the renderer's transient overlays (hover,
// rubber band, drag guides, connection preview) and sends mutations through
// the relay client. All methods run on the UI goroutine.
package interact

import (
	"context"
	"log/slog"
	"math"

	"corkboard/internal/board"
	"corkboard/internal/camera"
	"corkboard/internal/domain"
	"corkboard/internal/geom"
	applog "corkboard/internal/log"
	"corkboard/internal/pick"
	"corkboard/internal/render"
)

// State names the interaction the controller is in the middle of.
type State string

const (
	StateIdle              State = "idle"
	StateBoxSelecting      State = "box-selecting"
	StateDraggingItems     State = "dragging-items"
	StateResizing          State = "resizing"
	StateRotating          State = "rotating"
	StateDrawingConnection State = "drawing-connection"
	StatePanning           State = "panning"
)

// Button identifies the pointer button of a down event.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Modifiers carries the keyboard modifier state of an input event.
type Modifiers struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Space bool
}

const (
	// minItemSize is the smallest edge a resize can produce.
	minItemSize = 20.0
	// clickSlop is the screen distance under which a drag counts as a click.
	clickSlop = 2.0
	// connHoverThreshold is the screen distance for connection hover hits.
	connHoverThreshold = 12.0
	// snapThreshold is the on-screen snap distance for drag guides.
	snapThreshold = 8.0
	// pasteOffset displaces pasted items from their copied position.
	pasteOffset = 20.0
)

// Mutator is the slice of the relay client the controller drives. The relay
// client satisfies it; tests substitute a recorder.
type Mutator interface {
	AddItem(ctx context.Context, sceneID string, it domain.Item) error
	UpdateItem(ctx context.Context, sceneID, id string, changes map[string]any) error
	UpdateItems(ctx context.Context, sceneID string, updates []board.ItemUpdate) error
	AddConnection(ctx context.Context, sceneID, fromID, toID string) error
	DeleteItem(ctx context.Context, sceneID, id string) error
	DuplicateItems(ctx context.Context, sceneID string, ids []string, dx, dy float64) error
}

// Controller is the interaction state machine for one board view.
type Controller struct {
	eng      *board.Engine
	cam      *camera.Camera
	renderer *render.Renderer
	picker   *pick.Picker
	mut      Mutator
	sceneID  string
	logger   *slog.Logger

	state     State
	selection []string

	pressX, pressY float64
	lastX, lastY   float64

	// DraggingItems
	dragIDs        []string
	dragStart      map[string]geom.Rect
	dragActive     bool
	pressHit       string
	pressHitWasSel bool

	// Resizing / Rotating
	targetID   string
	startRect  geom.Rect
	corner     pick.HandleKind
	startAngle float64
	grabAngle  float64

	// DrawingConnection
	connectFrom string
}

// New builds a controller over the view's engine, camera and renderer.
// Mutations for sceneID go through mut.
func New(eng *board.Engine, cam *camera.Camera, r *render.Renderer, mut Mutator, sceneID string) *Controller {
	return &Controller{
		eng:      eng,
		cam:      cam,
		renderer: r,
		picker:   r.Picker(),
		mut:      mut,
		sceneID:  sceneID,
		logger:   applog.WithScene(applog.WithComponent("interact"), sceneID),
		state:    StateIdle,
	}
}

// State reports the current interaction state.
func (c *Controller) State() State { return c.state }

// Selection returns the selected item ids in selection order.
func (c *Controller) Selection() []string {
	return append([]string(nil), c.selection...)
}

// SetSelection replaces the selection.
func (c *Controller) SetSelection(ids []string) {
	c.selection = append([]string(nil), ids...)
	c.renderer.SetSelection(c.selection)
}

// PointerDown starts an interaction. Screen coordinates.
func (c *Controller) PointerDown(ctx context.Context, sx, sy float64, btn Button, mods Modifiers) {
	c.pressX, c.pressY = sx, sy
	c.lastX, c.lastY = sx, sy

	if btn == ButtonMiddle || mods.Space {
		if c.state != StateIdle {
			c.cancel(ctx)
		}
		c.state = StatePanning
		return
	}
	if btn != ButtonLeft || c.state != StateIdle {
		return
	}

	b := c.eng.Snapshot()

	// Handles first: they extend beyond the item's bounds.
	if len(c.selection) == 1 {
		if it := b.ItemByID(c.selection[0]); it != nil {
			if kind, ok := c.picker.HandleAt(*it, c.cam, sx, sy); ok {
				c.targetID = it.ID
				c.startRect = c.picker.ItemRect(*it)
				if kind == pick.HandleRotate {
					c.state = StateRotating
					c.startAngle = it.Rotation
					c.grabAngle = c.pointerAngle(sx, sy, c.startRect.Center())
				} else {
					c.state = StateResizing
					c.corner = kind
				}
				return
			}
		}
	}

	hit := c.picker.ItemAt(b, c.cam, sx, sy, 0)
	if hit == nil {
		c.state = StateBoxSelecting
		r := geom.R(sx, sy, 0, 0)
		c.renderer.SetBoxSelectRect(&r)
		return
	}

	if mods.Ctrl {
		c.state = StateDrawingConnection
		c.connectFrom = hit.ID
		c.renderer.SetConnectionPreview(hit.ID, sx, sy)
		return
	}

	// Plain press on an item starts a drag; the item joins the selection.
	c.pressHit = hit.ID
	c.pressHitWasSel = c.isSelected(hit.ID)
	if !c.pressHitWasSel {
		if mods.Shift {
			c.SetSelection(append(c.selection, hit.ID))
		} else {
			c.SetSelection([]string{hit.ID})
		}
	}
	c.state = StateDraggingItems
	c.dragIDs = c.Selection()
	c.dragActive = false
	c.dragStart = make(map[string]geom.Rect, len(c.dragIDs))
	for _, id := range c.dragIDs {
		if it := b.ItemByID(id); it != nil {
			c.dragStart[id] = c.picker.ItemRect(*it)
		}
	}
	c.renderer.SetDragged(hit.ID)
}

// PointerMove advances the active interaction.
func (c *Controller) PointerMove(ctx context.Context, sx, sy float64, mods Modifiers) {
	defer func() { c.lastX, c.lastY = sx, sy }()

	switch c.state {
	case StateIdle:
		c.updateHover(sx, sy)
	case StatePanning:
		c.cam.Pan(sx-c.lastX, sy-c.lastY)
		c.renderer.Draw()
	case StateBoxSelecting:
		r := geom.R(c.pressX, c.pressY, sx-c.pressX, sy-c.pressY)
		c.renderer.SetBoxSelectRect(&r)
	case StateDraggingItems:
		c.dragMove(ctx, sx, sy)
	case StateResizing:
		c.resizeMove(ctx, sx, sy)
	case StateRotating:
		c.rotateMove(ctx, sx, sy, mods)
	case StateDrawingConnection:
		c.renderer.SetConnectionPreview(c.connectFrom, sx, sy)
		c.updatePulseTarget(sx, sy)
	}
}

// PointerUp completes the active interaction.
func (c *Controller) PointerUp(ctx context.Context, sx, sy float64, mods Modifiers) {
	switch c.state {
	case StateBoxSelecting:
		c.finishBoxSelect(sx, sy, mods)
	case StateDraggingItems:
		c.renderer.SetDragged("")
		c.renderer.SetGuides(nil)
		// A press on an already selected item that never moved is a
		// click: shift toggles the item out, a plain click narrows a
		// multi-selection down to it.
		if !c.dragActive && c.pressHitWasSel {
			if mods.Shift {
				kept := make([]string, 0, len(c.selection))
				for _, id := range c.selection {
					if id != c.pressHit {
						kept = append(kept, id)
					}
				}
				c.SetSelection(kept)
			} else if len(c.selection) > 1 {
				c.SetSelection([]string{c.pressHit})
			}
		}
	case StateResizing, StateRotating:
		// Final geometry was applied during the move.
	case StateDrawingConnection:
		c.finishConnection(ctx, sx, sy)
	}
	c.state = StateIdle
	c.dragIDs = nil
	c.dragStart = nil
	c.targetID = ""
	c.connectFrom = ""
}

// Wheel zooms about the cursor.
func (c *Controller) Wheel(delta, sx, sy float64) {
	c.cam.ZoomAt(delta, sx, sy)
	c.renderer.Draw()
}

// KeyDown handles keyboard shortcuts. Key names follow the common DOM-style
// names: "Escape", "Delete", "Backspace", letters lowercase.
func (c *Controller) KeyDown(ctx context.Context, key string, mods Modifiers) {
	switch {
	case key == "Escape":
		c.cancel(ctx)
	case key == "Delete" || key == "Backspace":
		c.deleteSelection(ctx)
	case mods.Ctrl && key == "a":
		b := c.eng.Snapshot()
		ids := make([]string, 0, len(b.Items))
		for _, it := range b.Items {
			ids = append(ids, it.ID)
		}
		c.SetSelection(ids)
	case mods.Ctrl && key == "c":
		if err := c.Copy(); err != nil {
			c.logger.Warn("copy failed", slog.Any("err", err))
		}
	case mods.Ctrl && key == "v":
		if err := c.Paste(ctx); err != nil {
			c.logger.Warn("paste failed", slog.Any("err", err))
		}
	case mods.Ctrl && key == "d":
		if len(c.selection) > 0 {
			_ = c.mut.DuplicateItems(ctx, c.sceneID, c.Selection(), pasteOffset, pasteOffset)
		}
	}
}

// cancel aborts the in-flight interaction, restoring pre-gesture geometry.
func (c *Controller) cancel(ctx context.Context) {
	switch c.state {
	case StateBoxSelecting:
		c.renderer.SetBoxSelectRect(nil)
	case StateDraggingItems:
		if c.dragActive {
			updates := make([]board.ItemUpdate, 0, len(c.dragIDs))
			for _, id := range c.dragIDs {
				start, ok := c.dragStart[id]
				if !ok {
					continue
				}
				updates = append(updates, board.ItemUpdate{
					ID:      id,
					Changes: map[string]any{"x": start.X, "y": start.Y},
				})
			}
			c.applyUpdates(ctx, updates)
		}
		c.renderer.SetDragged("")
		c.renderer.SetGuides(nil)
	case StateResizing:
		c.applyUpdates(ctx, []board.ItemUpdate{{
			ID: c.targetID,
			Changes: map[string]any{
				"x": c.startRect.X,
				"y": c.startRect.Y,
				"data": map[string]any{
					"width":  c.startRect.W,
					"height": c.startRect.H,
				},
			},
		}})
	case StateRotating:
		c.applyUpdates(ctx, []board.ItemUpdate{{
			ID:      c.targetID,
			Changes: map[string]any{"rotation": c.startAngle},
		}})
	case StateDrawingConnection:
		c.renderer.ClearConnectionPreview()
	}
	c.state = StateIdle
	c.dragIDs = nil
	c.dragStart = nil
	c.targetID = ""
	c.connectFrom = ""
}

func (c *Controller) isSelected(id string) bool {
	for _, s := range c.selection {
		if s == id {
			return true
		}
	}
	return false
}

// applyUpdates writes item changes locally for immediate feedback and
// forwards them to the GM. Position writes are absolute, so the loopback
// transport applying them a second time is harmless.
func (c *Controller) applyUpdates(ctx context.Context, updates []board.ItemUpdate) {
	if len(updates) == 0 {
		return
	}
	if err := c.eng.UpdateItems(updates); err != nil {
		c.logger.Warn("local update failed", slog.Any("err", err))
	}
	_ = c.mut.UpdateItems(ctx, c.sceneID, updates)
	c.renderer.Draw()
}

func (c *Controller) updateHover(sx, sy float64) {
	b := c.eng.Snapshot()
	if it := c.picker.ItemAt(b, c.cam, sx, sy, 0); it != nil {
		c.renderer.SetHoverItem(it.ID)
		c.renderer.SetHoverConnection("")
		return
	}
	c.renderer.SetHoverItem("")
	if conn := c.picker.ConnectionAt(b, c.cam, sx, sy, connHoverThreshold); conn != nil {
		c.renderer.SetHoverConnection(conn.ID)
		return
	}
	c.renderer.SetHoverConnection("")
}

func (c *Controller) updatePulseTarget(sx, sy float64) {
	b := c.eng.Snapshot()
	if it := c.picker.ItemAt(b, c.cam, sx, sy, 0); it != nil && it.ID != c.connectFrom {
		c.renderer.SetPulseTarget(it.ID)
		return
	}
	c.renderer.SetPulseTarget("")
}

func (c *Controller) dragMove(ctx context.Context, sx, sy float64) {
	if !c.dragActive && math.Hypot(sx-c.pressX, sy-c.pressY) < clickSlop {
		return
	}
	c.dragActive = true

	wpx, wpy := c.cam.ScreenToWorld(c.pressX, c.pressY)
	wcx, wcy := c.cam.ScreenToWorld(sx, sy)
	dx, dy := wcx-wpx, wcy-wpy

	// Union of dragged items at their tentative position.
	var moving geom.Rect
	first := true
	for _, id := range c.dragIDs {
		start, ok := c.dragStart[id]
		if !ok {
			continue
		}
		r := geom.R(start.X+dx, start.Y+dy, start.W, start.H)
		if first {
			moving, first = r, false
		} else {
			moving = moving.Union(r)
		}
	}
	if first {
		return
	}

	b := c.eng.Snapshot()
	anchors := make([]Anchor, 0, len(b.Items))
	for _, it := range b.Items {
		if c.isDragged(it.ID) {
			continue
		}
		anchors = append(anchors, Anchor{Rect: c.picker.ItemRect(it), Weight: 1})
	}
	snapped, guides := ComputeGuides(moving, anchors, SnapOptions{
		Threshold:     snapThreshold / c.cam.Zoom,
		SnapToEdges:   true,
		SnapToCenters: true,
	})
	dx += snapped.X - moving.X
	dy += snapped.Y - moving.Y

	segs := make([]geom.Seg, len(guides))
	for i, g := range guides {
		segs[i] = g.Seg()
	}
	c.renderer.SetGuides(segs)

	updates := make([]board.ItemUpdate, 0, len(c.dragIDs))
	for _, id := range c.dragIDs {
		start, ok := c.dragStart[id]
		if !ok {
			continue
		}
		updates = append(updates, board.ItemUpdate{
			ID:      id,
			Changes: map[string]any{"x": start.X + dx, "y": start.Y + dy},
		})
	}
	c.applyUpdates(ctx, updates)
}

func (c *Controller) isDragged(id string) bool {
	for _, d := range c.dragIDs {
		if d == id {
			return true
		}
	}
	return false
}

func (c *Controller) resizeMove(ctx context.Context, sx, sy float64) {
	wx, wy := c.cam.ScreenToWorld(sx, sy)
	r := resizeRect(c.startRect, c.corner, geom.P(wx, wy))
	c.applyUpdates(ctx, []board.ItemUpdate{{
		ID: c.targetID,
		Changes: map[string]any{
			"x": r.X,
			"y": r.Y,
			"data": map[string]any{
				"width":  r.W,
				"height": r.H,
			},
		},
	}})
}

// resizeRect recomputes an item rect so the corner opposite the grabbed one
// stays fixed. Resizing works on the axis-aligned bounds, matching the
// axis-aligned hit testing.
func resizeRect(start geom.Rect, corner pick.HandleKind, w geom.Pt) geom.Rect {
	var ax, ay float64
	switch corner {
	case pick.HandleNW:
		ax, ay = start.X+start.W, start.Y+start.H
	case pick.HandleNE:
		ax, ay = start.X, start.Y+start.H
	case pick.HandleSW:
		ax, ay = start.X+start.W, start.Y
	default: // SE
		ax, ay = start.X, start.Y
	}
	nw := math.Max(minItemSize, math.Abs(w.X-ax))
	nh := math.Max(minItemSize, math.Abs(w.Y-ay))
	nx, ny := ax, ay
	if w.X < ax {
		nx = ax - nw
	}
	if w.Y < ay {
		ny = ay - nh
	}
	return geom.R(nx, ny, nw, nh)
}

func (c *Controller) rotateMove(ctx context.Context, sx, sy float64, mods Modifiers) {
	cur := c.pointerAngle(sx, sy, c.startRect.Center())
	deg := c.startAngle + cur - c.grabAngle
	if mods.Shift {
		deg = math.Round(deg/15) * 15
	}
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	c.applyUpdates(ctx, []board.ItemUpdate{{
		ID:      c.targetID,
		Changes: map[string]any{"rotation": deg},
	}})
}

// pointerAngle is the screen-pointer's angle in degrees around a world
// center.
func (c *Controller) pointerAngle(sx, sy float64, center geom.Pt) float64 {
	wx, wy := c.cam.ScreenToWorld(sx, sy)
	return math.Atan2(wy-center.Y, wx-center.X) * 180 / math.Pi
}

func (c *Controller) finishBoxSelect(sx, sy float64, mods Modifiers) {
	c.renderer.SetBoxSelectRect(nil)

	ax, ay := c.cam.ScreenToWorld(c.pressX, c.pressY)
	bx, by := c.cam.ScreenToWorld(sx, sy)
	world := geom.R(ax, ay, bx-ax, by-ay).Normalized()

	ids := c.picker.ItemsInRect(c.eng.Snapshot(), world)
	if mods.Shift {
		for _, id := range ids {
			if !c.isSelected(id) {
				c.selection = append(c.selection, id)
			}
		}
		c.SetSelection(c.selection)
		return
	}
	c.SetSelection(ids)
}

func (c *Controller) finishConnection(ctx context.Context, sx, sy float64) {
	from := c.connectFrom
	c.renderer.ClearConnectionPreview()

	target := c.picker.ItemAt(c.eng.Snapshot(), c.cam, sx, sy, 0)
	if target == nil || target.ID == from {
		return
	}
	if err := c.mut.AddConnection(ctx, c.sceneID, from, target.ID); err != nil {
		c.logger.Warn("add connection failed", slog.Any("err", err))
	}
	c.renderer.Draw()
}

func (c *Controller) deleteSelection(ctx context.Context) {
	if len(c.selection) == 0 {
		return
	}
	for _, id := range c.Selection() {
		if err := c.mut.DeleteItem(ctx, c.sceneID, id); err != nil {
			c.logger.Warn("delete failed", slog.String("item", id), slog.Any("err", err))
		}
	}
	c.SetSelection(nil)
	c.renderer.Draw()
}
