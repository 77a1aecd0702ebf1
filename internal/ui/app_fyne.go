//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"corkboard/internal/board"
	"corkboard/internal/boardfile"
	"corkboard/internal/camera"
	"corkboard/internal/config"
	"corkboard/internal/crash"
	"corkboard/internal/domain"
	"corkboard/internal/export"
	"corkboard/internal/interact"
	applog "corkboard/internal/log"
	"corkboard/internal/relay"
	"corkboard/internal/render"
	"corkboard/internal/script"
	"corkboard/internal/store"
	"corkboard/internal/stylepack"
	"corkboard/internal/version"
)

// sceneID names the solo session's single scene in the in-process store.
const sceneID = "desktop"

const (
	// dupOffset displaces duplicates made from the Edit menu.
	dupOffset = 20.0
	// wheelZoomStep is the zoom change of one wheel notch.
	wheelZoomStep = 0.05
)

// session is one open board: its engine is loaded through a loopback relay
// service, so the desktop app drives the same mutation path a relay-backed
// peer would, just without a network hop.
type session struct {
	path string
	name string

	svc      *relay.Service
	client   *relay.Client
	mut      interact.Mutator
	eng      *board.Engine
	cam      *camera.Camera
	renderer *render.Renderer
	ctrl     *interact.Controller

	dirty   bool
	onDirty func()
}

// newSession seeds an in-process store with the board and brings up the
// service, camera, renderer and interaction controller over it.
func newSession(b *domain.Board, name, path string, w, h int, present func(image.Image)) (*session, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode board: %w", err)
	}
	st := store.NewMemory()
	if err := st.SetFlag(context.Background(), sceneID, relay.FlagBoard, raw); err != nil {
		return nil, err
	}
	sock := relay.NewLoopback()
	svc := relay.NewService(sock, st, relay.Identity{UserID: "desktop", IsGM: true})
	svc.Register()
	eng, err := svc.Engine(context.Background(), sceneID)
	if err != nil {
		return nil, fmt.Errorf("load board: %w", err)
	}
	cam := camera.New(float64(w), float64(h))
	s := &session{
		path:   path,
		name:   name,
		svc:    svc,
		client: relay.NewClient(sock),
		eng:    eng,
		cam:    cam,
	}
	r, err := render.New(eng, cam, w, h, render.WithPresent(present))
	if err != nil {
		svc.Close()
		return nil, err
	}
	s.renderer = r
	s.mut = &markingMutator{inner: s.client, mark: s.markDirty}
	s.ctrl = interact.New(eng, cam, r, s.mut, sceneID)
	return s, nil
}

func (s *session) markDirty() {
	s.dirty = true
	if s.onDirty != nil {
		s.onDirty()
	}
}

func (s *session) close() {
	s.svc.Close()
	s.renderer.Stop()
}

// markingMutator forwards mutations to the relay client and flags the
// session dirty on success, so the title bar and the close prompt track
// unsaved changes.
type markingMutator struct {
	inner interact.Mutator
	mark  func()
}

func (m *markingMutator) done(err error) error {
	if err == nil {
		m.mark()
	}
	return err
}

func (m *markingMutator) AddItem(ctx context.Context, scene string, it domain.Item) error {
	return m.done(m.inner.AddItem(ctx, scene, it))
}

func (m *markingMutator) UpdateItem(ctx context.Context, scene, id string, changes map[string]any) error {
	return m.done(m.inner.UpdateItem(ctx, scene, id, changes))
}

func (m *markingMutator) UpdateItems(ctx context.Context, scene string, updates []board.ItemUpdate) error {
	return m.done(m.inner.UpdateItems(ctx, scene, updates))
}

func (m *markingMutator) AddConnection(ctx context.Context, scene, fromID, toID string) error {
	return m.done(m.inner.AddConnection(ctx, scene, fromID, toID))
}

func (m *markingMutator) DeleteItem(ctx context.Context, scene, id string) error {
	return m.done(m.inner.DeleteItem(ctx, scene, id))
}

func (m *markingMutator) DuplicateItems(ctx context.Context, scene string, ids []string, dx, dy float64) error {
	return m.done(m.inner.DuplicateItems(ctx, scene, ids, dx, dy))
}

// Run starts the Fyne-based desktop shell. Pass an optional board file to
// open immediately.
func Run(boardPath string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	dataDir, err := config.DataDir()
	if err != nil {
		l.Warn("data dir unavailable", slog.Any("err", err))
		dataDir = ""
	}

	var sess *session
	ch := &crash.Handle{Dir: dataDir}
	defer func() { crash.Recover(ch) }()

	fyneApp := app.NewWithID("corkboard")
	w := fyneApp.NewWindow("Corkboard")
	// Restore window size from preferences (with sane minimums)
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	zoomLabel := widget.NewLabel("")
	canvasWidget := NewBoardCanvas()

	showGroupBorders := prefs.BoolWithFallback("view.groupBorders", false)
	showCenterMark := prefs.BoolWithFallback("view.centerMark", false)

	updateZoom := func() {
		if sess == nil {
			zoomLabel.SetText("")
			return
		}
		zoomLabel.SetText(fmt.Sprintf("%.0f%%", sess.cam.Zoom*100))
	}
	canvasWidget.onZoom = updateZoom

	updateTitle := func() {
		if sess == nil {
			w.SetTitle("Corkboard")
			return
		}
		title := "Corkboard — " + sess.name
		if sess.dirty {
			title += " *"
		}
		w.SetTitle(title)
	}

	// Dashboard / editor switching
	root := container.NewStack()
	var showEditor func()
	var showDashboard func()

	var closeItem *fyne.MenuItem

	// viewSize is the raster size for a fresh session; before the first
	// layout pass the widget reports zero.
	viewSize := func() (int, int) {
		sz := canvasWidget.Size()
		if sz.Width > 1 && sz.Height > 1 {
			return int(sz.Width), int(sz.Height)
		}
		return winW, winH
	}

	openSession := func(b *domain.Board, name, path string) error {
		vw, vh := viewSize()
		s, err := newSession(b, name, path, vw, vh, canvasWidget.Present)
		if err != nil {
			return err
		}
		if sess != nil {
			sess.close()
		}
		sess = s
		sess.onDirty = updateTitle
		sess.renderer.SetShowGroupBorders(showGroupBorders)
		sess.renderer.SetShowCenter(showCenterMark)
		ch.Name = name
		ch.Snapshot = sess.eng.Snapshot
		canvasWidget.Bind(sess)
		closeItem.Disabled = false
		updateTitle()
		updateZoom()
		showEditor()
		w.Canvas().Focus(canvasWidget)
		return nil
	}

	openBoardFile := func(path string) error {
		abs, _ := filepath.Abs(path)
		l.Info("open board", slog.String("path", abs))
		f, err := boardfile.Load(abs)
		if err != nil {
			return err
		}
		name := f.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
		}
		if err := openSession(&f.Board, name, abs); err != nil {
			return err
		}
		if f.Migrated {
			// Load rewrote legacy items; persist the rewrite.
			if err := boardfile.Save(abs, name, sess.eng.Snapshot()); err != nil {
				l.Warn("persisting migrated board failed", slog.Any("err", err))
			}
		}
		addRecentBoard(prefs, abs)
		status.SetText("Opened " + abs)
		return nil
	}

	saveTo := func(path string) {
		if sess == nil {
			return
		}
		if err := boardfile.Save(path, sess.name, sess.eng.Snapshot()); err != nil {
			l.Error("save failed", slog.Any("err", err))
			dialog.ShowError(err, w)
			return
		}
		sess.path = path
		sess.dirty = false
		updateTitle()
		addRecentBoard(prefs, path)
		status.SetText("Saved " + filepath.Base(path))
	}

	saveAsAction := func() {
		if sess == nil {
			return
		}
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			outPath := uc.URI().Path()
			_ = uc.Close()
			saveTo(outPath)
		}, w)
		save.SetFileName(exportFileName(sess.name, ".board.json"))
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
		save.Show()
	}

	// guardDirty runs next, asking first when the open board has unsaved
	// changes.
	guardDirty := func(next func()) {
		if sess == nil || !sess.dirty {
			next()
			return
		}
		dialog.ShowConfirm("Unsaved changes",
			"Discard unsaved changes to "+sess.name+"?",
			func(ok bool) {
				if ok {
					next()
				}
			}, w)
	}

	// File menu
	newItem := fyne.NewMenuItem("New Board", func() {
		guardDirty(func() {
			l.Info("menu: new board")
			b := &domain.Board{BoardType: domain.BoardCork}
			if err := openSession(b, "Untitled board", ""); err != nil {
				dialog.ShowError(err, w)
				return
			}
			status.SetText("New board.")
		})
	})
	openItem := fyne.NewMenuItem("Open Board…", func() {
		guardDirty(func() {
			l.Info("menu: open board")
			open := dialog.NewFileOpen(func(uc fyne.URIReadCloser, err error) {
				if err != nil {
					dialog.ShowError(err, w)
					return
				}
				if uc == nil {
					return
				}
				path := uc.URI().Path()
				_ = uc.Close()
				if oerr := openBoardFile(path); oerr != nil {
					l.Error("open board failed", slog.Any("err", oerr))
					dialog.ShowError(oerr, w)
				}
			}, w)
			open.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
			open.Show()
		})
	})
	saveItem := fyne.NewMenuItem("Save", func() {
		if sess == nil {
			return
		}
		l.Info("menu: save board")
		if sess.path == "" {
			saveAsAction()
			return
		}
		saveTo(sess.path)
	})
	saveAsItem := fyne.NewMenuItem("Save As…", func() {
		l.Info("menu: save board as")
		saveAsAction()
	})
	importItem := fyne.NewMenuItem("Import Outline…", func() {
		guardDirty(func() {
			l.Info("menu: import outline")
			open := dialog.NewFileOpen(func(uc fyne.URIReadCloser, err error) {
				if err != nil {
					dialog.ShowError(err, w)
					return
				}
				if uc == nil {
					return
				}
				path := uc.URI().Path()
				_ = uc.Close()
				data, rerr := os.ReadFile(path)
				if rerr != nil {
					dialog.ShowError(rerr, w)
					return
				}
				outline, perrs := script.Parse(string(data))
				b, berrs := script.Build(outline)
				if msg := outlineProblems(perrs, berrs); msg != "" {
					dialog.ShowInformation("Outline problems", msg, w)
				}
				name := outline.Title
				if name == "" {
					name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				}
				if oerr := openSession(b, name, ""); oerr != nil {
					dialog.ShowError(oerr, w)
					return
				}
				// Imported boards have no file yet.
				sess.markDirty()
				status.SetText(fmt.Sprintf("Imported %d items from outline.", len(b.Items)))
			}, w)
			open.SetFilter(fstorage.NewExtensionFileFilter([]string{".txt", ".outline"}))
			open.Show()
		})
	})
	closeItem = fyne.NewMenuItem("Close Board", func() {
		if sess == nil {
			return
		}
		guardDirty(func() {
			l.Info("menu: close board")
			sess.close()
			sess = nil
			ch.Name = ""
			ch.Snapshot = nil
			canvasWidget.Bind(nil)
			closeItem.Disabled = true
			updateTitle()
			updateZoom()
			status.SetText("Board closed.")
			showDashboard()
		})
	})
	closeItem.Disabled = true

	newItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyN, Modifier: fyne.KeyModifierControl}
	openItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierControl}
	saveItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierControl}
	closeItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: fyne.KeyModifierControl}

	fileMenu := fyne.NewMenu("File",
		newItem, openItem, fyne.NewMenuItemSeparator(),
		saveItem, saveAsItem, fyne.NewMenuItemSeparator(),
		importItem, fyne.NewMenuItemSeparator(),
		closeItem)

	// Edit menu
	selectAllItem := fyne.NewMenuItem("Select All", func() {
		if sess == nil {
			return
		}
		b := sess.eng.Snapshot()
		ids := make([]string, 0, len(b.Items))
		for _, it := range b.Items {
			ids = append(ids, it.ID)
		}
		sess.ctrl.SetSelection(ids)
		sess.renderer.Draw()
	})
	copyMenuItem := fyne.NewMenuItem("Copy", func() {
		if sess == nil {
			return
		}
		if err := sess.ctrl.Copy(); err != nil {
			l.Warn("copy failed", slog.Any("err", err))
			return
		}
		status.SetText(fmt.Sprintf("Copied %d item(s).", len(sess.ctrl.Selection())))
	})
	pasteMenuItem := fyne.NewMenuItem("Paste", func() {
		if sess == nil {
			return
		}
		if err := sess.ctrl.Paste(context.Background()); err != nil {
			l.Warn("paste failed", slog.Any("err", err))
		}
	})
	duplicateItem := fyne.NewMenuItem("Duplicate", func() {
		if sess == nil || len(sess.ctrl.Selection()) == 0 {
			return
		}
		l.Info("menu: duplicate")
		if err := sess.mut.DuplicateItems(context.Background(), sceneID, sess.ctrl.Selection(), dupOffset, dupOffset); err != nil {
			l.Warn("duplicate failed", slog.Any("err", err))
		}
		sess.renderer.Draw()
	})
	deleteMenuItem := fyne.NewMenuItem("Delete", func() {
		if sess == nil {
			return
		}
		for _, id := range sess.ctrl.Selection() {
			if err := sess.mut.DeleteItem(context.Background(), sceneID, id); err != nil {
				l.Warn("delete failed", slog.String("item", id), slog.Any("err", err))
			}
		}
		sess.ctrl.SetSelection(nil)
		sess.renderer.Draw()
	})
	selectAllItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyA, Modifier: fyne.KeyModifierControl}
	copyMenuItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyC, Modifier: fyne.KeyModifierControl}
	pasteMenuItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyV, Modifier: fyne.KeyModifierControl}
	duplicateItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyD, Modifier: fyne.KeyModifierControl}

	editMenu := fyne.NewMenu("Edit",
		selectAllItem, fyne.NewMenuItemSeparator(),
		copyMenuItem, pasteMenuItem, duplicateItem, fyne.NewMenuItemSeparator(),
		deleteMenuItem)

	// Item menu
	addItemAt := func(it domain.Item) {
		if sess == nil {
			return
		}
		vw, vh := viewSize()
		wx, wy := sess.cam.ScreenToWorld(float64(vw)/2, float64(vh)/2)
		dw, dh := sess.renderer.ItemDims(it)
		it.X = wx - dw/2
		it.Y = wy - dh/2
		if err := sess.mut.AddItem(context.Background(), sceneID, it); err != nil {
			dialog.ShowError(err, w)
			return
		}
		sess.ctrl.SetSelection([]string{it.ID})
		sess.renderer.Draw()
	}
	addNoteItem := fyne.NewMenuItem("Add Note", func() {
		l.Info("menu: add note")
		addItemAt(domain.Item{ID: domain.NewID(), Type: domain.ItemNote, Data: domain.ItemData{Text: "New note"}})
	})
	addTextItem := fyne.NewMenuItem("Add Text", func() {
		l.Info("menu: add text")
		addItemAt(domain.Item{ID: domain.NewID(), Type: domain.ItemText, Data: domain.ItemData{Text: "Text"}})
	})
	addImageItem := fyne.NewMenuItem("Add Image…", func() {
		if sess == nil {
			return
		}
		l.Info("menu: add image")
		entry := widget.NewEntry()
		entry.SetPlaceHolder("https://example.com/photo.png")
		dialog.ShowForm("Add Image", "Add", "Cancel",
			[]*widget.FormItem{widget.NewFormItem("Image URL", entry)},
			func(ok bool) {
				url := strings.TrimSpace(entry.Text)
				if !ok || url == "" {
					return
				}
				addItemAt(domain.Item{ID: domain.NewID(), Type: domain.ItemImage, Data: domain.ItemData{ImageURL: url}})
			}, w)
	})
	addDocumentItem := fyne.NewMenuItem("Add Document", func() {
		l.Info("menu: add document")
		addItemAt(domain.Item{ID: domain.NewID(), Type: domain.ItemDocument, Data: domain.ItemData{Text: "New document"}})
	})

	zOrder := func(name string, op func(ctx context.Context, scene, id string) error) func() {
		return func() {
			if sess == nil || len(sess.ctrl.Selection()) == 0 {
				return
			}
			l.Info("menu: " + name)
			for _, id := range sess.ctrl.Selection() {
				if err := op(context.Background(), sceneID, id); err != nil {
					l.Warn(name+" failed", slog.String("item", id), slog.Any("err", err))
				}
			}
			sess.markDirty()
			sess.renderer.Draw()
		}
	}
	frontItem := fyne.NewMenuItem("Bring to Front", nil)
	forwardItem := fyne.NewMenuItem("Bring Forward", nil)
	backwardItem := fyne.NewMenuItem("Send Backward", nil)
	backItem := fyne.NewMenuItem("Send to Back", nil)

	groupItem := fyne.NewMenuItem("Group Selection", func() {
		if sess == nil {
			return
		}
		ids := sess.ctrl.Selection()
		if len(ids) < 2 {
			status.SetText("Select at least two items to group.")
			return
		}
		l.Info("menu: group selection", slog.Int("items", len(ids)))
		if err := sess.client.CreateGroup(context.Background(), sceneID, "Group", ids); err != nil {
			l.Warn("group failed", slog.Any("err", err))
			return
		}
		sess.markDirty()
		sess.renderer.Draw()
	})
	ungroupItem := fyne.NewMenuItem("Ungroup", func() {
		if sess == nil || len(sess.ctrl.Selection()) == 0 {
			return
		}
		b := sess.eng.Snapshot()
		it := b.ItemByID(sess.ctrl.Selection()[0])
		if it == nil || it.GroupID == "" {
			status.SetText("Selection is not grouped.")
			return
		}
		l.Info("menu: ungroup", slog.String("group", it.GroupID))
		if err := sess.client.Ungroup(context.Background(), sceneID, it.GroupID); err != nil {
			l.Warn("ungroup failed", slog.Any("err", err))
			return
		}
		sess.markDirty()
		sess.renderer.Draw()
	})

	itemMenu := fyne.NewMenu("Item",
		addNoteItem, addTextItem, addImageItem, addDocumentItem, fyne.NewMenuItemSeparator(),
		frontItem, forwardItem, backwardItem, backItem, fyne.NewMenuItemSeparator(),
		groupItem, ungroupItem)

	// View menu
	zoomBy := func(delta float64) {
		if sess == nil {
			return
		}
		vw, vh := viewSize()
		sess.ctrl.Wheel(delta, float64(vw)/2, float64(vh)/2)
		updateZoom()
	}
	zoomInItem := fyne.NewMenuItem("Zoom In", func() { zoomBy(0.25) })
	zoomOutItem := fyne.NewMenuItem("Zoom Out", func() { zoomBy(-0.25) })
	resetViewItem := fyne.NewMenuItem("Reset View", func() {
		if sess == nil {
			return
		}
		sess.cam.Reset()
		sess.renderer.Draw()
		updateZoom()
	})
	var viewMenu *fyne.Menu
	groupBordersItem := fyne.NewMenuItem("Group Borders", nil)
	groupBordersItem.Checked = showGroupBorders
	groupBordersItem.Action = func() {
		showGroupBorders = !showGroupBorders
		groupBordersItem.Checked = showGroupBorders
		prefs.SetBool("view.groupBorders", showGroupBorders)
		if sess != nil {
			sess.renderer.SetShowGroupBorders(showGroupBorders)
		}
		viewMenu.Refresh()
	}
	centerMarkItem := fyne.NewMenuItem("Center Mark", nil)
	centerMarkItem.Checked = showCenterMark
	centerMarkItem.Action = func() {
		showCenterMark = !showCenterMark
		centerMarkItem.Checked = showCenterMark
		prefs.SetBool("view.centerMark", showCenterMark)
		if sess != nil {
			sess.renderer.SetShowCenter(showCenterMark)
		}
		viewMenu.Refresh()
	}
	viewMenu = fyne.NewMenu("View",
		zoomInItem, zoomOutItem, resetViewItem, fyne.NewMenuItemSeparator(),
		groupBordersItem, centerMarkItem)

	// Theme menu: builtins first, then themes installed under the data dir.
	applyTheme := func(t stylepack.Theme) {
		if sess == nil {
			return
		}
		l.Info("menu: apply theme", slog.String("theme", t.Name))
		b := sess.eng.Snapshot()
		t.Apply(b)
		sess.eng.Replace(b)
		sess.markDirty()
		sess.renderer.Draw()
		status.SetText("Theme: " + t.Name)
	}
	themeItems := []*fyne.MenuItem{}
	for _, t := range stylepack.Builtin() {
		th := t
		themeItems = append(themeItems, fyne.NewMenuItem(th.Name, func() { applyTheme(th) }))
	}
	if dataDir != "" {
		user, terr := stylepack.LoadThemes(filepath.Join(dataDir, stylepack.ThemesDirName))
		if terr != nil {
			l.Warn("loading themes failed", slog.Any("err", terr))
		}
		if len(user) > 0 {
			themeItems = append(themeItems, fyne.NewMenuItemSeparator())
			for _, t := range user {
				th := t
				themeItems = append(themeItems, fyne.NewMenuItem(th.Name, func() { applyTheme(th) }))
			}
		}
	}
	themeItems = append(themeItems, fyne.NewMenuItemSeparator())
	themeItems = append(themeItems, fyne.NewMenuItem("Export Style Pack…", func() {
		if dataDir == "" {
			return
		}
		l.Info("menu: export style pack")
		save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			outPath := uc.URI().Path()
			_ = uc.Close()
			if eerr := stylepack.ExportThemes(dataDir, outPath); eerr != nil {
				dialog.ShowError(eerr, w)
				return
			}
			status.SetText("Style pack exported to " + filepath.Base(outPath))
		}, w)
		save.SetFileName("corkboard-styles.zip")
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".zip"}))
		save.Show()
	}))
	themeItems = append(themeItems, fyne.NewMenuItem("Install Style Pack…", func() {
		if dataDir == "" {
			return
		}
		l.Info("menu: install style pack")
		open := dialog.NewFileOpen(func(uc fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			if uc == nil {
				return
			}
			path := uc.URI().Path()
			_ = uc.Close()
			n, ierr := stylepack.InstallPack(dataDir, path)
			if ierr != nil {
				dialog.ShowError(ierr, w)
				return
			}
			status.SetText(fmt.Sprintf("Installed %d theme file(s). Restart to list them.", n))
		}, w)
		open.SetFilter(fstorage.NewExtensionFileFilter([]string{".zip"}))
		open.Show()
	}))
	themeMenu := fyne.NewMenu("Theme", themeItems...)

	// Export menu
	exportBoard := func(label, ext string, run func(b *domain.Board, name, outPath string) error) func() {
		return func() {
			if sess == nil {
				return
			}
			l.Info("menu: export " + label)
			save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
				if err != nil {
					dialog.ShowError(err, w)
					return
				}
				if uc == nil {
					return
				}
				outPath := uc.URI().Path()
				_ = uc.Close()
				if xerr := run(sess.eng.Snapshot(), sess.name, outPath); xerr != nil {
					l.Error("export failed", slog.String("format", label), slog.Any("err", xerr))
					dialog.ShowError(xerr, w)
					return
				}
				status.SetText("Exported " + filepath.Base(outPath))
			}, w)
			save.SetFileName(exportFileName(sess.name, ext))
			save.SetFilter(fstorage.NewExtensionFileFilter([]string{ext}))
			save.Show()
		}
	}
	exportPNGItem := fyne.NewMenuItem("Export PNG…", exportBoard("png", ".png",
		func(b *domain.Board, _ string, outPath string) error {
			return export.ExportBoardPNG(b, outPath, export.Options{})
		}))
	exportSVGItem := fyne.NewMenuItem("Export SVG…", exportBoard("svg", ".svg",
		func(b *domain.Board, _ string, outPath string) error {
			return export.ExportBoardSVG(b, outPath, export.Options{})
		}))
	exportPDFItem := fyne.NewMenuItem("Export PDF…", exportBoard("pdf", ".pdf",
		func(b *domain.Board, name, outPath string) error {
			return export.ExportBoardPDF(b, name, outPath, export.Options{})
		}))
	exportBundleItem := fyne.NewMenuItem("Export Bundle…", exportBoard("bundle", ".zip",
		func(b *domain.Board, name, outPath string) error {
			return export.ExportBoardBundle(b, name, outPath, export.Options{})
		}))
	exportMenu := fyne.NewMenu("Export", exportPNGItem, exportSVGItem, exportPDFItem, exportBundleItem)

	// About menu
	aboutItem := fyne.NewMenuItem("About Corkboard", func() {
		l.Info("menu: about")
		exe, _ := os.Executable()
		cwd, _ := os.Getwd()
		info := fmt.Sprintf("Corkboard\nVersion: %s\nOS: %s\nArch: %s\nGo: %s\nExecutable: %s\nWorking Dir: %s",
			version.String(), runtime.GOOS, runtime.GOARCH, runtime.Version(), exe, cwd)
		dialog.ShowInformation("Installation Environment", info, w)
	})
	copyrightItem := fyne.NewMenuItem("Copyright…", func() {
		l.Info("menu: copyright")
		currentYear := time.Now().Year()
		msg := fmt.Sprintf("Corkboard\nCopyright © 2025-%d The Corkboard Authors\n\nLicensed under the Apache License, Version 2.0.\nSee the LICENSE file for details.", currentYear)
		dialog.ShowInformation("Copyright", msg, w)
	})
	aboutMenu := fyne.NewMenu("About", aboutItem, copyrightItem)

	frontItem.Action = zOrder("bring to front", sess2op(&sess, (*relay.Client).BringToFront))
	forwardItem.Action = zOrder("bring forward", sess2op(&sess, (*relay.Client).BringForward))
	backwardItem.Action = zOrder("send backward", sess2op(&sess, (*relay.Client).SendBackward))
	backItem.Action = zOrder("send to back", sess2op(&sess, (*relay.Client).SendToBack))

	w.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, itemMenu, viewMenu, themeMenu, exportMenu, aboutMenu))

	// Space starts a pan on the next drag; tracked window-wide because
	// pointer events carry every modifier except the space bar.
	if dc, ok := w.Canvas().(desktop.Canvas); ok {
		dc.SetOnKeyDown(func(ev *fyne.KeyEvent) {
			if ev.Name == fyne.KeySpace {
				canvasWidget.spaceHeld = true
			}
		})
		dc.SetOnKeyUp(func(ev *fyne.KeyEvent) {
			if ev.Name == fyne.KeySpace {
				canvasWidget.spaceHeld = false
			}
		})
	}

	// Editor layout: canvas over a status strip.
	statusBar := container.NewBorder(nil, nil, nil, zoomLabel, status)
	editorContent := container.NewBorder(nil, statusBar, nil, nil, canvasWidget)

	showEditor = func() {
		root.Objects = []fyne.CanvasObject{editorContent}
		root.Refresh()
	}
	buildDashboard := func() fyne.CanvasObject {
		title := widget.NewLabel("Corkboard")
		title.TextStyle = fyne.TextStyle{Bold: true}
		title.Alignment = fyne.TextAlignLeading

		newBtn := widget.NewButton("New Board…", func() { newItem.Action() })
		openBtn := widget.NewButton("Open Board…", func() { openItem.Action() })

		recent := loadRecentBoards(prefs)
		thumbs := make([]image.Image, len(recent))
		recList := widget.NewList(
			func() int { return len(recent) },
			func() fyne.CanvasObject {
				im := canvas.NewImageFromImage(nil)
				im.FillMode = canvas.ImageFillContain
				im.SetMinSize(fyne.NewSize(dashThumbEdge, dashThumbEdge*3/4))
				return container.NewHBox(im, widget.NewLabel(""))
			},
			func(i widget.ListItemID, o fyne.CanvasObject) {
				row := o.(*fyne.Container)
				im := row.Objects[0].(*canvas.Image)
				lbl := row.Objects[1].(*widget.Label)
				if i < 0 || int(i) >= len(recent) {
					im.Image = nil
					im.Refresh()
					lbl.SetText("")
					return
				}
				im.Image = thumbs[i]
				im.Refresh()
				lbl.SetText(recent[i])
			},
		)
		// Thumbnails come from the store cache off the UI goroutine; rows
		// show bare paths until they land.
		go func(paths []string) {
			imgs := recentThumbs(paths, dashThumbEdge)
			fyne.Do(func() {
				copy(thumbs, imgs)
				recList.Refresh()
			})
		}(recent)
		recList.OnSelected = func(id widget.ListItemID) {
			if id < 0 || int(id) >= len(recent) {
				return
			}
			path := recent[id]
			if err := openBoardFile(path); err != nil {
				l.Error("open recent failed", slog.Any("err", err))
				dialog.ShowError(err, w)
			}
		}

		header := widget.NewLabel("Recent Boards")
		return container.NewBorder(
			container.NewVBox(title, widget.NewSeparator(), container.NewHBox(newBtn, openBtn)),
			nil, nil, nil,
			container.NewBorder(header, nil, nil, nil, recList),
		)
	}
	var dashboard fyne.CanvasObject
	showDashboard = func() {
		if dashboard == nil {
			dashboard = buildDashboard()
		}
		root.Objects = []fyne.CanvasObject{dashboard}
		root.Refresh()
	}

	w.SetContent(root)

	// Persist preferences on close
	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		guardDirty(func() { w.Close() })
	})

	// Try to open a board if provided
	if boardPath != "" {
		if err := openBoardFile(boardPath); err != nil {
			l.Error("auto-open board failed", slog.Any("err", err))
			// not fatal; continue
		}
	}

	if sess == nil {
		showDashboard()
	}

	w.ShowAndRun()
	if sess != nil {
		sess.close()
	}
	return nil
}

// sess2op adapts a relay client method into the z-order closure shape; the
// session pointer is resolved at call time because menus outlive sessions.
func sess2op(sess **session, op func(*relay.Client, context.Context, string, string) error) func(ctx context.Context, scene, id string) error {
	return func(ctx context.Context, scene, id string) error {
		s := *sess
		if s == nil {
			return nil
		}
		return op(s.client, ctx, scene, id)
	}
}

// outlineProblems folds parse and build diagnostics into one message.
func outlineProblems(parseErrs, buildErrs []script.Error) string {
	all := make([]script.Error, 0, len(parseErrs)+len(buildErrs))
	all = append(all, parseErrs...)
	all = append(all, buildErrs...)
	if len(all) == 0 {
		return ""
	}
	lines := make([]string, 0, len(all))
	for _, e := range all {
		lines = append(lines, fmt.Sprintf("line %d: %s", e.Line, e.Message))
	}
	return strings.Join(lines, "\n")
}

// exportFileName derives a default file name from the board name.
func exportFileName(name, ext string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	if s == "" {
		s = "board"
	}
	return s + ext
}

// Recent board persistence helpers for dashboard
const recentPrefsKey = "recent.boards"
const recentMax = 10

// dashThumbEdge is the longest side of a dashboard thumbnail in pixels.
const dashThumbEdge = 96

// recentThumbs renders dashboard thumbnails for recent board files through
// the store's thumbnail cache, so revisiting the dashboard is a lookup, not
// a render. Any failure leaves a nil entry and the row shows its path only.
func recentThumbs(paths []string, edge int) []image.Image {
	out := make([]image.Image, len(paths))
	dataDir, err := config.DataDir()
	if err != nil {
		return out
	}
	ctx := context.Background()
	st, err := store.Open(ctx, filepath.Join(dataDir, "corkboard.db"))
	if err != nil {
		return out
	}
	defer st.Close()
	s, ok := st.(*store.SQLite)
	if !ok {
		return out
	}
	for i, path := range paths {
		out[i] = boardThumb(ctx, s, path, edge)
	}
	return out
}

func boardThumb(ctx context.Context, s *store.SQLite, path string, edge int) image.Image {
	f, err := boardfile.Load(path)
	if err != nil {
		return nil
	}
	raw, err := json.Marshal(f.Board)
	if err != nil {
		return nil
	}
	sum := sha256.Sum256(raw)
	rev := hex.EncodeToString(sum[:])[:12]
	data, err := s.GetOrCreateThumb(ctx, path, rev, edge, edge, func(ctx context.Context) ([]byte, error) {
		img, rerr := export.RenderSnapshot(&f.Board, export.Options{MaxDim: edge})
		if rerr != nil {
			return nil, rerr
		}
		var buf bytes.Buffer
		if perr := png.Encode(&buf, img); perr != nil {
			return nil, perr
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		return nil
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	return img
}

func loadRecentBoards(p fyne.Preferences) []string {
	raw := p.StringWithFallback(recentPrefsKey, "")
	var items []string
	if strings.TrimSpace(raw) != "" {
		var tmp []string
		if err := json.Unmarshal([]byte(raw), &tmp); err == nil {
			items = tmp
		}
	}
	if items == nil {
		items = []string{}
	}
	// Filter out non-existing paths
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := os.Stat(s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func saveRecentBoards(p fyne.Preferences, items []string) {
	if len(items) > recentMax {
		items = items[:recentMax]
	}
	b, _ := json.Marshal(items)
	p.SetString(recentPrefsKey, string(b))
}

func addRecentBoard(p fyne.Preferences, path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	abs, _ := filepath.Abs(path)
	rec := loadRecentBoards(p)
	out := make([]string, 0, 1+len(rec))
	out = append(out, abs)
	for _, s := range rec {
		// de-dup (case-insensitive on Windows)
		if strings.EqualFold(s, abs) {
			continue
		}
		out = append(out, s)
	}
	saveRecentBoards(p, out)
}

// BoardCanvas is the board viewport: it shows the renderer's frames and
// feeds pointer, scroll and key events into the interaction controller.
type BoardCanvas struct {
	widget.BaseWidget

	img  *canvas.Image
	sess *session

	// spaceHeld mirrors the space bar from the window key hooks.
	spaceHeld bool

	onZoom func()
}

// NewBoardCanvas returns an empty viewport; Bind attaches a session.
func NewBoardCanvas() *BoardCanvas {
	bc := &BoardCanvas{img: canvas.NewImageFromImage(nil)}
	bc.img.FillMode = canvas.ImageFillStretch
	bc.img.ScaleMode = canvas.ImageScaleFastest
	bc.ExtendBaseWidget(bc)
	return bc
}

// Bind points the viewport at a session; nil detaches and blanks it.
func (bc *BoardCanvas) Bind(s *session) {
	bc.sess = s
	if s == nil {
		bc.img.Image = nil
		bc.img.Refresh()
		return
	}
	sz := bc.Size()
	if sz.Width > 1 && sz.Height > 1 {
		s.renderer.SetSize(int(sz.Width), int(sz.Height))
	} else {
		s.renderer.Draw()
	}
}

// Present swaps in a finished frame. Safe to call from any goroutine.
func (bc *BoardCanvas) Present(frame image.Image) {
	fyne.Do(func() {
		bc.img.Image = frame
		bc.img.Refresh()
	})
}

// Resize keeps the raster in step with the widget.
func (bc *BoardCanvas) Resize(size fyne.Size) {
	bc.BaseWidget.Resize(size)
	if bc.sess != nil && size.Width > 1 && size.Height > 1 {
		bc.sess.renderer.SetSize(int(size.Width), int(size.Height))
	}
}

func (bc *BoardCanvas) mods(m fyne.KeyModifier) interact.Modifiers {
	return interact.Modifiers{
		Ctrl:  m&fyne.KeyModifierControl != 0,
		Shift: m&fyne.KeyModifierShift != 0,
		Alt:   m&fyne.KeyModifierAlt != 0,
		Space: bc.spaceHeld,
	}
}

// MouseDown starts an interaction and takes keyboard focus.
func (bc *BoardCanvas) MouseDown(ev *desktop.MouseEvent) {
	if bc.sess == nil {
		return
	}
	if c := fyne.CurrentApp().Driver().CanvasForObject(bc); c != nil {
		c.Focus(bc)
	}
	bc.sess.ctrl.PointerDown(context.Background(),
		float64(ev.Position.X), float64(ev.Position.Y), toButton(ev.Button), bc.mods(ev.Modifier))
}

// MouseUp completes the active interaction.
func (bc *BoardCanvas) MouseUp(ev *desktop.MouseEvent) {
	if bc.sess == nil {
		return
	}
	bc.sess.ctrl.PointerUp(context.Background(),
		float64(ev.Position.X), float64(ev.Position.Y), bc.mods(ev.Modifier))
}

func (bc *BoardCanvas) MouseIn(*desktop.MouseEvent) {}

// MouseMoved advances hovers and drags.
func (bc *BoardCanvas) MouseMoved(ev *desktop.MouseEvent) {
	if bc.sess == nil {
		return
	}
	bc.sess.ctrl.PointerMove(context.Background(),
		float64(ev.Position.X), float64(ev.Position.Y), bc.mods(ev.Modifier))
}

func (bc *BoardCanvas) MouseOut() {}

// Scrolled zooms about the cursor, one notch per event.
func (bc *BoardCanvas) Scrolled(ev *fyne.ScrollEvent) {
	if bc.sess == nil || ev.Scrolled.DY == 0 {
		return
	}
	step := wheelZoomStep
	if ev.Scrolled.DY < 0 {
		step = -wheelZoomStep
	}
	bc.sess.ctrl.Wheel(step, float64(ev.Position.X), float64(ev.Position.Y))
	if bc.onZoom != nil {
		bc.onZoom()
	}
}

// FocusGained implements fyne.Focusable.
func (bc *BoardCanvas) FocusGained() {}

// FocusLost implements fyne.Focusable.
func (bc *BoardCanvas) FocusLost() {}

// TypedRune implements fyne.Focusable; plain typing is ignored.
func (bc *BoardCanvas) TypedRune(rune) {}

// TypedKey forwards editing keys to the controller. Ctrl combinations
// arrive through the menu shortcuts instead.
func (bc *BoardCanvas) TypedKey(ev *fyne.KeyEvent) {
	if bc.sess == nil {
		return
	}
	var key string
	switch ev.Name {
	case fyne.KeyEscape:
		key = "Escape"
	case fyne.KeyDelete:
		key = "Delete"
	case fyne.KeyBackspace:
		key = "Backspace"
	default:
		return
	}
	bc.sess.ctrl.KeyDown(context.Background(), key, interact.Modifiers{Space: bc.spaceHeld})
}

func toButton(b desktop.MouseButton) interact.Button {
	switch b {
	case desktop.MouseButtonSecondary:
		return interact.ButtonRight
	case desktop.MouseButtonTertiary:
		return interact.ButtonMiddle
	default:
		return interact.ButtonLeft
	}
}

// CreateRenderer implements fyne.Widget.
func (bc *BoardCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &boardCanvasRenderer{bc: bc}
}

type boardCanvasRenderer struct {
	bc *BoardCanvas
}

func (r *boardCanvasRenderer) Destroy() {}

func (r *boardCanvasRenderer) Layout(size fyne.Size) {
	r.bc.img.Resize(size)
}

func (r *boardCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(320, 240)
}

func (r *boardCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.bc.img}
}

func (r *boardCanvasRenderer) Refresh() {
	canvas.Refresh(r.bc.img)
}
