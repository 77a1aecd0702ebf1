/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package console

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"corkboard/internal/config"
	"corkboard/internal/domain"
	"corkboard/internal/export"
	"corkboard/internal/relay"
	"corkboard/internal/script"
	"corkboard/internal/store"
)

// dispatch runs one command line. The returned bool asks the loop to
// exit; errors are printed by the caller and never end the session.
func (c *console) dispatch(ctx context.Context, line string) (bool, error) {
	args, err := splitArgs(line)
	if err != nil {
		return false, err
	}
	if len(args) == 0 {
		return false, nil
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "help":
		c.cmdHelp()
		return false, nil
	case "exit", "quit":
		return true, nil
	case "status":
		return false, c.cmdStatus(ctx)
	case "list":
		return false, c.cmdList(ctx)
	case "use":
		if len(rest) != 1 {
			return false, errors.New("use requires <scene>")
		}
		c.scene = rest[0]
		fmt.Fprintf(c.out, "scene %s\n", c.scene)
		return false, nil
	case "boards":
		return false, c.cmdBoards(ctx, rest)
	case "item":
		return false, c.cmdItem(ctx, rest)
	case "conn":
		return false, c.cmdConn(ctx, rest)
	case "group":
		return false, c.cmdGroup(ctx, rest)
	case "ungroup":
		if len(rest) != 1 {
			return false, errors.New("ungroup requires <groupId>")
		}
		return false, c.client.Ungroup(ctx, c.scene, rest[0])
	case "front", "forward", "backward", "back":
		return false, c.cmdZOrder(ctx, cmd, rest)
	case "dup":
		return false, c.cmdDup(ctx, rest)
	case "clear":
		return false, c.cmdClear(ctx, rest)
	case "search":
		return false, c.cmdSearch(ctx, rest)
	case "export":
		return false, c.cmdExport(ctx, rest)
	case "import":
		return false, c.cmdImport(ctx, rest)
	case "thumb":
		return false, c.cmdThumb(ctx, rest)
	case "login":
		if len(rest) != 1 {
			return false, errors.New("login requires <token>")
		}
		cfg, _, err := config.Load()
		if err != nil {
			return false, err
		}
		if err := config.Save(cfg, rest[0]); err != nil {
			return false, err
		}
		fmt.Fprintln(c.out, "relay token stored")
		return false, nil
	case "logout":
		if err := config.ClearToken(); err != nil {
			return false, err
		}
		fmt.Fprintln(c.out, "relay token cleared")
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

func (c *console) cmdHelp() {
	fmt.Fprintln(c.out, "Commands:")
	fmt.Fprintln(c.out, "  status                                  Session and board summary")
	fmt.Fprintln(c.out, "  list                                    Scenes present in the store")
	fmt.Fprintln(c.out, "  use <scene>                             Switch to another scene")
	fmt.Fprintln(c.out, "  boards                                  List the shared board collection")
	fmt.Fprintln(c.out, "  boards add <name>                       Snapshot this scene into the collection")
	fmt.Fprintln(c.out, "  boards use <id>                         Make a collection board current for everyone")
	fmt.Fprintln(c.out, "  boards del <id>                         Remove a board from the collection")
	fmt.Fprintln(c.out, "  item add <type> <x> <y> [text|url]      Add a note, text, document or image item")
	fmt.Fprintln(c.out, "  item set <id> <field>=<value> ...       Patch fields (data.text=..., x=120, label=null)")
	fmt.Fprintln(c.out, "  item del <id>                           Delete an item and its connections")
	fmt.Fprintln(c.out, "  item ls                                 List items in draw order")
	fmt.Fprintln(c.out, "  conn add <fromId> <toId>                Connect two items with a string")
	fmt.Fprintln(c.out, "  conn del <id>                           Remove a connection")
	fmt.Fprintln(c.out, "  conn ls                                 List connections")
	fmt.Fprintln(c.out, "  group <id> <id> ...                     Group items together")
	fmt.Fprintln(c.out, "  group front|back <groupId>              Restack a whole group")
	fmt.Fprintln(c.out, "  ungroup <groupId>                       Dissolve a group, items stay")
	fmt.Fprintln(c.out, "  front|forward|backward|back <id>        Restack a single item")
	fmt.Fprintln(c.out, "  dup <id> ... [dx dy]                    Duplicate items, default offset 20 20")
	fmt.Fprintln(c.out, "  clear force                             Wipe the scene")
	fmt.Fprintln(c.out, "  search <text>                           Find items by label or text")
	fmt.Fprintln(c.out, "  export <path.png|.svg|.pdf|.zip>        Export the board")
	fmt.Fprintln(c.out, "  import <outline.txt>                    Build items from a board outline")
	fmt.Fprintln(c.out, "  thumb <out.png> [edge]                  Render a cached thumbnail (sqlite store)")
	fmt.Fprintln(c.out, "  login <token> | logout                  Store or clear the relay token")
	fmt.Fprintln(c.out, "  exit                                    Leave the console")
}

func (c *console) cmdStatus(ctx context.Context) error {
	mode := "local (GM)"
	if c.relayURL != "" {
		mode = "relay " + c.relayURL
		if !c.ident.IsGM {
			mode += " (player)"
		}
	}
	b, err := c.board(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "mode:  %s\n", mode)
	fmt.Fprintf(c.out, "user:  %s\n", c.ident.UserID)
	fmt.Fprintf(c.out, "scene: %s\n", c.scene)
	fmt.Fprintf(c.out, "items: %d  connections: %d  groups: %d\n",
		len(b.Items), len(b.Connections), len(b.Groups))
	return nil
}

func (c *console) cmdList(ctx context.Context) error {
	ids, err := c.st.Scenes(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(c.out, "no scenes yet")
		return nil
	}
	for _, id := range ids {
		marker := " "
		if id == c.scene {
			marker = "*"
		}
		fmt.Fprintf(c.out, "%s %s\n", marker, id)
	}
	return nil
}

func (c *console) cmdBoards(ctx context.Context, rest []string) error {
	g := relay.GlobalState()
	if g == nil {
		return errors.New("shared board collection is not available")
	}
	if len(rest) == 0 {
		infos := g.BoardList()
		if len(infos) == 0 {
			fmt.Fprintln(c.out, "no boards in the collection")
			return nil
		}
		cur := g.CurrentBoard()
		for _, info := range infos {
			marker := " "
			if info.ID == cur {
				marker = "*"
			}
			fmt.Fprintf(c.out, "%s %-36s  %s\n", marker, info.ID, info.Name)
		}
		return nil
	}
	switch rest[0] {
	case "add":
		if len(rest) < 2 {
			return errors.New("boards add requires <name>")
		}
		name := strings.Join(rest[1:], " ")
		b, err := c.board(ctx)
		if err != nil {
			return err
		}
		nb := relay.NamedBoard{ID: domain.NewID(), Name: name, Board: b}
		g.SetBoards(ctx, append(g.Boards(), nb))
		fmt.Fprintf(c.out, "added board %s (%s)\n", name, nb.ID)
		return nil
	case "use":
		if len(rest) != 2 {
			return errors.New("boards use requires <id>")
		}
		if g.BoardByID(rest[1]) == nil {
			return fmt.Errorf("no board %q in the collection", rest[1])
		}
		g.SetCurrentBoard(ctx, rest[1])
		fmt.Fprintf(c.out, "current board %s\n", rest[1])
		return nil
	case "del":
		if len(rest) != 2 {
			return errors.New("boards del requires <id>")
		}
		boards := g.Boards()
		kept := boards[:0]
		for _, nb := range boards {
			if nb.ID != rest[1] {
				kept = append(kept, nb)
			}
		}
		if len(kept) == len(boards) {
			return fmt.Errorf("no board %q in the collection", rest[1])
		}
		g.SetBoards(ctx, kept)
		fmt.Fprintf(c.out, "removed board %s\n", rest[1])
		return nil
	default:
		return fmt.Errorf("unknown boards subcommand %q", rest[0])
	}
}

func itemTypeFromArg(s string) (domain.ItemType, bool) {
	switch s {
	case "note":
		return domain.ItemNote, true
	case "text":
		return domain.ItemText, true
	case "image":
		return domain.ItemImage, true
	case "doc", "document":
		return domain.ItemDocument, true
	}
	return "", false
}

func (c *console) cmdItem(ctx context.Context, rest []string) error {
	if len(rest) == 0 {
		return errors.New("item requires a subcommand (add, set, del, ls)")
	}
	switch rest[0] {
	case "add":
		if len(rest) < 4 {
			return errors.New("item add requires <type> <x> <y> [text|url]")
		}
		t, ok := itemTypeFromArg(rest[1])
		if !ok {
			return fmt.Errorf("unknown item type %q (note, text, image, document)", rest[1])
		}
		x, errX := strconv.ParseFloat(rest[2], 64)
		y, errY := strconv.ParseFloat(rest[3], 64)
		if errX != nil || errY != nil {
			return errors.New("item add requires numeric <x> <y>")
		}
		it := domain.Item{ID: domain.NewID(), Type: t, X: x, Y: y}
		if t == domain.ItemImage {
			if len(rest) < 5 {
				return errors.New("item add image requires <url>")
			}
			it.Data.ImageURL = rest[4]
		} else {
			it.Data.Text = strings.Join(rest[4:], " ")
		}
		if err := c.client.AddItem(ctx, c.scene, it); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "added %s %s\n", t, it.ID)
		return nil
	case "set":
		if len(rest) < 3 {
			return errors.New("item set requires <id> and at least one <field>=<value>")
		}
		changes, err := parseChanges(rest[2:])
		if err != nil {
			return err
		}
		return c.client.UpdateItem(ctx, c.scene, rest[1], changes)
	case "del":
		if len(rest) != 2 {
			return errors.New("item del requires <id>")
		}
		return c.client.DeleteItem(ctx, c.scene, rest[1])
	case "ls":
		b, err := c.board(ctx)
		if err != nil {
			return err
		}
		if len(b.Items) == 0 {
			fmt.Fprintln(c.out, "board is empty")
			return nil
		}
		for _, it := range domain.ItemsInDrawOrder(b) {
			group := ""
			if it.GroupID != "" {
				group = "  [" + it.GroupID + "]"
			}
			fmt.Fprintf(c.out, "%-36s  %-8s  %6.0f %6.0f  %s%s\n",
				it.ID, it.Type, it.X, it.Y, truncate(itemText(it), 40), group)
		}
		return nil
	default:
		return fmt.Errorf("unknown item subcommand %q", rest[0])
	}
}

func (c *console) cmdConn(ctx context.Context, rest []string) error {
	if len(rest) == 0 {
		return errors.New("conn requires a subcommand (add, del, ls)")
	}
	switch rest[0] {
	case "add":
		if len(rest) != 3 {
			return errors.New("conn add requires <fromId> <toId>")
		}
		if err := c.client.AddConnection(ctx, c.scene, rest[1], rest[2]); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "connected %s -> %s\n", rest[1], rest[2])
		return nil
	case "del":
		if len(rest) != 2 {
			return errors.New("conn del requires <id>")
		}
		return c.client.DeleteConnection(ctx, c.scene, rest[1])
	case "ls":
		b, err := c.board(ctx)
		if err != nil {
			return err
		}
		if len(b.Connections) == 0 {
			fmt.Fprintln(c.out, "no connections")
			return nil
		}
		for _, cn := range b.Connections {
			fmt.Fprintf(c.out, "%-36s  %s -> %s\n", cn.ID, cn.FromItem, cn.ToItem)
		}
		return nil
	default:
		return fmt.Errorf("unknown conn subcommand %q", rest[0])
	}
}

func (c *console) cmdGroup(ctx context.Context, rest []string) error {
	if len(rest) == 0 {
		return errors.New("group requires item ids, or front|back <groupId>")
	}
	switch rest[0] {
	case "front":
		if len(rest) != 2 {
			return errors.New("group front requires <groupId>")
		}
		return c.client.BringGroupToFront(ctx, c.scene, rest[1])
	case "back":
		if len(rest) != 2 {
			return errors.New("group back requires <groupId>")
		}
		return c.client.SendGroupToBack(ctx, c.scene, rest[1])
	}
	if len(rest) < 2 {
		return errors.New("group requires at least two item ids")
	}
	if err := c.client.CreateGroup(ctx, c.scene, "", rest); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "grouped %d items\n", len(rest))
	return nil
}

func (c *console) cmdZOrder(ctx context.Context, cmd string, rest []string) error {
	if len(rest) != 1 {
		return fmt.Errorf("%s requires <id>", cmd)
	}
	id := rest[0]
	switch cmd {
	case "front":
		return c.client.BringToFront(ctx, c.scene, id)
	case "forward":
		return c.client.BringForward(ctx, c.scene, id)
	case "backward":
		return c.client.SendBackward(ctx, c.scene, id)
	default:
		return c.client.SendToBack(ctx, c.scene, id)
	}
}

func (c *console) cmdDup(ctx context.Context, rest []string) error {
	if len(rest) == 0 {
		return errors.New("dup requires at least one <id>")
	}
	ids := rest
	dx, dy := 20.0, 20.0
	if len(ids) >= 3 {
		fx, errX := strconv.ParseFloat(ids[len(ids)-2], 64)
		fy, errY := strconv.ParseFloat(ids[len(ids)-1], 64)
		if errX == nil && errY == nil {
			dx, dy = fx, fy
			ids = ids[:len(ids)-2]
		}
	}
	if err := c.client.DuplicateItems(ctx, c.scene, ids, dx, dy); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "duplicated %d items\n", len(ids))
	return nil
}

func (c *console) cmdClear(ctx context.Context, rest []string) error {
	if len(rest) == 0 || rest[0] != "force" {
		fmt.Fprintf(c.out, "this wipes every item on %s; run \"clear force\" to proceed\n", c.scene)
		return nil
	}
	if err := c.client.ClearBoard(ctx, c.scene); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "cleared %s\n", c.scene)
	return nil
}

func (c *console) cmdSearch(ctx context.Context, rest []string) error {
	if len(rest) == 0 {
		return errors.New("search requires <text>")
	}
	needle := strings.ToLower(strings.Join(rest, " "))
	b, err := c.board(ctx)
	if err != nil {
		return err
	}
	found := 0
	for _, it := range domain.ItemsInDrawOrder(b) {
		if !strings.Contains(strings.ToLower(it.Label), needle) &&
			!strings.Contains(strings.ToLower(it.Data.Text), needle) {
			continue
		}
		found++
		fmt.Fprintf(c.out, "%-36s  %-8s  %s\n", it.ID, it.Type, truncate(itemText(it), 60))
	}
	if found == 0 {
		fmt.Fprintf(c.out, "no items match %q\n", strings.Join(rest, " "))
	}
	return nil
}

func (c *console) cmdExport(ctx context.Context, rest []string) error {
	if len(rest) != 1 {
		return errors.New("export requires <path> ending in .png, .svg, .pdf or .zip")
	}
	path := rest[0]
	b, err := c.board(ctx)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = export.ExportBoardPNG(b, path, export.Options{})
	case ".svg":
		err = export.ExportBoardSVG(b, path, export.Options{})
	case ".pdf":
		err = export.ExportBoardPDF(b, c.scene, path, export.Options{})
	case ".zip":
		err = export.ExportBoardBundle(b, c.scene, path, export.Options{})
	default:
		return fmt.Errorf("unsupported export format %q (png, svg, pdf, zip)", filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "exported %s\n", path)
	return nil
}

// cmdImport builds a board from an outline file and merges it into the
// current scene through a whole-board write. The merge keeps connection
// label items attached; pushing items one by one would orphan them.
func (c *console) cmdImport(ctx context.Context, rest []string) error {
	if len(rest) != 1 {
		return errors.New("import requires <file>")
	}
	path := rest[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	o, perrs := script.Parse(string(data))
	built, berrs := script.Build(o)
	for _, e := range append(perrs, berrs...) {
		fmt.Fprintf(c.out, "%s:%d: %s\n", filepath.Base(path), e.Line, e.Message)
	}
	if built == nil || len(built.Items) == 0 {
		return errors.New("outline produced no items")
	}

	cur, err := c.board(ctx)
	if err != nil {
		return err
	}
	maxZ := 0
	for _, it := range cur.Items {
		if it.ZIndex > maxZ {
			maxZ = it.ZIndex
		}
	}
	for _, g := range cur.Groups {
		if g.ZIndex > maxZ {
			maxZ = g.ZIndex
		}
	}
	for i := range built.Items {
		built.Items[i].ZIndex += maxZ
	}
	cur.Items = append(cur.Items, built.Items...)
	cur.Connections = append(cur.Connections, built.Connections...)

	raw, err := json.Marshal(cur)
	if err != nil {
		return err
	}
	if err := c.client.UpdateFlag(ctx, c.scene, relay.FlagBoard, raw); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "imported %d items, %d connections from %s\n",
		len(built.Items), len(built.Connections), filepath.Base(path))
	return nil
}

func (c *console) cmdThumb(ctx context.Context, rest []string) error {
	if len(rest) < 1 || len(rest) > 2 {
		return errors.New("thumb requires <out.png> [edge]")
	}
	s, ok := c.st.(*store.SQLite)
	if !ok {
		return errors.New("thumbnails need the sqlite store")
	}
	edge := 256
	if len(rest) == 2 {
		v, err := strconv.Atoi(rest[1])
		if err != nil || v <= 0 {
			return errors.New("thumb edge must be a positive integer")
		}
		edge = v
	}
	b, err := c.board(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(raw)
	rev := hex.EncodeToString(sum[:])[:12]
	data, err := s.GetOrCreateThumb(ctx, c.scene, rev, edge, edge, func(ctx context.Context) ([]byte, error) {
		img, err := export.RenderSnapshot(b, export.Options{MaxDim: edge})
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(rest[0], data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "thumbnail %s (%d bytes)\n", rest[0], len(data))
	return nil
}

// parseChanges turns field=value pairs into the patch shape UpdateItem
// takes. Dotted keys nest, so data.text=hi patches inside the data block;
// values parse as numbers, booleans or null before falling back to string.
func parseChanges(args []string) (map[string]any, error) {
	changes := map[string]any{}
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected <field>=<value>, got %q", a)
		}
		parts := strings.Split(k, ".")
		m := changes
		for _, p := range parts[:len(parts)-1] {
			child, ok := m[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				m[p] = child
			}
			m = child
		}
		m[parts[len(parts)-1]] = parseValue(v)
	}
	return changes, nil
}

func parseValue(s string) any {
	switch s {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func itemText(it domain.Item) string {
	switch {
	case it.Label != "":
		return it.Label
	case it.Data.Text != "":
		return it.Data.Text
	default:
		return it.Data.ImageURL
	}
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
