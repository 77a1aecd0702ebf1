/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

// Outline represents a parsed board outline: a titled list of sections that
// become columns on the board, plus the links drawn between labeled items.
// The syntax is intentionally minimal so a board can be sketched in any
// text editor and imported through corkctl.

type Outline struct {
	Title    string
	Sections []Section
	Links    []Link
}

type Section struct {
	Title string
	Nodes []Node
}

// NodeKind indicates the item type an outline line produces.
// Note:     "note Label: text" or a bare "Label: text"
// Text:     "text Label: content"
// Image:    "image Label: url"
// Document: "doc Label: text" ("document" also accepted)

type NodeKind int

const (
	NodeNote NodeKind = iota
	NodeText
	NodeImage
	NodeDocument
)

// Node captures a single item line (possibly with continuations) in a
// section. Tags hold every @tag found in the source text, lower-cased and
// in order of first appearance; the text itself is stored with tags
// stripped.

type Node struct {
	Kind   NodeKind
	Label  string
	Text   string
	Tags   []string
	LineNo int // 1-based starting line number in the source
}

// Link connects two nodes by their labels, optionally with a label that
// rides the string.

type Link struct {
	From   string
	To     string
	Label  string
	LineNo int
}

// Error represents a parse or build problem with position context.

type Error struct {
	Line    int
	Column  int
	Message string
}
