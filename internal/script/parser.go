/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"bufio"
	"regexp"
	"strings"
)

// Parse parses an outline text into a structured Outline.
// Supported syntax (minimal):
// - Board name: "Board: Name" sets the outline title; the last one wins.
// - Section headings: lines starting with "#" open a new section. The rest
//   of the line is the section title; sections become board columns.
// - Items: "note Label: text", "text Label: text", "image Label: url" and
//   "doc Label: text" ("document" also accepted). The label may be empty.
//   A plain "Label: text" line is a note.
// - Continuation lines indented by 2+ spaces are appended to the previous
//   item's text.
// - Links: "A -> B" or "A -> B : label" connect items by their labels.
// - Tags: @word anywhere in an item's text is collected into Node.Tags and
//   stripped from the stored text.
// - Comments: lines starting with ';' are skipped.
// Any other non-blank line becomes an unlabeled note so no content is lost.
func Parse(input string) (Outline, []Error) {
	o := Outline{Sections: []Section{}}
	var errs []Error

	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	current := Section{}
	var lastNode *Node

	// Patterns
	reTitle := regexp.MustCompile(`^(?i)\s*Board:\s*(.+)$`)
	reHeading := regexp.MustCompile(`^(#+)\s*(.*)$`)
	reTyped := regexp.MustCompile(`^(?i)(note|text|image|doc|document)\b\s*([^:]{0,64}):\s*(.*)$`)
	reLink := regexp.MustCompile(`^(.{1,64}?)\s*->\s*([^:]{1,64}?)\s*(?::\s*(.*))?$`)
	reLabeled := regexp.MustCompile(`^([A-Za-z0-9_\- ]{1,64})\s*:\s*(.*)$`)
	reTag := regexp.MustCompile(`(?i)@([a-z0-9_\-]+)`) // tags like @tag-name

	extractTags := func(s string) []string {
		found := reTag.FindAllStringSubmatch(s, -1)
		if len(found) == 0 {
			return nil
		}
		seen := map[string]struct{}{}
		var out []string
		for _, f := range found {
			if len(f) > 1 {
				t := strings.ToLower(strings.TrimSpace(f[1]))
				if t == "" {
					continue
				}
				if _, ok := seen[t]; ok {
					continue
				}
				seen[t] = struct{}{}
				out = append(out, t)
			}
		}
		return out
	}

	stripTags := func(s string) string {
		return strings.Join(strings.Fields(reTag.ReplaceAllString(s, "")), " ")
	}

	mergeTags := func(into []string, add []string) []string {
		seen := map[string]struct{}{}
		for _, t := range into {
			seen[t] = struct{}{}
		}
		for _, t := range add {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			into = append(into, t)
		}
		return into
	}

	flushSection := func() {
		if strings.TrimSpace(current.Title) != "" || len(current.Nodes) > 0 {
			o.Sections = append(o.Sections, current)
		}
	}

	appendNode := func(n Node) {
		current.Nodes = append(current.Nodes, n)
		lastNode = &current.Nodes[len(current.Nodes)-1]
	}

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimRight(raw, "\r\n")

		// Continuation line (indented) -> append to last item
		if strings.HasPrefix(line, "  ") && lastNode != nil {
			cont := strings.TrimSpace(line)
			if cont != "" {
				if tags := extractTags(cont); len(tags) > 0 {
					lastNode.Tags = mergeTags(lastNode.Tags, tags)
				}
				if text := stripTags(cont); text != "" {
					if lastNode.Text != "" {
						lastNode.Text += "\n" + text
					} else {
						lastNode.Text = text
					}
				}
			}
			continue
		}

		trim := strings.TrimSpace(line)
		if trim == "" {
			lastNode = nil
			continue
		}

		// Board name
		if m := reTitle.FindStringSubmatch(trim); m != nil {
			o.Title = strings.TrimSpace(m[1])
			lastNode = nil
			continue
		}

		// Section heading
		if m := reHeading.FindStringSubmatch(trim); m != nil {
			flushSection()
			current = Section{Title: strings.TrimSpace(m[2])}
			lastNode = nil
			continue
		}

		// Comment line
		if strings.HasPrefix(trim, ";") {
			lastNode = nil
			continue
		}

		// Typed item: note/text/image/doc
		if m := reTyped.FindStringSubmatch(trim); m != nil {
			kind := NodeNote
			switch strings.ToLower(m[1]) {
			case "text":
				kind = NodeText
			case "image":
				kind = NodeImage
			case "doc", "document":
				kind = NodeDocument
			}
			appendNode(Node{
				Kind:   kind,
				Label:  strings.TrimSpace(m[2]),
				Text:   stripTags(strings.TrimSpace(m[3])),
				Tags:   extractTags(m[3]),
				LineNo: lineNo,
			})
			continue
		}

		// Label: text  (plain note). Checked before links: the label
		// charset cannot cross "->", so link lines still fall through.
		if m := reLabeled.FindStringSubmatch(trim); m != nil {
			appendNode(Node{
				Kind:   NodeNote,
				Label:  strings.TrimSpace(m[1]),
				Text:   stripTags(strings.TrimSpace(m[2])),
				Tags:   extractTags(m[2]),
				LineNo: lineNo,
			})
			continue
		}

		// Link: A -> B or A -> B : label
		if strings.Contains(trim, "->") {
			if m := reLink.FindStringSubmatch(trim); m != nil {
				o.Links = append(o.Links, Link{
					From:   strings.TrimSpace(m[1]),
					To:     strings.TrimSpace(m[2]),
					Label:  strings.TrimSpace(m[3]),
					LineNo: lineNo,
				})
				lastNode = nil
				continue
			}
		}

		// Otherwise keep the line as an unlabeled note to avoid data loss
		appendNode(Node{
			Kind:   NodeNote,
			Text:   stripTags(trim),
			Tags:   extractTags(trim),
			LineNo: lineNo,
		})
	}
	// Append last section
	flushSection()

	if err := scanner.Err(); err != nil {
		errs = append(errs, Error{Line: lineNo, Column: 1, Message: err.Error()})
	}
	return o, errs
}
