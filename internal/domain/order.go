/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "sort"

// GroupZ returns the layer of an item's group bucket: the group's zIndex for
// grouped items, 0 for ungrouped ones.
func GroupZ(b *Board, it Item) int {
	if it.GroupID == "" {
		return 0
	}
	if g := b.GroupByID(it.GroupID); g != nil {
		return g.ZIndex
	}
	return 0
}

// DrawOrder returns indices into b.Items sorted bottom to top: by
// (group zIndex, item zIndex) ascending, insertion order breaking ties.
func DrawOrder(b *Board) []int {
	idx := make([]int, len(b.Items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(x, y int) bool {
		a, c := b.Items[idx[x]], b.Items[idx[y]]
		ga, gc := GroupZ(b, a), GroupZ(b, c)
		if ga != gc {
			return ga < gc
		}
		return a.ZIndex < c.ZIndex
	})
	return idx
}

// ItemsInDrawOrder returns copies of the items sorted bottom to top.
func ItemsInDrawOrder(b *Board) []Item {
	order := DrawOrder(b)
	out := make([]Item, len(order))
	for i, j := range order {
		out[i] = b.Items[j]
	}
	return out
}

// BucketItems returns the indices of all items sharing a group bucket, in
// the bucket's internal draw order. An empty groupID selects the ungrouped
// bucket; items whose group no longer resolves fall into it too.
func BucketItems(b *Board, groupID string) []int {
	var idx []int
	for i, it := range b.Items {
		gid := it.GroupID
		if gid != "" && b.GroupByID(gid) == nil {
			gid = ""
		}
		if gid == groupID {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(x, y int) bool {
		return b.Items[idx[x]].ZIndex < b.Items[idx[y]].ZIndex
	})
	return idx
}
