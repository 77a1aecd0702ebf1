/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package board

import "encoding/json"

// applyPatch merges a JSON patch into a record in place. The record is
// marshaled to a generic map, the patch deep-merged over it (maps merge
// key-wise, everything else replaces), and the result unmarshaled back.
// A null patch value clears pointer fields because encoding/json nils
// pointers on JSON null.
func applyPatch(record any, patch map[string]any) error {
	if len(patch) == 0 {
		return nil
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	deepMerge(m, patch)
	merged, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(merged, record)
}

func deepMerge(dst, patch map[string]any) {
	for k, v := range patch {
		pv, pok := v.(map[string]any)
		dv, dok := dst[k].(map[string]any)
		if pok && dok {
			deepMerge(dv, pv)
			continue
		}
		dst[k] = v
	}
}
