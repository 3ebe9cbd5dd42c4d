// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package classify

import (
	"encoding/json"
	"strings"
)

// TagKey is the key identifying the statistics objects a tool may
// embed in its output.
const TagKey = "json_tag"

// TaggedJSON scans log for embedded JSON objects carrying TagKey and
// returns them in order of appearance.  Text which does not decode is
// skipped.
func TaggedJSON(log string) []map[string]any {
	var res []map[string]any
	pos := 0
	for pos < len(log) {
		i := strings.IndexByte(log[pos:], '{')
		if i == -1 {
			break
		}
		pos += i
		dec := json.NewDecoder(strings.NewReader(log[pos:]))
		var obj map[string]any
		if e := dec.Decode(&obj); e != nil {
			pos++
			continue
		}
		pos += int(dec.InputOffset())
		if _, ok := obj[TagKey]; ok {
			res = append(res, obj)
		}
	}
	return res
}

// LastTagged returns the last object of objs whose TagKey is tag.
func LastTagged(objs []map[string]any, tag string) (map[string]any, bool) {
	for i := len(objs) - 1; i >= 0; i-- {
		if t, _ := objs[i][TagKey].(string); t == tag {
			return objs[i], true
		}
	}
	return nil, false
}
