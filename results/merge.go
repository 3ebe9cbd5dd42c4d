// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package results

import (
	"fmt"
	"slices"
	"strings"
)

// InstanceName strips the instance index from key, "12_mul7.aig"
// giving "mul7.aig".
func InstanceName(key string) string {
	if i := strings.Index(key, "_"); i != -1 {
		return key[i+1:]
	}
	return key
}

// Merge combines tables of the same deployment taken from several
// runs.  An instance keeps the record of the first table naming it.
// All tables must have the same header.
func Merge(ts ...*Table) (*Table, error) {
	res := NewTable()
	if len(ts) == 0 {
		return res, nil
	}
	names := make(map[string]bool)
	for i, t := range ts {
		if !slices.Equal(t.Header(), ts[0].Header()) {
			return nil, fmt.Errorf("%w: table %d header differs from table 0", ErrSchemaMismatch, i)
		}
		for _, k := range t.Keys() {
			nm := InstanceName(k)
			if names[nm] {
				continue
			}
			names[nm] = true
			r, _ := t.Row(k)
			res.Add(k, r)
		}
	}
	for _, f := range ts[0].Header() {
		if !res.seen[f] {
			res.seen[f] = true
			res.header = append(res.header, f)
		}
	}
	return res, nil
}

// MergeFiles merges the tables saved at paths.
func MergeFiles(paths ...string) (*Table, error) {
	ts := make([]*Table, 0, len(paths))
	for _, p := range paths {
		t, e := Open(p)
		if e != nil {
			return nil, e
		}
		ts = append(ts, t)
	}
	return Merge(ts...)
}
