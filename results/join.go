// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/duke-git/lancet/v2/slice"

	"github.com/irifrance/hwbench/classify"
)

// Type Joined holds, for every instance present in all tables, the
// record of each deployment.
type Joined struct {
	Keys   []string // sorted
	Tables []*Table
}

// CrossExamine joins ts on their shared instance keys.  Instances
// missing from any table are dropped.
func CrossExamine(ts ...*Table) *Joined {
	j := &Joined{Tables: ts}
	if len(ts) == 0 {
		return j
	}
	ks := make([][]string, len(ts))
	for i, t := range ts {
		ks[i] = t.Keys()
	}
	j.Keys = append([]string{}, slice.Intersection(ks...)...)
	sort.Strings(j.Keys)
	return j
}

// Len returns the number of joined instances.
func (j *Joined) Len() int {
	return len(j.Keys)
}

// Deployments returns the number of joined tables.
func (j *Joined) Deployments() int {
	return len(j.Tables)
}

// Record returns the record of deployment i for key k.
func (j *Joined) Record(k string, i int) *classify.Record {
	r, _ := j.Tables[i].Row(k)
	return r
}

// Has reports whether table i has field f.
func (j *Joined) Has(i int, f string) bool {
	return j.Tables[i].Has(f)
}

// Header returns the flattened (deployment, field) header.
func (j *Joined) Header() []string {
	var res []string
	for i, t := range j.Tables {
		for _, f := range t.Header() {
			res = append(res, fmt.Sprintf("(%d, '%s')", i, f))
		}
	}
	return res
}

// WriteCSV writes j with the key column first.
func (j *Joined) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if e := cw.Write(append([]string{KeyColumn}, j.Header()...)); e != nil {
		return e
	}
	for _, k := range j.Keys {
		row := []string{k}
		for _, t := range j.Tables {
			for _, f := range t.Header() {
				row = append(row, t.Cell(k, f))
			}
		}
		if e := cw.Write(row); e != nil {
			return e
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes j in csv to path.
func (j *Joined) Save(path string) error {
	f, e := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if e != nil {
		return e
	}
	if e := j.WriteCSV(f); e != nil {
		f.Close()
		return e
	}
	return f.Close()
}
