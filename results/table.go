// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package results stores classified records per deployment and joins
// them across deployments.
package results

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/irifrance/hwbench/classify"
)

// KeyColumn is the first column of every table file.
const KeyColumn = "model"

// ErrSchemaMismatch is returned when a table is read back with a header
// differing from the one it had before.
var ErrSchemaMismatch = errors.New("table schema mismatch")

// Type Table maps instance keys to the records of one deployment.  Its
// header is the union of the fields of all its records, in first seen
// order.
type Table struct {
	header []string
	seen   map[string]bool
	keys   []string
	rows   map[string]*classify.Record
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		seen: make(map[string]bool),
		rows: make(map[string]*classify.Record)}
}

// Add adds r under key, growing the header with the new fields of r.
// Adding an existing key replaces its record.
func (t *Table) Add(key string, r *classify.Record) {
	if _, ok := t.rows[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.rows[key] = r
	for _, f := range r.Fields() {
		if t.seen[f] {
			continue
		}
		t.seen[f] = true
		t.header = append(t.header, f)
	}
}

// Header returns the fields of t.  The result must not be modified.
func (t *Table) Header() []string {
	return t.header
}

// Keys returns the instance keys of t in insertion order.  The result
// must not be modified.
func (t *Table) Keys() []string {
	return t.keys
}

// Len returns the number of rows of t.
func (t *Table) Len() int {
	return len(t.keys)
}

// Row returns the record of key.
func (t *Table) Row(key string) (*classify.Record, bool) {
	r, ok := t.rows[key]
	return r, ok
}

// Has reports whether f is in the header of t.
func (t *Table) Has(f string) bool {
	return t.seen[f]
}

// Cell returns field f of the row of key, "" if either is missing.
func (t *Table) Cell(key, f string) string {
	r, ok := t.rows[key]
	if !ok {
		return ""
	}
	return r.Value(f)
}

// Matrix returns the rows of t as they are written, the key first and
// missing cells padded with "".
func (t *Table) Matrix() [][]string {
	res := make([][]string, 0, len(t.keys))
	for _, k := range t.keys {
		row := make([]string, 0, len(t.header)+1)
		row = append(row, k)
		for _, f := range t.header {
			row = append(row, t.Cell(k, f))
		}
		res = append(res, row)
	}
	return res
}

// WriteCSV writes t to w with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	hdr := append([]string{KeyColumn}, t.header...)
	if e := cw.Write(hdr); e != nil {
		return e
	}
	if e := cw.WriteAll(t.Matrix()); e != nil {
		return e
	}
	return cw.Error()
}

// ReadCSV reads a table written by WriteCSV.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	hdr, e := cr.Read()
	if e != nil {
		return nil, fmt.Errorf("reading header: %w", e)
	}
	if len(hdr) == 0 || hdr[0] != KeyColumn {
		return nil, fmt.Errorf("%w: first column is not %q", ErrSchemaMismatch, KeyColumn)
	}
	t := NewTable()
	for _, f := range hdr[1:] {
		t.seen[f] = true
		t.header = append(t.header, f)
	}
	for {
		row, e := cr.Read()
		if e == io.EOF {
			return t, nil
		}
		if e != nil {
			return nil, e
		}
		rec := classify.NewRecord()
		for j, f := range hdr[1:] {
			rec.Set(f, row[j+1])
		}
		t.Add(row[0], rec)
	}
}

// Save writes t in csv to path.
func (t *Table) Save(path string) error {
	f, e := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if e != nil {
		return e
	}
	if e := t.WriteCSV(f); e != nil {
		f.Close()
		return e
	}
	return f.Close()
}

// Open reads the table saved at path.
func Open(path string) (*Table, error) {
	f, e := os.Open(path)
	if e != nil {
		return nil, e
	}
	defer f.Close()
	t, e := ReadCSV(f)
	if e != nil {
		return nil, fmt.Errorf("%s: %w", path, e)
	}
	return t, nil
}
