// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package results

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/irifrance/hwbench/classify"
)

// ArtifactSuffix ends the name of every job artifact.
const ArtifactSuffix = ".out.txt"

// Type Parser classifies one job log.
type Parser interface {
	Parse(log string) (*classify.Record, error)
}

// Classify builds the table of one deployment from the job artifacts
// in dir.  Artifacts are named <prefix>_<key>.out.txt and are read in
// name order.  An error from p stops the classification.
func Classify(dir, prefix string, p Parser, lg *zap.Logger) (*Table, error) {
	ents, e := os.ReadDir(dir)
	if e != nil {
		return nil, e
	}
	t := NewTable()
	warned := make(map[string]bool)
	for _, ent := range ents {
		nm := ent.Name()
		if ent.IsDir() || !strings.HasSuffix(nm, ".txt") {
			continue
		}
		buf, e := os.ReadFile(filepath.Join(dir, nm))
		if e != nil {
			return nil, e
		}
		rec, e := p.Parse(string(buf))
		if e != nil {
			return nil, fmt.Errorf("classifying %s: %w", nm, e)
		}
		for _, f := range rec.Fields() {
			if warned[f] || !strings.ContainsAny(f, " ,\\") {
				continue
			}
			warned[f] = true
			lg.Warn("field name is not sql friendly", zap.String("field", f))
		}
		t.Add(ArtifactKey(nm, prefix), rec)
	}
	return t, nil
}

// ArtifactKey gives the instance key of artifact file nm of a
// deployment whose artifacts start with prefix.
func ArtifactKey(nm, prefix string) string {
	k := strings.TrimPrefix(nm, prefix+"_")
	return strings.TrimSuffix(k, ArtifactSuffix)
}

// Type Store keeps the per deployment tables of one analysis in a
// directory.  It remembers the header of every table it saved or
// loaded.
type Store struct {
	Dir     string
	headers map[int][]string
}

// NewStore creates a store in dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir, headers: make(map[int][]string)}
}

// Path gives the file of table i.
func (s *Store) Path(i int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("deployment_%d.csv", i))
}

// Save saves the table of deployment i.
func (s *Store) Save(i int, t *Table) error {
	if e := t.Save(s.Path(i)); e != nil {
		return e
	}
	s.headers[i] = slices.Clone(t.Header())
	return nil
}

// Load loads the table of deployment i.  It returns ErrSchemaMismatch
// if the header differs from the one seen before for i.
func (s *Store) Load(i int) (*Table, error) {
	t, e := Open(s.Path(i))
	if e != nil {
		return nil, e
	}
	if h, ok := s.headers[i]; ok && !slices.Equal(h, t.Header()) {
		return nil, fmt.Errorf("%w: deployment %d has %d fields, had %d", ErrSchemaMismatch, i, len(t.Header()), len(h))
	}
	s.headers[i] = slices.Clone(t.Header())
	return t, nil
}

// LoadAll loads tables 0..n-1.
func (s *Store) LoadAll(n int) ([]*Table, error) {
	res := make([]*Table, n)
	for i := range res {
		t, e := s.Load(i)
		if e != nil {
			return nil, e
		}
		res[i] = t
	}
	return res, nil
}
