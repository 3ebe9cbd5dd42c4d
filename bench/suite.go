// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package bench

import (
	"bufio"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-air/gini/logic/aiger"
	"go.uber.org/zap"
)

// InputsDir is the directory of a repository holding the suites.
const InputsDir = "aig_inputs"

// AllTests selects every instance of a suite.
const AllTests = "aig"

type walk struct {
	ext     string
	tests   []string
	Collect []string
}

func (w *walk) Walk(p string, st os.FileInfo, e error) error {
	if e != nil {
		return e
	}
	if st.IsDir() || !strings.HasSuffix(p, w.ext) {
		return nil
	}
	for _, t := range w.tests {
		if strings.Contains(p, t) {
			w.Collect = append(w.Collect, p)
			return nil
		}
	}
	return nil
}

// Suites lists the suites available in repo.
func Suites(repo string) ([]string, error) {
	ents, e := os.ReadDir(filepath.Join(repo, InputsDir))
	if e != nil {
		return nil, e
	}
	var res []string
	for _, ent := range ents {
		if ent.IsDir() {
			res = append(res, ent.Name())
		}
	}
	return res, nil
}

// FindInstances walks the directory of suite in repo and returns the
// sorted paths of the .aig files whose path contains one of tests.
// The test AllTests selects every instance.
func FindInstances(repo, suite string, tests []string) ([]string, error) {
	if len(tests) == 0 {
		tests = []string{AllTests}
	}
	w := &walk{ext: ".aig", tests: tests}
	root := filepath.Join(repo, InputsDir, suite)
	if e := filepath.Walk(root, w.Walk); e != nil {
		return nil, fmt.Errorf("couldn't walk %s: %w", root, e)
	}
	sort.Strings(w.Collect)
	return w.Collect, nil
}

// Type Info gives the dimensions of an AIGER instance.
type Info struct {
	Inputs      int
	Latches     int
	Outputs     int
	Bad         int
	Constraints int
}

// Inspect reads the AIGER file at p, in either binary or ascii format.
func Inspect(p string) (*Info, error) {
	f, e := os.Open(p)
	if e != nil {
		return nil, e
	}
	defer f.Close()
	return inspect(bufio.NewReader(f))
}

func inspect(r *bufio.Reader) (*Info, error) {
	magic, e := r.Peek(3)
	if e != nil {
		return nil, e
	}
	var a *aiger.T
	switch string(magic) {
	case "aig":
		a, e = aiger.ReadBinary(r)
	case "aag":
		a, e = aiger.ReadAscii(r)
	default:
		return nil, fmt.Errorf("not an aiger file: %q", magic)
	}
	if e != nil {
		return nil, e
	}
	return &Info{
		Inputs:      len(a.Inputs),
		Latches:     len(a.Latches),
		Outputs:     len(a.Outputs),
		Bad:         len(a.Bad),
		Constraints: len(a.Constraints)}, nil
}

// Type Suite is the manifest of the instances of a run.  In general,
// the info in the struct is read-only.
type Suite struct {
	Root   string   // manifest directory
	Insts  []string // instance pathnames, in index order
	Hashes []string // sha256 of each instance
	Infos  []*Info  // dimensions of each instance, nil if unreadable
}

// CreateSuite fingerprints insts and writes the manifest to root.
// Instances which cannot be read as AIGER are logged and kept.
func CreateSuite(root string, insts []string, lg *zap.Logger) (*Suite, error) {
	if e := os.MkdirAll(root, 0755); e != nil {
		return nil, e
	}
	s := &Suite{Root: root, Insts: insts}
	for _, inst := range insts {
		h, e := hash(inst)
		if e != nil {
			return nil, e
		}
		s.Hashes = append(s.Hashes, h)
		info, e := Inspect(inst)
		if e != nil {
			lg.Warn("couldn't inspect instance", zap.String("instance", inst), zap.Error(e))
		}
		s.Infos = append(s.Infos, info)
	}
	if e := writeLines(suiteMapPath(root), s.Insts); e != nil {
		return nil, e
	}
	if e := writeLines(suiteHashPath(root), s.Hashes); e != nil {
		return nil, e
	}
	if e := s.writeInfos(); e != nil {
		return nil, e
	}
	return s, nil
}

// OpenSuite reads the instances and hashes of the manifest in root.
func OpenSuite(root string) (*Suite, error) {
	s := &Suite{Root: root}
	var e error
	if s.Insts, e = readLines(suiteMapPath(root)); e != nil {
		return nil, e
	}
	if s.Hashes, e = readLines(suiteHashPath(root)); e != nil {
		return nil, e
	}
	if len(s.Insts) != len(s.Hashes) {
		return nil, fmt.Errorf("suite %s: %d instances but %d hashes", root, len(s.Insts), len(s.Hashes))
	}
	return s, nil
}

// Len returns the number of instances in the suite.
func (s *Suite) Len() int {
	return len(s.Insts)
}

// Changed returns the indices of instances whose content no longer
// matches the manifest.
func (s *Suite) Changed() ([]int, error) {
	var res []int
	for i, inst := range s.Insts {
		h, e := hash(inst)
		if e != nil {
			return nil, e
		}
		if h != s.Hashes[i] {
			res = append(res, i)
		}
	}
	return res, nil
}

func (s *Suite) writeInfos() error {
	f, e := os.OpenFile(suiteInfoPath(s.Root), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if e != nil {
		return e
	}
	w := csv.NewWriter(f)
	w.Write([]string{"index", "instance", "sha256", "inputs", "latches", "outputs", "bad", "constraints"})
	for i, inst := range s.Insts {
		row := []string{strconv.Itoa(i), inst, s.Hashes[i], "", "", "", "", ""}
		if info := s.Infos[i]; info != nil {
			for j, n := range []int{info.Inputs, info.Latches, info.Outputs, info.Bad, info.Constraints} {
				row[3+j] = strconv.Itoa(n)
			}
		}
		w.Write(row)
	}
	w.Flush()
	if e := w.Error(); e != nil {
		f.Close()
		return e
	}
	return f.Close()
}

func hash(p string) (string, error) {
	f, e := os.Open(p)
	if e != nil {
		return "", e
	}
	defer f.Close()
	sha := sha256.New()
	if _, e := io.Copy(sha, f); e != nil {
		return "", e
	}
	return hex.EncodeToString(sha.Sum(nil)), nil
}

func writeLines(p string, lines []string) error {
	f, e := os.OpenFile(p, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0644)
	if e != nil {
		return e
	}
	for _, ln := range lines {
		if _, e := fmt.Fprintln(f, ln); e != nil {
			f.Close()
			return e
		}
	}
	return f.Close()
}

func readLines(p string) ([]string, error) {
	f, e := os.Open(p)
	if e != nil {
		return nil, e
	}
	defer f.Close()
	var res []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		res = append(res, sc.Text())
	}
	return res, sc.Err()
}

func suiteMapPath(root string) string {
	return filepath.Join(root, "map")
}

func suiteHashPath(root string) string {
	return filepath.Join(root, "hash")
}

func suiteInfoPath(root string) string {
	return filepath.Join(root, "instances.csv")
}
