// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package bench

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WorkDirs is the directory of the repository holding the work
// directories of all runs.
const WorkDirs = "work_dirs"

// StampFormat names work directories after their creation time.
const StampFormat = "2006_01_02_15_04_05"

// Type Layout locates the files of one work directory.
//
//	<root>/meta/                              run metadata
//	<root>/suite/                             instance manifest
//	<root>/repos/deployment_<i>/              deployment trees
//	<root>/outputs/deployment_<j>/*.out.txt   job artifacts
//	<root>/results/                           analysis output
type Layout struct {
	Root string
}

// NewWorkDir creates a fresh work directory named after now under the
// work directories of repo.  It fails if the directory exists.
func NewWorkDir(repo string, now time.Time) (*Layout, error) {
	base := filepath.Join(repo, WorkDirs)
	if e := os.MkdirAll(base, 0755); e != nil {
		return nil, e
	}
	root := filepath.Join(base, now.Format(StampFormat))
	if e := os.Mkdir(root, 0755); e != nil {
		if os.IsExist(e) {
			return nil, fmt.Errorf("work dir %s already exists", root)
		}
		return nil, e
	}
	return &Layout{Root: root}, nil
}

// OpenWorkDir locates the existing work directory name.  A name which
// is not an absolute path is taken relative to the work directories of
// repo.
func OpenWorkDir(repo, name string) (*Layout, error) {
	root := name
	if !filepath.IsAbs(root) {
		root = filepath.Join(repo, WorkDirs, name)
	}
	st, e := os.Stat(root)
	if e != nil {
		return nil, e
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%s not a directory", root)
	}
	return &Layout{Root: root}, nil
}

// Name gives the base name of the work directory.
func (l *Layout) Name() string {
	return filepath.Base(l.Root)
}

func (l *Layout) MetaDir() string {
	return filepath.Join(l.Root, "meta")
}

func (l *Layout) SuiteDir() string {
	return filepath.Join(l.Root, "suite")
}

func (l *Layout) ReposDir() string {
	return filepath.Join(l.Root, "repos")
}

// RepoDir is the fetch directory of deployment i.
func (l *Layout) RepoDir(i int) string {
	return filepath.Join(l.ReposDir(), fmt.Sprintf("deployment_%d", i))
}

func (l *Layout) OutputsDir() string {
	return filepath.Join(l.Root, "outputs")
}

// OutputDir holds the artifacts of deployment j.
func (l *Layout) OutputDir(j int) string {
	return filepath.Join(l.OutputsDir(), fmt.Sprintf("deployment_%d", j))
}

// Artifact gives the artifact path of deployment j, with file system
// name slug, on instance i whose base name is file.
func (l *Layout) Artifact(j int, slug string, i int, file string) string {
	return filepath.Join(l.OutputDir(j), fmt.Sprintf("%s_%d_%s.out.txt", slug, i, file))
}

func (l *Layout) ResultsDir() string {
	return filepath.Join(l.Root, "results")
}

func (l *Layout) GraphsDir() string {
	return GraphsDir(l.ResultsDir())
}

// GraphsDir gives the graphs directory under the results directory
// results, which need not belong to a work directory.
func GraphsDir(results string) string {
	return filepath.Join(results, "graphs")
}
