// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package bench

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/irifrance/hwbench/deploy"
)

// Type Shell runs a shell command in a directory.
type Shell func(ctx context.Context, dir, cmd string, out io.Writer) error

// RunShell runs cmd with sh in dir.
func RunShell(ctx context.Context, dir, cmd string, out io.Writer) error {
	c := exec.CommandContext(ctx, "sh", "-c", cmd)
	c.Dir = dir
	c.Stdout = out
	c.Stderr = out
	return c.Run()
}

// Type Builder fetches and builds the deployments of a run, each in its
// own tree under the repos directory of Layout.
type Builder struct {
	Layout *Layout
	Shell  Shell // nil for RunShell
	Log    *zap.Logger
}

func (b *Builder) sh(ctx context.Context, dir, cmd string, out io.Writer) error {
	b.Log.Info("running", zap.String("dir", dir), zap.String("cmd", cmd))
	run := b.Shell
	if run == nil {
		run = RunShell
	}
	if e := run(ctx, dir, cmd, out); e != nil {
		return fmt.Errorf("%s: %q: %w", dir, cmd, e)
	}
	return nil
}

// Build fetches and builds every deployment of ds.  A deployment which
// fetches and builds like an earlier one gets a copy of the earlier
// tree.  Any failing command stops the build.
func (b *Builder) Build(ctx context.Context, ds []deploy.Deployment) error {
	if e := os.MkdirAll(b.Layout.ReposDir(), 0755); e != nil {
		return e
	}
	for i, d := range ds {
		if e := b.build(ctx, ds, i, d); e != nil {
			return fmt.Errorf("building deployment %d (%s): %w", i, d.Name(), e)
		}
	}
	return nil
}

func (b *Builder) build(ctx context.Context, ds []deploy.Deployment, i int, d deploy.Deployment) error {
	dir := b.Layout.RepoDir(i)
	if e := os.Mkdir(dir, 0755); e != nil {
		return e
	}
	logf, e := os.Create(filepath.Join(b.Layout.ReposDir(), fmt.Sprintf("build_%d.log", i)))
	if e != nil {
		return e
	}
	defer logf.Close()
	for j := 0; j < i; j++ {
		if !deploy.Same(ds[j], d) {
			continue
		}
		b.Log.Info("reusing tree", zap.Int("deployment", i), zap.Int("from", j))
		return b.sh(ctx, dir, fmt.Sprintf("cp -r %s/. .", ShellJoin([]string{b.Layout.RepoDir(j)})), logf)
	}
	if e := b.sh(ctx, dir, d.FetchCommand(), logf); e != nil {
		return e
	}
	return b.sh(ctx, filepath.Join(dir, d.CheckoutDir()), d.BuildCommand(), logf)
}

// Version gives the short commit hash of the tree of deployment i.
func (b *Builder) Version(ctx context.Context, i int, d deploy.Deployment) (string, error) {
	var out bytes.Buffer
	dir := filepath.Join(b.Layout.RepoDir(i), d.CheckoutDir())
	if e := b.sh(ctx, dir, "git log --pretty=format:%h -n 1", &out); e != nil {
		return "", e
	}
	return strings.TrimSpace(out.String()), nil
}
