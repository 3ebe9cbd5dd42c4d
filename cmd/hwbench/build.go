// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/irifrance/hwbench/bench"
	"github.com/irifrance/hwbench/deploy"
)

var buildOpts struct {
	profile int
	workdir string
}

var buildCmd = &cobra.Command{
	Use:   "build --profile N [--workdir W]",
	Short: "fetch and build the deployments of a profile",
	Long: `build fetches and builds every deployment of a profile in the repos
directory of a work directory, a fresh one unless --workdir is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prof, e := loadProfile(buildOpts.profile)
		if e != nil {
			return e
		}
		var l *bench.Layout
		if buildOpts.workdir != "" {
			l, e = bench.OpenWorkDir(cfg.Repo, buildOpts.workdir)
		} else {
			l, e = bench.NewWorkDir(cfg.Repo, time.Now())
		}
		if e != nil {
			return e
		}
		if e := build(cmd.Context(), l, prof); e != nil {
			return e
		}
		fmt.Println(l.Root)
		return nil
	},
}

func init() {
	f := buildCmd.Flags()
	f.IntVar(&buildOpts.profile, "profile", 0, "profile index, see hwbench profiles")
	f.StringVar(&buildOpts.workdir, "workdir", "", "existing work directory")
	buildCmd.MarkFlagRequired("profile")
}

// build builds the deployments of prof in l and logs their versions.
func build(ctx context.Context, l *bench.Layout, prof *deploy.Profile) error {
	b := &bench.Builder{Layout: l, Log: logger}
	if e := b.Build(ctx, prof.Deployments); e != nil {
		return e
	}
	for i, d := range prof.Deployments {
		v, e := b.Version(ctx, i, d)
		if e != nil {
			logger.Warn("no version", zap.String("deployment", d.Name()), zap.Error(e))
			continue
		}
		logger.Info("built", zap.Int("deployment", i), zap.String("name", d.Name()), zap.String("version", v))
	}
	return nil
}
