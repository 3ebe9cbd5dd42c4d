// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/irifrance/hwbench/bench"
	"github.com/irifrance/hwbench/results"
)

var mergeOpts struct {
	out string
}

var mergeCmd = &cobra.Command{
	Use:   "merge --out DIR workdir workdir [workdir ...]",
	Short: "merge the analyzed results of several runs of a profile",
	Long: `merge combines the per deployment tables of several analyzed work
directories of the same profile, an instance keeping the record of the first
work directory naming it, and reports on the merged tables in DIR.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var metas []*bench.Meta
		var dirs []string
		for _, a := range args {
			l, e := bench.OpenWorkDir(cfg.Repo, a)
			if e != nil {
				return e
			}
			meta, e := bench.ReadMeta(l.MetaDir())
			if e != nil {
				return fmt.Errorf("reading metadata of %s: %w", l.Root, e)
			}
			if len(metas) != 0 && meta.Profile != metas[0].Profile {
				return fmt.Errorf("%s ran profile %d, %s ran profile %d", l.Root, meta.Profile, dirs[0], metas[0].Profile)
			}
			if len(metas) != 0 && meta.Timeout != metas[0].Timeout {
				logger.Warn("timeouts differ", zap.String("dir", l.Root), zap.Duration("timeout", meta.Timeout))
			}
			metas = append(metas, meta)
			dirs = append(dirs, l.ResultsDir())
		}
		prof, e := loadProfile(metas[0].Profile)
		if e != nil {
			return e
		}
		if e := os.MkdirAll(mergeOpts.out, 0755); e != nil {
			return e
		}
		out := results.NewStore(mergeOpts.out)
		for i := range prof.Deployments {
			paths := make([]string, len(dirs))
			for k, d := range dirs {
				paths[k] = results.NewStore(d).Path(i)
			}
			t, e := results.MergeFiles(paths...)
			if e != nil {
				return fmt.Errorf("deployment %d: %w", i, e)
			}
			if e := out.Save(i, t); e != nil {
				return e
			}
		}
		ts, e := out.LoadAll(len(prof.Deployments))
		if e != nil {
			return e
		}
		name := filepath.Base(mergeOpts.out)
		return report(cmd.Context(), mergeOpts.out, name, prof, ts, metas[0].Timeout.Seconds(), newMetrics())
	},
}

func init() {
	mergeCmd.Flags().StringVar(&mergeOpts.out, "out", "", "directory receiving the merged results")
	mergeCmd.MarkFlagRequired("out")
}
