// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/irifrance/hwbench/aggregate"
	"github.com/irifrance/hwbench/bench"
	"github.com/irifrance/hwbench/deploy"
	"github.com/irifrance/hwbench/internal/metrics"
	"github.com/irifrance/hwbench/internal/publish"
	"github.com/irifrance/hwbench/render"
	"github.com/irifrance/hwbench/results"
)

// Files of the results directory written here.
const (
	crossFile   = "cross_examination.csv"
	sqliteFile  = "results.db"
	metricsFile = "metrics.prom"
)

var analyzeOpts struct {
	workdir string
	wait    time.Duration
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze --workdir W",
	Short: "classify the job logs of a run and report",
	Long: `analyze classifies the job logs of a work directory into one table
per deployment, joins the tables on their shared instances and writes the
recap, the aggregate statistics and the plots to the results directory,
which it recreates.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, e := bench.OpenWorkDir(cfg.Repo, analyzeOpts.workdir)
		if e != nil {
			return e
		}
		return analyze(cmd.Context(), l, analyzeOpts.wait, newMetrics())
	},
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeOpts.workdir, "workdir", "", "work directory, a name under the repository or a path")
	f.DurationVar(&analyzeOpts.wait, "wait", 0, "wait this long before reading the logs")
	analyzeCmd.MarkFlagRequired("workdir")
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	logger.Info("waiting for jobs", zap.Duration("wait", d))
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func analyze(ctx context.Context, l *bench.Layout, wait time.Duration, m *metrics.Metrics) error {
	meta, e := bench.ReadMeta(l.MetaDir())
	if e != nil {
		return fmt.Errorf("reading metadata of %s: %w", l.Root, e)
	}
	prof, e := loadProfile(meta.Profile)
	if e != nil {
		return e
	}
	if prof.Name != meta.ProfileName {
		logger.Warn("profile changed since the run", zap.String("run", meta.ProfileName), zap.String("now", prof.Name))
	}
	if s, e := bench.OpenSuite(l.SuiteDir()); e == nil {
		if ch, e := s.Changed(); e != nil {
			logger.Warn("couldn't check instances", zap.Error(e))
		} else if len(ch) != 0 {
			logger.Warn("instances changed since the run", zap.Ints("indices", ch))
		}
	}
	if e := sleep(ctx, wait); e != nil {
		return e
	}
	dir := l.ResultsDir()
	if e := os.RemoveAll(dir); e != nil {
		return e
	}
	if e := os.MkdirAll(dir, 0755); e != nil {
		return e
	}
	store := results.NewStore(dir)
	for i, d := range prof.Deployments {
		t, e := results.Classify(l.OutputDir(i), deploy.Slug(d), d, logger)
		if e != nil {
			return fmt.Errorf("deployment %d (%s): %w", i, d.Name(), e)
		}
		logger.Info("classified", zap.String("deployment", d.Name()), zap.Int("logs", t.Len()))
		if e := store.Save(i, t); e != nil {
			return e
		}
	}
	ts, e := store.LoadAll(len(prof.Deployments))
	if e != nil {
		return e
	}
	return report(ctx, dir, l.Name(), prof, ts, meta.Timeout.Seconds(), m)
}

// report cross examines ts and writes every report of prof to dir.
func report(ctx context.Context, dir, name string, prof *deploy.Profile, ts []*results.Table, limit float64, m *metrics.Metrics) error {
	j := results.CrossExamine(ts...)
	if e := j.Save(filepath.Join(dir, crossFile)); e != nil {
		return e
	}
	c := aggregate.NewContext(limit, dir)
	c.Slack = cfg.Slack
	c.NearLimit = cfg.NearLimit
	names := prof.Names()
	rc := aggregate.NewRecap(c, j, names)
	for _, k := range rc.Contradicting {
		logger.Warn("contradicting results", zap.String("instance", k))
	}
	vs := aggregate.Evaluate(j, prof.Stats(), logger)
	if e := aggregate.Write(c, rc, vs); e != nil {
		return e
	}
	if e := render.WriteGraphs(bench.GraphsDir(dir), prof.Name, c, j, names, rc); e != nil {
		return e
	}
	if cfg.SQLite {
		if e := results.ExportSQLite(ctx, filepath.Join(dir, sqliteFile), names, j); e != nil {
			return e
		}
	}
	if m != nil {
		m.Observe(rc)
		if e := m.WriteFile(filepath.Join(dir, metricsFile)); e != nil {
			return e
		}
	}
	if cfg.Publish.Enabled() {
		p, e := publish.New(cfg.Publish, logger)
		if e != nil {
			return e
		}
		n, e := p.Dir(ctx, dir, name)
		if e != nil {
			return e
		}
		logger.Info("published", zap.String("bucket", cfg.Publish.Bucket), zap.String("prefix", name), zap.Int("files", n))
	}
	fmt.Println(render.Summary(prof.Name, rc))
	return nil
}
