// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/irifrance/hwbench/bench"
	"github.com/irifrance/hwbench/deploy"
	"github.com/irifrance/hwbench/internal/config"
	"github.com/irifrance/hwbench/internal/metrics"
)

var runOpts struct {
	profile int
	seed    int64
	noBuild bool
}

var runCmd = &cobra.Command{
	Use:   "run --profile N",
	Short: "build, dispatch and analyze a benchmark run",
	Long: `run creates a fresh work directory, builds the deployments of a
profile, runs every deployment on every instance of the suite and analyzes
the job logs.  In cluster mode the jobs are submitted and the analysis waits
for them before reading their logs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	f := runCmd.Flags()
	f.IntVar(&runOpts.profile, "profile", 0, "profile index, see hwbench profiles")
	f.Int64Var(&runOpts.seed, "seed", 0, "instance shuffle seed, 0 for the clock")
	f.BoolVar(&runOpts.noBuild, "no-build", false, "skip fetching and building")
	runCmd.MarkFlagRequired("profile")
}

func splitTests(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
}

func joinTests(ts []string) string {
	return strings.Join(ts, ",")
}

func loadProfile(i int) (*deploy.Profile, error) {
	ps, e := deploy.LoadProfiles(cfg.Profiles)
	if e != nil {
		return nil, e
	}
	return deploy.Lookup(ps, i)
}

func newMetrics() *metrics.Metrics {
	if !cfg.Metrics {
		return nil
	}
	return metrics.New()
}

func dispatcher(argv bench.Argv, m *metrics.Metrics) bench.Dispatcher {
	if cfg.Mode == config.Cluster {
		c := &bench.Cluster{
			Partition: cfg.Partition,
			Argv:      argv,
			Submitter: bench.Sbatch{Out: os.Stderr},
			Log:       logger}
		if m != nil {
			c.OnSubmit = func(j *bench.Job) { m.JobSubmitted(j.Deploy.Name()) }
		}
		return c
	}
	loc := &bench.Local{
		Threads:  cfg.Threads,
		Launcher: &bench.ExecLauncher{Argv: argv},
		Log:      logger}
	if m != nil {
		loc.OnDone = func(j *bench.Job, d time.Duration) { m.JobDone(j.Deploy.Name(), d) }
	}
	return loc
}

func run(ctx context.Context) error {
	prof, e := loadProfile(runOpts.profile)
	if e != nil {
		return e
	}
	repo, e := filepath.Abs(cfg.Repo)
	if e != nil {
		return e
	}
	mem, e := cfg.MemoryBytes()
	if e != nil {
		return e
	}
	tests := splitTests(cfg.Tests)
	insts, e := bench.FindInstances(repo, cfg.Suite, tests)
	if e != nil {
		return e
	}
	if len(insts) == 0 {
		return fmt.Errorf("no instances in %s matching %v", filepath.Join(repo, bench.InputsDir, cfg.Suite), tests)
	}
	l, e := bench.NewWorkDir(repo, time.Now())
	if e != nil {
		return e
	}
	logger.Info("created work dir",
		zap.String("dir", l.Root),
		zap.String("profile", prof.Name),
		zap.Int("instances", len(insts)),
		zap.String("memory", humanize.IBytes(mem)))
	meta := bench.NewMeta(runOpts.profile, prof.Name, cfg.Suite, tests, cfg.Mode,
		time.Duration(cfg.Timeout)*time.Second, mem)
	if e := meta.Write(l.MetaDir()); e != nil {
		return e
	}
	if _, e := bench.CreateSuite(l.SuiteDir(), insts, logger); e != nil {
		return e
	}
	if !runOpts.noBuild {
		if e := build(ctx, l, prof); e != nil {
			return e
		}
	}
	seed := runOpts.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	jobs := bench.Plan(l, insts, prof.Deployments, cfg.Timeout, mem, rand.New(rand.NewSource(seed)))
	self, e := os.Executable()
	if e != nil {
		return e
	}
	profiles := cfg.Profiles
	if profiles != "" {
		if profiles, e = filepath.Abs(profiles); e != nil {
			return e
		}
	}
	m := newMetrics()
	argv := bench.ExecArgv(self, runOpts.profile, profiles, l)
	logger.Info("dispatching", zap.Int("jobs", len(jobs)), zap.String("mode", cfg.Mode), zap.Int64("seed", seed))
	if e := dispatcher(argv, m).Dispatch(ctx, jobs); e != nil {
		return e
	}
	var wait time.Duration
	if cfg.Mode == config.Cluster {
		wait = bench.ClusterWait(cfg.Timeout)
	}
	return analyze(ctx, l, wait, m)
}
