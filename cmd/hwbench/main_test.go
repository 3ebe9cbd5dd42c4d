// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/irifrance/hwbench/aggregate"
	"github.com/irifrance/hwbench/bench"
	"github.com/irifrance/hwbench/deploy"
	"github.com/irifrance/hwbench/internal/config"
	"github.com/irifrance/hwbench/internal/metrics"
)

const timeTail = `
	Command being timed: "sh -c ./abc"
	User time (seconds): %s
	System time (seconds): 0.02
	Maximum resident set size (kbytes): 4096
	Exit status: 0
`

func abcLog(result, user string) string {
	return "--- AIG file name = /b/x.aig\n" + result + "\n" + strings.Replace(timeTail, "%s", user, 1)
}

func TestOverrides(t *testing.T) {
	cmd := &cobra.Command{}
	f := cmd.Flags()
	f.Int("timeout", 0, "")
	f.StringSlice("tests", nil, "")
	f.Bool("no-sqlite", false, "")
	f.String("mode", "", "")
	require.NoError(t, f.Parse([]string{"--timeout", "7", "--tests", "a,b", "--no-sqlite"}))
	c := config.Default()
	overrides(cmd, c)
	assert.Equal(t, 7, c.Timeout)
	assert.Equal(t, "a,b", c.Tests)
	assert.False(t, c.SQLite)
	assert.True(t, c.Metrics)
	assert.Equal(t, config.Local, c.Mode)
	assert.Equal(t, []string{"a", "b"}, splitTests(c.Tests))
	assert.Equal(t, []string{"aig"}, splitTests("aig"))
}

func TestListProfiles(t *testing.T) {
	var buf bytes.Buffer
	listProfiles(&buf, deploy.Profiles()[:2])
	assert.Equal(t, "  0  ABC 1 runs (ABC V)\n       0: ABC V\n  1  ABC 1 runs (ABC VRN)\n       0: ABC VRN\n", buf.String())
}

func TestAnalyze(t *testing.T) {
	cfg = config.Default()
	cfg.Repo = t.TempDir()
	logger = zap.NewNop()
	prof := deploy.Profiles()[0]

	l, e := bench.NewWorkDir(cfg.Repo, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, e)
	meta := bench.NewMeta(0, prof.Name, "s", []string{"aig"}, config.Local, 60*time.Second, 0)
	require.NoError(t, meta.Write(l.MetaDir()))
	require.NoError(t, os.MkdirAll(l.OutputDir(0), 0755))
	slug := deploy.Slug(prof.Deployments[0])
	for i, log := range []string{
		abcLog("Property proved.  Time = 0.1 sec", "1.5"),
		abcLog("Output 0 of miter was asserted in frame 4.", "2.5"),
	} {
		p := l.Artifact(0, slug, i, []string{"x.aig", "y.aig"}[i])
		require.NoError(t, os.WriteFile(p, []byte(log), 0644))
	}
	// a stale result is removed
	require.NoError(t, os.MkdirAll(l.ResultsDir(), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(l.ResultsDir(), "stale"), nil, 0644))

	require.NoError(t, analyze(context.Background(), l, 0, metrics.New()))

	for _, f := range []string{crossFile, sqliteFile, metricsFile, "deployment_0.csv",
		aggregate.RecapFile, aggregate.StatsFile, aggregate.BreakdownFile, "graphs/cactus.txt"} {
		_, e := os.Stat(filepath.Join(l.ResultsDir(), f))
		assert.NoError(t, e, f)
	}
	_, e = os.Stat(filepath.Join(l.GraphsDir(), "summary.txt"))
	assert.NoError(t, e)
	_, e = os.Stat(filepath.Join(l.ResultsDir(), "stale"))
	assert.True(t, os.IsNotExist(e))

	data, e := os.ReadFile(filepath.Join(l.ResultsDir(), "deployment_0.csv"))
	require.NoError(t, e)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "model,TimeError,Result"))
	assert.True(t, strings.HasPrefix(lines[1], "0_x.aig,1.5,UNSAT"))
	assert.True(t, strings.HasPrefix(lines[2], "1_y.aig,2.5,SAT"))

	data, e = os.ReadFile(filepath.Join(l.ResultsDir(), aggregate.StatsFile))
	require.NoError(t, e)
	var stats map[string]any
	require.NoError(t, sonic.Unmarshal(data, &stats))
	assert.Equal(t, 2.0, stats["ABC V SOLVED"])
}

func TestAnalyzeCancelledWait(t *testing.T) {
	cfg = config.Default()
	cfg.Repo = t.TempDir()
	logger = zap.NewNop()
	l, e := bench.NewWorkDir(cfg.Repo, time.Now())
	require.NoError(t, e)
	meta := bench.NewMeta(0, deploy.Profiles()[0].Name, "s", nil, config.Local, time.Minute, 0)
	require.NoError(t, meta.Write(l.MetaDir()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, analyze(ctx, l, time.Hour, nil), context.Canceled)
}
