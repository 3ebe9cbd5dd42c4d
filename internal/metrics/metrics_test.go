// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irifrance/hwbench/aggregate"
)

func TestJobs(t *testing.T) {
	m := New()
	m.JobDone("A", 2*time.Second)
	m.JobDone("A", time.Second)
	m.JobSubmitted("B")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.jobs.WithLabelValues("A", "done")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobs.WithLabelValues("B", "submitted")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.jobDuration))
}

func TestObserve(t *testing.T) {
	m := New()
	rc := &aggregate.Recap{
		Instances: 3,
		NoSolvers: []string{"2_z.aig"},
		Runs: []*aggregate.RunRecap{{
			Name:       "A",
			Solved:     []string{"0_x.aig", "1_y.aig"},
			Sat:        []string{"1_y.aig"},
			Unsat:      []string{"0_x.aig"},
			UniqueWins: map[string]float64{"0_x.aig": 1},
			TotalTime:  12.5}}}
	m.Observe(rc)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.instances))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.noSolvers))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.solved.WithLabelValues("A", "all")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uniqueWins.WithLabelValues("A")))
	assert.Equal(t, 12.5, testutil.ToFloat64(m.totalTime.WithLabelValues("A")))

	p := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, m.WriteFile(p))
	data, e := os.ReadFile(p)
	require.NoError(t, e)
	assert.Contains(t, string(data), `hwbench_recap_solved{deployment="A",result="sat"} 1`)
}
