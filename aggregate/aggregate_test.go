// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package aggregate

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/irifrance/hwbench/classify"
	"github.com/irifrance/hwbench/results"
)

func rec(te, res string, more ...string) *classify.Record {
	r := classify.NewRecord()
	r.Set(classify.FieldTimeError, te)
	r.Set(classify.FieldResult, res)
	for i := 0; i+1 < len(more); i += 2 {
		r.Set(more[i], more[i+1])
	}
	return r
}

func TestSolvedPolicy(t *testing.T) {
	c := NewContext(3600, "")
	assert.False(t, c.Solved(3599.95))
	assert.True(t, c.Solved(3598))
	assert.False(t, c.Solved(3602))
	assert.False(t, c.Solved(math.Inf(1)))
	assert.Equal(t, 3600.0, c.Runtime(3602))
	assert.Equal(t, 3600.0, c.Runtime(math.Inf(1)))
	assert.Equal(t, 3601.0, c.Runtime(3601))
	assert.Equal(t, 12.5, c.Runtime(12.5))
}

// three deployments, x solved only by deployment 1.
func scenario() *results.Joined {
	ts := []*results.Table{results.NewTable(), results.NewTable(), results.NewTable()}
	ts[0].Add("0_x.aig", rec(classify.TimeoutWrapper, "", "Depth", "4"))
	ts[1].Add("0_x.aig", rec("12.5", classify.Unsat, "Depth", "2"))
	ts[2].Add("0_x.aig", rec(classify.MemoryError, classify.Unsat, "Depth", "7"))

	ts[0].Add("1_y.aig", rec("1", classify.Sat, "Depth", "3"))
	ts[1].Add("1_y.aig", rec("2", classify.Sat, "Depth", "3"))
	ts[2].Add("1_y.aig", rec("0.5", classify.Sat, "Depth", "1"))

	ts[0].Add("2_z.aig", rec(classify.Error, "", "Depth", "0"))
	ts[1].Add("2_z.aig", rec(classify.TimeoutScheduler, "", "Depth", "5"))
	ts[2].Add("2_z.aig", rec(classify.Error, "", "Depth", "1"))
	return results.CrossExamine(ts...)
}

func TestUniqueWinAndVirtualBest(t *testing.T) {
	c := NewContext(60, "")
	rc := NewRecap(c, scenario(), []string{"A", "B", "C"})
	assert.Equal(t, map[string]float64{"0_x.aig": 12.5}, rc.Runs[1].UniqueWins)
	assert.Empty(t, rc.Runs[0].UniqueWins)
	require.Len(t, rc.Interesting, 1)
	assert.Equal(t, "0_x.aig", rc.Interesting[0].Key)
	assert.Equal(t, []string{"2_z.aig"}, rc.NoSolvers)
	all, sat, unsat := rc.BestSolved()
	assert.Equal(t, 2, all)
	assert.Equal(t, 1, sat)
	assert.Equal(t, 1, unsat)
	bt, bd := rc.BestTotals()
	assert.Equal(t, 12.5+0.5+60, bt)
	assert.Equal(t, 2+1+0, bd)
	assert.Equal(t, []string{"0_x.aig", "1_y.aig"}, rc.Runs[1].Solved)
	assert.Equal(t, 60+1+60.0, rc.Runs[0].TotalTime)
	assert.Empty(t, rc.Contradicting)
}

func TestDeploymentStats(t *testing.T) {
	j := scenario()
	vs := Evaluate(j, DeploymentStats(2, "C"), zap.NewNop())
	got := make(map[string]float64)
	for _, v := range vs {
		assert.False(t, v.Gap)
		got[v.Name] = v.Value
	}
	assert.Equal(t, map[string]float64{
		"C SOLVED":       2,
		"C Error":        1,
		"C Memory Error": 1,
		"C SAT":          1,
		"C UN-SAT":       1,
	}, got)
}

func TestAggregationGap(t *testing.T) {
	j := scenario()
	stats := []Stat{
		countStat("missing", 0, "Clauses", "1"),
		countStat("present", 0, classify.FieldResult, classify.Sat),
	}
	vs := Evaluate(j, stats, zap.NewNop())
	require.Len(t, vs, 2)
	assert.True(t, vs[0].Gap)
	assert.Equal(t, 0.0, vs[0].Value)
	assert.False(t, vs[1].Gap)
	assert.Equal(t, 1.0, vs[1].Value)

	_, e := Count(j, 0, "Clauses", "1")
	assert.True(t, errors.Is(e, ErrMissingColumn))
}

func TestAverageOrMedian(t *testing.T) {
	tab := results.NewTable()
	tab.Add("a", rec("1", classify.Sat, "Aux", "4", "Inv", "2"))
	tab.Add("b", rec("2", classify.Sat, "Aux", "0", "Inv", "inf"))
	tab.Add("c", rec("ERROR", "", "Aux", "10", "Inv", "3"))
	tab.Add("d", rec("inf", "", "Aux", "-2", "Inv", "1"))
	j := results.CrossExamine(tab)

	x, e := AverageOrMedian(j, 0, "Aux", Average, []string{"Inv"}, Filter{}, -1)
	require.NoError(t, e)
	assert.InDelta(t, (4+10-2)/3.0, x, 1e-9)
	x, e = AverageOrMedian(j, 0, "Aux", Median, nil, Filter{Negative: true, Zero: true}, -1)
	require.NoError(t, e)
	assert.Equal(t, 10.0, x)
	x, e = AverageOrMedian(j, 0, classify.FieldTimeError, Average, nil, Filter{Inf: true}, -1)
	require.NoError(t, e)
	assert.Equal(t, 1.5, x)
	x, e = AverageOrMedian(j, 0, "Aux", Average, []string{"Inv"}, Filter{Negative: true, Zero: true, Inf: true}, -1)
	require.NoError(t, e)
	assert.Equal(t, 7.0, x)
	x, e = AverageOrMedian(j, 0, "Aux", Average, []string{"Nope"}, Filter{}, -1)
	assert.True(t, errors.Is(e, ErrMissingColumn))
	assert.Equal(t, -1.0, x)
}

func TestNumericStatsNames(t *testing.T) {
	st := NumericStats(0, "rfv PDR Default", []string{"Clauses"},
		[]Conditioned{{Column: "AuxVars", Condition: "AuxVars"}})
	names := make([]string, len(st))
	for i, s := range st {
		names[i] = s.Name
	}
	assert.Equal(t, []string{
		"rfv PDR Default Average AuxVars (if 0 < AuxVars < inf)",
		"rfv PDR Default Median AuxVars (if 0 < AuxVars < inf)",
		"rfv PDR Default Average Clauses",
	}, names)
}

func TestReports(t *testing.T) {
	dir := t.TempDir()
	c := NewContext(60, dir)
	rc := NewRecap(c, scenario(), []string{"A", "B", "C"})
	vs := Evaluate(scenario(), DeploymentStats(0, "A"), zap.NewNop())
	require.NoError(t, Write(c, rc, vs))

	buf, e := os.ReadFile(filepath.Join(dir, RecapFile))
	require.NoError(t, e)
	var m map[string]any
	require.NoError(t, sonic.Unmarshal(buf, &m))
	assert.Equal(t, 60.0, m["Recap Time"])
	b := m["B results:"].(map[string]any)
	assert.Equal(t, 2.0, b["Solved"])
	assert.Equal(t, map[string]any{"0_x.aig": 12.5}, b["Unique Wins"])
	assert.Equal(t, `& B & 2 & 1 & 1 & 1 & 24.8 & 3.3 \\`, b["Latex tabular"])
	assert.Equal(t, "0_x.aig", m["Interesting Cases One Line"])
	vb := m["Virtual Best"].(map[string]any)
	assert.Equal(t, 2.0, vb["Solved"])

	buf, e = os.ReadFile(filepath.Join(dir, BreakdownFile))
	require.NoError(t, e)
	assert.Equal(t, "model,\"A (1, 0)\",\"B (2, 1)\",\"C (1, 0)\"\n0_x.aig,,12.5,\n", string(buf))

	buf, e = os.ReadFile(filepath.Join(dir, StatsFile))
	require.NoError(t, e)
	assert.True(t, strings.Contains(string(buf), `"A SOLVED": 1`))
}

func TestPercentiles(t *testing.T) {
	run := &RunRecap{solved: []float64{1, 2, 3, 4, 100}}
	ps := run.Percentiles(120)
	require.NotNil(t, ps)
	assert.InDelta(t, 3, ps["p50"], 0.01)
	assert.InDelta(t, 100, ps["p99"], 0.1)
	assert.Nil(t, (&RunRecap{}).Percentiles(120))
}

func TestRecapProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	c := NewContext(10, "")
	// times outside [0, 12] stand for error tags.
	tm := gen.Float64Range(0, 14)

	build := func(times [][]float64) *results.Joined {
		ts := make([]*results.Table, len(times))
		for i := range ts {
			ts[i] = results.NewTable()
			for k, x := range times[i] {
				te := classify.Format(x)
				if x > 12 {
					te = classify.Error
				}
				ts[i].Add(fmt.Sprintf("%02d_m", k), rec(te, classify.Sat))
			}
		}
		return results.CrossExamine(ts...)
	}
	parse := func(x float64) float64 {
		if x > 12 {
			return math.Inf(1)
		}
		return x
	}

	properties.Property("virtual best and unique wins", prop.ForAll(
		func(a, b, d []float64) bool {
			n := len(a)
			if len(b) < n {
				n = len(b)
			}
			if len(d) < n {
				n = len(d)
			}
			times := [][]float64{a[:n], b[:n], d[:n]}
			rc := NewRecap(c, build(times), []string{"a", "b", "d"})
			if len(rc.Best) != n {
				return false
			}
			for k, best := range rc.Best {
				min := math.Inf(1)
				solvedBy := 0
				winner := -1
				for i := range times {
					x := parse(times[i][k])
					min = math.Min(min, c.Runtime(x))
					if c.Solved(x) {
						solvedBy++
						winner = i
					}
				}
				if best.Time != min || len(best.SolvedBy) != solvedBy {
					return false
				}
				if best.Solved() != (solvedBy > 0) {
					return false
				}
				for i, run := range rc.Runs {
					_, unique := run.UniqueWins[best.Key]
					if unique != (solvedBy == 1 && winner == i) {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOfN(12, tm), gen.SliceOfN(12, tm), gen.SliceOfN(12, tm),
	))

	properties.TestingRun(t)
}
