// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package aggregate

import (
	"math"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/irifrance/hwbench/classify"
	"github.com/irifrance/hwbench/results"
)

const depthField = "Depth"

// Type Solve is one deployment solving one instance.
type Solve struct {
	Deployment int
	Time       float64
}

// Type Best is the virtual best solver on one instance.
type Best struct {
	Key      string
	Time     float64 // minimum runtime, clamped to the time limit
	Depth    int     // minimum depth
	SolvedBy []Solve // in deployment order
	Result   string  // decisive result reported by any deployment
}

// Solved reports whether some deployment solved the instance.
func (b *Best) Solved() bool {
	return len(b.SolvedBy) > 0
}

// Type RunRecap summarizes one deployment.
type RunRecap struct {
	Name       string
	Solved     []string           // keys of solved instances
	Sat        []string           // solved with a SAT result
	Unsat      []string           // solved with an UNSAT result
	UniqueWins map[string]float64 // instances solved by no other deployment, with time
	TotalTime  float64            // sum of clamped runtimes
	TotalDepth int
	solved     []float64
}

// Type Recap compares the deployments of a joined result over their
// shared instances.
type Recap struct {
	TimeLimit     float64
	Instances     int
	Runs          []*RunRecap
	Best          []*Best
	NoSolvers     []string // instances no deployment solved
	Interesting   []*Best  // instances solved by some but not all deployments
	Contradicting []string // instances reported SAT by one deployment and UNSAT by another
}

func timeOf(r *classify.Record) float64 {
	return classify.Parse(r.TimeError(), math.Inf(1))
}

func depthOf(r *classify.Record) int {
	x := classify.Parse(r.Value(depthField), 0)
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return 0
	}
	return int(x)
}

// NewRecap computes the recap of j under the policy of c.
func NewRecap(c *Context, j *results.Joined, names []string) *Recap {
	n := j.Deployments()
	rc := &Recap{TimeLimit: c.TimeLimit, Instances: j.Len()}
	for i := 0; i < n; i++ {
		nm := ""
		if i < len(names) {
			nm = names[i]
		}
		rc.Runs = append(rc.Runs, &RunRecap{Name: nm, UniqueWins: make(map[string]float64)})
	}
	for _, k := range j.Keys {
		best := &Best{Key: k, Time: math.Inf(1), Depth: math.MaxInt}
		sat, unsat := false, false
		for i := 0; i < n; i++ {
			switch j.Record(k, i).Result() {
			case classify.Sat:
				sat = true
			case classify.Unsat:
				unsat = true
			}
		}
		if sat && unsat {
			rc.Contradicting = append(rc.Contradicting, k)
		}
		for i, run := range rc.Runs {
			r := j.Record(k, i)
			t := timeOf(r)
			rt := c.Runtime(t)
			run.TotalTime += rt
			best.Time = math.Min(best.Time, rt)
			d := depthOf(r)
			run.TotalDepth += d
			if d < best.Depth {
				best.Depth = d
			}
			if !c.Solved(t) {
				continue
			}
			run.Solved = append(run.Solved, k)
			run.solved = append(run.solved, t)
			switch r.Result() {
			case classify.Sat:
				run.Sat = append(run.Sat, k)
			case classify.Unsat:
				run.Unsat = append(run.Unsat, k)
			}
			best.SolvedBy = append(best.SolvedBy, Solve{Deployment: i, Time: t})
		}
		if n == 0 {
			best.Depth = 0
		}
		switch {
		case sat && !unsat:
			best.Result = classify.Sat
		case unsat && !sat:
			best.Result = classify.Unsat
		}
		if len(best.SolvedBy) == 1 {
			s := best.SolvedBy[0]
			rc.Runs[s.Deployment].UniqueWins[k] = s.Time
		}
		if len(best.SolvedBy) > 0 && len(best.SolvedBy) < n {
			rc.Interesting = append(rc.Interesting, best)
		}
		if len(best.SolvedBy) == 0 {
			rc.NoSolvers = append(rc.NoSolvers, k)
		}
		rc.Best = append(rc.Best, best)
	}
	return rc
}

// BestSolved counts the instances solved by the virtual best, in total
// and by result.
func (rc *Recap) BestSolved() (all, sat, unsat int) {
	for _, b := range rc.Best {
		if !b.Solved() {
			continue
		}
		all++
		switch b.Result {
		case classify.Sat:
			sat++
		case classify.Unsat:
			unsat++
		}
	}
	return
}

// BestTotals gives the sums of the virtual best runtimes and depths.
func (rc *Recap) BestTotals() (time float64, depth int) {
	for _, b := range rc.Best {
		time += b.Time
		depth += b.Depth
	}
	return
}

func (rc *Recap) per(x float64) float64 {
	if rc.Instances == 0 {
		return 0
	}
	return x / float64(rc.Instances)
}

// Percentiles gives the p50, p90 and p99 of the solved runtimes of
// run, in seconds with millisecond resolution.  It returns nil if run
// solved nothing.
func (run *RunRecap) Percentiles(limit float64) map[string]float64 {
	if len(run.solved) == 0 {
		return nil
	}
	hi := int64(math.Ceil(limit*1000)) + 1
	if hi < 2 {
		hi = 2
	}
	h := hdrhistogram.New(1, hi, 3)
	for _, t := range run.solved {
		ms := int64(math.Round(t * 1000))
		if ms < 1 {
			ms = 1
		}
		if ms > hi {
			ms = hi
		}
		h.RecordValue(ms)
	}
	return map[string]float64{
		"p50": float64(h.ValueAtQuantile(50)) / 1000,
		"p90": float64(h.ValueAtQuantile(90)) / 1000,
		"p99": float64(h.ValueAtQuantile(99)) / 1000,
	}
}
