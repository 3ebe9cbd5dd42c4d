// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package aggregate derives comparative statistics from joined
// benchmark results.
package aggregate

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/irifrance/hwbench/classify"
	"github.com/irifrance/hwbench/results"
)

// ErrMissingColumn is returned by a statistic reading a column some
// record lacks.  Evaluate reports the default of such a statistic.
var ErrMissingColumn = errors.New("missing column")

// Type Stat is a named statistic over joined results.
type Stat struct {
	Name    string
	Default float64
	Fn      func(j *results.Joined) (float64, error)
}

// Type Value is the evaluated value of a Stat.
type Value struct {
	Name  string
	Value float64
	Gap   bool // Value is the default of the statistic
}

// Evaluate evaluates every stat independently.  A failing stat is
// logged and takes its default value.
func Evaluate(j *results.Joined, stats []Stat, lg *zap.Logger) []Value {
	res := make([]Value, 0, len(stats))
	for _, st := range stats {
		x, e := st.Fn(j)
		if e != nil {
			lg.Warn("aggregation gap", zap.String("stat", st.Name), zap.Error(e))
			res = append(res, Value{Name: st.Name, Value: st.Default, Gap: true})
			continue
		}
		res = append(res, Value{Name: st.Name, Value: x})
	}
	return res
}

func column(j *results.Joined, i int, col string) ([]string, error) {
	if i < 0 || i >= j.Deployments() {
		return nil, fmt.Errorf("no deployment %d", i)
	}
	res := make([]string, 0, j.Len())
	for _, k := range j.Keys {
		v, ok := j.Record(k, i).Get(col)
		if !ok {
			return nil, fmt.Errorf("%w: deployment %d has no %q for %s", ErrMissingColumn, i, col, k)
		}
		res = append(res, v)
	}
	return res, nil
}

// Count counts the records of deployment i whose column col is one of
// targets.
func Count(j *results.Joined, i int, col string, targets ...string) (int, error) {
	vs, e := column(j, i, col)
	if e != nil {
		return 0, e
	}
	n := 0
	for _, v := range vs {
		for _, t := range targets {
			if v == t {
				n++
				break
			}
		}
	}
	return n, nil
}

// Type Filter drops values before an average or a median is taken.
type Filter struct {
	Inf      bool // drop non finite values
	Zero     bool // drop zeroes
	Negative bool // drop negative values
}

func (f Filter) keep(x float64) bool {
	switch {
	case math.IsNaN(x):
		return false
	case f.Inf && math.IsInf(x, 0):
		return false
	case f.Zero && x == 0:
		return false
	case f.Negative && x < 0:
		return false
	}
	return true
}

// Calculation selects the central value taken by AverageOrMedian.
type Calculation int

const (
	Average Calculation = iota
	Median
)

func (c Calculation) String() string {
	if c == Median {
		return "Median"
	}
	return "Average"
}

// AverageOrMedian computes the average or median of numeric column col
// of deployment i over the records whose conds columns all lie in
// (0, inf).  Values which are not numbers are skipped.  If no value
// remains the result is def.
func AverageOrMedian(j *results.Joined, i int, col string, calc Calculation, conds []string, filt Filter, def float64) (float64, error) {
	vs, e := column(j, i, col)
	if e != nil {
		return def, e
	}
	cvs := make([][]string, len(conds))
	for c, cond := range conds {
		cvs[c], e = column(j, i, cond)
		if e != nil {
			return def, e
		}
	}
	xs := make([]float64, 0, len(vs))
	for r, v := range vs {
		ok := true
		for c := range conds {
			y := classify.Parse(cvs[c][r], math.NaN())
			if !(0 < y && y < math.Inf(1)) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		x := classify.Parse(v, math.NaN())
		if filt.keep(x) {
			xs = append(xs, x)
		}
	}
	if len(xs) == 0 {
		return def, nil
	}
	if calc == Median {
		sort.Float64s(xs)
		return xs[len(xs)/2], nil
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs)), nil
}

func countStat(name string, i int, col string, targets ...string) Stat {
	return Stat{
		Name: name,
		Fn: func(j *results.Joined) (float64, error) {
			n, e := Count(j, i, col, targets...)
			return float64(n), e
		}}
}

// DeploymentStats gives the outcome counts of deployment i named name.
func DeploymentStats(i int, name string) []Stat {
	return []Stat{
		countStat(name+" SOLVED", i, classify.FieldResult, classify.Sat, classify.Unsat),
		countStat(name+" Error", i, classify.FieldTimeError, classify.Error),
		countStat(name+" Memory Error", i, classify.FieldTimeError, classify.MemoryError, classify.ForeignException),
		countStat(name+" SAT", i, classify.FieldResult, classify.Sat),
		countStat(name+" UN-SAT", i, classify.FieldResult, classify.Unsat),
	}
}

// Type Conditioned names a column averaged only where Condition lies
// in (0, inf).
type Conditioned struct {
	Column    string
	Condition string
}

func centralStat(name string, i int, col string, calc Calculation, conds []string, filt Filter) Stat {
	def := math.Inf(1)
	return Stat{
		Name:    name,
		Default: def,
		Fn: func(j *results.Joined) (float64, error) {
			return AverageOrMedian(j, i, col, calc, conds, filt, def)
		}}
}

// NumericStats gives averages and medians of the telemetry of
// deployment i named name: for each of conditioned, the average and
// median where its condition holds, and for each of cols the average
// of finite values.
func NumericStats(i int, name string, cols []string, conditioned []Conditioned) []Stat {
	var res []Stat
	for _, c := range conditioned {
		m := fmt.Sprintf("if 0 < %s < inf", c.Condition)
		for _, calc := range []Calculation{Average, Median} {
			res = append(res, centralStat(
				fmt.Sprintf("%s %s %s (%s)", name, calc, c.Column, m),
				i, c.Column, calc, []string{c.Condition}, Filter{}))
		}
	}
	for _, col := range cols {
		res = append(res, centralStat(fmt.Sprintf("%s Average %s", name, col),
			i, col, Average, nil, Filter{Inf: true}))
	}
	return res
}
