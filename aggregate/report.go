// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package aggregate

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/irifrance/hwbench/classify"
)

// Report file names.
const (
	RecapFile     = "recap.json"
	StatsFile     = "aggregate.json"
	BreakdownFile = "interesting_models_breakdown.csv"
)

// number gives x as a json value, non finite values as text.
func number(x float64) any {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return classify.Format(x)
	}
	return x
}

func latex(title string, solved, sat, unsat int, unique string, avgTime, avgDepth float64) string {
	return fmt.Sprintf(`& %s & %d & %d & %d & %s & %.1f & %.1f \\`,
		title, solved, sat, unsat, unique, avgTime, avgDepth)
}

// Map gives the json form of rc.
func (rc *Recap) Map() map[string]any {
	res := map[string]any{"Recap Time": number(rc.TimeLimit)}
	for _, run := range rc.Runs {
		wins := make(map[string]any, len(run.UniqueWins))
		for k, t := range run.UniqueWins {
			wins[k] = number(t)
		}
		avgTime := rc.per(run.TotalTime)
		avgDepth := rc.per(float64(run.TotalDepth))
		m := map[string]any{
			"Solved":          len(run.Solved),
			"Solved (SAT)":    len(run.Sat),
			"Solved (UN-SAT)": len(run.Unsat),
			"Unique Wins":     wins,
			"Total Time":      number(run.TotalTime),
			"Average Time":    number(avgTime),
			"Total Depth":     run.TotalDepth,
			"Average Depth":   number(avgDepth),
			"Latex tabular": latex(run.Name, len(run.Solved), len(run.Sat), len(run.Unsat),
				fmt.Sprint(len(run.UniqueWins)), avgTime, avgDepth),
		}
		if ps := run.Percentiles(rc.TimeLimit); ps != nil {
			m["Runtime Percentiles"] = ps
		}
		res[run.Name+" results:"] = m
	}
	all, sat, unsat := rc.BestSolved()
	bt, bd := rc.BestTotals()
	res["Virtual Best"] = map[string]any{
		"Solved":          all,
		"Solved (SAT)":    sat,
		"Solved (UN-SAT)": unsat,
		"Total Time":      number(bt),
		"Average Time":    number(rc.per(bt)),
		"Total Depth":     bd,
		"Average Depth":   number(rc.per(float64(bd))),
		"Latex tabular":   latex("VB", all, sat, unsat, "", rc.per(bt), rc.per(float64(bd))),
	}
	noSolvers := append([]string{}, rc.NoSolvers...)
	res["No Solvers"] = noSolvers
	interesting := make([]string, len(rc.Interesting))
	for i, b := range rc.Interesting {
		interesting[i] = b.Key
	}
	res["Interesting Cases"] = interesting
	res["Interesting Cases One Line"] = strings.Join(interesting, " ")
	if len(rc.Contradicting) > 0 {
		res["Contradicting Results"] = rc.Contradicting
	}
	return res
}

func writeJSON(path string, v any) error {
	buf, e := sonic.ConfigStd.MarshalIndent(v, "", "    ")
	if e != nil {
		return e
	}
	return os.WriteFile(path, append(buf, '\n'), 0644)
}

// WriteRecap writes rc to the recap file of dir.
func WriteRecap(dir string, rc *Recap) error {
	return writeJSON(filepath.Join(dir, RecapFile), rc.Map())
}

// WriteStats writes vs to the aggregate file of dir.
func WriteStats(dir string, vs []Value) error {
	m := make(map[string]any, len(vs))
	for _, v := range vs {
		m[v.Name] = number(v.Value)
	}
	return writeJSON(filepath.Join(dir, StatsFile), m)
}

// WriteBreakdown writes, for every interesting instance, the time of
// each deployment which solved it.
func WriteBreakdown(dir string, rc *Recap) error {
	f, e := os.OpenFile(filepath.Join(dir, BreakdownFile), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if e != nil {
		return e
	}
	w := csv.NewWriter(f)
	hdr := []string{"model"}
	for _, run := range rc.Runs {
		hdr = append(hdr, fmt.Sprintf("%s (%d, %d)", run.Name, len(run.Solved), len(run.UniqueWins)))
	}
	w.Write(hdr)
	for _, b := range rc.Interesting {
		row := make([]string, len(rc.Runs)+1)
		row[0] = b.Key
		for _, s := range b.SolvedBy {
			row[s.Deployment+1] = classify.Format(s.Time)
		}
		w.Write(row)
	}
	w.Flush()
	if e := w.Error(); e != nil {
		f.Close()
		return e
	}
	return f.Close()
}

// Write writes every report of rc and vs to c.Dir.
func Write(c *Context, rc *Recap, vs []Value) error {
	if e := WriteRecap(c.Dir, rc); e != nil {
		return e
	}
	if e := WriteStats(c.Dir, vs); e != nil {
		return e
	}
	return WriteBreakdown(c.Dir, rc)
}
