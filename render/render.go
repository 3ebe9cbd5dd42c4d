// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package render draws benchmark results as utf8 text.
package render

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/irifrance/hwbench/aggregate"
	"github.com/irifrance/hwbench/classify"
	"github.com/irifrance/hwbench/results"
)

// VirtualBest names the virtual best solver in plots.
const VirtualBest = "VB"

func elapsed(r *classify.Record) float64 {
	return classify.Parse(r.TimeError(), math.Inf(1))
}

// Type Cactus contains info necessary for a cactus plot of an arbitrary
// number of deployments.
type Cactus struct {
	Names   []string    // deployment names, the virtual best last
	Times   [][]float64 // Times[i] solved times of deployment i, ascending
	Total   int         // number of instances
	MaxTime float64
}

// NewCactus makes a cactus of the solved times of each deployment of j
// and of their virtual best.
func NewCactus(c *aggregate.Context, j *results.Joined, names []string) *Cactus {
	cactus := &Cactus{Total: j.Len()}
	best := make([]float64, 0, j.Len())
	for _, k := range j.Keys {
		b := math.Inf(1)
		for i := 0; i < j.Deployments(); i++ {
			if t := elapsed(j.Record(k, i)); c.Solved(t) {
				b = math.Min(b, t)
			}
		}
		if !math.IsInf(b, 0) {
			best = append(best, b)
		}
	}
	for i := 0; i < j.Deployments(); i++ {
		ts := make([]float64, 0, j.Len())
		for _, k := range j.Keys {
			if t := elapsed(j.Record(k, i)); c.Solved(t) {
				ts = append(ts, t)
			}
		}
		cactus.add(names[i], ts)
	}
	cactus.add(VirtualBest, best)
	return cactus
}

func (c *Cactus) add(name string, ts []float64) {
	sort.Float64s(ts)
	for _, t := range ts {
		c.MaxTime = math.Max(c.MaxTime, t)
	}
	c.Names = append(c.Names, name)
	c.Times = append(c.Times, ts)
}

const ticks = "¤♠☆Ϟ★Ω▽◇✠♡☼·₁₂₃₄₅₆₇₈₉"

// Utf8 produces a text image of the cactus data suitable for a utf8
// monospaced font terminal: the number of solved instances grows to the
// right, time grows upwards.  Where deployments overlap, the later one
// is shown.
func (c *Cactus) Utf8(N int) string {
	M := N * (2*N + 1)
	buf := make([]byte, M)
	for i := range buf {
		buf[i] = byte(' ')
	}
	for i := 2 * N; i < M; i += 2*N + 1 {
		buf[i] = byte('\n')
	}
	var idx = func(x, y int) int {
		return (N-1)*(2*N+1) - (y * (2*N + 1)) + 2*x
	}
	maxTime := c.MaxTime
	if maxTime <= 0 {
		maxTime = 1
	}
	jDen := float64(max(c.Total, 1))
	for ri, ts := range c.Times {
		tick := byte('0') + byte(ri)
		for j, t := range ts {
			dj := int(float64(j) / jDen * float64(N-1))
			di := int(t / maxTime * float64(N-1))
			buf[idx(dj, di)] = tick
		}
	}
	mds := fmt.Sprintf("%.2fs", maxTime)
	pad := strings.Repeat(" ", len(mds))
	prefix := strings.Repeat(" ", len(mds)+1)
	s := string(buf)
	j := 0
	legend := make([]string, 0, len(c.Times))
	for _, r := range ticks {
		if j >= len(c.Times) {
			break
		}
		s = strings.Replace(s, fmt.Sprintf("%c", byte('0')+byte(j)), string(r), -1)
		legend = append(legend, fmt.Sprintf("%s\t%s - %s (%d)\n", prefix, string(r), c.Names[j], len(c.Times[j])))
		j++
	}
	lines := strings.Split(s, "\n")
	pLines := make([]string, len(lines))
	for i, ln := range lines {
		pLines[i] = fmt.Sprintf("%s|%s", pad, ln)
	}
	pLines[0] = fmt.Sprintf("%s|%s", mds, lines[0])
	pLines[len(pLines)-1] = fmt.Sprintf("%s0s|%s", strings.Repeat(" ", len(mds)-2), lines[len(lines)-1])
	s = strings.Join(pLines, "\n")

	delim := strings.Repeat("-", 2*N)
	sx := fmt.Sprintf("0%s%-5d", strings.Repeat(" ", 2*N+1-5), c.Total)
	return fmt.Sprintf("%s%s\n%s%s\n%s", s, delim, prefix, sx, strings.Join(legend, ""))
}

// Type Scatter contains info necessary for a scatter plot of 2
// deployments.
type Scatter struct {
	Names [2]string
	Xs    []float64 // Xs[i], Ys[i] gives the runtimes of both deployments on instance i.
	Ys    []float64
}

// NewScatter creates a scatter of the runtimes of deployments a and b
// of j, unsolved instances taking the time limit of c.
func NewScatter(c *aggregate.Context, j *results.Joined, names []string, a, b int) *Scatter {
	s := &Scatter{Names: [2]string{names[a], names[b]}}
	for _, k := range j.Keys {
		s.Xs = append(s.Xs, c.Runtime(elapsed(j.Record(k, a))))
		s.Ys = append(s.Ys, c.Runtime(elapsed(j.Record(k, b))))
	}
	return s
}

// Utf8 returns a scatter plot with 2n columns and n rows, making up for
// the width/height ratio of most monospaced fonts.
func (s *Scatter) Utf8(n int) string {
	M := 2 * n * (n + 1)
	buf := make([]byte, M)
	for i := range buf {
		buf[i] = byte(' ')
	}
	for i := 2 * n; i < M; i += 2*n + 1 {
		buf[i] = byte('\n')
	}
	var idx = func(x, y int) int {
		return (n-1)*(2*n+1) - (y * (2*n + 1)) + 2*x
	}
	for i := 0; i < n; i++ {
		buf[idx(i, i)] = byte('/')
	}

	maxTime := 0.0
	for _, x := range s.Xs {
		maxTime = math.Max(maxTime, x)
	}
	for _, y := range s.Ys {
		maxTime = math.Max(maxTime, y)
	}
	if maxTime <= 0 {
		maxTime = 1
	}
	for i, x := range s.Xs {
		y := s.Ys[i]
		xi := int(x / maxTime * float64(n-1))
		yi := int(y / maxTime * float64(n-1))
		j := idx(xi, yi)
		switch {
		case x < y:
			buf[j] = byte('+')
		case x > y:
			buf[j] = byte('-')
		default:
			buf[j] = byte('=')
		}
	}
	res := strings.Replace(string(buf), "+", "★", -1)
	res = strings.Replace(res, "-", "☆", -1)
	lines := strings.Split(res, "\n")
	lines = append(lines, strings.Repeat("-", 2*n))
	legend := fmt.Sprintf("\t%s - %s wins\n\t%s - %s wins\n\t= - tie\n", "★", s.Names[0],
		"☆", s.Names[1])

	return fmt.Sprintf("%s\n%s", strings.Join(lines, "\n"), legend)
}

// Summary produces a summary of all deployments of rc.
func Summary(name string, rc *aggregate.Recap) string {
	hdr := `
Profile %s
------------------------------------------------------------------------------------------------
| Deployment                     | solved   | sat      | unsat     | unique  |  time       | depth  |
------------------------------------------------------------------------------------------------`
	rSum := `| %-30s | %-4d     | %-4d     | %-4d      | %-4d    |  %-9.2fs | %-6d |
------------------------------------------------------------------------------------------------`
	parts := make([]string, 0, len(rc.Runs)+2)
	parts = append(parts, fmt.Sprintf(hdr, name))
	for _, run := range rc.Runs {
		parts = append(parts, fmt.Sprintf(rSum, rtrunc(run.Name, 30), len(run.Solved), len(run.Sat),
			len(run.Unsat), len(run.UniqueWins), run.TotalTime, run.TotalDepth))
	}
	all, sat, unsat := rc.BestSolved()
	bt, bd := rc.BestTotals()
	parts = append(parts, fmt.Sprintf(rSum, VirtualBest, all, sat, unsat, 0, bt, bd))
	return strings.Join(parts, "\n")
}

// Listing produces a listing of all instances in all deployments.
func Listing(c *aggregate.Context, j *results.Joined, names []string) string {
	n := j.Deployments()
	cols := make([][]string, n+2)
	nms := make([]string, j.Len()+1)
	nms[0] = " name             "
	nums := make([]string, j.Len()+1)
	nums[0] = "id   "
	for i, k := range j.Keys {
		nms[i+1] = fmt.Sprintf("%-18s", rtrunc(k, 18))
		nums[i+1] = fmt.Sprintf("%-5d", i)
	}
	cols[0] = nums
	cols[1] = nms

	for d := 0; d < n; d++ {
		col := make([]string, j.Len()+1)
		col[0] = fmt.Sprintf(" %-10s ", rtrunc(names[d], 10))
		for i, k := range j.Keys {
			r := j.Record(k, d)
			t := elapsed(r)
			s := "?"
			if c.Solved(t) {
				switch r.Result() {
				case classify.Sat:
					s = "s"
				case classify.Unsat:
					s = "u"
				}
			}
			col[i+1] = fmt.Sprintf(" %s % 8.2f ", s, c.Runtime(t))
		}
		cols[d+2] = col
	}
	rows := make([]string, j.Len()+1)
	for i := range rows {
		row := make([]string, n+2)
		for d := range row {
			row[d] = cols[d][i]
		}
		rows[i] = strings.Join(row, " | ")
	}
	return strings.Join(rows, "|\n") + "|\n"
}

func rtrunc(s string, n int) string {
	ct := utf8.RuneCountInString(s)
	j := 0
	for i := range s {
		if j >= ct-n {
			return s[i:]
		}
		j++
	}
	return s
}

// Size is the number of rows of the plots written by WriteGraphs.
const Size = 30

// WriteGraphs writes the cactus plot, a scatter plot for every pair of
// deployments, the summary and the listing of j to dir.
func WriteGraphs(dir, profile string, c *aggregate.Context, j *results.Joined, names []string, rc *aggregate.Recap) error {
	if e := os.MkdirAll(dir, 0755); e != nil {
		return e
	}
	files := map[string]string{
		"cactus.txt":  NewCactus(c, j, names).Utf8(Size),
		"summary.txt": Summary(profile, rc) + "\n",
		"listing.txt": Listing(c, j, names),
	}
	for a := 0; a < j.Deployments(); a++ {
		for b := a + 1; b < j.Deployments(); b++ {
			files[fmt.Sprintf("scatter_%d_%d.txt", a, b)] = NewScatter(c, j, names, a, b).Utf8(Size)
		}
	}
	for nm, s := range files {
		if e := os.WriteFile(filepath.Join(dir, nm), []byte(s), 0644); e != nil {
			return e
		}
	}
	return nil
}
