// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package deploy

import (
	"fmt"
	"math"
	"strings"

	"github.com/irifrance/hwbench/classify"
)

// Type RIC3 runs the rIC3 model checker.
type RIC3 struct {
	Engine  string `yaml:"engine"`   // defaults to ic3
	Inn     bool   `yaml:"inn"`      // --ic3-inn
	CTG     bool   `yaml:"ctg"`      // --ic3-ctg
	CTP     bool   `yaml:"ctp"`      // --ic3-ctp
	Dynamic bool   `yaml:"dynamic"`  // --ic3-dynamic
	ABCSimp bool   `yaml:"abc_simp"` // keep abc preprocessing
	NoCNF   bool   `yaml:"no_cnf"`   // --no-cnf
	Repo    string `yaml:"repo"`     // github owner, defaults to gipsyh
}

var ric3Markers = classify.Markers{
	Sat:   "result: unsafe",
	Unsat: "result: safe"}

func (r RIC3) engine() string {
	if r.Engine == "" {
		return "ic3"
	}
	return r.Engine
}

func (r RIC3) repo() string {
	if r.Repo == "" {
		return "gipsyh"
	}
	return r.Repo
}

func (r RIC3) args() string {
	s := fmt.Sprintf("-e %s -v 2", r.engine())
	if r.Inn {
		s += " --ic3-inn"
	}
	if r.CTG {
		s += " --ic3-ctg"
	}
	if r.CTP {
		s += " --ic3-ctp"
	}
	if r.Dynamic {
		s += " --ic3-dynamic"
	}
	if r.NoCNF {
		s += " --no-cnf"
	}
	if !r.ABCSimp {
		s += " --no-abc"
	}
	return s
}

var ric3Abbrev = strings.NewReplacer(
	"--no-abc", "NAS",
	"--no-cnf", "NCS",
	"--ic3-dynamic", "DYN",
	"--ic3-", "",
	" -v 2", "")

func (r RIC3) Name() string {
	s := ric3Abbrev.Replace(r.args()[3:])
	return fmt.Sprintf("rIC3 (%s) %s", r.repo(), strings.ToUpper(s))
}

func (r RIC3) FetchCommand() string {
	return fmt.Sprintf("git clone --recurse-submodules --depth 1 https://github.com/%s/rIC3.git", r.repo())
}

func (r RIC3) CheckoutDir() string {
	return "rIC3"
}

func (r RIC3) BuildCommand() string {
	return "cargo +nightly build --release && mv ./target/release/rIC3 ./rIC3 && cargo +nightly clean"
}

func (r RIC3) RunCommand(inst string) string {
	return fmt.Sprintf("./rIC3 %s %s", inst, r.args())
}

func (r RIC3) Markers() classify.Markers {
	return ric3Markers
}

func (r RIC3) Parse(log string) (*classify.Record, error) {
	rec, e := classify.Head(log, ric3Markers)
	if e != nil {
		return nil, e
	}
	depth := classify.Probe{Label: "frame:", Comma: true}.After(log)
	rec.SetFloat(FieldDepth, depth)
	switch rec.Result() {
	case classify.Unsat:
		rec.Set(FieldInvariantSize, ric3Invariant(log))
	case classify.Sat:
		rec.SetFloat(FieldInvariantSize, math.Inf(-1))
	default:
		rec.SetFloat(FieldInvariantSize, math.Inf(1))
	}
	rec.SetFloat(FieldMemory, classify.MaxRSS(log))
	return rec, nil
}

// ric3Invariant reads the size of the inductive frame from the frame
// listing printed right before the solver statistics, where the value
// following the first 0 is the invariant.
func ric3Invariant(log string) string {
	lines := strings.Split(log, "\n")
	for i, ln := range lines {
		if strings.TrimSpace(ln) != "SolverStatistic {" || i == 0 {
			continue
		}
		toks := strings.Fields(lines[i-1])
		for j, tok := range toks {
			if tok == "0" && j+1 < len(toks) {
				return toks[j+1]
			}
		}
		break
	}
	return "inf"
}
