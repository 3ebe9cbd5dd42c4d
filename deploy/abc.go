// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package deploy

import (
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"
	"unicode"

	"github.com/irifrance/hwbench/classify"
)

// Type ABC runs the pdr engine of berkeley-abc.
type ABC struct {
	R bool `yaml:"r"` // pdr -r
	N bool `yaml:"n"` // pdr -n
	C bool `yaml:"c"` // pdr -c
	Q bool `yaml:"q"` // pdr -q
}

var abcMarkers = classify.Markers{
	Sat:   "was asserted in frame",
	Unsat: "Property proved"}

// FieldMemoryKB is the memory column of ABC records.
const FieldMemoryKB = "MemoryKB"

func (a ABC) pdr() string {
	s := "pdr -v"
	if a.R {
		s += " -r"
	}
	if a.N {
		s += " -n"
	}
	if a.C {
		s += " -c"
	}
	if a.Q {
		s += " -q"
	}
	return s
}

func (a ABC) Name() string {
	s := strings.Replace(a.pdr(), " -", "", -1)
	return "ABC " + strings.ToUpper(s[3:])
}

func (a ABC) FetchCommand() string {
	return "git clone --depth 1 https://github.com/berkeley-abc/abc.git"
}

func (a ABC) CheckoutDir() string {
	return "abc"
}

func (a ABC) BuildCommand() string {
	return fmt.Sprintf("make ABC_USE_NO_READLINE=1 -j%d", runtime.NumCPU())
}

func (a ABC) RunCommand(inst string) string {
	return fmt.Sprintf(`./abc -c "&read "%s" ; &put; write_cnf /dev/null ; %s"`, inst, a.pdr())
}

func (a ABC) Markers() classify.Markers {
	return abcMarkers
}

func (a ABC) Parse(log string) (*classify.Record, error) {
	r, e := classify.Head(log, abcMarkers)
	if e != nil {
		return nil, e
	}
	r.SetFloat(FieldClauses, classify.LastNumber(log, ". Clauses ="))
	r.SetFloat(FieldVariables, classify.LastNumber(log, "CNF stats: Vars ="))
	r.SetFloat(FieldLiterals, classify.LastNumber(log, ". Literals ="))
	r.SetFloat(FieldMemoryKB, classify.MaxRSS(log))
	r.Set(FieldDepth, strconv.Itoa(abcDepth(log)))
	inv := math.Inf(-1)
	if r.Result() != classify.Sat {
		inv = classify.LastNumber(log, "Verification of invariant with")
	}
	r.SetFloat(FieldInvariantSize, inv)
	return r, nil
}

// abcDepth finds the last pdr progress line, which starts with the
// frame number followed by a colon.
func abcDepth(log string) int {
	lines := strings.Split(log, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		parts := strings.SplitN(lines[i], ":", 2)
		if len(parts) == 1 {
			continue
		}
		toks := strings.Fields(parts[0])
		if len(toks) == 0 || !unicode.IsDigit(rune(toks[0][0])) {
			continue
		}
		d, e := strconv.Atoi(toks[0])
		if e != nil {
			continue
		}
		return d
	}
	return -1
}
