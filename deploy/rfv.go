// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package deploy

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/irifrance/hwbench/classify"
)

// Type RFV runs the pdr engine of the rust-formal-verification crate.
//
// Without Tuned the engine runs with its own defaults and every other
// option is ignored.
type RFV struct {
	Tuned   bool     `yaml:"tuned"`
	ER      bool     `yaml:"er"`
	ERFP    *bool    `yaml:"er_fp"`
	ERGen   *bool    `yaml:"er_gen"`
	ERImpl  *bool    `yaml:"er_impl"`
	LIC     bool     `yaml:"lic"`
	CTG     bool     `yaml:"ctg"`
	EVDelta *int     `yaml:"ev_delta"`
	Decay   *float64 `yaml:"decay"`
	Source  string   `yaml:"source"` // crate directory, defaults to /usr/src/pdrer_crate
	JSON    bool     `yaml:"json"`   // classify the embedded JSON statistics
}

var rfvMarkers = classify.Markers{
	Sat:   "Unsafe, Counter example found of depth",
	Unsat: "Safe, Proof found with"}

// RFV specific fields.
const (
	FieldAuxVars        = "AuxVars"
	FieldAndAuxVars     = "AndAuxVars"
	FieldXorAuxVars     = "XorAuxVars"
	FieldUsedAuxVars    = "UsedAuxVars"
	FieldUsedAndAuxVars = "UsedAndAuxVars"
	FieldUsedXorAuxVars = "UsedXorAuxVars"
	FieldTraceSizes     = "TraceSizes"
	FieldPOSizes        = "POSizes"
)

const (
	rfvDepthMark   = "| Depth "
	rfvUsedAuxMark = "Extension Variable used in the invariant"
)

// RFVFunctions lists the engine functions whose total runtime is
// tracked.
var RFVFunctions = sorted([]string{
	"add_clause_to_frame_at_least",
	"make_simplified_cube_non_initial",
	"no_predecessor_of_cube",
	"recursively_block_cube",
	"add_definition",
	"save_definition_in_bdd",
	"bdd_solve_implies",
	"bdd_solve_is_clause_a_contradiction",
	"clause_to_bdd",
	"clause_to_bdd_cached",
	"is_in_coi_of_some_ev",
	"get_cnf_of_frame",
	"call_condense",
	"condense_frames_by_defining_new_variables",
	"fix_redundancy",
	"perform_bva",
	"_generalize_using_definitions_relative_to_frame_new",
	"generalize",
	"generalize_relative_to_frame",
	"does_a_imply_b",
	"insert_clause_to_exact_frame",
	"insert_clause_to_highest_frame_possible",
	"make_delta_element",
	"mark_clause_added",
	"propagate",
	"propagate_blocked_cubes_in_range",
	"propagate_to_infinite_frame",
	"is_clause_satisfied_by_all_initial_states",
	"is_cube_initial",
	"call_propagate",
	"increase_pdr_depth",
	"perform_proof_iteration",
	"do_ternary_simulation_on_bad_cube_using_sat_solver",
	"do_ternary_simulation_on_predecessor_using_sat_solver",
	"extract_variables_from_solver",
	"get_bad_cube",
	"get_predecessor_of_cube",
	"is_clause_guaranteed_after_transition",
	"is_clause_guaranteed_after_transition_if_assumed",
	"solve_is_cube_blocked",
})

// RFVParameters lists the engine statistics tracked from its final
// statistics table.
var RFVParameters = sorted([]string{
	"Depth",
	"Total memory used (MB)",
	"Count UNSAT core on bad cube reduction",
	"Average UNSAT core on bad cube reduction",
	"Count UNSAT core on predecessor reduction",
	"Average UNSAT core on predecessor reduction",
	"Count UNSAT core when no predecessor reduction",
	"Average UNSAT core when no predecessor reduction",
	"Count generalization EV reduction",
	"Average generalization EV reduction",
	"Count generalization no EV reduction",
	"Average generalization no EV reduction",
	"Fractional Propagation Successful",
	"Fractional Propagation Unsuccessful",
	"Frame propagation skipped due to no changes",
	"Number of SAT calls",
	"Number of SAT calls (SAT)",
	"Number of SAT calls (UNSAT)",
	"Propagation Successful",
	"Propagation Unsuccessful",
	"Total Proof Obligations",
	"Violating State Developed",
	"does_a_imply_b COI subtraction",
	"does_a_imply_b d_lib empty",
	"does_a_imply_b neither clause contains EVs",
	"does_a_imply_b solved by subsumption (true)",
	"does_a_imply_b total calls",
	"solve_implies cache hit",
	"solve_implies solved with DDs.",
	"Proof obligations",
	"Trace Tree size",
	"Extension Variables",
	"Delta of Infinite Frame",
	"Total Clauses",
	"BVA count",
	"BVA unsuccessful, no matches",
	"BVA unsuccessful, insufficient matches",
})

func sorted(ss []string) []string {
	sort.Strings(ss)
	return ss
}

// RFVNumeric lists the numeric columns of RFV records for which
// averages are reported.
func RFVNumeric() []string {
	res := []string{FieldClauses, FieldVariables, FieldLiterals, classify.FieldTimeError,
		FieldDepth, FieldMemory, FieldAuxVars}
	res = append(res, RFVFunctions...)
	return append(res, RFVParameters...)
}

func (r RFV) Name() string {
	s := "rfv PDR"
	if !r.Tuned {
		return s + " Default"
	}
	if r.ER {
		s += " ER"
	}
	for _, opt := range []struct {
		tag string
		v   *bool
	}{{"F", r.ERFP}, {"G", r.ERGen}, {"I", r.ERImpl}} {
		if opt.v == nil {
			continue
		}
		if *opt.v {
			s += "+" + opt.tag
		} else {
			s += "-" + opt.tag
		}
	}
	if r.LIC {
		s += " LIC"
	}
	if r.EVDelta != nil {
		s += fmt.Sprintf(" EVD %d", *r.EVDelta)
	}
	if r.Decay != nil {
		s += " DECAY " + strconv.FormatFloat(*r.Decay, 'f', -1, 64)
	}
	if r.CTG {
		s += " CTG"
	}
	return s
}

func (r RFV) FetchCommand() string {
	src := r.Source
	if src == "" {
		src = "/usr/src/pdrer_crate"
	}
	return fmt.Sprintf("cp -r %s ./rust-formal-verification", src)
}

func (r RFV) CheckoutDir() string {
	return "rust-formal-verification"
}

func (r RFV) BuildCommand() string {
	return "RUSTFLAGS='-C target-feature=+crt-static' cargo build --release --example pdr_engine_for_hwmcc " +
		"--target x86_64-unknown-linux-gnu && " +
		"cp ./target/x86_64-unknown-linux-gnu/release/examples/pdr_engine_for_hwmcc ./pdr_engine_for_hwmcc && " +
		"cargo clean"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (r RFV) RunCommand(inst string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "./pdr_engine_for_hwmcc '%s' ", inst)
	b.WriteString(`--counterexample "" --certificate "" --verbose on --check-result on `)
	if !r.Tuned {
		return b.String()
	}
	fmt.Fprintf(&b, "--er %s ", onOff(r.ER))
	for _, opt := range []struct {
		flag string
		v    *bool
	}{{"er-fp", r.ERFP}, {"er-gen", r.ERGen}, {"er-impl", r.ERImpl}} {
		if opt.v != nil {
			fmt.Fprintf(&b, "--%s %s ", opt.flag, onOff(*opt.v))
		}
	}
	fmt.Fprintf(&b, "--lic %s ", onOff(r.LIC))
	fmt.Fprintf(&b, "--ctg %s ", onOff(r.CTG))
	if r.EVDelta != nil {
		fmt.Fprintf(&b, "--ev-delta %d ", *r.EVDelta)
	}
	if r.Decay != nil {
		fmt.Fprintf(&b, "--decay %s", strconv.FormatFloat(*r.Decay, 'f', -1, 64))
	}
	return b.String()
}

func (r RFV) Markers() classify.Markers {
	return rfvMarkers
}

func (r RFV) Parse(log string) (*classify.Record, error) {
	rec, e := classify.Head(log, rfvMarkers)
	if e != nil {
		return nil, e
	}
	rec.SetFloat(FieldClauses, classify.LastNumber(log, "Number of clauses in CNF = "))
	rec.SetFloat(FieldVariables, classify.LastNumber(log, "Number of variables in CNF = "))
	rec.SetFloat(FieldLiterals, classify.LastNumber(log, "Number of literals in CNF = "))
	rec.SetFloat(FieldMemory, classify.MaxRSS(log))
	inv := math.Inf(-1)
	if rec.Result() != classify.Sat {
		inv = classify.LastNumber(log, rfvMarkers.Unsat)
	}
	rec.SetFloat(FieldInvariantSize, inv)
	if r.JSON {
		rfvTagged(rec, log)
		return rec, nil
	}
	and, xor := rfvAux(log, "AND"), rfvAux(log, "XOR")
	rec.SetFloat(FieldAuxVars, and+xor)
	rec.SetFloat(FieldAndAuxVars, and)
	rec.SetFloat(FieldXorAuxVars, xor)
	used, usedAnd, usedXor := rfvUsedAux(log)
	rec.SetFloat(FieldUsedAuxVars, float64(used))
	rec.SetFloat(FieldUsedAndAuxVars, float64(usedAnd))
	rec.SetFloat(FieldUsedXorAuxVars, float64(usedXor))
	rec.Set(FieldTraceSizes, classify.Series(log, rfvDepthMark,
		classify.Probe{Label: "| Total Clauses ", Offset: 1, Default: math.Inf(1)}))
	rec.Set(FieldPOSizes, classify.Series(log, rfvDepthMark,
		classify.Probe{Label: "| Total Proof Obligations ", Offset: 1, Default: math.Inf(1)}))
	for _, fn := range RFVFunctions {
		rec.SetFloat(fn, classify.Probe{Label: "::" + fn + " ", Offset: 1}.After(log))
	}
	for _, p := range RFVParameters {
		padded := classify.Probe{Label: "| " + p + "  ", Offset: 1}.After(log)
		tight := classify.Probe{Label: "| " + p + " |"}.After(log)
		rec.SetFloat(p, padded+tight)
	}
	return rec, nil
}

func rfvAux(log, kind string) float64 {
	x := classify.Probe{Label: "| " + kind + " Extension Variables ", Offset: 1}.After(log)
	return math.Trunc(x)
}

func rfvUsedAux(log string) (all, and, xor int) {
	all = strings.Count(log, rfvUsedAuxMark)
	for _, ln := range strings.Split(log, "\n") {
		if !strings.Contains(ln, rfvUsedAuxMark) {
			continue
		}
		if strings.Contains(ln, "AND") {
			and++
		}
		if strings.Contains(ln, "XOR") {
			xor++
		}
	}
	return
}

// rfvTagged adds the statistics of the last PDRStats and TimeStats
// objects embedded in log.
func rfvTagged(rec *classify.Record, log string) {
	objs := classify.TaggedJSON(log)
	if st, ok := classify.LastTagged(objs, "PDRStats"); ok {
		for _, k := range keys(st) {
			if k == classify.TagKey {
				continue
			}
			rec.Set(k, jsonText(st[k]))
		}
	}
	if ts, ok := classify.LastTagged(objs, "TimeStats"); ok {
		for _, k := range keys(ts) {
			fs, isObj := ts[k].(map[string]any)
			if k == classify.TagKey || !isObj {
				continue
			}
			for _, stat := range []string{"Total", "Count", "Average", "Percentage"} {
				rec.Set(fmt.Sprintf("function %s %s", k, strings.ToLower(stat)), jsonText(fs[stat]))
			}
		}
	}
	if _, ok := rec.Get(FieldDepth); !ok {
		rec.Set(FieldDepth, "-1")
	}
}

func keys(m map[string]any) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

func jsonText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return classify.Format(x)
	case string:
		return x
	}
	return fmt.Sprint(v)
}
