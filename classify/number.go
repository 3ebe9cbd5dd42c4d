// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package classify

import (
	"math"
	"strconv"
	"strings"
)

// Type Probe describes a number a tool reports next to a literal label.
// Only the last occurrence of Label counts.
type Probe struct {
	Label   string
	Offset  int     // index of the whitespace separated token after (or before) Label
	Default float64 // value when Label is missing or the token is not a number
	Comma   bool    // trim commas around the token
}

// After returns the number found Offset tokens after the last
// occurrence of p.Label in log.
func (p Probe) After(log string) float64 {
	i := strings.LastIndex(log, p.Label)
	if i == -1 {
		return p.Default
	}
	toks := strings.Fields(log[i+len(p.Label):])
	if p.Offset < 0 || p.Offset >= len(toks) {
		return p.Default
	}
	return p.parse(toks[p.Offset])
}

// Before returns the number found before the last occurrence of
// p.Label in log.  Offset counts back from the label, -1 being the
// token just before it.
func (p Probe) Before(log string) float64 {
	i := strings.LastIndex(log, p.Label)
	if i == -1 {
		return p.Default
	}
	toks := strings.Fields(log[:i])
	j := len(toks) + p.Offset
	if p.Offset >= 0 || j < 0 {
		return p.Default
	}
	return p.parse(toks[j])
}

func (p Probe) parse(tok string) float64 {
	if p.Comma {
		tok = strings.Trim(tok, ",")
	}
	x, e := strconv.ParseFloat(tok, 64)
	if e != nil {
		return p.Default
	}
	return x
}

// LastNumber returns the number right after the last occurrence of
// label in log, or +Inf if there is none.
func LastNumber(log, label string) float64 {
	return Probe{Label: label, Default: math.Inf(1)}.After(log)
}

// NumberBefore returns the number right before the last occurrence of
// label in log, or +Inf if there is none.
func NumberBefore(log, label string) float64 {
	return Probe{Label: label, Offset: -1, Default: math.Inf(1)}.Before(log)
}

// Series splits log at every occurrence of sep and applies p to each
// segment.  The values are joined with "_", non finite values being
// written "inf".
func Series(log, sep string, p Probe) string {
	segs := strings.Split(log, sep)
	parts := make([]string, len(segs))
	for i, seg := range segs {
		x := p.After(seg)
		if math.IsInf(x, 0) || math.IsNaN(x) {
			parts[i] = "inf"
			continue
		}
		parts[i] = strconv.FormatInt(int64(x), 10)
	}
	return strings.Join(parts, "_")
}

// Format gives the text form of x used in records: the shortest
// decimal which parses back to x, or "inf", "-inf", "nan".
func Format(x float64) string {
	switch {
	case math.IsInf(x, 1):
		return "inf"
	case math.IsInf(x, -1):
		return "-inf"
	case math.IsNaN(x):
		return "nan"
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// Parse reads a record value as a number.  Values which are not
// numbers, such as error tags, yield def.
func Parse(s string, def float64) float64 {
	x, e := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if e != nil {
		return def
	}
	return x
}
