// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package classify

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Field names every classified record carries.
const (
	FieldTimeError = "TimeError"
	FieldResult    = "Result"
)

// Result values.
const (
	Sat     = "SAT"
	Unsat   = "UNSAT"
	Unknown = ""
)

// TimeError tags.  Any other TimeError value is an elapsed time
// in seconds.
const (
	MemoryError      = "MEMORY ERROR"
	ForeignException = "C++ EXCEPTION IN RUST PROGRAM"
	TimeoutWrapper   = "TIMEOUT BY /usr/bin/timeout"
	TimeoutScheduler = "TIMEOUT BY SLURM"
	Error            = "ERROR"
)

// ErrBothMarkers is returned when a log carries both the SAT and the
// UNSAT marker of its tool.  It is an invariant violation and stops
// the analysis.
var ErrBothMarkers = errors.New("log deemed SAT and UNSAT at the same time")

// Signatures of the wrappers and of the runtime around a job.
const (
	userTimeLabel  = "User time (seconds):"
	maxRSSLabel    = "Maximum resident set size (kbytes):"
	wrapperTimeout = "Command exited with non-zero status 124"
	slurmTimeout   = "DUE TO TIME LIMIT ***"
)

type fatalSig struct {
	all []string
	tag string
}

var fatalSigs = []fatalSig{
	{all: []string{"memory allocation of", "bytes failed"}, tag: MemoryError},
	{all: []string{"terminate called after throwing an instance of 'std::bad_alloc'"}, tag: MemoryError},
	{all: []string{"Some of your processes may have been killed by the cgroup out-of-memory handler"}, tag: MemoryError},
	{all: []string{"fatal runtime error: Rust cannot catch foreign exceptions"}, tag: ForeignException},
}

// Type Markers gives the decisive strings a tool prints when it has
// found a counterexample (Sat) or a proof (Unsat).
type Markers struct {
	Sat   string
	Unsat string
}

func (m Markers) any(log string) bool {
	return strings.Contains(log, m.Sat) || strings.Contains(log, m.Unsat)
}

// Result decides the outcome of the job which produced log.  It returns
// Sat or Unsat if exactly one marker is present, Unknown if none are
// and ErrBothMarkers if both are.
func Result(log string, m Markers) (string, error) {
	sat := strings.Contains(log, m.Sat)
	unsat := strings.Contains(log, m.Unsat)
	switch {
	case sat && unsat:
		return Unknown, fmt.Errorf("%w: %q and %q", ErrBothMarkers, m.Sat, m.Unsat)
	case sat:
		return Sat, nil
	case unsat:
		return Unsat, nil
	}
	return Unknown, nil
}

// Fatal returns the tag of the first fatal runtime signature found in
// log, or "" if there is none.
func Fatal(log string) string {
	for _, sig := range fatalSigs {
		hit := true
		for _, s := range sig.all {
			if !strings.Contains(log, s) {
				hit = false
				break
			}
		}
		if hit {
			return sig.tag
		}
	}
	return ""
}

// generic reports whether log mentions a panic or a failure anywhere,
// in any case.
func generic(log string) bool {
	lower := strings.ToLower(log)
	return strings.Contains(lower, "panic") || strings.Contains(lower, "failed")
}

// TimeError decides the TimeError field of log.  The first matching
// rule wins:
//
//	fatal runtime signature         tag of the signature
//	timeout wrapper exit 124        TimeoutWrapper
//	scheduler time limit kill       TimeoutScheduler
//	no marker of m                  Error
//	"panic" or "failed", any case   Error
//	otherwise                       reported user time in seconds
//
// A fatal signature masks a marker which Result still reports.
func TimeError(log string, m Markers) string {
	if tag := Fatal(log); tag != "" {
		return tag
	}
	if strings.Contains(log, wrapperTimeout) {
		return TimeoutWrapper
	}
	if strings.Contains(log, slurmTimeout) {
		return TimeoutScheduler
	}
	if !m.any(log) {
		return Error
	}
	if generic(log) {
		return Error
	}
	t := LastNumber(log, userTimeLabel)
	if math.IsInf(t, 0) || math.IsNaN(t) {
		return Error
	}
	return Format(t)
}

// MaxRSS returns the maximum resident set size in kB reported by
// /usr/bin/time -v, or +Inf.
func MaxRSS(log string) float64 {
	return LastNumber(log, maxRSSLabel)
}

// Head creates the record every tool family starts from: TimeError
// followed by Result.
func Head(log string, m Markers) (*Record, error) {
	res, e := Result(log, m)
	if e != nil {
		return nil, e
	}
	r := NewRecord()
	r.Set(FieldTimeError, TimeError(log, m))
	r.Set(FieldResult, res)
	return r, nil
}

// Solved reports whether res is a decisive result.
func Solved(res string) bool {
	return res == Sat || res == Unsat
}

const instanceLabel = "--- AIG file name = "

// InstanceName returns the instance name announced by the job wrapper
// in log, without directory and .aig extension.  It returns "" if the
// wrapper line is missing.
func InstanceName(log string) string {
	for _, ln := range strings.Split(log, "\n") {
		i := strings.Index(ln, instanceLabel)
		if i == -1 {
			continue
		}
		p := ln[i+len(instanceLabel):]
		if j := strings.LastIndex(p, "/"); j != -1 {
			p = p[j+1:]
		}
		p = strings.Replace(p, ".aig", "", -1)
		return strings.Replace(p, " ", "", -1)
	}
	return ""
}
