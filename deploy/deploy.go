// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package deploy describes the solver configurations raced by hwbench.
//
// A Deployment is one configured build and invocation of an external
// model checker.  Deployments of one tool family share the markers and
// the telemetry their logs are classified with.
package deploy

import (
	"strings"

	"github.com/irifrance/hwbench/classify"
)

// Type Deployment is one arm of a benchmark comparison.  Implementations
// are immutable values.
type Deployment interface {
	// Name is the configuration descriptor, e.g. "ABC VRN".
	Name() string
	// FetchCommand obtains the tool sources in the current directory.
	FetchCommand() string
	// CheckoutDir is the checkout root relative to the fetch directory.
	CheckoutDir() string
	// BuildCommand builds the tool inside CheckoutDir.
	BuildCommand() string
	// RunCommand runs the tool on instance inst from CheckoutDir.
	RunCommand(inst string) string
	// Markers gives the SAT and UNSAT markers of the tool.
	Markers() classify.Markers
	// Parse classifies one captured log.
	Parse(log string) (*classify.Record, error)
}

// Slug gives the file system friendly name of d, used to name its
// job artifacts.
func Slug(d Deployment) string {
	return strings.Replace(strings.ToLower(d.Name()), " ", "_", -1)
}

// Same reports whether a and b fetch and build the same tree.
func Same(a, b Deployment) bool {
	return a.FetchCommand() == b.FetchCommand() &&
		a.CheckoutDir() == b.CheckoutDir() &&
		a.BuildCommand() == b.BuildCommand()
}

// Fields of the telemetry shared by the families.
const (
	FieldClauses       = "Clauses"
	FieldVariables     = "Variables"
	FieldLiterals      = "Literals"
	FieldMemory        = "Memory (kB)"
	FieldDepth         = "Depth"
	FieldInvariantSize = "InvariantSize"
)
