// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package classify turns the captured output of one solver job into a
// record of text fields.
//
// Package classify addresses the needs of log classification by:
//
// 1. deciding the outcome of a job (SAT, UNSAT or unknown) from the
// markers a tool prints.
//
// 2. deciding the elapsed time or the error tag of a job from the
// messages of the resource wrappers around it.
//
// 3. extracting numeric telemetry from free form text by label.
//
// Classification is a pure function of one log.
package classify
