// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package bench plans and dispatches benchmark jobs.
//
// Package bench addresses the needs of racing solver deployments by:
//
// 1. providing a work directory format for a benchmark run.  The format is
// command line friendly for unix commands.
//
// 2. selecting and fingerprinting the AIGER instances of a suite.
//
// 3. fetching and building each deployment in its own tree.
//
// 4. planning one job for every pair of deployment and instance, and
// dispatching the jobs to a local worker pool or to a Slurm cluster.
//
// 5. wrapping each job with a wall clock timeout and an address space
// ceiling, capturing its output in an artifact.
package bench
