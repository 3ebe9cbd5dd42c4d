// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Command hwbench races hardware model checkers on AIGER benchmarks.
//
//	⎣ ⇨ hwbench
//	hwbench <cmd> [options]
//	<cmd> may be
//		run
//		analyze
//		build
//		merge
//		profiles
//		suite
//	For help with a command, run hwbench <cmd> -h.
//
//	⎣ ⇨ hwbench run -h
//	run --profile N
//		builds, dispatches and analyzes a benchmark run in a fresh
//		work directory.
//	  --profile int
//	    	profile index, see hwbench profiles
//	  --seed int
//	    	instance shuffle seed, 0 for the clock
//	  --no-build
//	    	skip fetching and building
//
//	⎣ ⇨ hwbench analyze -h
//	analyze --workdir W
//		classifies the job logs of a run and reports.
//	  --wait duration
//	    	wait this long before reading the logs
//	  --workdir string
//	    	work directory, a name under the repository or a path
//
//	⎣ ⇨ hwbench merge -h
//	merge --out DIR workdir workdir [workdir ...]
//		merges the analyzed results of several runs of a profile.
//
// Every command takes the global options
//
//	  --config string       configuration file
//	  --repo string         benchmark repository root
//	  --suite string        suite directory under the repository
//	  --tests strings       instance path substrings, aig selects all
//	  --timeout int         per job timeout in seconds
//	  --memory string       per job memory ceiling, e.g. 20GiB, 0 for none
//	  --mode string         local or cluster
//	  --threads int         concurrent local jobs
//	  --partition string    cluster partition
//	  --slack float         seconds past the timeout still taken as finished
//	  --near-limit float    seconds below the timeout not taken as solved
//	  --profiles string     additional profile file
//	  --log-level string    debug, info, warn or error
//	  --no-metrics          do not write metrics
//	  --no-sqlite           do not export results to sqlite
//
// which override the configuration file.
package main
