// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/irifrance/hwbench/internal/config"
	"github.com/irifrance/hwbench/internal/logging"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "hwbench",
	Short: "hwbench races hardware model checkers on AIGER benchmarks",
	Long: `hwbench builds several configurations of hardware model checkers,
runs each of them on every instance of an AIGER benchmark suite, locally
or on a Slurm cluster, and compares the outcomes.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "configuration file")
	pf.String("repo", "", "benchmark repository root")
	pf.String("suite", "", "suite directory under the repository")
	pf.StringSlice("tests", nil, "instance path substrings, aig selects all")
	pf.Int("timeout", 0, "per job timeout in seconds")
	pf.String("memory", "", "per job memory ceiling, e.g. 20GiB, 0 for none")
	pf.String("mode", "", "local or cluster")
	pf.Int("threads", 0, "concurrent local jobs")
	pf.String("partition", "", "cluster partition")
	pf.Float64("slack", 0, "seconds past the timeout still taken as finished")
	pf.Float64("near-limit", 0, "seconds below the timeout not taken as solved")
	pf.String("profiles", "", "additional profile file")
	pf.String("log-level", "", "debug, info, warn or error")
	pf.Bool("no-metrics", false, "do not write metrics")
	pf.Bool("no-sqlite", false, "do not export results to sqlite")

	rootCmd.AddCommand(runCmd, execCmd, analyzeCmd, buildCmd, mergeCmd, profilesCmd, suiteCmd)
}

// overrides applies the flags set on cmd's command line to c.
func overrides(cmd *cobra.Command, c *config.Config) {
	fs := cmd.Flags()
	str := func(name string, p *string) {
		if fs.Changed(name) {
			*p, _ = fs.GetString(name)
		}
	}
	num := func(name string, p *int) {
		if fs.Changed(name) {
			*p, _ = fs.GetInt(name)
		}
	}
	float := func(name string, p *float64) {
		if fs.Changed(name) {
			*p, _ = fs.GetFloat64(name)
		}
	}
	not := func(name string, p *bool) {
		if fs.Changed(name) {
			v, _ := fs.GetBool(name)
			*p = !v
		}
	}
	str("repo", &c.Repo)
	str("suite", &c.Suite)
	str("memory", &c.Memory)
	str("mode", &c.Mode)
	str("partition", &c.Partition)
	str("profiles", &c.Profiles)
	str("log-level", &c.Log.Level)
	num("timeout", &c.Timeout)
	num("threads", &c.Threads)
	float("slack", &c.Slack)
	float("near-limit", &c.NearLimit)
	not("no-metrics", &c.Metrics)
	not("no-sqlite", &c.SQLite)
	if fs.Changed("tests") {
		tests, _ := fs.GetStringSlice("tests")
		c.Tests = joinTests(tests)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	c, e := config.Load(cfgFile)
	if e != nil {
		return e
	}
	overrides(cmd, c)
	if e := c.Validate(); e != nil {
		return e
	}
	cfg = c
	// the job wrapper writes into the job artifact
	if cmd.Name() == "exec" {
		logger = zap.NewNop()
		return nil
	}
	logger, e = logging.New(c.Log)
	return e
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	e := rootCmd.ExecuteContext(ctx)
	stop()
	if e != nil {
		fmt.Fprintf(os.Stderr, "hwbench: %s\n", e)
		os.Exit(1)
	}
}
