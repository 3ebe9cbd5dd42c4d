// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/irifrance/hwbench/bench"
	"github.com/irifrance/hwbench/deploy"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "list the deployment profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ps, e := deploy.LoadProfiles(cfg.Profiles)
		if e != nil {
			return e
		}
		listProfiles(os.Stdout, ps)
		return nil
	},
}

func listProfiles(w io.Writer, ps []*deploy.Profile) {
	for i, p := range ps {
		fmt.Fprintf(w, "%3d  %s\n", i, p.Name)
		for j, d := range p.Deployments {
			fmt.Fprintf(w, "       %d: %s\n", j, d.Name())
		}
	}
}

var suiteOpts struct {
	list bool
}

var suiteCmd = &cobra.Command{
	Use:   "suite",
	Short: "list the instances of the suite",
	Long: `suite lists the instances selected by --suite and --tests with their
AIGER dimensions, or with --list the suites of the repository.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if suiteOpts.list {
			ss, e := bench.Suites(cfg.Repo)
			if e != nil {
				return e
			}
			fmt.Println(strings.Join(ss, "\n"))
			return nil
		}
		insts, e := bench.FindInstances(cfg.Repo, cfg.Suite, splitTests(cfg.Tests))
		if e != nil {
			return e
		}
		return listInstances(os.Stdout, insts)
	},
}

func init() {
	suiteCmd.Flags().BoolVar(&suiteOpts.list, "list", false, "list suites instead of instances")
}

func listInstances(w io.Writer, insts []string) error {
	fmt.Fprintf(w, "%-5s %-40s %8s %8s %8s %8s %10s\n", "id", "instance", "inputs", "latches", "outputs", "bad", "size")
	for i, p := range insts {
		st, e := os.Stat(p)
		if e != nil {
			return e
		}
		size := humanize.Bytes(uint64(st.Size()))
		info, e := bench.Inspect(p)
		if e != nil {
			fmt.Fprintf(w, "%-5d %-40s %8s %8s %8s %8s %10s\n", i, filepath.Base(p), "?", "?", "?", "?", size)
			continue
		}
		fmt.Fprintf(w, "%-5d %-40s %8d %8d %8d %8d %10s\n", i, filepath.Base(p),
			info.Inputs, info.Latches, info.Outputs, info.Bad, size)
	}
	return nil
}
