// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/irifrance/hwbench/bench"
)

var execOpts struct {
	profile int
	index   int
	file    string
	workdir string
}

var execCmd = &cobra.Command{
	Use:    "exec",
	Short:  "run one job, used by run",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prof, e := loadProfile(execOpts.profile)
		if e != nil {
			return e
		}
		if execOpts.index < 0 || execOpts.index >= len(prof.Deployments) {
			return fmt.Errorf("profile %q has no deployment %d", prof.Name, execOpts.index)
		}
		mem, e := cfg.MemoryBytes()
		if e != nil {
			return e
		}
		d := prof.Deployments[execOpts.index]
		l := &bench.Layout{Root: execOpts.workdir}
		jr := &bench.JobRun{
			Dir:     filepath.Join(l.RepoDir(execOpts.index), d.CheckoutDir()),
			Inst:    execOpts.file,
			Cmd:     d.RunCommand(execOpts.file),
			Timeout: cfg.Timeout,
			Memory:  mem,
			Out:     os.Stdout}
		return jr.Do()
	},
}

func init() {
	f := execCmd.Flags()
	f.IntVar(&execOpts.profile, "profile", 0, "profile index")
	f.IntVar(&execOpts.index, "index", 0, "deployment index in the profile")
	f.StringVar(&execOpts.file, "file", "", "instance path")
	f.StringVar(&execOpts.workdir, "workdir", "", "work directory")
	execCmd.MarkFlagRequired("file")
	execCmd.MarkFlagRequired("workdir")
}
