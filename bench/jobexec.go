// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package bench

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/dustin/go-humanize"
)

// Type JobRun is one job as seen from inside the job process: the run
// command of a deployment on one instance, wrapped with a timeout and
// an address space ceiling.
type JobRun struct {
	Dir     string                               // checkout directory of the deployment
	Inst    string                               // instance path
	Cmd     string                               // run command of the deployment on Inst
	Timeout int                                  // seconds
	Memory  uint64                               // address space ceiling in bytes, 0 for none
	Wrap    func(timeout int, cmd string) string // nil for Wrap
	Out     io.Writer                            // merged output of the job

	Start time.Time
	Dur   time.Duration
	UDur  time.Duration
	SDur  time.Duration
	Error string
}

// Wrap wraps cmd with /usr/bin/time -v, which reports the user time
// and peak memory, and /usr/bin/timeout, which kills cmd after timeout
// seconds with status 124.
func Wrap(timeout int, cmd string) string {
	return fmt.Sprintf("/usr/bin/time -v /usr/bin/timeout %d %s", timeout, cmd)
}

// Command gives the shell command jr runs.
func (jr *JobRun) Command() string {
	if jr.Wrap != nil {
		return jr.Wrap(jr.Timeout, jr.Cmd)
	}
	return Wrap(jr.Timeout, jr.Cmd)
}

// Do runs the job.  The memory ceiling applies to the calling process,
// and so to everything it starts afterwards.  The exit status of the
// command is not interpreted; Do only fails if the command cannot be
// started.
func (jr *JobRun) Do() error {
	fmt.Fprintf(jr.Out, "--- AIG file name = %s\n", jr.Inst)
	if st, e := os.Stat(jr.Dir); e != nil || !st.IsDir() {
		return fmt.Errorf("no checkout at %s", jr.Dir)
	}
	if jr.Memory != 0 {
		if e := setMemoryLimit(jr.Memory); e != nil {
			return fmt.Errorf("setting memory limit %s: %w", humanize.IBytes(jr.Memory), e)
		}
	}
	cmdLine := jr.Command()
	fmt.Fprintf(jr.Out, "--- RUNNING %s\n", cmdLine)
	cmd := exec.Command("sh", "-c", cmdLine)
	cmd.Dir = jr.Dir
	cmd.Stdout = jr.Out
	cmd.Stderr = jr.Out
	jr.Start = time.Now()
	if e := cmd.Start(); e != nil {
		jr.Error = e.Error()
		return e
	}
	if e := cmd.Wait(); e != nil {
		jr.Error = e.Error()
	}
	jr.Dur = time.Since(jr.Start)
	jr.UDur = cmd.ProcessState.UserTime()
	jr.SDur = cmd.ProcessState.SystemTime()
	fmt.Fprintf(jr.Out, "DONE, OVERALL TOTAL TIME =  %f\n", jr.Dur.Seconds())
	return nil
}
