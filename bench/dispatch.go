// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrDispatch is returned when jobs cannot be started or submitted.  It
// aborts the run; the outcome of a started job never does.
var ErrDispatch = errors.New("dispatch failure")

// Type Dispatcher executes planned jobs.
type Dispatcher interface {
	Dispatch(ctx context.Context, jobs []*Job) error
}

// Argv gives the command line of the job wrapper for a job.
type Argv func(j *Job) []string

// ExecArgv returns the Argv re-executing the binary self as the job
// wrapper of profile index profile in work directory l.  profiles, if
// not empty, is the profile file the index refers to.
func ExecArgv(self string, profile int, profiles string, l *Layout) Argv {
	return func(j *Job) []string {
		res := []string{self, "exec",
			"--profile", strconv.Itoa(profile),
			"--index", strconv.Itoa(j.Deployment),
			"--file", j.Path,
			"--timeout", strconv.Itoa(j.Timeout),
			"--memory", strconv.FormatUint(j.Memory, 10),
			"--workdir", l.Root}
		if profiles != "" {
			res = append(res, "--profiles", profiles)
		}
		return res
	}
}

// Type Launcher runs one job to completion.
type Launcher interface {
	Launch(j *Job) error
}

// Type ExecLauncher runs the command line given by Argv with its merged
// output redirected to the job artifact.
type ExecLauncher struct {
	Argv Argv
}

// Launch runs j.  The exit status of the job is not interpreted;
// only failing to open the artifact or to start the process is an
// error.
func (x *ExecLauncher) Launch(j *Job) error {
	argv := x.Argv(j)
	f, e := os.OpenFile(j.Artifact, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if e != nil {
		return fmt.Errorf("%w: opening artifact: %w", ErrDispatch, e)
	}
	defer f.Close()
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = f
	cmd.Stderr = f
	if e := cmd.Start(); e != nil {
		return fmt.Errorf("%w: starting job %s: %w", ErrDispatch, j.Name(), e)
	}
	cmd.Wait()
	return nil
}

func makeOutputDirs(jobs []*Job) error {
	made := make(map[string]bool)
	for _, j := range jobs {
		d := filepath.Dir(j.Artifact)
		if made[d] {
			continue
		}
		if e := os.MkdirAll(d, 0755); e != nil {
			return fmt.Errorf("%w: %w", ErrDispatch, e)
		}
		made[d] = true
	}
	return nil
}

// Type Local runs jobs on this machine with at most Threads jobs at a
// time, in no particular order.
type Local struct {
	Threads  int
	Launcher Launcher
	Log      *zap.Logger
	OnDone   func(j *Job, d time.Duration) // called after each job, if not nil
}

// Dispatch runs every job exactly once.  After a dispatch failure no
// further job starts; running jobs complete.
func (l *Local) Dispatch(ctx context.Context, jobs []*Job) error {
	if e := makeOutputDirs(jobs); e != nil {
		return e
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, l.Threads))
	for i, j := range jobs {
		if gctx.Err() != nil {
			break
		}
		i, j := i, j
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			l.Log.Info("running job",
				zap.Int("i", i),
				zap.String("job", j.Name()),
				zap.String("instance", j.Path),
				zap.String("deployment", j.Deploy.Name()))
			start := time.Now()
			if e := l.Launcher.Launch(j); e != nil {
				return e
			}
			if l.OnDone != nil {
				l.OnDone(j, time.Since(start))
			}
			return nil
		})
	}
	if e := g.Wait(); e != nil {
		return e
	}
	return ctx.Err()
}

// Type Submitter hands a job to the cluster scheduler.
type Submitter interface {
	Submit(ctx context.Context, args []string) error
}

// Type Sbatch submits with the sbatch command, copying its output to
// Out if not nil.
type Sbatch struct {
	Out io.Writer
}

func (s Sbatch) Submit(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "sbatch", args...)
	cmd.Stdout = s.Out
	cmd.Stderr = s.Out
	return cmd.Run()
}

// Type Cluster submits every job to a Slurm partition.  Submission is
// fire and forget: the scheduler owns admission, and a job it loses
// shows up as a missing record in the analysis.
type Cluster struct {
	Partition string
	Argv      Argv
	Submitter Submitter
	Log       *zap.Logger
	OnSubmit  func(j *Job) // called after each submission, if not nil
}

// Args gives the sbatch arguments of j.
func (c *Cluster) Args(j *Job) []string {
	return []string{
		"-p", c.Partition,
		"--cpus-per-task=1",
		fmt.Sprintf("--time=%d", BudgetMinutes(j.Timeout)),
		"-J", j.Name(),
		"--output=" + j.Artifact,
		"--wrap=" + ShellJoin(c.Argv(j))}
}

// Dispatch submits every job, stopping at the first failure.
func (c *Cluster) Dispatch(ctx context.Context, jobs []*Job) error {
	if e := makeOutputDirs(jobs); e != nil {
		return e
	}
	for _, j := range jobs {
		if e := ctx.Err(); e != nil {
			return e
		}
		if e := c.Submitter.Submit(ctx, c.Args(j)); e != nil {
			return fmt.Errorf("%w: submitting job %s: %w", ErrDispatch, j.Name(), e)
		}
		c.Log.Debug("submitted job", zap.String("job", j.Name()), zap.String("artifact", j.Artifact))
		if c.OnSubmit != nil {
			c.OnSubmit(j)
		}
	}
	return nil
}

// BudgetMinutes gives the scheduler time budget of a job with timeout
// seconds: the timeout plus a minute, plus ten percent, rounded up.
func BudgetMinutes(timeout int) int {
	return int(math.Ceil((float64(timeout)/60 + 1) * 1.1))
}

// ClusterWait gives how long the analysis waits for the cluster jobs
// of a run with timeout seconds to finish.
func ClusterWait(timeout int) time.Duration {
	return time.Duration((float64(timeout)*1.1 + 60) * float64(time.Second))
}

func shellSafe(r rune) bool {
	switch {
	case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
		return true
	}
	return strings.ContainsRune("-_./=:,+@%", r)
}

// ShellJoin joins argv into a command line for sh, quoting words which
// need it.
func ShellJoin(argv []string) string {
	words := make([]string, len(argv))
	for i, a := range argv {
		if a != "" && strings.IndexFunc(a, func(r rune) bool { return !shellSafe(r) }) == -1 {
			words[i] = a
			continue
		}
		words[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
	}
	return strings.Join(words, " ")
}
