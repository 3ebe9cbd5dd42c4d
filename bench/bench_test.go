// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package bench

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/irifrance/hwbench/deploy"
)

const exampleAag = `aag 4 1 1 2 1 0 0 0 0
2
4 6 0
4
5
6 2 4
c
aiger file version 1.9 created by gini
`

func touch(t *testing.T, p, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
}

func TestWorkDir(t *testing.T) {
	repo := t.TempDir()
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	l, e := NewWorkDir(repo, now)
	require.NoError(t, e)
	assert.Equal(t, filepath.Join(repo, WorkDirs, "2024_03_09_14_05_07"), l.Root)
	assert.Equal(t, "2024_03_09_14_05_07", l.Name())
	_, e = NewWorkDir(repo, now)
	assert.Error(t, e)

	o, e := OpenWorkDir(repo, l.Name())
	require.NoError(t, e)
	assert.Equal(t, l.Root, o.Root)
	_, e = OpenWorkDir(repo, "nope")
	assert.Error(t, e)

	assert.Equal(t, filepath.Join(l.Root, "outputs", "deployment_1", "abc_v_3_mul7.aig.out.txt"),
		l.Artifact(1, "abc_v", 3, "mul7.aig"))
	assert.Equal(t, filepath.Join(l.Root, "repos", "deployment_2"), l.RepoDir(2))
	assert.Equal(t, filepath.Join(l.Root, "results", "graphs"), l.GraphsDir())
	assert.Equal(t, filepath.Join("merged", "graphs"), GraphsDir("merged"))
}

func TestMeta(t *testing.T) {
	root := filepath.Join(t.TempDir(), "meta")
	m := NewMeta(3, "ABC 1 runs (ABC V)", "hwmcc20", []string{"mul7", "picorv"}, "local", time.Hour, DefaultMemory)
	m.Start = time.Date(2024, 3, 9, 14, 5, 7, 12, time.UTC)
	assert.False(t, IsMetaDir(root))
	require.NoError(t, m.Write(root))
	assert.True(t, IsMetaDir(root))
	got, e := ReadMeta(root)
	require.NoError(t, e)
	if d := cmp.Diff(m, got); d != "" {
		t.Errorf("meta round trip (-want +got):\n%s", d)
	}
}

func TestFindInstances(t *testing.T) {
	repo := t.TempDir()
	suite := filepath.Join(repo, InputsDir, "hwmcc")
	touch(t, filepath.Join(suite, "b", "mul7.aig"), exampleAag)
	touch(t, filepath.Join(suite, "a", "x.aig"), exampleAag)
	touch(t, filepath.Join(suite, "a", "readme.txt"), "")
	touch(t, filepath.Join(repo, InputsDir, "other", "y.aig"), exampleAag)

	insts, e := FindInstances(repo, "hwmcc", nil)
	require.NoError(t, e)
	assert.Equal(t, []string{filepath.Join(suite, "a", "x.aig"), filepath.Join(suite, "b", "mul7.aig")}, insts)

	insts, e = FindInstances(repo, "hwmcc", []string{"mul7", "nothing"})
	require.NoError(t, e)
	assert.Equal(t, []string{filepath.Join(suite, "b", "mul7.aig")}, insts)

	_, e = FindInstances(repo, "missing", nil)
	assert.Error(t, e)

	ss, e := Suites(repo)
	require.NoError(t, e)
	assert.Equal(t, []string{"hwmcc", "other"}, ss)
}

func TestInspect(t *testing.T) {
	p := filepath.Join(t.TempDir(), "m.aag")
	touch(t, p, exampleAag)
	info, e := Inspect(p)
	require.NoError(t, e)
	assert.Equal(t, &Info{Inputs: 1, Latches: 1, Outputs: 2}, info)

	touch(t, p, "p cnf 1 1\n1 0\n")
	_, e = Inspect(p)
	assert.Error(t, e)
}

func TestSuite(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "in", "a.aig")
	b := filepath.Join(dir, "in", "b.aig")
	touch(t, a, exampleAag)
	touch(t, b, "garbage")
	root := filepath.Join(dir, "suite")
	s, e := CreateSuite(root, []string{a, b}, zap.NewNop())
	require.NoError(t, e)
	assert.Equal(t, 2, s.Len())
	assert.NotNil(t, s.Infos[0])
	assert.Nil(t, s.Infos[1])

	buf, e := os.ReadFile(filepath.Join(root, "instances.csv"))
	require.NoError(t, e)
	lines := strings.Split(strings.TrimSpace(string(buf)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "index,instance,sha256,inputs,latches,outputs,bad,constraints", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], ",1,1,2,0,0"))
	assert.True(t, strings.HasSuffix(lines[2], ",,,,,"))

	o, e := OpenSuite(root)
	require.NoError(t, e)
	assert.Equal(t, s.Insts, o.Insts)
	assert.Equal(t, s.Hashes, o.Hashes)
	ch, e := o.Changed()
	require.NoError(t, e)
	assert.Empty(t, ch)
	touch(t, b, "other garbage")
	ch, e = o.Changed()
	require.NoError(t, e)
	assert.Equal(t, []int{1}, ch)
}

func testDeployments() []deploy.Deployment {
	return []deploy.Deployment{deploy.ABC{}, deploy.RIC3{}}
}

func TestPlan(t *testing.T) {
	l := &Layout{Root: "/w"}
	insts := []string{"/s/a.aig", "/s/b.aig", "/s/c.aig"}
	jobs := Plan(l, insts, testDeployments(), 60, DefaultMemory, rand.New(rand.NewSource(7)))
	require.Len(t, jobs, 6)
	seen := make(map[[2]int]bool)
	for k, j := range jobs {
		pair := [2]int{j.Deployment, j.Instance}
		assert.False(t, seen[pair])
		seen[pair] = true
		assert.Equal(t, k%2, j.Deployment)
		assert.Equal(t, k/2, j.Order)
		assert.Equal(t, insts[j.Instance], j.Path)
		assert.Equal(t, 60, j.Timeout)
		assert.Equal(t, DefaultMemory, j.Memory)
		slug := deploy.Slug(j.Deploy)
		want := fmt.Sprintf("/w/outputs/deployment_%d/%s_%d_%s.out.txt", j.Deployment, slug, j.Instance, filepath.Base(j.Path))
		assert.Equal(t, filepath.FromSlash(want), j.Artifact)
	}
	for k := 0; k < len(jobs); k += 2 {
		assert.Equal(t, jobs[k].Instance, jobs[k+1].Instance)
	}
	again := Plan(l, insts, testDeployments(), 60, DefaultMemory, rand.New(rand.NewSource(7)))
	for k := range jobs {
		assert.Equal(t, jobs[k].Artifact, again[k].Artifact)
	}
	assert.Equal(t, fmt.Sprintf("1_%d", jobs[1].Order), jobs[1].Name())
	assert.Empty(t, Plan(l, nil, testDeployments(), 60, 0, rand.New(rand.NewSource(1))))
}

type fakeLauncher struct {
	delay    time.Duration
	fail     func(j *Job) error
	running  atomic.Int32
	peak     atomic.Int32
	mu       sync.Mutex
	launched []string
}

func (f *fakeLauncher) Launch(j *Job) error {
	n := f.running.Add(1)
	defer f.running.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	f.mu.Lock()
	f.launched = append(f.launched, j.Artifact)
	f.mu.Unlock()
	time.Sleep(f.delay)
	if f.fail != nil {
		return f.fail(j)
	}
	return nil
}

func planIn(t *testing.T, n int) []*Job {
	l := &Layout{Root: t.TempDir()}
	insts := make([]string, n)
	for i := range insts {
		insts[i] = fmt.Sprintf("/s/m%d.aig", i)
	}
	return Plan(l, insts, testDeployments(), 10, 0, rand.New(rand.NewSource(1)))
}

func TestLocal(t *testing.T) {
	defer goleak.VerifyNone(t)
	jobs := planIn(t, 10)
	f := &fakeLauncher{delay: time.Millisecond}
	var done atomic.Int32
	l := &Local{
		Threads:  3,
		Launcher: f,
		Log:      zap.NewNop(),
		OnDone:   func(*Job, time.Duration) { done.Add(1) }}
	require.NoError(t, l.Dispatch(context.Background(), jobs))
	assert.Len(t, f.launched, len(jobs))
	assert.ElementsMatch(t, artifacts(jobs), f.launched)
	assert.LessOrEqual(t, f.peak.Load(), int32(3))
	assert.Equal(t, int32(len(jobs)), done.Load())
	st, e := os.Stat(filepath.Dir(jobs[0].Artifact))
	require.NoError(t, e)
	assert.True(t, st.IsDir())
}

func artifacts(jobs []*Job) []string {
	res := make([]string, len(jobs))
	for i, j := range jobs {
		res[i] = j.Artifact
	}
	return res
}

func TestLocalStopsAfterFailure(t *testing.T) {
	defer goleak.VerifyNone(t)
	jobs := planIn(t, 5)
	f := &fakeLauncher{fail: func(j *Job) error {
		return fmt.Errorf("%w: boom", ErrDispatch)
	}}
	l := &Local{Threads: 1, Launcher: f, Log: zap.NewNop()}
	e := l.Dispatch(context.Background(), jobs)
	assert.True(t, errors.Is(e, ErrDispatch))
	assert.Len(t, f.launched, 1)
}

func TestLocalOutputDirFailure(t *testing.T) {
	defer goleak.VerifyNone(t)
	jobs := planIn(t, 2)
	touch(t, filepath.Dir(filepath.Dir(jobs[0].Artifact)), "not a directory")
	f := &fakeLauncher{}
	l := &Local{Threads: 2, Launcher: f, Log: zap.NewNop()}
	e := l.Dispatch(context.Background(), jobs)
	assert.True(t, errors.Is(e, ErrDispatch))
	assert.Empty(t, f.launched)
}

func TestExecLauncher(t *testing.T) {
	defer goleak.VerifyNone(t)
	jobs := planIn(t, 1)
	require.NoError(t, makeOutputDirs(jobs))
	x := &ExecLauncher{Argv: func(*Job) []string {
		return []string{"sh", "-c", "echo result: safe; echo oops >&2; exit 3"}
	}}
	require.NoError(t, x.Launch(jobs[0]))
	buf, e := os.ReadFile(jobs[0].Artifact)
	require.NoError(t, e)
	assert.Contains(t, string(buf), "result: safe")
	assert.Contains(t, string(buf), "oops")

	x.Argv = func(*Job) []string { return []string{filepath.Join(t.TempDir(), "no-such-binary")} }
	assert.True(t, errors.Is(x.Launch(jobs[1]), ErrDispatch))
}

type fakeSubmitter struct {
	fail  int
	calls [][]string
}

func (f *fakeSubmitter) Submit(ctx context.Context, args []string) error {
	f.calls = append(f.calls, args)
	if len(f.calls) == f.fail {
		return errors.New("sbatch: error: invalid partition")
	}
	return nil
}

func TestCluster(t *testing.T) {
	jobs := planIn(t, 3)
	s := &fakeSubmitter{}
	c := &Cluster{
		Partition: "development",
		Argv:      func(j *Job) []string { return []string{"/bin/hwbench", "exec", "--file", j.Path + " x"} },
		Submitter: s,
		Log:       zap.NewNop()}
	require.NoError(t, c.Dispatch(context.Background(), jobs))
	require.Len(t, s.calls, len(jobs))
	j := jobs[0]
	assert.Equal(t, []string{
		"-p", "development",
		"--cpus-per-task=1",
		"--time=2",
		"-J", j.Name(),
		"--output=" + j.Artifact,
		"--wrap=/bin/hwbench exec --file '" + j.Path + " x'"}, s.calls[0])

	s = &fakeSubmitter{fail: 2}
	c.Submitter = s
	e := c.Dispatch(context.Background(), jobs)
	assert.True(t, errors.Is(e, ErrDispatch))
	assert.Len(t, s.calls, 2)
}

func TestBudgets(t *testing.T) {
	assert.Equal(t, 68, BudgetMinutes(3600))
	assert.Equal(t, 2, BudgetMinutes(10))
	assert.Equal(t, 3, BudgetMinutes(60))
	assert.InDelta(t, 4020, ClusterWait(3600).Seconds(), 1e-6)
	assert.InDelta(t, 60, ClusterWait(0).Seconds(), 1e-6)
}

func TestShellJoin(t *testing.T) {
	assert.Equal(t, "a -b --c=d/e.aig", ShellJoin([]string{"a", "-b", "--c=d/e.aig"}))
	assert.Equal(t, `'' 'a b' 'it'\''s' '$x'`, ShellJoin([]string{"", "a b", "it's", "$x"}))
}

func TestExecArgv(t *testing.T) {
	l := &Layout{Root: "/w"}
	j := &Job{Deployment: 2, Path: "/s/m.aig", Timeout: 60, Memory: 1024}
	assert.Equal(t, []string{"/bin/hwbench", "exec", "--profile", "4", "--index", "2", "--file", "/s/m.aig",
		"--timeout", "60", "--memory", "1024", "--workdir", "/w"}, ExecArgv("/bin/hwbench", 4, "", l)(j))
	argv := ExecArgv("/bin/hwbench", 4, "p.yaml", l)(j)
	assert.Equal(t, []string{"--profiles", "p.yaml"}, argv[len(argv)-2:])
}

func TestJobRun(t *testing.T) {
	var out bytes.Buffer
	jr := &JobRun{
		Dir:     t.TempDir(),
		Inst:    "/s/m.aig",
		Cmd:     "pwd; echo result: safe; echo oops >&2; exit 1",
		Timeout: 5,
		Wrap:    func(_ int, cmd string) string { return cmd },
		Out:     &out}
	require.NoError(t, jr.Do())
	s := out.String()
	assert.True(t, strings.HasPrefix(s, "--- AIG file name = /s/m.aig\n"))
	assert.Contains(t, s, "result: safe")
	assert.Contains(t, s, "oops")
	assert.Contains(t, s, "DONE, OVERALL TOTAL TIME = ")
	assert.NotEmpty(t, jr.Error)

	assert.Equal(t, "/usr/bin/time -v /usr/bin/timeout 5 ./rIC3 m.aig",
		(&JobRun{Timeout: 5, Cmd: "./rIC3 m.aig"}).Command())

	jr = &JobRun{Dir: filepath.Join(t.TempDir(), "missing"), Out: io.Discard}
	assert.Error(t, jr.Do())
}

type call struct {
	dir, cmd string
}

func TestBuilder(t *testing.T) {
	l := &Layout{Root: t.TempDir()}
	var calls []call
	b := &Builder{
		Layout: l,
		Log:    zap.NewNop(),
		Shell: func(ctx context.Context, dir, cmd string, out io.Writer) error {
			calls = append(calls, call{dir, cmd})
			if strings.HasPrefix(cmd, "git log") {
				io.WriteString(out, "abc1234")
			}
			return nil
		}}
	ds := []deploy.Deployment{deploy.RIC3{}, deploy.RIC3{CTG: true}, deploy.ABC{}}
	require.NoError(t, b.Build(context.Background(), ds))
	assert.Equal(t, []call{
		{l.RepoDir(0), ds[0].FetchCommand()},
		{filepath.Join(l.RepoDir(0), "rIC3"), ds[0].BuildCommand()},
		{l.RepoDir(1), "cp -r " + l.RepoDir(0) + "/. ."},
		{l.RepoDir(2), ds[2].FetchCommand()},
		{filepath.Join(l.RepoDir(2), "abc"), ds[2].BuildCommand()},
	}, calls)
	v, e := b.Version(context.Background(), 2, ds[2])
	require.NoError(t, e)
	assert.Equal(t, "abc1234", v)

	b.Layout = &Layout{Root: t.TempDir()}
	b.Shell = func(ctx context.Context, dir, cmd string, out io.Writer) error {
		return errors.New("exit status 2")
	}
	assert.Error(t, b.Build(context.Background(), ds))
}
