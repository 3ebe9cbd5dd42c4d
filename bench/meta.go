// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package bench

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type Meta describes a benchmark run.  It is written once, when the
// run is dispatched, and read back by the analysis.
type Meta struct {
	ID          string
	Profile     int
	ProfileName string
	Suite       string
	Tests       []string
	Mode        string
	Timeout     time.Duration
	Memory      uint64
	Arch        string
	Os          string
	NumCPU      int
	Start       time.Time
}

// NewMeta creates the metadata of a run starting now on this machine.
func NewMeta(profile int, profileName, suite string, tests []string, mode string, timeout time.Duration, memory uint64) *Meta {
	return &Meta{
		ID:          uuid.NewString(),
		Profile:     profile,
		ProfileName: profileName,
		Suite:       suite,
		Tests:       tests,
		Mode:        mode,
		Timeout:     timeout,
		Memory:      memory,
		Arch:        runtime.GOARCH,
		Os:          runtime.GOOS,
		NumCPU:      runtime.NumCPU(),
		Start:       time.Now()}
}

// IsMetaDir tests whether or not root looks like a metadata directory.
func IsMetaDir(root string) bool {
	for _, p := range []string{root, metaIDPath(root), metaProfilePath(root), metaTimeoutPath(root)} {
		if _, ste := os.Stat(p); ste != nil {
			return false
		}
	}
	return true
}

// Write writes m to directory root, one file per field.
func (m *Meta) Write(root string) error {
	if e := os.MkdirAll(root, 0755); e != nil {
		return e
	}
	for _, w := range []func() error{
		func() error { return s2f(m.ID, metaIDPath(root)) },
		func() error { return i2f(metaProfilePath(root), int64(m.Profile)) },
		func() error { return s2f(m.ProfileName, metaProfileNamePath(root)) },
		func() error { return s2f(m.Suite, metaSuitePath(root)) },
		func() error { return s2f(strings.Join(m.Tests, " "), metaTestsPath(root)) },
		func() error { return s2f(m.Mode, metaModePath(root)) },
		func() error { return d2f(metaTimeoutPath(root), m.Timeout) },
		func() error { return i2f(metaMemoryPath(root), int64(m.Memory)) },
		func() error { return s2f(m.Arch, metaArchPath(root)) },
		func() error { return s2f(m.Os, metaOsPath(root)) },
		func() error { return i2f(metaNumCPUPath(root), int64(m.NumCPU)) },
		func() error { return t2f(metaStartPath(root), m.Start) },
	} {
		if e := w(); e != nil {
			return e
		}
	}
	return nil
}

// ReadMeta reads the metadata written to root.
func ReadMeta(root string) (*Meta, error) {
	m := &Meta{}
	var e error
	if m.ID, e = p2s(metaIDPath(root)); e != nil {
		return nil, e
	}
	prof, e := p2i(metaProfilePath(root))
	if e != nil {
		return nil, e
	}
	m.Profile = int(prof)
	if m.ProfileName, e = p2s(metaProfileNamePath(root)); e != nil {
		return nil, e
	}
	if m.Suite, e = p2s(metaSuitePath(root)); e != nil {
		return nil, e
	}
	tests, e := p2s(metaTestsPath(root))
	if e != nil {
		return nil, e
	}
	m.Tests = strings.Fields(tests)
	if m.Mode, e = p2s(metaModePath(root)); e != nil {
		return nil, e
	}
	if m.Timeout, e = p2d(metaTimeoutPath(root)); e != nil {
		return nil, e
	}
	mem, e := p2i(metaMemoryPath(root))
	if e != nil {
		return nil, e
	}
	m.Memory = uint64(mem)
	if m.Arch, e = p2s(metaArchPath(root)); e != nil {
		return nil, e
	}
	if m.Os, e = p2s(metaOsPath(root)); e != nil {
		return nil, e
	}
	ncpu, e := p2i(metaNumCPUPath(root))
	if e != nil {
		return nil, e
	}
	m.NumCPU = int(ncpu)
	if m.Start, e = p2t(metaStartPath(root)); e != nil {
		return nil, e
	}
	return m, nil
}

func metaIDPath(root string) string {
	return filepath.Join(root, "id")
}
func metaProfilePath(root string) string {
	return filepath.Join(root, "profile")
}
func metaProfileNamePath(root string) string {
	return filepath.Join(root, "profile-name")
}
func metaSuitePath(root string) string {
	return filepath.Join(root, "suite")
}
func metaTestsPath(root string) string {
	return filepath.Join(root, "tests")
}
func metaModePath(root string) string {
	return filepath.Join(root, "mode")
}
func metaTimeoutPath(root string) string {
	return filepath.Join(root, "timeout")
}
func metaMemoryPath(root string) string {
	return filepath.Join(root, "memory")
}
func metaArchPath(root string) string {
	return filepath.Join(root, "arch")
}
func metaOsPath(root string) string {
	return filepath.Join(root, "os")
}
func metaNumCPUPath(root string) string {
	return filepath.Join(root, "ncpu")
}
func metaStartPath(root string) string {
	return filepath.Join(root, "start")
}
