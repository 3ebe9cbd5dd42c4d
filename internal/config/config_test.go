// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, s string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "hwbench.yaml")
	require.NoError(t, os.WriteFile(p, []byte(s), 0644))
	return p
}

func TestDefault(t *testing.T) {
	c, e := Load("")
	require.NoError(t, e)
	require.NoError(t, c.Validate())
	n, e := c.MemoryBytes()
	require.NoError(t, e)
	assert.Equal(t, uint64(20)<<30, n)
	assert.False(t, c.Publish.Enabled())
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvAccessKey, "ak")
	t.Setenv(EnvSecretKey, "sk")
	c, e := Load(write(t, `
repo: /data/hwmcc
suite: hwmcc20
timeout: 60
memory: 512MiB
mode: cluster
partition: long
log:
  level: debug
publish:
  endpoint: localhost:9000
  bucket: results
`))
	require.NoError(t, e)
	require.NoError(t, c.Validate())
	assert.Equal(t, "/data/hwmcc", c.Repo)
	assert.Equal(t, 60, c.Timeout)
	assert.Equal(t, "aig", c.Tests)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "console", c.Log.Format)
	assert.True(t, c.Publish.Enabled())
	assert.Equal(t, "ak", c.Publish.AccessKey)
	assert.Equal(t, "sk", c.Publish.SecretKey)
	n, _ := c.MemoryBytes()
	assert.Equal(t, uint64(512)<<20, n)
}

func TestInvalid(t *testing.T) {
	for _, s := range []string{
		"mode: cluster\n",
		"mode: grid\n",
		"timeout: 0\n",
		"threads: 0\n",
		"memory: lots\n",
		"log: {level: loud}\n",
		"publish: {endpoint: localhost:9000}\n",
	} {
		c, e := Load(write(t, s))
		require.NoError(t, e, s)
		assert.Error(t, c.Validate(), s)
	}
}

func TestLoadErrors(t *testing.T) {
	_, e := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, e)
	_, e = Load(write(t, "timeout: [\n"))
	assert.Error(t, e)
}
