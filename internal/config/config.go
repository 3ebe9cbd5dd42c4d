// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package config reads hwbench configuration files.
//
// A configuration file is YAML; absent fields take the values of
// Default and command line flags override the file.
//
//	repo: /data/hwmcc
//	suite: hwmcc20
//	tests: aig
//	timeout: 3600
//	memory: 20GiB
//	mode: cluster
//	partition: long
//	publish:
//	  endpoint: minio.local:9000
//	  bucket: hwbench
package config

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/irifrance/hwbench/internal/logging"
)

// Modes.
const (
	Local   = "local"
	Cluster = "cluster"
)

// Environment variables holding the publication credentials.
const (
	EnvAccessKey = "HWBENCH_ACCESS_KEY"
	EnvSecretKey = "HWBENCH_SECRET_KEY"
)

// Type Publish is the S3 compatible target receiving the results of a
// run.  Credentials come from the environment only.
type Publish struct {
	Endpoint  string `yaml:"endpoint" validate:"required_with=Bucket"`
	Bucket    string `yaml:"bucket" validate:"required_with=Endpoint"`
	Region    string `yaml:"region"`
	Secure    bool   `yaml:"secure"`
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

// Enabled reports whether a target is configured.
func (p *Publish) Enabled() bool {
	return p.Endpoint != ""
}

// Type Config is the configuration of a benchmark run and its
// analysis.
type Config struct {
	Repo      string         `yaml:"repo" validate:"required"`
	Suite     string         `yaml:"suite" validate:"required"`
	Tests     string         `yaml:"tests"`
	Timeout   int            `yaml:"timeout" validate:"gt=0"`
	Memory    string         `yaml:"memory"`
	Mode      string         `yaml:"mode" validate:"oneof=local cluster"`
	Threads   int            `yaml:"threads" validate:"gte=1"`
	Partition string         `yaml:"partition" validate:"required_if=Mode cluster"`
	Slack     float64        `yaml:"slack" validate:"gte=0"`
	NearLimit float64        `yaml:"near_limit" validate:"gte=0"`
	Profiles  string         `yaml:"profiles"`
	Metrics   bool           `yaml:"metrics"`
	SQLite    bool           `yaml:"sqlite"`
	Log       logging.Config `yaml:"log"`
	Publish   Publish        `yaml:"publish"`
}

// Default returns the configuration used for absent fields.
func Default() *Config {
	return &Config{
		Repo:      ".",
		Suite:     "hwmcc",
		Tests:     "aig",
		Timeout:   3600,
		Memory:    "20GiB",
		Mode:      Local,
		Threads:   1,
		Partition: "",
		Slack:     2,
		NearLimit: 0.1,
		Metrics:   true,
		SQLite:    true,
		Log:       logging.Config{Level: "info", Format: "console"}}
}

var validate = validator.New()

// Validate checks c.
func (c *Config) Validate() error {
	if e := validate.Struct(c); e != nil {
		return fmt.Errorf("invalid configuration: %w", e)
	}
	if _, e := c.MemoryBytes(); e != nil {
		return e
	}
	return nil
}

// MemoryBytes gives the memory ceiling of a job in bytes, 0 for none.
func (c *Config) MemoryBytes() (uint64, error) {
	if c.Memory == "" || c.Memory == "0" {
		return 0, nil
	}
	n, e := humanize.ParseBytes(c.Memory)
	if e != nil {
		return 0, fmt.Errorf("memory %q: %w", c.Memory, e)
	}
	return n, nil
}

// Load reads the configuration file at path over Default.  An empty
// path gives Default.  Credentials are read from the environment.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, e := os.ReadFile(path)
		if e != nil {
			return nil, e
		}
		if e := yaml.Unmarshal(data, c); e != nil {
			return nil, fmt.Errorf("%s: %w", path, e)
		}
	}
	c.Publish.AccessKey = os.Getenv(EnvAccessKey)
	c.Publish.SecretKey = os.Getenv(EnvSecretKey)
	return c, nil
}
