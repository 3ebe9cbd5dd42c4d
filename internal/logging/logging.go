// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package logging builds the zap loggers of hwbench.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Type Config configures a logger.
type Config struct {
	Level      string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format     string `yaml:"format" validate:"omitempty,oneof=console json"`
	File       string `yaml:"file"`        // rotated log file, none if empty
	MaxSize    int    `yaml:"max_size"`    // megabytes
	MaxBackups int    `yaml:"max_backups"` // rotated files kept
	MaxAge     int    `yaml:"max_age"`     // days
}

func level(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var l zapcore.Level
	if e := l.UnmarshalText([]byte(s)); e != nil {
		return l, fmt.Errorf("log level %q: %w", s, e)
	}
	return l, nil
}

func encoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.SecondsDurationEncoder
	if format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

// New creates a logger writing to stderr and, if cfg.File is set, to
// a rotated log file.
func New(cfg Config) (*zap.Logger, error) {
	return NewTo(cfg, os.Stderr)
}

// NewTo is New writing to w instead of stderr.
func NewTo(cfg Config, w io.Writer) (*zap.Logger, error) {
	lvl, e := level(cfg.Level)
	if e != nil {
		return nil, e
	}
	enc := encoder(cfg.Format)
	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.AddSync(w), lvl)}
	if cfg.File != "" {
		rot := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge}
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(rot), lvl))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}
