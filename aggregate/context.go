// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package aggregate

import "math"

// Defaults of Context.
const (
	DefaultSlack     = 2.0
	DefaultNearLimit = 0.1
)

// Type Context holds the parameters of one analysis.
type Context struct {
	TimeLimit float64 // per job timeout in seconds
	Slack     float64 // times at or above TimeLimit+Slack are timeouts
	NearLimit float64 // times within NearLimit of TimeLimit are not solved
	Dir       string  // directory receiving the reports
}

// NewContext creates a context with default slack and near limit
// guard.
func NewContext(limit float64, dir string) *Context {
	return &Context{
		TimeLimit: limit,
		Slack:     DefaultSlack,
		NearLimit: DefaultNearLimit,
		Dir:       dir}
}

// Solved reports whether elapsed time t counts as solved.
func (c *Context) Solved(t float64) bool {
	switch {
	case math.IsInf(t, 0) || math.IsNaN(t):
		return false
	case t >= c.TimeLimit+c.Slack:
		return false
	case c.TimeLimit-t < c.NearLimit:
		return false
	}
	return true
}

// Runtime clamps t to the time limit when it is not a finite time
// below TimeLimit+Slack.
func (c *Context) Runtime(t float64) float64 {
	if math.IsInf(t, 0) || math.IsNaN(t) || t >= c.TimeLimit+c.Slack {
		return c.TimeLimit
	}
	return t
}
