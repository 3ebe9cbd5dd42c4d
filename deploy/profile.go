// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package deploy

import (
	"fmt"
	"strings"

	"github.com/irifrance/hwbench/aggregate"
)

// Type Profile is a named set of deployments raced against each other.
type Profile struct {
	Name        string
	Deployments []Deployment
	Numeric     bool // also report averages and medians of numeric telemetry
}

// NewProfile creates a profile named after its deployments.
func NewProfile(family string, ds ...Deployment) *Profile {
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = d.Name()
	}
	return &Profile{
		Name:        fmt.Sprintf("%s %d runs (%s)", family, len(ds), strings.Join(names, " vs. ")),
		Deployments: ds}
}

// Names returns the names of the deployments of p.
func (p *Profile) Names() []string {
	res := make([]string, len(p.Deployments))
	for i, d := range p.Deployments {
		res[i] = d.Name()
	}
	return res
}

// Stats gives the aggregate statistics reported for p.
func (p *Profile) Stats() []aggregate.Stat {
	var res []aggregate.Stat
	for i, d := range p.Deployments {
		res = append(res, aggregate.DeploymentStats(i, d.Name())...)
		if !p.Numeric {
			continue
		}
		if _, ok := d.(RFV); ok {
			res = append(res, aggregate.NumericStats(i, d.Name(), RFVNumeric(), rfvConditioned)...)
		}
	}
	return res
}

var rfvConditioned = []aggregate.Conditioned{
	{Column: FieldAuxVars, Condition: FieldAuxVars},
	{Column: FieldAndAuxVars, Condition: FieldAuxVars},
	{Column: FieldXorAuxVars, Condition: FieldAuxVars},
	{Column: FieldUsedAuxVars, Condition: FieldInvariantSize},
	{Column: FieldUsedAndAuxVars, Condition: FieldInvariantSize},
	{Column: FieldUsedXorAuxVars, Condition: FieldInvariantSize},
	{Column: FieldInvariantSize, Condition: FieldInvariantSize},
}

func on() *bool {
	b := true
	return &b
}

func off() *bool {
	b := false
	return &b
}

func tuned(r RFV) RFV {
	r.Tuned = true
	return r
}

// Profiles returns the built in profiles, in index order.
func Profiles() []*Profile {
	var res []*Profile
	for _, a := range []ABC{
		{},
		{R: true, N: true},
		{R: true, N: true, C: true},
		{C: true},
		{N: true, C: true},
		{N: true, C: true, Q: true},
	} {
		res = append(res, NewProfile("ABC", a))
	}
	for _, repo := range []string{"gipsyh", "sirandreww"} {
		for _, r := range []RIC3{
			{},
			{Inn: true},
			{CTP: true},
			{CTG: true},
			{Dynamic: true},
		} {
			r.Repo = repo
			res = append(res, NewProfile("rIC3", r))
		}
	}
	for _, r := range []RFV{
		{},
		tuned(RFV{}),
		tuned(RFV{ER: true}),
		tuned(RFV{CTG: true}),
		tuned(RFV{ER: true, CTG: true}),
		tuned(RFV{ER: true, ERImpl: off(), ERGen: off(), ERFP: off()}),
		tuned(RFV{ER: true, ERImpl: on(), ERGen: off(), ERFP: off()}),
		tuned(RFV{ER: true, ERImpl: off(), ERGen: on(), ERFP: off()}),
		tuned(RFV{ER: true, ERImpl: off(), ERGen: off(), ERFP: on()}),
		tuned(RFV{ER: true, ERImpl: on(), ERGen: on(), ERFP: off()}),
		tuned(RFV{ER: true, ERImpl: off(), ERGen: on(), ERFP: on()}),
		tuned(RFV{ER: true, ERImpl: on(), ERGen: off(), ERFP: on()}),
		tuned(RFV{ER: true, ERImpl: on(), ERGen: on(), ERFP: on()}),
	} {
		res = append(res, NewProfile("RFV", r))
	}
	res = append(res, NewProfile("Mixed",
		ABC{}, RIC3{}, RIC3{Repo: "sirandreww"}, RFV{}))
	return res
}

// Lookup returns profile i of ps.
func Lookup(ps []*Profile, i int) (*Profile, error) {
	if i < 0 || i >= len(ps) {
		return nil, fmt.Errorf("no deployment profile %d, have %d", i, len(ps))
	}
	return ps[i], nil
}
