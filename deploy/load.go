// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package deploy

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// A profile file lists profiles, each deployment naming exactly one
// family:
//
//	profiles:
//	  - name: pdr shootout
//	    numeric: true
//	    deployments:
//	      - abc: {r: true, n: true}
//	      - ric3: {inn: true, repo: sirandreww}
//	      - rfv: {tuned: true, er: true}
type profileFile struct {
	Profiles []profileSpec `yaml:"profiles"`
}

type profileSpec struct {
	Name        string       `yaml:"name"`
	Numeric     bool         `yaml:"numeric"`
	Deployments []deploySpec `yaml:"deployments"`
}

type deploySpec struct {
	ABC  *ABC  `yaml:"abc"`
	RIC3 *RIC3 `yaml:"ric3"`
	RFV  *RFV  `yaml:"rfv"`
}

func (s deploySpec) deployment() (Deployment, error) {
	var res []Deployment
	if s.ABC != nil {
		res = append(res, *s.ABC)
	}
	if s.RIC3 != nil {
		res = append(res, *s.RIC3)
	}
	if s.RFV != nil {
		res = append(res, *s.RFV)
	}
	if len(res) != 1 {
		return nil, fmt.Errorf("deployment must name exactly one of abc, ric3, rfv (got %d)", len(res))
	}
	return res[0], nil
}

// ReadProfiles reads profiles in yaml from r.
func ReadProfiles(r io.Reader) ([]*Profile, error) {
	var pf profileFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if e := dec.Decode(&pf); e != nil {
		return nil, fmt.Errorf("decoding profiles: %w", e)
	}
	res := make([]*Profile, 0, len(pf.Profiles))
	for i, ps := range pf.Profiles {
		if len(ps.Deployments) == 0 {
			return nil, fmt.Errorf("profile %d (%s) has no deployments", i, ps.Name)
		}
		ds := make([]Deployment, 0, len(ps.Deployments))
		seen := make(map[string]int, len(ps.Deployments))
		for j, s := range ps.Deployments {
			d, e := s.deployment()
			if e != nil {
				return nil, fmt.Errorf("profile %d deployment %d: %w", i, j, e)
			}
			// results are keyed by deployment name
			if k, ok := seen[d.Name()]; ok {
				return nil, fmt.Errorf("profile %d deployments %d and %d are both %q", i, k, j, d.Name())
			}
			seen[d.Name()] = j
			ds = append(ds, d)
		}
		p := NewProfile("Custom", ds...)
		if ps.Name != "" {
			p.Name = ps.Name
		}
		p.Numeric = ps.Numeric
		res = append(res, p)
	}
	return res, nil
}

// LoadProfiles returns the built in profiles followed by the profiles
// of the file at path, if path is not empty.
func LoadProfiles(path string) ([]*Profile, error) {
	res := Profiles()
	if path == "" {
		return res, nil
	}
	f, e := os.Open(path)
	if e != nil {
		return nil, e
	}
	defer f.Close()
	more, e := ReadProfiles(f)
	if e != nil {
		return nil, fmt.Errorf("%s: %w", path, e)
	}
	return append(res, more...), nil
}
