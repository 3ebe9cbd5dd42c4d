// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package bench

import (
	"fmt"
	"math/rand"
	"path/filepath"

	"github.com/irifrance/hwbench/deploy"
)

// DefaultMemory is the address space ceiling of a job, 20 GiB.
const DefaultMemory = uint64(20) << 30

// Type Job is the execution of one deployment on one instance.  Jobs
// are created once by Plan and consumed exactly once by a Dispatcher.
type Job struct {
	Deployment int               // index in the profile
	Deploy     deploy.Deployment // the deployment itself
	Instance   int               // index in the sorted instance list
	Path       string            // instance path
	Order      int               // position of the instance in the shuffled order
	Timeout    int               // wall clock limit in seconds
	Memory     uint64            // address space ceiling in bytes
	Artifact   string            // file capturing the merged output of the job
}

// Name gives the scheduler name of j.
func (j *Job) Name() string {
	return fmt.Sprintf("%d_%d", j.Deployment, j.Order)
}

// Plan creates the jobs racing ds over insts, one per pair.  Instances
// are shuffled once with rng so that similar instances do not run
// together; the deployments of an instance keep their order.
func Plan(l *Layout, insts []string, ds []deploy.Deployment, timeout int, memory uint64, rng *rand.Rand) []*Job {
	order := make([]int, len(insts))
	for i := range order {
		order[i] = i
	}
	rng.Shuffle(len(order), func(a, b int) {
		order[a], order[b] = order[b], order[a]
	})
	res := make([]*Job, 0, len(insts)*len(ds))
	for k, i := range order {
		file := filepath.Base(insts[i])
		for j, d := range ds {
			res = append(res, &Job{
				Deployment: j,
				Deploy:     d,
				Instance:   i,
				Path:       insts[i],
				Order:      k,
				Timeout:    timeout,
				Memory:     memory,
				Artifact:   l.Artifact(j, deploy.Slug(d), i, file)})
		}
	}
	return res
}
