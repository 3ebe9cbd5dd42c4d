// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

//go:build !linux

package bench

import "errors"

func setMemoryLimit(n uint64) error {
	return errors.New("address space limits are only supported on linux")
}
