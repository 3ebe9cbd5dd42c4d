// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package bench

import (
	"fmt"
	"os"
	"strings"
	"time"
)

func p2s(p string) (string, error) {
	buf, e := os.ReadFile(p)
	if e != nil {
		return "", e
	}
	return strings.TrimSpace(string(buf)), nil
}

func s2f(s, p string) error {
	return os.WriteFile(p, []byte(s+"\n"), 0644)
}

func p2i(p string) (int64, error) {
	s, e := p2s(p)
	if e != nil {
		return 0, e
	}
	i := int64(0)
	if _, e := fmt.Sscanf(s, "%d", &i); e != nil {
		return 0, fmt.Errorf("%s: %w", p, e)
	}
	return i, nil
}

func i2f(p string, i int64) error {
	return s2f(fmt.Sprintf("%d", i), p)
}

func p2d(p string) (time.Duration, error) {
	i, e := p2i(p)
	return time.Duration(i), e
}

func d2f(p string, d time.Duration) error {
	return i2f(p, int64(d))
}

func p2t(p string) (time.Time, error) {
	var t time.Time
	s, e := p2s(p)
	if e != nil {
		return t, e
	}
	e = t.UnmarshalText([]byte(s))
	return t, e
}

func t2f(p string, t time.Time) error {
	b, e := t.MarshalText()
	if e != nil {
		return e
	}
	return s2f(string(b), p)
}
