// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package classify

// Type Record holds the fields classified from one log, in the order
// in which they were first set.
type Record struct {
	fields []string
	vals   map[string]string
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{vals: make(map[string]string)}
}

// Set sets field f to v.  A field keeps the position of its first Set.
func (r *Record) Set(f, v string) {
	if _, ok := r.vals[f]; !ok {
		r.fields = append(r.fields, f)
	}
	r.vals[f] = v
}

// SetFloat sets field f to the text form of x, see Format.
func (r *Record) SetFloat(f string, x float64) {
	r.Set(f, Format(x))
}

// Get returns the value of f and whether f was set.
func (r *Record) Get(f string) (string, bool) {
	v, ok := r.vals[f]
	return v, ok
}

// Value returns the value of f, or "" if f was never set.
func (r *Record) Value(f string) string {
	return r.vals[f]
}

// Fields returns the field names of r in order.  The result
// must not be modified.
func (r *Record) Fields() []string {
	return r.fields
}

// Len returns the number of fields in r.
func (r *Record) Len() int {
	return len(r.fields)
}

// Result is shorthand for the Result field.
func (r *Record) Result() string {
	return r.vals[FieldResult]
}

// TimeError is shorthand for the TimeError field.
func (r *Record) TimeError() string {
	return r.vals[FieldTimeError]
}
