// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package diff renders unified diffs between a file's original and
// formatted contents, for the CLI's --diff flag. Option is the same
// functional-options shape the teacher's renderer package uses.
package diff

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Options controls how a diff is rendered.
type Options struct {
	Context  int
	FromName string
	ToName   string
}

// Option configures a diff render.
type Option func(*Options) error

func defaultOptions() *Options {
	return &Options{Context: 3, FromName: "before", ToName: "after"}
}

// WithContext sets the number of unchanged context lines shown around
// each hunk.
func WithContext(n int) Option {
	return func(o *Options) error {
		o.Context = n
		return nil
	}
}

// WithNames sets the labels shown on the "---"/"+++" header lines.
func WithNames(from, to string) Option {
	return func(o *Options) error {
		o.FromName = from
		o.ToName = to
		return nil
	}
}

// Unified renders a unified diff between before and after. It returns
// the empty string when the two are identical.
func Unified(before, after []byte, opts ...Option) (string, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return "", err
		}
	}
	if string(before) == string(after) {
		return "", nil
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: o.FromName,
		ToFile:   o.ToName,
		Context:  o.Context,
	}
	return difflib.GetUnifiedDiffString(ud)
}
