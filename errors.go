// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package efmt

import (
	"github.com/hashicorp/go-multierror"
)

// diagnosticsToError folds a slice of Diagnostics into a single error,
// using go-multierror so a caller formatting many files (or a file with
// many parse errors) can report every failure rather than just the
// first.
func diagnosticsToError(diags []*Diagnostic) error {
	if len(diags) == 0 {
		return nil
	}
	var merr *multierror.Error
	for _, d := range diags {
		merr = multierror.Append(merr, d)
	}
	merr.ErrorFormat = func(errs []error) string {
		if len(errs) == 1 {
			return errs[0].Error()
		}
		s := ""
		for i, e := range errs {
			if i > 0 {
				s += "\n"
			}
			s += e.Error()
		}
		return s
	}
	return merr
}

// Diagnostics extracts the []*Diagnostic carried by an error returned
// from FormatText, unwrapping a *multierror.Error if present. Returns
// nil if err is nil or not diagnostic-shaped.
func Diagnostics(err error) []*Diagnostic {
	if err == nil {
		return nil
	}
	if d, ok := err.(*Diagnostic); ok {
		return []*Diagnostic{d}
	}
	merr, ok := err.(*multierror.Error)
	if !ok {
		return nil
	}
	out := make([]*Diagnostic, 0, len(merr.Errors))
	for _, e := range merr.Errors {
		if d, ok := e.(*Diagnostic); ok {
			out = append(out, d)
		}
	}
	return out
}
