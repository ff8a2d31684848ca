// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package batch formats many files concurrently and collects their
// results. Grounded on the teacher's pipelines/stages.WorkerService: a
// small pool claims units of work and reports per-unit errors tagged
// with a code, rather than failing the whole run on the first error.
package batch

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/verbit/efmt"
	"github.com/verbit/efmt/cache"
)

// FileResult is the outcome of formatting one file.
type FileResult struct {
	Path      string
	Changed   bool
	Formatted []byte
	Warnings  []*efmt.Diagnostic
	Err       error
	ErrorCode string
}

// Job describes one file to format.
type Job struct {
	Path string
}

// Runner formats a batch of files, optionally writing results back to fs
// and consulting store to skip files whose content and options haven't
// changed since the last run.
type Runner struct {
	FS      afero.Fs
	Store   cache.Store
	Write   bool
	Workers int
	Options []efmt.Option
}

// Run formats every job concurrently, bounded by r.Workers, and returns
// one FileResult per job in input order.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]FileResult, error) {
	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	store := r.Store
	if store == nil {
		store = cache.NullStore{}
	}

	results := make([]FileResult, len(jobs))
	sem := make(chan struct{}, workers)
	group, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	var errs *multierror.Error

	for i, job := range jobs {
		i, job := i, job
		group.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			res := r.formatOne(gctx, store, job)
			results[i] = res
			if res.Err != nil {
				mu.Lock()
				errs = multierror.Append(errs, res.Err)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return results, err
	}
	if errs != nil {
		return results, errs.ErrorOrNil()
	}
	return results, nil
}

func (r *Runner) formatOne(ctx context.Context, store cache.Store, job Job) FileResult {
	content, err := afero.ReadFile(r.FS, job.Path)
	if err != nil {
		return FileResult{Path: job.Path, Err: &ErrRead{Path: job.Path, Err: err}, ErrorCode: ErrCodeRead}
	}

	fingerprint := optionsFingerprint(r.Options)
	key := cache.Key(content, fingerprint)
	if cached, ok, err := store.Get(ctx, key); err == nil && ok {
		changed := !equalBytes(cached, content)
		if r.Write && changed {
			if err := afero.WriteFile(r.FS, job.Path, cached, 0644); err != nil {
				return FileResult{Path: job.Path, Err: &ErrWrite{Path: job.Path, Err: err}, ErrorCode: ErrCodeWrite}
			}
		}
		return FileResult{Path: job.Path, Formatted: cached, Changed: changed}
	}

	result, err := efmt.FormatText(ctx, job.Path, content, r.Options...)
	if err != nil {
		return FileResult{Path: job.Path, Err: &ErrParse{Path: job.Path, Err: err}, ErrorCode: ErrCodeParse}
	}

	_ = store.Put(ctx, key, result.Formatted)

	changed := !equalBytes(result.Formatted, content)
	if r.Write && changed {
		if err := afero.WriteFile(r.FS, job.Path, result.Formatted, 0644); err != nil {
			return FileResult{Path: job.Path, Err: &ErrWrite{Path: job.Path, Err: err}, ErrorCode: ErrCodeWrite}
		}
	}

	return FileResult{
		Path:      job.Path,
		Changed:   changed,
		Formatted: result.Formatted,
		Warnings:  result.Warnings,
	}
}

func optionsFingerprint(opts []efmt.Option) string {
	o, err := efmt.ResolveOptions(opts...)
	if err != nil {
		return ""
	}
	return o.Fingerprint()
}

func equalBytes(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
