// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package cache defines the format-result cache used by batch runs to
// skip re-formatting files whose content and options haven't changed.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Key derives a cache key from a file's content and the options
// fingerprint affecting its formatted output, so changing max_columns or
// a predefined macro invalidates previously cached entries.
func Key(content []byte, optionsFingerprint string) string {
	h := sha256.New()
	h.Write(content)
	h.Write([]byte("\x00"))
	h.Write([]byte(optionsFingerprint))
	return hex.EncodeToString(h.Sum(nil))
}

// Store is implemented by any format-result cache. Get's second return
// reports whether key was found, distinguishing "not cached" from
// "cached empty output".
type Store interface {
	Get(ctx context.Context, key string) (formatted []byte, ok bool, err error)
	Put(ctx context.Context, key string, formatted []byte) error
	Close() error
}

// NullStore never caches anything. batch.Runner falls back to it when no
// Store is set, and the CLI uses it when the cache database cannot be
// opened.
type NullStore struct{}

func (NullStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullStore) Put(context.Context, string, []byte) error         { return nil }
func (NullStore) Close() error                                      { return nil }
