// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package cache_test

import (
	"context"
	"testing"

	"github.com/verbit/efmt/cache"
)

func TestKey_IsStableForSameInputs(t *testing.T) {
	a := cache.Key([]byte("-module(foo)."), "fp1")
	b := cache.Key([]byte("-module(foo)."), "fp1")
	if a != b {
		t.Fatalf("Key returned different values for identical inputs: %q vs %q", a, b)
	}
}

func TestKey_DiffersWithContent(t *testing.T) {
	a := cache.Key([]byte("-module(foo)."), "fp1")
	b := cache.Key([]byte("-module(bar)."), "fp1")
	if a == b {
		t.Fatalf("Key collided for different content: %q", a)
	}
}

func TestKey_DiffersWithOptionsFingerprint(t *testing.T) {
	a := cache.Key([]byte("-module(foo)."), "fp1")
	b := cache.Key([]byte("-module(foo)."), "fp2")
	if a == b {
		t.Fatalf("Key collided for different options fingerprints: %q", a)
	}
}

func TestNullStore_NeverReturnsAHit(t *testing.T) {
	var store cache.Store = cache.NullStore{}
	_, ok, err := store.Get(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Get error = %v", err)
	}
	if ok {
		t.Fatalf("NullStore.Get reported a hit, want always a miss")
	}
}

func TestNullStore_PutAndCloseAreNoOps(t *testing.T) {
	var store cache.Store = cache.NullStore{}
	if err := store.Put(context.Background(), "key", []byte("value")); err != nil {
		t.Fatalf("Put error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
	_, ok, _ := store.Get(context.Background(), "key")
	if ok {
		t.Fatalf("NullStore.Get reported a hit after Put, want it to still miss")
	}
}
