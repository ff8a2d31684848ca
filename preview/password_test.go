// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package preview_test

import (
	"testing"

	"github.com/verbit/efmt/preview"
)

func TestGeneratePhrase_IsNonEmptyAndVaries(t *testing.T) {
	a := preview.GeneratePhrase()
	b := preview.GeneratePhrase()
	if a == "" {
		t.Fatalf("GeneratePhrase() = %q, want non-empty", a)
	}
	if a == b {
		t.Fatalf("two calls to GeneratePhrase() returned the same phrase %q, want them to vary", a)
	}
}

func TestHashPhrase_CheckPhraseRoundTrips(t *testing.T) {
	hash, err := preview.HashPhrase("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPhrase error = %v", err)
	}
	if !preview.CheckPhrase("correct horse battery staple", hash) {
		t.Fatalf("CheckPhrase with the original phrase = false, want true")
	}
}

func TestCheckPhrase_RejectsWrongPhrase(t *testing.T) {
	hash, err := preview.HashPhrase("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPhrase error = %v", err)
	}
	if preview.CheckPhrase("wrong phrase", hash) {
		t.Fatalf("CheckPhrase with a wrong phrase = true, want false")
	}
}

func TestHashPhrase_ProducesDifferentHashesEachTime(t *testing.T) {
	hashA, err := preview.HashPhrase("same phrase")
	if err != nil {
		t.Fatalf("HashPhrase error = %v", err)
	}
	hashB, err := preview.HashPhrase("same phrase")
	if err != nil {
		t.Fatalf("HashPhrase error = %v", err)
	}
	if hashA == hashB {
		t.Fatalf("HashPhrase returned identical hashes for two calls, want bcrypt's per-call salt to differ")
	}
	if !preview.CheckPhrase("same phrase", hashA) || !preview.CheckPhrase("same phrase", hashB) {
		t.Fatalf("both hashes should still verify the same phrase")
	}
}
