// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package efmt

import (
	"context"
	"testing"
)

func newTestStream(t *testing.T, input string) *TokenStream {
	t.Helper()
	lexer := NewLexer(context.Background(), "test.erl", []byte(input), nil)
	return NewTokenStream(lexer)
}

func TestTokenStream_PeekDoesNotConsume(t *testing.T) {
	s := newTestStream(t, "foo bar")
	first := s.Peek(0)
	again := s.Peek(0)
	if first != again {
		t.Fatalf("Peek(0) returned different tokens on repeated calls")
	}
	if got, want := first.Text, "foo"; got != want {
		t.Fatalf("Peek(0).Text = %q, want %q", got, want)
	}
}

func TestTokenStream_PeekAheadThenAdvance(t *testing.T) {
	s := newTestStream(t, "foo bar baz")
	if got, want := s.Peek(1).Text, "bar"; got != want {
		t.Fatalf("Peek(1).Text = %q, want %q", got, want)
	}
	if got, want := s.Peek(2).Text, "baz"; got != want {
		t.Fatalf("Peek(2).Text = %q, want %q", got, want)
	}
	if got, want := s.Advance().Text, "foo"; got != want {
		t.Fatalf("Advance().Text = %q, want %q", got, want)
	}
	if got, want := s.Current().Text, "bar"; got != want {
		t.Fatalf("Current().Text = %q, want %q", got, want)
	}
}

func TestTokenStream_AdvanceAtEndOfInputIsIdempotent(t *testing.T) {
	s := newTestStream(t, "foo")
	s.Advance() // foo
	if !s.AtEnd() {
		t.Fatalf("AtEnd() = false after consuming the only token, want true")
	}
	first := s.Advance()
	second := s.Advance()
	if first != second {
		t.Fatalf("Advance() past EndOfInput returned different tokens")
	}
	if first.Kind != EndOfInput {
		t.Fatalf("Advance() past end = %v, want EndOfInput", first.Kind)
	}
}

func TestTokenStream_MarkResetRewindsCursor(t *testing.T) {
	s := newTestStream(t, "foo bar baz")
	s.Advance() // foo
	mark := s.Mark()
	s.Advance() // bar
	s.Advance() // baz
	s.Reset(mark)
	if got, want := s.Current().Text, "bar"; got != want {
		t.Fatalf("Current().Text after Reset = %q, want %q", got, want)
	}
}

func TestTokenStream_MarkCommitKeepsProgress(t *testing.T) {
	s := newTestStream(t, "foo bar baz")
	mark := s.Mark()
	s.Advance() // foo
	s.Advance() // bar
	s.Commit(mark)
	if got, want := s.Current().Text, "baz"; got != want {
		t.Fatalf("Current().Text after Commit = %q, want %q", got, want)
	}
}

func TestTokenStream_NestedMarks(t *testing.T) {
	s := newTestStream(t, "a b c d")
	outer := s.Mark()
	s.Advance() // a
	inner := s.Mark()
	s.Advance() // b
	s.Reset(inner)
	if got, want := s.Current().Text, "b"; got != want {
		t.Fatalf("Current().Text after inner Reset = %q, want %q", got, want)
	}
	s.Reset(outer)
	if got, want := s.Current().Text, "a"; got != want {
		t.Fatalf("Current().Text after outer Reset = %q, want %q", got, want)
	}
}

func TestTokenStream_ExpectSymbolConsumesOnMatch(t *testing.T) {
	s := newTestStream(t, "-> foo")
	tok, err := s.expectSymbol(SymArrowRight)
	if err != nil {
		t.Fatalf("expectSymbol(%q) error = %v", SymArrowRight, err)
	}
	if got, want := tok.Text, SymArrowRight; got != want {
		t.Fatalf("expectSymbol returned Text = %q, want %q", got, want)
	}
	if got, want := s.Current().Text, "foo"; got != want {
		t.Fatalf("Current().Text after expectSymbol = %q, want %q", got, want)
	}
}

func TestTokenStream_ExpectSymbolDoesNotConsumeOnMismatch(t *testing.T) {
	s := newTestStream(t, "foo")
	_, err := s.expectSymbol(SymArrowRight)
	if err == nil {
		t.Fatalf("expectSymbol(%q) error = nil, want an error", SymArrowRight)
	}
	if got, want := s.Current().Text, "foo"; got != want {
		t.Fatalf("Current().Text after failed expectSymbol = %q, want %q (should not consume)", got, want)
	}
}

func TestTokenStream_ExpectKeyword(t *testing.T) {
	s := newTestStream(t, "case")
	tok, err := s.expectKeyword(KwCase)
	if err != nil {
		t.Fatalf("expectKeyword(%q) error = %v", KwCase, err)
	}
	if got, want := tok.Text, KwCase; got != want {
		t.Fatalf("expectKeyword returned Text = %q, want %q", got, want)
	}
}

func TestTokenStream_ExpectKind(t *testing.T) {
	s := newTestStream(t, "42")
	tok, err := s.expectKind(Integer)
	if err != nil {
		t.Fatalf("expectKind(Integer) error = %v", err)
	}
	if got, want := tok.Text, "42"; got != want {
		t.Fatalf("expectKind returned Text = %q, want %q", got, want)
	}
}
