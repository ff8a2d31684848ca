// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package efmt

// TokenStream is a cursor over a Lexer's output with unbounded lookahead
// and transactional backtracking. Parsers never call the Lexer directly;
// every token they see passes through here so that speculative parses can
// be rewound without re-lexing.
//
// The queue holds every token the lexer has produced but the stream
// hasn't yet discarded past the earliest open transaction's mark. Once
// there are no open transactions, Advance discards every token behind
// the cursor, keeping only the current token and any lookahead already
// peeked, to bound memory on long files.
type TokenStream struct {
	lexer *Lexer
	queue []*Token // queue[pos] is current
	pos   int

	marks []int
}

// NewTokenStream wraps lex in a TokenStream positioned at the first token.
func NewTokenStream(lex *Lexer) *TokenStream {
	s := &TokenStream{lexer: lex}
	s.fill(1)
	return s
}

// Current returns the token at the cursor without consuming it.
func (s *TokenStream) Current() *Token {
	return s.Peek(0)
}

// Peek returns the token n positions ahead of the cursor (n=0 is Current),
// extending the queue from the lexer as needed.
func (s *TokenStream) Peek(n int) *Token {
	s.fill(n + 1)
	idx := s.pos + n
	if idx >= len(s.queue) {
		return s.queue[len(s.queue)-1] // EndOfInput, sticky
	}
	return s.queue[idx]
}

// Advance consumes the current token and returns it, moving the cursor
// forward unless already at EndOfInput.
func (s *TokenStream) Advance() *Token {
	tok := s.Current()
	if tok.Kind != EndOfInput {
		s.pos++
	}
	s.compact()
	return tok
}

// AtEnd reports whether the cursor is on the EndOfInput token.
func (s *TokenStream) AtEnd() bool {
	return s.Current().Kind == EndOfInput
}

// Mark opens a transaction at the current cursor position and returns a
// token usable with Reset or Commit.
func (s *TokenStream) Mark() int {
	m := s.pos
	s.marks = append(s.marks, m)
	return m
}

// Reset rewinds the cursor to the position recorded by Mark and closes
// that transaction. Used when a speculative parse fails and an
// alternative must be tried from the same starting point.
func (s *TokenStream) Reset(mark int) {
	s.pos = mark
	s.popMark(mark)
}

// Commit closes the transaction opened by Mark without moving the
// cursor, keeping whatever progress the speculative parse made.
func (s *TokenStream) Commit(mark int) {
	s.popMark(mark)
	s.compact()
}

func (s *TokenStream) popMark(mark int) {
	for i := len(s.marks) - 1; i >= 0; i-- {
		if s.marks[i] == mark {
			s.marks = append(s.marks[:i], s.marks[i+1:]...)
			return
		}
	}
}

// fill ensures at least n tokens are buffered from the cursor forward.
func (s *TokenStream) fill(n int) {
	for s.pos+n > len(s.queue) {
		if len(s.queue) > 0 && s.queue[len(s.queue)-1].Kind == EndOfInput {
			break
		}
		s.queue = append(s.queue, s.lexer.Scan())
	}
}

// compact discards buffered tokens behind the earliest open transaction
// (or behind the cursor, if none are open) to bound memory use.
func (s *TokenStream) compact() {
	low := s.pos
	for _, m := range s.marks {
		if m < low {
			low = m
		}
	}
	if low <= 0 {
		return
	}
	s.queue = s.queue[low:]
	s.pos -= low
	for i := range s.marks {
		s.marks[i] -= low
	}
}

// spliceTokens inserts toks at the cursor, so the next Current/Advance
// calls see them before anything still buffered from the lexer. Used by
// macro expansion to make a "?NAME" use's replacement tokens look, to
// the rest of the parser, exactly like they'd been lexed in place.
func (s *TokenStream) spliceTokens(toks []*Token) {
	if len(toks) == 0 {
		return
	}
	s.fill(1) // ensure queue[pos:] is populated before we splice into it
	tail := append([]*Token{}, s.queue[s.pos:]...)
	s.queue = append(s.queue[:s.pos], append(append([]*Token{}, toks...), tail...)...)
	for i := range s.marks {
		if s.marks[i] > s.pos {
			s.marks[i] += len(toks)
		}
	}
}

// expectKind consumes and returns the current token if it has kind k,
// otherwise returns a BadNode-style error without consuming.
func (s *TokenStream) expectKind(k Kind) (*Token, error) {
	tok := s.Current()
	if tok.Kind != k {
		return nil, &ParseError{Kind: UnexpectedToken, Region: tok.Region, Message: "expected token kind " + kindName(k) + ", found " + kindName(tok.Kind)}
	}
	return s.Advance(), nil
}

// expectSymbol consumes and returns the current token if it is the
// symbol text, otherwise returns an error without consuming.
func (s *TokenStream) expectSymbol(text string) (*Token, error) {
	tok := s.Current()
	if !tok.IsSymbol(text) {
		return nil, &ParseError{Kind: UnexpectedToken, Region: tok.Region, Message: "expected symbol " + text + ", found " + tok.Text}
	}
	return s.Advance(), nil
}

// expectKeyword consumes and returns the current token if it is the
// keyword text, otherwise returns an error without consuming.
func (s *TokenStream) expectKeyword(text string) (*Token, error) {
	tok := s.Current()
	if !tok.IsKeyword(text) {
		return nil, &ParseError{Kind: UnexpectedToken, Region: tok.Region, Message: "expected keyword " + text + ", found " + tok.Text}
	}
	return s.Advance(), nil
}

func kindName(k Kind) string {
	switch k {
	case Atom:
		return "Atom"
	case Variable:
		return "Variable"
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case Char:
		return "Char"
	case String:
		return "String"
	case KeywordTok:
		return "Keyword"
	case Symbol:
		return "Symbol"
	case Comment:
		return "Comment"
	case Whitespace:
		return "Whitespace"
	case EndOfLine:
		return "EndOfLine"
	case EndOfInput:
		return "EndOfInput"
	default:
		return "Unknown"
	}
}
