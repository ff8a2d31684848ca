// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package efmt

// MacroDef is one "-define(NAME(args), replacement)." or
// "-define(NAME, replacement)." directive, recorded in a MacroDirectory as
// it's encountered so later "?NAME" and "?NAME(...)" uses can be expanded.
type MacroDef struct {
	Name        string
	Params      []string // nil for a non-functional macro
	Replacement []*Token  // raw tokens, re-lexed positions but not yet expanded
}

func (m *MacroDef) IsFunctional() bool { return m.Params != nil }

// MacroDirectory accumulates MacroDefs in source order. A later -define
// of the same (name, arity) shadows an earlier one, matching how the
// preprocessor resolves macro uses textually rather than lexically.
type MacroDirectory struct {
	byKey map[string]*MacroDef
}

func NewMacroDirectory(predefined map[string]string) *MacroDirectory {
	d := &MacroDirectory{byKey: make(map[string]*MacroDef)}
	for name, value := range predefined {
		d.Define(&MacroDef{Name: name, Replacement: []*Token{{Kind: Atom, Text: value}}})
	}
	return d
}

func macroKey(name string, arity int) string {
	if arity < 0 {
		return name
	}
	return name + "/" + itoa(arity)
}

// Define registers def, keyed by name and arity (functional macros of
// different arity coexist; a non-functional macro has arity -1 and
// shadows any earlier non-functional definition of the same name).
func (d *MacroDirectory) Define(def *MacroDef) {
	arity := -1
	if def.IsFunctional() {
		arity = len(def.Params)
	}
	d.byKey[macroKey(def.Name, arity)] = def
}

// Lookup finds the macro definition matching name called with argCount
// arguments (-1 for a use with no parenthesized argument list at all).
func (d *MacroDirectory) Lookup(name string, argCount int) (*MacroDef, bool) {
	if def, ok := d.byKey[macroKey(name, argCount)]; ok {
		return def, true
	}
	if def, ok := d.byKey[macroKey(name, -1)]; ok && argCount <= 0 {
		return def, true
	}
	return nil, false
}

// levelState counts open/close delimiters while capturing one macro
// argument, so a comma inside nested "( ) { } [ ] << >>" or a begin/end,
// case/end, etc. block doesn't end the argument early. This mirrors the
// five-counter state machine in the original formatter: parens, braces,
// brackets, bitstring double-angles, and block keywords all nest
// independently and must all be back at zero before a top-level comma or
// closing paren ends the argument.
type levelState struct {
	parens, braces, brackets, bitstrings, blocks int
}

func (ls levelState) atTop() bool {
	return ls.parens == 0 && ls.braces == 0 && ls.brackets == 0 && ls.bitstrings == 0 && ls.blocks == 0
}

// blockOpeners are keywords that open a construct requiring a matching
// "end", tracked by the blocks counter.
var blockOpeners = map[string]bool{
	KwBegin: true, KwCase: true, KwIf: true, KwReceive: true, KwTry: true,
}

// update advances ls in response to seeing tok, given the token that
// follows it (needed to disambiguate "fun" as a block opener — "fun F/1"
// and "fun(X) -> ... end" both start with "fun", but only the latter
// needs an "end"; the lookahead is one token: a following "(" or a
// variable/atom naming a local/remote function reference).
func (ls *levelState) update(tok, next *Token) {
	switch {
	case tok.IsSymbol(SymOpenParen):
		ls.parens++
	case tok.IsSymbol(SymCloseParen):
		ls.parens--
	case tok.IsSymbol(SymOpenBrace):
		ls.braces++
	case tok.IsSymbol(SymCloseBrace):
		ls.braces--
	case tok.IsSymbol(SymOpenBracket):
		ls.brackets++
	case tok.IsSymbol(SymCloseBracket):
		ls.brackets--
	case tok.IsSymbol(SymOpenBitstring):
		ls.bitstrings++
	case tok.IsSymbol(SymCloseBitstr):
		ls.bitstrings--
	case tok.IsKeyword(KwFun):
		if next != nil && next.IsSymbol(SymOpenParen) {
			ls.blocks++
		}
		// "fun Name/Arity" and "fun Mod:Name/Arity" are references, not
		// blocks, and need no matching "end".
	case blockOpeners[tok.Text] && tok.Kind == KeywordTok:
		ls.blocks++
	case tok.IsKeyword(KwEnd):
		ls.blocks--
	}
}

// captureMacroArgs scans a macro call's argument list starting just past
// the opening "(", splitting on top-level commas and stopping at the
// matching top-level ")". Tokens already flagged MacroExpanded are opaque
// to this counting, per the transparency invariant: a nested macro's
// internal delimiters were already balanced when it was defined, so they
// must not perturb the outer capture.
func captureMacroArgs(toks []*Token) (args [][]*Token, rest []*Token, err *ParseError) {
	var ls levelState
	var cur []*Token
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		if tok.MacroExpanded {
			cur = append(cur, tok)
			continue
		}
		if ls.atTop() && tok.IsSymbol(SymCloseParen) {
			args = append(args, cur)
			return args, toks[i+1:], nil
		}
		if ls.atTop() && tok.IsSymbol(SymComma) {
			args = append(args, cur)
			cur = nil
			continue
		}
		var next *Token
		if i+1 < len(toks) {
			next = toks[i+1]
		}
		ls.update(tok, next)
		cur = append(cur, tok)
	}
	return nil, nil, &ParseError{Kind: UnbalancedDelimiter, Message: "unterminated macro argument list"}
}

// expand substitutes actualArgs for def.Params in def.Replacement,
// returning tokens whose Region is rewritten to callSite (so diagnostics
// and layout see the call's position) and whose MacroExpanded flag is
// set (so the delimiter-balancing above treats them as opaque on any
// enclosing capture).
func expand(def *MacroDef, actualArgs [][]*Token, callSite Region) ([]*Token, *ParseError) {
	if def.IsFunctional() && len(actualArgs) != len(def.Params) {
		return nil, &ParseError{Kind: MacroArityMismatch, Region: callSite, Message: "macro " + def.Name + " expects " + itoa(len(def.Params)) + " arguments, got " + itoa(len(actualArgs))}
	}
	bindings := make(map[string][]*Token, len(def.Params))
	for i, p := range def.Params {
		bindings[p] = actualArgs[i]
	}
	var out []*Token
	for _, tok := range def.Replacement {
		if tok.Kind == Variable {
			if arg, ok := bindings[tok.Text]; ok {
				out = append(out, rewriteRegion(arg, callSite)...)
				continue
			}
		}
		clone := *tok
		clone.Region = callSite
		clone.MacroExpanded = true
		out = append(out, &clone)
	}
	return out, nil
}

func rewriteRegion(toks []*Token, to Region) []*Token {
	out := make([]*Token, len(toks))
	for i, t := range toks {
		clone := *t
		clone.Region = to
		clone.MacroExpanded = true
		out[i] = &clone
	}
	return out
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
