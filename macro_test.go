// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package efmt

import "testing"

func sym(text string) *Token   { return &Token{Kind: Symbol, Text: text} }
func kw(text string) *Token    { return &Token{Kind: KeywordTok, Text: text} }
func variable(text string) *Token { return &Token{Kind: Variable, Text: text} }
func atomTok(text string) *Token  { return &Token{Kind: Atom, Text: text} }

func TestMacroDirectory_DefineAndLookup(t *testing.T) {
	d := NewMacroDirectory(nil)
	d.Define(&MacroDef{Name: "FOO", Replacement: []*Token{atomTok("bar")}})

	def, ok := d.Lookup("FOO", -1)
	if !ok {
		t.Fatalf("Lookup(FOO, -1) ok = false, want true")
	}
	if def.IsFunctional() {
		t.Fatalf("FOO.IsFunctional() = true, want false")
	}
}

func TestMacroDirectory_FunctionalMacrosCoexistByArity(t *testing.T) {
	d := NewMacroDirectory(nil)
	d.Define(&MacroDef{Name: "ADD", Params: []string{"X"}, Replacement: []*Token{variable("X")}})
	d.Define(&MacroDef{Name: "ADD", Params: []string{"X", "Y"}, Replacement: []*Token{variable("X"), sym("+"), variable("Y")}})

	one, ok := d.Lookup("ADD", 1)
	if !ok || len(one.Params) != 1 {
		t.Fatalf("Lookup(ADD, 1) = %+v, %v, want arity-1 def", one, ok)
	}
	two, ok := d.Lookup("ADD", 2)
	if !ok || len(two.Params) != 2 {
		t.Fatalf("Lookup(ADD, 2) = %+v, %v, want arity-2 def", two, ok)
	}
}

func TestMacroDirectory_LaterDefineShadowsEarlier(t *testing.T) {
	d := NewMacroDirectory(nil)
	d.Define(&MacroDef{Name: "X", Replacement: []*Token{atomTok("first")}})
	d.Define(&MacroDef{Name: "X", Replacement: []*Token{atomTok("second")}})

	def, _ := d.Lookup("X", -1)
	if got, want := def.Replacement[0].Text, "second"; got != want {
		t.Fatalf("Replacement[0].Text = %q, want %q", got, want)
	}
}

func TestMacroDirectory_Predefined(t *testing.T) {
	d := NewMacroDirectory(map[string]string{"VSN": "1"})
	def, ok := d.Lookup("VSN", -1)
	if !ok {
		t.Fatalf("Lookup(VSN, -1) ok = false, want true")
	}
	if got, want := def.Replacement[0].Text, "1"; got != want {
		t.Fatalf("Replacement[0].Text = %q, want %q", got, want)
	}
}

func TestCaptureMacroArgs_SplitsOnTopLevelCommas(t *testing.T) {
	// X, Y) rest...
	toks := []*Token{variable("X"), sym(","), variable("Y"), sym(")"), atomTok("rest")}
	args, rest, err := captureMacroArgs(toks)
	if err != nil {
		t.Fatalf("captureMacroArgs error = %v", err)
	}
	if got, want := len(args), 2; got != want {
		t.Fatalf("len(args) = %d, want %d", got, want)
	}
	if got, want := args[0][0].Text, "X"; got != want {
		t.Fatalf("args[0][0].Text = %q, want %q", got, want)
	}
	if got, want := args[1][0].Text, "Y"; got != want {
		t.Fatalf("args[1][0].Text = %q, want %q", got, want)
	}
	if got, want := len(rest), 1; got != want || rest[0].Text != "rest" {
		t.Fatalf("rest = %+v, want [rest]", rest)
	}
}

func TestCaptureMacroArgs_IgnoresCommaInsideNestedParens(t *testing.T) {
	// f(A, B), C)  -- one argument "f(A, B)" then "C"
	toks := []*Token{
		atomTok("f"), sym("("), variable("A"), sym(","), variable("B"), sym(")"),
		sym(","), variable("C"), sym(")"),
	}
	args, _, err := captureMacroArgs(toks)
	if err != nil {
		t.Fatalf("captureMacroArgs error = %v", err)
	}
	if got, want := len(args), 2; got != want {
		t.Fatalf("len(args) = %d, want %d", got, want)
	}
	if got, want := len(args[0]), 6; got != want {
		t.Fatalf("len(args[0]) = %d, want %d (f ( A , B ))", got, want)
	}
}

func TestCaptureMacroArgs_IgnoresCommaInsideBeginEndBlock(t *testing.T) {
	// begin A, B end)
	toks := []*Token{
		kw(KwBegin), variable("A"), sym(","), variable("B"), kw(KwEnd), sym(")"),
	}
	args, _, err := captureMacroArgs(toks)
	if err != nil {
		t.Fatalf("captureMacroArgs error = %v", err)
	}
	if got, want := len(args), 1; got != want {
		t.Fatalf("len(args) = %d, want %d", got, want)
	}
}

func TestCaptureMacroArgs_TreatsMacroExpandedTokensAsOpaque(t *testing.T) {
	// A previously-expanded token carries a ")" in its text but must not
	// be mistaken for the capture's own closing delimiter.
	expanded := &Token{Kind: Symbol, Text: ")", MacroExpanded: true}
	toks := []*Token{variable("A"), expanded, sym(")")}
	args, rest, err := captureMacroArgs(toks)
	if err != nil {
		t.Fatalf("captureMacroArgs error = %v", err)
	}
	if got, want := len(args), 1; got != want {
		t.Fatalf("len(args) = %d, want %d", got, want)
	}
	if got, want := len(args[0]), 2; got != want {
		t.Fatalf("len(args[0]) = %d, want %d", got, want)
	}
	if len(rest) != 0 {
		t.Fatalf("rest = %+v, want empty", rest)
	}
}

func TestCaptureMacroArgs_UnterminatedReturnsError(t *testing.T) {
	toks := []*Token{variable("A"), sym(",")}
	_, _, err := captureMacroArgs(toks)
	if err == nil {
		t.Fatalf("captureMacroArgs error = nil, want unterminated-list error")
	}
	if err.Kind != UnbalancedDelimiter {
		t.Fatalf("err.Kind = %v, want UnbalancedDelimiter", err.Kind)
	}
}

func TestExpand_SubstitutesParams(t *testing.T) {
	def := &MacroDef{Name: "ADD", Params: []string{"X", "Y"}, Replacement: []*Token{variable("X"), sym("+"), variable("Y")}}
	callSite := Region{Start: Position{Offset: 10, Line: 2, Column: 1}, End: Position{Offset: 20, Line: 2, Column: 11}}

	out, err := expand(def, [][]*Token{{atomTok("a")}, {atomTok("b")}}, callSite)
	if err != nil {
		t.Fatalf("expand error = %v", err)
	}
	if got, want := len(out), 3; got != want {
		t.Fatalf("len(out) = %d, want %d", got, want)
	}
	if got, want := out[0].Text, "a"; got != want {
		t.Fatalf("out[0].Text = %q, want %q", got, want)
	}
	if got, want := out[2].Text, "b"; got != want {
		t.Fatalf("out[2].Text = %q, want %q", got, want)
	}
	for i, tok := range out {
		if !tok.MacroExpanded {
			t.Fatalf("out[%d].MacroExpanded = false, want true", i)
		}
		if tok.Region != callSite {
			t.Fatalf("out[%d].Region = %+v, want %+v", i, tok.Region, callSite)
		}
	}
}

func TestExpand_ArityMismatchIsAnError(t *testing.T) {
	def := &MacroDef{Name: "ADD", Params: []string{"X", "Y"}, Replacement: []*Token{variable("X")}}
	_, err := expand(def, [][]*Token{{atomTok("a")}}, Region{})
	if err == nil {
		t.Fatalf("expand error = nil, want arity-mismatch error")
	}
	if err.Kind != MacroArityMismatch {
		t.Fatalf("err.Kind = %v, want MacroArityMismatch", err.Kind)
	}
}

func TestItoa(t *testing.T) {
	tests := map[int]string{0: "0", 7: "7", 42: "42", -3: "-3", -100: "-100"}
	for in, want := range tests {
		if got := itoa(in); got != want {
			t.Errorf("itoa(%d) = %q, want %q", in, got, want)
		}
	}
}
