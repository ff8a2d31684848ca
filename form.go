// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package efmt

// FunctionClause is "[Name](Args) [when Guard] -> Body". Name is absent
// inside a fun literal's clauses and present in a top-level function
// definition, where every clause repeats it.
type FunctionClause struct {
	BaseNode
	Name  Maybe[*Token]
	Open  *Token
	Args  Items[Expr]
	Close *Token
	When  Maybe[*Token]
	Guard Maybe[GuardSeq]
	Arrow *Token
	Body  ExprSeq
}

func (FunctionClause) exprNode() {}
func (c FunctionClause) Region() Region { return c.BaseNode.Reg }

func (p *Parser) parseFunctionClause(named bool) *FunctionClause {
	cl := &FunctionClause{}
	start := p.stream.Current().Region
	if named {
		name, _ := p.stream.expectKind(Atom)
		cl.Name = some(name)
	}
	open, _ := p.stream.expectSymbol(SymOpenParen)
	args := p.parseExprItems(SymCloseParen)
	close, _ := p.stream.expectSymbol(SymCloseParen)
	cl.Open, cl.Args, cl.Close = open, args, close
	if p.stream.Current().IsKeyword(KwWhen) {
		when := p.stream.Advance()
		guard := p.parseGuardSeq()
		cl.When, cl.Guard = some(when), some(guard)
	}
	arrow, _ := p.stream.expectSymbol(SymArrowRight)
	body := p.parseExprSeq()
	cl.Arrow, cl.Body = arrow, body
	cl.Reg = Region{Start: start.Start, End: body.Region().End}
	return cl
}

// Form is any top-level module construct: an attribute directive or a
// function definition.
type Form interface {
	Node
	formNode()
}

func (*AttributeForm) formNode() {}
func (*FunctionDef) formNode()   {}
func (*BadNode) formNode()       {}

// AttributeForm is "-name(Args)." or "-name Value." for any of the
// directive attributes: module, export, import, define, include,
// include_lib, record, spec, type, opaque, callback, and any
// user-defined attribute (which the formatter must still print
// losslessly even though it doesn't understand its semantics).
type AttributeForm struct {
	BaseNode
	Dash  *Token
	Name  *Token
	Open  Maybe[*Token]
	Args  Items[Expr]
	Close Maybe[*Token]
	Dot   *Token

	// Kind-specific payloads, populated only for the attributes the
	// formatter needs deeper structure for; the rest are rendered purely
	// from Args.
	Define  *MacroDef // set when Name.Text == "define"
	Record  Maybe[RecordDecl]
	TypeDecl Maybe[TypeDecl]
	Spec    Maybe[SpecDecl]
}

// RecordDecl is the payload of "-record(name, {field, field = Default ::
// Type, ...})."
type RecordDecl struct {
	BaseNode
	Name   *Token
	Open   *Token
	Fields Items[RecordFieldDecl]
	Close  *Token
}

func (RecordDecl) exprNode() {}
func (r RecordDecl) Region() Region { return r.BaseNode.Reg }

type RecordFieldDecl struct {
	BaseNode
	Name    *Token
	Default Maybe[Expr]
	Colons  Maybe[*Token]
	Type    Maybe[Expr]
}

func (RecordFieldDecl) exprNode() {}
func (f RecordFieldDecl) Region() Region { return f.BaseNode.Reg }

// TypeDecl is the payload of "-type name(Vars) :: Definition." and
// "-opaque name(Vars) :: Definition.".
type TypeDecl struct {
	BaseNode
	Name       *Token
	Open       *Token
	Vars       Items[Expr]
	Close      *Token
	ColonColon *Token
	Definition Expr
}

func (TypeDecl) exprNode() {}
func (t TypeDecl) Region() Region { return t.BaseNode.Reg }

// SpecDecl is the payload of "-spec name(ArgTypes) -> ResultType." with
// optional "; ..." overload alternatives and an optional "Mod:" prefix.
type SpecDecl struct {
	BaseNode
	Module     Maybe[*Token]
	Colon      Maybe[*Token]
	Name       *Token
	Clauses    NonEmptyItems[SpecClause]
}

func (SpecDecl) exprNode() {}
func (s SpecDecl) Region() Region { return s.BaseNode.Reg }

type SpecClause struct {
	BaseNode
	Open   *Token
	Args   Items[Expr]
	Close  *Token
	Arrow  *Token
	Result Expr
	When   Maybe[*Token]
	Guard  Maybe[Items[SpecConstraint]]
}

func (SpecClause) exprNode() {}
func (s SpecClause) Region() Region { return s.BaseNode.Reg }

// SpecConstraint is one "Name :: Type" entry in a -spec's "when" clause,
// binding a type variable used in the clause's args/result to a type.
// "::" has no meaning as a general infix operator, so this is parsed
// with its own grammar rather than through parseExpr's precedence
// climbing.
type SpecConstraint struct {
	BaseNode
	Name       Expr
	ColonColon *Token
	Type       Expr
}

func (SpecConstraint) exprNode() {}
func (s SpecConstraint) Region() Region { return s.BaseNode.Reg }

// FunctionDef is a top-level function definition: one or more clauses
// sharing a name and arity, separated by ";" and terminated by ".".
type FunctionDef struct {
	BaseNode
	Clauses Clauses[*FunctionClause]
	Dot     *Token
}

// Module is the root of a parsed source file: a sequence of forms
// followed by end of input.
type Module struct {
	BaseNode
	Forms []Form
	Eof   *Token
}

// ParseModule parses an entire source file's forms.
func (p *Parser) ParseModule() *Module {
	start := p.stream.Current().Region
	var forms []Form
	for !p.stream.AtEnd() {
		forms = append(forms, p.parseForm())
	}
	eof := p.stream.Current()
	end := eof.Region
	if len(forms) > 0 {
		start = forms[0].Region()
	}
	return &Module{BaseNode: BaseNode{Reg: Region{Start: start.Start, End: end.End}}, Forms: forms, Eof: eof}
}

func (p *Parser) parseForm() Form {
	tok := p.stream.Current()
	if tok.IsSymbol(SymMinus) {
		return p.parseAttributeForm()
	}
	if tok.Is(Atom) {
		return p.parseFunctionDef()
	}
	err := p.errorf(tok.Region, UnexpectedToken, "expected attribute or function definition, found "+tok.Text)
	p.stream.Advance()
	return p.recordBad(err)
}

func (p *Parser) parseFunctionDef() *FunctionDef {
	clauses := p.parseFunctionClauses(true)
	end := clauses.Region().End
	dot, err := p.stream.expectSymbol(SymDot)
	if err != nil {
		p.recordBad(err)
	} else {
		end = dot.Region.End
	}
	return &FunctionDef{
		BaseNode: BaseNode{Reg: Region{Start: clauses.Region().Start, End: end}},
		Clauses:  clauses, Dot: dot,
	}
}

func (p *Parser) parseAttributeForm() *AttributeForm {
	dash := p.stream.Advance()
	name, err := p.stream.expectKind(Atom)
	if err != nil {
		p.recordBad(err)
		form := &AttributeForm{Dash: dash, Name: name, Reg: Region{Start: dash.Region.Start, End: dash.Region.End}}
		return form
	}
	form := &AttributeForm{Dash: dash, Name: name}

	switch name.Text {
	case "define":
		p.parseDefineAttribute(form)
	case "record":
		p.parseRecordAttribute(form)
	case "type", "opaque":
		p.parseTypeAttribute(form)
	case "spec", "callback":
		p.parseSpecAttribute(form)
	default:
		p.parseGenericAttribute(form)
	}
	end := name.Region.End
	dot, err := p.stream.expectSymbol(SymDot)
	if err != nil {
		p.recordBad(err)
	} else {
		end = dot.Region.End
	}
	form.Dot = dot
	form.Reg = Region{Start: dash.Region.Start, End: end}
	return form
}

func (p *Parser) parseGenericAttribute(form *AttributeForm) {
	if p.stream.Current().IsSymbol(SymOpenParen) {
		open, _ := p.stream.expectSymbol(SymOpenParen)
		args := p.parseExprItems(SymCloseParen)
		close, _ := p.stream.expectSymbol(SymCloseParen)
		form.Open, form.Args, form.Close = some(open), args, some(close)
	} else {
		// bare "-name Value." attribute with no parens, e.g. some
		// user-defined attributes; treat the rest up to "." as one
		// expression.
		v := p.parseExpr(1)
		form.Args = someItems(newNonEmptyItems([]Expr{v}, nil))
	}
}

// parseDefineAttribute parses "-define(Name(Params), Replacement)." or
// "-define(Name, Replacement)." and registers the macro in the parser's
// directory so later uses expand correctly.
func (p *Parser) parseDefineAttribute(form *AttributeForm) {
	open, _ := p.stream.expectSymbol(SymOpenParen)
	nameTok, _ := p.stream.expectKind(Atom)
	def := &MacroDef{Name: ""}
	if nameTok != nil {
		def.Name = nameTok.Text
	}
	if p.stream.Current().IsSymbol(SymOpenParen) {
		p.stream.Advance()
		for !p.stream.Current().IsSymbol(SymCloseParen) {
			param, _ := p.stream.expectKind(Variable)
			if param != nil {
				def.Params = append(def.Params, param.Text)
			}
			if p.stream.Current().IsSymbol(SymComma) {
				p.stream.Advance()
				continue
			}
			break
		}
		p.stream.expectSymbol(SymCloseParen)
		if def.Params == nil {
			def.Params = []string{}
		}
	}
	p.stream.expectSymbol(SymComma)
	var ls levelState
	for (!ls.atTop() || !p.stream.Current().IsSymbol(SymCloseParen)) && !p.stream.AtEnd() {
		tok := p.stream.Current()
		ls.update(tok, p.stream.Peek(1))
		def.Replacement = append(def.Replacement, p.stream.Advance())
	}
	close, _ := p.stream.expectSymbol(SymCloseParen)
	form.Open, form.Close = some(open), some(close)
	form.Define = def
	if def.Name != "" {
		p.macros.Define(def)
	}
}

func (p *Parser) parseRecordAttribute(form *AttributeForm) {
	open, _ := p.stream.expectSymbol(SymOpenParen)
	name, _ := p.stream.expectKind(Atom)
	p.stream.expectSymbol(SymComma)
	fopen, _ := p.stream.expectSymbol(SymOpenBrace)
	fields := p.parseRecordFields()
	fclose, _ := p.stream.expectSymbol(SymCloseBrace)
	close, _ := p.stream.expectSymbol(SymCloseParen)
	form.Open, form.Close = some(open), some(close)
	form.Record = some(RecordDecl{
		BaseNode: BaseNode{Reg: Region{Start: open.Region.Start, End: close.Region.End}},
		Name:     name, Open: fopen, Fields: fields, Close: fclose,
	})
}

func (p *Parser) parseRecordFields() Items[RecordFieldDecl] {
	start := p.stream.Current().Region
	if p.stream.Current().IsSymbol(SymCloseBrace) {
		return emptyItems[RecordFieldDecl](start)
	}
	var items []RecordFieldDecl
	var delims []*Token
	items = append(items, p.parseRecordField())
	for p.stream.Current().IsSymbol(SymComma) {
		delims = append(delims, p.stream.Advance())
		items = append(items, p.parseRecordField())
	}
	return someItems(newNonEmptyItems(items, delims))
}

func (p *Parser) parseRecordField() RecordFieldDecl {
	name, _ := p.stream.expectKind(Atom)
	f := RecordFieldDecl{Name: name}
	reg := Region{}
	if name != nil {
		reg = name.Region
	}
	if p.stream.Current().IsSymbol(SymEq) {
		p.stream.Advance()
		def := p.parseExpr(precMatch + 1)
		f.Default = some(def)
		reg.End = def.Region().End
	}
	if p.stream.Current().IsSymbol(SymColonColon) {
		colons := p.stream.Advance()
		typ := p.parseExpr(1)
		f.Colons, f.Type = some(colons), some(typ)
		reg.End = typ.Region().End
	}
	f.Reg = reg
	return f
}

// parseTypeAttribute parses "-type Name(Vars) :: Definition." and
// "-opaque Name(Vars) :: Definition." — unlike -record, a type
// declaration has no parens wrapping the whole form; "Name(Vars)" is
// the only parenthesized part.
func (p *Parser) parseTypeAttribute(form *AttributeForm) {
	name, _ := p.stream.expectKind(Atom)
	vopen, _ := p.stream.expectSymbol(SymOpenParen)
	vars := p.parseExprItems(SymCloseParen)
	vclose, _ := p.stream.expectSymbol(SymCloseParen)
	colons, _ := p.stream.expectSymbol(SymColonColon)
	def := p.parseExpr(1)
	start := vopen.Region.Start
	if name != nil {
		start = name.Region.Start
	}
	end := vclose.Region.End
	if def != nil {
		end = def.Region().End
	}
	form.TypeDecl = some(TypeDecl{
		BaseNode:   BaseNode{Reg: Region{Start: start, End: end}},
		Name:       name, Open: vopen, Vars: vars, Close: vclose, ColonColon: colons, Definition: def,
	})
}

// parseSpecAttribute parses "-spec Name(Args) -> Result." and
// "-callback Name(Args) -> Result." (optionally "-spec Mod:Name(...)
// -> Result."), again with no parens wrapping the whole form.
func (p *Parser) parseSpecAttribute(form *AttributeForm) {
	var module Maybe[*Token]
	var colon Maybe[*Token]
	name, _ := p.stream.expectKind(Atom)
	if p.stream.Current().IsSymbol(SymColon) {
		c := p.stream.Advance()
		second, _ := p.stream.expectKind(Atom)
		module, colon, name = some(name), some(c), second
	}
	var clauses []SpecClause
	var delims []*Token
	clauses = append(clauses, p.parseSpecClause())
	for p.stream.Current().IsSymbol(SymSemicolon) {
		delims = append(delims, p.stream.Advance())
		clauses = append(clauses, p.parseSpecClause())
	}
	start := Position{}
	if name != nil {
		start = name.Region.Start
	}
	end := Position{}
	if len(clauses) > 0 {
		end = clauses[len(clauses)-1].Region().End
	}
	form.Spec = some(SpecDecl{
		BaseNode: BaseNode{Reg: Region{Start: start, End: end}},
		Module:   module, Colon: colon, Name: name, Clauses: newNonEmptyItems(clauses, delims),
	})
}

func (p *Parser) parseSpecClause() SpecClause {
	open, _ := p.stream.expectSymbol(SymOpenParen)
	args := p.parseExprItems(SymCloseParen)
	close, _ := p.stream.expectSymbol(SymCloseParen)
	arrow, _ := p.stream.expectSymbol(SymArrowRight)
	result := p.parseExpr(1)
	reg := Region{Start: open.Region.Start, End: result.Region().End}
	sc := SpecClause{Open: open, Args: args, Close: close, Arrow: arrow, Result: result}
	if p.stream.Current().IsKeyword(KwWhen) {
		when := p.stream.Advance()
		guard := p.parseSpecConstraints()
		sc.When, sc.Guard = some(when), some(guard)
		if guard.Len > 0 {
			reg.End = guard.List.Items[guard.Len-1].Region().End
		}
	}
	sc.Reg = reg
	return sc
}

// parseSpecConstraints parses the comma-separated "Name :: Type, ..."
// list following a -spec clause's "when".
func (p *Parser) parseSpecConstraints() Items[SpecConstraint] {
	start := p.stream.Current().Region
	if p.stream.Current().IsSymbol(SymDot) {
		return emptyItems[SpecConstraint](start)
	}
	var items []SpecConstraint
	var delims []*Token
	items = append(items, p.parseSpecConstraint())
	for p.stream.Current().IsSymbol(SymComma) {
		delims = append(delims, p.stream.Advance())
		items = append(items, p.parseSpecConstraint())
	}
	return someItems(newNonEmptyItems(items, delims))
}

func (p *Parser) parseSpecConstraint() SpecConstraint {
	name := p.parseExpr(1)
	colons, _ := p.stream.expectSymbol(SymColonColon)
	typ := p.parseExpr(1)
	return SpecConstraint{
		BaseNode:   BaseNode{Reg: Region{Start: name.Region().Start, End: typ.Region().End}},
		Name:       name, ColonColon: colons, Type: typ,
	}
}
