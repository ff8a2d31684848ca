// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package efmt

// Parser is a recursive-descent parser over a TokenStream, consulting a
// MacroDirectory to expand "?NAME" / "?NAME(Args)" uses inline as they're
// encountered (macro expansion happens lazily, at first use, rather than
// as a separate preprocessing pass, so that a macro whose definition
// depends on another macro defined later still resolves in source order
// — matching how the preprocessor actually behaves).
type Parser struct {
	file    string
	input   []byte
	stream  *TokenStream
	macros  *MacroDirectory
	diags   []*Diagnostic
}

func NewParser(file string, input []byte, stream *TokenStream, macros *MacroDirectory) *Parser {
	return &Parser{file: file, input: input, stream: stream, macros: macros}
}

func (p *Parser) errorf(region Region, kind ErrorKind, msg string) *ParseError {
	return &ParseError{Kind: kind, Region: region, Message: msg}
}

func (p *Parser) recordBad(err *ParseError) *BadNode {
	p.diags = append(p.diags, fromParseError(p.file, err))
	return &BadNode{BaseNode: BaseNode{Reg: err.Region}, Err: err}
}

// Diagnostics returns every BadNode's corresponding Diagnostic collected
// during parsing, in source order.
func (p *Parser) Diagnostics() []*Diagnostic { return p.diags }

// parseExpr implements precedence climbing: parse a primary/unary
// expression, then resume-parse any number of infix operators whose
// precedence is >= minPrec, recursing with minPrec one higher (or equal,
// for right-associative operators) to build the right operand.
func (p *Parser) parseExpr(minPrec int) Expr {
	left := p.parseUnary()
	for {
		tok := p.stream.Current()
		if !isInfixOperator(tok) {
			return left
		}
		prec := infixPrecedence(tok)
		if prec < minPrec {
			return left
		}
		opTok := p.stream.Advance()
		nextMin := prec + 1
		if rightAssociative[opTok.Text] {
			nextMin = prec
		}
		right := p.parseExpr(nextMin)
		left = &BinaryExpr{BinaryOpLike: newBinaryOpLike(left, opTok, right)}
	}
}

// parseUnary handles prefix "+", "-", "bnot", "not", then falls through
// to a primary expression with any postfix applications (calls, record
// access/update, map update) resumed on top.
func (p *Parser) parseUnary() Expr {
	for p.stream.Current().IsSymbol(SymQuestion) {
		if !p.expandMacro() {
			break
		}
	}
	tok := p.stream.Current()
	if tok.IsSymbol(SymPlus) || tok.IsSymbol(SymMinus) || tok.IsKeyword(KwBnot) || tok.IsKeyword(KwNot) {
		op := p.stream.Advance()
		operand := p.parseUnary()
		return &UnaryExpr{BaseNode: BaseNode{Reg: Region{Start: op.Region.Start, End: operand.Region().End}}, Op: op, Operand: operand}
	}
	return p.parsePostfix(p.parsePrimary())
}

// expandMacro consumes a "?NAME" or "?NAME(Args)" use at the cursor and
// splices its expansion back onto the token stream, so the rest of the
// parser sees the replacement tokens exactly as if they'd been lexed in
// place. Reports false only when the cursor isn't on a "?" at all; a
// malformed or undefined macro use still consumes input and records a
// diagnostic, since leaving the cursor on the unconsumed "?" would loop
// parseUnary forever.
func (p *Parser) expandMacro() bool {
	if !p.stream.Current().IsSymbol(SymQuestion) {
		return false
	}
	question := p.stream.Advance()
	nameTok := p.stream.Current()
	if nameTok.Kind != Atom && nameTok.Kind != Variable && nameTok.Kind != KeywordTok {
		p.recordBad(p.errorf(nameTok.Region, UnexpectedToken, "expected macro name after ?, found "+nameTok.Text))
		return true
	}
	p.stream.Advance()
	callSite := Region{Start: question.Region.Start, End: nameTok.Region.End}

	var args [][]*Token
	argCount := -1
	if p.stream.Current().IsSymbol(SymOpenParen) {
		p.stream.Advance()
		argCount = 0
		if p.stream.Current().IsSymbol(SymCloseParen) {
			close := p.stream.Advance()
			callSite.End = close.Region.End
		} else {
			capturedArgs, end, err := p.captureMacroArgsFromStream()
			if err != nil {
				p.recordBad(err)
				return true
			}
			args = capturedArgs
			argCount = len(args)
			callSite.End = end
		}
	}

	def, ok := p.macros.Lookup(nameTok.Text, argCount)
	if !ok {
		p.recordBad(p.errorf(callSite, UndefinedMacro, "undefined macro "+nameTok.Text))
		return true
	}
	expanded, err := expand(def, args, callSite)
	if err != nil {
		p.recordBad(err)
		return true
	}
	p.stream.spliceTokens(expanded)
	return true
}

// captureMacroArgsFromStream mirrors captureMacroArgs's delimiter
// balancing but consumes directly from the live token stream, since a
// macro call's argument list must not be eagerly materialized past its
// own closing paren (the rest of the file may be arbitrarily long).
func (p *Parser) captureMacroArgsFromStream() (args [][]*Token, end Position, err *ParseError) {
	var ls levelState
	var cur []*Token
	for {
		if p.stream.AtEnd() {
			return nil, Position{}, &ParseError{Kind: UnbalancedDelimiter, Region: p.stream.Current().Region, Message: "unterminated macro argument list"}
		}
		tok := p.stream.Current()
		if tok.MacroExpanded {
			cur = append(cur, p.stream.Advance())
			continue
		}
		if ls.atTop() && tok.IsSymbol(SymCloseParen) {
			args = append(args, cur)
			end = tok.Region.End
			p.stream.Advance()
			return args, end, nil
		}
		if ls.atTop() && tok.IsSymbol(SymComma) {
			args = append(args, cur)
			cur = nil
			p.stream.Advance()
			continue
		}
		ls.update(tok, p.stream.Peek(1))
		cur = append(cur, p.stream.Advance())
	}
}

// parsePostfix resumes zero or more postfix productions on top of an
// already-parsed primary expression: "(Args)" application,
// "#Name{...}"/"#Name.Field" record access/update, "#{...}" map update,
// ":Name(Args)" remote call qualification.
func (p *Parser) parsePostfix(left Expr) Expr {
	for {
		tok := p.stream.Current()
		switch {
		case tok.IsSymbol(SymColon):
			colon := p.stream.Advance()
			callee := p.parsePrimary()
			left = &CallExpr{
				BaseNode: BaseNode{Reg: Region{Start: left.Region().Start, End: callee.Region().End}},
				Module:   some[Expr](left), Colon: some(colon), Callee: callee,
			}
			if p.stream.Current().IsSymbol(SymOpenParen) {
				left = p.finishCall(left.(*CallExpr))
			}
		case tok.IsSymbol(SymOpenParen):
			left = p.finishCall(&CallExpr{BaseNode: BaseNode{Reg: left.Region()}, Callee: left})
		case tok.IsSymbol(SymHash):
			left = p.parseRecordOrMapSuffix(left)
		default:
			return left
		}
	}
}

func (p *Parser) finishCall(call *CallExpr) *CallExpr {
	open, _ := p.stream.expectSymbol(SymOpenParen)
	args := p.parseExprItems(SymCloseParen)
	close, _ := p.stream.expectSymbol(SymCloseParen)
	call.Open, call.Args, call.Close = open, args, close
	call.Reg = Region{Start: call.Reg.Start, End: close.Region.End}
	return call
}

// parseRecordOrMapSuffix handles the "#" that follows an already-parsed
// base expression: either a map update "Base#{...}" or a record
// access/update "Base#Name.field" / "Base#Name{...}".
func (p *Parser) parseRecordOrMapSuffix(base Expr) Expr {
	hash := p.stream.Advance()
	if p.stream.Current().IsSymbol(SymOpenBrace) {
		open, _ := p.stream.expectSymbol(SymOpenBrace)
		fields := p.parseMapFields()
		close, _ := p.stream.expectSymbol(SymCloseBrace)
		return &MapExpr{
			BaseNode: BaseNode{Reg: Region{Start: base.Region().Start, End: close.Region.End}},
			Base:     some(base), Hash: hash, Open: open, Fields: fields, Close: close,
		}
	}
	name, _ := p.stream.expectKind(Atom)
	rec := &RecordExpr{Base: some(base), Hash: hash, Name: name}
	if p.stream.Current().IsSymbol(SymDot) {
		dot := p.stream.Advance()
		field, _ := p.stream.expectKind(Atom)
		rec.Dot, rec.Field = some(dot), some(field)
		rec.Reg = Region{Start: base.Region().Start, End: field.Region.End}
		return rec
	}
	open, _ := p.stream.expectSymbol(SymOpenBrace)
	fields := p.parseMapFields()
	close, _ := p.stream.expectSymbol(SymCloseBrace)
	rec.Open, rec.Fields, rec.Close = some(open), fields, some(close)
	rec.Reg = Region{Start: base.Region().Start, End: close.Region.End}
	return rec
}

// parsePrimary parses one grammar alternative with no left context:
// literals, variables, tuples, lists, maps, bare records, bitstrings,
// funs, block expressions, parenthesized expressions, and unqualified
// calls.
func (p *Parser) parsePrimary() Expr {
	tok := p.stream.Current()
	switch {
	case tok.Is(Atom):
		atom := p.stream.Advance()
		return &AtomExpr{BaseNode: BaseNode{Reg: atom.Region}, Tok: atom}
	case tok.Is(Variable):
		v := p.stream.Advance()
		return &VarExpr{BaseNode: BaseNode{Reg: v.Region}, Tok: v}
	case tok.Is(Integer):
		v := p.stream.Advance()
		return &IntExpr{BaseNode: BaseNode{Reg: v.Region}, Tok: v}
	case tok.Is(Float):
		v := p.stream.Advance()
		return &FloatExpr{BaseNode: BaseNode{Reg: v.Region}, Tok: v}
	case tok.Is(Char):
		v := p.stream.Advance()
		return &CharExpr{BaseNode: BaseNode{Reg: v.Region}, Tok: v}
	case tok.Is(String):
		v := p.stream.Advance()
		return &StringExpr{BaseNode: BaseNode{Reg: v.Region}, Tok: v}
	case tok.IsSymbol(SymOpenBrace):
		return p.parseTuple()
	case tok.IsSymbol(SymOpenBracket):
		return p.parseListOrComprehension()
	case tok.IsSymbol(SymHash):
		return p.parseMapOrRecordConstruct()
	case tok.IsSymbol(SymOpenBitstring):
		return p.parseBitstringOrComprehension()
	case tok.IsKeyword(KwFun):
		return p.parseFun()
	case tok.IsKeyword(KwCase):
		return p.parseCaseExpr()
	case tok.IsKeyword(KwIf):
		return p.parseIfExpr()
	case tok.IsKeyword(KwReceive):
		return p.parseReceiveExpr()
	case tok.IsKeyword(KwBegin):
		return p.parseBeginExpr()
	case tok.IsKeyword(KwTry):
		return p.parseTryExpr()
	case tok.IsKeyword(KwCatch):
		return p.parseCatchExpr()
	case tok.IsSymbol(SymOpenParen):
		open := p.stream.Advance()
		inner := p.parseExpr(1)
		close, _ := p.stream.expectSymbol(SymCloseParen)
		return &ParenExpr{Parenthesized: newParenthesized[Expr](open, inner, close)}
	default:
		err := p.errorf(tok.Region, UnexpectedToken, "unexpected token "+tok.Text+" in expression")
		p.stream.Advance()
		return p.recordBad(err)
	}
}

// parseExprItems parses a comma-separated, possibly-empty list of
// expressions up to (but not consuming) a token matching closeSym.
func (p *Parser) parseExprItems(closeSym string) Items[Expr] {
	start := p.stream.Current().Region
	if p.stream.Current().IsSymbol(closeSym) {
		return emptyItems[Expr](start)
	}
	var items []Expr
	var delims []*Token
	items = append(items, p.parseExpr(1))
	for p.stream.Current().IsSymbol(SymComma) {
		delims = append(delims, p.stream.Advance())
		items = append(items, p.parseExpr(1))
	}
	return someItems(newNonEmptyItems(items, delims))
}

func (p *Parser) parseTuple() *TupleExpr {
	open, _ := p.stream.expectSymbol(SymOpenBrace)
	fields := p.parseExprItems(SymCloseBrace)
	close, _ := p.stream.expectSymbol(SymCloseBrace)
	return &TupleExpr{TupleLike: newTupleLike(open, fields, close)}
}

func (p *Parser) parseListOrComprehension() Expr {
	open, _ := p.stream.expectSymbol(SymOpenBracket)
	if p.stream.Current().IsSymbol(SymCloseBracket) {
		close := p.stream.Advance()
		return &ListExpr{BaseNode: BaseNode{Reg: Region{Start: open.Region.Start, End: close.Region.End}}, Open: open, Close: close}
	}
	head := p.parseExpr(1)
	if p.stream.Current().IsSymbol(SymDoublePipe) {
		bar := p.stream.Advance()
		quals := p.parseQualifiers()
		close, _ := p.stream.expectSymbol(SymCloseBracket)
		return &ComprehensionExpr{
			BaseNode: BaseNode{Reg: Region{Start: open.Region.Start, End: close.Region.End}},
			Kind:     ComprehensionList, Open: open, Head: head, Bar: bar, Qualifiers: quals, Close: close,
		}
	}
	items := []Expr{head}
	var delims []*Token
	for p.stream.Current().IsSymbol(SymComma) {
		delims = append(delims, p.stream.Advance())
		items = append(items, p.parseExpr(1))
	}
	elems := Elements[Expr]{Items: someItems(newNonEmptyItems(items, delims)), AllPrimitive: allPrimitive(items)}
	var bar *Token
	var tail Maybe[Expr]
	if p.stream.Current().IsSymbol(SymPipe) {
		bar = p.stream.Advance()
		t := p.parseExpr(1)
		tail = some(t)
	}
	close, _ := p.stream.expectSymbol(SymCloseBracket)
	return &ListExpr{BaseNode: BaseNode{Reg: Region{Start: open.Region.Start, End: close.Region.End}}, Open: open, Elements: elems, Bar: bar, Tail: tail, Close: close}
}

func allPrimitive(items []Expr) bool {
	for _, it := range items {
		switch it.(type) {
		case *AtomExpr, *VarExpr, *IntExpr, *FloatExpr, *CharExpr, *StringExpr:
		default:
			return false
		}
	}
	return true
}

func (p *Parser) parseQualifiers() NonEmptyItems[Qualifier] {
	var items []Qualifier
	var delims []*Token
	items = append(items, p.parseQualifier())
	for p.stream.Current().IsSymbol(SymComma) {
		delims = append(delims, p.stream.Advance())
		items = append(items, p.parseQualifier())
	}
	return newNonEmptyItems(items, delims)
}

func (p *Parser) parseQualifier() Qualifier {
	mark := p.stream.Mark()
	candidate := p.parseExpr(1)
	cur := p.stream.Current()
	if cur.IsSymbol(SymArrowLeft) || cur.IsSymbol(SymDoubleArrow) {
		p.stream.Commit(mark)
		arrow := p.stream.Advance()
		source := p.parseExpr(1)
		return Qualifier{
			BaseNode: BaseNode{Reg: Region{Start: candidate.Region().Start, End: source.Region().End}},
			Pattern:  some(candidate), Arrow: some(arrow), Source: source,
		}
	}
	p.stream.Reset(mark)
	filter := p.parseExpr(1)
	return Qualifier{BaseNode: BaseNode{Reg: filter.Region()}, Source: filter}
}

func (p *Parser) parseMapOrRecordConstruct() Expr {
	hash := p.stream.Advance()
	if p.stream.Current().IsSymbol(SymOpenBrace) {
		open, _ := p.stream.expectSymbol(SymOpenBrace)
		fields := p.parseMapFields()
		close, _ := p.stream.expectSymbol(SymCloseBrace)
		return &MapExpr{BaseNode: BaseNode{Reg: Region{Start: hash.Region.Start, End: close.Region.End}}, Hash: hash, Open: open, Fields: fields, Close: close}
	}
	name, _ := p.stream.expectKind(Atom)
	if p.stream.Current().IsSymbol(SymDot) {
		dot := p.stream.Advance()
		field, _ := p.stream.expectKind(Atom)
		return &RecordExpr{
			BaseNode: BaseNode{Reg: Region{Start: hash.Region.Start, End: field.Region.End}},
			Hash:     hash, Name: name, Dot: some(dot), Field: some(field),
		}
	}
	open, _ := p.stream.expectSymbol(SymOpenBrace)
	fields := p.parseMapFields()
	close, _ := p.stream.expectSymbol(SymCloseBrace)
	return &RecordExpr{
		BaseNode: BaseNode{Reg: Region{Start: hash.Region.Start, End: close.Region.End}},
		Hash:     hash, Name: name, Open: some(open), Fields: fields, Close: some(close),
	}
}

func (p *Parser) parseMapFields() Items[MapField] {
	start := p.stream.Current().Region
	if p.stream.Current().IsSymbol(SymCloseBrace) {
		return emptyItems[MapField](start)
	}
	var items []MapField
	var delims []*Token
	items = append(items, p.parseMapField())
	for p.stream.Current().IsSymbol(SymComma) {
		delims = append(delims, p.stream.Advance())
		items = append(items, p.parseMapField())
	}
	return someItems(newNonEmptyItems(items, delims))
}

func (p *Parser) parseMapField() MapField {
	key := p.parseExpr(1)
	var op *Token
	switch {
	case p.stream.Current().IsSymbol(SymDoubleArrow):
		op = p.stream.Advance()
	case p.stream.Current().IsSymbol(SymDoubleColonEq):
		op = p.stream.Advance()
	default:
		tok := p.stream.Current()
		op = &Token{Kind: Symbol, Text: SymDoubleArrow, Region: tok.Region}
		p.diags = append(p.diags, fromParseError(p.file, p.errorf(tok.Region, UnexpectedToken, "expected => or := in map field")))
	}
	value := p.parseExpr(1)
	return MapField{BaseNode: BaseNode{Reg: Region{Start: key.Region().Start, End: value.Region().End}}, Key: key, Op: op, Value: value}
}

func (p *Parser) parseBitstringOrComprehension() Expr {
	open, _ := p.stream.expectSymbol(SymOpenBitstring)
	if p.stream.Current().IsSymbol(SymCloseBitstr) {
		close := p.stream.Advance()
		return &BitstringExpr{BitstringLike: newBitstringLike(open, emptyItems[BitstringSeg](open.Region), close)}
	}
	head := p.parseBitstringSeg()
	if p.stream.Current().IsSymbol(SymDoublePipe) {
		bar := p.stream.Advance()
		quals := p.parseQualifiers()
		close, _ := p.stream.expectSymbol(SymCloseBitstr)
		return &ComprehensionExpr{
			BaseNode: BaseNode{Reg: Region{Start: open.Region.Start, End: close.Region.End}},
			Kind:     ComprehensionBitstring, Open: open, Head: head.Value, Bar: bar, Qualifiers: quals, Close: close,
		}
	}
	items := []BitstringSeg{head}
	var delims []*Token
	for p.stream.Current().IsSymbol(SymComma) {
		delims = append(delims, p.stream.Advance())
		items = append(items, p.parseBitstringSeg())
	}
	close, _ := p.stream.expectSymbol(SymCloseBitstr)
	return &BitstringExpr{BitstringLike: newBitstringLike(open, someItems(newNonEmptyItems(items, delims)), close)}
}

func (p *Parser) parseBitstringSeg() BitstringSeg {
	value := p.parseExpr(precMultiplive + 1)
	reg := value.Region()
	var size Maybe[Expr]
	if p.stream.Current().IsSymbol(SymColon) {
		p.stream.Advance()
		s := p.parseExpr(precMultiplive + 1)
		size = some(s)
		reg.End = s.Region().End
	}
	var types Items[BitstringSegType]
	if p.stream.Current().IsSymbol(SymSlash) {
		p.stream.Advance()
		var ts []BitstringSegType
		var delims []*Token
		ts = append(ts, p.parseBitstringSegType())
		for p.stream.Current().IsSymbol(SymMinus) {
			delims = append(delims, p.stream.Advance())
			ts = append(ts, p.parseBitstringSegType())
		}
		types = someItems(newNonEmptyItems(ts, delims))
		reg.End = ts[len(ts)-1].Region().End
	} else {
		types = emptyItems[BitstringSegType](reg)
	}
	return BitstringSeg{BaseNode: BaseNode{Reg: reg}, Value: value, Size: size, Types: types}
}

func (p *Parser) parseBitstringSegType() BitstringSegType {
	name, _ := p.stream.expectKind(Atom)
	if name == nil {
		name = p.stream.Advance()
	}
	return BitstringSegType{BaseNode: BaseNode{Reg: name.Region}, Name: name}
}

func (p *Parser) parseFun() Expr {
	funTok := p.stream.Advance()
	if p.stream.Current().IsSymbol(SymOpenParen) {
		clauses := p.parseFunctionClauses(false)
		end, _ := p.stream.expectKeyword(KwEnd)
		return &FunExpr{
			BaseNode: BaseNode{Reg: Region{Start: funTok.Region.Start, End: end.Region.End}},
			Fun:      funTok, Clauses: some(clauses), End: some(end),
		}
	}
	var module Maybe[Expr]
	var colon Maybe[*Token]
	if p.stream.Current().Is(Atom) || p.stream.Current().Is(Variable) {
		mark := p.stream.Mark()
		mod := p.parsePrimary()
		if p.stream.Current().IsSymbol(SymColon) {
			colonTok := p.stream.Advance()
			module, colon = some(mod), some(colonTok)
			p.stream.Commit(mark)
		} else {
			p.stream.Reset(mark)
		}
	}
	name, _ := p.stream.expectKind(Atom)
	slash, _ := p.stream.expectSymbol(SymSlash)
	arity := p.parseExpr(1)
	end := arity.Region().End
	return &FunExpr{
		BaseNode: BaseNode{Reg: Region{Start: funTok.Region.Start, End: end}},
		Fun:      funTok, Module: module, Colon: colon, Name: some(name), Slash: some(slash), Arity: some(arity),
	}
}

// parseFunctionClauses parses "(Args) [when Guard] -> Body" repeated and
// separated by ";", used both for a fun literal's clauses (named=false,
// no clause name) and for a top-level function definition's clauses
// (named=true, each clause repeats the function's name).
func (p *Parser) parseFunctionClauses(named bool) Clauses[*FunctionClause] {
	var items []*FunctionClause
	var semis []*Token
	items = append(items, p.parseFunctionClause(named))
	for p.stream.Current().IsSymbol(SymSemicolon) {
		semis = append(semis, p.stream.Advance())
		items = append(items, p.parseFunctionClause(named))
	}
	return newClauses(items, semis)
}

func (p *Parser) parseExprSeq() ExprSeq {
	var items []Expr
	var delims []*Token
	items = append(items, p.parseExpr(1))
	for p.stream.Current().IsSymbol(SymComma) {
		delims = append(delims, p.stream.Advance())
		items = append(items, p.parseExpr(1))
	}
	nei := newNonEmptyItems(items, delims)
	return ExprSeq{BaseNode: BaseNode{Reg: nei.Region()}, Items: nei}
}

func (p *Parser) parseGuardSeq() GuardSeq {
	var items []ExprSeq
	var semis []*Token
	items = append(items, p.parseExprSeq())
	for p.stream.Current().IsSymbol(SymSemicolon) {
		semis = append(semis, p.stream.Advance())
		items = append(items, p.parseExprSeq())
	}
	clauses := newClauses(items, semis)
	return GuardSeq{BaseNode: BaseNode{Reg: clauses.Region()}, Alternatives: clauses}
}

func (p *Parser) parseCaseExpr() *BlockExpr {
	kw := p.stream.Advance()
	subject := p.parseExpr(1)
	of, _ := p.stream.expectKeyword(KwOf)
	clauses := p.parseCaseClauses(true)
	end, _ := p.stream.expectKeyword(KwEnd)
	return &BlockExpr{
		BaseNode: BaseNode{Reg: Region{Start: kw.Region.Start, End: end.Region.End}},
		Kind:     BlockCase, Keyword: kw, Subject: some(subject), Of: some(of),
		Clauses: some(clauses), End: end,
	}
}

func (p *Parser) parseIfExpr() *BlockExpr {
	kw := p.stream.Advance()
	clauses := p.parseCaseClauses(false)
	end, _ := p.stream.expectKeyword(KwEnd)
	return &BlockExpr{
		BaseNode: BaseNode{Reg: Region{Start: kw.Region.Start, End: end.Region.End}},
		Kind:     BlockIf, Keyword: kw, Clauses: some(clauses), End: end,
	}
}

func (p *Parser) parseCaseClauses(withPattern bool) Clauses[*CaseClause] {
	var items []*CaseClause
	var semis []*Token
	items = append(items, p.parseCaseClause(withPattern))
	for p.stream.Current().IsSymbol(SymSemicolon) {
		semis = append(semis, p.stream.Advance())
		items = append(items, p.parseCaseClause(withPattern))
	}
	return newClauses(items, semis)
}

func (p *Parser) parseCaseClause(withPattern bool) *CaseClause {
	cl := &CaseClause{}
	start := p.stream.Current().Region
	if withPattern {
		pat := p.parseExpr(1)
		cl.Pattern = some(pat)
	}
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

func (p *Parser) parseReceiveExpr() *BlockExpr {
	kw := p.stream.Advance()
	blk := &BlockExpr{Keyword: kw, Kind: BlockReceive}
	if !p.stream.Current().IsKeyword(KwAfter) && !p.stream.Current().IsKeyword(KwEnd) {
		clauses := p.parseCaseClauses(true)
		blk.Clauses = some(clauses)
	}
	if p.stream.Current().IsKeyword(KwAfter) {
		after := p.stream.Advance()
		timeout := p.parseExpr(1)
		arrow, _ := p.stream.expectSymbol(SymArrowRight)
		body := p.parseExprSeq()
		blk.After, blk.AfterTimeout, blk.AfterArrow, blk.AfterBody = some(after), some(timeout), some(arrow), some(body)
	}
	end, _ := p.stream.expectKeyword(KwEnd)
	blk.End = end
	blk.Reg = Region{Start: kw.Region.Start, End: end.Region.End}
	return blk
}

func (p *Parser) parseBeginExpr() *BlockExpr {
	kw := p.stream.Advance()
	body := p.parseExprSeq()
	end, _ := p.stream.expectKeyword(KwEnd)
	return &BlockExpr{
		BaseNode: BaseNode{Reg: Region{Start: kw.Region.Start, End: end.Region.End}},
		Kind:     BlockBegin, Keyword: kw, Body: some(body), End: end,
	}
}

func (p *Parser) parseTryExpr() *BlockExpr {
	kw := p.stream.Advance()
	blk := &BlockExpr{Keyword: kw, Kind: BlockTry}
	body := p.parseExprSeq()
	blk.Body = some(body)
	if p.stream.Current().IsKeyword(KwOf) {
		of := p.stream.Advance()
		clauses := p.parseCaseClauses(true)
		blk.Of, blk.Clauses = some(of), some(clauses)
	}
	if p.stream.Current().IsKeyword(KwCatch) {
		catch := p.stream.Advance()
		clauses := p.parseCatchClauses()
		blk.Catch, blk.CatchClauses = some(catch), some(clauses)
	}
	if p.stream.Current().IsKeyword(KwAfter) {
		after := p.stream.Advance()
		afterBody := p.parseExprSeq()
		blk.After, blk.AfterBody = some(after), some(afterBody)
	}
	end, _ := p.stream.expectKeyword(KwEnd)
	blk.End = end
	blk.Reg = Region{Start: kw.Region.Start, End: end.Region.End}
	return blk
}

// parseCatchExpr parses "catch Expr" as a standalone expression. The
// operand is parsed at the lowest precedence so "catch" captures
// everything to its right, not just the next primary/unary term.
func (p *Parser) parseCatchExpr() *CatchExpr {
	kw := p.stream.Advance()
	operand := p.parseExpr(1)
	return &CatchExpr{
		BaseNode: BaseNode{Reg: Region{Start: kw.Region.Start, End: operand.Region().End}},
		Keyword:  kw, Operand: operand,
	}
}

func (p *Parser) parseCatchClauses() Clauses[*CatchClause] {
	var items []*CatchClause
	var semis []*Token
	items = append(items, p.parseCatchClause())
	for p.stream.Current().IsSymbol(SymSemicolon) {
		semis = append(semis, p.stream.Advance())
		items = append(items, p.parseCatchClause())
	}
	return newClauses(items, semis)
}

func (p *Parser) parseCatchClause() *CatchClause {
	start := p.stream.Current().Region
	cl := &CatchClause{}
	mark := p.stream.Mark()
	class := p.parseExpr(1)
	if p.stream.Current().IsSymbol(SymColon) {
		p.stream.Commit(mark)
		colon := p.stream.Advance()
		cl.Class, cl.ClassColon = some(class), some(colon)
		cl.Pattern = p.parseExpr(1)
	} else {
		p.stream.Reset(mark)
		cl.Pattern = p.parseExpr(1)
	}
	if p.stream.Current().IsSymbol(SymColon) {
		colon := p.stream.Advance()
		stack := p.parseExpr(1)
		cl.StackColon, cl.Stacktrace = some(colon), some(stack)
	}
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
