// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package efmt

// FormatModule renders m's forms, one per "form" with a blank line
// between top-level forms (matching the convention that function
// definitions and attributes read better with visual separation).
func FormatModule(p *Printer, m *Module) {
	for i, f := range m.Forms {
		if i > 0 {
			p.Newline()
			p.Newline()
		}
		FormatForm(p, f)
	}
	p.Trivia(m.Eof)
}

func FormatForm(p *Printer, f Form) {
	switch n := f.(type) {
	case *AttributeForm:
		formatAttribute(p, n)
	case *FunctionDef:
		formatFunctionDef(p, n)
	case *BadNode:
		p.Text(n.Err.Message)
	}
}

func formatAttribute(p *Printer, a *AttributeForm) {
	p.Token(a.Dash)
	p.Token(a.Name)
	switch {
	case a.Define != nil:
		formatDefine(p, a)
	case a.Record.Present:
		formatRecordDecl(p, a.Open.Value, a.Record.Value, a.Close.Value)
	case a.TypeDecl.Present:
		formatTypeDecl(p, a.TypeDecl.Value)
	case a.Spec.Present:
		formatSpecDecl(p, a.Spec.Value)
	default:
		if a.Open.Present {
			p.Token(a.Open.Value)
			formatItemsCommaSep(p, a.Args, func(p *Printer, e Expr) { FormatExpr(p, e) })
			p.Token(a.Close.Value)
		} else if a.Args.Len > 0 {
			p.Space()
			FormatExpr(p, a.Args.List.Items[0])
		}
	}
	p.Token(a.Dot)
}

func formatDefine(p *Printer, a *AttributeForm) {
	p.Token(a.Open.Value)
	p.Text(a.Define.Name)
	if a.Define.IsFunctional() {
		p.Text("(")
		for i, param := range a.Define.Params {
			if i > 0 {
				p.Text(", ")
			}
			p.Text(param)
		}
		p.Text(")")
	}
	p.Text(", ")
	for _, t := range a.Define.Replacement {
		p.Token(t)
	}
	p.Token(a.Close.Value)
}

func formatRecordDecl(p *Printer, open *Token, r RecordDecl, close *Token) {
	p.Token(open)
	p.Token(r.Name)
	p.Text(", ")
	p.Token(r.Open)
	formatItemsCommaSep(p, r.Fields, formatRecordFieldDecl)
	p.Token(r.Close)
	p.Token(close)
}

func formatRecordFieldDecl(p *Printer, f RecordFieldDecl) {
	p.Token(f.Name)
	if f.Default.Present {
		p.Text(" = ")
		FormatExpr(p, f.Default.Value)
	}
	if f.Type.Present {
		p.Text(" :: ")
		FormatExpr(p, f.Type.Value)
	}
}

func formatTypeDecl(p *Printer, t TypeDecl) {
	p.Space()
	p.Token(t.Name)
	p.Token(t.Open)
	formatItemsCommaSep(p, t.Vars, func(p *Printer, e Expr) { FormatExpr(p, e) })
	p.Token(t.Close)
	p.Text(" :: ")
	FormatExpr(p, t.Definition)
}

func formatSpecDecl(p *Printer, s SpecDecl) {
	p.Space()
	if s.Module.Present {
		p.Token(s.Module.Value)
		p.Token(s.Colon.Value)
	}
	p.Token(s.Name)
	for i, clause := range s.Clauses.Items {
		if i > 0 {
			p.Token(s.Clauses.Delims[i-1])
			p.Newline()
		}
		p.Token(clause.Open)
		formatItemsCommaSep(p, clause.Args, func(p *Printer, e Expr) { FormatExpr(p, e) })
		p.Token(clause.Close)
		p.Text(" -> ")
		FormatExpr(p, clause.Result)
		if clause.When.Present {
			p.Text(" when ")
			formatItemsCommaSep(p, clause.Guard.Value, formatSpecConstraint)
		}
	}
}

func formatSpecConstraint(p *Printer, c SpecConstraint) {
	FormatExpr(p, c.Name)
	p.Text(" :: ")
	FormatExpr(p, c.Type)
}

func formatFunctionDef(p *Printer, fn *FunctionDef) {
	for i, cl := range fn.Clauses.Items {
		if i > 0 {
			p.Token(fn.Clauses.Semis[i-1])
			p.Newline()
		}
		// A top-level function clause's body always goes on its own
		// indented line, regardless of whether it would fit packed.
		formatFunctionClause(p, cl, true)
	}
	p.Token(fn.Dot)
}

func formatFunctionClause(p *Printer, cl *FunctionClause, forceBreak bool) {
	if cl.Name.Present {
		p.Token(cl.Name.Value)
	}
	p.Token(cl.Open)
	formatItemsCommaSep(p, cl.Args, func(p *Printer, e Expr) { FormatExpr(p, e) })
	p.Token(cl.Close)
	if cl.When.Present {
		p.Text(" when ")
		formatGuardSeq(p, cl.Guard.Value)
	}
	p.Text(" ->")
	formatClauseBody(p, cl.Body, forceBreak)
}

// formatClauseBody renders a clause's body. When forceBreak is set the
// body always goes on its own indented line — the rule for case/if/
// receive/try clauses and top-level function clauses, none of which
// ever pack their body next to "->". When it is not set, the body packs
// after "-> " unless that would overflow the column budget, which is
// the one exception the original formatter carves out for a fun
// expression with exactly one clause and a single-expression body.
func formatClauseBody(p *Printer, body ExprSeq, forceBreak bool) {
	if forceBreak {
		opts := RegionOptions{Indent: Indent{Mode: ParentOffset, N: 4}, Newline: PolicyAlways}
		p.Region(opts, false, func(p *Printer, _ bool) {
			p.Newline()
			formatExprSeqInline(p, body, true)
		})
		return
	}
	opts := RegionOptions{Indent: Indent{Mode: ParentOffset, N: 4}, Newline: PolicyIf(CondTooLong)}
	p.Region(opts, false, func(p *Printer, broken bool) {
		if broken {
			p.Newline()
		} else {
			p.Space()
		}
		formatExprSeqInline(p, body, broken)
	})
}

func formatExprSeqInline(p *Printer, seq ExprSeq, broken bool) {
	for i, it := range seq.Items.Items {
		if i > 0 {
			p.Text(",")
			if broken {
				p.Newline()
			} else {
				p.Space()
			}
		}
		FormatExpr(p, it)
	}
}

func formatGuardSeq(p *Printer, g GuardSeq) {
	for i, alt := range g.Alternatives.Items {
		if i > 0 {
			p.Text("; ")
		}
		for j, t := range alt.Items.Items {
			if j > 0 {
				p.Text(", ")
			}
			FormatExpr(p, t)
		}
	}
}

func formatItemsCommaSep[T Node](p *Printer, items Items[T], each func(p *Printer, item T)) {
	for i, it := range items.List.Items {
		if i > 0 {
			p.Text(", ")
		}
		each(p, it)
	}
}

// FormatExpr is the single dispatch point for rendering any Expr,
// mirroring the try-parse cascade's mirror-image on the output side: one
// case per concrete node type.
func FormatExpr(p *Printer, e Expr) {
	switch n := e.(type) {
	case *AtomExpr:
		p.Token(n.Tok)
	case *VarExpr:
		p.Token(n.Tok)
	case *IntExpr:
		p.Token(n.Tok)
	case *FloatExpr:
		p.Token(n.Tok)
	case *CharExpr:
		p.Token(n.Tok)
	case *StringExpr:
		p.Token(n.Tok)
	case *TupleExpr:
		formatTupleLike(p, n.TupleLike, FormatExpr)
	case *ListExpr:
		formatListExpr(p, n)
	case *MapExpr:
		formatMapExpr(p, n)
	case *RecordExpr:
		formatRecordExpr(p, n)
	case *BitstringExpr:
		formatBitstringExpr(p, n)
	case *BinaryExpr:
		formatBinaryExpr(p, n)
	case *UnaryExpr:
		p.Token(n.Op)
		FormatExpr(p, n.Operand)
	case *CallExpr:
		formatCallExpr(p, n)
	case *FunExpr:
		formatFunExpr(p, n)
	case *BlockExpr:
		formatBlockExpr(p, n)
	case *ComprehensionExpr:
		formatComprehensionExpr(p, n)
	case *ParenExpr:
		p.Token(n.Open)
		FormatExpr(p, n.Item)
		p.Token(n.Close)
	case *CatchExpr:
		formatCatchExpr(p, n)
	case *BadNode:
		if n.Err != nil {
			p.Text(n.Err.Message)
		}
	case MapField:
		FormatExpr(p, n.Key)
		p.Space()
		p.Token(n.Op)
		p.Space()
		FormatExpr(p, n.Value)
	case Qualifier:
		formatQualifier(p, n)
	}
}

func formatTupleLike[F Node](p *Printer, t TupleLike[F], each func(p *Printer, f F)) {
	p.Token(t.Open)
	opts := RegionOptions{Indent: Indent{Mode: CurrentColumn}, Newline: PolicyIf(CondTooLong)}
	p.Region(opts, false, func(p *Printer, broken bool) {
		for i, f := range t.Fields.List.Items {
			if i > 0 {
				p.Text(",")
				if broken {
					p.Newline()
				} else {
					p.Space()
				}
			}
			each(p, f)
		}
	})
	p.Token(t.Close)
}

func formatListExpr(p *Printer, l *ListExpr) {
	p.Token(l.Open)
	opts := RegionOptions{Indent: Indent{Mode: CurrentColumn}, Newline: PolicyIf(CondTooLong)}
	p.Region(opts, false, func(p *Printer, broken bool) {
		for i, e := range l.Elements.List.Items {
			if i > 0 {
				p.Text(",")
				if broken && !l.Elements.AllPrimitive {
					p.Newline()
				} else if broken && !p.FitsPacked(func(p *Printer) { p.Space(); FormatExpr(p, e) }) {
					p.Newline()
				} else {
					p.Space()
				}
			}
			FormatExpr(p, e)
		}
		if l.Tail.Present {
			p.Text(" | ")
			FormatExpr(p, l.Tail.Value)
		}
	})
	p.Token(l.Close)
}

func formatMapExpr(p *Printer, m *MapExpr) {
	if m.Base.Present {
		FormatExpr(p, m.Base.Value)
	}
	p.Token(m.Hash)
	formatTupleLike(p, TupleLike[MapField]{Open: m.Open, Fields: m.Fields, Close: m.Close}, func(p *Printer, f MapField) { FormatExpr(p, f) })
}

func formatRecordExpr(p *Printer, r *RecordExpr) {
	if r.Base.Present {
		FormatExpr(p, r.Base.Value)
	}
	p.Token(r.Hash)
	p.Token(r.Name)
	switch {
	case r.IsAccess() || r.IsIndex():
		p.Token(r.Dot.Value)
		p.Token(r.Field.Value)
	default:
		formatTupleLike(p, TupleLike[MapField]{Open: r.Open.Value, Fields: r.Fields, Close: r.Close.Value}, func(p *Printer, f MapField) { FormatExpr(p, f) })
	}
}

func formatBitstringExpr(p *Printer, b *BitstringExpr) {
	p.Token(b.Open)
	for i, seg := range b.Segments.List.Items {
		if i > 0 {
			p.Text(", ")
		}
		formatBitstringSeg(p, seg)
	}
	p.Token(b.Close)
}

func formatBitstringSeg(p *Printer, seg BitstringSeg) {
	FormatExpr(p, seg.Value)
	if seg.Size.Present {
		p.Text(":")
		FormatExpr(p, seg.Size.Value)
	}
	for i, t := range seg.Types.List.Items {
		if i == 0 {
			p.Text("/")
		} else {
			p.Text("-")
		}
		p.Token(t.Name)
	}
}

func formatBinaryExpr(p *Printer, b *BinaryExpr) {
	style := styleForOperator(b.Op.Text)
	FormatExpr(p, b.Left)
	p.Space()
	p.Token(b.Op)
	if !style.AllowNewline {
		p.Space()
		FormatExpr(p, b.Right)
		return
	}
	opts := RegionOptions{Indent: Indent{Mode: ParentOffset, N: style.IndentOffset}, Newline: PolicyIf(CondTooLong)}
	p.Region(opts, false, func(p *Printer, broken bool) {
		if broken {
			p.Newline()
		} else {
			p.Space()
		}
		FormatExpr(p, b.Right)
	})
}

func formatCallExpr(p *Printer, c *CallExpr) {
	if c.Module.Present {
		FormatExpr(p, c.Module.Value)
		p.Token(c.Colon.Value)
	}
	FormatExpr(p, c.Callee)
	if c.Open == nil {
		return
	}
	p.Token(c.Open)
	opts := RegionOptions{Indent: Indent{Mode: CurrentColumn}, Newline: PolicyIf(CondTooLong)}
	p.Region(opts, false, func(p *Printer, broken bool) {
		for i, a := range c.Args.List.Items {
			if i > 0 {
				p.Text(",")
				if broken {
					p.Newline()
				} else {
					p.Space()
				}
			}
			FormatExpr(p, a)
		}
	})
	p.Token(c.Close)
}

func formatFunExpr(p *Printer, f *FunExpr) {
	p.Token(f.Fun)
	p.Space()
	if f.IsReference() {
		if f.Module.Present {
			FormatExpr(p, f.Module.Value)
			p.Token(f.Colon.Value)
		}
		p.Token(f.Name.Value)
		p.Token(f.Slash.Value)
		FormatExpr(p, f.Arity.Value)
		return
	}
	clauses := f.Clauses.Value
	// A fun expression with exactly one clause and a single-expression
	// body is the one case allowed to stay packed on one line if it
	// fits; every other shape (multiple clauses, or a multi-expression
	// body) always breaks each clause body onto its own line.
	if len(clauses.Items) == 1 && len(clauses.Items[0].Body.Items.Items) == 1 {
		formatFunExprPackableClause(p, clauses.Items[0], f.End.Value)
		return
	}
	for i, cl := range clauses.Items {
		if i > 0 {
			p.Token(clauses.Semis[i-1])
			p.Newline()
		}
		formatFunctionClause(p, cl, true)
	}
	p.Newline()
	p.Token(f.End.Value)
}

// formatFunExprPackableClause renders a fun expression's sole clause,
// packing its single-expression body (and the closing "end") on the
// same line when it fits, breaking both onto their own line otherwise.
func formatFunExprPackableClause(p *Printer, cl *FunctionClause, end *Token) {
	if cl.Name.Present {
		p.Token(cl.Name.Value)
	}
	p.Token(cl.Open)
	formatItemsCommaSep(p, cl.Args, func(p *Printer, e Expr) { FormatExpr(p, e) })
	p.Token(cl.Close)
	if cl.When.Present {
		p.Text(" when ")
		formatGuardSeq(p, cl.Guard.Value)
	}
	p.Text(" ->")
	var bodyBroke bool
	opts := RegionOptions{Indent: Indent{Mode: ParentOffset, N: 4}, Newline: PolicyIf(CondTooLong)}
	p.Region(opts, false, func(p *Printer, broken bool) {
		bodyBroke = broken
		if broken {
			p.Newline()
		} else {
			p.Space()
		}
		formatExprSeqInline(p, cl.Body, broken)
	})
	if bodyBroke {
		p.Newline()
	} else {
		p.Space()
	}
	p.Token(end)
}

func formatBlockExpr(p *Printer, b *BlockExpr) {
	switch b.Kind {
	case BlockCase:
		p.Token(b.Keyword)
		p.Space()
		FormatExpr(p, b.Subject.Value)
		p.Space()
		p.Token(b.Of)
		formatCaseClauses(p, b.Clauses.Value)
	case BlockIf:
		p.Token(b.Keyword)
		formatCaseClauses(p, b.Clauses.Value)
	case BlockBegin:
		p.Token(b.Keyword)
		p.Region(RegionOptions{Indent: Indent{Mode: ParentOffset, N: 4}, Newline: PolicyAlways}, false, func(p *Printer, _ bool) {
			p.Newline()
			formatExprSeqInline(p, b.Body.Value, true)
		})
		p.Newline()
	case BlockReceive:
		p.Token(b.Keyword)
		if b.Clauses.Present {
			formatCaseClauses(p, b.Clauses.Value)
			p.Newline()
		}
		if b.After.Present {
			p.Token(b.After.Value)
			p.Space()
			FormatExpr(p, b.AfterTimeout.Value)
			p.Text(" ->")
			formatClauseBody(p, b.AfterBody.Value, true)
			p.Newline()
		}
	case BlockTry:
		p.Token(b.Keyword)
		p.Region(RegionOptions{Indent: Indent{Mode: ParentOffset, N: 4}, Newline: PolicyAlways}, false, func(p *Printer, _ bool) {
			p.Newline()
			formatExprSeqInline(p, b.Body.Value, true)
		})
		p.Newline()
		if b.Of.Present {
			p.Token(b.Of.Value)
			formatCaseClauses(p, b.Clauses.Value)
			p.Newline()
		}
		if b.Catch.Present {
			p.Token(b.Catch.Value)
			for i, cl := range b.CatchClauses.Value.Items {
				if i > 0 {
					p.Token(b.CatchClauses.Value.Semis[i-1])
				}
				p.Region(RegionOptions{Indent: Indent{Mode: ParentOffset, N: 4}, Newline: PolicyAlways}, false, func(p *Printer, _ bool) {
					p.Newline()
					formatCatchClause(p, cl)
				})
			}
			p.Newline()
		}
		if b.After.Present {
			p.Token(b.After.Value)
			p.Region(RegionOptions{Indent: Indent{Mode: ParentOffset, N: 4}, Newline: PolicyAlways}, false, func(p *Printer, _ bool) {
				p.Newline()
				formatExprSeqInline(p, b.AfterBody.Value, true)
			})
			p.Newline()
		}
	}
	if b.Kind == BlockCase || b.Kind == BlockIf {
		p.Newline()
	}
	p.Token(b.End)
}

func formatCaseClauses(p *Printer, c Clauses[*CaseClause]) {
	p.Region(RegionOptions{Indent: Indent{Mode: ParentOffset, N: 4}, Newline: PolicyAlways}, false, func(p *Printer, _ bool) {
		for i, cl := range c.Items {
			p.Newline()
			if cl.Pattern.Present {
				FormatExpr(p, cl.Pattern.Value)
				p.Space()
			}
			if cl.When.Present {
				p.Text("when ")
				formatGuardSeq(p, cl.Guard.Value)
				p.Space()
			}
			p.Text("->")
			formatClauseBody(p, cl.Body, true)
			if i < len(c.Semis) {
				p.Token(c.Semis[i])
			}
		}
	})
}

func formatCatchClause(p *Printer, cl *CatchClause) {
	if cl.Class.Present {
		FormatExpr(p, cl.Class.Value)
		p.Token(cl.ClassColon.Value)
	}
	FormatExpr(p, cl.Pattern)
	if cl.Stacktrace.Present {
		p.Token(cl.StackColon.Value)
		FormatExpr(p, cl.Stacktrace.Value)
	}
	if cl.When.Present {
		p.Text(" when ")
		formatGuardSeq(p, cl.Guard.Value)
	}
	p.Text(" ->")
	formatClauseBody(p, cl.Body, true)
}

// formatCatchExpr anchors the operand to the column right after "catch "
// so that, if the operand itself wraps (a long call's arguments, a long
// binary chain), its continuation lines line up under the keyword
// rather than under whatever enclosing indent happened to be active.
func formatCatchExpr(p *Printer, c *CatchExpr) {
	p.Token(c.Keyword)
	p.Space()
	p.Region(RegionOptions{Indent: Indent{Mode: CurrentColumn}, Newline: PolicyNever}, false, func(p *Printer, _ bool) {
		FormatExpr(p, c.Operand)
	})
}

func formatComprehensionExpr(p *Printer, c *ComprehensionExpr) {
	p.Token(c.Open)
	FormatExpr(p, c.Head)
	p.Text(" || ")
	for i, q := range c.Qualifiers.Items {
		if i > 0 {
			p.Text(", ")
		}
		formatQualifier(p, q)
	}
	p.Token(c.Close)
}

func formatQualifier(p *Printer, q Qualifier) {
	if q.IsFilter() {
		FormatExpr(p, q.Source)
		return
	}
	FormatExpr(p, q.Pattern.Value)
	p.Space()
	p.Token(q.Arrow.Value)
	p.Space()
	FormatExpr(p, q.Source)
}
