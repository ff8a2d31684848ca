// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package efmt

import "strings"

// IndentMode selects how a subregion's indent column is computed when it
// breaks onto multiple lines.
type IndentMode int

const (
	// CurrentColumn anchors the subregion's continuation lines to
	// whatever column printing happened to reach before the region
	// opened (used for things like aligning a call's arguments under
	// its opening paren).
	CurrentColumn IndentMode = iota
	// Offset anchors to a fixed column count from the start of the
	// current line, regardless of nesting.
	Offset
	// ParentOffset adds N columns to the enclosing region's indent,
	// used for the usual "one more indent level" case (case clauses,
	// block bodies, list/tuple elements when broken).
	ParentOffset
)

// Indent pairs an IndentMode with its parameter.
type Indent struct {
	Mode IndentMode
	N    int
}

// NewlineCondition is one trigger a NewlinePolicy's "If" can test.
type NewlineCondition int

const (
	// CondTooLong fires when rendering the region packed on the current
	// line would exceed the configured column budget.
	CondTooLong NewlineCondition = iota
	// CondMultiLineParent fires when the enclosing region already
	// decided to break, so a nested region breaks too even if it would
	// individually fit (keeps sibling elements visually aligned).
	CondMultiLineParent
	// CondHasComment names a region whose content carries an inline or
	// leading comment. Region does not evaluate it, so on its own it
	// never forces a break.
	CondHasComment
)

// NewlinePolicyKind is the three policy shapes a subregion can choose.
type NewlinePolicyKind int

const (
	NewlineNever NewlinePolicyKind = iota
	NewlineAlways
	NewlineIf
)

// NewlinePolicy decides whether a subregion renders packed on one line
// or broken across several.
type NewlinePolicy struct {
	Kind       NewlinePolicyKind
	Conditions []NewlineCondition
}

var (
	PolicyNever  = NewlinePolicy{Kind: NewlineNever}
	PolicyAlways = NewlinePolicy{Kind: NewlineAlways}
)

func PolicyIf(conds ...NewlineCondition) NewlinePolicy {
	return NewlinePolicy{Kind: NewlineIf, Conditions: conds}
}

// RegionOptions configures one call to Printer.Region.
type RegionOptions struct {
	Indent  Indent
	Newline NewlinePolicy
}

// BinaryOpStyle controls how a BinaryExpr's right operand lays out
// relative to its left: the indent added if it breaks, whether a break
// before the right operand is allowed at all, and whether the operator
// family prefers packing (arithmetic) or breaking (andalso/orelse chains
// read better one condition per line).
type BinaryOpStyle struct {
	IndentOffset int
	AllowNewline bool
	ShouldPack   bool
}

func styleForOperator(opText string) BinaryOpStyle {
	switch opText {
	case KwAndAlso, KwOrElse, KwOr, KwAnd, KwXor:
		return BinaryOpStyle{IndentOffset: 2, AllowNewline: true, ShouldPack: false}
	case SymEq, SymNot:
		return BinaryOpStyle{IndentOffset: 4, AllowNewline: true, ShouldPack: true}
	default:
		return BinaryOpStyle{IndentOffset: 2, AllowNewline: true, ShouldPack: true}
	}
}

// Printer accumulates formatted output with a column budget, supporting
// the dry-run-then-rewind rendering strategy: Region first renders its
// body into a scratch Printer to measure whether it fits packed, then
// either copies that scratch output verbatim (packed) or re-renders the
// body directly into the real output with newlines inserted (broken).
// This trades a repeated render for never needing to un-write already
// emitted bytes, matching the original formatter's approach described in
// its "RegionOptions"/"format2" layering.
type Printer struct {
	file       string
	sb         strings.Builder
	maxColumns int
	line       int
	col        int // 0-based column of the next byte to write
	indents    []int
	warnings   []*Diagnostic
}

func NewPrinter(file string, maxColumns int) *Printer {
	return &Printer{file: file, maxColumns: maxColumns, line: 1, col: 0, indents: []int{0}}
}

func (p *Printer) String() string { return p.sb.String() }

func (p *Printer) Warnings() []*Diagnostic { return p.warnings }

func (p *Printer) Column() int { return p.col }

func (p *Printer) currentIndent() int { return p.indents[len(p.indents)-1] }

// Text writes s verbatim, tracking column/line as it goes (s must not
// itself decide line breaks — use Newline for that).
func (p *Printer) Text(s string) {
	for _, r := range s {
		if r == '\n' {
			p.line++
			p.col = 0
			continue
		}
		p.col++
	}
	p.sb.WriteString(s)
}

// Space writes a single space.
func (p *Printer) Space() { p.Text(" ") }

// Newline writes a line break followed by the current indent's worth of
// spaces.
func (p *Printer) Newline() {
	p.Text("\n")
	p.Text(strings.Repeat(" ", p.currentIndent()))
}

// pushIndentColumn records ind as the active indent level, resolved
// against parentCol (the column Region was entered at) and the current
// indent stack's top (for ParentOffset).
func (p *Printer) pushIndentColumn(ind Indent, parentCol int) {
	switch ind.Mode {
	case CurrentColumn:
		p.indents = append(p.indents, parentCol)
	case Offset:
		p.indents = append(p.indents, ind.N)
	case ParentOffset:
		p.indents = append(p.indents, p.currentIndent()+ind.N)
	default:
		p.indents = append(p.indents, p.currentIndent())
	}
}

func (p *Printer) popIndent() {
	p.indents = p.indents[:len(p.indents)-1]
}

// Region renders body once, deciding packed vs. broken per opts. body is
// called with the chosen "broken" flag so it can emit its own internal
// separators (spaces when packed, Newline calls when broken).
//
// parentBroken should be true when the immediately enclosing region
// already broke, so CondMultiLineParent can be evaluated; callers that
// aren't nested inside another Region pass false.
func (p *Printer) Region(opts RegionOptions, parentBroken bool, body func(p *Printer, broken bool)) {
	startCol := p.col
	switch opts.Newline.Kind {
	case NewlineAlways:
		p.pushIndentColumn(opts.Indent, startCol)
		body(p, true)
		p.popIndent()
		return
	case NewlineNever:
		p.pushIndentColumn(opts.Indent, startCol)
		body(p, false)
		p.popIndent()
		if p.col > p.maxColumns {
			// The Printer holds no source positions, so the warning
			// carries a zero Region.
			p.warnings = append(p.warnings, NewWarning(p.file, TooLong, Region{}, "line exceeds configured column limit"))
		}
		return
	}

	// NewlineIf: dry-run into a scratch printer sharing the same
	// maxColumns and starting column, then decide.
	scratch := &Printer{file: p.file, maxColumns: p.maxColumns, line: p.line, col: p.col, indents: append([]int(nil), p.indents...)}
	scratch.pushIndentColumn(opts.Indent, startCol)
	body(scratch, false)
	scratch.popIndent()

	breaks := false
	for _, c := range opts.Newline.Conditions {
		switch c {
		case CondTooLong:
			if strings.Contains(scratch.sb.String(), "\n") || startCol+scratch.sb.Len() > p.maxColumns {
				breaks = true
			}
		case CondMultiLineParent:
			if parentBroken {
				breaks = true
			}
		case CondHasComment:
			// Not evaluated here; no formatter in this package passes
			// this condition.
		}
	}

	p.pushIndentColumn(opts.Indent, startCol)
	if !breaks {
		p.Text(scratch.sb.String())
	} else {
		body(p, true)
	}
	p.popIndent()
}

// FitsPacked reports whether rendering body from the current position
// would stay within the column budget and emit no newline, without
// committing any output.
func (p *Printer) FitsPacked(body func(p *Printer)) bool {
	scratch := &Printer{file: p.file, maxColumns: p.maxColumns, line: p.line, col: p.col, indents: append([]int(nil), p.indents...)}
	body(scratch)
	return !strings.Contains(scratch.sb.String(), "\n") && scratch.col <= p.maxColumns
}

// EmitOverlong writes s and, when that takes the current line past
// maxColumns, records a TooLong warning for region instead of failing.
// Region's NewlineNever case applies the same rule to its own output.
func (p *Printer) EmitOverlong(region Region, s string) {
	if p.col+len(s) > p.maxColumns {
		p.warnings = append(p.warnings, NewWarning(p.file, TooLong, region, "line exceeds configured column limit"))
	}
	p.Text(s)
}

// Trivia writes a token's leading comments, each on the line they
// started on relative to the token they preceded, with a newline before
// the main token's own content.
func (p *Printer) Trivia(tok *Token) {
	for _, t := range tok.LeadingTrivia {
		if t.Kind != Comment {
			continue
		}
		p.Text(t.Text)
		p.Newline()
	}
}

// Token writes a token's leading trivia then its text verbatim.
func (p *Printer) Token(tok *Token) {
	if tok == nil {
		return
	}
	p.Trivia(tok)
	p.Text(tok.Text)
}
