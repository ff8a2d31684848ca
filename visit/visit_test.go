// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package visit_test

import (
	"context"
	"testing"

	"github.com/verbit/efmt"
	"github.com/verbit/efmt/visit"
)

const sample = `-module(foo).

bar(X) ->
    case X of
        1 -> one;
        _ -> {other, X}
    end.
`

func parse(t *testing.T, src string) *efmt.Module {
	t.Helper()
	module, diags, err := efmt.ParseModule(context.Background(), "test.erl", []byte(src))
	if err != nil {
		t.Fatalf("ParseModule error = %v", err)
	}
	if len(diags) > 0 {
		t.Fatalf("ParseModule diagnostics = %+v, want none", diags)
	}
	return module
}

func TestWalk_VisitsRootFirst(t *testing.T) {
	module := parse(t, sample)
	var first efmt.Node
	visit.Walk(module, func(n efmt.Node) bool {
		if first == nil {
			first = n
		}
		return true
	})
	if first != efmt.Node(module) {
		t.Fatalf("first node visited = %T, want the *efmt.Module root", first)
	}
}

func TestWalk_VisitsEveryForm(t *testing.T) {
	module := parse(t, sample)
	var forms int
	visit.Walk(module, func(n efmt.Node) bool {
		if _, ok := n.(*efmt.AttributeForm); ok {
			forms++
		}
		if _, ok := n.(*efmt.FunctionDef); ok {
			forms++
		}
		return true
	})
	if got, want := forms, len(module.Forms); got != want {
		t.Fatalf("visited %d forms, want %d", got, want)
	}
}

func TestWalk_FalseReturnSkipsChildrenNotSiblings(t *testing.T) {
	module := parse(t, sample)
	var sawFunctionDef, sawFunctionClause, sawAttribute bool
	visit.Walk(module, func(n efmt.Node) bool {
		switch n.(type) {
		case *efmt.FunctionDef:
			sawFunctionDef = true
			return false
		case *efmt.FunctionClause:
			sawFunctionClause = true
		case *efmt.AttributeForm:
			sawAttribute = true
		}
		return true
	})
	if !sawFunctionDef {
		t.Fatalf("Walk never visited the FunctionDef")
	}
	if sawFunctionClause {
		t.Fatalf("Walk visited a FunctionClause even though its parent returned false")
	}
	if !sawAttribute {
		t.Fatalf("Walk never visited the -module attribute form, a sibling of the pruned FunctionDef")
	}
}

func TestWalk_NilRootIsANoOp(t *testing.T) {
	calls := 0
	visit.Walk((*efmt.Module)(nil), func(efmt.Node) bool {
		calls++
		return true
	})
	if calls != 0 {
		t.Fatalf("Walk(nil) invoked fn %d times, want 0", calls)
	}
}

func TestChildren_CaseClauseIncludesPatternGuardAndBody(t *testing.T) {
	module := parse(t, sample)
	var clause *efmt.CaseClause
	visit.Walk(module, func(n efmt.Node) bool {
		if c, ok := n.(*efmt.CaseClause); ok && clause == nil {
			clause = c
		}
		return true
	})
	if clause == nil {
		t.Fatalf("no CaseClause found while walking %q", sample)
	}
	children := visit.Children(clause)
	if len(children) == 0 {
		t.Fatalf("Children(CaseClause) = empty, want at least the pattern and body")
	}
}

func TestChildren_LeafTokenNodesHaveNoChildren(t *testing.T) {
	module := parse(t, sample)
	var atom *efmt.AtomExpr
	visit.Walk(module, func(n efmt.Node) bool {
		if a, ok := n.(*efmt.AtomExpr); ok && atom == nil {
			atom = a
		}
		return true
	})
	if atom == nil {
		t.Fatalf("no AtomExpr found while walking %q", sample)
	}
	if got := visit.Children(atom); got != nil {
		t.Fatalf("Children(AtomExpr) = %+v, want nil", got)
	}
}
