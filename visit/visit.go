// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package visit walks a parsed module's concrete syntax tree in document
// order. Grounded on the teacher's walkers/anhinga.Walk: explicit,
// deterministic per-node-kind recursion rather than reflection, so
// traversal order always matches source order.
package visit

import (
	"github.com/verbit/efmt"
)

// Fn is called once per node in document order. Returning false skips
// that node's children; it does not stop the overall walk.
type Fn func(efmt.Node) bool

// Walk visits root and every descendant in document order.
func Walk(root efmt.Node, fn Fn) {
	if root == nil || isNilNode(root) {
		return
	}
	if !fn(root) {
		return
	}
	for _, child := range Children(root) {
		Walk(child, fn)
	}
}

// Children returns n's immediate children in source order. Leaf nodes
// (tokens, literals) return nil.
func Children(n efmt.Node) []efmt.Node {
	switch v := n.(type) {
	case *efmt.Module:
		out := make([]efmt.Node, 0, len(v.Forms))
		for _, f := range v.Forms {
			out = append(out, f)
		}
		return out

	case *efmt.FunctionDef:
		return []efmt.Node{&v.Clauses}

	case *efmt.AttributeForm:
		var out []efmt.Node
		for i := range v.Args.List.Items {
			out = append(out, v.Args.List.Items[i])
		}
		return out

	case *efmt.FunctionClause:
		var out []efmt.Node
		for i := range v.Args.List.Items {
			out = append(out, v.Args.List.Items[i])
		}
		if v.Guard.Present {
			out = append(out, v.Guard.Value)
		}
		out = append(out, v.Body)
		return out

	case efmt.ExprSeq:
		var out []efmt.Node
		for i := range v.Items.Items {
			out = append(out, v.Items.Items[i])
		}
		return out

	case *efmt.TupleExpr:
		return itemsOf(v.Fields)
	case *efmt.ListExpr:
		var out []efmt.Node
		for i := range v.Elements.List.Items {
			out = append(out, v.Elements.List.Items[i])
		}
		if v.Tail.Present {
			out = append(out, v.Tail.Value)
		}
		return out
	case *efmt.MapExpr:
		var out []efmt.Node
		if v.Base.Present {
			out = append(out, v.Base.Value)
		}
		for i := range v.Fields.List.Items {
			out = append(out, v.Fields.List.Items[i])
		}
		return out
	case efmt.MapField:
		return []efmt.Node{v.Key, v.Value}
	case *efmt.RecordExpr:
		var out []efmt.Node
		if v.Base.Present {
			out = append(out, v.Base.Value)
		}
		for i := range v.Fields.List.Items {
			out = append(out, v.Fields.List.Items[i])
		}
		return out
	case *efmt.BitstringExpr:
		var out []efmt.Node
		for i := range v.Segments.List.Items {
			out = append(out, v.Segments.List.Items[i])
		}
		return out
	case *efmt.BinaryExpr:
		return []efmt.Node{v.Left, v.Right}
	case *efmt.UnaryExpr:
		return []efmt.Node{v.Operand}
	case *efmt.CallExpr:
		var out []efmt.Node
		if v.Module.Present {
			out = append(out, v.Module.Value)
		}
		out = append(out, v.Callee)
		for i := range v.Args.List.Items {
			out = append(out, v.Args.List.Items[i])
		}
		return out
	case *efmt.FunExpr:
		if v.IsLiteral() {
			return []efmt.Node{&v.Clauses.Value}
		}
		return nil
	case *efmt.BlockExpr:
		var out []efmt.Node
		if v.Subject.Present {
			out = append(out, v.Subject.Value)
		}
		if v.Body.Present {
			out = append(out, v.Body.Value)
		}
		if v.Clauses.Present {
			out = append(out, &v.Clauses.Value)
		}
		if v.CatchClauses.Present {
			out = append(out, &v.CatchClauses.Value)
		}
		if v.AfterTimeout.Present {
			out = append(out, v.AfterTimeout.Value)
		}
		if v.AfterBody.Present {
			out = append(out, v.AfterBody.Value)
		}
		return out
	case *efmt.CaseClause:
		var out []efmt.Node
		if v.Pattern.Present {
			out = append(out, v.Pattern.Value)
		}
		if v.Guard.Present {
			out = append(out, v.Guard.Value)
		}
		out = append(out, v.Body)
		return out
	case *efmt.CatchClause:
		var out []efmt.Node
		if v.Class.Present {
			out = append(out, v.Class.Value)
		}
		out = append(out, v.Pattern)
		if v.Stacktrace.Present {
			out = append(out, v.Stacktrace.Value)
		}
		if v.Guard.Present {
			out = append(out, v.Guard.Value)
		}
		out = append(out, v.Body)
		return out
	case *efmt.ComprehensionExpr:
		out := []efmt.Node{v.Head}
		for i := range v.Qualifiers.Items {
			out = append(out, v.Qualifiers.Items[i])
		}
		return out
	case efmt.GuardSeq:
		out := make([]efmt.Node, 0, len(v.Alternatives.Items))
		for _, alt := range v.Alternatives.Items {
			out = append(out, alt)
		}
		return out
	case efmt.BitstringSeg:
		out := []efmt.Node{v.Value}
		if v.Size.Present {
			out = append(out, v.Size.Value)
		}
		for i := range v.Types.List.Items {
			out = append(out, v.Types.List.Items[i])
		}
		return out

	case efmt.Qualifier:
		if v.Pattern.Present {
			return []efmt.Node{v.Pattern.Value, v.Source}
		}
		return []efmt.Node{v.Source}
	case *efmt.ParenExpr:
		return []efmt.Node{v.Item}
	case *efmt.CatchExpr:
		return []efmt.Node{v.Operand}

	case *efmt.Clauses[*efmt.FunctionClause]:
		out := make([]efmt.Node, 0, len(v.Items))
		for _, c := range v.Items {
			out = append(out, c)
		}
		return out
	case *efmt.Clauses[*efmt.CaseClause]:
		out := make([]efmt.Node, 0, len(v.Items))
		for _, c := range v.Items {
			out = append(out, c)
		}
		return out
	case *efmt.Clauses[*efmt.CatchClause]:
		out := make([]efmt.Node, 0, len(v.Items))
		for _, c := range v.Items {
			out = append(out, c)
		}
		return out

	default:
		return nil
	}
}

func itemsOf(items efmt.Items[efmt.Expr]) []efmt.Node {
	var out []efmt.Node
	for i := range items.List.Items {
		out = append(out, items.List.Items[i])
	}
	return out
}

// isNilNode reports whether n holds a typed nil pointer, which Children
// would otherwise dereference.
func isNilNode(n efmt.Node) bool {
	switch v := n.(type) {
	case *efmt.Module:
		return v == nil
	case *efmt.FunctionDef:
		return v == nil
	case *efmt.AttributeForm:
		return v == nil
	case *efmt.FunctionClause:
		return v == nil
	case *efmt.TupleExpr:
		return v == nil
	case *efmt.ListExpr:
		return v == nil
	case *efmt.MapExpr:
		return v == nil
	case *efmt.RecordExpr:
		return v == nil
	case *efmt.BitstringExpr:
		return v == nil
	case *efmt.BinaryExpr:
		return v == nil
	case *efmt.UnaryExpr:
		return v == nil
	case *efmt.CallExpr:
		return v == nil
	case *efmt.FunExpr:
		return v == nil
	case *efmt.BlockExpr:
		return v == nil
	case *efmt.CaseClause:
		return v == nil
	case *efmt.CatchClause:
		return v == nil
	case *efmt.ComprehensionExpr:
		return v == nil
	case *efmt.ParenExpr:
		return v == nil
	case *efmt.CatchExpr:
		return v == nil
	default:
		return false
	}
}
