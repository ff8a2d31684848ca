// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package jsonout adapts a parsed module's concrete syntax tree into a
// JSON-serializable shape for the CLI's ast-dump command.
// Grounded on the teacher's adapters package: a Convert function mapping
// one representation onto another.
package jsonout

import (
	"encoding/json"

	"github.com/verbit/efmt"
	"github.com/verbit/efmt/visit"
)

// Node is the JSON-friendly projection of a CST node.
type Node struct {
	Kind     string `json:"kind"`
	Region   Region `json:"region"`
	Text     string `json:"text,omitempty"`
	Children []Node `json:"children,omitempty"`
}

// Region mirrors efmt.Region's fields for stable JSON field names,
// independent of how the CST happens to be laid out internally.
type Region struct {
	StartLine   int `json:"start_line"`
	StartColumn int `json:"start_column"`
	EndLine     int `json:"end_line"`
	EndColumn   int `json:"end_column"`
}

// Convert walks root and produces its JSON-friendly tree.
func Convert(root efmt.Node) Node {
	reg := root.Region()
	n := Node{
		Kind: kindOf(root),
		Region: Region{
			StartLine: reg.Start.Line, StartColumn: reg.Start.Column,
			EndLine: reg.End.Line, EndColumn: reg.End.Column,
		},
		Text: textOf(root),
	}
	for _, child := range visit.Children(root) {
		if child == nil {
			continue
		}
		n.Children = append(n.Children, Convert(child))
	}
	return n
}

// Marshal converts root and renders it as indented JSON.
func Marshal(root efmt.Node) ([]byte, error) {
	return json.MarshalIndent(Convert(root), "", "  ")
}

func kindOf(n efmt.Node) string {
	switch n.(type) {
	case *efmt.Module:
		return "Module"
	case *efmt.FunctionDef:
		return "FunctionDef"
	case *efmt.FunctionClause:
		return "FunctionClause"
	case *efmt.AttributeForm:
		return "AttributeForm"
	case *efmt.AtomExpr:
		return "Atom"
	case *efmt.VarExpr:
		return "Variable"
	case *efmt.IntExpr:
		return "Integer"
	case *efmt.FloatExpr:
		return "Float"
	case *efmt.CharExpr:
		return "Char"
	case *efmt.StringExpr:
		return "String"
	case *efmt.TupleExpr:
		return "Tuple"
	case *efmt.ListExpr:
		return "List"
	case *efmt.MapExpr:
		return "Map"
	case efmt.MapField:
		return "MapField"
	case *efmt.RecordExpr:
		return "Record"
	case *efmt.BitstringExpr:
		return "Bitstring"
	case efmt.BitstringSeg:
		return "BitstringSegment"
	case *efmt.BinaryExpr:
		return "BinaryOp"
	case *efmt.UnaryExpr:
		return "UnaryOp"
	case *efmt.CallExpr:
		return "Call"
	case *efmt.FunExpr:
		return "Fun"
	case *efmt.BlockExpr:
		return "Block"
	case *efmt.CaseClause:
		return "CaseClause"
	case *efmt.CatchClause:
		return "CatchClause"
	case efmt.GuardSeq:
		return "GuardSeq"
	case *efmt.ComprehensionExpr:
		return "Comprehension"
	case efmt.Qualifier:
		return "Qualifier"
	case *efmt.ParenExpr:
		return "Paren"
	case *efmt.CatchExpr:
		return "Catch"
	case efmt.ExprSeq:
		return "ExprSeq"
	case *efmt.BadNode, efmt.BadNode:
		return "Bad"
	default:
		return "Node"
	}
}

// textOf returns the source text a leaf node spans, so that atoms,
// variables, and literals are readable directly in the JSON output
// without cross-referencing positions against the original file.
func textOf(n efmt.Node) string {
	switch v := n.(type) {
	case *efmt.AtomExpr:
		return v.Tok.Text
	case *efmt.VarExpr:
		return v.Tok.Text
	case *efmt.IntExpr:
		return v.Tok.Text
	case *efmt.FloatExpr:
		return v.Tok.Text
	case *efmt.CharExpr:
		return v.Tok.Text
	case *efmt.StringExpr:
		return v.Tok.Text
	default:
		return ""
	}
}
