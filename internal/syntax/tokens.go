package syntax

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/roach88/mulderive/internal/ir"
)

// SyntaxError reports source that tree-sitter could not parse.
type SyntaxError struct {
	Pos     ir.Position
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Message)
	}
	return e.Message
}

// parse runs a fresh tree-sitter parser over src. Parsers are not safe for
// concurrent use, so one is created per call.
func parse(ctx context.Context, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(rust.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse: %w", err)
	}
	return tree, nil
}

// atomic node types are emitted as a single token even though tree-sitter
// gives them children.
var atomic = map[string]bool{
	"lifetime":           true,
	"string_literal":     true,
	"raw_string_literal": true,
	"char_literal":       true,
}

// collectTokens returns the leaf tokens under n, skipping comments.
func collectTokens(n *sitter.Node, src []byte) []string {
	var tokens []string
	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "line_comment", "block_comment":
			return
		}
		if atomic[n.Type()] || n.ChildCount() == 0 {
			if text := n.Content(src); text != "" {
				tokens = append(tokens, text)
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(n)
	return tokens
}

func typeOf(n *sitter.Node, src []byte) ir.Type {
	return ir.Type{Tokens: collectTokens(n, src)}
}

// boundsOf reads a trait_bounds node: `: A + B + 'a`.
func boundsOf(n *sitter.Node, src []byte) []ir.Type {
	if n == nil {
		return nil
	}
	var bounds []ir.Type
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "line_comment", "block_comment":
			continue
		}
		bounds = append(bounds, typeOf(child, src))
	}
	return bounds
}

func positionOf(file string, n *sitter.Node) ir.Position {
	p := n.StartPoint()
	return ir.Position{File: file, Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

// firstError finds the first ERROR or missing node under n.
func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstError(n.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}

func findChild(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == typ {
			return child
		}
	}
	return nil
}
