package syntax

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/roach88/mulderive/internal/ir"
)

// ParseSource extracts every struct, enum and union item that carries a
// `#[derive(...)]` attribute. Items inside inline modules are included.
// Derive names are recorded by their last path segment, so
// `derive(derive_more::Mul)` yields "Mul".
func ParseSource(ctx context.Context, file string, src []byte) ([]ir.TypeDecl, error) {
	tree, err := parse(ctx, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if bad := firstError(root); bad != nil {
		return nil, &SyntaxError{
			Pos:     positionOf(file, bad),
			Message: fmt.Sprintf("cannot parse Rust source near %q", snippet(bad.Content(src))),
		}
	}

	var decls []ir.TypeDecl
	if err := collectItems(root, file, src, &decls); err != nil {
		return nil, err
	}
	return decls, nil
}

// collectItems walks the items of a source_file or declaration_list.
// Attributes are siblings that precede the item they annotate.
func collectItems(container *sitter.Node, file string, src []byte, decls *[]ir.TypeDecl) error {
	var derives []string
	for i := 0; i < int(container.NamedChildCount()); i++ {
		child := container.NamedChild(i)
		switch child.Type() {
		case "line_comment", "block_comment":
			continue
		case "attribute_item":
			derives = append(derives, deriveNames(child, src)...)
			continue
		case "struct_item", "enum_item", "union_item":
			if len(derives) > 0 {
				decl, err := declOf(child, file, src)
				if err != nil {
					return err
				}
				decl.Derives = derives
				*decls = append(*decls, decl)
			}
		case "mod_item":
			if body := child.ChildByFieldName("body"); body != nil {
				if err := collectItems(body, file, src, decls); err != nil {
					return err
				}
			}
		}
		derives = nil
	}
	return nil
}

// deriveNames returns the trait names of a `#[derive(A, b::B)]` attribute.
// Other attributes yield nil.
func deriveNames(n *sitter.Node, src []byte) []string {
	attr := findChild(n, "attribute")
	if attr == nil {
		return nil
	}
	text := strings.TrimSpace(attr.Content(src))
	open := strings.IndexByte(text, '(')
	if open < 0 || !strings.HasSuffix(text, ")") {
		return nil
	}
	if strings.TrimSpace(text[:open]) != "derive" {
		return nil
	}

	var names []string
	for _, part := range strings.Split(text[open+1:len(text)-1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if idx := strings.LastIndex(part, "::"); idx >= 0 {
			part = strings.TrimSpace(part[idx+2:])
		}
		names = append(names, part)
	}
	return names
}

func declOf(n *sitter.Node, file string, src []byte) (ir.TypeDecl, error) {
	decl := ir.TypeDecl{Pos: positionOf(file, n)}

	name := n.ChildByFieldName("name")
	if name == nil {
		return decl, &SyntaxError{Pos: decl.Pos, Message: "type item without a name"}
	}
	decl.Name = name.Content(src)

	params, err := paramsOf(n.ChildByFieldName("type_parameters"), src)
	if err != nil {
		return decl, &SyntaxError{Pos: decl.Pos, Message: err.Error()}
	}
	where, err := whereOf(findChild(n, "where_clause"), src)
	if err != nil {
		return decl, &SyntaxError{Pos: decl.Pos, Message: err.Error()}
	}
	decl.Generics = ir.Generics{Params: params, Where: where}

	switch n.Type() {
	case "enum_item":
		decl.Kind = ir.KindEnum
		return decl, nil
	case "union_item":
		decl.Kind = ir.KindUnion
		return decl, nil
	}

	decl.Kind = ir.KindStruct
	body := n.ChildByFieldName("body")
	if body == nil {
		// Unit struct: `struct Marker;`
		return decl, nil
	}

	switch body.Type() {
	case "field_declaration_list":
		var fields ir.Named
		for i := 0; i < int(body.NamedChildCount()); i++ {
			f := body.NamedChild(i)
			if f.Type() != "field_declaration" {
				continue
			}
			fname := f.ChildByFieldName("name")
			ftype := f.ChildByFieldName("type")
			if fname == nil || ftype == nil {
				return decl, &SyntaxError{Pos: positionOf(file, f), Message: "incomplete field declaration"}
			}
			fields = append(fields, ir.Field{Name: fname.Content(src), Type: typeOf(ftype, src)})
		}
		if len(fields) > 0 {
			decl.Layout = fields
		}

	case "ordered_field_declaration_list":
		var fields ir.Positional
		for i := 0; i < int(body.ChildCount()); i++ {
			if body.FieldNameForChild(i) != "type" {
				continue
			}
			fields = append(fields, ir.Field{Type: typeOf(body.Child(i), src)})
		}
		if len(fields) > 0 {
			decl.Layout = fields
		}
	}
	return decl, nil
}

func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
