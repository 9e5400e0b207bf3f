package syntax

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/roach88/mulderive/internal/ir"
)

// Probe sources wrap a fragment in the smallest item that gives it a fixed
// place in the syntax tree.
const (
	typeProbe      = "type __Probe = %s;"
	paramsProbe    = "struct __Probe<%s>;"
	predicateProbe = "fn __probe() where %s {}"
)

// ParseType normalizes a Rust type written as text, e.g. "Vec < T >".
func ParseType(ctx context.Context, text string) (ir.Type, error) {
	var out ir.Type
	err := probe(ctx, typeProbe, text, func(root *sitter.Node, src []byte) error {
		item := findChild(root, "type_item")
		if item == nil {
			return fmt.Errorf("not a type")
		}
		typ := item.ChildByFieldName("type")
		if typ == nil {
			return fmt.Errorf("not a type")
		}
		out = typeOf(typ, src)
		return nil
	})
	return out, err
}

// ParseParams normalizes a comma-separated generic parameter list such as
// "'a, T: Copy + Default, const N: usize".
func ParseParams(ctx context.Context, text string) ([]ir.GenericParam, error) {
	var out []ir.GenericParam
	err := probe(ctx, paramsProbe, text, func(root *sitter.Node, src []byte) error {
		item := findChild(root, "struct_item")
		if item == nil {
			return fmt.Errorf("not a generic parameter list")
		}
		params, err := paramsOf(item.ChildByFieldName("type_parameters"), src)
		if err != nil {
			return err
		}
		out = params
		return nil
	})
	return out, err
}

// ParsePredicates normalizes where-clause predicates such as
// "T: Clone, U: Into<T>".
func ParsePredicates(ctx context.Context, text string) ([]ir.Predicate, error) {
	var out []ir.Predicate
	err := probe(ctx, predicateProbe, text, func(root *sitter.Node, src []byte) error {
		item := findChild(root, "function_item")
		if item == nil {
			return fmt.Errorf("not a where predicate")
		}
		preds, err := whereOf(findChild(item, "where_clause"), src)
		if err != nil {
			return err
		}
		if len(preds) == 0 {
			return fmt.Errorf("not a where predicate")
		}
		out = preds
		return nil
	})
	return out, err
}

func probe(ctx context.Context, format, text string, read func(*sitter.Node, []byte) error) error {
	if strings.TrimSpace(text) == "" {
		return &SyntaxError{Message: "empty fragment"}
	}
	src := []byte(fmt.Sprintf(format, text))
	tree, err := parse(ctx, src)
	if err != nil {
		return err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.NamedChildCount() != 1 || firstError(root) != nil {
		return &SyntaxError{Message: fmt.Sprintf("invalid Rust syntax: %q", text)}
	}
	if err := read(root, src); err != nil {
		return &SyntaxError{Message: fmt.Sprintf("%q: %v", text, err)}
	}
	return nil
}
