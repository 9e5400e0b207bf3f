package syntax

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/roach88/mulderive/internal/ir"
)

// paramsOf reads a type_parameters node. Both the older grammar shapes
// (constrained_type_parameter, optional_type_parameter) and the newer ones
// (type_parameter, lifetime_parameter) are accepted.
func paramsOf(n *sitter.Node, src []byte) ([]ir.GenericParam, error) {
	if n == nil {
		return nil, nil
	}
	var params []ir.GenericParam
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "attribute_item", "line_comment", "block_comment":
			continue
		}
		p, err := paramOf(child, src)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

func paramOf(n *sitter.Node, src []byte) (ir.GenericParam, error) {
	switch n.Type() {
	case "lifetime":
		return ir.GenericParam{Kind: ir.ParamLifetime, Name: n.Content(src)}, nil

	case "type_identifier", "metavariable":
		return ir.GenericParam{Kind: ir.ParamType, Name: n.Content(src)}, nil

	case "constrained_type_parameter":
		left := n.ChildByFieldName("left")
		if left == nil {
			return ir.GenericParam{}, fmt.Errorf("constrained parameter without a name: %q", n.Content(src))
		}
		kind := ir.ParamType
		if left.Type() == "lifetime" {
			kind = ir.ParamLifetime
		}
		return ir.GenericParam{
			Kind:   kind,
			Name:   left.Content(src),
			Bounds: boundsOf(n.ChildByFieldName("bounds"), src),
		}, nil

	case "optional_type_parameter":
		name := n.ChildByFieldName("name")
		if name == nil {
			return ir.GenericParam{}, fmt.Errorf("defaulted parameter without a name: %q", n.Content(src))
		}
		p, err := paramOf(name, src)
		if err != nil {
			return ir.GenericParam{}, err
		}
		if def := n.ChildByFieldName("default_type"); def != nil {
			t := typeOf(def, src)
			p.Default = &t
		}
		return p, nil

	case "type_parameter":
		name := n.ChildByFieldName("name")
		if name == nil {
			return ir.GenericParam{}, fmt.Errorf("type parameter without a name: %q", n.Content(src))
		}
		p := ir.GenericParam{
			Kind:   ir.ParamType,
			Name:   name.Content(src),
			Bounds: boundsOf(n.ChildByFieldName("bounds"), src),
		}
		if def := n.ChildByFieldName("default_type"); def != nil {
			t := typeOf(def, src)
			p.Default = &t
		}
		return p, nil

	case "lifetime_parameter":
		name := n.ChildByFieldName("name")
		if name == nil {
			return ir.GenericParam{}, fmt.Errorf("lifetime parameter without a name: %q", n.Content(src))
		}
		return ir.GenericParam{
			Kind:   ir.ParamLifetime,
			Name:   name.Content(src),
			Bounds: boundsOf(n.ChildByFieldName("bounds"), src),
		}, nil

	case "const_parameter":
		name := n.ChildByFieldName("name")
		typ := n.ChildByFieldName("type")
		if name == nil || typ == nil {
			return ir.GenericParam{}, fmt.Errorf("incomplete const parameter: %q", n.Content(src))
		}
		p := ir.GenericParam{
			Kind:      ir.ParamConst,
			Name:      name.Content(src),
			ConstType: typeOf(typ, src),
		}
		if def := n.ChildByFieldName("value"); def != nil {
			t := typeOf(def, src)
			p.Default = &t
		}
		return p, nil

	default:
		return ir.GenericParam{}, fmt.Errorf("unsupported generic parameter %s: %q", n.Type(), n.Content(src))
	}
}

// whereOf reads a where_clause node.
func whereOf(n *sitter.Node, src []byte) ([]ir.Predicate, error) {
	if n == nil {
		return nil, nil
	}
	var preds []ir.Predicate
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "where_predicate" {
			continue
		}
		left := child.ChildByFieldName("left")
		if left == nil {
			return nil, fmt.Errorf("where predicate without a bounded type: %q", child.Content(src))
		}
		// A `for<'a>` binder is either the left node itself or a sibling
		// in front of it, depending on the grammar version. Dropping it
		// would leave 'a unbound in the generated impl.
		if left.Type() == "higher_ranked_trait_bound" || left.StartByte() > child.StartByte() {
			return nil, fmt.Errorf("higher-ranked where predicates are not supported: %q", child.Content(src))
		}
		preds = append(preds, ir.Predicate{
			Bounded: typeOf(left, src),
			Bounds:  boundsOf(child.ChildByFieldName("bounds"), src),
		})
	}
	return preds, nil
}
