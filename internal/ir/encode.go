package ir

import "fmt"

// CanonicalMap converts a type to its canonical JSON form: the token list.
func (t Type) CanonicalMap() []string {
	if t.Tokens == nil {
		return []string{}
	}
	return t.Tokens
}

func typesToCanonical(ts []Type) []any {
	out := make([]any, len(ts))
	for i, t := range ts {
		out[i] = t.CanonicalMap()
	}
	return out
}

// CanonicalMap converts generics to a map[string]any for canonical JSON.
func (g Generics) CanonicalMap() map[string]any {
	params := make([]any, len(g.Params))
	for i, p := range g.Params {
		m := map[string]any{
			"kind":   p.Kind.String(),
			"name":   p.Name,
			"bounds": typesToCanonical(p.Bounds),
		}
		if p.Default != nil {
			m["default"] = p.Default.CanonicalMap()
		}
		if p.Kind == ParamConst {
			m["const_type"] = p.ConstType.CanonicalMap()
		}
		params[i] = m
	}
	where := make([]any, len(g.Where))
	for i, w := range g.Where {
		where[i] = map[string]any{
			"bounded": w.Bounded.CanonicalMap(),
			"bounds":  typesToCanonical(w.Bounds),
		}
	}
	return map[string]any{
		"params": params,
		"where":  where,
	}
}

// CanonicalMap converts a declaration to a map[string]any for canonical
// JSON. Source position and requested derives are excluded: they do not
// affect what an expansion emits.
func (d *TypeDecl) CanonicalMap() map[string]any {
	m := map[string]any{
		"name":     d.Name,
		"kind":     d.Kind.String(),
		"generics": d.Generics.CanonicalMap(),
	}
	switch layout := d.Layout.(type) {
	case Positional:
		m["layout"] = "positional"
		m["fields"] = fieldsToCanonical(layout)
	case Named:
		m["layout"] = "named"
		m["fields"] = fieldsToCanonical(layout)
	default:
		m["layout"] = "none"
	}
	return m
}

func fieldsToCanonical(fields []Field) []any {
	out := make([]any, len(fields))
	for i, f := range fields {
		out[i] = map[string]any{
			"name": f.Name,
			"type": f.Type.CanonicalMap(),
		}
	}
	return out
}

// ExprCanonicalMap converts an expression to a map[string]any.
func ExprCanonicalMap(e Expr) map[string]any {
	switch x := e.(type) {
	case Ident:
		return map[string]any{"ident": string(x)}
	case SelfField:
		return map[string]any{"self_field": x.Member}
	case MethodCall:
		args := make([]any, len(x.Args))
		for i, a := range x.Args {
			args[i] = ExprCanonicalMap(a)
		}
		return map[string]any{
			"call": map[string]any{
				"receiver": ExprCanonicalMap(x.Receiver),
				"method":   x.Method,
				"args":     args,
			},
		}
	case Ctor:
		fields := make([]any, len(x.Fields))
		for i, f := range x.Fields {
			fields[i] = map[string]any{
				"name":  f.Name,
				"value": ExprCanonicalMap(f.Value),
			}
		}
		return map[string]any{
			"ctor": map[string]any{
				"type":   x.Type,
				"named":  x.Named,
				"fields": fields,
			},
		}
	default:
		panic(fmt.Sprintf("ir: unknown expression %T", e))
	}
}

// CanonicalMap converts a fragment to a map[string]any for canonical JSON.
func (f *ImplFragment) CanonicalMap() map[string]any {
	params := make([]any, len(f.Method.Params))
	for i, p := range f.Method.Params {
		params[i] = map[string]any{
			"name": p.Name,
			"type": p.Type.CanonicalMap(),
		}
	}
	return map[string]any{
		"decl":      f.Decl,
		"operator":  f.Operator,
		"generics":  f.Generics.CanonicalMap(),
		"trait":     f.Trait.CanonicalMap(),
		"self_type": f.SelfType.CanonicalMap(),
		"output":    f.Output.CanonicalMap(),
		"scalar":    f.Scalar,
		"method": map[string]any{
			"name":     f.Method.Name,
			"receiver": f.Method.Receiver,
			"params":   params,
			"result":   f.Method.Result.CanonicalMap(),
			"body":     ExprCanonicalMap(f.Method.Body),
		},
	}
}
