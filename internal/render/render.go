// Package render prints ir fragments as Rust source.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/mulderive/internal/ir"
)

const indent = "    "

// Header is written at the top of every generated file.
const Header = "// Code generated by mulderive. DO NOT EDIT.\n"

// Fragment renders one implementation block, terminated by a newline.
func Fragment(f *ir.ImplFragment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "impl%s %s for %s\n", ImplGenerics(f.Generics), f.Trait, f.SelfType)
	if len(f.Generics.Where) > 0 {
		b.WriteString("where\n")
		for _, w := range f.Generics.Where {
			fmt.Fprintf(&b, "%s%s,\n", indent, Predicate(w))
		}
	}
	b.WriteString("{\n")
	fmt.Fprintf(&b, "%stype Output = %s;\n\n", indent, f.Output)
	fmt.Fprintf(&b, "%sfn %s(%s) -> %s {\n", indent, f.Method.Name, params(f.Method), f.Method.Result)
	fmt.Fprintf(&b, "%s%s%s\n", indent, indent, Expr(f.Method.Body))
	fmt.Fprintf(&b, "%s}\n", indent)
	b.WriteString("}\n")
	return b.String()
}

// File writes the header followed by each fragment, separated by blank
// lines.
func File(w io.Writer, fragments []*ir.ImplFragment) error {
	rendered := make([]string, len(fragments))
	for i, f := range fragments {
		rendered[i] = Fragment(f)
	}
	return Join(w, rendered)
}

// Join is File for fragments that were already rendered, such as cached
// ones.
func Join(w io.Writer, rendered []string) error {
	if _, err := io.WriteString(w, Header); err != nil {
		return err
	}
	for _, r := range rendered {
		if _, err := io.WriteString(w, "\n"+r); err != nil {
			return err
		}
	}
	return nil
}

// ImplGenerics renders the parameter list of an impl header: lifetimes
// first, defaults dropped. Empty when there are no parameters.
func ImplGenerics(g ir.Generics) string {
	params := g.Ordered()
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = param(p)
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func param(p ir.GenericParam) string {
	if p.Kind == ir.ParamConst {
		return fmt.Sprintf("const %s: %s", p.Name, p.ConstType)
	}
	if len(p.Bounds) == 0 {
		return p.Name
	}
	return p.Name + ": " + bounds(p.Bounds)
}

// Predicate renders `Bounded: B1 + B2`.
func Predicate(p ir.Predicate) string {
	if len(p.Bounds) == 0 {
		return p.Bounded.String() + ":"
	}
	return p.Bounded.String() + ": " + bounds(p.Bounds)
}

func bounds(ts []ir.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

func params(m ir.Method) string {
	parts := []string{m.Receiver}
	for _, p := range m.Params {
		parts = append(parts, p.Name+": "+p.Type.String())
	}
	return strings.Join(parts, ", ")
}

// Expr renders an expression on one line.
func Expr(e ir.Expr) string {
	switch x := e.(type) {
	case ir.Ident:
		return string(x)
	case ir.SelfField:
		return "self." + x.Member
	case ir.MethodCall:
		args := make([]string, len(x.Args))
		for i, a := range x.Args {
			args[i] = Expr(a)
		}
		return fmt.Sprintf("%s.%s(%s)", Expr(x.Receiver), x.Method, strings.Join(args, ", "))
	case ir.Ctor:
		parts := make([]string, len(x.Fields))
		for i, f := range x.Fields {
			if x.Named {
				parts[i] = f.Name + ": " + Expr(f.Value)
			} else {
				parts[i] = Expr(f.Value)
			}
		}
		if x.Named {
			return fmt.Sprintf("%s { %s }", x.Type, strings.Join(parts, ", "))
		}
		return fmt.Sprintf("%s(%s)", x.Type, strings.Join(parts, ", "))
	default:
		panic(fmt.Sprintf("render: unknown expression %T", e))
	}
}
