// Package syntax is the Rust front end. It parses Rust source with
// tree-sitter and turns struct, enum and union items into ir.TypeDecl
// values.
//
// The same parser normalizes the type, bound, predicate and generic
// parameter strings that CUE and YAML declarations carry, so every front
// end shares one notion of structural type equality: the sequence of leaf
// tokens of the parsed syntax tree.
package syntax
