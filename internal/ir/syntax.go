package ir

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Type is a Rust type (or trait bound) held as its canonical token sequence.
//
// Front ends produce the tokens from a parsed syntax tree, so whitespace and
// comments never leak into identity: `Vec < T >` and `Vec<T>` are the same
// Type. Two types are structurally equal iff their tokens are equal.
type Type struct {
	Tokens []string
}

// NewType builds a Type from already-lexed tokens.
func NewType(tokens ...string) Type {
	return Type{Tokens: append([]string(nil), tokens...)}
}

// PathType builds a Type from a `::`-separated path such as "::std::ops::Mul".
func PathType(path string) Type {
	return Type{Tokens: PathTokens(path)}
}

// PathTokens splits a path into identifier and `::` tokens.
func PathTokens(path string) []string {
	var tokens []string
	rest := strings.TrimSpace(path)
	if strings.HasPrefix(rest, "::") {
		tokens = append(tokens, "::")
		rest = rest[2:]
	}
	for i, seg := range strings.Split(rest, "::") {
		if i > 0 {
			tokens = append(tokens, "::")
		}
		tokens = append(tokens, strings.TrimSpace(seg))
	}
	return tokens
}

// Key returns a string usable as a map key for structural equality.
func (t Type) Key() string {
	return strings.Join(t.Tokens, "\x1f")
}

// Equal reports structural equality.
func (t Type) Equal(other Type) bool {
	if len(t.Tokens) != len(other.Tokens) {
		return false
	}
	for i := range t.Tokens {
		if t.Tokens[i] != other.Tokens[i] {
			return false
		}
	}
	return true
}

// IsZero reports whether the type has no tokens.
func (t Type) IsZero() bool {
	return len(t.Tokens) == 0
}

// String renders the type with deterministic rustfmt-like spacing.
func (t Type) String() string {
	return JoinTokens(t.Tokens)
}

// Idents returns every identifier-like token of the type, in order.
// Lifetimes and literals are skipped.
func (t Type) Idents() []string {
	var out []string
	for _, tok := range t.Tokens {
		if isIdent(tok) {
			out = append(out, tok)
		}
	}
	return out
}

// JoinTokens renders a token sequence with deterministic spacing.
func JoinTokens(tokens []string) string {
	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 && spaceBetween(tokens[i-1], tok) {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
	}
	return b.String()
}

func spaceBetween(prev, cur string) bool {
	switch {
	case prev == "=" || cur == "=":
		return true
	case prev == "+" || cur == "+":
		return true
	case prev == "->" || cur == "->":
		return true
	case prev == "," || prev == ";":
		return cur != ")" && cur != ">" && cur != "]"
	case prev == ":":
		return true
	}

	switch cur {
	case ",", ";", ":", ")", "]", ">", "::", "<", "(", "[":
		return false
	}

	if isWord(cur) {
		if isWord(prev) {
			return true
		}
		switch prev {
		case ">", ")", "]":
			return true
		}
	}
	return false
}

// isWord reports whether tok is an identifier, keyword, number, lifetime
// or literal.
func isWord(tok string) bool {
	r, _ := utf8.DecodeRuneInString(tok)
	return r == '_' || r == '\'' || r == '"' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isIdent(tok string) bool {
	r, _ := utf8.DecodeRuneInString(tok)
	return r == '_' || unicode.IsLetter(r)
}
