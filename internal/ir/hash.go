package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainDecl      = "mulderive/decl/v1"
	DomainExpansion = "mulderive/expansion/v1"
	DomainFragment  = "mulderive/fragment/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DeclHash computes the content-addressed identity of a declaration.
func DeclHash(d *TypeDecl) (string, error) {
	canonical, err := MarshalCanonical(d.CanonicalMap())
	if err != nil {
		return "", fmt.Errorf("DeclHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainDecl, canonical), nil
}

// ExpansionKey identifies one expansion: a declaration, an operator and
// the engine version that expands it. Equal keys produce equal output.
func ExpansionKey(d *TypeDecl, op Operator) (string, error) {
	declHash, err := DeclHash(d)
	if err != nil {
		return "", fmt.Errorf("ExpansionKey: %w", err)
	}
	obj := map[string]any{
		"decl":           declHash,
		"operator":       op.Name,
		"trait_path":     op.TraitPath,
		"copy_path":      op.CopyPath,
		"engine_version": EngineVersion,
		"ir_version":     IRVersion,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ExpansionKey: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainExpansion, canonical), nil
}

// FragmentHash computes the content-addressed identity of a fragment.
func FragmentHash(f *ImplFragment) (string, error) {
	canonical, err := MarshalCanonical(f.CanonicalMap())
	if err != nil {
		return "", fmt.Errorf("FragmentHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainFragment, canonical), nil
}

// MustExpansionKey is like ExpansionKey but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustExpansionKey(d *TypeDecl, op Operator) string {
	key, err := ExpansionKey(d, op)
	if err != nil {
		panic(err)
	}
	return key
}
