// Package ir provides the intermediate representation shared by the front
// ends, the derive core and the renderer.
//
// This package contains type definitions and their canonical encodings
// only. All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Types are canonical token sequences; structural equality is token equality
//   - Field layouts are a closed two-variant sum (Positional, Named)
//   - Canonical JSON (RFC 8785) is the only serialization used for hashing
//   - No wall-clock data anywhere in hashed values
package ir
