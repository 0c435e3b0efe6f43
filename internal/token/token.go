/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

package token

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Token is an immutable typed claim map. Claims are set once through a
// Builder and never mutated afterwards; reads convert values through the
// claim's own conversion function. The zero value is an empty token.
type Token[C Claim] struct {
	claims map[C]any
}

// Get returns the converted value of a claim, or nil when the claim is
// absent.
func (t Token[C]) Get(claim C) any {
	value, ok := t.claims[claim]
	if !ok || value == nil {
		return nil
	}
	return claim.Convert(value)
}

// GetString returns a string-valued claim, or "" when absent or not a string.
func (t Token[C]) GetString(claim C) string {
	s, _ := t.Get(claim).(string)
	return s
}

// GetInt64 reports an integer-valued claim and whether it was present.
func (t Token[C]) GetInt64(claim C) (int64, bool) {
	n, ok := t.Get(claim).(int64)
	return n, ok
}

// Claims exports the token as a wire-name keyed map of converted values.
func (t Token[C]) Claims() map[string]any {
	out := make(map[string]any, len(t.claims))
	for claim, value := range t.claims {
		out[claim.WireName()] = claim.Convert(value)
	}
	return out
}

// rawClaims exposes the unconverted values keyed by wire name. The issuer
// places these verbatim into the JWT payload.
func (t Token[C]) rawClaims() map[string]any {
	out := make(map[string]any, len(t.claims))
	for claim, value := range t.claims {
		out[claim.WireName()] = value
	}
	return out
}

// IsEmpty reports whether the token carries no claims at all.
func (t Token[C]) IsEmpty() bool {
	return len(t.claims) == 0
}

// Equal reports whether two tokens carry the same claims. Values are
// compared after conversion, so equivalent numeric representations compare
// equal.
func (t Token[C]) Equal(other Token[C]) bool {
	if len(t.claims) != len(other.claims) {
		return false
	}
	for claim, value := range t.claims {
		otherValue, ok := other.claims[claim]
		if !ok {
			return false
		}
		if !reflect.DeepEqual(claim.Convert(value), claim.Convert(otherValue)) {
			return false
		}
	}
	return true
}

// String renders the claims sorted by wire name, for logs and test failures.
func (t Token[C]) String() string {
	parts := make([]string, 0, len(t.claims))
	for claim, value := range t.claims {
		parts = append(parts, fmt.Sprintf("%s=%v", claim.WireName(), claim.Convert(value)))
	}
	sort.Strings(parts)
	return "token{" + strings.Join(parts, ", ") + "}"
}

// Builder assembles a Token. Nil values are ignored, matching the behavior
// of the validator which never stores absent claims.
type Builder[C Claim] struct {
	claims map[C]any
}

// NewBuilder returns an empty Builder.
func NewBuilder[C Claim]() *Builder[C] {
	return &Builder[C]{claims: make(map[C]any)}
}

// Claim sets a claim value. Setting nil is a no-op.
func (b *Builder[C]) Claim(claim C, value any) *Builder[C] {
	if value != nil {
		b.claims[claim] = value
	}
	return b
}

// Build freezes the builder into an immutable Token. The builder can be
// reused afterwards without affecting already built tokens.
func (b *Builder[C]) Build() Token[C] {
	claims := make(map[C]any, len(b.claims))
	for claim, value := range b.claims {
		claims[claim] = value
	}
	return Token[C]{claims: claims}
}
