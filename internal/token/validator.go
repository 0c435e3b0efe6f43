/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

package token

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	jwt5 "github.com/golang-jwt/jwt/v5"
)

// Validator parses and verifies compact token strings and reconstructs the
// typed claim map. It is a pure function of its inputs, the shared key
// material and the current time; safe for concurrent use.
type Validator struct {
	algorithm      string
	keys           *KeyProvider
	issuers        []string
	audiencePrefix string
	requireExp     bool
	logger         *slog.Logger
	now            func() time.Time
}

// NewValidator creates a Validator verifying with the provider's public key.
func NewValidator(keys *KeyProvider, cfg Config, logger *slog.Logger) *Validator {
	return &Validator{
		algorithm:      cfg.Algorithm,
		keys:           keys,
		issuers:        cfg.issuerList(),
		audiencePrefix: cfg.AudiencePrefix,
		requireExp:     cfg.ExpirationMinutes > 0,
		logger:         logger,
		now:            time.Now,
	}
}

// ParseUploadToken verifies a token against the "Upload" audience and
// returns its typed claims. A blank token string yields an empty token and
// no error; whether absence is acceptable is the caller's decision.
func (v *Validator) ParseUploadToken(tokenString string) (Token[UploadClaim], error) {
	claims, err := v.parse(tokenString, UploadAudience)
	if err != nil {
		return Token[UploadClaim]{}, err
	}
	builder := NewBuilder[UploadClaim]()
	for name, value := range claims {
		if claim, ok := UploadClaimByWireName(name); ok && value != nil {
			builder.Claim(claim, claim.Convert(value))
		}
	}
	return builder.Build(), nil
}

// ParseDownloadToken verifies a token against the "Download" audience and
// returns its typed claims. The envelope subject surfaces as the FILE_ID
// claim.
func (v *Validator) ParseDownloadToken(tokenString string) (Token[DownloadClaim], error) {
	claims, err := v.parse(tokenString, DownloadAudience)
	if err != nil {
		return Token[DownloadClaim]{}, err
	}
	builder := NewBuilder[DownloadClaim]()
	for name, value := range claims {
		if claim, ok := DownloadClaimByWireName(name); ok && value != nil {
			builder.Claim(claim, claim.Convert(value))
		}
	}
	return builder.Build(), nil
}

// parse verifies the token string and returns the raw verified claim set.
// Verification failures collapse into ErrInvalidToken; the underlying
// reason is logged and never surfaced to the untrusted caller.
func (v *Validator) parse(tokenString, audience string) (map[string]any, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return map[string]any{}, nil
	}

	opts := []jwt5.ParserOption{
		jwt5.WithValidMethods([]string{v.algorithm}),
		jwt5.WithAudience(v.audiencePrefix + audience),
		jwt5.WithTimeFunc(func() time.Time { return v.now() }),
	}
	if v.requireExp {
		opts = append(opts, jwt5.WithExpirationRequired())
	}

	claims := jwt5.MapClaims{}
	if _, err := jwt5.ParseWithClaims(tokenString, claims, v.verificationKey, opts...); err != nil {
		v.logger.Debug("Invalid JWT token", "error", err)
		return nil, ErrInvalidToken
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		v.logger.Debug("Invalid JWT token", "error", "missing subject")
		return nil, ErrInvalidToken
	}
	if len(v.issuers) > 0 {
		issuer, err := claims.GetIssuer()
		if err != nil || !slices.Contains(v.issuers, issuer) {
			v.logger.Debug("Invalid JWT token", "error", "unexpected issuer", "issuer", issuer)
			return nil, ErrInvalidToken
		}
	}
	return claims, nil
}

// verificationKey is the parser keyfunc. The algorithm check here is
// redundant with WithValidMethods but keeps a downgrade from ever reaching
// signature verification with the wrong key type.
func (v *Validator) verificationKey(t *jwt5.Token) (any, error) {
	if t.Method.Alg() != v.algorithm {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	if v.algorithm == AlgorithmNone {
		return jwt5.UnsafeAllowNoneSignatureType, nil
	}
	return v.keys.PublicKey(), nil
}

