/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

package token

import (
	"fmt"
	"strings"
	"time"

	jwt5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config carries the token service settings shared by the issuer and the
// validator. Both sides must be constructed from the same values or no
// issued token will ever validate.
type Config struct {
	// Algorithm is the JWS algorithm identifier, e.g. "HS512".
	Algorithm string
	// Issuers is a comma-separated issuer list. Tokens are issued under the
	// first entry; validation accepts any entry. Empty disables the check.
	Issuers string
	// AudiencePrefix is prepended to the fixed per-claim-set audience.
	AudiencePrefix string
	// ExpirationMinutes is the token TTL. 0 means non-expiring tokens.
	ExpirationMinutes int
}

func (c Config) issuerList() []string {
	if strings.TrimSpace(c.Issuers) == "" {
		return nil
	}
	parts := strings.Split(c.Issuers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Issuer builds signed compact token strings. It holds no mutable state and
// may be shared across goroutines.
type Issuer struct {
	method         jwt5.SigningMethod
	keys           *KeyProvider
	issuer         string
	audiencePrefix string
	ttl            time.Duration
	now            func() time.Time
}

// NewIssuer creates an Issuer signing with the provider's private key.
func NewIssuer(keys *KeyProvider, cfg Config) *Issuer {
	issuer := ""
	if list := cfg.issuerList(); len(list) > 0 {
		issuer = list[0]
	}
	return &Issuer{
		method:         jwt5.GetSigningMethod(cfg.Algorithm),
		keys:           keys,
		issuer:         issuer,
		audiencePrefix: cfg.AudiencePrefix,
		ttl:            time.Duration(cfg.ExpirationMinutes) * time.Minute,
		now:            time.Now,
	}
}

// IssueUploadToken signs the claims under the "Upload" audience.
func (i *Issuer) IssueUploadToken(t Token[UploadClaim]) (string, error) {
	return i.issue(t.rawClaims(), UploadAudience)
}

// IssueDownloadToken signs the claims under the "Download" audience. The
// FILE_ID claim, carried on the "sub" wire name, becomes the envelope
// subject.
func (i *Issuer) IssueDownloadToken(t Token[DownloadClaim]) (string, error) {
	return i.issue(t.rawClaims(), DownloadAudience)
}

func (i *Issuer) issue(claims map[string]any, audience string) (string, error) {
	now := i.now().UTC()

	payload := jwt5.MapClaims{
		"iat": jwt5.NewNumericDate(now),
	}
	if i.ttl > 0 {
		payload["exp"] = jwt5.NewNumericDate(now.Add(i.ttl))
	}
	if i.issuer != "" {
		payload["iss"] = i.issuer
	}
	if audience != "" {
		payload["aud"] = i.audiencePrefix + audience
	}
	for name, value := range claims {
		payload[name] = value
	}
	// Upload tokens carry no file identity; give each one a unique subject
	// anyway so the validator's subject requirement holds for both sets.
	if subject, _ := payload["sub"].(string); subject == "" {
		payload["sub"] = uuid.NewString()
	}

	signed, err := jwt5.NewWithClaims(i.method, payload).SignedString(i.signingKey())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSigningFailed, err)
	}
	return signed, nil
}

func (i *Issuer) signingKey() any {
	if i.method == jwt5.SigningMethodNone {
		return jwt5.UnsafeAllowNoneSignatureType
	}
	return i.keys.PrivateKey()
}
