/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

package token

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	jwt5 "github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

const (
	generatedRSAKeyBits  = 2048
	generatedSecretBytes = 128
)

var generatedECCurve = elliptic.P521()

// KeyConfig selects the signing algorithm and optionally supplies key
// material. When no material is supplied a key is generated at startup;
// unless KeyFile is set the generated key is ephemeral, so a process
// restart invalidates all outstanding tokens.
type KeyConfig struct {
	// Algorithm is the JWS algorithm identifier: HS256/384/512, RS256/384/512,
	// PS256/384/512, ES256/384/512 or "none".
	Algorithm string
	// Secret is the base64-encoded HMAC secret. HMAC algorithms only.
	Secret string
	// Keys is the base64-encoded JWK holding the asymmetric key pair.
	Keys string
	// KeyFile, when set, persists generated key material as a JWK so that
	// tokens survive process restarts. Supplied material is never written.
	KeyFile string
}

// KeyProvider resolves the signing and verification keys once at startup
// and is read-only afterwards, safe for unsynchronized concurrent use.
type KeyProvider struct {
	algorithm string
	private   any
	public    any
}

// NewKeyProvider resolves or generates key material for the configured
// algorithm. Unknown algorithms fail with ErrUnsupportedAlgorithm.
func NewKeyProvider(cfg KeyConfig, logger *slog.Logger) (*KeyProvider, error) {
	p := &KeyProvider{algorithm: cfg.Algorithm}

	switch {
	case strings.HasPrefix(cfg.Algorithm, "HS"):
		if err := p.loadHMACKey(cfg, logger); err != nil {
			return nil, err
		}
	case strings.HasPrefix(cfg.Algorithm, "RS"), strings.HasPrefix(cfg.Algorithm, "PS"):
		if err := p.loadRSAKey(cfg, logger); err != nil {
			return nil, err
		}
	case strings.HasPrefix(cfg.Algorithm, "ES"):
		if err := p.loadECKey(cfg, logger); err != nil {
			return nil, err
		}
	case cfg.Algorithm == AlgorithmNone:
		// No key material needed.
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, cfg.Algorithm)
	}

	if cfg.Algorithm != AlgorithmNone && jwt5.GetSigningMethod(cfg.Algorithm) == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, cfg.Algorithm)
	}
	return p, nil
}

// AlgorithmNone is the explicit unsigned-token algorithm identifier. The
// validator refuses it unless it is the configured algorithm.
const AlgorithmNone = "none"

// Algorithm returns the configured JWS algorithm identifier.
func (p *KeyProvider) Algorithm() string {
	return p.algorithm
}

// PrivateKey returns the signing key. For HMAC algorithms it is identical
// to the verification key; for "none" it is nil.
func (p *KeyProvider) PrivateKey() any {
	return p.private
}

// PublicKey returns the verification key.
func (p *KeyProvider) PublicKey() any {
	return p.public
}

func (p *KeyProvider) loadHMACKey(cfg KeyConfig, logger *slog.Logger) error {
	if cfg.Secret != "" {
		logger.Info("Loading HMAC secret")
		secret, err := base64.StdEncoding.DecodeString(cfg.Secret)
		if err != nil {
			return fmt.Errorf("unable to decode HMAC secret: %w", err)
		}
		p.private = secret
		p.public = secret
		return nil
	}
	if raw, ok, err := loadPersistedKey(cfg.KeyFile); err != nil {
		return err
	} else if ok {
		secret, isSecret := raw.([]byte)
		if !isSecret {
			return fmt.Errorf("key file %s does not hold a symmetric key", cfg.KeyFile)
		}
		logger.Info("Loaded HMAC secret", "keyFile", cfg.KeyFile)
		p.private = secret
		p.public = secret
		return nil
	}

	logger.Info("Generating HMAC secret")
	secret := make([]byte, generatedSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return fmt.Errorf("unable to generate HMAC secret: %w", err)
	}
	p.private = secret
	p.public = secret
	return persistKey(cfg.KeyFile, secret, logger)
}

func (p *KeyProvider) loadRSAKey(cfg KeyConfig, logger *slog.Logger) error {
	if cfg.Keys != "" {
		logger.Info("Loading RSA key pair")
		raw, err := parseJWKPair(cfg.Keys)
		if err != nil {
			return fmt.Errorf("unable to initialize RSA key: %w", err)
		}
		key, ok := raw.(*rsa.PrivateKey)
		if !ok {
			return fmt.Errorf("unable to initialize RSA key: JWK holds %T", raw)
		}
		p.private = key
		p.public = &key.PublicKey
		return nil
	}
	if raw, ok, err := loadPersistedKey(cfg.KeyFile); err != nil {
		return err
	} else if ok {
		key, isRSA := raw.(*rsa.PrivateKey)
		if !isRSA {
			return fmt.Errorf("key file %s does not hold an RSA key", cfg.KeyFile)
		}
		logger.Info("Loaded RSA key pair", "keyFile", cfg.KeyFile)
		p.private = key
		p.public = &key.PublicKey
		return nil
	}

	logger.Info("Generating RSA key pair")
	key, err := rsa.GenerateKey(rand.Reader, generatedRSAKeyBits)
	if err != nil {
		return fmt.Errorf("unable to generate RSA key: %w", err)
	}
	p.private = key
	p.public = &key.PublicKey
	return persistKey(cfg.KeyFile, key, logger)
}

func (p *KeyProvider) loadECKey(cfg KeyConfig, logger *slog.Logger) error {
	if cfg.Keys != "" {
		logger.Info("Loading EC key pair")
		raw, err := parseJWKPair(cfg.Keys)
		if err != nil {
			return fmt.Errorf("unable to initialize EC key: %w", err)
		}
		key, ok := raw.(*ecdsa.PrivateKey)
		if !ok {
			return fmt.Errorf("unable to initialize EC key: JWK holds %T", raw)
		}
		p.private = key
		p.public = &key.PublicKey
		return nil
	}
	if raw, ok, err := loadPersistedKey(cfg.KeyFile); err != nil {
		return err
	} else if ok {
		key, isEC := raw.(*ecdsa.PrivateKey)
		if !isEC {
			return fmt.Errorf("key file %s does not hold an EC key", cfg.KeyFile)
		}
		logger.Info("Loaded EC key pair", "keyFile", cfg.KeyFile)
		p.private = key
		p.public = &key.PublicKey
		return nil
	}

	logger.Info("Generating EC key pair")
	key, err := ecdsa.GenerateKey(generatedECCurve, rand.Reader)
	if err != nil {
		return fmt.Errorf("unable to generate EC key: %w", err)
	}
	p.private = key
	p.public = &key.PublicKey
	return persistKey(cfg.KeyFile, key, logger)
}

// parseJWKPair decodes a base64-encoded JWK and returns the raw private key.
func parseJWKPair(encoded string) (any, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	key, err := jwk.ParseKey(data)
	if err != nil {
		return nil, err
	}
	var raw any
	if err := key.Raw(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// loadPersistedKey reads a previously generated key back from keyFile.
// A missing file is not an error; it just means a new key gets generated.
func loadPersistedKey(keyFile string) (any, bool, error) {
	if keyFile == "" {
		return nil, false, nil
	}
	data, err := os.ReadFile(keyFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("unable to read key file %s: %w", keyFile, err)
	}
	key, err := jwk.ParseKey(data)
	if err != nil {
		return nil, false, fmt.Errorf("unable to parse key file %s: %w", keyFile, err)
	}
	var raw any
	if err := key.Raw(&raw); err != nil {
		return nil, false, fmt.Errorf("unable to parse key file %s: %w", keyFile, err)
	}
	return raw, true, nil
}

// persistKey writes freshly generated key material to keyFile as a JWK.
func persistKey(keyFile string, raw any, logger *slog.Logger) error {
	if keyFile == "" {
		return nil
	}
	key, err := jwk.FromRaw(raw)
	if err != nil {
		return fmt.Errorf("unable to encode generated key: %w", err)
	}
	data, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("unable to encode generated key: %w", err)
	}
	if err := os.WriteFile(keyFile, data, 0o600); err != nil {
		return fmt.Errorf("unable to write key file %s: %w", keyFile, err)
	}
	logger.Info("Persisted generated key", "keyFile", keyFile)
	return nil
}
