/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

package token

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestKeyProviderHMACSuppliedSecret(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")
	provider, err := NewKeyProvider(KeyConfig{
		Algorithm: "HS512",
		Secret:    base64.StdEncoding.EncodeToString(secret),
	}, testLogger())
	require.NoError(t, err)

	assert.Equal(t, secret, provider.PrivateKey())
	assert.Equal(t, secret, provider.PublicKey())
	assert.Equal(t, "HS512", provider.Algorithm())
}

func TestKeyProviderHMACGeneratedSecret(t *testing.T) {
	provider, err := NewKeyProvider(KeyConfig{Algorithm: "HS256"}, testLogger())
	require.NoError(t, err)

	secret, ok := provider.PrivateKey().([]byte)
	require.True(t, ok)
	assert.Len(t, secret, generatedSecretBytes)
	assert.Equal(t, provider.PrivateKey(), provider.PublicKey())
}

func TestKeyProviderHMACBadSecret(t *testing.T) {
	_, err := NewKeyProvider(KeyConfig{Algorithm: "HS512", Secret: "%%%not-base64%%%"}, testLogger())
	assert.Error(t, err)
}

func TestKeyProviderUnsupportedAlgorithm(t *testing.T) {
	_, err := NewKeyProvider(KeyConfig{Algorithm: "XX512"}, testLogger())
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestKeyProviderNone(t *testing.T) {
	provider, err := NewKeyProvider(KeyConfig{Algorithm: AlgorithmNone}, testLogger())
	require.NoError(t, err)
	assert.Nil(t, provider.PrivateKey())
	assert.Nil(t, provider.PublicKey())
}

func TestKeyProviderRSAGenerated(t *testing.T) {
	provider, err := NewKeyProvider(KeyConfig{Algorithm: "RS256"}, testLogger())
	require.NoError(t, err)

	private, ok := provider.PrivateKey().(*rsa.PrivateKey)
	require.True(t, ok)
	assert.Equal(t, generatedRSAKeyBits, private.N.BitLen())
	assert.Equal(t, &private.PublicKey, provider.PublicKey())
}

func TestKeyProviderECGenerated(t *testing.T) {
	provider, err := NewKeyProvider(KeyConfig{Algorithm: "ES512"}, testLogger())
	require.NoError(t, err)

	private, ok := provider.PrivateKey().(*ecdsa.PrivateKey)
	require.True(t, ok)
	assert.Equal(t, generatedECCurve, private.Curve)
}

func TestKeyProviderRSASuppliedJWK(t *testing.T) {
	private, err := rsa.GenerateKey(rand.Reader, generatedRSAKeyBits)
	require.NoError(t, err)
	key, err := jwk.FromRaw(private)
	require.NoError(t, err)
	data, err := json.Marshal(key)
	require.NoError(t, err)

	provider, err := NewKeyProvider(KeyConfig{
		Algorithm: "RS512",
		Keys:      base64.StdEncoding.EncodeToString(data),
	}, testLogger())
	require.NoError(t, err)

	loaded, ok := provider.PrivateKey().(*rsa.PrivateKey)
	require.True(t, ok)
	assert.Equal(t, private.N, loaded.N)
}

func TestKeyProviderPersistsGeneratedSecret(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "filestore.jwk")

	first, err := NewKeyProvider(KeyConfig{Algorithm: "HS512", KeyFile: keyFile}, testLogger())
	require.NoError(t, err)
	assert.FileExists(t, keyFile)

	// A second provider must come up with the same secret, so tokens issued
	// before a restart keep validating.
	second, err := NewKeyProvider(KeyConfig{Algorithm: "HS512", KeyFile: keyFile}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, first.PrivateKey(), second.PrivateKey())
}

func TestKeyProviderSuppliedSecretNotPersisted(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "filestore.jwk")
	secret := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef"))

	_, err := NewKeyProvider(KeyConfig{Algorithm: "HS512", Secret: secret, KeyFile: keyFile}, testLogger())
	require.NoError(t, err)
	assert.NoFileExists(t, keyFile)
}
