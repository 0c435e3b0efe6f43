/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenGetConverts(t *testing.T) {
	tok := NewBuilder[UploadClaim]().
		Claim(UploadClaimMimeTypeList, "application/pdf,text/plain").
		Claim(UploadClaimMaxFileSize, "1024").
		Build()

	assert.Equal(t, "application/pdf,text/plain", tok.Get(UploadClaimMimeTypeList))
	assert.Equal(t, int64(1024), tok.Get(UploadClaimMaxFileSize))
	assert.Nil(t, tok.Get(UploadClaimContext))
}

func TestTokenZeroValue(t *testing.T) {
	var tok Token[DownloadClaim]
	assert.True(t, tok.IsEmpty())
	assert.Nil(t, tok.Get(DownloadClaimFileID))
	assert.Empty(t, tok.Claims())
}

func TestTokenClaimsExport(t *testing.T) {
	tok := NewBuilder[DownloadClaim]().
		Claim(DownloadClaimFileID, "abc123").
		Claim(DownloadClaimFileSize, float64(22)).
		Build()

	claims := tok.Claims()
	assert.Equal(t, map[string]any{
		"sub":      "abc123",
		"fileSize": int64(22),
	}, claims)
}

func TestBuilderIgnoresNil(t *testing.T) {
	tok := NewBuilder[UploadClaim]().
		Claim(UploadClaimMimeTypeList, "text/plain").
		Claim(UploadClaimContext, nil).
		Build()

	assert.Equal(t, map[string]any{"mimeTypeList": "text/plain"}, tok.Claims())
}

func TestBuilderReuseDoesNotMutateBuiltToken(t *testing.T) {
	builder := NewBuilder[UploadClaim]().Claim(UploadClaimMimeTypeList, "text/plain")
	first := builder.Build()
	builder.Claim(UploadClaimMaxFileSize, int64(10))
	second := builder.Build()

	assert.True(t, first.IsEmpty() == false)
	assert.Nil(t, first.Get(UploadClaimMaxFileSize))
	assert.Equal(t, int64(10), second.Get(UploadClaimMaxFileSize))
}

func TestTokenEqual(t *testing.T) {
	a := NewBuilder[DownloadClaim]().
		Claim(DownloadClaimFileID, "abc").
		Claim(DownloadClaimFileSize, int64(22)).
		Build()
	// Same claims with a different numeric representation.
	b := NewBuilder[DownloadClaim]().
		Claim(DownloadClaimFileID, "abc").
		Claim(DownloadClaimFileSize, float64(22)).
		Build()
	c := NewBuilder[DownloadClaim]().
		Claim(DownloadClaimFileID, "xyz").
		Claim(DownloadClaimFileSize, int64(22)).
		Build()

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(Token[DownloadClaim]{}))
}
