/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUploadClaimWireNames(t *testing.T) {
	assert.Equal(t, "mimeTypeList", UploadClaimMimeTypeList.WireName())
	assert.Equal(t, "maxFileSize", UploadClaimMaxFileSize.WireName())
	assert.Equal(t, "ctx", UploadClaimContext.WireName())
}

func TestDownloadClaimWireNames(t *testing.T) {
	// FILE_ID doubles as the JWT subject.
	assert.Equal(t, "sub", DownloadClaimFileID.WireName())
	assert.Equal(t, "fileName", DownloadClaimFileName.WireName())
	assert.Equal(t, "fileSize", DownloadClaimFileSize.WireName())
	assert.Equal(t, "mimeType", DownloadClaimMimeType.WireName())
	assert.Equal(t, "disposition", DownloadClaimDisposition.WireName())
	assert.Equal(t, "ctx", DownloadClaimContext.WireName())
}

func TestClaimByWireName(t *testing.T) {
	claim, ok := UploadClaimByWireName("maxFileSize")
	assert.True(t, ok)
	assert.Equal(t, UploadClaimMaxFileSize, claim)

	_, ok = UploadClaimByWireName("fileName")
	assert.False(t, ok)

	downloadClaim, ok := DownloadClaimByWireName("sub")
	assert.True(t, ok)
	assert.Equal(t, DownloadClaimFileID, downloadClaim)

	_, ok = DownloadClaimByWireName("nonexistent")
	assert.False(t, ok)
}

func TestNumericClaimConversion(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected any
	}{
		{name: "int64 passthrough", value: int64(42), expected: int64(42)},
		{name: "int", value: 42, expected: int64(42)},
		{name: "json number", value: float64(42), expected: int64(42)},
		{name: "numeric string", value: "42", expected: int64(42)},
		{name: "fractional string", value: "42.9", expected: int64(42)},
		{name: "garbage string", value: "forty-two", expected: nil},
		{name: "nil", value: nil, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UploadClaimMaxFileSize.Convert(tt.value))
			assert.Equal(t, tt.expected, DownloadClaimFileSize.Convert(tt.value))
		})
	}
}

func TestStringClaimPassthrough(t *testing.T) {
	assert.Equal(t, "application/pdf", UploadClaimMimeTypeList.Convert("application/pdf"))
	assert.Equal(t, "inline", DownloadClaimDisposition.Convert("inline"))
	assert.Nil(t, UploadClaimContext.Convert(nil))
}
