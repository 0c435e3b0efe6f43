/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

package mimetype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMimeType(t *testing.T) {
	tests := []struct {
		fileName string
		expected string
	}{
		{fileName: "sample.txt", expected: "text/plain"},
		{fileName: "report.PDF", expected: "application/pdf"},
		{fileName: "photo.jpg", expected: "image/jpeg"},
		{fileName: "data.json", expected: "application/json"},
		{fileName: "archive.bin", expected: "application/octet-stream"},
		{fileName: "noextension", expected: ""},
		{fileName: "weird.zz9", expected: ""},
	}
	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			assert.Equal(t, tt.expected, MimeType(tt.fileName))
		})
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		mimeType string
		expected string
	}{
		{mimeType: "text/plain", expected: "txt"},
		{mimeType: "text/plain; charset=utf-8", expected: "txt"},
		{mimeType: "application/pdf", expected: "pdf"},
		{mimeType: "image/jpeg", expected: "jpg"},
		{mimeType: "application/octet-stream", expected: "bin"},
		{mimeType: "not a mime type", expected: ""},
	}
	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			assert.Equal(t, tt.expected, Extension(tt.mimeType))
		})
	}
}
