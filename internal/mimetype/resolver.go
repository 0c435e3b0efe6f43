/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

// Package mimetype resolves between file names and mime types. It builds on
// the platform mime table and pins a few mappings so that stored metadata
// does not depend on the host's mime configuration.
package mimetype

import (
	"mime"
	"path/filepath"
	"strings"
)

// DefaultMimeType is used when nothing better can be resolved.
const DefaultMimeType = "application/octet-stream"

var extensionByMimeType = map[string]string{
	"application/json":         "json",
	"application/octet-stream": "bin",
	"application/pdf":          "pdf",
	"application/xml":          "xml",
	"application/zip":          "zip",
	"image/gif":                "gif",
	"image/jpeg":               "jpg",
	"image/png":                "png",
	"image/svg+xml":            "svg",
	"text/csv":                 "csv",
	"text/html":                "html",
	"text/plain":               "txt",
}

var mimeTypeByExtension = map[string]string{
	"bin":  "application/octet-stream",
	"csv":  "text/csv",
	"jpg":  "image/jpeg",
	"json": "application/json",
	"md":   "text/markdown",
	"txt":  "text/plain",
	"yaml": "application/yaml",
	"yml":  "application/yaml",
}

// MimeType resolves a file name to a mime type, or "" when unknown.
func MimeType(fileName string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if ext == "" {
		return ""
	}
	if mt, ok := mimeTypeByExtension[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension("." + ext); mt != "" {
		// Strip parameters such as "; charset=utf-8".
		if mt, _, err := mime.ParseMediaType(mt); err == nil {
			return mt
		}
	}
	return ""
}

// Extension resolves a mime type to a file extension without the leading
// dot, or "" when unknown.
func Extension(mimeType string) string {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return ""
	}
	if ext, ok := extensionByMimeType[mt]; ok {
		return ext
	}
	exts, err := mime.ExtensionsByType(mt)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return strings.TrimPrefix(exts[0], ".")
}
