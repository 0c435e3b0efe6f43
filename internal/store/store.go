/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

// Package store provides the blob storage engines behind the upload and
// download services. Two engines exist: a sharded filesystem layout and an
// RDBMS BLOB table. Both assign opaque hex identities on put.
package store

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blackbelt-technology/filestore-go/internal/mimetype"
)

// ErrNotFound is returned for file identities the store does not know.
var ErrNotFound = errors.New("file not found")

// Metadata describes a stored file.
type Metadata struct {
	Name      string    `json:"name"`
	MimeType  string    `json:"mimeType"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is the capability the transfer services consume. Implementations
// must be safe for concurrent use.
type Store interface {
	// Put stores the data under a newly assigned file identity and returns
	// it. Empty names and mime types are defaulted from one another.
	Put(ctx context.Context, data io.Reader, fileName, mimeType string) (string, error)
	// Get returns the stored bytes. Fails with ErrNotFound.
	Get(ctx context.Context, fileID string) (io.ReadCloser, error)
	// Exists reports whether the identity is known.
	Exists(ctx context.Context, fileID string) bool
	// Metadata returns the stored file's metadata. Fails with ErrNotFound.
	Metadata(ctx context.Context, fileID string) (Metadata, error)
}

// newFileID assigns an opaque file identity: a UUID with the dashes
// stripped, 32 hex characters.
func newFileID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// resolveNameAndType fills in a missing file name or mime type from the
// other, falling back to the file identity and the generic binary type.
func resolveNameAndType(fileID, fileName, mimeType string) (string, string) {
	if fileName == "" {
		if ext := mimetype.Extension(mimeType); ext != "" {
			fileName = fileID + "." + ext
		} else {
			fileName = fileID + ".bin"
		}
	}
	if mimeType == "" {
		mimeType = mimetype.MimeType(fileName)
	}
	if mimeType == "" {
		mimeType = mimetype.DefaultMimeType
	}
	return fileName, mimeType
}
