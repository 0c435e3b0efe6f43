/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

// Package transfer implements the authorization rules applied around the
// blob store: what an upload token lets in, what a download token lets out,
// and the minting of a narrowly scoped download token after each stored
// file.
package transfer

import (
	"errors"
	"fmt"
	"strings"
)

// Errors the HTTP layer maps onto status codes. Token validation failures
// keep their generic token.ErrInvalidToken identity.
var (
	ErrTokenRequired    = errors.New("token required")
	ErrMissingParameter = errors.New("missing file id parameter")
)

// InvalidMimeTypeError rejects one file of an upload batch. Unlike token
// failures its detail is not security-sensitive, so the message carries
// both the rejected type and the allow-list.
type InvalidMimeTypeError struct {
	MimeType string
	Allowed  []string
}

func (e *InvalidMimeTypeError) Error() string {
	return fmt.Sprintf("unsupported mime type %q, expected one of: %s",
		e.MimeType, strings.Join(e.Allowed, ", "))
}

// FileSizeLimitError rejects one file that exceeds the token's size ceiling.
type FileSizeLimitError struct {
	Size  int64
	Limit int64
}

func (e *FileSizeLimitError) Error() string {
	return fmt.Sprintf("file size %d exceeds the permitted maximum %d", e.Size, e.Limit)
}
