/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

// Package token implements the claim model, issuance and validation of the
// signed tokens that authorize uploads to and downloads from the file store.
// Upload and download tokens carry disjoint claim sets scoped to disjoint
// JWT audiences, so a token minted for one side of the transfer can never be
// replayed on the other.
package token

import (
	"strconv"
)

// Audience values baked into the signed envelope, one per claim set.
const (
	UploadAudience   = "Upload"
	DownloadAudience = "Download"
)

// Claim is the constraint shared by both claim enumerations. A claim knows
// its wire name (the JWT claim key it serializes to) and how to convert a
// raw decoded value into its semantic type.
type Claim interface {
	comparable
	WireName() string
	Convert(value any) any
}

// claimSpec describes one claim enumeration member. A nil convert means the
// value passes through unchanged.
type claimSpec struct {
	wireName string
	convert  func(value any) any
}

// UploadClaim enumerates the claims an upload token may carry.
type UploadClaim int

const (
	// UploadClaimMimeTypeList is a comma-separated allow-list of acceptable
	// mime types. Entries may be exact types, subtype wildcards ("image/*")
	// or the full wildcard ("*/*").
	UploadClaimMimeTypeList UploadClaim = iota
	// UploadClaimMaxFileSize is an optional per-file size ceiling in bytes.
	UploadClaimMaxFileSize
	// UploadClaimContext is an opaque passthrough value, carried forward
	// unchanged into any download token minted from this upload.
	UploadClaimContext
)

var uploadClaimSpecs = [...]claimSpec{
	UploadClaimMimeTypeList: {wireName: "mimeTypeList"},
	UploadClaimMaxFileSize:  {wireName: "maxFileSize", convert: toInt64},
	UploadClaimContext:      {wireName: "ctx"},
}

// WireName returns the JWT claim key the claim serializes to.
func (c UploadClaim) WireName() string {
	return uploadClaimSpecs[c].wireName
}

// Convert applies the claim's conversion to a raw decoded value.
func (c UploadClaim) Convert(value any) any {
	return uploadClaimSpecs[c].apply(value)
}

// UploadClaimByWireName resolves a JWT claim key back to its upload claim.
// Unrecognized names report ok=false and are dropped by the validator.
func UploadClaimByWireName(name string) (UploadClaim, bool) {
	for c, spec := range uploadClaimSpecs {
		if spec.wireName == name {
			return UploadClaim(c), true
		}
	}
	return 0, false
}

// DownloadClaim enumerates the claims a download token may carry.
type DownloadClaim int

const (
	// DownloadClaimFileID is the identity of the file this token authorizes.
	// It doubles as the signed envelope's subject, hence the "sub" wire name.
	DownloadClaimFileID DownloadClaim = iota
	// DownloadClaimFileName is the stored file's name.
	DownloadClaimFileName
	// DownloadClaimFileSize is the stored file's size in bytes.
	DownloadClaimFileSize
	// DownloadClaimMimeType is the stored file's mime type.
	DownloadClaimMimeType
	// DownloadClaimDisposition selects the Content-Disposition type,
	// "attachment" or "inline". Absent means "attachment".
	DownloadClaimDisposition
	// DownloadClaimContext is the opaque passthrough value carried over
	// from the upload token.
	DownloadClaimContext
)

var downloadClaimSpecs = [...]claimSpec{
	DownloadClaimFileID:      {wireName: "sub"},
	DownloadClaimFileName:    {wireName: "fileName"},
	DownloadClaimFileSize:    {wireName: "fileSize", convert: toInt64},
	DownloadClaimMimeType:    {wireName: "mimeType"},
	DownloadClaimDisposition: {wireName: "disposition"},
	DownloadClaimContext:     {wireName: "ctx"},
}

// WireName returns the JWT claim key the claim serializes to.
func (c DownloadClaim) WireName() string {
	return downloadClaimSpecs[c].wireName
}

// Convert applies the claim's conversion to a raw decoded value.
func (c DownloadClaim) Convert(value any) any {
	return downloadClaimSpecs[c].apply(value)
}

// DownloadClaimByWireName resolves a JWT claim key back to its download claim.
func DownloadClaimByWireName(name string) (DownloadClaim, bool) {
	for c, spec := range downloadClaimSpecs {
		if spec.wireName == name {
			return DownloadClaim(c), true
		}
	}
	return 0, false
}

func (s claimSpec) apply(value any) any {
	if value == nil {
		return nil
	}
	if s.convert == nil {
		return value
	}
	return s.convert(value)
}

// toInt64 normalizes the numeric representations a decoded JWT payload may
// produce. JSON numbers arrive as float64, re-converted claims as int64 and
// hand-built tokens may carry any integer type or a numeric string.
func toInt64(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		return int64(f)
	default:
		return nil
	}
}
