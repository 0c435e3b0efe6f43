/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

package transfer

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/blackbelt-technology/filestore-go/internal/store"
	"github.com/blackbelt-technology/filestore-go/internal/token"
)

// UploadFile is one file of an upload batch.
type UploadFile struct {
	// FieldName is the multipart form field the file arrived under.
	FieldName string
	// Name is the declared file name, possibly empty.
	Name string
	// MimeType is the declared content type, possibly empty.
	MimeType string
	// Size is the declared size in bytes, -1 when unknown.
	Size int64
	// Data is the file content.
	Data io.Reader
}

// UploadResult reports the outcome for one file. Either Err is set, or the
// file was stored and a download token scoped to it was minted.
type UploadResult struct {
	FieldName string
	FileID    string
	Name      string
	MimeType  string
	Size      int64
	Token     string
	Err       error
}

// UploadService applies the upload authorization rules: token policy, mime
// type allow-list and size ceiling, then stores accepted files and mints
// their download tokens. Stateless; safe for concurrent use.
type UploadService struct {
	validator     *token.Validator
	issuer        *token.Issuer
	store         store.Store
	tokenRequired bool
	logger        *slog.Logger
}

// NewUploadService wires the upload rules to their collaborators.
func NewUploadService(validator *token.Validator, issuer *token.Issuer, st store.Store, tokenRequired bool, logger *slog.Logger) *UploadService {
	return &UploadService{
		validator:     validator,
		issuer:        issuer,
		store:         st,
		tokenRequired: tokenRequired,
		logger:        logger,
	}
}

// Process authorizes and stores an upload batch. Rejections are per-file: a
// failed file does not stop the rest of the batch. A missing token when
// policy requires one, an invalid token, or a token signing failure rejects
// the whole request.
func (s *UploadService) Process(ctx context.Context, tokenString string, files []UploadFile) ([]UploadResult, error) {
	var uploadToken token.Token[token.UploadClaim]
	if strings.TrimSpace(tokenString) == "" {
		if s.tokenRequired {
			return nil, ErrTokenRequired
		}
	} else {
		var err error
		uploadToken, err = s.validator.ParseUploadToken(tokenString)
		if err != nil {
			return nil, err
		}
	}

	allowed := splitMimeTypeList(uploadToken.GetString(token.UploadClaimMimeTypeList))
	maxSize, hasMaxSize := uploadToken.GetInt64(token.UploadClaimMaxFileSize)
	contextClaim := uploadToken.Get(token.UploadClaimContext)

	results := make([]UploadResult, 0, len(files))
	for _, f := range files {
		result := UploadResult{FieldName: f.FieldName, Name: f.Name, MimeType: f.MimeType, Size: f.Size}

		if len(allowed) > 0 && !mimeTypeAllowed(allowed, f.MimeType) {
			result.Err = &InvalidMimeTypeError{MimeType: f.MimeType, Allowed: allowed}
			s.logger.Info("Rejected file", "field", f.FieldName, "name", f.Name, "error", result.Err)
			results = append(results, result)
			continue
		}
		if hasMaxSize && f.Size > maxSize {
			result.Err = &FileSizeLimitError{Size: f.Size, Limit: maxSize}
			s.logger.Info("Rejected file", "field", f.FieldName, "name", f.Name, "error", result.Err)
			results = append(results, result)
			continue
		}

		data := f.Data
		if hasMaxSize {
			// The declared size is client-supplied; enforce the ceiling on
			// the actual bytes as well.
			data = &limitedReader{reader: data, limit: maxSize}
		}

		fileID, err := s.store.Put(ctx, data, f.Name, f.MimeType)
		if err != nil {
			result.Err = err
			s.logger.Warn("Failed to store file", "field", f.FieldName, "name", f.Name, "error", err)
			results = append(results, result)
			continue
		}
		result.FileID = fileID

		if md, err := s.store.Metadata(ctx, fileID); err == nil {
			result.Name = md.Name
			result.MimeType = md.MimeType
			result.Size = md.Size
		}

		downloadToken, err := s.issuer.IssueDownloadToken(token.NewBuilder[token.DownloadClaim]().
			Claim(token.DownloadClaimFileID, fileID).
			Claim(token.DownloadClaimFileName, result.Name).
			Claim(token.DownloadClaimFileSize, result.Size).
			Claim(token.DownloadClaimMimeType, result.MimeType).
			Claim(token.DownloadClaimContext, contextClaim).
			Build())
		if err != nil {
			return nil, err
		}
		result.Token = downloadToken

		s.logger.Info("Stored file", "field", f.FieldName, "fileId", fileID, "name", result.Name, "size", result.Size)
		results = append(results, result)
	}
	return results, nil
}

// splitMimeTypeList splits the comma-separated allow-list claim.
func splitMimeTypeList(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// mimeTypeAllowed matches case-sensitively against exact entries, the full
// wildcard "*/*" and subtype wildcards such as "image/*".
func mimeTypeAllowed(allowed []string, mimeType string) bool {
	if mimeType == "" {
		return false
	}
	for _, entry := range allowed {
		if entry == mimeType || entry == "*/*" {
			return true
		}
		if strings.HasSuffix(entry, "/*") && strings.HasPrefix(mimeType, entry[:len(entry)-1]) {
			return true
		}
	}
	return false
}

// limitedReader fails the copy once more than limit bytes have been read.
type limitedReader struct {
	reader io.Reader
	limit  int64
	read   int64
}

func (r *limitedReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.read += int64(n)
	if r.read > r.limit {
		return n, &FileSizeLimitError{Size: r.read, Limit: r.limit}
	}
	return n, err
}
