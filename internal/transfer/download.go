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

// Content-Disposition types a download token may select.
const (
	DispositionAttachment = "attachment"
	DispositionInline     = "inline"
)

// Download is a resolved, authorized download: the response metadata plus
// the stored bytes. The caller owns Content and must close it.
type Download struct {
	FileID      string
	Name        string
	MimeType    string
	Size        int64
	Disposition string
	Content     io.ReadCloser
}

// DownloadService applies the download authorization rules: token policy
// and the binding between the token's file identity and the requested one.
// Stateless; safe for concurrent use.
type DownloadService struct {
	validator     *token.Validator
	store         store.Store
	tokenRequired bool
	logger        *slog.Logger
}

// NewDownloadService wires the download rules to their collaborators.
func NewDownloadService(validator *token.Validator, st store.Store, tokenRequired bool, logger *slog.Logger) *DownloadService {
	return &DownloadService{
		validator:     validator,
		store:         st,
		tokenRequired: tokenRequired,
		logger:        logger,
	}
}

// Resolve authorizes a download request and returns the file. A token whose
// FILE_ID disagrees with the request parameter is rejected outright: a valid
// token for one file must not fetch another by parameter tampering.
func (s *DownloadService) Resolve(ctx context.Context, tokenString, fileID string) (*Download, error) {
	var downloadToken token.Token[token.DownloadClaim]
	if strings.TrimSpace(tokenString) == "" {
		if s.tokenRequired {
			return nil, ErrTokenRequired
		}
	} else {
		var err error
		downloadToken, err = s.validator.ParseDownloadToken(tokenString)
		if err != nil {
			return nil, err
		}
	}

	tokenFileID := downloadToken.GetString(token.DownloadClaimFileID)
	switch {
	case tokenFileID != "" && fileID != "":
		if fileID != tokenFileID {
			s.logger.Warn("File id mismatch between token and request", "tokenFileId", tokenFileID, "fileId", fileID)
			return nil, token.ErrInvalidToken
		}
	case tokenFileID != "":
		fileID = tokenFileID
	case fileID != "":
		// Request parameter alone identifies the file.
	default:
		return nil, ErrMissingParameter
	}

	md, err := s.store.Metadata(ctx, fileID)
	if err != nil {
		return nil, err
	}

	name := md.Name
	if name == "" {
		name = downloadToken.GetString(token.DownloadClaimFileName)
	}
	mimeType := md.MimeType
	if mimeType == "" {
		mimeType = downloadToken.GetString(token.DownloadClaimMimeType)
	}
	disposition := downloadToken.GetString(token.DownloadClaimDisposition)
	if disposition == "" {
		disposition = DispositionAttachment
	}

	content, err := s.store.Get(ctx, fileID)
	if err != nil {
		return nil, err
	}
	return &Download{
		FileID:      fileID,
		Name:        name,
		MimeType:    mimeType,
		Size:        md.Size,
		Disposition: disposition,
		Content:     content,
	}, nil
}
