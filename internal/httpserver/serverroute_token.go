/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

package httpserver

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/blackbelt-technology/filestore-go/internal/token"
)

// HeaderIssueSecret authenticates callers of the token issuance route when
// an issue secret is configured.
const HeaderIssueSecret = "X-Issue-Secret"

type issueTokenRequest struct {
	MimeTypeList string `json:"mimeTypeList,omitempty"`
	MaxFileSize  int64  `json:"maxFileSize,omitempty"`
	Context      string `json:"context,omitempty"`
}

// handleToken mints an upload token with the requested constraints. The
// route is open unless an issue secret is configured, in which case the
// caller must present it.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if !s.cors.Process(w, r, http.MethodPost) {
		return
	}

	if s.config.IssueSecret != "" {
		supplied := r.Header.Get(HeaderIssueSecret)
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(s.config.IssueSecret)) != 1 {
			s.writeJSON(w, http.StatusForbidden, map[string]string{"error": "issue secret required"})
			return
		}
	}

	var request issueTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	builder := token.NewBuilder[token.UploadClaim]()
	if request.MimeTypeList != "" {
		builder.Claim(token.UploadClaimMimeTypeList, request.MimeTypeList)
	}
	if request.MaxFileSize > 0 {
		builder.Claim(token.UploadClaimMaxFileSize, request.MaxFileSize)
	}
	if request.Context != "" {
		builder.Claim(token.UploadClaimContext, request.Context)
	}

	signed, err := s.issuer.IssueUploadToken(builder.Build())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"token": signed})
}
