/*
Copyright (c) BlackBelt Technology
Distributed under the terms of the Apache License, Version 2.0
*/

package httpserver

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// handleDownload streams a stored file back to the client. The file is named
// by the token's subject, by the id query parameter, or by both when they
// agree.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if !s.cors.Process(w, r, http.MethodGet) {
		return
	}

	download, err := s.downloads.Resolve(r.Context(), requestToken(r), r.URL.Query().Get(ParamFileID))
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer download.Content.Close()

	if download.Name != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", download.Disposition, download.Name))
	} else {
		w.Header().Set("Content-Disposition", download.Disposition)
	}
	if download.MimeType != "" {
		w.Header().Set("Content-Type", download.MimeType)
	}
	if download.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(download.Size, 10))
	}

	if _, err := io.Copy(w, download.Content); err != nil {
		// Headers are already out, all we can do is log.
		s.logger.Error("Failed to stream file", "fileId", download.FileID, "error", err)
	}
}
